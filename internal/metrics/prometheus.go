package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var lifecycleStates = []string{"idle", "running", "paused", "stopped"}

// Prometheus records a manager's steps and lifecycle. It satisfies
// sim.Recorder.
type Prometheus struct {
	reg      *prometheus.Registry
	steps    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	state    *prometheus.GaugeVec
}

func NewPrometheus() *Prometheus {
	p := &Prometheus{
		reg: prometheus.NewRegistry(),
		steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "softsim_steps_total",
				Help: "Total number of committed simulation steps",
			},
			[]string{"scene"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "softsim_step_duration_seconds",
				Help:    "Wall time spent computing one step",
				Buckets: prometheus.ExponentialBuckets(1e-5, 4, 10),
			},
			[]string{"scene"},
		),
		state: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "softsim_lifecycle_state",
				Help: "1 for the manager's current lifecycle state, 0 otherwise",
			},
			[]string{"state"},
		),
	}
	p.reg.MustRegister(p.steps, p.duration, p.state)
	p.setState("idle")
	return p
}

func (p *Prometheus) ObserveStep(scene string, d time.Duration) {
	p.steps.WithLabelValues(scene).Inc()
	p.duration.WithLabelValues(scene).Observe(d.Seconds())
}

func (p *Prometheus) StateChanged(_, to string) {
	p.setState(to)
}

func (p *Prometheus) setState(to string) {
	for _, s := range lifecycleStates {
		v := 0.0
		if s == to {
			v = 1
		}
		p.state.WithLabelValues(s).Set(v)
	}
}

func (p *Prometheus) Registry() *prometheus.Registry { return p.reg }

// Handler serves the recorder's metrics in the Prometheus text format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{})
}
