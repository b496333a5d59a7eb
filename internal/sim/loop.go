package sim

import (
	"context"
	"time"

	"github.com/san-kum/softsim/internal/scene"
)

// run is one execution of the stepping loop.
type run struct {
	m      *Manager
	sc     *scene.Scene
	dt     float64
	cmds   chan command
	done   chan struct{}
	cancel context.CancelFunc

	published map[string]struct{}
}

// tickInterval is the wall-clock period of one real-time step. Steps shorter
// than a nanosecond tick at one nanosecond.
func tickInterval(dt float64) time.Duration {
	d := time.Duration(dt * float64(time.Second))
	if d < time.Nanosecond {
		return time.Nanosecond
	}
	return d
}

func (r *run) loop(ctx context.Context) {
	m := r.m
	defer close(r.done)
	defer r.cancel()

	var tick <-chan time.Time
	if m.cfg.RealTime {
		t := time.NewTicker(tickInterval(r.dt))
		defer t.Stop()
		tick = t.C
	}

	paused := false
	for {
		if paused {
			select {
			case <-ctx.Done():
				r.finish(nil)
				return
			case c := <-r.cmds:
				if r.handle(c, &paused) {
					return
				}
			}
			continue
		}

		select {
		case <-ctx.Done():
			r.finish(nil)
			return
		case c := <-r.cmds:
			if r.handle(c, &paused) {
				return
			}
			continue
		default:
		}

		start := time.Now()
		if err := r.sc.Step(r.dt); err != nil {
			step := m.steps.Load() + 1
			m.log.Error("step failed", "scene", r.sc.Name(), "step", step, "err", err)
			r.finish(err)
			return
		}
		elapsed := time.Since(start)

		n := m.steps.Add(1)
		r.published = m.publish(r.sc, n, r.published)
		m.rec.ObserveStep(r.sc.Name(), elapsed)

		select {
		case m.events <- StepEvent{Scene: r.sc.Name(), Step: n, Time: r.sc.Time(), Duration: elapsed}:
		default:
		}

		if m.cfg.MaxSteps > 0 && n >= m.cfg.MaxSteps {
			r.finish(nil)
			return
		}

		if tick != nil {
			select {
			case <-tick:
			case <-ctx.Done():
			case c := <-r.cmds:
				if r.handle(c, &paused) {
					return
				}
			}
		}
	}
}

// handle applies a command at a step boundary and reports whether the
// loop must exit.
func (r *run) handle(c command, paused *bool) bool {
	m := r.m
	defer close(c.ack)

	switch c.kind {
	case cmdPause:
		*paused = true
		m.mu.Lock()
		m.setState(Paused)
		m.mu.Unlock()
	case cmdResume:
		*paused = false
		m.mu.Lock()
		m.setState(Running)
		m.mu.Unlock()
	case cmdStop:
		r.finish(nil)
		return true
	}
	return false
}

func (r *run) finish(err error) {
	m := r.m
	m.mu.Lock()
	if err != nil && m.err == nil {
		m.err = err
	}
	m.setState(Stopped)
	m.mu.Unlock()
}

// publish copies every object's committed positions into the readout and
// drops objects no longer in the scene. It returns the published names.
func (m *Manager) publish(sc *scene.Scene, step uint64, prev map[string]struct{}) map[string]struct{} {
	cur := make(map[string]struct{}, len(prev))
	for _, o := range sc.Objects() {
		m.snap.Publish(o.Name(), step, o.Committed())
		m.objects.Store(o.Name(), o)
		cur[o.Name()] = struct{}{}
	}
	for name := range prev {
		if _, ok := cur[name]; !ok {
			m.snap.Remove(name)
			m.objects.Delete(name)
		}
	}
	return cur
}
