// Package metrics summarises a run: per-object metrics computed from
// sampled frames, and a Prometheus recorder for a live manager.
package metrics

import "github.com/go-gl/mathgl/mgl64"

// Metric accumulates one scalar over the frames of an object.
type Metric interface {
	Name() string
	// Observe sees the object's positions at time t and the controller
	// error driving it, zero when undriven.
	Observe(pts []mgl64.Vec3, effort float64, t float64)
	Value() float64
	Reset()
}

// Defaults is the metric set recorded for every object.
func Defaults(mass float64) []Metric {
	return []Metric{
		NewEnergy(mass),
		NewClearance(),
		NewStability(0.05),
		NewControlEffort(),
	}
}
