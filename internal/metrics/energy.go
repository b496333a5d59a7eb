package metrics

import "github.com/go-gl/mathgl/mgl64"

// Energy is the mean kinetic energy, with velocities taken from successive
// frames and mass spread evenly over the points.
type Energy struct {
	name        string
	mass        float64
	prev        []mgl64.Vec3
	prevT       float64
	samples     int
	totalEnergy float64
}

func NewEnergy(mass float64) *Energy {
	return &Energy{
		name: "energy",
		mass: mass,
	}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(pts []mgl64.Vec3, _ float64, t float64) {
	defer func() {
		e.prev = append(e.prev[:0], pts...)
		e.prevT = t
	}()
	dt := t - e.prevT
	if e.prev == nil || len(e.prev) != len(pts) || dt <= 0 || len(pts) == 0 {
		return
	}
	m := e.mass / float64(len(pts))
	ke := 0.0
	for i, p := range pts {
		v := p.Sub(e.prev[i]).Mul(1 / dt)
		ke += 0.5 * m * v.Dot(v)
	}
	e.totalEnergy += ke
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.prev = nil
	e.prevT = 0
	e.totalEnergy = 0
	e.samples = 0
}
