package control

import "github.com/go-gl/mathgl/mgl64"

// PID is a three-axis PID controller on a position error.
type PID struct {
	Kp       float64
	Ki       float64
	Kd       float64
	integral mgl64.Vec3
	prevErr  mgl64.Vec3
	prevT    float64
	first    bool
}

func NewPID(kp, ki, kd float64) *PID {
	return &PID{
		Kp:    kp,
		Ki:    ki,
		Kd:    kd,
		first: true,
	}
}

// DefaultPID is critically damped for a unit mass.
func DefaultPID() *PID {
	return NewPID(100, 0, 20)
}

// Compute returns the control output for error err at time t.
func (p *PID) Compute(err mgl64.Vec3, t float64) mgl64.Vec3 {
	if p.first {
		p.prevErr = err
		p.prevT = t
		p.first = false
		return err.Mul(p.Kp)
	}

	dt := t - p.prevT
	if dt > 0 {
		p.integral = p.integral.Add(err.Mul(dt))
		derivative := err.Sub(p.prevErr).Mul(1 / dt)

		u := err.Mul(p.Kp).Add(p.integral.Mul(p.Ki)).Add(derivative.Mul(p.Kd))

		p.prevErr = err
		p.prevT = t

		return u
	}
	return err.Mul(p.Kp)
}

// Reset clears integral and derivative state
func (p *PID) Reset() {
	p.integral = mgl64.Vec3{}
	p.prevErr = mgl64.Vec3{}
	p.first = true
}

// GetParams returns tunable parameters for live adjustment
func (p *PID) GetParams() map[string]float64 {
	return map[string]float64{
		"Kp": p.Kp,
		"Ki": p.Ki,
		"Kd": p.Kd,
	}
}

// SetParam adjusts a PID parameter
func (p *PID) SetParam(name string, value float64) {
	switch name {
	case "Kp":
		p.Kp = value
	case "Ki":
		p.Ki = value
	case "Kd":
		p.Kd = value
	}
}
