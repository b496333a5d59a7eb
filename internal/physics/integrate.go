package physics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/softsim/internal/dynamo"
)

// Predictor advances unconstrained positions before constraint projection.
type Predictor interface {
	Predict(pos, vel, old []mgl64.Vec3, invMass []float64, accel mgl64.Vec3, dt float64, out []mgl64.Vec3)
}

func newPredictor(name string) (Predictor, error) {
	switch name {
	case "", "euler":
		return Euler{}, nil
	case "verlet":
		return Verlet{}, nil
	}
	return nil, fmt.Errorf("unknown integrator %q: %w", name, dynamo.ErrInvalidConfig)
}

// Euler is semi-implicit: velocity first, then position.
type Euler struct{}

func (Euler) Predict(pos, vel, _ []mgl64.Vec3, invMass []float64, accel mgl64.Vec3, dt float64, out []mgl64.Vec3) {
	for i := range pos {
		if invMass[i] == 0 {
			out[i] = pos[i]
			continue
		}
		v := vel[i].Add(accel.Mul(dt))
		out[i] = pos[i].Add(v.Mul(dt))
	}
}

// Verlet is position Verlet on the previous committed positions.
type Verlet struct{}

func (Verlet) Predict(pos, _, old []mgl64.Vec3, invMass []float64, accel mgl64.Vec3, dt float64, out []mgl64.Vec3) {
	dt2 := dt * dt
	for i := range pos {
		if invMass[i] == 0 {
			out[i] = pos[i]
			continue
		}
		out[i] = pos[i].Add(pos[i].Sub(old[i])).Add(accel.Mul(dt2))
	}
}
