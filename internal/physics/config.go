package physics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/softsim/internal/dynamo"
)

// Kind is the physical role of an object.
type Kind int

const (
	Immovable Kind = iota
	Deformable
)

func (k Kind) String() string {
	switch k {
	case Immovable:
		return "immovable"
	case Deformable:
		return "deformable"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind accepts "immovable"/"fixed" and "deformable".
func ParseKind(s string) (Kind, error) {
	switch s {
	case "immovable", "fixed":
		return Immovable, nil
	case "deformable":
		return Deformable, nil
	}
	return 0, fmt.Errorf("unknown object kind %q: %w", s, dynamo.ErrInvalidConfig)
}

type ConstraintType int

const (
	// ConstraintDistance keeps every mesh edge at its rest length.
	ConstraintDistance ConstraintType = iota
	// ConstraintVolume adds per-tetrahedron volume preservation to the edge constraints.
	ConstraintVolume
)

func (c ConstraintType) String() string {
	if c == ConstraintVolume {
		return "volume"
	}
	return "distance"
}

func ParseConstraint(s string) (ConstraintType, error) {
	switch s {
	case "", "distance":
		return ConstraintDistance, nil
	case "volume", "fem":
		return ConstraintVolume, nil
	}
	return 0, fmt.Errorf("unknown constraint type %q: %w", s, dynamo.ErrInvalidConfig)
}

const (
	DefaultDt         = 0.001
	DefaultIterations = 2
	DefaultProximity  = 0.1

	// GravityScale converts a scalar gravity strength into the gravity
	// vector: GravityFromScalar(g) = (0, 0, -GravityScale*g).
	GravityScale = 50.0
)

// Config parameterises an object's dynamical model.
type Config struct {
	Kind             Kind
	Mass             float64
	YoungModulus     float64
	PoissonRatio     float64
	Constraint       ConstraintType
	Iterations       int
	Proximity        float64
	ContactStiffness float64
	Gravity          mgl64.Vec3
	Dt               float64
	// Integrator selects the prediction scheme: "euler" (default) or "verlet".
	Integrator string
}

func DefaultImmovable() Config {
	return Config{
		Kind:             Immovable,
		Mass:             0,
		Iterations:       1,
		Proximity:        DefaultProximity,
		ContactStiffness: 1.0,
		Dt:               DefaultDt,
	}
}

func DefaultDeformable() Config {
	return Config{
		Kind:             Deformable,
		Mass:             1.0,
		YoungModulus:     1.0,
		PoissonRatio:     0.3,
		Constraint:       ConstraintVolume,
		Iterations:       DefaultIterations,
		Proximity:        DefaultProximity,
		ContactStiffness: 0.01,
		Gravity:          mgl64.Vec3{0, 0, -9.8},
		Dt:               DefaultDt,
		Integrator:       "euler",
	}
}

// GravityFromScalar applies a scalar strength along -z scaled by GravityScale.
func GravityFromScalar(g float64) mgl64.Vec3 {
	return mgl64.Vec3{0, 0, -GravityScale * g}
}

func (c Config) Validate() error {
	switch {
	case c.Kind != Immovable && c.Kind != Deformable:
		return fmt.Errorf("kind %d: %w", int(c.Kind), dynamo.ErrInvalidConfig)
	case c.Kind == Deformable && c.Mass <= 0:
		return fmt.Errorf("deformable mass must be positive, got %g: %w", c.Mass, dynamo.ErrInvalidConfig)
	case c.Mass < 0:
		return fmt.Errorf("mass must not be negative, got %g: %w", c.Mass, dynamo.ErrInvalidConfig)
	case c.Iterations < 1:
		return fmt.Errorf("iterations must be at least 1, got %d: %w", c.Iterations, dynamo.ErrInvalidConfig)
	case c.Proximity < 0:
		return fmt.Errorf("proximity must not be negative, got %g: %w", c.Proximity, dynamo.ErrInvalidConfig)
	case c.ContactStiffness < 0 || c.ContactStiffness > 1:
		return fmt.Errorf("contact stiffness must be in [0,1], got %g: %w", c.ContactStiffness, dynamo.ErrInvalidConfig)
	case c.Dt < 0:
		return fmt.Errorf("dt must not be negative, got %g: %w", c.Dt, dynamo.ErrInvalidConfig)
	case c.Kind == Deformable && (c.PoissonRatio < 0 || c.PoissonRatio >= 0.5):
		return fmt.Errorf("poisson ratio must be in [0,0.5), got %g: %w", c.PoissonRatio, dynamo.ErrInvalidConfig)
	case c.Kind == Deformable && c.YoungModulus < 0:
		return fmt.Errorf("young modulus must not be negative, got %g: %w", c.YoungModulus, dynamo.ErrInvalidConfig)
	}
	if _, err := newPredictor(c.Integrator); err != nil {
		return err
	}
	return nil
}

// lame returns the Lamé parameters (mu, lambda) for the configured material.
func (c Config) lame() (float64, float64) {
	e, nu := c.YoungModulus, c.PoissonRatio
	mu := e / (2 * (1 + nu))
	lambda := e * nu / ((1 + nu) * (1 - 2*nu))
	return mu, lambda
}

// stiffness maps a material modulus to a PBD stiffness in (0, 1].
func stiffness(modulus float64) float64 {
	if modulus <= 0 {
		return 0
	}
	return modulus / (1 + modulus)
}

// perIteration spreads stiffness k over n solver iterations so the
// effective stiffness does not depend on the iteration count.
func perIteration(k float64, n int) float64 {
	if k >= 1 || n <= 1 {
		return k
	}
	return 1 - math.Pow(1-k, 1/float64(n))
}
