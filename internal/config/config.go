package config

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/softsim/internal/control"
	"github.com/san-kum/softsim/internal/dynamo"
	"github.com/san-kum/softsim/internal/mesh"
	"github.com/san-kum/softsim/internal/physics"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSteps = 1000
	DefaultFPS   = 30
)

type Config struct {
	// Dt overrides the scene timestep when positive.
	Dt       float64     `yaml:"dt"`
	Steps    uint64      `yaml:"steps"`
	RealTime bool        `yaml:"real_time"`
	FPS      int         `yaml:"fps"`
	Scene    SceneConfig `yaml:"scene"`
}

type SceneConfig struct {
	Name         string              `yaml:"name"`
	Objects      []ObjectConfig      `yaml:"objects"`
	Interactions []InteractionConfig `yaml:"interactions"`
	Controllers  []ControllerConfig  `yaml:"controllers"`
}

// ObjectConfig describes one object. Zero numeric fields take the default
// of the object's kind.
type ObjectConfig struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
	// Mesh is a legacy VTK file; Inline is used when it is empty.
	Mesh   string      `yaml:"mesh,omitempty"`
	Inline *InlineMesh `yaml:"inline,omitempty"`
	Offset [3]float64  `yaml:"offset"`
	Scale  float64     `yaml:"scale,omitempty"`

	Mass             float64 `yaml:"mass"`
	YoungModulus     float64 `yaml:"young_modulus,omitempty"`
	PoissonRatio     float64 `yaml:"poisson_ratio,omitempty"`
	Constraint       string  `yaml:"constraint,omitempty"`
	Iterations       int     `yaml:"iterations,omitempty"`
	Proximity        float64 `yaml:"proximity,omitempty"`
	ContactStiffness float64 `yaml:"contact_stiffness,omitempty"`
	// Gravity is a vector; GravityScalar a strength scaled by
	// physics.GravityScale along -z. Gravity wins when both are set.
	Gravity       *[3]float64 `yaml:"gravity,omitempty"`
	GravityScalar *float64    `yaml:"gravity_scalar,omitempty"`
	Dt            float64     `yaml:"dt,omitempty"`
	Integrator    string      `yaml:"integrator,omitempty"`
}

type InlineMesh struct {
	Points     [][3]float64 `yaml:"points"`
	Triangles  [][3]int     `yaml:"triangles,omitempty"`
	Tetrahedra [][4]int     `yaml:"tetrahedra,omitempty"`
}

type InteractionConfig struct {
	A          string `yaml:"a"`
	B          string `yaml:"b"`
	Iterations int    `yaml:"iterations,omitempty"`
}

type ControllerConfig struct {
	Object    string     `yaml:"object"`
	Source    string     `yaml:"source"`
	Mode      string     `yaml:"mode,omitempty"`
	Stiffness float64    `yaml:"stiffness,omitempty"`
	Center    [3]float64 `yaml:"center"`
	Radius    float64    `yaml:"radius,omitempty"`
	Period    float64    `yaml:"period,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Steps: DefaultSteps,
		FPS:   DefaultFPS,
		Scene: SceneConfig{Name: "default"},
	}
}

// DefaultImmovable is an immovable object with the default parameters spelled out.
func DefaultImmovable(name string) ObjectConfig {
	d := physics.DefaultImmovable()
	return ObjectConfig{
		Name:             name,
		Kind:             d.Kind.String(),
		Mass:             d.Mass,
		Iterations:       d.Iterations,
		Proximity:        d.Proximity,
		ContactStiffness: d.ContactStiffness,
	}
}

// DefaultDeformable is a deformable object with the default parameters spelled out.
func DefaultDeformable(name string) ObjectConfig {
	d := physics.DefaultDeformable()
	g := [3]float64(d.Gravity)
	return ObjectConfig{
		Name:             name,
		Kind:             d.Kind.String(),
		Mass:             d.Mass,
		YoungModulus:     d.YoungModulus,
		PoissonRatio:     d.PoissonRatio,
		Constraint:       d.Constraint.String(),
		Iterations:       d.Iterations,
		Proximity:        d.Proximity,
		ContactStiffness: d.ContactStiffness,
		Gravity:          &g,
		Dt:               d.Dt,
		Integrator:       d.Integrator,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks references and enumerations. Numeric ranges are checked
// by physics.Config.Validate when objects are built.
func (c *Config) Validate() error {
	if c.Dt < 0 {
		return fmt.Errorf("dt must not be negative, got %g: %w", c.Dt, dynamo.ErrInvalidConfig)
	}
	if c.FPS < 0 {
		return fmt.Errorf("fps must not be negative, got %d: %w", c.FPS, dynamo.ErrInvalidConfig)
	}
	if c.Scene.Name == "" {
		return fmt.Errorf("scene name is empty: %w", dynamo.ErrInvalidConfig)
	}
	names := make(map[string]bool)
	for _, o := range c.Scene.Objects {
		if o.Name == "" {
			return fmt.Errorf("object without name: %w", dynamo.ErrInvalidConfig)
		}
		if names[o.Name] {
			return dynamo.Errorf("config", o.Name, dynamo.ErrDuplicateName)
		}
		names[o.Name] = true
		if _, err := physics.ParseKind(o.Kind); err != nil {
			return dynamo.Errorf("config", o.Name, err)
		}
		if _, err := physics.ParseConstraint(o.Constraint); err != nil {
			return dynamo.Errorf("config", o.Name, err)
		}
		if o.Mesh == "" && o.Inline == nil {
			return dynamo.Errorf("config", o.Name, fmt.Errorf("no mesh: %w", dynamo.ErrInvalidGeometry))
		}
	}
	for _, in := range c.Scene.Interactions {
		for _, n := range []string{in.A, in.B} {
			if !names[n] {
				return dynamo.Errorf("config interaction", n, dynamo.ErrUnknownObject)
			}
		}
	}
	for _, ct := range c.Scene.Controllers {
		if !names[ct.Object] {
			return dynamo.Errorf("config controller", ct.Object, dynamo.ErrUnknownObject)
		}
		if _, err := control.ParseMode(ct.Mode); err != nil {
			return fmt.Errorf("controller %s: %v: %w", ct.Object, err, dynamo.ErrInvalidConfig)
		}
	}
	return nil
}

// Physics resolves the object's dynamical parameters over its kind's defaults.
func (o ObjectConfig) Physics() (physics.Config, error) {
	kind, err := physics.ParseKind(o.Kind)
	if err != nil {
		return physics.Config{}, err
	}
	cfg := physics.DefaultImmovable()
	if kind == physics.Deformable {
		cfg = physics.DefaultDeformable()
	}

	if o.Mass != 0 {
		cfg.Mass = o.Mass
	}
	if o.YoungModulus != 0 {
		cfg.YoungModulus = o.YoungModulus
	}
	if o.PoissonRatio != 0 {
		cfg.PoissonRatio = o.PoissonRatio
	}
	if o.Constraint != "" {
		if cfg.Constraint, err = physics.ParseConstraint(o.Constraint); err != nil {
			return physics.Config{}, err
		}
	}
	if o.Iterations != 0 {
		cfg.Iterations = o.Iterations
	}
	if o.Proximity != 0 {
		cfg.Proximity = o.Proximity
	}
	if o.ContactStiffness != 0 {
		cfg.ContactStiffness = o.ContactStiffness
	}
	switch {
	case o.Gravity != nil:
		cfg.Gravity = mgl64.Vec3(*o.Gravity)
	case o.GravityScalar != nil:
		cfg.Gravity = physics.GravityFromScalar(*o.GravityScalar)
	}
	if o.Dt != 0 {
		cfg.Dt = o.Dt
	}
	if o.Integrator != "" {
		cfg.Integrator = o.Integrator
	}
	return cfg, cfg.Validate()
}

// LoadMesh reads or builds the object's input mesh, scales it and applies Offset.
func (o ObjectConfig) LoadMesh() (*mesh.Mesh, error) {
	var m *mesh.Mesh
	if o.Mesh != "" {
		var err error
		if m, err = mesh.ReadVTKFile(o.Mesh); err != nil {
			return nil, err
		}
	} else if o.Inline != nil {
		m = o.Inline.Mesh()
	} else {
		return nil, dynamo.Errorf("load mesh", o.Name, dynamo.ErrInvalidGeometry)
	}
	m.Scale(o.Scale)
	m.Translate(mgl64.Vec3(o.Offset))
	return m, nil
}

func (in *InlineMesh) Mesh() *mesh.Mesh {
	m := &mesh.Mesh{
		Points:     make([]mgl64.Vec3, len(in.Points)),
		Triangles:  append([][3]int(nil), in.Triangles...),
		Tetrahedra: append([][4]int(nil), in.Tetrahedra...),
	}
	for i, p := range in.Points {
		m.Points[i] = mgl64.Vec3(p)
	}
	return m
}

// Inline converts m into its config form.
func Inline(m *mesh.Mesh) *InlineMesh {
	in := &InlineMesh{
		Points:     make([][3]float64, len(m.Points)),
		Triangles:  append([][3]int(nil), m.Triangles...),
		Tetrahedra: append([][4]int(nil), m.Tetrahedra...),
	}
	for i, p := range m.Points {
		in.Points[i] = [3]float64(p)
	}
	return in
}
