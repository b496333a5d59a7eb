package config

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/softsim/internal/control"
	"github.com/san-kum/softsim/internal/dynamo"
	"github.com/san-kum/softsim/internal/mesh"
	"github.com/san-kum/softsim/internal/physics"
	"github.com/san-kum/softsim/internal/scene"
	"github.com/san-kum/softsim/internal/sim"
)

// SimConfig is the manager configuration for c.
func (c *Config) SimConfig() sim.Config {
	return sim.Config{Dt: c.Dt, MaxSteps: c.Steps, RealTime: c.RealTime}
}

// Build creates c's scene on mgr, makes it active and returns it with the
// controller bindings it attached.
func Build(c *Config, mgr *sim.Manager) (*scene.Scene, []*control.Binding, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}
	sc, err := mgr.CreateScene(c.Scene.Name, true)
	if err != nil {
		return nil, nil, err
	}

	for _, o := range c.Scene.Objects {
		pc, err := o.Physics()
		if err != nil {
			return nil, nil, dynamo.Errorf("build object", o.Name, err)
		}
		m, err := o.LoadMesh()
		if err != nil {
			return nil, nil, dynamo.Errorf("build object", o.Name, err)
		}
		reps, err := mesh.Build(m, mesh.BuildOptions{Deformable: pc.Kind == physics.Deformable})
		if err != nil {
			return nil, nil, dynamo.Errorf("build object", o.Name, err)
		}
		if _, err := sc.AddObject(o.Name, reps, pc); err != nil {
			return nil, nil, err
		}
	}

	for _, in := range c.Scene.Interactions {
		if err := sc.AddCollisionInteraction(in.A, in.B, in.Iterations); err != nil {
			return nil, nil, err
		}
	}

	reg := control.NewRegistry()
	var bindings []*control.Binding
	for _, ct := range c.Scene.Controllers {
		src, err := reg.GetSource(ct.Source, control.Params{
			Center: mgl64.Vec3(ct.Center),
			Radius: ct.Radius,
			Period: ct.Period,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("controller %s: %v: %w", ct.Object, err, dynamo.ErrInvalidConfig)
		}
		b, err := sc.Attach(ct.Object, src)
		if err != nil {
			return nil, nil, err
		}
		b.Mode, _ = control.ParseMode(ct.Mode)
		if ct.Stiffness > 0 {
			b.Stiffness = ct.Stiffness
		}
		bindings = append(bindings, b)
	}
	return sc, bindings, nil
}
