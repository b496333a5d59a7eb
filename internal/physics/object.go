package physics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/softsim/internal/dynamo"
	"github.com/san-kum/softsim/internal/mesh"
)

// Object is a named simulated body: its representations, correspondence
// maps and dynamical model.
type Object struct {
	name  string
	reps  *mesh.Representations
	cfg   Config
	model *Model
}

// NewObject validates reps, fills in default collision and visual
// representations and constructs the dynamical model.
func NewObject(name string, reps *mesh.Representations, cfg Config) (*Object, error) {
	if name == "" {
		return nil, dynamo.Errorf("new object", name, fmt.Errorf("empty name: %w", dynamo.ErrInvalidConfig))
	}
	if reps == nil || reps.Physics == nil {
		return nil, dynamo.Errorf("new object", name, fmt.Errorf("physics representation: %w", dynamo.ErrInvalidGeometry))
	}
	r, err := completeRepresentations(reps)
	if err != nil {
		return nil, dynamo.Errorf("new object", name, err)
	}
	model, err := NewModel(r.Physics, cfg)
	if err != nil {
		return nil, dynamo.Errorf("new object", name, err)
	}
	return &Object{name: name, reps: r, cfg: cfg, model: model}, nil
}

func completeRepresentations(in *mesh.Representations) (*mesh.Representations, error) {
	r := *in
	n := r.Physics.NumPoints()
	if r.Collision == nil {
		r.Collision = r.Physics
		r.PhysicsToCollision = mesh.Identity(n)
	}
	if r.Visual == nil {
		r.Visual = r.Physics
		r.PhysicsToVisual = mesh.Identity(n)
		c2v, err := mesh.ComputeMap(r.Collision, r.Visual)
		if err != nil {
			return nil, err
		}
		r.CollisionToVisual = c2v
	}

	checks := []struct {
		name   string
		m      mesh.Map
		slave  *mesh.Mesh
		master int
	}{
		{"physics->collision", r.PhysicsToCollision, r.Collision, n},
		{"physics->visual", r.PhysicsToVisual, r.Visual, n},
		{"collision->visual", r.CollisionToVisual, r.Visual, r.Collision.NumPoints()},
	}
	for _, c := range checks {
		if c.m.Len() != c.slave.NumPoints() || !c.m.Valid(c.master) {
			return nil, fmt.Errorf("%s map does not cover its meshes: %w", c.name, dynamo.ErrInvalidGeometry)
		}
	}
	return &r, nil
}

func (o *Object) Name() string { return o.name }

func (o *Object) Kind() Kind { return o.cfg.Kind }

func (o *Object) Config() Config { return o.cfg }

func (o *Object) Representations() *mesh.Representations { return o.reps }

func (o *Object) Model() *Model { return o.model }

// RestCentroid is the centroid of the undeformed physics mesh.
func (o *Object) RestCentroid() mgl64.Vec3 {
	return dynamo.Points(o.model.rest).Centroid()
}

// Every object kind takes part in contact.
func (o *Object) Collidable() bool { return true }

func (o *Object) Proximity() float64 { return o.cfg.Proximity }

func (o *Object) ContactStiffness() float64 { return o.cfg.ContactStiffness }

func (o *Object) CollisionTriangles() [][3]int { return o.reps.Collision.Triangles }

func (o *Object) NumCollisionPoints() int { return o.reps.Collision.NumPoints() }

// CollisionToPhysics returns the physics point behind collision point i.
func (o *Object) CollisionToPhysics(i int) int { return o.reps.PhysicsToCollision.Master(i) }

func (o *Object) InvMass(i int) float64 { return o.model.invMass[i] }

func (o *Object) Predicted() []mgl64.Vec3 { return o.model.pred }

func (o *Object) Committed() []mgl64.Vec3 { return o.model.pos }

func (o *Object) Correct(i int, delta mgl64.Vec3) { o.model.Correct(i, delta) }
