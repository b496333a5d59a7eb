// Package scene composes simulated objects, their collision interactions
// and controller bindings, and advances them one step at a time.
package scene

import (
	"fmt"
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/softsim/internal/collision"
	"github.com/san-kum/softsim/internal/control"
	"github.com/san-kum/softsim/internal/dynamo"
	"github.com/san-kum/softsim/internal/mesh"
	"github.com/san-kum/softsim/internal/physics"
)

// Scene owns a set of uniquely named objects, one solver per object, the
// interaction graph between them and the controller bindings driving them.
//
// All methods are safe for concurrent use. Step holds the scene lock for
// the whole step, so composition calls made while a manager is running
// take effect between steps.
type Scene struct {
	name string

	mu       sync.Mutex
	objects  []*physics.Object
	index    map[string]int
	solvers  []*physics.Solver
	graph    *collision.Graph
	bindings []*control.Binding
	goals    map[string][]mgl64.Vec3
	time     float64
}

func New(name string) *Scene {
	s := &Scene{
		name:  name,
		index: make(map[string]int),
		goals: make(map[string][]mgl64.Vec3),
	}
	s.graph = collision.NewGraph(registry{s})
	return s
}

// registry resolves bodies for the graph. It is only used under s.mu.
type registry struct{ s *Scene }

func (r registry) Body(name string) (collision.Body, bool) {
	i, ok := r.s.index[name]
	if !ok {
		return nil, false
	}
	return r.s.objects[i], true
}

func (s *Scene) Name() string { return s.name }

// AddObject builds a simulated object from reps and cfg and registers it
// together with its solver. On error the scene is left unchanged.
func (s *Scene) AddObject(name string, reps *mesh.Representations, cfg physics.Config) (*physics.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[name]; ok {
		return nil, dynamo.Errorf("add object", name, dynamo.ErrDuplicateName)
	}
	obj, err := physics.NewObject(name, reps, cfg)
	if err != nil {
		return nil, err
	}
	s.index[name] = len(s.objects)
	s.objects = append(s.objects, obj)
	s.solvers = append(s.solvers, physics.NewSolver(obj))
	return obj, nil
}

// RemoveObject drops the object, its solver, every interaction it takes
// part in and every binding driving it.
func (s *Scene) RemoveObject(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[name]
	if !ok {
		return dynamo.Errorf("remove object", name, dynamo.ErrUnknownObject)
	}
	s.graph.Remove(name)

	s.objects = append(s.objects[:i], s.objects[i+1:]...)
	s.solvers = append(s.solvers[:i], s.solvers[i+1:]...)
	delete(s.index, name)
	for j := i; j < len(s.objects); j++ {
		s.index[s.objects[j].Name()] = j
	}

	kept := s.bindings[:0]
	for _, b := range s.bindings {
		if b.Object() != name {
			kept = append(kept, b)
		}
	}
	s.bindings = kept
	delete(s.goals, name)
	return nil
}

func (s *Scene) Object(name string) (*physics.Object, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.objects[i], true
}

// Objects returns the objects in registration order.
func (s *Scene) Objects() []*physics.Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*physics.Object, len(s.objects))
	copy(out, s.objects)
	return out
}

func (s *Scene) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// AddCollisionInteraction pairs two registered objects; see collision.Graph.
func (s *Scene) AddCollisionInteraction(a, b string, iterations int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.AddCollisionInteraction(a, b, iterations)
}

func (s *Scene) Interactions() []collision.Pair {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Pairs()
}

// Attach binds src to the named object.
func (s *Scene) Attach(name string, src control.PoseSource) (*control.Binding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.index[name]; !ok {
		return nil, dynamo.Errorf("attach", name, dynamo.ErrUnknownObject)
	}
	b := control.NewBinding(name, src)
	s.bindings = append(s.bindings, b)
	return b, nil
}

// Detach removes b and reports whether it was attached.
func (s *Scene) Detach(b *control.Binding) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, x := range s.bindings {
		if x == b {
			s.bindings = append(s.bindings[:i], s.bindings[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Scene) Bindings() []*control.Binding {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*control.Binding, len(s.bindings))
	copy(out, s.bindings)
	return out
}

// Dt is the smallest timestep configured on a deformable object, or
// physics.DefaultDt when there is none.
func (s *Scene) Dt() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	dt := math.Inf(1)
	for _, o := range s.objects {
		if c := o.Config(); c.Kind == physics.Deformable && c.Dt > 0 && c.Dt < dt {
			dt = c.Dt
		}
	}
	if math.IsInf(dt, 1) {
		return physics.DefaultDt
	}
	return dt
}

// Time is the simulated time advanced so far.
func (s *Scene) Time() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.time
}

func (s *Scene) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("scene %s: %d objects, %d interactions, %d bindings",
		s.name, len(s.objects), s.graph.Len(), len(s.bindings))
}
