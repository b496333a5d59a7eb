package scene

import (
	"github.com/san-kum/softsim/internal/control"
	"github.com/san-kum/softsim/internal/dynamo"
	"github.com/san-kum/softsim/internal/physics"
)

// Step advances every object by dt.
//
// Controller targets are applied first, then each solver predicts. Every
// iteration projects the per-object constraints in parallel and resolves
// all collision pairs from one shared snapshot. Positions are committed
// only once every object has produced finite positions; on error nothing
// is committed.
func (s *Scene) Step(dt float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dt <= 0 {
		return dynamo.Errorf("step", s.name, dynamo.ErrInvalidConfig)
	}

	s.applyBindings()

	iters := s.graph.MaxIterations()
	for _, sv := range s.solvers {
		sv.Begin(dt)
		if n := sv.Iterations(); n > iters {
			iters = n
		}
	}

	for it := 0; it < iters; it++ {
		dynamo.ParallelFor(len(s.solvers), 1, func(start, end int) {
			for _, sv := range s.solvers[start:end] {
				sv.Iterate(it)
			}
		})
		s.graph.Resolve(it)
	}

	for _, sv := range s.solvers {
		if err := sv.Validate(); err != nil {
			return err
		}
	}
	for _, sv := range s.solvers {
		sv.Commit(dt)
	}
	s.time += dt

	s.observeBindings()
	return nil
}

func (s *Scene) applyBindings() {
	for _, b := range s.bindings {
		pose, ok := b.Target()
		if !ok {
			continue
		}
		obj := s.objects[s.index[b.Object()]]
		model := obj.Model()

		switch b.Mode {
		case control.ModeForce:
			if obj.Kind() != physics.Deformable {
				continue
			}
			centroid := dynamo.Points(model.Positions()).Centroid()
			u := b.PID.Compute(pose.Position.Sub(centroid), s.time)
			model.SetExternalAcceleration(u)
		default:
			g := control.Goals(pose, model.Rest(), obj.RestCentroid(), s.goals[obj.Name()])
			s.goals[obj.Name()] = g
			model.SetTarget(g, b.Stiffness)
		}
	}
}

func (s *Scene) observeBindings() {
	for _, b := range s.bindings {
		pose, ok := b.Target()
		if !ok {
			continue
		}
		obj := s.objects[s.index[b.Object()]]
		centroid := dynamo.Points(obj.Committed()).Centroid()
		b.ObserveError(pose.Position.Sub(centroid).Len())
	}
}
