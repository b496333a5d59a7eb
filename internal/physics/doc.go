// Package physics turns meshes into simulated objects.
//
// An [Object] bundles a name, the physics/collision/visual representations
// and a position-based [Model] configured by [Config]. Two kinds exist:
//
//   - [Immovable]: zero mass, a single iteration, contact response only
//   - [Deformable]: edge and tetrahedral volume constraints whose
//     stiffness derives from Young's modulus and Poisson's ratio, under
//     gravity, predicted with [Euler] or [Verlet]
//
// Each object is stepped by its own [Solver]:
//
//	obj, _ := physics.NewObject("kidney", reps, physics.DefaultDeformable())
//	s := physics.NewSolver(obj)
//	s.Begin(dt)
//	for i := 0; i < s.Iterations(); i++ {
//	    s.Iterate(i)
//	}
//	if err := s.Validate(); err == nil {
//	    s.Commit(dt)
//	}
package physics
