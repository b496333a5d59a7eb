package physics

import "github.com/san-kum/softsim/internal/dynamo"

// Solver steps one object. A step is Begin, Iterate for each solver
// iteration, Validate and Commit; contact corrections are applied between
// iterations by the owner of the step.
type Solver struct {
	obj   *Object
	steps uint64
}

func NewSolver(obj *Object) *Solver {
	return &Solver{obj: obj}
}

func (s *Solver) Object() *Object { return s.obj }

// Iterations is the number of constraint passes per step.
func (s *Solver) Iterations() int { return s.obj.cfg.Iterations }

func (s *Solver) Steps() uint64 { return s.steps }

func (s *Solver) Begin(dt float64) {
	s.obj.model.begin(dt)
}

// Iterate runs constraint pass iter; passes past Iterations are skipped.
func (s *Solver) Iterate(iter int) {
	if iter >= s.obj.cfg.Iterations {
		return
	}
	s.obj.model.iterate()
}

func (s *Solver) Validate() error {
	if err := s.obj.model.validate(); err != nil {
		return dynamo.Errorf("step", s.obj.name, err)
	}
	return nil
}

func (s *Solver) Commit(dt float64) {
	s.obj.model.commit(dt)
	s.steps++
}
