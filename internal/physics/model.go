package physics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/softsim/internal/dynamo"
	"github.com/san-kum/softsim/internal/mesh"
)

// Model is a position-based dynamical model over the physics mesh points.
//
// pos holds the last committed step, pred the positions being corrected
// during the current step. Only the stepping goroutine touches a Model.
type Model struct {
	cfg       Config
	predictor Predictor

	rest []mgl64.Vec3
	pos  []mgl64.Vec3
	old  []mgl64.Vec3
	pred []mgl64.Vec3
	vel  []mgl64.Vec3

	invMass []float64

	distance []distanceConstraint
	volume   []volumeConstraint
	kDist    float64
	kVol     float64

	accel mgl64.Vec3
	goal  []mgl64.Vec3
	goalK float64
}

func NewModel(m *mesh.Mesh, cfg Config) (*Model, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	pred, _ := newPredictor(cfg.Integrator)

	n := m.NumPoints()
	md := &Model{
		cfg:       cfg,
		predictor: pred,
		rest:      dynamo.Points(m.Points).Clone(),
		pos:       dynamo.Points(m.Points).Clone(),
		old:       dynamo.Points(m.Points).Clone(),
		pred:      dynamo.Points(m.Points).Clone(),
		vel:       make([]mgl64.Vec3, n),
		invMass:   make([]float64, n),
	}

	if cfg.Kind == Deformable {
		for i := range md.invMass {
			md.invMass[i] = 1 / cfg.Mass
		}
		mu, lambda := cfg.lame()
		md.kDist = perIteration(stiffness(mu), cfg.Iterations)
		md.distance = buildDistanceConstraints(m.Points, m.Triangles, m.Tetrahedra)
		if cfg.Constraint == ConstraintVolume {
			md.kVol = perIteration(stiffness(lambda), cfg.Iterations)
			for _, t := range m.Tetrahedra {
				v := tetVolume(m.Points[t[0]], m.Points[t[1]], m.Points[t[2]], m.Points[t[3]])
				md.volume = append(md.volume, volumeConstraint{idx: t, rest: v})
			}
		}
	}
	return md, nil
}

func (m *Model) Config() Config { return m.cfg }

func (m *Model) NumPoints() int { return len(m.pos) }

func (m *Model) InvMass(i int) float64 { return m.invMass[i] }

// Rest returns the undeformed positions.
func (m *Model) Rest() []mgl64.Vec3 { return m.rest }

// Positions returns the last committed positions.
func (m *Model) Positions() []mgl64.Vec3 { return m.pos }

// Predicted returns the positions of the step in progress.
func (m *Model) Predicted() []mgl64.Vec3 { return m.pred }

// SetExternalAcceleration adds a uniform acceleration to the next step only.
func (m *Model) SetExternalAcceleration(a mgl64.Vec3) { m.accel = a }

// SetTarget pulls the next step's prediction toward goal with stiffness k.
// Immovable models move to goal kinematically.
func (m *Model) SetTarget(goal []mgl64.Vec3, k float64) {
	if len(goal) != len(m.pos) {
		return
	}
	m.goal = goal
	m.goalK = k
}

func (m *Model) begin(dt float64) {
	if m.cfg.Kind == Deformable {
		m.predictor.Predict(m.pos, m.vel, m.old, m.invMass, m.cfg.Gravity.Add(m.accel), dt, m.pred)
	} else {
		copy(m.pred, m.pos)
	}

	if m.goal != nil {
		for i := range m.pred {
			if m.cfg.Kind == Immovable {
				m.pred[i] = m.goal[i]
			} else if m.invMass[i] > 0 {
				m.pred[i] = m.pred[i].Add(m.goal[i].Sub(m.pred[i]).Mul(m.goalK))
			}
		}
	}
	m.accel = mgl64.Vec3{}
	m.goal = nil
}

func (m *Model) iterate() {
	for _, c := range m.distance {
		c.project(m.pred, m.invMass, m.kDist)
	}
	for _, c := range m.volume {
		c.project(m.pred, m.invMass, m.kVol)
	}
}

// Correct moves predicted point i by delta.
func (m *Model) Correct(i int, delta mgl64.Vec3) {
	m.pred[i] = m.pred[i].Add(delta)
}

func (m *Model) validate() error {
	if !dynamo.Points(m.pred).IsValid() {
		return dynamo.ErrDiverged
	}
	return nil
}

func (m *Model) commit(dt float64) {
	inv := 0.0
	if dt > 0 {
		inv = 1 / dt
	}
	for i := range m.pos {
		m.vel[i] = m.pred[i].Sub(m.pos[i]).Mul(inv)
		m.old[i] = m.pos[i]
		m.pos[i] = m.pred[i]
	}
}
