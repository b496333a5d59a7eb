package sim

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/softsim/internal/dynamo"
)

// GetDeformedPositions returns a copy of the physics positions of name as
// of the last committed step. It never waits for a step in progress.
func (m *Manager) GetDeformedPositions(name string) ([]mgl64.Vec3, error) {
	f, ok := m.snap.Read(name)
	if !ok {
		return nil, dynamo.Errorf("get deformed positions", name, dynamo.ErrUnknownObject)
	}
	return f.Points, nil
}

// GetVisualPositions maps the last committed positions of name onto its
// visual representation.
func (m *Manager) GetVisualPositions(name string) ([]mgl64.Vec3, error) {
	obj, ok := m.lookupObject(name)
	if !ok {
		return nil, dynamo.Errorf("get visual positions", name, dynamo.ErrUnknownObject)
	}
	pts, err := m.GetDeformedPositions(name)
	if err != nil {
		return nil, err
	}
	p2v := obj.Representations().PhysicsToVisual
	if p2v.IsIdentity() && p2v.Len() == len(pts) {
		return pts, nil
	}
	return p2v.Apply(pts, nil), nil
}

// ReadPositions is GetDeformedPositions into a caller-owned buffer. It also
// returns the step the positions belong to.
func (m *Manager) ReadPositions(name string, dst []mgl64.Vec3) ([]mgl64.Vec3, uint64, error) {
	out, step, ok := m.snap.ReadInto(name, dst)
	if !ok {
		return out, 0, dynamo.Errorf("read positions", name, dynamo.ErrUnknownObject)
	}
	return out, step, nil
}

// Objects lists the objects with a published frame.
func (m *Manager) Objects() []string {
	return m.snap.Names()
}
