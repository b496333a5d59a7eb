// Package mesh holds the point/topology containers the simulator consumes
// and the adapter that turns one input mesh into the physics, collision and
// visual representations of a simulated object.
package mesh

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/softsim/internal/dynamo"
)

type Topology int

const (
	TopologySurface Topology = iota
	TopologyVolume
)

func (t Topology) String() string {
	if t == TopologyVolume {
		return "volume"
	}
	return "surface"
}

// Mesh is a point set with either triangle or tetrahedral connectivity.
// Topology is fixed once built; point positions may change every step.
type Mesh struct {
	Points     []mgl64.Vec3
	Triangles  [][3]int
	Tetrahedra [][4]int
}

func (m *Mesh) Topology() Topology {
	if len(m.Tetrahedra) > 0 {
		return TopologyVolume
	}
	return TopologySurface
}

func (m *Mesh) NumPoints() int {
	if m == nil {
		return 0
	}
	return len(m.Points)
}

func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		Points:     make([]mgl64.Vec3, len(m.Points)),
		Triangles:  make([][3]int, len(m.Triangles)),
		Tetrahedra: make([][4]int, len(m.Tetrahedra)),
	}
	copy(c.Points, m.Points)
	copy(c.Triangles, m.Triangles)
	copy(c.Tetrahedra, m.Tetrahedra)
	return c
}

// Validate checks that the mesh has points and that every cell index is in range.
func (m *Mesh) Validate() error {
	if m == nil || len(m.Points) == 0 {
		return dynamo.Errorf("validate mesh", "", fmt.Errorf("no nodal positions: %w", dynamo.ErrGeometry))
	}
	if !dynamo.Points(m.Points).IsValid() {
		return dynamo.Errorf("validate mesh", "", fmt.Errorf("non-finite point: %w", dynamo.ErrGeometry))
	}
	n := len(m.Points)
	for i, tri := range m.Triangles {
		for _, idx := range tri {
			if idx < 0 || idx >= n {
				return dynamo.Errorf("validate mesh", "", fmt.Errorf("triangle %d index %d out of range: %w", i, idx, dynamo.ErrGeometry))
			}
		}
	}
	for i, tet := range m.Tetrahedra {
		for _, idx := range tet {
			if idx < 0 || idx >= n {
				return dynamo.Errorf("validate mesh", "", fmt.Errorf("tetrahedron %d index %d out of range: %w", i, idx, dynamo.ErrGeometry))
			}
		}
	}
	return nil
}

// Scale multiplies every point by factor in place. A factor of 0 or 1 is a no-op.
func (m *Mesh) Scale(factor float64) {
	if factor == 0 || factor == 1 {
		return
	}
	for i := range m.Points {
		m.Points[i] = m.Points[i].Mul(factor)
	}
}

// Translate offsets every point in place.
func (m *Mesh) Translate(offset mgl64.Vec3) {
	for i := range m.Points {
		m.Points[i] = m.Points[i].Add(offset)
	}
}
