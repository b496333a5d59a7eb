package mesh

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/softsim/internal/dynamo"
)

// Map sends every slave point to exactly one master point. It is computed
// once when an object is built and never mutated afterwards.
type Map struct {
	idx []int
}

// Identity returns the map for a master and slave that share vertices.
func Identity(n int) Map {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return Map{idx: idx}
}

// FromIndices wraps a precomputed slave->master table.
func FromIndices(idx []int) Map {
	c := make([]int, len(idx))
	copy(c, idx)
	return Map{idx: c}
}

// ComputeMap maps each slave point to the master point at least distance.
func ComputeMap(master, slave *Mesh) (Map, error) {
	if master.NumPoints() == 0 || slave.NumPoints() == 0 {
		return Map{}, dynamo.Errorf("compute map", "", fmt.Errorf("empty point set: %w", dynamo.ErrGeometry))
	}
	idx := make([]int, len(slave.Points))
	for i, sp := range slave.Points {
		best, bestD := 0, sp.Sub(master.Points[0]).LenSqr()
		for j := 1; j < len(master.Points) && bestD > 0; j++ {
			if d := sp.Sub(master.Points[j]).LenSqr(); d < bestD {
				best, bestD = j, d
			}
		}
		idx[i] = best
	}
	return Map{idx: idx}, nil
}

func (m Map) Len() int { return len(m.idx) }

// Master returns the master index of slave point i.
func (m Map) Master(i int) int { return m.idx[i] }

func (m Map) IsIdentity() bool {
	for i, v := range m.idx {
		if v != i {
			return false
		}
	}
	return true
}

// Valid reports whether every entry indexes into a master of masterLen points.
func (m Map) Valid(masterLen int) bool {
	for _, v := range m.idx {
		if v < 0 || v >= masterLen {
			return false
		}
	}
	return true
}

// Apply copies master positions into dst following the map, growing dst as needed.
func (m Map) Apply(master []mgl64.Vec3, dst []mgl64.Vec3) []mgl64.Vec3 {
	if cap(dst) < len(m.idx) {
		dst = make([]mgl64.Vec3, len(m.idx))
	}
	dst = dst[:len(m.idx)]
	for i, j := range m.idx {
		dst[i] = master[j]
	}
	return dst
}
