package dynamo

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Points is an ordered sequence of 3D positions.
type Points []mgl64.Vec3

func (p Points) Clone() Points {
	c := make(Points, len(p))
	copy(c, p)
	return c
}

// IsValid reports whether every coordinate is finite.
func (p Points) IsValid() bool {
	for _, v := range p {
		for _, c := range v {
			if math.IsNaN(c) || math.IsInf(c, 0) {
				return false
			}
		}
	}
	return true
}

func (p Points) Centroid() mgl64.Vec3 {
	var c mgl64.Vec3
	if len(p) == 0 {
		return c
	}
	for _, v := range p {
		c = c.Add(v)
	}
	return c.Mul(1 / float64(len(p)))
}

// Min returns the lowest value of the given axis (0=x, 1=y, 2=z).
func (p Points) Min(axis int) float64 {
	m := math.Inf(1)
	for _, v := range p {
		if v[axis] < m {
			m = v[axis]
		}
	}
	return m
}

// MaxDistance returns the largest point-wise distance between p and other.
func (p Points) MaxDistance(other Points) float64 {
	d := 0.0
	for i := range p {
		if i >= len(other) {
			break
		}
		d = math.Max(d, p[i].Sub(other[i]).Len())
	}
	return d
}
