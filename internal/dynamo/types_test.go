package dynamo

import (
	"errors"
	"math"
	"sync/atomic"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestPoints_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		pts   Points
		valid bool
	}{
		{"empty", Points{}, true},
		{"normal", Points{{1, 2, 3}, {0, 0, 0}}, true},
		{"with NaN", Points{{1, math.NaN(), 0}}, false},
		{"with +Inf", Points{{math.Inf(1), 0, 0}}, false},
		{"with -Inf", Points{{0, 0, math.Inf(-1)}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.pts.IsValid())
		})
	}
}

func TestPoints_Reductions(t *testing.T) {
	p := Points{{0, 0, 1}, {2, 0, -1}, {1, 3, 0}}

	assert.Equal(t, mgl64.Vec3{1, 1, 0}, p.Centroid())
	assert.Equal(t, -1.0, p.Min(2))

	moved := p.Clone()
	moved[1] = moved[1].Add(mgl64.Vec3{0, 0, 4})
	assert.InDelta(t, 4.0, p.MaxDistance(moved), 1e-12)
	assert.Equal(t, mgl64.Vec3{2, 0, -1}, p[1], "Clone must not alias")
}

func TestError_Unwrap(t *testing.T) {
	err := Errorf("add object", "floor", ErrDuplicateName)
	assert.True(t, errors.Is(err, ErrDuplicateName))
	assert.Equal(t, "add object floor: dynamo: duplicate name", err.Error())
}

func TestParallelFor_CoversRange(t *testing.T) {
	for _, n := range []int{0, 1, 7, 100, 1001} {
		var sum atomic.Int64
		ParallelFor(n, 4, func(start, end int) {
			for i := start; i < end; i++ {
				sum.Add(int64(i))
			}
		})
		want := int64(n * (n - 1) / 2)
		assert.Equal(t, want, sum.Load(), "n=%d", n)
	}
}
