package metrics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/softsim/internal/dynamo"
)

// Stability is the share of frame transitions in which every point stayed
// within threshold of where it was one frame earlier. A run that never
// produced two comparable frames counts as stable.
type Stability struct {
	threshold float64
	last      dynamo.Points
	settled   int
	compared  int
}

func NewStability(threshold float64) *Stability {
	return &Stability{threshold: threshold}
}

func (*Stability) Name() string { return "stability" }

func (s *Stability) Observe(pts []mgl64.Vec3, _ float64, _ float64) {
	cur := dynamo.Points(pts)
	if len(s.last) > 0 && len(s.last) == len(cur) {
		s.compared++
		if cur.MaxDistance(s.last) <= s.threshold {
			s.settled++
		}
	}
	s.last = append(s.last[:0], cur...)
}

func (s *Stability) Value() float64 {
	if s.compared == 0 {
		return 1
	}
	return float64(s.settled) / float64(s.compared)
}

func (s *Stability) Reset() {
	s.last = s.last[:0]
	s.settled, s.compared = 0, 0
}
