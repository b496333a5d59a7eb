package metrics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ControlEffort averages the distance between a driven object and its
// target pose over the observed frames. Peak keeps the worst frame.
type ControlEffort struct {
	total  float64
	peak   float64
	frames int
}

func NewControlEffort() *ControlEffort { return &ControlEffort{} }

func (*ControlEffort) Name() string { return "control_effort" }

func (c *ControlEffort) Observe(_ []mgl64.Vec3, effort float64, _ float64) {
	e := math.Abs(effort)
	c.total += e
	c.peak = math.Max(c.peak, e)
	c.frames++
}

func (c *ControlEffort) Value() float64 {
	if c.frames == 0 {
		return 0
	}
	return c.total / float64(c.frames)
}

func (c *ControlEffort) Peak() float64 { return c.peak }

func (c *ControlEffort) Reset() { *c = ControlEffort{} }
