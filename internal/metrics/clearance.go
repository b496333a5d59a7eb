package metrics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/softsim/internal/dynamo"
)

// Clearance is the lowest z reached by any point.
type Clearance struct {
	name   string
	lowest float64
}

func NewClearance() *Clearance {
	return &Clearance{name: "clearance", lowest: math.Inf(1)}
}

func (c *Clearance) Name() string { return c.name }

func (c *Clearance) Observe(pts []mgl64.Vec3, _ float64, _ float64) {
	if len(pts) == 0 {
		return
	}
	c.lowest = math.Min(c.lowest, dynamo.Points(pts).Min(2))
}

func (c *Clearance) Value() float64 {
	if math.IsInf(c.lowest, 1) {
		return 0
	}
	return c.lowest
}

func (c *Clearance) Reset() { c.lowest = math.Inf(1) }
