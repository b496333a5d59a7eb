package control

import (
	"math"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// Pose is a rigid 6-DoF transform.
type Pose struct {
	Position    mgl64.Vec3
	Orientation mgl64.Quat
}

func IdentityPose() Pose {
	return Pose{Orientation: mgl64.QuatIdent()}
}

// Apply transforms p by the pose.
func (ps Pose) Apply(p mgl64.Vec3) mgl64.Vec3 {
	return ps.Orientation.Rotate(p).Add(ps.Position)
}

// PoseSource is a live input device. Pose reports false while no sample
// is available.
type PoseSource interface {
	Pose() (Pose, bool)
}

// StaticSource returns whatever pose was last set on it.
type StaticSource struct {
	mu   sync.Mutex
	pose Pose
	set  bool
}

func NewStatic() *StaticSource {
	return &StaticSource{}
}

func (s *StaticSource) Set(p Pose) {
	s.mu.Lock()
	s.pose = p
	s.set = true
	s.mu.Unlock()
}

// SetPosition keeps the identity orientation.
func (s *StaticSource) SetPosition(p mgl64.Vec3) {
	s.Set(Pose{Position: p, Orientation: mgl64.QuatIdent()})
}

func (s *StaticSource) Pose() (Pose, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pose, s.set
}

// CircleSource moves along (r cos t, r/2 sin t, 0) around a centre,
// with t advancing at Speed radians per second of wall time.
type CircleSource struct {
	Center mgl64.Vec3
	Radius float64
	Speed  float64

	start time.Time
	now   func() time.Time
}

func NewCircleSource(radius, speed float64) *CircleSource {
	return &CircleSource{Radius: radius, Speed: speed, now: time.Now}
}

// At returns the pose at parameter t.
func (c *CircleSource) At(t float64) Pose {
	off := mgl64.Vec3{c.Radius * math.Cos(t), c.Radius / 2 * math.Sin(t), 0}
	return Pose{Position: c.Center.Add(off), Orientation: mgl64.QuatIdent()}
}

func (c *CircleSource) Pose() (Pose, bool) {
	if c.now == nil {
		c.now = time.Now
	}
	now := c.now()
	if c.start.IsZero() {
		c.start = now
	}
	return c.At(now.Sub(c.start).Seconds() * c.Speed), true
}
