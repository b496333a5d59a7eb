package control

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"
)

type Mode int

const (
	// ModeTarget turns the pose into a position goal for every point.
	ModeTarget Mode = iota
	// ModeForce turns the centroid error into an acceleration through a PID.
	ModeForce
)

func (m Mode) String() string {
	if m == ModeForce {
		return "force"
	}
	return "target"
}

func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "target":
		return ModeTarget, nil
	case "force":
		return ModeForce, nil
	}
	return 0, fmt.Errorf("unknown controller mode %q", s)
}

// DefaultStiffness is the fraction of the remaining distance to the goal a
// deformable object covers per step in ModeTarget.
const DefaultStiffness = 0.2

// Binding associates a pose source with one object. The latest pose is
// held in an atomic slot: writers never wait for the stepping goroutine
// and the step always sees a whole pose.
type Binding struct {
	object string
	source PoseSource
	target atomic.Pointer[Pose]

	Mode      Mode
	Stiffness float64
	PID       *PID

	updates atomic.Uint64
	effort  atomic.Uint64 // math.Float64bits of the last error magnitude
}

func NewBinding(object string, src PoseSource) *Binding {
	return &Binding{
		object:    object,
		source:    src,
		Mode:      ModeTarget,
		Stiffness: DefaultStiffness,
		PID:       DefaultPID(),
	}
}

func (b *Binding) Object() string { return b.object }

func (b *Binding) Source() PoseSource { return b.source }

// UpdateFromExternalPose stores a new target pose. Safe for concurrent use.
func (b *Binding) UpdateFromExternalPose(position mgl64.Vec3, orientation mgl64.Quat) {
	if orientation.Len() == 0 {
		orientation = mgl64.QuatIdent()
	}
	p := Pose{Position: position, Orientation: orientation.Normalize()}
	b.target.Store(&p)
	b.updates.Add(1)
}

// Target returns the last pose received, or false before the first one.
func (b *Binding) Target() (Pose, bool) {
	p := b.target.Load()
	if p == nil {
		return Pose{}, false
	}
	return *p, true
}

// Updates counts the poses received so far.
func (b *Binding) Updates() uint64 { return b.updates.Load() }

// ObserveError records the distance between the object and its target
// after a step.
func (b *Binding) ObserveError(e float64) { b.effort.Store(math.Float64bits(e)) }

func (b *Binding) LastError() float64 { return math.Float64frombits(b.effort.Load()) }

// Goals returns the ModeTarget goal for every point: the rest shape,
// centred on its centroid, rotated and moved to the target pose.
func Goals(p Pose, rest []mgl64.Vec3, restCentroid mgl64.Vec3, out []mgl64.Vec3) []mgl64.Vec3 {
	if cap(out) < len(rest) {
		out = make([]mgl64.Vec3, len(rest))
	}
	out = out[:len(rest)]
	for i, r := range rest {
		out[i] = p.Apply(r.Sub(restCentroid))
	}
	return out
}
