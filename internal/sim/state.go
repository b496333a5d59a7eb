package sim

import (
	"fmt"
	"time"

	"github.com/san-kum/softsim/internal/dynamo"
)

// State is the lifecycle state of a Manager.
type State int

const (
	Idle State = iota
	Running
	Paused
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// LifecycleError reports a transition requested from a state that does not
// allow it. It matches dynamo.ErrLifecycle.
type LifecycleError struct {
	Op   string
	From State
}

func (e *LifecycleError) Error() string {
	return fmt.Sprintf("%s: not allowed while %s", e.Op, e.From)
}

func (e *LifecycleError) Is(target error) bool {
	return target == dynamo.ErrLifecycle
}

// Config controls the stepping loop.
type Config struct {
	// Dt is the step size; zero uses the active scene's Dt.
	Dt float64
	// MaxSteps stops the run after that many steps; zero runs until Stop.
	MaxSteps uint64
	// RealTime paces steps to wall-clock time.
	RealTime bool
	// EventBuffer is the capacity of the Events channel.
	EventBuffer int
}

// StepEvent is posted after every committed step. Events are dropped when
// nobody drains the channel.
type StepEvent struct {
	Scene    string
	Step     uint64
	Time     float64
	Duration time.Duration
}

// Recorder observes a manager. Implementations must be safe for use from
// the stepping goroutine.
type Recorder interface {
	ObserveStep(scene string, d time.Duration)
	StateChanged(from, to string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveStep(string, time.Duration) {}
func (nopRecorder) StateChanged(string, string)       {}
