package dynamo

import "errors"

// Domain errors for composition and stepping.
var (
	// ErrGeometry indicates a malformed or empty mesh, or a failed surface extraction.
	ErrGeometry = errors.New("dynamo: malformed geometry")

	// ErrInvalidGeometry indicates a required representation is missing.
	ErrInvalidGeometry = errors.New("dynamo: missing required representation")

	// ErrDuplicateName indicates an entity with the same name is already registered.
	ErrDuplicateName = errors.New("dynamo: duplicate name")

	// ErrUnknownObject indicates a reference to an unregistered object.
	ErrUnknownObject = errors.New("dynamo: unknown object")

	// ErrUnknownScene indicates a reference to an unregistered scene.
	ErrUnknownScene = errors.New("dynamo: unknown scene")

	// ErrInvalidInteraction indicates an interaction that cannot be built, e.g. an object paired with itself.
	ErrInvalidInteraction = errors.New("dynamo: invalid interaction")

	// ErrLifecycle indicates an illegal lifecycle transition.
	ErrLifecycle = errors.New("dynamo: illegal lifecycle transition")

	// ErrDiverged indicates the solver produced NaN or Inf positions.
	ErrDiverged = errors.New("dynamo: simulation diverged (NaN or Inf detected)")

	// ErrInvalidConfig indicates a parameter value outside its valid range.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")
)

// Error wraps a domain error with the operation and entity it concerns.
type Error struct {
	Op   string
	Name string
	Err  error
}

func (e *Error) Error() string {
	if e.Name == "" {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op + " " + e.Name + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf is shorthand for constructing an *Error.
func Errorf(op, name string, err error) error {
	return &Error{Op: op, Name: name, Err: err}
}
