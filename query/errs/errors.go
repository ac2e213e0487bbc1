// Package errs defines the error taxonomy shared by the query packages.
package errs

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure conditions.
var (
	// ErrEmptyInList is recorded when IN / NOT IN is built without any values.
	ErrEmptyInList = errors.New("sqlorm: IN requires at least one value")

	// ErrInvalidInOperand is recorded when IN / NOT IN is given something
	// other than a list of values.
	ErrInvalidInOperand = errors.New("sqlorm: IN requires a list of values")

	// ErrEmptyValues is returned when an INSERT or UPDATE has no columns to write.
	ErrEmptyValues = errors.New("sqlorm: no values to write")

	// ErrInvalidQuery is returned for structurally unusable query descriptors.
	ErrInvalidQuery = errors.New("sqlorm: invalid query")

	// ErrTableNotFound is returned by resolvers for unknown models.
	ErrTableNotFound = errors.New("sqlorm: table not found")

	// ErrColumnNotFound is returned by resolvers for unknown fields.
	ErrColumnNotFound = errors.New("sqlorm: column not found")

	// ErrPlaceholderMismatch signals a compiler defect: the emitted placeholders
	// and the argument list are out of step.
	ErrPlaceholderMismatch = errors.New("sqlorm: placeholder count does not match arguments")

	// ErrExecution wraps failures reported by the database driver.
	ErrExecution = errors.New("sqlorm: execution failed")
)

// Kind classifies an Error.
type Kind string

const (
	// BuildError is a malformed predicate construction.
	BuildError Kind = "build"
	// ResolutionError is an unknown table or column reported by the resolver.
	ResolutionError Kind = "resolution"
	// InvariantError is an internal compiler defect. It is never expected in correct code.
	InvariantError Kind = "invariant"
	// ExecutionError carries a driver failure.
	ExecutionError Kind = "execution"
)

// Error is a classified error with operation context.
type Error struct {
	Kind  Kind
	Op    string
	Model string
	Err   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("sqlorm: %s %s [%s]: %v", e.Kind, e.Op, e.Model, e.Err)
	}
	return fmt.Sprintf("sqlorm: %s %s: %v", e.Kind, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the underlying error.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// New creates a classified error. A nil err yields nil.
func New(kind Kind, op, model string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Model: model, Err: err}
}

// Build creates a BuildError.
func Build(op, model string, err error) error {
	return New(BuildError, op, model, err)
}

// Resolution creates a ResolutionError. An error that is already classified is
// returned unchanged so resolver failures are never re-wrapped.
func Resolution(op, model string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return New(ResolutionError, op, model, err)
}

// Invariant creates an InvariantError.
func Invariant(op, model string, err error) error {
	return New(InvariantError, op, model, err)
}

// Execution creates an ExecutionError around a driver failure.
func Execution(op, model string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: ExecutionError, Op: op, Model: model, Err: fmt.Errorf("%w: %w", ErrExecution, err)}
}

// KindOf returns the kind of the first classified error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// IsBuild reports whether err is a BuildError.
func IsBuild(err error) bool { return hasKind(err, BuildError) }

// IsResolution reports whether err is a ResolutionError.
func IsResolution(err error) bool { return hasKind(err, ResolutionError) }

// IsInvariant reports whether err is an InvariantError.
func IsInvariant(err error) bool { return hasKind(err, InvariantError) }

// IsExecution reports whether err is an ExecutionError.
func IsExecution(err error) bool { return hasKind(err, ExecutionError) }

func hasKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
