package meshgo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/meshgo/core"
	"github.com/hupe1980/meshgo/handle"
)

var (
	// ErrInvalidHandle is returned for malformed or out-of-range handles.
	ErrInvalidHandle = core.ErrInvalidHandle
	// ErrNotFound is returned for operations on non-live entities or
	// unknown tags.
	ErrNotFound = core.ErrNotFound
	// ErrDuplicateTag is returned when a tag name is redefined
	// incompatibly.
	ErrDuplicateTag = core.ErrDuplicateTag
	// ErrUnsupportedInput is returned for wrong dimensions, mixed types or
	// entity types an operation does not handle.
	ErrUnsupportedInput = core.ErrUnsupportedInput
	// ErrAllocationFailure is returned when storage growth is refused.
	ErrAllocationFailure = core.ErrAllocationFailure
	// ErrNonManifold is returned by strict skinning of non-manifold input.
	ErrNonManifold = core.ErrNonManifold
	// ErrInvalidArgument is returned for malformed arguments.
	ErrInvalidArgument = core.ErrInvalidArgument
)

// EntityError reports a failed operation on one entity.
//
// The underlying error can be accessed via errors.Unwrap, so
// errors.Is(err, ErrNotFound) keeps working.
type EntityError struct {
	Op     string
	Handle handle.Handle
	cause  error
}

func (e *EntityError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Handle, e.cause)
}

func (e *EntityError) Unwrap() error { return e.cause }

// ConnectivityError indicates a connectivity list of the wrong length for
// its element type.
//
// The underlying error can be accessed via errors.Unwrap.
type ConnectivityError struct {
	Type     handle.Type
	Expected int
	Actual   int
	cause    error
}

func (e *ConnectivityError) Error() string {
	if e.Expected == 0 {
		return fmt.Sprintf("connectivity mismatch: invalid node count %d for %s", e.Actual, e.Type)
	}
	return fmt.Sprintf("connectivity mismatch: %s expects %d nodes, got %d", e.Type, e.Expected, e.Actual)
}

func (e *ConnectivityError) Unwrap() error { return e.cause }

func newConnectivityError(t handle.Type, actual int) error {
	return &ConnectivityError{
		Type:     t,
		Expected: t.NumCorners(),
		Actual:   actual,
		cause:    fmt.Errorf("%w: %s with %d nodes", ErrInvalidArgument, t, actual),
	}
}

// translateError attaches the operation and entity to errors coming from
// the storage layers. Errors that already carry entity context pass through.
func translateError(op string, h handle.Handle, err error) error {
	if err == nil {
		return nil
	}
	var ee *EntityError
	if errors.As(err, &ee) {
		return err
	}
	var ce *ConnectivityError
	if errors.As(err, &ce) {
		return err
	}
	return &EntityError{Op: op, Handle: h, cause: err}
}
