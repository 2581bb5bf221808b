package core

import "errors"

var (
	// ErrInvalidHandle is returned for a malformed or out-of-range handle, or
	// when type, dimension or index exceed the handle encoding.
	ErrInvalidHandle = errors.New("invalid handle")

	// ErrNotFound is returned when an operation targets an entity or tag that
	// is not live.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateTag is returned when a tag name is redefined incompatibly.
	ErrDuplicateTag = errors.New("duplicate tag")

	// ErrUnsupportedInput is returned for wrong dimensions, mixed types or
	// entity types an operation cannot handle.
	ErrUnsupportedInput = errors.New("unsupported input")

	// ErrAllocationFailure is returned when storage cannot grow.
	ErrAllocationFailure = errors.New("allocation failure")

	// ErrNonManifold reports that a topology query met a side shared by more
	// than two entities. It is informational: results are still complete.
	ErrNonManifold = errors.New("non-manifold topology")

	// ErrInvalidArgument is returned when an argument is invalid (e.g. a tag
	// value of the wrong size).
	ErrInvalidArgument = errors.New("invalid argument")
)
