package handle

import (
	"fmt"

	"github.com/hupe1980/meshgo/core"
)

// Bit layout of a Handle, most significant bits first:
//
//	┌────────┬───────┬──────────────────────────────────────────┐
//	│ 4 type │ 3 dim │ 57 index                                 │
//	└────────┴───────┴──────────────────────────────────────────┘
const (
	TypeBits  = 4
	DimBits   = 3
	IndexBits = 64 - TypeBits - DimBits

	typeShift = IndexBits + DimBits
	dimShift  = IndexBits

	// MaxIndex is the largest index a handle can carry.
	MaxIndex uint64 = 1<<IndexBits - 1

	dimMask = 1<<DimBits - 1
)

// Handle is an opaque entity identifier encoding type, dimension and a
// sequential index within the type. Handles of one type sort in creation
// order, so ranges over one type compress into long runs.
type Handle uint64

// Null is the zero handle. It never identifies an entity.
const Null Handle = 0

// Make encodes a handle. It fails with core.ErrInvalidHandle when the type is
// unknown, dim does not match the type's dimension, or index is zero or
// exceeds MaxIndex.
func Make(t Type, dim int, index uint64) (Handle, error) {
	if t >= TypeMax {
		return Null, fmt.Errorf("%w: unknown type %d", core.ErrInvalidHandle, t)
	}
	if dim < 0 || dim > dimMask || dim != t.Dimension() {
		return Null, fmt.Errorf("%w: dimension %d invalid for %s", core.ErrInvalidHandle, dim, t)
	}
	if index == 0 || index > MaxIndex {
		return Null, fmt.Errorf("%w: index %d out of range", core.ErrInvalidHandle, index)
	}
	return compose(t, index), nil
}

// compose builds a handle without validation. Callers guarantee the inputs.
func compose(t Type, index uint64) Handle {
	return Handle(uint64(t)<<typeShift | uint64(t.Dimension())<<dimShift | index)
}

// New is Make for callers that already validated type and index, such as
// the sequence allocator.
func New(t Type, index uint64) Handle {
	return compose(t, index)
}

// Type returns the entity type encoded in h.
func (h Handle) Type() Type { return Type(uint64(h) >> typeShift) }

// Dim returns the dimension encoded in h.
func (h Handle) Dim() int { return int(uint64(h)>>dimShift) & dimMask }

// Index returns the sequential index encoded in h.
func (h Handle) Index() uint64 { return uint64(h) & MaxIndex }

// IsNull reports whether h is the null handle.
func (h Handle) IsNull() bool { return h == Null }

// Valid reports whether h decodes to a known type with a consistent
// dimension and non-zero index.
func (h Handle) Valid() bool {
	t := h.Type()
	return t < TypeMax && h.Dim() == t.Dimension() && h.Index() != 0
}

// Add offsets the index of h by n. The result is only meaningful when it
// stays inside the type's index space.
func (h Handle) Add(n uint64) Handle { return h + Handle(n) }

// String returns a string representation of the handle, e.g. "Hex#12".
func (h Handle) String() string {
	if h == Null {
		return "Null"
	}
	return fmt.Sprintf("%s#%d", h.Type(), h.Index())
}

// First returns the lowest handle of type t.
func First(t Type) Handle { return compose(t, 1) }

// Last returns the highest handle of type t.
func Last(t Type) Handle { return compose(t, MaxIndex) }

// FirstOfDim returns the lowest handle of any type with dimension d.
func FirstOfDim(d int) Handle {
	ts := TypesOfDim(d)
	if len(ts) == 0 {
		return Null
	}
	return First(ts[0])
}

// LastOfDim returns the highest handle of any type with dimension d.
func LastOfDim(d int) Handle {
	ts := TypesOfDim(d)
	if len(ts) == 0 {
		return Null
	}
	return Last(ts[len(ts)-1])
}
