package adjacency

import (
	"slices"

	"github.com/hupe1980/meshgo/core"
	"github.com/hupe1980/meshgo/handle"
)

// Locator resolves a live vertex to its sequence block and slot.
type Locator interface {
	Locate(h handle.Handle) (start handle.Handle, capacity int, slot core.SlotID, err error)
}

// block holds the up-adjacency lists of one vertex sequence.
type block struct {
	lists [][]handle.Handle
}

// Index maps each vertex to the sorted list of elements using it. Lists are
// stored per vertex sequence, parallel to its slots.
//
// Index is not safe for concurrent use.
type Index struct {
	loc    Locator
	blocks map[handle.Handle]*block
	built  bool
}

// New creates an empty, unbuilt index.
func New(loc Locator) *Index {
	return &Index{loc: loc, blocks: make(map[handle.Handle]*block)}
}

// Built reports whether the index reflects every element.
func (x *Index) Built() bool { return x.built }

// MarkBuilt declares the index complete. Callers use it after a full
// rebuild, or on an empty database when adjacencies are maintained from the
// start.
func (x *Index) MarkBuilt() { x.built = true }

// Reset drops every list and marks the index unbuilt.
func (x *Index) Reset() {
	clear(x.blocks)
	x.built = false
}

func (x *Index) list(v handle.Handle, create bool) (*[]handle.Handle, error) {
	start, capacity, slot, err := x.loc.Locate(v)
	if err != nil {
		return nil, err
	}
	b := x.blocks[start]
	if b == nil {
		if !create {
			return nil, nil
		}
		b = &block{lists: make([][]handle.Handle, capacity)}
		x.blocks[start] = b
	}
	return &b.lists[slot], nil
}

// Add records that element e uses every vertex in verts. Duplicate vertices
// are recorded once.
func (x *Index) Add(e handle.Handle, verts []handle.Handle) error {
	for _, v := range verts {
		l, err := x.list(v, true)
		if err != nil {
			return err
		}
		if i, found := slices.BinarySearch(*l, e); !found {
			*l = slices.Insert(*l, i, e)
		}
	}
	return nil
}

// Remove drops e from the lists of verts. Vertices that are no longer live
// are skipped.
func (x *Index) Remove(e handle.Handle, verts []handle.Handle) {
	for _, v := range verts {
		l, err := x.list(v, false)
		if err != nil || l == nil {
			continue
		}
		if i, found := slices.BinarySearch(*l, e); found {
			*l = slices.Delete(*l, i, i+1)
		}
	}
}

// Of returns the elements using v, in handle order. The slice aliases the
// index and must not be modified.
func (x *Index) Of(v handle.Handle) []handle.Handle {
	l, err := x.list(v, false)
	if err != nil || l == nil {
		return nil
	}
	return *l
}

// InUse reports whether any element uses v.
func (x *Index) InUse(v handle.Handle) bool { return len(x.Of(v)) > 0 }

// Common returns the elements using every vertex of verts whose type
// satisfies keep. A nil keep accepts everything.
func (x *Index) Common(verts []handle.Handle, keep func(handle.Handle) bool) []handle.Handle {
	if len(verts) == 0 {
		return nil
	}
	var out []handle.Handle
	for _, e := range x.Of(verts[0]) {
		if keep == nil || keep(e) {
			out = append(out, e)
		}
	}
	for _, v := range verts[1:] {
		if len(out) == 0 {
			break
		}
		out = intersectSorted(out, x.Of(v))
	}
	return out
}

// intersectSorted keeps the elements of a also present in b, reusing a.
func intersectSorted(a, b []handle.Handle) []handle.Handle {
	out := a[:0]
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}

// ClearVertex drops the list of a vertex about to be deleted.
func (x *Index) ClearVertex(v handle.Handle) {
	if l, err := x.list(v, false); err == nil && l != nil {
		*l = nil
	}
}

// DropSequence discards the lists of a reclaimed vertex sequence.
func (x *Index) DropSequence(start handle.Handle) {
	delete(x.blocks, start)
}
