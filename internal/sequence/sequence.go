package sequence

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/meshgo/core"
	"github.com/hupe1980/meshgo/handle"
	"github.com/hupe1980/meshgo/hrange"
)

// Kind selects the storage variant of a sequence.
type Kind uint8

const (
	// KindVertex stores interleaved xyz coordinates.
	KindVertex Kind = iota
	// KindElement stores fixed-arity connectivity.
	KindElement
	// KindPoly stores variable-length connectivity (polygons, polyhedra).
	KindPoly
	// KindSet stores entity-set records.
	KindSet
)

func (k Kind) String() string {
	switch k {
	case KindVertex:
		return "vertex"
	case KindElement:
		return "element"
	case KindPoly:
		return "poly"
	case KindSet:
		return "set"
	}
	return "unknown"
}

// KindOf returns the storage kind used for entities of type t.
func KindOf(t handle.Type) Kind {
	switch {
	case t == handle.Vertex:
		return KindVertex
	case t == handle.EntitySet:
		return KindSet
	case t.IsVariable():
		return KindPoly
	}
	return KindElement
}

// SetFlags configure entity-set behaviour.
type SetFlags uint8

const (
	// SetTracking removes deleted entities from the set's contents.
	SetTracking SetFlags = 1 << iota
)

// SetRecord is the payload of an entity-set slot.
type SetRecord struct {
	Flags    SetFlags
	Contents hrange.Range
	Parents  []handle.Handle
	Children []handle.Handle
}

// Sequence is a contiguous block of storage for entities of one type.
// Slot i holds the entity with handle Start()+i. Capacity is fixed at
// creation; slots [0, used) have been issued at least once.
type Sequence struct {
	start    handle.Handle
	typ      handle.Type
	kind     Kind
	nodes    int
	capacity int
	used     int
	bytes    int64

	live *roaring.Bitmap // slots holding a live entity
	free *roaring.Bitmap // issued slots available for recycling

	coords []float64
	conn   []handle.Handle
	poly   [][]handle.Handle
	sets   []SetRecord
}

// slotBytes estimates the storage cost of one slot.
func slotBytes(kind Kind, nodes int) int64 {
	switch kind {
	case KindVertex:
		return 3 * 8
	case KindElement:
		return int64(nodes) * 8
	case KindPoly:
		return 24
	default:
		return 96
	}
}

func newSequence(start handle.Handle, nodes, capacity int) *Sequence {
	t := start.Type()
	s := &Sequence{
		start:    start,
		typ:      t,
		kind:     KindOf(t),
		nodes:    nodes,
		capacity: capacity,
		live:     roaring.New(),
		free:     roaring.New(),
	}
	s.bytes = slotBytes(s.kind, nodes) * int64(capacity)
	switch s.kind {
	case KindVertex:
		s.coords = make([]float64, 3*capacity)
	case KindElement:
		s.conn = make([]handle.Handle, nodes*capacity)
	case KindPoly:
		s.poly = make([][]handle.Handle, capacity)
	case KindSet:
		s.sets = make([]SetRecord, capacity)
	}
	return s
}

// Start returns the handle of slot 0.
func (s *Sequence) Start() handle.Handle { return s.start }

// End returns the handle of the last slot.
func (s *Sequence) End() handle.Handle { return s.start.Add(uint64(s.capacity - 1)) }

// Type returns the entity type stored in the sequence.
func (s *Sequence) Type() handle.Type { return s.typ }

// Kind returns the storage variant.
func (s *Sequence) Kind() Kind { return s.kind }

// Nodes returns the connectivity length of fixed-arity elements, 0 otherwise.
func (s *Sequence) Nodes() int { return s.nodes }

// Capacity returns the number of slots.
func (s *Sequence) Capacity() int { return s.capacity }

// Used returns the number of slots issued so far.
func (s *Sequence) Used() int { return s.used }

// LiveCount returns the number of live entities.
func (s *Sequence) LiveCount() int { return int(s.live.GetCardinality()) }

// Bytes returns the reserved storage size.
func (s *Sequence) Bytes() int64 { return s.bytes }

// Covers reports whether h falls inside the sequence's handle block.
func (s *Sequence) Covers(h handle.Handle) bool {
	return h >= s.start && h <= s.End()
}

// Slot returns the slot of h. The caller guarantees Covers(h).
func (s *Sequence) Slot(h handle.Handle) core.SlotID {
	return core.SlotID(h - s.start)
}

// Handle returns the handle of slot.
func (s *Sequence) Handle(slot core.SlotID) handle.Handle {
	return s.start.Add(uint64(slot))
}

// IsLive reports whether slot holds a live entity.
func (s *Sequence) IsLive(slot core.SlotID) bool {
	return s.live.Contains(uint32(slot))
}

// LiveHandles yields the live handles in ascending order.
func (s *Sequence) LiveHandles() iter.Seq[handle.Handle] {
	return func(yield func(handle.Handle) bool) {
		it := s.live.Iterator()
		for it.HasNext() {
			if !yield(s.Handle(core.SlotID(it.Next()))) {
				return
			}
		}
	}
}

// AppendLive inserts the live handles into r.
func (s *Sequence) AppendLive(r *hrange.Range) {
	if int(s.live.GetCardinality()) == s.capacity {
		r.InsertRange(s.start, s.End())
		return
	}
	for h := range s.LiveHandles() {
		r.Insert(h)
	}
}

// CoordsAt returns the coordinate triple of a vertex slot.
func (s *Sequence) CoordsAt(slot core.SlotID) [3]float64 {
	i := 3 * int(slot)
	return [3]float64{s.coords[i], s.coords[i+1], s.coords[i+2]}
}

// ConnAt returns the connectivity of an element slot. The slice aliases the
// sequence storage and must not be retained across mutations.
func (s *Sequence) ConnAt(slot core.SlotID) []handle.Handle {
	if s.kind == KindPoly {
		return s.poly[slot]
	}
	i := s.nodes * int(slot)
	return s.conn[i : i+s.nodes : i+s.nodes]
}

// SetAt returns the record of a set slot.
func (s *Sequence) SetAt(slot core.SlotID) *SetRecord {
	return &s.sets[slot]
}

// clearSlot resets the payload of a slot.
func (s *Sequence) clearSlot(slot core.SlotID) {
	switch s.kind {
	case KindVertex:
		i := 3 * int(slot)
		s.coords[i], s.coords[i+1], s.coords[i+2] = 0, 0, 0
	case KindElement:
		clear(s.ConnAt(slot))
	case KindPoly:
		s.poly[slot] = nil
	case KindSet:
		s.sets[slot] = SetRecord{}
	}
}
