package sequence

import (
	"fmt"
	"iter"
	"slices"

	"github.com/hupe1980/meshgo/core"
	"github.com/hupe1980/meshgo/handle"
	"github.com/hupe1980/meshgo/hrange"
	"github.com/hupe1980/meshgo/resource"
	"github.com/tidwall/btree"
)

const (
	// DefaultInitialSequenceSize is the capacity of the first sequence of a type.
	DefaultInitialSequenceSize = 1024
	// DefaultMaxSequenceSize caps the doubling growth policy.
	DefaultMaxSequenceSize = 1 << 16
)

// Config controls allocation policy.
type Config struct {
	// InitialSequenceSize is the capacity of the first sequence of each type.
	InitialSequenceSize int
	// MaxSequenceSize caps the capacity of sequences grown by doubling.
	// Reserved blocks may exceed it.
	MaxSequenceSize int
	// RecycleHandles reuses the handles of deleted entities. When false,
	// handles are issued monotonically per type and never reused.
	RecycleHandles bool
	// ReclaimEmptySequences releases a sequence once its last entity is
	// deleted.
	ReclaimEmptySequences bool
}

func (c Config) withDefaults() Config {
	if c.InitialSequenceSize <= 0 {
		c.InitialSequenceSize = DefaultInitialSequenceSize
	}
	if c.MaxSequenceSize <= 0 {
		c.MaxSequenceSize = DefaultMaxSequenceSize
	}
	if c.MaxSequenceSize < c.InitialSequenceSize {
		c.MaxSequenceSize = c.InitialSequenceSize
	}
	return c
}

// typeState is the per-type allocation state.
type typeState struct {
	nextIndex uint64
	nextSize  int
	live      int
	freeSlots int
	open      map[int]*Sequence // by node count
}

// Manager owns every sequence and maps handles to storage. Lookup is a
// floor search over sequence start handles followed by handle arithmetic;
// no per-entity hashing is involved.
//
// Manager is not safe for concurrent use.
type Manager struct {
	cfg   Config
	rc    *resource.Controller
	index btree.Map[handle.Handle, *Sequence]
	types [handle.TypeMax]typeState
	hint  *Sequence
}

// NewManager creates a sequence manager. rc may be nil.
func NewManager(cfg Config, rc *resource.Controller) *Manager {
	cfg = cfg.withDefaults()
	m := &Manager{cfg: cfg, rc: rc}
	for t := range m.types {
		m.types[t] = typeState{
			nextIndex: 1,
			nextSize:  cfg.InitialSequenceSize,
			open:      make(map[int]*Sequence),
		}
	}
	return m
}

// Config returns the effective allocation policy.
func (m *Manager) Config() Config { return m.cfg }

// lookup returns the sequence covering h, or nil.
func (m *Manager) lookup(h handle.Handle) *Sequence {
	if s := m.hint; s != nil && s.Covers(h) {
		return s
	}
	var found *Sequence
	m.index.Descend(h, func(_ handle.Handle, s *Sequence) bool {
		found = s
		return false
	})
	if found == nil || !found.Covers(h) {
		return nil
	}
	m.hint = found
	return found
}

// Find returns the sequence and slot of a live entity.
func (m *Manager) Find(h handle.Handle) (*Sequence, core.SlotID, error) {
	if !h.Valid() {
		return nil, 0, fmt.Errorf("%w: %d", core.ErrInvalidHandle, uint64(h))
	}
	s := m.lookup(h)
	if s == nil {
		return nil, 0, fmt.Errorf("%w: %s", core.ErrNotFound, h)
	}
	slot := s.Slot(h)
	if !s.IsLive(slot) {
		return nil, 0, fmt.Errorf("%w: %s", core.ErrNotFound, h)
	}
	return s, slot, nil
}

// IsLive reports whether h identifies a live entity.
func (m *Manager) IsLive(h handle.Handle) bool {
	if !h.Valid() {
		return false
	}
	s := m.lookup(h)
	return s != nil && s.IsLive(s.Slot(h))
}

// Locate returns the block start, capacity and slot of a live entity. It
// is the index-based relation tag storage uses to reach per-sequence data.
func (m *Manager) Locate(h handle.Handle) (handle.Handle, int, core.SlotID, error) {
	s, slot, err := m.Find(h)
	if err != nil {
		return handle.Null, 0, 0, err
	}
	return s.start, s.capacity, slot, nil
}

// newSequence allocates a sequence of capacity slots for type t and
// registers it in the index.
func (m *Manager) newSequence(t handle.Type, nodes, capacity int) (*Sequence, error) {
	ts := &m.types[t]
	if capacity <= 0 || uint64(capacity) > uint64(core.MaxSlotID)+1 {
		return nil, fmt.Errorf("%w: sequence capacity %d", core.ErrInvalidArgument, capacity)
	}
	if ts.nextIndex+uint64(capacity)-1 > handle.MaxIndex {
		return nil, fmt.Errorf("%w: %s handle space exhausted", core.ErrAllocationFailure, t)
	}
	bytes := slotBytes(KindOf(t), nodes) * int64(capacity)
	if err := m.rc.Reserve(bytes); err != nil {
		return nil, fmt.Errorf("allocate %s sequence of %d: %w", t, capacity, err)
	}
	s := newSequence(handle.New(t, ts.nextIndex), nodes, capacity)
	ts.nextIndex += uint64(capacity)
	m.index.Set(s.start, s)
	return s, nil
}

// allocate issues one slot for an entity of type t.
func (m *Manager) allocate(t handle.Type, nodes int) (*Sequence, core.SlotID, error) {
	ts := &m.types[t]
	if m.cfg.RecycleHandles && ts.freeSlots > 0 {
		for s := range m.Sequences(t) {
			if s.nodes != nodes || s.free.IsEmpty() {
				continue
			}
			slot := s.free.Minimum()
			s.free.Remove(slot)
			ts.freeSlots--
			s.live.Add(slot)
			ts.live++
			return s, core.SlotID(slot), nil
		}
	}
	s := ts.open[nodes]
	if s == nil || s.used == s.capacity {
		size := ts.nextSize
		var err error
		s, err = m.newSequence(t, nodes, size)
		if err != nil {
			return nil, 0, err
		}
		ts.nextSize = min(size*2, m.cfg.MaxSequenceSize)
		ts.open[nodes] = s
	}
	slot := core.SlotID(s.used)
	s.used++
	s.live.Add(uint32(slot))
	ts.live++
	return s, slot, nil
}

// reserve issues count contiguous slots in one sequence.
func (m *Manager) reserve(t handle.Type, nodes, count int) (*Sequence, core.SlotID, error) {
	if count <= 0 {
		return nil, 0, fmt.Errorf("%w: block size %d", core.ErrInvalidArgument, count)
	}
	ts := &m.types[t]
	s := ts.open[nodes]
	if s == nil || s.capacity-s.used < count {
		var err error
		s, err = m.newSequence(t, nodes, count)
		if err != nil {
			return nil, 0, err
		}
	}
	slot := core.SlotID(s.used)
	s.used += count
	s.live.AddRange(uint64(slot), uint64(slot)+uint64(count))
	ts.live += count
	return s, slot, nil
}

// CreateVertex stores a vertex and returns its handle.
func (m *Manager) CreateVertex(x, y, z float64) (handle.Handle, error) {
	s, slot, err := m.allocate(handle.Vertex, 0)
	if err != nil {
		return handle.Null, err
	}
	i := 3 * int(slot)
	s.coords[i], s.coords[i+1], s.coords[i+2] = x, y, z
	return s.Handle(slot), nil
}

// CreateElement stores an element of type t. The connectivity is copied.
func (m *Manager) CreateElement(t handle.Type, conn []handle.Handle) (handle.Handle, error) {
	if !t.IsElement() {
		return handle.Null, fmt.Errorf("%w: %s is not an element type", core.ErrUnsupportedInput, t)
	}
	if !t.ValidNodeCount(len(conn)) {
		return handle.Null, fmt.Errorf("%w: %s with %d nodes", core.ErrInvalidArgument, t, len(conn))
	}
	nodes := len(conn)
	if t.IsVariable() {
		nodes = 0
	}
	s, slot, err := m.allocate(t, nodes)
	if err != nil {
		return handle.Null, err
	}
	if s.kind == KindPoly {
		s.poly[slot] = slices.Clone(conn)
	} else {
		copy(s.ConnAt(slot), conn)
	}
	return s.Handle(slot), nil
}

// CreateSet stores an empty entity set.
func (m *Manager) CreateSet(flags SetFlags) (handle.Handle, error) {
	s, slot, err := m.allocate(handle.EntitySet, 0)
	if err != nil {
		return handle.Null, err
	}
	s.sets[slot] = SetRecord{Flags: flags}
	return s.Handle(slot), nil
}

// ReserveVertices issues count contiguous vertex handles and returns the
// first handle plus a writable view of 3*count interleaved coordinates.
func (m *Manager) ReserveVertices(count int) (handle.Handle, []float64, error) {
	s, slot, err := m.reserve(handle.Vertex, 0, count)
	if err != nil {
		return handle.Null, nil, err
	}
	i := 3 * int(slot)
	return s.Handle(slot), s.coords[i : i+3*count : i+3*count], nil
}

// ReserveElements issues count contiguous element handles of type t with
// nodes nodes each and returns the first handle plus a writable view of
// nodes*count connectivity entries.
func (m *Manager) ReserveElements(t handle.Type, nodes, count int) (handle.Handle, []handle.Handle, error) {
	if !t.IsElement() || t.IsVariable() {
		return handle.Null, nil, fmt.Errorf("%w: block reservation for %s", core.ErrUnsupportedInput, t)
	}
	if !t.ValidNodeCount(nodes) {
		return handle.Null, nil, fmt.Errorf("%w: %s with %d nodes", core.ErrInvalidArgument, t, nodes)
	}
	s, slot, err := m.reserve(t, nodes, count)
	if err != nil {
		return handle.Null, nil, err
	}
	i := nodes * int(slot)
	n := nodes * count
	return s.Handle(slot), s.conn[i : i+n : i+n], nil
}

// Delete frees the slot of h. It reports whether the owning sequence was
// reclaimed as a result.
func (m *Manager) Delete(h handle.Handle) (bool, error) {
	s, slot, err := m.Find(h)
	if err != nil {
		return false, err
	}
	ts := &m.types[s.typ]
	s.live.Remove(uint32(slot))
	s.clearSlot(slot)
	ts.live--
	if m.cfg.RecycleHandles {
		s.free.Add(uint32(slot))
		ts.freeSlots++
	}
	// The open sequence still has unissued slots; keep it for the next
	// allocation instead of growing a new one.
	if m.cfg.ReclaimEmptySequences && s.live.IsEmpty() && !m.isOpen(s) {
		m.reclaim(s)
		return true, nil
	}
	return false, nil
}

func (m *Manager) isOpen(s *Sequence) bool {
	return m.types[s.typ].open[s.nodes] == s && s.used < s.capacity
}

// reclaim removes an empty sequence and releases its storage. Growth
// restarts at the initial size once a type holds no sequence at all.
func (m *Manager) reclaim(s *Sequence) {
	ts := &m.types[s.typ]
	ts.freeSlots -= int(s.free.GetCardinality())
	if ts.open[s.nodes] == s {
		delete(ts.open, s.nodes)
	}
	if m.hint == s {
		m.hint = nil
	}
	m.index.Delete(s.start)
	m.rc.ReleaseMemory(s.bytes)
	if m.NumSequences(s.typ) == 0 {
		ts.nextSize = m.cfg.InitialSequenceSize
	}
}

// Coords returns the coordinates of a vertex.
func (m *Manager) Coords(h handle.Handle) ([3]float64, error) {
	s, slot, err := m.find(h, KindVertex)
	if err != nil {
		return [3]float64{}, err
	}
	return s.CoordsAt(slot), nil
}

// SetCoords overwrites the coordinates of a vertex.
func (m *Manager) SetCoords(h handle.Handle, xyz [3]float64) error {
	s, slot, err := m.find(h, KindVertex)
	if err != nil {
		return err
	}
	copy(s.coords[3*int(slot):], xyz[:])
	return nil
}

// Connectivity returns the connectivity of an element. The slice aliases
// internal storage.
func (m *Manager) Connectivity(h handle.Handle) ([]handle.Handle, error) {
	s, slot, err := m.Find(h)
	if err != nil {
		return nil, err
	}
	if s.kind != KindElement && s.kind != KindPoly {
		return nil, fmt.Errorf("%w: %s has no connectivity", core.ErrUnsupportedInput, h)
	}
	return s.ConnAt(slot), nil
}

// SetConnectivity overwrites the connectivity of an element.
func (m *Manager) SetConnectivity(h handle.Handle, conn []handle.Handle) error {
	s, slot, err := m.Find(h)
	if err != nil {
		return err
	}
	switch s.kind {
	case KindElement:
		if len(conn) != s.nodes {
			return fmt.Errorf("%w: %s expects %d nodes, got %d", core.ErrInvalidArgument, h, s.nodes, len(conn))
		}
		copy(s.ConnAt(slot), conn)
	case KindPoly:
		if !s.typ.ValidNodeCount(len(conn)) {
			return fmt.Errorf("%w: %s with %d nodes", core.ErrInvalidArgument, s.typ, len(conn))
		}
		s.poly[slot] = slices.Clone(conn)
	default:
		return fmt.Errorf("%w: %s has no connectivity", core.ErrUnsupportedInput, h)
	}
	return nil
}

// Set returns the record of an entity set.
func (m *Manager) Set(h handle.Handle) (*SetRecord, error) {
	s, slot, err := m.find(h, KindSet)
	if err != nil {
		return nil, err
	}
	return s.SetAt(slot), nil
}

func (m *Manager) find(h handle.Handle, kind Kind) (*Sequence, core.SlotID, error) {
	s, slot, err := m.Find(h)
	if err != nil {
		return nil, 0, err
	}
	if s.kind != kind {
		return nil, 0, fmt.Errorf("%w: %s is not a %s", core.ErrUnsupportedInput, h, kind)
	}
	return s, slot, nil
}

// Sequences yields the sequences of type t in handle order.
func (m *Manager) Sequences(t handle.Type) iter.Seq[*Sequence] {
	return func(yield func(*Sequence) bool) {
		m.index.Ascend(handle.First(t), func(_ handle.Handle, s *Sequence) bool {
			if s.typ != t {
				return false
			}
			return yield(s)
		})
	}
}

// NumSequences returns the number of sequences of type t.
func (m *Manager) NumSequences(t handle.Type) int {
	n := 0
	for range m.Sequences(t) {
		n++
	}
	return n
}

// Count returns the number of live entities of type t.
func (m *Manager) Count(t handle.Type) int {
	if t >= handle.TypeMax {
		return 0
	}
	return m.types[t].live
}

// Entities returns the live entities of type t.
func (m *Manager) Entities(t handle.Type) *hrange.Range {
	r := hrange.New()
	for s := range m.Sequences(t) {
		s.AppendLive(r)
	}
	return r
}

// EntitiesOfDim returns the live entities of dimension d.
func (m *Manager) EntitiesOfDim(d int) *hrange.Range {
	r := hrange.New()
	for _, t := range handle.TypesOfDim(d) {
		for s := range m.Sequences(t) {
			s.AppendLive(r)
		}
	}
	return r
}
