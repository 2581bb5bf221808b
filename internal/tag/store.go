package tag

import (
	"bytes"
	"fmt"
	"maps"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/google/btree"
	"github.com/hupe1980/meshgo/core"
	"github.com/hupe1980/meshgo/handle"
	"github.com/hupe1980/meshgo/hrange"
	"github.com/hupe1980/meshgo/resource"
)

// Locator resolves a live entity to its sequence block and slot.
type Locator interface {
	Locate(h handle.Handle) (start handle.Handle, capacity int, slot core.SlotID, err error)
}

// denseBlock holds one tag's values for one sequence. len(data) is always
// capacity*size of the owning sequence.
type denseBlock struct {
	data     []byte
	explicit *roaring.Bitmap
}

type sparseItem struct {
	h handle.Handle
	v []byte
}

func sparseLess(a, b sparseItem) bool { return a.h < b.h }

type tagData struct {
	info   Info
	dense  map[handle.Handle]*denseBlock
	sparse *btree.BTreeG[sparseItem]
}

// Store holds tag definitions and values.
//
// Store is not safe for concurrent use.
type Store struct {
	loc    Locator
	rc     *resource.Controller
	tags   []*tagData
	byName map[string]ID
}

// NewStore creates a tag store resolving entities through loc. rc may be nil.
func NewStore(loc Locator, rc *resource.Controller) *Store {
	return &Store{
		loc:    loc,
		rc:     rc,
		byName: make(map[string]ID),
	}
}

// Create defines a tag. Redefining a name with an identical definition
// returns the existing ID; any difference fails with core.ErrDuplicateTag.
// A nil default means all zero bytes.
func (s *Store) Create(name string, size int, dt DataType, kind StorageKind, def []byte) (ID, error) {
	if name == "" {
		return 0, fmt.Errorf("%w: empty tag name", core.ErrInvalidArgument)
	}
	if size <= 0 || size%dt.ElemSize() != 0 {
		return 0, fmt.Errorf("%w: tag %q size %d invalid for %s", core.ErrInvalidArgument, name, size, dt)
	}
	if def == nil {
		def = make([]byte, size)
	}
	if len(def) != size {
		return 0, fmt.Errorf("%w: tag %q default has %d bytes, want %d", core.ErrInvalidArgument, name, len(def), size)
	}
	info := Info{Name: name, Size: size, DataType: dt, Storage: kind, Default: bytes.Clone(def)}
	if id, ok := s.byName[name]; ok {
		old := s.tags[id].info
		if old.Size == size && old.DataType == dt && old.Storage == kind && bytes.Equal(old.Default, def) {
			return id, nil
		}
		return 0, fmt.Errorf("%w: %q already defined as %d-byte %s %s", core.ErrDuplicateTag, name, old.Size, old.Storage, old.DataType)
	}
	td := &tagData{info: info}
	if kind == Dense {
		td.dense = make(map[handle.Handle]*denseBlock)
	} else {
		td.sparse = btree.NewG[sparseItem](32, sparseLess)
	}
	id := ID(len(s.tags))
	s.tags = append(s.tags, td)
	s.byName[name] = id
	return id, nil
}

func (s *Store) get(id ID) (*tagData, error) {
	if int(id) >= len(s.tags) || s.tags[id] == nil {
		return nil, fmt.Errorf("%w: tag %d", core.ErrNotFound, id)
	}
	return s.tags[id], nil
}

// ByName returns the ID of a named tag.
func (s *Store) ByName(name string) (ID, error) {
	id, ok := s.byName[name]
	if !ok {
		return 0, fmt.Errorf("%w: tag %q", core.ErrNotFound, name)
	}
	return id, nil
}

// Info returns the definition of a tag.
func (s *Store) Info(id ID) (Info, error) {
	td, err := s.get(id)
	if err != nil {
		return Info{}, err
	}
	info := td.info
	info.Default = bytes.Clone(info.Default)
	return info, nil
}

// Tags returns the IDs of all defined tags.
func (s *Store) Tags() []ID {
	ids := make([]ID, 0, len(s.byName))
	for _, id := range s.byName {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Delete removes a tag definition and all of its values.
func (s *Store) Delete(id ID) error {
	td, err := s.get(id)
	if err != nil {
		return err
	}
	for _, b := range td.dense {
		s.rc.ReleaseMemory(int64(len(b.data)))
	}
	delete(s.byName, td.info.Name)
	s.tags[id] = nil
	return nil
}

// block returns the dense block of the sequence starting at start, creating
// it filled with the default when create is set.
func (s *Store) block(td *tagData, start handle.Handle, capacity int, create bool) (*denseBlock, error) {
	if b, ok := td.dense[start]; ok {
		return b, nil
	}
	if !create {
		return nil, nil
	}
	n := capacity * td.info.Size
	if err := s.rc.Reserve(int64(n)); err != nil {
		return nil, fmt.Errorf("dense block for tag %q: %w", td.info.Name, err)
	}
	b := &denseBlock{data: make([]byte, n), explicit: roaring.New()}
	if !isZero(td.info.Default) {
		for off := 0; off < n; off += td.info.Size {
			copy(b.data[off:], td.info.Default)
		}
	}
	td.dense[start] = b
	return b, nil
}

func isZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

// Set stores value for entity h.
func (s *Store) Set(id ID, h handle.Handle, value []byte) error {
	td, err := s.get(id)
	if err != nil {
		return err
	}
	if len(value) != td.info.Size {
		return fmt.Errorf("%w: tag %q value has %d bytes, want %d", core.ErrInvalidArgument, td.info.Name, len(value), td.info.Size)
	}
	start, capacity, slot, err := s.loc.Locate(h)
	if err != nil {
		return err
	}
	if td.info.Storage == Sparse {
		td.sparse.ReplaceOrInsert(sparseItem{h: h, v: bytes.Clone(value)})
		return nil
	}
	b, err := s.block(td, start, capacity, true)
	if err != nil {
		return err
	}
	off := int(slot) * td.info.Size
	copy(b.data[off:off+td.info.Size], value)
	b.explicit.Add(uint32(slot))
	return nil
}

// Get returns the value of entity h, or the tag default when h has no
// explicit value. The returned slice is a copy.
func (s *Store) Get(id ID, h handle.Handle) ([]byte, error) {
	td, err := s.get(id)
	if err != nil {
		return nil, err
	}
	start, _, slot, err := s.loc.Locate(h)
	if err != nil {
		return nil, err
	}
	return s.value(td, h, start, slot), nil
}

func (s *Store) value(td *tagData, h, start handle.Handle, slot core.SlotID) []byte {
	if td.info.Storage == Sparse {
		if it, ok := td.sparse.Get(sparseItem{h: h}); ok {
			return bytes.Clone(it.v)
		}
		return bytes.Clone(td.info.Default)
	}
	b := td.dense[start]
	if b == nil {
		return bytes.Clone(td.info.Default)
	}
	off := int(slot) * td.info.Size
	return bytes.Clone(b.data[off : off+td.info.Size])
}

// IsSet reports whether h carries an explicit value.
func (s *Store) IsSet(id ID, h handle.Handle) (bool, error) {
	td, err := s.get(id)
	if err != nil {
		return false, err
	}
	start, _, slot, err := s.loc.Locate(h)
	if err != nil {
		return false, err
	}
	if td.info.Storage == Sparse {
		return td.sparse.Has(sparseItem{h: h}), nil
	}
	b := td.dense[start]
	return b != nil && b.explicit.Contains(uint32(slot)), nil
}

// Clear removes the explicit value of h, restoring the default.
func (s *Store) Clear(id ID, h handle.Handle) error {
	td, err := s.get(id)
	if err != nil {
		return err
	}
	start, _, slot, err := s.loc.Locate(h)
	if err != nil {
		return err
	}
	clearValue(td, h, start, slot)
	return nil
}

func clearValue(td *tagData, h, start handle.Handle, slot core.SlotID) {
	if td.info.Storage == Sparse {
		td.sparse.Delete(sparseItem{h: h})
		return
	}
	b := td.dense[start]
	if b == nil {
		return
	}
	off := int(slot) * td.info.Size
	copy(b.data[off:off+td.info.Size], td.info.Default)
	b.explicit.Remove(uint32(slot))
}

// SetRange stores consecutive values for every handle of r in ascending
// order. len(values) must be r.Size()*size.
func (s *Store) SetRange(id ID, r *hrange.Range, values []byte) error {
	td, err := s.get(id)
	if err != nil {
		return err
	}
	size := td.info.Size
	if len(values) != r.Size()*size {
		return fmt.Errorf("%w: tag %q got %d bytes for %d entities", core.ErrInvalidArgument, td.info.Name, len(values), r.Size())
	}
	i := 0
	for h := range r.All() {
		if err := s.Set(id, h, values[i:i+size]); err != nil {
			return err
		}
		i += size
	}
	return nil
}

// GetRange returns the concatenated values of every handle of r in
// ascending order.
func (s *Store) GetRange(id ID, r *hrange.Range) ([]byte, error) {
	td, err := s.get(id)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, r.Size()*td.info.Size)
	for h := range r.All() {
		start, _, slot, err := s.loc.Locate(h)
		if err != nil {
			return nil, err
		}
		out = append(out, s.value(td, h, start, slot)...)
	}
	return out, nil
}

// Tagged returns the entities holding an explicit value. For sparse tags
// this walks the ordered map; for dense tags it reads the explicit-value
// markers, since every entity nominally has a dense value.
func (s *Store) Tagged(id ID) (*hrange.Range, error) {
	td, err := s.get(id)
	if err != nil {
		return nil, err
	}
	r := hrange.New()
	if td.info.Storage == Sparse {
		td.sparse.Ascend(func(it sparseItem) bool {
			r.Insert(it.h)
			return true
		})
		return r, nil
	}
	for _, start := range slices.Sorted(maps.Keys(td.dense)) {
		it := td.dense[start].explicit.Iterator()
		for it.HasNext() {
			r.Insert(start.Add(uint64(it.Next())))
		}
	}
	return r, nil
}

// EntitiesWithValue returns the entities of type t whose explicit value
// equals value.
func (s *Store) EntitiesWithValue(id ID, t handle.Type, value []byte) (*hrange.Range, error) {
	td, err := s.get(id)
	if err != nil {
		return nil, err
	}
	tagged, err := s.Tagged(id)
	if err != nil {
		return nil, err
	}
	out := hrange.New()
	for h := range tagged.SubsetByType(t).All() {
		start, _, slot, err := s.loc.Locate(h)
		if err != nil {
			continue
		}
		if bytes.Equal(s.value(td, h, start, slot), value) {
			out.Insert(h)
		}
	}
	return out, nil
}

// Default returns a copy of a tag's default value.
func (s *Store) Default(id ID) ([]byte, error) {
	td, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return bytes.Clone(td.info.Default), nil
}

// PurgeEntity drops every value of h. It must run while h is still live.
// Sparse entries are removed; dense slots are reset to the default so a
// recycled slot never exposes a stale value.
func (s *Store) PurgeEntity(h handle.Handle) error {
	start, _, slot, err := s.loc.Locate(h)
	if err != nil {
		return err
	}
	for _, td := range s.tags {
		if td != nil {
			clearValue(td, h, start, slot)
		}
	}
	return nil
}

// DropSequence discards the dense blocks of a reclaimed sequence.
func (s *Store) DropSequence(start handle.Handle) {
	for _, td := range s.tags {
		if td == nil || td.dense == nil {
			continue
		}
		if b, ok := td.dense[start]; ok {
			s.rc.ReleaseMemory(int64(len(b.data)))
			delete(td.dense, start)
		}
	}
}
