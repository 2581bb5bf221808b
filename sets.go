package meshgo

import (
	"fmt"
	"slices"

	"github.com/hupe1980/meshgo/handle"
	"github.com/hupe1980/meshgo/hrange"
	"github.com/hupe1980/meshgo/internal/sequence"
)

// SetFlags configure entity-set behaviour.
type SetFlags = sequence.SetFlags

// SetTracking makes a set drop its members as they are deleted.
const SetTracking = sequence.SetTracking

func (db *DB) set(op string, h handle.Handle) (*sequence.SetRecord, error) {
	rec, err := db.seqs.Set(h)
	if err != nil {
		return nil, translateError(op, h, err)
	}
	return rec, nil
}

// AddEntities adds every entity of r to set. All of them must be live.
func (db *DB) AddEntities(set handle.Handle, r *hrange.Range) error {
	rec, err := db.set("add entities", set)
	if err != nil {
		return err
	}
	for h := range r.All() {
		if !db.seqs.IsLive(h) {
			return translateError("add entities", h, fmt.Errorf("%w: set member", ErrNotFound))
		}
	}
	rec.Contents.Merge(r)
	return nil
}

// RemoveEntities removes every entity of r from set. Entities that are not
// members are ignored.
func (db *DB) RemoveEntities(set handle.Handle, r *hrange.Range) error {
	rec, err := db.set("remove entities", set)
	if err != nil {
		return err
	}
	for first, last := range r.Pairs() {
		rec.Contents.EraseRange(first, last)
	}
	return nil
}

// SetContents returns a copy of the members of set.
func (db *DB) SetContents(set handle.Handle) (*hrange.Range, error) {
	rec, err := db.set("set contents", set)
	if err != nil {
		return nil, err
	}
	return rec.Contents.Clone(), nil
}

// AddChild links child under parent. Linking twice is a no-op.
func (db *DB) AddChild(parent, child handle.Handle) error {
	if parent == child {
		return translateError("add child", parent, fmt.Errorf("%w: set cannot be its own child", ErrInvalidArgument))
	}
	prec, err := db.set("add child", parent)
	if err != nil {
		return err
	}
	crec, err := db.set("add child", child)
	if err != nil {
		return err
	}
	if !slices.Contains(prec.Children, child) {
		prec.Children = append(prec.Children, child)
	}
	if !slices.Contains(crec.Parents, parent) {
		crec.Parents = append(crec.Parents, parent)
	}
	return nil
}

// RemoveChild unlinks child from parent.
func (db *DB) RemoveChild(parent, child handle.Handle) error {
	prec, err := db.set("remove child", parent)
	if err != nil {
		return err
	}
	crec, err := db.set("remove child", child)
	if err != nil {
		return err
	}
	prec.Children = removeHandle(prec.Children, child)
	crec.Parents = removeHandle(crec.Parents, parent)
	return nil
}

// Children returns the child sets of set in link order.
func (db *DB) Children(set handle.Handle) ([]handle.Handle, error) {
	rec, err := db.set("children", set)
	if err != nil {
		return nil, err
	}
	return slices.Clone(rec.Children), nil
}

// Parents returns the parent sets of set in link order.
func (db *DB) Parents(set handle.Handle) ([]handle.Handle, error) {
	rec, err := db.set("parents", set)
	if err != nil {
		return nil, err
	}
	return slices.Clone(rec.Parents), nil
}

func removeHandle(hs []handle.Handle, h handle.Handle) []handle.Handle {
	if i := slices.Index(hs, h); i >= 0 {
		return slices.Delete(hs, i, i+1)
	}
	return hs
}

// unlinkSet removes a set about to be deleted from its relatives.
func (db *DB) unlinkSet(h handle.Handle) error {
	rec, err := db.seqs.Set(h)
	if err != nil {
		return err
	}
	for _, p := range rec.Parents {
		if prec, err := db.seqs.Set(p); err == nil {
			prec.Children = removeHandle(prec.Children, h)
		}
	}
	for _, c := range rec.Children {
		if crec, err := db.seqs.Set(c); err == nil {
			crec.Parents = removeHandle(crec.Parents, h)
		}
	}
	return nil
}

// untrack removes h from every tracking set.
func (db *DB) untrack(h handle.Handle) {
	for ts := range db.tracking.All() {
		if rec, err := db.seqs.Set(ts); err == nil {
			rec.Contents.Erase(h)
		}
	}
}
