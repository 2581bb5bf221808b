package meshgo

import (
	"bytes"
	"fmt"
	"time"

	"github.com/hupe1980/meshgo/handle"
	"github.com/hupe1980/meshgo/hrange"
	"github.com/hupe1980/meshgo/internal/tag"
)

// Tag identifies a tag definition.
type Tag = tag.ID

// TagInfo describes a tag definition.
type TagInfo = tag.Info

// DataType identifies how a tag's bytes are interpreted.
type DataType = tag.DataType

// Tag data types.
const (
	Opaque     = tag.Opaque
	Integer    = tag.Integer
	Double     = tag.Double
	HandleType = tag.HandleType
)

// StorageKind selects dense or sparse tag storage.
type StorageKind = tag.StorageKind

// Tag storage kinds.
const (
	// Dense keeps one value per entity of every sequence the tag touches.
	Dense = tag.Dense
	// Sparse keeps only explicitly set values.
	Sparse = tag.Sparse
)

// EncodeInts encodes values for an Integer tag.
func EncodeInts(vs ...int32) []byte { return tag.EncodeInts(vs...) }

// DecodeInts decodes the value of an Integer tag.
func DecodeInts(b []byte) []int32 { return tag.DecodeInts(b) }

// EncodeDoubles encodes values for a Double tag.
func EncodeDoubles(vs ...float64) []byte { return tag.EncodeDoubles(vs...) }

// DecodeDoubles decodes the value of a Double tag.
func DecodeDoubles(b []byte) []float64 { return tag.DecodeDoubles(b) }

// EncodeHandles encodes values for a HandleType tag.
func EncodeHandles(hs ...handle.Handle) []byte { return tag.EncodeHandles(hs...) }

// DecodeHandles decodes the value of a HandleType tag.
func DecodeHandles(b []byte) []handle.Handle { return tag.DecodeHandles(b) }

// CreateTag defines a tag of size bytes per entity. def, if not nil, is the
// value read from entities that were never set and must be size bytes long.
//
// Defining an existing name with an identical definition returns the
// existing tag; a conflicting definition fails with ErrDuplicateTag.
func (db *DB) CreateTag(name string, size int, dt DataType, kind StorageKind, def []byte) (Tag, error) {
	id, err := db.tags.Create(name, size, dt, kind, def)
	if err != nil {
		return 0, fmt.Errorf("create tag %q: %w", name, err)
	}
	db.logger.Debug("tag created", "tag", name, "size", size, "data_type", dt.String(), "storage", kind.String())
	return id, nil
}

// TagByName returns the tag with the given name.
func (db *DB) TagByName(name string) (Tag, error) {
	id, err := db.tags.ByName(name)
	if err != nil {
		return 0, fmt.Errorf("tag %q: %w", name, err)
	}
	return id, nil
}

// TagInfo returns the definition of a tag.
func (db *DB) TagInfo(t Tag) (TagInfo, error) {
	return db.tags.Info(t)
}

// Tags returns every defined tag.
func (db *DB) Tags() []Tag { return db.tags.Tags() }

// DeleteTag removes a tag and all of its values.
func (db *DB) DeleteTag(t Tag) error {
	return db.tags.Delete(t)
}

// SetTagData sets the value of t on h.
func (db *DB) SetTagData(t Tag, h handle.Handle, value []byte) error {
	start := time.Now()
	err := db.tags.Set(t, h, value)
	db.metrics.RecordTagWrite(1, time.Since(start), err)
	return translateError("set tag", h, err)
}

// GetTagData returns the value of t on h, or the tag's default when unset.
// A tag created without a default reads zero bytes.
func (db *DB) GetTagData(t Tag, h handle.Handle) ([]byte, error) {
	v, err := db.tags.Get(t, h)
	if err != nil {
		return nil, translateError("get tag", h, err)
	}
	return v, nil
}

// IsTagSet reports whether h holds an explicit value of t.
func (db *DB) IsTagSet(t Tag, h handle.Handle) (bool, error) {
	ok, err := db.tags.IsSet(t, h)
	return ok, translateError("is tag set", h, err)
}

// ClearTagData drops the explicit value of t on h.
func (db *DB) ClearTagData(t Tag, h handle.Handle) error {
	return translateError("clear tag", h, db.tags.Clear(t, h))
}

// SetTagDataRange sets the values of t on every entity of r. values holds
// the concatenated values in ascending handle order.
func (db *DB) SetTagDataRange(t Tag, r *hrange.Range, values []byte) error {
	start := time.Now()
	err := db.tags.SetRange(t, r, values)
	db.metrics.RecordTagWrite(r.Size(), time.Since(start), err)
	if err != nil {
		return fmt.Errorf("set tag range: %w", err)
	}
	return nil
}

// GetTagDataRange returns the concatenated values of t on every entity of
// r in ascending handle order.
func (db *DB) GetTagDataRange(t Tag, r *hrange.Range) ([]byte, error) {
	v, err := db.tags.GetRange(t, r)
	if err != nil {
		return nil, fmt.Errorf("get tag range: %w", err)
	}
	return v, nil
}

// TaggedEntities returns the entities holding an explicit value of t.
func (db *DB) TaggedEntities(t Tag) (*hrange.Range, error) {
	return db.tags.Tagged(t)
}

// EntitiesByTypeAndTag returns the live entities of type typ whose value of
// t equals value. When value equals the tag's default, entities that were
// never set match too.
func (db *DB) EntitiesByTypeAndTag(typ handle.Type, t Tag, value []byte) (*hrange.Range, error) {
	def, err := db.tags.Default(t)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(def, value) {
		return db.tags.EntitiesWithValue(t, typ, value)
	}
	tagged, err := db.tags.Tagged(t)
	if err != nil {
		return nil, err
	}
	matching, err := db.tags.EntitiesWithValue(t, typ, value)
	if err != nil {
		return nil, err
	}
	other := hrange.Subtract(tagged.SubsetByType(typ), matching)
	return hrange.Subtract(db.seqs.Entities(typ), other), nil
}

func (db *DB) checkDataType(t Tag, want DataType) (TagInfo, error) {
	info, err := db.tags.Info(t)
	if err != nil {
		return info, err
	}
	if info.DataType != want {
		return info, fmt.Errorf("%w: tag %q holds %s values, not %s", ErrInvalidArgument, info.Name, info.DataType, want)
	}
	return info, nil
}

// SetInt sets the int32 values of an Integer tag on h.
func (db *DB) SetInt(t Tag, h handle.Handle, vs ...int32) error {
	if _, err := db.checkDataType(t, Integer); err != nil {
		return err
	}
	return db.SetTagData(t, h, tag.EncodeInts(vs...))
}

// GetInt returns the int32 values of an Integer tag on h.
func (db *DB) GetInt(t Tag, h handle.Handle) ([]int32, error) {
	if _, err := db.checkDataType(t, Integer); err != nil {
		return nil, err
	}
	b, err := db.GetTagData(t, h)
	if err != nil {
		return nil, err
	}
	return tag.DecodeInts(b), nil
}

// SetDouble sets the float64 values of a Double tag on h.
func (db *DB) SetDouble(t Tag, h handle.Handle, vs ...float64) error {
	if _, err := db.checkDataType(t, Double); err != nil {
		return err
	}
	return db.SetTagData(t, h, tag.EncodeDoubles(vs...))
}

// GetDouble returns the float64 values of a Double tag on h.
func (db *DB) GetDouble(t Tag, h handle.Handle) ([]float64, error) {
	if _, err := db.checkDataType(t, Double); err != nil {
		return nil, err
	}
	b, err := db.GetTagData(t, h)
	if err != nil {
		return nil, err
	}
	return tag.DecodeDoubles(b), nil
}

// SetHandle sets the handle values of a HandleType tag on h.
func (db *DB) SetHandle(t Tag, h handle.Handle, vs ...handle.Handle) error {
	if _, err := db.checkDataType(t, HandleType); err != nil {
		return err
	}
	return db.SetTagData(t, h, tag.EncodeHandles(vs...))
}

// GetHandle returns the handle values of a HandleType tag on h.
func (db *DB) GetHandle(t Tag, h handle.Handle) ([]handle.Handle, error) {
	if _, err := db.checkDataType(t, HandleType); err != nil {
		return nil, err
	}
	b, err := db.GetTagData(t, h)
	if err != nil {
		return nil, err
	}
	return tag.DecodeHandles(b), nil
}
