package tag

import (
	"encoding/binary"
	"math"

	"github.com/hupe1980/meshgo/handle"
)

// DataType identifies how a tag's bytes are interpreted.
type DataType uint8

const (
	// Opaque values are raw bytes of any fixed size.
	Opaque DataType = iota
	// Integer values are little-endian int32 arrays.
	Integer
	// Double values are little-endian float64 arrays.
	Double
	// HandleType values are little-endian entity handle arrays.
	HandleType
)

func (d DataType) String() string {
	switch d {
	case Opaque:
		return "opaque"
	case Integer:
		return "integer"
	case Double:
		return "double"
	case HandleType:
		return "handle"
	}
	return "invalid"
}

// ElemSize returns the byte width of one element of d, or 1 for Opaque.
func (d DataType) ElemSize() int {
	switch d {
	case Integer:
		return 4
	case Double, HandleType:
		return 8
	}
	return 1
}

// StorageKind selects dense or sparse storage.
type StorageKind uint8

const (
	// Dense stores one value slot per entity in a per-sequence array.
	Dense StorageKind = iota
	// Sparse stores only explicitly set values in an ordered map.
	Sparse
)

func (k StorageKind) String() string {
	if k == Sparse {
		return "sparse"
	}
	return "dense"
}

// ID identifies a tag definition within a Store.
type ID uint32

// Info describes a tag definition.
type Info struct {
	Name     string
	Size     int
	DataType DataType
	Storage  StorageKind
	Default  []byte
}

// EncodeInts encodes int32 values for an Integer tag.
func EncodeInts(vs ...int32) []byte {
	out := make([]byte, 0, 4*len(vs))
	for _, v := range vs {
		out = binary.LittleEndian.AppendUint32(out, uint32(v))
	}
	return out
}

// DecodeInts decodes an Integer tag value.
func DecodeInts(b []byte) []int32 {
	out := make([]int32, len(b)/4)
	for i := range out {
		out[i] = int32(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return out
}

// EncodeDoubles encodes float64 values for a Double tag.
func EncodeDoubles(vs ...float64) []byte {
	out := make([]byte, 0, 8*len(vs))
	for _, v := range vs {
		out = binary.LittleEndian.AppendUint64(out, math.Float64bits(v))
	}
	return out
}

// DecodeDoubles decodes a Double tag value.
func DecodeDoubles(b []byte) []float64 {
	out := make([]float64, len(b)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[8*i:]))
	}
	return out
}

// EncodeHandles encodes handles for a handle-typed tag.
func EncodeHandles(hs ...handle.Handle) []byte {
	out := make([]byte, 0, 8*len(hs))
	for _, h := range hs {
		out = binary.LittleEndian.AppendUint64(out, uint64(h))
	}
	return out
}

// DecodeHandles decodes a handle-typed tag value.
func DecodeHandles(b []byte) []handle.Handle {
	out := make([]handle.Handle, len(b)/8)
	for i := range out {
		out[i] = handle.Handle(binary.LittleEndian.Uint64(b[8*i:]))
	}
	return out
}
