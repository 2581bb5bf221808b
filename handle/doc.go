// Package handle defines entity handles and entity types.
//
// A Handle packs the entity type, its dimension and a per-type sequential
// index into one uint64. Handles order by type first, and types are ordered
// by dimension, so every type and every dimension occupies one contiguous
// interval of the handle space:
//
//	h, err := handle.Make(handle.Hex, 3, 42)
//	h.Type()  // handle.Hex
//	h.Dim()   // 3
//	h.Index() // 42
//
// All functions are pure.
package handle
