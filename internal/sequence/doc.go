// Package sequence implements entity sequence storage.
//
// Entities of one type live in Sequences: contiguous, fixed-capacity blocks
// whose slot i holds the entity with handle Start()+i. A Sequence is one of
// a closed set of storage kinds (vertex coordinates, fixed-arity
// connectivity, variable-length connectivity, set records) selected by the
// entity type, so access is a switch on the kind rather than an interface
// call.
//
// The Manager owns all sequences. It indexes them by start handle in a
// B-tree and resolves a handle with one floor search plus handle
// arithmetic:
//
//	┌──────────── Vertex ────────────┐┌──────── Hex ─────────┐
//	│ seq@1 (1024) │ seq@1025 (2048) ││ seq@1 (1024) │ ...   │
//	└──────────────┴─────────────────┘└──────────────┴───────┘
//
// Occupancy is a roaring bitmap per sequence. Deleting leaves a gap instead
// of compacting; with RecycleHandles the gap is refilled by later creations
// before any sequence grows. Sequences are sized by doubling up to
// MaxSequenceSize, and block reservations get one dedicated sequence so
// bulk loaders receive contiguous handles and writable storage views.
package sequence
