// Package skin derives boundary entities from a set of same-dimension
// entities.
//
// Every (d-1)-dimensional side of every input entity is reduced to its
// sorted corner-vertex tuple, hashed, and counted. A side seen once lies on
// the skin, a side seen twice is interior and a side seen more often is
// reported as non-manifold rather than dropped. The walk is linear in the
// number of entity sides; no pair of entities is ever compared.
//
// The package works against the Mesh interface so it can be driven by the
// database or by a test double.
package skin
