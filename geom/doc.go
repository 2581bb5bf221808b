// Package geom provides stateless geometric predicates for mesh elements:
// slab ray and segment clipping against boxes, ray-triangle intersection,
// separating-axis overlap tests between boxes and linear elements,
// closest-point queries and the inverse trilinear hexahedron map.
//
// Degenerate input never panics. A zero-length separating axis (for
// example the cross product of an element edge with a parallel box axis)
// imposes no constraint, and a singular Jacobian makes the inverse map
// report failure.
package geom
