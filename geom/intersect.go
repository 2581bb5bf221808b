package geom

import (
	"fmt"
	"math"

	"github.com/hupe1980/meshgo/core"
	"github.com/hupe1980/meshgo/handle"
	"github.com/hupe1980/meshgo/internal/topo"
)

// SegmentBoxIntersect clips the parameter interval [start, end] of the line
// pt + s·dir against box using the slab method. It returns the clipped
// interval and whether it is non-empty. Along an axis where dir has no
// component the line is kept only if pt lies within that slab.
func SegmentBoxIntersect(box BoundingBox, pt, dir Vec3, start, end float64) (float64, float64, bool) {
	for i := range 3 {
		if dir[i] == 0 {
			if pt[i] < box.Min[i] || pt[i] > box.Max[i] {
				return start, end, false
			}
			continue
		}
		t1 := (box.Min[i] - pt[i]) / dir[i]
		t2 := (box.Max[i] - pt[i]) / dir[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		start = max(start, t1)
		end = min(end, t2)
		if start > end {
			return start, end, false
		}
	}
	return start, end, true
}

// RayBoxIntersect intersects the ray origin + t·dir, t ≥ 0, with box
// inflated by tol. It returns the entry and exit parameters.
func RayBoxIntersect(origin, dir Vec3, box BoundingBox, tol float64) (enter, exit float64, ok bool) {
	grown := BoundingBox{
		Min: box.Min.Sub(Vec3{tol, tol, tol}),
		Max: box.Max.Add(Vec3{tol, tol, tol}),
	}
	return SegmentBoxIntersect(grown, origin, dir, 0, math.Inf(1))
}

// RayTriIntersect intersects the ray origin + t·dir, t ≥ 0, with a
// triangle. Barycentric coordinates may undershoot by tol. A positive
// cutoff rejects hits farther than cutoff along the ray. Rays parallel to
// the triangle plane never hit.
func RayTriIntersect(origin, dir Vec3, tri [3]Vec3, tol, cutoff float64) (float64, bool) {
	e1 := tri[1].Sub(tri[0])
	e2 := tri[2].Sub(tri[0])
	p := dir.Cross(e2)
	det := e1.Dot(p)
	scale := e1.Len() * e2.Len() * dir.Len()
	if scale == 0 || math.Abs(det) <= 1e-14*scale {
		return 0, false
	}
	inv := 1 / det
	s := origin.Sub(tri[0])
	beta := s.Dot(p) * inv
	if beta < -tol || beta > 1+tol {
		return 0, false
	}
	q := s.Cross(e1)
	gamma := dir.Dot(q) * inv
	if gamma < -tol || beta+gamma > 1+tol {
		return 0, false
	}
	t := e2.Dot(q) * inv
	if t < -tol {
		return 0, false
	}
	if cutoff > 0 && t > cutoff {
		return 0, false
	}
	return max(t, 0), true
}

// BoxPlaneOverlap reports whether the plane n·x + d = 0 passes through the
// box [bmin, bmax].
func BoxPlaneOverlap(n Vec3, d float64, bmin, bmax Vec3) bool {
	var vmin, vmax Vec3
	for i := range 3 {
		if n[i] > 0 {
			vmin[i], vmax[i] = bmin[i], bmax[i]
		} else {
			vmin[i], vmax[i] = bmax[i], bmin[i]
		}
	}
	if n.Dot(vmin)+d > 0 {
		return false
	}
	return n.Dot(vmax)+d >= 0
}

var boxAxes = [3]Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

// separated reports whether axis separates pts (relative to the box
// center) from a box of half extents half. A zero axis imposes no
// constraint.
func separated(pts []Vec3, axis, half Vec3) bool {
	if axis.LenSq() == 0 {
		return false
	}
	r := half[0]*math.Abs(axis[0]) + half[1]*math.Abs(axis[1]) + half[2]*math.Abs(axis[2])
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range pts {
		d := p.Dot(axis)
		lo = min(lo, d)
		hi = max(hi, d)
	}
	return lo > r || hi < -r
}

// satOverlap runs the separating-axis test between a box and a convex
// element given by its corners, edges and face corner lists.
func satOverlap(corners []Vec3, edges, faces [][]int, center, half Vec3) bool {
	rel := make([]Vec3, len(corners))
	for i, c := range corners {
		rel[i] = c.Sub(center)
	}
	for _, a := range boxAxes {
		if separated(rel, a, half) {
			return false
		}
	}
	face := make([]Vec3, 0, 4)
	for _, f := range faces {
		face = face[:0]
		for _, c := range f {
			face = append(face, rel[c])
		}
		if separated(rel, Newell(face), half) {
			return false
		}
	}
	for _, e := range edges {
		dir := rel[e[1]].Sub(rel[e[0]])
		for _, a := range boxAxes {
			if separated(rel, dir.Cross(a), half) {
				return false
			}
		}
	}
	return true
}

var triFace = [][]int{{0, 1, 2}}

// BoxTriOverlap reports whether a triangle intersects the box with the
// given center and half extents.
func BoxTriOverlap(tri [3]Vec3, center, halfDims Vec3) bool {
	edges, _ := topo.Sides(handle.Tri, 1)
	return satOverlap(tri[:], edges, triFace, center, halfDims)
}

// BoxTetOverlap reports whether a linear tetrahedron intersects the box.
func BoxTetOverlap(corners [4]Vec3, center, halfDims Vec3) bool {
	ok, _ := BoxLinearElemOverlap(corners[:], handle.Tet, center, halfDims)
	return ok
}

// BoxHexOverlap reports whether a linear hexahedron intersects the box.
// Non-planar faces are treated through their Newell normals.
func BoxHexOverlap(corners [8]Vec3, center, halfDims Vec3) bool {
	ok, _ := BoxLinearElemOverlap(corners[:], handle.Hex, center, halfDims)
	return ok
}

// BoxLinearElemOverlap reports whether a linear element of type t with the
// given corner coordinates intersects the box. Only corner nodes are used.
func BoxLinearElemOverlap(corners []Vec3, t handle.Type, center, halfDims Vec3) (bool, error) {
	n := t.NumCorners()
	if n == 0 || len(corners) < n {
		return false, fmt.Errorf("%w: %s with %d corners", core.ErrUnsupportedInput, t, len(corners))
	}
	corners = corners[:n]
	if t == handle.Edge {
		return satOverlap(corners, [][]int{{0, 1}}, nil, center, halfDims), nil
	}
	edges, err := topo.Sides(t, 1)
	if err != nil {
		return false, err
	}
	// For 2-D types the only face is the element itself.
	faces, err := topo.Sides(t, 2)
	if err != nil {
		return false, err
	}
	return satOverlap(corners, edges, faces, center, halfDims), nil
}
