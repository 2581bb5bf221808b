package skin

import (
	"fmt"

	"github.com/hupe1980/meshgo/core"
	"github.com/hupe1980/meshgo/geom"
	"github.com/hupe1980/meshgo/handle"
	"github.com/hupe1980/meshgo/hrange"
)

// Classification partitions the edges of a set of 2-D faces.
type Classification struct {
	// Boundary edges are used by one face.
	Boundary *hrange.Range
	// Inferred edges are shared by two faces meeting at a sharp angle.
	Inferred *hrange.Range
	// NonManifold edges are used by more than two faces.
	NonManifold *hrange.Range
	// Other edges are shared by two faces meeting smoothly, or by a face
	// whose normal is undefined.
	Other *hrange.Range
	// BoundaryVertices are the vertices of Boundary edges.
	BoundaryVertices *hrange.Range
}

// Classify2DBoundary sorts the edges of faces into boundary, inferred
// (feature), non-manifold and other edges. An edge shared by two faces is
// inferred when the cosine of the angle between their unit normals is
// below cosThreshold. Normals come from Newell's method; a zero normal
// imposes no constraint. Missing edge entities are created.
func Classify2DBoundary(m Mesh, faces *hrange.Range, cosThreshold float64) (*Classification, error) {
	c := &Classification{
		Boundary:         hrange.New(),
		Inferred:         hrange.New(),
		NonManifold:      hrange.New(),
		Other:            hrange.New(),
		BoundaryVertices: hrange.New(),
	}
	if faces.Empty() {
		return c, nil
	}
	if faces.NumOfDimension(2) != faces.Size() {
		return nil, fmt.Errorf("%w: classification needs 2-D faces", core.ErrUnsupportedInput)
	}
	st, err := collect(m, faces, 2)
	if err != nil {
		return nil, err
	}
	normals, err := faceNormals(m, faces)
	if err != nil {
		return nil, err
	}

	for _, s := range st.sides {
		e, err := existingSide(m, s, 1)
		if err != nil {
			return nil, err
		}
		if e == handle.Null {
			if e, err = m.CreateElement(handle.Edge, s.oriented); err != nil {
				return nil, fmt.Errorf("create edge: %w", err)
			}
		}
		switch {
		case s.count == 1:
			c.Boundary.Insert(e)
			for _, v := range s.sorted {
				c.BoundaryVertices.Insert(v)
			}
		case s.count > 2:
			c.NonManifold.Insert(e)
		default:
			n1, n2 := normals[s.users[0]], normals[s.users[1]]
			if n1.LenSq() == 0 || n2.LenSq() == 0 {
				c.Other.Insert(e)
				continue
			}
			// Consistently oriented neighbours traverse a shared edge in
			// opposite directions.
			if s.forward[0] == s.forward[1] {
				n2 = n2.Scale(-1)
			}
			if n1.Dot(n2) < cosThreshold {
				c.Inferred.Insert(e)
			} else {
				c.Other.Insert(e)
			}
		}
	}
	return c, nil
}

// faceNormals returns the unit Newell normal of each face in input order.
func faceNormals(m Mesh, faces *hrange.Range) ([]geom.Vec3, error) {
	out := make([]geom.Vec3, 0, faces.Size())
	var pts []geom.Vec3
	for f := range faces.All() {
		conn, err := m.Connectivity(f)
		if err != nil {
			return nil, err
		}
		pts = pts[:0]
		for _, v := range corners(f.Type(), conn) {
			xyz, err := m.Coords(v)
			if err != nil {
				return nil, fmt.Errorf("face %s: %w", f, err)
			}
			pts = append(pts, geom.Vec3(xyz))
		}
		out = append(out, geom.Newell(pts).Normalize())
	}
	return out, nil
}
