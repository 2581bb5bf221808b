package topo

import (
	"fmt"

	"github.com/hupe1980/meshgo/core"
	"github.com/hupe1980/meshgo/handle"
)

// Corner-index tables. Faces of 3D types are ordered so their right-hand
// normal points out of the element.
var (
	triEdges  = [][]int{{0, 1}, {1, 2}, {2, 0}}
	quadEdges = [][]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}}

	tetEdges = [][]int{{0, 1}, {1, 2}, {2, 0}, {0, 3}, {1, 3}, {2, 3}}
	tetFaces = [][]int{{0, 1, 3}, {1, 2, 3}, {0, 3, 2}, {0, 2, 1}}

	pyramidEdges = [][]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}, {0, 4}, {1, 4}, {2, 4}, {3, 4}}
	pyramidFaces = [][]int{{0, 1, 4}, {1, 2, 4}, {2, 3, 4}, {3, 0, 4}, {0, 3, 2, 1}}

	prismEdges = [][]int{{0, 1}, {1, 2}, {2, 0}, {0, 3}, {1, 4}, {2, 5}, {3, 4}, {4, 5}, {5, 3}}
	prismFaces = [][]int{{0, 1, 4, 3}, {1, 2, 5, 4}, {0, 3, 5, 2}, {0, 2, 1}, {3, 4, 5}}

	hexEdges = [][]int{
		{0, 1}, {1, 2}, {2, 3}, {3, 0},
		{0, 4}, {1, 5}, {2, 6}, {3, 7},
		{4, 5}, {5, 6}, {6, 7}, {7, 4},
	}
	hexFaces = [][]int{
		{0, 1, 5, 4}, {1, 2, 6, 5}, {2, 3, 7, 6},
		{3, 0, 4, 7}, {0, 3, 2, 1}, {4, 5, 6, 7},
	}
)

var (
	cornerCache = map[int][][]int{}
	wholeCache  = map[int][][]int{}
)

func init() {
	for n := 2; n <= 8; n++ {
		corners := make([][]int, n)
		whole := make([]int, n)
		for i := range n {
			corners[i] = []int{i}
			whole[i] = i
		}
		cornerCache[n] = corners
		wholeCache[n] = [][]int{whole}
	}
}

// Sides returns the corner-index lists of the d-dimensional sides of a
// fixed-arity element of type t. d == 0 lists the corners; d equal to the
// element dimension lists the element itself. Variable-arity types and
// Knife are not tabulated.
func Sides(t handle.Type, d int) ([][]int, error) {
	if !t.IsElement() || t.IsVariable() || t == handle.Knife {
		return nil, fmt.Errorf("%w: no side table for %s", core.ErrUnsupportedInput, t)
	}
	dim := t.Dimension()
	if d < 0 || d > dim {
		return nil, fmt.Errorf("%w: %s has no %d-dimensional sides", core.ErrInvalidArgument, t, d)
	}
	n := t.NumCorners()
	switch d {
	case 0:
		return cornerCache[n], nil
	case dim:
		return wholeCache[n], nil
	case 1:
		switch t {
		case handle.Tri:
			return triEdges, nil
		case handle.Quad:
			return quadEdges, nil
		case handle.Tet:
			return tetEdges, nil
		case handle.Pyramid:
			return pyramidEdges, nil
		case handle.Prism:
			return prismEdges, nil
		case handle.Hex:
			return hexEdges, nil
		}
	case 2:
		switch t {
		case handle.Tet:
			return tetFaces, nil
		case handle.Pyramid:
			return pyramidFaces, nil
		case handle.Prism:
			return prismFaces, nil
		case handle.Hex:
			return hexFaces, nil
		}
	}
	return nil, fmt.Errorf("%w: no side table for %s dimension %d", core.ErrUnsupportedInput, t, d)
}

// SideType returns the entity type of a side with n corners in dimension d.
func SideType(d, n int) handle.Type {
	switch d {
	case 0:
		return handle.Vertex
	case 1:
		return handle.Edge
	case 2:
		switch n {
		case 3:
			return handle.Tri
		case 4:
			return handle.Quad
		}
		return handle.Polygon
	}
	return handle.Polyhedron
}

// PolygonEdges returns the edges of an n-gon as corner-index pairs.
func PolygonEdges(n int) [][]int {
	out := make([][]int, n)
	for i := range n {
		out[i] = []int{i, (i + 1) % n}
	}
	return out
}

// SideConn gathers the handles of one side from an element's connectivity.
func SideConn(conn []handle.Handle, side []int) []handle.Handle {
	out := make([]handle.Handle, len(side))
	for i, c := range side {
		out[i] = conn[c]
	}
	return out
}

// Sense compares a candidate corner list with a canonical one. It returns
// +1 when candidate is a rotation of canonical, -1 when it is a rotation of
// the reversal, and 0 when the two lists do not describe the same cycle.
// offset is the index in canonical of candidate[0].
func Sense(canonical, candidate []handle.Handle) (sense, offset int) {
	n := len(canonical)
	if n == 0 || len(candidate) < n {
		return 0, -1
	}
	offset = -1
	for i, h := range canonical {
		if h == candidate[0] {
			offset = i
			break
		}
	}
	if offset < 0 {
		return 0, -1
	}
	switch n {
	case 1:
		return 1, offset
	case 2:
		if candidate[1] != canonical[1-offset] {
			return 0, -1
		}
		if offset == 0 {
			return 1, 0
		}
		return -1, 1
	}
	forward, reverse := true, true
	for i := 1; i < n; i++ {
		if candidate[i] != canonical[(offset+i)%n] {
			forward = false
		}
		if candidate[i] != canonical[(offset-i+n)%n] {
			reverse = false
		}
	}
	switch {
	case forward:
		return 1, offset
	case reverse:
		return -1, offset
	}
	return 0, -1
}

// SideNumber locates child among the d-dimensional sides of an element of
// type t with connectivity conn, where d is inferred from the child's
// corner count and type. It returns the side index, the sense of child
// relative to the canonical side and the rotation offset.
func SideNumber(t handle.Type, conn []handle.Handle, childType handle.Type, child []handle.Handle) (side, sense, offset int, err error) {
	d := childType.Dimension()
	var sides [][]int
	if t == handle.Polygon && d == 1 {
		sides = PolygonEdges(len(conn))
	} else {
		sides, err = Sides(t, d)
		if err != nil {
			return -1, 0, -1, err
		}
	}
	if n := childType.NumCorners(); n > 0 && len(child) > n {
		child = child[:n]
	}
	for i, s := range sides {
		if len(s) != len(child) {
			continue
		}
		if sn, off := Sense(SideConn(conn, s), child); sn != 0 {
			return i, sn, off, nil
		}
	}
	return -1, 0, -1, fmt.Errorf("%w: %s is not a side of %s", core.ErrNotFound, childType, t)
}
