package handle

// Type identifies the kind of mesh entity. Types are ordered by dimension so
// the handles of one dimension form a single contiguous interval.
type Type uint8

const (
	Vertex Type = iota
	Edge
	Tri
	Quad
	Polygon
	Tet
	Pyramid
	Prism
	Knife
	Hex
	Polyhedron
	EntitySet
	// TypeMax is one past the last valid type.
	TypeMax
)

var typeInfo = [TypeMax]struct {
	name    string
	dim     int
	corners int
	orders  []int
}{
	Vertex:     {"Vertex", 0, 1, nil},
	Edge:       {"Edge", 1, 2, []int{2, 3}},
	Tri:        {"Tri", 2, 3, []int{3, 6, 7}},
	Quad:       {"Quad", 2, 4, []int{4, 8, 9}},
	Polygon:    {"Polygon", 2, 0, nil},
	Tet:        {"Tet", 3, 4, []int{4, 10, 14}},
	Pyramid:    {"Pyramid", 3, 5, []int{5, 13, 14}},
	Prism:      {"Prism", 3, 6, []int{6, 15, 18}},
	Knife:      {"Knife", 3, 7, []int{7}},
	Hex:        {"Hex", 3, 8, []int{8, 20, 27}},
	Polyhedron: {"Polyhedron", 3, 0, nil},
	EntitySet:  {"EntitySet", 4, 0, nil},
}

// String returns the type name.
func (t Type) String() string {
	if t >= TypeMax {
		return "Invalid"
	}
	return typeInfo[t].name
}

// Dimension returns the topological dimension of t. Entity sets report 4.
func (t Type) Dimension() int {
	if t >= TypeMax {
		return -1
	}
	return typeInfo[t].dim
}

// NumCorners returns the number of corner vertices of a linear element of
// type t, or 0 for types with variable connectivity.
func (t Type) NumCorners() int {
	if t >= TypeMax {
		return 0
	}
	return typeInfo[t].corners
}

// IsVariable reports whether entities of t have variable-length connectivity.
func (t Type) IsVariable() bool { return t == Polygon || t == Polyhedron }

// IsElement reports whether t carries connectivity.
func (t Type) IsElement() bool { return t > Vertex && t < EntitySet }

// ValidNodeCount reports whether an element of type t may have n nodes.
// Fixed types accept their linear and recognized higher-order counts,
// polygons need at least three vertices and polyhedra at least four faces.
func (t Type) ValidNodeCount(n int) bool {
	switch t {
	case Polygon:
		return n >= 3
	case Polyhedron:
		return n >= 4
	case Vertex, EntitySet:
		return false
	}
	if t >= TypeMax {
		return false
	}
	for _, c := range typeInfo[t].orders {
		if c == n {
			return true
		}
	}
	return false
}

// TypesOfDim returns the entity types of dimension d in handle order.
func TypesOfDim(d int) []Type {
	switch d {
	case 0:
		return []Type{Vertex}
	case 1:
		return []Type{Edge}
	case 2:
		return []Type{Tri, Quad, Polygon}
	case 3:
		return []Type{Tet, Pyramid, Prism, Knife, Hex, Polyhedron}
	case 4:
		return []Type{EntitySet}
	}
	return nil
}
