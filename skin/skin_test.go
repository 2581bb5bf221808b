package skin

import (
	"math"
	"slices"
	"testing"

	"github.com/hupe1980/meshgo/core"
	"github.com/hupe1980/meshgo/geom"
	"github.com/hupe1980/meshgo/handle"
	"github.com/hupe1980/meshgo/hrange"
	"github.com/hupe1980/meshgo/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memMesh is a map-backed Mesh for exercising the skinner in isolation.
type memMesh struct {
	next   [handle.TypeMax]uint64
	coords map[handle.Handle][3]float64
	conn   map[handle.Handle][]handle.Handle
}

func newMemMesh() *memMesh {
	return &memMesh{
		coords: map[handle.Handle][3]float64{},
		conn:   map[handle.Handle][]handle.Handle{},
	}
}

func (m *memMesh) issue(t handle.Type) handle.Handle {
	m.next[t]++
	return handle.New(t, m.next[t])
}

func (m *memMesh) CreateVertex(x, y, z float64) (handle.Handle, error) {
	h := m.issue(handle.Vertex)
	m.coords[h] = [3]float64{x, y, z}
	return h, nil
}

func (m *memMesh) CreateElement(t handle.Type, conn []handle.Handle) (handle.Handle, error) {
	h := m.issue(t)
	m.conn[h] = slices.Clone(conn)
	return h, nil
}

func (m *memMesh) Connectivity(h handle.Handle) ([]handle.Handle, error) {
	c, ok := m.conn[h]
	if !ok {
		return nil, core.ErrNotFound
	}
	return c, nil
}

func (m *memMesh) Coords(h handle.Handle) ([3]float64, error) {
	c, ok := m.coords[h]
	if !ok {
		return c, core.ErrNotFound
	}
	return c, nil
}

func (m *memMesh) FindElement(d int, verts []handle.Handle) (handle.Handle, error) {
	want := slices.Sorted(slices.Values(verts))
	for h, c := range m.conn {
		if h.Type().Dimension() != d || h.Type() == handle.Polyhedron {
			continue
		}
		got := slices.Sorted(slices.Values(corners(h.Type(), c)))
		if slices.Equal(got, want) {
			return h, nil
		}
	}
	return handle.Null, nil
}

func (m *memMesh) ofType(t handle.Type) *hrange.Range {
	r := hrange.New()
	for h := range m.conn {
		if h.Type() == t {
			r.Insert(h)
		}
	}
	return r
}

func (m *memMesh) points(t *testing.T, hs []handle.Handle) []geom.Vec3 {
	t.Helper()
	pts := make([]geom.Vec3, len(hs))
	for i, h := range hs {
		xyz, err := m.Coords(h)
		require.NoError(t, err)
		pts[i] = geom.Vec3(xyz)
	}
	return pts
}

func centroid(pts []geom.Vec3) geom.Vec3 {
	var c geom.Vec3
	for _, p := range pts {
		c = c.Add(p)
	}
	return c.Scale(1 / float64(len(pts)))
}

func TestFindSkin_HexBlock(t *testing.T) {
	m := newMemMesh()
	grid, err := testutil.StructuredHexGrid(m, 2, 2, 2)
	require.NoError(t, err)
	require.Len(t, grid.Vertices, 27)
	hexes := hrange.FromSlice(grid.Elements)

	res, err := FindSkin(m, hexes, WithCreateElements())
	require.NoError(t, err)
	assert.Equal(t, 24, res.Skin.Size())
	assert.Equal(t, 12, res.Interior)
	assert.Empty(t, res.NonManifold)
	assert.Zero(t, res.Missing)
	assert.True(t, res.Reversed.Empty())

	// Created faces point away from the block center.
	center := geom.Vec3{1, 1, 1}
	for q := range res.Skin.All() {
		require.Equal(t, handle.Quad, q.Type())
		pts := m.points(t, m.conn[q])
		n := geom.Newell(pts)
		assert.Positive(t, n.Dot(centroid(pts).Sub(center)), "face %s", q)
	}

	// A second pass finds the same faces instead of creating new ones.
	again, err := FindSkin(m, hexes)
	require.NoError(t, err)
	assert.True(t, again.Skin.Equal(res.Skin))
	assert.Zero(t, again.Missing)
	assert.True(t, again.Reversed.Empty())

	// The skin of a closed surface is empty.
	closed, err := FindSkin(m, res.Skin)
	require.NoError(t, err)
	assert.True(t, closed.Skin.Empty())
	assert.Zero(t, closed.Missing)
	assert.Empty(t, closed.NonManifold)

	verts, err := FindSkinVertices(m, hexes)
	require.NoError(t, err)
	assert.Equal(t, 26, verts.Size())
	assert.False(t, verts.Contains(grid.VertexAt(1, 1, 1)))
}

func TestFindSkin_OneHexRemoved(t *testing.T) {
	m := newMemMesh()
	grid, err := testutil.StructuredHexGrid(m, 2, 2, 2)
	require.NoError(t, err)
	full, err := FindSkin(m, hrange.FromSlice(grid.Elements), WithCreateElements())
	require.NoError(t, err)

	// grid.Elements[0] is the hex at the origin corner.
	rest := hrange.FromSlice(grid.Elements[1:])
	res, err := FindSkin(m, rest)
	require.NoError(t, err)
	assert.Equal(t, 21, res.Skin.Size())
	assert.Equal(t, 3, res.Missing)

	res, err = FindSkin(m, rest, WithCreateElements())
	require.NoError(t, err)
	assert.Equal(t, 24, res.Skin.Size())
	exposed := hrange.Subtract(res.Skin, full.Skin)
	require.Equal(t, 3, exposed.Size())
	for q := range exposed.All() {
		pts := m.points(t, m.conn[q])
		box := geom.BoxOf(pts...)
		assert.Equal(t, geom.Vec3{1, 1, 1}, box.Max, "face of the removed corner hex")
		assert.InDelta(t, math.Sqrt2, box.Diagonal(), 1e-12)
		// Outward from the remaining region means toward the removed hex.
		n := geom.Newell(pts)
		assert.Negative(t, n.Dot(centroid(pts).Sub(geom.Vec3{0.5, 0.5, 0.5})), "face %s", q)
	}
}

func TestFindSkin_Reversed(t *testing.T) {
	m := newMemMesh()
	grid, err := testutil.StructuredHexGrid(m, 1, 1, 1)
	require.NoError(t, err)

	// Bottom face listed counter-clockwise from above points into the hex.
	inward, _ := m.CreateElement(handle.Quad, []handle.Handle{
		grid.VertexAt(0, 0, 0), grid.VertexAt(1, 0, 0), grid.VertexAt(1, 1, 0), grid.VertexAt(0, 1, 0),
	})

	res, err := FindSkin(m, hrange.FromSlice(grid.Elements), WithCreateElements())
	require.NoError(t, err)
	assert.Equal(t, 6, res.Skin.Size())
	assert.True(t, res.Skin.Contains(inward))
	assert.Equal(t, []handle.Handle{inward}, res.Reversed.Slice())
}

func TestFindSkin_Tets(t *testing.T) {
	m := newMemMesh()
	block, err := testutil.TetBlock(m, 2, 1, 1)
	require.NoError(t, err)

	res, err := FindSkin(m, hrange.FromSlice(block.Elements), WithCreateElements())
	require.NoError(t, err)
	// Two unit cubes: ten square faces, two triangles each.
	assert.Equal(t, 20, res.Skin.Size())
	assert.Empty(t, res.NonManifold)
	assert.Equal(t, 20, res.Skin.NumOfType(handle.Tri))
}

func TestFindSkin_NonManifold(t *testing.T) {
	m := newMemMesh()
	a, _ := m.CreateVertex(0, 0, 0)
	b, _ := m.CreateVertex(1, 0, 0)
	var quads []handle.Handle
	for _, far := range [][3]float64{{0, 1, 0}, {0, 0, 1}, {0, -1, 0}} {
		c, _ := m.CreateVertex(1+far[0], far[1], far[2])
		d, _ := m.CreateVertex(far[0], far[1], far[2])
		q, _ := m.CreateElement(handle.Quad, []handle.Handle{a, b, c, d})
		quads = append(quads, q)
	}
	spine, _ := m.CreateElement(handle.Edge, []handle.Handle{b, a})

	res, err := FindSkin(m, hrange.FromSlice(quads))
	require.NoError(t, err)
	require.Len(t, res.NonManifold, 1)
	assert.Equal(t, []handle.Handle{a, b}, res.NonManifold[0])
	assert.Equal(t, []handle.Handle{spine}, res.NonManifoldEntities.Slice())
	assert.Equal(t, 9, res.Missing)

	strict, err := FindSkin(m, hrange.FromSlice(quads), WithStrictManifold())
	assert.ErrorIs(t, err, core.ErrNonManifold)
	require.NotNil(t, strict)
	assert.Len(t, strict.NonManifold, 1)
}

func TestFindSkin_UnsupportedInput(t *testing.T) {
	m := newMemMesh()
	grid, err := testutil.StructuredHexGrid(m, 1, 1, 1)
	require.NoError(t, err)
	q, _ := m.CreateElement(handle.Quad, grid.Vertices[:4])

	mixed := hrange.FromSlice(append([]handle.Handle{q}, grid.Elements...))
	_, err = FindSkin(m, mixed)
	assert.ErrorIs(t, err, core.ErrUnsupportedInput)

	_, err = FindSkin(m, hrange.FromSlice(grid.Vertices))
	assert.ErrorIs(t, err, core.ErrUnsupportedInput)

	knife, _ := m.CreateElement(handle.Knife, grid.Vertices[:7])
	_, err = FindSkin(m, hrange.Of(knife))
	assert.ErrorIs(t, err, core.ErrUnsupportedInput)
	_, err = FindSkinVertices(m, hrange.Of(knife))
	assert.ErrorIs(t, err, core.ErrUnsupportedInput)

	res, err := FindSkin(m, hrange.New())
	require.NoError(t, err)
	assert.True(t, res.Skin.Empty())
}

func TestFindSkin_EdgesAndPolygons(t *testing.T) {
	m := newMemMesh()
	var vs []handle.Handle
	for i := range 5 {
		v, _ := m.CreateVertex(float64(i), 0, 0)
		vs = append(vs, v)
	}
	e1, _ := m.CreateElement(handle.Edge, vs[0:2])
	e2, _ := m.CreateElement(handle.Edge, vs[1:3])
	res, err := FindSkin(m, hrange.Of(e1, e2))
	require.NoError(t, err)
	assert.Equal(t, []handle.Handle{vs[0], vs[2]}, res.Skin.Slice())

	// A pentagon and a quad sharing one edge.
	top, _ := m.CreateVertex(0, 1, 0)
	pent, _ := m.CreateElement(handle.Polygon, []handle.Handle{vs[0], vs[1], vs[2], vs[3], top})
	quad, _ := m.CreateElement(handle.Quad, []handle.Handle{vs[4], vs[3], vs[2], vs[1]})
	res, err = FindSkin(m, hrange.Of(pent, quad), WithCreateElements())
	require.NoError(t, err)
	// 5 + 4 edge uses, two of them shared.
	assert.Equal(t, 2, res.Interior)
	assert.Equal(t, 5, res.Skin.Size())
	assert.Zero(t, res.Missing)
}

func TestFindSkin_Polyhedron(t *testing.T) {
	m := newMemMesh()
	grid, err := testutil.StructuredHexGrid(m, 1, 1, 1)
	require.NoError(t, err)
	res, err := FindSkin(m, hrange.FromSlice(grid.Elements), WithCreateElements())
	require.NoError(t, err)

	poly, err := m.CreateElement(handle.Polyhedron, res.Skin.Slice())
	require.NoError(t, err)
	out, err := FindSkin(m, hrange.Of(poly))
	require.NoError(t, err)
	assert.True(t, out.Skin.Equal(res.Skin))
	assert.Zero(t, out.Missing)
}

func TestClassify2DBoundary(t *testing.T) {
	m := newMemMesh()
	grid, err := testutil.QuadGrid(m, 2, 1)
	require.NoError(t, err)

	c, err := Classify2DBoundary(m, hrange.FromSlice(grid.Elements), 0.5)
	require.NoError(t, err)
	assert.Equal(t, 6, c.Boundary.Size())
	assert.Equal(t, 1, c.Other.Size())
	assert.True(t, c.Inferred.Empty())
	assert.True(t, c.NonManifold.Empty())
	assert.Equal(t, 6, c.BoundaryVertices.Size())
	assert.Equal(t, 7, m.ofType(handle.Edge).Size(), "missing edges are created")

	// Fold the right quad up by 90 degrees: the shared edge becomes a feature.
	for _, v := range []handle.Handle{grid.VertexAt(2, 0, 0), grid.VertexAt(2, 1, 0)} {
		p := m.coords[v]
		m.coords[v] = [3]float64{1, p[1], 1}
	}
	c, err = Classify2DBoundary(m, hrange.FromSlice(grid.Elements), 0.5)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Inferred.Size())
	assert.True(t, c.Other.Empty())
	assert.Equal(t, 7, m.ofType(handle.Edge).Size(), "existing edges are reused")
}

func TestClassify2DBoundary_Orientation(t *testing.T) {
	m := newMemMesh()
	grid, err := testutil.QuadGrid(m, 2, 1)
	require.NoError(t, err)

	// Flip the second quad so neighbours disagree on orientation. The
	// faces are still coplanar, so the edge must not be a feature.
	second := grid.Elements[1]
	slices.Reverse(m.conn[second])
	c, err := Classify2DBoundary(m, hrange.FromSlice(grid.Elements), 0.5)
	require.NoError(t, err)
	assert.True(t, c.Inferred.Empty())
	assert.Equal(t, 1, c.Other.Size())
}

func TestClassify2DBoundary_Degenerate(t *testing.T) {
	m := newMemMesh()
	a, _ := m.CreateVertex(0, 0, 0)
	b, _ := m.CreateVertex(1, 0, 0)
	c, _ := m.CreateVertex(1, 1, 0)
	d, _ := m.CreateVertex(2, 0, 0)
	good, _ := m.CreateElement(handle.Tri, []handle.Handle{a, b, c})
	// Zero-area triangle sharing edge a-b.
	flat, _ := m.CreateElement(handle.Tri, []handle.Handle{b, a, d})

	cls, err := Classify2DBoundary(m, hrange.Of(good, flat), 0.99)
	require.NoError(t, err)
	assert.True(t, cls.Inferred.Empty())
	assert.Equal(t, 1, cls.Other.Size())
	assert.Equal(t, 4, cls.Boundary.Size())

	hex, _ := m.CreateElement(handle.Hex, make([]handle.Handle, 8))
	_, err = Classify2DBoundary(m, hrange.Of(hex), 0.5)
	assert.ErrorIs(t, err, core.ErrUnsupportedInput)
}
