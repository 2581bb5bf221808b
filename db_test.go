package meshgo

import (
	"errors"
	"fmt"
	"testing"

	"github.com/hupe1980/meshgo/handle"
	"github.com/hupe1980/meshgo/hrange"
	"github.com/hupe1980/meshgo/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T, opts ...Option) *DB {
	t.Helper()
	db, err := New(opts...)
	require.NoError(t, err)
	return db
}

func triangle(t *testing.T, db *DB) (handle.Handle, []handle.Handle) {
	t.Helper()
	vs := make([]handle.Handle, 3)
	for i, p := range [][3]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}} {
		v, err := db.CreateVertex(p[0], p[1], p[2])
		require.NoError(t, err)
		vs[i] = v
	}
	tri, err := db.CreateElement(handle.Tri, vs)
	require.NoError(t, err)
	return tri, vs
}

func TestCreateAndQuery(t *testing.T) {
	db := newTestDB(t)
	tri, vs := triangle(t, db)

	assert.Equal(t, handle.Tri, tri.Type())
	assert.Equal(t, 3, db.NumEntitiesByType(handle.Vertex))
	assert.Equal(t, 1, db.NumEntitiesByType(handle.Tri))
	assert.Equal(t, 1, db.NumEntitiesByDimension(2))
	assert.Equal(t, 0, db.NumEntitiesByDimension(3))
	assert.Equal(t, 3, db.EntitiesByType(handle.Vertex).Size())
	assert.True(t, db.EntitiesByDimension(2).Contains(tri))

	xyz, err := db.Coords(vs[1])
	require.NoError(t, err)
	assert.Equal(t, [3]float64{1, 0, 0}, xyz)
	require.NoError(t, db.SetCoords(vs[1], [3]float64{2, 0, 0}))
	xyz, err = db.Coords(vs[1])
	require.NoError(t, err)
	assert.Equal(t, [3]float64{2, 0, 0}, xyz)

	conn, err := db.Connectivity(tri)
	require.NoError(t, err)
	assert.Equal(t, vs, conn)

	// The returned connectivity is a copy.
	conn[0] = handle.Null
	again, err := db.Connectivity(tri)
	require.NoError(t, err)
	assert.Equal(t, vs[0], again[0])
}

func TestCreateVertices(t *testing.T) {
	db := newTestDB(t)
	r, err := db.CreateVertices([]float64{0, 0, 0, 1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	require.Equal(t, 3, r.Size())
	assert.Equal(t, 1, r.PairCount(), "vertices are contiguous")

	xyz, err := db.Coords(r.Back())
	require.NoError(t, err)
	assert.Equal(t, [3]float64{4, 5, 6}, xyz)

	_, err = db.CreateVertices([]float64{1, 2})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestCreateElement_Validation(t *testing.T) {
	db := newTestDB(t)
	_, vs := triangle(t, db)

	_, err := db.CreateElement(handle.Quad, vs)
	require.ErrorIs(t, err, ErrInvalidArgument)
	var ce *ConnectivityError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, handle.Quad, ce.Type)
	assert.Equal(t, 4, ce.Expected)
	assert.Equal(t, 3, ce.Actual)

	_, err = db.CreateElement(handle.Vertex, vs[:1])
	assert.ErrorIs(t, err, ErrUnsupportedInput)

	_, err = db.CreateElement(handle.Tri, []handle.Handle{vs[0], vs[1], handle.New(handle.Vertex, 999)})
	assert.ErrorIs(t, err, ErrNotFound)

	tri, err := db.CreateElement(handle.Tri, vs)
	require.NoError(t, err)
	_, err = db.CreateElement(handle.Tri, []handle.Handle{vs[0], vs[1], tri})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestDeleteEntities(t *testing.T) {
	db := newTestDB(t)
	grid, err := testutil.StructuredHexGrid(db, 2, 2, 2)
	require.NoError(t, err)

	// A vertex used by a live element cannot be deleted.
	err = db.DeleteEntity(grid.VertexAt(1, 1, 1))
	require.ErrorIs(t, err, ErrInvalidArgument)
	var ee *EntityError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, grid.VertexAt(1, 1, 1), ee.Handle)
	assert.Equal(t, 27, db.NumEntitiesByType(handle.Vertex))

	// Elements are processed before the vertices in the same range.
	all := hrange.Union(db.EntitiesByType(handle.Hex), db.EntitiesByType(handle.Vertex))
	require.NoError(t, db.DeleteEntities(all))
	assert.Zero(t, db.NumEntitiesByType(handle.Hex))
	assert.Zero(t, db.NumEntitiesByType(handle.Vertex))

	err = db.DeleteEntity(grid.Elements[0])
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = db.Connectivity(grid.Elements[0])
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteEntity_FreesVertex(t *testing.T) {
	db := newTestDB(t, WithMaintainAdjacencies(false))
	tri, vs := triangle(t, db)

	require.ErrorIs(t, db.DeleteEntity(vs[0]), ErrInvalidArgument)
	require.NoError(t, db.DeleteEntity(tri))
	require.NoError(t, db.DeleteEntity(vs[0]))
	assert.False(t, db.IsLive(vs[0]))
	assert.True(t, db.IsLive(vs[1]))
}

func TestRecycledHandleReadsDefault(t *testing.T) {
	db := newTestDB(t, WithRecycleHandles(true), WithReclaimEmptySequences(false))
	v1, err := db.CreateVertex(0, 0, 0)
	require.NoError(t, err)
	_, err = db.CreateVertex(1, 0, 0)
	require.NoError(t, err)

	id, err := db.CreateTag("material", 4, Integer, Dense, EncodeInts(7))
	require.NoError(t, err)
	require.NoError(t, db.SetInt(id, v1, 42))

	require.NoError(t, db.DeleteEntity(v1))
	v3, err := db.CreateVertex(2, 0, 0)
	require.NoError(t, err)
	require.Equal(t, v1, v3, "slot is recycled")

	got, err := db.GetInt(id, v3)
	require.NoError(t, err)
	assert.Equal(t, []int32{7}, got)
	ok, err := db.IsTagSet(id, v3)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReclaimReleasesMemory(t *testing.T) {
	db := newTestDB(t, WithSequenceSize(4, 4))
	r, err := db.CreateVertices(make([]float64, 12))
	require.NoError(t, err)
	withVertices := db.MemoryUsage()
	assert.Positive(t, withVertices)

	id, err := db.CreateTag("weight", 8, Double, Dense, nil)
	require.NoError(t, err)
	require.NoError(t, db.SetDouble(id, r.Front(), 1.5))
	assert.Greater(t, db.MemoryUsage(), withVertices)

	require.NoError(t, db.DeleteEntities(r))
	assert.Zero(t, db.MemoryUsage())
	assert.Positive(t, db.PeakMemoryUsage())

	// Reclaimed handles are never reissued.
	v, err := db.CreateVertex(0, 0, 0)
	require.NoError(t, err)
	assert.Greater(t, v, r.Back())
}

func TestMemoryLimit(t *testing.T) {
	db := newTestDB(t, WithMemoryLimit(1))
	_, err := db.CreateVertex(0, 0, 0)
	assert.ErrorIs(t, err, ErrAllocationFailure)
}

func TestReserveBlocks(t *testing.T) {
	db := newTestDB(t)
	vb, err := db.ReserveVertices(4)
	require.NoError(t, err)
	require.Len(t, vb.Coords, 12)
	copy(vb.Coords, []float64{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0})
	verts := vb.Handles().Slice()
	require.Len(t, verts, 4)

	xyz, err := db.Coords(verts[2])
	require.NoError(t, err)
	assert.Equal(t, [3]float64{1, 1, 0}, xyz)

	eb, err := db.ReserveElements(handle.Quad, 4, 1)
	require.NoError(t, err)
	require.Len(t, eb.Conn, 4)
	copy(eb.Conn, verts)

	// The adjacency index is rebuilt once the block is filled.
	found, err := db.FindElement(2, []handle.Handle{verts[3], verts[1], verts[0], verts[2]})
	require.NoError(t, err)
	assert.Equal(t, eb.Start, found)

	_, err = db.ReserveElements(handle.Polygon, 5, 2)
	assert.ErrorIs(t, err, ErrUnsupportedInput)
	_, err = db.ReserveVertices(0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestReserveElements_QueryBeforeFill(t *testing.T) {
	for _, maintain := range []bool{true, false} {
		t.Run(fmt.Sprintf("maintain=%v", maintain), func(t *testing.T) {
			db := newTestDB(t, WithMaintainAdjacencies(maintain))
			vr, err := db.CreateVertices([]float64{0, 0, 0, 1, 0, 0, 0, 1, 0})
			require.NoError(t, err)
			vs := vr.Slice()

			eb, err := db.ReserveElements(handle.Tri, 3, 1)
			require.NoError(t, err)

			// A query against the unfilled block finds nothing.
			found, err := db.FindElement(2, vs)
			require.NoError(t, err)
			assert.Equal(t, handle.Null, found)

			copy(eb.Conn, vs)

			up, err := db.Adjacencies(hrange.Of(vs[0]), 2, false, Intersect)
			require.NoError(t, err)
			assert.True(t, up.Equal(hrange.Of(eb.Start)))

			assert.ErrorIs(t, db.DeleteEntity(vs[0]), ErrInvalidArgument)
			assert.True(t, db.IsLive(vs[0]))

			require.NoError(t, db.DeleteEntity(eb.Start))
			require.NoError(t, db.DeleteEntity(vs[0]))
		})
	}
}

func TestCreateDeleteCycleKeepsSequence(t *testing.T) {
	db := newTestDB(t)
	var prev handle.Handle
	for i := range 5 {
		v, err := db.CreateVertex(0, 0, 0)
		require.NoError(t, err)
		if i > 0 {
			assert.Equal(t, prev.Add(1), v)
		}
		require.NoError(t, db.DeleteEntity(v))
		prev = v
	}
	assert.Equal(t, db.PeakMemoryUsage(), db.MemoryUsage())
}

func TestSetConnectivity(t *testing.T) {
	db := newTestDB(t)
	tri, vs := triangle(t, db)
	v4, err := db.CreateVertex(1, 1, 0)
	require.NoError(t, err)

	require.NoError(t, db.SetConnectivity(tri, []handle.Handle{vs[1], v4, vs[2]}))

	found, err := db.FindElement(2, []handle.Handle{vs[1], v4, vs[2]})
	require.NoError(t, err)
	assert.Equal(t, tri, found)
	found, err = db.FindElement(2, vs)
	require.NoError(t, err)
	assert.Equal(t, handle.Null, found)

	// vs[0] is no longer in use.
	require.NoError(t, db.DeleteEntity(vs[0]))

	err = db.SetConnectivity(tri, vs[1:])
	var ce *ConnectivityError
	assert.ErrorAs(t, err, &ce)
}

func TestErrorsWrapSentinels(t *testing.T) {
	db := newTestDB(t)
	_, err := db.Coords(handle.New(handle.Vertex, 5))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	var ee *EntityError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "coords", ee.Op)

	_, err = db.Coords(handle.Null)
	assert.ErrorIs(t, err, ErrInvalidHandle)
}
