package geom

import (
	"math"
	"testing"

	"github.com/hupe1980/meshgo/core"
	"github.com/hupe1980/meshgo/handle"
	"github.com/hupe1980/meshgo/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitCubeHex() [8]Vec3 {
	return [8]Vec3{
		{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
		{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
	}
}

func TestNewell(t *testing.T) {
	sq := []Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}
	assert.Equal(t, Vec3{0, 0, 2}, Newell(sq))
	assert.Equal(t, Vec3{}, Newell([]Vec3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}}))
}

func TestBoundingBox(t *testing.T) {
	b := EmptyBox()
	assert.True(t, b.IsEmpty())
	b.Expand(Vec3{1, 2, 3})
	b.Expand(Vec3{-1, 0, 5})
	assert.Equal(t, Vec3{-1, 0, 3}, b.Min)
	assert.Equal(t, Vec3{1, 2, 5}, b.Max)

	assert.True(t, b.Contains(Vec3{0, 1, 4}, 0))
	assert.False(t, b.Contains(Vec3{0, 1, 6}, 0))
	assert.True(t, b.Contains(Vec3{0, 1, 5.05}, 0.1))

	o := BoxOf(Vec3{1.5, 0, 3}, Vec3{2, 1, 4})
	assert.False(t, b.Overlaps(o, 0))
	assert.True(t, b.Overlaps(o, 0.6))

	assert.Equal(t, Vec3{1, 2, 5}, ClosestOnBox(Vec3{7, 7, 7}, b))
	assert.Equal(t, Vec3{0, 1, 4}, ClosestOnBox(Vec3{0, 1, 4}, b))
}

func TestRayBoxIntersect(t *testing.T) {
	box := BoundingBox{Max: Vec3{1, 1, 1}}

	enter, exit, ok := RayBoxIntersect(Vec3{-1, 0.5, 0.5}, Vec3{1, 0, 0}, box, 0)
	require.True(t, ok)
	assert.InDelta(t, 1, enter, 1e-12)
	assert.InDelta(t, 2, exit, 1e-12)

	// Parallel to x with origin outside the y slab.
	_, _, ok = RayBoxIntersect(Vec3{-1, 2, 0.5}, Vec3{1, 0, 0}, box, 0)
	assert.False(t, ok)

	// Pointing away.
	_, _, ok = RayBoxIntersect(Vec3{-1, 0.5, 0.5}, Vec3{-1, 0, 0}, box, 0)
	assert.False(t, ok)

	// Origin inside.
	enter, _, ok = RayBoxIntersect(Vec3{0.5, 0.5, 0.5}, Vec3{0, 0, 1}, box, 0)
	require.True(t, ok)
	assert.Equal(t, 0.0, enter)

	// Segment too short to reach.
	_, _, ok = SegmentBoxIntersect(box, Vec3{-1, 0.5, 0.5}, Vec3{1, 0, 0}, 0, 0.5)
	assert.False(t, ok)
}

func TestRayTriIntersect(t *testing.T) {
	tri := [3]Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}

	dist, ok := RayTriIntersect(Vec3{0.25, 0.25, 1}, Vec3{0, 0, -1}, tri, 0, 0)
	require.True(t, ok)
	assert.InDelta(t, 1, dist, 1e-12)

	_, ok = RayTriIntersect(Vec3{0.25, 0.25, 1}, Vec3{0, 0, -1}, tri, 0, 0.5)
	assert.False(t, ok, "beyond cutoff")

	_, ok = RayTriIntersect(Vec3{0.25, 0.25, 1}, Vec3{1, 0, 0}, tri, 0, 0)
	assert.False(t, ok, "parallel")

	_, ok = RayTriIntersect(Vec3{1, 1, 1}, Vec3{0, 0, -1}, tri, 0, 0)
	assert.False(t, ok, "outside")

	_, ok = RayTriIntersect(Vec3{0.25, 0.25, 1}, Vec3{0, 0, 1}, tri, 0, 0)
	assert.False(t, ok, "behind origin")

	// Slightly outside an edge, accepted with tolerance.
	_, ok = RayTriIntersect(Vec3{0.5, -0.001, 1}, Vec3{0, 0, -1}, tri, 0.01, 0)
	assert.True(t, ok)
}

func TestBoxPlaneOverlap(t *testing.T) {
	bmin, bmax := Vec3{0, 0, 0}, Vec3{1, 1, 1}
	assert.True(t, BoxPlaneOverlap(Vec3{0, 0, 1}, -0.5, bmin, bmax))
	assert.False(t, BoxPlaneOverlap(Vec3{0, 0, 1}, -2, bmin, bmax))
	assert.True(t, BoxPlaneOverlap(Vec3{1, 1, 1}, -3, bmin, bmax), "touching corner")
	assert.False(t, BoxPlaneOverlap(Vec3{-1, 0, 0}, -0.5, bmin, bmax))
}

func TestBoxTriOverlap(t *testing.T) {
	center, half := Vec3{}, Vec3{1, 1, 1}

	inside := [3]Vec3{{-0.5, -0.5, 0}, {0.5, -0.5, 0}, {0, 0.5, 0.2}}
	assert.True(t, BoxTriOverlap(inside, center, half))

	covering := [3]Vec3{{-10, -10, 0}, {10, -10, 0}, {0, 10, 0}}
	assert.True(t, BoxTriOverlap(covering, center, half), "box inside triangle plane region")

	shifted := [3]Vec3{{2, 0, 0}, {3, 0, 0}, {2.5, 1, 0}}
	assert.False(t, BoxTriOverlap(shifted, center, half))

	// Bounding boxes overlap but the triangle plane clears the corner.
	diagonal := [3]Vec3{{3.5, 0, 0}, {0, 3.5, 0}, {0, 0, 3.5}}
	assert.False(t, BoxTriOverlap(diagonal, center, half))

	// Degenerate triangle along an axis: zero cross products are ignored.
	sliver := [3]Vec3{{-2, 0, 0}, {0, 0, 0}, {2, 0, 0}}
	assert.True(t, BoxTriOverlap(sliver, center, half))
}

func TestBoxTriOverlap_RelabelInvariant(t *testing.T) {
	rng := testutil.NewRNG(5)
	perms := [][3]int{{0, 1, 2}, {1, 2, 0}, {2, 0, 1}, {0, 2, 1}, {2, 1, 0}, {1, 0, 2}}
	for range 500 {
		var tri [3]Vec3
		for i := range tri {
			tri[i] = Vec3(rng.Point(-3, 3))
		}
		center := Vec3(rng.Point(-1, 1))
		half := Vec3{rng.FloatRange(0.1, 1.5), rng.FloatRange(0.1, 1.5), rng.FloatRange(0.1, 1.5)}
		want := BoxTriOverlap(tri, center, half)
		for _, p := range perms {
			got := BoxTriOverlap([3]Vec3{tri[p[0]], tri[p[1]], tri[p[2]]}, center, half)
			require.Equal(t, want, got, "tri %v perm %v", tri, p)
		}
	}
}

func TestBoxTetHexOverlap(t *testing.T) {
	big := [4]Vec3{{-10, -10, -10}, {30, -10, -10}, {-10, 30, -10}, {-10, -10, 30}}
	assert.True(t, BoxTetOverlap(big, Vec3{}, Vec3{1, 1, 1}))

	far := [4]Vec3{{5, 5, 5}, {6, 5, 5}, {5, 6, 5}, {5, 5, 6}}
	assert.False(t, BoxTetOverlap(far, Vec3{}, Vec3{1, 1, 1}))

	// Beyond the slanted face: bounding boxes overlap, the tet does not.
	assert.False(t, BoxTetOverlap(big, Vec3{9, 9, 9}, Vec3{1, 1, 1}))

	corner := [4]Vec3{{1, 1, 1}, {2, 1, 1}, {1, 2, 1}, {1, 1, 2}}
	assert.True(t, BoxTetOverlap(corner, Vec3{}, Vec3{1, 1, 1}), "touches at a corner")
	assert.False(t, BoxTetOverlap(corner, Vec3{0.4, 0.4, 0.4}, Vec3{0.5, 0.5, 0.5}))

	hex := unitCubeHex()
	assert.True(t, BoxHexOverlap(hex, Vec3{0.5, 0.5, 0.5}, Vec3{0.1, 0.1, 0.1}))
	assert.True(t, BoxHexOverlap(hex, Vec3{1.5, 0.5, 0.5}, Vec3{0.6, 0.1, 0.1}))
	assert.False(t, BoxHexOverlap(hex, Vec3{3, 3, 3}, Vec3{1, 1, 1}))

	_, err := BoxLinearElemOverlap(make([]Vec3, 7), handle.Knife, Vec3{}, Vec3{1, 1, 1})
	assert.ErrorIs(t, err, core.ErrUnsupportedInput)
	_, err = BoxLinearElemOverlap(hex[:3], handle.Quad, Vec3{}, Vec3{1, 1, 1})
	assert.ErrorIs(t, err, core.ErrUnsupportedInput)

	ok, err := BoxLinearElemOverlap(hex[:4], handle.Quad, Vec3{0.5, 0.5, 0}, Vec3{0.1, 0.1, 0.1})
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = BoxLinearElemOverlap(hex[:4], handle.Quad, Vec3{0.5, 0.5, 0.5}, Vec3{0.1, 0.1, 0.1})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClosestOnTri(t *testing.T) {
	tri := [3]Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	tests := []struct {
		name string
		p    Vec3
		want Vec3
	}{
		{"interior", Vec3{0.2, 0.2, 3}, Vec3{0.2, 0.2, 0}},
		{"vertex a", Vec3{-1, -1, 0}, Vec3{0, 0, 0}},
		{"vertex b", Vec3{2, -0.5, 1}, Vec3{1, 0, 0}},
		{"vertex c", Vec3{-0.5, 3, 0}, Vec3{0, 1, 0}},
		{"edge ab", Vec3{0.5, -1, 0}, Vec3{0.5, 0, 0}},
		{"edge ac", Vec3{-1, 0.5, 0}, Vec3{0, 0.5, 0}},
		{"edge bc", Vec3{1, 1, 0}, Vec3{0.5, 0.5, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClosestOnTri(tt.p, tri)
			assert.InDelta(t, 0, got.Dist(tt.want), 1e-12)
		})
	}

	degenerate := [3]Vec3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}}
	got := ClosestOnTri(Vec3{0.5, 1, 0}, degenerate)
	assert.False(t, math.IsNaN(got[0]))
}

func TestClosestOnPolygon(t *testing.T) {
	sq := []Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}
	got := ClosestOnPolygon(Vec3{2, 0.5, 1}, sq)
	assert.InDelta(t, 0, got.Dist(Vec3{1, 0.5, 0}), 1e-12)
	got = ClosestOnPolygon(Vec3{0.3, 0.6, -2}, sq)
	assert.InDelta(t, 0, got.Dist(Vec3{0.3, 0.6, 0}), 1e-12)
}

func TestNatCoordsTrilinearHex(t *testing.T) {
	rng := testutil.NewRNG(9)
	for range 50 {
		var corners [8]Vec3
		for i, c := range hexCorners {
			p := rng.Point(-0.15, 0.15)
			corners[i] = c.Add(Vec3(p))
		}
		want := Vec3(rng.Point(-0.9, 0.9))
		x, _ := trilinear(&corners, want)

		xi, ok := NatCoordsTrilinearHex(corners, x, 1e-10)
		require.True(t, ok)
		assert.InDelta(t, 0, xi.Dist(want), 1e-8)
		assert.True(t, PointInTrilinearHex(corners, x, 1e-6))
	}

	hex := unitCubeHex()
	xi, ok := NatCoordsTrilinearHex(hex, Vec3{0.5, 0.5, 0.5}, 1e-12)
	require.True(t, ok)
	assert.InDelta(t, 0, xi.Len(), 1e-12)

	assert.True(t, PointInTrilinearHex(hex, Vec3{0.99, 0.01, 0.5}, 1e-6))
	assert.False(t, PointInTrilinearHex(hex, Vec3{1.2, 0.5, 0.5}, 1e-6))

	var flat [8]Vec3
	_, ok = NatCoordsTrilinearHex(flat, Vec3{1, 0, 0}, 1e-10)
	assert.False(t, ok, "singular jacobian")
}
