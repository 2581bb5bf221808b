package meshgo

import (
	"fmt"
	"slices"
	"time"

	"github.com/hupe1980/meshgo/handle"
	"github.com/hupe1980/meshgo/hrange"
	"github.com/hupe1980/meshgo/internal/topo"
	"github.com/hupe1980/meshgo/skin"
)

// SetOp selects how per-entity results are combined by Adjacencies.
type SetOp uint8

const (
	// Intersect keeps the entities adjacent to every input.
	Intersect SetOp = iota
	// Union keeps the entities adjacent to any input.
	Union
)

func (op SetOp) String() string {
	switch op {
	case Intersect:
		return "intersect"
	case Union:
		return "union"
	default:
		return fmt.Sprintf("SetOp(%d)", uint8(op))
	}
}

// corners returns the corner vertices of a fixed-size or polygon
// connectivity, dropping higher-order nodes.
func corners(t handle.Type, conn []handle.Handle) []handle.Handle {
	if n := t.NumCorners(); n > 0 && len(conn) > n {
		return conn[:n]
	}
	return conn
}

// elementVerts returns the distinct corner vertices of an element. For a
// polyhedron they are collected from its faces. The result may alias
// storage.
func (db *DB) elementVerts(h handle.Handle) ([]handle.Handle, error) {
	conn, err := db.seqs.Connectivity(h)
	if err != nil {
		return nil, err
	}
	if h.Type() != handle.Polyhedron {
		return corners(h.Type(), conn), nil
	}
	var verts []handle.Handle
	for _, f := range conn {
		fc, err := db.seqs.Connectivity(f)
		if err != nil {
			return nil, err
		}
		verts = append(verts, corners(f.Type(), fc)...)
	}
	slices.Sort(verts)
	return slices.Compact(verts), nil
}

// ensureAdjacency builds the vertex-to-element index if it is stale.
func (db *DB) ensureAdjacency() error {
	if db.adj.Built() {
		return nil
	}
	start := time.Now()
	db.adj.Reset()
	n, unfilled := 0, 0
	for t := handle.Edge; t < handle.EntitySet; t++ {
		for s := range db.seqs.Sequences(t) {
			for e := range s.LiveHandles() {
				verts, err := db.elementVerts(e)
				if err != nil {
					return translateError("build adjacency", e, err)
				}
				// Reserved blocks may hold nodes that are not filled yet.
				live := slices.DeleteFunc(slices.Clone(verts), func(v handle.Handle) bool {
					return !db.seqs.IsLive(v)
				})
				if len(live) < len(verts) {
					unfilled++
				}
				if err := db.adj.Add(e, live); err != nil {
					db.adj.Reset()
					return translateError("build adjacency", e, err)
				}
				n++
			}
		}
	}
	// Connectivity written into a reserved block later is only seen by a
	// rebuild, so the index stays stale until every node is filled.
	if unfilled == 0 {
		db.adj.MarkBuilt()
	}
	db.logger.Debug("adjacency index built", "elements", n, "unfilled", unfilled, "duration", time.Since(start))
	return nil
}

// polyhedraUsing returns the live polyhedra whose face list contains face.
func (db *DB) polyhedraUsing(face handle.Handle) ([]handle.Handle, error) {
	if db.seqs.Count(handle.Polyhedron) == 0 {
		return nil, nil
	}
	if err := db.ensureAdjacency(); err != nil {
		return nil, err
	}
	verts, err := db.elementVerts(face)
	if err != nil {
		return nil, err
	}
	cands := db.adj.Common(verts, func(e handle.Handle) bool { return e.Type() == handle.Polyhedron })
	return slices.DeleteFunc(cands, func(p handle.Handle) bool {
		conn, err := db.seqs.Connectivity(p)
		return err != nil || !slices.Contains(conn, face)
	}), nil
}

// FindElement returns the element of dimension d whose corner vertices are
// exactly verts, in any order. It returns handle.Null when no such element
// exists.
func (db *DB) FindElement(d int, verts []handle.Handle) (handle.Handle, error) {
	if d < 0 || d > 3 {
		return handle.Null, fmt.Errorf("%w: dimension %d", ErrInvalidArgument, d)
	}
	if len(verts) == 0 {
		return handle.Null, nil
	}
	if d == 0 {
		if len(verts) == 1 && db.seqs.IsLive(verts[0]) {
			return verts[0], nil
		}
		return handle.Null, nil
	}
	if err := db.ensureAdjacency(); err != nil {
		return handle.Null, err
	}
	want := slices.Compact(slices.Sorted(slices.Values(verts)))
	cands := db.adj.Common(want, func(e handle.Handle) bool { return e.Type().Dimension() == d })
	for _, c := range cands {
		got, err := db.elementVerts(c)
		if err != nil {
			return handle.Null, err
		}
		if len(got) != len(want) {
			continue
		}
		if slices.Equal(slices.Sorted(slices.Values(got)), want) {
			return c, nil
		}
	}
	return handle.Null, nil
}

// Adjacencies returns the entities of dimension toDim adjacent to the
// entities of from, combined with op.
//
// Downward queries return canonical sides; sides that do not exist are
// created when create is set and skipped otherwise. Upward queries return
// the elements whose corners include every corner of the input entity.
// Querying an entity's own dimension returns the entity.
func (db *DB) Adjacencies(from *hrange.Range, toDim int, create bool, op SetOp) (*hrange.Range, error) {
	if toDim < 0 || toDim > 3 {
		return nil, fmt.Errorf("%w: dimension %d", ErrInvalidArgument, toDim)
	}
	if op != Intersect && op != Union {
		return nil, fmt.Errorf("%w: %s", ErrInvalidArgument, op)
	}
	var out *hrange.Range
	for h := range from.All() {
		adj, err := db.adjacent(h, toDim, create)
		if err != nil {
			return nil, translateError("adjacencies", h, err)
		}
		switch {
		case out == nil:
			out = adj
		case op == Intersect:
			out = hrange.Intersect(out, adj)
		default:
			out.Merge(adj)
		}
		if op == Intersect && out.Empty() {
			break
		}
	}
	if out == nil {
		out = hrange.New()
	}
	return out, nil
}

func (db *DB) adjacent(h handle.Handle, toDim int, create bool) (*hrange.Range, error) {
	if !db.seqs.IsLive(h) {
		return nil, fmt.Errorf("%w: entity", ErrNotFound)
	}
	t := h.Type()
	if t == handle.EntitySet {
		return nil, fmt.Errorf("%w: entity sets have no adjacencies", ErrUnsupportedInput)
	}
	d := t.Dimension()
	switch {
	case toDim == d:
		return hrange.Of(h), nil
	case toDim > d:
		if err := db.ensureAdjacency(); err != nil {
			return nil, err
		}
		keep := func(e handle.Handle) bool { return e.Type().Dimension() == toDim }
		if t == handle.Vertex {
			out := hrange.New()
			for _, e := range db.adj.Of(h) {
				if keep(e) {
					out.Insert(e)
				}
			}
			return out, nil
		}
		verts, err := db.elementVerts(h)
		if err != nil {
			return nil, err
		}
		return hrange.FromSlice(db.adj.Common(verts, keep)), nil
	case toDim == 0:
		verts, err := db.elementVerts(h)
		if err != nil {
			return nil, err
		}
		return hrange.FromSlice(verts), nil
	default:
		sides, err := db.sides(h, toDim, create)
		if err != nil {
			return nil, err
		}
		return hrange.FromSlice(sides), nil
	}
}

// sides returns the existing (or, with create, new) canonical sides of h
// of dimension toDim, which lies strictly between 0 and h's dimension.
func (db *DB) sides(h handle.Handle, toDim int, create bool) ([]handle.Handle, error) {
	t := h.Type()
	conn, err := db.seqs.Connectivity(h)
	if err != nil {
		return nil, err
	}
	if t == handle.Polyhedron {
		faces := slices.Clone(conn)
		if toDim == 2 {
			return faces, nil
		}
		var out []handle.Handle
		for _, f := range faces {
			fs, err := db.sides(f, toDim, create)
			if err != nil {
				return nil, err
			}
			out = append(out, fs...)
		}
		return out, nil
	}

	cs := corners(t, conn)
	var table [][]int
	if t == handle.Polygon {
		table = topo.PolygonEdges(len(cs))
	} else if table, err = topo.Sides(t, toDim); err != nil {
		return nil, err
	}
	// Side creation may move storage, so work on a copy.
	cs = slices.Clone(cs)
	out := make([]handle.Handle, 0, len(table))
	for _, side := range table {
		sc := topo.SideConn(cs, side)
		e, err := db.FindElement(toDim, sc)
		if err != nil {
			return nil, err
		}
		if e == handle.Null {
			if !create {
				continue
			}
			if e, err = db.CreateElement(topo.SideType(toDim, len(sc)), sc); err != nil {
				return nil, err
			}
		}
		out = append(out, e)
	}
	return out, nil
}

// SideNumber locates child among the canonical sides of parent. It returns
// the side index, the sense (+1 same orientation, -1 reversed) and the
// rotation offset of child's connectivity relative to the canonical side.
func (db *DB) SideNumber(parent, child handle.Handle) (side, sense, offset int, err error) {
	pconn, err := db.seqs.Connectivity(parent)
	if err != nil {
		return -1, 0, 0, translateError("side number", parent, err)
	}
	pt := parent.Type()
	if pt == handle.Polyhedron {
		if i := slices.Index(pconn, child); i >= 0 {
			return i, 1, 0, nil
		}
		return -1, 0, 0, translateError("side number", child, fmt.Errorf("%w: not a face of %s", ErrNotFound, parent))
	}
	var cconn []handle.Handle
	if child.Type() == handle.Vertex {
		if !db.seqs.IsLive(child) {
			return -1, 0, 0, translateError("side number", child, ErrNotFound)
		}
		cconn = []handle.Handle{child}
	} else {
		c, err := db.seqs.Connectivity(child)
		if err != nil {
			return -1, 0, 0, translateError("side number", child, err)
		}
		cconn = corners(child.Type(), c)
	}
	side, sense, offset, err = topo.SideNumber(pt, corners(pt, pconn), child.Type(), cconn)
	if err != nil {
		return -1, 0, 0, translateError("side number", child, err)
	}
	return side, sense, offset, nil
}

// FindSkin returns the boundary of entities, which must share one dimension
// in 1..3. See skin.FindSkin for the options.
func (db *DB) FindSkin(entities *hrange.Range, opts ...skin.Option) (*skin.Result, error) {
	start := time.Now()
	res, err := db.findSkin(entities, opts...)
	skinned, nonManifold := 0, 0
	if res != nil {
		skinned, nonManifold = res.Skin.Size(), len(res.NonManifold)
	}
	db.metrics.RecordSkin(entities.Size(), skinned, time.Since(start), err)
	db.logger.LogSkin(entities.Size(), skinned, nonManifold, err)
	return res, err
}

func (db *DB) findSkin(entities *hrange.Range, opts ...skin.Option) (*skin.Result, error) {
	if err := db.ensureAdjacency(); err != nil {
		return nil, err
	}
	return skin.FindSkin(db, entities, opts...)
}

// FindSkinVertices returns the vertices on the boundary of entities without
// looking up or creating side entities.
func (db *DB) FindSkinVertices(entities *hrange.Range) (*hrange.Range, error) {
	return skin.FindSkinVertices(db, entities)
}

// Classify2DBoundary partitions the edges of a face set into boundary,
// feature and non-manifold edges. Missing edges are created. See
// skin.Classify2DBoundary.
func (db *DB) Classify2DBoundary(faces *hrange.Range, cosThreshold float64) (*skin.Classification, error) {
	if err := db.ensureAdjacency(); err != nil {
		return nil, err
	}
	return skin.Classify2DBoundary(db, faces, cosThreshold)
}
