package meshgo

import (
	"fmt"
	"slices"
	"time"

	"github.com/hupe1980/meshgo/handle"
	"github.com/hupe1980/meshgo/hrange"
	"github.com/hupe1980/meshgo/internal/adjacency"
	"github.com/hupe1980/meshgo/internal/sequence"
	"github.com/hupe1980/meshgo/internal/tag"
	"github.com/hupe1980/meshgo/resource"
)

// DB is an in-memory mesh entity database.
//
// A DB owns every entity it creates: vertices with coordinates, elements
// with connectivity, entity sets and the tags attached to any of them.
// Entities are addressed by handle.Handle values that encode type and
// index, so the handles of one type form contiguous runs that compress
// well in an hrange.Range.
//
// A DB is not safe for concurrent use. Callers that share one across
// goroutines must serialize access.
type DB struct {
	cfg     Config
	rc      *resource.Controller
	seqs    *sequence.Manager
	tags    *tag.Store
	adj     *adjacency.Index
	logger  *Logger
	metrics MetricsCollector

	// tracking holds the live sets created with SetTracking.
	tracking *hrange.Range
}

// New creates an empty database.
//
// Example:
//
//	db, err := meshgo.New(
//	    meshgo.WithSequenceSize(4096, 1<<16),
//	    meshgo.WithMemoryLimit(256<<20),
//	)
func New(opts ...Option) (*DB, error) {
	o, err := applyOptions(opts...)
	if err != nil {
		return nil, err
	}
	rc := resource.NewController(resource.Config{MemoryLimitBytes: o.cfg.MemoryLimitBytes})
	seqs := sequence.NewManager(o.cfg.sequenceConfig(), rc)
	db := &DB{
		cfg:      o.cfg,
		rc:       rc,
		seqs:     seqs,
		tags:     tag.NewStore(seqs, rc),
		adj:      adjacency.New(seqs),
		logger:   o.logger,
		metrics:  o.metricsCollector,
		tracking: hrange.New(),
	}
	if o.cfg.MaintainAdjacencies {
		// Nothing exists yet, so the empty index is complete.
		db.adj.MarkBuilt()
	}
	db.logger.Debug("database created",
		"initial_sequence_size", seqs.Config().InitialSequenceSize,
		"max_sequence_size", seqs.Config().MaxSequenceSize,
		"recycle_handles", o.cfg.RecycleHandles,
		"maintain_adjacencies", o.cfg.MaintainAdjacencies,
	)
	return db, nil
}

// Config returns the configuration the database was created with.
func (db *DB) Config() Config { return db.cfg }

// MemoryUsage returns the bytes currently held by sequences and dense tags.
func (db *DB) MemoryUsage() int64 { return db.rc.MemoryUsage() }

// PeakMemoryUsage returns the highest MemoryUsage observed.
func (db *DB) PeakMemoryUsage() int64 { return db.rc.PeakMemoryUsage() }

// IsLive reports whether h identifies a live entity.
func (db *DB) IsLive(h handle.Handle) bool { return db.seqs.IsLive(h) }

// CreateVertex creates a vertex at (x, y, z).
func (db *DB) CreateVertex(x, y, z float64) (handle.Handle, error) {
	start := time.Now()
	h, err := db.seqs.CreateVertex(x, y, z)
	db.metrics.RecordCreate(handle.Vertex, 1, time.Since(start), err)
	if err != nil {
		db.logger.LogCreate(handle.Vertex, 1, err)
		return handle.Null, translateError("create vertex", handle.Null, err)
	}
	return h, nil
}

// CreateVertices creates len(coords)/3 vertices from interleaved x, y, z
// values. The vertices occupy one contiguous handle run.
func (db *DB) CreateVertices(coords []float64) (*hrange.Range, error) {
	if len(coords) == 0 || len(coords)%3 != 0 {
		return nil, fmt.Errorf("%w: %d coordinates is not a positive multiple of 3", ErrInvalidArgument, len(coords))
	}
	blk, err := db.ReserveVertices(len(coords) / 3)
	if err != nil {
		return nil, err
	}
	copy(blk.Coords, coords)
	return blk.Handles(), nil
}

// CreateElement creates an element of type t.
//
// conn lists the element's vertices in canonical order. For a Polyhedron
// conn lists its faces instead. The connectivity is copied.
func (db *DB) CreateElement(t handle.Type, conn []handle.Handle) (handle.Handle, error) {
	start := time.Now()
	h, err := db.createElement(t, conn)
	db.metrics.RecordCreate(t, 1, time.Since(start), err)
	if err != nil {
		db.logger.LogCreate(t, 1, err)
	}
	return h, err
}

func (db *DB) createElement(t handle.Type, conn []handle.Handle) (handle.Handle, error) {
	if !t.IsElement() {
		return handle.Null, fmt.Errorf("%w: %s is not an element type", ErrUnsupportedInput, t)
	}
	if !t.ValidNodeCount(len(conn)) {
		return handle.Null, newConnectivityError(t, len(conn))
	}
	if err := db.checkConnectivity(t, conn); err != nil {
		return handle.Null, err
	}
	h, err := db.seqs.CreateElement(t, conn)
	if err != nil {
		return handle.Null, translateError("create "+t.String(), handle.Null, err)
	}
	if db.adj.Built() {
		verts, err := db.elementVerts(h)
		if err == nil {
			err = db.adj.Add(h, verts)
		}
		if err != nil {
			db.adj.Reset()
		}
	}
	return h, nil
}

// checkConnectivity verifies that every entity referenced by conn is live
// and of the kind t expects.
func (db *DB) checkConnectivity(t handle.Type, conn []handle.Handle) error {
	for _, c := range conn {
		if t == handle.Polyhedron {
			if c.Type().Dimension() != 2 {
				return fmt.Errorf("%w: polyhedron face %s is not two-dimensional", ErrInvalidArgument, c)
			}
		} else if c.Type() != handle.Vertex {
			return fmt.Errorf("%w: %s node %s is not a vertex", ErrInvalidArgument, t, c)
		}
		if !db.seqs.IsLive(c) {
			return translateError("create "+t.String(), c, fmt.Errorf("%w: referenced entity", ErrNotFound))
		}
	}
	return nil
}

// CreateSet creates an empty entity set.
func (db *DB) CreateSet(flags SetFlags) (handle.Handle, error) {
	start := time.Now()
	h, err := db.seqs.CreateSet(flags)
	db.metrics.RecordCreate(handle.EntitySet, 1, time.Since(start), err)
	if err != nil {
		db.logger.LogCreate(handle.EntitySet, 1, err)
		return handle.Null, translateError("create set", handle.Null, err)
	}
	if flags&SetTracking != 0 {
		db.tracking.Insert(h)
	}
	return h, nil
}

// DeleteEntity deletes a single entity.
func (db *DB) DeleteEntity(h handle.Handle) error {
	return db.DeleteEntities(hrange.Of(h))
}

// DeleteEntities deletes every entity of r, highest type first, so that
// elements go before the vertices they reference.
//
// Deleting a vertex still used by a live element, or a face still used by
// a live polyhedron, fails with ErrInvalidArgument. Deletion stops at the
// first failure; entities processed before it stay deleted.
func (db *DB) DeleteEntities(r *hrange.Range) error {
	start := time.Now()
	reclaimed := 0
	var err error
	for h := range r.Backward() {
		var rec bool
		rec, err = db.deleteOne(h)
		if err != nil {
			err = translateError("delete", h, err)
			break
		}
		if rec {
			reclaimed++
		}
	}
	db.metrics.RecordDelete(r.Size(), time.Since(start), err)
	db.logger.LogDelete(r.Size(), reclaimed, err)
	return err
}

func (db *DB) deleteOne(h handle.Handle) (bool, error) {
	s, _, err := db.seqs.Find(h)
	if err != nil {
		return false, err
	}
	t := h.Type()
	switch {
	case t == handle.Vertex:
		if err := db.ensureAdjacency(); err != nil {
			return false, err
		}
		if db.adj.InUse(h) {
			return false, fmt.Errorf("%w: vertex is used by %d elements", ErrInvalidArgument, len(db.adj.Of(h)))
		}
		db.adj.ClearVertex(h)
	case t.IsElement():
		if t.Dimension() == 2 {
			users, err := db.polyhedraUsing(h)
			if err != nil {
				return false, err
			}
			if len(users) > 0 {
				return false, fmt.Errorf("%w: face is used by polyhedron %s", ErrInvalidArgument, users[0])
			}
		}
		if db.adj.Built() {
			verts, err := db.elementVerts(h)
			if err != nil {
				return false, err
			}
			db.adj.Remove(h, verts)
		}
	case t == handle.EntitySet:
		if err := db.unlinkSet(h); err != nil {
			return false, err
		}
		db.tracking.Erase(h)
	}

	if err := db.tags.PurgeEntity(h); err != nil {
		return false, err
	}
	db.untrack(h)

	start := s.Start()
	reclaimed, err := db.seqs.Delete(h)
	if err != nil {
		return false, err
	}
	if reclaimed {
		db.tags.DropSequence(start)
		if t == handle.Vertex {
			db.adj.DropSequence(start)
		}
	}
	return reclaimed, nil
}

// NumEntitiesByType returns the number of live entities of type t.
func (db *DB) NumEntitiesByType(t handle.Type) int { return db.seqs.Count(t) }

// NumEntitiesByDimension returns the number of live entities of dimension d.
func (db *DB) NumEntitiesByDimension(d int) int {
	n := 0
	for _, t := range handle.TypesOfDim(d) {
		n += db.seqs.Count(t)
	}
	return n
}

// EntitiesByType returns the live entities of type t.
func (db *DB) EntitiesByType(t handle.Type) *hrange.Range { return db.seqs.Entities(t) }

// EntitiesByDimension returns the live entities of dimension d.
func (db *DB) EntitiesByDimension(d int) *hrange.Range { return db.seqs.EntitiesOfDim(d) }

// Coords returns the position of a vertex.
func (db *DB) Coords(h handle.Handle) ([3]float64, error) {
	xyz, err := db.seqs.Coords(h)
	return xyz, translateError("coords", h, err)
}

// SetCoords moves a vertex.
func (db *DB) SetCoords(h handle.Handle, xyz [3]float64) error {
	return translateError("set coords", h, db.seqs.SetCoords(h, xyz))
}

// Connectivity returns a copy of the nodes of an element, or of the faces
// of a polyhedron.
func (db *DB) Connectivity(h handle.Handle) ([]handle.Handle, error) {
	conn, err := db.seqs.Connectivity(h)
	if err != nil {
		return nil, translateError("connectivity", h, err)
	}
	return append([]handle.Handle(nil), conn...), nil
}

// SetConnectivity replaces the connectivity of an element. The node count
// of fixed-size types cannot change.
func (db *DB) SetConnectivity(h handle.Handle, conn []handle.Handle) error {
	t := h.Type()
	if !t.IsElement() {
		return translateError("set connectivity", h, fmt.Errorf("%w: %s has no connectivity", ErrUnsupportedInput, t))
	}
	if !t.ValidNodeCount(len(conn)) {
		return newConnectivityError(t, len(conn))
	}
	if err := db.checkConnectivity(t, conn); err != nil {
		return err
	}
	var old []handle.Handle
	if db.adj.Built() {
		var err error
		if old, err = db.elementVerts(h); err != nil {
			return translateError("set connectivity", h, err)
		}
		old = slices.Clone(old)
	}
	if err := db.seqs.SetConnectivity(h, conn); err != nil {
		return translateError("set connectivity", h, err)
	}
	if !db.adj.Built() {
		return nil
	}
	if t.Dimension() == 2 {
		// Polyhedra reach vertices through their faces; rebuild lazily.
		if users, err := db.polyhedraUsing(h); err != nil || len(users) > 0 {
			db.adj.Reset()
			return nil
		}
	}
	db.adj.Remove(h, old)
	verts, err := db.elementVerts(h)
	if err == nil {
		err = db.adj.Add(h, verts)
	}
	if err != nil {
		db.adj.Reset()
	}
	return nil
}

// VertexBlock is a run of vertices reserved in one sequence.
type VertexBlock struct {
	Start handle.Handle
	Count int
	// Coords aliases the sequence storage: Count interleaved x, y, z
	// triples. It stays valid until a vertex of the block is deleted.
	Coords []float64
}

// Handles returns the handles of the block.
func (b *VertexBlock) Handles() *hrange.Range {
	return hrange.Span(b.Start, b.Start.Add(uint64(b.Count-1)))
}

// ElementBlock is a run of same-type elements reserved in one sequence.
type ElementBlock struct {
	Start handle.Handle
	Count int
	Nodes int
	// Conn aliases the sequence storage: Count runs of Nodes vertices.
	Conn []handle.Handle
}

// Handles returns the handles of the block.
func (b *ElementBlock) Handles() *hrange.Range {
	return hrange.Span(b.Start, b.Start.Add(uint64(b.Count-1)))
}

// ReserveVertices allocates count contiguous vertices at the origin and
// exposes their coordinate storage for direct filling.
func (db *DB) ReserveVertices(count int) (*VertexBlock, error) {
	start := time.Now()
	h, coords, err := db.seqs.ReserveVertices(count)
	db.metrics.RecordCreate(handle.Vertex, count, time.Since(start), err)
	db.logger.LogReserve(handle.Vertex, h, count, err)
	if err != nil {
		return nil, translateError("reserve vertices", handle.Null, err)
	}
	return &VertexBlock{Start: h, Count: count, Coords: coords}, nil
}

// ReserveElements allocates count contiguous elements of type t with nodes
// nodes each and exposes their connectivity storage for direct filling.
// Polygons and polyhedra cannot be reserved.
//
// The adjacency index is rebuilt by topology queries until every node of
// the block has been filled with a live vertex.
func (db *DB) ReserveElements(t handle.Type, nodes, count int) (*ElementBlock, error) {
	if t.IsVariable() || !t.IsElement() {
		return nil, fmt.Errorf("%w: cannot reserve %s", ErrUnsupportedInput, t)
	}
	start := time.Now()
	h, conn, err := db.seqs.ReserveElements(t, nodes, count)
	db.metrics.RecordCreate(t, count, time.Since(start), err)
	db.logger.LogReserve(t, h, count, err)
	if err != nil {
		return nil, translateError("reserve "+t.String(), handle.Null, err)
	}
	db.adj.Reset()
	return &ElementBlock{Start: h, Count: count, Nodes: nodes, Conn: conn}, nil
}
