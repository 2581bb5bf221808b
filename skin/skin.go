package skin

import (
	"fmt"

	"github.com/hupe1980/meshgo/core"
	"github.com/hupe1980/meshgo/handle"
	"github.com/hupe1980/meshgo/hrange"
	"github.com/hupe1980/meshgo/internal/topo"
)

// Mesh is the entity access the skinner needs.
type Mesh interface {
	// Connectivity returns the nodes of an element, or the faces of a
	// polyhedron.
	Connectivity(h handle.Handle) ([]handle.Handle, error)
	// Coords returns the position of a vertex.
	Coords(h handle.Handle) ([3]float64, error)
	// FindElement returns the entity of dimension d whose corner vertices
	// are exactly verts in any order, or handle.Null.
	FindElement(d int, verts []handle.Handle) (handle.Handle, error)
	// CreateElement creates an element of type t.
	CreateElement(t handle.Type, conn []handle.Handle) (handle.Handle, error)
}

type options struct {
	create bool
	strict bool
}

// Option configures FindSkin.
type Option func(*options)

// WithCreateElements creates skin sides that do not exist yet, oriented so
// their normal points out of the input region.
func WithCreateElements() Option {
	return func(o *options) { o.create = true }
}

// WithStrictManifold makes FindSkin return core.ErrNonManifold, together
// with the full result, when any side is used more than twice.
func WithStrictManifold() Option {
	return func(o *options) { o.strict = true }
}

// Result is the outcome of FindSkin.
type Result struct {
	// Skin holds the existing or created sides used exactly once.
	Skin *hrange.Range
	// Reversed holds the existing skin sides whose orientation opposes
	// the outward orientation.
	Reversed *hrange.Range
	// Missing counts skin sides that do not exist and were not created.
	Missing int
	// Interior counts sides shared by exactly two input entities.
	Interior int
	// NonManifold lists the sorted corner tuples of sides used more than
	// twice.
	NonManifold [][]handle.Handle
	// NonManifoldEntities holds the non-manifold sides that exist.
	NonManifoldEntities *hrange.Range
}

// FindSkin returns the (d-1)-dimensional boundary of entities, which must
// all have the same dimension d in 1..3.
func FindSkin(m Mesh, entities *hrange.Range, opts ...Option) (*Result, error) {
	var o options
	for _, fn := range opts {
		fn(&o)
	}
	res := &Result{
		Skin:                hrange.New(),
		Reversed:            hrange.New(),
		NonManifoldEntities: hrange.New(),
	}
	d, err := inputDim(entities)
	if err != nil || d < 0 {
		return res, err
	}
	st, err := collect(m, entities, d)
	if err != nil {
		return nil, err
	}

	for _, s := range st.sides {
		switch {
		case s.count == 2:
			res.Interior++
			continue
		case s.count > 2:
			res.NonManifold = append(res.NonManifold, s.sorted)
			h, err := existingSide(m, s, d-1)
			if err != nil {
				return nil, err
			}
			if h != handle.Null {
				res.NonManifoldEntities.Insert(h)
			}
			continue
		}

		h, err := existingSide(m, s, d-1)
		if err != nil {
			return nil, err
		}
		if h == handle.Null {
			if !o.create {
				res.Missing++
				continue
			}
			if h, err = m.CreateElement(s.typ, s.oriented); err != nil {
				return nil, fmt.Errorf("create skin %s: %w", s.typ, err)
			}
			res.Skin.Insert(h)
			continue
		}
		res.Skin.Insert(h)
		if d > 1 && h.Type() != handle.Vertex {
			conn, err := m.Connectivity(h)
			if err != nil {
				return nil, err
			}
			if sn, _ := topo.Sense(s.oriented, corners(h.Type(), conn)); sn < 0 {
				res.Reversed.Insert(h)
			}
		}
	}

	if o.strict && len(res.NonManifold) > 0 {
		return res, fmt.Errorf("%w: %d sides used more than twice", core.ErrNonManifold, len(res.NonManifold))
	}
	return res, nil
}

func existingSide(m Mesh, s *side, d int) (handle.Handle, error) {
	if s.existing != handle.Null {
		return s.existing, nil
	}
	if d == 0 {
		return s.oriented[0], nil
	}
	return m.FindElement(d, s.sorted)
}

// FindSkinVertices returns the vertices of the skin of entities without
// looking up or creating any side entity.
func FindSkinVertices(m Mesh, entities *hrange.Range) (*hrange.Range, error) {
	out := hrange.New()
	d, err := inputDim(entities)
	if err != nil || d < 0 {
		return out, err
	}
	st, err := collect(m, entities, d)
	if err != nil {
		return nil, err
	}
	for _, s := range st.sides {
		if s.count != 1 {
			continue
		}
		for _, v := range s.sorted {
			out.Insert(v)
		}
	}
	return out, nil
}
