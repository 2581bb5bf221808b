package skin

import (
	"encoding/binary"
	"fmt"
	"slices"

	"github.com/cespare/xxhash/v2"
	"github.com/hupe1980/meshgo/core"
	"github.com/hupe1980/meshgo/handle"
	"github.com/hupe1980/meshgo/hrange"
	"github.com/hupe1980/meshgo/internal/topo"
)

// side is one distinct (d-1)-dimensional side seen while walking the input.
type side struct {
	sorted   []handle.Handle // canonical key
	oriented []handle.Handle // corners as seen from the first user, outward
	typ      handle.Type
	count    int
	users    []int         // input entity ordinals, for 2-D classification
	forward  []bool        // per user: traverses oriented in the same direction
	existing handle.Handle // known side entity, e.g. a polyhedron face
}

// sideTable counts sides by canonical vertex tuple. Tuples are hashed with
// xxhash into buckets; collisions are resolved by comparing the tuples.
type sideTable struct {
	buckets map[uint64][]int
	sides   []*side
	buf     []byte
}

func newSideTable(hint int) *sideTable {
	return &sideTable{buckets: make(map[uint64][]int, hint)}
}

func (st *sideTable) key(sorted []handle.Handle) uint64 {
	st.buf = st.buf[:0]
	for _, h := range sorted {
		st.buf = binary.LittleEndian.AppendUint64(st.buf, uint64(h))
	}
	return xxhash.Sum64(st.buf)
}

// add records one use of the side with the given oriented corners.
func (st *sideTable) add(t handle.Type, oriented []handle.Handle, user int, existing handle.Handle) *side {
	sorted := slices.Clone(oriented)
	slices.Sort(sorted)
	k := st.key(sorted)
	for _, i := range st.buckets[k] {
		s := st.sides[i]
		if slices.Equal(s.sorted, sorted) {
			s.count++
			s.users = append(s.users, user)
			sn, _ := topo.Sense(s.oriented, oriented)
			s.forward = append(s.forward, sn >= 0)
			if s.existing == handle.Null {
				s.existing = existing
			}
			return s
		}
	}
	s := &side{
		sorted:   sorted,
		oriented: slices.Clone(oriented),
		typ:      t,
		count:    1,
		users:    []int{user},
		forward:  []bool{true},
		existing: existing,
	}
	st.buckets[k] = append(st.buckets[k], len(st.sides))
	st.sides = append(st.sides, s)
	return s
}

// inputDim validates that entities share one dimension in 1..3 and returns
// it. An empty input reports dimension -1.
func inputDim(entities *hrange.Range) (int, error) {
	if entities.Empty() {
		return -1, nil
	}
	if !entities.AllOfOneDimension() {
		return 0, fmt.Errorf("%w: mixed dimensions", core.ErrUnsupportedInput)
	}
	d := entities.Front().Type().Dimension()
	if d < 1 || d > 3 {
		return 0, fmt.Errorf("%w: cannot skin dimension %d", core.ErrUnsupportedInput, d)
	}
	if entities.NumOfType(handle.Knife) > 0 {
		return 0, fmt.Errorf("%w: %s elements", core.ErrUnsupportedInput, handle.Knife)
	}
	return d, nil
}

// collect walks the input entities and records every (d-1)-side.
func collect(m Mesh, entities *hrange.Range, d int) (*sideTable, error) {
	st := newSideTable(entities.Size() * 4)
	user := 0
	for e := range entities.All() {
		if err := collectOne(m, st, e, d, user); err != nil {
			return nil, err
		}
		user++
	}
	return st, nil
}

func collectOne(m Mesh, st *sideTable, e handle.Handle, d, user int) error {
	conn, err := m.Connectivity(e)
	if err != nil {
		return err
	}
	t := e.Type()
	switch t {
	case handle.Polyhedron:
		for _, f := range conn {
			fc, err := m.Connectivity(f)
			if err != nil {
				return fmt.Errorf("polyhedron %s face %s: %w", e, f, err)
			}
			st.add(f.Type(), corners(f.Type(), fc), user, f)
		}
		return nil
	case handle.Polygon:
		for _, ed := range topo.PolygonEdges(len(conn)) {
			st.add(handle.Edge, topo.SideConn(conn, ed), user, handle.Null)
		}
		return nil
	}
	sides, err := topo.Sides(t, d-1)
	if err != nil {
		return err
	}
	cs := corners(t, conn)
	for _, s := range sides {
		oriented := topo.SideConn(cs, s)
		st.add(topo.SideType(d-1, len(s)), oriented, user, handle.Null)
	}
	return nil
}

// corners drops higher-order nodes.
func corners(t handle.Type, conn []handle.Handle) []handle.Handle {
	if n := t.NumCorners(); n > 0 && len(conn) > n {
		return conn[:n]
	}
	return conn
}
