package adjacency

import (
	"testing"

	"github.com/hupe1980/meshgo/handle"
	"github.com/hupe1980/meshgo/internal/sequence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex_AddRemove(t *testing.T) {
	m := sequence.NewManager(sequence.Config{InitialSequenceSize: 4}, nil)
	var vs []handle.Handle
	for range 5 {
		v, err := m.CreateVertex(0, 0, 0)
		require.NoError(t, err)
		vs = append(vs, v)
	}
	t1, _ := m.CreateElement(handle.Tri, vs[:3])
	t2, _ := m.CreateElement(handle.Tri, []handle.Handle{vs[1], vs[2], vs[3]})
	q, _ := m.CreateElement(handle.Quad, vs[1:5])

	x := New(m)
	assert.False(t, x.Built())
	require.NoError(t, x.Add(t2, []handle.Handle{vs[1], vs[2], vs[3]}))
	require.NoError(t, x.Add(t1, vs[:3]))
	require.NoError(t, x.Add(q, vs[1:5]))
	x.MarkBuilt()

	assert.Equal(t, []handle.Handle{t1, t2}, x.Of(vs[2])[:2])
	assert.Equal(t, []handle.Handle{t1}, x.Of(vs[0]))
	assert.Equal(t, []handle.Handle{q}, x.Of(vs[4]))

	common := x.Common([]handle.Handle{vs[1], vs[2]}, func(e handle.Handle) bool { return e.Type() == handle.Tri })
	assert.Equal(t, []handle.Handle{t1, t2}, common)
	assert.Equal(t, []handle.Handle{t2, q}, x.Common([]handle.Handle{vs[1], vs[2], vs[3]}, nil))

	x.Remove(t1, vs[:3])
	assert.False(t, x.InUse(vs[0]))
	assert.Equal(t, []handle.Handle{t2, q}, x.Of(vs[1]))

	x.Reset()
	assert.False(t, x.Built())
	assert.Nil(t, x.Of(vs[1]))
}

func TestIndex_DeadVertex(t *testing.T) {
	m := sequence.NewManager(sequence.Config{}, nil)
	v, _ := m.CreateVertex(0, 0, 0)
	x := New(m)
	e := handle.New(handle.Edge, 1)
	require.NoError(t, x.Add(e, []handle.Handle{v}))

	x.ClearVertex(v)
	assert.Empty(t, x.Of(v))

	_, err := m.Delete(v)
	require.NoError(t, err)
	assert.Error(t, x.Add(e, []handle.Handle{v}))
	assert.NotPanics(t, func() { x.Remove(e, []handle.Handle{v}) })
	assert.Nil(t, x.Of(v))
}
