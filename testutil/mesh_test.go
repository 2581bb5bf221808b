package testutil

import (
	"testing"

	"github.com/hupe1980/meshgo/handle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingBuilder struct {
	next     uint64
	elements map[handle.Type]int
}

func (b *countingBuilder) CreateVertex(x, y, z float64) (handle.Handle, error) {
	b.next++
	return handle.New(handle.Vertex, b.next), nil
}

func (b *countingBuilder) CreateElement(t handle.Type, conn []handle.Handle) (handle.Handle, error) {
	if b.elements == nil {
		b.elements = map[handle.Type]int{}
	}
	b.elements[t]++
	return handle.New(t, uint64(b.elements[t])), nil
}

func TestStructuredHexGrid(t *testing.T) {
	b := &countingBuilder{}
	m, err := StructuredHexGrid(b, 2, 2, 2)
	require.NoError(t, err)
	assert.Len(t, m.Vertices, 27)
	assert.Len(t, m.Elements, 8)
	assert.Equal(t, [3]float64{2, 2, 2}, m.Coords[len(m.Coords)-1])
}

func TestTetBlock(t *testing.T) {
	b := &countingBuilder{}
	m, err := TetBlock(b, 1, 1, 1)
	require.NoError(t, err)
	assert.Len(t, m.Elements, 6)
	assert.Len(t, m.Vertices, 8)
}

func TestRNG_Reset(t *testing.T) {
	rng := NewRNG(7)
	a := rng.Intn(1000)
	rng.Reset()
	assert.Equal(t, a, rng.Intn(1000))
	assert.Equal(t, int64(7), rng.Seed())
}
