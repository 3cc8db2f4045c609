package partitioner

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/femesh/mesh"
	"github.com/notargets/femesh/modifiers"
)

func TestDualGraph(t *testing.T) {
	m := mesh.HexGrid(3, 1, 1)
	xadj, adjncy, vwgt, adjwgt := DualGraph(m)
	assert.Equal(t, []int32{0, 1, 3, 4}, xadj)
	assert.Equal(t, []int32{1, 2, 0, 1}, adjncy)
	assert.Equal(t, []int32{8, 8, 8}, vwgt)
	assert.Equal(t, []int32{4, 4, 4, 4}, adjwgt)

	q := mesh.QuadGrid(2, 1)
	xadj, adjncy, _, adjwgt = DualGraph(q)
	assert.Equal(t, []int32{0, 1, 2}, xadj)
	assert.Equal(t, []int32{1, 0}, adjncy)
	assert.Equal(t, []int32{2, 2}, adjwgt)
}

func TestAutoPartition(t *testing.T) {
	m := mesh.HexGrid(4, 1, 1)
	out, err := DefaultAutoPartition(2).Apply(m)
	require.NoError(t, err)
	count := map[int]int{}
	for i := range out.Elements {
		count[out.Elements[i].GID]++
	}
	// new partitions are numbered after the existing partition 0
	assert.Equal(t, map[int]int{1: 2, 2: 2}, count)
	assert.Equal(t, out.Elements[0].GID, out.Elements[1].GID)
	assert.Equal(t, out.Elements[2].GID, out.Elements[3].GID)
	for i := range m.Elements {
		assert.Equal(t, 0, m.Elements[i].GID)
	}
}

func TestAutoPartitionSingle(t *testing.T) {
	m := mesh.HexGrid(2, 1, 1)
	m.Elements[1].GID = 4
	out, err := AutoPartition{Parts: 1}.Apply(m)
	require.NoError(t, err)
	for i := range out.Elements {
		assert.Equal(t, 5, out.Elements[i].GID)
	}
}

func TestAutoPartitionErrors(t *testing.T) {
	m := mesh.HexGrid(2, 1, 1)
	for _, p := range []AutoPartition{
		{Parts: 0},
		{Parts: 3},
		{Parts: 2, Imbalance: 0.5},
		{Parts: 2, Objective: "balance"},
	} {
		_, err := p.Apply(m)
		assert.True(t, errors.Is(err, modifiers.ErrInvalidParameter), "%+v", p)
	}
	_, err := AutoPartition{Parts: 1}.Apply(nil)
	assert.True(t, errors.Is(err, modifiers.ErrInapplicable))
}
