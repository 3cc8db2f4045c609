package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypes(t *testing.T) {
	{ // Test packed int for edge labeling
		en := NewEdgeKey([2]int{1, 0})
		assert.Equal(t, EdgeKey(1<<32), en)
		assert.Equal(t, [2]int{0, 1}, en.GetVertices(false))

		en = NewEdgeKey([2]int{0, 1})
		assert.Equal(t, EdgeKey(1<<32), en)
		assert.Equal(t, [2]int{0, 1}, en.GetVertices(false))
		assert.Equal(t, [2]int{1, 0}, en.GetVertices(true))

		en = NewEdgeKey([2]int{100, 1})
		assert.Equal(t, EdgeKey(100*(1<<32)+1), en)
		assert.Equal(t, [2]int{1, 100}, en.GetVertices(false))

		en = NewEdgeKey([2]int{100, 100001})
		assert.Equal(t, EdgeKey(100001*(1<<32)+100), en)
		assert.Equal(t, [2]int{100, 100001}, en.GetVertices(false))

		// Test maximum/minimum indices
		en = NewEdgeKey([2]int{1<<32 - 1, 1<<32 - 1})
		assert.Equal(t, EdgeKey(1<<64-1), en)
		assert.Equal(t, [2]int{1<<32 - 1, 1<<32 - 1}, en.GetVertices(false))

		assert.Panics(t, func() { NewEdgeKey([2]int{-1, 2}) })
	}
	{ // Face keys ignore orientation and starting vertex
		f1 := NewFaceKey([]int{7, 3, 5})
		f2 := NewFaceKey([]int{5, 7, 3})
		f3 := NewFaceKey([]int{3, 7, 5})
		assert.Equal(t, f1, f2)
		assert.Equal(t, f1, f3)
		assert.Equal(t, 3, f1.Corners())
		assert.Equal(t, []int{3, 5, 7}, f1.GetVertices())

		q1 := NewFaceKey([]int{0, 1, 5, 4})
		q2 := NewFaceKey([]int{4, 5, 1, 0})
		assert.Equal(t, q1, q2)
		assert.Equal(t, 4, q1.Corners())
		assert.NotEqual(t, q1, NewFaceKey([]int{0, 1, 5}))

		assert.Panics(t, func() { NewFaceKey([]int{1, 2}) })
	}
}
