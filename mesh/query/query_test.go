package query

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/femesh/mesh"
)

func TestNodeElementList(t *testing.T) {
	m := mesh.HexGrid(2, 2, 1)
	nel := NewNodeElementList(m)
	// Node (1,1,0) is shared by all four hexes
	centre := 1 + 3*1
	require.Equal(t, 4, nel.Valence(centre))
	assert.Equal(t, []int{0, 1, 2, 3}, nel.Elements(centre))
	for j := 0; j < 4; j++ {
		el := nel.Element(centre, j)
		assert.Equal(t, centre, el.Nodes[nel.LocalIndex(centre, j)])
	}
	// Corner node 0 belongs to one hex only
	assert.Equal(t, 1, nel.Valence(0))
	assert.Equal(t, 0, nel.ElementIndex(0, 0))
	total := 0
	for n := 0; n < m.NodeCount(); n++ {
		total += nel.Valence(n)
	}
	assert.Equal(t, 4*8, total)
}

func TestNodeNodeList(t *testing.T) {
	{ // Quad grid corner and centre
		m := mesh.QuadGrid(2, 2)
		nnl := NewNodeNodeList(m)
		assert.Equal(t, []int{1, 3}, nnl.Nodes(0))
		assert.Equal(t, 4, nnl.Valence(4))
		assert.Equal(t, []int{1, 3, 5, 7}, nnl.Nodes(4))
		assert.Equal(t, 5, nnl.Node(4, 2))
	}
	{ // Unit tet, every corner sees the other three
		m := mesh.SingleTet()
		nnl := NewNodeNodeList(m)
		for n := 0; n < 4; n++ {
			assert.Equal(t, 3, nnl.Valence(n))
		}
	}
	{ // Beam chain
		nnl := NewNodeNodeList(mesh.BeamLine(3))
		assert.Equal(t, []int{0, 2}, nnl.Nodes(1))
		assert.Equal(t, []int{2}, nnl.Nodes(3))
	}
}

func TestNNQuery(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	pts := make([]r3.Vec, 500)
	for i := range pts {
		pts[i] = r3.Vec{X: rng.Float64(), Y: rng.Float64() * 2, Z: rng.Float64() - 0.5}
	}
	q := NewNNQuery(pts)
	for k := 0; k < 300; k++ {
		x := r3.Vec{X: rng.Float64()*1.4 - 0.2, Y: rng.Float64() * 2.2, Z: rng.Float64() - 0.6}
		want := FindBrute(pts, x)
		assert.Equal(t, want, q.Find(x))
		// repeated query gives the same answer regardless of the seed
		assert.Equal(t, want, q.Find(x))
	}
	// Exact hits
	for _, i := range []int{0, 42, 499} {
		assert.Equal(t, i, q.Find(pts[i]))
	}
}

func TestNNQueryTies(t *testing.T) {
	pts := []r3.Vec{{X: 1}, {X: -1}, {Y: 1}, {X: 1}}
	q := NewNNQuery(pts)
	// Equidistant from 0, 1 and 2: lowest index wins
	assert.Equal(t, 0, q.Find(r3.Vec{}))
	// Coincident points 0 and 3
	q.Find(r3.Vec{Y: 1})
	assert.Equal(t, 0, q.Find(r3.Vec{X: 1}))
	assert.Equal(t, -1, NewNNQuery(nil).Find(r3.Vec{}))
}
