package modifiers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/femesh/mesh"
)

func shellArea(m *mesh.Mesh) (a float64) {
	for i := range m.Elements {
		a += m.ElementVolume(&m.Elements[i])
	}
	return
}

func TestQuadSplitGrid(t *testing.T) {
	m := mesh.QuadGrid(2, 2)
	out, err := QuadSplit{}.Apply(m)
	require.NoError(t, err)
	assert.Equal(t, 9+12+4, out.NodeCount())
	assert.Equal(t, 16, out.ElementCount())
	assert.Equal(t, mesh.Quad4, out.MeshType())
	assert.InDelta(t, 4.0, shellArea(out), 1e-12)
	// free boundary edges double, their total length stays 8
	assert.Equal(t, 16, out.BoundaryEdgeCount())
	for i := range out.Elements {
		assert.Equal(t, []float64{0.1, 0.1, 0.1, 0.1}, out.Elements[i].H)
		assert.InDelta(t, 1.0, out.Faces[i].Normal.Z, 1e-12)
	}
}

func TestQuadSplitThickness(t *testing.T) {
	m := mesh.QuadGrid(1, 1)
	m.Elements[0].H = []float64{0.1, 0.2, 0.3, 0.4}
	m.Elements[0].Selected = true
	m.Elements[0].GID = 3
	out, err := QuadSplit{}.Apply(m)
	require.NoError(t, err)
	c := &out.Elements[0]
	// corner 0, edge 0-1, center, edge 3-0
	assert.Equal(t, []int{0, 4, 8, 7}, c.Nodes)
	assert.InDeltaSlice(t, []float64{0.1, 0.15, 0.25, 0.25}, c.H, 1e-12)
	for i := range out.Elements {
		assert.True(t, out.Elements[i].Selected)
		assert.Equal(t, 3, out.Elements[i].GID)
	}
	assertVec(t, r3.Vec{X: 0.5, Y: 0.5}, out.Nodes[8].Pos)
}

func TestTriSplit(t *testing.T) {
	m, err := Quad2Tri{}.Apply(mesh.QuadGrid(1, 1))
	require.NoError(t, err)
	out, err := TriSplit{}.Apply(m)
	require.NoError(t, err)
	assert.Equal(t, 8, out.ElementCount())
	// 4 corners and 5 edges
	assert.Equal(t, 9, out.NodeCount())
	assert.InDelta(t, 1.0, shellArea(out), 1e-12)
	assert.Equal(t, 8, out.BoundaryEdgeCount())
}

func TestTetSplit(t *testing.T) {
	m := mesh.SingleTet()
	out, err := TetSplit{}.Apply(m)
	require.NoError(t, err)
	assert.Equal(t, 8, out.ElementCount())
	assert.Equal(t, 10, out.NodeCount())
	allPositive(t, out)
	assert.InDelta(t, 1.0/6, out.TotalVolume(), 1e-12)
	assert.Equal(t, 16, out.FaceCount())

	m = mesh.TwoTets()
	out, err = TetSplit{}.Apply(m)
	require.NoError(t, err)
	assert.Equal(t, 16, out.ElementCount())
	assert.Equal(t, 5+9, out.NodeCount())
	assert.Equal(t, 24, out.FaceCount())
	assert.Equal(t, 0, out.BoundaryEdgeCount())
	allPositive(t, out)
	assert.InDelta(t, m.TotalVolume(), out.TotalVolume(), 1e-12)
}

func TestTetSplitDiagonal(t *testing.T) {
	// stretch the tet so the 6-8 diagonal is the shortest
	m := mesh.SingleTet()
	m.Nodes[1].Pos = r3.Vec{X: 4}
	m.Nodes[3].Pos = r3.Vec{Z: 4}
	m.BuildMesh()
	el := &m.Elements[0]
	assert.Same(t, tetSplitPlans[1], tetSplitPlan(m, el))
	out, err := TetSplit{}.Apply(m)
	require.NoError(t, err)
	allPositive(t, out)
	assert.InDelta(t, m.TotalVolume(), out.TotalVolume(), 1e-12)
}

func TestHexSplit(t *testing.T) {
	m := mesh.UnitCube()
	out, err := HexSplit{}.Apply(m)
	require.NoError(t, err)
	assert.Equal(t, 8, out.ElementCount())
	assert.Equal(t, 27, out.NodeCount())
	assert.Equal(t, 24, out.FaceCount())
	allPositive(t, out)
	assert.InDelta(t, 1.0, out.TotalVolume(), 1e-12)
	assertVec(t, r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}, out.Nodes[26].Pos)

	out, err = Hex2DSplit{}.Apply(m)
	require.NoError(t, err)
	assert.Equal(t, 4, out.ElementCount())
	// 8 corners, 8 bottom and top edge nodes, 2 face nodes, nothing unused
	assert.Equal(t, 18, out.NodeCount())
	assert.Equal(t, 16, out.FaceCount())
	allPositive(t, out)
	assert.InDelta(t, 1.0, out.TotalVolume(), 1e-12)
}

func TestHexSplitSmooth(t *testing.T) {
	m := mesh.UnitCube()
	out, err := HexSplit{Smooth: true}.Apply(m)
	require.NoError(t, err)
	// edge 0-1 bows out along the corner normals (-1,-1,-1) and (1,-1,-1)
	assertVec(t, r3.Vec{X: 0.5, Y: -1.0 / 12, Z: -1.0 / 12}, out.Nodes[8].Pos)
	// bottom face node is the mean of its bowed edge midpoints
	assertVec(t, r3.Vec{X: 0.5, Y: 0.5, Z: -1.0 / 12}, out.Nodes[24].Pos)
	// the center is interior and stays linear
	assertVec(t, r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}, out.Nodes[26].Pos)

	flat, err := HexSplit{}.Apply(m)
	require.NoError(t, err)
	assertVec(t, r3.Vec{X: 0.5}, flat.Nodes[8].Pos)
}

func TestSmoothFlatShell(t *testing.T) {
	// a flat sheet has no curvature to follow
	m := mesh.QuadGrid(2, 2)
	out, err := Elevate{Target: mesh.Quad9, Smooth: true}.Apply(m)
	require.NoError(t, err)
	for i := range out.Nodes {
		assert.InDelta(t, 0.0, out.Nodes[i].Pos.Z, 1e-12)
	}
}

func TestSplitKeepsFacePartitions(t *testing.T) {
	m := mesh.UnitCube()
	m.Faces[0].Selected = true
	p, err := PartitionSelection{Target: PartitionFaces, NewPartition: true}.Apply(m)
	require.NoError(t, err)
	require.Equal(t, 2, p.CountFacePartitions())
	require.Equal(t, 4, p.EdgeCount())

	out, err := HexSplit{}.Apply(p)
	require.NoError(t, err)
	assert.Equal(t, 2, out.CountFacePartitions())
	n := 0
	for i := range out.Faces {
		f := &out.Faces[i]
		if f.Normal.Y < -0.5 {
			assert.Equal(t, 1, f.GID)
			n++
		} else {
			assert.Equal(t, 0, f.GID)
		}
	}
	assert.Equal(t, 4, n)
	// the partition boundary still has the same edges, each cut in two
	assert.Equal(t, 8, out.EdgeCount())
	assert.Equal(t, 2, out.CountEdgePartitions())
}

func TestRefine(t *testing.T) {
	var progress []float64
	r := Refine{Iterations: 2, Progress: func(pct float64) { progress = append(progress, pct) }}
	out, err := r.Apply(mesh.QuadGrid(1, 1))
	require.NoError(t, err)
	assert.Equal(t, 16, out.ElementCount())
	assert.Equal(t, 25, out.NodeCount())
	assert.Equal(t, []float64{50, 100}, progress)

	out, err = Refine{Iterations: 1, Hex2D: true}.Apply(mesh.UnitCube())
	require.NoError(t, err)
	assert.Equal(t, 4, out.ElementCount())

	out, err = Refine{Iterations: 1}.Apply(mesh.SingleTet())
	require.NoError(t, err)
	assert.Equal(t, 8, out.ElementCount())

	_, err = Refine{Iterations: 0}.Apply(mesh.UnitCube())
	assert.True(t, errors.Is(err, ErrInvalidParameter))
	_, err = Refine{Iterations: 1}.Apply(mesh.HexPyramid())
	assert.True(t, errors.Is(err, ErrInapplicable))
	_, err = Refine{Iterations: 1}.Apply(mesh.Wedge())
	assert.True(t, errors.Is(err, ErrInapplicable))
}

func TestRefineCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	r := Refine{Iterations: 3, Progress: func(float64) {
		calls++
		cancel()
	}}
	out, err := r.ApplyContext(ctx, mesh.UnitCube())
	assert.Nil(t, out)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, calls)
}
