package modifiers

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/femesh/mesh"
)

func TestPartitionElements(t *testing.T) {
	m := mesh.HexGrid(2, 1, 1)
	m.SelectElements(1)
	out, err := PartitionSelection{Target: PartitionElements, NewPartition: true}.Apply(m)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Elements[0].GID)
	assert.Equal(t, 1, out.Elements[1].GID)
	assert.Equal(t, 2, out.CountFacePartitions())
	for i := range out.Faces {
		assert.Equal(t, out.Faces[i].Elem, out.Faces[i].GID)
	}
	// the ring where the two surface partitions meet
	assert.Equal(t, 4, out.EdgeCount())
	// input untouched
	assert.Equal(t, 0, m.Elements[1].GID)
	assert.Equal(t, 0, m.EdgeCount())

	// back into the existing partition
	out.SelectElements(1)
	back, err := PartitionSelection{Target: PartitionElements, GID: 0}.Apply(out)
	require.NoError(t, err)
	assert.Equal(t, 0, back.Elements[1].GID)

	_, err = PartitionSelection{Target: PartitionElements, GID: 5}.Apply(out)
	assert.True(t, errors.Is(err, ErrInvalidParameter))
	m.SelectElements()
	_, err = PartitionSelection{Target: PartitionElements, NewPartition: true}.Apply(m)
	assert.True(t, errors.Is(err, ErrInapplicable))
}

func TestPartitionNodesAndTargets(t *testing.T) {
	m := mesh.UnitCube()
	m.Nodes[0].Selected = true
	m.Nodes[0].GID = 0
	m.Nodes[1].GID = 0
	m.Nodes[1].Selected = true
	out, err := PartitionSelection{Target: PartitionNodes, NewPartition: true}.Apply(m)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Nodes[0].GID)
	assert.Equal(t, 1, out.Nodes[1].GID)
	assert.Equal(t, -1, out.Nodes[2].GID)

	for _, name := range []string{"elements", "Face", "node", "edges"} {
		_, err := ParsePartitionTarget(name)
		assert.NoError(t, err, name)
	}
	_, err = ParsePartitionTarget("cells")
	assert.True(t, errors.Is(err, ErrInvalidParameter))
}

func TestRemoveDuplicateElements(t *testing.T) {
	m := mesh.TwoTets()
	dup := m.Elements[0].Clone()
	dup.Nodes = []int{1, 2, 0, 3}
	m.Elements = append(m.Elements, dup)
	m.BuildMesh()

	out, err := RemoveDuplicateElements{}.Apply(m)
	require.NoError(t, err)
	require.Equal(t, 2, out.ElementCount())
	assert.Equal(t, []int{0, 1, 2, 3}, out.Elements[0].Nodes)
	assert.Equal(t, []int{1, 2, 3, 4}, out.Elements[1].Nodes)
	assert.Equal(t, 5, out.NodeCount())
	assert.Equal(t, 6, out.FaceCount())
	assert.Equal(t, 3, m.ElementCount())

	same, err := RemoveDuplicateElements{}.Apply(out)
	require.NoError(t, err)
	assert.Equal(t, 2, same.ElementCount())
}

func TestDetachElements(t *testing.T) {
	m := mesh.HexGrid(2, 1, 1)
	m.SelectElements(0)
	out, err := DetachElements{}.Apply(m)
	require.NoError(t, err)
	assert.Equal(t, 16, out.NodeCount())
	assert.Equal(t, 12, out.FaceCount())
	for i := range out.Elements {
		assert.Equal(t, 0, out.Elements[i].GID)
		for _, nb := range out.Elements[i].Nbr {
			assert.Equal(t, -1, nb)
		}
	}
	// the copies sit on the old shared nodes
	for k, n := range []int{1, 4, 7, 10} {
		assertVec(t, m.Nodes[n].Pos, out.Nodes[12+k].Pos)
	}
	assert.Equal(t, 12, m.NodeCount())

	// nothing left to detach
	out.SelectElements(1)
	again, err := DetachElements{}.Apply(out)
	require.NoError(t, err)
	assert.Equal(t, 16, again.NodeCount())

	rp, err := DetachElements{Repartition: true}.Apply(m)
	require.NoError(t, err)
	assert.Equal(t, 1, rp.Elements[0].GID)
	assert.Equal(t, 0, rp.Elements[1].GID)

	q := mesh.QuadGrid(2, 1)
	q.SelectElements(0)
	qo, err := DetachElements{}.Apply(q)
	require.NoError(t, err)
	assert.Equal(t, 8, qo.NodeCount())
	assert.Equal(t, 8, qo.BoundaryEdgeCount())

	q.SelectElements()
	_, err = DetachElements{}.Apply(q)
	assert.True(t, errors.Is(err, ErrInapplicable))
}

func TestMirror(t *testing.T) {
	m := mesh.HexGrid(2, 1, 1)
	out, err := Mirror{Plane: AxisX, Center: r3.Vec{X: -1}}.Apply(m)
	require.NoError(t, err)
	allPositive(t, out)
	assert.InDelta(t, 2.0, out.TotalVolume(), 1e-12)
	assertVec(t, r3.Vec{X: -4}, out.Box.Min)
	assertVec(t, r3.Vec{X: -2, Y: 1, Z: 1}, out.Box.Max)
	for i := range out.Faces {
		f := &out.Faces[i]
		// normals still point away from the body
		c := out.ElementCenter(&out.Elements[f.Elem])
		assert.Greater(t, r3.Dot(f.Normal, r3.Sub(out.FaceCenter(f), c)), 0.0)
	}

	_, err = Mirror{Plane: Axis(7)}.Apply(m)
	assert.True(t, errors.Is(err, ErrInvalidParameter))

	a, err := ParseAxis("xy")
	require.NoError(t, err)
	assert.Equal(t, AxisZ, a)
}

func TestAlignNodes(t *testing.T) {
	m := mesh.QuadGrid(2, 1)
	m.Nodes[1].Pos.Y = 0.2
	m.Nodes[0].Selected = true
	m.Nodes[1].Selected = true

	d, err := ParseAlignDirection("+y")
	require.NoError(t, err)
	out, err := AlignNodes{Direction: d}.Apply(m)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, out.Nodes[0].Pos.Y, 1e-15)
	assert.InDelta(t, 0.2, out.Nodes[1].Pos.Y, 1e-15)
	assert.InDelta(t, 0.0, out.Nodes[2].Pos.Y, 1e-15)

	d, err = ParseAlignDirection("-Y")
	require.NoError(t, err)
	assert.Equal(t, "-Y", d.String())
	out, err = AlignNodes{Direction: d}.Apply(m)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, out.Nodes[1].Pos.Y, 1e-15)

	m.Nodes[0].Selected, m.Nodes[1].Selected = false, false
	_, err = AlignNodes{Direction: d}.Apply(m)
	assert.True(t, errors.Is(err, ErrInapplicable))
}

func TestAddNode(t *testing.T) {
	m := mesh.UnitCube()
	out, err := AddNode{Position: r3.Vec{X: 3, Y: 0.5, Z: 0.5}}.Apply(m)
	require.NoError(t, err)
	require.Equal(t, 9, out.NodeCount())
	nd := out.Nodes[8]
	assert.Equal(t, 9, nd.ID)
	assert.Equal(t, -1, nd.GID)
	assert.False(t, nd.Exterior)
	assert.InDelta(t, 3.0, out.Box.Max.X, 1e-15)
	assert.Equal(t, 1, out.ElementCount())
	assert.Equal(t, 8, m.NodeCount())
}

func TestInvertMesh(t *testing.T) {
	m := mesh.UnitCube()
	out, err := InvertMesh{Elements: true}.Apply(m)
	require.NoError(t, err)
	assert.InDelta(t, -1.0, out.TotalVolume(), 1e-12)
	back, err := InvertMesh{Elements: true}.Apply(out)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, back.TotalVolume(), 1e-12)

	g := mesh.HexGrid(2, 1, 1)
	g.SelectElements(1)
	gi, err := InvertMesh{Elements: true}.Apply(g)
	require.NoError(t, err)
	assert.Greater(t, gi.ElementVolume(&gi.Elements[0]), 0.0)
	assert.Less(t, gi.ElementVolume(&gi.Elements[1]), 0.0)

	q := mesh.QuadGrid(1, 1)
	q.Faces[0].Selected = true
	qi, err := InvertMesh{Faces: true}.Apply(q)
	require.NoError(t, err)
	assert.InDelta(t, -1.0, qi.Faces[0].Normal.Z, 1e-12)
	assert.Equal(t, 0, qi.Faces[0].Nodes[0])
	assert.Equal(t, 2, qi.Faces[0].Nodes[1])
	assert.Equal(t, 2, qi.Elements[0].Nodes[1])
	assert.InDelta(t, 1.0, q.Faces[0].Normal.Z, 1e-12)

	_, err = InvertMesh{}.Apply(q)
	assert.True(t, errors.Is(err, ErrInvalidParameter))
	q.Faces[0].Selected = false
	_, err = InvertMesh{Faces: true}.Apply(q)
	assert.True(t, errors.Is(err, ErrInapplicable))
}

func TestSetShellThickness(t *testing.T) {
	m := mesh.QuadGrid(2, 1)
	m.SelectElements(1)
	out, err := SetShellThickness{H: 0.25}.Apply(m)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.1, 0.1, 0.1}, out.Elements[0].H)
	assert.Equal(t, []float64{0.25, 0.25, 0.25, 0.25}, out.Elements[1].H)

	_, err = SetShellThickness{H: 0}.Apply(m)
	assert.True(t, errors.Is(err, ErrInvalidParameter))
	c := mesh.UnitCube()
	c.SelectElements(0)
	_, err = SetShellThickness{H: 1}.Apply(c)
	assert.True(t, errors.Is(err, ErrInapplicable))
}

func TestSetFiberOrientation(t *testing.T) {
	m := mesh.HexGrid(2, 1, 1)
	out, err := SetFiberOrientation{Vector: r3.Vec{Y: 2}}.Apply(m)
	require.NoError(t, err)
	for i := range out.Elements {
		assertVec(t, r3.Vec{Y: 1}, out.Elements[i].Fiber)
	}

	m.SelectElements(1)
	out, err = SetFiberOrientation{UseNodes: true, N0: 0, N1: 6}.Apply(m)
	require.NoError(t, err)
	s := 1 / math.Sqrt(3)
	assertVec(t, r3.Vec{X: s, Y: s, Z: s}, out.Elements[1].Fiber)
	assertVec(t, r3.Vec{}, out.Elements[0].Fiber)

	_, err = SetFiberOrientation{UseNodes: true, N0: 0, N1: 8}.Apply(m)
	assert.True(t, errors.Is(err, ErrInvalidParameter))
	_, err = SetFiberOrientation{}.Apply(m)
	assert.True(t, errors.Is(err, ErrInvalidParameter))
}

func assertFrame(t *testing.T, want, got [3][3]float64) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.InDeltaSlice(t, want[i][:], got[i][:], 1e-12, "row %d", i)
	}
}

func TestSetAxesOrientation(t *testing.T) {
	id := [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

	out, err := SetAxesOrientation{Mode: AxesVectors, A: r3.Vec{X: 2}, D: r3.Vec{X: 1, Y: 1}}.Apply(mesh.UnitCube())
	require.NoError(t, err)
	assert.True(t, out.Elements[0].QActive)
	assertFrame(t, id, out.Elements[0].Q)

	out, err = SetAxesOrientation{Mode: AxesAngles, Theta: 0, Phi: 90}.Apply(mesh.UnitCube())
	require.NoError(t, err)
	assertFrame(t, id, out.Elements[0].Q)

	out, err = SetAxesOrientation{Mode: AxesNodes, N0: 1, N1: 2, N2: 3}.Apply(mesh.SingleTet())
	require.NoError(t, err)
	assertFrame(t, id, out.Elements[0].Q)

	out, err = SetAxesOrientation{Mode: AxesCylindrical, A: r3.Vec{Z: 1}, D: r3.Vec{X: 1}}.Apply(mesh.UnitCube())
	require.NoError(t, err)
	q := out.Elements[0].Q
	s := 1 / math.Sqrt2
	assert.InDeltaSlice(t, []float64{s, s, 0}, []float64{q[0][0], q[1][0], q[2][0]}, 1e-12)
	assert.InDelta(t, 1.0, frameDet(q), 1e-12)

	_, err = SetAxesOrientation{Mode: AxesVectors, A: r3.Vec{X: 1}, D: r3.Vec{X: 3}}.Apply(mesh.UnitCube())
	assert.True(t, errors.Is(err, ErrInvalidParameter))
	_, err = SetAxesOrientation{Mode: AxesNodes, N0: 1, N1: 2, N2: 9}.Apply(mesh.SingleTet())
	assert.True(t, errors.Is(err, ErrInvalidParameter))
	_, err = SetAxesOrientation{Mode: AxesMode(9)}.Apply(mesh.UnitCube())
	assert.True(t, errors.Is(err, ErrInvalidParameter))

	mode, err := ParseAxesMode("Vector")
	require.NoError(t, err)
	assert.Equal(t, AxesVectors, mode)
}

func TestFlattenFaces(t *testing.T) {
	m := mesh.QuadGrid(2, 1)
	m.Nodes[1].Pos.Z = 1
	m.Nodes[4].Pos.Z = 1
	m.BuildMesh()
	m.Faces[0].Selected = true

	out, err := FlattenFaces{Normal: r3.Vec{Z: 1}, UseNormal: true, Radius: 2}.Apply(m)
	require.NoError(t, err)
	for _, n := range []int{0, 1, 3, 4} {
		assert.InDelta(t, 0.0, out.Nodes[n].Pos.Z, 1e-12, "node %d", n)
	}
	drop := -(1 - math.Sqrt2/2)
	assert.InDelta(t, drop, out.Nodes[2].Pos.Z, 1e-12)
	assert.InDelta(t, drop, out.Nodes[5].Pos.Z, 1e-12)

	hard, err := FlattenFaces{Normal: r3.Vec{Z: 1}, UseNormal: true}.Apply(m)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, hard.Nodes[1].Pos.Z, 1e-12)
	assert.InDelta(t, 0.0, hard.Nodes[2].Pos.Z, 1e-12)

	_, err = FlattenFaces{Radius: -1}.Apply(m)
	assert.True(t, errors.Is(err, ErrInvalidParameter))
	m.Faces[0].Selected = false
	_, err = FlattenFaces{}.Apply(m)
	assert.True(t, errors.Is(err, ErrInapplicable))
}

func TestSmoothNodes(t *testing.T) {
	m := mesh.HexGrid(2, 2, 2)
	m.Nodes[13].Pos = r3.Vec{X: 1.3, Y: 1, Z: 1}
	out, err := SmoothNodes{Iterations: 1, Factor: 1}.Apply(m)
	require.NoError(t, err)
	assertVec(t, r3.Vec{X: 1, Y: 1, Z: 1}, out.Nodes[13].Pos)
	for n := range out.Nodes {
		if n != 13 {
			assertVec(t, m.Nodes[n].Pos, out.Nodes[n].Pos)
		}
	}

	half, err := SmoothNodes{Iterations: 1, Factor: 0.5}.Apply(m)
	require.NoError(t, err)
	assert.InDelta(t, 1.15, half.Nodes[13].Pos.X, 1e-12)

	_, err = SmoothNodes{Iterations: 0, Factor: 1}.Apply(m)
	assert.True(t, errors.Is(err, ErrInvalidParameter))
	_, err = SmoothNodes{Iterations: 1, Factor: 1.5}.Apply(m)
	assert.True(t, errors.Is(err, ErrInvalidParameter))
}

func TestRunRejectsCorruptMesh(t *testing.T) {
	m := mesh.UnitCube()
	m.Elements[0].Nodes[3] = 42
	_, err := HexSplit{}.Apply(m)
	assert.True(t, errors.Is(err, ErrCorruptMesh))
	_, err = HexSplit{}.Apply(nil)
	assert.True(t, errors.Is(err, ErrInapplicable))
}
