package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/femesh/mesh"
	"github.com/notargets/femesh/modifiers"
	"github.com/notargets/femesh/partitioner"
)

const pipelineYAML = `
Title: "split and detach"
Steps:
  - Op: quad2tri
  - Op: refine
    Params: {iterations: 2}
  - Op: detach
    Select: {elements: [0, 1]}
    Params:
      repartition: true
  - Op: Add-Node
    Params: {position: [5, 0, 0]}
`

func TestParse(t *testing.T) {
	var p Pipeline
	require.NoError(t, p.Parse([]byte(pipelineYAML)))
	assert.Equal(t, "split and detach", p.Title)
	require.Len(t, p.Steps, 4)
	assert.Equal(t, "refine", p.Steps[1].Op)
	require.NotNil(t, p.Steps[2].Select)
	assert.Equal(t, []int{0, 1}, p.Steps[2].Select.Elements)

	mod, err := p.Steps[1].Build()
	require.NoError(t, err)
	assert.Equal(t, modifiers.Refine{Iterations: 2}, mod)
	mod, err = p.Steps[3].Build()
	require.NoError(t, err)
	assert.Equal(t, modifiers.AddNode{Position: r3.Vec{X: 5}}, mod)

	var buf bytes.Buffer
	p.Fprint(&buf)
	assert.Contains(t, buf.String(), "split and detach")
	assert.Contains(t, buf.String(), "detach")
}

func TestRun(t *testing.T) {
	var p Pipeline
	require.NoError(t, p.Parse([]byte(pipelineYAML)))
	var ops []string
	s, err := p.Run(mesh.QuadGrid(1, 1), func(step int, name string) { ops = append(ops, name) })
	require.NoError(t, err)
	assert.Len(t, ops, 4)
	m := s.Current()
	// 2 triangles, refined twice
	assert.Equal(t, 32, m.ElementCount())
	assert.Equal(t, 1, m.Elements[0].GID)
	assert.Equal(t, 1, m.Elements[1].GID)
	assert.Equal(t, 0, m.Elements[2].GID)
	assert.Equal(t, r3.Vec{X: 5}, m.Nodes[m.NodeCount()-1].Pos)
	assert.Len(t, s.Commands(), 4)
}

func TestRunStopsOnError(t *testing.T) {
	var p Pipeline
	require.NoError(t, p.Parse([]byte(`
Steps:
  - Op: hex2tet
  - Op: hex2tet
`)))
	s, err := p.Run(mesh.UnitCube(), nil)
	assert.True(t, errors.Is(err, modifiers.ErrInapplicable))
	assert.Contains(t, err.Error(), "step 2")
	assert.Equal(t, 6, s.Current().ElementCount())
}

func TestBuildOps(t *testing.T) {
	for _, tc := range []struct {
		step Step
		want modifiers.Modifier
	}{
		{Step{Op: "convert", Params: []byte(`{"option": "hex8-to-tet4"}`)}, modifiers.Convert{Option: modifiers.Hex8ToTet4}},
		{Step{Op: "tet2hex", Params: []byte(`{"smooth": true}`)}, modifiers.Tet2Hex{Smooth: true}},
		{Step{Op: "remove_duplicates"}, modifiers.RemoveDuplicateElements{}},
		{Step{Op: "mirror", Params: []byte(`{"plane": "y", "center": [0, 1, 0]}`)},
			modifiers.Mirror{Plane: modifiers.AxisY, Center: r3.Vec{Y: 1}}},
		{Step{Op: "align", Params: []byte(`{"direction": "-z"}`)},
			modifiers.AlignNodes{Direction: modifiers.AlignDirection{Axis: modifiers.AxisZ, Negative: true}}},
		{Step{Op: "invert", Params: []byte(`{"elements": false, "faces": true}`)}, modifiers.InvertMesh{Faces: true}},
		{Step{Op: "partition", Params: []byte(`{"target": "faces", "new": false, "gid": 2}`)},
			modifiers.PartitionSelection{Target: modifiers.PartitionFaces, GID: 2}},
		{Step{Op: "autopartition", Params: []byte(`{"parts": 4, "objective": "cut"}`)},
			partitioner.AutoPartition{Parts: 4, Imbalance: 1.05, Objective: "cut"}},
		{Step{Op: "shell-thickness", Params: []byte(`{"h": 0.5}`)}, modifiers.SetShellThickness{H: 0.5}},
		{Step{Op: "fiber", Params: []byte(`{"nodes": [0, 6]}`)}, modifiers.SetFiberOrientation{UseNodes: true, N1: 6}},
		{Step{Op: "axes", Params: []byte(`{"mode": "nodes", "nodes": [1, 2, 3]}`)},
			modifiers.SetAxesOrientation{Mode: modifiers.AxesNodes, N0: 1, N1: 2, N2: 3}},
		{Step{Op: "flatten", Params: []byte(`{"normal": [0, 0, 1], "radius": 2}`)},
			modifiers.FlattenFaces{Normal: r3.Vec{Z: 1}, UseNormal: true, Radius: 2}},
		{Step{Op: "smooth"}, modifiers.SmoothNodes{Iterations: 1, Factor: 0.5}},
	} {
		got, err := tc.step.Build()
		require.NoError(t, err, tc.step.Op)
		assert.Equal(t, tc.want, got, tc.step.Op)
	}
}

func TestBuildErrors(t *testing.T) {
	for _, s := range []Step{
		{Op: "explode"},
		{Op: "refine", Params: []byte(`{"iterations": 2, "speed": 9}`)},
		{Op: "hex2tet", Params: []byte(`{"smooth": true}`)},
		{Op: "convert", Params: []byte(`{"option": "tet4-to-penta6"}`)},
		{Op: "mirror", Params: []byte(`{"plane": "w"}`)},
		{Op: "fiber", Params: []byte(`{"nodes": [1]}`)},
		{Op: "axes", Params: []byte(`{"mode": "nodes", "nodes": [1, 2]}`)},
	} {
		_, err := s.Build()
		assert.True(t, errors.Is(err, modifiers.ErrInvalidParameter), s.Op)
	}

	var p Pipeline
	err := p.Parse([]byte("Steps:\n  - Op: explode\n"))
	assert.Contains(t, err.Error(), "step 1")
}

func TestSelectionRange(t *testing.T) {
	s := Step{Op: "detach", Select: &Selection{Elements: []int{3}}}
	mod, err := s.Build()
	require.NoError(t, err)
	m := mesh.QuadGrid(2, 1)
	_, err = mod.Apply(m)
	assert.True(t, errors.Is(err, modifiers.ErrInvalidParameter))
	assert.Empty(t, m.SelectedElements())
}

func TestReadFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "pipeline.yaml")
	require.NoError(t, os.WriteFile(name, []byte(pipelineYAML), 0o644))
	p, err := ReadFile(name)
	require.NoError(t, err)
	assert.Len(t, p.Steps, 4)
	_, err = ReadFile(filepath.Join(t.TempDir(), "none.yaml"))
	assert.Error(t, err)
}
