package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/femesh/mesh"
	"github.com/notargets/femesh/meshio"
)

// execute runs the root command with args and returns what it wrote to stdout
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeMesh(t *testing.T, m *mesh.Mesh) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "in.msh")
	require.NoError(t, meshio.WriteFile(name, m))
	return name
}

func TestInfo(t *testing.T) {
	in := writeMesh(t, mesh.HexGrid(2, 1, 1))
	out, err := execute(t, "info", in)
	require.NoError(t, err)
	assert.Contains(t, out, "nodes      12")
	assert.Contains(t, out, "elements   2 (Hex8)")
	assert.Contains(t, out, "volume     2")
	assert.Contains(t, out, "Hex8ToTet4")

	_, err = execute(t, "info", filepath.Join(t.TempDir(), "missing.msh"))
	assert.Error(t, err)
}

func TestConvert(t *testing.T) {
	in := writeMesh(t, mesh.HexGrid(2, 1, 1))
	outFile := filepath.Join(t.TempDir(), "out.msh")
	_, err := execute(t, "convert", in, "--list=false", "--option", "hex8-to-tet4", "-o", outFile)
	require.NoError(t, err)
	m, err := meshio.ReadFile(outFile)
	require.NoError(t, err)
	assert.Equal(t, 12, m.ElementCount())
	assert.Equal(t, mesh.Tet4, m.MeshType())

	out, err := execute(t, "convert", in, "--list")
	require.NoError(t, err)
	assert.Equal(t, "Hex8ToHex20\nHex8ToTet4\n", out)

	_, err = execute(t, "convert", in, "--list=false", "--option", "tet4-to-tet10", "-o", outFile)
	assert.Error(t, err)
}

func TestRefineToStdout(t *testing.T) {
	in := writeMesh(t, mesh.QuadGrid(1, 1))
	out, err := execute(t, "refine", in, "-n", "2", "-q", "-o", "")
	require.NoError(t, err)
	m, err := meshio.ReadGmsh22(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 16, m.ElementCount())
}

func TestRun(t *testing.T) {
	in := writeMesh(t, mesh.UnitCube())
	dir := t.TempDir()
	pipeline := filepath.Join(dir, "p.yaml")
	require.NoError(t, os.WriteFile(pipeline, []byte(`
Title: cube
Steps:
  - Op: refine
  - Op: hex2tet
`), 0o644))
	outFile := filepath.Join(dir, "out.msh")
	_, err := execute(t, "run", in, "-p", pipeline, "-o", outFile)
	require.NoError(t, err)
	m, err := meshio.ReadFile(outFile)
	require.NoError(t, err)
	assert.Equal(t, 48, m.ElementCount())
	assert.InDelta(t, 1.0, m.TotalVolume(), 1e-12)

	_, err = execute(t, "run", in, "-p", "")
	assert.Error(t, err)
}

func TestPartition(t *testing.T) {
	in := writeMesh(t, mesh.HexGrid(4, 1, 1))
	outFile := filepath.Join(t.TempDir(), "out.msh")
	_, err := execute(t, "partition", in, "-n", "2", "-o", outFile)
	require.NoError(t, err)
	m, err := meshio.ReadFile(outFile)
	require.NoError(t, err)
	assert.Equal(t, 3, m.CountElementPartitions())
}
