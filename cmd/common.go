package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/notargets/femesh/mesh"
	"github.com/notargets/femesh/meshio"
)

func loadMesh(path string) (*mesh.Mesh, error) {
	m, err := meshio.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mesh: %w", err)
	}
	return m, nil
}

// saveMesh writes m to the --output file, or to stdout when none is given
func saveMesh(cmd *cobra.Command, m *mesh.Mesh) error {
	out, _ := cmd.Flags().GetString("output")
	if out == "" || out == "-" {
		return meshio.WriteGmsh22(cmd.OutOrStdout(), m)
	}
	if err := meshio.WriteFile(out, m); err != nil {
		return fmt.Errorf("writing mesh: %w", err)
	}
	return nil
}

func addOutputFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "", "output mesh file, stdout when empty")
}

// summary prints the record counts of m
func summary(w io.Writer, m *mesh.Mesh) {
	fmt.Fprintf(w, "%-10s %d\n", "nodes", m.NodeCount())
	fmt.Fprintf(w, "%-10s %d (%v)\n", "elements", m.ElementCount(), m.MeshType())
	fmt.Fprintf(w, "%-10s %d\n", "faces", m.FaceCount())
	fmt.Fprintf(w, "%-10s %d\n", "edges", m.EdgeCount())
}
