package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/notargets/femesh/modifiers"
)

// InfoCmd prints a summary of a mesh file
var InfoCmd = &cobra.Command{
	Use:   "info mesh.msh",
	Short: "Print counts, partitions and bounds of a mesh",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadMesh(args[0])
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		summary(w, m)
		fmt.Fprintf(w, "%-10s solid %d, shell %d, beam %d\n", "classes",
			m.SolidElements(), m.ShellElements(), m.BeamElements())
		fmt.Fprintf(w, "%-10s elements %d, faces %d, edges %d\n", "partitions",
			m.CountElementPartitions(), m.CountFacePartitions(), m.CountEdgePartitions())
		fmt.Fprintf(w, "%-10s boundary edges %d\n", "topology", m.BoundaryEdgeCount())
		fmt.Fprintf(w, "%-10s min %v max %v\n", "box", m.Box.Min, m.Box.Max)
		if m.SolidElements() > 0 {
			fmt.Fprintf(w, "%-10s %g\n", "volume", m.TotalVolume())
		}
		if list := modifiers.Allowed(m.MeshType()); len(list) > 0 {
			fmt.Fprintf(w, "%-10s %v\n", "converts", list)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(InfoCmd)
}
