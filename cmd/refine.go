package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/femesh/modifiers"
)

// RefineCmd splits every element of a single-kind mesh, repeatedly
var RefineCmd = &cobra.Command{
	Use:   "refine mesh.msh",
	Short: "Uniformly refine a tri, quad, tet or hex mesh",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadMesh(args[0])
		if err != nil {
			return err
		}
		r := modifiers.Refine{Iterations: viper.GetInt("refine.iterations")}
		r.Smooth, _ = cmd.Flags().GetBool("smooth")
		r.Hex2D, _ = cmd.Flags().GetBool("hex2d")
		if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
			r.Progress = func(pct float64) {
				fmt.Fprintf(cmd.ErrOrStderr(), "refine %3.0f%%\n", pct)
			}
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		out, err := r.ApplyContext(ctx, m)
		if err != nil {
			return err
		}
		return saveMesh(cmd, out)
	},
}

func init() {
	rootCmd.AddCommand(RefineCmd)
	addOutputFlag(RefineCmd)
	RefineCmd.Flags().IntP("iterations", "n", 1, "number of refinement passes")
	RefineCmd.Flags().Bool("smooth", false, "place new nodes on the smoothed surface")
	RefineCmd.Flags().Bool("hex2d", false, "split hexes in the first two directions only")
	RefineCmd.Flags().BoolP("quiet", "q", false, "do not report progress")
	_ = viper.BindPFlag("refine.iterations", RefineCmd.Flags().Lookup("iterations"))
}
