package cmd

import (
	"github.com/spf13/cobra"

	"github.com/notargets/femesh/partitioner"
)

// PartitionCmd splits the elements into balanced partitions with METIS
var PartitionCmd = &cobra.Command{
	Use:   "partition mesh.msh",
	Short: "Partition the elements with METIS",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadMesh(args[0])
		if err != nil {
			return err
		}
		parts, _ := cmd.Flags().GetInt("parts")
		ap := partitioner.DefaultAutoPartition(parts)
		ap.Imbalance, _ = cmd.Flags().GetFloat32("imbalance")
		ap.Objective, _ = cmd.Flags().GetString("objective")
		out, err := ap.Apply(m)
		if err != nil {
			return err
		}
		summary(cmd.ErrOrStderr(), out)
		return saveMesh(cmd, out)
	},
}

func init() {
	rootCmd.AddCommand(PartitionCmd)
	addOutputFlag(PartitionCmd)
	PartitionCmd.Flags().IntP("parts", "n", 2, "number of partitions")
	PartitionCmd.Flags().Float32("imbalance", 1.05, "allowed load imbalance, 1.05 is 5%")
	PartitionCmd.Flags().String("objective", "vol", "minimise communication volume (vol) or edge cut (cut)")
}
