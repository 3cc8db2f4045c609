package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/femesh/modifiers"
)

// ConvertCmd runs one element conversion
var ConvertCmd = &cobra.Command{
	Use:   "convert mesh.msh",
	Short: "Convert the elements of a mesh, e.g. hex8-to-tet4 or linear-to-quadratic",
	Long: `
Converts every element of the given kind. With --list prints the conversions offered for the
mesh instead.

femesh convert in.msh -o out.msh --option tet4-to-tet10 --smooth`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadMesh(args[0])
		if err != nil {
			return err
		}
		if list, _ := cmd.Flags().GetBool("list"); list {
			for _, c := range modifiers.Allowed(m.MeshType()) {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
			return nil
		}
		name, _ := cmd.Flags().GetString("option")
		if name == "" {
			return fmt.Errorf("must supply a conversion (--option), one of %v", modifiers.Allowed(m.MeshType()))
		}
		c, err := modifiers.ParseConversion(name)
		if err != nil {
			return err
		}
		out, err := modifiers.Convert{Option: c, Smooth: viper.GetBool("convert.smooth")}.Apply(m)
		if err != nil {
			return err
		}
		return saveMesh(cmd, out)
	},
}

func init() {
	rootCmd.AddCommand(ConvertCmd)
	addOutputFlag(ConvertCmd)
	ConvertCmd.Flags().String("option", "", "conversion to run, e.g. hex8-to-tet4")
	ConvertCmd.Flags().Bool("smooth", false, "place new mid nodes on the smoothed surface")
	ConvertCmd.Flags().BoolP("list", "l", false, "list the conversions offered for the mesh")
	_ = viper.BindPFlag("convert.smooth", ConvertCmd.Flags().Lookup("smooth"))
}
