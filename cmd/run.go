package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/notargets/femesh/config"
)

// RunCmd applies a YAML pipeline of modifiers
var RunCmd = &cobra.Command{
	Use:   "run mesh.msh",
	Short: "Apply the modifier steps of a pipeline file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("pipeline")
		if file == "" {
			exampleFile := `
########################################
Title: "Refine and detach"
Steps:
  - Op: refine
    Params: {iterations: 2, smooth: true}
  - Op: detach
    Select: {elements: [0, 1, 2]}
    Params: {repartition: true}
########################################
`
			return fmt.Errorf("must supply a pipeline file (-p, --pipeline), for example:%s", exampleFile)
		}
		p, err := config.ReadFile(file)
		if err != nil {
			return err
		}
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			p.Fprint(cmd.ErrOrStderr())
		}
		m, err := loadMesh(args[0])
		if err != nil {
			return err
		}
		s, err := p.Run(m, func(step int, name string) {
			fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] %s\n", step, len(p.Steps), name)
		})
		if err != nil {
			return err
		}
		return saveMesh(cmd, s.Current())
	},
}

func init() {
	rootCmd.AddCommand(RunCmd)
	addOutputFlag(RunCmd)
	RunCmd.Flags().StringP("pipeline", "p", "", "YAML pipeline file")
	RunCmd.Flags().BoolP("verbose", "v", false, "print the pipeline before running it")
}
