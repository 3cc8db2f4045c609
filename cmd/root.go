/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/femesh/logger"
	"github.com/notargets/femesh/utils"
)

var (
	cfgFile  string
	profiler interface{ Stop() }
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "femesh",
	Short: "Finite element mesh conversion and refinement",
	Long: `
Reads a mesh in gmsh 2.2 ASCII format, converts, refines or edits it and writes the result.

femesh convert in.msh -o out.msh --option hex8-to-tet4
femesh refine in.msh -n 2 --smooth
femesh run in.msh -p pipeline.yaml -o out.msh`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.Init(viper.GetString("log.level"), viper.GetString("log.file")); err != nil {
			return err
		}
		utils.SetParallelDegree(viper.GetInt("parallel.degree"))
		if dir, _ := cmd.Flags().GetString("cpuprofile"); dir != "" {
			profiler = profile.Start(profile.CPUProfile, profile.ProfilePath(dir), profile.Quiet)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if profiler != nil {
			profiler.Stop()
			profiler = nil
		}
		logger.Sync()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.femesh.yaml)")
	pf.String("log-level", "warn", "log level: debug, info, warn or error")
	pf.String("log-file", "", "also write JSON logs to this file, rotated")
	pf.Int("parallel", 0, "worker count for the parallel passes, 0 uses every CPU")
	pf.String("cpuprofile", "", "write a CPU profile into this directory")

	_ = viper.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = viper.BindPFlag("log.file", pf.Lookup("log-file"))
	_ = viper.BindPFlag("parallel.degree", pf.Lookup("parallel"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		// Search config in home directory with name ".femesh" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".femesh")
	}

	viper.SetEnvPrefix("femesh")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
