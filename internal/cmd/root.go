package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	recipeFile  string
	rootVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "envforge",
	Short: "Envforge - reproducible GPU research environments",
	Long: `Envforge manages declarative recipes for GPU research environments.

A recipe (envforge.yaml) pins the CUDA base image, OS packages, Python
toolchain with exact requirements, the upstream research codebase, and
its native extension build. Envforge validates recipes and generates the
build artifacts (Dockerfile, docker-compose, devcontainer) from them
deterministically, and can drive local image builds through the Docker
daemon.`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if rootVerbose {
			log.SetLevel(log.DebugLevel)
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&recipeFile, "file", "f", "envforge.yaml", "Recipe file to operate on")
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "Enable debug logging")
}
