package cmd

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/envforge/envforge/internal/daemon"
	"github.com/envforge/envforge/internal/generator"
)

var watchVendored bool

var watchCmd = &cobra.Command{
	Use:   "watch [artifact...]",
	Short: "Regenerate artifacts whenever the recipe changes",
	Long: `Watch the recipe file and regenerate build artifacts on every
change. With no arguments, all artifacts are regenerated.

Examples:
  envforge watch
  envforge watch dockerfile`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().BoolVar(&watchVendored, "vendored", false, "COPY the vendored source tree instead of cloning during the build")
}

func runWatch(cmd *cobra.Command, args []string) error {
	artifacts := args
	if len(artifacts) == 0 {
		artifacts = generator.List()
	}
	for _, name := range artifacts {
		if _, err := generator.Get(name); err != nil {
			return fmt.Errorf("unknown artifact %q (available: %s)", name, strings.Join(generator.List(), ", "))
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d := daemon.New(recipeFile, recipeDir(), watchVendored, artifacts)
	return d.Run(ctx)
}
