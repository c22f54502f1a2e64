package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/envforge/envforge/internal/generator"
)

var (
	generateVendored bool
	generateDryRun   bool
)

var generateCmd = &cobra.Command{
	Use:     "generate [artifact...]",
	Aliases: []string{"g"},
	Short:   "Generate build artifacts from the recipe",
	Long: `Generate build artifacts from the recipe. With no arguments, all
artifacts are generated.

Available artifacts:
  dockerfile    The image build file
  compose       docker-compose.yaml with GPU device reservations
  devcontainer  .devcontainer/devcontainer.json

Generation is deterministic: regenerating an unchanged recipe produces
byte-identical files.

Examples:
  envforge generate
  envforge g dockerfile
  envforge generate dockerfile compose --vendored`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().BoolVar(&generateVendored, "vendored", false, "COPY the vendored source tree instead of cloning during the build")
	generateCmd.Flags().BoolVar(&generateDryRun, "dry-run", false, "Preview files without writing them")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	r, err := loadRecipe()
	if err != nil {
		return err
	}

	names := args
	if len(names) == 0 {
		names = generator.List()
	}

	opts := generator.Options{
		Recipe:    r,
		OutputDir: recipeDir(),
		Vendored:  generateVendored,
		DryRun:    generateDryRun,
	}

	for _, name := range names {
		g, err := generator.Get(name)
		if err != nil {
			return fmt.Errorf("unknown artifact %q (available: %s)", name, strings.Join(generator.List(), ", "))
		}
		if err := g.Generate(cmd.Context(), opts); err != nil {
			return fmt.Errorf("failed to generate %s: %w", name, err)
		}
		if !generateDryRun {
			for _, out := range g.Outputs(r) {
				fmt.Printf("✓ %s\n", out)
			}
		}
	}

	return nil
}
