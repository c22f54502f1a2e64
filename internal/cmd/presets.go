package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/envforge/envforge/internal/recipe"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the built-in recipe presets",
	RunE:  runPresets,
}

func init() {
	rootCmd.AddCommand(presetsCmd)
}

func runPresets(cmd *cobra.Command, args []string) error {
	for _, name := range recipe.Presets() {
		r, err := recipe.LoadPreset(name)
		if err != nil {
			return err
		}

		base := string(r.Base.Flavor)
		if r.GPU() {
			base = "cuda " + r.Base.CUDA
		}
		fmt.Printf("%-16s %s / %s, python %s (%s), %d requirement(s)\n",
			name, base, r.Base.OS, r.Python.Version, r.Python.Manager, len(r.Python.Requirements))
	}
	return nil
}
