package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/envforge/envforge/internal/docker"
	"github.com/envforge/envforge/internal/generator"
	"github.com/envforge/envforge/internal/gitsrc"
)

var (
	cleanVendor bool
	cleanImage  bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove generated artifacts",
	Long: `Remove the generated build artifacts. The recipe file itself is
never touched.

Examples:
  envforge clean
  envforge clean --vendor          # also remove third_party/<name>
  envforge clean --image           # also remove the built image`,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)

	cleanCmd.Flags().BoolVar(&cleanVendor, "vendor", false, "Also remove the vendored source tree")
	cleanCmd.Flags().BoolVar(&cleanImage, "image", false, "Also remove the built image")
}

func runClean(cmd *cobra.Command, args []string) error {
	r, err := loadRecipe()
	if err != nil {
		return err
	}

	dir := recipeDir()

	for _, name := range generator.List() {
		g, err := generator.Get(name)
		if err != nil {
			return err
		}
		for _, out := range g.Outputs(r) {
			path := filepath.Join(dir, out)
			if err := os.Remove(path); err != nil {
				if os.IsNotExist(err) {
					continue
				}
				return fmt.Errorf("failed to remove %s: %w", path, err)
			}
			fmt.Printf("✓ Removed %s\n", out)
		}
	}
	// drop the .devcontainer dir if the definition was its only content
	_ = os.Remove(filepath.Join(dir, ".devcontainer"))

	if cleanVendor {
		dest := gitsrc.Dest(dir, r)
		if err := os.RemoveAll(dest); err != nil {
			return fmt.Errorf("failed to remove %s: %w", dest, err)
		}
		fmt.Printf("✓ Removed %s\n", dest)
	}

	if cleanImage {
		client, err := docker.NewClient(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer client.Close()

		exists, err := client.ImageExists(cmd.Context(), r.ImageTag())
		if err != nil {
			return err
		}
		if exists {
			if err := client.RemoveImage(cmd.Context(), r.ImageTag()); err != nil {
				return fmt.Errorf("failed to remove image %s: %w", r.ImageTag(), err)
			}
			fmt.Printf("✓ Removed image %s\n", r.ImageTag())
		}
	}

	return nil
}
