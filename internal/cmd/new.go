package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/envforge/envforge/internal/recipe"
	"github.com/envforge/envforge/internal/ui"
)

var (
	newPreset string
	newRepo   string
	newRef    string
	newForce  bool
)

var newCmd = &cobra.Command{
	Use:   "new [name]",
	Short: "Create a new recipe",
	Long: `Create a new recipe file from a built-in preset, or interactively.

Examples:
  envforge new                              # interactive
  envforge new my-slam --preset=droid-slam
  envforge new my-env --preset=minimal
  envforge new my-slam --preset=droid-slam --repo=https://github.com/me/droid-fork.git --ref=laparoscope`,
	Args: cobra.MaximumNArgs(1),
	RunE: runNew,
}

func init() {
	rootCmd.AddCommand(newCmd)

	newCmd.Flags().StringVar(&newPreset, "preset", "", "Built-in preset to start from")
	newCmd.Flags().StringVar(&newRepo, "repo", "", "Override the upstream source repository")
	newCmd.Flags().StringVar(&newRef, "ref", "", "Override the upstream source ref (branch, tag, or commit)")
	newCmd.Flags().BoolVar(&newForce, "force", false, "Overwrite an existing recipe file")
}

func runNew(cmd *cobra.Command, args []string) error {
	prompter := ui.NewPrompter()

	if !newForce {
		if _, err := os.Stat(recipeFile); err == nil {
			ok, err := prompter.AskConfirm(recipeFile+" already exists. Overwrite", false)
			if err != nil && !errors.Is(err, ui.ErrCancelled) {
				return err
			}
			if !ok {
				fmt.Println("Recipe creation cancelled.")
				return nil
			}
		}
	}

	var name string
	if len(args) > 0 {
		name = args[0]
	}

	preset := newPreset

	if preset == "" {
		choice, err := prompter.AskSelect("Which preset would you like to start from?", recipe.Presets())
		if err != nil {
			if errors.Is(err, ui.ErrCancelled) {
				fmt.Println("Recipe creation cancelled.")
				return nil
			}
			return err
		}
		preset = choice
	}

	r, err := recipe.LoadPreset(preset)
	if err != nil {
		return err
	}

	if name == "" {
		name, err = prompter.AskText("Recipe name", r.Name)
		if err != nil {
			if errors.Is(err, ui.ErrCancelled) {
				fmt.Println("Recipe creation cancelled.")
				return nil
			}
			return err
		}
	}
	if err := recipe.ValidateName(name); err != nil {
		return fmt.Errorf("invalid recipe name: %w", err)
	}
	r.Name = name

	if newRepo != "" || newRef != "" {
		if r.Source == nil {
			return fmt.Errorf("preset %s has no source block to override", preset)
		}
		if newRepo != "" {
			r.Source.Repo = newRepo
		}
		if newRef != "" {
			r.Source.Ref = newRef
		}
	}

	if err := r.Validate(); err != nil {
		return fmt.Errorf("invalid recipe: %w", err)
	}

	if err := r.Save(recipeFile); err != nil {
		return err
	}

	fmt.Printf("✓ Recipe %q created from preset %s\n", r.Name, preset)
	fmt.Printf("✓ Location: %s\n", recipeFile)
	fmt.Println("\nNext steps:")
	fmt.Println("  $ envforge validate")
	fmt.Println("  $ envforge generate")
	fmt.Println("  $ envforge build")

	return nil
}
