package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/envforge/envforge/internal/recipe"
)

// loadRecipe loads the recipe selected by the --file flag.
func loadRecipe() (*recipe.Recipe, error) {
	if _, err := os.Stat(recipeFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s not found (run 'envforge new' to create one)", recipeFile)
	}
	return recipe.Load(recipeFile)
}

// recipeDir returns the directory containing the recipe file. Generated
// artifacts and vendored sources live next to the recipe.
func recipeDir() string {
	dir := filepath.Dir(recipeFile)
	if dir == "" {
		return "."
	}
	return dir
}
