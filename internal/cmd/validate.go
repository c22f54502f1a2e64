package cmd

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/envforge/envforge/internal/recipe"
)

//go:embed schemas/envforge-recipe.v1.schema.json
var schemaFS embed.FS

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the recipe file",
	Long: `Validates the recipe against the JSON Schema and then against the
semantic rules the schema cannot express: CUDA base availability, wheel
local-version-tag coherence (a +cu118 wheel on a CUDA 11.8 base),
requirement pinning, and Python version support.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(recipeFile); os.IsNotExist(err) {
		return fmt.Errorf("%s not found", recipeFile)
	}

	fmt.Printf("Validating %s...\n", recipeFile)

	data, err := os.ReadFile(recipeFile)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", recipeFile, err)
	}

	result, err := validateSchema(data)
	if err != nil {
		return err
	}

	if !result.Valid() {
		fmt.Println("\n✗ Schema validation failed:")
		fmt.Println()
		for i, desc := range result.Errors() {
			fmt.Printf("%d. %s\n", i+1, desc.String())
			fmt.Printf("   Field: %s\n\n", desc.Field())
		}
		return fmt.Errorf("validation failed with %d errors", len(result.Errors()))
	}

	// semantic validation happens in Parse
	if _, err := recipe.Parse(data); err != nil {
		fmt.Printf("\n✗ %v\n", err)
		return fmt.Errorf("validation failed")
	}

	fmt.Printf("✓ %s is valid\n", recipeFile)
	return nil
}

// validateSchema checks raw recipe YAML against the embedded JSON schema.
func validateSchema(data []byte) (*gojsonschema.Result, error) {
	schemaBytes, err := schemaFS.ReadFile("schemas/envforge-recipe.v1.schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to load JSON schema: %w", err)
	}

	// gojsonschema wants JSON, the recipe is YAML
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse recipe: %w", err)
	}
	docBytes, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to convert recipe to JSON: %w", err)
	}

	schemaLoader := gojsonschema.NewBytesLoader(schemaBytes)
	documentLoader := gojsonschema.NewBytesLoader(docBytes)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	return result, nil
}
