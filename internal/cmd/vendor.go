package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/envforge/envforge/internal/gitsrc"
)

var vendorCmd = &cobra.Command{
	Use:   "vendor",
	Short: "Vendor the upstream source at its pinned ref",
	Long: `Clone the recipe's source repository at the pinned ref into
third_party/<name>. Builds with --vendored COPY this tree into the
image instead of cloning over the network during the build.`,
	RunE: runVendor,
}

func init() {
	rootCmd.AddCommand(vendorCmd)
}

func runVendor(cmd *cobra.Command, args []string) error {
	r, err := loadRecipe()
	if err != nil {
		return err
	}

	dest, err := gitsrc.Vendor(cmd.Context(), recipeDir(), r)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Vendored %s @ %s\n", r.Source.Repo, r.Source.Ref)
	fmt.Printf("✓ Location: %s\n", dest)
	return nil
}
