package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/envforge/envforge/internal/docker"
	"github.com/envforge/envforge/internal/generator"
	"github.com/envforge/envforge/internal/gitsrc"
)

var (
	buildTag      string
	buildNoCache  bool
	buildPull     bool
	buildVendored bool
	buildHosts    []string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the environment image",
	Long: `Generate the Dockerfile from the recipe and build the image through
the Docker daemon.

With --vendored, the upstream source is vendored first (if needed) and
COPY'd into the image, so the build works without network access to the
upstream repository.

Examples:
  envforge build
  envforge build --tag=droid-slam:cu118
  envforge build --vendored --no-cache`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVarP(&buildTag, "tag", "t", "", "Additional tag applied to the built image")
	buildCmd.Flags().BoolVar(&buildNoCache, "no-cache", false, "Disable layer caching")
	buildCmd.Flags().BoolVar(&buildPull, "pull", false, "Always pull the base image")
	buildCmd.Flags().BoolVar(&buildVendored, "vendored", false, "Build from the vendored source tree")
	buildCmd.Flags().StringSliceVar(&buildHosts, "docker-host", nil, "Docker daemon host(s) to try")
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	r, err := loadRecipe()
	if err != nil {
		return err
	}

	dir := recipeDir()

	if buildVendored && r.Source != nil {
		if _, err := os.Stat(gitsrc.Dest(dir, r)); os.IsNotExist(err) {
			fmt.Println("Vendored source missing, vendoring...")
			if _, err := gitsrc.Vendor(ctx, dir, r); err != nil {
				return err
			}
		}
	}

	gen := generator.NewDockerfileGenerator()
	if err := gen.Generate(ctx, generator.Options{
		Recipe:    r,
		OutputDir: dir,
		Vendored:  buildVendored,
	}); err != nil {
		return fmt.Errorf("failed to generate Dockerfile: %w", err)
	}
	fmt.Printf("✓ %s\n", generator.DockerfileName)

	client, err := docker.NewClient(ctx, buildHosts)
	if err != nil {
		return err
	}
	defer client.Close()

	// pre-pull the base so a cold build shows pull progress
	exists, err := client.ImageExists(ctx, r.BaseImage())
	if err != nil {
		return err
	}
	if !exists {
		if err := client.PullImage(ctx, r.BaseImage()); err != nil {
			return err
		}
	}

	if err := client.BuildImage(ctx, docker.BuildOptions{
		ContextDir: dir,
		Dockerfile: generator.DockerfileName,
		Tags:       []string{r.ImageTag()},
		Pull:       buildPull,
		NoCache:    buildNoCache,
	}); err != nil {
		return err
	}
	fmt.Printf("✓ Built %s\n", r.ImageTag())

	if buildTag != "" && buildTag != r.ImageTag() {
		if err := client.TagImage(ctx, r.ImageTag(), buildTag); err != nil {
			return fmt.Errorf("failed to tag %s: %w", buildTag, err)
		}
		fmt.Printf("✓ Tagged %s\n", buildTag)
	}

	return nil
}
