package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/envforge/envforge/internal/recipe"
	"github.com/envforge/envforge/pkg/xos"
)

// DevcontainerPath is the file written by the devcontainer generator,
// relative to the output directory.
var DevcontainerPath = filepath.Join(".devcontainer", "devcontainer.json")

// DevcontainerGenerator renders a recipe to a devcontainer definition
// referencing the generated Dockerfile.
type DevcontainerGenerator struct{}

// NewDevcontainerGenerator creates a new devcontainer generator.
func NewDevcontainerGenerator() *DevcontainerGenerator {
	return &DevcontainerGenerator{}
}

func (g *DevcontainerGenerator) Name() string { return "devcontainer" }

func (g *DevcontainerGenerator) Description() string {
	return "Render the recipe to a devcontainer definition"
}

// Outputs returns the files this generator writes.
func (g *DevcontainerGenerator) Outputs(r *recipe.Recipe) []string {
	return []string{DevcontainerPath}
}

type devcontainer struct {
	Name            string            `json:"name"`
	Build           devcontainerBuild `json:"build"`
	RunArgs         []string          `json:"runArgs,omitempty"`
	ContainerEnv    map[string]string `json:"containerEnv,omitempty"`
	Mounts          []string          `json:"mounts,omitempty"`
	WorkspaceFolder string            `json:"workspaceFolder,omitempty"`
	OverrideCommand bool              `json:"overrideCommand"`
}

type devcontainerBuild struct {
	Dockerfile string `json:"dockerfile"`
	Context    string `json:"context"`
}

// Generate renders and writes the devcontainer definition.
func (g *DevcontainerGenerator) Generate(ctx context.Context, opts Options) error {
	content, err := RenderDevcontainer(opts.Recipe)
	if err != nil {
		return err
	}

	path := filepath.Join(opts.OutputDir, DevcontainerPath)
	if opts.DryRun {
		fmt.Printf("Would write %s\n", path)
		return nil
	}

	if err := xos.CreateDir(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create .devcontainer: %w", err)
	}
	if err := xos.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write devcontainer: %w", err)
	}
	return nil
}

// RenderDevcontainer renders the devcontainer.json for a recipe.
func RenderDevcontainer(r *recipe.Recipe) (string, error) {
	dc := devcontainer{
		Name: r.Name,
		Build: devcontainerBuild{
			Dockerfile: filepath.Join("..", DockerfileName),
			Context:    "..",
		},
		ContainerEnv:    r.Env,
		OverrideCommand: true,
	}

	if r.GPU() {
		dc.RunArgs = append(dc.RunArgs, "--gpus", r.Runtime.GPUs)
	}
	if r.Runtime.ShmSize != "" {
		dc.RunArgs = append(dc.RunArgs, "--shm-size", r.Runtime.ShmSize)
	}
	if r.Runtime.IPC != "" {
		dc.RunArgs = append(dc.RunArgs, "--ipc", r.Runtime.IPC)
	}
	for _, m := range r.Runtime.Mounts {
		dc.RunArgs = append(dc.RunArgs, "-v", m)
	}
	if r.Source != nil {
		dc.WorkspaceFolder = r.Source.Dest
	}

	data, err := json.MarshalIndent(dc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal devcontainer: %w", err)
	}
	return string(data) + "\n", nil
}
