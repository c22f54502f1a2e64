package generator

import (
	"context"
	"fmt"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/envforge/envforge/internal/recipe"
	"github.com/envforge/envforge/pkg/xos"
)

// ComposeFileName is the file written by the compose generator.
const ComposeFileName = "docker-compose.yaml"

// ComposeGenerator renders a recipe to a docker-compose file wiring
// the GPU device reservation, shared memory, and mounts the recipe
// declares.
type ComposeGenerator struct{}

// NewComposeGenerator creates a new compose generator.
func NewComposeGenerator() *ComposeGenerator {
	return &ComposeGenerator{}
}

func (g *ComposeGenerator) Name() string        { return "compose" }
func (g *ComposeGenerator) Description() string { return "Render the recipe to a docker-compose file" }

// Outputs returns the files this generator writes.
func (g *ComposeGenerator) Outputs(r *recipe.Recipe) []string {
	return []string{ComposeFileName}
}

type composeFile struct {
	Services map[string]composeService `yaml:"services"`
}

type composeService struct {
	Build       composeBuild      `yaml:"build"`
	Image       string            `yaml:"image"`
	IPC         string            `yaml:"ipc,omitempty"`
	ShmSize     string            `yaml:"shm_size,omitempty"`
	Environment map[string]string `yaml:"environment,omitempty"`
	Volumes     []string          `yaml:"volumes,omitempty"`
	Deploy      *composeDeploy    `yaml:"deploy,omitempty"`
	StdinOpen   bool              `yaml:"stdin_open"`
	TTY         bool              `yaml:"tty"`
}

type composeBuild struct {
	Context    string `yaml:"context"`
	Dockerfile string `yaml:"dockerfile"`
}

type composeDeploy struct {
	Resources composeResources `yaml:"resources"`
}

type composeResources struct {
	Reservations composeReservations `yaml:"reservations"`
}

type composeReservations struct {
	Devices []composeDevice `yaml:"devices"`
}

type composeDevice struct {
	Driver       string   `yaml:"driver"`
	Count        string   `yaml:"count,omitempty"`
	Capabilities []string `yaml:"capabilities"`
}

// Generate renders and writes the compose file.
func (g *ComposeGenerator) Generate(ctx context.Context, opts Options) error {
	content, err := RenderCompose(opts.Recipe)
	if err != nil {
		return err
	}

	path := filepath.Join(opts.OutputDir, ComposeFileName)
	if opts.DryRun {
		fmt.Printf("Would write %s\n", path)
		return nil
	}

	if err := xos.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write compose file: %w", err)
	}
	return nil
}

// RenderCompose renders the docker-compose file for a recipe.
func RenderCompose(r *recipe.Recipe) (string, error) {
	svc := composeService{
		Build: composeBuild{
			Context:    ".",
			Dockerfile: DockerfileName,
		},
		Image:       r.ImageTag(),
		IPC:         r.Runtime.IPC,
		ShmSize:     r.Runtime.ShmSize,
		Environment: r.Env,
		Volumes:     r.Runtime.Mounts,
		StdinOpen:   true,
		TTY:         true,
	}

	if r.GPU() {
		svc.Deploy = &composeDeploy{
			Resources: composeResources{
				Reservations: composeReservations{
					Devices: []composeDevice{{
						Driver:       "nvidia",
						Count:        r.Runtime.GPUs,
						Capabilities: []string{"gpu"},
					}},
				},
			},
		}
	}

	file := composeFile{
		Services: map[string]composeService{r.Name: svc},
	}

	data, err := yaml.Marshal(file)
	if err != nil {
		return "", fmt.Errorf("failed to marshal compose file: %w", err)
	}
	return "# Generated by envforge from " + recipe.FileName + ". DO NOT EDIT.\n" + string(data), nil
}
