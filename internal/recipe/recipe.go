// Package recipe provides the envforge recipe model: a declarative
// description of a GPU research environment image.
package recipe

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/envforge/envforge/pkg/xos"
)

const FileName = "envforge.yaml"

// Flavor selects the image base family.
type Flavor string

const (
	FlavorCUDA Flavor = "cuda"
	FlavorCPU  Flavor = "cpu"
)

// Manager selects the Python toolchain used inside the image.
type Manager string

const (
	ManagerMicromamba Manager = "micromamba"
	ManagerUV         Manager = "uv"
	ManagerPip        Manager = "pip"
)

// Recipe is the root of an envforge.yaml file.
type Recipe struct {
	Version    string            `yaml:"version"`
	Name       string            `yaml:"name"`
	Base       Base              `yaml:"base"`
	System     System            `yaml:"system,omitempty"`
	Python     Python            `yaml:"python"`
	Source     *Source           `yaml:"source,omitempty"`
	Extensions []Extension       `yaml:"extensions,omitempty"`
	Env        map[string]string `yaml:"env,omitempty"`
	Runtime    Runtime           `yaml:"runtime,omitempty"`
}

// Base describes the base image.
type Base struct {
	Flavor Flavor `yaml:"flavor"`
	CUDA   string `yaml:"cuda,omitempty"`
	CuDNN  string `yaml:"cudnn,omitempty"`
	OS     string `yaml:"os"`
}

// System lists OS-level packages installed via apt.
type System struct {
	Packages []string `yaml:"packages,omitempty"`
}

// Python describes the Python toolchain and pinned requirements.
type Python struct {
	Version       string   `yaml:"version"`
	Manager       Manager  `yaml:"manager"`
	Requirements  []string `yaml:"requirements,omitempty"`
	ExtraIndexURL string   `yaml:"extraIndexUrl,omitempty"`
}

// Source points at the upstream research repository cloned into the image.
type Source struct {
	Repo       string `yaml:"repo"`
	Ref        string `yaml:"ref"`
	Dest       string `yaml:"dest"`
	Submodules bool   `yaml:"submodules,omitempty"`
}

// Extension is a native extension built inside the image after the
// source checkout (typically a CUDA extension compiled via setup.py).
type Extension struct {
	Name    string `yaml:"name"`
	Workdir string `yaml:"workdir,omitempty"`
	Command string `yaml:"command"`
}

// Runtime captures the container runtime settings implied by the recipe.
type Runtime struct {
	GPUs         string   `yaml:"gpus,omitempty"`
	ShmSize      string   `yaml:"shmSize,omitempty"`
	IPC          string   `yaml:"ipc,omitempty"`
	Capabilities []string `yaml:"capabilities,omitempty"`
	Mounts       []string `yaml:"mounts,omitempty"`
	Ulimits      []string `yaml:"ulimits,omitempty"`
}

// Load reads and parses a recipe file, applies defaults, and validates it.
func Load(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe: %w", err)
	}

	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// LoadDir loads the recipe file from a directory.
func LoadDir(dir string) (*Recipe, error) {
	return Load(filepath.Join(dir, FileName))
}

// Parse parses recipe bytes, applies defaults, and validates.
func Parse(data []byte) (*Recipe, error) {
	var r Recipe
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse recipe: %w", err)
	}

	r.applyDefaults()

	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("invalid recipe: %w", err)
	}

	return &r, nil
}

// Save writes the recipe to a file atomically.
func (r *Recipe) Save(path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal recipe: %w", err)
	}

	if err := xos.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write recipe: %w", err)
	}

	return nil
}

// SaveToDir writes the recipe to its canonical file name inside dir.
func (r *Recipe) SaveToDir(dir string) error {
	return r.Save(filepath.Join(dir, FileName))
}

// BaseImage returns the image reference the generated Dockerfile starts from.
func (r *Recipe) BaseImage() string {
	if r.Base.Flavor == FlavorCUDA {
		return fmt.Sprintf("nvidia/cuda:%s-cudnn%s-devel-%s", r.Base.CUDA, r.Base.CuDNN, r.Base.OS)
	}
	// "ubuntu22.04" -> "ubuntu:22.04"
	return strings.Replace(r.Base.OS, "ubuntu", "ubuntu:", 1)
}

// ImageTag returns the local tag used for built images.
func (r *Recipe) ImageTag() string {
	return r.Name + ":latest"
}

// GPU reports whether the recipe targets a CUDA base.
func (r *Recipe) GPU() bool {
	return r.Base.Flavor == FlavorCUDA
}

// applyDefaults sets default values for missing fields.
func (r *Recipe) applyDefaults() {
	if r.Version == "" {
		r.Version = "1"
	}
	if r.Base.Flavor == "" {
		r.Base.Flavor = FlavorCUDA
	}
	if r.Base.OS == "" {
		r.Base.OS = "ubuntu22.04"
	}
	if r.Base.Flavor == FlavorCUDA && r.Base.CuDNN == "" {
		r.Base.CuDNN = "8"
	}
	if r.Python.Manager == "" {
		r.Python.Manager = ManagerMicromamba
	}
	if r.Python.Version == "" {
		r.Python.Version = "3.10"
	}
	if r.Source != nil {
		if r.Source.Ref == "" {
			r.Source.Ref = "main"
		}
		if r.Source.Dest == "" {
			r.Source.Dest = "/opt/" + r.Name
		}
	}
	for i := range r.Extensions {
		if r.Extensions[i].Workdir == "" && r.Source != nil {
			r.Extensions[i].Workdir = r.Source.Dest
		}
	}
	if r.GPU() {
		if r.Runtime.GPUs == "" {
			r.Runtime.GPUs = "all"
		}
		if len(r.Runtime.Capabilities) == 0 {
			r.Runtime.Capabilities = []string{"compute", "utility"}
		}
	}
}
