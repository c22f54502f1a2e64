// Package generator provides the artifact generators that turn a
// recipe into concrete build files.
package generator

import (
	"context"
	"fmt"
	"sort"

	"github.com/envforge/envforge/internal/recipe"
)

// Generator defines the interface for all artifact generators.
type Generator interface {
	// Name returns the artifact name used on the command line.
	Name() string

	// Description returns a human-readable description.
	Description() string

	// Outputs returns the paths (relative to the output dir) the
	// generator writes.
	Outputs(r *recipe.Recipe) []string

	// Generate renders the artifact for the given recipe.
	Generate(ctx context.Context, opts Options) error
}

// Options contains common options for all generators.
type Options struct {
	// Recipe is the recipe to render.
	Recipe *recipe.Recipe

	// OutputDir is the directory artifacts are written into.
	OutputDir string

	// Vendored selects COPY of the vendored source tree over a clone
	// performed during the image build.
	Vendored bool

	// DryRun previews the files without writing them.
	DryRun bool
}

// Registry manages available generators.
type Registry struct {
	generators map[string]Generator
}

// NewRegistry creates a new generator registry.
func NewRegistry() *Registry {
	return &Registry{
		generators: make(map[string]Generator),
	}
}

// Register adds a generator to the registry.
func (r *Registry) Register(g Generator) error {
	name := g.Name()
	if _, exists := r.generators[name]; exists {
		return fmt.Errorf("generator %q already registered", name)
	}

	r.generators[name] = g
	return nil
}

// Get retrieves a generator by name.
func (r *Registry) Get(name string) (Generator, error) {
	g, exists := r.generators[name]
	if !exists {
		return nil, fmt.Errorf("generator %q not found", name)
	}

	return g, nil
}

// List returns all registered generator names, sorted.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.generators))
	for name := range r.generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has checks if a generator is registered.
func (r *Registry) Has(name string) bool {
	_, exists := r.generators[name]
	return exists
}

// DefaultRegistry is the global generator registry.
var DefaultRegistry = NewRegistry()

func init() {
	must(DefaultRegistry.Register(NewDockerfileGenerator()))
	must(DefaultRegistry.Register(NewComposeGenerator()))
	must(DefaultRegistry.Register(NewDevcontainerGenerator()))
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Get retrieves a generator from the default registry.
func Get(name string) (Generator, error) {
	return DefaultRegistry.Get(name)
}

// List returns all generators in the default registry.
func List() []string {
	return DefaultRegistry.List()
}
