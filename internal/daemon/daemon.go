package daemon

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/envforge/envforge/internal/generator"
	"github.com/envforge/envforge/internal/recipe"
)

// DefaultDebounce absorbs the write bursts editors produce on save.
const DefaultDebounce = 200 * time.Millisecond

// Daemon reloads the recipe and regenerates artifacts on change.
type Daemon struct {
	recipePath string
	outputDir  string
	vendored   bool
	artifacts  []string
}

// New creates a daemon regenerating the given artifacts (generator
// names from the default registry) into outputDir.
func New(recipePath, outputDir string, vendored bool, artifacts []string) *Daemon {
	return &Daemon{
		recipePath: recipePath,
		outputDir:  outputDir,
		vendored:   vendored,
		artifacts:  artifacts,
	}
}

// Run generates once, then blocks regenerating on every change until
// the context is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.regenerate(ctx); err != nil {
		log.Error("initial generation failed", "err", err)
	}

	w, err := NewWatcher(d.recipePath, DefaultDebounce)
	if err != nil {
		return err
	}
	defer w.Stop()

	if err := w.Start(ctx); err != nil {
		return err
	}

	log.Info("watching recipe", "path", d.recipePath)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.Events():
			log.Info("recipe changed, regenerating")
			if err := d.regenerate(ctx); err != nil {
				// keep watching: the next save may fix the recipe
				log.Error("generation failed", "err", err)
			}
		case err := <-w.Errors():
			log.Error("watch error", "err", err)
		}
	}
}

func (d *Daemon) regenerate(ctx context.Context) error {
	r, err := recipe.Load(d.recipePath)
	if err != nil {
		return err
	}

	opts := generator.Options{
		Recipe:    r,
		OutputDir: d.outputDir,
		Vendored:  d.vendored,
	}

	for _, name := range d.artifacts {
		g, err := generator.Get(name)
		if err != nil {
			return err
		}
		if err := g.Generate(ctx, opts); err != nil {
			return err
		}
		for _, out := range g.Outputs(r) {
			log.Info("wrote artifact", "file", out)
		}
	}
	return nil
}
