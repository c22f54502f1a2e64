package generator

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/envforge/envforge/internal/dockerfile"
	"github.com/envforge/envforge/internal/recipe"
	"github.com/envforge/envforge/pkg/xos"
)

// DockerfileName is the file written by the dockerfile generator.
const DockerfileName = "Dockerfile"

// DockerfileGenerator renders a recipe to a Dockerfile.
type DockerfileGenerator struct{}

// NewDockerfileGenerator creates a new dockerfile generator.
func NewDockerfileGenerator() *DockerfileGenerator {
	return &DockerfileGenerator{}
}

// Name returns the generator name.
func (g *DockerfileGenerator) Name() string {
	return "dockerfile"
}

// Description returns the generator description.
func (g *DockerfileGenerator) Description() string {
	return "Render the recipe to a Dockerfile"
}

// Outputs returns the files this generator writes.
func (g *DockerfileGenerator) Outputs(r *recipe.Recipe) []string {
	return []string{DockerfileName}
}

// Generate renders and writes the Dockerfile.
func (g *DockerfileGenerator) Generate(ctx context.Context, opts Options) error {
	content, err := RenderDockerfile(opts.Recipe, opts.Vendored)
	if err != nil {
		return err
	}

	path := filepath.Join(opts.OutputDir, DockerfileName)
	if opts.DryRun {
		fmt.Printf("Would write %s\n", path)
		return nil
	}

	if err := xos.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write Dockerfile: %w", err)
	}
	return nil
}

// RenderDockerfile renders the Dockerfile for a recipe. When vendored
// is set, the upstream source is copied from the vendored tree instead
// of being cloned during the build.
func RenderDockerfile(r *recipe.Recipe, vendored bool) (string, error) {
	f := dockerfile.New()
	f.Header(
		"Generated by envforge from "+recipe.FileName+". DO NOT EDIT.",
		"Recipe: "+r.Name,
	)

	f.From(r.BaseImage())
	f.Label("dev.envforge.recipe", r.Name)
	f.Arg("DEBIAN_FRONTEND", "noninteractive")

	writeSystemPackages(f, r)

	if err := writePythonToolchain(f, r); err != nil {
		return "", err
	}
	writeRequirements(f, r)
	writeSource(f, r, vendored)
	writeExtensions(f, r)

	if len(r.Env) > 0 {
		f.Comment("environment")
		f.EnvMap(r.Env)
	}
	if r.GPU() {
		f.Env("NVIDIA_VISIBLE_DEVICES", r.Runtime.GPUs)
		f.Env("NVIDIA_DRIVER_CAPABILITIES", strings.Join(r.Runtime.Capabilities, ","))
	}

	if r.Source != nil {
		f.Workdir(r.Source.Dest)
	} else {
		f.Workdir("/workspace")
	}
	f.Cmd("/bin/bash")

	return f.Render(), nil
}

func writeSystemPackages(f *dockerfile.File, r *recipe.Recipe) {
	pkgs := append([]string(nil), r.System.Packages...)
	if r.Source != nil && !contains(pkgs, "git") {
		// the in-image clone needs a git binary regardless of the recipe
		pkgs = append(pkgs, "git")
	}
	if r.Python.Manager == recipe.ManagerMicromamba {
		// the bootstrap fetches the micromamba tarball over https
		for _, p := range []string{"bzip2", "ca-certificates", "wget"} {
			if !contains(pkgs, p) {
				pkgs = append(pkgs, p)
			}
		}
	}
	if len(pkgs) == 0 {
		return
	}
	sort.Strings(pkgs)

	f.Comment("OS packages")
	f.RunAll(
		"apt-get update",
		"apt-get install -y --no-install-recommends "+strings.Join(pkgs, " "),
		"rm -rf /var/lib/apt/lists/*",
	)
}

func writePythonToolchain(f *dockerfile.File, r *recipe.Recipe) error {
	f.Comment("Python toolchain (" + string(r.Python.Manager) + ")")

	switch r.Python.Manager {
	case recipe.ManagerMicromamba:
		f.Env("MAMBA_ROOT_PREFIX", "/opt/conda")
		f.Env("PATH", "/opt/conda/bin:$PATH")
		f.RunAll(
			"wget -qO /tmp/micromamba.tar.bz2 https://micro.mamba.pm/api/micromamba/linux-64/latest",
			"tar -xjf /tmp/micromamba.tar.bz2 -C /usr/local/bin --strip-components=1 bin/micromamba",
			"rm /tmp/micromamba.tar.bz2",
			fmt.Sprintf("micromamba create -y -p /opt/conda -c conda-forge python=%s pip", r.Python.Version),
			"micromamba clean -ya",
		)
	case recipe.ManagerUV:
		f.CopyFrom("ghcr.io/astral-sh/uv:latest", "/uv", "/usr/local/bin/uv")
		f.Env("VIRTUAL_ENV", "/opt/venv")
		f.Env("PATH", "/opt/venv/bin:$PATH")
		f.Run(fmt.Sprintf("uv venv --python %s /opt/venv", r.Python.Version))
	case recipe.ManagerPip:
		f.RunAll(
			"apt-get update",
			"apt-get install -y --no-install-recommends python3 python3-pip python3-venv",
			"rm -rf /var/lib/apt/lists/*",
		)
		f.Env("PATH", "/opt/venv/bin:$PATH")
		f.Run("python3 -m venv /opt/venv")
	default:
		return fmt.Errorf("unsupported python manager %q", r.Python.Manager)
	}
	return nil
}

func writeRequirements(f *dockerfile.File, r *recipe.Recipe) {
	if len(r.Python.Requirements) == 0 {
		return
	}

	install := "pip install --no-cache-dir"
	if r.Python.Manager == recipe.ManagerUV {
		install = "uv pip install --no-cache"
	}

	args := make([]string, 0, len(r.Python.Requirements)+1)
	if r.Python.ExtraIndexURL != "" {
		args = append(args, "--extra-index-url "+r.Python.ExtraIndexURL)
	}
	// requirement order is preserved: framework wheels first so later
	// source builds resolve against them
	args = append(args, r.Python.Requirements...)

	f.Comment("pinned requirements")
	f.RunWrapped(install, args...)
}

func writeSource(f *dockerfile.File, r *recipe.Recipe, vendored bool) {
	src := r.Source
	if src == nil {
		return
	}

	f.Comment("upstream source: " + src.Repo + " @ " + src.Ref)

	if vendored {
		f.Copy(filepath.Join("third_party", r.Name), src.Dest)
		return
	}

	if recipe.IsCommit(src.Ref) {
		cmds := []string{
			fmt.Sprintf("git clone %s %s", src.Repo, src.Dest),
			fmt.Sprintf("git -C %s checkout %s", src.Dest, src.Ref),
		}
		if src.Submodules {
			cmds = append(cmds, fmt.Sprintf("git -C %s submodule update --init --recursive", src.Dest))
		}
		f.RunAll(cmds...)
		return
	}

	clone := fmt.Sprintf("git clone --depth 1 --branch %s", src.Ref)
	if src.Submodules {
		clone += " --recurse-submodules"
	}
	f.Run(fmt.Sprintf("%s %s %s", clone, src.Repo, src.Dest))
}

func writeExtensions(f *dockerfile.File, r *recipe.Recipe) {
	for _, ext := range r.Extensions {
		f.Comment("native extension: " + ext.Name)
		f.Workdir(ext.Workdir)
		f.Run(ext.Command)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
