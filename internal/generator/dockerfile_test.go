package generator

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/envforge/envforge/internal/recipe"
)

func droidRecipe(t *testing.T) *recipe.Recipe {
	t.Helper()
	r, err := recipe.LoadPreset("droid-slam")
	if err != nil {
		t.Fatalf("LoadPreset(droid-slam) error: %v", err)
	}
	return r
}

func TestRenderDockerfile_DroidSLAM(t *testing.T) {
	t.Parallel()

	r := droidRecipe(t)
	got, err := RenderDockerfile(r, false)
	if err != nil {
		t.Fatalf("RenderDockerfile() error: %v", err)
	}

	wantLines := []string{
		"# Generated by envforge from envforge.yaml. DO NOT EDIT.",
		"FROM nvidia/cuda:11.8.0-cudnn8-devel-ubuntu22.04",
		`LABEL dev.envforge.recipe="droid-slam"`,
		"ARG DEBIAN_FRONTEND=noninteractive",
		"apt-get install -y --no-install-recommends",
		"micromamba create -y -p /opt/conda -c conda-forge python=3.10 pip",
		"--extra-index-url https://download.pytorch.org/whl/cu118",
		"torch==2.0.1+cu118",
		"git clone --depth 1 --branch main --recurse-submodules https://github.com/princeton-vl/DROID-SLAM.git /opt/droid-slam",
		"python setup.py install",
		"ENV NVIDIA_VISIBLE_DEVICES=all",
		"ENV NVIDIA_DRIVER_CAPABILITIES=compute,utility,graphics",
		"WORKDIR /opt/droid-slam",
		`CMD ["/bin/bash"]`,
	}
	for _, want := range wantLines {
		if !strings.Contains(got, want) {
			t.Errorf("Dockerfile missing %q:\n%s", want, got)
		}
	}

	// clone tooling is injected even when the recipe omits it
	if !strings.Contains(got, "git") || !strings.Contains(got, "bzip2") {
		t.Error("git and bzip2 should be installed for clone + micromamba")
	}
}

func TestRenderDockerfile_MicromambaBootstrapTooling(t *testing.T) {
	t.Parallel()

	r, err := recipe.Parse([]byte(`
name: bare-env
base:
  flavor: cpu
python:
  version: "3.10"
  manager: micromamba
`))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	got, err := RenderDockerfile(r, false)
	if err != nil {
		t.Fatalf("RenderDockerfile() error: %v", err)
	}

	// the tarball fetch needs wget and https roots even when the recipe
	// lists no system packages
	if !strings.Contains(got, "apt-get install -y --no-install-recommends bzip2 ca-certificates wget") {
		t.Errorf("micromamba bootstrap tooling missing from apt layer:\n%s", got)
	}
	if !strings.Contains(got, "wget -qO /tmp/micromamba.tar.bz2") {
		t.Errorf("micromamba bootstrap missing:\n%s", got)
	}
}

func TestRenderDockerfile_Deterministic(t *testing.T) {
	t.Parallel()

	r := droidRecipe(t)
	first, err := RenderDockerfile(r, false)
	if err != nil {
		t.Fatalf("RenderDockerfile() error: %v", err)
	}
	second, err := RenderDockerfile(r, false)
	if err != nil {
		t.Fatalf("RenderDockerfile() error: %v", err)
	}
	if first != second {
		t.Error("RenderDockerfile() is not deterministic")
	}
}

func TestRenderDockerfile_Vendored(t *testing.T) {
	t.Parallel()

	r := droidRecipe(t)
	got, err := RenderDockerfile(r, true)
	if err != nil {
		t.Fatalf("RenderDockerfile() error: %v", err)
	}

	if !strings.Contains(got, "COPY third_party/droid-slam /opt/droid-slam") {
		t.Errorf("vendored Dockerfile should COPY the vendored tree:\n%s", got)
	}
	if strings.Contains(got, "git clone") {
		t.Errorf("vendored Dockerfile should not clone:\n%s", got)
	}
}

func TestRenderDockerfile_CommitRef(t *testing.T) {
	t.Parallel()

	r := droidRecipe(t)
	r.Source.Ref = "8016d2b9b72f2d8d22386939bc2d3a26e56e8a32"

	got, err := RenderDockerfile(r, false)
	if err != nil {
		t.Fatalf("RenderDockerfile() error: %v", err)
	}

	if !strings.Contains(got, "git -C /opt/droid-slam checkout 8016d2b9b72f2d8d22386939bc2d3a26e56e8a32") {
		t.Errorf("commit ref should be checked out after a full clone:\n%s", got)
	}
	if strings.Contains(got, "--depth 1") {
		t.Errorf("commit refs cannot use a shallow clone:\n%s", got)
	}
	if !strings.Contains(got, "submodule update --init --recursive") {
		t.Errorf("submodules should be initialised after checkout:\n%s", got)
	}
}

func TestRenderDockerfile_UVManager(t *testing.T) {
	t.Parallel()

	r, err := recipe.Parse([]byte(`
name: uv-env
base:
  flavor: cpu
python:
  version: "3.11"
  manager: uv
  requirements:
    - numpy==1.26.0
`))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	got, err := RenderDockerfile(r, false)
	if err != nil {
		t.Fatalf("RenderDockerfile() error: %v", err)
	}

	if !strings.Contains(got, "FROM ubuntu:22.04") {
		t.Errorf("cpu recipe should build on plain ubuntu:\n%s", got)
	}
	if !strings.Contains(got, "COPY --from=ghcr.io/astral-sh/uv:latest /uv /usr/local/bin/uv") {
		t.Errorf("uv binary should be copied from the upstream image:\n%s", got)
	}
	if !strings.Contains(got, "uv venv --python 3.11 /opt/venv") {
		t.Errorf("uv should create the venv:\n%s", got)
	}
	if !strings.Contains(got, "uv pip install --no-cache") {
		t.Errorf("requirements should install via uv:\n%s", got)
	}
	if strings.Contains(got, "NVIDIA_VISIBLE_DEVICES") {
		t.Errorf("cpu recipe should not export NVIDIA env:\n%s", got)
	}
}

func TestDockerfileGenerator_Generate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	g := NewDockerfileGenerator()
	err := g.Generate(context.Background(), Options{
		Recipe:    droidRecipe(t),
		OutputDir: dir,
	})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, DockerfileName))
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !strings.Contains(string(data), "FROM nvidia/cuda:11.8.0-cudnn8-devel-ubuntu22.04") {
		t.Error("written Dockerfile has unexpected content")
	}
}

func TestDockerfileGenerator_DryRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	g := NewDockerfileGenerator()
	err := g.Generate(context.Background(), Options{
		Recipe:    droidRecipe(t),
		OutputDir: dir,
		DryRun:    true,
	})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, DockerfileName)); !os.IsNotExist(err) {
		t.Error("dry run should not write the Dockerfile")
	}
}
