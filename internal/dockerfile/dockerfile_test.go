package dockerfile

import (
	"strings"
	"testing"
)

func TestRender_BlocksAndHeader(t *testing.T) {
	t.Parallel()

	got := New().
		Header("generated file").
		From("ubuntu:22.04").
		Run("apt-get update").
		Render()

	want := "# generated file\n\nFROM ubuntu:22.04\n\nRUN apt-get update\n"
	if got != want {
		t.Errorf("Render() =\n%q\nwant\n%q", got, want)
	}
}

func TestRender_CommentAttachesToNextBlock(t *testing.T) {
	t.Parallel()

	got := New().
		From("ubuntu:22.04").
		Comment("workspace").
		Workdir("/src").
		Render()

	want := "FROM ubuntu:22.04\n\n# workspace\nWORKDIR /src\n"
	if got != want {
		t.Errorf("Render() =\n%q\nwant\n%q", got, want)
	}
}

func TestRunAll(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		commands []string
		want     string
	}{
		{
			name:     "single command stays on one line",
			commands: []string{"make install"},
			want:     "RUN make install\n",
		},
		{
			name:     "commands are chained with continuations",
			commands: []string{"apt-get update", "apt-get install -y git", "rm -rf /var/lib/apt/lists/*"},
			want:     "RUN apt-get update \\\n && apt-get install -y git \\\n && rm -rf /var/lib/apt/lists/*\n",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := New().RunAll(tt.commands...).Render()
			if got != tt.want {
				t.Errorf("Render() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestRunWrapped(t *testing.T) {
	t.Parallel()

	got := New().RunWrapped("pip install --no-cache-dir", "torch==2.0.1+cu118", "numpy==1.24.4").Render()
	want := "RUN pip install --no-cache-dir \\\n      torch==2.0.1+cu118 \\\n      numpy==1.24.4\n"
	if got != want {
		t.Errorf("Render() =\n%q\nwant\n%q", got, want)
	}
}

func TestEnvMap_SortedAndQuoted(t *testing.T) {
	t.Parallel()

	got := New().EnvMap(map[string]string{
		"ZVAR":                 "last",
		"TORCH_CUDA_ARCH_LIST": "7.0 7.5 8.0",
		"AVAR":                 "first",
	}).Render()

	want := "ENV AVAR=first\n\nENV TORCH_CUDA_ARCH_LIST=\"7.0 7.5 8.0\"\n\nENV ZVAR=last\n"
	if got != want {
		t.Errorf("Render() =\n%q\nwant\n%q", got, want)
	}
}

func TestCmd_ExecForm(t *testing.T) {
	t.Parallel()

	got := New().Cmd("/bin/bash", "-l").Render()
	want := "CMD [\"/bin/bash\", \"-l\"]\n"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestCopyFromAndLabel(t *testing.T) {
	t.Parallel()

	got := New().
		CopyFrom("ghcr.io/astral-sh/uv:latest", "/uv", "/usr/local/bin/uv").
		Label("dev.envforge.recipe", "demo").
		Render()

	if !strings.Contains(got, "COPY --from=ghcr.io/astral-sh/uv:latest /uv /usr/local/bin/uv") {
		t.Errorf("missing COPY --from instruction:\n%s", got)
	}
	if !strings.Contains(got, `LABEL dev.envforge.recipe="demo"`) {
		t.Errorf("missing LABEL instruction:\n%s", got)
	}
}
