package docker

import (
	"reflect"
	"testing"

	"github.com/envforge/envforge/internal/recipe"
)

func TestRunArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		recipe  *recipe.Recipe
		command []string
		want    []string
	}{
		{
			name: "full gpu runtime",
			recipe: &recipe.Recipe{
				Name: "droid-slam",
				Base: recipe.Base{Flavor: recipe.FlavorCUDA, CUDA: "11.8.0"},
				Env: map[string]string{
					"ZED":                  "1",
					"TORCH_CUDA_ARCH_LIST": "8.0",
				},
				Runtime: recipe.Runtime{
					GPUs:    "all",
					ShmSize: "8g",
					IPC:     "host",
					Mounts:  []string{"./data:/data"},
					Ulimits: []string{"memlock=-1"},
				},
			},
			command: []string{"python", "demo.py"},
			want: []string{
				"run", "--rm", "-it",
				"--gpus", "all",
				"--shm-size", "8g",
				"--ipc", "host",
				"-v", "./data:/data",
				"--ulimit", "memlock=-1",
				"-e", "TORCH_CUDA_ARCH_LIST=8.0",
				"-e", "ZED=1",
				"droid-slam:latest",
				"python", "demo.py",
			},
		},
		{
			name: "cpu minimal",
			recipe: &recipe.Recipe{
				Name: "cpu-env",
				Base: recipe.Base{Flavor: recipe.FlavorCPU},
			},
			want: []string{"run", "--rm", "-it", "cpu-env:latest"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := RunArgs(tt.recipe, tt.command...)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("RunArgs() =\n%v\nwant\n%v", got, tt.want)
			}
		})
	}
}
