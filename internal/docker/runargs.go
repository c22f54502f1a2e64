package docker

import (
	"sort"

	"github.com/envforge/envforge/internal/recipe"
)

// RunArgs assembles the `docker run` arguments implied by a recipe's
// runtime block. The returned slice starts after the `docker` binary
// itself, so it can be passed straight to exec.
func RunArgs(r *recipe.Recipe, command ...string) []string {
	args := []string{"run", "--rm", "-it"}

	if r.GPU() && r.Runtime.GPUs != "" {
		args = append(args, "--gpus", r.Runtime.GPUs)
	}
	if r.Runtime.ShmSize != "" {
		args = append(args, "--shm-size", r.Runtime.ShmSize)
	}
	if r.Runtime.IPC != "" {
		args = append(args, "--ipc", r.Runtime.IPC)
	}
	for _, m := range r.Runtime.Mounts {
		args = append(args, "-v", m)
	}
	for _, u := range r.Runtime.Ulimits {
		args = append(args, "--ulimit", u)
	}

	keys := make([]string, 0, len(r.Env))
	for k := range r.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "-e", k+"="+r.Env[k])
	}

	args = append(args, r.ImageTag())
	args = append(args, command...)
	return args
}
