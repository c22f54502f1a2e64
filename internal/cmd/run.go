package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/envforge/envforge/internal/docker"
)

var runPrint bool

var runCmd = &cobra.Command{
	Use:   "run [-- command...]",
	Short: "Run the environment container",
	Long: `Run a container from the built image with the runtime settings the
recipe declares: GPU access, shared memory size, IPC namespace, mounts,
and environment variables.

Examples:
  envforge run
  envforge run -- python demo.py --weights=droid.pth
  envforge run --print`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runPrint, "print", false, "Print the docker run command instead of executing it")
}

func runRun(cmd *cobra.Command, args []string) error {
	r, err := loadRecipe()
	if err != nil {
		return err
	}

	runArgs := docker.RunArgs(r, args...)

	if runPrint {
		fmt.Printf("docker %s\n", strings.Join(runArgs, " "))
		return nil
	}

	dockerBin, err := exec.LookPath("docker")
	if err != nil {
		return fmt.Errorf("docker binary not found in PATH: %w", err)
	}

	c := exec.CommandContext(cmd.Context(), dockerBin, runArgs...)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	return c.Run()
}
