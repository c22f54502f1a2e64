// Package docker drives local image builds through the Docker daemon.
package docker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/docker/docker/api/types"
	"github.com/docker/docker/client"
	"github.com/jhoonb/archivex"
)

const defaultHost = "unix:///var/run/docker.sock"

// Client wraps the Docker SDK client.
type Client struct {
	cli  *client.Client
	Host string
}

// NewClient probes the given hosts (falling back to the local socket)
// and returns a client connected to the first daemon that answers.
func NewClient(ctx context.Context, hosts []string) (*Client, error) {
	if len(hosts) == 0 {
		if env := os.Getenv("DOCKER_HOST"); env != "" {
			hosts = append(hosts, env)
		}
		hosts = append(hosts, defaultHost)
	}

	for _, host := range hosts {
		cli, err := client.NewClientWithOpts(client.WithHost(host), client.WithAPIVersionNegotiation())
		if err != nil {
			log.Debug("docker client init failed", "host", host, "err", err)
			continue
		}
		if _, err := cli.Info(ctx); err != nil {
			log.Debug("docker daemon unreachable", "host", host, "err", err)
			_ = cli.Close()
			continue
		}
		log.Debug("connected to docker daemon", "host", host)
		return &Client{cli: cli, Host: host}, nil
	}

	return nil, fmt.Errorf("cannot connect to a docker daemon (tried %d host(s))", len(hosts))
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.cli.Close()
}

// BuildOptions configures an image build.
type BuildOptions struct {
	// ContextDir is tarred up and sent to the daemon as build context.
	ContextDir string

	// Dockerfile is the Dockerfile path relative to the context.
	Dockerfile string

	// Tags are applied to the resulting image.
	Tags []string

	// Pull forces a pull of the base image.
	Pull bool

	// NoCache disables layer caching.
	NoCache bool
}

// BuildImage tars the context directory, submits the build, and streams
// daemon output to stdout. Errors embedded in the stream are surfaced.
func (c *Client) BuildImage(ctx context.Context, opts BuildOptions) error {
	tarPath := filepath.Join(os.TempDir(), fmt.Sprintf("envforge-context-%d.tar", time.Now().UnixNano()))
	defer os.Remove(tarPath)

	if err := tarContext(opts.ContextDir, tarPath); err != nil {
		return fmt.Errorf("failed to tar build context: %w", err)
	}

	buildCtx, err := os.Open(tarPath)
	if err != nil {
		return fmt.Errorf("failed to open build context: %w", err)
	}
	defer buildCtx.Close()

	log.Info("building image", "tags", opts.Tags, "context", opts.ContextDir)
	resp, err := c.cli.ImageBuild(ctx, buildCtx, types.ImageBuildOptions{
		Dockerfile: opts.Dockerfile,
		Tags:       opts.Tags,
		Remove:     true,
		PullParent: opts.Pull,
		NoCache:    opts.NoCache,
	})
	if err != nil {
		return fmt.Errorf("build request failed: %w", err)
	}
	defer resp.Body.Close()

	return streamBuild(resp.Body, os.Stdout)
}

// PullImage pulls an image, showing pull progress on stderr.
func (c *Client) PullImage(ctx context.Context, image string) error {
	rc, err := c.cli.ImagePull(ctx, image, types.ImagePullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull %s: %w", image, err)
	}
	defer rc.Close()

	return streamPull(rc, image)
}

// TagImage adds a tag to an existing image.
func (c *Client) TagImage(ctx context.Context, src, dest string) error {
	return c.cli.ImageTag(ctx, src, dest)
}

// RemoveImage removes an image and prunes its children.
func (c *Client) RemoveImage(ctx context.Context, image string) error {
	_, err := c.cli.ImageRemove(ctx, image, types.ImageRemoveOptions{
		Force:         true,
		PruneChildren: true,
	})
	return err
}

// ImageExists reports whether an image is present locally.
func (c *Client) ImageExists(ctx context.Context, image string) (bool, error) {
	_, _, err := c.cli.ImageInspectWithRaw(ctx, image)
	if err != nil {
		if client.IsErrNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// tarContext writes dir's contents into a tar file at path.
func tarContext(dir, path string) error {
	tar := new(archivex.TarFile)
	if err := tar.Create(path); err != nil {
		return err
	}
	if err := tar.AddAll(dir, false); err != nil {
		_ = tar.Close()
		return err
	}
	return tar.Close()
}
