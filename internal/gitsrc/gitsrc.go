// Package gitsrc vendors the upstream research repository a recipe
// points at, so builds can COPY a pinned tree instead of cloning over
// the network inside the image build.
package gitsrc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/envforge/envforge/internal/recipe"
)

// VendorDir is the directory vendored sources are cloned into,
// relative to the workspace root.
const VendorDir = "third_party"

// Dest returns the vendored checkout path for a recipe.
func Dest(root string, r *recipe.Recipe) string {
	return filepath.Join(root, VendorDir, r.Name)
}

// Vendor clones the recipe's source repository at its pinned ref into
// third_party/<name>. An existing checkout is removed first so the
// tree always matches the pin exactly.
func Vendor(ctx context.Context, root string, r *recipe.Recipe) (string, error) {
	src := r.Source
	if src == nil {
		return "", fmt.Errorf("recipe %s has no source block", r.Name)
	}

	dest := Dest(root, r)
	if err := os.RemoveAll(dest); err != nil {
		return "", fmt.Errorf("failed to clear %s: %w", dest, err)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", err
	}

	opts := &git.CloneOptions{
		URL:      src.Repo,
		Progress: os.Stderr,
	}

	log.Info("vendoring source", "repo", src.Repo, "ref", src.Ref, "dest", dest)

	if recipe.IsCommit(src.Ref) {
		// full clone, then detach at the pinned commit
		repo, err := git.PlainCloneContext(ctx, dest, false, opts)
		if err != nil {
			return "", fmt.Errorf("failed to clone %s: %w", src.Repo, err)
		}
		wt, err := repo.Worktree()
		if err != nil {
			return "", err
		}
		if err := wt.Checkout(&git.CheckoutOptions{Hash: plumbing.NewHash(src.Ref)}); err != nil {
			return "", fmt.Errorf("failed to check out %s: %w", src.Ref, err)
		}
		// checkout moves only the superproject; submodules must be
		// updated to the pointers recorded at the pinned commit
		if src.Submodules {
			subs, err := wt.Submodules()
			if err != nil {
				return "", err
			}
			if err := subs.Update(&git.SubmoduleUpdateOptions{
				Init:              true,
				RecurseSubmodules: git.DefaultSubmoduleRecursionDepth,
			}); err != nil {
				return "", fmt.Errorf("failed to update submodules at %s: %w", src.Ref, err)
			}
		}
		return dest, nil
	}

	// named refs clone shallow; try branch first, then tag
	if src.Submodules {
		opts.RecurseSubmodules = git.DefaultSubmoduleRecursionDepth
	}
	opts.Depth = 1
	opts.SingleBranch = true
	opts.ReferenceName = plumbing.NewBranchReferenceName(src.Ref)
	if _, err := git.PlainCloneContext(ctx, dest, false, opts); err != nil {
		if err := os.RemoveAll(dest); err != nil {
			return "", err
		}
		opts.ReferenceName = plumbing.NewTagReferenceName(src.Ref)
		if _, err := git.PlainCloneContext(ctx, dest, false, opts); err != nil {
			return "", fmt.Errorf("failed to clone %s at %s: %w", src.Repo, src.Ref, err)
		}
	}
	return dest, nil
}
