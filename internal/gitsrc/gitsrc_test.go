package gitsrc

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/envforge/envforge/internal/recipe"
)

// initUpstream creates a local repository with two commits and returns
// its path and the commit hashes.
func initUpstream(t *testing.T) (string, []plumbing.Hash) {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit() error: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatal(err)
	}

	var hashes []plumbing.Hash
	for _, content := range []string{"first\n", "second\n"} {
		if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := wt.Add("README.md"); err != nil {
			t.Fatal(err)
		}
		hash, err := wt.Commit(content, &git.CommitOptions{
			Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
		})
		if err != nil {
			t.Fatalf("Commit() error: %v", err)
		}
		hashes = append(hashes, hash)
	}
	return dir, hashes
}

func TestVendor_CommitPin(t *testing.T) {
	t.Parallel()

	upstream, hashes := initUpstream(t)
	root := t.TempDir()

	r := &recipe.Recipe{
		Name: "pinned",
		Source: &recipe.Source{
			Repo: upstream,
			Ref:  hashes[0].String(),
			Dest: "/opt/pinned",
		},
	}

	dest, err := Vendor(context.Background(), root, r)
	if err != nil {
		t.Fatalf("Vendor() error: %v", err)
	}
	if dest != filepath.Join(root, VendorDir, "pinned") {
		t.Errorf("dest = %q", dest)
	}

	data, err := os.ReadFile(filepath.Join(dest, "README.md"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "first\n" {
		t.Errorf("vendored tree at %s has content %q, want the pinned commit's %q", hashes[0], data, "first\n")
	}
}

func TestVendor_ReplacesExistingCheckout(t *testing.T) {
	t.Parallel()

	upstream, hashes := initUpstream(t)
	root := t.TempDir()

	r := &recipe.Recipe{
		Name: "pinned",
		Source: &recipe.Source{
			Repo: upstream,
			Ref:  hashes[0].String(),
			Dest: "/opt/pinned",
		},
	}

	if _, err := Vendor(context.Background(), root, r); err != nil {
		t.Fatalf("Vendor() error: %v", err)
	}

	r.Source.Ref = hashes[1].String()
	dest, err := Vendor(context.Background(), root, r)
	if err != nil {
		t.Fatalf("Vendor() error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dest, "README.md"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "second\n" {
		t.Errorf("re-vendoring left content %q, want %q", data, "second\n")
	}
}

func TestVendor_NoSource(t *testing.T) {
	t.Parallel()

	_, err := Vendor(context.Background(), t.TempDir(), &recipe.Recipe{Name: "bare"})
	if err == nil {
		t.Fatal("Vendor() should fail for a recipe without a source block")
	}
}
