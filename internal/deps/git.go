package deps

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/cybersonic/lucli/internal/manifest"
)

// fetchGit shallow-clones dep.Ref at dep.Version (a branch, tag, or
// commit) into dir, returning the path to serve as the dependency's
// root — dir itself, or dir/dep.Subpath when the manifest names a
// subdirectory of the repository (a single CFML library living
// alongside unrelated framework code).
func fetchGit(ctx context.Context, dep manifest.Dependency, dir string) (string, error) {
	if err := cloneAtRef(ctx, dep.Ref, dep.Version, dir); err != nil {
		return "", fmt.Errorf("clone %s: %w", dep.Ref, err)
	}

	if dep.Subpath == "" {
		return dir, nil
	}
	return filepath.Join(dir, dep.Subpath), nil
}

// cloneAtRef tries dep.Version as a tag, then a branch, then falls back
// to a full (non-shallow) clone followed by a checkout of version as a
// commit hash — a commit SHA is only reachable that last way once
// history has been fetched.
func cloneAtRef(ctx context.Context, url, version, dir string) error {
	attempt := func(ref plumbing.ReferenceName) error {
		if err := resetDir(dir); err != nil {
			return err
		}
		_, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
			URL: url, Depth: 1, SingleBranch: true, ReferenceName: ref,
		})
		return err
	}

	if version == "" {
		return attempt("")
	}

	if err := attempt(plumbing.NewTagReferenceName(version)); err == nil {
		return nil
	}
	if err := attempt(plumbing.NewBranchReferenceName(version)); err == nil {
		return nil
	}

	if err := resetDir(dir); err != nil {
		return err
	}
	repo, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{URL: url})
	if err != nil {
		return err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return err
	}
	return wt.Checkout(&git.CheckoutOptions{Hash: plumbing.NewHash(version)})
}

// resetDir clears dir between clone attempts: go-git refuses to clone
// into a non-empty directory, and a failed attempt can still leave a
// partial .git behind.
func resetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o750)
}
