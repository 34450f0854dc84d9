package deps

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cybersonic/lucli/internal/manifest"
)

// ensure materializes one dependency into dst, skipping the fetch
// entirely when the lock already pins the same ref/version and dst is
// present — "a re-run that matches the lock is a no-op" (§4.7). A
// fetch always lands in a sibling temp directory first and is only
// moved into dst once a digest has been computed (and, under
// verifyIntegrity, found to match the lock's digest for the same
// ref/version), so a failure partway through never leaves dst in a
// partial state.
func (r *Resolver) ensure(ctx context.Context, name string, dep manifest.Dependency, dst string, prev LockEntry) (LockEntry, error) {
	if prev.Source == dep.Source && prev.Ref == dep.Ref && prev.Version == dep.Version {
		if _, err := os.Stat(dst); err == nil {
			return prev, nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return LockEntry{}, fmt.Errorf("create install parent: %w", err)
	}

	tmp, err := os.MkdirTemp(filepath.Dir(dst), filepath.Base(dst)+".*.tmp")
	if err != nil {
		return LockEntry{}, fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(tmp) //nolint:errcheck // best-effort cleanup; rename below empties it on success

	var fetchedPath string
	switch dep.Source {
	case "git":
		fetchedPath, err = fetchGit(ctx, dep, tmp)
	case "http":
		fetchedPath, err = fetchHTTP(ctx, dep.Ref, tmp)
	case "file":
		fetchedPath, err = fetchFile(dep.Ref, tmp, r.settings.InstallMethod)
	case "maven":
		fetchedPath, err = fetchMaven(ctx, dep, tmp)
	default:
		return LockEntry{}, fmt.Errorf("unsupported dependency source %q", dep.Source)
	}
	if err != nil {
		return LockEntry{}, fmt.Errorf("fetch %s dependency %q: %w", dep.Source, name, err)
	}

	digest, err := digestPath(fetchedPath)
	if err != nil {
		return LockEntry{}, fmt.Errorf("digest %q: %w", name, err)
	}

	if r.settings.VerifyIntegrity && prev.Digest != "" && prev.Ref == dep.Ref && prev.Version == dep.Version && digest != prev.Digest {
		// Same pinned ref, different content: leave dst as it is and
		// hand the entry back so Resolve reports the integrity failure.
		return LockEntry{Source: dep.Source, Ref: dep.Ref, Version: dep.Version, Digest: digest, InstallPath: dst}, nil
	}

	if err := os.RemoveAll(dst); err != nil {
		return LockEntry{}, fmt.Errorf("clear previous install: %w", err)
	}
	if err := os.Rename(fetchedPath, dst); err != nil {
		return LockEntry{}, fmt.Errorf("move into place: %w", err)
	}

	return LockEntry{
		Source:      dep.Source,
		Ref:         dep.Ref,
		Version:     dep.Version,
		Digest:      digest,
		InstallPath: dst,
	}, nil
}
