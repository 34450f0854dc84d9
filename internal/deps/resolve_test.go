package deps

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybersonic/lucli/internal/manifest"
)

func TestFetchFile_Symlinks(t *testing.T) {
	src := filepath.Join(t.TempDir(), "lib.jar")
	require.NoError(t, os.WriteFile(src, []byte("jar"), 0o640))

	dst := filepath.Join(t.TempDir(), "staged")
	require.NoError(t, os.MkdirAll(dst, 0o750))

	got, err := fetchFile(src, dst, "symlink")
	require.NoError(t, err)
	info, err := os.Lstat(got)
	require.NoError(t, err)
	assert.True(t, info.Mode()&os.ModeSymlink != 0)
}

func TestFetchFile_CopyFallback(t *testing.T) {
	src := filepath.Join(t.TempDir(), "lib.jar")
	require.NoError(t, os.WriteFile(src, []byte("jar-bytes"), 0o640))

	dst := filepath.Join(t.TempDir(), "staged")
	require.NoError(t, os.MkdirAll(dst, 0o750))

	got, err := fetchFile(src, dst, "copy")
	require.NoError(t, err)
	data, err := os.ReadFile(got)
	require.NoError(t, err)
	assert.Equal(t, "jar-bytes", string(data))
}

func TestResolve_FileDependencyAndLockReuse(t *testing.T) {
	srcDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "fw1.cfc"), []byte("component{}"), 0o640))

	projectDir := t.TempDir()
	r := New(projectDir, manifest.DependencySettings{InstallMethod: "copy", VerifyIntegrity: true})

	deps := map[string]manifest.Dependency{
		"fw1": {Kind: "cfml", Source: "file", Ref: srcDir, Version: "1.0.0"},
	}

	mappings, err := r.Resolve(context.Background(), deps, nil)
	require.NoError(t, err)
	require.Len(t, mappings, 1)
	assert.Equal(t, "/fw1/", mappings[0].VirtualPath)
	assert.Equal(t, filepath.Join(projectDir, "dependencies", "fw1"), mappings[0].PhysicalPath)

	data, err := os.ReadFile(filepath.Join(mappings[0].PhysicalPath, "fw1.cfc"))
	require.NoError(t, err)
	assert.Equal(t, "component{}", string(data))

	lf, err := loadLockFile(r.lockPath())
	require.NoError(t, err)
	require.Contains(t, lf.Entries, "fw1")
	firstDigest := lf.Entries["fw1"].Digest

	// Re-run with the same ref/version: no-op, lock unchanged.
	mappings2, err := r.Resolve(context.Background(), deps, nil)
	require.NoError(t, err)
	require.Len(t, mappings2, 1)

	lf2, err := loadLockFile(r.lockPath())
	require.NoError(t, err)
	assert.Equal(t, firstDigest, lf2.Entries["fw1"].Digest)
}

func TestResolve_ExplicitMappingOverridesDefault(t *testing.T) {
	srcDir := t.TempDir()
	projectDir := t.TempDir()
	r := New(projectDir, manifest.DependencySettings{})

	deps := map[string]manifest.Dependency{
		"fw1": {Kind: "cfml", Source: "file", Ref: srcDir, Mapping: "/framework"},
	}

	mappings, err := r.Resolve(context.Background(), deps, nil)
	require.NoError(t, err)
	require.Len(t, mappings, 1)
	assert.Equal(t, "/framework/", mappings[0].VirtualPath)
}

func TestResolve_MalformedDependencyFailsBeforeSideEffect(t *testing.T) {
	projectDir := t.TempDir()
	r := New(projectDir, manifest.DependencySettings{})

	deps := map[string]manifest.Dependency{
		"bad": {Kind: "cfml", Source: "ftp", Ref: "whatever"},
	}

	_, err := r.Resolve(context.Background(), deps, nil)
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(projectDir, "dependencies"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestPruneStale_RemovesPathsNotInNewLock(t *testing.T) {
	stale := filepath.Join(t.TempDir(), "stale-dep")
	require.NoError(t, os.MkdirAll(stale, 0o750))

	old := &LockFile{Entries: map[string]LockEntry{"gone": {InstallPath: stale}}}
	fresh := &LockFile{Entries: map[string]LockEntry{}}

	pruneStale(old, fresh)

	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
}
