package deps

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".lucee-lock.json")

	lf := &LockFile{Entries: map[string]LockEntry{
		"fw1": {Source: "git", Ref: "https://example.test/fw1.git", Version: "v1.0.0", Digest: "abc123", InstallPath: "/tmp/fw1"},
	}}
	require.NoError(t, saveLockFile(path, lf))

	loaded, err := loadLockFile(path)
	require.NoError(t, err)
	assert.Equal(t, lf.Entries, loaded.Entries)
}

func TestLoadLockFile_MissingReturnsEmpty(t *testing.T) {
	lf, err := loadLockFile(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Empty(t, lf.Entries)
}
