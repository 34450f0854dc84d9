package deps

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigestPath_FileIsStable(t *testing.T) {
	f := filepath.Join(t.TempDir(), "lib.jar")
	require.NoError(t, os.WriteFile(f, []byte("jar-bytes"), 0o640))

	d1, err := digestPath(f)
	require.NoError(t, err)
	d2, err := digestPath(f)
	require.NoError(t, err)
	assert.Equal(t, d1, d2)
	assert.NotEmpty(t, d1)
}

func TestDigestPath_DirectoryChangesWithContent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("one"), 0o640))

	before, err := digestPath(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("two"), 0o640))
	after, err := digestPath(dir)
	require.NoError(t, err)

	assert.NotEqual(t, before, after)
}
