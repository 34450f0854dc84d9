package runtime

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybersonic/lucli/internal/luerr"
	"github.com/cybersonic/lucli/internal/manifest"
	"github.com/cybersonic/lucli/internal/registry"
)

func TestMajorVersion(t *testing.T) {
	assert.Equal(t, "6", majorVersion("6.1.1.78"))
	assert.Equal(t, "5", majorVersion("5"))
}

func TestEmbeddedProvider_Prepare_UnknownVersion(t *testing.T) {
	p := NewEmbedded(t.TempDir())
	m := &manifest.Manifest{Version: "99"}
	inst := &registry.Instance{Name: "demo", Dir: t.TempDir()}

	err := p.Prepare(context.Background(), m, inst)
	require.Error(t, err)
	assert.ErrorIs(t, err, luerr.KindOf(luerr.RuntimeIncompatible))
}

func TestBuildCatalinaBase_CreatesExpectedTree(t *testing.T) {
	vendorRoot := t.TempDir()
	instDir := t.TempDir()

	require.NoError(t, buildCatalinaBase(instDir, vendorRoot))

	for _, dir := range catalinaBaseDirs {
		info, err := os.Stat(filepath.Join(instDir, dir))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
