package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cybersonic/lucli/internal/manifest"
)

func TestSplitOverride(t *testing.T) {
	t.Run("splits on first equals", func(t *testing.T) {
		key, value, ok := splitOverride("jvm.maxMemory=1024m")
		assert.True(t, ok)
		assert.Equal(t, "jvm.maxMemory", key)
		assert.Equal(t, "1024m", value)
	})

	t.Run("value may contain equals", func(t *testing.T) {
		key, value, ok := splitOverride("admin.password=a=b")
		assert.True(t, ok)
		assert.Equal(t, "admin.password", key)
		assert.Equal(t, "a=b", value)
	})

	t.Run("missing equals is invalid", func(t *testing.T) {
		_, _, ok := splitOverride("nodelimiter")
		assert.False(t, ok)
	})
}

func TestWriteBackOverrides(t *testing.T) {
	t.Run("fresh project prepends a synthetic name override", func(t *testing.T) {
		rp := &resolvedProject{
			manifest:  &manifest.Manifest{Name: "demo"},
			original:  nil,
			overrides: nil,
		}
		overrides := writeBackOverrides(rp)
		assert.Equal(t, []manifest.Override{{Key: "name", Value: "demo"}}, overrides)
	})

	t.Run("existing project only writes back explicit overrides", func(t *testing.T) {
		rp := &resolvedProject{
			manifest:  &manifest.Manifest{Name: "demo"},
			original:  manifest.NewOrderedMap(),
			overrides: []manifest.Override{{Key: "port", Value: "9090"}},
		}
		overrides := writeBackOverrides(rp)
		assert.Equal(t, []manifest.Override{{Key: "port", Value: "9090"}}, overrides)
	})
}
