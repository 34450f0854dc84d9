package deps

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToMaterializeMappings_SkipsEmptyVirtualPath(t *testing.T) {
	out := ToMaterializeMappings([]Mapping{
		{Name: "fw1", VirtualPath: "/framework/", PhysicalPath: "/proj/dependencies/fw1"},
		{Name: "somejar", VirtualPath: "", PhysicalPath: "/proj/dependencies/somejar"},
	})

	require := assert.New(t)
	require.Len(out, 1)
	require.Equal("/framework/", out[0].VirtualPath)
	require.Equal("/proj/dependencies/fw1", out[0].PhysicalPath)
}
