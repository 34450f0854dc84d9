package materialize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybersonic/lucli/internal/manifest"
)

func TestWriteJVMOptions_Ordering(t *testing.T) {
	mz := New(t.TempDir(), nil)
	in := newTestInput(t)

	m := &manifest.Manifest{
		JVM: manifest.JVMConfig{MinMemory: "512m", MaxMemory: "2g", AdditionalArgs: []string{"-Dfoo=bar"}},
		Monitoring: manifest.MonitoringConfig{
			Enabled: true,
			JMX:     manifest.JMXConfig{Port: 9999},
		},
		Agents: map[string]manifest.AgentConfig{
			"newrelic": {Enabled: true, JVMArgs: []string{"-javaagent:/opt/newrelic.jar"}},
			"disabled": {Enabled: false, JVMArgs: []string{"-javaagent:/should/not/appear.jar"}},
		},
	}

	require.NoError(t, mz.writeJVMOptions(m, in))

	data, err := os.ReadFile(filepath.Join(in.Instance.Dir, "bin", "setenv.sh"))
	require.NoError(t, err)
	script := string(data)

	assert.Contains(t, script, "-Xms512m")
	assert.Contains(t, script, "-Xmx2g")
	assert.Contains(t, script, "-Dcom.sun.management.jmxremote.port=9999")
	assert.Contains(t, script, "-javaagent:/opt/newrelic.jar")
	assert.NotContains(t, script, "should/not/appear")
	assert.Contains(t, script, "-Dfoo=bar")
}
