package materialize

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cybersonic/lucli/internal/flags"
	"github.com/cybersonic/lucli/internal/manifest"
)

// writeJVMOptions renders the ordered JVM argument list into the
// instance's bin/setenv.sh, per §4.6 output 6: memory flags, JMX system
// properties when monitoring is enabled, each active agent's args, then
// jvm.additionalArgs.
func (mz *Materializer) writeJVMOptions(m *manifest.Manifest, in *Input) error {
	var args []string

	if m.JVM.MinMemory != "" {
		args = append(args, "-Xms"+m.JVM.MinMemory)
	}
	if m.JVM.MaxMemory != "" {
		args = append(args, "-Xmx"+m.JVM.MaxMemory)
	}

	if m.Monitoring.Enabled {
		args = append(args, jmxSystemProperties(m.Monitoring.JMX.Port)...)
	}

	for _, name := range sortedAgentNames(m.Agents) {
		agent := m.Agents[name]
		if agent.Enabled {
			args = append(args, agent.JVMArgs...)
		}
	}

	args = append(args, m.JVM.AdditionalArgs...)

	script := fmt.Sprintf("#!/bin/sh\n# generated by LuCLI ConfigMaterializer — do not edit by hand\nJAVA_OPTS=\"%s\"\nexport JAVA_OPTS\n", strings.Join(args, " "))

	return atomicWrite(filepath.Join(in.Instance.Dir, "bin", "setenv.sh"), []byte(script))
}

// jmxSystemProperties builds the JMX remote system properties via
// internal/flags's key-value-to-CLI-args machinery, re-prefixed from
// "--key=value" to "-Dkey=value" since JVM system properties use a
// single dash.
func jmxSystemProperties(port int) []string {
	f := flags.Flags{
		"com.sun.management.jmxremote":             true,
		"com.sun.management.jmxremote.port":         fmt.Sprintf("%d", port),
		"com.sun.management.jmxremote.authenticate": "false",
		"com.sun.management.jmxremote.ssl":          "false",
		"com.sun.management.jmxremote.local.only":   "false",
	}
	out := make([]string, 0, len(f))
	for _, a := range flags.ToArgs(f) {
		out = append(out, "-D"+strings.TrimPrefix(a, "--"))
	}
	return out
}

func sortedAgentNames(agents map[string]manifest.AgentConfig) []string {
	names := make([]string, 0, len(agents))
	for name := range agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
