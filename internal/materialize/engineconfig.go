package materialize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"dario.cat/mergo"

	"github.com/cybersonic/lucli/internal/manifest"
)

// writeEngineConfig builds the engine's conf/lucee-server.json per §4.6
// output 4: start from configurationFile if set, deep-merge the
// manifest's configuration block over it, then inject one virtual-path
// mapping per installed dependency plus the fixed /modules and /builtin
// mappings rooted in the user home — the same dario.cat/mergo
// deep-merge C1 uses for manifest layering.
func (mz *Materializer) writeEngineConfig(m *manifest.Manifest, in *Input) error {
	base := map[string]any{}
	if m.ConfigurationFile != "" {
		tree, err := loadJSONTree(m.ConfigurationFile)
		if err != nil {
			return fmt.Errorf("load configurationFile: %w", err)
		}
		base = tree
	}

	if err := mergo.Merge(&base, m.Configuration, mergo.WithOverride); err != nil {
		return fmt.Errorf("merge configuration block: %w", err)
	}

	mappings := map[string]string{
		"/modules": filepath.Join(mz.homeDir(), "modules"),
		"/builtin": filepath.Join(mz.homeDir(), "builtin"),
	}
	for _, dep := range in.Mappings {
		if dep.VirtualPath == "" {
			continue
		}
		mappings[dep.VirtualPath] = dep.PhysicalPath
	}
	base["mappings"] = mergeMappings(base["mappings"], mappings)

	out, err := json.MarshalIndent(base, "", "  ")
	if err != nil {
		return fmt.Errorf("render engine configuration: %w", err)
	}
	out = append(out, '\n')

	return atomicWrite(filepath.Join(in.Instance.Dir, "conf", "lucee-server.json"), out)
}

// mergeMappings overlays computed on top of whatever mapping object the
// configuration block already declared, computed winning on conflict
// since C7-installed dependencies must always be reachable.
func mergeMappings(existing any, computed map[string]string) map[string]any {
	merged := map[string]any{}
	if e, ok := existing.(map[string]any); ok {
		for k, v := range e {
			merged[k] = v
		}
	}
	for k, v := range computed {
		merged[k] = v
	}
	return merged
}

func loadJSONTree(path string) (map[string]any, error) {
	//nolint:gosec // G304: path comes from the project manifest the CLI was invoked against
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var tree map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return tree, nil
}
