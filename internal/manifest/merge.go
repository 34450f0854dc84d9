package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"dario.cat/mergo"
)

// reindent pretty-prints compact JSON with two-space indentation.
func reindent(compact []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// loadJSONTree reads a JSON object file into a plain map[string]any tree,
// suitable for feeding into deepMerge.
func loadJSONTree(path string) (map[string]any, error) {
	//nolint:gosec // G304: path comes from the project directory the CLI was invoked against
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return tree, nil
}

// deepMerge merges src onto dst in place and returns dst. Objects merge
// key-by-key recursively; scalars and arrays replace wholesale; an
// explicit JSON null in src removes the corresponding key from dst.
// This is the realization of the "Deep-merge rules" in §4.1.
func deepMerge(dst, src map[string]any) (map[string]any, error) {
	applyNullDeletes(dst, src)
	if err := mergo.Merge(&dst, src, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("merge configuration layers: %w", err)
	}
	return dst, nil
}

// applyNullDeletes walks src and dst in parallel, deleting from dst any
// key whose value in src is an explicit JSON null, recursing into
// nested objects present in both trees. mergo itself treats nil as
// "no-op" rather than "delete", so this pre-pass supplies the delete
// semantics required before the library merge runs.
func applyNullDeletes(dst, src map[string]any) {
	for k, v := range src {
		if v == nil {
			delete(dst, k)
			continue
		}
		srcChild, ok := v.(map[string]any)
		if !ok {
			continue
		}
		dstChild, ok := dst[k].(map[string]any)
		if ok {
			applyNullDeletes(dstChild, srcChild)
		}
	}
}

// parseOverrideValue types a raw CLI override value as the most specific
// type that matches: boolean before number before string (§4.1 step 5).
func parseOverrideValue(raw string) any {
	switch strings.ToLower(raw) {
	case "true":
		return true
	case "false":
		return false
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return int(i)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

// setPath sets a dot-notation path within tree, creating intermediate
// objects as needed, and replacing any existing scalar encountered
// along the path.
func setPath(tree map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	cur := tree
	for i, part := range parts {
		if i == len(parts)-1 {
			cur[part] = value
			return
		}
		next, ok := cur[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[part] = next
		}
		cur = next
	}
}

