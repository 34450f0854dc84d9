package envsubst

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DotEnvFileName is the optional per-project environment file consulted
// ahead of the process environment during resolution (§4.2).
const DotEnvFileName = ".env"

// loadDotEnv parses a KEY=VALUE file, tolerating blank lines and
// `#`-prefixed comments, with optional single or double quoting around
// the value. No general-purpose .env parser appears anywhere in the
// retrieval pack, so this ~40-line reader is the one deliberately
// stdlib-only piece of the package (recorded in DESIGN.md).
func loadDotEnv(projectDir string) (map[string]string, error) {
	path := filepath.Join(projectDir, DotEnvFileName)
	f, err := os.Open(path) //nolint:gosec // G304: path is built from the project directory the CLI targets
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		key, value, ok := strings.Cut(text, "=")
		if !ok {
			return nil, fmt.Errorf("%s:%d: expected KEY=VALUE, got %q", path, line, text)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		values[key] = unquote(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return values, nil
}

// unquote strips a single layer of matching single or double quotes.
func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	first, last := s[0], s[len(s)-1]
	if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}
