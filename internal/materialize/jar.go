package materialize

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cybersonic/lucli/internal/manifest"
)

// placeEngineJAR copies or symlinks the engine artifact for the
// selected version into the instance's lib/ directory, per §4.6 output
// 5 — symlink preferred, falling back to a copy when the filesystem
// forbids it, the same install-method precedence C7 uses for
// dependencies.
func (mz *Materializer) placeEngineJAR(m *manifest.Manifest, in *Input) error {
	name := fmt.Sprintf("lucee-%s.jar", m.Version)
	src := filepath.Join(in.VendorRoot, "lib", name)
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("engine jar %s not found under vendor tree: %w", name, err)
	}

	dst := filepath.Join(in.Instance.Dir, "lib", name)
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return fmt.Errorf("create lib dir: %w", err)
	}

	if _, err := os.Lstat(dst); err == nil {
		if err := os.Remove(dst); err != nil {
			return fmt.Errorf("replace existing engine jar: %w", err)
		}
	}

	if err := os.Symlink(src, dst); err == nil {
		return nil
	}
	return copyJAR(src, dst)
}

func copyJAR(src, dst string) error {
	//nolint:gosec // G304: src is a path inside LuCLI's own vendor tree
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open engine jar: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640)
	if err != nil {
		return fmt.Errorf("create engine jar copy: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy engine jar: %w", err)
	}
	return nil
}
