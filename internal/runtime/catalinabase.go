package runtime

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// catalinaBaseDirs are the directories every isolated CATALINA_BASE
// needs regardless of variant; conf/ and webapps/ are populated by C6
// (ConfigMaterializer), this package only ensures the tree exists.
var catalinaBaseDirs = []string{"conf", "logs", "work", "temp", "webapps"}

// buildCatalinaBase creates an isolated CATALINA_BASE under instDir,
// linking (falling back to copying) the read-only bin/ and lib/ trees
// from vendorRoot rather than mutating it. Grounded on C7's
// symlink-preferred/copy-fallback install method, since the shape of
// "attach a vendor tree into an instance without mutating the source"
// is identical here.
func buildCatalinaBase(instDir, vendorRoot string) error {
	for _, dir := range catalinaBaseDirs {
		if err := os.MkdirAll(filepath.Join(instDir, dir), 0o750); err != nil {
			return fmt.Errorf("runtime: create %s: %w", dir, err)
		}
	}

	for _, shared := range []string{"bin", "lib"} {
		src := filepath.Join(vendorRoot, shared)
		if _, err := os.Stat(src); os.IsNotExist(err) {
			continue
		}
		dst := filepath.Join(instDir, shared)
		if err := linkOrCopyTree(src, dst); err != nil {
			return fmt.Errorf("runtime: attach %s: %w", shared, err)
		}
	}

	return nil
}

// linkOrCopyTree symlinks dst to src, falling back to a recursive copy
// when symlinks aren't permitted (e.g. some container filesystems).
func linkOrCopyTree(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		return nil // already attached
	}

	if err := os.Symlink(src, dst); err == nil {
		return nil
	}

	return copyTree(src, dst)
}

func copyTree(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if info.IsDir() {
			return os.MkdirAll(target, 0o750)
		}
		return copyFile(path, target, info.Mode())
	})
}

func copyFile(src, dst string, mode os.FileMode) error {
	//nolint:gosec // G304: paths derive from a vendor tree LuCLI itself downloaded or was pointed at
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
