package deps

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// digestPath computes a deterministic content digest over path: the
// file's own bytes if it is a regular file (a placed JAR), or a
// sorted hash-of-hashes over every regular file beneath it if it is a
// directory (a cloned/extracted tree) — stable across re-runs and
// sensitive to any content change, same as §4.7's "content digests".
func digestPath(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}

	h := sha256.New()
	if !info.IsDir() {
		if err := hashFile(h, path); err != nil {
			return "", err
		}
		return hex.EncodeToString(h.Sum(nil)), nil
	}

	var files []string
	err = filepath.Walk(path, func(p string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !fi.IsDir() {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	sort.Strings(files)

	for _, f := range files {
		rel, err := filepath.Rel(path, f)
		if err != nil {
			return "", err
		}
		io.WriteString(h, rel) //nolint:errcheck // hash.Hash.Write never errors
		if err := hashFile(h, f); err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func hashFile(h io.Writer, path string) error {
	//nolint:gosec // G304: path is inside a dependency install directory this package manages
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(h, f)
	return err
}
