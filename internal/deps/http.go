package deps

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-getter"
	"github.com/hashicorp/go-retryablehttp"
)

// fetchHTTP downloads and extracts src into dir via go-getter's HTTP
// getter, archive format auto-detected from the URL, transported over
// go-retryablehttp's bounded exponential backoff client — the same
// combination RuntimeProvider's embedded variant uses to fetch vendor
// distributions.
func fetchHTTP(ctx context.Context, src, dir string) (string, error) {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.Logger = nil

	httpGetter := &getter.HttpGetter{Client: retryClient.StandardClient()}

	client := &getter.Client{
		Ctx:     ctx,
		Src:     src,
		Dst:     dir,
		Pwd:     dir,
		Mode:    getter.ClientModeAny,
		Getters: map[string]getter.Getter{"http": httpGetter, "https": httpGetter},
	}
	if err := client.Get(); err != nil {
		return "", fmt.Errorf("download %s: %w", src, err)
	}
	return dir, nil
}

// fetchFile materializes a local-path dependency into dir: symlink
// preferred, copy fallback, per §4.7's install-method precedence
// (the same one ConfigMaterializer's engine-JAR placement uses).
func fetchFile(src, dir, installMethod string) (string, error) {
	info, err := os.Stat(src)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", src, err)
	}

	// dir was created empty by the caller purely to stage the fetch;
	// replace it with the link/copy target itself.
	if err := os.Remove(dir); err != nil {
		return "", err
	}

	if installMethod != "copy" {
		if err := os.Symlink(src, dir); err == nil {
			return dir, nil
		}
	}

	if info.IsDir() {
		if err := copyTree(src, dir); err != nil {
			return "", err
		}
		return dir, nil
	}
	if err := copyFile(src, dir); err != nil {
		return "", err
	}
	return dir, nil
}

func copyTree(src, dst string) error {
	return filepath.Walk(src, func(p string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if fi.IsDir() {
			return os.MkdirAll(target, 0o750)
		}
		return copyFile(p, target)
	})
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return err
	}
	//nolint:gosec // G304: src is either a manifest-declared local path or a go-getter staging file
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
