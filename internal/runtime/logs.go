package runtime

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// tailFile streams path's content to w. With follow=false it copies the
// current content and returns; with follow=true it keeps polling for new
// writes until ctx is canceled, the way `lucli server log -f` tails a
// running instance's log file.
func tailFile(ctx context.Context, path string, follow bool, w io.Writer) error {
	//nolint:gosec // G304: path is built from the instance's own logs/ directory
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("runtime: open log: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("runtime: read log: %w", err)
	}
	if !follow {
		return nil
	}

	reader := bufio.NewReader(f)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := io.Copy(w, reader); err != nil {
				return fmt.Errorf("runtime: tail log: %w", err)
			}
		}
	}
}
