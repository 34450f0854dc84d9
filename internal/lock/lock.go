// Package lock provides the file-based concurrency primitives shared by
// every component that persists state to the LuCLI home directory:
// the manifest loader (atomic lucee.json writes), the secret store, the
// instance registry (per-instance marker files), and the dependency
// lock file. It lifts its locking strategy directly from the
// catalog/store.go flock pattern: a non-blocking syscall.Flock retried
// on a short poll interval up to a bounded timeout, so contention
// surfaces as a typed error instead of blocking forever.
package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// DefaultTimeout is used when a caller does not specify one.
const DefaultTimeout = 5 * time.Second

// pollInterval is how often a blocked acquisition attempt is retried.
const pollInterval = 10 * time.Millisecond

// ErrTimeout is returned when a lock could not be acquired before its
// deadline. Callers in internal/registry translate this into the
// spec's InstanceBusy error kind.
var ErrTimeout = errors.New("lock: timed out waiting to acquire")

// FileLock guards a single path with an OS-level advisory lock (flock),
// so that both goroutines within this process and separate LuCLI
// processes are serialized against the same resource.
type FileLock struct {
	path    string
	timeout time.Duration

	file *os.File
}

// New returns a FileLock for path. The lock file is created alongside
// path's parent directory if it does not already exist; it holds no
// content of its own; it exists purely to be flock'd.
func New(path string, timeout time.Duration) *FileLock {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &FileLock{path: path, timeout: timeout}
}

// Lock acquires an exclusive lock, blocking (subject to ctx and the
// configured timeout) until it is free. The returned func releases it.
func (l *FileLock) Lock(ctx context.Context) (func(), error) {
	return l.acquire(ctx, syscall.LOCK_EX)
}

// RLock acquires a shared lock, allowing concurrent readers but
// excluding any exclusive holder.
func (l *FileLock) RLock(ctx context.Context) (func(), error) {
	return l.acquire(ctx, syscall.LOCK_SH)
}

func (l *FileLock) acquire(ctx context.Context, lockType int) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o750); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	//nolint:gosec // G304: path is constructed by the caller from trusted home-directory layout
	file, err := os.OpenFile(l.path, os.O_RDWR|os.O_CREATE, 0o640)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	deadline := time.Now().Add(l.timeout)
	for {
		select {
		case <-ctx.Done():
			file.Close()
			return nil, ctx.Err()
		default:
		}

		err := syscall.Flock(int(file.Fd()), lockType|syscall.LOCK_NB)
		if err == nil {
			release := func() {
				//nolint:errcheck // unlock errors are not actionable during cleanup
				syscall.Flock(int(file.Fd()), syscall.LOCK_UN)
				file.Close()
			}
			return release, nil
		}

		if !errors.Is(err, syscall.EWOULDBLOCK) {
			file.Close()
			return nil, fmt.Errorf("acquire lock: %w", err)
		}

		if time.Now().After(deadline) {
			file.Close()
			return nil, fmt.Errorf("%s: %w", l.path, ErrTimeout)
		}

		time.Sleep(pollInterval)
	}
}

// AtomicWriteFile writes data to path by writing to a sibling temp file
// and renaming it into place, so readers never observe a partial write.
// It is the write-side counterpart used by every component that
// persists JSON/text state under a FileLock.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	defer func() {
		if tmpPath != "" {
			//nolint:errcheck // cleanup errors are not actionable
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	tmpPath = ""
	return nil
}
