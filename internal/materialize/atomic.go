package materialize

import "github.com/cybersonic/lucli/internal/lock"

// atomicWrite writes data to path via a sibling temp file and rename,
// reusing the same write-then-rename helper every other component uses
// to persist state under a FileLock.
func atomicWrite(path string, data []byte) error {
	return lock.AtomicWriteFile(path, data, 0o640)
}
