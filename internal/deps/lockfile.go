package deps

import (
	"encoding/json"
	"os"

	"github.com/cybersonic/lucli/internal/lock"
)

// LockEntry captures one dependency's resolved state: the ref it was
// fetched at, the content digest of what landed on disk, and where.
type LockEntry struct {
	Source      string `json:"source"`
	Ref         string `json:"ref"`
	Version     string `json:"version"`
	Digest      string `json:"digest"`
	InstallPath string `json:"installPath"`
}

// LockFile is the on-disk shape of <project>/.lucee-lock.json.
type LockFile struct {
	Entries map[string]LockEntry `json:"entries"`
}

func loadLockFile(path string) (*LockFile, error) {
	//nolint:gosec // G304: path is derived from the project directory the CLI was invoked against
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &LockFile{Entries: map[string]LockEntry{}}, nil
	}
	if err != nil {
		return nil, err
	}
	var lf LockFile
	if err := json.Unmarshal(data, &lf); err != nil {
		return nil, err
	}
	if lf.Entries == nil {
		lf.Entries = map[string]LockEntry{}
	}
	return &lf, nil
}

func saveLockFile(path string, lf *LockFile) error {
	out, err := json.MarshalIndent(lf, "", "  ")
	if err != nil {
		return err
	}
	out = append(out, '\n')
	return lock.AtomicWriteFile(path, out, 0o640)
}
