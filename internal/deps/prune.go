package deps

import "os"

// pruneStale removes install paths present in oldLock but absent from
// newLock — dependencies removed from the manifest, or whose
// installPath changed, per §4.7's pruneOnInstall.
func pruneStale(oldLock, newLock *LockFile) {
	keep := map[string]bool{}
	for _, entry := range newLock.Entries {
		keep[entry.InstallPath] = true
	}
	for _, entry := range oldLock.Entries {
		if entry.InstallPath == "" || keep[entry.InstallPath] {
			continue
		}
		os.RemoveAll(entry.InstallPath) //nolint:errcheck // best-effort prune; a leftover stale path is not fatal
	}
}
