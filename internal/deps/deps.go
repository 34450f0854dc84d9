// Package deps implements the DependencyResolver component: for every
// dependency a manifest declares, it ensures an on-disk materialization
// exists and is valid, then returns the virtual-path mappings
// ConfigMaterializer injects into the engine configuration.
package deps

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cybersonic/lucli/internal/luerr"
	"github.com/cybersonic/lucli/internal/manifest"
	"github.com/cybersonic/lucli/internal/materialize"
)

// Mapping is one resolved dependency ready for C6 to consume.
type Mapping struct {
	Name         string
	VirtualPath  string
	PhysicalPath string
}

// ToMaterializeMappings converts a resolved set into the shape
// ConfigMaterializer's Input expects.
func ToMaterializeMappings(mappings []Mapping) []materialize.DependencyMapping {
	out := make([]materialize.DependencyMapping, 0, len(mappings))
	for _, m := range mappings {
		if m.VirtualPath == "" {
			continue
		}
		out = append(out, materialize.DependencyMapping{VirtualPath: m.VirtualPath, PhysicalPath: m.PhysicalPath})
	}
	return out
}

// Resolver ensures declared dependencies are present under a project's
// dependencies/ tree, backed by a lock file that pins resolved refs and
// content digests so a repeat run is a no-op.
type Resolver struct {
	projectDir string
	settings   manifest.DependencySettings
}

// New returns a Resolver rooted at projectDir (the directory containing
// the project's lucee.json), governed by settings.
func New(projectDir string, settings manifest.DependencySettings) *Resolver {
	if settings.InstallLocation == "" {
		settings.InstallLocation = "dependencies"
	}
	if settings.InstallMethod == "" {
		settings.InstallMethod = "symlink"
	}
	return &Resolver{projectDir: projectDir, settings: settings}
}

func (r *Resolver) lockPath() string {
	return filepath.Join(r.projectDir, ".lucee-lock.json")
}

// installRoot returns the directory dependencies are materialized into.
func (r *Resolver) installRoot() string {
	if filepath.IsAbs(r.settings.InstallLocation) {
		return r.settings.InstallLocation
	}
	return filepath.Join(r.projectDir, r.settings.InstallLocation)
}

func (r *Resolver) installDir(name string, dep manifest.Dependency) string {
	if dep.InstallPath != "" {
		if filepath.IsAbs(dep.InstallPath) {
			return dep.InstallPath
		}
		return filepath.Join(r.projectDir, dep.InstallPath)
	}
	return filepath.Join(r.installRoot(), name)
}

// Resolve ensures every declared dependency (plus dev dependencies, when
// settings.InstallDevDependencies) is materialized and valid, updates
// the lock file, prunes stale installs when settings.PruneOnInstall,
// and returns the resulting virtual mappings.
func (r *Resolver) Resolve(ctx context.Context, deps, devDeps map[string]manifest.Dependency) ([]Mapping, error) {
	all := map[string]manifest.Dependency{}
	for name, d := range deps {
		all[name] = d
	}
	if r.settings.InstallDevDependencies {
		for name, d := range devDeps {
			all[name] = d
		}
	}

	oldLock, err := loadLockFile(r.lockPath())
	if err != nil {
		return nil, fmt.Errorf("load dependency lock: %w", err)
	}

	newLock := &LockFile{Entries: map[string]LockEntry{}}
	mappings := make([]Mapping, 0, len(all))

	for _, name := range sortedNames(all) {
		dep := all[name]
		if err := validateDependency(name, dep); err != nil {
			return nil, luerr.New(luerr.ManifestInvalid, luerr.WithKeyPath("dependencies."+name), luerr.WithCause(err))
		}

		dst := r.installDir(name, dep)
		prev := oldLock.Entries[name]

		entry, err := r.ensure(ctx, name, dep, dst, prev)
		if err != nil {
			return nil, luerr.New(luerr.DependencyFetchFailed,
				luerr.WithKeyPath("dependencies."+name), luerr.WithCause(err),
				luerr.WithRemedy("check network connectivity, source coordinates, and retry"))
		}

		sameRef := prev.Digest != "" && prev.Ref == entry.Ref && prev.Version == entry.Version
		if r.settings.VerifyIntegrity && sameRef && entry.Digest != prev.Digest {
			// Same pinned ref, different content: the upstream source
			// mutated out from under a lock that should have been stable.
			return nil, luerr.New(luerr.DependencyIntegrityFailed,
				luerr.WithKeyPath("dependencies."+name),
				luerr.WithRemedy("the upstream source changed; bump the pinned ref or accept the new lock"))
		}

		newLock.Entries[name] = entry
		mappings = append(mappings, Mapping{
			Name:         name,
			VirtualPath:  virtualPath(name, dep),
			PhysicalPath: dst,
		})
	}

	if r.settings.PruneOnInstall {
		pruneStale(oldLock, newLock)
	}

	if err := saveLockFile(r.lockPath(), newLock); err != nil {
		return nil, fmt.Errorf("write dependency lock: %w", err)
	}

	return mappings, nil
}

func validateDependency(name string, dep manifest.Dependency) error {
	switch dep.Source {
	case "git", "http", "file", "maven":
	default:
		return fmt.Errorf("dependency %q: unknown source %q", name, dep.Source)
	}
	if dep.Ref == "" {
		return fmt.Errorf("dependency %q: ref is required", name)
	}
	return nil
}

// virtualPath computes the engine mapping path for a dependency: an
// explicit mapping is used with a trailing slash added (§8.4's
// "/framework" → "/framework/"); without one, cfml/extension
// dependencies mount at /<name>/ and other kinds get no mapping.
func virtualPath(name string, dep manifest.Dependency) string {
	if dep.Mapping != "" {
		if !strings.HasSuffix(dep.Mapping, "/") {
			return dep.Mapping + "/"
		}
		return dep.Mapping
	}
	switch dep.Kind {
	case "cfml", "extension":
		return "/" + name + "/"
	default:
		return ""
	}
}

func sortedNames(m map[string]manifest.Dependency) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
