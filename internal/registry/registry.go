// Package registry implements the InstanceRegistry component: it
// resolves the target Instance for a command, enforces the
// one-running-server-per-project invariant, and enumerates known
// Instances by scanning the LuCLI home subtree rather than maintaining
// a central index (§4.4).
package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cybersonic/lucli/internal/lock"
	"github.com/cybersonic/lucli/internal/luerr"
	"github.com/cybersonic/lucli/internal/manifest"
	"github.com/cybersonic/lucli/internal/names"
)

const serversDirName = "servers"

// Marker file names written inside an Instance's directory, shared
// with RuntimeProvider (C5, which writes PIDMarker/ContainerMarker)
// and ProcessController (C8, which reads them back).
const (
	ProjectMarker     = ".project"
	PIDMarker         = ".pid"
	ContainerMarker   = ".container"
	EnvironmentMarker = ".environment"
	SandboxMarker     = ".sandbox"
	instanceLockFile  = ".lock"
)

// Instance identifies one resolved project server directory.
type Instance struct {
	Name       string
	Dir        string
	ProjectDir string
}

// LivenessProber reports whether an Instance's process or container is
// currently running. RuntimeProvider (C5) implements this; Registry
// falls back to a bare PID-signal check when none is supplied, which is
// enough for the embedded and external-container variants.
type LivenessProber interface {
	IsRunning(ctx context.Context, inst *Instance) (bool, error)
}

// Registry resolves, reserves, lists, and prunes Instances under
// LUCLI_HOME/servers/.
type Registry struct {
	homeDir        string
	prober         LivenessProber
	reserveTimeout time.Duration
}

// Option configures a Registry built by New.
type Option func(*Registry)

// WithReserveTimeout overrides the default instance-lock acquisition
// timeout used by Reserve; mainly useful in tests that expect an
// InstanceBusy contention case to fail fast.
func WithReserveTimeout(d time.Duration) Option {
	return func(r *Registry) { r.reserveTimeout = d }
}

// New returns a Registry rooted at homeDir. prober may be nil, in which
// case liveness is determined from the .pid marker alone.
func New(homeDir string, prober LivenessProber, opts ...Option) *Registry {
	r := &Registry{homeDir: homeDir, prober: prober, reserveTimeout: lock.DefaultTimeout}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) serversDir() string {
	return filepath.Join(r.homeDir, serversDirName)
}

func (r *Registry) instanceDir(name string) string {
	return filepath.Join(r.serversDir(), name)
}

// Resolve implements §4.4's resolution order and name-conflict check:
// an existing directory of the chosen name that belongs to a different
// project fails with NameConflict unless force is set.
func (r *Registry) Resolve(_ context.Context, projectDir string, manifestName, flagName string, force bool) (*Instance, error) {
	canonicalProject, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("registry: resolve project path: %w", err)
	}

	name := manifest.ResolveName(flagName, manifestName, projectDir)
	dir := r.instanceDir(name)

	existingProject, ok, err := readMarker(dir, ProjectMarker)
	if err != nil {
		return nil, err
	}

	if ok && existingProject != canonicalProject && !force {
		suggestion := suggestName(name, func(candidate string) bool {
			_, taken, _ := readMarker(r.instanceDir(candidate), ProjectMarker)
			return taken
		})
		return nil, luerr.New(luerr.NameConflict,
			luerr.WithInstance(name),
			luerr.WithRemedy(fmt.Sprintf("%q is already used by %s; pass --force or try --name %s", name, existingProject, suggestion)))
	}

	return &Instance{Name: name, Dir: dir, ProjectDir: canonicalProject}, nil
}

func suggestName(base string, taken func(string) bool) string {
	for range 20 {
		candidate := fmt.Sprintf("%s-%s", base, strings.ReplaceAll(names.Generate(), "_", "-"))
		if !taken(candidate) {
			return candidate
		}
	}
	return fmt.Sprintf("%s-%d", base, time.Now().UnixNano())
}

// Reserve acquires the instance's exclusive directory lock (an already
// running instance holds this lock for its lifetime, so a second start
// attempt times out into InstanceBusy) and, unless sandbox is set,
// enforces one running server per project by scanning for other live
// instances of the same project. The returned release func must be
// called on every exit path.
func (r *Registry) Reserve(ctx context.Context, inst *Instance, sandbox bool) (func(), error) {
	fl := lock.New(filepath.Join(inst.Dir, instanceLockFile), r.reserveTimeout)
	release, err := fl.Lock(ctx)
	if err != nil {
		return nil, luerr.New(luerr.InstanceBusy,
			luerr.WithInstance(inst.Name),
			luerr.WithCause(err),
			luerr.WithRemedy("another lucli process is already managing this instance"))
	}

	if !sandbox {
		if busyWith, err := r.otherRunningInstanceForProject(ctx, inst); err != nil {
			release()
			return nil, err
		} else if busyWith != "" {
			release()
			return nil, luerr.New(luerr.InstanceBusy,
				luerr.WithInstance(inst.Name),
				luerr.WithRemedy(fmt.Sprintf("project already has a running server: %s", busyWith)))
		}
	}

	if err := os.MkdirAll(inst.Dir, 0o750); err != nil {
		release()
		return nil, fmt.Errorf("registry: create instance directory: %w", err)
	}
	if err := lock.AtomicWriteFile(filepath.Join(inst.Dir, ProjectMarker), []byte(inst.ProjectDir), 0o640); err != nil {
		release()
		return nil, fmt.Errorf("registry: write project marker: %w", err)
	}
	if sandbox {
		if err := lock.AtomicWriteFile(filepath.Join(inst.Dir, SandboxMarker), []byte{}, 0o640); err != nil {
			release()
			return nil, fmt.Errorf("registry: write sandbox marker: %w", err)
		}
	}

	return release, nil
}

func (r *Registry) otherRunningInstanceForProject(ctx context.Context, inst *Instance) (string, error) {
	views, err := r.List(ctx, ListFilter{})
	if err != nil {
		return "", err
	}
	for _, v := range views {
		if v.Name == inst.Name {
			continue
		}
		if v.ProjectDir != inst.ProjectDir {
			continue
		}
		if v.Sandbox {
			continue
		}
		if v.Status == StatusRunning {
			return v.Name, nil
		}
	}
	return "", nil
}

// WriteEnvironmentMarker records the display-only environment tag
// alongside the instance, without affecting its directory name (§4.4
// "Identity rules").
func (r *Registry) WriteEnvironmentMarker(inst *Instance, env string) error {
	path := filepath.Join(inst.Dir, EnvironmentMarker)
	if env == "" {
		return os.Remove(path)
	}
	return lock.AtomicWriteFile(path, []byte(env), 0o640)
}

// Remove deletes an instance's directory entirely. Callers must ensure
// the instance is stopped first.
func (r *Registry) Remove(_ context.Context, name string) error {
	return os.RemoveAll(r.instanceDir(name))
}

func readMarker(dir, marker string) (string, bool, error) {
	//nolint:gosec // G304: dir/marker are built from LuCLI-owned home directory layout
	data, err := os.ReadFile(filepath.Join(dir, marker))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("registry: read %s: %w", marker, err)
	}
	return strings.TrimSpace(string(data)), true, nil
}

func markerExists(dir, marker string) bool {
	_, err := os.Stat(filepath.Join(dir, marker))
	return err == nil
}
