package registry

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// Status is the computed run state of an Instance.
type Status string

const (
	StatusRunning Status = "running"
	StatusStopped Status = "stopped"
)

// InstanceView is the read-only projection returned by List, combining
// marker-file contents with a liveness check (§4.4 "list").
type InstanceView struct {
	Name        string
	Status      Status
	PID         int
	ProjectDir  string
	Environment string
	Sandbox     bool
}

// ListFilter narrows List to instances belonging to a specific project;
// the zero value lists everything.
type ListFilter struct {
	ProjectDir string
}

// List scans servers/ once, building a view per subdirectory. No
// central index is consulted or maintained (§4.4, §C4).
func (r *Registry) List(ctx context.Context, filter ListFilter) ([]InstanceView, error) {
	entries, err := os.ReadDir(r.serversDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("registry: scan %s: %w", r.serversDir(), err)
	}

	var views []InstanceView
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		dir := r.instanceDir(name)

		projectDir, _, err := readMarker(dir, ProjectMarker)
		if err != nil {
			return nil, err
		}
		if filter.ProjectDir != "" && projectDir != filter.ProjectDir {
			continue
		}

		env, _, err := readMarker(dir, EnvironmentMarker)
		if err != nil {
			return nil, err
		}

		inst := &Instance{Name: name, Dir: dir, ProjectDir: projectDir}
		running, pid, err := r.isRunning(ctx, inst)
		if err != nil {
			return nil, err
		}

		status := StatusStopped
		if running {
			status = StatusRunning
		}

		views = append(views, InstanceView{
			Name:        name,
			Status:      status,
			PID:         pid,
			ProjectDir:  projectDir,
			Environment: env,
			Sandbox:     markerExists(dir, SandboxMarker),
		})
	}

	return views, nil
}

// isRunning branches on which marker the instance actually has: a
// container-runtime instance writes .container, never .pid, so it
// consults the injected LivenessProber; an embedded or
// external-container instance writes .pid and gets a signal-0 check.
// Branching on the marker (rather than on whether a prober was
// supplied at all) means a single process-wide Registry still resolves
// liveness correctly for a mix of runtime types, since supplying a
// prober for the container variant must not short-circuit the PID
// check for every other instance it lists.
func (r *Registry) isRunning(ctx context.Context, inst *Instance) (bool, int, error) {
	if markerExists(inst.Dir, ContainerMarker) {
		if r.prober == nil {
			return false, 0, nil
		}
		running, err := r.prober.IsRunning(ctx, inst)
		if err != nil {
			return false, 0, fmt.Errorf("registry: probe %s: %w", inst.Name, err)
		}
		return running, 0, nil
	}

	pidStr, ok, err := readMarker(inst.Dir, PIDMarker)
	if err != nil {
		return false, 0, err
	}
	if !ok {
		return false, 0, nil
	}

	pid, err := strconv.Atoi(strings.TrimSpace(pidStr))
	if err != nil {
		return false, 0, nil
	}

	return processAlive(pid), pid, nil
}

// processAlive sends the null signal, which performs error checking
// without sending an actual signal: ESRCH means the process is gone,
// EPERM means it exists but is owned by someone else.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := syscall.Kill(pid, 0)
	return err == nil || err == syscall.EPERM
}

// PruneSelection narrows which stopped instances Prune removes.
type PruneSelection struct {
	ProjectDir string // prune only this project's stopped instances
	Name       string // prune only this exact instance
	All        bool   // prune every stopped instance
}

// Prune removes stopped instance directories matching selection,
// returning the names actually removed. Running instances are always
// left alone regardless of selection.
func (r *Registry) Prune(ctx context.Context, selection PruneSelection) ([]string, error) {
	views, err := r.List(ctx, ListFilter{})
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, v := range views {
		if v.Status == StatusRunning {
			continue
		}
		switch {
		case selection.Name != "":
			if v.Name != selection.Name {
				continue
			}
		case selection.ProjectDir != "":
			if v.ProjectDir != selection.ProjectDir {
				continue
			}
		case selection.All:
			// matches everything stopped
		default:
			continue
		}

		if err := r.Remove(ctx, v.Name); err != nil {
			return removed, fmt.Errorf("registry: prune %s: %w", v.Name, err)
		}
		removed = append(removed, v.Name)
	}

	return removed, nil
}
