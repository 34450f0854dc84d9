package process

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cybersonic/lucli/internal/lock"
	"github.com/cybersonic/lucli/internal/registry"
	"github.com/cybersonic/lucli/internal/runtime"
)

// writeHandleMarker persists h as the instance's `.pid` or `.container`
// marker, matching whichever field the RuntimeProvider variant filled
// in (§4.8 step 2).
func writeHandleMarker(inst *registry.Instance, h *runtime.Handle) error {
	if h.ContainerName != "" {
		return lock.AtomicWriteFile(filepath.Join(inst.Dir, registry.ContainerMarker), []byte(h.ContainerName), 0o640)
	}
	return lock.AtomicWriteFile(filepath.Join(inst.Dir, registry.PIDMarker), []byte(strconv.Itoa(h.PID)), 0o640)
}

// removeHandleMarkers deletes both marker files, ignoring whichever one
// was never written for this runtime variant.
func removeHandleMarkers(inst *registry.Instance) error {
	pidErr := os.Remove(filepath.Join(inst.Dir, registry.PIDMarker))
	containerErr := os.Remove(filepath.Join(inst.Dir, registry.ContainerMarker))
	if pidErr != nil && !os.IsNotExist(pidErr) {
		return fmt.Errorf("process: remove pid marker: %w", pidErr)
	}
	if containerErr != nil && !os.IsNotExist(containerErr) {
		return fmt.Errorf("process: remove container marker: %w", containerErr)
	}
	return nil
}

// loadHandle reconstructs the minimal Handle needed to Stop or Probe an
// instance from its markers alone, without starting anything (the same
// constraint §4.8 places on `list`/`status`). It returns a nil Handle
// when neither marker exists, meaning the instance is ABSENT.
func loadHandle(inst *registry.Instance) (*runtime.Handle, error) {
	//nolint:gosec // G304: dir is the instance's own LuCLI-owned directory
	if data, err := os.ReadFile(filepath.Join(inst.Dir, registry.PIDMarker)); err == nil {
		pid, convErr := strconv.Atoi(strings.TrimSpace(string(data)))
		if convErr != nil {
			return nil, fmt.Errorf("process: malformed pid marker for %s: %w", inst.Name, convErr)
		}
		return &runtime.Handle{PID: pid}, nil
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("process: read pid marker: %w", err)
	}

	//nolint:gosec // G304: dir is the instance's own LuCLI-owned directory
	if data, err := os.ReadFile(filepath.Join(inst.Dir, registry.ContainerMarker)); err == nil {
		return &runtime.Handle{ContainerName: strings.TrimSpace(string(data))}, nil
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("process: read container marker: %w", err)
	}

	return nil, nil
}

// Handle exposes loadHandle to callers outside the package (the CLI's
// read-only `server log`/`server monitor` commands, which need the
// container name or PID to hand to RuntimeProvider.Logs/Probe without
// starting or stopping anything themselves).
func (c *Controller) Handle(inst *registry.Instance) (*runtime.Handle, error) {
	return loadHandle(inst)
}
