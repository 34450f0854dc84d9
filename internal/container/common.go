package container

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cybersonic/lucli/internal/exec"
)

// containerParser handles runtime-specific JSON parsing for container
// inspect and list operations. Each concrete runtime supplies its own,
// since docker and podman shape their CLI JSON output differently.
type containerParser interface {
	parseInspect(data []byte) (*Container, error)
	parseList(data []byte) ([]Container, error)
}

// baseRuntime provides the CLI-shelling operations shared by the docker
// and podman backends; only argument assembly and JSON parsing differ.
type baseRuntime struct {
	exec       exec.Executor
	binaryName string
	runArgs    []string // backend-specific args inserted right after "run"
	listArgs   []string // e.g. ["ps", "-a"]
	parser     containerParser
}

// cliError formats an error from a container CLI, including stderr if available.
func cliError(operation string, result *exec.Result, err error) error {
	if result != nil {
		stderr := strings.TrimSpace(string(result.Stderr))
		if stderr != "" {
			return fmt.Errorf("%s: %s", operation, stderr)
		}
	}
	return fmt.Errorf("%s: %w", operation, err)
}

func (r *baseRuntime) Run(ctx context.Context, cfg *RunConfig) (*Container, error) {
	args := buildRunArgs(r.runArgs, cfg)

	result, err := r.exec.Run(ctx, &exec.RunOptions{
		Name: r.binaryName,
		Args: args,
	})
	if err != nil {
		if result != nil && isAlreadyExistsError(string(result.Stderr)) {
			return nil, ErrAlreadyExists
		}
		return nil, cliError("run container", result, err)
	}

	return &Container{
		ID:        strings.TrimSpace(string(result.Stdout)),
		Name:      cfg.Name,
		Image:     cfg.Image,
		Status:    StatusRunning,
		CreatedAt: time.Now(),
	}, nil
}

func (r *baseRuntime) Stop(ctx context.Context, id string) error {
	c, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if c.Status == StatusStopped {
		return nil
	}

	result, err := r.exec.Run(ctx, &exec.RunOptions{Name: r.binaryName, Args: []string{"stop", id}})
	if err != nil {
		return cliError("stop container", result, err)
	}
	return nil
}

func (r *baseRuntime) Start(ctx context.Context, id string) error {
	c, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if c.Status == StatusRunning {
		return nil
	}

	result, err := r.exec.Run(ctx, &exec.RunOptions{Name: r.binaryName, Args: []string{"start", id}})
	if err != nil {
		return cliError("start container", result, err)
	}
	return nil
}

func (r *baseRuntime) Remove(ctx context.Context, id string) error {
	result, err := r.exec.Run(ctx, &exec.RunOptions{Name: r.binaryName, Args: []string{"rm", "-f", id}})
	if err != nil {
		if result != nil && isNotFoundError(string(result.Stderr)) {
			return ErrNotFound
		}
		return cliError("remove container", result, err)
	}
	return nil
}

func (r *baseRuntime) Get(ctx context.Context, id string) (*Container, error) {
	if r.parser == nil {
		return nil, ErrNoParser
	}

	result, err := r.exec.Run(ctx, &exec.RunOptions{Name: r.binaryName, Args: []string{"inspect", id}})
	if err != nil {
		if result != nil && isNotFoundError(string(result.Stderr)) {
			return nil, ErrNotFound
		}
		return nil, cliError("inspect container", result, err)
	}

	return r.parser.parseInspect(result.Stdout)
}

func (r *baseRuntime) List(ctx context.Context, filter ListFilter) ([]Container, error) {
	if r.parser == nil {
		return nil, ErrNoParser
	}

	args := append([]string{}, r.listArgs...)
	args = append(args, "--format", "json")
	if filter.Name != "" {
		args = append(args, "--filter", "name="+filter.Name)
	}

	result, err := r.exec.Run(ctx, &exec.RunOptions{Name: r.binaryName, Args: args})
	if err != nil {
		return nil, cliError("list containers", result, err)
	}

	stdout := strings.TrimSpace(string(result.Stdout))
	if stdout == "" || stdout == "[]" {
		return []Container{}, nil
	}
	return r.parser.parseList(result.Stdout)
}

// buildRunArgs constructs the `run` CLI arguments shared by every backend.
func buildRunArgs(backendArgs []string, cfg *RunConfig) []string {
	args := []string{"run", "--detach", "--name", cfg.Name}
	args = append(args, backendArgs...)
	args = append(args, cfg.Flags...)

	for _, p := range cfg.Ports {
		args = append(args, "-p", p)
	}
	for _, m := range cfg.Mounts {
		mountSpec := fmt.Sprintf("%s:%s", m.Source, m.Target)
		if m.ReadOnly {
			mountSpec += ":ro"
		}
		args = append(args, "-v", mountSpec)
	}
	for _, e := range cfg.Env {
		args = append(args, "-e", e)
	}

	return append(args, cfg.Image)
}

// parseContainerStatus converts CLI status strings to Status constants.
func parseContainerStatus(cliStatus string) Status {
	switch strings.ToLower(cliStatus) {
	case cliStatusRunning:
		return StatusRunning
	case cliStatusStopped, cliStatusExited, cliStatusCreated:
		return StatusStopped
	default:
		return StatusUnknown
	}
}

func isAlreadyExistsError(stderr string) bool {
	return strings.Contains(stderr, "already in use") || strings.Contains(stderr, "already exists")
}

func isNotFoundError(stderr string) bool {
	normalized := strings.ToLower(stderr)
	return strings.Contains(normalized, "no such") ||
		strings.Contains(normalized, "no container") ||
		strings.Contains(normalized, "not found")
}
