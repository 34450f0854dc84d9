// Package container provides an abstraction over OCI container lifecycle
// operations (run/stop/start/remove/inspect/list), shelling out to a
// container CLI rather than a registry SDK client. It backs the
// container RuntimeProvider variant.
package container

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for container operations.
var (
	ErrNotFound      = errors.New("container not found")
	ErrNotRunning    = errors.New("container not running")
	ErrAlreadyExists = errors.New("container already exists")
	ErrNoParser      = errors.New("runtime has no parser configured")
)

// Status represents the container state.
type Status string

// Status constants represent possible container states.
const (
	StatusRunning Status = "running"
	StatusStopped Status = "stopped"
	StatusUnknown Status = "unknown"
)

// CLI status strings used by container runtimes.
const (
	cliStatusRunning = "running"
	cliStatusExited  = "exited"
	cliStatusStopped = "stopped"
	cliStatusCreated = "created"
)

// Container holds container metadata.
type Container struct {
	ID        string
	Name      string
	Image     string
	Status    Status
	CreatedAt time.Time
}

// Mount defines a host-to-container volume mount.
type Mount struct {
	Source   string // Host path
	Target   string // Container path
	ReadOnly bool
}

// RunConfig configures container creation for one instance.
type RunConfig struct {
	Name   string   // Container name (required)
	Image  string   // OCI image reference (required)
	Mounts []Mount  // Volume mounts (webroot, dependencies)
	Env    []string // Environment variables (admin password, agent config)
	Ports  []string // docker/podman -p HOST:CONTAINER specs
	Flags  []string // Additional runtime-specific flags
}

// ListFilter filters container listings.
type ListFilter struct {
	Name string // Filter by name prefix (empty = all)
}

// Runtime provides container lifecycle operations for one CLI backend
// (docker or podman).
//
//go:generate go run github.com/matryer/moq@latest -pkg mocks -out mocks/runtime.go . Runtime
type Runtime interface {
	// Run creates and starts a new container, returning ErrAlreadyExists
	// if the name is taken.
	Run(ctx context.Context, cfg *RunConfig) (*Container, error)

	// Stop stops a running container gracefully. No-op if already stopped.
	Stop(ctx context.Context, id string) error

	// Start starts a stopped container. No-op if already running.
	Start(ctx context.Context, id string) error

	// Remove deletes a container. Returns ErrNotFound if it doesn't exist.
	Remove(ctx context.Context, id string) error

	// Get retrieves container information by ID or name.
	Get(ctx context.Context, id string) (*Container, error)

	// List returns all containers matching the filter.
	List(ctx context.Context, filter ListFilter) ([]Container, error)
}
