// Package process implements the ProcessController component: it drives
// an Instance through the start/stop state machine on top of a
// RuntimeProvider, owning the `.pid`/`.container` markers and the
// TCP/HTTP readiness probe (§4.8).
package process

import (
	"time"

	"github.com/cybersonic/lucli/internal/registry"
	"github.com/cybersonic/lucli/internal/runtime"
)

// State is one of the seven states in §4.8's diagram.
type State string

const (
	StateAbsent             State = "ABSENT"
	StateStarting           State = "STARTING"
	StateRunning            State = "RUNNING"
	StateFailed             State = "FAILED"
	StateStopping           State = "STOPPING"
	StateOrphaned           State = "ORPHANED"
	StateProvisionedStopped State = "PROVISIONED_STOPPED"
)

const (
	defaultReadyTimeout = 60 * time.Second
	defaultHTTPTimeout  = 10 * time.Second
	defaultStopGrace    = 10 * time.Second
)

// Controller drives one RuntimeProvider variant through the Start/Stop
// protocols of §4.8, independent of which variant it wraps.
type Controller struct {
	registry *registry.Registry
	provider runtime.Provider

	readyTimeout time.Duration // primary deadline: TCP connect
	httpTimeout  time.Duration // secondary deadline: HTTP GET /
	stopGrace    time.Duration // graceful-stop wait before escalating
}

// Option configures a Controller built by New.
type Option func(*Controller)

// WithReadyTimeout overrides the primary TCP-connect deadline.
func WithReadyTimeout(d time.Duration) Option { return func(c *Controller) { c.readyTimeout = d } }

// WithHTTPTimeout overrides the secondary HTTP GET / deadline.
func WithHTTPTimeout(d time.Duration) Option { return func(c *Controller) { c.httpTimeout = d } }

// WithStopGrace overrides how long Stop waits for a graceful exit
// before escalating to forceful termination.
func WithStopGrace(d time.Duration) Option { return func(c *Controller) { c.stopGrace = d } }

// New returns a Controller that drives provider, using reg both to
// remove a sandbox instance's directory on Stop and to list sibling
// instances when a caller needs the combined view.
func New(reg *registry.Registry, provider runtime.Provider, opts ...Option) *Controller {
	c := &Controller{
		registry:     reg,
		provider:     provider,
		readyTimeout: defaultReadyTimeout,
		httpTimeout:  defaultHTTPTimeout,
		stopGrace:    defaultStopGrace,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
