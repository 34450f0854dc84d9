package process

import (
	"context"

	"github.com/cybersonic/lucli/internal/registry"
)

// State reports an Instance's current place in §4.8's diagram from its
// markers and a liveness probe alone, performing no side effects beyond
// the ORPHANED→PROVISIONED_STOPPED "cleanup" transition: a marker left
// behind by a process that died without going through Stop (a crash, a
// kill -9 from outside LuCLI) is removed so the instance reads back as
// a clean PROVISIONED_STOPPED rather than a phantom RUNNING one. This
// never starts anything, matching the constraint §4.8 places on
// `list`/`status`.
func (c *Controller) State(ctx context.Context, inst *registry.Instance) (State, error) {
	h, err := loadHandle(inst)
	if err != nil {
		return "", err
	}
	if h == nil {
		return StateAbsent, nil
	}

	running, err := c.provider.Probe(ctx, inst, h)
	if err != nil {
		return "", err
	}
	if running {
		return StateRunning, nil
	}

	// ORPHANED: a marker survives but nothing is listening. Clean it up
	// so the instance doesn't linger as a false RUNNING.
	if err := removeHandleMarkers(inst); err != nil {
		return "", err
	}
	return StateProvisionedStopped, nil
}
