package process

import (
	"context"
	"fmt"
	"time"

	"github.com/cybersonic/lucli/internal/registry"
	"github.com/cybersonic/lucli/internal/runtime"
)

// Stop drives a RUNNING Instance through STOPPING→PROVISIONED_STOPPED
// (§4.8): it requests a graceful stop, waits up to stopGrace for the
// runtime to exit, then escalates to a forceful stop if it hasn't.
// The marker is removed in either case. A sandbox Instance additionally
// has its directory deleted, per §4.8's "Stop protocol".
//
// Calling Stop on an already-ABSENT Instance is a no-op: it reads no
// marker, starts nothing, and returns nil.
func (c *Controller) Stop(ctx context.Context, inst *registry.Instance, sandbox, force bool) error {
	h, err := loadHandle(inst)
	if err != nil {
		return err
	}
	if h == nil {
		return nil
	}

	sup, err := supervisorLog(inst)
	if err != nil {
		return fmt.Errorf("process: open supervisor log: %w", err)
	}
	defer sup.Close()

	logf(sup, "stopping instance %s", inst.Name)

	if err := c.provider.Stop(ctx, inst, h, force); err != nil {
		return err
	}

	if !force && !c.waitForExit(ctx, inst, h) {
		logf(sup, "graceful stop timed out after %s, escalating", c.stopGrace)
		if err := c.provider.Stop(ctx, inst, h, true); err != nil {
			return err
		}
	}

	if err := removeHandleMarkers(inst); err != nil {
		return fmt.Errorf("process: remove markers after stop: %w", err)
	}
	logf(sup, "instance %s is PROVISIONED_STOPPED", inst.Name)

	if sandbox {
		return c.registry.Remove(ctx, inst.Name)
	}
	return nil
}

// waitForExit polls Probe until the runtime reports itself gone or
// stopGrace elapses.
func (c *Controller) waitForExit(ctx context.Context, inst *registry.Instance, h *runtime.Handle) bool {
	deadline := time.Now().Add(c.stopGrace)
	for time.Now().Before(deadline) {
		running, err := c.provider.Probe(ctx, inst, h)
		if err != nil || !running {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(250 * time.Millisecond):
		}
	}
	return false
}
