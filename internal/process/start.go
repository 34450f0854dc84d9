package process

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cybersonic/lucli/internal/luerr"
	"github.com/cybersonic/lucli/internal/manifest"
	"github.com/cybersonic/lucli/internal/registry"
	"github.com/cybersonic/lucli/internal/runtime"
)

// Start drives an Instance through ABSENT→STARTING→{RUNNING,FAILED}
// (§4.8): it prepares and launches the runtime, writes the PID/container
// marker, then blocks on the readiness probe. Callers are expected to
// already hold the instance's reservation lock (C9) and to have run
// ConfigMaterializer/DependencyResolver beforehand; Start only drives
// the runtime itself.
//
// On success it returns the Handle that Stop and Probe calls must be
// given back. On failure the Instance is left ABSENT: the runtime is
// torn down and the marker removed, so a retried Start sees a clean
// slate.
func (c *Controller) Start(ctx context.Context, m *manifest.Manifest, inst *registry.Instance) (*runtime.Handle, error) {
	sup, err := supervisorLog(inst)
	if err != nil {
		return nil, fmt.Errorf("process: open supervisor log: %w", err)
	}
	defer sup.Close()

	logf(sup, "starting instance %s", inst.Name)

	if err := c.provider.Prepare(ctx, m, inst); err != nil {
		logf(sup, "prepare failed: %v", err)
		return nil, err
	}

	h, err := c.provider.Start(ctx, m, inst)
	if err != nil {
		logf(sup, "launch failed: %v", err)
		return nil, err
	}

	if err := writeHandleMarker(inst, h); err != nil {
		_ = c.provider.Stop(ctx, inst, h, true)
		return nil, luerr.New(luerr.StartTimeout,
			luerr.WithInstance(inst.Name), luerr.WithCause(err),
			luerr.WithRemedy("could not record the started process, stopping it back out"))
	}

	if err := c.awaitReady(ctx, m, sup); err != nil {
		tail := captureTail(inst, h, c.provider)
		_ = c.provider.Stop(ctx, inst, h, true)
		_ = removeHandleMarkers(inst)
		logf(sup, "start failed, instance transitioned to FAILED: %v", err)

		return nil, luerr.New(luerr.StartTimeout,
			luerr.WithInstance(inst.Name), luerr.WithCause(err),
			luerr.WithRemedy(fmt.Sprintf("instance never became ready; recent log output:\n%s", tail)))
	}

	logf(sup, "instance %s is RUNNING on port %d", inst.Name, m.Port)
	return h, nil
}

func logf(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "[%s] "+format+"\n", append([]any{time.Now().Format(time.RFC3339)}, args...)...)
}
