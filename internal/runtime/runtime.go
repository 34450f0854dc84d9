// Package runtime implements the RuntimeProvider component: it abstracts
// the three ways a CFML engine can be hosted (a downloaded embedded
// distribution, a user-supplied container install, or an OCI container)
// behind one capability set, shaped like internal/container's Runtime
// interface (Run/Stop/Start/Remove/Get/List).
package runtime

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cybersonic/lucli/internal/exec"
	"github.com/cybersonic/lucli/internal/imageregistry"
	"github.com/cybersonic/lucli/internal/luerr"
	"github.com/cybersonic/lucli/internal/manifest"
	"github.com/cybersonic/lucli/internal/registry"
)

// Handle is the serializable record of a started instance: a PID/port
// pair for embedded and external-container variants, or a container
// name/image pair for the container variant (§3 "ProcessHandle").
type Handle struct {
	PID           int       `json:"pid,omitempty"`
	Port          int       `json:"port,omitempty"`
	StartedAt     time.Time `json:"startedAt,omitempty"`
	ContainerName string    `json:"containerName,omitempty"`
	Image         string    `json:"image,omitempty"`
}

// Provider abstracts one RuntimeProvider variant behind prepare, start,
// stop, probe, and logs (§4.5).
type Provider interface {
	// Prepare materializes whatever the variant needs before a process
	// or container can be started: a downloaded/cached distribution, an
	// isolated CATALINA_BASE, or a pre-flight image compatibility check.
	Prepare(ctx context.Context, m *manifest.Manifest, inst *registry.Instance) error

	// Start launches the runtime and returns its Handle. It does not
	// wait for readiness; that is ProcessController's job.
	Start(ctx context.Context, m *manifest.Manifest, inst *registry.Instance) (*Handle, error)

	// Stop requests a graceful stop; force escalates to termination
	// (SIGKILL for the process variants; for the container variant, the
	// stop is followed by `rm -f`).
	Stop(ctx context.Context, inst *registry.Instance, h *Handle, force bool) error

	// Probe reports whether the Handle still refers to a live process
	// or container. It does not match registry.LivenessProber's method
	// set; the container variant implements that through its separate
	// IsRunning method.
	Probe(ctx context.Context, inst *registry.Instance, h *Handle) (bool, error)

	// Logs streams the runtime's output to w; if follow is true it
	// blocks, continuing to stream until ctx is canceled.
	Logs(ctx context.Context, inst *registry.Instance, h *Handle, follow bool, w io.Writer) error
}

// servletFamily buckets engine versions into servlet-API compatibility
// families; §4.5's "Compatibility check" cross-references this against
// the runtime distribution's own declared family.
type servletFamily string

const (
	servletFamily5 servletFamily = "servlet-5.0"
	servletFamily6 servletFamily = "servlet-6.0"
)

// engineServletFamily resolves the CFML engine's declared family from
// its major version. Lucee 5.x targets servlet 5.0 containers; Lucee 6.x
// requires servlet 6.0 (Jakarta namespace).
func engineServletFamily(engineVersion string) servletFamily {
	if len(engineVersion) > 0 && engineVersion[0] == '5' {
		return servletFamily5
	}
	return servletFamily6
}

// checkCompatible cross-checks the runtime's family against the engine's
// and returns RuntimeIncompatible on mismatch, naming the valid pairs.
func checkCompatible(engineVersion string, runtimeFamily servletFamily) error {
	want := engineServletFamily(engineVersion)
	if want == runtimeFamily {
		return nil
	}
	return fmt.Errorf(
		"engine %s requires %s, runtime provides %s (valid pairs: lucee 5.x/servlet-5.0, lucee 6.x/servlet-6.0)",
		engineVersion, want, runtimeFamily,
	)
}

// New dispatches to a Provider variant per runtime.type (§4.5).
func New(runtimeType string, homeDir string, e exec.Executor, images imageregistry.Client, variant string) (Provider, error) {
	switch runtimeType {
	case "embedded":
		return NewEmbedded(homeDir), nil
	case "external-container":
		return NewExternalContainer(), nil
	case "container":
		return NewContainer(e, images, variant), nil
	default:
		return nil, luerr.New(luerr.ManifestInvalid,
			luerr.WithKeyPath("runtime.type"),
			luerr.WithRemedy(fmt.Sprintf("unknown runtime type %q", runtimeType)))
	}
}
