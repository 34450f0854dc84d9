package runtime

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cybersonic/lucli/internal/luerr"
	"github.com/cybersonic/lucli/internal/manifest"
	"github.com/cybersonic/lucli/internal/registry"
)

// externalContainerProvider wraps a user-provided, read-only servlet
// container install (CATALINA_HOME) and constructs an isolated
// CATALINA_BASE per instance, never mutating the vendor tree. Shaped
// like the other Provider constructors, but operating on local
// processes via a detached spawn rather than a container CLI.
type externalContainerProvider struct{}

// NewExternalContainer returns the external-container RuntimeProvider variant.
func NewExternalContainer() Provider {
	return &externalContainerProvider{}
}

func (p *externalContainerProvider) Prepare(_ context.Context, m *manifest.Manifest, inst *registry.Instance) error {
	home := m.Runtime.CatalinaHome
	if home == "" {
		return luerr.New(luerr.ManifestInvalid,
			luerr.WithInstance(inst.Name), luerr.WithKeyPath("runtime.catalinaHome"),
			luerr.WithRemedy("set runtime.catalinaHome to an existing servlet container install"))
	}
	if info, err := os.Stat(home); err != nil || !info.IsDir() {
		return luerr.New(luerr.ManifestInvalid,
			luerr.WithInstance(inst.Name), luerr.WithKeyPath("runtime.catalinaHome"),
			luerr.WithRemedy("runtime.catalinaHome must point at an existing directory"))
	}

	family, err := externalServletFamily(home)
	if err != nil {
		return luerr.New(luerr.RuntimeIncompatible, luerr.WithInstance(inst.Name), luerr.WithCause(err))
	}
	if err := checkCompatible(m.Version, family); err != nil {
		return luerr.New(luerr.RuntimeIncompatible, luerr.WithInstance(inst.Name), luerr.WithCause(err))
	}

	return buildCatalinaBase(inst.Dir, home)
}

// externalServletFamily infers the servlet-API family of a user-supplied
// install from its directory layout: Jakarta (servlet 6.0) installs ship
// lib/jakarta.servlet-api-*.jar, javax-era (servlet 5.0) installs ship
// lib/javax.servlet-api-*.jar.
func externalServletFamily(catalinaHome string) (servletFamily, error) {
	matches, err := filepath.Glob(filepath.Join(catalinaHome, "lib", "jakarta.servlet-api-*.jar"))
	if err == nil && len(matches) > 0 {
		return servletFamily6, nil
	}
	return servletFamily5, nil
}

func (p *externalContainerProvider) Start(_ context.Context, m *manifest.Manifest, inst *registry.Instance) (*Handle, error) {
	script := filepath.Join(inst.Dir, "bin", "catalina.sh")
	logPath := filepath.Join(inst.Dir, "logs", "catalina.out")
	env := []string{"CATALINA_HOME=" + m.Runtime.CatalinaHome, "CATALINA_BASE=" + inst.Dir}

	pid, err := spawnDetached(script, []string{"run"}, inst.Dir, logPath, env)
	if err != nil {
		return nil, luerr.New(luerr.StartTimeout, luerr.WithInstance(inst.Name), luerr.WithCause(err))
	}
	return &Handle{PID: pid, Port: m.Port, StartedAt: time.Now()}, nil
}

func (p *externalContainerProvider) Stop(_ context.Context, inst *registry.Instance, h *Handle, force bool) error {
	if h == nil || h.PID <= 0 {
		return nil
	}
	sig := syscall.SIGTERM
	if force {
		sig = syscall.SIGKILL
	}
	if err := syscall.Kill(h.PID, sig); err != nil && err != syscall.ESRCH {
		return luerr.New(luerr.StopFailed, luerr.WithInstance(inst.Name), luerr.WithCause(err))
	}
	return nil
}

func (p *externalContainerProvider) Probe(_ context.Context, _ *registry.Instance, h *Handle) (bool, error) {
	if h == nil || h.PID <= 0 {
		return false, nil
	}
	err := syscall.Kill(h.PID, 0)
	return err == nil || err == syscall.EPERM, nil
}

func (p *externalContainerProvider) Logs(ctx context.Context, inst *registry.Instance, _ *Handle, follow bool, w io.Writer) error {
	return tailFile(ctx, filepath.Join(inst.Dir, "logs", "catalina.out"), follow, w)
}
