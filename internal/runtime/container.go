package runtime

import (
	"context"
	"fmt"
	"io"

	"github.com/cybersonic/lucli/internal/container"
	"github.com/cybersonic/lucli/internal/exec"
	"github.com/cybersonic/lucli/internal/imageregistry"
	"github.com/cybersonic/lucli/internal/luerr"
	"github.com/cybersonic/lucli/internal/manifest"
	"github.com/cybersonic/lucli/internal/registry"
)

// servletFamilyLabel is the OCI image label a compatible CFML container
// image is expected to carry.
const servletFamilyLabel = "org.lucli.servlet-family"

// containerProvider runs the manifest's OCI image via docker or podman,
// using internal/container's Runtime for lifecycle operations plus
// imageregistry for the pre-flight servlet-API compatibility check
// against image labels.
type containerProvider struct {
	runtime container.Runtime
	images  imageregistry.Client
	exec    exec.Executor
	binary  string // "docker" or "podman", for the logs subcommand
}

// NewContainer returns the container RuntimeProvider variant for the
// given backend ("docker" or "podman", defaulting to docker).
func NewContainer(e exec.Executor, images imageregistry.Client, variant string) Provider {
	binary := "docker"
	rt := container.NewDockerRuntime(e)
	if variant == "podman" {
		binary = "podman"
		rt = container.NewPodmanRuntime(e)
	}
	return &containerProvider{runtime: rt, images: images, exec: e, binary: binary}
}

func (p *containerProvider) imageRef(m *manifest.Manifest) string {
	ref := m.Runtime.Image
	if m.Runtime.Tag != "" {
		ref = fmt.Sprintf("%s:%s", ref, m.Runtime.Tag)
	}
	return ref
}

func (p *containerProvider) Prepare(ctx context.Context, m *manifest.Manifest, inst *registry.Instance) error {
	ref := p.imageRef(m)
	if ref == "" {
		return luerr.New(luerr.ManifestInvalid,
			luerr.WithInstance(inst.Name), luerr.WithKeyPath("runtime.image"),
			luerr.WithRemedy("set runtime.image for the container runtime type"))
	}

	meta, err := p.images.GetMetadata(ctx, ref)
	if err != nil {
		return luerr.New(luerr.RuntimeIncompatible,
			luerr.WithInstance(inst.Name), luerr.WithCause(err),
			luerr.WithRemedy(fmt.Sprintf("verify %q is reachable and exists", ref)))
	}

	family := servletFamily(meta.Labels[servletFamilyLabel])
	if family == "" {
		family = servletFamily6 // images predating the label default to the current family
	}
	return checkCompatible(m.Version, family)
}

func (p *containerProvider) containerName(m *manifest.Manifest, inst *registry.Instance) string {
	if m.Runtime.ContainerName != "" {
		return m.Runtime.ContainerName
	}
	return "lucli-" + inst.Name
}

func (p *containerProvider) Start(ctx context.Context, m *manifest.Manifest, inst *registry.Instance) (*Handle, error) {
	name := p.containerName(m, inst)
	ref := p.imageRef(m)

	cfg := &container.RunConfig{
		Name:  name,
		Image: ref,
		Ports: []string{fmt.Sprintf("%d:8888", m.Port)},
		Mounts: []container.Mount{
			{Source: inst.ProjectDir, Target: "/var/www", ReadOnly: false},
		},
		Env: []string{
			fmt.Sprintf("LUCEE_ADMIN_ENABLED=%t", m.Admin.Enabled),
			fmt.Sprintf("LUCEE_ADMIN_PASSWORD=%s", m.Admin.Password),
		},
	}

	c, err := p.runtime.Run(ctx, cfg)
	if err != nil {
		return nil, luerr.New(luerr.StartTimeout, luerr.WithInstance(inst.Name), luerr.WithCause(err))
	}

	return &Handle{ContainerName: c.Name, Image: ref, Port: m.Port}, nil
}

func (p *containerProvider) Stop(ctx context.Context, inst *registry.Instance, h *Handle, force bool) error {
	if h == nil || h.ContainerName == "" {
		return nil
	}
	if err := p.runtime.Stop(ctx, h.ContainerName); err != nil {
		return luerr.New(luerr.StopFailed, luerr.WithInstance(inst.Name), luerr.WithCause(err))
	}
	if force {
		return p.runtime.Remove(ctx, h.ContainerName)
	}
	return nil
}

func (p *containerProvider) Probe(ctx context.Context, _ *registry.Instance, h *Handle) (bool, error) {
	if h == nil || h.ContainerName == "" {
		return false, nil
	}
	c, err := p.runtime.Get(ctx, h.ContainerName)
	if err != nil {
		if err == container.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return c.Status == container.StatusRunning, nil
}

// IsRunning implements registry.LivenessProber, letting InstanceRegistry
// consult real container status instead of a bare PID check.
func (p *containerProvider) IsRunning(ctx context.Context, inst *registry.Instance) (bool, error) {
	return p.Probe(ctx, inst, &Handle{ContainerName: "lucli-" + inst.Name})
}

// livenessProber answers registry.LivenessProber by checking docker,
// then podman, for a running "lucli-"+name container. Registry is built
// once at CLI startup, before any project manifest (and thus before any
// per-project runtime.type/variant choice) is known, so a single
// containerProvider bound to one backend can't serve as the process-wide
// prober; this tries both CLIs instead of requiring the caller to know
// which one a given Instance's manifest selected.
type livenessProber struct {
	docker container.Runtime
	podman container.Runtime
}

// NewLivenessProber returns the registry.LivenessProber wired into the
// Registry at startup (cmd.Execute), so `list`/`prune`/`Reserve` see
// real container state for container-runtime Instances without needing
// to resolve each one's manifest first.
func NewLivenessProber(e exec.Executor) registry.LivenessProber {
	return &livenessProber{
		docker: container.NewDockerRuntime(e),
		podman: container.NewPodmanRuntime(e),
	}
}

func (p *livenessProber) IsRunning(ctx context.Context, inst *registry.Instance) (bool, error) {
	name := "lucli-" + inst.Name
	if c, err := p.docker.Get(ctx, name); err == nil {
		return c.Status == container.StatusRunning, nil
	}
	if c, err := p.podman.Get(ctx, name); err == nil {
		return c.Status == container.StatusRunning, nil
	}
	// Neither backend knows this container (wrong/missing CLI, or it
	// was removed outside LuCLI); Registry treats that as not running,
	// the same way containerProvider.Probe treats ErrNotFound.
	return false, nil
}

// Logs shells out to the backend's own "logs" subcommand, streamed
// straight into w; container.Runtime's interface covers lifecycle ops
// only, so this goes through the same Executor directly.
func (p *containerProvider) Logs(ctx context.Context, _ *registry.Instance, h *Handle, follow bool, w io.Writer) error {
	if h == nil || h.ContainerName == "" {
		return fmt.Errorf("runtime: no container handle to read logs from")
	}

	args := []string{"logs"}
	if follow {
		args = append(args, "-f")
	}
	args = append(args, h.ContainerName)

	_, err := p.exec.Run(ctx, &exec.RunOptions{Name: p.binary, Args: args, Stdout: w, Stderr: w})
	return err
}
