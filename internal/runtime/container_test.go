package runtime

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybersonic/lucli/internal/exec"
	"github.com/cybersonic/lucli/internal/imageregistry"
	"github.com/cybersonic/lucli/internal/luerr"
	"github.com/cybersonic/lucli/internal/manifest"
	"github.com/cybersonic/lucli/internal/registry"
)

// fakeExecutor is a minimal exec.Executor test double, mirroring the one
// used for internal/container's own runtime tests.
type fakeExecutor struct {
	runFunc func(ctx context.Context, opts *exec.RunOptions) (*exec.Result, error)
}

func (f *fakeExecutor) Run(ctx context.Context, opts *exec.RunOptions) (*exec.Result, error) {
	return f.runFunc(ctx, opts)
}

func (f *fakeExecutor) LookPath(name string) (string, error) {
	return name, nil
}

// fakeImages is a minimal imageregistry.Client test double.
type fakeImages struct {
	meta *imageregistry.ImageMetadata
	err  error
}

func (f *fakeImages) GetMetadata(ctx context.Context, ref string) (*imageregistry.ImageMetadata, error) {
	return f.meta, f.err
}

func TestContainerProvider_Prepare_MissingImage(t *testing.T) {
	p := NewContainer(&fakeExecutor{}, &fakeImages{}, "docker")
	m := &manifest.Manifest{Version: "6.1.1"}
	inst := &registry.Instance{Name: "demo"}

	err := p.Prepare(context.Background(), m, inst)
	require.Error(t, err)
	assert.ErrorIs(t, err, luerr.KindOf(luerr.ManifestInvalid))
}

func TestContainerProvider_Prepare_IncompatibleFamily(t *testing.T) {
	images := &fakeImages{meta: &imageregistry.ImageMetadata{
		Labels: map[string]string{servletFamilyLabel: string(servletFamily5)},
	}}
	p := NewContainer(&fakeExecutor{}, images, "docker")
	m := &manifest.Manifest{Version: "6.1.1", Runtime: manifest.RuntimeConfig{Image: "lucee/lucee"}}
	inst := &registry.Instance{Name: "demo"}

	err := p.Prepare(context.Background(), m, inst)
	require.Error(t, err)
	assert.ErrorIs(t, err, luerr.KindOf(luerr.RuntimeIncompatible))
}

func TestContainerProvider_Prepare_Compatible(t *testing.T) {
	images := &fakeImages{meta: &imageregistry.ImageMetadata{
		Labels: map[string]string{servletFamilyLabel: string(servletFamily6)},
	}}
	p := NewContainer(&fakeExecutor{}, images, "docker")
	m := &manifest.Manifest{Version: "6.1.1", Runtime: manifest.RuntimeConfig{Image: "lucee/lucee", Tag: "6"}}
	inst := &registry.Instance{Name: "demo"}

	require.NoError(t, p.Prepare(context.Background(), m, inst))
}

func TestContainerProvider_StartStopProbe(t *testing.T) {
	e := &fakeExecutor{runFunc: func(_ context.Context, opts *exec.RunOptions) (*exec.Result, error) {
		switch opts.Args[0] {
		case "run":
			return &exec.Result{Stdout: []byte("abc123\n")}, nil
		case "inspect":
			return &exec.Result{Stdout: []byte(`[{"Id":"abc123","Name":"/lucli-demo","State":{"Status":"running"},"Config":{"Image":"lucee/lucee"}}]`)}, nil
		case "stop":
			return &exec.Result{}, nil
		case "rm":
			return &exec.Result{}, nil
		}
		t.Fatalf("unexpected docker args: %v", opts.Args)
		return nil, nil
	}}

	p := NewContainer(e, &fakeImages{}, "docker")
	m := &manifest.Manifest{Port: 8080, Runtime: manifest.RuntimeConfig{Image: "lucee/lucee"}}
	inst := &registry.Instance{Name: "demo", ProjectDir: "/srv/www"}

	h, err := p.Start(context.Background(), m, inst)
	require.NoError(t, err)
	assert.Equal(t, "lucli-demo", h.ContainerName)

	running, err := p.Probe(context.Background(), inst, h)
	require.NoError(t, err)
	assert.True(t, running)

	require.NoError(t, p.Stop(context.Background(), inst, h, true))
}

func TestLivenessProber_FallsBackFromDockerToPodman(t *testing.T) {
	e := &fakeExecutor{runFunc: func(_ context.Context, opts *exec.RunOptions) (*exec.Result, error) {
		switch opts.Name {
		case "docker":
			return nil, fmt.Errorf("exec: \"docker\": executable file not found in $PATH")
		case "podman":
			return &exec.Result{Stdout: []byte(`[{"Id":"abc123","Name":"/lucli-demo","State":{"Status":"running"},"Config":{"Image":"lucee/lucee"}}]`)}, nil
		}
		t.Fatalf("unexpected binary: %s", opts.Name)
		return nil, nil
	}}

	prober := NewLivenessProber(e)
	running, err := prober.IsRunning(context.Background(), &registry.Instance{Name: "demo"})
	require.NoError(t, err)
	assert.True(t, running)
}

func TestLivenessProber_NeitherBackendKnowsIt(t *testing.T) {
	e := &fakeExecutor{runFunc: func(_ context.Context, opts *exec.RunOptions) (*exec.Result, error) {
		return &exec.Result{Stderr: []byte("Error: no such object")}, fmt.Errorf("exit status 1")
	}}

	prober := NewLivenessProber(e)
	running, err := prober.IsRunning(context.Background(), &registry.Instance{Name: "demo"})
	require.NoError(t, err)
	assert.False(t, running)
}

func TestContainerProvider_Logs(t *testing.T) {
	var gotArgs []string
	e := &fakeExecutor{runFunc: func(_ context.Context, opts *exec.RunOptions) (*exec.Result, error) {
		gotArgs = opts.Args
		return &exec.Result{}, nil
	}}

	p := NewContainer(e, &fakeImages{}, "docker")
	err := p.Logs(context.Background(), &registry.Instance{Name: "demo"}, &Handle{ContainerName: "lucli-demo"}, true, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"logs", "-f", "lucli-demo"}, gotArgs)
}
