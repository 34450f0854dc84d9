package process

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybersonic/lucli/internal/luerr"
	"github.com/cybersonic/lucli/internal/manifest"
	"github.com/cybersonic/lucli/internal/registry"
	"github.com/cybersonic/lucli/internal/runtime"
)

// fakeProvider is a runtime.Provider test double whose behavior is
// driven entirely by the closures below, so each test wires only the
// steps it cares about.
type fakeProvider struct {
	startFn func(ctx context.Context, m *manifest.Manifest, inst *registry.Instance) (*runtime.Handle, error)
	stopFn  func(ctx context.Context, inst *registry.Instance, h *runtime.Handle, force bool) error
	probeFn func(ctx context.Context, inst *registry.Instance, h *runtime.Handle) (bool, error)

	stopCalls []bool // records the `force` argument of every Stop call
}

func (f *fakeProvider) Prepare(context.Context, *manifest.Manifest, *registry.Instance) error {
	return nil
}

func (f *fakeProvider) Start(ctx context.Context, m *manifest.Manifest, inst *registry.Instance) (*runtime.Handle, error) {
	return f.startFn(ctx, m, inst)
}

func (f *fakeProvider) Stop(ctx context.Context, inst *registry.Instance, h *runtime.Handle, force bool) error {
	f.stopCalls = append(f.stopCalls, force)
	if f.stopFn != nil {
		return f.stopFn(ctx, inst, h, force)
	}
	return nil
}

func (f *fakeProvider) Probe(ctx context.Context, inst *registry.Instance, h *runtime.Handle) (bool, error) {
	if f.probeFn != nil {
		return f.probeFn(ctx, inst, h)
	}
	return true, nil
}

func (f *fakeProvider) Logs(_ context.Context, _ *registry.Instance, _ *runtime.Handle, _ bool, w io.Writer) error {
	_, err := fmt.Fprintln(w, "fake engine output")
	return err
}

func newTestInstance(t *testing.T) *registry.Instance {
	t.Helper()
	home := t.TempDir()
	dir := filepath.Join(home, "servers", "myapp")
	return &registry.Instance{Name: "myapp", Dir: dir, ProjectDir: t.TempDir()}
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestController_Start_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, portStr, err := net.SplitHostPort(srv.Listener.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	inst := newTestInstance(t)
	provider := &fakeProvider{
		startFn: func(context.Context, *manifest.Manifest, *registry.Instance) (*runtime.Handle, error) {
			return &runtime.Handle{PID: os.Getpid()}, nil
		},
	}
	reg := registry.New(filepath.Dir(filepath.Dir(inst.Dir)), nil)
	c := New(reg, provider, WithReadyTimeout(2*time.Second), WithHTTPTimeout(2*time.Second))

	m := &manifest.Manifest{Host: "127.0.0.1", Port: port}
	h, err := c.Start(context.Background(), m, inst)
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), h.PID)

	data, err := os.ReadFile(filepath.Join(inst.Dir, registry.PIDMarker))
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), string(data))
}

func TestController_Start_ReadinessTimeoutCleansUp(t *testing.T) {
	inst := newTestInstance(t)
	provider := &fakeProvider{
		startFn: func(context.Context, *manifest.Manifest, *registry.Instance) (*runtime.Handle, error) {
			return &runtime.Handle{PID: os.Getpid()}, nil
		},
	}
	reg := registry.New(filepath.Dir(filepath.Dir(inst.Dir)), nil)
	c := New(reg, provider, WithReadyTimeout(200*time.Millisecond), WithHTTPTimeout(200*time.Millisecond))

	m := &manifest.Manifest{Host: "127.0.0.1", Port: freePort(t)}
	_, err := c.Start(context.Background(), m, inst)
	require.Error(t, err)
	assert.ErrorIs(t, err, luerr.KindOf(luerr.StartTimeout))

	_, statErr := os.Stat(filepath.Join(inst.Dir, registry.PIDMarker))
	assert.True(t, os.IsNotExist(statErr))

	require.Len(t, provider.stopCalls, 1)
	assert.True(t, provider.stopCalls[0])
}
