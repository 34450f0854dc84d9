package container

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybersonic/lucli/internal/exec"
)

// fakeExecutor is a hand-rolled Executor test double: the workspace has
// no generated moq mocks package (go:generate is never invoked in this
// build), so tests drive exec.Executor through this instead.
type fakeExecutor struct {
	runFunc func(ctx context.Context, opts *exec.RunOptions) (*exec.Result, error)
}

func (f *fakeExecutor) Run(ctx context.Context, opts *exec.RunOptions) (*exec.Result, error) {
	return f.runFunc(ctx, opts)
}

func (f *fakeExecutor) LookPath(name string) (string, error) { return name, nil }

func TestDockerRuntime_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("creates container and returns its id", func(t *testing.T) {
		fe := &fakeExecutor{runFunc: func(_ context.Context, opts *exec.RunOptions) (*exec.Result, error) {
			assert.Equal(t, "docker", opts.Name)
			assert.Contains(t, opts.Args, "run")
			assert.Contains(t, opts.Args, "--detach")
			assert.Contains(t, opts.Args, "cfml-demo")
			assert.Contains(t, opts.Args, "lucee/lucee:6")
			return &exec.Result{Stdout: []byte("abc123\n")}, nil
		}}

		rt := NewDockerRuntime(fe)
		c, err := rt.Run(ctx, &RunConfig{Name: "cfml-demo", Image: "lucee/lucee:6"})
		require.NoError(t, err)
		assert.Equal(t, "abc123", c.ID)
		assert.Equal(t, StatusRunning, c.Status)
	})

	t.Run("maps ports and mounts the webroot", func(t *testing.T) {
		fe := &fakeExecutor{runFunc: func(_ context.Context, opts *exec.RunOptions) (*exec.Result, error) {
			assert.Contains(t, opts.Args, "-p")
			assert.Contains(t, opts.Args, "8080:8888")
			assert.Contains(t, opts.Args, "-v")
			assert.Contains(t, opts.Args, "/project:/var/www:ro")
			return &exec.Result{Stdout: []byte("abc123\n")}, nil
		}}

		rt := NewDockerRuntime(fe)
		_, err := rt.Run(ctx, &RunConfig{
			Name:   "cfml-demo",
			Image:  "lucee/lucee:6",
			Ports:  []string{"8080:8888"},
			Mounts: []Mount{{Source: "/project", Target: "/var/www", ReadOnly: true}},
		})
		require.NoError(t, err)
	})

	t.Run("already-in-use stderr maps to ErrAlreadyExists", func(t *testing.T) {
		fe := &fakeExecutor{runFunc: func(_ context.Context, _ *exec.RunOptions) (*exec.Result, error) {
			return &exec.Result{Stderr: []byte("Error: container name already in use")}, assert.AnError
		}}

		rt := NewDockerRuntime(fe)
		_, err := rt.Run(ctx, &RunConfig{Name: "cfml-demo", Image: "lucee/lucee:6"})
		require.ErrorIs(t, err, ErrAlreadyExists)
	})
}

func TestDockerRuntime_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("parses inspect JSON", func(t *testing.T) {
		fe := &fakeExecutor{runFunc: func(_ context.Context, opts *exec.RunOptions) (*exec.Result, error) {
			assert.Equal(t, []string{"inspect", "cfml-demo"}, opts.Args)
			return &exec.Result{Stdout: []byte(`[{"Id":"abc123","Name":"/cfml-demo","Created":"2024-01-01T00:00:00Z","State":{"Status":"running"},"Config":{"Image":"lucee/lucee:6"}}]`)}, nil
		}}

		rt := NewDockerRuntime(fe)
		c, err := rt.Get(ctx, "cfml-demo")
		require.NoError(t, err)
		assert.Equal(t, "cfml-demo", c.Name)
		assert.Equal(t, StatusRunning, c.Status)
	})

	t.Run("not-found stderr maps to ErrNotFound", func(t *testing.T) {
		fe := &fakeExecutor{runFunc: func(_ context.Context, _ *exec.RunOptions) (*exec.Result, error) {
			return &exec.Result{Stderr: []byte("Error: No such container: cfml-demo")}, assert.AnError
		}}

		rt := NewDockerRuntime(fe)
		_, err := rt.Get(ctx, "cfml-demo")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDockerRuntime_List(t *testing.T) {
	fe := &fakeExecutor{runFunc: func(_ context.Context, _ *exec.RunOptions) (*exec.Result, error) {
		return &exec.Result{Stdout: []byte("{\"ID\":\"abc\",\"Names\":\"cfml-demo\",\"Image\":\"lucee/lucee:6\",\"State\":\"running\"}\n")}, nil
	}}

	rt := NewDockerRuntime(fe)
	containers, err := rt.List(context.Background(), ListFilter{})
	require.NoError(t, err)
	require.Len(t, containers, 1)
	assert.Equal(t, "cfml-demo", containers[0].Name)
}

func TestDockerRuntime_StopRemove(t *testing.T) {
	ctx := context.Background()
	calls := []string{}
	fe := &fakeExecutor{runFunc: func(_ context.Context, opts *exec.RunOptions) (*exec.Result, error) {
		calls = append(calls, opts.Args[0])
		if opts.Args[0] == "inspect" {
			return &exec.Result{Stdout: []byte(`[{"Id":"abc123","Name":"/cfml-demo","State":{"Status":"running"},"Config":{"Image":"x"}}]`)}, nil
		}
		return &exec.Result{}, nil
	}}

	rt := NewDockerRuntime(fe)
	require.NoError(t, rt.Stop(ctx, "cfml-demo"))
	require.NoError(t, rt.Remove(ctx, "cfml-demo"))
	assert.Equal(t, []string{"inspect", "stop", "rm"}, calls)
}
