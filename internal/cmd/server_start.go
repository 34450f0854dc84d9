package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cybersonic/lucli/internal/deps"
	"github.com/cybersonic/lucli/internal/manifest"
	"github.com/cybersonic/lucli/internal/materialize"
	"github.com/cybersonic/lucli/internal/process"
	"github.com/cybersonic/lucli/internal/registry"
	"github.com/cybersonic/lucli/internal/runtime"
)

var serverStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a server instance for the current project",
	Long: `Resolve the project manifest, materialize its instance, and start the
runtime in the background. The command returns as soon as the instance
reports ready (§4.8's readiness probe); the server keeps running after
lucli exits.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := readStartFlags(cmd)
		if err != nil {
			return err
		}
		_, _, err = startInstance(cmd, f, false)
		return err
	},
}

var serverRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Start a server instance and stay attached in the foreground",
	Long: `Like "server start", but blocks streaming the instance's log until
interrupted (Ctrl-C), at which point the instance is stopped gracefully.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := readStartFlags(cmd)
		if err != nil {
			return err
		}
		_, _, err = startInstance(cmd, f, true)
		return err
	},
}

// startInstance runs the full C1→C9 pipeline for one project: resolve
// the manifest and Instance, reserve the instance lock, install
// dependencies, materialize on-disk configuration, then drive the
// runtime through ProcessController.Start. If foreground is set, it
// blocks tailing the instance log until interrupted, then stops the
// instance before returning.
func startInstance(cmd *cobra.Command, f startFlags, foreground bool) (*manifest.Manifest, *registry.Instance, error) {
	ctx := cmd.Context()

	rp, err := resolveProject(cmd, f)
	if err != nil {
		return nil, nil, err
	}
	m, inst := rp.manifest, rp.instance

	reg := RegistryFromContext(ctx)
	release, err := reg.Reserve(ctx, inst, false)
	if err != nil {
		return nil, nil, err
	}
	defer release()

	dir := inst.ProjectDir
	var mappings []materialize.DependencyMapping
	if len(m.Dependencies) > 0 || len(m.DevDependencies) > 0 {
		if m.DependencySettings.AutoInstallOnServerStart {
			resolver := deps.New(dir, m.DependencySettings)
			resolved, err := resolver.Resolve(ctx, m.Dependencies, m.DevDependencies)
			if err != nil {
				return nil, nil, err
			}
			mappings = deps.ToMaterializeMappings(resolved)
		}
	}

	provider, err := buildProvider(ctx, m)
	if err != nil {
		return nil, nil, err
	}

	vendorRoot := runtime.VendorRoot(m.Runtime.Type, HomeDirFromContext(ctx), m)
	mz := materializerFor(ctx)
	if err := mz.Materialize(ctx, m, &materialize.Input{
		Instance:   inst,
		VendorRoot: vendorRoot,
		Mappings:   mappings,
	}); err != nil {
		return nil, nil, err
	}

	controller := process.New(reg, provider)
	h, err := controller.Start(ctx, m, inst)
	if err != nil {
		return nil, nil, err
	}

	if err := manifest.WriteBack(rp.dir, rp.original, writeBackOverrides(rp)); err != nil {
		return nil, nil, err
	}

	fmt.Printf("instance %s is running on port %d\n", inst.Name, m.Port)

	if !foreground {
		return m, inst, nil
	}

	return m, inst, followForeground(ctx, controller, inst, provider, h)
}

// followForeground streams the runtime's own log until the process
// receives an interrupt, then stops the instance gracefully, matching
// "server run"'s attached, Ctrl-C-to-stop behavior.
func followForeground(ctx context.Context, controller *process.Controller, inst *registry.Instance, provider runtime.Provider, h *runtime.Handle) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	logCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- provider.Logs(logCtx, inst, h, true, os.Stdout)
	}()

	select {
	case <-sigCh:
		cancel()
		fmt.Printf("\nstopping instance %s\n", inst.Name)
		return controller.Stop(ctx, inst, false, false)
	case err := <-errCh:
		return err
	}
}

func init() {
	serverCmd.AddCommand(serverStartCmd)
	serverCmd.AddCommand(serverRunCmd)
	bindStartFlags(serverStartCmd)
	bindStartFlags(serverRunCmd)
}
