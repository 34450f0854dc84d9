// Package cmd implements the LuCLI CLI commands using Cobra. It wires
// the nine core components (ManifestLoader through ConcurrencyGuard)
// into a command tree covering server lifecycle management, dependency
// installation, and secret storage.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cybersonic/lucli/internal/exec"
	"github.com/cybersonic/lucli/internal/prompt"
	"github.com/cybersonic/lucli/internal/registry"
	"github.com/cybersonic/lucli/internal/runtime"
	"github.com/cybersonic/lucli/internal/settings"
)

var rootCmd = &cobra.Command{
	Use:   "lucli",
	Short: "Orchestrate embedded CFML application server instances",
	Long: `LuCLI manages the lifecycle of per-project embedded CFML (Lucee)
application server instances: resolving a project's lucee.json manifest,
materializing an isolated server instance, and starting, stopping, and
inventorying it across a workstation.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		home, err := resolveHomeDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(home, 0o750); err != nil {
			return fmt.Errorf("create %s: %w", home, err)
		}

		loader, err := settings.NewLoader()
		if err != nil {
			return fmt.Errorf("init settings loader: %w", err)
		}
		cfg, err := loader.Load()
		if err != nil {
			return fmt.Errorf("load settings: %w", err)
		}

		prompter := prompt.New()
		reg := registry.New(home, runtime.NewLivenessProber(exec.New()))

		ctx := cmd.Context()
		ctx = WithHomeDir(ctx, home)
		ctx = WithSettings(ctx, cfg)
		ctx = WithPrompter(ctx, prompter)
		ctx = WithRegistry(ctx, reg)
		ctx = WithEnvName(ctx, os.Getenv("LUCLI_ENV"))
		cmd.SetContext(ctx)

		return nil
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

// resolveHomeDir implements §6's "LUCLI_HOME overrides the home root",
// defaulting to ~/.lucli.
func resolveHomeDir() (string, error) {
	if v := os.Getenv("LUCLI_HOME"); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".lucli"), nil
}
