package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cybersonic/lucli/internal/deps"
)

var depsCmd = &cobra.Command{
	Use:   "deps",
	Short: "Resolve the current project's manifest dependencies",
	Long: `Resolve entries under the manifest's dependencies/devDependencies
maps (§C7), downloading and verifying artifacts into
dependencySettings.installLocation.`,
}

var depsInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Download and install the project's dependencies",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := readStartFlags(cmd)
		if err != nil {
			return err
		}
		rp, err := resolveProject(cmd, f)
		if err != nil {
			return err
		}
		m := rp.manifest

		resolver := deps.New(rp.instance.ProjectDir, m.DependencySettings)
		mappings, err := resolver.Resolve(cmd.Context(), m.Dependencies, m.DevDependencies)
		if err != nil {
			return fmt.Errorf("install dependencies: %w", err)
		}

		fmt.Printf("installed %d dependencies\n", len(mappings))
		return nil
	},
}

var depsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove installed dependencies no longer declared by the manifest",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := readStartFlags(cmd)
		if err != nil {
			return err
		}
		rp, err := resolveProject(cmd, f)
		if err != nil {
			return err
		}
		m := rp.manifest

		// Resolve itself performs pruning as a side effect when
		// PruneOnInstall is set (there is no standalone prune-only
		// entry point), so force it on for this command regardless of
		// the manifest's own setting.
		settings := m.DependencySettings
		settings.PruneOnInstall = true

		resolver := deps.New(rp.instance.ProjectDir, settings)
		if _, err := resolver.Resolve(cmd.Context(), m.Dependencies, m.DevDependencies); err != nil {
			return fmt.Errorf("prune dependencies: %w", err)
		}

		fmt.Println("pruned dependencies not declared by the manifest")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(depsCmd)
	depsCmd.AddCommand(depsInstallCmd)
	depsCmd.AddCommand(depsPruneCmd)
	bindStartFlags(depsInstallCmd)
	bindStartFlags(depsPruneCmd)
}
