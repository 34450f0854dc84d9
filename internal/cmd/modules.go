package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cybersonic/lucli/internal/deps"
)

var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "Inspect and install manifest-declared dependencies",
	Long: `"modules list" and "modules install" are thin views onto the same
DependencyResolver (§C7) "deps" uses. Module packaging itself (init,
uninstall, update, run against an installed module's own entrypoint) is
not part of this core — see "lucli modules init/uninstall/update/run".`,
}

var modulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the current project's declared dependencies",
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

		if len(m.Dependencies) == 0 && len(m.DevDependencies) == 0 {
			fmt.Println("No dependencies declared")
			return nil
		}
		for name, dep := range m.Dependencies {
			fmt.Printf("%s\t%s\n", name, dep.Version)
		}
		for name, dep := range m.DevDependencies {
			fmt.Printf("%s\t%s\t(dev)\n", name, dep.Version)
		}
		return nil
	},
}

var modulesInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the current project's declared dependencies",
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

var modulesInitCmd = &cobra.Command{
	Use:   "init <name>",
	Short: "Scaffold a new module (not supported by this core)",
	Args:  cobra.ExactArgs(1),
	RunE:  unsupportedCommand,
}

var modulesUninstallCmd = &cobra.Command{
	Use:   "uninstall <name>",
	Short: "Remove an installed module (not supported by this core)",
	Args:  cobra.ExactArgs(1),
	RunE:  unsupportedCommand,
}

var modulesUpdateCmd = &cobra.Command{
	Use:   "update [name]",
	Short: "Update installed modules (not supported by this core)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  unsupportedCommand,
}

var modulesRunCmd = &cobra.Command{
	Use:   "run <name> [args...]",
	Short: "Invoke an installed module's own entrypoint (not supported by this core)",
	Args:  cobra.MinimumNArgs(1),
	RunE:  unsupportedCommand,
}

func init() {
	rootCmd.AddCommand(modulesCmd)
	modulesCmd.AddCommand(modulesListCmd)
	modulesCmd.AddCommand(modulesInstallCmd)
	modulesCmd.AddCommand(modulesInitCmd)
	modulesCmd.AddCommand(modulesUninstallCmd)
	modulesCmd.AddCommand(modulesUpdateCmd)
	modulesCmd.AddCommand(modulesRunCmd)
	bindStartFlags(modulesListCmd)
	bindStartFlags(modulesInstallCmd)
}
