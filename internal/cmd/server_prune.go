package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cybersonic/lucli/internal/registry"
)

var serverPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove stopped instance directories",
	Long: `Remove stopped instances from the registry. Running instances are
never touched regardless of selection.

By default, prunes only the current project's stopped instances. Use
--name to prune one instance by name, or --all to prune every stopped
instance on this machine.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := cmd.Flags().GetString("name")
		if err != nil {
			return err
		}
		all, err := cmd.Flags().GetBool("all")
		if err != nil {
			return err
		}

		selection := registry.PruneSelection{Name: name, All: all}
		if name == "" && !all {
			dir, err := projectDir()
			if err != nil {
				return err
			}
			selection.ProjectDir = dir
		}

		reg := RegistryFromContext(cmd.Context())
		removed, err := reg.Prune(cmd.Context(), selection)
		if err != nil {
			return fmt.Errorf("prune instances: %w", err)
		}

		if len(removed) == 0 {
			fmt.Println("No stopped instances to prune")
			return nil
		}
		for _, name := range removed {
			fmt.Printf("removed %s\n", name)
		}
		return nil
	},
}

func init() {
	serverCmd.AddCommand(serverPruneCmd)
	serverPruneCmd.Flags().String("name", "", "prune only this exact instance name")
	serverPruneCmd.Flags().Bool("all", false, "prune every stopped instance on this machine")
}
