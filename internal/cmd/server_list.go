package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cybersonic/lucli/internal/registry"
)

var serverListCmd = &cobra.Command{
	Use:   "list",
	Short: "List server instances",
	Long: `List instances tracked in the registry (§4.4).

By default, lists instances for the current project directory only.
Use --all to list instances across every project.`,
	Example: `  # List instances for the current project
  lucli server list

  # List every instance on this machine
  lucli server list --all`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")

		filter := registry.ListFilter{}
		if !all {
			dir, err := projectDir()
			if err != nil {
				return err
			}
			filter.ProjectDir = dir
		}

		reg := RegistryFromContext(cmd.Context())
		views, err := reg.List(cmd.Context(), filter)
		if err != nil {
			return fmt.Errorf("list instances: %w", err)
		}

		if len(views) == 0 {
			if all {
				fmt.Println("No instances found")
			} else {
				fmt.Println("No instances found for this project")
			}
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tSTATUS\tPID\tENVIRONMENT\tSANDBOX\tPROJECT")
		for _, v := range views {
			env := v.Environment
			if env == "" {
				env = "-"
			}
			pid := "-"
			if v.PID != 0 {
				pid = fmt.Sprintf("%d", v.PID)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\t%s\n", v.Name, v.Status, pid, env, v.Sandbox, v.ProjectDir)
		}
		w.Flush()

		return nil
	},
}

func init() {
	serverCmd.AddCommand(serverListCmd)
	serverListCmd.Flags().BoolP("all", "a", false, "list instances across every project")
}
