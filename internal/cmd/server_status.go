package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var serverStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report the current project's instance state",
	Long: `Report the Instance's place in §4.8's state diagram by reading its
markers and probing liveness. Never starts anything.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := readStartFlags(cmd)
		if err != nil {
			return err
		}
		rp, err := resolveProject(cmd, f)
		if err != nil {
			return err
		}

		controller, err := controllerFor(cmd.Context(), rp.manifest)
		if err != nil {
			return err
		}

		state, err := controller.State(cmd.Context(), rp.instance)
		if err != nil {
			return err
		}

		fmt.Printf("%s: %s\n", rp.instance.Name, state)
		return nil
	},
}

func init() {
	serverCmd.AddCommand(serverStatusCmd)
	bindStartFlags(serverStatusCmd)
}
