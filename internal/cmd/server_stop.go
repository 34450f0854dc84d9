package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var serverStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running server instance for the current project",
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

		force, err := cmd.Flags().GetBool("kill")
		if err != nil {
			return err
		}

		controller, err := controllerFor(cmd.Context(), rp.manifest)
		if err != nil {
			return err
		}
		if err := controller.Stop(cmd.Context(), rp.instance, false, force); err != nil {
			return err
		}

		fmt.Printf("stopped instance %s\n", rp.instance.Name)
		return nil
	},
}

func init() {
	serverCmd.AddCommand(serverStopCmd)
	bindStartFlags(serverStopCmd)
	serverStopCmd.Flags().Bool("kill", false, "skip the graceful-stop grace period and terminate immediately")
}
