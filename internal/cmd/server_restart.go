package cmd

import "github.com/spf13/cobra"

var serverRestartCmd = &cobra.Command{
	Use:   "restart",
	Short: "Stop then start the server instance for the current project",
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

		controller, err := controllerFor(cmd.Context(), rp.manifest)
		if err != nil {
			return err
		}
		if err := controller.Stop(cmd.Context(), rp.instance, false, false); err != nil {
			return err
		}

		_, _, err = startInstance(cmd, f, false)
		return err
	},
}

func init() {
	serverCmd.AddCommand(serverRestartCmd)
	bindStartFlags(serverRestartCmd)
}
