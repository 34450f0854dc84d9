package cmd

import "github.com/spf13/cobra"

// serverCmd groups every instance-lifecycle subcommand (§6's `server
// start|stop|run|restart|status|list|open|log|prune|monitor|config`).
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Manage per-project server instances",
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
