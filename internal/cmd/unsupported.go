package cmd

import (
	"errors"

	"github.com/spf13/cobra"
)

// ErrNotSupported is returned by commands that are named in the
// invocation surface but whose functionality is explicitly out of
// scope for this core (one-shot script execution, module packaging).
// They dispatch this instead of silently no-opping, matching how
// external collaborators for these concerns are expected to fail
// loudly if invoked through the wrong entrypoint.
var ErrNotSupported = errors.New("not supported by this core")

func unsupportedCommand(cmd *cobra.Command, args []string) error {
	return ErrNotSupported
}

var cfmlCmd = &cobra.Command{
	Use:   "cfml <expr>",
	Short: "Evaluate a CFML expression (not supported by this core)",
	Args:  cobra.ExactArgs(1),
	RunE:  unsupportedCommand,
}

var runFileCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Execute a CFML script file (not supported by this core)",
	Args:  cobra.ExactArgs(1),
	RunE:  unsupportedCommand,
}

func init() {
	rootCmd.AddCommand(cfmlCmd)
	rootCmd.AddCommand(runFileCmd)
}
