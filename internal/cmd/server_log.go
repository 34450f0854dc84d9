package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cybersonic/lucli/internal/process"
)

var serverLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Print or follow the current project's instance log",
	Long: `Print the instance's engine log (logs/catalina.out for the
embedded and external-container variants, "docker logs" for the
container variant). Never starts or stops anything.`,
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

		follow, err := cmd.Flags().GetBool("follow")
		if err != nil {
			return err
		}

		provider, err := buildProvider(cmd.Context(), rp.manifest)
		if err != nil {
			return err
		}
		controller := process.New(RegistryFromContext(cmd.Context()), provider)
		h, err := controller.Handle(rp.instance)
		if err != nil {
			return err
		}

		return provider.Logs(cmd.Context(), rp.instance, h, follow, cmd.OutOrStdout())
	},
}

func init() {
	serverCmd.AddCommand(serverLogCmd)
	bindStartFlags(serverLogCmd)
	serverLogCmd.Flags().BoolP("follow", "f", false, "keep streaming new log lines")
}
