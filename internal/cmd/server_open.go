package cmd

import (
	"fmt"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/cybersonic/lucli/internal/manifest"
)

var serverOpenCmd = &cobra.Command{
	Use:   "open",
	Short: "Open the current project's instance in a browser",
	Long: `Open the configured openBrowserURL, or the computed
http(s)://host:port/ URL when none is set.`,
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

		url := browserURL(rp.manifest)
		fmt.Printf("opening %s\n", url)
		return browser.OpenURL(url)
	},
}

// browserURL computes the URL a fresh start would open, following the
// same "explicit openBrowserURL, else computed" rule startup uses.
func browserURL(m *manifest.Manifest) string {
	if m.OpenBrowserURL != "" {
		return m.OpenBrowserURL
	}

	host := m.Host
	if host == "" {
		host = "localhost"
	}

	scheme, port := "http", m.Port
	if m.HTTPS.Enabled && m.HTTPS.Redirect {
		scheme, port = "https", m.HTTPS.Port
	}

	return fmt.Sprintf("%s://%s:%d/", scheme, host, port)
}

func init() {
	serverCmd.AddCommand(serverOpenCmd)
	bindStartFlags(serverOpenCmd)
}
