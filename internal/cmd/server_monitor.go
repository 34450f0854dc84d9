package cmd

import (
	"bufio"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	lucliregistry "github.com/cybersonic/lucli/internal/registry"
)

var serverMonitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Report JMX port and process memory for the running instance",
	Long: `Report the instance's configured JMX remote port (§4.6
monitoring.jmx.port, when monitoring.enabled) and its resident set size,
read directly from /proc/<pid>/status. RSS reporting is only available
on Linux and only for locally running processes (embedded and
external-container variants); it is skipped otherwise.`,
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

		if rp.manifest.Monitoring.Enabled {
			fmt.Printf("jmx: port %d\n", rp.manifest.Monitoring.JMX.Port)
		} else {
			fmt.Println("jmx: disabled")
		}

		reg := RegistryFromContext(cmd.Context())
		views, err := reg.List(cmd.Context(), lucliregistry.ListFilter{ProjectDir: rp.instance.ProjectDir})
		if err != nil {
			return fmt.Errorf("list instances: %w", err)
		}

		var pid int
		for _, v := range views {
			if v.Name == rp.instance.Name && v.Status == lucliregistry.StatusRunning {
				pid = v.PID
			}
		}
		if pid == 0 {
			fmt.Println("rss: instance is not running")
			return nil
		}

		rss, err := processRSS(pid)
		if err != nil {
			fmt.Printf("rss: unavailable (%v)\n", err)
			return nil
		}
		fmt.Printf("rss: %s (pid %d)\n", rss, pid)
		return nil
	},
}

// processRSS reads VmRSS out of /proc/<pid>/status, the only portable
// source for a process's resident set size without a cgo dependency.
// It only works on Linux; other GOOS values report unavailable.
func processRSS(pid int) (string, error) {
	if runtime.GOOS != "linux" {
		return "", fmt.Errorf("rss reporting requires linux, running on %s", runtime.GOOS)
	}

	f, err := os.Open(fmt.Sprintf("/proc/%d/status", pid))
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "VmRSS:") {
			return strings.TrimSpace(strings.TrimPrefix(line, "VmRSS:")), nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("VmRSS not found")
}

func init() {
	serverCmd.AddCommand(serverMonitorCmd)
	bindStartFlags(serverMonitorCmd)
}
