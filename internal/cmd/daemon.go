package cmd

import (
	"encoding/json"
	"fmt"
	"net"

	"github.com/spf13/cobra"
)

// daemonRequest is one JSON-framed request read from a daemon
// connection. The daemon's own command spine (C1-C9) is out of this
// core's test scope (§1); this stub exists only so the subcommand and
// its wire framing exist for a caller to build against.
type daemonRequest struct {
	Op   string          `json:"op"`
	Args json.RawMessage `json:"args,omitempty"`
}

type daemonResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run a JSON-framed request/response server over a Unix socket",
	Long: `Listen on --socket, decoding one JSON object per connection and
replying with a JSON response. Every request currently resolves to
"op not implemented"; this exists so the wire contract and socket
lifecycle are in place for a future delegate.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		socketPath, err := cmd.Flags().GetString("socket")
		if err != nil {
			return err
		}

		ln, err := net.Listen("unix", socketPath)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", socketPath, err)
		}
		defer ln.Close()

		fmt.Printf("daemon listening on %s\n", socketPath)

		for {
			conn, err := ln.Accept()
			if err != nil {
				select {
				case <-cmd.Context().Done():
					return nil
				default:
					return fmt.Errorf("accept connection: %w", err)
				}
			}
			go handleDaemonConn(conn)
		}
	},
}

func handleDaemonConn(conn net.Conn) {
	defer conn.Close()

	dec := json.NewDecoder(conn)
	enc := json.NewEncoder(conn)

	var req daemonRequest
	if err := dec.Decode(&req); err != nil {
		_ = enc.Encode(daemonResponse{OK: false, Error: err.Error()})
		return
	}

	_ = enc.Encode(daemonResponse{OK: false, Error: fmt.Sprintf("op %q not implemented", req.Op)})
}

func init() {
	rootCmd.AddCommand(daemonCmd)
	daemonCmd.Flags().String("socket", "/tmp/lucli.sock", "unix socket path to listen on")
}
