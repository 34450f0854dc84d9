package process

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/cybersonic/lucli/internal/logging"
	"github.com/cybersonic/lucli/internal/registry"
	"github.com/cybersonic/lucli/internal/runtime"
)

const tailLines = 40

// supervisorLog opens the append-only transcript of this instance's
// start/stop attempts: TCP/HTTP probe retries, state transitions, and
// failure summaries. It reuses logging.PathManager/TeeWriter, rebased
// at the instance directory so the log lands at <instance>/logs/supervisor.log
// alongside the runtime's own stdout capture.
func supervisorLog(inst *registry.Instance) (*logging.TeeWriter, error) {
	pathMgr := logging.NewPathManager(inst.Dir)
	path, err := pathMgr.EnsureSessionLog("logs", "supervisor")
	if err != nil {
		return nil, err
	}
	return logging.NewTeeWriterAppend(nil, path)
}

// captureTail reads back the runtime's own log output through the
// provider's Logs method (so it works across the embedded,
// external-container, and container variants alike) and returns its
// last tailLines lines, for inclusion in a StartTimeout remedy.
func captureTail(inst *registry.Instance, h *runtime.Handle, provider runtime.Provider) string {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var buf bytes.Buffer
	if err := provider.Logs(ctx, inst, h, false, &buf); err != nil {
		return "(log unavailable: " + err.Error() + ")"
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) > tailLines {
		lines = lines[len(lines)-tailLines:]
	}
	return strings.Join(lines, "\n")
}
