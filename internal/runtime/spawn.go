package runtime

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// spawnDetached launches bin with args as a detached background process,
// redirecting stdout/stderr into logPath, and returns its PID.
//
// This is the one place this package reaches for os/exec directly
// instead of internal/exec.Executor: Executor.Run blocks until the
// child exits, which is the right shape for CLI calls (git, docker
// inspect) but cannot express "start a long-running server and return
// immediately" — §4.8's detached-process requirement needs Cmd.Start
// plus Setsid so the child survives this CLI invocation's exit.
func spawnDetached(bin string, args []string, dir, logPath string, extraEnv []string) (int, error) {
	//nolint:gosec // G204: bin/args are derived from the resolved runtime + manifest, not raw user input
	cmd := exec.Command(bin, args...)
	cmd.Dir = dir
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if len(extraEnv) > 0 {
		cmd.Env = append(os.Environ(), extraEnv...)
	}

	//nolint:gosec // G304: logPath is inside the instance's own logs/ directory
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return 0, fmt.Errorf("runtime: open log file: %w", err)
	}
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	if err := cmd.Start(); err != nil {
		logFile.Close()
		return 0, fmt.Errorf("runtime: spawn %s: %w", bin, err)
	}

	// The child inherits the fd; closing our copy here doesn't affect it.
	go func() { _ = cmd.Wait(); _ = logFile.Close() }()

	return cmd.Process.Pid, nil
}
