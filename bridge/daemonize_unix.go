//go:build !windows

package bridge

import (
	"os"
	"os/exec"
)

// reexecDetached re-execs the current binary as a session leader, with
// standard streams redirected per Daemonize's contract, then exits the
// original process.
func reexecDetached(cfg *Config) error {
	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer devNull.Close()

	out := devNull
	if cfg.LogfilePath != "" {
		f, err := os.OpenFile(cfg.LogfilePath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
		if err != nil {
			return err
		}
		out = f
	}

	cmd := exec.Command(os.Args[0], os.Args[1:]...)
	cmd.Stdin = devNull
	cmd.Stdout = out
	cmd.Stderr = out
	cmd.Env = append(os.Environ(), daemonizeSentinelEnv+"=1")
	setDetached(cmd)

	if err := cmd.Start(); err != nil {
		return err
	}
	if err := cmd.Process.Release(); err != nil {
		return err
	}

	os.Exit(0)
	return nil
}
