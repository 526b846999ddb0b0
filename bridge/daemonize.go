package bridge

import "os"

// daemonizeSentinelEnv marks a process as the already-detached child, so
// Daemonize does not re-exec itself a second time.
const daemonizeSentinelEnv = "GPG_BRIDGE_WSL2_DAEMONIZED"

// Daemonize detaches the current process from its controlling terminal,
// per §4.5: standard input is redirected to the null device, standard
// output and error are redirected to cfg.LogfilePath (or the null device
// if unset), and the process continues under a new session. Go cannot
// safely fork a running runtime, so this re-execs the same binary with
// the same arguments as the detached child and exits the original
// process once the child is running.
func Daemonize(cfg *Config) error {
	if os.Getenv(daemonizeSentinelEnv) != "" {
		return nil
	}
	return reexecDetached(cfg)
}
