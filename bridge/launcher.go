package bridge

import (
	"os"
	"os/exec"
)

// ChildHandle is the lifetime handle returned by a HostLauncher for a
// spawned process. Most callers never touch it: per §4.4, the outer
// bridge is intended to outlive inner-bridge restarts, so the child
// handle is tracked only to optionally signal it on shutdown, which is
// disabled by default.
type ChildHandle interface {
	// Pid returns the spawned process's id.
	Pid() int

	// Release detaches the handle without waiting on or signaling the
	// child, letting it continue running independently of this process.
	Release() error

	// Signal delivers sig to the child process, if still reachable.
	Signal(sig os.Signal) error
}

// HostLauncher abstracts "run a host-visible executable as a detached
// child", so the platform specifics of spawning the outer bridge are
// swappable and testable with a fake (see Design Note in §9).
type HostLauncher interface {
	// Launch starts hostPath with args as a session-detached child and
	// returns a handle to it. The child's stdio is not connected to the
	// caller; callers that want log output should pass a log-file path
	// on the command line for the child to open itself.
	Launch(hostPath string, args []string) (ChildHandle, error)
}

// osChildHandle wraps an *os.Process released from its originating
// exec.Cmd so the child survives this process's exit.
type osChildHandle struct {
	proc *os.Process
	pid  int
}

func (h *osChildHandle) Pid() int { return h.pid }

func (h *osChildHandle) Release() error {
	return h.proc.Release()
}

func (h *osChildHandle) Signal(sig os.Signal) error {
	return h.proc.Signal(sig)
}

// OSHostLauncher is the real HostLauncher, implemented with os/exec and a
// new session so the spawned process survives even if this one is killed.
// This is the idiomatic Go substitute for a double-fork: Setsid detaches
// the child from the parent's session, and Process.Release lets the
// runtime stop tracking it as our child without waiting for it.
type OSHostLauncher struct{}

// Launch implements HostLauncher.
func (OSHostLauncher) Launch(hostPath string, args []string) (ChildHandle, error) {
	cmd := exec.Command(hostPath, args...)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	setDetached(cmd)

	if err := cmd.Start(); err != nil {
		return nil, NewSpawnError(err)
	}

	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		return nil, NewSpawnError(err)
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return nil, NewSpawnError(err)
	}

	return &osChildHandle{proc: proc, pid: pid}, nil
}

// FakeChildHandle is a HostLauncher child handle for tests: it never
// actually runs a process.
type FakeChildHandle struct {
	FakePid int
}

// Pid implements ChildHandle.
func (h *FakeChildHandle) Pid() int { return h.FakePid }

// Release implements ChildHandle.
func (h *FakeChildHandle) Release() error { return nil }

// Signal implements ChildHandle.
func (h *FakeChildHandle) Signal(sig os.Signal) error { return nil }

// FakeHostLauncher is a HostLauncher for tests that records every launch
// request instead of spawning anything.
type FakeHostLauncher struct {
	Launches []FakeLaunch
	NextPid  int
	Err      error
}

// FakeLaunch records one call to FakeHostLauncher.Launch.
type FakeLaunch struct {
	HostPath string
	Args     []string
}

// Launch implements HostLauncher.
func (l *FakeHostLauncher) Launch(hostPath string, args []string) (ChildHandle, error) {
	l.Launches = append(l.Launches, FakeLaunch{HostPath: hostPath, Args: append([]string(nil), args...)})
	if l.Err != nil {
		return nil, l.Err
	}
	l.NextPid++
	return &FakeChildHandle{FakePid: l.NextPid}, nil
}
