package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mhyllander/gpg-bridge-wsl2/bridge"
	"github.com/mhyllander/gpg-bridge-wsl2/bridge/inner"
	"github.com/mhyllander/gpg-bridge-wsl2/bridge/outer"
	"github.com/mhyllander/gpg-bridge-wsl2/bridge/winmsgcopy"
)

// sshWindowName is the fixed title of the native agent's SSH window,
// addressed through the Windows message-copy IPC (§4.3).
const sshWindowName = "Gpg4winSSHAgent"

// gpgconfSocketName maps a SocketClass to the argument gpgconf expects
// for --list-dirs, the conventional way to resolve the canonical
// filesystem path for each of the agent's sockets.
var gpgconfSocketName = map[bridge.SocketClass]string{
	bridge.AgentMain:    "agent-socket",
	bridge.AgentExtra:   "agent-extra-socket",
	bridge.AgentBrowser: "agent-browser-socket",
	bridge.AgentSsh:     "agent-ssh-socket",
}

// descriptorSuffix maps a SocketClass to the filename suffix the native
// Windows agent appends to its base socket descriptor name for that
// class, mirroring gpgconf's own naming scheme for the non-main sockets.
var descriptorSuffix = map[bridge.SocketClass]string{
	bridge.AgentMain:    "",
	bridge.AgentExtra:   ".extra",
	bridge.AgentBrowser: ".browser",
	bridge.AgentSsh:     ".ssh",
}

// defaultNoncefilePath returns the platform-specific default location for
// the pairing nonce file, under the current user's home directory.
func defaultNoncefilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, ".gnupg", "gpg-bridge-wsl2.nonce")
}

// socketPathFor resolves a SocketClass to its canonical filesystem path
// on the subsystem side by asking gpgconf, the same toolchain query a
// native client would make.
func socketPathFor(class bridge.SocketClass) (string, error) {
	name, ok := gpgconfSocketName[class]
	if !ok {
		return "", fmt.Errorf("no gpgconf socket name for %s", class)
	}
	out, err := exec.Command("gpgconf", "--list-dirs", name).Output()
	if err != nil {
		return "", fmt.Errorf("gpgconf --list-dirs %s: %w", name, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// windowsDescriptorPath returns the Windows-side path for a SocketClass's
// Assuan descriptor file, mirroring gpg-agent's own "S.gpg-agent[.extra
// |.browser]" naming under the Windows GnuPG home directory.
func windowsDescriptorPath(class bridge.SocketClass) string {
	home := os.Getenv("APPDATA")
	if home == "" {
		home = `C:\Users\Default\AppData\Roaming`
	}
	return filepath.Join(home, "gnupg", "S.gpg-agent"+descriptorSuffix[class])
}

// translateToHostPath converts a subsystem-visible path to its
// host-visible form. WSL ships `wslpath` for exactly this purpose; when
// it is unavailable (e.g. a plain Linux container sharing the kernel
// rather than a WSL distro) the path is passed through unchanged, since
// in that case inner and outer share one filesystem namespace.
func translateToHostPath(path string) (string, error) {
	out, err := exec.Command("wslpath", "-w", path).Output()
	if err != nil {
		if _, lookErr := exec.LookPath("wslpath"); lookErr != nil {
			return path, nil
		}
		return "", bridge.NewSpawnError(fmt.Errorf("wslpath -w %s: %w", path, err))
	}
	return strings.TrimSpace(string(out)), nil
}

// hostInterpreterPath locates the outer bridge's own executable in its
// host-visible form, so the inner bridge can spawn it directly rather
// than through a separate script interpreter.
func hostInterpreterPath() (string, error) {
	self, err := os.Executable()
	if err != nil {
		return "", bridge.NewSpawnError(err)
	}
	hostPath, err := translateToHostPath(self)
	if err != nil {
		return "", err
	}
	return hostPath, nil
}

// buildOuterArgs reconstructs the outer bridge's command line from cfg,
// substituting the Windows-side log and PID file paths when the inner
// bridge has been told what they should be.
func buildOuterArgs(cfg *bridge.Config) []string {
	level := cfg.LogLevel
	args := []string{"outer",
		"-remote-address", cfg.RemoteAddress,
		"-windows-address", cfg.WindowsAddress,
		"-base-port", strconv.Itoa(cfg.BasePort),
		"-noncefile", cfg.NoncefilePath,
		"-log-level", level.String(),
	}
	if cfg.EnableSSH {
		args = append(args, "-enable-ssh")
	}
	if cfg.WindowsLogfilePath != "" {
		args = append(args, "-logfile", cfg.WindowsLogfilePath)
	}
	if cfg.WindowsPidfilePath != "" {
		args = append(args, "-pidfile", cfg.WindowsPidfilePath)
		args = append(args, "-daemonize")
	}
	return args
}

// startInnerBridge wires together the subsystem-side daemon: it resolves
// the outer bridge's host-visible executable path and argument list,
// constructs the real HostLauncher and gpgconf-backed path resolver, and
// starts the bridge.
func startInnerBridge(logger bridge.Logger, lc *bridge.Lifecycle, cfg *bridge.Config) error {
	if err := setupLifecycle(lc); err != nil {
		return err
	}

	hostPath, err := hostInterpreterPath()
	if err != nil {
		return err
	}
	args := buildOuterArgs(cfg)

	b := inner.New(logger, cfg, bridge.OSHostLauncher{}, hostPath, args, socketPathFor)
	if err := b.Start(); err != nil {
		return err
	}
	lc.AddCleanup(func() { b.Shutdown(nil) })
	return nil
}

// startOuterBridge wires together the host-side daemon: the Windows
// message-copy adapter for the SSH class, the Assuan descriptor resolver
// for the other classes, and a best-effort agent probe address.
func startOuterBridge(logger bridge.Logger, lc *bridge.Lifecycle, cfg *bridge.Config) error {
	if err := setupLifecycle(lc); err != nil {
		return err
	}

	adapter := winmsgcopy.New(logger, sshWindowName)

	// The agent advertises its loopback port in its main Assuan
	// descriptor; without a readable descriptor there is nothing to probe.
	agentProbeAddr := ""
	if desc, err := bridge.ReadAssuanDescriptor(windowsDescriptorPath(bridge.AgentMain)); err != nil {
		logger.WLogf("agent probe skipped: %s", err)
	} else {
		agentProbeAddr = fmt.Sprintf("127.0.0.1:%d", desc.Port)
	}

	b := outer.New(logger, cfg, windowsDescriptorPath, adapter, agentProbeAddr)
	if err := b.Start(); err != nil {
		return err
	}
	lc.AddCleanup(func() { b.Shutdown(nil) })
	return nil
}

// setupLifecycle runs the idempotent-start and daemonize steps common to
// both roles (§4.5), before the role-specific bridge is constructed.
func setupLifecycle(lc *bridge.Lifecycle) error {
	if lc.Config.Daemonize {
		if err := bridge.Daemonize(lc.Config); err != nil {
			return bridge.NewConfigError(err)
		}
	}
	return lc.WritePIDFile()
}
