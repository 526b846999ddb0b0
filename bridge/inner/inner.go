// Package inner implements the subsystem-side half of the bridge pair: it
// exposes the client-facing filesystem sockets and multiplexes each client
// onto an authenticated TCP connection to the outer bridge.
package inner

import (
	"fmt"
	"net"
	"os/exec"
	"time"

	"github.com/mhyllander/gpg-bridge-wsl2/bridge"
)

// AgentProcessName is the process name matched (best-effort) when the
// inner bridge stops a stray local agent at startup. It is not a hard
// requirement: failure to find or signal a matching process is logged
// and ignored, per §4.1.
const AgentProcessName = "gpg-agent"

// Bridge is the subsystem-side daemon. It owns one listener per enabled
// SocketClass and forwards each accepted client to the outer bridge.
type Bridge struct {
	bridge.ShutdownOnce
	config     *bridge.Config
	launcher   bridge.HostLauncher
	hostPath   string
	launchArgs []string
	listeners  []*bridge.CanonicalSocketListener
	connStats  map[bridge.SocketClass]*bridge.ConnStats
	pathOf     func(bridge.SocketClass) (string, error)
}

// New constructs an inner Bridge. pathOf resolves a SocketClass to its
// canonical filesystem path on the subsystem side (queried from the
// client toolchain, out of scope for this package per §1). launcher
// spawns the outer bridge; hostPath/launchArgs are the already-translated
// host executable path and argument list to pass it.
func New(
	logger bridge.Logger,
	config *bridge.Config,
	launcher bridge.HostLauncher,
	hostPath string,
	launchArgs []string,
	pathOf func(bridge.SocketClass) (string, error),
) *Bridge {
	b := &Bridge{
		config:     config,
		launcher:   launcher,
		hostPath:   hostPath,
		launchArgs: launchArgs,
		connStats:  map[bridge.SocketClass]*bridge.ConnStats{},
		pathOf:     pathOf,
	}
	for _, class := range bridge.EnabledSocketClasses(config.EnableSSH) {
		b.connStats[class] = &bridge.ConnStats{}
	}
	b.InitShutdown(logger.Fork("InnerBridge"), b)
	return b
}

// Start spawns the outer bridge, best-effort stops any stray local agent,
// then opens a canonical-path listener for each enabled socket class and
// begins accepting clients.
func (b *Bridge) Start() error {
	if _, err := b.launcher.Launch(b.hostPath, b.launchArgs); err != nil {
		return err
	}

	stopStrayAgent(b.Logger)

	for _, class := range bridge.EnabledSocketClasses(b.config.EnableSSH) {
		path, err := b.pathOf(class)
		if err != nil {
			b.Shutdown(err)
			return bridge.NewConfigError(err)
		}
		listener, err := bridge.NewCanonicalSocketListener(b.Logger, path)
		if err != nil {
			b.Shutdown(err)
			return err
		}
		b.listeners = append(b.listeners, listener)
		go b.acceptLoop(class, listener)
	}

	return nil
}

// Cleanup implements bridge.Cleaner.
func (b *Bridge) Cleanup(completionErr error) error {
	for _, l := range b.listeners {
		l.Close()
	}
	return completionErr
}

func (b *Bridge) acceptLoop(class bridge.SocketClass, listener *bridge.CanonicalSocketListener) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			b.DLogf("%s: accept loop exiting: %s", class, err)
			return
		}
		go b.serveClient(class, conn)
	}
}

// serveClient implements the per-client worker from §4.1: read the
// pairing nonce, dial the outer bridge, prefix it, then splice.
func (b *Bridge) serveClient(class bridge.SocketClass, conn net.Conn) {
	nonce, err := bridge.ReadNonceFile(b.config.NoncefilePath)
	if err != nil {
		b.WLogf("%s: pairing nonce unavailable, abandoning client: %s", class, err)
		conn.Close()
		return
	}

	remote := fmt.Sprintf("%s:%d", b.config.RemoteAddress, b.config.Port(class))
	dst, err := bridge.DialWithBackoff("tcp", remote, 5*time.Second)
	if err != nil {
		b.WLogf("%s: connect to outer bridge failed: %s", class, bridge.NewIoError(err))
		conn.Close()
		return
	}

	if _, err := dst.Write(nonce); err != nil {
		b.WLogf("%s: writing pairing nonce failed: %s", class, bridge.NewIoError(err))
		dst.Close()
		conn.Close()
		return
	}

	stats := b.connStats[class]
	stats.Open()
	b.DLogf("%s %s: open", class, stats)
	sent, received := bridge.Splice(conn, dst)
	stats.Close()
	b.DLogf("%s %s: close (%s)", class, stats, bridge.SpliceSummary(sent, received))
}

// stopStrayAgent sends a terminate signal to any process matching
// AgentProcessName. Failure is logged and non-fatal, per §4.1 and the
// ambiguity flagged in Design Note §9 about whether this coarse pkill is
// still desired.
func stopStrayAgent(logger bridge.Logger) {
	out, err := exec.Command("pkill", "-f", AgentProcessName).CombinedOutput()
	if err != nil {
		logger.DLogf("stop stray %s: %s (%s)", AgentProcessName, err, out)
	}
}
