// Package outer implements the host-side half of the bridge pair: it
// accepts authenticated TCP connections and forwards them to the native
// agent per socket class, either by splicing to the agent's Assuan-style
// loopback endpoint or by adapting requests through the Windows
// message-copy IPC.
package outer

import (
	"fmt"
	"net"

	"github.com/mhyllander/gpg-bridge-wsl2/bridge"
)

// SSHForwarder is implemented by the Windows message-copy adapter
// (bridge/winmsgcopy). It is injected rather than imported directly so
// this package stays buildable on platforms where the adapter is a stub.
type SSHForwarder interface {
	// Forward runs the full per-client request/response loop described
	// in §4.3 against conn until conn is closed or an unrecoverable
	// adapter error occurs.
	Forward(conn net.Conn)
}

// AssuanDescriptorPath resolves where to find the Assuan descriptor file
// for a non-SSH socket class.
type AssuanDescriptorPath func(class bridge.SocketClass) string

// Bridge is the host-side daemon.
type Bridge struct {
	bridge.ShutdownOnce
	config         *bridge.Config
	descriptorPath AssuanDescriptorPath
	sshForwarder   SSHForwarder
	agentProbeAddr string
	nonce          []byte
	listeners      []net.Listener
	connStats      map[bridge.SocketClass]*bridge.ConnStats
}

// New constructs an outer Bridge.
func New(
	logger bridge.Logger,
	config *bridge.Config,
	descriptorPath AssuanDescriptorPath,
	sshForwarder SSHForwarder,
	agentProbeAddr string,
) *Bridge {
	b := &Bridge{
		config:         config,
		descriptorPath: descriptorPath,
		sshForwarder:   sshForwarder,
		agentProbeAddr: agentProbeAddr,
		connStats:      map[bridge.SocketClass]*bridge.ConnStats{},
	}
	for _, class := range bridge.EnabledSocketClasses(config.EnableSSH) {
		b.connStats[class] = &bridge.ConnStats{}
	}
	b.InitShutdown(logger.Fork("OuterBridge"), b)
	return b
}

// Start probes the agent (best-effort), generates and persists the
// pairing nonce, then opens a TCP listener for each enabled socket class.
func (b *Bridge) Start() error {
	if b.agentProbeAddr != "" && !bridge.ProbeAgent("tcp", b.agentProbeAddr, 3) {
		b.WLogf("agent probe at %s failed; continuing anyway", b.agentProbeAddr)
	}

	nonce, err := bridge.GenerateNonce()
	if err != nil {
		return bridge.NewConfigError(err)
	}
	if err := bridge.WriteNonceFile(b.config.NoncefilePath, nonce); err != nil {
		return bridge.NewConfigError(err)
	}
	b.nonce = nonce

	for _, class := range bridge.EnabledSocketClasses(b.config.EnableSSH) {
		addr := fmt.Sprintf("%s:%d", b.config.WindowsAddress, b.config.Port(class))
		listener, err := net.Listen("tcp", addr)
		if err != nil {
			b.Shutdown(err)
			return bridge.NewConfigError(err)
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
	if err := bridge.RemoveNonceFile(b.config.NoncefilePath); err != nil {
		b.WLogf("failed to remove nonce file: %s", err)
	}
	return completionErr
}

func (b *Bridge) acceptLoop(class bridge.SocketClass, listener net.Listener) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			b.DLogf("%s: accept loop exiting: %s", class, err)
			return
		}
		go b.serveClient(class, conn)
	}
}

// serveClient implements §4.2: authenticate the first 16 bytes against
// the in-memory pairing nonce, then hand off to the class's forwarder.
func (b *Bridge) serveClient(class bridge.SocketClass, conn net.Conn) {
	ok, err := bridge.ReadExactPrefix(conn, b.nonce)
	if err != nil || !ok {
		b.ELogf("%s: pairing authentication failed from %s: %v", class, conn.RemoteAddr(), err)
		conn.Close()
		return
	}

	if class.Mode() == bridge.ForwardWindowsMessageCopy {
		b.sshForwarder.Forward(conn)
		return
	}

	descPath := b.descriptorPath(class)
	desc, err := bridge.ReadAssuanDescriptor(descPath)
	if err != nil {
		b.ELogf("%s: %s", class, err)
		conn.Close()
		return
	}

	stats := b.connStats[class]
	remote := fmt.Sprintf("127.0.0.1:%d", desc.Port)
	bridge.DialAndSplice(b.Logger, stats, conn, "tcp", remote, desc.Nonce)
}
