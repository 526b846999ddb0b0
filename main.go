package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mhyllander/gpg-bridge-wsl2/bridge"
)

var help = `
  Usage: gpg-bridge-wsl2 [command] [--help]

  Commands:
    inner - runs the subsystem-side bridge
    outer - runs the Windows-side bridge

  Read more:
    https://github.com/mhyllander/gpg-bridge-wsl2

`

func main() {
	flag.Bool("help", false, "")
	flag.Bool("h", false, "")
	flag.Usage = func() {}
	flag.Parse()

	args := flag.Args()

	subcmd := ""
	if len(args) > 0 {
		subcmd = args[0]
		args = args[1:]
	}

	switch subcmd {
	case "inner":
		runInner(args)
	case "outer":
		runOuter(args)
	default:
		fmt.Fprint(os.Stderr, help)
		os.Exit(1)
	}
}

var commonHelp = `
    -remote-address, Address the inner bridge uses to reach the outer
    bridge (defaults to loopback).

    -windows-address, Bind address on the host side (defaults to the
    wildcard address).

    -base-port, First of 3 or 4 contiguous TCP ports (default %d).

    -enable-ssh, Include the AgentSsh class, adding port base-port+3.

    -noncefile, Shared pairing-nonce file path.

    -logfile, Append target for the redirected standard streams, and so
    for log output, when -daemonize is set. Without -daemonize logs go
    to standard error and this file is not opened.

    -pidfile, PID-file interlock path.

    -daemonize, Detach from the controlling terminal; requires -pidfile.

    -log-level, One of debug, info, warn, error, fatal (default info).

  Exit codes:
    0 normal, or "already running"
    1 configuration error
    2 missing required host executable (outer spawn failure, inner only)

`

func parseCommonFlags(flags *flag.FlagSet, mode bridge.Mode) *bridge.Config {
	remoteAddress := flags.String("remote-address", "", "")
	windowsAddress := flags.String("windows-address", "", "")
	basePort := flags.Int("base-port", bridge.DefaultBasePort, "")
	enableSSH := flags.Bool("enable-ssh", false, "")
	noncefile := flags.String("noncefile", "", "")
	logfile := flags.String("logfile", "", "")
	pidfile := flags.String("pidfile", "", "")
	daemonize := flags.Bool("daemonize", false, "")
	logLevel := flags.String("log-level", "info", "")
	windowsLogfile := flags.String("windows-logfile", "", "")
	windowsPidfile := flags.String("windows-pidfile", "", "")

	flags.Parse(os.Args[2:])

	var level bridge.LogLevel
	if err := level.FromString(*logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "invalid -log-level: %s\n", err)
		os.Exit(1)
	}

	cfg := &bridge.Config{
		Mode:               mode,
		RemoteAddress:      *remoteAddress,
		WindowsAddress:     *windowsAddress,
		BasePort:           *basePort,
		EnableSSH:          *enableSSH,
		NoncefilePath:      *noncefile,
		LogfilePath:        *logfile,
		PidfilePath:        *pidfile,
		Daemonize:          *daemonize,
		LogLevel:           level,
		WindowsLogfilePath: *windowsLogfile,
		WindowsPidfilePath: *windowsPidfile,
	}
	cfg.ApplyDefaults(defaultNoncefilePath())

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}

	return cfg
}

var innerHelp = fmt.Sprintf(`
  Usage: gpg-bridge-wsl2 inner [options]

  Runs the subsystem-side bridge: exposes the filesystem sockets clients
  expect and spawns the outer bridge as a detached host process.

  Options:
`+commonHelp, bridge.DefaultBasePort)

func runInner(args []string) {
	flags := flag.NewFlagSet("inner", flag.ExitOnError)
	flags.Usage = func() {
		fmt.Print(innerHelp)
		os.Exit(1)
	}
	cfg := parseCommonFlags(flags, bridge.ModeInner)

	logger := bridge.NewLogger("inner", cfg.LogLevel)
	lc := bridge.NewLifecycle(logger, cfg)

	if lc.CheckAlreadyRunning("gpg-bridge-wsl2 inner") {
		logger.ILogf("inner bridge already running, exiting")
		os.Exit(0)
	}

	if err := startInnerBridge(logger, lc, cfg); err != nil {
		logger.ELogf("inner bridge failed to start: %s", err)
		if _, ok := err.(*bridge.SpawnError); ok {
			os.Exit(2)
		}
		os.Exit(1)
	}

	lc.HandleSignals(bridge.ModeInner)
	select {}
}

var outerHelp = fmt.Sprintf(`
  Usage: gpg-bridge-wsl2 outer [options]

  Runs the Windows-side bridge: accepts authenticated TCP connections and
  forwards them to the native agent per socket class.

  Options:
`+commonHelp, bridge.DefaultBasePort)

func runOuter(args []string) {
	flags := flag.NewFlagSet("outer", flag.ExitOnError)
	flags.Usage = func() {
		fmt.Print(outerHelp)
		os.Exit(1)
	}
	cfg := parseCommonFlags(flags, bridge.ModeOuter)

	logger := bridge.NewLogger("outer", cfg.LogLevel)
	lc := bridge.NewLifecycle(logger, cfg)

	if lc.CheckAlreadyRunning("gpg-bridge-wsl2 outer") {
		logger.ILogf("outer bridge already running, exiting")
		os.Exit(0)
	}

	if err := startOuterBridge(logger, lc, cfg); err != nil {
		logger.ELogf("outer bridge failed to start: %s", err)
		os.Exit(1)
	}

	lc.HandleSignals(bridge.ModeOuter)
	select {}
}
