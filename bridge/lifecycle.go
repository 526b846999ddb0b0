package bridge

import (
	"os"
	"os/signal"
	"syscall"
)

// Lifecycle is the small, once-constructed object that owns process-global
// concerns — signal handling, the PID-file interlock, and the daemonize
// decision — so that no other component relies on module-level mutable
// state (Design Note §9). The bridge roles themselves never touch
// os/signal or the PID file; wiring.go registers each role's Shutdown as
// a Lifecycle cleanup instead.
type Lifecycle struct {
	Logger
	Config   *Config
	PIDFile  *PIDFile
	cleanups []func()
	sigCh    chan os.Signal
}

// NewLifecycle constructs a Lifecycle for cfg. If cfg.PidfilePath is set,
// a PIDFile is created for it; otherwise PIDFile is nil.
func NewLifecycle(logger Logger, cfg *Config) *Lifecycle {
	lc := &Lifecycle{
		Logger: logger.Fork("Lifecycle"),
		Config: cfg,
	}
	if cfg.PidfilePath != "" {
		lc.PIDFile = NewPIDFile(cfg.PidfilePath)
	}
	return lc
}

// AddCleanup registers fn to run once, in LIFO order, when Shutdown is
// called. Cleanup is always idempotent: fn will never run more than once
// even if Shutdown is called more than once.
func (lc *Lifecycle) AddCleanup(fn func()) {
	lc.cleanups = append(lc.cleanups, fn)
}

// CheckAlreadyRunning implements the idempotent-start check from §4.5: if
// the PID file names a live process matching cmdlineSubstr, the caller
// should exit 0 silently rather than starting a second instance.
func (lc *Lifecycle) CheckAlreadyRunning(cmdlineSubstr string) bool {
	if lc.PIDFile == nil {
		return false
	}
	return lc.PIDFile.AlreadyRunning(cmdlineSubstr)
}

// WritePIDFile writes the current pid to the configured PID file. It is a
// ConfigError for Daemonize to be true with no PidfilePath configured;
// Config.Validate already rejects that combination before Start is
// reached.
func (lc *Lifecycle) WritePIDFile() error {
	if lc.PIDFile == nil {
		return nil
	}
	if err := lc.PIDFile.Write(); err != nil {
		return NewConfigError(err)
	}
	lc.AddCleanup(func() {
		if err := lc.PIDFile.Remove(); err != nil {
			lc.WLogf("failed to remove pid file: %s", err)
		}
	})
	return nil
}

// HandleSignals begins watching for the signals appropriate to role
// (inner watches SIGHUP/SIGINT/SIGTERM; outer ignores SIGINT per the
// ambiguity noted in Design Note §9 and watches SIGHUP/SIGTERM) and, when
// one arrives, runs Shutdown and exits the process with status 0. It
// returns immediately; shutdown happens in a background goroutine.
func (lc *Lifecycle) HandleSignals(role Mode) {
	lc.sigCh = make(chan os.Signal, 1)
	if role == ModeOuter {
		signal.Notify(lc.sigCh, syscall.SIGHUP, syscall.SIGTERM)
	} else {
		signal.Notify(lc.sigCh, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	}
	go func() {
		sig := <-lc.sigCh
		lc.ILogf("received signal %s, exiting", sig)
		lc.Shutdown()
		os.Exit(0)
	}()
}

// Shutdown runs every registered cleanup exactly once, most-recently-added
// first. It is safe to call more than once; only the first call has any
// effect.
func (lc *Lifecycle) Shutdown() {
	cleanups := lc.cleanups
	lc.cleanups = nil
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}
