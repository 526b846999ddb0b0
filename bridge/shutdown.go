package bridge

import "sync"

// Cleaner is implemented by a long-lived bridge role (inner.Bridge or
// outer.Bridge) to release its own resources exactly once when shutdown
// begins: closing listeners, removing the nonce file, and so on.
type Cleaner interface {
	// Cleanup runs exactly once with completionErr as the advisory reason
	// shutdown was requested (nil for a clean exit), and returns the
	// actual completion status to hand back to every caller of Shutdown.
	Cleanup(completionErr error) error
}

// ShutdownOnce is the once-only shutdown primitive shared by the inner
// and outer bridges (Design Note §9: "model as a small lifecycle object
// constructed once"). Both a listener that fails to open during Start and
// a signal-driven process exit can race to call Shutdown on the same
// Bridge; ShutdownOnce
// guarantees the bound Cleaner runs exactly once regardless, and that
// every caller — whichever one triggered cleanup or arrived after — blocks
// until it has actually finished and observes the same result.
type ShutdownOnce struct {
	Logger
	once    sync.Once
	cleaner Cleaner
	done    chan struct{}
	err     error
}

// InitShutdown binds this ShutdownOnce to the role it manages. Must be
// called before Shutdown.
func (s *ShutdownOnce) InitShutdown(logger Logger, cleaner Cleaner) {
	s.Logger = logger
	s.cleaner = cleaner
	s.done = make(chan struct{})
}

// Shutdown runs the bound Cleaner's Cleanup exactly once with
// completionErr as the advisory reason, waits for it to finish, and
// returns its result.
func (s *ShutdownOnce) Shutdown(completionErr error) error {
	s.once.Do(func() {
		s.DLogf("shutting down: %v", completionErr)
		s.err = s.cleaner.Cleanup(completionErr)
		s.DLogf("shutdown complete")
		close(s.done)
	})
	<-s.done
	return s.err
}
