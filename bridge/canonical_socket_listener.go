package bridge

import (
	"net"
	"os"
	"path/filepath"
	"sync"
)

// CanonicalSocketListener is a wrapper around a unix domain socket listener
// bound to a socket class's canonical filesystem path. It holds a flock-style
// lock on a parallel ".lock" file so that a second inner bridge started
// against the same canonical path fails cleanly instead of silently racing
// for the listen socket, while still allowing an orphaned socket file left
// behind by a crashed process to be replaced.
type CanonicalSocketListener struct {
	Logger
	lock         sync.Mutex
	path         string
	lockPath     string
	lockFd       *os.File
	unixListener net.Listener
	closed       bool
	closeErr     error
	done         chan struct{}
}

// Close implements net.Listener Close method, releasing the socket lockfile
// after closing the listen socket
func (l *CanonicalSocketListener) Close() error {
	l.lock.Lock()
	closed := l.closed
	l.closed = true
	l.lock.Unlock()

	if closed {
		<-l.done
	} else {
		var ucloseErr error
		var unlockErr error
		if l.unixListener != nil {
			os.Remove(l.path)
			l.DLogf("Closing actual unix listensocket")
			ucloseErr = l.unixListener.Close()
			l.DLogf("Actual unix listen socket")
		}
		if l.lockFd != nil {
			// Remove the lockfile before we release the lock. This will allow someone else
			// to immediately recreate the lockfile and claim a lock on it, which is fine.
			l.DLogf("unlocking/removing canonical socket lockfile")
			os.Remove(l.lockPath)
			// ignore error from remove
			err := flockUnlock(l.lockFd)
			if err != nil {
				l.lockFd.Close()
				unlockErr = l.DLogErrorf("Unlock of lockfile \"%s\" failed: %s)", l.lockPath, err)
			} else {
				err = l.lockFd.Close()
				if err != nil {
					unlockErr = l.DLogErrorf("Close of lockfile \"%s\" failed: %s)", l.lockPath, err)
				}
			}
			l.DLogf("DONE unlocking/removing canonical socket lockfile")
		}
		l.closeErr = ucloseErr
		if l.closeErr == nil {
			l.closeErr = unlockErr
		}

		close(l.done)
	}

	return l.closeErr
}

// NewCanonicalSocketListener opens a listener on the canonical filesystem
// path for a socket class. A pre-existing socket file at that path is
// unlinked and replaced; a pre-existing non-socket file is a ConfigError.
// A parallel ".lock" file is flock'd so a second listener bound to the
// same canonical path fails immediately rather than racing.
func NewCanonicalSocketListener(logger Logger, path string) (*CanonicalSocketListener, error) {
	l := &CanonicalSocketListener{
		Logger: logger.Fork("CanonicalSocketListener(\"%s\")", path),
	}
	l.done = make(chan struct{})
	if path == "" {
		return nil, NewConfigError(l.Errorf("Empty canonical socket path"))
	}
	abspath, err := filepath.Abs(path)
	if err != nil {
		return nil, NewConfigError(l.Errorf("Invalid canonical socket pathname \"%s\": %s", path, err))
	}
	l.path = abspath
	lockPath := abspath + ".lock"
	l.lockPath = lockPath

	info, err := os.Stat(abspath)
	if err != nil && !os.IsNotExist(err) {
		return nil, l.Errorf("Could not stat canonical socket pathname \"%s\": %s", abspath, err)
	}

	if info != nil && (info.Mode()&os.ModeSocket) == 0 {
		return nil, NewConfigError(l.Errorf("Path \"%s\" exists and is not a socket", abspath))
	}

	lockFd, err := os.OpenFile(lockPath, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return nil, l.Errorf("Unable to open canonical socket lockfile \"%s\": %s", lockPath, err)
	}

	err = flockExclusive(lockFd)
	if err != nil {
		lockFd.Close()
		return nil, l.Errorf("Canonical socket in use (lockfile \"%s\" is locked): %s", lockPath, err)
	}

	l.lockFd = lockFd

	if info != nil {
		err = os.Remove(abspath)
		if err != nil {
			l.Close()
			return nil, l.Errorf("Unable to remove orphaned socket \"%s\"", abspath)
		}
	}

	unixListener, err := net.Listen("unix", abspath)
	if err != nil {
		l.Close()
		return nil, l.Errorf("Listen failed for canonical socket path '%s': %s", path, err)
	}

	l.DLogf("Listening on canonical socket path \"%s\"", abspath)

	l.unixListener = unixListener

	return l, nil
}

func (l *CanonicalSocketListener) String() string {
	return l.Logger.Prefix()
}

// Accept implements net.Listener Accept method, delegating to the unix listen socket
func (l *CanonicalSocketListener) Accept() (net.Conn, error) {
	return l.unixListener.Accept()
}

// Addr implements net.Listener Addr method, delegating to the unix listen socket
func (l *CanonicalSocketListener) Addr() net.Addr {
	return l.unixListener.Addr()
}
