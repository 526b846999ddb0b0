package bridge

import (
	"os"
	"strconv"
	"strings"
)

// PIDFile models the single-line PID-file interlock used by both bridge
// roles: its presence plus a live process whose command line matches this
// bridge is treated as "already running".
type PIDFile struct {
	Path string
}

// NewPIDFile returns a PIDFile bound to path.
func NewPIDFile(path string) *PIDFile {
	return &PIDFile{Path: path}
}

// Write records the current process id, overwriting any existing content.
func (f *PIDFile) Write() error {
	return os.WriteFile(f.Path, []byte(strconv.Itoa(os.Getpid())), 0644)
}

// Remove deletes the PID file. A missing file is not an error.
func (f *PIDFile) Remove() error {
	err := os.Remove(f.Path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

// Read returns the pid recorded in the file, or 0 if the file does not
// exist or does not contain a valid pid.
func (f *PIDFile) Read() int {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0
	}
	return pid
}

// AlreadyRunning reports whether the PID file names a live process whose
// command line matches cmdlineSubstr, i.e. another instance of this
// bridge. It is the idempotent-start check run at startup (§4.5): when
// true, the caller should exit 0 silently rather than starting a second
// instance.
func (f *PIDFile) AlreadyRunning(cmdlineSubstr string) bool {
	pid := f.Read()
	if pid == 0 {
		return false
	}
	if !processAlive(pid) {
		return false
	}
	return processCommandLineMatches(pid, cmdlineSubstr)
}
