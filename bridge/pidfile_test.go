package bridge

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func TestPIDFileWriteReadRemove(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.pid")
	f := NewPIDFile(path)

	if got := f.Read(); got != 0 {
		t.Fatalf("Read() on a missing file = %d, want 0", got)
	}

	if err := f.Write(); err != nil {
		t.Fatalf("Write: %s", err)
	}
	if got := f.Read(); got != os.Getpid() {
		t.Errorf("Read() = %d, want %d", got, os.Getpid())
	}

	if err := f.Remove(); err != nil {
		t.Fatalf("Remove: %s", err)
	}
	if err := f.Remove(); err != nil {
		t.Errorf("Remove on an already-removed file returned an error: %s", err)
	}
	if got := f.Read(); got != 0 {
		t.Errorf("Read() after Remove() = %d, want 0", got)
	}
}

func TestPIDFileReadRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.pid")
	if err := os.WriteFile(path, []byte("not-a-pid\n"), 0644); err != nil {
		t.Fatalf("setup: %s", err)
	}
	f := NewPIDFile(path)
	if got := f.Read(); got != 0 {
		t.Errorf("Read() of a garbage pidfile = %d, want 0", got)
	}
}

func TestPIDFileAlreadyRunningMatchesLiveProcess(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.pid")
	f := NewPIDFile(path)
	if err := f.Write(); err != nil {
		t.Fatalf("Write: %s", err)
	}

	substr := filepath.Base(os.Args[0])
	if !f.AlreadyRunning(substr) {
		t.Error("AlreadyRunning(own binary name) = false, want true for the running test process")
	}
	if f.AlreadyRunning("definitely-not-a-real-command-line-substring") {
		t.Error("AlreadyRunning(bogus substring) = true, want false")
	}
}

func TestPIDFileAlreadyRunningFalseForDeadProcess(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.pid")
	// A pid recorded in the file but with no matching live process should
	// report false. Choosing a very large, typically-unassigned pid as a
	// stand-in for "not running" keeps this test host-independent.
	if err := os.WriteFile(path, []byte(strconv.Itoa(1<<30)), 0644); err != nil {
		t.Fatalf("setup: %s", err)
	}
	f := NewPIDFile(path)
	if f.AlreadyRunning("anything") {
		t.Error("AlreadyRunning() = true for an implausible pid, want false")
	}
}
