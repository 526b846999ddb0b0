package bridge

import "testing"

func TestFakeHostLauncherRecordsLaunches(t *testing.T) {
	l := &FakeHostLauncher{}

	h, err := l.Launch("/host/outer", []string{"outer", "-base-port", "6910"})
	if err != nil {
		t.Fatalf("Launch: %s", err)
	}
	if h.Pid() != 1 {
		t.Errorf("Pid() = %d, want 1", h.Pid())
	}

	h2, err := l.Launch("/host/outer", []string{"outer"})
	if err != nil {
		t.Fatalf("Launch: %s", err)
	}
	if h2.Pid() != 2 {
		t.Errorf("second Pid() = %d, want 2", h2.Pid())
	}

	if len(l.Launches) != 2 {
		t.Fatalf("len(Launches) = %d, want 2", len(l.Launches))
	}
	if l.Launches[0].HostPath != "/host/outer" {
		t.Errorf("Launches[0].HostPath = %q, want /host/outer", l.Launches[0].HostPath)
	}
	if len(l.Launches[0].Args) != 3 {
		t.Errorf("Launches[0].Args = %v, want 3 elements", l.Launches[0].Args)
	}
}

func TestFakeHostLauncherReturnsConfiguredError(t *testing.T) {
	wantErr := NewSpawnError(errTestSpawn)
	l := &FakeHostLauncher{Err: wantErr}

	if _, err := l.Launch("/host/outer", nil); err != wantErr {
		t.Errorf("Launch error = %v, want %v", err, wantErr)
	}
}

var errTestSpawn = &testError{"outer executable not found"}

type testError struct{ msg string }

func (e *testError) Error() string { return e.msg }
