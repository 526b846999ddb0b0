package bridge

import "testing"

func TestSocketClassIndexModeAndString(t *testing.T) {
	cases := []struct {
		class SocketClass
		index int
		mode  ForwardMode
		name  string
	}{
		{AgentMain, 0, ForwardAssuan, "main"},
		{AgentExtra, 1, ForwardAssuan, "extra"},
		{AgentBrowser, 2, ForwardAssuan, "browser"},
		{AgentSsh, 3, ForwardWindowsMessageCopy, "ssh"},
	}
	for _, c := range cases {
		if got := c.class.Index(); got != c.index {
			t.Errorf("%s.Index() = %d, want %d", c.class, got, c.index)
		}
		if got := c.class.Mode(); got != c.mode {
			t.Errorf("%s.Mode() = %v, want %v", c.class, got, c.mode)
		}
		if got := c.class.String(); got != c.name {
			t.Errorf("class.String() = %q, want %q", got, c.name)
		}
	}
}

func TestSocketClassStringOutOfRange(t *testing.T) {
	var c SocketClass = 99
	if got := c.String(); got == "main" || got == "extra" || got == "browser" || got == "ssh" {
		t.Errorf("out-of-range SocketClass.String() = %q, want a fallback form", got)
	}
}

func TestEnabledSocketClasses(t *testing.T) {
	without := EnabledSocketClasses(false)
	if len(without) != 3 {
		t.Fatalf("len(EnabledSocketClasses(false)) = %d, want 3", len(without))
	}
	for _, c := range without {
		if c == AgentSsh {
			t.Error("EnabledSocketClasses(false) included AgentSsh")
		}
	}

	with := EnabledSocketClasses(true)
	if len(with) != 4 {
		t.Fatalf("len(EnabledSocketClasses(true)) = %d, want 4", len(with))
	}
	if with[3] != AgentSsh {
		t.Errorf("EnabledSocketClasses(true)[3] = %s, want AgentSsh", with[3])
	}
}
