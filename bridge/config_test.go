package bridge

import "testing"

func TestConfigApplyDefaults(t *testing.T) {
	c := &Config{}
	c.ApplyDefaults("/default/nonce")

	if c.RemoteAddress != "127.0.0.1" {
		t.Errorf("RemoteAddress = %q, want loopback", c.RemoteAddress)
	}
	if c.WindowsAddress != "0.0.0.0" {
		t.Errorf("WindowsAddress = %q, want wildcard", c.WindowsAddress)
	}
	if c.BasePort != DefaultBasePort {
		t.Errorf("BasePort = %d, want %d", c.BasePort, DefaultBasePort)
	}
	if c.NoncefilePath != "/default/nonce" {
		t.Errorf("NoncefilePath = %q, want the supplied default", c.NoncefilePath)
	}
}

func TestConfigApplyDefaultsDoesNotOverrideExplicitValues(t *testing.T) {
	c := &Config{RemoteAddress: "10.0.0.1", BasePort: 7000, NoncefilePath: "/explicit"}
	c.ApplyDefaults("/default/nonce")

	if c.RemoteAddress != "10.0.0.1" {
		t.Errorf("RemoteAddress was overridden: %q", c.RemoteAddress)
	}
	if c.BasePort != 7000 {
		t.Errorf("BasePort was overridden: %d", c.BasePort)
	}
	if c.NoncefilePath != "/explicit" {
		t.Errorf("NoncefilePath was overridden: %q", c.NoncefilePath)
	}
}

func TestConfigValidateRejectsBadMode(t *testing.T) {
	c := &Config{Mode: Mode(99), BasePort: DefaultBasePort}
	if err := c.Validate(); err == nil {
		t.Error("expected an error for an unrecognized Mode")
	}
}

func TestConfigValidateRequiresPidfileWhenDaemonizing(t *testing.T) {
	c := &Config{Mode: ModeInner, BasePort: DefaultBasePort, Daemonize: true}
	err := c.Validate()
	if err == nil {
		t.Fatal("expected an error for daemonize with no pidfile_path")
	}
	if _, ok := err.(*ConfigError); !ok {
		t.Errorf("err = %T, want *ConfigError", err)
	}
}

func TestConfigValidateAcceptsDaemonizeWithPidfile(t *testing.T) {
	c := &Config{Mode: ModeOuter, BasePort: DefaultBasePort, Daemonize: true, PidfilePath: "/tmp/x.pid"}
	if err := c.Validate(); err != nil {
		t.Errorf("unexpected error: %s", err)
	}
}

func TestConfigValidateRejectsOutOfRangeBasePort(t *testing.T) {
	c := &Config{Mode: ModeInner, BasePort: 65534}
	if err := c.Validate(); err == nil {
		t.Error("expected an error for a base_port too close to 65535")
	}
}

func TestConfigPort(t *testing.T) {
	c := &Config{BasePort: 6910}
	if got := c.Port(AgentMain); got != 6910 {
		t.Errorf("Port(AgentMain) = %d, want 6910", got)
	}
	if got := c.Port(AgentSsh); got != 6913 {
		t.Errorf("Port(AgentSsh) = %d, want 6913", got)
	}
}

func TestModeString(t *testing.T) {
	if ModeInner.String() != "inner" {
		t.Errorf("ModeInner.String() = %q, want \"inner\"", ModeInner.String())
	}
	if ModeOuter.String() != "outer" {
		t.Errorf("ModeOuter.String() = %q, want \"outer\"", ModeOuter.String())
	}
}
