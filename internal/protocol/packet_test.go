package protocol

import "testing"

func newTestPacket() Packet {
	return Wrap(make([]byte, FrameSize))
}

func TestPacketRoundTrip(t *testing.T) {
	p := newTestPacket()
	p.SetServerStatus(StatusOnline)
	p.SetRequestStatus(StatusSuccess)
	p.SetType(Login)
	p.SetUsername("alice")
	p.SetPassword("hunter2")
	p.SetSecret("top secret")
	p.SetSessionID("abcdefghijklmnopqrstuvwxyz012345")

	if p.ServerStatus() != StatusOnline {
		t.Errorf("ServerStatus = %v, want online", p.ServerStatus())
	}
	if p.RequestStatus() != StatusSuccess {
		t.Errorf("RequestStatus = %v, want success", p.RequestStatus())
	}
	if p.Type() != Login {
		t.Errorf("Type = %v, want LOGIN", p.Type())
	}
	if got := p.Username(); got != "alice" {
		t.Errorf("Username = %q, want alice", got)
	}
	if got := p.Password(); got != "hunter2" {
		t.Errorf("Password = %q, want hunter2", got)
	}
	if got := p.Secret(); got != "top secret" {
		t.Errorf("Secret = %q, want %q", got, "top secret")
	}
	if got := p.SessionID(); got != "abcdefghijklmnopqrstuvwxyz012345" {
		t.Errorf("SessionID = %q, want session id", got)
	}
}

func TestPacketFieldOverflowForcesTerminator(t *testing.T) {
	p := newTestPacket()
	overlong := make([]byte, MaxUsernameLen+10)
	for i := range overlong {
		overlong[i] = 'a'
	}
	p.SetUsername(string(overlong))

	got := p.Username()
	if len(got) != MaxUsernameLen {
		t.Fatalf("Username() len = %d, want %d (truncated at slot cap)", len(got), MaxUsernameLen)
	}
}

func TestScrubZeroesEverythingButRestoresOnline(t *testing.T) {
	p := newTestPacket()
	p.SetServerStatus(StatusOffline)
	p.SetType(SecretRead)
	p.SetUsername("bob")
	p.SetSecret("hidden")

	p.Scrub()

	if p.ServerStatus() != StatusOnline {
		t.Errorf("ServerStatus after scrub = %v, want online", p.ServerStatus())
	}
	if p.Username() != "" {
		t.Errorf("Username after scrub = %q, want empty", p.Username())
	}
	if p.Secret() != "" {
		t.Errorf("Secret after scrub = %q, want empty", p.Secret())
	}
	if p.Type() != Registration {
		t.Errorf("Type after scrub = %v, want zero value", p.Type())
	}
}

func TestFrameSizeMatchesSpecMinimum(t *testing.T) {
	const specMinimum = 10 + 32 + 32 + 128 + 32
	if FrameSize < specMinimum {
		t.Fatalf("FrameSize = %d, must be >= spec minimum %d", FrameSize, specMinimum)
	}
}
