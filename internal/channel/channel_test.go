package channel

import (
	"testing"

	"github.com/eikendev/authme/internal/protocol"
)

func TestClientServerExchange(t *testing.T) {
	server, err := Open(true)
	if err != nil {
		t.Fatalf("Open(server): %v", err)
	}
	defer server.Unlink()
	defer server.Close()

	client, err := Open(false)
	if err != nil {
		t.Fatalf("Open(client): %v", err)
	}
	defer client.Close()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ServerLoop(func(pkt protocol.Packet) {
			if pkt.Type() != protocol.Login || pkt.Username() != "alice" {
				t.Errorf("server saw unexpected packet: type=%v username=%q", pkt.Type(), pkt.Username())
			}
			pkt.SetRequestStatus(protocol.StatusSuccess)
			pkt.SetSessionID("0123456789abcdef0123456789abcdef"[:protocol.SessionIDLen])
		})
	}()

	var gotStatus protocol.RequestStatus
	var gotSessionID string
	err = client.ClientExchange(
		func(pkt protocol.Packet) {
			pkt.SetType(protocol.Login)
			pkt.SetUsername("alice")
			pkt.SetPassword("hunter2")
		},
		func(pkt protocol.Packet) {
			gotStatus = pkt.RequestStatus()
			gotSessionID = pkt.SessionID()
		},
	)
	if err != nil {
		t.Fatalf("ClientExchange: %v", err)
	}
	if gotStatus != protocol.StatusSuccess {
		t.Fatalf("RequestStatus = %v, want success", gotStatus)
	}
	if len(gotSessionID) != protocol.SessionIDLen {
		t.Fatalf("session id length = %d, want %d", len(gotSessionID), protocol.SessionIDLen)
	}

	if err := <-serverErr; err != nil {
		t.Fatalf("ServerLoop: %v", err)
	}
}

func TestClientExchangeAfterShutdownFails(t *testing.T) {
	server, err := Open(true)
	if err != nil {
		t.Fatalf("Open(server): %v", err)
	}
	defer server.Unlink()
	defer server.Close()

	client, err := Open(false)
	if err != nil {
		t.Fatalf("Open(client): %v", err)
	}
	defer client.Close()

	if err := server.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	err = client.ClientExchange(
		func(pkt protocol.Packet) { pkt.SetType(protocol.Logout) },
		func(pkt protocol.Packet) {},
	)
	if err != ErrServerUnavailable {
		t.Fatalf("ClientExchange after Shutdown = %v, want ErrServerUnavailable", err)
	}
}
