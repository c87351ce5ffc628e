// Package server implements the authme server side of spec.md §4 and
// §7: the dispatcher that turns one request packet into a reply, the
// periodic checkpoint that backs it with robfig/cron, and the process
// that wires a channel.Channel, a userdb.DB, and a session.Table
// together and runs the request loop until shutdown.
package server

import (
	"fmt"

	"github.com/eikendev/authme/internal/logging"
	"github.com/eikendev/authme/internal/protocol"
	"github.com/eikendev/authme/internal/session"
	"github.com/eikendev/authme/internal/sessionid"
	"github.com/eikendev/authme/internal/userdb"
)

// Dispatcher holds the two in-memory stores a request may touch.
type Dispatcher struct {
	db       *userdb.DB
	sessions session.Table
}

// NewDispatcher wires a dispatcher around db, creating an empty session
// table. db may be a fresh, memory-only database or one already loaded
// from disk.
func NewDispatcher(db *userdb.DB) *Dispatcher {
	return &Dispatcher{db: db}
}

// Handle classifies pkt by its PacketType, carries out the
// corresponding operation against the user database and session
// table, and overwrites pkt's fields with the reply (spec.md §4.6).
func (d *Dispatcher) Handle(pkt protocol.Packet) {
	logging.Debug("dispatch: %s username=%q", pkt.Type(), pkt.Username())

	switch pkt.Type() {
	case protocol.Registration:
		d.handleRegistration(pkt)
	case protocol.Login:
		d.handleLogin(pkt)
	case protocol.Logout:
		d.handleLogout(pkt)
	case protocol.SecretWrite:
		d.handleSecretWrite(pkt)
	case protocol.SecretRead:
		d.handleSecretRead(pkt)
	default:
		// An unrecognized type is a protocol violation, not a request
		// the client can fail gracefully (spec.md §4.6/§7: "the server
		// aborts"). A well-behaved client never sends one; this can
		// only happen if the wire format has drifted between builds.
		panic(fmt.Sprintf("server: protocol violation: unknown packet type %d", pkt.Type()))
	}
}

func (d *Dispatcher) handleRegistration(pkt protocol.Packet) {
	ok := d.db.Register(pkt.Username(), pkt.Password())
	pkt.SetRequestStatus(statusFor(ok))
}

// handleLogin verifies credentials and, on success, mints a fresh
// session id and records it so later LOGOUT/SECRET_* requests can
// confirm the caller still holds a live session (spec.md §4.4).
func (d *Dispatcher) handleLogin(pkt protocol.Packet) {
	if !d.db.Verify(pkt.Username(), pkt.Password()) {
		pkt.SetRequestStatus(protocol.StatusError)
		pkt.SetSessionID("")
		return
	}

	sid, err := sessionid.Generate()
	if err != nil {
		logging.Debug("login: session id generation failed: %v", err)
		pkt.SetRequestStatus(protocol.StatusError)
		pkt.SetSessionID("")
		return
	}

	d.sessions.Insert(pkt.Username(), sid)
	pkt.SetRequestStatus(protocol.StatusSuccess)
	pkt.SetSessionID(sid)
}

func (d *Dispatcher) handleLogout(pkt protocol.Packet) {
	ok := d.sessions.Remove(pkt.Username(), pkt.SessionID())
	pkt.SetRequestStatus(statusFor(ok))
}

func (d *Dispatcher) handleSecretWrite(pkt protocol.Packet) {
	ok := d.sessions.Contains(pkt.Username(), pkt.SessionID()) &&
		d.db.WriteSecret(pkt.Username(), pkt.Secret())
	pkt.SetRequestStatus(statusFor(ok))
}

func (d *Dispatcher) handleSecretRead(pkt protocol.Packet) {
	if !d.sessions.Contains(pkt.Username(), pkt.SessionID()) {
		pkt.SetRequestStatus(protocol.StatusError)
		pkt.SetSecret("")
		return
	}

	secret, ok := d.db.ReadSecret(pkt.Username())
	if !ok {
		pkt.SetRequestStatus(protocol.StatusError)
		pkt.SetSecret("")
		return
	}

	pkt.SetRequestStatus(protocol.StatusSuccess)
	pkt.SetSecret(secret)
}

func statusFor(ok bool) protocol.RequestStatus {
	if ok {
		return protocol.StatusSuccess
	}
	return protocol.StatusError
}
