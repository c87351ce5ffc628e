// Package client implements the authme client side of spec.md §4: the
// request/response helpers built on internal/channel.ClientExchange,
// and the post-login instruction menu.
package client

import (
	"fmt"

	"github.com/eikendev/authme/internal/channel"
	"github.com/eikendev/authme/internal/protocol"
)

// Client wraps an open channel with one method per request type the
// protocol supports. A Client tracks the session id returned by a
// successful Login so later Logout/WriteSecret/ReadSecret calls can
// present it without the caller threading it through by hand.
type Client struct {
	ch        *channel.Channel
	username  string
	sessionID string
}

// Open maps the channel the server created. It returns an error if the
// server's frame or semaphores cannot be opened, as when the server is
// not running.
func Open() (*Client, error) {
	ch, err := channel.Open(false)
	if err != nil {
		return nil, fmt.Errorf("client: open channel: %w", err)
	}
	return &Client{ch: ch}, nil
}

// Close unmaps the channel. It does not unlink any named resource;
// only the server owns those (spec.md §5).
func (c *Client) Close() error {
	return c.ch.Close()
}

// Register submits a new username/password pair and reports whether
// the server accepted it.
func (c *Client) Register(username, password string) (bool, error) {
	var ok bool
	err := c.ch.ClientExchange(
		func(pkt protocol.Packet) {
			pkt.SetType(protocol.Registration)
			pkt.SetUsername(username)
			pkt.SetPassword(password)
		},
		func(pkt protocol.Packet) {
			ok = pkt.RequestStatus() == protocol.StatusSuccess
		},
	)
	return ok, err
}

// Login authenticates username/password. On success it records the
// returned session id on c, so the instruction menu can issue
// follow-up requests without re-authenticating.
func (c *Client) Login(username, password string) (bool, error) {
	var ok bool
	err := c.ch.ClientExchange(
		func(pkt protocol.Packet) {
			pkt.SetType(protocol.Login)
			pkt.SetUsername(username)
			pkt.SetPassword(password)
		},
		func(pkt protocol.Packet) {
			ok = pkt.RequestStatus() == protocol.StatusSuccess
			if ok {
				c.username = username
				c.sessionID = pkt.SessionID()
			}
		},
	)
	return ok, err
}

// Logout ends the session Login established.
func (c *Client) Logout() (bool, error) {
	var ok bool
	err := c.ch.ClientExchange(
		func(pkt protocol.Packet) {
			pkt.SetType(protocol.Logout)
			pkt.SetUsername(c.username)
			pkt.SetSessionID(c.sessionID)
		},
		func(pkt protocol.Packet) {
			ok = pkt.RequestStatus() == protocol.StatusSuccess
			if ok {
				c.sessionID = ""
			}
		},
	)
	return ok, err
}

// WriteSecret stores secret under the logged-in session.
func (c *Client) WriteSecret(secret string) (bool, error) {
	var ok bool
	err := c.ch.ClientExchange(
		func(pkt protocol.Packet) {
			pkt.SetType(protocol.SecretWrite)
			pkt.SetUsername(c.username)
			pkt.SetSessionID(c.sessionID)
			pkt.SetSecret(secret)
		},
		func(pkt protocol.Packet) {
			ok = pkt.RequestStatus() == protocol.StatusSuccess
		},
	)
	return ok, err
}

// ReadSecret retrieves the secret stored under the logged-in session.
func (c *Client) ReadSecret() (string, bool, error) {
	var secret string
	var ok bool
	err := c.ch.ClientExchange(
		func(pkt protocol.Packet) {
			pkt.SetType(protocol.SecretRead)
			pkt.SetUsername(c.username)
			pkt.SetSessionID(c.sessionID)
		},
		func(pkt protocol.Packet) {
			ok = pkt.RequestStatus() == protocol.StatusSuccess
			if ok {
				secret = pkt.Secret()
			}
		},
	)
	return secret, ok, err
}
