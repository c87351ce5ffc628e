// Package channel implements the half-duplex message-exchange protocol
// of spec.md §4.3 on top of internal/ipc's frame and semaphores: the
// client-side ENTER/ACQUIRE/WRITE/HANDOFF/READ/RELEASE sequence and the
// server-side IDLE/DISPATCH/REPLY/DRAIN/SCRUB loop.
package channel

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/eikendev/authme/internal/ipc"
	"github.com/eikendev/authme/internal/protocol"
)

// ErrServerUnavailable is returned to a client that observes
// server_status == OFFLINE before a blocking step, per spec.md §4.3.
var ErrServerUnavailable = errors.New("server is not available")

// ErrShutdown is returned from ServerLoop when the server's wait on S1
// (wake-server) was interrupted by a signal: the orderly-shutdown path
// of spec.md §4.3/§4.6.
var ErrShutdown = errors.New("shutdown requested")

// Channel bundles the shared frame with the three semaphores that
// orchestrate access to it.
type Channel struct {
	frame *ipc.Frame
	s1    *ipc.Semaphore // wake-server: posted by a client, waited on by the server
	s2    *ipc.Semaphore // wake-client: posted by the server, waited on by the client
	s3    *ipc.Semaphore // client-excl: binary gate serializing clients
}

// Open maps the frame and opens the three semaphores. When create is
// true (the server), all four resources are created fresh with the
// initial semaphore values spec.md §4.2 specifies: (0, 1, 1) for
// (S1, S2, S3). Clients pass create=false and only open what the
// server already created.
func Open(create bool) (*Channel, error) {
	frame, err := ipc.MapFrame(protocol.SharedMemoryName, protocol.FrameSize, create)
	if err != nil {
		return nil, err
	}

	s1, err := ipc.OpenSemaphore(protocol.SemServerWake, 0, create)
	if err != nil {
		return nil, err
	}
	s2, err := ipc.OpenSemaphore(protocol.SemServerReply, 1, create)
	if err != nil {
		return nil, err
	}
	s3, err := ipc.OpenSemaphore(protocol.SemClientExcl, 1, create)
	if err != nil {
		return nil, err
	}

	if create {
		protocol.Wrap(frame.Bytes()).SetServerStatus(protocol.StatusOnline)
	}

	return &Channel{frame: frame, s1: s1, s2: s2, s3: s3}, nil
}

// Packet returns a typed view over the mapped frame.
func (c *Channel) Packet() protocol.Packet {
	return protocol.Wrap(c.frame.Bytes())
}

func (c *Channel) offline() bool {
	return c.Packet().ServerStatus() == protocol.StatusOffline
}

// Close unmaps the frame. Semaphore sets have no per-handle close.
func (c *Channel) Close() error {
	return c.frame.Close()
}

// Unlink removes every named resource from the kernel. Only the
// server, as their master, calls this (spec.md §5).
func (c *Channel) Unlink() error {
	var errs []error
	if err := c.s1.Unlink(); err != nil {
		errs = append(errs, err)
	}
	if err := c.s2.Unlink(); err != nil {
		errs = append(errs, err)
	}
	if err := c.s3.Unlink(); err != nil {
		errs = append(errs, err)
	}
	if err := c.frame.Unlink(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Shutdown marks the server offline in the frame and settles S3 so
// every client blocked in ENTER wakes, observes OFFLINE, and exits
// (spec.md §4.3 cleanup / §4.2 "Settle").
func (c *Channel) Shutdown() error {
	c.Packet().SetServerStatus(protocol.StatusOffline)
	return c.s3.Settle()
}

// ClientExchange drives one full client-side request/response round
// trip: fill composes the outgoing packet while holding the frame
// (WRITE), read extracts the reply fields before the frame is released
// back to the server (READ). Every blocking wait is preceded by a
// server_status check; observing OFFLINE unwinds whatever has already
// been acquired and returns ErrServerUnavailable.
func (c *Channel) ClientExchange(fill, read func(protocol.Packet)) error {
	// ENTER
	if c.offline() {
		return ErrServerUnavailable
	}
	if err := c.s3.Wait(); err != nil {
		return fmt.Errorf("channel: enter: %w", err)
	}
	defer c.s3.Post() // RELEASE (client-excl)

	// ACQUIRE
	if c.offline() {
		return ErrServerUnavailable
	}
	if err := c.s2.Wait(); err != nil {
		return fmt.Errorf("channel: acquire: %w", err)
	}

	// WRITE
	pkt := c.Packet()
	fill(pkt)

	// HANDOFF
	if err := c.s1.Post(); err != nil {
		return fmt.Errorf("channel: handoff: %w", err)
	}
	if c.offline() {
		return ErrServerUnavailable
	}
	if err := c.s2.Wait(); err != nil {
		return fmt.Errorf("channel: handoff: %w", err)
	}

	// READ
	read(pkt)

	// RELEASE (wake-server half; client-excl released via defer above)
	if err := c.s1.Post(); err != nil {
		return fmt.Errorf("channel: release: %w", err)
	}
	return nil
}

// ServerLoop drives the server side of one request: IDLE (wait for a
// client), DISPATCH (handle delegates to the request processor and
// sets the reply fields), REPLY, DRAIN, SCRUB (which ends by posting S2
// so the next client can ACQUIRE the frame). It returns ErrShutdown
// when the IDLE or DRAIN wait on S1 is interrupted by a signal, which
// is the server's only orderly-shutdown trigger (spec.md §4.3).
func (c *Channel) ServerLoop(handle func(protocol.Packet)) error {
	// IDLE
	if err := c.s1.Wait(); err != nil {
		if errors.Is(err, unix.EINTR) {
			return ErrShutdown
		}
		return fmt.Errorf("channel: idle: %w", err)
	}

	// DISPATCH
	pkt := c.Packet()
	handle(pkt)

	// REPLY
	if err := c.s2.Post(); err != nil {
		return fmt.Errorf("channel: reply: %w", err)
	}

	// DRAIN
	if err := c.s1.Wait(); err != nil {
		if errors.Is(err, unix.EINTR) {
			return ErrShutdown
		}
		return fmt.Errorf("channel: drain: %w", err)
	}

	// SCRUB
	pkt.Scrub()

	// Hand the scrubbed frame back: the next client's ACQUIRE waits on S2.
	if err := c.s2.Post(); err != nil {
		return fmt.Errorf("channel: scrub: %w", err)
	}
	return nil
}
