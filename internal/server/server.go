package server

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/eikendev/authme/internal/channel"
	"github.com/eikendev/authme/internal/logging"
	"github.com/eikendev/authme/internal/userdb"
)

// Server owns the shared channel, the request dispatcher, and the
// periodic checkpoint, and drives the request loop of spec.md §4.3/§7
// until a shutdown signal arrives.
type Server struct {
	ch         *channel.Channel
	dispatcher *Dispatcher
	checkpoint *Checkpoint
	db         *userdb.DB
}

// New creates the shared channel (as its master) and wires a
// dispatcher and checkpoint around db. db may already be populated
// from a prior Load.
func New(db *userdb.DB) (*Server, error) {
	ch, err := channel.Open(true)
	if err != nil {
		return nil, fmt.Errorf("server: open channel: %w", err)
	}

	return &Server{
		ch:         ch,
		dispatcher: NewDispatcher(db),
		checkpoint: NewCheckpoint(db),
		db:         db,
	}, nil
}

// Run installs SIGINT/SIGTERM handling, starts the checkpoint, and
// processes requests until a signal interrupts the wait on S1. It
// always performs the cleanup of spec.md §7 (unlink resources, final
// save) before returning, regardless of how the loop ended.
func (s *Server) Run() error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	if err := s.checkpoint.Start(); err != nil {
		return fmt.Errorf("server: start checkpoint: %w", err)
	}

	go func() {
		<-sigCh
		logging.Debug("server: shutdown signal received")
		if err := s.ch.Shutdown(); err != nil {
			logging.Debug("server: shutdown: %v", err)
		}
	}()

	var loopErr error
	for {
		if err := s.ch.ServerLoop(s.dispatcher.Handle); err != nil {
			if errors.Is(err, channel.ErrShutdown) {
				break
			}
			loopErr = err
			break
		}
	}

	s.cleanup()
	return loopErr
}

// cleanup releases every named resource and, if persistence is
// enabled, performs one final save so work since the last checkpoint
// tick is not lost (spec.md §7).
func (s *Server) cleanup() {
	s.checkpoint.Stop()

	if err := s.db.Save(); err != nil {
		logging.Debug("server: final save failed: %v", err)
	}

	if err := s.ch.Unlink(); err != nil {
		logging.Debug("server: unlink: %v", err)
	}
	if err := s.ch.Close(); err != nil {
		logging.Debug("server: close: %v", err)
	}
}
