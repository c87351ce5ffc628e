package server

import (
	"github.com/robfig/cron/v3"

	"github.com/eikendev/authme/internal/logging"
	"github.com/eikendev/authme/internal/userdb"
)

// checkpointSchedule saves the database once a minute. The original C
// server only ever persists once, via a single atexit handler, so a
// SIGKILL or crash loses every registration and secret write since
// startup; a cron-driven checkpoint is a supplemental feature this
// reimplementation adds on top of spec.md §4.5/§7 when -l names a
// database path.
const checkpointSchedule = "@every 1m"

// Checkpoint periodically saves db to disk while the server runs. It
// is inert if db has no path set (memory-only mode).
type Checkpoint struct {
	db   *userdb.DB
	cron *cron.Cron
}

// NewCheckpoint builds a checkpoint around db. Start is a no-op when
// db.Path() is empty.
func NewCheckpoint(db *userdb.DB) *Checkpoint {
	return &Checkpoint{db: db, cron: cron.New()}
}

// Start begins the periodic save. It is safe to call even when
// persistence is disabled.
func (c *Checkpoint) Start() error {
	if c.db.Path() == "" {
		return nil
	}
	_, err := c.cron.AddFunc(checkpointSchedule, c.save)
	if err != nil {
		return err
	}
	c.cron.Start()
	return nil
}

// Stop halts the scheduler and waits for any in-flight save to
// finish. Callers should still perform a final explicit Save after
// Stop returns, to capture anything written since the last tick.
func (c *Checkpoint) Stop() {
	<-c.cron.Stop().Done()
}

func (c *Checkpoint) save() {
	if err := c.db.Save(); err != nil {
		logging.Debug("checkpoint: save failed: %v", err)
	}
}
