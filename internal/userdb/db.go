// Package userdb implements the in-memory user record set of spec.md
// §4.5 and its line-oriented text-file codec: one record per line,
// fields separated by ';', rows kept in insertion order.
package userdb

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/eikendev/authme/internal/protocol"
)

// Record is one user row: username, password, and an optional secret.
// A newly registered user's secret is "".
type Record struct {
	Username string
	Password string
	Secret   string
}

// DB is the in-memory, insertion-ordered user table plus the path it
// was loaded from (and is saved back to). The zero value is ready to
// use as a memory-only database.
//
// The dispatcher that mutates it runs single-threaded per spec.md §5,
// but internal/server.Checkpoint saves the table from a separate
// cron-driven goroutine, so every access is guarded by mu.
type DB struct {
	mu      sync.Mutex
	records []*Record
	path    string
}

// New returns an empty, memory-only database.
func New() *DB {
	return &DB{}
}

// Path returns the file the database will be saved to on shutdown, or
// "" if persistence is disabled (no -l flag, or a parse failure during
// Load disabled it).
func (d *DB) Path() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.path
}

// Exists reports whether username is already registered.
func (d *DB) Exists(username string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.find(username) != nil
}

// find scans for username. Callers must hold mu.
func (d *DB) find(username string) *Record {
	for _, r := range d.records {
		if r.Username == username {
			return r
		}
	}
	return nil
}

// Register adds a new user, stripping leading/trailing whitespace from
// both fields first. It rejects empty fields, fields containing '\n'
// or ';', and duplicate usernames, reporting false in every rejection
// case. Username/password comparisons use the full string in both
// Register and Verify — the original C implementation compared 33
// bytes here but only 32 in verify_credentials, a latent bug spec.md
// §9 flags; this implementation uses the same full-string comparison
// everywhere so the two can never disagree.
func (d *DB) Register(username, password string) bool {
	username = stripField(username)
	password = stripField(password)

	if !isValidField(username, false) || !isValidField(password, false) {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.find(username) != nil {
		return false
	}

	d.records = append(d.records, &Record{Username: username, Password: password})
	return true
}

// Verify reports whether password is the stored password for username.
func (d *DB) Verify(username, password string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	r := d.find(username)
	return r != nil && r.Password == password
}

// ReadSecret returns the stored secret for username and true, or ""
// and false if username is unknown. An empty-but-present secret
// returns ("", true).
func (d *DB) ReadSecret(username string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	r := d.find(username)
	if r == nil {
		return "", false
	}
	return r.Secret, true
}

// WriteSecret strips whitespace from secret and, if it is free of '\n'
// and ';' (empty is allowed) and no longer than protocol.MaxSecretLen,
// stores it for username. It reports false if the secret is invalid,
// oversize, or the user is unknown (spec.md §7: "oversize secret" is a
// validation failure alongside the others, not a silent truncation).
func (d *DB) WriteSecret(username, secret string) bool {
	secret = stripField(secret)
	if !isValidField(secret, true) || len(secret) > protocol.MaxSecretLen {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	r := d.find(username)
	if r == nil {
		return false
	}
	r.Secret = secret
	return true
}

// Load replaces the in-memory table with the contents of path,
// parsing "username;password;secret" lines. If a line's username or
// password fails validation, loading halts immediately: every record
// parsed up to that point is kept, but Path() becomes "" so a
// subsequent Save is a no-op and the malformed file is never
// overwritten (spec.md §4.5 / §7).
func (d *DB) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("userdb: open %q: %w", path, err)
	}
	defer f.Close()

	var records []*Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		username, password, secret := splitRecordLine(scanner.Text())
		if !isValidField(username, false) || !isValidField(password, false) {
			d.mu.Lock()
			d.records = records
			d.path = ""
			d.mu.Unlock()
			return nil
		}
		records = append(records, &Record{Username: username, Password: password, Secret: secret})
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("userdb: read %q: %w", path, err)
	}

	d.mu.Lock()
	d.records = records
	d.path = path
	d.mu.Unlock()
	return nil
}

// Save rewrites the database file at Path() with every record in
// insertion order. It is a no-op if persistence is disabled.
func (d *DB) Save() error {
	d.mu.Lock()
	path := d.path
	records := make([]Record, len(d.records))
	for i, r := range d.records {
		records[i] = *r
	}
	d.mu.Unlock()

	if path == "" {
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("userdb: create %q: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, r := range records {
		if _, err := fmt.Fprintf(w, "%s;%s;%s\n", r.Username, r.Password, r.Secret); err != nil {
			return fmt.Errorf("userdb: write %q: %w", path, err)
		}
	}
	return w.Flush()
}

func splitRecordLine(line string) (username, password, secret string) {
	parts := strings.SplitN(line, ";", 3)
	if len(parts) > 0 {
		username = parts[0]
	}
	if len(parts) > 1 {
		password = parts[1]
	}
	if len(parts) > 2 {
		secret = parts[2]
	}
	return
}

// stripField removes leading/trailing whitespace, mirroring the
// original str_strip (spec.md §9 notes every frame field is bounded;
// this is the database-side equivalent for codec fields).
func stripField(s string) string {
	return strings.TrimSpace(s)
}

// isValidField rejects the database/frame delimiter characters and,
// unless allowEmpty, the empty string.
func isValidField(s string, allowEmpty bool) bool {
	if s == "" {
		return allowEmpty
	}
	return !strings.ContainsAny(s, "\n;")
}
