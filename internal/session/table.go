// Package session implements the live-login record set of spec.md
// §4.4: a linearly-scanned set of (username, session id) pairs, appended
// to on Insert and removed from on Remove. The server is single-threaded (spec.md §5: "no internal
// parallelism"), so the table needs no locking of its own.
package session

// Record is one live login.
type Record struct {
	Username  string
	SessionID string
}

// Table is the in-memory session set. The zero value is ready to use.
// Records are never persisted; they are discarded on server exit
// (spec.md §3 "Lifecycles").
type Table struct {
	records []Record
}

// Contains reports whether (username, sessionID) names a live session.
// A username may hold more than one concurrent session (spec.md §3):
// nothing here enforces uniqueness of username alone.
func (t *Table) Contains(username, sessionID string) bool {
	for _, r := range t.records {
		if r.Username == username && r.SessionID == sessionID {
			return true
		}
	}
	return false
}

// Insert appends a new session record. Callers are expected to have
// just minted sessionID from a successful credential check.
func (t *Table) Insert(username, sessionID string) {
	t.records = append(t.records, Record{Username: username, SessionID: sessionID})
}

// Remove deletes the matching (username, sessionID) record, if any,
// and reports whether one was found.
func (t *Table) Remove(username, sessionID string) bool {
	for i, r := range t.records {
		if r.Username == username && r.SessionID == sessionID {
			t.records = append(t.records[:i], t.records[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of live sessions, mainly for diagnostics.
func (t *Table) Len() int {
	return len(t.records)
}
