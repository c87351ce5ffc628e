package userdb

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eikendev/authme/internal/protocol"
)

func TestRegisterAndVerify(t *testing.T) {
	db := New()

	if !db.Register("alice", "pw1") {
		t.Fatal("first registration should succeed")
	}
	if db.Register("alice", "pw2") {
		t.Fatal("duplicate username should be rejected")
	}
	if !db.Verify("alice", "pw1") {
		t.Fatal("correct password should verify")
	}
	if db.Verify("alice", "wrong") {
		t.Fatal("wrong password should not verify")
	}
	if db.Verify("bob", "pw1") {
		t.Fatal("unknown user should not verify")
	}
}

func TestRegisterRejectsBadFields(t *testing.T) {
	db := New()
	if db.Register("bob;x", "pw") {
		t.Fatal("username containing ';' must be rejected")
	}
	if db.Register("", "pw") {
		t.Fatal("empty username must be rejected")
	}
	if db.Register("carol", "") {
		t.Fatal("empty password must be rejected")
	}
	if db.Exists("bob;x") || db.Exists("carol") {
		t.Fatal("rejected registrations must not leave a partial record")
	}
}

func TestRegisterStripsWhitespace(t *testing.T) {
	db := New()
	if !db.Register("  alice  ", "  pw1  ") {
		t.Fatal("registration with surrounding whitespace should succeed")
	}
	if !db.Verify("alice", "pw1") {
		t.Fatal("stored fields should be stripped of whitespace")
	}
}

func TestSecretReadWrite(t *testing.T) {
	db := New()
	db.Register("alice", "pw1")

	secret, ok := db.ReadSecret("alice")
	if !ok || secret != "" {
		t.Fatalf("fresh user should have an empty-but-present secret, got (%q, %v)", secret, ok)
	}

	if !db.WriteSecret("alice", "hunter2") {
		t.Fatal("writing a valid secret should succeed")
	}
	secret, ok = db.ReadSecret("alice")
	if !ok || secret != "hunter2" {
		t.Fatalf("ReadSecret = (%q, %v), want (hunter2, true)", secret, ok)
	}

	if db.WriteSecret("alice", "bad;secret") {
		t.Fatal("a secret containing ';' must be rejected")
	}
	if db.WriteSecret("bob", "whatever") {
		t.Fatal("writing a secret for an unknown user must fail")
	}

	oversize := strings.Repeat("a", protocol.MaxSecretLen+1)
	if db.WriteSecret("alice", oversize) {
		t.Fatal("a secret longer than MaxSecretLen must be rejected")
	}
	secret, ok = db.ReadSecret("alice")
	if !ok || secret != "hunter2" {
		t.Fatalf("a rejected oversize write must not change the stored secret, got (%q, %v)", secret, ok)
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "authme.db")

	seed := New()
	seed.Register("alice", "pw1")
	seed.WriteSecret("alice", "hunter2")
	seed.Register("bob", "pw2")
	seed.path = path
	if err := seed.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded := New()
	if err := loaded.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Path() != path {
		t.Fatalf("Path() = %q, want %q (load should enable persistence)", loaded.Path(), path)
	}

	secret, ok := loaded.ReadSecret("alice")
	if !ok || secret != "hunter2" {
		t.Fatalf("ReadSecret(alice) = (%q, %v), want (hunter2, true)", secret, ok)
	}
	if !loaded.Verify("bob", "pw2") {
		t.Fatal("bob's credentials should survive the round trip")
	}
}

func TestLoadHaltsOnInvalidLineAndDisablesSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "authme.db")
	if err := os.WriteFile(path, []byte("alice;pw1;\n;badpassword;\n"), 0600); err != nil {
		t.Fatal(err)
	}

	db := New()
	if err := db.Load(path); err != nil {
		t.Fatalf("Load should not itself error on a malformed line: %v", err)
	}
	if db.Path() != "" {
		t.Fatal("a malformed line must disable persistence (Path() should be empty)")
	}
	if !db.Exists("alice") {
		t.Fatal("records parsed before the bad line must be retained")
	}

	if err := db.Save(); err != nil {
		t.Fatalf("Save should be a no-op, not error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "alice;pw1;\n;badpassword;\n" {
		t.Fatal("Save must not overwrite the file once persistence is disabled")
	}
}
