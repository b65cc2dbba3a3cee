package auth

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingReturnsEmpty(t *testing.T) {
	store := NewStore(t.TempDir())

	creds, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if creds.Token != "" {
		t.Errorf("expected empty token, got %q", creds.Token)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "state"))

	if err := store.Save(&Credentials{Token: "tok-abc"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	creds, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if creds.Token != "tok-abc" {
		t.Errorf("token: got %q, want %q", creds.Token, "tok-abc")
	}
}

func TestSaveRestrictsPermissions(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	if err := store.Save(&Credentials{Token: "secret"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, "credentials.json"))
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("permissions: got %o, want 0600", perm)
	}
}

func TestClearRemovesToken(t *testing.T) {
	store := NewStore(t.TempDir())

	if err := store.Save(&Credentials{Token: "tok"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	creds, err := store.Load()
	if err != nil {
		t.Fatalf("Load after Clear: %v", err)
	}
	if creds.Token != "" {
		t.Errorf("token survived Clear: %q", creds.Token)
	}

	// Clearing again is not an error.
	if err := store.Clear(); err != nil {
		t.Errorf("second Clear: %v", err)
	}
}
