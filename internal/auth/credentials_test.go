package auth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileCredentialStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.yaml")
	store := NewFileCredentialStore(path)

	if _, err := store.Load(); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Load on empty store: expected ErrNotExist, got %v", err)
	}

	saved := &Credentials{
		Token:   "tok",
		UserID:  "user-1",
		Email:   "a@b.c",
		APIURL:  "http://localhost:3000",
		SavedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	if err := store.Save(saved); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("mode = %o, want 600", perm)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Token != saved.Token || loaded.UserID != saved.UserID || loaded.Email != saved.Email ||
		loaded.APIURL != saved.APIURL || !loaded.SavedAt.Equal(saved.SavedAt) {
		t.Errorf("loaded %+v, want %+v", loaded, saved)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Errorf("second Clear should be a no-op, got %v", err)
	}
	if _, err := store.Load(); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load after Clear: expected ErrNotExist, got %v", err)
	}
}

func TestFileCredentialStore_EmptyToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.yaml")
	if err := os.WriteFile(path, []byte("user_id: u\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileCredentialStore(path).Load(); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist for tokenless file, got %v", err)
	}
}
