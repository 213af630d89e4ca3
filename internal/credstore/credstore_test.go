package credstore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestFileStore(t *testing.T) Store {
	t.Helper()
	dir, err := os.MkdirTemp("", "cloudsentry-credstore-test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return NewFileStore(dir)
}

func TestFileStoreSaveLoadDelete(t *testing.T) {
	store := newTestFileStore(t)

	creds := Credentials{
		AccessKeyID:     "AKIAEXAMPLE",
		SecretAccessKey: "secret",
		SessionToken:    "token",
	}
	if err := store.Save("audit", creds); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load("audit")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded != creds {
		t.Errorf("Load returned %+v, want %+v", loaded, creds)
	}

	if err := store.Delete("audit"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Load("audit"); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("Load after delete error = %v, want ErrProfileNotFound", err)
	}
}

func TestFileStoreLoadMissingProfile(t *testing.T) {
	store := newTestFileStore(t)
	if _, err := store.Load("nope"); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("error = %v, want ErrProfileNotFound", err)
	}
}

func TestFileStoreDeleteMissingProfileIsNoop(t *testing.T) {
	store := newTestFileStore(t)
	if err := store.Delete("nope"); err != nil {
		t.Fatalf("Delete of missing profile failed: %v", err)
	}
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	store := newTestFileStore(t)
	for _, profile := range []string{"", "../escape", "a/b", "/abs"} {
		if err := store.Save(profile, Credentials{}); err == nil {
			t.Errorf("Save accepted invalid profile %q", profile)
		}
		if _, err := store.Load(profile); err == nil {
			t.Errorf("Load accepted invalid profile %q", profile)
		}
	}
}

func TestFileStorePermissions(t *testing.T) {
	dir, err := os.MkdirTemp("", "cloudsentry-credstore-perm-test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	store := NewFileStore(dir)
	if err := store.Save("audit", Credentials{AccessKeyID: "AKIAEXAMPLE"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, "cloudsentry_creds_audit.json"))
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("credential file mode = %o, want 600", perm)
	}
}

func TestFileStoreIsAvailable(t *testing.T) {
	if !newTestFileStore(t).IsAvailable() {
		t.Error("file store reports unavailable")
	}
}

func TestDefaultDirIsPersistent(t *testing.T) {
	dir := DefaultDir()
	if dir == "" {
		t.Fatal("DefaultDir returned an empty path")
	}
	if filepath.Base(dir) != "cloudsentry" {
		t.Errorf("DefaultDir = %q, want a cloudsentry subdirectory", dir)
	}
	if configDir, err := os.UserConfigDir(); err == nil {
		if dir != filepath.Join(configDir, "cloudsentry") {
			t.Errorf("DefaultDir = %q, want %q", dir, filepath.Join(configDir, "cloudsentry"))
		}
	}
}
