package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndURL(t *testing.T) {
	dir := t.TempDir()
	store, err := NewImageStore(dir, "http://localhost:8080/images/")
	if err != nil {
		t.Fatalf("NewImageStore failed: %v", err)
	}

	url, err := store.Save([]byte("fake-png"), "recipes", "tarte.png")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if url != "http://localhost:8080/images/recipes/tarte.png" {
		t.Errorf("unexpected url %q", url)
	}

	data, err := os.ReadFile(filepath.Join(dir, "recipes", "tarte.png"))
	if err != nil {
		t.Fatalf("file not written: %v", err)
	}
	if string(data) != "fake-png" {
		t.Errorf("unexpected file content %q", data)
	}
}

// Path components in names must not escape the bucket directory.
func TestSaveSanitizesName(t *testing.T) {
	dir := t.TempDir()
	store, err := NewImageStore(dir, "http://localhost:8080/images")
	if err != nil {
		t.Fatalf("NewImageStore failed: %v", err)
	}

	url, err := store.Save([]byte("x"), "recipes", "../../etc/passwd")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if url != "http://localhost:8080/images/recipes/passwd" {
		t.Errorf("expected sanitized url, got %q", url)
	}

	if _, err := os.Stat(filepath.Join(dir, "recipes", "passwd")); err != nil {
		t.Errorf("sanitized file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(dir), "etc", "passwd")); err == nil {
		t.Error("file escaped the storage directory")
	}
}

func TestNewImageStoreCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "images")
	if _, err := NewImageStore(dir, "http://localhost:8080/images"); err != nil {
		t.Fatalf("NewImageStore failed: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("base directory not created: %v", err)
	}
}
