package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"testing"
)

func TestLocalStorageSaveOpenDelete(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage failed: %v", err)
	}

	data := []byte("Hello, Vaulty!")
	res, err := store.Save(context.Background(), "abc123.txt", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if res.Size != int64(len(data)) {
		t.Errorf("expected size %d, got %d", len(data), res.Size)
	}

	sum := sha256.Sum256(data)
	if res.ContentHash != hex.EncodeToString(sum[:]) {
		t.Errorf("expected hash %s, got %s", hex.EncodeToString(sum[:]), res.ContentHash)
	}

	rc, err := store.Open(context.Background(), res.Path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	got, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("read back %q, want %q", got, data)
	}

	if err := store.Delete(context.Background(), res.Path); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := os.Stat(res.Path); !os.IsNotExist(err) {
		t.Error("blob should be gone after Delete")
	}
}

func TestLocalStorageDeleteMissing(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage failed: %v", err)
	}

	if err := store.Delete(context.Background(), "does-not-exist"); err == nil {
		t.Error("deleting a missing blob should surface an error for the caller to ignore")
	}
}

func TestLocalStorageNoTempLeftovers(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	if err != nil {
		t.Fatalf("NewLocalStorage failed: %v", err)
	}

	if _, err := store.Save(context.Background(), "one.bin", bytes.NewReader([]byte("x"))); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected exactly the stored blob, found %d entries", len(entries))
	}
}
