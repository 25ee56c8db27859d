package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// LocalStorage keeps blobs on the local filesystem under a single base
// directory. Writes go to a temp file and are renamed into place, hashing
// the stream as it is copied.
type LocalStorage struct {
	baseDir string
}

func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

func (s *LocalStorage) Save(ctx context.Context, storedName string, r io.Reader) (*SaveResult, error) {
	tmpPath := filepath.Join(s.baseDir, fmt.Sprintf("tmp-%d", time.Now().UnixNano()))
	defer os.Remove(tmpPath)

	f, err := os.Create(tmpPath)
	if err != nil {
		return nil, err
	}

	hasher := sha256.New()
	size, err := io.Copy(io.MultiWriter(f, hasher), r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, err
	}

	finalPath := filepath.Join(s.baseDir, storedName)
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return nil, err
	}

	return &SaveResult{
		Path:        finalPath,
		Size:        size,
		ContentHash: hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

func (s *LocalStorage) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	return os.Open(path)
}

func (s *LocalStorage) Delete(ctx context.Context, path string) error {
	return os.Remove(path)
}
