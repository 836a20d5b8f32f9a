package blobstore

import (
	"context"
	"sync"
)

// MemUploader keeps blobs in memory. Test double and zero-config fallback.
type MemUploader struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func NewMemUploader() *MemUploader {
	return &MemUploader{blobs: make(map[string][]byte)}
}

func (u *MemUploader) Upload(ctx context.Context, path string, content []byte, contentType string) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	stored := make([]byte, len(content))
	copy(stored, content)
	u.blobs[path] = stored
	return "/media/" + path, nil
}

// Blob returns the stored bytes for a path, for assertions in tests.
func (u *MemUploader) Blob(path string) ([]byte, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	b, ok := u.blobs[path]
	return b, ok
}
