package storage

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"sync"
	"time"

	filesapp "github.com/medrent/backend/internal/application/files"
)

// MemoryObjectStorage keeps objects in memory. Used in development when no
// bucket credentials are configured, and in tests.
type MemoryObjectStorage struct {
	mu      sync.RWMutex
	objects map[string][]byte
	BaseURL string
}

// NewMemoryObjectStorage creates an empty store
func NewMemoryObjectStorage() *MemoryObjectStorage {
	return &MemoryObjectStorage{objects: make(map[string][]byte), BaseURL: "http://localhost/files"}
}

// Put stores a copy of body
func (m *MemoryObjectStorage) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	if key == "" {
		return errEmptyKey
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = buf.Bytes()
	return nil
}

// PresignGet returns a fake URL carrying the expiry
func (m *MemoryObjectStorage) PresignGet(_ context.Context, key string, ttl time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, errEmptyKey
	}
	expires := time.Now().Add(ttl)
	return m.BaseURL + "/" + url.PathEscape(key) + "?expires=" + expires.UTC().Format(time.RFC3339), expires, nil
}

// Delete removes key
func (m *MemoryObjectStorage) Delete(_ context.Context, key string) error {
	if key == "" {
		return errEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// Object returns the stored bytes of key
func (m *MemoryObjectStorage) Object(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.objects[key]
	return b, ok
}

var _ filesapp.ObjectStorage = (*MemoryObjectStorage)(nil)
