package services

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// MockObjectStore keeps objects in memory
type MockObjectStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
	PutErr  error
}

// NewMockObjectStore creates an empty in-memory store
func NewMockObjectStore() *MockObjectStore {
	return &MockObjectStore{objects: make(map[string][]byte)}
}

// Put stores body under key
func (m *MockObjectStore) Put(_ context.Context, key, _ string, body io.Reader) error {
	if m.PutErr != nil {
		return m.PutErr
	}
	content, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.objects[key] = content
	m.mu.Unlock()
	return nil
}

// PresignGet returns a fake link for a stored key
func (m *MockObjectStore) PresignGet(_ context.Context, key string) (string, error) {
	if !m.Exists(key) {
		return "", fmt.Errorf("object not found: %s", key)
	}
	return fmt.Sprintf("https://test-bucket.s3.us-east-1.amazonaws.com/%s?mock=true", key), nil
}

// Delete removes key
func (m *MockObjectStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

// Exists reports whether key is stored
func (m *MockObjectStore) Exists(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[key]
	return ok
}

// Keys returns the stored keys
func (m *MockObjectStore) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	return keys
}
