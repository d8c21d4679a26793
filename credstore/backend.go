package credstore

import (
	"context"
	"sync"
)

// Backend is the key-value surface a [Store] persists through. Implementations
// must treat Set as a whole-value replacement for the key.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// MemoryBackend is an in-process [Backend]. It is the default when no Redis
// client is supplied and is safe for concurrent use.
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryBackend creates an empty [MemoryBackend].
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		values: make(map[string]string),
	}
}

// Get returns the stored value for key, or false when absent.
func (b *MemoryBackend) Get(_ context.Context, key string) (string, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.values[key]
	return v, ok, nil
}

// Set stores value under key, replacing any prior value.
func (b *MemoryBackend) Set(_ context.Context, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.values[key] = value
	return nil
}

// Delete removes every named key. Missing keys are not an error.
func (b *MemoryBackend) Delete(_ context.Context, keys ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, k := range keys {
		delete(b.values, k)
	}
	return nil
}
