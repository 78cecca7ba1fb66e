package blobstore

import (
	"context"

	"github.com/hupe1980/salescube/internal/cache"
)

// CachingStore wraps a BlobStore and keeps the content of recently opened
// blobs in memory. Payload files are read whole, so entries are whole blobs.
type CachingStore struct {
	inner BlobStore
	cache *cache.LRU[string, []byte]
}

// NewCachingStore creates a CachingStore holding up to capacity blobs.
// A capacity of 0 or less keeps every blob ever opened.
func NewCachingStore(inner BlobStore, capacity int) *CachingStore {
	if capacity < 0 {
		capacity = 0
	}
	return &CachingStore{
		inner: inner,
		cache: cache.NewLRU[string, []byte](capacity),
	}
}

// Open returns the cached content of name, reading it from the inner store on
// a miss.
func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	if data, ok := s.cache.Get(name); ok {
		return memoryBlob(data), nil
	}
	data, err := Get(ctx, s.inner, name)
	if err != nil {
		return nil, err
	}
	s.cache.Set(name, data)
	return memoryBlob(data), nil
}

// Put writes through and drops the cached copy.
func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	s.invalidate(name)
	return s.inner.Put(ctx, name, data)
}

// Delete deletes through and drops the cached copy.
func (s *CachingStore) Delete(ctx context.Context, name string) error {
	s.invalidate(name)
	return s.inner.Delete(ctx, name)
}

// List delegates to the inner store.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

// Stats returns cache hits and misses.
func (s *CachingStore) Stats() (hits, misses int64) { return s.cache.Stats() }

// Purge drops every cached blob.
func (s *CachingStore) Purge() { s.cache.Clear() }

func (s *CachingStore) invalidate(name string) {
	s.cache.Invalidate(func(key string) bool { return key == name })
}
