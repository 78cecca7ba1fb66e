package blobstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	*MemoryStore
	opens int
}

func (c *countingStore) Open(ctx context.Context, name string) (Blob, error) {
	c.opens++
	return c.MemoryStore.Open(ctx, name)
}

func TestCachingStore_Open(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{MemoryStore: NewMemoryStore()}
	require.NoError(t, inner.Put(ctx, "detailed.json", []byte("payload")))

	s := NewCachingStore(inner, 4)

	for range 3 {
		data, err := Get(ctx, s, "detailed.json")
		require.NoError(t, err)
		assert.Equal(t, "payload", string(data))
	}
	assert.Equal(t, 1, inner.opens)

	hits, misses := s.Stats()
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(1), misses)
}

func TestCachingStore_PutInvalidates(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{MemoryStore: NewMemoryStore()}
	s := NewCachingStore(inner, 4)

	require.NoError(t, s.Put(ctx, "a", []byte("v1")))
	data, err := Get(ctx, s, "a")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(data))

	require.NoError(t, s.Put(ctx, "a", []byte("v2")))
	data, err = Get(ctx, s, "a")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))

	require.NoError(t, s.Delete(ctx, "a"))
	_, err = s.Open(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCachingStore_Purge(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{MemoryStore: NewMemoryStore()}
	require.NoError(t, inner.Put(ctx, "a", []byte("x")))
	s := NewCachingStore(inner, 0)

	_, err := Get(ctx, s, "a")
	require.NoError(t, err)
	s.Purge()
	_, err = Get(ctx, s, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.opens)
}
