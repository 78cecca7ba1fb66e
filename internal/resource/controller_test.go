package resource

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/salescube/blobstore"
)

func TestController_Memory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	require.NoError(t, c.AcquireMemory(50))
	require.NoError(t, c.AcquireMemory(40))
	assert.Equal(t, int64(90), c.MemoryUsage())

	err := c.AcquireMemory(20)
	assert.ErrorIs(t, err, ErrMemoryLimitExceeded)
	assert.Equal(t, int64(90), c.MemoryUsage())

	c.ReleaseMemory(50)
	require.NoError(t, c.AcquireMemory(20))
	assert.Equal(t, int64(60), c.MemoryUsage())
}

func TestController_UnlimitedMemory(t *testing.T) {
	c := NewController(Config{})

	require.NoError(t, c.AcquireMemory(1000))
	c.ReleaseMemory(500)
	assert.Equal(t, int64(500), c.MemoryUsage())
}

func TestController_Loads(t *testing.T) {
	c := NewController(Config{MaxConcurrentLoads: 2})

	require.NoError(t, c.AcquireLoad(t.Context()))
	require.NoError(t, c.AcquireLoad(t.Context()))
	assert.False(t, c.TryAcquireLoad())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.AcquireLoad(ctx), context.DeadlineExceeded)

	c.ReleaseLoad()
	assert.True(t, c.TryAcquireLoad())
}

func TestController_Nil(t *testing.T) {
	var c *Controller

	assert.NoError(t, c.AcquireMemory(1<<40))
	assert.NoError(t, c.AcquireLoad(context.Background()))
	assert.True(t, c.TryAcquireLoad())
	assert.NoError(t, c.AcquireIO(context.Background(), 1<<30))
	assert.Zero(t, c.MemoryUsage())
	assert.Zero(t, c.BytesRead())
	c.ReleaseLoad()
	c.ReleaseMemory(1)

	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "a", []byte("abc")))
	b, err := store.Open(ctx, "a")
	require.NoError(t, err)
	data, err := c.ReadBlob(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))
}

func TestController_AcquireIOLargerThanBurst(t *testing.T) {
	// 1 MiB/s with a 1 MiB bucket: a 1.5 MiB request must be split, not rejected.
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.AcquireIO(ctx, 3<<19))
	assert.Equal(t, int64(3<<19), c.BytesRead())
}

func TestController_ReadBlob(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	payload := bytes.Repeat([]byte("0123456789"), 1000)
	require.NoError(t, store.Put(ctx, "p", payload))

	c := NewController(Config{IOLimitBytesPerSec: 1 << 30})
	b, err := store.Open(ctx, "p")
	require.NoError(t, err)

	data, err := c.ReadBlob(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
	assert.Equal(t, int64(len(payload)), c.BytesRead())
}

func TestController_ReadBlobCancelled(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "p", make([]byte, 4096)))

	// 1 byte/s: the second chunk cannot be granted before the deadline.
	c := NewController(Config{IOLimitBytesPerSec: 1})
	b, err := store.Open(ctx, "p")
	require.NoError(t, err)

	cctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = c.ReadBlob(cctx, b)
	assert.Error(t, err)
}
