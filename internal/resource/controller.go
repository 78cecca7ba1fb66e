package resource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/hupe1980/salescube/blobstore"
	"github.com/hupe1980/salescube/internal/conv"
)

// ErrMemoryLimitExceeded is returned when memory limit would be exceeded.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// DefaultReadChunk is the read size used by ReadBlob when no IO limit sets a
// smaller one.
const DefaultReadChunk = 1 << 20

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes caps the raw payload bytes held at once.
	// If 0, usage is tracked but not limited.
	MemoryLimitBytes int64

	// MaxConcurrentLoads is the maximum number of tables loaded in parallel.
	// If 0, defaults to 1.
	MaxConcurrentLoads int64

	// IOLimitBytesPerSec is the maximum read throughput from blob storage.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// DefaultConfig returns limits suitable for loading a full payload bundle.
func DefaultConfig() Config {
	return Config{MaxConcurrentLoads: 4}
}

// Controller manages load resources.
type Controller struct {
	cfg Config

	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	loadSem *semaphore.Weighted

	ioLimiter *rate.Limiter
	ioBurst   int
	ioRead    atomic.Int64
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxConcurrentLoads <= 0 {
		cfg.MaxConcurrentLoads = 1
	}

	c := &Controller{
		cfg:     cfg,
		loadSem: semaphore.NewWeighted(cfg.MaxConcurrentLoads),
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioBurst = int(min(cfg.IOLimitBytesPerSec, int64(DefaultReadChunk)))
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), c.ioBurst)
	}

	return c
}

// Config returns the effective configuration.
func (c *Controller) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.cfg
}

// AcquireMemory reserves bytes of the memory budget without blocking.
// Returns ErrMemoryLimitExceeded if the limit would be exceeded.
func (c *Controller) AcquireMemory(bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}
	if c.memSem != nil && !c.memSem.TryAcquire(bytes) {
		return fmt.Errorf("%w: need %d bytes, %d of %d in use",
			ErrMemoryLimitExceeded, bytes, c.memUsed.Load(), c.cfg.MemoryLimitBytes)
	}
	c.memUsed.Add(bytes)
	return nil
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}
	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// AcquireLoad reserves a load slot, blocking until one is free.
func (c *Controller) AcquireLoad(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.loadSem.Acquire(ctx, 1)
}

// TryAcquireLoad reserves a load slot without blocking.
func (c *Controller) TryAcquireLoad() bool {
	if c == nil {
		return true
	}
	return c.loadSem.TryAcquire(1)
}

// ReleaseLoad releases a load slot.
func (c *Controller) ReleaseLoad() {
	if c == nil {
		return
	}
	c.loadSem.Release(1)
}

// AcquireIO waits until the IO limit allows n bytes. Requests larger than the
// bucket are split into bucket-sized waits.
func (c *Controller) AcquireIO(ctx context.Context, n int) error {
	if c == nil || n <= 0 {
		return nil
	}
	c.ioRead.Add(int64(n))
	if c.ioLimiter == nil {
		return nil
	}
	for n > 0 {
		step := min(n, c.ioBurst)
		if err := c.ioLimiter.WaitN(ctx, step); err != nil {
			return err
		}
		n -= step
	}
	return nil
}

// BytesRead returns the total bytes accounted through AcquireIO.
func (c *Controller) BytesRead() int64 {
	if c == nil {
		return 0
	}
	return c.ioRead.Load()
}

// ReadBlob reads the full blob in chunks, waiting on the IO limit before
// each chunk.
func (c *Controller) ReadBlob(ctx context.Context, b blobstore.Blob) ([]byte, error) {
	size := b.Size()
	length, err := conv.BlobSize(size)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, length)

	chunk := int64(DefaultReadChunk)
	if c != nil && c.ioBurst > 0 {
		chunk = int64(c.ioBurst)
	}

	var off int64
	for off < size {
		n := min(chunk, size-off)
		if err := c.AcquireIO(ctx, int(n)); err != nil {
			return nil, err
		}
		read, err := b.ReadAt(ctx, buf[off:off+n], off)
		off += int64(read)
		if err != nil {
			if errors.Is(err, io.EOF) && off == size {
				break
			}
			return nil, err
		}
		if read == 0 {
			return nil, io.ErrUnexpectedEOF
		}
	}
	return buf, nil
}
