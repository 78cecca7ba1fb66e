package payload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/salescube/blobstore"
	"github.com/hupe1980/salescube/codec"
	"github.com/hupe1980/salescube/dataset"
	"github.com/hupe1980/salescube/internal/hash"
	"github.com/hupe1980/salescube/internal/resource"
	"github.com/hupe1980/salescube/model"
)

// LoadError describes a failure to load one table.
type LoadError struct {
	Table model.TableName
	Blob  string
	Err   error
}

func (e *LoadError) Error() string {
	if e.Blob == "" {
		return fmt.Sprintf("load %s: %v", e.Table, e.Err)
	}
	return fmt.Sprintf("load %s (%s): %v", e.Table, e.Blob, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// BlobNames returns the candidate blob names for a table, in lookup order:
// plain JSON first, then zstd, lz4 and gzip framed variants.
func BlobNames(name model.TableName) []string {
	base := string(name) + ".json"
	return []string{
		base,
		base + CompressionZSTD.Ext(),
		base + CompressionLZ4.Ext(),
		base + CompressionGzip.Ext(),
	}
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithCodec sets the codec used to decode blobs.
func WithCodec(c codec.Codec) LoaderOption {
	return func(l *Loader) {
		if c != nil {
			l.codec = c
		}
	}
}

// WithController bounds loads by rc's concurrency, memory and IO limits.
func WithController(rc *resource.Controller) LoaderOption {
	return func(l *Loader) { l.rc = rc }
}

// WithLoaderLogger sets the logger.
func WithLoaderLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithPrefix places every table blob under prefix.
func WithPrefix(prefix string) LoaderOption {
	return func(l *Loader) { l.prefix = prefix }
}

// WithRequired replaces the required columns map used for validation.
// A nil map disables validation.
func WithRequired(required map[model.TableName][]string) LoaderOption {
	return func(l *Loader) { l.required = required }
}

// Loader reads tables from a blob store.
type Loader struct {
	store    blobstore.BlobStore
	codec    codec.Codec
	rc       *resource.Controller
	logger   *slog.Logger
	prefix   string
	required map[model.TableName][]string
}

// NewLoader creates a loader over store.
func NewLoader(store blobstore.BlobStore, opts ...LoaderOption) *Loader {
	l := &Loader{
		store:    store,
		codec:    codec.Default,
		rc:       resource.NewController(resource.DefaultConfig()),
		logger:   slog.New(slog.DiscardHandler),
		required: RequiredColumns,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches the named tables concurrently. Tables with no blob in the
// store are skipped; the bundle simply lacks them. The first other failure
// cancels the remaining loads and is returned as a *LoadError.
func (l *Loader) Load(ctx context.Context, names ...model.TableName) (*Bundle, error) {
	bundle := NewBundle()
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range names {
		g.Go(func() error {
			seq, err := l.LoadTable(gctx, name)
			if errors.Is(err, blobstore.ErrNotFound) {
				l.logger.Debug("payload table not found", "table", name)
				return nil
			}
			if err != nil {
				return err
			}
			mu.Lock()
			bundle.Tables[name] = seq
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return bundle, nil
}

// LoadTable fetches, decodes and validates a single table. A table with no
// blob yields an error matching blobstore.ErrNotFound.
func (l *Loader) LoadTable(ctx context.Context, name model.TableName) (dataset.Sequence, error) {
	if err := l.rc.AcquireLoad(ctx); err != nil {
		return nil, &LoadError{Table: name, Err: err}
	}
	defer l.rc.ReleaseLoad()

	start := time.Now()
	blob, blobName, err := l.open(ctx, name)
	if err != nil {
		return nil, &LoadError{Table: name, Err: err}
	}
	defer blob.Close()

	size := blob.Size()
	if err := l.rc.AcquireMemory(size); err != nil {
		return nil, &LoadError{Table: name, Blob: blobName, Err: err}
	}
	defer l.rc.ReleaseMemory(size)

	data, err := l.rc.ReadBlob(ctx, blob)
	if err != nil {
		return nil, &LoadError{Table: name, Blob: blobName, Err: err}
	}
	seq, err := Decode(data, l.codec)
	if err != nil {
		return nil, &LoadError{Table: name, Blob: blobName, Err: err}
	}
	if l.required != nil {
		if err := Validate(name, seq, l.required[name]); err != nil {
			return nil, &LoadError{Table: name, Blob: blobName, Err: err}
		}
	}

	l.logger.Info("payload table loaded",
		"table", name,
		"blob", blobName,
		"bytes", size,
		"crc32c", hash.Hex(hash.CRC32C(data)),
		"rows", seq.Len(),
		"duration", time.Since(start),
	)
	return seq, nil
}

func (l *Loader) open(ctx context.Context, name model.TableName) (blobstore.Blob, string, error) {
	for _, candidate := range BlobNames(name) {
		full := l.prefix + candidate
		b, err := l.store.Open(ctx, full)
		if err == nil {
			return b, full, nil
		}
		if !errors.Is(err, blobstore.ErrNotFound) {
			return nil, full, err
		}
	}
	return nil, "", blobstore.ErrNotFound
}
