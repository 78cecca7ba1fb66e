package minio

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/salescube/blobstore"
)

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/json", contentType("sales/detailed.json"))
	assert.Equal(t, "application/zstd", contentType("detailed.json.zst"))
	assert.Equal(t, "application/octet-stream", contentType("detailed.lz4"))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(minio.ErrorResponse{Code: "NoSuchKey"}))
	assert.False(t, isNotFound(minio.ErrorResponse{Code: "AccessDenied"}))
}

func TestNew(t *testing.T) {
	s, err := New("localhost:9000", "bucket", WithCredentials("a", "b"), WithPrefix("sales/"))
	require.NoError(t, err)
	assert.Equal(t, "sales/detailed.json", s.key("detailed.json"))
}

// TestStore_Integration requires a running MinIO instance at MINIO_ENDPOINT.
func TestStore_Integration(t *testing.T) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("MINIO_ENDPOINT not set")
	}
	ctx := context.Background()

	store, err := New(endpoint, "salescube-test", WithCredentials("minioadmin", "minioadmin"),
		WithPrefix(fmt.Sprintf("run-%d/", time.Now().UnixNano())))
	require.NoError(t, err)

	exists, err := store.client.BucketExists(ctx, store.bucket)
	if err != nil {
		t.Skipf("MinIO not available: %v", err)
	}
	if !exists {
		require.NoError(t, store.client.MakeBucket(ctx, store.bucket, minio.MakeBucketOptions{}))
	}

	data := []byte("hello minio world")
	require.NoError(t, store.Put(ctx, "test.json", data))

	got, err := blobstore.Get(ctx, store, "test.json")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, names, "test.json")

	require.NoError(t, store.Delete(ctx, "test.json"))
	_, err = store.Open(ctx, "test.json")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
