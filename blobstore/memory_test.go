package blobstore

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	src := []byte("abc")
	require.NoError(t, s.Put(ctx, "p/one", src))
	require.NoError(t, s.Put(ctx, "p/two", []byte("defg")))
	require.NoError(t, s.Put(ctx, "q", nil))
	src[0] = 'X'

	data, err := Get(ctx, s, "p/one")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))

	empty, err := Get(ctx, s, "q")
	require.NoError(t, err)
	assert.Empty(t, empty)

	names, err := s.List(ctx, "p/")
	require.NoError(t, err)
	assert.Equal(t, []string{"p/one", "p/two"}, names)

	b, err := s.Open(ctx, "p/two")
	require.NoError(t, err)
	buf := make([]byte, 3)
	n, err := b.ReadAt(ctx, buf, 2)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 2, n)
	assert.Equal(t, "fg", string(buf[:n]))

	require.NoError(t, s.Delete(ctx, "p/one"))
	_, err = s.Open(ctx, "p/one")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreFrom(t *testing.T) {
	ctx := context.Background()
	src := map[string][]byte{"detailed.json": []byte("[]"), "clients.json": []byte("{}")}
	s := NewMemoryStoreFrom(src)
	src["detailed.json"][0] = 'X'

	data, err := Get(ctx, s, "detailed.json")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
	assert.Equal(t, int64(4), s.Bytes())

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = s.Open(cctx, "detailed.json")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Put(cctx, "x", nil), context.Canceled)
}
