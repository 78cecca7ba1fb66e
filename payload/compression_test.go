package payload

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressionRoundTrip(t *testing.T) {
	src := bytes.Repeat([]byte(`{"CODCLI":"123","VLVENDA":10.5}`), 200)

	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD, CompressionGzip} {
		t.Run(c.String(), func(t *testing.T) {
			framed, err := Compress(src, c)
			require.NoError(t, err)
			assert.Equal(t, c, Detect(framed))

			out, err := Decompress(framed)
			require.NoError(t, err)
			assert.Equal(t, src, out)
		})
	}
}

func TestDecompressCorruptFrame(t *testing.T) {
	bad := append(append([]byte(nil), zstdMagic...), 0xff, 0xff, 0xff)
	_, err := Decompress(bad)
	assert.Error(t, err)
}

func TestParseCompression(t *testing.T) {
	tests := []struct {
		in   string
		want Compression
	}{
		{"", CompressionNone},
		{"none", CompressionNone},
		{"LZ4", CompressionLZ4},
		{"zstd", CompressionZSTD},
		{"zst", CompressionZSTD},
		{"gzip", CompressionGzip},
		{" gz ", CompressionGzip},
	}
	for _, tt := range tests {
		got, err := ParseCompression(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseCompression("brotli")
	assert.Error(t, err)
	assert.Equal(t, ".gz", CompressionGzip.Ext())
	assert.Equal(t, ".zst", CompressionZSTD.Ext())
	assert.Equal(t, "", CompressionNone.Ext())
}

func TestDecompressCorruptGzip(t *testing.T) {
	_, err := Decompress(append(append([]byte(nil), gzipMagic...), 0x00, 0x01))
	assert.Error(t, err)
}
