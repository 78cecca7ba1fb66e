package conv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/salescube/model"
)

func TestRowID(t *testing.T) {
	tests := []struct {
		name    string
		pos     int
		want    model.RowID
		wantErr bool
	}{
		{"zero", 0, 0, false},
		{"small", 42, 42, false},
		{"max", math.MaxUint32, math.MaxUint32, false},
		{"negative", -1, 0, true},
		{"overflow", math.MaxUint32 + 1, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RowID(tt.pos)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrRowOverflow)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.pos, Position(got))
		})
	}
}

func TestCheckRows(t *testing.T) {
	assert.NoError(t, CheckRows(0))
	assert.NoError(t, CheckRows(1000))
	assert.NoError(t, CheckRows(MaxRows))
	assert.ErrorIs(t, CheckRows(MaxRows+1), ErrRowOverflow)
	assert.ErrorIs(t, CheckRows(-1), ErrRowOverflow)
}

func TestBlobSize(t *testing.T) {
	n, err := BlobSize(1 << 20)
	require.NoError(t, err)
	assert.Equal(t, 1<<20, n)

	n, err = BlobSize(0)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = BlobSize(-5)
	assert.ErrorIs(t, err, ErrSizeOverflow)
}
