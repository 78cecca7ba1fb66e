package conv

import (
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/salescube/model"
)

// MaxRows is the largest row count whose positions all fit a RowID.
const MaxRows = math.MaxUint32 + 1

var (
	// ErrRowOverflow is returned when a row position or count does not fit
	// a RowID.
	ErrRowOverflow = errors.New("row position overflows uint32")
	// ErrSizeOverflow is returned when a blob size cannot back a buffer.
	ErrSizeOverflow = errors.New("blob size out of range")
)

// RowID converts a row position to a RowID.
func RowID(pos int) (model.RowID, error) {
	if pos < 0 || uint64(pos) > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d", ErrRowOverflow, pos)
	}
	return model.RowID(pos), nil
}

// CheckRows reports whether a table of n rows can be indexed.
func CheckRows(n int) error {
	if n < 0 || uint64(n) > MaxRows {
		return fmt.Errorf("%w: %d rows", ErrRowOverflow, n)
	}
	return nil
}

// Position converts a RowID back to a row position.
func Position(id model.RowID) int {
	return int(id)
}

// BlobSize converts a storage size to a buffer length.
func BlobSize(size int64) (int, error) {
	if size < 0 || uint64(size) > uint64(math.MaxInt) {
		return 0, fmt.Errorf("%w: %d", ErrSizeOverflow, size)
	}
	return int(size), nil
}
