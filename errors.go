package salescube

import (
	"errors"

	"github.com/hupe1980/salescube/blobstore"
	"github.com/hupe1980/salescube/payload"
)

var (
	// ErrNotFound is returned when a payload blob does not exist.
	// It is blobstore.ErrNotFound, so store errors match without wrapping.
	ErrNotFound = blobstore.ErrNotFound

	// ErrNotBuilt is returned when a table is queried before it was indexed.
	ErrNotBuilt = errors.New("table not built")

	// ErrUnknownTable is returned for a table name the engine does not hold.
	ErrUnknownTable = errors.New("unknown table")

	// ErrNoBlobStore is returned by Load when no blob store is configured.
	ErrNoBlobStore = errors.New("no blob store configured")

	// ErrHostNotRunnable is returned by RunHost when the host has no loop of
	// its own and is driven by its owner.
	ErrHostNotRunnable = errors.New("scheduler host has no run loop")
)

// LoadError describes a failure to load one table.
//
// The original underlying error can be accessed via errors.Unwrap.
type LoadError = payload.LoadError

// MissingColumnsError reports required columns absent from a loaded table.
type MissingColumnsError = payload.MissingColumnsError
