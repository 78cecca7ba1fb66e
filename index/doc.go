// Package index builds inverted indices over sales tables.
//
// A Builder walks a table once, left to right, and produces an Indices value:
//
//	Inverted: map[Dimension]map[value]*roaring.Bitmap   - row ids per value
//	Side maps: seller -> supervisor, client -> last branch,
//	           product -> pasta, supplier -> pasta, ...
//
// Posting lists are Roaring Bitmaps, so the query engine can intersect them
// cheaply and iterate them in ascending row order.
//
// # Normalization
//
// Before a row is indexed, its pasta (top-level supplier classification) is
// resolved by PastaResolver and written back as a row override, configured
// rewrites are applied, and client/seller codes are passed through
// keys.NormalizeKey.
//
// # Lifecycle
//
// Indices are built once per table per load and never maintained
// incrementally. Rebuild them after a reload.
package index
