// Package payload decodes the table files produced by the ETL worker.
//
// Large tables arrive in columnar form:
//
//	{"columns": ["CODCLI", ...], "values": {"CODCLI": [...], ...}, "length": 123}
//
// and small catalogs as plain arrays of row objects. Files may be
// zstd- or lz4-framed; Decode recognizes both by their frame magic.
//
// Loader fetches a set of tables from a blobstore.BlobStore concurrently,
// bounded by an internal/resource Controller, and validates that each table
// carries the columns the index builder relies on.
package payload
