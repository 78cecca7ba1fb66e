// Package blobstore abstracts where ETL payload files live.
//
// The loader only needs to open a named blob and read it; producers and
// tooling additionally put, list and delete blobs. Implementations must be
// safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-process map, for tests and fixtures
//   - LocalStore: a directory on the local filesystem
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - minio.Store: MinIO and other S3-compatible storage
//   - CachingStore: keeps recently read blobs in memory in front of any store
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// A missing blob must yield an error satisfying errors.Is(err, ErrNotFound).
package blobstore
