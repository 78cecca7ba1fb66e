// Package s3 serves ETL payloads from an S3 bucket.
//
//	store, err := s3.New(ctx, "etl-exports", s3.WithPrefix("sales/"), s3.WithRegion("sa-east-1"))
//	if err != nil {
//		return err
//	}
//	eng := salescube.New(salescube.WithBlobStore(store))
//
// Blobs are read with ranged GETs so resource.Controller can pace them in
// chunks. Small puts carry a CRC32C checksum; payloads above the multipart
// threshold go through the transfer manager. Missing keys map to
// blobstore.ErrNotFound.
package s3
