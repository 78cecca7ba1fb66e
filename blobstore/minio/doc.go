// Package minio provides a BlobStore implementation using the MinIO client.
//
// It works against MinIO and other S3-compatible storage (Ceph, Garage,
// SeaweedFS) without pulling in the AWS SDK configuration chain.
//
// # Basic Usage
//
//	store, err := minioblob.New("localhost:9000", "etl-exports",
//	    minioblob.WithCredentials("minioadmin", "minioadmin"),
//	    minioblob.WithPrefix("sales/"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	eng := salescube.New(salescube.WithBlobStore(store))
package minio
