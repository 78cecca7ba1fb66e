package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/hupe1980/salescube/blobstore"
	miniostore "github.com/hupe1980/salescube/blobstore/minio"
	s3store "github.com/hupe1980/salescube/blobstore/s3"
)

// sourceSpec is a parsed --source value.
type sourceSpec struct {
	Scheme   string
	Endpoint string
	Bucket   string
	Prefix   string
	Path     string
}

func parseSource(raw string) (sourceSpec, error) {
	if !strings.Contains(raw, "://") {
		return sourceSpec{Scheme: "file", Path: raw}, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return sourceSpec{}, fmt.Errorf("invalid source %q: %w", raw, err)
	}
	path := strings.Trim(u.Path, "/")

	switch u.Scheme {
	case "file":
		return sourceSpec{Scheme: "file", Path: u.Host + u.Path}, nil
	case "s3":
		if u.Host == "" {
			return sourceSpec{}, fmt.Errorf("invalid source %q: missing bucket", raw)
		}
		return sourceSpec{Scheme: "s3", Bucket: u.Host, Prefix: withSlash(path)}, nil
	case "minio":
		bucket, prefix, _ := strings.Cut(path, "/")
		if u.Host == "" || bucket == "" {
			return sourceSpec{}, fmt.Errorf("invalid source %q: want minio://endpoint/bucket[/prefix]", raw)
		}
		return sourceSpec{Scheme: "minio", Endpoint: u.Host, Bucket: bucket, Prefix: withSlash(prefix)}, nil
	default:
		return sourceSpec{}, fmt.Errorf("unsupported source scheme %q", u.Scheme)
	}
}

func withSlash(prefix string) string {
	if prefix == "" || strings.HasSuffix(prefix, "/") {
		return prefix
	}
	return prefix + "/"
}

// openStore opens the blob store named by raw. MinIO credentials come from
// MINIO_ACCESS_KEY and MINIO_SECRET_KEY; MINIO_SECURE=false disables TLS.
func openStore(ctx context.Context, raw string) (blobstore.BlobStore, error) {
	spec, err := parseSource(raw)
	if err != nil {
		return nil, err
	}

	switch spec.Scheme {
	case "s3":
		store, err := s3store.New(ctx, spec.Bucket, s3store.WithPrefix(spec.Prefix))
		if err != nil {
			return nil, err
		}
		return store, nil
	case "minio":
		store, err := miniostore.New(spec.Endpoint, spec.Bucket,
			miniostore.WithPrefix(spec.Prefix),
			miniostore.WithCredentials(os.Getenv("MINIO_ACCESS_KEY"), os.Getenv("MINIO_SECRET_KEY")),
			miniostore.WithSecure(os.Getenv("MINIO_SECURE") != "false"),
		)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		info, err := os.Stat(spec.Path)
		if err != nil {
			return nil, fmt.Errorf("open source: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("open source: %s is not a directory", spec.Path)
		}
		return blobstore.NewLocalStore(spec.Path), nil
	}
}
