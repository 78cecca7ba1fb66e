// Package salescube is an in-memory columnar sales engine with a
// multi-dimensional filter index.
//
// Tables produced by the ETL worker are loaded from a blob store (local
// directory, S3 or MinIO), indexed once into roaring bitmaps per
// dimension, and then queried by intersecting those bitmaps.
//
// # Quick Start
//
//	ctx := context.Background()
//	eng := salescube.New(salescube.WithBlobStore(blobstore.NewLocalStore("./payload")))
//	if err := eng.Load(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	rows, err := eng.Query(model.TableDetailed, query.Filter{
//	    Suppliers: []string{"707"},
//	    SaleTypes: []string{"1", "9"},
//	})
//
// # Chunked Scans
//
// Long per-row work is split into budgeted batches on a scheduler.Host so
// an interactive caller stays responsive. Batches run only while the host is
// driven; the default host runs through RunHost:
//
//	go eng.RunHost(ctx)
//
//	job, id, err := eng.Scan(model.TableDetailed, filter, func(r dataset.Row, i int) {
//	    total += r.Float(model.FieldValue)
//	}, func() { fmt.Println(total) })
//
// Starting a new scan makes any previous scan stale; stale scans stop at
// their next batch boundary and never call their completion.
//
// # Key Features
//
//   - Columnar tables with per-row overrides
//   - Roaring bitmap indices with cardinality-ordered intersection
//   - Negative result cache for repeated empty filters
//   - Pasta resolution and seller attribution side maps
//   - zstd, lz4 and gzip framed payloads
//   - Concurrent, rate-limited payload loading
package salescube
