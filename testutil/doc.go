// Package testutil provides testing utilities for salescube.
//
// This package is intended for use in tests and benchmarks only.
// It generates seeded synthetic sales tables shaped like the ETL output
// and computes brute-force ground truth for filter results.
//
// # Synthetic Tables
//
//	rng := testutil.NewRNG(seed)
//	tbl := rng.SalesTable(testutil.DefaultSalesConfig())
//	catalog := rng.ProductCatalog(testutil.DefaultSalesConfig())
//
// # Ground Truth
//
//	want := testutil.MatchingRows(tbl, func(r dataset.Row) bool {
//	    return r.String("CODFOR") == "707"
//	})
package testutil
