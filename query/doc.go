// Package query answers conjunctive filter descriptors against the inverted
// indices of a table.
//
// Every active filter is resolved to a candidate posting list: single-valued
// filters look up one bitmap, multi-select filters OR the bitmaps of their
// values. Candidate lists are intersected smallest first into a working
// bitmap, stopping as soon as it is empty. A single-valued filter whose value
// is not indexed short-circuits to an empty result without touching the
// other dimensions. With no active filter the whole table is returned.
//
// An optional client allow-list is applied last, against each surviving
// row's normalized client key.
//
// Usage:
//
//	e := query.New(table, indices)
//	rows := e.Rows(query.Filter{
//	    Suppliers: []string{"707"},
//	    SaleTypes: []string{"1", "9"},
//	})
package query
