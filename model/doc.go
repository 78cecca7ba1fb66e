// Package model defines core types shared by the salescube packages.
//
// # Identity Types
//
//   - RowID: dense, table-local row position (uint32)
//   - TableName: logical table identifier ("detailed", "history", ...)
//
// Row ids are assigned once when a table is constructed and are never
// renumbered. They are the universal key inside every inverted index.
package model
