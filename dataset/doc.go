// Package dataset stores sales tables in a columnar layout and exposes them
// through lightweight row views.
//
// # Layout
//
// A Table keeps one typed vector per field:
//
//	columns: ["CODCLI", "VLVENDA", "TIPOVENDA"]
//	values:  CODCLI    -> StringColumn{"001", "002", "001"}
//	         VLVENDA   -> FloatColumn{10, 20, 5}
//	         TIPOVENDA -> StringColumn{"1", "1", "9"}
//
// Rows are addressed by their dense position (model.RowID). A Row is a
// (table, position) pair; creating one allocates nothing and reads go straight
// to the column vectors.
//
// # Overrides
//
// Writes through Row.Set never touch the column vectors. They land in a sparse
// per-row patch that readers consult first:
//
//	effective(row, field) = overrides[row][field] ?? values[field][row]
//
// This lets normalization passes re-resolve a handful of fields after load
// without copying columns.
//
// # Sequences
//
// Sequence is the single abstraction shared by columnar tables and plain row
// arrays (RowArray). Index builders, the query engine and the scheduler depend
// on Sequence only. Hot loops may type-assert *Table to read columns directly.
//
// # Thread Safety
//
// Column vectors are immutable after construction and safe for concurrent
// reads. The override map is guarded by a RWMutex; concurrent writes to the
// same row from different traversals are not ordered.
package dataset
