package dataset

import "iter"

// Sequence is a positionally addressable collection of rows.
// Both *Table and *RowArray implement it.
type Sequence interface {
	// Len returns the number of rows.
	Len() int
	// Get returns row i; ok is false when i is out of range.
	Get(i int) (Row, bool)
	// Values materializes every row view.
	Values() []Row
}

var (
	_ Sequence = (*Table)(nil)
	_ Sequence = (*RowArray)(nil)
)

// All returns an iterator over (position, row) pairs.
func All(seq Sequence) iter.Seq2[int, Row] {
	return func(yield func(int, Row) bool) {
		n := seq.Len()
		for i := 0; i < n; i++ {
			r, ok := seq.Get(i)
			if !ok {
				continue
			}
			if !yield(i, r) {
				return
			}
		}
	}
}

// ForEach calls fn for every row in increasing position order.
func ForEach(seq Sequence, fn func(r Row, i int)) {
	for i, r := range All(seq) {
		fn(r, i)
	}
}

// Filter returns the rows matching pred.
func Filter(seq Sequence, pred func(r Row, i int) bool) []Row {
	var out []Row
	for i, r := range All(seq) {
		if pred(r, i) {
			out = append(out, r)
		}
	}
	return out
}

// Some reports whether any row matches pred.
func Some(seq Sequence, pred func(r Row, i int) bool) bool {
	for i, r := range All(seq) {
		if pred(r, i) {
			return true
		}
	}
	return false
}

// Every reports whether all rows match pred. It is true for an empty sequence.
func Every(seq Sequence, pred func(r Row, i int) bool) bool {
	for i, r := range All(seq) {
		if !pred(r, i) {
			return false
		}
	}
	return true
}

// Find returns the first row matching pred.
func Find(seq Sequence, pred func(r Row, i int) bool) (Row, bool) {
	for i, r := range All(seq) {
		if pred(r, i) {
			return r, true
		}
	}
	return Row{}, false
}

// Map applies fn to every row and collects the results.
func Map[T any](seq Sequence, fn func(r Row, i int) T) []T {
	out := make([]T, 0, seq.Len())
	for i, r := range All(seq) {
		out = append(out, fn(r, i))
	}
	return out
}

// Reduce folds the rows left to right.
func Reduce[T any](seq Sequence, init T, fn func(acc T, r Row, i int) T) T {
	acc := init
	for i, r := range All(seq) {
		acc = fn(acc, r, i)
	}
	return acc
}
