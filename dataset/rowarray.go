package dataset

import "sort"

// Record is a plain row object, as produced for small catalogs.
type Record map[string]any

// RowArray adapts a slice of records to Sequence. Writes through Row.Set
// modify the record in place.
type RowArray struct {
	rows []Record
}

// NewRowArray wraps records without copying.
func NewRowArray(records []Record) *RowArray {
	return &RowArray{rows: records}
}

// Len returns the number of records.
func (a *RowArray) Len() int { return len(a.rows) }

// Get returns a view of record i.
func (a *RowArray) Get(i int) (Row, bool) {
	if i < 0 || i >= len(a.rows) {
		return Row{}, false
	}
	return Row{b: a, pos: i}, true
}

// Values materializes a view for every record.
func (a *RowArray) Values() []Row {
	rows := make([]Row, len(a.rows))
	for i := range rows {
		rows[i] = Row{b: a, pos: i}
	}
	return rows
}

// Records returns the underlying records.
func (a *RowArray) Records() []Record { return a.rows }

func (a *RowArray) field(pos int, name string) (any, bool) {
	rec := a.rows[pos]
	if rec == nil {
		return nil, false
	}
	v, ok := rec[name]
	return v, ok && v != nil
}

func (a *RowArray) setField(pos int, name string, v any) {
	if a.rows[pos] == nil {
		a.rows[pos] = make(Record, 1)
	}
	a.rows[pos][name] = v
}

func (a *RowArray) fieldNames(pos int) []string {
	rec := a.rows[pos]
	names := make([]string, 0, len(rec))
	for k := range rec {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
