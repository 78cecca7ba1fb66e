package dataset

import (
	"maps"
	"slices"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/salescube/model"
)

// columnScanLimit is how many leading records FromRecords inspects before
// fixing the declared column order.
const columnScanLimit = 50

// Table is a columnar table with sparse per-row overrides.
//
// Thread safety: concurrent reads are safe; overrides are guarded by a lock
// and attached columns are published copy-on-write.
type Table struct {
	schema atomic.Pointer[schema]
	length int

	mu        sync.RWMutex
	overrides map[model.RowID]*patch
	patched   atomic.Int64 // number of rows carrying a patch
}

// schema is an immutable snapshot of the column set.
type schema struct {
	columns  []string
	declared map[string]struct{}
	values   map[string]Column
}

type patch struct {
	order []string
	vals  map[string]any
}

// NewTable creates a table over the given column vectors. When columns is
// nil, the column order is the sorted key set of values. Columns listed but
// missing from values read as absent.
func NewTable(columns []string, values map[string]Column, length int) *Table {
	if length < 0 {
		length = 0
	}
	if values == nil {
		values = make(map[string]Column)
	}
	if columns == nil {
		columns = make([]string, 0, len(values))
		for name := range values {
			columns = append(columns, name)
		}
		sort.Strings(columns)
	}

	sc := &schema{
		columns:  append([]string(nil), columns...),
		declared: make(map[string]struct{}, len(columns)),
		values:   values,
	}
	for _, c := range sc.columns {
		sc.declared[c] = struct{}{}
	}
	t := &Table{
		length:    length,
		overrides: make(map[model.RowID]*patch),
	}
	t.schema.Store(sc)
	return t
}

// FromRecords builds a table from plain row maps. Column order follows first
// appearance, scanning the leading records first so a partial first row does
// not hide columns.
func FromRecords(records []Record) *Table {
	var columns []string
	seen := make(map[string]struct{})
	addKeys := func(rec Record) {
		keys := make([]string, 0, len(rec))
		for k := range rec {
			if _, ok := seen[k]; !ok {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			seen[k] = struct{}{}
			columns = append(columns, k)
		}
	}
	for i := 0; i < len(records) && i < columnScanLimit; i++ {
		addKeys(records[i])
	}
	for i := columnScanLimit; i < len(records); i++ {
		addKeys(records[i])
	}

	values := make(map[string]Column, len(columns))
	for _, col := range columns {
		raw := make([]any, len(records))
		for i, rec := range records {
			raw[i] = rec[col]
		}
		values[col] = inferColumn(raw)
	}
	return NewTable(columns, values, len(records))
}

// Len returns the number of rows.
func (t *Table) Len() int { return t.length }

// Columns returns the declared column names.
func (t *Table) Columns() []string { return append([]string(nil), t.schema.Load().columns...) }

// Column returns the raw vector for name. Hot loops may read it directly when
// Overridden reports false for the row being read.
func (t *Table) Column(name string) (Column, bool) {
	c, ok := t.schema.Load().values[name]
	return c, ok && c != nil
}

// SetColumn attaches c under name, replacing any vector of that name. A new
// name is appended to the declared columns. Row overrides keep precedence
// over c. Readers holding the previous vector keep seeing it.
func (t *Table) SetColumn(name string, c Column) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur := t.schema.Load()
	next := &schema{
		columns:  cur.columns,
		declared: cur.declared,
		values:   maps.Clone(cur.values),
	}
	next.values[name] = c
	if _, ok := cur.declared[name]; !ok {
		next.columns = append(slices.Clone(cur.columns), name)
		next.declared = maps.Clone(cur.declared)
		next.declared[name] = struct{}{}
	}
	t.schema.Store(next)
}

// Get returns a view of row i. ok is false when i is out of range.
func (t *Table) Get(i int) (Row, bool) {
	if i < 0 || i >= t.length {
		return Row{}, false
	}
	return Row{b: t, pos: i}, true
}

// HasOverrides reports whether any row carries a patch.
func (t *Table) HasOverrides() bool { return t.patched.Load() > 0 }

// OverrideCount returns the number of patched rows.
func (t *Table) OverrideCount() int { return int(t.patched.Load()) }

// Overridden reports whether row i carries a patch.
func (t *Table) Overridden(i int) bool {
	if t.patched.Load() == 0 {
		return false
	}
	t.mu.RLock()
	_, ok := t.overrides[model.RowID(i)]
	t.mu.RUnlock()
	return ok
}

// ClearOverrides drops every patch.
func (t *Table) ClearOverrides() {
	t.mu.Lock()
	t.overrides = make(map[model.RowID]*patch)
	t.patched.Store(0)
	t.mu.Unlock()
}

// Values materializes a view for every row.
//
// This allocates a slice of Len() rows; prefer ForEach or Get on large tables.
func (t *Table) Values() []Row {
	rows := make([]Row, t.length)
	for i := range rows {
		rows[i] = Row{b: t, pos: i}
	}
	return rows
}

// ForEach calls fn for every row in increasing position order.
func (t *Table) ForEach(fn func(r Row, i int)) { ForEach(t, fn) }

// Filter returns the rows matching pred.
func (t *Table) Filter(pred func(r Row, i int) bool) []Row { return Filter(t, pred) }

// Some reports whether any row matches pred.
func (t *Table) Some(pred func(r Row, i int) bool) bool { return Some(t, pred) }

// Every reports whether all rows match pred.
func (t *Table) Every(pred func(r Row, i int) bool) bool { return Every(t, pred) }

// Find returns the first row matching pred.
func (t *Table) Find(pred func(r Row, i int) bool) (Row, bool) { return Find(t, pred) }

func (t *Table) field(pos int, name string) (any, bool) {
	if t.patched.Load() > 0 {
		t.mu.RLock()
		p, ok := t.overrides[model.RowID(pos)]
		if ok {
			if v, ok := p.vals[name]; ok {
				t.mu.RUnlock()
				return v, v != nil
			}
		}
		t.mu.RUnlock()
	}
	c, ok := t.schema.Load().values[name]
	if !ok || c == nil {
		return nil, false
	}
	return c.Value(pos)
}

func (t *Table) setField(pos int, name string, v any) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := model.RowID(pos)
	p, ok := t.overrides[id]
	if !ok {
		p = &patch{vals: make(map[string]any, 1)}
		t.overrides[id] = p
		t.patched.Add(1)
	}
	if _, exists := p.vals[name]; !exists {
		p.order = append(p.order, name)
	}
	p.vals[name] = v
}

func (t *Table) fieldNames(pos int) []string {
	sc := t.schema.Load()
	names := append([]string(nil), sc.columns...)
	if t.patched.Load() == 0 {
		return names
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	if p, ok := t.overrides[model.RowID(pos)]; ok {
		for _, name := range p.order {
			if _, declared := sc.declared[name]; !declared {
				names = append(names, name)
			}
		}
	}
	return names
}
