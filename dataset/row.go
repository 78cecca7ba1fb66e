package dataset

// backend is implemented by every storage strategy that can hand out rows.
type backend interface {
	field(pos int, name string) (any, bool)
	setField(pos int, name string, v any)
	fieldNames(pos int) []string
}

// Row is a view of a single row. It holds no data of its own; reads and writes
// go through to the owning table. The zero Row is the "absent" row: every read
// misses and writes are dropped.
type Row struct {
	b   backend
	pos int
}

// Valid reports whether the row refers to storage.
func (r Row) Valid() bool { return r.b != nil }

// Index returns the row position within its sequence, or -1 for the zero Row.
func (r Row) Index() int {
	if r.b == nil {
		return -1
	}
	return r.pos
}

// Get returns the effective value of field. ok is false when neither an
// override nor a column provides a non-nil value.
func (r Row) Get(field string) (any, bool) {
	if r.b == nil {
		return nil, false
	}
	return r.b.field(r.pos, field)
}

// Set records value for field on this row.
func (r Row) Set(field string, value any) {
	if r.b == nil {
		return
	}
	r.b.setField(r.pos, field, value)
}

// Has reports whether field has an effective value.
func (r Row) Has(field string) bool {
	_, ok := r.Get(field)
	return ok
}

// Keys returns the declared columns followed by any override-only fields.
func (r Row) Keys() []string {
	if r.b == nil {
		return nil
	}
	return r.b.fieldNames(r.pos)
}

// String returns field rendered as text ("" when absent).
func (r Row) String(field string) string {
	v, ok := r.Get(field)
	if !ok {
		return ""
	}
	return AsString(v)
}

// Float returns field as a number (0 when absent or unparsable).
func (r Row) Float(field string) float64 {
	v, ok := r.Get(field)
	if !ok {
		return 0
	}
	return AsFloat(v)
}

// Map materializes the row into a plain map of its effective values.
func (r Row) Map() map[string]any {
	names := r.Keys()
	m := make(map[string]any, len(names))
	for _, name := range names {
		if v, ok := r.Get(name); ok {
			m[name] = v
		}
	}
	return m
}
