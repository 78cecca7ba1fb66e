package dataset

import "github.com/hupe1980/salescube/keys"

// IndexMap maps external keys to row positions of a source sequence, so a key
// lookup yields a hydrated Row without duplicating storage.
//
// Invariant: Get(k) equals source.Get(GetIndex(k)) whenever Has(k).
type IndexMap struct {
	source Sequence
	index  map[string]int
	order  []string
}

// NewIndexMap creates an empty map over source.
func NewIndexMap(source Sequence) *IndexMap {
	return &IndexMap{
		source: source,
		index:  make(map[string]int),
	}
}

// NewIndexMapByField indexes every row of source by the normalized value of
// field. Rows without a value are skipped; later rows win on duplicate keys.
func NewIndexMapByField(source Sequence, field string) *IndexMap {
	m := NewIndexMap(source)
	n := source.Len()
	for i := 0; i < n; i++ {
		r, ok := source.Get(i)
		if !ok {
			continue
		}
		v, ok := r.Get(field)
		if !ok {
			continue
		}
		if key := keys.NormalizeKeyAny(v); key != "" {
			m.Set(key, i)
		}
	}
	return m
}

// Source returns the sequence the map points into.
func (m *IndexMap) Source() Sequence { return m.source }

// Set maps key to pos. Positions outside the source are rejected.
func (m *IndexMap) Set(key string, pos int) bool {
	if pos < 0 || pos >= m.source.Len() {
		return false
	}
	if _, exists := m.index[key]; !exists {
		m.order = append(m.order, key)
	}
	m.index[key] = pos
	return true
}

// Get returns the row mapped to key.
func (m *IndexMap) Get(key string) (Row, bool) {
	pos, ok := m.index[key]
	if !ok {
		return Row{}, false
	}
	return m.source.Get(pos)
}

// GetIndex returns the raw position mapped to key.
func (m *IndexMap) GetIndex(key string) (int, bool) {
	pos, ok := m.index[key]
	return pos, ok
}

// Has reports whether key is mapped.
func (m *IndexMap) Has(key string) bool {
	_, ok := m.index[key]
	return ok
}

// Len returns the number of mapped keys.
func (m *IndexMap) Len() int { return len(m.index) }

// Keys returns the mapped keys in first-insertion order.
func (m *IndexMap) Keys() []string { return append([]string(nil), m.order...) }

// Values materializes every mapped row in key insertion order.
//
// This is a heavy operation on large maps; prefer ForEach or Get.
func (m *IndexMap) Values() []Row {
	rows := make([]Row, 0, len(m.order))
	for _, key := range m.order {
		if r, ok := m.Get(key); ok {
			rows = append(rows, r)
		}
	}
	return rows
}

// ForEach calls fn for every mapped row in key insertion order.
func (m *IndexMap) ForEach(fn func(r Row, key string)) {
	for _, key := range m.order {
		if r, ok := m.Get(key); ok {
			fn(r, key)
		}
	}
}
