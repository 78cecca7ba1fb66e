package payload

import (
	"github.com/hupe1980/salescube/dataset"
)

// Columnar is the wire form of a columnar table.
type Columnar struct {
	Columns []string         `json:"columns"`
	Values  map[string][]any `json:"values"`
	Length  int              `json:"length"`
}

// Table builds a dataset table over the decoded vectors. Columns listed
// without values read as absent.
func (c *Columnar) Table() *dataset.Table {
	values := make(map[string]dataset.Column, len(c.Values))
	for name, vec := range c.Values {
		values[name] = dataset.ColumnOf(vec)
	}
	length := c.Length
	if length == 0 && len(c.Columns) > 0 {
		// Tolerate writers that omit the length.
		for _, vec := range c.Values {
			length = max(length, len(vec))
		}
	}
	columns := c.Columns
	if columns == nil {
		columns = []string{}
	}
	return dataset.NewTable(columns, values, length)
}

// FromTable captures the effective values of t, overrides included.
// Absent values encode as null.
func FromTable(t *dataset.Table) *Columnar {
	cols := t.Columns()
	n := t.Len()
	c := &Columnar{
		Columns: cols,
		Values:  make(map[string][]any, len(cols)),
		Length:  n,
	}
	for _, name := range cols {
		c.Values[name] = make([]any, n)
	}
	for i := 0; i < n; i++ {
		r, _ := t.Get(i)
		for _, name := range cols {
			if v, ok := r.Get(name); ok {
				c.Values[name][i] = v
			}
		}
	}
	return c
}
