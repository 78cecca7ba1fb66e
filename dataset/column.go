package dataset

// Column is a typed, positionally addressable vector of field values.
type Column interface {
	// Len returns the number of stored values.
	Len() int
	// Value returns the value at i. ok is false for out-of-range positions and
	// for nil entries.
	Value(i int) (any, bool)
}

// StringColumn stores text values.
type StringColumn []string

// Len implements Column.
func (c StringColumn) Len() int { return len(c) }

// Value implements Column.
func (c StringColumn) Value(i int) (any, bool) {
	if i < 0 || i >= len(c) {
		return nil, false
	}
	return c[i], true
}

// FloatColumn stores numeric values.
type FloatColumn []float64

// Len implements Column.
func (c FloatColumn) Len() int { return len(c) }

// Value implements Column.
func (c FloatColumn) Value(i int) (any, bool) {
	if i < 0 || i >= len(c) {
		return nil, false
	}
	return c[i], true
}

// AnyColumn stores heterogeneous values. nil entries read as absent.
type AnyColumn []any

// Len implements Column.
func (c AnyColumn) Len() int { return len(c) }

// Value implements Column.
func (c AnyColumn) Value(i int) (any, bool) {
	if i < 0 || i >= len(c) {
		return nil, false
	}
	v := c[i]
	return v, v != nil
}

// ColumnOf wraps a raw slice in the matching Column type. Unsupported slice
// types yield nil.
func ColumnOf(v any) Column {
	switch x := v.(type) {
	case Column:
		return x
	case []string:
		return StringColumn(x)
	case []float64:
		return FloatColumn(x)
	case []any:
		return inferColumn(x)
	default:
		return nil
	}
}

// inferColumn narrows a []any to a typed column when every entry shares a
// type. Mixed or partially nil vectors stay AnyColumn.
func inferColumn(vals []any) Column {
	if len(vals) == 0 {
		return AnyColumn(vals)
	}
	allStrings, allFloats := true, true
	for _, v := range vals {
		switch v.(type) {
		case string:
			allFloats = false
		case float64:
			allStrings = false
		default:
			return AnyColumn(vals)
		}
		if !allStrings && !allFloats {
			return AnyColumn(vals)
		}
	}
	if allStrings {
		out := make(StringColumn, len(vals))
		for i, v := range vals {
			out[i] = v.(string)
		}
		return out
	}
	out := make(FloatColumn, len(vals))
	for i, v := range vals {
		out[i] = v.(float64)
	}
	return out
}
