package payload

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/hupe1980/salescube/codec"
	"github.com/hupe1980/salescube/dataset"
	"github.com/hupe1980/salescube/model"
)

// ErrUnknownShape is returned when decoded data is neither a columnar
// object nor an array of rows.
var ErrUnknownShape = errors.New("payload: unknown shape")

// Decode decompresses data if needed and decodes it with c. A JSON object
// becomes a *dataset.Table; a JSON array becomes a *dataset.RowArray.
// A nil codec selects codec.Default.
func Decode(data []byte, c codec.Codec) (dataset.Sequence, error) {
	if c == nil {
		c = codec.Default
	}
	raw, err := Decompress(data)
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return dataset.NewTable([]string{}, nil, 0), nil
	}

	switch raw[0] {
	case '{':
		var col Columnar
		if err := c.Unmarshal(raw, &col); err != nil {
			return nil, fmt.Errorf("payload: decode columnar: %w", err)
		}
		return col.Table(), nil
	case '[':
		var records []dataset.Record
		if err := c.Unmarshal(raw, &records); err != nil {
			return nil, fmt.Errorf("payload: decode rows: %w", err)
		}
		return dataset.NewRowArray(records), nil
	default:
		return nil, ErrUnknownShape
	}
}

// Encode writes seq in its wire form and frames it with comp. Tables
// encode as Columnar, anything else as an array of row objects.
func Encode(seq dataset.Sequence, c codec.Codec, comp Compression) ([]byte, error) {
	if c == nil {
		c = codec.Default
	}
	var v any
	switch s := seq.(type) {
	case *dataset.Table:
		v = FromTable(s)
	case *dataset.RowArray:
		v = s.Records()
	default:
		rows := make([]dataset.Record, 0, seq.Len())
		for _, r := range seq.Values() {
			rows = append(rows, dataset.Record(r.Map()))
		}
		v = rows
	}
	data, err := c.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("payload: encode: %w", err)
	}
	return Compress(data, comp)
}

// RequiredColumns lists the columns the index builder needs per table.
// Tables not listed have no requirement.
var RequiredColumns = map[model.TableName][]string{
	model.TableDetailed: {
		model.FieldClient, model.FieldSellerCode, model.FieldOrderDate,
		model.FieldProduct, model.FieldSupplierCode, model.FieldValue,
		model.FieldSaleType, model.FieldBranch,
	},
	model.TableHistory: {
		model.FieldClient, model.FieldSellerCode, model.FieldSellerName,
		model.FieldSupervisor, model.FieldOrderDate, model.FieldProduct,
		model.FieldSupplierCode, model.FieldValue, model.FieldSaleType,
		model.FieldBranch,
	},
}

// MissingColumnsError reports required columns absent from a table.
type MissingColumnsError struct {
	Table   model.TableName
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("payload: table %q is missing columns %v", e.Table, e.Missing)
}

// Validate checks that seq declares every required column. An empty
// sequence passes: there is nothing to index.
func Validate(name model.TableName, seq dataset.Sequence, required []string) error {
	if len(required) == 0 || seq.Len() == 0 {
		return nil
	}

	present := make(map[string]struct{})
	switch s := seq.(type) {
	case *dataset.Table:
		for _, c := range s.Columns() {
			present[c] = struct{}{}
		}
	default:
		// Row arrays have no schema; sample the first row.
		r, _ := seq.Get(0)
		for _, k := range r.Keys() {
			present[k] = struct{}{}
		}
	}

	var missing []string
	for _, c := range required {
		if _, ok := present[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return &MissingColumnsError{Table: name, Missing: missing}
}

// Bundle is a set of decoded tables keyed by name.
type Bundle struct {
	Tables map[model.TableName]dataset.Sequence
}

// NewBundle returns an empty bundle.
func NewBundle() *Bundle {
	return &Bundle{Tables: make(map[model.TableName]dataset.Sequence)}
}

// Table returns the named table.
func (b *Bundle) Table(name model.TableName) (dataset.Sequence, bool) {
	if b == nil {
		return nil, false
	}
	s, ok := b.Tables[name]
	return s, ok
}

// Names returns the table names in sorted order.
func (b *Bundle) Names() []model.TableName {
	if b == nil {
		return nil
	}
	names := make([]model.TableName, 0, len(b.Tables))
	for n := range b.Tables {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
