package query

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/salescube/dataset"
	"github.com/hupe1980/salescube/index"
)

type countingMetrics struct {
	queries atomic.Int64
	shorts  atomic.Int64
}

func (m *countingMetrics) RecordQuery(time.Duration, int) { m.queries.Add(1) }
func (m *countingMetrics) RecordShortCircuit()            { m.shorts.Add(1) }

func salesTable() *dataset.Table {
	return dataset.FromRecords([]dataset.Record{
		{"CODCLI": "001", "CODFOR": "707", "TIPOVENDA": "1", "FILIAL": "5", "CODUSUR": "10", "VLVENDA": 10.0, "VLBONIFIC": 0.0},
		{"CODCLI": "002", "CODFOR": "800", "TIPOVENDA": "9", "FILIAL": "8", "CODUSUR": "10", "VLVENDA": 20.0, "VLBONIFIC": 0.0},
		{"CODCLI": "003", "CODFOR": "800", "TIPOVENDA": "5", "FILIAL": "5", "CODUSUR": "20", "VLVENDA": 0.0, "VLBONIFIC": 7.0},
		{"CODCLI": "001", "CODFOR": "707", "TIPOVENDA": "1", "FILIAL": "8", "CODUSUR": "20", "VLVENDA": 0.5, "VLBONIFIC": 0.0},
		{"CODCLI": "004", "CODFOR": "900", "TIPOVENDA": "11", "FILIAL": "5", "CODUSUR": "30", "VLVENDA": 0.0, "VLBONIFIC": 0.2},
	})
}

func newEngine(t *testing.T, optFns ...Option) (*Engine, *dataset.Table) {
	t.Helper()
	tbl := salesTable()
	ix, err := index.NewBuilder(index.DefaultConfig()).Build(context.Background(), tbl)
	require.NoError(t, err)
	return New(tbl, ix, optFns...), tbl
}

func TestEngine_SupplierAndSaleTypes(t *testing.T) {
	e, _ := newEngine(t)

	ids := e.RowIDs(Filter{
		Suppliers: []string{"707"},
		SaleTypes: []string{"1", "9"},
	})
	assert.Equal(t, []uint32{0, 3}, ids.ToArray())
}

func TestEngine_ClientFilter(t *testing.T) {
	e, _ := newEngine(t)

	rows := e.Rows(Filter{Client: "001"})
	require.Len(t, rows, 2)

	sum := 0.0
	for _, r := range rows {
		sum += r.Float("VLVENDA")
	}
	assert.Equal(t, 10.5, sum)
	assert.Equal(t, 2, e.Count(Filter{Client: "1"}))
}

func TestEngine_NoFilters(t *testing.T) {
	e, tbl := newEngine(t)

	assert.True(t, Filter{}.IsZero())
	assert.Len(t, e.Rows(Filter{}), tbl.Len())
	assert.Equal(t, tbl.Len(), e.Count(Filter{}))
	assert.Equal(t, uint64(tbl.Len()), e.RowIDs(Filter{}).GetCardinality())

	// "ambas" and blank values are inactive.
	f := Filter{Branch: "ambas", Client: "  "}
	assert.True(t, f.IsZero())
	assert.Equal(t, tbl.Len(), e.Count(f))
}

func TestEngine_MissingSingleValueIsEmpty(t *testing.T) {
	m := &countingMetrics{}
	e, _ := newEngine(t, WithMetrics(m))

	for _, f := range []Filter{
		{Client: "999"},
		{Client: "999", Suppliers: []string{"707"}},
		{City: "NOWHERE"},
		{Equal: map[index.Dimension]string{"unknown": "x"}},
	} {
		assert.Equal(t, 0, e.Count(f))
		assert.Empty(t, e.Rows(f))
	}
	assert.Positive(t, m.shorts.Load())
}

func TestEngine_MultiSelect(t *testing.T) {
	e, _ := newEngine(t)

	// Unknown values in a multi-select are ignored.
	assert.Equal(t, []uint32{0, 1, 2, 3}, e.RowIDs(Filter{Suppliers: []string{"707", "800", "nope"}}).ToArray())
	// A multi-select with no indexed value matches nothing.
	assert.Equal(t, 0, e.Count(Filter{Suppliers: []string{"nope"}}))
	// Seller codes are normalized.
	assert.Equal(t, []uint32{0, 1}, e.RowIDs(Filter{Sellers: []string{"010"}}).ToArray())
	assert.Equal(t, []uint32{1, 2}, e.RowIDs(Filter{In: map[index.Dimension][]string{index.DimSupplier: {"800"}}}).ToArray())
}

func TestEngine_GenericFiltersNormalizeKeys(t *testing.T) {
	e, _ := newEngine(t)

	tests := []struct {
		name    string
		typed   Filter
		generic Filter
		want    []uint32
	}{
		{
			name:    "client",
			typed:   Filter{Client: "001"},
			generic: Filter{Equal: map[index.Dimension]string{index.DimClient: "001"}},
			want:    []uint32{0, 3},
		},
		{
			name:    "branch",
			typed:   Filter{Branch: "5"},
			generic: Filter{Equal: map[index.Dimension]string{index.DimBranch: "5"}},
			want:    []uint32{0, 2, 4},
		},
		{
			name:    "seller",
			typed:   Filter{Sellers: []string{"010"}},
			generic: Filter{In: map[index.Dimension][]string{index.DimSeller: {"010"}}},
			want:    []uint32{0, 1},
		},
		{
			name:    "branch multi",
			typed:   Filter{Branch: "08"},
			generic: Filter{In: map[index.Dimension][]string{index.DimBranch: {" 8 "}}},
			want:    []uint32{1, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.RowIDs(tt.typed).ToArray())
			assert.Equal(t, tt.want, e.RowIDs(tt.generic).ToArray())
		})
	}
}

func TestEngine_IntersectionIsSubset(t *testing.T) {
	e, _ := newEngine(t)

	a := Filter{Branch: "5"}
	b := Filter{Sellers: []string{"10"}}
	both := Filter{Branch: "5", Sellers: []string{"10"}}

	ra, rb, rab := e.RowIDs(a), e.RowIDs(b), e.RowIDs(both)
	assert.Equal(t, []uint32{0, 2, 4}, ra.ToArray())
	assert.Equal(t, []uint32{0, 1}, rb.ToArray())
	assert.Equal(t, []uint32{0}, rab.ToArray())
	assert.True(t, roaringSubset(rab, ra))
	assert.True(t, roaringSubset(rab, rb))

	// Disjoint selections.
	assert.Equal(t, 0, e.Count(Filter{Branch: "08", Suppliers: []string{"900"}}))
}

func TestEngine_ResultsDoNotAliasIndices(t *testing.T) {
	e, _ := newEngine(t)

	ids := e.RowIDs(Filter{Client: "1"})
	ids.Clear()

	assert.Equal(t, 2, e.Count(Filter{Client: "1"}))
}

func TestEngine_ClientAllowList(t *testing.T) {
	e, tbl := newEngine(t)

	f := Filter{
		Suppliers:       []string{"707", "800"},
		ClientAllowList: map[string]struct{}{"1": {}, "3": {}},
	}
	assert.Equal(t, []uint32{0, 2, 3}, e.RowIDs(f).ToArray())

	// The allow-list alone is an active filter.
	only := Filter{ClientAllowList: map[string]struct{}{"4": {}}}
	assert.False(t, only.IsZero())
	assert.Equal(t, []uint32{4}, e.RowIDs(only).ToArray())

	assert.Equal(t, 0, e.Count(Filter{ClientAllowList: map[string]struct{}{}}))

	// Caller-supplied codes are normalized like row codes.
	padded := Filter{ClientAllowList: map[string]struct{}{"001": {}, " 0004 ": {}}}
	assert.Equal(t, []uint32{0, 3, 4}, e.RowIDs(padded).ToArray())
	assert.Len(t, padded.ClientAllowList, 2)

	// The allow-list reads the effective client, overrides included.
	r, _ := tbl.Get(4)
	r.Set("CODCLI", "0003")
	assert.Equal(t, []uint32{4}, e.RowIDs(Filter{ClientAllowList: map[string]struct{}{"3": {}}, Suppliers: []string{"900"}}).ToArray())
}

func TestEngine_NegativeCache(t *testing.T) {
	m := &countingMetrics{}
	e, _ := newEngine(t, WithMetrics(m), WithNegativeCache(16))

	f := Filter{Branch: "08", Suppliers: []string{"900"}}
	assert.Equal(t, 0, e.Count(f))
	assert.Equal(t, int64(1), m.shorts.Load())

	assert.Equal(t, 0, e.Count(f))
	assert.Equal(t, int64(2), m.shorts.Load())
	assert.Equal(t, 1, e.negative.Len())

	// Same descriptor in a different spelling shares the signature.
	assert.Equal(t, 0, e.Count(Filter{Branch: "8", Suppliers: []string{" 900 ", "900"}}))
	assert.Equal(t, 1, e.negative.Len())
}

func TestSignature_Stable(t *testing.T) {
	a := Filter{Suppliers: []string{"2", "1"}, SaleTypes: []string{"9"}, Client: "007"}
	b := Filter{SaleTypes: []string{"9"}, Client: "7", Suppliers: []string{"1", "2", "1"}}
	assert.Equal(t, signature(a.terms()), signature(b.terms()))
	assert.NotEqual(t, signature(a.terms()), signature(Filter{Client: "7"}.terms()))
}

func roaringSubset(sub, super interface{ ToArray() []uint32 }) bool {
	set := make(map[uint32]struct{})
	for _, v := range super.ToArray() {
		set[v] = struct{}{}
	}
	for _, v := range sub.ToArray() {
		if _, ok := set[v]; !ok {
			return false
		}
	}
	return true
}
