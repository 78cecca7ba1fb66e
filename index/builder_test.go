package index

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/salescube/dataset"
	"github.com/hupe1980/salescube/dates"
	"github.com/hupe1980/salescube/model"
)

func clientConfig() Config {
	cfg := DefaultConfig()
	cfg.Dimensions = map[Dimension]string{
		DimClient:   model.FieldClient,
		DimSaleType: model.FieldSaleType,
	}
	return cfg
}

func TestBuild_ClientIndex(t *testing.T) {
	tbl := dataset.NewTable(
		[]string{"CODCLI", "VLVENDA", "TIPOVENDA"},
		map[string]dataset.Column{
			"CODCLI":    dataset.StringColumn{"001", "002", "001"},
			"VLVENDA":   dataset.FloatColumn{10, 20, 5},
			"TIPOVENDA": dataset.StringColumn{"1", "1", "9"},
		},
		3,
	)

	ix, err := NewBuilder(clientConfig()).Build(context.Background(), tbl)
	require.NoError(t, err)
	assert.Equal(t, 3, ix.Rows())

	// Client codes are normalized on indexing.
	bm, ok := ix.Lookup(DimClient, "1")
	require.True(t, ok)
	assert.Equal(t, []uint32{0, 2}, bm.ToArray())

	sum := 0.0
	it := bm.Iterator()
	for it.HasNext() {
		r, _ := tbl.Get(int(it.Next()))
		sum += r.Float("VLVENDA")
	}
	assert.Equal(t, 15.0, sum)

	_, ok = ix.Lookup(DimClient, "001")
	assert.False(t, ok)
	assert.Equal(t, []string{"1", "2"}, ix.Values(DimClient))
	assert.Equal(t, uint64(1), ix.Cardinality(DimSaleType, "9"))
	assert.False(t, ix.Has(DimSeller))
}

func sellerRecords() []dataset.Record {
	return []dataset.Record{
		{"CODUSUR": "10", "NOME": "ANA", "SUPERV": "SUP A", "DTPED": "2024-03-01", "CODCLI": "5", "FILIAL": "5"},
		{"CODUSUR": "010", "NOME": "ANA", "SUPERV": "SUP B", "DTPED": "2024-03-05", "CODCLI": "5", "FILIAL": "8"},
		{"CODUSUR": "10", "NOME": "ANA", "SUPERV": "SUP C", "DTPED": "2024-03-05", "CODCLI": "6", "FILIAL": "5"},
		{"CODUSUR": "20", "NOME": "INATIVOS", "SUPERV": "SUP A", "DTPED": "2024-03-06"},
		{"CODUSUR": "1001", "NOME": "LOJA", "SUPERV": "SUP A", "DTPED": "2024-03-07"},
		{"CODUSUR": "30", "NOME": "BIA", "SUPERV": "SUP A", "DTPED": "2024-02-28"},
	}
}

func TestBuild_SellerAttribution(t *testing.T) {
	tbl := dataset.FromRecords(sellerRecords())

	ix, err := NewBuilder(DefaultConfig()).Build(context.Background(), tbl)
	require.NoError(t, err)

	// Latest order wins; the tie on 2024-03-05 keeps the first row seen.
	require.Contains(t, ix.Sellers, "10")
	assert.Equal(t, "SUP B", ix.Sellers["10"].Supervisor)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), ix.Sellers["10"].LastOrder)

	assert.NotContains(t, ix.Sellers, "20")
	assert.NotContains(t, ix.Sellers, "1001")

	assert.Equal(t, []string{"30"}, ix.SupervisorSellers["SUP A"])
	assert.Equal(t, []string{"10"}, ix.SupervisorSellers["SUP B"])
	assert.Equal(t, "10", ix.SellerCodeByName["ANA"])

	// Excluded rows are still indexed.
	_, ok := ix.Lookup(DimSeller, "1001")
	assert.True(t, ok)

	assert.Equal(t, "08", ix.ClientLastBranch["5"])
	assert.Equal(t, "05", ix.ClientLastBranch["6"])
	assert.Equal(t, time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC), ix.MaxDate)
}

func TestBuild_WorkingDays(t *testing.T) {
	tbl := dataset.FromRecords([]dataset.Record{
		{"DTPED": "2024-03-01"}, // Friday
		{"DTPED": "2024-03-02"}, // Saturday
		{"DTPED": "04/03/2024"}, // Monday
		{"DTPED": "05/03/2024"}, // holiday
		{"DTPED": "2024-03-01T15:00:00"},
	})
	cfg := DefaultConfig()
	cfg.Holidays = dates.NewHolidays(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))

	ix, err := NewBuilder(cfg).Build(context.Background(), tbl)
	require.NoError(t, err)

	assert.Equal(t, 2, ix.WorkingDayCount())
	assert.Equal(t, []time.Time{
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
	}, ix.WorkingDays())
}

func TestBuild_PastaResolution(t *testing.T) {
	tbl := dataset.FromRecords([]dataset.Record{
		{"PRODUTO": "P1", "CODFOR": "707", "FORNECEDOR": "PEPSICO BRASIL LTDA", "OBSERVACAOFOR": ""},
		{"PRODUTO": "P2", "CODFOR": "900", "FORNECEDOR": "COCA COLA", "OBSERVACAOFOR": "N/A"},
		{"PRODUTO": "P3", "CODFOR": "901", "FORNECEDOR": "COCA COLA", "OBSERVACAOFOR": "JANDAIA"},
	})

	b := NewBuilder(DefaultConfig())
	ix, err := b.Build(context.Background(), tbl)
	require.NoError(t, err)

	r0, _ := tbl.Get(0)
	r1, _ := tbl.Get(1)
	r2, _ := tbl.Get(2)
	assert.Equal(t, "PEPSICO", r0.String("OBSERVACAOFOR"))
	assert.Equal(t, "MULTIMARCAS", r1.String("OBSERVACAOFOR"))
	assert.Equal(t, "JANDAIA", r2.String("OBSERVACAOFOR"))
	assert.False(t, tbl.HasOverrides())

	wantProducts := map[string]string{"P1": "PEPSICO", "P2": "MULTIMARCAS", "P3": "JANDAIA"}
	if diff := cmp.Diff(wantProducts, ix.ProductPasta); diff != "" {
		t.Errorf("ProductPasta mismatch (-want +got):\n%s", diff)
	}
	wantSuppliers := map[string]string{"707": "PEPSICO", "900": "MULTIMARCAS", "901": "JANDAIA"}
	if diff := cmp.Diff(wantSuppliers, ix.SupplierPasta); diff != "" {
		t.Errorf("SupplierPasta mismatch (-want +got):\n%s", diff)
	}

	bm, ok := ix.Lookup(DimPasta, "MULTIMARCAS")
	require.True(t, ok)
	assert.Equal(t, []uint32{1}, bm.ToArray())

	// One cached inference per distinct supplier name.
	assert.Equal(t, 2, b.Pasta().CacheLen())
}

func TestBuild_PastaDerivedColumnKeepsOverridesSparse(t *testing.T) {
	const rows = 10_000
	records := make([]dataset.Record, rows)
	for i := range records {
		records[i] = dataset.Record{"CODCLI": "9569", "CODUSUR": "53", "FORNECEDOR": "PEPSICO"}
		if i%1000 == 0 {
			records[i]["CODUSUR"] = "54"
		}
	}
	tbl := dataset.FromRecords(records)

	cfg := DefaultConfig()
	cfg.Rewrites = []Rewrite{{When: map[string]string{"CODUSUR": "54"}, Set: map[string]string{"CODUSUR": "53"}}}

	ix, err := NewBuilder(cfg).Build(context.Background(), tbl)
	require.NoError(t, err)

	// Only the rewritten rows carry a patch.
	assert.Equal(t, rows/1000, tbl.OverrideCount())
	assert.Contains(t, tbl.Columns(), "OBSERVACAOFOR")

	col, ok := tbl.Column("OBSERVACAOFOR")
	require.True(t, ok)
	assert.Equal(t, rows, col.Len())

	for _, i := range []int{0, 1, rows - 1} {
		r, _ := tbl.Get(i)
		assert.Equal(t, "PEPSICO", r.String("OBSERVACAOFOR"), "row %d", i)
	}
	bm, ok := ix.Lookup(DimPasta, "PEPSICO")
	require.True(t, ok)
	assert.Equal(t, uint64(rows), bm.GetCardinality())

	// A rebuild finds every value in place.
	_, err = NewBuilder(cfg).Build(context.Background(), tbl)
	require.NoError(t, err)
	assert.Equal(t, rows/1000, tbl.OverrideCount())
}

func TestBuild_WritePastaDisabled(t *testing.T) {
	tbl := dataset.FromRecords([]dataset.Record{
		{"FORNECEDOR": "PEPSICO", "OBSERVACAOFOR": "0"},
	})
	cfg := DefaultConfig()
	cfg.WritePasta = false

	ix, err := NewBuilder(cfg).Build(context.Background(), tbl)
	require.NoError(t, err)

	assert.False(t, tbl.HasOverrides())
	_, ok := ix.Lookup(DimPasta, "PEPSICO")
	assert.True(t, ok)
}

func TestBuild_Rewrites(t *testing.T) {
	tbl := dataset.FromRecords([]dataset.Record{
		{"CODCLI": "9569", "CODUSUR": "53"},
		{"CODCLI": "9569", "CODUSUR": "54"},
	})
	cfg := clientConfig()
	cfg.Rewrites = []Rewrite{{
		When: map[string]string{"CODCLI": "9569", "CODUSUR": "053"},
		Set:  map[string]string{"CODCLI": "7706"},
	}}

	ix, err := NewBuilder(cfg).Build(context.Background(), tbl)
	require.NoError(t, err)

	r0, _ := tbl.Get(0)
	assert.Equal(t, "7706", r0.String("CODCLI"))

	bm, ok := ix.Lookup(DimClient, "7706")
	require.True(t, ok)
	assert.Equal(t, []uint32{0}, bm.ToArray())
	bm, ok = ix.Lookup(DimClient, "9569")
	require.True(t, ok)
	assert.Equal(t, []uint32{1}, bm.ToArray())
}

func TestBuild_CityFromClientMap(t *testing.T) {
	tbl := dataset.FromRecords([]dataset.Record{
		{"CODCLI": "0042"},
		{"CODCLI": "7", "CIDADE": "SALVADOR"},
	})
	cfg := DefaultConfig()
	cfg.ClientCities = map[string]string{"42": "FEIRA DE SANTANA"}

	ix, err := NewBuilder(cfg).Build(context.Background(), tbl)
	require.NoError(t, err)

	assert.Equal(t, []string{"FEIRA DE SANTANA", "SALVADOR"}, ix.Values(DimCity))
}

func TestBuild_RowArray(t *testing.T) {
	arr := dataset.NewRowArray([]dataset.Record{
		{"CODCLI": "001", "TIPOVENDA": "1"},
		{"CODCLI": "2", "TIPOVENDA": "5"},
	})

	ix, err := NewBuilder(clientConfig()).Build(context.Background(), arr)
	require.NoError(t, err)

	bm, ok := ix.Lookup(DimClient, "1")
	require.True(t, ok)
	assert.Equal(t, []uint32{0}, bm.ToArray())
}

func TestBuild_Cancelled(t *testing.T) {
	tbl := dataset.FromRecords([]dataset.Record{{"CODCLI": "1"}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ix, err := NewBuilder(clientConfig()).Build(ctx, tbl)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, ix)
}

func TestBackfill(t *testing.T) {
	sales := dataset.FromRecords([]dataset.Record{
		{"PRODUTO": "P1", "CODFOR": "707", "FORNECEDOR": "PEPSICO"},
	})
	ix, err := NewBuilder(DefaultConfig()).Build(context.Background(), sales)
	require.NoError(t, err)

	catalog := dataset.NewRowArray([]dataset.Record{
		{"PRODUTO": "P1", "CODFOR": "707"},
		{"PRODUTO": "P9", "CODFOR": "707"},
		{"PRODUTO": "P8", "CODFOR": "999"},
	})

	n := ix.Backfill(catalog, nil, "PRODUTO", "CODFOR", "OBSERVACAOFOR")
	assert.Equal(t, 1, n)
	assert.Equal(t, "PEPSICO", ix.ProductPasta["P9"])
	assert.NotContains(t, ix.ProductPasta, "P8")

	r, _ := catalog.Get(1)
	assert.Equal(t, "PEPSICO", r.String("OBSERVACAOFOR"))
}

func TestBackfill_KeepsExistingPasta(t *testing.T) {
	b := NewBuilder(DefaultConfig())
	sales := dataset.FromRecords([]dataset.Record{
		{"PRODUTO": "A", "CODFOR": "707", "FORNECEDOR": "PEPSICO"},
	})
	ix, err := b.Build(context.Background(), sales)
	require.NoError(t, err)

	catalog := dataset.NewRowArray([]dataset.Record{
		{"PRODUTO": "B", "CODFOR": "707", "OBSERVACAOFOR": "FOODS"},
		{"PRODUTO": "C", "CODFOR": "707", "OBSERVACAOFOR": "  "},
	})

	n := ix.Backfill(catalog, b.Pasta(), "PRODUTO", "CODFOR", "OBSERVACAOFOR")
	assert.Equal(t, 1, n)

	rb, _ := catalog.Get(0)
	assert.Equal(t, "FOODS", rb.String("OBSERVACAOFOR"))
	assert.Equal(t, "FOODS", ix.ProductPasta["B"])

	rc, _ := catalog.Get(1)
	assert.Equal(t, "PEPSICO", rc.String("OBSERVACAOFOR"))

	// A second index sees the patched rows as classified.
	other, err := b.Build(context.Background(), dataset.FromRecords([]dataset.Record{
		{"PRODUTO": "Z", "CODFOR": "707", "FORNECEDOR": "JANDAIA"},
	}))
	require.NoError(t, err)
	assert.Zero(t, other.Backfill(catalog, b.Pasta(), "PRODUTO", "CODFOR", "OBSERVACAOFOR"))
	assert.Equal(t, "PEPSICO", rc.String("OBSERVACAOFOR"))
}
