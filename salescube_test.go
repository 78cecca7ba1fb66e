package salescube

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/salescube/blobstore"
	"github.com/hupe1980/salescube/dataset"
	"github.com/hupe1980/salescube/index"
	"github.com/hupe1980/salescube/model"
	"github.com/hupe1980/salescube/payload"
	"github.com/hupe1980/salescube/query"
	"github.com/hupe1980/salescube/scheduler"
	"github.com/hupe1980/salescube/testutil"
)

func newStore(t *testing.T) (blobstore.BlobStore, testutil.SalesConfig) {
	t.Helper()
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	cfg := testutil.DefaultSalesConfig()
	cfg.Products = 20
	rng := testutil.NewRNG(4711)

	detailed, err := payload.Encode(rng.SalesTable(cfg), nil, payload.CompressionZSTD)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "detailed.json.zst", detailed))

	catalogCfg := cfg
	catalogCfg.Products = 30
	products, err := payload.Encode(rng.ProductCatalog(catalogCfg), nil, payload.CompressionNone)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "products.json", products))

	return store, cfg
}

func TestEngineLoad(t *testing.T) {
	store, cfg := newStore(t)
	metrics := &BasicMetricsCollector{}
	eng := New(WithBlobStore(store), WithMetricsCollector(metrics))

	require.NoError(t, eng.Load(context.Background()))
	assert.Equal(t, []model.TableName{model.TableDetailed, model.TableProducts}, eng.Names())

	_, ok := eng.Indices(model.TableDetailed)
	assert.True(t, ok)
	_, ok = eng.Indices(model.TableProducts)
	assert.False(t, ok)

	n, err := eng.Count(model.TableDetailed, query.Filter{})
	require.NoError(t, err)
	assert.Equal(t, cfg.Rows, n)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.LoadCount)
	assert.Equal(t, int64(2), stats.LoadTables)
	assert.Equal(t, int64(1), stats.BuildCount)
	assert.Equal(t, int64(cfg.Rows), stats.BuildRows)
}

func TestEngineQueryMatchesScan(t *testing.T) {
	store, _ := newStore(t)
	eng := New(WithBlobStore(store))
	require.NoError(t, eng.Load(context.Background(), model.TableDetailed))

	seq, ok := eng.Table(model.TableDetailed)
	require.True(t, ok)

	tests := []struct {
		name   string
		filter query.Filter
		pred   func(r dataset.Row) bool
	}{
		{
			name:   "supplier and revenue sale types",
			filter: query.Filter{Suppliers: []string{testutil.SupplierCode(0), testutil.SupplierCode(3)}, SaleTypes: []string{"1", "9"}},
			pred: func(r dataset.Row) bool {
				s, st := r.String(model.FieldSupplierCode), r.String(model.FieldSaleType)
				return (s == testutil.SupplierCode(0) || s == testutil.SupplierCode(3)) && (st == "1" || st == "9")
			},
		},
		{
			name:   "seller and branch",
			filter: query.Filter{Sellers: []string{testutil.SellerCode(2)}, Branch: "5"},
			pred: func(r dataset.Row) bool {
				return r.String(model.FieldSellerCode) == testutil.SellerCode(2) && r.String(model.FieldBranch) == "05"
			},
		},
		{
			name:   "resolved pasta",
			filter: query.Filter{Pasta: "PEPSICO"},
			pred:   func(r dataset.Row) bool { return r.String(model.FieldPasta) == "PEPSICO" },
		},
		{
			name:   "city",
			filter: query.Filter{City: testutil.Cities[1]},
			pred:   func(r dataset.Row) bool { return r.String(model.FieldCity) == testutil.Cities[1] },
		},
		{
			name:   "supervisor and client",
			filter: query.Filter{Supervisors: []string{testutil.SupervisorName(0)}, Client: testutil.ClientCode(3)},
			pred: func(r dataset.Row) bool {
				return r.String(model.FieldSupervisor) == testutil.SupervisorName(0) && r.String(model.FieldClient) == testutil.ClientCode(3)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := testutil.MatchingRows(seq, tt.pred)
			got, err := eng.RowIDs(model.TableDetailed, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, want.ToArray(), got.ToArray())

			rows, err := eng.Query(model.TableDetailed, tt.filter)
			require.NoError(t, err)
			assert.Len(t, rows, int(want.GetCardinality()))
		})
	}
}

func TestEngineBackfill(t *testing.T) {
	store, cfg := newStore(t)
	eng := New(WithBlobStore(store))
	require.NoError(t, eng.Load(context.Background()))

	ix, ok := eng.Indices(model.TableDetailed)
	require.True(t, ok)
	catalog, ok := eng.Table(model.TableProducts)
	require.True(t, ok)

	// Products 20..29 never appear in the sales table.
	for p := cfg.Products; p < 30; p++ {
		row, ok := catalog.Get(p)
		require.True(t, ok)
		supplier := testutil.SupplierCode(p % cfg.Suppliers)
		want, known := ix.SupplierPasta[supplier]
		require.True(t, known, supplier)
		assert.Equal(t, want, row.String(model.FieldPasta))
		assert.Equal(t, want, ix.ProductPasta[testutil.ProductCode(p)])
	}
}

func TestEngineClientCities(t *testing.T) {
	eng := New()
	eng.Add(model.TableClients, dataset.NewRowArray([]dataset.Record{
		{model.FieldClient: "0042", model.FieldCity: "SALVADOR"},
	}))
	eng.Add(model.TableDetailed, dataset.NewRowArray([]dataset.Record{
		{model.FieldClient: "42", model.FieldSupplierCode: "707"},
		{model.FieldClient: "43", model.FieldSupplierCode: "707"},
	}))
	require.NoError(t, eng.Build(context.Background(), model.TableDetailed))

	ids, err := eng.RowIDs(model.TableDetailed, query.Filter{City: "SALVADOR"})
	require.NoError(t, err)
	assert.Equal(t, []uint32{0}, ids.ToArray())
}

func TestEngineErrors(t *testing.T) {
	eng := New()

	assert.ErrorIs(t, eng.Load(context.Background()), ErrNoBlobStore)

	_, err := eng.Query(model.TableDetailed, query.Filter{})
	assert.ErrorIs(t, err, ErrUnknownTable)

	eng.Add(model.TableHistory, dataset.NewRowArray(nil))
	_, err = eng.Count(model.TableHistory, query.Filter{})
	assert.ErrorIs(t, err, ErrNotBuilt)

	assert.ErrorIs(t, eng.Build(context.Background(), model.TableStock), ErrUnknownTable)
}

func TestEngineLoadValidationError(t *testing.T) {
	store := blobstore.NewMemoryStore()
	bad := dataset.NewTable([]string{model.FieldClient},
		map[string]dataset.Column{model.FieldClient: dataset.StringColumn{"1"}}, 1)
	data, err := payload.Encode(bad, nil, payload.CompressionNone)
	require.NoError(t, err)
	require.NoError(t, store.Put(context.Background(), "detailed.json", data))

	metrics := &BasicMetricsCollector{}
	eng := New(WithBlobStore(store), WithMetricsCollector(metrics))
	err = eng.Load(context.Background(), model.TableDetailed)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, model.TableDetailed, le.Table)
	var mce *MissingColumnsError
	assert.ErrorAs(t, err, &mce)
	assert.Equal(t, int64(1), metrics.GetStats().LoadErrors)
}

func TestEngineBuildCancelled(t *testing.T) {
	eng := New()
	eng.Add(model.TableDetailed, testutil.NewRNG(1).SalesTable(testutil.DefaultSalesConfig()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, eng.Build(ctx, model.TableDetailed), context.Canceled)

	_, ok := eng.Indices(model.TableDetailed)
	assert.False(t, ok)
}

func TestEngineScan(t *testing.T) {
	host := scheduler.NewManualHost(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

	eng := New(WithHost(host, scheduler.WithBatchSize(50)))
	cfg := testutil.DefaultSalesConfig()
	tbl := testutil.NewRNG(9).SalesTable(cfg)
	eng.Add(model.TableDetailed, tbl)
	require.NoError(t, eng.Build(context.Background(), model.TableDetailed))

	var want float64
	for _, r := range dataset.All(tbl) {
		want += r.Float(model.FieldValue)
	}

	var got float64
	completed := 0
	job, id, err := eng.Scan(model.TableDetailed, query.Filter{}, func(r dataset.Row, _ int) {
		got += r.Float(model.FieldValue)
		host.Advance(time.Millisecond)
	}, func() { completed++ })
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	host.RunUntilIdle()
	assert.Equal(t, scheduler.Completed, job.State())
	assert.Equal(t, 1, completed)
	assert.InDelta(t, want, got, 1e-6)
	assert.Positive(t, job.Yields())
}

func TestEngineRunHost(t *testing.T) {
	eng := New()
	cfg := testutil.DefaultSalesConfig()
	eng.Add(model.TableDetailed, testutil.NewRNG(9).SalesTable(cfg))
	require.NoError(t, eng.Build(context.Background(), model.TableDetailed))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errc := make(chan error, 1)
	go func() { errc <- eng.RunHost(ctx) }()

	done := make(chan int, 1)
	count := 0
	_, _, err := eng.Scan(model.TableDetailed, query.Filter{}, func(dataset.Row, int) { count++ }, func() { done <- count })
	require.NoError(t, err)

	select {
	case got := <-done:
		assert.Equal(t, cfg.Rows, got)
	case <-time.After(5 * time.Second):
		t.Fatal("scan did not complete")
	}

	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)

	manual := New(WithHost(scheduler.NewManualHost(time.Now())))
	assert.ErrorIs(t, manual.RunHost(context.Background()), ErrHostNotRunnable)
}

func TestEngineScanSuperseded(t *testing.T) {
	host := scheduler.NewManualHost(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	tick := func(dataset.Row, int) { host.Advance(time.Millisecond) }

	eng := New(WithHost(host, scheduler.WithBatchSize(10)))
	eng.Add(model.TableDetailed, testutil.NewRNG(9).SalesTable(testutil.DefaultSalesConfig()))
	require.NoError(t, eng.Build(context.Background(), model.TableDetailed))

	var first, second int
	f := query.Filter{SaleTypes: []string{"1", "9"}}
	old, _, err := eng.Scan(model.TableDetailed, f, tick, func() { first++ })
	require.NoError(t, err)

	// One tick of the first scan, then supersede it.
	require.True(t, host.RunNext())
	cur, _, err := eng.Scan(model.TableDetailed, f, tick, func() { second++ })
	require.NoError(t, err)
	host.RunUntilIdle()

	assert.Equal(t, scheduler.Cancelled, old.State())
	assert.Equal(t, scheduler.Completed, cur.State())
	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)

	eng.CancelScans()
	third := 0
	_, id, err := eng.Scan(model.TableDetailed, f, tick, func() { third++ })
	require.NoError(t, err)
	assert.Equal(t, uint64(4), id)
	assert.Zero(t, third)
}

func TestEngineStats(t *testing.T) {
	eng := New(WithIndexConfig(index.DefaultConfig()))
	tbl := testutil.NewRNG(2).SalesTable(testutil.DefaultSalesConfig())
	eng.Add(model.TableDetailed, tbl)
	eng.Add(model.TableClients, dataset.NewRowArray(nil))
	require.NoError(t, eng.Build(context.Background(), model.TableDetailed))

	stats := eng.Stats()
	require.Len(t, stats, 2)
	assert.Equal(t, model.TableClients, stats[0].Name)
	assert.False(t, stats[0].Built)

	det := stats[1]
	assert.True(t, det.Built)
	assert.Equal(t, tbl.Len(), det.Rows)
	// Resolved pastas land in a derived column, not in per-row patches.
	assert.Zero(t, det.Overrides)
	assert.Contains(t, tbl.Columns(), model.FieldPasta)
	assert.Positive(t, det.Dimensions)
	assert.Positive(t, det.IndexBytes)
	assert.Positive(t, det.WorkingDays)
	assert.False(t, det.MaxDate.IsZero())
}
