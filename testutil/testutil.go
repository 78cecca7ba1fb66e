package testutil

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/salescube/dataset"
	"github.com/hupe1980/salescube/model"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Zipf returns a Zipfian-distributed value in [0, n).
// P(k) ∝ 1/k^s; s=1.5 gives a heavy head where a few clients dominate.
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zipfLocked(n, s)
}

// zipfLocked is the internal implementation (caller must hold lock).
func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}

	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1
		}
	}
	return n - 1
}

// SalesConfig shapes a synthetic sales table.
type SalesConfig struct {
	Rows      int
	Clients   int
	Sellers   int
	Suppliers int
	Products  int
	// Start is the first order date; orders spread over Days days.
	Start time.Time
	Days  int
	// Skew > 0 draws clients from a Zipf distribution with that exponent.
	Skew float64
	// MissingRate is the share of rows whose city is absent.
	MissingRate float64
}

// DefaultSalesConfig returns a small table suitable for unit tests.
func DefaultSalesConfig() SalesConfig {
	return SalesConfig{
		Rows:        500,
		Clients:     40,
		Sellers:     8,
		Suppliers:   6,
		Products:    30,
		Start:       time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		Days:        28,
		MissingRate: 0.1,
	}
}

// SaleTypes are the sale type codes the generator draws from.
var SaleTypes = []string{"1", "5", "9", "11"}

// Branches are the branch codes the generator draws from.
var Branches = []string{"05", "08"}

// Cities are the city names the generator draws from.
var Cities = []string{"SALVADOR", "FEIRA DE SANTANA", "CAMACARI", "LAURO DE FREITAS"}

// ClientCode returns the generated code of client k.
func ClientCode(k int) string { return strconv.Itoa(1000 + k) }

// SellerCode returns the generated code of seller k.
func SellerCode(k int) string { return strconv.Itoa(200 + k) }

// SupplierCode returns the generated code of supplier k.
func SupplierCode(k int) string { return strconv.Itoa(700 + k) }

// ProductCode returns the generated code of product k.
func ProductCode(k int) string { return strconv.Itoa(5000 + k) }

// SupplierName returns the generated name of supplier k. Every third
// supplier carries the PEPSICO keyword.
func SupplierName(k int) string {
	if k%3 == 0 {
		return fmt.Sprintf("PEPSICO DIVISAO %d", k)
	}
	return fmt.Sprintf("FORNECEDOR %d", k)
}

// SupervisorName returns the supervisor of seller k.
func SupervisorName(k int) string { return fmt.Sprintf("SUPERVISOR %d", k/4) }

// SalesTable generates a columnar sales table. Product p always belongs to
// supplier p mod Suppliers; seller s always reports to SupervisorName(s).
// The pasta column is left blank so it is resolved from supplier names.
func (r *RNG) SalesTable(cfg SalesConfig) *dataset.Table {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := max(cfg.Rows, 0)
	clients := make(dataset.StringColumn, n)
	sellers := make(dataset.StringColumn, n)
	sellerNames := make(dataset.StringColumn, n)
	supervisors := make(dataset.StringColumn, n)
	orderDates := make(dataset.StringColumn, n)
	products := make(dataset.StringColumn, n)
	supplierCodes := make(dataset.StringColumn, n)
	supplierNames := make(dataset.StringColumn, n)
	pastas := make(dataset.StringColumn, n)
	quantities := make(dataset.FloatColumn, n)
	values := make(dataset.FloatColumn, n)
	bonus := make(dataset.FloatColumn, n)
	saleTypes := make(dataset.StringColumn, n)
	branches := make(dataset.StringColumn, n)
	cities := make(dataset.AnyColumn, n)

	for i := range n {
		var c int
		if cfg.Skew > 0 {
			c = r.zipfLocked(cfg.Clients, cfg.Skew)
		} else {
			c = r.rand.Intn(max(cfg.Clients, 1))
		}
		s := r.rand.Intn(max(cfg.Sellers, 1))
		p := r.rand.Intn(max(cfg.Products, 1))
		sup := p % max(cfg.Suppliers, 1)
		day := cfg.Start.AddDate(0, 0, r.rand.Intn(max(cfg.Days, 1)))
		saleType := SaleTypes[r.rand.Intn(len(SaleTypes))]

		clients[i] = ClientCode(c)
		sellers[i] = SellerCode(s)
		sellerNames[i] = fmt.Sprintf("VENDEDOR %d", s)
		supervisors[i] = SupervisorName(s)
		orderDates[i] = day.Format("2006-01-02")
		products[i] = ProductCode(p)
		supplierCodes[i] = SupplierCode(sup)
		supplierNames[i] = SupplierName(sup)
		quantities[i] = float64(1 + r.rand.Intn(20))
		branches[i] = Branches[c%len(Branches)]

		amount := math.Round(r.rand.Float64()*50000) / 100
		if saleType == "5" || saleType == "11" {
			bonus[i] = amount
		} else {
			values[i] = amount
		}
		saleTypes[i] = saleType

		if r.rand.Float64() >= cfg.MissingRate {
			cities[i] = Cities[c%len(Cities)]
		}
	}

	columns := []string{
		model.FieldClient, model.FieldSellerCode, model.FieldSellerName,
		model.FieldSupervisor, model.FieldOrderDate, model.FieldProduct,
		model.FieldSupplierCode, model.FieldSupplierName, model.FieldPasta,
		model.FieldQuantity, model.FieldValue, model.FieldBonus,
		model.FieldSaleType, model.FieldBranch, model.FieldCity,
	}
	return dataset.NewTable(columns, map[string]dataset.Column{
		model.FieldClient:       clients,
		model.FieldSellerCode:   sellers,
		model.FieldSellerName:   sellerNames,
		model.FieldSupervisor:   supervisors,
		model.FieldOrderDate:    orderDates,
		model.FieldProduct:      products,
		model.FieldSupplierCode: supplierCodes,
		model.FieldSupplierName: supplierNames,
		model.FieldPasta:        pastas,
		model.FieldQuantity:     quantities,
		model.FieldValue:        values,
		model.FieldBonus:        bonus,
		model.FieldSaleType:     saleTypes,
		model.FieldBranch:       branches,
		model.FieldCity:         cities,
	}, n)
}

// ProductCatalog returns one row per product in cfg, including products a
// sales table of the same config may never have sold.
func (r *RNG) ProductCatalog(cfg SalesConfig) *dataset.RowArray {
	records := make([]dataset.Record, 0, cfg.Products)
	for p := range cfg.Products {
		sup := p % max(cfg.Suppliers, 1)
		records = append(records, dataset.Record{
			model.FieldProduct:      ProductCode(p),
			model.FieldDescription:  fmt.Sprintf("PRODUTO %d", p),
			model.FieldSupplierCode: SupplierCode(sup),
		})
	}
	return dataset.NewRowArray(records)
}

// MatchingRows returns the ids of every row in seq satisfying pred by a
// full scan. Use it as ground truth for indexed queries.
func MatchingRows(seq dataset.Sequence, pred func(r dataset.Row) bool) *roaring.Bitmap {
	out := roaring.New()
	for i, row := range dataset.All(seq) {
		if pred(row) {
			out.Add(uint32(i))
		}
	}
	return out
}
