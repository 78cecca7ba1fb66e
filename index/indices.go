package index

import (
	"slices"
	"sort"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
)

// SellerInfo is the canonical attribution of a seller code.
type SellerInfo struct {
	Code           string
	Name           string
	Supervisor     string
	SupervisorCode string
	// LastOrder is the order date of the row that established the mapping.
	// Zero when the winning row had no date.
	LastOrder time.Time
}

// Indices holds the inverted indices and side maps of one table.
//
// Bitmaps returned by Lookup are shared; callers must clone before mutating.
type Indices struct {
	rows int
	dims map[Dimension]map[string]*roaring.Bitmap

	// Sellers maps a normalized seller code to its canonical attribution.
	Sellers map[string]SellerInfo
	// SupervisorSellers maps a supervisor name to its seller codes (sorted).
	SupervisorSellers map[string][]string
	// SellerCodeByName maps a seller name to its code.
	SellerCodeByName map[string]string
	// ClientLastBranch maps a normalized client code to the branch of its most
	// recent order.
	ClientLastBranch map[string]string
	// ProductPasta maps a product code to its resolved pasta.
	ProductPasta map[string]string
	// SupplierPasta maps a supplier code to the pasta of its first row.
	SupplierPasta map[string]string
	// MaxDate is the latest order date seen (zero if none parsed).
	MaxDate time.Time

	workingDays map[time.Time]struct{}
}

func newIndices() *Indices {
	return &Indices{
		dims:              make(map[Dimension]map[string]*roaring.Bitmap),
		Sellers:           make(map[string]SellerInfo),
		SupervisorSellers: make(map[string][]string),
		SellerCodeByName:  make(map[string]string),
		ClientLastBranch:  make(map[string]string),
		ProductPasta:      make(map[string]string),
		SupplierPasta:     make(map[string]string),
		workingDays:       make(map[time.Time]struct{}),
	}
}

// Rows returns the number of rows the indices were built over.
func (ix *Indices) Rows() int { return ix.rows }

// Lookup returns the posting list of value in dim.
func (ix *Indices) Lookup(dim Dimension, value string) (*roaring.Bitmap, bool) {
	values, ok := ix.dims[dim]
	if !ok {
		return nil, false
	}
	bm, ok := values[value]
	return bm, ok
}

// Has reports whether dim was tracked during the build.
func (ix *Indices) Has(dim Dimension) bool {
	_, ok := ix.dims[dim]
	return ok
}

// Dimensions returns the tracked dimensions in sorted order.
func (ix *Indices) Dimensions() []Dimension {
	out := make([]Dimension, 0, len(ix.dims))
	for d := range ix.dims {
		out = append(out, d)
	}
	slices.Sort(out)
	return out
}

// Values returns the distinct values of dim in sorted order.
func (ix *Indices) Values(dim Dimension) []string {
	values := ix.dims[dim]
	out := make([]string, 0, len(values))
	for v := range values {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Cardinality returns the number of rows carrying value in dim.
func (ix *Indices) Cardinality(dim Dimension, value string) uint64 {
	bm, ok := ix.Lookup(dim, value)
	if !ok {
		return 0
	}
	return bm.GetCardinality()
}

// WorkingDays returns the distinct working days with at least one order,
// in ascending order.
func (ix *Indices) WorkingDays() []time.Time {
	out := make([]time.Time, 0, len(ix.workingDays))
	for d := range ix.workingDays {
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b time.Time) int { return a.Compare(b) })
	return out
}

// WorkingDayCount returns the number of distinct working days with orders.
func (ix *Indices) WorkingDayCount() int { return len(ix.workingDays) }

// SizeInBytes estimates the serialized size of all posting lists.
func (ix *Indices) SizeInBytes() uint64 {
	var total uint64
	for _, values := range ix.dims {
		for _, bm := range values {
			total += bm.GetSizeInBytes()
		}
	}
	return total
}

func (ix *Indices) add(dim Dimension, value string, id uint32) {
	values, ok := ix.dims[dim]
	if !ok {
		values = make(map[string]*roaring.Bitmap)
		ix.dims[dim] = values
	}
	bm, ok := values[value]
	if !ok {
		bm = roaring.New()
		values[value] = bm
	}
	bm.Add(id)
}
