package query

import (
	"sort"
	"strings"

	"github.com/hupe1980/salescube/dataset"
	"github.com/hupe1980/salescube/keys"
	"github.com/hupe1980/salescube/model"
)

// PositiveThreshold is the value from which a row counts as an active
// transaction.
const PositiveThreshold = 1.0

// revenueSaleTypes are the sale types that count as invoiced revenue.
var revenueSaleTypes = map[string]struct{}{"1": {}, "9": {}}

// IsRevenueSaleType reports whether saleType counts as invoiced revenue.
func IsRevenueSaleType(saleType string) bool {
	_, ok := revenueSaleTypes[strings.TrimSpace(saleType)]
	return ok
}

// AltModeFor reports whether a sale-type selection measures bonus value
// instead of revenue: true when at least one type is selected and none of
// them is a revenue type.
func AltModeFor(saleTypes []string) bool {
	selected := false
	for _, st := range saleTypes {
		if strings.TrimSpace(st) == "" {
			continue
		}
		if IsRevenueSaleType(st) {
			return false
		}
		selected = true
	}
	return selected
}

// TransactionValue returns the value a row contributes under the given mode.
func TransactionValue(r dataset.Row, altMode bool) float64 {
	v := r.Float(model.FieldValue)
	if altMode {
		v += r.Float(model.FieldBonus)
	}
	return v
}

// IsPositive reports whether a single row reaches PositiveThreshold on its own.
func IsPositive(r dataset.Row, altMode bool) bool {
	return TransactionValue(r, altMode) >= PositiveThreshold
}

// PositiveClients returns the sorted, normalized client codes whose
// transaction values over the rows matching f sum to at least
// PositiveThreshold. The alternative mode is derived from f.SaleTypes.
func (e *Engine) PositiveClients(f Filter) []string {
	alt := AltModeFor(f.SaleTypes)
	totals := make(map[string]float64)
	for _, r := range e.Rows(f) {
		if c := keys.NormalizeKey(r.String(e.clientField)); c != "" {
			totals[c] += TransactionValue(r, alt)
		}
	}
	out := make([]string, 0, len(totals))
	for c, total := range totals {
		if total >= PositiveThreshold {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}
