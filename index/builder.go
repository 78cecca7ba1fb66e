package index

import (
	"context"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/hupe1980/salescube/dataset"
	"github.com/hupe1980/salescube/dates"
	"github.com/hupe1980/salescube/internal/conv"
	"github.com/hupe1980/salescube/keys"
)

// ctxCheckInterval is how many rows are processed between context checks.
const ctxCheckInterval = 4096

// Builder constructs Indices for a table.
type Builder struct {
	cfg    Config
	dims   []Dimension
	dates  *dates.Cache
	pasta  *PastaResolver
	logger *slog.Logger

	excludedLabels map[string]struct{}
	excludedCodes  map[string]struct{}
}

// Option configures a Builder.
type Option func(*Builder)

// WithDateCache shares a date cache across builders of the same load.
func WithDateCache(c *dates.Cache) Option {
	return func(b *Builder) {
		if c != nil {
			b.dates = c
		}
	}
}

// WithPastaResolver shares a pasta resolver across builders of the same load.
func WithPastaResolver(p *PastaResolver) Option {
	return func(b *Builder) {
		if p != nil {
			b.pasta = p
		}
	}
}

// WithLogger sets the logger used for build diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBuilder creates a builder for cfg.
func NewBuilder(cfg Config, optFns ...Option) *Builder {
	b := &Builder{
		cfg:            cfg,
		logger:         slog.New(slog.DiscardHandler),
		excludedLabels: make(map[string]struct{}, len(cfg.ExcludedSellerLabels)),
		excludedCodes:  make(map[string]struct{}, len(cfg.ExcludedSellerCodes)),
	}
	for _, fn := range optFns {
		fn(b)
	}
	if b.dates == nil {
		b.dates = dates.NewCache(0)
	}
	if b.pasta == nil {
		b.pasta = NewPastaResolver(cfg.Pasta)
	}

	for d := range cfg.Dimensions {
		b.dims = append(b.dims, d)
	}
	slices.Sort(b.dims)

	for _, l := range cfg.ExcludedSellerLabels {
		b.excludedLabels[strings.ToUpper(strings.TrimSpace(l))] = struct{}{}
	}
	for _, c := range cfg.ExcludedSellerCodes {
		b.excludedCodes[keys.NormalizeKey(c)] = struct{}{}
	}
	return b
}

// DateCache returns the date cache used by the builder.
func (b *Builder) DateCache() *dates.Cache { return b.dates }

// Pasta returns the pasta resolver used by the builder.
func (b *Builder) Pasta() *PastaResolver { return b.pasta }

// Build indexes seq in a single pass. Rewrites are written back to seq as
// row overrides before the row is indexed. Resolved pastas are written back
// too: on a *dataset.Table as a derived column attached after the pass, with
// overrides only for rows that are already patched, and on any other
// sequence through the row view.
func (b *Builder) Build(ctx context.Context, seq dataset.Sequence) (*Indices, error) {
	start := time.Now()
	ix := newIndices()
	ix.rows = seq.Len()
	if err := conv.CheckRows(ix.rows); err != nil {
		return nil, err
	}

	rd := newFieldReader(seq)
	branchDates := make(map[string]time.Time)

	writePasta := b.cfg.WritePasta && b.cfg.PastaField != ""
	var derived dataset.StringColumn
	derivedChanged := false
	if writePasta && rd.tbl != nil {
		derived = make(dataset.StringColumn, ix.rows)
	}

	for i := 0; i < ix.rows; i++ {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		row, ok := seq.Get(i)
		if !ok {
			continue
		}

		b.applyRewrites(rd, row, i)

		storedPasta := rd.str(row, i, b.cfg.PastaField)
		pasta := b.pasta.Resolve(storedPasta, rd.str(row, i, b.cfg.SupplierNameField))
		if writePasta {
			switch {
			case derived == nil:
				if pasta != storedPasta {
					row.Set(b.cfg.PastaField, pasta)
				}
			case rd.tbl.Overridden(i):
				derived[i] = pasta
				if pasta != storedPasta {
					row.Set(b.cfg.PastaField, pasta)
				}
			default:
				derived[i] = pasta
				if pasta != storedPasta {
					derivedChanged = true
				}
			}
		}

		client := keys.NormalizeKey(rd.str(row, i, b.cfg.ClientField))
		sellerCode := keys.NormalizeKey(rd.str(row, i, b.cfg.SellerCodeField))
		branch := keys.NormalizeBranch(rd.str(row, i, b.cfg.BranchField))

		var orderDate time.Time
		var hasDate bool
		if raw, ok := rd.value(row, i, b.cfg.DateField); ok {
			orderDate, hasDate = b.dates.Parse(raw)
		}
		if hasDate {
			if orderDate.After(ix.MaxDate) {
				ix.MaxDate = orderDate
			}
			if dates.IsWorkingDay(orderDate, b.cfg.Holidays) {
				ix.workingDays[dates.Day(orderDate)] = struct{}{}
			}
		}

		id := uint32(i)
		for _, dim := range b.dims {
			var v string
			switch dim {
			case DimPasta:
				v = pasta
			case DimClient:
				v = client
			case DimSeller:
				v = sellerCode
			case DimBranch:
				v = branch
			case DimCity:
				v = strings.TrimSpace(rd.str(row, i, b.cfg.Dimensions[dim]))
				if v == "" && b.cfg.ClientCities != nil {
					v = b.cfg.ClientCities[client]
				}
			default:
				v = strings.TrimSpace(rd.str(row, i, b.cfg.Dimensions[dim]))
			}
			if v != "" {
				ix.add(dim, v, id)
			}
		}

		if product := strings.TrimSpace(rd.str(row, i, b.cfg.ProductField)); product != "" {
			if _, ok := ix.ProductPasta[product]; !ok {
				ix.ProductPasta[product] = pasta
			}
		}
		if supplier := strings.TrimSpace(rd.str(row, i, b.cfg.SupplierCodeField)); supplier != "" {
			if _, ok := ix.SupplierPasta[supplier]; !ok {
				ix.SupplierPasta[supplier] = pasta
			}
		}

		if client != "" && branch != "" {
			if last, ok := branchDates[client]; !ok || !orderDate.Before(last) {
				branchDates[client] = orderDate
				ix.ClientLastBranch[client] = branch
			}
		}

		if sellerCode != "" {
			b.attributeSeller(ix, rd, row, i, sellerCode, orderDate)
		}
	}

	if derivedChanged {
		rd.tbl.SetColumn(b.cfg.PastaField, derived)
	}
	b.finishSellers(ix)

	b.logger.DebugContext(ctx, "index build completed",
		"rows", ix.rows,
		"dimensions", len(ix.dims),
		"sellers", len(ix.Sellers),
		"working_days", len(ix.workingDays),
		"duration", time.Since(start),
	)
	return ix, nil
}

// attributeSeller keeps, per seller code, the attribution of the most recent
// order. Equal or missing dates keep the first row seen.
func (b *Builder) attributeSeller(ix *Indices, rd *fieldReader, row dataset.Row, i int, code string, orderDate time.Time) {
	if _, skip := b.excludedCodes[code]; skip {
		return
	}
	name := strings.TrimSpace(rd.str(row, i, b.cfg.SellerNameField))
	if _, skip := b.excludedLabels[strings.ToUpper(name)]; skip {
		return
	}
	if cur, ok := ix.Sellers[code]; ok && !orderDate.After(cur.LastOrder) {
		return
	}
	ix.Sellers[code] = SellerInfo{
		Code:           code,
		Name:           name,
		Supervisor:     strings.TrimSpace(rd.str(row, i, b.cfg.SupervisorField)),
		SupervisorCode: strings.TrimSpace(rd.str(row, i, b.cfg.SupervisorCodeField)),
		LastOrder:      orderDate,
	}
}

func (b *Builder) finishSellers(ix *Indices) {
	for code, info := range ix.Sellers {
		if info.Supervisor != "" {
			ix.SupervisorSellers[info.Supervisor] = append(ix.SupervisorSellers[info.Supervisor], code)
		}
		if info.Name != "" {
			if prev, ok := ix.SellerCodeByName[info.Name]; !ok || code < prev {
				ix.SellerCodeByName[info.Name] = code
			}
		}
	}
	for _, codes := range ix.SupervisorSellers {
		sort.Strings(codes)
	}
}

func (b *Builder) applyRewrites(rd *fieldReader, row dataset.Row, i int) {
	for _, rw := range b.cfg.Rewrites {
		if len(rw.When) == 0 {
			continue
		}
		match := true
		for field, want := range rw.When {
			if keys.NormalizeKey(rd.str(row, i, field)) != keys.NormalizeKey(want) {
				match = false
				break
			}
		}
		if !match {
			continue
		}
		for field, v := range rw.Set {
			row.Set(field, v)
		}
	}
}

// Backfill assigns a pasta to catalog products that never appeared in the
// indexed table but share a supplier code with one that did. It returns the
// number of products filled. When pastaField is set, the catalog row is
// patched as well; a row that already carries a pasta keeps it and is only
// recorded. A nil resolver treats blank values as missing.
func (ix *Indices) Backfill(catalog dataset.Sequence, pasta *PastaResolver, productField, supplierField, pastaField string) int {
	missing := func(v string) bool { return strings.TrimSpace(v) == "" }
	if pasta != nil {
		missing = pasta.IsMissing
	}

	filled := 0
	n := catalog.Len()
	for i := 0; i < n; i++ {
		row, ok := catalog.Get(i)
		if !ok {
			continue
		}
		product := strings.TrimSpace(row.String(productField))
		if product == "" {
			continue
		}
		if _, known := ix.ProductPasta[product]; known {
			continue
		}
		if pastaField != "" {
			if existing := row.String(pastaField); !missing(existing) {
				ix.ProductPasta[product] = strings.TrimSpace(existing)
				continue
			}
		}
		inferred, ok := ix.SupplierPasta[strings.TrimSpace(row.String(supplierField))]
		if !ok {
			continue
		}
		ix.ProductPasta[product] = inferred
		if pastaField != "" {
			row.Set(pastaField, inferred)
		}
		filled++
	}
	return filled
}

// fieldReader reads columns directly when the sequence is columnar and the
// row carries no override, and falls back to the row view otherwise.
type fieldReader struct {
	tbl  *dataset.Table
	cols map[string]dataset.Column
}

func newFieldReader(seq dataset.Sequence) *fieldReader {
	rd := &fieldReader{}
	if tbl, ok := seq.(*dataset.Table); ok {
		rd.tbl = tbl
		rd.cols = make(map[string]dataset.Column)
		for _, name := range tbl.Columns() {
			if c, ok := tbl.Column(name); ok {
				rd.cols[name] = c
			}
		}
	}
	return rd
}

func (rd *fieldReader) value(row dataset.Row, i int, field string) (any, bool) {
	if field == "" {
		return nil, false
	}
	if rd.tbl != nil && !rd.tbl.Overridden(i) {
		c, ok := rd.cols[field]
		if !ok {
			return nil, false
		}
		return c.Value(i)
	}
	return row.Get(field)
}

func (rd *fieldReader) str(row dataset.Row, i int, field string) string {
	v, ok := rd.value(row, i, field)
	if !ok {
		return ""
	}
	return dataset.AsString(v)
}
