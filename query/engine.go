package query

import (
	"log/slog"
	"slices"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/salescube/dataset"
	"github.com/hupe1980/salescube/index"
	"github.com/hupe1980/salescube/internal/cache"
	"github.com/hupe1980/salescube/keys"
	"github.com/hupe1980/salescube/model"
)

// Metrics receives query-level observations.
type Metrics interface {
	// RecordQuery is called after every query with the number of matching rows.
	RecordQuery(duration time.Duration, rows int)
	// RecordShortCircuit is called when a query ends early on an empty
	// candidate set or a negative cache hit.
	RecordShortCircuit()
}

type noopMetrics struct{}

func (noopMetrics) RecordQuery(time.Duration, int) {}
func (noopMetrics) RecordShortCircuit()            {}

// Engine evaluates filters against one table and its indices.
// It is safe for concurrent use.
type Engine struct {
	seq         dataset.Sequence
	ix          *index.Indices
	clientField string
	metrics     Metrics
	logger      *slog.Logger
	negative    *cache.LRU[string, struct{}]
}

// Option configures an Engine.
type Option func(*Engine)

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(e *Engine) {
		if m != nil {
			e.metrics = m
		}
	}
}

// WithLogger sets the logger for query diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClientField sets the column the client allow-list is checked against.
func WithClientField(field string) Option {
	return func(e *Engine) {
		e.clientField = field
	}
}

// WithNegativeCache remembers up to capacity filter signatures whose
// dimension lookups produced no rows. The cache lives as long as the engine,
// so an engine must be rebuilt together with its indices.
func WithNegativeCache(capacity int) Option {
	return func(e *Engine) {
		if capacity > 0 {
			e.negative = cache.NewLRU[string, struct{}](capacity)
		}
	}
}

// New creates an engine over seq and the indices built from it.
func New(seq dataset.Sequence, ix *index.Indices, optFns ...Option) *Engine {
	e := &Engine{
		seq:         seq,
		ix:          ix,
		clientField: model.FieldClient,
		metrics:     noopMetrics{},
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, fn := range optFns {
		fn(e)
	}
	return e
}

// Sequence returns the table the engine reads rows from.
func (e *Engine) Sequence() dataset.Sequence { return e.seq }

// Indices returns the indices the engine looks values up in.
func (e *Engine) Indices() *index.Indices { return e.ix }

// RowIDs returns the ids of the rows matching f. The bitmap is owned by the
// caller.
func (e *Engine) RowIDs(f Filter) *roaring.Bitmap {
	start := time.Now()
	ids := e.evaluate(f)
	e.metrics.RecordQuery(time.Since(start), int(ids.GetCardinality()))
	return ids
}

// Rows returns the rows matching f in ascending position order. With no
// active filter the whole table is returned.
func (e *Engine) Rows(f Filter) []dataset.Row {
	if f.IsZero() {
		start := time.Now()
		rows := e.seq.Values()
		e.metrics.RecordQuery(time.Since(start), len(rows))
		return rows
	}
	ids := e.RowIDs(f)
	rows := make([]dataset.Row, 0, ids.GetCardinality())
	it := ids.Iterator()
	for it.HasNext() {
		if r, ok := e.seq.Get(int(it.Next())); ok {
			rows = append(rows, r)
		}
	}
	return rows
}

// Count returns the number of rows matching f.
func (e *Engine) Count(f Filter) int {
	if f.IsZero() {
		return e.seq.Len()
	}
	return int(e.RowIDs(f).GetCardinality())
}

func (e *Engine) evaluate(f Filter) *roaring.Bitmap {
	terms := f.terms()

	var result *roaring.Bitmap
	if len(terms) == 0 {
		result = e.all()
	} else {
		result = e.intersect(terms)
	}

	if f.ClientAllowList != nil && !result.IsEmpty() {
		e.applyAllowList(result, normalizedAllowList(f.ClientAllowList))
	}
	return result
}

func (e *Engine) all() *roaring.Bitmap {
	bm := roaring.New()
	if n := e.seq.Len(); n > 0 {
		bm.AddRange(0, uint64(n))
	}
	return bm
}

func (e *Engine) intersect(terms []term) *roaring.Bitmap {
	var sig string
	if e.negative != nil {
		sig = signature(terms)
		if _, hit := e.negative.Get(sig); hit {
			e.metrics.RecordShortCircuit()
			return roaring.New()
		}
	}

	candidates := make([]*roaring.Bitmap, 0, len(terms))
	// owned marks candidates built for this query that may be mutated.
	owned := make([]bool, 0, len(terms))
	for _, t := range terms {
		bm, fresh := e.candidate(t)
		if bm == nil || bm.IsEmpty() {
			e.logger.Debug("query short-circuit", "dimension", t.dim, "values", t.values)
			e.metrics.RecordShortCircuit()
			e.rememberEmpty(sig)
			return roaring.New()
		}
		candidates = append(candidates, bm)
		owned = append(owned, fresh)
	}

	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		ca, cb := candidates[a].GetCardinality(), candidates[b].GetCardinality()
		switch {
		case ca < cb:
			return -1
		case ca > cb:
			return 1
		}
		return 0
	})

	work := candidates[order[0]]
	if !owned[order[0]] {
		work = work.Clone()
	}
	for _, i := range order[1:] {
		work.And(candidates[i])
		if work.IsEmpty() {
			e.metrics.RecordShortCircuit()
			e.rememberEmpty(sig)
			return work
		}
	}
	return work
}

// candidate resolves one term to its posting list. fresh reports whether the
// bitmap was allocated for this call.
func (e *Engine) candidate(t term) (bm *roaring.Bitmap, fresh bool) {
	if t.single {
		bm, _ := e.ix.Lookup(t.dim, t.values[0])
		return bm, false
	}
	parts := make([]*roaring.Bitmap, 0, len(t.values))
	for _, v := range t.values {
		if p, ok := e.ix.Lookup(t.dim, v); ok {
			parts = append(parts, p)
		}
	}
	switch len(parts) {
	case 0:
		return nil, false
	case 1:
		return parts[0], false
	}
	return roaring.FastOr(parts...), true
}

func (e *Engine) rememberEmpty(sig string) {
	if e.negative != nil {
		e.negative.Set(sig, struct{}{})
	}
}

func (e *Engine) applyAllowList(ids *roaring.Bitmap, allow map[string]struct{}) {
	drop := roaring.New()
	it := ids.Iterator()
	for it.HasNext() {
		id := it.Next()
		r, ok := e.seq.Get(int(id))
		if !ok {
			drop.Add(id)
			continue
		}
		if _, ok := allow[keys.NormalizeKey(r.String(e.clientField))]; !ok {
			drop.Add(id)
		}
	}
	ids.AndNot(drop)
}
