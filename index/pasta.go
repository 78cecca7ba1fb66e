package index

import (
	"strings"

	"github.com/hupe1980/salescube/internal/cache"
	"github.com/hupe1980/salescube/keys"
)

// PastaResolver classifies rows into a pasta. Inference results are cached
// per distinct supplier name.
type PastaResolver struct {
	rule     PastaRule
	keywords []KeywordRule // upper-cased copies of rule.Rules
	byName   *cache.LRU[string, string]
}

// NewPastaResolver creates a resolver for rule.
func NewPastaResolver(rule PastaRule) *PastaResolver {
	kw := make([]KeywordRule, 0, len(rule.Rules))
	for _, r := range rule.Rules {
		k := strings.ToUpper(strings.TrimSpace(r.Keyword))
		if k == "" {
			continue
		}
		kw = append(kw, KeywordRule{Keyword: k, Value: r.Value})
	}
	return &PastaResolver{
		rule:     rule,
		keywords: kw,
		byName:   cache.NewLRU[string, string](0),
	}
}

// Resolve returns existing when it is a real pasta value, otherwise the pasta
// inferred from supplierName.
func (p *PastaResolver) Resolve(existing, supplierName string) string {
	if !p.IsMissing(existing) {
		return strings.TrimSpace(existing)
	}
	return p.Infer(supplierName)
}

// IsMissing reports whether v is empty or one of the configured sentinels.
func (p *PastaResolver) IsMissing(v string) bool {
	if strings.TrimSpace(v) == "" {
		return true
	}
	return keys.IsSentinel(v, p.rule.Missing)
}

// Infer classifies a supplier name by keyword.
func (p *PastaResolver) Infer(supplierName string) string {
	return p.byName.GetOrCompute(supplierName, p.infer)
}

// CacheLen returns the number of distinct supplier names seen.
func (p *PastaResolver) CacheLen() int { return p.byName.Len() }

func (p *PastaResolver) infer(name string) string {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for _, r := range p.keywords {
		if strings.Contains(upper, r.Keyword) {
			return r.Value
		}
	}
	return p.rule.Fallback
}
