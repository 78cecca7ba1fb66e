package query

import (
	"maps"
	"slices"
	"strings"

	"github.com/hupe1980/salescube/index"
	"github.com/hupe1980/salescube/keys"
)

// AllBranches is the branch selector meaning "no branch restriction".
const AllBranches = "ambas"

// Filter is a request-scoped filter descriptor. Zero-valued fields are
// inactive. Filters on different dimensions are ANDed; values of a
// multi-select field are ORed.
type Filter struct {
	// Branch selects one branch. "" and AllBranches select every branch.
	Branch string

	SaleTypes   []string
	Suppliers   []string
	Products    []string
	Sellers     []string
	Supervisors []string

	Client string
	City   string
	Pasta  string

	// ClientAllowList restricts results to these client codes. Codes are
	// normalized before matching.
	// Nil means no restriction; an empty non-nil set matches nothing.
	ClientAllowList map[string]struct{}

	// Equal and In address any indexed dimension directly.
	Equal map[index.Dimension]string
	In    map[index.Dimension][]string
}

// term is one resolved filter: a dimension and its accepted values.
type term struct {
	dim    index.Dimension
	values []string
	single bool
}

// normalizerFor returns the key normalization the index applies to dim.
func normalizerFor(dim index.Dimension) func(string) string {
	switch dim {
	case index.DimClient, index.DimSeller:
		return keys.NormalizeKey
	case index.DimBranch:
		return keys.NormalizeBranch
	}
	return strings.TrimSpace
}

// terms returns the active dimension filters in a canonical order with
// values normalized the way the index stores them.
func (f Filter) terms() []term {
	var out []term
	addSingle := func(dim index.Dimension, v string) {
		v = normalizerFor(dim)(strings.TrimSpace(v))
		if v == "" {
			return
		}
		out = append(out, term{dim: dim, values: []string{v}, single: true})
	}
	addMulti := func(dim index.Dimension, vs []string) {
		if len(vs) == 0 {
			return
		}
		norm := normalizerFor(dim)
		set := make(map[string]struct{}, len(vs))
		for _, v := range vs {
			v = norm(strings.TrimSpace(v))
			if v != "" {
				set[v] = struct{}{}
			}
		}
		// A multi-select whose values are all blank still constrains the result.
		out = append(out, term{dim: dim, values: slices.Sorted(maps.Keys(set))})
	}

	if b := strings.TrimSpace(f.Branch); !strings.EqualFold(b, AllBranches) {
		addSingle(index.DimBranch, b)
	}
	addSingle(index.DimClient, f.Client)
	addSingle(index.DimCity, f.City)
	addSingle(index.DimPasta, f.Pasta)
	addMulti(index.DimSaleType, f.SaleTypes)
	addMulti(index.DimSupplier, f.Suppliers)
	addMulti(index.DimProduct, f.Products)
	addMulti(index.DimSeller, f.Sellers)
	addMulti(index.DimSupervisor, f.Supervisors)

	for _, dim := range slices.Sorted(maps.Keys(f.Equal)) {
		addSingle(dim, f.Equal[dim])
	}
	for _, dim := range slices.Sorted(maps.Keys(f.In)) {
		addMulti(dim, f.In[dim])
	}
	return out
}

// normalizedAllowList returns allow with every key normalized. A nil set
// stays nil.
func normalizedAllowList(allow map[string]struct{}) map[string]struct{} {
	if allow == nil {
		return nil
	}
	out := make(map[string]struct{}, len(allow))
	for k := range allow {
		out[keys.NormalizeKey(k)] = struct{}{}
	}
	return out
}

// IsZero reports whether the filter has no active constraint.
func (f Filter) IsZero() bool {
	return f.ClientAllowList == nil && len(f.terms()) == 0
}

// signature renders terms into a stable text key.
func signature(terms []term) string {
	var sb strings.Builder
	for _, t := range terms {
		sb.WriteString(string(t.dim))
		if t.single {
			sb.WriteByte('=')
		} else {
			sb.WriteString("~")
		}
		for i, v := range t.values {
			if i > 0 {
				sb.WriteByte(0x1f)
			}
			sb.WriteString(v)
		}
		sb.WriteByte(0x1e)
	}
	return sb.String()
}
