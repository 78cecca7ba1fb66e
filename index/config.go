package index

import (
	"github.com/hupe1980/salescube/dates"
	"github.com/hupe1980/salescube/model"
)

// Dimension names a filtering axis over sales rows.
type Dimension string

const (
	DimSeller     Dimension = "seller"
	DimSupervisor Dimension = "supervisor"
	DimSupplier   Dimension = "supplier"
	DimProduct    Dimension = "product"
	DimCity       Dimension = "city"
	DimClient     Dimension = "client"
	DimSaleType   Dimension = "saleType"
	DimBranch     Dimension = "branch"
	DimPasta      Dimension = "pasta"
)

// KeywordRule maps supplier names containing Keyword to Value.
type KeywordRule struct {
	Keyword string
	Value   string
}

// PastaRule configures pasta inference for rows whose pasta field is missing.
type PastaRule struct {
	// Rules are tried in order against the upper-cased, trimmed supplier name.
	Rules []KeywordRule
	// Fallback is used when no rule matches.
	Fallback string
	// Missing lists values that count as "no pasta".
	Missing []string
}

// DefaultPastaRule returns the distributor's default classification.
func DefaultPastaRule() PastaRule {
	return PastaRule{
		Rules:    []KeywordRule{{Keyword: "PEPSICO", Value: "PEPSICO"}},
		Fallback: "MULTIMARCAS",
		Missing:  []string{"", "0", "00", "N/A"},
	}
}

// Rewrite patches rows whose fields all match When (compared after key
// normalization) with the values in Set. Rewrites are applied as row
// overrides before indexing.
type Rewrite struct {
	When map[string]string
	Set  map[string]string
}

// Config describes which columns feed which dimensions and side maps.
type Config struct {
	// Dimensions maps each tracked dimension to its source column.
	Dimensions map[Dimension]string

	ClientField         string
	SellerCodeField     string
	SellerNameField     string
	SupervisorField     string
	SupervisorCodeField string
	ProductField        string
	SupplierCodeField   string
	SupplierNameField   string
	PastaField          string
	DateField           string
	BranchField         string

	Pasta PastaRule

	// WritePasta stores the resolved pasta in PastaField when it differs from
	// the stored value. Columnar tables receive it as a derived column.
	WritePasta bool

	// ExcludedSellerLabels are seller names (e.g. placeholder accounts) whose
	// rows never establish a seller -> supervisor mapping.
	ExcludedSellerLabels []string
	// ExcludedSellerCodes are seller codes skipped for the same purpose.
	ExcludedSellerCodes []string

	Rewrites []Rewrite

	// ClientCities resolves the city dimension for tables that carry no city
	// column. Keys are normalized client codes.
	ClientCities map[string]string

	Holidays dates.Holidays
}

// DefaultConfig returns the configuration for the sales tables produced by
// the ETL worker.
func DefaultConfig() Config {
	return Config{
		Dimensions: map[Dimension]string{
			DimSeller:     model.FieldSellerCode,
			DimSupervisor: model.FieldSupervisor,
			DimSupplier:   model.FieldSupplierCode,
			DimProduct:    model.FieldProduct,
			DimCity:       model.FieldCity,
			DimClient:     model.FieldClient,
			DimSaleType:   model.FieldSaleType,
			DimBranch:     model.FieldBranch,
			DimPasta:      model.FieldPasta,
		},
		ClientField:          model.FieldClient,
		SellerCodeField:      model.FieldSellerCode,
		SellerNameField:      model.FieldSellerName,
		SupervisorField:      model.FieldSupervisor,
		SupervisorCodeField:  model.FieldSupervisorCode,
		ProductField:         model.FieldProduct,
		SupplierCodeField:    model.FieldSupplierCode,
		SupplierNameField:    model.FieldSupplierName,
		PastaField:           model.FieldPasta,
		DateField:            model.FieldOrderDate,
		BranchField:          model.FieldBranch,
		Pasta:                DefaultPastaRule(),
		WritePasta:           true,
		ExcludedSellerLabels: []string{"INATIVOS"},
		ExcludedSellerCodes:  []string{"1001"},
	}
}
