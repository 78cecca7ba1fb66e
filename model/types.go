package model

// RowID is the dense, zero-based position of a row within a table.
type RowID uint32

// TableName identifies a logical table within a loaded bundle.
type TableName string

// Well-known tables produced by the ETL worker.
const (
	TableDetailed   TableName = "detailed"
	TableHistory    TableName = "history"
	TableClients    TableName = "clients"
	TableProducts   TableName = "products"
	TableHierarchy  TableName = "hierarchy"
	TableStock      TableName = "stock"
	TableInnovation TableName = "innovations"
)

// AllTables lists every table the ETL worker emits.
var AllTables = []TableName{
	TableDetailed, TableHistory, TableClients, TableProducts,
	TableHierarchy, TableStock, TableInnovation,
}

// String implements fmt.Stringer.
func (t TableName) String() string { return string(t) }

// Well-known sales columns.
const (
	FieldClient         = "CODCLI"
	FieldSellerCode     = "CODUSUR"
	FieldSellerName     = "NOME"
	FieldSupervisor     = "SUPERV"
	FieldSupervisorCode = "CODSUPERVISOR"
	FieldOrderDate      = "DTPED"
	FieldProduct        = "PRODUTO"
	FieldDescription    = "DESCRICAO"
	FieldSupplierName   = "FORNECEDOR"
	FieldSupplierCode   = "CODFOR"
	FieldPasta          = "OBSERVACAOFOR"
	FieldQuantity       = "QTVENDA"
	FieldValue          = "VLVENDA"
	FieldBonus          = "VLBONIFIC"
	FieldSaleType       = "TIPOVENDA"
	FieldBranch         = "FILIAL"
	FieldCity           = "CIDADE"
)
