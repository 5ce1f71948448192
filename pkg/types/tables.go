package types

// Standard table names. Backends use them for SQL tables and JSONL files.
const (
	DebtsTable           = "debts"
	EscrowsTable         = "escrows"
	CropInsuranceTable   = "crop_insurance"
	InsuranceClaimsTable = "insurance_claims"
)

// StandardTableNames lists all standard table names for enumeration.
var StandardTableNames = []string{
	DebtsTable,
	EscrowsTable,
	CropInsuranceTable,
	InsuranceClaimsTable,
}
