// Package sqlite implements the SQLite storage backend for agriledger.
// SQLite is the query engine; one JSONL file per table in DataDir is the
// source of truth and is reloaded into a fresh database on every Attach.
package sqlite

// Schema DDL for all tables. uint64 values are stored bit-cast to INTEGER
// (see toDB and fromDB) because database/sql rejects uint64 values with the
// high bit set.
const (
	createDebts = `CREATE TABLE debts (
    id INTEGER PRIMARY KEY,
    debtor TEXT NOT NULL,
    creditor TEXT NOT NULL,
    amount INTEGER NOT NULL,
    created_at INTEGER NOT NULL
);`

	createEscrows = `CREATE TABLE escrows (
    debt_id INTEGER PRIMARY KEY,
    amount INTEGER NOT NULL,
    created_at INTEGER NOT NULL
);`

	createCropInsurance = `CREATE TABLE crop_insurance (
    id INTEGER PRIMARY KEY,
    farmer TEXT NOT NULL,
    crop_type TEXT NOT NULL,
    coverage_amount INTEGER NOT NULL,
    coverage_start_date INTEGER NOT NULL,
    coverage_end_date INTEGER NOT NULL
);`

	createInsuranceClaims = `CREATE TABLE insurance_claims (
    claim_id INTEGER PRIMARY KEY,
    insurance_id INTEGER NOT NULL,
    claim_amount INTEGER NOT NULL,
    claim_date INTEGER NOT NULL
);`

	createCounters = `CREATE TABLE counters (
    name TEXT PRIMARY KEY,
    value INTEGER NOT NULL
);`
)

const idxInsuranceClaimsInsurance = `CREATE INDEX idx_insurance_claims_insurance ON insurance_claims(insurance_id);`

// schemaDDL lists all statements executed on a fresh database, in order.
var schemaDDL = []string{
	createDebts,
	createEscrows,
	createCropInsurance,
	createInsuranceClaims,
	createCounters,
	idxInsuranceClaimsInsurance,
}

// toDB bit-casts a uint64 for storage in an INTEGER column.
func toDB(v uint64) int64 { return int64(v) }

// fromDB reverses toDB.
func fromDB(v int64) uint64 { return uint64(v) }
