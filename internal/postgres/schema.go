// Package postgres implements the Postgres storage backend for agriledger.
// Records live in one table per kind plus a counters table; tables are
// created on Attach when missing, so state survives restarts.
package postgres

// Schema DDL. uint64 values are stored bit-cast to BIGINT (see toDB and
// fromDB).
const (
	createDebts = `CREATE TABLE IF NOT EXISTS debts (
    id BIGINT PRIMARY KEY,
    debtor TEXT NOT NULL,
    creditor TEXT NOT NULL,
    amount BIGINT NOT NULL,
    created_at BIGINT NOT NULL
)`

	createEscrows = `CREATE TABLE IF NOT EXISTS escrows (
    debt_id BIGINT PRIMARY KEY,
    amount BIGINT NOT NULL,
    created_at BIGINT NOT NULL
)`

	createCropInsurance = `CREATE TABLE IF NOT EXISTS crop_insurance (
    id BIGINT PRIMARY KEY,
    farmer TEXT NOT NULL,
    crop_type TEXT NOT NULL,
    coverage_amount BIGINT NOT NULL,
    coverage_start_date BIGINT NOT NULL,
    coverage_end_date BIGINT NOT NULL
)`

	createInsuranceClaims = `CREATE TABLE IF NOT EXISTS insurance_claims (
    claim_id BIGINT PRIMARY KEY,
    insurance_id BIGINT NOT NULL,
    claim_amount BIGINT NOT NULL,
    claim_date BIGINT NOT NULL
)`

	createCounters = `CREATE TABLE IF NOT EXISTS counters (
    name TEXT PRIMARY KEY,
    value BIGINT NOT NULL
)`

	idxInsuranceClaimsInsurance = `CREATE INDEX IF NOT EXISTS idx_insurance_claims_insurance ON insurance_claims(insurance_id)`
)

var schemaDDL = []string{
	createDebts,
	createEscrows,
	createCropInsurance,
	createInsuranceClaims,
	createCounters,
	idxInsuranceClaimsInsurance,
}

func toDB(v uint64) int64 { return int64(v) }

func fromDB(v int64) uint64 { return uint64(v) }
