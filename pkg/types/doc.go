// Package types defines the Ledger, Table and Counter interfaces, the four
// record kinds (Debt, Escrow, CropInsurance, InsuranceClaim), their request
// payloads and validation, and the standard errors for agriledger.
package types
