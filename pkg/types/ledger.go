package types

import "errors"

// Ledger groups the four record stores and the shared identifier counter
// behind one backend. Callers attach to a backend, use the tables, and
// detach when done.
type Ledger interface {
	// Debts is keyed by Debt.ID.
	Debts() Table[Debt]

	// Escrows is keyed by Escrow.DebtID, so a debt has at most one escrow.
	Escrows() Table[Escrow]

	// CropInsurance is keyed by CropInsurance.ID.
	CropInsurance() Table[CropInsurance]

	// Claims is keyed by InsuranceClaim.ClaimID.
	Claims() Table[InsuranceClaim]

	// Counter is the identifier generator shared by every table.
	Counter() Counter

	// Attach connects the Ledger to the backend described by config.
	// Returns ErrAlreadyAttached if called while already attached.
	Attach(config Config) error

	// Detach flushes pending writes and releases backend resources.
	// Idempotent: multiple calls succeed. After Detach, table and counter
	// operations return ErrLedgerDetached.
	Detach() error
}

// Ledger lifecycle errors.
var (
	ErrLedgerDetached  = errors.New("ledger is detached")
	ErrAlreadyAttached = errors.New("ledger is already attached")
)
