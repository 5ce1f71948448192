package types

import (
	"errors"
	"math"
	"unicode/utf8"
)

// Debt records that a debtor owes a creditor an amount in an unspecified
// currency unit.
type Debt struct {
	ID        uint64 `json:"id"`
	Debtor    string `json:"debtor"`
	Creditor  string `json:"creditor"`
	Amount    uint64 `json:"amount"`
	CreatedAt uint64 `json:"created_at"` // Unix nanoseconds.
}

// DebtPayload is the caller-supplied part of a Debt, used by add and update.
type DebtPayload struct {
	Debtor   string `json:"debtor"`
	Creditor string `json:"creditor"`
	Amount   uint64 `json:"amount"`
}

// Escrow holds an amount against an existing debt.
type Escrow struct {
	DebtID    uint64 `json:"debt_id"`
	Amount    uint64 `json:"amount"`
	CreatedAt uint64 `json:"created_at"` // Unix nanoseconds.
}

// EscrowPayload requests an escrow for DebtID.
type EscrowPayload struct {
	DebtID uint64 `json:"debt_id"`
	Amount uint64 `json:"amount"`
}

// Payload validation errors.
var (
	ErrDebtorEmpty   = errors.New("debtor must not be empty")
	ErrCreditorEmpty = errors.New("creditor must not be empty")
	ErrAmountZero    = errors.New("amount must be greater than zero")
	ErrInvalidUTF8   = errors.New("text must be valid UTF-8")
)

// Validate checks that debtor and creditor are set and valid UTF-8, that
// amount is non-zero, and that the resulting Debt fits in MaxRecordSize
// whatever id and timestamp it is later given.
func (p DebtPayload) Validate() error {
	if p.Debtor == "" {
		return ErrDebtorEmpty
	}
	if p.Creditor == "" {
		return ErrCreditorEmpty
	}
	if p.Amount == 0 {
		return ErrAmountZero
	}
	if !utf8.ValidString(p.Debtor) || !utf8.ValidString(p.Creditor) {
		return ErrInvalidUTF8
	}
	return CheckRecordSize(Debt{
		ID:        math.MaxUint64,
		Debtor:    p.Debtor,
		Creditor:  p.Creditor,
		Amount:    p.Amount,
		CreatedAt: math.MaxUint64,
	})
}

// Validate checks that the escrow amount is non-zero. Whether DebtID names
// an existing debt is checked by the service, not here.
func (p EscrowPayload) Validate() error {
	if p.Amount == 0 {
		return ErrAmountZero
	}
	return nil
}
