package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDebtPayloadValidate(t *testing.T) {
	tests := []struct {
		name    string
		payload DebtPayload
		wantErr error
	}{
		{"valid", DebtPayload{Debtor: "alice", Creditor: "bob", Amount: 100}, nil},
		{"empty debtor", DebtPayload{Creditor: "bob", Amount: 100}, ErrDebtorEmpty},
		{"empty creditor", DebtPayload{Debtor: "alice", Amount: 100}, ErrCreditorEmpty},
		{"zero amount", DebtPayload{Debtor: "alice", Creditor: "bob"}, ErrAmountZero},
		{"everything missing reports debtor first", DebtPayload{}, ErrDebtorEmpty},
		{"non-ascii names", DebtPayload{Debtor: "Zoë", Creditor: "Ørjan", Amount: 1}, nil},
		{"invalid utf-8 debtor", DebtPayload{Debtor: "al\xffice", Creditor: "bob", Amount: 1}, ErrInvalidUTF8},
		{"invalid utf-8 creditor", DebtPayload{Debtor: "alice", Creditor: "b\xc3", Amount: 1}, ErrInvalidUTF8},
		{"too large", DebtPayload{Debtor: strings.Repeat("x", MaxRecordSize), Creditor: "bob", Amount: 1}, ErrRecordTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.payload.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestEscrowPayloadValidate(t *testing.T) {
	assert.NoError(t, EscrowPayload{DebtID: 0, Amount: 1}.Validate())
	assert.ErrorIs(t, EscrowPayload{DebtID: 7}.Validate(), ErrAmountZero)
}

func TestCropInsurancePayloadValidate(t *testing.T) {
	tests := []struct {
		name    string
		payload CropInsurancePayload
		wantErr error
	}{
		{"valid", CropInsurancePayload{Farmer: "farmerA", CropType: "wheat", CoverageAmount: 1000}, nil},
		{"end before start is accepted", CropInsurancePayload{Farmer: "f", CropType: "corn", CoverageAmount: 1, CoverageStartDate: 200, CoverageEndDate: 100}, nil},
		{"empty farmer", CropInsurancePayload{CropType: "wheat", CoverageAmount: 1000}, ErrFarmerEmpty},
		{"empty crop type", CropInsurancePayload{Farmer: "farmerA", CoverageAmount: 1000}, ErrCropTypeEmpty},
		{"zero coverage", CropInsurancePayload{Farmer: "farmerA", CropType: "wheat"}, ErrCoverageZero},
		{"invalid utf-8 crop type", CropInsurancePayload{Farmer: "f", CropType: "\xfe", CoverageAmount: 1}, ErrInvalidUTF8},
		{"too large", CropInsurancePayload{Farmer: "f", CropType: strings.Repeat("c", MaxRecordSize), CoverageAmount: 1}, ErrRecordTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.payload.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCheckRecordSize(t *testing.T) {
	assert.NoError(t, CheckRecordSize(Escrow{DebtID: 1, Amount: 1}))

	// Exactly MaxRecordSize bytes is accepted; one more is not.
	overhead := len(`{"id":1,"debtor":"","creditor":"","amount":1,"created_at":1}`)
	fits := Debt{ID: 1, Debtor: strings.Repeat("x", MaxRecordSize-overhead), Amount: 1, CreatedAt: 1}
	assert.NoError(t, CheckRecordSize(fits))
	fits.Debtor += "x"
	assert.ErrorIs(t, CheckRecordSize(fits), ErrRecordTooLarge)
}
