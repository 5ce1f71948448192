package types

import (
	"errors"
	"math"
	"unicode/utf8"
)

// CropInsurance is a policy covering a farmer's crop for a date range.
// Coverage dates are caller-supplied and not checked for ordering.
type CropInsurance struct {
	ID                uint64 `json:"id"`
	Farmer            string `json:"farmer"`
	CropType          string `json:"crop_type"`
	CoverageAmount    uint64 `json:"coverage_amount"`
	CoverageStartDate uint64 `json:"coverage_start_date"`
	CoverageEndDate   uint64 `json:"coverage_end_date"`
}

// CropInsurancePayload requests a new policy.
type CropInsurancePayload struct {
	Farmer            string `json:"farmer"`
	CropType          string `json:"crop_type"`
	CoverageAmount    uint64 `json:"coverage_amount"`
	CoverageStartDate uint64 `json:"coverage_start_date"`
	CoverageEndDate   uint64 `json:"coverage_end_date"`
}

// InsuranceClaim is a claim filed against a CropInsurance policy.
// ClaimAmount is not compared against the policy's coverage.
type InsuranceClaim struct {
	ClaimID     uint64 `json:"claim_id"`
	InsuranceID uint64 `json:"insurance_id"`
	ClaimAmount uint64 `json:"claim_amount"`
	ClaimDate   uint64 `json:"claim_date"` // Unix nanoseconds.
}

// InsuranceClaimPayload requests a claim against InsuranceID.
// It has no Validate method: any claim amount, including zero, is accepted.
type InsuranceClaimPayload struct {
	InsuranceID uint64 `json:"insurance_id"`
	ClaimAmount uint64 `json:"claim_amount"`
}

var (
	ErrFarmerEmpty   = errors.New("farmer must not be empty")
	ErrCropTypeEmpty = errors.New("crop type must not be empty")
	ErrCoverageZero  = errors.New("coverage amount must be greater than zero")
)

// Validate checks that farmer and crop type are set and valid UTF-8, that
// coverage is non-zero, and that the resulting policy fits in MaxRecordSize.
func (p CropInsurancePayload) Validate() error {
	if p.Farmer == "" {
		return ErrFarmerEmpty
	}
	if p.CropType == "" {
		return ErrCropTypeEmpty
	}
	if p.CoverageAmount == 0 {
		return ErrCoverageZero
	}
	if !utf8.ValidString(p.Farmer) || !utf8.ValidString(p.CropType) {
		return ErrInvalidUTF8
	}
	return CheckRecordSize(CropInsurance{
		ID:                math.MaxUint64,
		Farmer:            p.Farmer,
		CropType:          p.CropType,
		CoverageAmount:    p.CoverageAmount,
		CoverageStartDate: p.CoverageStartDate,
		CoverageEndDate:   p.CoverageEndDate,
	})
}
