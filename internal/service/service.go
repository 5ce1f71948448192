// Package service implements the ledger operations on top of a types.Ledger.
// Every operation holds one mutex for its whole duration, so callers observe
// operations as if they ran one at a time.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/mesh-intelligence/agriledger/internal/metrics"
	"github.com/mesh-intelligence/agriledger/pkg/types"
)

// Operation names used in logs and metrics.
const (
	OpGetDebt               = "get_debt"
	OpGetEscrow             = "get_escrow"
	OpGetCropInsurance      = "get_crop_insurance"
	OpGetInsuranceClaim     = "get_insurance_claim"
	OpAddDebt               = "add_debt"
	OpUpdateDebt            = "update_debt"
	OpCreateEscrow          = "create_escrow"
	OpPurchaseCropInsurance = "purchase_crop_insurance"
	OpSubmitInsuranceClaim  = "submit_insurance_claim"
)

// Record kinds for the records-created metric.
const (
	kindDebt           = "debt"
	kindEscrow         = "escrow"
	kindCropInsurance  = "crop_insurance"
	kindInsuranceClaim = "insurance_claim"
)

// Messages returned to callers verbatim.
const (
	msgInvalidInput  = "Invalid input data"
	msgInvalidEscrow = "Invalid escrow amount"
)

// Service runs ledger operations against an attached Ledger.
type Service struct {
	mu      sync.Mutex
	ledger  types.Ledger
	now     func() time.Time
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(s *Service)

// WithClock replaces the time source used for created_at and claim_date.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service. The ledger must already be attached; the
// Service does not manage its lifecycle.
func New(ledger types.Ledger, opts ...Option) *Service {
	s := &Service{
		ledger: ledger,
		now:    time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetDebt returns the debt stored under id.
func (s *Service) GetDebt(ctx context.Context, id uint64) (debt types.Debt, err error) {
	defer s.begin(ctx, OpGetDebt)(&err, nil)

	debt, err = s.ledger.Debts().Get(id)
	if errors.Is(err, types.ErrRecordNotFound) {
		return types.Debt{}, types.NotFoundf("a debt with id=%d not found", id)
	}
	if err != nil {
		return types.Debt{}, fmt.Errorf("get debt %d: %w", id, err)
	}
	return debt, nil
}

// GetEscrow returns the escrow held against debtID.
func (s *Service) GetEscrow(ctx context.Context, debtID uint64) (escrow types.Escrow, err error) {
	defer s.begin(ctx, OpGetEscrow)(&err, nil)

	escrow, err = s.ledger.Escrows().Get(debtID)
	if errors.Is(err, types.ErrRecordNotFound) {
		return types.Escrow{}, types.NotFoundf("escrow for debt_id=%d not found", debtID)
	}
	if err != nil {
		return types.Escrow{}, fmt.Errorf("get escrow %d: %w", debtID, err)
	}
	return escrow, nil
}

// GetCropInsurance returns the policy stored under id.
func (s *Service) GetCropInsurance(ctx context.Context, id uint64) (policy types.CropInsurance, err error) {
	defer s.begin(ctx, OpGetCropInsurance)(&err, nil)

	policy, err = s.ledger.CropInsurance().Get(id)
	if errors.Is(err, types.ErrRecordNotFound) {
		return types.CropInsurance{}, types.NotFoundf("crop insurance with id=%d not found", id)
	}
	if err != nil {
		return types.CropInsurance{}, fmt.Errorf("get crop insurance %d: %w", id, err)
	}
	return policy, nil
}

// GetInsuranceClaim returns the claim stored under claimID.
func (s *Service) GetInsuranceClaim(ctx context.Context, claimID uint64) (claim types.InsuranceClaim, err error) {
	defer s.begin(ctx, OpGetInsuranceClaim)(&err, nil)

	claim, err = s.ledger.Claims().Get(claimID)
	if errors.Is(err, types.ErrRecordNotFound) {
		return types.InsuranceClaim{}, types.NotFoundf("insurance claim with id=%d not found", claimID)
	}
	if err != nil {
		return types.InsuranceClaim{}, fmt.Errorf("get insurance claim %d: %w", claimID, err)
	}
	return claim, nil
}

// AddDebt records a new debt. An invalid payload, including one whose record
// would exceed types.MaxRecordSize, yields (nil, nil): the caller gets an
// empty result and no detail about which field was rejected. No id is
// allocated for a rejected payload.
func (s *Service) AddDebt(ctx context.Context, payload types.DebtPayload) (debt *types.Debt, err error) {
	empty := false
	defer s.begin(ctx, OpAddDebt)(&err, &empty)

	if verr := payload.Validate(); verr != nil {
		s.logger.DebugContext(ctx, "debt rejected", "reason", verr)
		empty = true
		return nil, nil
	}

	id, err := s.nextID()
	if err != nil {
		return nil, err
	}
	d := types.Debt{
		ID:        id,
		Debtor:    payload.Debtor,
		Creditor:  payload.Creditor,
		Amount:    payload.Amount,
		CreatedAt: s.timestamp(),
	}
	if err := s.ledger.Debts().Set(id, d); err != nil {
		return nil, fmt.Errorf("store debt %d: %w", id, err)
	}

	s.logger.InfoContext(ctx, "debt added", "id", id, "amount", d.Amount)
	s.metrics.IncrementCreated(kindDebt)
	return &d, nil
}

// UpdateDebt replaces the debtor, creditor and amount of an existing debt.
// The id and created_at are kept. Validation runs before the existence
// check.
func (s *Service) UpdateDebt(ctx context.Context, id uint64, payload types.DebtPayload) (debt types.Debt, err error) {
	defer s.begin(ctx, OpUpdateDebt)(&err, nil)

	if verr := payload.Validate(); verr != nil {
		s.logger.DebugContext(ctx, "debt update rejected", "id", id, "reason", verr)
		return types.Debt{}, types.InvalidInput(msgInvalidInput)
	}

	debt, err = s.ledger.Debts().Get(id)
	if errors.Is(err, types.ErrRecordNotFound) {
		return types.Debt{}, types.NotFoundf("couldn't update a debt with id=%d. debt not found", id)
	}
	if err != nil {
		return types.Debt{}, fmt.Errorf("get debt %d: %w", id, err)
	}

	debt.Debtor = payload.Debtor
	debt.Creditor = payload.Creditor
	debt.Amount = payload.Amount
	if err := s.ledger.Debts().Set(id, debt); err != nil {
		return types.Debt{}, fmt.Errorf("store debt %d: %w", id, err)
	}

	s.logger.InfoContext(ctx, "debt updated", "id", id, "amount", debt.Amount)
	return debt, nil
}

// CreateEscrow holds an amount against an existing debt, replacing any
// escrow already held against it. Escrows are keyed by debt id and do not
// consume an identifier. The previous deployment advanced the shared counter
// here; that is intentionally not carried over.
func (s *Service) CreateEscrow(ctx context.Context, payload types.EscrowPayload) (escrow types.Escrow, err error) {
	defer s.begin(ctx, OpCreateEscrow)(&err, nil)

	if verr := payload.Validate(); verr != nil {
		s.logger.DebugContext(ctx, "escrow rejected", "debt_id", payload.DebtID, "reason", verr)
		return types.Escrow{}, types.InvalidInput(msgInvalidEscrow)
	}

	_, err = s.ledger.Debts().Get(payload.DebtID)
	if errors.Is(err, types.ErrRecordNotFound) {
		return types.Escrow{}, types.NotFoundf("couldn't create escrow for debt_id=%d. debt not found", payload.DebtID)
	}
	if err != nil {
		return types.Escrow{}, fmt.Errorf("get debt %d: %w", payload.DebtID, err)
	}

	escrow = types.Escrow{
		DebtID:    payload.DebtID,
		Amount:    payload.Amount,
		CreatedAt: s.timestamp(),
	}
	if err := s.ledger.Escrows().Set(payload.DebtID, escrow); err != nil {
		return types.Escrow{}, fmt.Errorf("store escrow %d: %w", payload.DebtID, err)
	}

	s.logger.InfoContext(ctx, "escrow created", "debt_id", escrow.DebtID, "amount", escrow.Amount)
	s.metrics.IncrementCreated(kindEscrow)
	return escrow, nil
}

// PurchaseCropInsurance records a new policy. An invalid payload yields
// (nil, nil), like AddDebt.
func (s *Service) PurchaseCropInsurance(ctx context.Context, payload types.CropInsurancePayload) (policy *types.CropInsurance, err error) {
	empty := false
	defer s.begin(ctx, OpPurchaseCropInsurance)(&err, &empty)

	if verr := payload.Validate(); verr != nil {
		s.logger.DebugContext(ctx, "crop insurance rejected", "reason", verr)
		empty = true
		return nil, nil
	}

	id, err := s.nextID()
	if err != nil {
		return nil, err
	}
	p := types.CropInsurance{
		ID:                id,
		Farmer:            payload.Farmer,
		CropType:          payload.CropType,
		CoverageAmount:    payload.CoverageAmount,
		CoverageStartDate: payload.CoverageStartDate,
		CoverageEndDate:   payload.CoverageEndDate,
	}
	if err := s.ledger.CropInsurance().Set(id, p); err != nil {
		return nil, fmt.Errorf("store crop insurance %d: %w", id, err)
	}

	s.logger.InfoContext(ctx, "crop insurance purchased", "id", id, "crop_type", p.CropType)
	s.metrics.IncrementCreated(kindCropInsurance)
	return &p, nil
}

// SubmitInsuranceClaim files a claim against an existing policy. The claim
// amount is not checked, not even against the policy's coverage.
func (s *Service) SubmitInsuranceClaim(ctx context.Context, payload types.InsuranceClaimPayload) (claim types.InsuranceClaim, err error) {
	defer s.begin(ctx, OpSubmitInsuranceClaim)(&err, nil)

	_, err = s.ledger.CropInsurance().Get(payload.InsuranceID)
	if errors.Is(err, types.ErrRecordNotFound) {
		return types.InsuranceClaim{}, types.NotFoundf(
			"couldn't submit a claim for crop insurance with id=%d. insurance not found", payload.InsuranceID)
	}
	if err != nil {
		return types.InsuranceClaim{}, fmt.Errorf("get crop insurance %d: %w", payload.InsuranceID, err)
	}

	id, err := s.nextID()
	if err != nil {
		return types.InsuranceClaim{}, err
	}
	claim = types.InsuranceClaim{
		ClaimID:     id,
		InsuranceID: payload.InsuranceID,
		ClaimAmount: payload.ClaimAmount,
		ClaimDate:   s.timestamp(),
	}
	if err := s.ledger.Claims().Set(id, claim); err != nil {
		return types.InsuranceClaim{}, fmt.Errorf("store insurance claim %d: %w", id, err)
	}

	s.logger.InfoContext(ctx, "insurance claim submitted", "claim_id", id, "insurance_id", payload.InsuranceID)
	s.metrics.IncrementCreated(kindInsuranceClaim)
	return claim, nil
}

// LastIssuedID returns the most recent identifier handed out, or 0.
func (s *Service) LastIssuedID(_ context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.ledger.Counter().Current()
	if err != nil {
		return 0, fmt.Errorf("read counter: %w", err)
	}
	return id, nil
}

// begin locks the service and returns the function that unlocks it and
// records the outcome.
func (s *Service) begin(ctx context.Context, op string) func(errp *error, empty *bool) {
	s.mu.Lock()
	start := time.Now()

	return func(errp *error, empty *bool) {
		defer s.mu.Unlock()

		isEmpty := empty != nil && *empty
		outcome := classify(*errp, isEmpty)
		s.metrics.ObserveOperation(op, outcome, time.Since(start))
		if outcome == metrics.OutcomeError {
			s.logger.ErrorContext(ctx, "operation failed", "operation", op, "error", *errp)
		}
	}
}

func classify(err error, empty bool) string {
	switch {
	case empty:
		return metrics.OutcomeEmpty
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, types.ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, types.ErrInvalidInput):
		return metrics.OutcomeInvalidInput
	default:
		return metrics.OutcomeError
	}
}

func (s *Service) nextID() (uint64, error) {
	id, err := s.ledger.Counter().Next()
	if err != nil {
		return 0, fmt.Errorf("allocate id: %w", err)
	}
	return id, nil
}

// timestamp returns the service clock in Unix nanoseconds.
func (s *Service) timestamp() uint64 {
	return uint64(s.now().UnixNano())
}
