// Package httpapi exposes the ledger operations as JSON over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mesh-intelligence/agriledger/pkg/types"
)

// Messages for requests rejected before they reach the service.
const (
	msgInvalidID   = "Invalid id"
	msgInvalidBody = "Invalid request body"
)

// Service is the set of ledger operations served over HTTP.
type Service interface {
	GetDebt(ctx context.Context, id uint64) (types.Debt, error)
	GetEscrow(ctx context.Context, debtID uint64) (types.Escrow, error)
	GetCropInsurance(ctx context.Context, id uint64) (types.CropInsurance, error)
	GetInsuranceClaim(ctx context.Context, claimID uint64) (types.InsuranceClaim, error)
	AddDebt(ctx context.Context, payload types.DebtPayload) (*types.Debt, error)
	UpdateDebt(ctx context.Context, id uint64, payload types.DebtPayload) (types.Debt, error)
	CreateEscrow(ctx context.Context, payload types.EscrowPayload) (types.Escrow, error)
	PurchaseCropInsurance(ctx context.Context, payload types.CropInsurancePayload) (*types.CropInsurance, error)
	SubmitInsuranceClaim(ctx context.Context, payload types.InsuranceClaimPayload) (types.InsuranceClaim, error)
}

// Handler serves the ledger routes.
type Handler struct {
	svc    Service
	logger *slog.Logger
}

// New creates a Handler.
func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register registers the ledger routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/debts/{id}", h.handleGetDebt)
	r.Post("/debts", h.handleAddDebt)
	r.Put("/debts/{id}", h.handleUpdateDebt)

	r.Get("/escrows/{debtID}", h.handleGetEscrow)
	r.Post("/escrows", h.handleCreateEscrow)

	r.Get("/crop-insurance/{id}", h.handleGetCropInsurance)
	r.Post("/crop-insurance", h.handlePurchaseCropInsurance)

	r.Get("/claims/{id}", h.handleGetInsuranceClaim)
	r.Post("/claims", h.handleSubmitInsuranceClaim)
}

// NewRouter builds the full HTTP surface: middleware, health check,
// metrics when gatherer is non-nil, and the ledger routes.
func NewRouter(svc Service, logger *slog.Logger, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(Recovery(logger))
	r.Use(RequestID)
	r.Use(Logger(logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	New(svc, logger).Register(r)
	return r
}

// NewServer builds an HTTP server for handler.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func (h *Handler) handleGetDebt(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	debt, err := h.svc.GetDebt(r.Context(), id)
	h.respond(w, r, debt, err)
}

func (h *Handler) handleAddDebt(w http.ResponseWriter, r *http.Request) {
	var payload types.DebtPayload
	if !h.decode(w, r, &payload) {
		return
	}
	debt, err := h.svc.AddDebt(r.Context(), payload)
	h.respond(w, r, debt, err)
}

func (h *Handler) handleUpdateDebt(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var payload types.DebtPayload
	if !h.decode(w, r, &payload) {
		return
	}
	debt, err := h.svc.UpdateDebt(r.Context(), id, payload)
	h.respond(w, r, debt, err)
}

func (h *Handler) handleGetEscrow(w http.ResponseWriter, r *http.Request) {
	debtID, ok := h.pathID(w, r, "debtID")
	if !ok {
		return
	}
	escrow, err := h.svc.GetEscrow(r.Context(), debtID)
	h.respond(w, r, escrow, err)
}

func (h *Handler) handleCreateEscrow(w http.ResponseWriter, r *http.Request) {
	var payload types.EscrowPayload
	if !h.decode(w, r, &payload) {
		return
	}
	escrow, err := h.svc.CreateEscrow(r.Context(), payload)
	h.respond(w, r, escrow, err)
}

func (h *Handler) handleGetCropInsurance(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	policy, err := h.svc.GetCropInsurance(r.Context(), id)
	h.respond(w, r, policy, err)
}

func (h *Handler) handlePurchaseCropInsurance(w http.ResponseWriter, r *http.Request) {
	var payload types.CropInsurancePayload
	if !h.decode(w, r, &payload) {
		return
	}
	policy, err := h.svc.PurchaseCropInsurance(r.Context(), payload)
	h.respond(w, r, policy, err)
}

func (h *Handler) handleGetInsuranceClaim(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	claim, err := h.svc.GetInsuranceClaim(r.Context(), id)
	h.respond(w, r, claim, err)
}

func (h *Handler) handleSubmitInsuranceClaim(w http.ResponseWriter, r *http.Request) {
	var payload types.InsuranceClaimPayload
	if !h.decode(w, r, &payload) {
		return
	}
	claim, err := h.svc.SubmitInsuranceClaim(r.Context(), payload)
	h.respond(w, r, claim, err)
}

// pathID parses a uint64 URL parameter, writing InvalidInput on failure.
func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil {
		writeDomainError(w, types.InvalidInput(msgInvalidID))
		return 0, false
	}
	return id, true
}

// decode reads a JSON request body, writing InvalidInput on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.logger.WarnContext(r.Context(), "invalid request body",
			"request_id", GetRequestID(r.Context()),
			"error", err.Error(),
		)
		writeDomainError(w, types.InvalidInput(msgInvalidBody))
		return false
	}
	return true
}

// respond writes result, a domain error, or a 500 for anything else. A nil
// pointer result encodes as null, which is how empty results travel.
func (h *Handler) respond(w http.ResponseWriter, r *http.Request, result any, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, result)
		return
	}
	if e := types.AsError(err); e != nil {
		writeDomainError(w, e)
		return
	}
	h.logger.ErrorContext(r.Context(), "request failed",
		"request_id", GetRequestID(r.Context()),
		"error", err.Error(),
	)
	writeInternalError(w)
}
