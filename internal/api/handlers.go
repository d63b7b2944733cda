/**
 * @description
 * This file contains the HTTP handler functions for the settlement service.
 * Handlers parse incoming requests, call the appropriate business logic in
 * the service layer, and map domain errors to HTTP status codes.
 */
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/briandchristian/settlement-service/internal/app"
	"github.com/briandchristian/settlement-service/internal/domain"
)

// PayoutService defines the ledger operations the API exposes directly
// (accrual, the approval flow, and per-seller listing).
type PayoutService interface {
	CreatePayout(ctx context.Context, payout *domain.Payout) error
	UpdatePayoutStatus(ctx context.Context, id uuid.UUID, next domain.PayoutStatus) (*domain.Payout, error)
	ListPayoutsBySeller(ctx context.Context, sellerID uuid.UUID) ([]domain.Payout, error)
}

// SettingsService defines the settings operations the API exposes.
type SettingsService interface {
	GetSchedulerSettings(ctx context.Context) (domain.SchedulerSettings, error)
	MergeSettings(ctx context.Context, patch map[string]string) error
}

// Handler holds the application services that handlers interact with.
type Handler struct {
	sellers   app.SellerService
	allocator app.ChannelAllocator
	runner    app.PayoutRunner
	payouts   PayoutService
	settings  SettingsService
}

// NewHandler creates a new Handler with the given services.
func NewHandler(sellers app.SellerService, allocator app.ChannelAllocator, runner app.PayoutRunner, payouts PayoutService, settings SettingsService) *Handler {
	return &Handler{
		sellers:   sellers,
		allocator: allocator,
		runner:    runner,
		payouts:   payouts,
		settings:  settings,
	}
}

// handleRegisterSeller handles seller registration for either variant.
func (h *Handler) handleRegisterSeller(w http.ResponseWriter, r *http.Request) {
	var input app.RegisterSellerInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	seller, err := h.sellers.Register(r.Context(), input)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, seller)
}

// handleGetSeller returns the polymorphic seller view.
func (h *Handler) handleGetSeller(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	seller, err := h.sellers.Get(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, seller)
}

// handleVerifySeller records a verification outcome.
func (h *Handler) handleVerifySeller(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req struct {
		Approved bool `json:"approved"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	seller, err := h.sellers.Verify(r.Context(), id, req.Approved)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, seller)
}

// handleDeactivateSeller soft-deactivates a seller.
func (h *Handler) handleDeactivateSeller(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	seller, err := h.sellers.Deactivate(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, seller)
}

// handleAllocateChannel assigns (or returns) the seller's routing channel.
func (h *Handler) handleAllocateChannel(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	channelID, err := h.allocator.Allocate(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]int64{"channel_id": channelID})
}

// handleReleaseChannel deletes a channel; the owning seller's channel_id is
// nulled by the storage constraint, not by this handler.
func (h *Handler) handleReleaseChannel(w http.ResponseWriter, r *http.Request) {
	channelID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid channel id", http.StatusBadRequest)
		return
	}

	if err := h.allocator.ReleaseChannel(r.Context(), channelID); err != nil {
		respondWithDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleCreatePayout accrues a held payout for a seller.
func (h *Handler) handleCreatePayout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SellerID uuid.UUID `json:"seller_id"`
		Amount   int64     `json:"amount"` // minor currency units
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	payout, err := domain.NewPayout(req.SellerID, req.Amount)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	if err := h.payouts.CreatePayout(r.Context(), payout); err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, payout)
}

// handleListSellerPayouts returns a seller's full ledger.
func (h *Handler) handleListSellerPayouts(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	payouts, err := h.payouts.ListPayoutsBySeller(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	if payouts == nil {
		payouts = []domain.Payout{}
	}

	respondWithJSON(w, http.StatusOK, payouts)
}

// handleRunPayouts is the manual admin trigger for a scheduler invocation.
// It may race the cron-triggered invocation; the loser reports skipped.
func (h *Handler) handleRunPayouts(w http.ResponseWriter, r *http.Request) {
	result, err := h.runner.Run(r.Context(), time.Now().UTC())
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// handleApprovePayout advances a pending payout to approved.
func (h *Handler) handleApprovePayout(w http.ResponseWriter, r *http.Request) {
	h.transitionPayout(w, r, domain.PayoutStatusApproved)
}

// handleRejectPayout rejects a pending or approved payout.
func (h *Handler) handleRejectPayout(w http.ResponseWriter, r *http.Request) {
	h.transitionPayout(w, r, domain.PayoutStatusRejected)
}

// handleMarkPayoutPaid records disbursement of an approved payout.
func (h *Handler) handleMarkPayoutPaid(w http.ResponseWriter, r *http.Request) {
	h.transitionPayout(w, r, domain.PayoutStatusPaid)
}

func (h *Handler) transitionPayout(w http.ResponseWriter, r *http.Request, next domain.PayoutStatus) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	payout, err := h.payouts.UpdatePayoutStatus(r.Context(), id, next)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, payout)
}

// handleGetPayoutSettings returns the scheduler's settings view.
func (h *Handler) handleGetPayoutSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.GetSchedulerSettings(r.Context())
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, settings)
}

// handleUpdatePayoutFrequency merges a new frequency into the shared
// settings record without touching sibling keys.
func (h *Handler) handleUpdatePayoutFrequency(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Frequency string `json:"frequency"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Frequency != string(domain.FrequencyWeekly) && req.Frequency != string(domain.FrequencyMonthly) {
		http.Error(w, "frequency must be 'weekly' or 'monthly'", http.StatusBadRequest)
		return
	}

	frequency := domain.ParsePayoutFrequency(req.Frequency)
	if err := h.settings.MergeSettings(r.Context(), domain.FrequencyPatch(frequency)); err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"frequency": string(frequency)})
}

// parseIDParam reads the {id} path parameter as a UUID, writing a 400 on
// failure.
func parseIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// respondWithDomainError maps the error taxonomy to HTTP status codes.
func respondWithDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSchemaViolation):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, domain.ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrPrecondition):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrSellerNotFound), errors.Is(err, domain.ErrPayoutNotFound), errors.Is(err, domain.ErrChannelNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// respondWithJSON is a helper function to write JSON responses.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
