package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/qarzbook/ledgercore/internal/apperrors"
	"github.com/qarzbook/ledgercore/internal/models"
	"github.com/qarzbook/ledgercore/internal/repository"
	"github.com/qarzbook/ledgercore/internal/share"
)

type DebtHandler struct {
	repo  *repository.Repository
	share *share.Generator
}

func NewDebtHandler(repo *repository.Repository, gen *share.Generator) *DebtHandler {
	return &DebtHandler{repo: repo, share: gen}
}

// List returns debts, optionally filtered by contact
// @Summary List debts
// @Description List all debts newest-first, or only one contact's with contactId. Pass refresh=true to bypass the cache.
// @Tags Debts
// @Produce json
// @Param contactId query string false "Filter by contact id"
// @Param refresh query bool false "Bypass the cache"
// @Success 200 {object} object{success=bool,data=[]models.DebtRecord}
// @Router /debts [get]
func (h *DebtHandler) List(w http.ResponseWriter, r *http.Request) {
	if contactID := r.URL.Query().Get("contactId"); contactID != "" {
		sendJSON(w, http.StatusOK, h.repo.ListDebtsByContact(r.Context(), contactID))
		return
	}
	sendJSON(w, http.StatusOK, h.repo.ListDebts(r.Context(), forceRefresh(r)))
}

// Create adds a debt record
// @Summary Create debt
// @Tags Debts
// @Accept json
// @Produce json
// @Param request body models.DebtInput true "Debt fields"
// @Success 201 {object} object{success=bool,data=models.DebtRecord}
// @Failure 400 {object} handlers.ErrorResponse
// @Router /debts [post]
func (h *DebtHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input models.DebtInput
	if !decodeBody(w, r, &input) {
		return
	}

	debt, err := h.repo.CreateDebt(r.Context(), input)
	if err != nil {
		sendError(w, err)
		return
	}
	sendJSON(w, http.StatusCreated, debt)
}

// Update modifies a debt record
// @Summary Update debt
// @Tags Debts
// @Accept json
// @Produce json
// @Param recordId path string true "Debt record id"
// @Param request body models.DebtInput true "Debt fields"
// @Success 200 {object} object{success=bool,data=models.DebtRecord}
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Router /debts/{recordId} [put]
func (h *DebtHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input models.DebtInput
	if !decodeBody(w, r, &input) {
		return
	}

	debt, err := h.repo.UpdateDebt(r.Context(), chi.URLParam(r, "recordId"), input)
	if err != nil {
		sendError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, debt)
}

// Delete removes a debt record
// @Summary Delete debt
// @Tags Debts
// @Produce json
// @Param recordId path string true "Debt record id"
// @Success 200 {object} object{success=bool}
// @Failure 404 {object} handlers.ErrorResponse
// @Router /debts/{recordId} [delete]
func (h *DebtHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.DeleteDebt(r.Context(), chi.URLParam(r, "recordId")); err != nil {
		sendError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, nil)
}

// MarkPaid settles a debt record
// @Summary Mark debt as paid
// @Description Settle a debt. Settling an already-paid record succeeds without change.
// @Tags Debts
// @Produce json
// @Param recordId path string true "Debt record id"
// @Success 200 {object} object{success=bool,data=models.DebtRecord}
// @Failure 404 {object} handlers.ErrorResponse
// @Router /debts/{recordId}/paid [put]
func (h *DebtHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	debt, err := h.repo.MarkAsPaid(r.Context(), chi.URLParam(r, "recordId"))
	if err != nil {
		sendError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, debt)
}

// Overview returns the ledger totals
// @Summary Ledger overview
// @Description Totals for the home screen. Served from the backend summary when available, recomputed locally otherwise.
// @Tags Debts
// @Produce json
// @Param refresh query bool false "Bypass the cache"
// @Success 200 {object} object{success=bool,data=models.Overview}
// @Router /overview [get]
func (h *DebtHandler) Overview(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, h.repo.GetOverview(r.Context(), forceRefresh(r)))
}

// SettleQR renders a settle-up QR code for a debt record
// @Summary Settle-up QR code
// @Description Render a shareable QR code carrying the debt's settle-up payload.
// @Tags Debts
// @Produce json
// @Param recordId path string true "Debt record id"
// @Success 200 {object} object{success=bool,data=share.SettleUpCode}
// @Failure 404 {object} handlers.ErrorResponse
// @Router /debts/{recordId}/settle-qr [get]
func (h *DebtHandler) SettleQR(w http.ResponseWriter, r *http.Request) {
	recordID := chi.URLParam(r, "recordId")
	for _, debt := range h.repo.ListDebts(r.Context(), false) {
		if debt.RecordID != recordID {
			continue
		}
		code, err := h.share.SettleUp(debt)
		if err != nil {
			sendError(w, err)
			return
		}
		sendJSON(w, http.StatusOK, code)
		return
	}
	sendError(w, apperrors.NotFound("debt", recordID))
}
