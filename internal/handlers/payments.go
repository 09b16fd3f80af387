package handlers

import (
	"net/http"

	"github.com/qarzbook/ledgercore/internal/repository"
)

type PaymentHandler struct {
	repo *repository.Repository
}

func NewPaymentHandler(repo *repository.Repository) *PaymentHandler {
	return &PaymentHandler{repo: repo}
}

// List returns the payment history
// @Summary List payments
// @Description Payment history newest-first. Pass refresh=true to bypass the cache.
// @Tags Payments
// @Produce json
// @Param refresh query bool false "Bypass the cache"
// @Success 200 {object} object{success=bool,data=[]models.PaymentRecord}
// @Router /payments [get]
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, h.repo.ListPayments(r.Context(), forceRefresh(r)))
}
