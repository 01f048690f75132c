package handler

import (
	"encoding/json"
	"net/http"

	"github.com/ledgerhouse/cashbook/internal/adapter/http/dto"
	"github.com/ledgerhouse/cashbook/internal/infrastructure/metrics"
	"github.com/ledgerhouse/cashbook/internal/usecase"
)

// PaymentHandler handles payment HTTP requests.
type PaymentHandler struct {
	paymentUC *usecase.PaymentUseCase
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentUC *usecase.PaymentUseCase) *PaymentHandler {
	return &PaymentHandler{paymentUC: paymentUC}
}

// Create moves funds between two accounts.
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entry, err := h.paymentUC.Pay(r.Context(), req.ToUseCaseInput())
	if err != nil {
		metrics.PaymentsTotal.WithLabelValues("failed").Inc()
		writeUseCaseError(w, "failed to create payment", err)
		return
	}

	metrics.PaymentsTotal.WithLabelValues("created").Inc()
	amount, _ := entry.Amount.Float64()
	metrics.PaymentAmount.Observe(amount)

	writeJSON(w, http.StatusCreated, dto.EntryFromDomain(entry))
}
