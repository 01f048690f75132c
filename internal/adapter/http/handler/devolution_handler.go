package handler

import (
	"encoding/json"
	"net/http"

	"github.com/ledgerhouse/cashbook/internal/adapter/http/dto"
	"github.com/ledgerhouse/cashbook/internal/infrastructure/metrics"
	"github.com/ledgerhouse/cashbook/internal/usecase"
)

// DevolutionHandler handles devolution HTTP requests.
type DevolutionHandler struct {
	devolutionUC *usecase.DevolutionUseCase
}

// NewDevolutionHandler creates a new DevolutionHandler.
func NewDevolutionHandler(devolutionUC *usecase.DevolutionUseCase) *DevolutionHandler {
	return &DevolutionHandler{devolutionUC: devolutionUC}
}

// Create pays back part of an expense.
func (h *DevolutionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateDevolutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.devolutionUC.PayBack(r.Context(), req.ToUseCaseInput())
	if err != nil {
		metrics.DevolutionsTotal.WithLabelValues("failed").Inc()
		writeUseCaseError(w, "failed to create devolution", err)
		return
	}

	metrics.DevolutionsTotal.WithLabelValues("created").Inc()
	writeJSON(w, http.StatusCreated, dto.DevolutionFromResult(result))
}
