package handler

import (
	"context"
	"net/http"

	"github.com/iho/goinvest/internal/adapter/http/dto"
)

// ContractService defines the behavior needed by ContractHandler.
type ContractService interface {
	GetOrCreate(ctx context.Context, requestID, projectionID string) (string, error)
}

// ContractHandler handles contract numbering requests.
type ContractHandler struct {
	contractUC ContractService
}

// NewContractHandler creates a new ContractHandler.
func NewContractHandler(contractUC ContractService) *ContractHandler {
	return &ContractHandler{contractUC: contractUC}
}

// Number returns the contract number for a (request, projection) pair,
// minting it on first use.
func (h *ContractHandler) Number(w http.ResponseWriter, r *http.Request) {
	var req dto.ContractNumberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	number, err := h.contractUC.GetOrCreate(r.Context(), req.RequestID, req.ProjectionID)
	if err != nil {
		writeDomainError(w, "failed to resolve contract number", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ContractNumberResponse{
		RequestID:    req.RequestID,
		ProjectionID: req.ProjectionID,
		Number:       number,
	})
}
