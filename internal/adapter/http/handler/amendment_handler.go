package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/goinvest/internal/adapter/http/dto"
	"github.com/iho/goinvest/internal/domain"
	"github.com/iho/goinvest/internal/usecase"
)

// AmendmentService defines the behavior needed by AmendmentHandler.
type AmendmentService interface {
	CreateAmendment(ctx context.Context, input usecase.CreateAmendmentInput) (*domain.Amendment, error)
	SetIncrement(ctx context.Context, input usecase.SetIncrementInput) (*domain.Amendment, error)
	GenerateDocuments(ctx context.Context, amendmentID, actorID string) (*domain.Amendment, error)
	ContinueFlow(ctx context.Context, amendmentID, actorID string) (*domain.Amendment, error)
	GetDetail(ctx context.Context, id string) (*domain.AmendmentDetail, error)
	GetFullDetail(ctx context.Context, id string) (*domain.AmendmentDetail, error)
	ListByInvestment(ctx context.Context, investmentID string) ([]*domain.Amendment, error)
}

// AmendmentHandler handles amendment-related HTTP requests.
type AmendmentHandler struct {
	amendmentUC AmendmentService
}

// NewAmendmentHandler creates a new AmendmentHandler.
func NewAmendmentHandler(amendmentUC AmendmentService) *AmendmentHandler {
	return &AmendmentHandler{amendmentUC: amendmentUC}
}

// Create opens an amendment on the investment in the path.
func (h *AmendmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	investmentID := chi.URLParam(r, "id")

	var req dto.CreateAmendmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(investmentID, actorOf(r))
	if err != nil {
		writeDomainError(w, "invalid amendment", err)
		return
	}

	amendment, err := h.amendmentUC.CreateAmendment(r.Context(), input)
	if err != nil {
		writeDomainError(w, "failed to create amendment", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.AmendmentFromDomain(amendment))
}

// List lists the amendments of an investment.
func (h *AmendmentHandler) List(w http.ResponseWriter, r *http.Request) {
	investmentID := chi.URLParam(r, "id")

	amendments, err := h.amendmentUC.ListByInvestment(r.Context(), investmentID)
	if err != nil {
		writeDomainError(w, "failed to list amendments", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAmendmentsResponse{
		InvestmentID: investmentID,
		Amendments:   dto.AmendmentsFromDomain(amendments),
		Total:        len(amendments),
	})
}

// Get returns an amendment with its projection and schedule headers.
func (h *AmendmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.amendmentUC.GetDetail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to get amendment", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AmendmentDetailFromDomain(detail))
}

// GetFull is Get plus both schedules' periods.
func (h *AmendmentHandler) GetFull(w http.ResponseWriter, r *http.Request) {
	detail, err := h.amendmentUC.GetFullDetail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to get amendment", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AmendmentDetailFromDomain(detail))
}

// SetIncrement attaches the increment projection and schedule.
func (h *AmendmentHandler) SetIncrement(w http.ResponseWriter, r *http.Request) {
	var req dto.SetIncrementRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	amendment, err := h.amendmentUC.SetIncrement(r.Context(), req.ToUseCaseInput(chi.URLParam(r, "id"), actorOf(r)))
	if err != nil {
		writeDomainError(w, "failed to set increment", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AmendmentFromDomain(amendment))
}

// GenerateDocuments runs the document step.
func (h *AmendmentHandler) GenerateDocuments(w http.ResponseWriter, r *http.Request) {
	amendment, err := h.amendmentUC.GenerateDocuments(r.Context(), chi.URLParam(r, "id"), actorOf(r))
	if err != nil {
		writeDomainError(w, "failed to generate documents", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AmendmentFromDomain(amendment))
}

// Continue completes the amendment and swaps the active schedule.
func (h *AmendmentHandler) Continue(w http.ResponseWriter, r *http.Request) {
	amendment, err := h.amendmentUC.ContinueFlow(r.Context(), chi.URLParam(r, "id"), actorOf(r))
	if err != nil {
		writeDomainError(w, "failed to continue flow", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AmendmentFromDomain(amendment))
}

func actorOf(r *http.Request) string {
	return domain.ResolveActor(r.Context(), "")
}
