package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tillbooks/ledger/internal/adapter/http/dto"
	"github.com/tillbooks/ledger/internal/domain"
	"github.com/tillbooks/ledger/internal/usecase"
)

// ApprovalService defines the behavior needed by ApprovalHandler.
type ApprovalService interface {
	RequestApproval(ctx context.Context, input usecase.RequestApprovalInput) (*domain.Approval, error)
	Decide(ctx context.Context, input usecase.DecideInput) (*domain.Approval, error)
	GetApproval(ctx context.Context, id string) (*domain.Approval, error)
	ListPending(ctx context.Context, input usecase.ListPendingInput) ([]*domain.Approval, error)
}

// ApprovalHandler handles approval-workflow HTTP requests.
type ApprovalHandler struct {
	approvalUC ApprovalService
}

// NewApprovalHandler creates a new ApprovalHandler.
func NewApprovalHandler(approvalUC ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{approvalUC: approvalUC}
}

// Create requests a new approval workflow.
func (h *ApprovalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.RequestApprovalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	approval, err := h.approvalUC.RequestApproval(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to request approval", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.ApprovalFromDomain(approval))
}

// Decide settles a pending approval.
func (h *ApprovalHandler) Decide(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing approval ID", "")
		return
	}

	var req dto.DecideApprovalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	approval, err := h.approvalUC.Decide(r.Context(), req.ToUseCaseInput(id))
	if err != nil {
		// An approved workflow whose transfer was rejected is still decided;
		// return the approval with the rejection status rather than a bare
		// error.
		if approval != nil && errors.Is(err, domain.ErrInsufficientFunds) {
			writeJSON(w, http.StatusUnprocessableEntity, dto.ApprovalFromDomain(approval))
			return
		}

		writeError(w, mapDomainError(err), "failed to decide approval", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.ApprovalFromDomain(approval))
}

// Get retrieves an approval by ID.
func (h *ApprovalHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing approval ID", "")
		return
	}

	approval, err := h.approvalUC.GetApproval(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get approval", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ApprovalFromDomain(approval))
}

// ListPending lists approvals awaiting a decision.
func (h *ApprovalHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	approvals, err := h.approvalUC.ListPending(r.Context(), usecase.ListPendingInput{
		Limit:  parseIntQuery(r, "limit", 50),
		Offset: parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list approvals", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ApprovalsFromDomain(approvals))
}
