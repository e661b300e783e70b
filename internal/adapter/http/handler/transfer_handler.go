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

// IdempotencyKeyHeader carries the caller-chosen key that makes a transfer
// request safely retryable.
const IdempotencyKeyHeader = "Idempotency-Key"

// TransferService defines the behavior needed by TransferHandler.
type TransferService interface {
	Execute(ctx context.Context, input usecase.ExecuteInput) (*domain.Operation, error)
	GetOperation(ctx context.Context, id string) (*domain.Operation, error)
	ListOperationsByAccount(ctx context.Context, input usecase.ListOperationsByAccountInput) ([]*domain.Operation, error)
}

// TransferHandler handles transfer-related HTTP requests.
type TransferHandler struct {
	transferUC TransferService
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(transferUC TransferService) *TransferHandler {
	return &TransferHandler{transferUC: transferUC}
}

// Create executes (or replays) a transfer operation.
func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get(IdempotencyKeyHeader)
	if key == "" {
		writeError(w, http.StatusBadRequest, "missing Idempotency-Key header", "")
		return
	}

	var req dto.CreateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	op, err := h.transferUC.Execute(r.Context(), req.ToUseCaseInput(key))
	if err != nil {
		// A rejected operation still carries a stable id and reason code; the
		// client sees both the error status and the operation row.
		if op != nil && errors.Is(err, domain.ErrInsufficientFunds) {
			writeJSON(w, http.StatusUnprocessableEntity, dto.OperationFromDomain(op))
			return
		}

		writeError(w, mapDomainError(err), "failed to execute transfer", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.OperationFromDomain(op))
}

// Get retrieves an operation by ID.
func (h *TransferHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing operation ID", "")
		return
	}

	op, err := h.transferUC.GetOperation(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get operation", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.OperationFromDomain(op))
}

// ListByAccount lists operations touching an account.
func (h *TransferHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	ops, err := h.transferUC.ListOperationsByAccount(r.Context(), usecase.ListOperationsByAccountInput{
		AccountID: accountID,
		Limit:     parseIntQuery(r, "limit", 50),
		Offset:    parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list operations", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.OperationsFromDomain(ops))
}
