package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tillbooks/ledger/internal/adapter/http/dto"
	"github.com/tillbooks/ledger/internal/domain"
	"github.com/tillbooks/ledger/internal/usecase"
)

// LedgerService defines the behavior needed by LedgerHandler.
type LedgerService interface {
	ListEntries(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.AuditEntry, error)
	ReconcileAccount(ctx context.Context, accountID string) (*usecase.ReconciliationResult, error)
	ReconcileAll(ctx context.Context) (*usecase.ReconciliationReport, error)
}

// LedgerHandler serves the audit log and reconciliation endpoints.
type LedgerHandler struct {
	ledgerUC LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// ListByAccount lists audit entries for one account, optionally bounded by a
// from/to time window (RFC 3339).
func (h *LedgerHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	entries, err := h.ledgerUC.ListEntries(r.Context(), usecase.ListEntriesInput{
		AccountID: accountID,
		From:      parseTimeQuery(r, "from"),
		To:        parseTimeQuery(r, "to"),
		Limit:     parseIntQuery(r, "limit", 50),
		Offset:    parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list ledger entries", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AuditEntriesFromDomain(entries))
}

// ReconcileAccount checks one account's balance against its audit deltas.
func (h *LedgerHandler) ReconcileAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	result, err := h.ledgerUC.ReconcileAccount(r.Context(), accountID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to reconcile account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromResult(result))
}

// ReconcileAll produces a ledger-wide drift report.
func (h *LedgerHandler) ReconcileAll(w http.ResponseWriter, r *http.Request) {
	report, err := h.ledgerUC.ReconcileAll(r.Context())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to reconcile ledger", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationReportFromResult(report))
}
