package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/tillbooks/ledger/internal/adapter/http/dto"
	"github.com/tillbooks/ledger/internal/domain"
	"github.com/tillbooks/ledger/internal/usecase"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	OpenBranchAccounts(ctx context.Context, branchID string) ([]*domain.Account, error)
	OpenCompanyBank(ctx context.Context, companyID string) (*domain.Account, error)
	OpenCustomerCredit(ctx context.Context, customerID string, creditLimit decimal.Decimal) (*domain.Account, error)
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	ListAccounts(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Account, error)
	Deactivate(ctx context.Context, id string) (*domain.Account, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accountUC AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService) *AccountHandler {
	return &AccountHandler{accountUC: accountUC}
}

// OpenBranch opens the cash drawer and petty cash pair for a branch.
func (h *AccountHandler) OpenBranch(w http.ResponseWriter, r *http.Request) {
	var req dto.OpenBranchAccountsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	accounts, err := h.accountUC.OpenBranchAccounts(r.Context(), req.BranchID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to open branch accounts", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountsFromDomain(accounts))
}

// OpenCompanyBank opens a company bank account.
func (h *AccountHandler) OpenCompanyBank(w http.ResponseWriter, r *http.Request) {
	var req dto.OpenCompanyBankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account, err := h.accountUC.OpenCompanyBank(r.Context(), req.CompanyID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to open company bank account", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// OpenCustomerCredit opens a customer credit line.
func (h *AccountHandler) OpenCustomerCredit(w http.ResponseWriter, r *http.Request) {
	var req dto.OpenCustomerCreditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account, err := h.accountUC.OpenCustomerCredit(r.Context(), req.CustomerID, req.CreditLimit)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to open customer credit account", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Get retrieves an account by ID.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	account, err := h.accountUC.GetAccount(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// List lists accounts, optionally filtered by owner.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	if ownerID := r.URL.Query().Get("owner_id"); ownerID != "" {
		accounts, err := h.accountUC.ListByOwner(r.Context(), ownerID)
		if err != nil {
			writeError(w, mapDomainError(err), "failed to list accounts", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, dto.AccountsFromDomain(accounts))

		return
	}

	accounts, err := h.accountUC.ListAccounts(r.Context(), usecase.ListAccountsInput{
		Limit:  parseIntQuery(r, "limit", 50),
		Offset: parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list accounts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountsFromDomain(accounts))
}

// Deactivate marks an account inactive.
func (h *AccountHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	account, err := h.accountUC.Deactivate(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to deactivate account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}
