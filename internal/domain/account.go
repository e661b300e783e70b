package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OwnerType identifies what kind of party an account belongs to.
type OwnerType string

const (
	OwnerCompanyBank     OwnerType = "COMPANY_BANK"
	OwnerBranchCash      OwnerType = "BRANCH_CASH"
	OwnerBranchPettyCash OwnerType = "BRANCH_PETTY_CASH"
	OwnerCustomerCredit  OwnerType = "CUSTOMER_CREDIT"
)

// Valid reports whether t is a known owner type.
func (t OwnerType) Valid() bool {
	switch t {
	case OwnerCompanyBank, OwnerBranchCash, OwnerBranchPettyCash, OwnerCustomerCredit:
		return true
	}
	return false
}

// PartyKind identifies the kind of party an account owner reference points
// at. Party records themselves live outside this service.
type PartyKind string

const (
	PartyCompany  PartyKind = "company"
	PartyBranch   PartyKind = "branch"
	PartyCustomer PartyKind = "customer"
)

// Party returns the kind of party that owns accounts of this type.
func (t OwnerType) Party() PartyKind {
	switch t {
	case OwnerCompanyBank:
		return PartyCompany
	case OwnerCustomerCredit:
		return PartyCustomer
	default:
		return PartyBranch
	}
}

// Account is a balance-holding entity: a company bank account, a branch cash
// drawer, branch petty cash, or a customer credit line.
type Account struct {
	ID          string
	OwnerType   OwnerType
	OwnerID     string
	Balance     decimal.Decimal
	CreditLimit decimal.Decimal
	Version     int64
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Floor returns the lowest balance the account may reach. Customer credit
// accounts may go negative down to their credit limit; everything else
// bottoms out at zero.
func (a *Account) Floor() decimal.Decimal {
	if a.OwnerType == OwnerCustomerCredit {
		return a.CreditLimit.Neg()
	}
	return decimal.Zero
}

// ValidateDebit checks whether debiting amount would push the balance below
// the account floor.
func (a *Account) ValidateDebit(amount decimal.Decimal) error {
	if a.Balance.Sub(amount).LessThan(a.Floor()) {
		return ErrInsufficientFunds
	}
	return nil
}

// ApplyDebit returns the balance after a debit.
func (a *Account) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Sub(amount)
}

// ApplyCredit returns the balance after a credit.
func (a *Account) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(amount)
}
