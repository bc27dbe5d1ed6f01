package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// AccountPurpose identifies one of the tenant's default chart-of-account
// slots. Each purpose maps to a deterministic account code per tenant.
type AccountPurpose string

const (
	PurposeCash               AccountPurpose = "CASH"
	PurposeAccountsReceivable AccountPurpose = "AR"
	PurposeAccountsPayable    AccountPurpose = "AP"
	PurposeRevenue            AccountPurpose = "REV"
	PurposeExpense            AccountPurpose = "EXP"
)

// ExpectedType returns the account type a purpose must resolve to.
func (p AccountPurpose) ExpectedType() AccountType {
	switch p {
	case PurposeCash, PurposeAccountsReceivable:
		return Asset
	case PurposeAccountsPayable:
		return Liability
	case PurposeRevenue:
		return Revenue
	default:
		return Expense
	}
}

// Code derives the deterministic account code for a tenant, e.g. "CASH-t42".
func (p AccountPurpose) Code(tenantID string) string {
	return fmt.Sprintf("%s-%s", p, tenantID)
}

// DefaultName returns the display name used when the account is lazily created.
func (p AccountPurpose) DefaultName() string {
	switch p {
	case PurposeCash:
		return "Cash"
	case PurposeAccountsReceivable:
		return "Accounts Receivable"
	case PurposeAccountsPayable:
		return "Accounts Payable"
	case PurposeRevenue:
		return "Revenue"
	default:
		return "Expense"
	}
}

// Account represents a chart-of-accounts entry owned by a single tenant.
// Accounts are created lazily on first use and are never deleted, only
// deactivated. At most one active account may exist per (code, account type).
type Account struct {
	AccountID   string          `json:"accountID"`
	TenantID    string          `json:"tenantID"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	AccountType AccountType     `json:"accountType"`
	IsActive    bool            `json:"isActive"`
	Balance     decimal.Decimal `json:"balance"` // persisted running balance
	AuditFields
}
