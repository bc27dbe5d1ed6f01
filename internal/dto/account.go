package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/creamline/milkbooks_backend/internal/core/domain"
)

// AccountResponse defines the data returned for a chart-of-accounts entry.
type AccountResponse struct {
	AccountID   string             `json:"accountID"`
	Code        string             `json:"code"`
	Name        string             `json:"name"`
	AccountType domain.AccountType `json:"accountType"`
	IsActive    bool               `json:"isActive"`
	Balance     decimal.Decimal    `json:"balance"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// ProvisionAccountRequest resolves one of the tenant's default account slots,
// creating the account lazily. When AccountID is set, that account is
// validated against the purpose's expected type instead.
type ProvisionAccountRequest struct {
	Purpose   domain.AccountPurpose `json:"purpose" binding:"required,oneof=CASH AR AP REV EXP"`
	AccountID *string               `json:"accountID"`
}

// ListAccountsParams holds paging parameters for account listings.
type ListAccountsParams struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// ToAccountResponse converts a domain.Account to its DTO.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:   a.AccountID,
		Code:        a.Code,
		Name:        a.Name,
		AccountType: a.AccountType,
		IsActive:    a.IsActive,
		Balance:     a.Balance,
		CreatedAt:   a.CreatedAt,
	}
}

// ToAccountResponses converts a slice of accounts to DTOs.
func ToAccountResponses(accounts []domain.Account) []AccountResponse {
	responses := make([]AccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = ToAccountResponse(&accounts[i])
	}
	return responses
}
