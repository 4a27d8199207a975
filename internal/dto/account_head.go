package dto

import (
	"github.com/shopspring/decimal"

	"github.com/stocklot/stocklot_erp_app/internal/core/domain"
)

// CreateAccountHeadRequest defines the input for creating a ledger account.
type CreateAccountHeadRequest struct {
	Code        string             `json:"code" binding:"required,accountcode"`
	Name        string             `json:"name" binding:"required"`
	AccountType domain.AccountType `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	Description string             `json:"description"`
}

// AccountHeadResponse defines the data returned for an account head.
type AccountHeadResponse struct {
	AccountHeadID  string          `json:"accountHeadID"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	AccountType    string          `json:"accountType"`
	Description    string          `json:"description,omitempty"`
	IsActive       bool            `json:"isActive"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
}

// ToAccountHeadResponse converts a domain.AccountHead to its response DTO.
// The tenant ID never leaves the service boundary.
func ToAccountHeadResponse(a *domain.AccountHead) AccountHeadResponse {
	return AccountHeadResponse{
		AccountHeadID:  a.AccountHeadID,
		Code:           a.Code,
		Name:           a.Name,
		AccountType:    string(a.AccountType),
		Description:    a.Description,
		IsActive:       a.IsActive,
		CurrentBalance: a.CurrentBalance,
	}
}

// ListAccountHeadsParams holds parameters for listing account heads.
type ListAccountHeadsParams struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// ListAccountHeadsResponse is the account head listing payload.
type ListAccountHeadsResponse struct {
	AccountHeads []AccountHeadResponse `json:"accountHeads"`
}

// ToAccountHeadResponses converts a slice of domain account heads.
func ToAccountHeadResponses(accounts []domain.AccountHead) []AccountHeadResponse {
	out := make([]AccountHeadResponse, len(accounts))
	for i := range accounts {
		out[i] = ToAccountHeadResponse(&accounts[i])
	}
	return out
}
