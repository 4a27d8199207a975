package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/stocklot/stocklot_erp_app/internal/apperrors"
	"github.com/stocklot/stocklot_erp_app/internal/core/domain"
	"github.com/stocklot/stocklot_erp_app/internal/dto"
	"github.com/stocklot/stocklot_erp_app/internal/middleware"
)

// defaultChartOfAccounts is the starter chart created for a fresh tenant.
// The codes are the ones the automatic posting rules address.
var defaultChartOfAccounts = []dto.CreateAccountHeadRequest{
	{Code: domain.CodeMainBank, Name: "Main Bank Account", AccountType: domain.Asset},
	{Code: domain.CodePettyCash, Name: "Petty Cash", AccountType: domain.Asset},
	{Code: domain.CodeAccountsReceivable, Name: "Accounts Receivable", AccountType: domain.Asset},
	{Code: domain.CodeInventory, Name: "Inventory", AccountType: domain.Asset},
	{Code: domain.CodeInputTax, Name: "Input Tax", AccountType: domain.Asset},
	{Code: domain.CodeAccountsPayable, Name: "Accounts Payable", AccountType: domain.Liability},
	{Code: domain.CodeTaxPayable, Name: "Tax Payable", AccountType: domain.Liability},
	{Code: domain.CodeSalesRevenue, Name: "Sales Revenue", AccountType: domain.Revenue},
	{Code: domain.CodeOtherIncome, Name: "Other Income", AccountType: domain.Revenue},
	{Code: domain.CodeCOGS, Name: "Cost of Goods Sold", AccountType: domain.Expense},
	{Code: domain.CodeInventoryLoss, Name: "Inventory Loss", AccountType: domain.Expense},
	{Code: "5200", Name: "Rent Expense", AccountType: domain.Expense},
	{Code: "5300", Name: "Utilities Expense", AccountType: domain.Expense},
	{Code: "5400", Name: "Salaries Expense", AccountType: domain.Expense},
	{Code: "5500", Name: "Transport Expense", AccountType: domain.Expense},
	{Code: "5900", Name: "Miscellaneous Expense", AccountType: domain.Expense},
}

// SeedDefaultAccountHeads creates the starter chart of accounts for the
// active tenant. Codes that already exist are left untouched, so the call is
// safe to repeat.
func (s *accountHeadService) SeedDefaultAccountHeads(ctx context.Context, creatorUserID string) ([]domain.AccountHead, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	created := make([]domain.AccountHead, 0, len(defaultChartOfAccounts))
	for _, req := range defaultChartOfAccounts {
		account, err := s.CreateAccountHead(ctx, req, creatorUserID)
		if err != nil {
			if errors.Is(err, apperrors.ErrDuplicate) {
				continue
			}
			logger.Error("Failed to seed account head", slog.String("code", req.Code), slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to seed account head %s: %w", req.Code, err)
		}
		created = append(created, *account)
	}

	logger.Info("Default chart of accounts seeded", slog.Int("created_count", len(created)))
	return created, nil
}
