package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stocklot/stocklot_erp_app/internal/apperrors"
	"github.com/stocklot/stocklot_erp_app/internal/core/domain"
	portsrepo "github.com/stocklot/stocklot_erp_app/internal/core/ports/repositories"
	portssvc "github.com/stocklot/stocklot_erp_app/internal/core/ports/services"
	"github.com/stocklot/stocklot_erp_app/internal/dto"
	"github.com/stocklot/stocklot_erp_app/internal/middleware"
)

// accountHeadService manages the chart of accounts. Balances are read-only
// here; only the posting engine moves them.
type accountHeadService struct {
	accountHeadRepo portsrepo.AccountHeadRepositoryFacade
}

// NewAccountHeadService creates a new AccountHeadService.
func NewAccountHeadService(accountHeadRepo portsrepo.AccountHeadRepositoryFacade) portssvc.AccountHeadSvcFacade {
	return &accountHeadService{accountHeadRepo: accountHeadRepo}
}

var _ portssvc.AccountHeadSvcFacade = (*accountHeadService)(nil)

// CreateAccountHead creates a new ledger account with a zero opening balance.
func (s *accountHeadService) CreateAccountHead(ctx context.Context, req dto.CreateAccountHeadRequest, creatorUserID string) (*domain.AccountHead, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	switch req.AccountType {
	case domain.Asset, domain.Liability, domain.Equity, domain.Revenue, domain.Expense:
	default:
		return nil, fmt.Errorf("%w: invalid account type %q", apperrors.ErrValidation, req.AccountType)
	}
	if req.Code == "" || req.Name == "" {
		return nil, fmt.Errorf("%w: account code and name are required", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	account := domain.AccountHead{
		AccountHeadID:  uuid.NewString(),
		Code:           req.Code,
		Name:           req.Name,
		AccountType:    req.AccountType,
		Description:    req.Description,
		IsActive:       true,
		CurrentBalance: decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.accountHeadRepo.SaveAccountHead(ctx, account); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			logger.Warn("Duplicate account code", slog.String("code", req.Code))
			return nil, err
		}
		logger.Error("Failed to save account head", slog.String("error", err.Error()), slog.String("code", req.Code))
		return nil, fmt.Errorf("failed to save account head: %w", err)
	}

	logger.Info("Account head created", slog.String("account_head_id", account.AccountHeadID), slog.String("code", account.Code))
	return &account, nil
}

// GetAccountHeadByID retrieves a single account head.
func (s *accountHeadService) GetAccountHeadByID(ctx context.Context, accountHeadID string) (*domain.AccountHead, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountHeadRepo.FindAccountHeadByID(ctx, accountHeadID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find account head", slog.String("error", err.Error()), slog.String("account_head_id", accountHeadID))
		}
		return nil, err
	}
	return account, nil
}

// GetAccountHeadsByCodes resolves account codes for the active tenant.
func (s *accountHeadService) GetAccountHeadsByCodes(ctx context.Context, codes []string) (map[string]domain.AccountHead, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	accounts, err := s.accountHeadRepo.FindAccountHeadsByCodes(ctx, codes)
	if err != nil {
		logger.Error("Failed to resolve account heads by code", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to resolve account heads: %w", err)
	}
	return accounts, nil
}

// ListAccountHeads retrieves the chart of accounts for the active tenant.
func (s *accountHeadService) ListAccountHeads(ctx context.Context, limit, offset int) ([]domain.AccountHead, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	accounts, err := s.accountHeadRepo.ListAccountHeads(ctx, limit, offset)
	if err != nil {
		logger.Error("Failed to list account heads", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list account heads: %w", err)
	}
	return accounts, nil
}
