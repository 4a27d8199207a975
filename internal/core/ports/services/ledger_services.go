package services

import (
	"context"

	"github.com/stocklot/stocklot_erp_app/internal/core/domain"
	"github.com/stocklot/stocklot_erp_app/internal/dto"
)

// LedgerSvcFacade is the ledger posting engine surface consumed by handlers
// and by domain services that post as a side effect of their own writes.
type LedgerSvcFacade interface {
	// PostEntry validates and persists a balanced journal entry, updating the
	// affected account balances atomically. Lines address accounts by code.
	PostEntry(ctx context.Context, req dto.PostEntryRequest, actorUserID string) (*domain.JournalEntry, error)

	// GetEntry retrieves an entry with its lines.
	GetEntry(ctx context.Context, journalEntryID string) (*domain.JournalEntry, error)

	// ListEntries retrieves entries for the active tenant.
	ListEntries(ctx context.Context, params dto.ListEntriesParams) ([]domain.JournalEntry, error)

	// ReverseEntry posts a mirrored entry against a POSTED original and marks
	// the original REVERSED. POSTED entries are never edited in place.
	ReverseEntry(ctx context.Context, journalEntryID string, actorUserID string) (*domain.JournalEntry, error)
}

// AccountHeadSvcFacade manages the chart of accounts.
type AccountHeadSvcFacade interface {
	CreateAccountHead(ctx context.Context, req dto.CreateAccountHeadRequest, creatorUserID string) (*domain.AccountHead, error)
	GetAccountHeadByID(ctx context.Context, accountHeadID string) (*domain.AccountHead, error)
	GetAccountHeadsByCodes(ctx context.Context, codes []string) (map[string]domain.AccountHead, error)
	ListAccountHeads(ctx context.Context, limit, offset int) ([]domain.AccountHead, error)

	// SeedDefaultAccountHeads creates the starter chart of accounts for the
	// active tenant, skipping codes that already exist.
	SeedDefaultAccountHeads(ctx context.Context, creatorUserID string) ([]domain.AccountHead, error)
}

// AutoJournalSvcFacade turns business mutations into ledger postings. Callers
// invoke these synchronously inside their own write path and must treat a
// returned error as a reason to abort that surrounding operation.
type AutoJournalSvcFacade interface {
	RecordInvoiceIssued(ctx context.Context, ev dto.InvoiceIssuedEvent, actorUserID string) (*domain.JournalEntry, error)
	RecordPaymentReceived(ctx context.Context, ev dto.PaymentReceivedEvent, actorUserID string) (*domain.JournalEntry, error)
	RecordExpense(ctx context.Context, ev dto.ExpenseRecordedEvent, actorUserID string) (*domain.JournalEntry, error)
	RecordGoodsReceipt(ctx context.Context, ev dto.GoodsReceivedEvent, actorUserID string) (*domain.JournalEntry, error)
}
