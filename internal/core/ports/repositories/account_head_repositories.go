package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/stocklot/stocklot_erp_app/internal/core/domain"
)

// AccountHeadReader defines read operations for the chart of accounts.
type AccountHeadReader interface {
	// FindAccountHeadByID retrieves an account head by its unique identifier.
	FindAccountHeadByID(ctx context.Context, accountHeadID string) (*domain.AccountHead, error)

	// FindAccountHeadsByCodes resolves account codes to account heads for the
	// active tenant. Missing codes are simply absent from the returned map.
	FindAccountHeadsByCodes(ctx context.Context, codes []string) (map[string]domain.AccountHead, error)

	// ListAccountHeads retrieves the chart of accounts for the active tenant.
	ListAccountHeads(ctx context.Context, limit, offset int) ([]domain.AccountHead, error)
}

// AccountHeadWriter defines write operations for the chart of accounts.
// CurrentBalance is deliberately absent here: only the in-transaction methods
// below may move balances, and only the ledger posting path calls them.
type AccountHeadWriter interface {
	// SaveAccountHead persists a new account head.
	SaveAccountHead(ctx context.Context, account domain.AccountHead) error
}

// AccountHeadTxOps defines operations that run inside an enclosing posting
// transaction.
type AccountHeadTxOps interface {
	// FindAccountHeadsByIDsForUpdate locks the given accounts with FOR UPDATE
	// and returns them keyed by ID. Fails with ErrNotFound if any are missing.
	FindAccountHeadsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountHeadIDs []string) (map[string]domain.AccountHead, error)

	// IncrementBalancesInTx applies signed balance deltas to the given accounts.
	IncrementBalancesInTx(ctx context.Context, tx pgx.Tx, deltas map[string]decimal.Decimal, userID string, now time.Time) error
}

// AccountHeadRepositoryFacade combines all account-head repository interfaces.
type AccountHeadRepositoryFacade interface {
	AccountHeadReader
	AccountHeadWriter
	AccountHeadTxOps
}
