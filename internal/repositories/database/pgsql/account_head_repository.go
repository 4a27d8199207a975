package pgsql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/stocklot/stocklot_erp_app/internal/apperrors"
	"github.com/stocklot/stocklot_erp_app/internal/core/domain"
	portsrepo "github.com/stocklot/stocklot_erp_app/internal/core/ports/repositories"
	"github.com/stocklot/stocklot_erp_app/internal/models"
	"github.com/stocklot/stocklot_erp_app/internal/repositories/database/pgsql/scope"
	"github.com/stocklot/stocklot_erp_app/internal/utils/mapping"
)

const accountHeadsTable = "account_heads"

const accountHeadColumns = `account_head_id, tenant_id, code, name, account_type, description, is_active, current_balance, created_at, created_by, last_updated_at, last_updated_by`

type PgxAccountHeadRepository struct {
	BaseRepository
}

// newPgxAccountHeadRepository creates a repository for chart-of-accounts data.
func newPgxAccountHeadRepository(pool *pgxpool.Pool) portsrepo.AccountHeadRepositoryFacade {
	return &PgxAccountHeadRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountHeadRepositoryFacade = (*PgxAccountHeadRepository)(nil)

// SaveAccountHead persists a new account head, stamped with the active tenant.
func (r *PgxAccountHeadRepository) SaveAccountHead(ctx context.Context, account domain.AccountHead) error {
	m := mapping.ToModelAccountHead(account)

	columns := []string{"account_head_id", "code", "name", "account_type", "description", "is_active", "current_balance", "created_at", "created_by", "last_updated_at", "last_updated_by"}
	values := []any{m.AccountHeadID, m.Code, m.Name, m.AccountType, m.Description, m.IsActive, m.CurrentBalance, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy}
	if m.TenantID != "" {
		// Declared tenant for bootstrap code; Stamp honors it only in system
		// mode and rewrites it to the context tenant otherwise.
		columns = append(columns, "tenant_id")
		values = append(values, m.TenantID)
	}

	columns, values, err := scope.Stamp(ctx, accountHeadsTable, columns, values)
	if err != nil {
		return err
	}

	placeholders := make([]string, len(values))
	for i := range values {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s);",
		accountHeadsTable, strings.Join(columns, ", "), strings.Join(placeholders, ", "))

	if _, err := r.Pool.Exec(ctx, query, values...); err != nil {
		if translated := translatePgError(err); errors.Is(translated, apperrors.ErrDuplicate) {
			return fmt.Errorf("%w: account code %s", apperrors.ErrDuplicate, m.Code)
		}
		return apperrors.NewAppError(500, "failed to insert account head "+m.AccountHeadID, err)
	}
	return nil
}

// FindAccountHeadByID retrieves an account head by ID within the active tenant.
func (r *PgxAccountHeadRepository) FindAccountHeadByID(ctx context.Context, accountHeadID string) (*domain.AccountHead, error) {
	where, args, err := scope.Filter(ctx, scope.OpRead, accountHeadsTable, "account_head_id = $1", []any{accountHeadID})
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s;", accountHeadColumns, accountHeadsTable, where)

	var m models.AccountHead
	err = r.Pool.QueryRow(ctx, query, args...).Scan(
		&m.AccountHeadID, &m.TenantID, &m.Code, &m.Name, &m.AccountType,
		&m.Description, &m.IsActive, &m.CurrentBalance,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find account head "+accountHeadID, err)
	}

	account := mapping.ToDomainAccountHead(m)
	return &account, nil
}

// FindAccountHeadsByCodes resolves account codes for the active tenant.
func (r *PgxAccountHeadRepository) FindAccountHeadsByCodes(ctx context.Context, codes []string) (map[string]domain.AccountHead, error) {
	if len(codes) == 0 {
		return map[string]domain.AccountHead{}, nil
	}

	where, args, err := scope.Filter(ctx, scope.OpRead, accountHeadsTable, "code = ANY($1)", []any{codes})
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s;", accountHeadColumns, accountHeadsTable, where)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query account heads by code", err)
	}
	defer rows.Close()

	accounts := make(map[string]domain.AccountHead)
	for rows.Next() {
		var m models.AccountHead
		if err := rows.Scan(
			&m.AccountHeadID, &m.TenantID, &m.Code, &m.Name, &m.AccountType,
			&m.Description, &m.IsActive, &m.CurrentBalance,
			&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan account head row", err)
		}
		accounts[m.Code] = mapping.ToDomainAccountHead(m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating account head rows", err)
	}
	return accounts, nil
}

// ListAccountHeads retrieves the chart of accounts for the active tenant.
func (r *PgxAccountHeadRepository) ListAccountHeads(ctx context.Context, limit, offset int) ([]domain.AccountHead, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	where, args, err := scope.Filter(ctx, scope.OpRead, accountHeadsTable, "", nil)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY code LIMIT $%d OFFSET $%d;",
		accountHeadColumns, accountHeadsTable, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list account heads", err)
	}
	defer rows.Close()

	accounts := []domain.AccountHead{}
	for rows.Next() {
		var m models.AccountHead
		if err := rows.Scan(
			&m.AccountHeadID, &m.TenantID, &m.Code, &m.Name, &m.AccountType,
			&m.Description, &m.IsActive, &m.CurrentBalance,
			&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan account head row", err)
		}
		accounts = append(accounts, mapping.ToDomainAccountHead(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating account head rows", err)
	}
	return accounts, nil
}

// FindAccountHeadsByIDsForUpdate locks the given accounts with FOR UPDATE
// inside the caller's transaction and returns them keyed by ID. All requested
// accounts must exist within the active tenant.
func (r *PgxAccountHeadRepository) FindAccountHeadsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountHeadIDs []string) (map[string]domain.AccountHead, error) {
	where, args, err := scope.Filter(ctx, scope.OpRead, accountHeadsTable, "account_head_id = ANY($1)", []any{accountHeadIDs})
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s FOR UPDATE;", accountHeadColumns, accountHeadsTable, where)

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query account heads for update: %w", err)
	}
	defer rows.Close()

	accounts := make(map[string]domain.AccountHead)
	for rows.Next() {
		var m models.AccountHead
		if err := rows.Scan(
			&m.AccountHeadID, &m.TenantID, &m.Code, &m.Name, &m.AccountType,
			&m.Description, &m.IsActive, &m.CurrentBalance,
			&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan locked account head row: %w", err)
		}
		accounts[m.AccountHeadID] = mapping.ToDomainAccountHead(m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locked account head rows: %w", err)
	}

	if len(accounts) != len(accountHeadIDs) {
		missing := []string{}
		for _, id := range accountHeadIDs {
			if _, found := accounts[id]; !found {
				missing = append(missing, id)
			}
		}
		slog.WarnContext(ctx, "Some account heads requested for update lock were not found", "missing_accounts", missing)
		return nil, fmt.Errorf("%w: could not find or lock all requested account heads, missing: %v", apperrors.ErrNotFound, missing)
	}
	return accounts, nil
}

// IncrementBalancesInTx applies signed balance deltas inside the caller's
// transaction. Only the ledger posting path reaches this.
func (r *PgxAccountHeadRepository) IncrementBalancesInTx(ctx context.Context, tx pgx.Tx, deltas map[string]decimal.Decimal, userID string, now time.Time) error {
	if len(deltas) == 0 {
		return nil
	}

	where, baseArgs, err := scope.Filter(ctx, scope.OpMutate, accountHeadsTable, "account_head_id = $1", []any{""})
	if err != nil {
		return err
	}
	// baseArgs[0] is a placeholder for the account ID, rewritten per queued update.
	query := fmt.Sprintf(`
		UPDATE %s
		SET current_balance = COALESCE(current_balance, 0) + $%d, last_updated_at = $%d, last_updated_by = $%d
		WHERE %s;`,
		accountHeadsTable, len(baseArgs)+1, len(baseArgs)+2, len(baseArgs)+3, where)

	batch := &pgx.Batch{}
	accountIDs := make([]string, 0, len(deltas))
	for accountID, delta := range deltas {
		if delta.IsZero() {
			continue
		}
		args := make([]any, len(baseArgs), len(baseArgs)+3)
		copy(args, baseArgs)
		args[0] = accountID
		args = append(args, delta, now, userID)
		batch.Queue(query, args...)
		accountIDs = append(accountIDs, accountID)
	}
	if batch.Len() == 0 {
		return nil
	}

	br := tx.SendBatch(ctx, batch)
	var batchErr error
	for i := 0; i < batch.Len(); i++ {
		ct, err := br.Exec()
		if err != nil && batchErr == nil {
			batchErr = fmt.Errorf("failed to update balance for account head %s: %w", accountIDs[i], err)
		} else if err == nil && ct.RowsAffected() == 0 && batchErr == nil {
			batchErr = fmt.Errorf("%w: account head %s not found during balance update", apperrors.ErrNotFound, accountIDs[i])
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = fmt.Errorf("failed to close balance update batch: %w", err)
	}
	return batchErr
}
