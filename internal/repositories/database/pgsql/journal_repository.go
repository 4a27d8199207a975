package pgsql

import (
	"context"
	"errors"
	"fmt"
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

const (
	journalEntriesTable = "journal_entries"
	journalLinesTable   = "journal_lines"
)

const journalEntryColumns = `journal_entry_id, tenant_id, entry_number, entry_date, description, status, reference_type, reference_id, approved_by, original_entry_id, reversing_entry_id, created_at, created_by, last_updated_at, last_updated_by`

type PgxJournalRepository struct {
	BaseRepository
	accountHeadRepo portsrepo.AccountHeadRepositoryFacade
}

// newPgxJournalRepository creates a repository for journal entry and line data.
func newPgxJournalRepository(pool *pgxpool.Pool, accountHeadRepo portsrepo.AccountHeadRepositoryFacade) portsrepo.JournalRepositoryFacade {
	return &PgxJournalRepository{
		BaseRepository:  BaseRepository{Pool: pool},
		accountHeadRepo: accountHeadRepo,
	}
}

var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

// SaveEntry persists a journal entry, its lines and the resulting balance
// updates as a single database transaction. The entry number is allocated from
// the per-(tenant, day) sequence inside that same transaction, so a rollback
// leaves no trace of the posting, number included.
func (r *PgxJournalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine, deltas map[string]decimal.Decimal) (string, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer r.Rollback(ctx, tx)

	entryNumber, err := r.saveEntryInTx(ctx, tx, entry, lines, deltas)
	if err != nil {
		return "", err
	}

	if err := r.Commit(ctx, tx); err != nil {
		if translated := translatePgError(err); errors.Is(translated, apperrors.ErrRetryable) {
			return "", translated
		}
		return "", apperrors.NewAppError(500, "failed to commit posting for entry "+entry.JournalEntryID, err)
	}
	return entryNumber, nil
}

// SaveReversal persists a reversing entry and flips its original from POSTED
// to REVERSED in the same database transaction. If a concurrent reversal got
// there first the status guard matches no row and everything rolls back, so
// an original can never be reversed twice.
func (r *PgxJournalRepository) SaveReversal(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine, deltas map[string]decimal.Decimal) (string, error) {
	if entry.OriginalEntryID == nil {
		return "", fmt.Errorf("reversing entry %s does not reference an original", entry.JournalEntryID)
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer r.Rollback(ctx, tx)

	entryNumber, err := r.saveEntryInTx(ctx, tx, entry, lines, deltas)
	if err != nil {
		return "", err
	}

	where, args, err := scope.Filter(ctx, scope.OpMutate, journalEntriesTable, "journal_entry_id = $1 AND status = $2", []any{*entry.OriginalEntryID, string(domain.Posted)})
	if err != nil {
		return "", err
	}
	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $%d, reversing_entry_id = $%d, last_updated_at = $%d, last_updated_by = $%d
		WHERE %s;`,
		journalEntriesTable, len(args)+1, len(args)+2, len(args)+3, len(args)+4, where)
	args = append(args, string(domain.Reversed), entry.JournalEntryID, entry.LastUpdatedAt, entry.LastUpdatedBy)

	cmdTag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return "", apperrors.NewAppError(500, "failed to mark entry reversed "+*entry.OriginalEntryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return "", fmt.Errorf("%w: entry %s is not POSTED or does not exist", apperrors.ErrConflict, *entry.OriginalEntryID)
	}

	if err := r.Commit(ctx, tx); err != nil {
		if translated := translatePgError(err); errors.Is(translated, apperrors.ErrRetryable) {
			return "", translated
		}
		return "", apperrors.NewAppError(500, "failed to commit reversal of entry "+*entry.OriginalEntryID, err)
	}
	return entryNumber, nil
}

// saveEntryInTx writes the entry, its lines and the balance updates inside the
// caller's transaction. The caller commits.
func (r *PgxJournalRepository) saveEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry, lines []domain.JournalLine, deltas map[string]decimal.Decimal) (string, error) {
	tenantID, err := scope.TenantFor(ctx, journalEntriesTable)
	if err != nil {
		return "", err
	}
	if tenantID == "" {
		// System mode: the caller must declare the owning tenant. An unstamped
		// entry would break the tenant invariant on journal_entries.
		tenantID = entry.TenantID
	}
	if tenantID == "" {
		return "", fmt.Errorf("%w: journal entries must carry a tenant", apperrors.ErrTenantRequired)
	}

	entryNumber, err := r.nextEntryNumber(ctx, tx, tenantID, entry.EntryDate)
	if err != nil {
		return "", err
	}

	m := mapping.ToModelJournalEntry(entry)
	m.TenantID = tenantID
	m.EntryNumber = entryNumber

	insertEntry := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);`,
		journalEntriesTable, journalEntryColumns)
	_, err = tx.Exec(ctx, insertEntry,
		m.JournalEntryID, m.TenantID, m.EntryNumber, m.EntryDate, m.Description,
		m.Status, m.ReferenceType, m.ReferenceID, m.ApprovedBy,
		m.OriginalEntryID, m.ReversingEntryID,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if translated := translatePgError(err); errors.Is(translated, apperrors.ErrDuplicate) {
			// Another posting won the same number; caller recomputes and retries.
			return "", fmt.Errorf("%w: entry number %s already allocated", apperrors.ErrRetryable, entryNumber)
		} else if errors.Is(translated, apperrors.ErrRetryable) {
			return "", translated
		}
		return "", apperrors.NewAppError(500, "failed to insert journal entry "+m.JournalEntryID, err)
	}

	// Lock the affected accounts before touching balances.
	accountIDs := make([]string, 0, len(deltas))
	for accID := range deltas {
		accountIDs = append(accountIDs, accID)
	}
	if _, err := r.accountHeadRepo.FindAccountHeadsByIDsForUpdate(ctx, tx, accountIDs); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", err
		}
		return "", apperrors.NewAppError(500, "failed to lock account heads for posting", err)
	}

	if err := r.accountHeadRepo.IncrementBalancesInTx(ctx, tx, deltas, entry.CreatedBy, entry.CreatedAt); err != nil {
		if errors.Is(err, apperrors.ErrRetryable) || errors.Is(err, apperrors.ErrNotFound) {
			return "", err
		}
		return "", apperrors.NewAppError(500, "failed to update account balances", err)
	}

	insertLine := fmt.Sprintf(`
		INSERT INTO %s (journal_line_id, journal_entry_id, tenant_id, account_head_id, line_no, debit_amount, credit_amount, description, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);`, journalLinesTable)

	batch := &pgx.Batch{}
	for i, line := range lines {
		lm := mapping.ToModelJournalLine(line)
		lm.JournalEntryID = m.JournalEntryID
		lm.TenantID = tenantID
		lm.LineNo = i + 1
		batch.Queue(insertLine,
			lm.JournalLineID, lm.JournalEntryID, lm.TenantID, lm.AccountHeadID,
			lm.LineNo, lm.Debit, lm.Credit, lm.Description,
			lm.CreatedAt, lm.CreatedBy, lm.LastUpdatedAt, lm.LastUpdatedBy,
		)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		if translated := translatePgError(err); errors.Is(translated, apperrors.ErrRetryable) {
			return "", translated
		}
		return "", apperrors.NewAppError(500, "failed to insert journal lines for entry "+m.JournalEntryID, err)
	}

	return entryNumber, nil
}

// nextEntryNumber atomically advances the per-(tenant, day) counter and
// formats the allocated suffix as JE-YYYYMMDD-NNN. The first entry of a new
// day starts at 001. An upsert-increment on the counter row replaces the
// max-scan so two concurrent postings can never read the same highest suffix.
func (r *PgxJournalRepository) nextEntryNumber(ctx context.Context, tx pgx.Tx, tenantID string, entryDate time.Time) (string, error) {
	day := entryDate.UTC().Truncate(24 * time.Hour)

	var seq int64
	err := tx.QueryRow(ctx, `
		INSERT INTO journal_sequences (tenant_id, entry_date, last_seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (tenant_id, entry_date)
		DO UPDATE SET last_seq = journal_sequences.last_seq + 1
		RETURNING last_seq;`,
		tenantID, day,
	).Scan(&seq)
	if err != nil {
		if translated := translatePgError(err); errors.Is(translated, apperrors.ErrRetryable) {
			return "", translated
		}
		return "", apperrors.NewAppError(500, "failed to allocate journal entry number", err)
	}

	return fmt.Sprintf("JE-%s-%03d", day.Format("20060102"), seq), nil
}

// FindEntryByID retrieves a journal entry (without lines) within the active tenant.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, journalEntryID string) (*domain.JournalEntry, error) {
	where, args, err := scope.Filter(ctx, scope.OpRead, journalEntriesTable, "journal_entry_id = $1", []any{journalEntryID})
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s;", journalEntryColumns, journalEntriesTable, where)

	var m models.JournalEntry
	err = r.Pool.QueryRow(ctx, query, args...).Scan(
		&m.JournalEntryID, &m.TenantID, &m.EntryNumber, &m.EntryDate, &m.Description,
		&m.Status, &m.ReferenceType, &m.ReferenceID, &m.ApprovedBy,
		&m.OriginalEntryID, &m.ReversingEntryID,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find journal entry "+journalEntryID, err)
	}

	entry := mapping.ToDomainJournalEntry(m)
	return &entry, nil
}

// FindLinesByEntryID retrieves the lines of an entry in line order.
func (r *PgxJournalRepository) FindLinesByEntryID(ctx context.Context, journalEntryID string) ([]domain.JournalLine, error) {
	where, args, err := scope.Filter(ctx, scope.OpRead, journalLinesTable, "journal_entry_id = $1", []any{journalEntryID})
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
		SELECT journal_line_id, journal_entry_id, tenant_id, account_head_id, line_no, debit_amount, credit_amount, description, created_at, created_by, last_updated_at, last_updated_by
		FROM %s
		WHERE %s
		ORDER BY line_no;`, journalLinesTable, where)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query lines for entry "+journalEntryID, err)
	}
	defer rows.Close()

	lines := []models.JournalLine{}
	for rows.Next() {
		var lm models.JournalLine
		if err := rows.Scan(
			&lm.JournalLineID, &lm.JournalEntryID, &lm.TenantID, &lm.AccountHeadID,
			&lm.LineNo, &lm.Debit, &lm.Credit, &lm.Description,
			&lm.CreatedAt, &lm.CreatedBy, &lm.LastUpdatedAt, &lm.LastUpdatedBy,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan line row for entry "+journalEntryID, err)
		}
		lines = append(lines, lm)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating line rows for entry "+journalEntryID, err)
	}
	return mapping.ToDomainJournalLineSlice(lines), nil
}

// ListEntries retrieves journal entries for the active tenant, newest first.
func (r *PgxJournalRepository) ListEntries(ctx context.Context, limit, offset int, includeReversals bool) ([]domain.JournalEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	filter := ""
	if !includeReversals {
		filter = "status != 'REVERSED' AND original_entry_id IS NULL"
	}
	where, args, err := scope.Filter(ctx, scope.OpRead, journalEntriesTable, filter, nil)
	if err != nil {
		return nil, err
	}
	if where == "" {
		where = "TRUE"
	}
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s
		ORDER BY entry_date DESC, entry_number DESC
		LIMIT $%d OFFSET $%d;`,
		journalEntryColumns, journalEntriesTable, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list journal entries", err)
	}
	defer rows.Close()

	entries := []domain.JournalEntry{}
	for rows.Next() {
		var m models.JournalEntry
		if err := rows.Scan(
			&m.JournalEntryID, &m.TenantID, &m.EntryNumber, &m.EntryDate, &m.Description,
			&m.Status, &m.ReferenceType, &m.ReferenceID, &m.ApprovedBy,
			&m.OriginalEntryID, &m.ReversingEntryID,
			&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan journal entry row", err)
		}
		entries = append(entries, mapping.ToDomainJournalEntry(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating journal entry rows", err)
	}
	return entries, nil
}

