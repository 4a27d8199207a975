package repositories

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/stocklot/stocklot_erp_app/internal/core/domain"
)

// JournalReader defines read operations for journal data.
type JournalReader interface {
	// FindEntryByID retrieves a journal entry (without lines) by its identifier.
	FindEntryByID(ctx context.Context, journalEntryID string) (*domain.JournalEntry, error)

	// FindLinesByEntryID retrieves the ordered lines of a journal entry.
	FindLinesByEntryID(ctx context.Context, journalEntryID string) ([]domain.JournalLine, error)

	// ListEntries retrieves journal entries for the active tenant, newest first.
	ListEntries(ctx context.Context, limit, offset int, includeReversals bool) ([]domain.JournalEntry, error)
}

// JournalWriter defines write operations for journal data.
type JournalWriter interface {
	// SaveEntry persists a journal entry and its lines and applies the given
	// balance deltas, all inside one database transaction. The entry number is
	// allocated from the per-(tenant, day) sequence within that same
	// transaction and returned. A transient allocation conflict surfaces as
	// ErrRetryable; nothing is persisted in that case.
	SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine, deltas map[string]decimal.Decimal) (entryNumber string, err error)

	// SaveReversal persists a reversing entry and transitions its original
	// (entry.OriginalEntryID) from POSTED to REVERSED, all inside one database
	// transaction. If the original is no longer POSTED nothing is persisted
	// and ErrConflict is returned.
	SaveReversal(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine, deltas map[string]decimal.Decimal) (entryNumber string, err error)
}

// JournalRepositoryFacade combines all journal repository interfaces.
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
}
