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
	"github.com/stocklot/stocklot_erp_app/internal/utils/accounting"
)

var (
	ErrEntryUnbalanced    = errors.New("journal entry debits and credits do not balance")
	ErrEntryMinLines      = errors.New("journal entry must have at least two lines")
	ErrAccountNotFound    = errors.New("account head not found")
	ErrAccountInactive    = errors.New("account head is inactive")
	ErrDescriptionMissing = errors.New("journal entry description is required")
	ErrAlreadyReversed    = errors.New("journal entry is not POSTED")
	ErrReversalOfReversal = errors.New("cannot reverse a journal entry that is itself a reversal")
)

// maxPostAttempts bounds retries on transient posting conflicts (entry number
// collision, serialization failure).
const maxPostAttempts = 3

// ledgerService is the posting engine: it validates proposed line sets,
// resolves account codes, and persists balanced entries atomically.
type ledgerService struct {
	accountHeadSvc portssvc.AccountHeadSvcFacade
	journalRepo    portsrepo.JournalRepositoryFacade
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(journalRepo portsrepo.JournalRepositoryFacade, accountHeadSvc portssvc.AccountHeadSvcFacade) portssvc.LedgerSvcFacade {
	return &ledgerService{
		accountHeadSvc: accountHeadSvc,
		journalRepo:    journalRepo,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// PostEntry validates and persists a balanced journal entry. The number
// allocation, entry, lines and balance updates commit as one unit; a rejected
// entry leaves no trace.
func (s *ledgerService) PostEntry(ctx context.Context, req dto.PostEntryRequest, actorUserID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if len(req.Lines) < 2 {
		return nil, ErrEntryMinLines
	}
	if req.Description == "" {
		return nil, ErrDescriptionMissing
	}

	// Resolve account codes for the active tenant.
	codes := make([]string, 0, len(req.Lines))
	for _, line := range req.Lines {
		codes = append(codes, line.AccountCode)
	}
	codes = uniqueStrings(codes)

	accounts, err := s.accountHeadSvc.GetAccountHeadsByCodes(ctx, codes)
	if err != nil {
		logger.Error("Failed to resolve account codes for posting", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to resolve account codes: %w", err)
	}
	for _, code := range codes {
		acc, found := accounts[code]
		if !found {
			return nil, fmt.Errorf("%w: code %s", ErrAccountNotFound, code)
		}
		if !acc.IsActive {
			return nil, fmt.Errorf("%w: code %s", ErrAccountInactive, code)
		}
	}

	now := time.Now().UTC()
	referenceType := req.ReferenceType
	if referenceType == "" {
		referenceType = domain.RefManual
	}

	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     actorUserID,
		LastUpdatedAt: now,
		LastUpdatedBy: actorUserID,
	}

	// Build domain lines with amounts rounded to the currency unit before any
	// validation, so the balance check and the persisted values agree.
	lines := make([]domain.JournalLine, len(req.Lines))
	for i, lineReq := range req.Lines {
		acc := accounts[lineReq.AccountCode]
		lines[i] = domain.JournalLine{
			JournalLineID: uuid.NewString(),
			AccountHeadID: acc.AccountHeadID,
			LineNo:        i + 1,
			Debit:         accounting.Round2(lineReq.Debit),
			Credit:        accounting.Round2(lineReq.Credit),
			Description:   lineReq.Description,
			AuditFields:   audit,
		}
	}

	if err := accounting.ValidateBalanced(lines); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEntryUnbalanced, err)
	}

	deltas, err := balanceDeltas(lines, accounts)
	if err != nil {
		logger.Error("Failed to compute balance deltas", slog.String("error", err.Error()))
		return nil, err
	}

	entry := domain.JournalEntry{
		JournalEntryID: uuid.NewString(),
		EntryDate:      req.Date,
		Description:    req.Description,
		Status:         domain.Posted,
		ReferenceType:  referenceType,
		ReferenceID:    req.ReferenceID,
		ApprovedBy:     actorUserID,
		AuditFields:    audit,
	}

	entryNumber, err := s.saveWithRetry(ctx, func() (string, error) {
		return s.journalRepo.SaveEntry(ctx, entry, lines, deltas)
	})
	if err != nil {
		logger.Error("Failed to save journal entry", slog.String("error", err.Error()))
		return nil, err
	}

	entry.EntryNumber = entryNumber
	entry.Lines = lines
	logger.Info("Journal entry posted",
		slog.String("journal_entry_id", entry.JournalEntryID),
		slog.String("entry_number", entryNumber),
	)
	return &entry, nil
}

// saveWithRetry runs a persistence attempt, retrying with a freshly allocated
// number on transient conflicts, transparently to the caller.
func (s *ledgerService) saveWithRetry(ctx context.Context, save func() (string, error)) (string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	var lastErr error
	for attempt := 1; attempt <= maxPostAttempts; attempt++ {
		entryNumber, err := save()
		if err == nil {
			return entryNumber, nil
		}
		if !errors.Is(err, apperrors.ErrRetryable) {
			return "", fmt.Errorf("failed to save journal entry: %w", err)
		}
		lastErr = err
		logger.Warn("Transient conflict while posting, retrying",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()),
		)
	}
	return "", fmt.Errorf("posting failed after %d attempts: %w", maxPostAttempts, lastErr)
}

// balanceDeltas aggregates the net signed balance change per account head.
func balanceDeltas(lines []domain.JournalLine, accountsByCode map[string]domain.AccountHead) (map[string]decimal.Decimal, error) {
	typesByID := make(map[string]domain.AccountType, len(accountsByCode))
	for _, acc := range accountsByCode {
		typesByID[acc.AccountHeadID] = acc.AccountType
	}

	deltas := make(map[string]decimal.Decimal)
	for _, line := range lines {
		accountType, ok := typesByID[line.AccountHeadID]
		if !ok {
			return nil, fmt.Errorf("internal error: account head %s missing during delta calculation", line.AccountHeadID)
		}
		delta, err := accounting.SignedDelta(accountType, line.Debit, line.Credit)
		if err != nil {
			return nil, fmt.Errorf("internal error calculating balance delta: %w", err)
		}
		deltas[line.AccountHeadID] = deltas[line.AccountHeadID].Add(delta)
	}
	return deltas, nil
}

// GetEntry retrieves a journal entry with its lines.
func (s *ledgerService) GetEntry(ctx context.Context, journalEntryID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.journalRepo.FindEntryByID(ctx, journalEntryID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find journal entry", slog.String("error", err.Error()), slog.String("journal_entry_id", journalEntryID))
		}
		return nil, err
	}

	lines, err := s.journalRepo.FindLinesByEntryID(ctx, journalEntryID)
	if err != nil {
		logger.Error("Failed to fetch lines for journal entry", slog.String("error", err.Error()), slog.String("journal_entry_id", journalEntryID))
		return nil, fmt.Errorf("failed to retrieve lines for entry %s: %w", journalEntryID, err)
	}
	entry.Lines = lines
	return entry, nil
}

// ListEntries retrieves journal entries for the active tenant.
func (s *ledgerService) ListEntries(ctx context.Context, params dto.ListEntriesParams) ([]domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entries, err := s.journalRepo.ListEntries(ctx, params.Limit, params.Offset, params.IncludeReversals)
	if err != nil {
		logger.Error("Failed to list journal entries", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to retrieve journal entries: %w", err)
	}
	return entries, nil
}

// ReverseEntry posts a mirrored entry against a POSTED original and marks the
// original REVERSED. The original is never edited in place.
func (s *ledgerService) ReverseEntry(ctx context.Context, journalEntryID string, actorUserID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	original, err := s.journalRepo.FindEntryByID(ctx, journalEntryID)
	if err != nil {
		return nil, err
	}
	if original.Status != domain.Posted {
		return nil, fmt.Errorf("%w: status is %s", ErrAlreadyReversed, original.Status)
	}
	if original.OriginalEntryID != nil {
		return nil, ErrReversalOfReversal
	}

	originalLines, err := s.journalRepo.FindLinesByEntryID(ctx, journalEntryID)
	if err != nil {
		logger.Error("Failed to fetch lines for reversal", slog.String("error", err.Error()), slog.String("journal_entry_id", journalEntryID))
		return nil, fmt.Errorf("failed to retrieve lines for reversal: %w", err)
	}

	now := time.Now().UTC()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     actorUserID,
		LastUpdatedAt: now,
		LastUpdatedBy: actorUserID,
	}

	// Mirror each line: debits become credits and vice versa, so the reversal
	// exactly undoes the original's balance contributions.
	reversingLines := make([]domain.JournalLine, len(originalLines))
	accountIDs := make([]string, 0, len(originalLines))
	for i, orig := range originalLines {
		reversingLines[i] = domain.JournalLine{
			JournalLineID: uuid.NewString(),
			AccountHeadID: orig.AccountHeadID,
			LineNo:        i + 1,
			Debit:         orig.Credit,
			Credit:        orig.Debit,
			Description:   orig.Description,
			AuditFields:   audit,
		}
		accountIDs = append(accountIDs, orig.AccountHeadID)
	}

	deltas, err := s.deltasByAccountID(ctx, reversingLines, uniqueStrings(accountIDs))
	if err != nil {
		return nil, err
	}

	reversing := domain.JournalEntry{
		JournalEntryID:  uuid.NewString(),
		EntryDate:       original.EntryDate,
		Description:     fmt.Sprintf("Reversal of %s: %s", original.EntryNumber, original.Description),
		Status:          domain.Posted,
		ReferenceType:   domain.RefReversal,
		ReferenceID:     original.JournalEntryID,
		ApprovedBy:      actorUserID,
		OriginalEntryID: &original.JournalEntryID,
		AuditFields:     audit,
	}

	// One repository transaction posts the mirror and flips the original;
	// losing a concurrent reversal race surfaces as ErrConflict with nothing
	// persisted.
	entryNumber, err := s.saveWithRetry(ctx, func() (string, error) {
		return s.journalRepo.SaveReversal(ctx, reversing, reversingLines, deltas)
	})
	if err != nil {
		logger.Error("Failed to save reversing entry", slog.String("error", err.Error()))
		return nil, err
	}
	reversing.EntryNumber = entryNumber

	logger.Info("Journal entry reversed",
		slog.String("original_entry_id", original.JournalEntryID),
		slog.String("reversing_entry_id", reversing.JournalEntryID),
	)
	reversing.Lines = reversingLines
	return &reversing, nil
}

// deltasByAccountID computes net deltas when lines already reference account
// IDs rather than codes.
func (s *ledgerService) deltasByAccountID(ctx context.Context, lines []domain.JournalLine, accountIDs []string) (map[string]decimal.Decimal, error) {
	typesByID := make(map[string]domain.AccountType, len(accountIDs))
	for _, id := range accountIDs {
		acc, err := s.accountHeadSvc.GetAccountHeadByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to get account head %s for reversal: %w", id, err)
		}
		typesByID[id] = acc.AccountType
	}

	deltas := make(map[string]decimal.Decimal)
	for _, line := range lines {
		delta, err := accounting.SignedDelta(typesByID[line.AccountHeadID], line.Debit, line.Credit)
		if err != nil {
			return nil, fmt.Errorf("internal error calculating reversal delta: %w", err)
		}
		deltas[line.AccountHeadID] = deltas[line.AccountHeadID].Add(delta)
	}
	return deltas, nil
}

// uniqueStrings returns a slice containing only the unique strings from the input.
func uniqueStrings(input []string) []string {
	seen := make(map[string]struct{}, len(input))
	result := make([]string, 0, len(input))
	for _, str := range input {
		if _, ok := seen[str]; !ok {
			seen[str] = struct{}{}
			result = append(result, str)
		}
	}
	return result
}
