package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/stocklot/stocklot_erp_app/internal/core/domain"
)

// PostLineRequest is one proposed debit/credit leg, addressed by account code.
type PostLineRequest struct {
	AccountCode string          `json:"accountCode" binding:"required,accountcode"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
}

// PostEntryRequest defines the input for posting a journal entry.
type PostEntryRequest struct {
	Date          time.Time            `json:"date" binding:"required"`
	Description   string               `json:"description" binding:"required"`
	ReferenceType domain.ReferenceType `json:"referenceType"`
	ReferenceID   string               `json:"referenceID"`
	Lines         []PostLineRequest    `json:"lines" binding:"required,min=2,dive"`
}

// JournalLineResponse defines the data returned for a journal line.
type JournalLineResponse struct {
	JournalLineID string          `json:"journalLineID"`
	AccountHeadID string          `json:"accountHeadID"`
	LineNo        int             `json:"lineNo"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	Description   string          `json:"description,omitempty"`
}

// JournalEntryResponse defines the data returned for a journal entry.
type JournalEntryResponse struct {
	JournalEntryID  string                `json:"journalEntryID"`
	EntryNumber     string                `json:"entryNumber"`
	Date            time.Time             `json:"date"`
	Description     string                `json:"description"`
	Status          string                `json:"status"`
	ReferenceType   string                `json:"referenceType,omitempty"`
	ReferenceID     string                `json:"referenceID,omitempty"`
	OriginalEntryID *string               `json:"originalEntryID,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
	CreatedBy       string                `json:"createdBy"`
	Lines           []JournalLineResponse `json:"lines,omitempty"`
}

// ListEntriesParams holds parameters for listing journal entries.
type ListEntriesParams struct {
	Limit            int  `form:"limit"`
	Offset           int  `form:"offset"`
	IncludeReversals bool `form:"includeReversals"`
}

// ListEntriesResponse is the paginated journal entry listing.
type ListEntriesResponse struct {
	Entries []JournalEntryResponse `json:"entries"`
}

// ToJournalLineResponse converts a domain.JournalLine to its response DTO.
func ToJournalLineResponse(l *domain.JournalLine) JournalLineResponse {
	return JournalLineResponse{
		JournalLineID: l.JournalLineID,
		AccountHeadID: l.AccountHeadID,
		LineNo:        l.LineNo,
		Debit:         l.Debit,
		Credit:        l.Credit,
		Description:   l.Description,
	}
}

// ToJournalEntryResponse converts a domain.JournalEntry (with any loaded lines)
// to its response DTO.
func ToJournalEntryResponse(e *domain.JournalEntry) JournalEntryResponse {
	resp := JournalEntryResponse{
		JournalEntryID:  e.JournalEntryID,
		EntryNumber:     e.EntryNumber,
		Date:            e.EntryDate,
		Description:     e.Description,
		Status:          string(e.Status),
		ReferenceType:   string(e.ReferenceType),
		ReferenceID:     e.ReferenceID,
		OriginalEntryID: e.OriginalEntryID,
		CreatedAt:       e.CreatedAt,
		CreatedBy:       e.CreatedBy,
	}
	if len(e.Lines) > 0 {
		resp.Lines = make([]JournalLineResponse, len(e.Lines))
		for i := range e.Lines {
			resp.Lines[i] = ToJournalLineResponse(&e.Lines[i])
		}
	}
	return resp
}
