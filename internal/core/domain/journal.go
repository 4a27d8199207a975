package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus indicates the state of a journal entry.
type EntryStatus string

const (
	Posted   EntryStatus = "POSTED"
	Reversed EntryStatus = "REVERSED"
)

// ReferenceType links a journal entry back to the business object that
// triggered it.
type ReferenceType string

const (
	RefManual       ReferenceType = "MANUAL"
	RefInvoice      ReferenceType = "INVOICE"
	RefPayment      ReferenceType = "PAYMENT"
	RefExpense      ReferenceType = "EXPENSE"
	RefGoodsReceipt ReferenceType = "GOODS_RECEIPT"
	RefReversal     ReferenceType = "REVERSAL"
)

// JournalEntry represents a single, balanced accounting event composed of two
// or more lines. Entries are immutable once POSTED; corrections are modeled as
// reversing entries, never in-place edits.
type JournalEntry struct {
	JournalEntryID   string        `json:"journalEntryID"` // Primary key (UUID)
	TenantID         string        `json:"tenantID"`       // Owning tenant (NON-NULL)
	EntryNumber      string        `json:"entryNumber"`    // JE-YYYYMMDD-NNN, unique per tenant
	EntryDate        time.Time     `json:"entryDate"`      // Date the event occurred
	Description      string        `json:"description"`
	Status           EntryStatus   `json:"status"`
	ReferenceType    ReferenceType `json:"referenceType"`
	ReferenceID      string        `json:"referenceID"`
	ApprovedBy       string        `json:"approvedBy,omitempty"`
	OriginalEntryID  *string       `json:"originalEntryID,omitempty"`  // Set on reversing entries
	ReversingEntryID *string       `json:"reversingEntryID,omitempty"` // Set on reversed originals
	Lines            []JournalLine `json:"lines,omitempty"`
	AuditFields
}

// JournalLine is one debit or credit leg of a journal entry. Exactly one of
// Debit/Credit is non-zero for a valid line.
type JournalLine struct {
	JournalLineID  string          `json:"journalLineID"`
	JournalEntryID string          `json:"journalEntryID"`
	TenantID       string          `json:"tenantID"`
	AccountHeadID  string          `json:"accountHeadID"`
	LineNo         int             `json:"lineNo"`
	Debit          decimal.Decimal `json:"debit"`  // >= 0
	Credit         decimal.Decimal `json:"credit"` // >= 0
	Description    string          `json:"description,omitempty"`
	AuditFields
}
