// Package models holds the database-row representations of domain entities.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditFields mirrors the audit columns present on every table.
type AuditFields struct {
	CreatedAt     time.Time
	CreatedBy     string
	LastUpdatedAt time.Time
	LastUpdatedBy string
}

// AccountHead maps the account_heads table.
type AccountHead struct {
	AccountHeadID  string
	TenantID       string
	Code           string
	Name           string
	AccountType    string
	Description    string
	IsActive       bool
	CurrentBalance decimal.Decimal
	AuditFields
}

// JournalEntry maps the journal_entries table.
type JournalEntry struct {
	JournalEntryID   string
	TenantID         string
	EntryNumber      string
	EntryDate        time.Time
	Description      string
	Status           string
	ReferenceType    string
	ReferenceID      string
	ApprovedBy       string
	OriginalEntryID  *string
	ReversingEntryID *string
	AuditFields
}

// JournalLine maps the journal_lines table.
type JournalLine struct {
	JournalLineID  string
	JournalEntryID string
	TenantID       string
	AccountHeadID  string
	LineNo         int
	Debit          decimal.Decimal
	Credit         decimal.Decimal
	Description    string
	AuditFields
}
