// Package mapping converts between database models and domain entities.
package mapping

import (
	"github.com/stocklot/stocklot_erp_app/internal/core/domain"
	"github.com/stocklot/stocklot_erp_app/internal/models"
)

func toModelAudit(a domain.AuditFields) models.AuditFields {
	return models.AuditFields{
		CreatedAt:     a.CreatedAt,
		CreatedBy:     a.CreatedBy,
		LastUpdatedAt: a.LastUpdatedAt,
		LastUpdatedBy: a.LastUpdatedBy,
	}
}

func toDomainAudit(a models.AuditFields) domain.AuditFields {
	return domain.AuditFields{
		CreatedAt:     a.CreatedAt,
		CreatedBy:     a.CreatedBy,
		LastUpdatedAt: a.LastUpdatedAt,
		LastUpdatedBy: a.LastUpdatedBy,
	}
}

// ToModelAccountHead converts a domain account head to its DB model.
func ToModelAccountHead(a domain.AccountHead) models.AccountHead {
	return models.AccountHead{
		AccountHeadID:  a.AccountHeadID,
		TenantID:       a.TenantID,
		Code:           a.Code,
		Name:           a.Name,
		AccountType:    string(a.AccountType),
		Description:    a.Description,
		IsActive:       a.IsActive,
		CurrentBalance: a.CurrentBalance,
		AuditFields:    toModelAudit(a.AuditFields),
	}
}

// ToDomainAccountHead converts a DB account head row to the domain entity.
func ToDomainAccountHead(m models.AccountHead) domain.AccountHead {
	return domain.AccountHead{
		AccountHeadID:  m.AccountHeadID,
		TenantID:       m.TenantID,
		Code:           m.Code,
		Name:           m.Name,
		AccountType:    domain.AccountType(m.AccountType),
		Description:    m.Description,
		IsActive:       m.IsActive,
		CurrentBalance: m.CurrentBalance,
		AuditFields:    toDomainAudit(m.AuditFields),
	}
}

// ToModelJournalEntry converts a domain journal entry to its DB model.
func ToModelJournalEntry(e domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
		JournalEntryID:   e.JournalEntryID,
		TenantID:         e.TenantID,
		EntryNumber:      e.EntryNumber,
		EntryDate:        e.EntryDate,
		Description:      e.Description,
		Status:           string(e.Status),
		ReferenceType:    string(e.ReferenceType),
		ReferenceID:      e.ReferenceID,
		ApprovedBy:       e.ApprovedBy,
		OriginalEntryID:  e.OriginalEntryID,
		ReversingEntryID: e.ReversingEntryID,
		AuditFields:      toModelAudit(e.AuditFields),
	}
}

// ToDomainJournalEntry converts a DB journal entry row to the domain entity.
func ToDomainJournalEntry(m models.JournalEntry) domain.JournalEntry {
	return domain.JournalEntry{
		JournalEntryID:   m.JournalEntryID,
		TenantID:         m.TenantID,
		EntryNumber:      m.EntryNumber,
		EntryDate:        m.EntryDate,
		Description:      m.Description,
		Status:           domain.EntryStatus(m.Status),
		ReferenceType:    domain.ReferenceType(m.ReferenceType),
		ReferenceID:      m.ReferenceID,
		ApprovedBy:       m.ApprovedBy,
		OriginalEntryID:  m.OriginalEntryID,
		ReversingEntryID: m.ReversingEntryID,
		AuditFields:      toDomainAudit(m.AuditFields),
	}
}

// ToModelJournalLine converts a domain journal line to its DB model.
func ToModelJournalLine(l domain.JournalLine) models.JournalLine {
	return models.JournalLine{
		JournalLineID:  l.JournalLineID,
		JournalEntryID: l.JournalEntryID,
		TenantID:       l.TenantID,
		AccountHeadID:  l.AccountHeadID,
		LineNo:         l.LineNo,
		Debit:          l.Debit,
		Credit:         l.Credit,
		Description:    l.Description,
		AuditFields:    toModelAudit(l.AuditFields),
	}
}

// ToDomainJournalLine converts a DB journal line row to the domain entity.
func ToDomainJournalLine(m models.JournalLine) domain.JournalLine {
	return domain.JournalLine{
		JournalLineID:  m.JournalLineID,
		JournalEntryID: m.JournalEntryID,
		TenantID:       m.TenantID,
		AccountHeadID:  m.AccountHeadID,
		LineNo:         m.LineNo,
		Debit:          m.Debit,
		Credit:         m.Credit,
		Description:    m.Description,
		AuditFields:    toDomainAudit(m.AuditFields),
	}
}

// ToDomainJournalLineSlice converts a slice of DB line rows.
func ToDomainJournalLineSlice(ms []models.JournalLine) []domain.JournalLine {
	out := make([]domain.JournalLine, len(ms))
	for i, m := range ms {
		out[i] = ToDomainJournalLine(m)
	}
	return out
}
