package mapping

import (
	"github.com/tatenda10/alamait-sub008/internal/core/domain"
	"github.com/tatenda10/alamait-sub008/internal/models"
)

// ToModelTransaction converts a domain Transaction header to its model form.
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:           d.TransactionID,
		TxnType:                 string(d.TxnType),
		Reference:               d.Reference,
		TxnDate:                 d.TxnDate,
		Description:             d.Description,
		Status:                  models.TransactionStatus(d.Status),
		Amount:                  d.Amount,
		ReversesTransactionID:   d.ReversesTransactionID,
		ReversedByTransactionID: d.ReversedByTransactionID,
		StudentID:               d.StudentID,
		EnrollmentID:            d.EnrollmentID,
		DeletedAt:               d.DeletedAt,
		AuditFields:             ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransaction converts a model Transaction header to its domain form.
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:           m.TransactionID,
		TxnType:                 domain.TransactionType(m.TxnType),
		Reference:               m.Reference,
		TxnDate:                 m.TxnDate,
		Description:             m.Description,
		Status:                  domain.TransactionStatus(m.Status),
		Amount:                  m.Amount,
		ReversesTransactionID:   m.ReversesTransactionID,
		ReversedByTransactionID: m.ReversedByTransactionID,
		StudentID:               m.StudentID,
		EnrollmentID:            m.EnrollmentID,
		DeletedAt:               m.DeletedAt,
		AuditFields:             ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelJournalEntry converts a domain JournalEntry to its model form.
func ToModelJournalEntry(d domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
		EntryID:        d.EntryID,
		TransactionID:  d.TransactionID,
		AccountID:      d.AccountID,
		EntryType:      models.EntryType(d.EntryType),
		Amount:         d.Amount,
		Description:    d.Description,
		RunningBalance: d.RunningBalance,
		DeletedAt:      d.DeletedAt,
		AuditFields:    ToModelAuditFields(d.AuditFields),
		TxnDate:        d.TxnDate,
		TxnDescription: d.TxnDescription,
	}
}

// ToDomainJournalEntry converts a model JournalEntry to its domain form.
func ToDomainJournalEntry(m models.JournalEntry) domain.JournalEntry {
	return domain.JournalEntry{
		EntryID:        m.EntryID,
		TransactionID:  m.TransactionID,
		AccountID:      m.AccountID,
		EntryType:      domain.EntryType(m.EntryType),
		Amount:         m.Amount,
		Description:    m.Description,
		RunningBalance: m.RunningBalance,
		DeletedAt:      m.DeletedAt,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
		TxnDate:        m.TxnDate,
		TxnDescription: m.TxnDescription,
	}
}

// ToDomainJournalEntrySlice converts a slice of model entries.
func ToDomainJournalEntrySlice(ms []models.JournalEntry) []domain.JournalEntry {
	ds := make([]domain.JournalEntry, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainJournalEntry(m)
	}
	return ds
}
