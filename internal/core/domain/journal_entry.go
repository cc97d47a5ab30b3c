package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType indicates whether a journal entry is a debit or a credit.
type EntryType string

const (
	Debit  EntryType = "DEBIT"
	Credit EntryType = "CREDIT"
)

// Opposite returns the mirrored entry type, used when building reversals.
func (e EntryType) Opposite() EntryType {
	if e == Debit {
		return Credit
	}
	return Debit
}

// JournalEntry is a single debit or credit line against one account, part
// of a balanced transaction. Entries are created atomically with their
// siblings when the owning transaction is posted, and are soft-deleted only
// as a unit with it.
type JournalEntry struct {
	EntryID       string          `json:"entryID"` // Primary key (UUID)
	TransactionID string          `json:"transactionID"`
	AccountID     string          `json:"accountID"`
	EntryType     EntryType       `json:"entryType"`
	Amount        decimal.Decimal `json:"amount"` // Always positive
	Description   string          `json:"description"`
	DeletedAt     *time.Time      `json:"deletedAt,omitempty"`
	AuditFields

	// RunningBalance is the account's cached balance after this entry was
	// applied, recorded at posting time.
	RunningBalance decimal.Decimal `json:"runningBalance"`

	// Denormalised transaction details for account statements.
	TxnDate        time.Time `json:"txnDate,omitempty"`
	TxnDescription string    `json:"txnDescription,omitempty"`
}
