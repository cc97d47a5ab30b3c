package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType indicates whether a journal entry row is a debit or a credit.
type EntryType string

const (
	Debit  EntryType = "DEBIT"
	Credit EntryType = "CREDIT"
)

// JournalEntry is the database representation of one debit/credit line.
type JournalEntry struct {
	EntryID        string          `db:"entry_id"`
	TransactionID  string          `db:"transaction_id"`
	AccountID      string          `db:"account_id"`
	EntryType      EntryType       `db:"entry_type"`
	Amount         decimal.Decimal `db:"amount"`
	Description    string          `db:"description"`
	RunningBalance decimal.Decimal `db:"running_balance"`
	DeletedAt      *time.Time      `db:"deleted_at"`
	AuditFields

	// Joined from the transactions table for account statements.
	TxnDate        time.Time `db:"txn_date"`
	TxnDescription string    `db:"txn_description"`
}
