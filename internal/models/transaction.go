package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus indicates the lifecycle state of a transaction row.
type TransactionStatus string

const (
	Draft  TransactionStatus = "DRAFT"
	Posted TransactionStatus = "POSTED"
	Voided TransactionStatus = "VOIDED"
)

// Transaction is the database representation of a journal-log header row.
type Transaction struct {
	TransactionID           string            `db:"transaction_id"`
	TxnType                 string            `db:"txn_type"`
	Reference               string            `db:"reference"`
	TxnDate                 time.Time         `db:"txn_date"`
	Description             string            `db:"description"`
	Status                  TransactionStatus `db:"status"`
	Amount                  decimal.Decimal   `db:"amount"`
	ReversesTransactionID   *string           `db:"reverses_transaction_id"`
	ReversedByTransactionID *string           `db:"reversed_by_transaction_id"`
	StudentID               string            `db:"student_id"`
	EnrollmentID            string            `db:"enrollment_id"`
	DeletedAt               *time.Time        `db:"deleted_at"`
	AuditFields
}
