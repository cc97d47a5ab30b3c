package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus indicates the lifecycle state of a transaction.
type TransactionStatus string

const (
	Draft  TransactionStatus = "DRAFT"
	Posted TransactionStatus = "POSTED"
	Voided TransactionStatus = "VOIDED"
)

// TransactionType is the business event tag carried by a transaction.
type TransactionType string

const (
	TxnCharge         TransactionType = "CHARGE"
	TxnPayment        TransactionType = "PAYMENT"
	TxnAdjustment     TransactionType = "ADJUSTMENT"
	TxnReversal       TransactionType = "REVERSAL"
	TxnOpeningBalance TransactionType = "OPENING_BALANCE"
)

// Transaction is one balanced financial event in the journal log. It owns a
// non-empty set of journal entries whose debit and credit sides sum to the
// same amount. Once posted it is immutable; corrections happen via a new
// reversing or adjustment transaction, never by editing entries in place.
type Transaction struct {
	TransactionID string            `json:"transactionID"` // Primary key (UUID)
	TxnType       TransactionType   `json:"txnType"`
	Reference     string            `json:"reference"` // External/idempotency key
	TxnDate       time.Time         `json:"txnDate"`
	Description   string            `json:"description"`
	Status        TransactionStatus `json:"status"`
	Amount        decimal.Decimal   `json:"amount"` // Total of the debit side

	// Reversal links. ReversesTransactionID is set on the reversing
	// transaction; ReversedByTransactionID is set on the original.
	ReversesTransactionID   *string `json:"reversesTransactionID,omitempty"`
	ReversedByTransactionID *string `json:"reversedByTransactionID,omitempty"`

	// Sub-ledger scope for student charges/payments; empty for plain
	// general-ledger transactions.
	StudentID    string `json:"studentID,omitempty"`
	EnrollmentID string `json:"enrollmentID,omitempty"`

	DeletedAt *time.Time `json:"deletedAt,omitempty"`
	AuditFields

	Entries []JournalEntry `json:"entries,omitempty"` // Usually loaded separately
}

// IsDeleted reports whether the transaction has been quarantined.
func (t *Transaction) IsDeleted() bool {
	return t.DeletedAt != nil
}
