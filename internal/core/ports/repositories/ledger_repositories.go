package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tatenda10/alamait-sub008/internal/core/domain"
)

// PeriodDelta is the contribution of one posting to one (account, period)
// row of the period ledger.
type PeriodDelta struct {
	AccountID string
	Period    string // "YYYY-MM"
	Debits    decimal.Decimal
	Credits   decimal.Decimal
	TxnCount  int
	Normal    domain.NormalBalance
}

// StudentDelta is the contribution of one posting to a student sub-ledger
// balance. Positive delta increases what the student owes.
type StudentDelta struct {
	StudentID    string
	EnrollmentID string
	Delta        decimal.Decimal
}

// LedgerRepository is the journal-log writer. SavePosting is the single
// authoring path for all balance movement in the system.
type LedgerRepository interface {
	// SavePosting atomically inserts the transaction header and all of its
	// entries, applies the signed balance deltas to the balance cache rows
	// (locked for update), upserts the period totals, and applies the
	// optional student sub-ledger delta. Any failure rolls the whole unit
	// back; no partial writes are observable.
	SavePosting(ctx context.Context, txn domain.Transaction, entries []domain.JournalEntry,
		balanceChanges map[string]decimal.Decimal, periodDeltas []PeriodDelta, studentDelta *StudentDelta) error

	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)
	FindEntriesByTransactionID(ctx context.Context, transactionID string) ([]domain.JournalEntry, error)

	// ReferenceExists reports whether a non-voided, non-deleted transaction
	// of the given type already carries the reference.
	ReferenceExists(ctx context.Context, txnType domain.TransactionType, reference string) (bool, error)

	// MarkReversed links the original transaction to its reversal.
	MarkReversed(ctx context.Context, originalID, reversingID, userID string, at time.Time) error

	// ListEntriesByAccount pages through an account's statement, newest
	// first, using an opaque cursor token.
	ListEntriesByAccount(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.JournalEntry, *string, error)
}

// BalanceRepository serves the balance cache and the journal aggregates the
// materializer folds over.
type BalanceRepository interface {
	GetCachedBalance(ctx context.Context, accountID string) (decimal.Decimal, error)

	// EntrySums returns the debit and credit totals over non-deleted entries
	// of non-deleted posted transactions for the account, optionally bounded
	// by date. Read-only; must not block writers.
	EntrySums(ctx context.Context, accountID string, asOf *time.Time) (debits, credits decimal.Decimal, err error)

	// OverwriteCachedBalance replaces a cache row with a recomputed value.
	// Reconciliation repair path only.
	OverwriteCachedBalance(ctx context.Context, accountID string, balance decimal.Decimal, userID string, now time.Time) error

	// ListActiveAccountIDs returns all non-deleted account IDs, for
	// reconciliation sweeps.
	ListActiveAccountIDs(ctx context.Context) ([]string, error)
}

// PeriodActivity is one month bucket of journal activity for an account.
type PeriodActivity struct {
	Period   string
	Debits   decimal.Decimal
	Credits  decimal.Decimal
	TxnCount int
}

// PeriodRepository persists the per-account, per-month BD/CD ledger.
type PeriodRepository interface {
	GetPeriodBalance(ctx context.Context, accountID, period string) (*domain.PeriodBalance, error)

	// ListPeriodBalances returns all period rows for the account in
	// chronological order.
	ListPeriodBalances(ctx context.Context, accountID string) ([]domain.PeriodBalance, error)

	// ReplacePeriodBalances swaps the account's period rows for the given
	// set in one transaction. Rebuild path only.
	ReplacePeriodBalances(ctx context.Context, accountID string, rows []domain.PeriodBalance) error

	// PeriodEntrySums buckets the account's journal activity by month, in
	// chronological order, from the journal log.
	PeriodEntrySums(ctx context.Context, accountID string) ([]PeriodActivity, error)
}

// StudentBalanceRepository serves the student sub-ledger cache.
type StudentBalanceRepository interface {
	GetStudentBalance(ctx context.Context, studentID, enrollmentID string) (*domain.StudentBalance, error)
	ListStudentBalances(ctx context.Context) ([]domain.StudentBalance, error)

	// StudentEntrySums returns debit and credit totals over the control
	// account's entries belonging to the student's non-deleted posted
	// transactions. Ground truth for the sub-ledger balance.
	StudentEntrySums(ctx context.Context, studentID, enrollmentID, controlAccountID string) (debits, credits decimal.Decimal, err error)

	// OverwriteStudentBalance replaces a sub-ledger row with a recomputed
	// value. Reconciliation repair path only.
	OverwriteStudentBalance(ctx context.Context, studentID, enrollmentID string, balance decimal.Decimal, userID string, now time.Time) error
}

// ReconciliationRepository persists reconciliation runs and performs the
// sanctioned duplicate-removal path.
type ReconciliationRepository interface {
	// FindDuplicateTransactions groups non-deleted posted transactions by
	// (reference, amount, date) and returns groups with more than one member.
	FindDuplicateTransactions(ctx context.Context) ([]domain.DuplicateGroup, error)

	// QuarantineTransaction soft-deletes the transaction and all of its
	// entries as one unit, in one database transaction, and returns the IDs
	// of the accounts the entries touched. It never deletes an entry alone.
	QuarantineTransaction(ctx context.Context, transactionID, userID string, now time.Time) (affectedAccountIDs []string, err error)

	SaveReport(ctx context.Context, report domain.ReconciliationReport) error
	ListReports(ctx context.Context, limit int) ([]domain.ReconciliationReport, error)
	GetReport(ctx context.Context, runID string) (*domain.ReconciliationReport, error)
}
