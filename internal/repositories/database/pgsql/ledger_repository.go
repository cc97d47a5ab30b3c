package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tatenda10/alamait-sub008/internal/apperrors"
	"github.com/tatenda10/alamait-sub008/internal/core/domain"
	portsrepo "github.com/tatenda10/alamait-sub008/internal/core/ports/repositories"
	"github.com/tatenda10/alamait-sub008/internal/models"
	"github.com/tatenda10/alamait-sub008/internal/utils/accounting"
	"github.com/tatenda10/alamait-sub008/internal/utils/mapping"
	"github.com/tatenda10/alamait-sub008/internal/utils/pagination"
)

type PgxLedgerRepository struct {
	BaseRepository
}

// newPgxLedgerRepository creates a new repository for the journal log.
func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepository {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxLedgerRepository implements portsrepo.LedgerRepository
var _ portsrepo.LedgerRepository = (*PgxLedgerRepository)(nil)

const transactionColumns = `transaction_id, txn_type, reference, txn_date, description, status, amount,
		reverses_transaction_id, reversed_by_transaction_id, student_id, enrollment_id, deleted_at,
		created_at, created_by, last_updated_at, last_updated_by`

// SavePosting atomically writes one balanced transaction: the header, all
// entry lines with running balances, the balance cache deltas, the period
// totals, and the optional student sub-ledger delta. Everything happens in
// a single database transaction with the touched cache rows locked, so a
// committed posting is always fully reflected in every derived store.
func (r *PgxLedgerRepository) SavePosting(ctx context.Context, txn domain.Transaction, entries []domain.JournalEntry,
	balanceChanges map[string]decimal.Decimal, periodDeltas []portsrepo.PeriodDelta, studentDelta *portsrepo.StudentDelta) error {

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) // No-op once committed

	now := txn.CreatedAt
	userID := txn.CreatedBy

	// 1. Insert the transaction header.
	modelTxn := mapping.ToModelTransaction(txn)
	headerQuery := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err = tx.Exec(ctx, headerQuery,
		modelTxn.TransactionID,
		modelTxn.TxnType,
		modelTxn.Reference,
		modelTxn.TxnDate,
		modelTxn.Description,
		modelTxn.Status,
		modelTxn.Amount,
		modelTxn.ReversesTransactionID,
		modelTxn.ReversedByTransactionID,
		modelTxn.StudentID,
		modelTxn.EnrollmentID,
		modelTxn.DeletedAt,
		modelTxn.CreatedAt,
		modelTxn.CreatedBy,
		modelTxn.LastUpdatedAt,
		modelTxn.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert transaction "+modelTxn.TransactionID, err)
	}

	// 2. Lock the balance cache rows in a deterministic order. Rows are
	// created lazily on an account's first posting.
	accountIDs := make([]string, 0, len(balanceChanges))
	for accID := range balanceChanges {
		accountIDs = append(accountIDs, accID)
	}
	sort.Strings(accountIDs)

	ensureQuery := `
		INSERT INTO current_account_balances (account_id, balance, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, 0, $2, $3, $2, $3)
		ON CONFLICT (account_id) DO NOTHING;
	`
	for _, accID := range accountIDs {
		if _, err := tx.Exec(ctx, ensureQuery, accID, now, userID); err != nil {
			return apperrors.NewAppError(500, "failed to ensure balance row for account "+accID, err)
		}
	}

	lockQuery := `
		SELECT b.account_id, b.balance, a.account_type
		FROM current_account_balances b
		JOIN accounts a ON a.account_id = b.account_id
		WHERE b.account_id = ANY($1)
		ORDER BY b.account_id
		FOR UPDATE OF b;
	`
	rows, err := tx.Query(ctx, lockQuery, accountIDs)
	if err != nil {
		return apperrors.NewAppError(500, "failed to lock balance rows", err)
	}
	balancesBefore := make(map[string]decimal.Decimal, len(accountIDs))
	accountTypes := make(map[string]domain.AccountType, len(accountIDs))
	for rows.Next() {
		var accID string
		var balance decimal.Decimal
		var accType string
		if err := rows.Scan(&accID, &balance, &accType); err != nil {
			rows.Close()
			return apperrors.NewAppError(500, "failed to scan locked balance row", err)
		}
		balancesBefore[accID] = balance
		accountTypes[accID] = domain.AccountType(accType)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return apperrors.NewAppError(500, "error iterating locked balance rows", err)
	}
	if len(balancesBefore) != len(accountIDs) {
		return apperrors.NewAppError(500, "internal error: some balance rows could not be locked", nil)
	}

	// 3. Apply the net signed deltas to the cache.
	updateQuery := `
		UPDATE current_account_balances
		SET balance = balance + $2,
		    last_updated_at = $3,
		    last_updated_by = $4
		WHERE account_id = $1;
	`
	batch := &pgx.Batch{}
	for _, accID := range accountIDs {
		batch.Queue(updateQuery, accID, balanceChanges[accID], now, userID)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return apperrors.NewAppError(500, "failed to apply balance deltas", err)
	}

	// 4. Insert the entry lines, each carrying the account's running balance
	// after that line. Lines are applied in the order received.
	entryQuery := `
		INSERT INTO journal_entries (entry_id, transaction_id, account_id, entry_type, amount, description,
			running_balance, deleted_at, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	running := make(map[string]decimal.Decimal, len(accountIDs))
	for accID, bal := range balancesBefore {
		running[accID] = bal
	}

	entryBatch := &pgx.Batch{}
	for _, entry := range entries {
		modelEntry := mapping.ToModelJournalEntry(entry)

		signed, err := accounting.SignedAmount(entry.EntryType, accountTypes[entry.AccountID], entry.Amount)
		if err != nil {
			return apperrors.NewAppError(500, "failed to sign amount for entry "+entry.EntryID, err)
		}
		newRunning := running[entry.AccountID].Add(signed)
		running[entry.AccountID] = newRunning
		modelEntry.RunningBalance = newRunning

		entryBatch.Queue(entryQuery,
			modelEntry.EntryID,
			modelEntry.TransactionID,
			modelEntry.AccountID,
			modelEntry.EntryType,
			modelEntry.Amount,
			modelEntry.Description,
			modelEntry.RunningBalance,
			modelEntry.DeletedAt,
			now,
			userID,
			now,
			userID,
		)
	}
	if err := tx.SendBatch(ctx, entryBatch).Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert journal entries for transaction "+modelTxn.TransactionID, err)
	}

	// 5. Fold the posting into the period ledger.
	for _, pd := range periodDeltas {
		if err := applyPeriodDelta(ctx, tx, pd, userID, now); err != nil {
			return err
		}
	}

	// 6. Move the student sub-ledger balance, if this posting belongs to one.
	if studentDelta != nil {
		studentQuery := `
			INSERT INTO student_account_balances (student_id, enrollment_id, balance, created_at, created_by, last_updated_at, last_updated_by)
			VALUES ($1, $2, $3, $4, $5, $4, $5)
			ON CONFLICT (student_id, enrollment_id) DO UPDATE
			SET balance = student_account_balances.balance + EXCLUDED.balance,
			    last_updated_at = EXCLUDED.last_updated_at,
			    last_updated_by = EXCLUDED.last_updated_by;
		`
		if _, err := tx.Exec(ctx, studentQuery, studentDelta.StudentID, studentDelta.EnrollmentID, studentDelta.Delta, now, userID); err != nil {
			return apperrors.NewAppError(500, "failed to apply student balance delta for "+studentDelta.StudentID, err)
		}
	}

	return r.Commit(ctx, tx)
}

// applyPeriodDelta upserts one (account, period) row, then shifts every
// later row's brought-down and carried-down balance by the same signed
// delta, so a posting dated into an earlier month keeps CD(n) == BD(n+1)
// intact all the way to the present. A new period opens with the prior
// period's carried-down balance brought down.
func applyPeriodDelta(ctx context.Context, tx pgx.Tx, pd portsrepo.PeriodDelta, userID string, now time.Time) error {
	signed := pd.Debits.Sub(pd.Credits)
	if pd.Normal == domain.CreditNormal {
		signed = signed.Neg()
	}

	updateQuery := `
		UPDATE period_balances
		SET total_debits = total_debits + $3,
		    total_credits = total_credits + $4,
		    balance_carried_down = balance_carried_down + $5,
		    transaction_count = transaction_count + $6,
		    last_updated_at = $7,
		    last_updated_by = $8
		WHERE account_id = $1 AND period = $2;
	`
	cmdTag, err := tx.Exec(ctx, updateQuery, pd.AccountID, pd.Period, pd.Debits, pd.Credits, signed, pd.TxnCount, now, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update period balance for account "+pd.AccountID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		// First activity in this period: bring down the latest earlier
		// period's carried-down balance.
		var broughtDown decimal.Decimal
		bdQuery := `
			SELECT COALESCE(
				(SELECT balance_carried_down FROM period_balances
				 WHERE account_id = $1 AND period < $2
				 ORDER BY period DESC LIMIT 1),
				0
			);
		`
		if err := tx.QueryRow(ctx, bdQuery, pd.AccountID, pd.Period).Scan(&broughtDown); err != nil {
			return apperrors.NewAppError(500, "failed to read prior period balance for account "+pd.AccountID, err)
		}

		insertQuery := `
			INSERT INTO period_balances (account_id, period, balance_brought_down, total_debits, total_credits,
				balance_carried_down, transaction_count, created_at, created_by, last_updated_at, last_updated_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $8, $9);
		`
		carriedDown := broughtDown.Add(signed)
		if _, err := tx.Exec(ctx, insertQuery, pd.AccountID, pd.Period, broughtDown, pd.Debits, pd.Credits, carriedDown, pd.TxnCount, now, userID); err != nil {
			return apperrors.NewAppError(500, "failed to insert period balance for account "+pd.AccountID, err)
		}
	}

	// Re-chain any later rows. Period keys compare lexicographically the
	// same as chronologically.
	rechainQuery := `
		UPDATE period_balances
		SET balance_brought_down = balance_brought_down + $3,
		    balance_carried_down = balance_carried_down + $3,
		    last_updated_at = $4,
		    last_updated_by = $5
		WHERE account_id = $1 AND period > $2;
	`
	if _, err := tx.Exec(ctx, rechainQuery, pd.AccountID, pd.Period, signed, now, userID); err != nil {
		return apperrors.NewAppError(500, "failed to re-chain later period balances for account "+pd.AccountID, err)
	}
	return nil
}

// FindTransactionByID retrieves a transaction header by its ID.
func (r *PgxLedgerRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`

	var m models.Transaction
	err := r.Pool.QueryRow(ctx, query, transactionID).Scan(
		&m.TransactionID,
		&m.TxnType,
		&m.Reference,
		&m.TxnDate,
		&m.Description,
		&m.Status,
		&m.Amount,
		&m.ReversesTransactionID,
		&m.ReversedByTransactionID,
		&m.StudentID,
		&m.EnrollmentID,
		&m.DeletedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find transaction by ID "+transactionID, err)
	}

	domainTxn := mapping.ToDomainTransaction(m)
	return &domainTxn, nil
}

// FindEntriesByTransactionID retrieves the non-deleted entry lines of a
// transaction in insertion order.
func (r *PgxLedgerRepository) FindEntriesByTransactionID(ctx context.Context, transactionID string) ([]domain.JournalEntry, error) {
	query := `
		SELECT entry_id, transaction_id, account_id, entry_type, amount, description,
		       running_balance, deleted_at, created_at, created_by, last_updated_at, last_updated_by
		FROM journal_entries
		WHERE transaction_id = $1 AND deleted_at IS NULL
		ORDER BY created_at, entry_id;
	`
	rows, err := r.Pool.Query(ctx, query, transactionID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query entries for transaction "+transactionID, err)
	}
	defer rows.Close()

	entries := []models.JournalEntry{}
	for rows.Next() {
		var e models.JournalEntry
		if err := rows.Scan(
			&e.EntryID,
			&e.TransactionID,
			&e.AccountID,
			&e.EntryType,
			&e.Amount,
			&e.Description,
			&e.RunningBalance,
			&e.DeletedAt,
			&e.CreatedAt,
			&e.CreatedBy,
			&e.LastUpdatedAt,
			&e.LastUpdatedBy,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan entry row for transaction "+transactionID, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating entry rows for transaction "+transactionID, err)
	}
	return mapping.ToDomainJournalEntrySlice(entries), nil
}

// ReferenceExists reports whether a non-voided, non-deleted transaction of
// the given type already carries the reference.
func (r *PgxLedgerRepository) ReferenceExists(ctx context.Context, txnType domain.TransactionType, reference string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM transactions
			WHERE txn_type = $1 AND reference = $2 AND status != 'VOIDED' AND deleted_at IS NULL
		);
	`
	var exists bool
	if err := r.Pool.QueryRow(ctx, query, string(txnType), reference).Scan(&exists); err != nil {
		return false, apperrors.NewAppError(500, "failed to check reference "+reference, err)
	}
	return exists, nil
}

// MarkReversed back-links the original transaction to its reversal. The
// original stays POSTED; its entries remain part of every balance.
func (r *PgxLedgerRepository) MarkReversed(ctx context.Context, originalID, reversingID, userID string, at time.Time) error {
	query := `
		UPDATE transactions
		SET reversed_by_transaction_id = $2,
		    last_updated_at = $3,
		    last_updated_by = $4
		WHERE transaction_id = $1 AND reversed_by_transaction_id IS NULL;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, originalID, reversingID, at, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to mark transaction "+originalID+" reversed", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: transaction %s is already reversed or missing", apperrors.ErrConflict, originalID)
	}
	return nil
}

// ListEntriesByAccount retrieves a paginated account statement, newest
// first, using token-based pagination over (txn_date, created_at).
func (r *PgxLedgerRepository) ListEntriesByAccount(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra row to determine whether there is a next page.
	fetchLimit := limit + 1

	baseQuery := `
		SELECT e.entry_id, e.transaction_id, e.account_id, e.entry_type, e.amount, e.description,
		       e.running_balance, e.deleted_at, e.created_at, e.created_by, e.last_updated_at, e.last_updated_by,
		       t.txn_date, t.description
		FROM journal_entries e
		JOIN transactions t ON t.transaction_id = e.transaction_id
		WHERE e.account_id = $1 AND e.deleted_at IS NULL
		  AND t.status = 'POSTED' AND t.deleted_at IS NULL
	`
	orderByClause := `ORDER BY t.txn_date DESC, e.created_at DESC`

	args := []interface{}{accountID}
	query := baseQuery

	if nextToken != nil && *nextToken != "" {
		lastTxnDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		query += ` AND (t.txn_date, e.created_at) < ($2, $3)`
		args = append(args, lastTxnDate, lastCreatedAt)
	}
	query += " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query entries for account "+accountID, err)
	}
	defer rows.Close()

	entries := make([]models.JournalEntry, 0, fetchLimit)
	for rows.Next() {
		var e models.JournalEntry
		if err := rows.Scan(
			&e.EntryID,
			&e.TransactionID,
			&e.AccountID,
			&e.EntryType,
			&e.Amount,
			&e.Description,
			&e.RunningBalance,
			&e.DeletedAt,
			&e.CreatedAt,
			&e.CreatedBy,
			&e.LastUpdatedAt,
			&e.LastUpdatedBy,
			&e.TxnDate,
			&e.TxnDescription,
		); err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan entry row for account "+accountID, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating entry rows for account "+accountID, err)
	}

	var nextTokenVal *string
	if len(entries) > limit {
		last := entries[limit-1]
		token := pagination.EncodeToken(last.TxnDate, last.CreatedAt)
		nextTokenVal = &token
		entries = entries[:limit]
	}

	return mapping.ToDomainJournalEntrySlice(entries), nextTokenVal, nil
}
