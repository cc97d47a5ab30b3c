package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tatenda10/alamait-sub008/internal/apperrors"
	portsrepo "github.com/tatenda10/alamait-sub008/internal/core/ports/repositories"
)

type PgxBalanceRepository struct {
	pool *pgxpool.Pool
}

// newPgxBalanceRepository creates a new repository for the balance cache
// and the journal aggregates the materializer reads.
func newPgxBalanceRepository(pool *pgxpool.Pool) portsrepo.BalanceRepository {
	return &PgxBalanceRepository{pool: pool}
}

// Ensure PgxBalanceRepository implements portsrepo.BalanceRepository
var _ portsrepo.BalanceRepository = (*PgxBalanceRepository)(nil)

// GetCachedBalance reads the O(1) balance cache row for an account.
func (r *PgxBalanceRepository) GetCachedBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	query := `SELECT balance FROM current_account_balances WHERE account_id = $1;`

	var balance decimal.Decimal
	if err := r.pool.QueryRow(ctx, query, accountID).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, apperrors.ErrNotFound
		}
		return decimal.Zero, apperrors.NewAppError(500, "failed to read cached balance for account "+accountID, err)
	}
	return balance, nil
}

// EntrySums aggregates the debit and credit totals over non-deleted entries
// of non-deleted posted transactions for the account, optionally bounded by
// transaction date. Plain MVCC read; it never blocks writers.
func (r *PgxBalanceRepository) EntrySums(ctx context.Context, accountID string, asOf *time.Time) (decimal.Decimal, decimal.Decimal, error) {
	query := `
		SELECT
			COALESCE(SUM(e.amount) FILTER (WHERE e.entry_type = 'DEBIT'), 0),
			COALESCE(SUM(e.amount) FILTER (WHERE e.entry_type = 'CREDIT'), 0)
		FROM journal_entries e
		JOIN transactions t ON t.transaction_id = e.transaction_id
		WHERE e.account_id = $1 AND e.deleted_at IS NULL
		  AND t.status = 'POSTED' AND t.deleted_at IS NULL
	`
	args := []interface{}{accountID}
	if asOf != nil {
		query += ` AND t.txn_date <= $2`
		args = append(args, *asOf)
	}
	query += ";"

	var debits, credits decimal.Decimal
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&debits, &credits); err != nil {
		return decimal.Zero, decimal.Zero, apperrors.NewAppError(500, "failed to aggregate entries for account "+accountID, err)
	}
	return debits, credits, nil
}

// OverwriteCachedBalance replaces a cache row with a recomputed value.
// Reconciliation repair path only; normal postings go through SavePosting.
func (r *PgxBalanceRepository) OverwriteCachedBalance(ctx context.Context, accountID string, balance decimal.Decimal, userID string, now time.Time) error {
	query := `
		INSERT INTO current_account_balances (account_id, balance, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $3, $4)
		ON CONFLICT (account_id) DO UPDATE
		SET balance = EXCLUDED.balance,
		    last_updated_at = EXCLUDED.last_updated_at,
		    last_updated_by = EXCLUDED.last_updated_by;
	`
	if _, err := r.pool.Exec(ctx, query, accountID, balance, now, userID); err != nil {
		return apperrors.NewAppError(500, "failed to overwrite cached balance for account "+accountID, err)
	}
	return nil
}

// ListActiveAccountIDs returns every non-deleted account ID, ordered by
// code so reconciliation sweeps are deterministic.
func (r *PgxBalanceRepository) ListActiveAccountIDs(ctx context.Context) ([]string, error) {
	query := `SELECT account_id FROM accounts WHERE deleted_at IS NULL ORDER BY code;`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list account IDs", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan account ID row", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating account ID rows", err)
	}
	return ids, nil
}
