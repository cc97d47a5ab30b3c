package pgsql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tatenda10/alamait-sub008/internal/apperrors"
	"github.com/tatenda10/alamait-sub008/internal/core/domain"
	portsrepo "github.com/tatenda10/alamait-sub008/internal/core/ports/repositories"
	"github.com/tatenda10/alamait-sub008/internal/models"
	"github.com/tatenda10/alamait-sub008/internal/utils/mapping"
)

type PgxPeriodRepository struct {
	BaseRepository
}

// newPgxPeriodRepository creates a new repository for the period ledger.
func newPgxPeriodRepository(pool *pgxpool.Pool) portsrepo.PeriodRepository {
	return &PgxPeriodRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxPeriodRepository implements portsrepo.PeriodRepository
var _ portsrepo.PeriodRepository = (*PgxPeriodRepository)(nil)

const periodColumns = `account_id, period, balance_brought_down, total_debits, total_credits,
		balance_carried_down, transaction_count, created_at, created_by, last_updated_at, last_updated_by`

func scanPeriodBalance(row pgx.Row) (models.PeriodBalance, error) {
	var m models.PeriodBalance
	err := row.Scan(
		&m.AccountID,
		&m.Period,
		&m.BalanceBroughtDown,
		&m.TotalDebits,
		&m.TotalCredits,
		&m.BalanceCarriedDown,
		&m.TransactionCount,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// GetPeriodBalance retrieves one (account, period) row.
func (r *PgxPeriodRepository) GetPeriodBalance(ctx context.Context, accountID, period string) (*domain.PeriodBalance, error) {
	query := `SELECT ` + periodColumns + ` FROM period_balances WHERE account_id = $1 AND period = $2;`

	m, err := scanPeriodBalance(r.Pool.QueryRow(ctx, query, accountID, period))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find period balance for account "+accountID, err)
	}

	domainRow := mapping.ToDomainPeriodBalance(m)
	return &domainRow, nil
}

// ListPeriodBalances returns all period rows for the account in
// chronological order. "YYYY-MM" keys sort chronologically as text.
func (r *PgxPeriodRepository) ListPeriodBalances(ctx context.Context, accountID string) ([]domain.PeriodBalance, error) {
	query := `SELECT ` + periodColumns + ` FROM period_balances WHERE account_id = $1 ORDER BY period;`

	rows, err := r.Pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list period balances for account "+accountID, err)
	}
	defer rows.Close()

	balances := []domain.PeriodBalance{}
	for rows.Next() {
		m, err := scanPeriodBalance(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan period balance row for account "+accountID, err)
		}
		balances = append(balances, mapping.ToDomainPeriodBalance(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating period balance rows for account "+accountID, err)
	}
	return balances, nil
}

// ReplacePeriodBalances swaps the account's period rows for the given set
// in one database transaction. Rebuild path only.
func (r *PgxPeriodRepository) ReplacePeriodBalances(ctx context.Context, accountID string, rows []domain.PeriodBalance) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `DELETE FROM period_balances WHERE account_id = $1;`, accountID); err != nil {
		return apperrors.NewAppError(500, "failed to clear period balances for account "+accountID, err)
	}

	insertQuery := `
		INSERT INTO period_balances (` + periodColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(insertQuery,
			row.AccountID,
			row.Period,
			row.BalanceBroughtDown,
			row.TotalDebits,
			row.TotalCredits,
			row.BalanceCarriedDown,
			row.TransactionCount,
			row.CreatedAt,
			row.CreatedBy,
			row.LastUpdatedAt,
			row.LastUpdatedBy,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert rebuilt period balances for account "+accountID, err)
	}

	return r.Commit(ctx, tx)
}

// PeriodEntrySums buckets the account's journal activity by month, in
// chronological order, straight from the journal log.
func (r *PgxPeriodRepository) PeriodEntrySums(ctx context.Context, accountID string) ([]portsrepo.PeriodActivity, error) {
	query := `
		SELECT to_char(t.txn_date, 'YYYY-MM') AS period,
		       COALESCE(SUM(e.amount) FILTER (WHERE e.entry_type = 'DEBIT'), 0),
		       COALESCE(SUM(e.amount) FILTER (WHERE e.entry_type = 'CREDIT'), 0),
		       COUNT(DISTINCT t.transaction_id)
		FROM journal_entries e
		JOIN transactions t ON t.transaction_id = e.transaction_id
		WHERE e.account_id = $1 AND e.deleted_at IS NULL
		  AND t.status = 'POSTED' AND t.deleted_at IS NULL
		GROUP BY period
		ORDER BY period;
	`
	rows, err := r.Pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to bucket journal activity for account "+accountID, err)
	}
	defer rows.Close()

	activity := []portsrepo.PeriodActivity{}
	for rows.Next() {
		var a portsrepo.PeriodActivity
		if err := rows.Scan(&a.Period, &a.Debits, &a.Credits, &a.TxnCount); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan period activity row for account "+accountID, err)
		}
		activity = append(activity, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating period activity rows for account "+accountID, err)
	}
	return activity, nil
}
