package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tatenda10/alamait-sub008/internal/apperrors"
	"github.com/tatenda10/alamait-sub008/internal/core/domain"
	portsrepo "github.com/tatenda10/alamait-sub008/internal/core/ports/repositories"
)

type PgxReconciliationRepository struct {
	BaseRepository
}

// newPgxReconciliationRepository creates a new repository for
// reconciliation runs and the quarantine path.
func newPgxReconciliationRepository(pool *pgxpool.Pool) portsrepo.ReconciliationRepository {
	return &PgxReconciliationRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxReconciliationRepository implements portsrepo.ReconciliationRepository
var _ portsrepo.ReconciliationRepository = (*PgxReconciliationRepository)(nil)

// FindDuplicateTransactions groups non-deleted posted transactions by
// (reference, amount, calendar date) and returns groups with more than one
// member, oldest first within each group.
func (r *PgxReconciliationRepository) FindDuplicateTransactions(ctx context.Context) ([]domain.DuplicateGroup, error) {
	query := `
		SELECT reference, amount, date_trunc('day', txn_date) AS txn_day,
		       array_agg(transaction_id ORDER BY created_at) AS transaction_ids
		FROM transactions
		WHERE status = 'POSTED' AND deleted_at IS NULL
		GROUP BY reference, amount, txn_day
		HAVING COUNT(*) > 1
		ORDER BY txn_day, reference;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query duplicate transactions", err)
	}
	defer rows.Close()

	groups := []domain.DuplicateGroup{}
	for rows.Next() {
		var g domain.DuplicateGroup
		if err := rows.Scan(&g.Reference, &g.Amount, &g.TxnDate, &g.TransactionIDs); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan duplicate group row", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating duplicate group rows", err)
	}
	return groups, nil
}

// QuarantineTransaction soft-deletes the transaction header and all of its
// entries as one unit, in one database transaction, and returns the IDs of
// the accounts the entries touched. An entry is never deleted alone.
func (r *PgxReconciliationRepository) QuarantineTransaction(ctx context.Context, transactionID, userID string, now time.Time) ([]string, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	headerQuery := `
		UPDATE transactions
		SET deleted_at = $2,
		    status = 'VOIDED',
		    last_updated_at = $2,
		    last_updated_by = $3
		WHERE transaction_id = $1 AND deleted_at IS NULL;
	`
	cmdTag, err := tx.Exec(ctx, headerQuery, transactionID, now, userID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to quarantine transaction "+transactionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return nil, apperrors.NewNotFoundError("transaction " + transactionID + " not found or already quarantined")
	}

	entryQuery := `
		UPDATE journal_entries
		SET deleted_at = $2,
		    last_updated_at = $2,
		    last_updated_by = $3
		WHERE transaction_id = $1 AND deleted_at IS NULL
		RETURNING account_id;
	`
	rows, err := tx.Query(ctx, entryQuery, transactionID, now, userID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to quarantine entries for transaction "+transactionID, err)
	}

	seen := map[string]struct{}{}
	affected := []string{}
	for rows.Next() {
		var accountID string
		if err := rows.Scan(&accountID); err != nil {
			rows.Close()
			return nil, apperrors.NewAppError(500, "failed to scan quarantined entry row", err)
		}
		if _, ok := seen[accountID]; !ok {
			seen[accountID] = struct{}{}
			affected = append(affected, accountID)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating quarantined entry rows", err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return affected, nil
}

// SaveReport persists the durable artifact of one reconciliation run. The
// drift detail lists are stored as JSONB.
func (r *PgxReconciliationRepository) SaveReport(ctx context.Context, report domain.ReconciliationReport) error {
	drifted, err := json.Marshal(report.Drifted)
	if err != nil {
		return apperrors.NewAppError(500, "failed to encode drift records for run "+report.RunID, err)
	}
	studentDrifted, err := json.Marshal(report.StudentDrifted)
	if err != nil {
		return apperrors.NewAppError(500, "failed to encode student drift records for run "+report.RunID, err)
	}
	chainRepairs, err := json.Marshal(report.ChainRepairs)
	if err != nil {
		return apperrors.NewAppError(500, "failed to encode chain repairs for run "+report.RunID, err)
	}

	query := `
		INSERT INTO reconciliation_runs (run_id, scope, started_at, finished_at, status, accounts_checked,
			drifted, student_drifted, chain_repairs)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err = r.Pool.Exec(ctx, query,
		report.RunID,
		report.Scope,
		report.StartedAt,
		report.FinishedAt,
		string(report.Status),
		report.AccountsChecked,
		drifted,
		studentDrifted,
		chainRepairs,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to save reconciliation run "+report.RunID, err)
	}
	return nil
}

const reconciliationRunColumns = `run_id, scope, started_at, finished_at, status, accounts_checked,
		drifted, student_drifted, chain_repairs`

func scanReconciliationRun(row pgx.Row) (domain.ReconciliationReport, error) {
	var report domain.ReconciliationReport
	var status string
	var drifted, studentDrifted, chainRepairs []byte

	err := row.Scan(
		&report.RunID,
		&report.Scope,
		&report.StartedAt,
		&report.FinishedAt,
		&status,
		&report.AccountsChecked,
		&drifted,
		&studentDrifted,
		&chainRepairs,
	)
	if err != nil {
		return report, err
	}
	report.Status = domain.RunStatus(status)

	if err := json.Unmarshal(drifted, &report.Drifted); err != nil {
		return report, err
	}
	if len(studentDrifted) > 0 {
		if err := json.Unmarshal(studentDrifted, &report.StudentDrifted); err != nil {
			return report, err
		}
	}
	if len(chainRepairs) > 0 {
		if err := json.Unmarshal(chainRepairs, &report.ChainRepairs); err != nil {
			return report, err
		}
	}
	return report, nil
}

// ListReports returns the most recent reconciliation runs, newest first.
func (r *PgxReconciliationRepository) ListReports(ctx context.Context, limit int) ([]domain.ReconciliationReport, error) {
	query := `
		SELECT ` + reconciliationRunColumns + `
		FROM reconciliation_runs
		ORDER BY started_at DESC
		LIMIT $1;
	`
	rows, err := r.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list reconciliation runs", err)
	}
	defer rows.Close()

	reports := []domain.ReconciliationReport{}
	for rows.Next() {
		report, err := scanReconciliationRun(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan reconciliation run row", err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating reconciliation run rows", err)
	}
	return reports, nil
}

// GetReport retrieves one reconciliation run by ID.
func (r *PgxReconciliationRepository) GetReport(ctx context.Context, runID string) (*domain.ReconciliationReport, error) {
	query := `SELECT ` + reconciliationRunColumns + ` FROM reconciliation_runs WHERE run_id = $1;`

	report, err := scanReconciliationRun(r.Pool.QueryRow(ctx, query, runID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find reconciliation run "+runID, err)
	}
	return &report, nil
}
