package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tatenda10/alamait-sub008/internal/apperrors"
	"github.com/tatenda10/alamait-sub008/internal/core/domain"
	portsrepo "github.com/tatenda10/alamait-sub008/internal/core/ports/repositories"
	"github.com/tatenda10/alamait-sub008/internal/models"
	"github.com/tatenda10/alamait-sub008/internal/utils/mapping"
)

type PgxStudentBalanceRepository struct {
	pool *pgxpool.Pool
}

// newPgxStudentBalanceRepository creates a new repository for the student
// sub-ledger cache.
func newPgxStudentBalanceRepository(pool *pgxpool.Pool) portsrepo.StudentBalanceRepository {
	return &PgxStudentBalanceRepository{pool: pool}
}

// Ensure PgxStudentBalanceRepository implements portsrepo.StudentBalanceRepository
var _ portsrepo.StudentBalanceRepository = (*PgxStudentBalanceRepository)(nil)

const studentBalanceColumns = `student_id, enrollment_id, balance, created_at, created_by, last_updated_at, last_updated_by`

func scanStudentBalance(row pgx.Row) (models.StudentBalance, error) {
	var m models.StudentBalance
	err := row.Scan(
		&m.StudentID,
		&m.EnrollmentID,
		&m.Balance,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// GetStudentBalance retrieves one student sub-ledger row.
func (r *PgxStudentBalanceRepository) GetStudentBalance(ctx context.Context, studentID, enrollmentID string) (*domain.StudentBalance, error) {
	query := `SELECT ` + studentBalanceColumns + ` FROM student_account_balances WHERE student_id = $1 AND enrollment_id = $2;`

	m, err := scanStudentBalance(r.pool.QueryRow(ctx, query, studentID, enrollmentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find balance for student "+studentID, err)
	}

	domainRow := mapping.ToDomainStudentBalance(m)
	return &domainRow, nil
}

// ListStudentBalances returns every student sub-ledger row, largest owed
// balance first.
func (r *PgxStudentBalanceRepository) ListStudentBalances(ctx context.Context) ([]domain.StudentBalance, error) {
	query := `SELECT ` + studentBalanceColumns + ` FROM student_account_balances ORDER BY balance DESC, student_id;`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list student balances", err)
	}
	defer rows.Close()

	balances := []domain.StudentBalance{}
	for rows.Next() {
		m, err := scanStudentBalance(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan student balance row", err)
		}
		balances = append(balances, mapping.ToDomainStudentBalance(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating student balance rows", err)
	}
	return balances, nil
}

// StudentEntrySums aggregates the control account's debit and credit totals
// over the student's non-deleted posted transactions. This is the ground
// truth the cached sub-ledger balance must agree with.
func (r *PgxStudentBalanceRepository) StudentEntrySums(ctx context.Context, studentID, enrollmentID, controlAccountID string) (decimal.Decimal, decimal.Decimal, error) {
	query := `
		SELECT
			COALESCE(SUM(e.amount) FILTER (WHERE e.entry_type = 'DEBIT'), 0),
			COALESCE(SUM(e.amount) FILTER (WHERE e.entry_type = 'CREDIT'), 0)
		FROM journal_entries e
		JOIN transactions t ON t.transaction_id = e.transaction_id
		WHERE e.account_id = $3 AND e.deleted_at IS NULL
		  AND t.student_id = $1 AND t.enrollment_id = $2
		  AND t.status = 'POSTED' AND t.deleted_at IS NULL;
	`
	var debits, credits decimal.Decimal
	if err := r.pool.QueryRow(ctx, query, studentID, enrollmentID, controlAccountID).Scan(&debits, &credits); err != nil {
		return decimal.Zero, decimal.Zero, apperrors.NewAppError(500, "failed to aggregate entries for student "+studentID, err)
	}
	return debits, credits, nil
}

// OverwriteStudentBalance replaces a sub-ledger row with a recomputed
// value. Reconciliation repair path only.
func (r *PgxStudentBalanceRepository) OverwriteStudentBalance(ctx context.Context, studentID, enrollmentID string, balance decimal.Decimal, userID string, now time.Time) error {
	query := `
		INSERT INTO student_account_balances (student_id, enrollment_id, balance, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $4, $5)
		ON CONFLICT (student_id, enrollment_id) DO UPDATE
		SET balance = EXCLUDED.balance,
		    last_updated_at = EXCLUDED.last_updated_at,
		    last_updated_by = EXCLUDED.last_updated_by;
	`
	if _, err := r.pool.Exec(ctx, query, studentID, enrollmentID, balance, now, userID); err != nil {
		return apperrors.NewAppError(500, "failed to overwrite balance for student "+studentID, err)
	}
	return nil
}
