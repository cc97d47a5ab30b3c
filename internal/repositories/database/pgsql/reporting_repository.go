package pgsql

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tatenda10/alamait-sub008/internal/apperrors"
	"github.com/tatenda10/alamait-sub008/internal/core/domain"
	portsrepo "github.com/tatenda10/alamait-sub008/internal/core/ports/repositories"
)

type PgxReportingRepository struct {
	pool *pgxpool.Pool
}

// newPgxReportingRepository creates a new repository for report
// aggregations. Read-only: every query folds the journal log directly, so
// reports stay correct even when a cache has drifted.
func newPgxReportingRepository(pool *pgxpool.Pool) portsrepo.ReportingRepository {
	return &PgxReportingRepository{pool: pool}
}

// Ensure PgxReportingRepository implements portsrepo.ReportingRepository
var _ portsrepo.ReportingRepository = (*PgxReportingRepository)(nil)

// GetTrialBalanceData returns every account with activity as of the date.
// Net debit activity lands in the debit column, net credit activity in the
// credit column; the two columns total equal when the log is consistent.
func (r *PgxReportingRepository) GetTrialBalanceData(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error) {
	query := `
		SELECT a.account_id, a.code, a.name, a.account_type,
		       COALESCE(SUM(CASE WHEN e.entry_type = 'DEBIT' THEN e.amount ELSE -e.amount END), 0) AS net
		FROM accounts a
		JOIN journal_entries e ON e.account_id = a.account_id AND e.deleted_at IS NULL
		JOIN transactions t ON t.transaction_id = e.transaction_id
		WHERE t.status = 'POSTED' AND t.deleted_at IS NULL AND t.txn_date <= $1
		  AND a.deleted_at IS NULL
		GROUP BY a.account_id, a.code, a.name, a.account_type
		HAVING COALESCE(SUM(CASE WHEN e.entry_type = 'DEBIT' THEN e.amount ELSE -e.amount END), 0) != 0
		ORDER BY a.code;
	`
	rows, err := r.pool.Query(ctx, query, asOf)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query trial balance data", err)
	}
	defer rows.Close()

	result := []domain.TrialBalanceRow{}
	for rows.Next() {
		var row domain.TrialBalanceRow
		var accType string
		var net decimal.Decimal
		if err := rows.Scan(&row.AccountID, &row.AccountCode, &row.AccountName, &accType, &net); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan trial balance row", err)
		}
		row.AccountType = domain.AccountType(accType)
		if net.IsPositive() {
			row.DebitBalance = net
			row.CreditBalance = decimal.Zero
		} else {
			row.DebitBalance = decimal.Zero
			row.CreditBalance = net.Neg()
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating trial balance rows", err)
	}
	return result, nil
}

// netLinesByType aggregates per-account net amounts for one account type,
// with the sign convention chosen by the account type's normal side.
func (r *PgxReportingRepository) netLinesByType(ctx context.Context, accountType domain.AccountType, from, to *time.Time) ([]domain.ReportLine, error) {
	sign := `e.amount`
	negSign := `-e.amount`
	if accountType.NormalBalance() == domain.CreditNormal {
		sign, negSign = negSign, sign
	}

	query := `
		SELECT a.account_id, a.code, a.name,
		       COALESCE(SUM(CASE WHEN e.entry_type = 'DEBIT' THEN ` + sign + ` ELSE ` + negSign + ` END), 0) AS net
		FROM accounts a
		JOIN journal_entries e ON e.account_id = a.account_id AND e.deleted_at IS NULL
		JOIN transactions t ON t.transaction_id = e.transaction_id
		WHERE t.status = 'POSTED' AND t.deleted_at IS NULL
		  AND a.deleted_at IS NULL AND a.account_type = $1
	`
	args := []interface{}{string(accountType)}
	if from != nil {
		args = append(args, *from)
		query += ` AND t.txn_date >= $2`
	}
	if to != nil {
		args = append(args, *to)
		if from != nil {
			query += ` AND t.txn_date <= $3`
		} else {
			query += ` AND t.txn_date <= $2`
		}
	}
	query += `
		GROUP BY a.account_id, a.code, a.name
		ORDER BY a.code;
	`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query report lines for type "+string(accountType), err)
	}
	defer rows.Close()

	lines, err := scanReportLines(rows)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to scan report lines for type "+string(accountType), err)
	}
	return lines, nil
}

func scanReportLines(rows pgx.Rows) ([]domain.ReportLine, error) {
	lines := []domain.ReportLine{}
	for rows.Next() {
		var l domain.ReportLine
		if err := rows.Scan(&l.AccountID, &l.AccountCode, &l.AccountName, &l.NetAmount); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// GetIncomeStatementData aggregates revenue and expense activity over the
// date range, each account netted on its normal side.
func (r *PgxReportingRepository) GetIncomeStatementData(ctx context.Context, from, to time.Time) ([]domain.ReportLine, []domain.ReportLine, error) {
	revenue, err := r.netLinesByType(ctx, domain.Revenue, &from, &to)
	if err != nil {
		return nil, nil, err
	}
	expenses, err := r.netLinesByType(ctx, domain.Expense, &from, &to)
	if err != nil {
		return nil, nil, err
	}
	return revenue, expenses, nil
}

// GetBalanceSheetData aggregates the asset, liability and equity positions
// as of a date, each account netted on its normal side.
func (r *PgxReportingRepository) GetBalanceSheetData(ctx context.Context, asOf time.Time) ([]domain.ReportLine, []domain.ReportLine, []domain.ReportLine, error) {
	assets, err := r.netLinesByType(ctx, domain.Asset, nil, &asOf)
	if err != nil {
		return nil, nil, nil, err
	}
	liabilities, err := r.netLinesByType(ctx, domain.Liability, nil, &asOf)
	if err != nil {
		return nil, nil, nil, err
	}
	equity, err := r.netLinesByType(ctx, domain.Equity, nil, &asOf)
	if err != nil {
		return nil, nil, nil, err
	}
	return assets, liabilities, equity, nil
}
