package repositories

import (
	"context"
	"time"

	"github.com/tatenda10/alamait-sub008/internal/core/domain"
)

// ReportingRepository serves read-only report aggregations straight from
// the journal log. It must never write.
type ReportingRepository interface {
	GetTrialBalanceData(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error)
	GetIncomeStatementData(ctx context.Context, from, to time.Time) (revenue, expenses []domain.ReportLine, err error)
	GetBalanceSheetData(ctx context.Context, asOf time.Time) (assets, liabilities, equity []domain.ReportLine, err error)
}
