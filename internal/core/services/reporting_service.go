package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tatenda10/alamait-sub008/internal/apperrors"
	"github.com/tatenda10/alamait-sub008/internal/core/domain"
	portsrepo "github.com/tatenda10/alamait-sub008/internal/core/ports/repositories"
	portssvc "github.com/tatenda10/alamait-sub008/internal/core/ports/services"
	"github.com/tatenda10/alamait-sub008/internal/middleware"
)

// reportingService serves read-only financial reports aggregated from the
// journal log, so they stay correct even when a cache has drifted.
type reportingService struct {
	reportingRepo portsrepo.ReportingRepository
	studentRepo   portsrepo.StudentBalanceRepository
}

// NewReportingService creates a new reporting service.
func NewReportingService(reportingRepo portsrepo.ReportingRepository, studentRepo portsrepo.StudentBalanceRepository) portssvc.ReportingSvcFacade {
	return &reportingService{reportingRepo: reportingRepo, studentRepo: studentRepo}
}

var _ portssvc.ReportingSvcFacade = (*reportingService)(nil)

// TrialBalance lists every account with activity as of the date, each
// balance on its normal side. Total debits equal total credits when the
// log is consistent.
func (s *reportingService) TrialBalance(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	rows, err := s.reportingRepo.GetTrialBalanceData(ctx, asOf)
	if err != nil {
		logger.Error("Failed to build trial balance", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to build trial balance: %w", err)
	}
	if rows == nil {
		return []domain.TrialBalanceRow{}, nil
	}
	return rows, nil
}

// IncomeStatement reports revenue and expense activity over the date range.
func (s *reportingService) IncomeStatement(ctx context.Context, from, to time.Time) (*domain.IncomeStatementReport, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if to.Before(from) {
		return nil, fmt.Errorf("%w: report range end precedes start", apperrors.ErrValidation)
	}

	revenue, expenses, err := s.reportingRepo.GetIncomeStatementData(ctx, from, to)
	if err != nil {
		logger.Error("Failed to build income statement", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to build income statement: %w", err)
	}

	report := &domain.IncomeStatementReport{
		Revenue:  revenue,
		Expenses: expenses,
	}
	report.TotalRevenue = sumLines(revenue)
	report.TotalExpense = sumLines(expenses)
	report.NetResult = report.TotalRevenue.Sub(report.TotalExpense)
	return report, nil
}

// BalanceSheet reports the asset, liability and equity position as of a
// date.
func (s *reportingService) BalanceSheet(ctx context.Context, asOf time.Time) (*domain.BalanceSheetReport, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	assets, liabilities, equity, err := s.reportingRepo.GetBalanceSheetData(ctx, asOf)
	if err != nil {
		logger.Error("Failed to build balance sheet", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to build balance sheet: %w", err)
	}

	report := &domain.BalanceSheetReport{
		Assets:      assets,
		Liabilities: liabilities,
		Equity:      equity,
	}
	report.TotalAssets = sumLines(assets)
	report.TotalLiabilities = sumLines(liabilities)
	report.TotalEquity = sumLines(equity)
	return report, nil
}

// Debtors lists students with a non-zero balance, largest debt first.
func (s *reportingService) Debtors(ctx context.Context) ([]domain.DebtorRow, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	balances, err := s.studentRepo.ListStudentBalances(ctx)
	if err != nil {
		logger.Error("Failed to list student balances for debtors report", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to build debtors report: %w", err)
	}

	rows := make([]domain.DebtorRow, 0, len(balances))
	for _, sb := range balances {
		if sb.Balance.IsZero() {
			continue
		}
		rows = append(rows, domain.DebtorRow{
			StudentID:    sb.StudentID,
			EnrollmentID: sb.EnrollmentID,
			Balance:      sb.Balance,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Balance.GreaterThan(rows[j].Balance)
	})
	return rows, nil
}

func sumLines(lines []domain.ReportLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.NetAmount)
	}
	return total
}
