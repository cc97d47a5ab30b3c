package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tatenda10/alamait-sub008/internal/apperrors"
	"github.com/tatenda10/alamait-sub008/internal/core/domain"
	portsrepo "github.com/tatenda10/alamait-sub008/internal/core/ports/repositories"
	portssvc "github.com/tatenda10/alamait-sub008/internal/core/ports/services"
	"github.com/tatenda10/alamait-sub008/internal/middleware"
)

// periodService serves the per-account monthly BD/CD ledger. Rows are
// maintained incrementally by the posting path; this service reads them and
// owns the full rebuild used when the chain is found broken.
type periodService struct {
	periodRepo  portsrepo.PeriodRepository
	accountRepo portsrepo.AccountRepository
}

// NewPeriodService creates a new period ledger service.
func NewPeriodService(periodRepo portsrepo.PeriodRepository, accountRepo portsrepo.AccountRepository) portssvc.PeriodSvcFacade {
	return &periodService{periodRepo: periodRepo, accountRepo: accountRepo}
}

var _ portssvc.PeriodSvcFacade = (*periodService)(nil)

func (s *periodService) GetPeriodBalance(ctx context.Context, accountID, period string) (*domain.PeriodBalance, error) {
	if _, err := domain.ParsePeriod(period); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}
	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		return nil, err
	}
	return s.periodRepo.GetPeriodBalance(ctx, accountID, period)
}

func (s *periodService) ListPeriodBalances(ctx context.Context, accountID string) ([]domain.PeriodBalance, error) {
	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		return nil, err
	}
	rows, err := s.periodRepo.ListPeriodBalances(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list period balances for account %s: %w", accountID, err)
	}
	if rows == nil {
		return []domain.PeriodBalance{}, nil
	}
	return rows, nil
}

// RebuildPeriods derives the account's entire period ledger from the journal
// log and swaps the stored rows for the derived ones. Months with no activity
// between active months are filled in with zero-activity rows so the
// CD(n) == BD(n+1) chain stays contiguous.
func (s *periodService) RebuildPeriods(ctx context.Context, accountID, userID string) ([]domain.PeriodBalance, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	activity, err := s.periodRepo.PeriodEntrySums(ctx, accountID)
	if err != nil {
		logger.Error("Failed to bucket journal activity by period", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to bucket journal activity for account %s: %w", accountID, err)
	}

	rows, err := buildPeriodChain(account.AccountType.NormalBalance(), activity, userID, time.Now().UTC(), accountID)
	if err != nil {
		return nil, err
	}

	if err := s.periodRepo.ReplacePeriodBalances(ctx, accountID, rows); err != nil {
		logger.Error("Failed to replace period balances", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to replace period balances for account %s: %w", accountID, err)
	}

	logger.Info("Period ledger rebuilt", slog.String("account_id", accountID), slog.Int("periods", len(rows)))
	return rows, nil
}

// buildPeriodChain folds monthly activity into a contiguous BD/CD chain.
// The first period opens with BD zero; each subsequent BD is the prior CD.
func buildPeriodChain(normal domain.NormalBalance, activity []portsrepo.PeriodActivity, userID string, now time.Time, accountID string) ([]domain.PeriodBalance, error) {
	if len(activity) == 0 {
		return []domain.PeriodBalance{}, nil
	}

	byPeriod := make(map[string]portsrepo.PeriodActivity, len(activity))
	for _, a := range activity {
		byPeriod[a.Period] = a
	}

	first, err := domain.ParsePeriod(activity[0].Period)
	if err != nil {
		return nil, fmt.Errorf("malformed period bucket %q: %w", activity[0].Period, err)
	}
	last, err := domain.ParsePeriod(activity[len(activity)-1].Period)
	if err != nil {
		return nil, fmt.Errorf("malformed period bucket %q: %w", activity[len(activity)-1].Period, err)
	}

	var rows []domain.PeriodBalance
	bd := decimal.Zero
	for p := first; ; p = p.Next() {
		a := byPeriod[p.Key()]
		cd := domain.CarriedDown(bd, a.Debits, a.Credits, normal)
		rows = append(rows, domain.PeriodBalance{
			AccountID:          accountID,
			Period:             p.Key(),
			BalanceBroughtDown: bd,
			TotalDebits:        a.Debits,
			TotalCredits:       a.Credits,
			BalanceCarriedDown: cd,
			TransactionCount:   a.TxnCount,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		})
		bd = cd
		if p == last {
			break
		}
	}
	return rows, nil
}
