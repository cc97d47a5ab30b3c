package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tatenda10/alamait-sub008/internal/core/domain"
	portsrepo "github.com/tatenda10/alamait-sub008/internal/core/ports/repositories"
	portssvc "github.com/tatenda10/alamait-sub008/internal/core/ports/services"
	"github.com/tatenda10/alamait-sub008/internal/middleware"
)

// materializerService derives balances by folding the journal log. It is
// the formal definition of a correct balance: deterministic, read-only,
// and re-runnable with identical results. The balance cache exists only
// because running this on every read is too slow; whenever the two
// disagree, this one is right.
type materializerService struct {
	balanceRepo portsrepo.BalanceRepository
	studentRepo portsrepo.StudentBalanceRepository
	accountRepo portsrepo.AccountRepository

	// controlAccountCode is the Accounts-Receivable control account the
	// student sub-ledger nets against.
	controlAccountCode string
}

// NewMaterializerService creates a new balance materializer.
func NewMaterializerService(balanceRepo portsrepo.BalanceRepository, studentRepo portsrepo.StudentBalanceRepository, accountRepo portsrepo.AccountRepository, controlAccountCode string) portssvc.MaterializerSvcFacade {
	return &materializerService{
		balanceRepo:        balanceRepo,
		studentRepo:        studentRepo,
		accountRepo:        accountRepo,
		controlAccountCode: controlAccountCode,
	}
}

var _ portssvc.MaterializerSvcFacade = (*materializerService)(nil)

// Recompute folds every non-deleted journal entry of non-deleted posted
// transactions for the account, optionally bounded by date, applying the
// normal-balance sign rule: Σdebits − Σcredits for debit-normal accounts,
// the negation for credit-normal.
func (s *materializerService) Recompute(ctx context.Context, accountID string, asOf *time.Time) (decimal.Decimal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	debits, credits, err := s.balanceRepo.EntrySums(ctx, accountID, asOf)
	if err != nil {
		logger.Error("Failed to aggregate journal entries", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return decimal.Zero, fmt.Errorf("failed to aggregate entries for account %s: %w", accountID, err)
	}

	balance := debits.Sub(credits)
	if account.AccountType.NormalBalance() == domain.CreditNormal {
		balance = balance.Neg()
	}
	return balance, nil
}

// RecomputeStudent folds the AR control-account entries of the student's
// transactions. Positive means the student owes.
func (s *materializerService) RecomputeStudent(ctx context.Context, studentID, enrollmentID string) (decimal.Decimal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	control, err := s.accountRepo.FindAccountByCode(ctx, s.controlAccountCode)
	if err != nil {
		logger.Error("Failed to resolve AR control account", slog.String("error", err.Error()), slog.String("code", s.controlAccountCode))
		return decimal.Zero, fmt.Errorf("failed to resolve control account %s: %w", s.controlAccountCode, err)
	}

	debits, credits, err := s.studentRepo.StudentEntrySums(ctx, studentID, enrollmentID, control.AccountID)
	if err != nil {
		logger.Error("Failed to aggregate student entries", slog.String("error", err.Error()), slog.String("student_id", studentID))
		return decimal.Zero, fmt.Errorf("failed to aggregate entries for student %s: %w", studentID, err)
	}

	// AR is debit-normal: charges debit it, payments credit it.
	return debits.Sub(credits), nil
}

// GetCachedBalance reads the O(1) balance cache.
func (s *materializerService) GetCachedBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	return s.balanceRepo.GetCachedBalance(ctx, accountID)
}
