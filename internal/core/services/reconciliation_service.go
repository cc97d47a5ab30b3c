package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tatenda10/alamait-sub008/internal/apperrors"
	"github.com/tatenda10/alamait-sub008/internal/core/domain"
	portsrepo "github.com/tatenda10/alamait-sub008/internal/core/ports/repositories"
	portssvc "github.com/tatenda10/alamait-sub008/internal/core/ports/services"
	"github.com/tatenda10/alamait-sub008/internal/middleware"
)

// reconciliationService detects and repairs drift between the journal log
// and the derived stores. The journal log is always right: repairs only
// ever rewrite caches and period rows, never the log itself.
type reconciliationService struct {
	ledgerRepo   portsrepo.LedgerRepository
	balanceRepo  portsrepo.BalanceRepository
	studentRepo  portsrepo.StudentBalanceRepository
	reconRepo    portsrepo.ReconciliationRepository
	periodRepo   portsrepo.PeriodRepository
	materializer portssvc.MaterializerSvcFacade
	periodSvc    portssvc.PeriodSvcFacade

	// epsilon is the largest |cached - recomputed| treated as agreement.
	// Zero means exact match required.
	epsilon decimal.Decimal
}

// NewReconciliationService creates a new reconciliation service.
func NewReconciliationService(
	ledgerRepo portsrepo.LedgerRepository,
	balanceRepo portsrepo.BalanceRepository,
	studentRepo portsrepo.StudentBalanceRepository,
	reconRepo portsrepo.ReconciliationRepository,
	periodRepo portsrepo.PeriodRepository,
	materializer portssvc.MaterializerSvcFacade,
	periodSvc portssvc.PeriodSvcFacade,
	epsilon decimal.Decimal,
) portssvc.ReconciliationSvcFacade {
	return &reconciliationService{
		ledgerRepo:   ledgerRepo,
		balanceRepo:  balanceRepo,
		studentRepo:  studentRepo,
		reconRepo:    reconRepo,
		periodRepo:   periodRepo,
		materializer: materializer,
		periodSvc:    periodSvc,
		epsilon:      epsilon,
	}
}

var _ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)

// Reconcile sweeps the scoped accounts, comparing each cached balance
// against a recomputation from the journal log, repairing drift in the
// cache, re-chaining broken period ledgers, and (on full runs) checking
// every student sub-ledger balance against the AR control account. A period
// scope covers the accounts with activity in that month and chain-checks
// from it forward. The run is interruptible between accounts; partial
// results are still persisted.
func (s *reconciliationService) Reconcile(ctx context.Context, scope domain.ReconcileScope, userID string) (*domain.ReconciliationReport, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if scope.AccountID != "" && scope.Period != "" {
		return nil, fmt.Errorf("%w: reconcile scope is all, one account, or one period", apperrors.ErrValidation)
	}

	report := domain.ReconciliationReport{
		RunID:     uuid.NewString(),
		Scope:     "all",
		StartedAt: time.Now().UTC(),
		Status:    domain.RunCompleted,
		Drifted:   []domain.DriftRecord{},
	}

	var fromPeriod *domain.Period
	if scope.Period != "" {
		p, err := domain.ParsePeriod(scope.Period)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		fromPeriod = &p
		report.Scope = p.Key()
	}

	var accountIDs []string
	if scope.AccountID != "" {
		report.Scope = scope.AccountID
		accountIDs = []string{scope.AccountID}
	} else {
		ids, err := s.balanceRepo.ListActiveAccountIDs(ctx)
		if err != nil {
			logger.Error("Failed to list accounts for reconciliation", slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to list accounts: %w", err)
		}
		accountIDs = ids
	}

	for _, accountID := range accountIDs {
		if ctx.Err() != nil {
			report.Status = domain.RunInterrupted
			break
		}

		if fromPeriod != nil {
			checked, err := s.reconcileAccountPeriod(ctx, accountID, *fromPeriod, userID, &report)
			if err != nil {
				logger.Error("Failed to reconcile account", slog.String("error", err.Error()), slog.String("account_id", accountID))
				return nil, err
			}
			if !checked {
				continue
			}
		} else if err := s.reconcileAccount(ctx, accountID, userID, &report); err != nil {
			logger.Error("Failed to reconcile account", slog.String("error", err.Error()), slog.String("account_id", accountID))
			return nil, err
		}
		report.AccountsChecked++
	}

	// Student sub-ledger sweep on full runs only; an account or period scope
	// is a targeted balance check.
	if scope.AccountID == "" && scope.Period == "" && report.Status == domain.RunCompleted {
		if err := s.reconcileStudents(ctx, userID, &report); err != nil {
			logger.Error("Failed to reconcile student balances", slog.String("error", err.Error()))
			return nil, err
		}
	}

	report.FinishedAt = time.Now().UTC()
	if err := s.reconRepo.SaveReport(ctx, report); err != nil {
		logger.Error("Failed to persist reconciliation report", slog.String("error", err.Error()), slog.String("run_id", report.RunID))
		return nil, fmt.Errorf("failed to persist reconciliation report: %w", err)
	}

	logger.Info("Reconciliation run finished",
		slog.String("run_id", report.RunID),
		slog.String("status", string(report.Status)),
		slog.Int("accounts_checked", report.AccountsChecked),
		slog.Int("drifted", len(report.Drifted)),
	)
	return &report, nil
}

func (s *reconciliationService) reconcileAccount(ctx context.Context, accountID, userID string, report *domain.ReconciliationReport) error {
	if err := s.checkBalanceDrift(ctx, accountID, userID, report); err != nil {
		return err
	}

	rows, err := s.periodRepo.ListPeriodBalances(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to list period balances for account %s: %w", accountID, err)
	}
	return s.checkPeriodChain(ctx, accountID, userID, rows, nil, report)
}

// reconcileAccountPeriod is the period-scoped variant: accounts with no row
// in the given period are skipped; the rest get the full drift check plus a
// chain check from that period forward. Returns whether the account counted
// toward the run.
func (s *reconciliationService) reconcileAccountPeriod(ctx context.Context, accountID string, from domain.Period, userID string, report *domain.ReconciliationReport) (bool, error) {
	rows, err := s.periodRepo.ListPeriodBalances(ctx, accountID)
	if err != nil {
		return false, fmt.Errorf("failed to list period balances for account %s: %w", accountID, err)
	}

	key := from.Key()
	inPeriod := false
	for _, r := range rows {
		if r.Period == key {
			inPeriod = true
			break
		}
	}
	if !inPeriod {
		return false, nil
	}

	if err := s.checkBalanceDrift(ctx, accountID, userID, report); err != nil {
		return false, err
	}
	return true, s.checkPeriodChain(ctx, accountID, userID, rows, &from, report)
}

func (s *reconciliationService) checkBalanceDrift(ctx context.Context, accountID, userID string, report *domain.ReconciliationReport) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	recomputed, err := s.materializer.Recompute(ctx, accountID, nil)
	if err != nil {
		return fmt.Errorf("failed to recompute balance for account %s: %w", accountID, err)
	}

	cached, err := s.balanceRepo.GetCachedBalance(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("failed to read cached balance for account %s: %w", accountID, err)
		}
		// No cache row yet counts as a cached zero.
		cached = decimal.Zero
	}

	delta := cached.Sub(recomputed)
	if delta.Abs().GreaterThan(s.epsilon) {
		now := time.Now().UTC()
		if err := s.balanceRepo.OverwriteCachedBalance(ctx, accountID, recomputed, userID, now); err != nil {
			return fmt.Errorf("failed to repair cached balance for account %s: %w", accountID, err)
		}
		logger.Warn("Balance drift repaired",
			slog.String("account_id", accountID),
			slog.String("cached", cached.String()),
			slog.String("recomputed", recomputed.String()),
		)
		report.Drifted = append(report.Drifted, domain.DriftRecord{
			AccountID:  accountID,
			Cached:     cached,
			Recomputed: recomputed,
			Delta:      delta,
			Repaired:   true,
		})
	}

	return nil
}

// checkPeriodChain verifies CD(n) == BD(n+1) across the account's period
// rows and rebuilds the whole chain from the journal log when any link is
// broken. With from set, only links opening at or after that period are
// inspected.
func (s *reconciliationService) checkPeriodChain(ctx context.Context, accountID, userID string, rows []domain.PeriodBalance, from *domain.Period, report *domain.ReconciliationReport) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if len(rows) < 2 {
		return nil
	}

	start := 1
	if from != nil {
		// Period keys order lexicographically the same as chronologically.
		key := from.Key()
		for start < len(rows) && rows[start].Period < key {
			start++
		}
	}

	broken := false
	for i := start; i < len(rows); i++ {
		if !rows[i].BalanceBroughtDown.Equal(rows[i-1].BalanceCarriedDown) {
			broken = true
			break
		}
	}
	if !broken {
		return nil
	}

	logger.Warn("Period chain broken, rebuilding", slog.String("account_id", accountID))

	before := make(map[string]decimal.Decimal, len(rows))
	for _, r := range rows {
		before[r.Period] = r.BalanceCarriedDown
	}

	rebuilt, err := s.periodSvc.RebuildPeriods(ctx, accountID, userID)
	if err != nil {
		return fmt.Errorf("%w: account %s: %s", apperrors.ErrChainBroken, accountID, err.Error())
	}
	for _, r := range rebuilt {
		if old, ok := before[r.Period]; ok && !old.Equal(r.BalanceCarriedDown) {
			report.ChainRepairs = append(report.ChainRepairs, domain.ChainRepair{
				AccountID: accountID,
				Period:    r.Period,
				OldCD:     old,
				NewCD:     r.BalanceCarriedDown,
			})
		}
	}
	return nil
}

func (s *reconciliationService) reconcileStudents(ctx context.Context, userID string, report *domain.ReconciliationReport) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	balances, err := s.studentRepo.ListStudentBalances(ctx)
	if err != nil {
		return fmt.Errorf("failed to list student balances: %w", err)
	}

	for _, sb := range balances {
		if ctx.Err() != nil {
			report.Status = domain.RunInterrupted
			return nil
		}

		recomputed, err := s.materializer.RecomputeStudent(ctx, sb.StudentID, sb.EnrollmentID)
		if err != nil {
			return fmt.Errorf("failed to recompute balance for student %s: %w", sb.StudentID, err)
		}

		delta := sb.Balance.Sub(recomputed)
		if delta.Abs().GreaterThan(s.epsilon) {
			now := time.Now().UTC()
			if err := s.studentRepo.OverwriteStudentBalance(ctx, sb.StudentID, sb.EnrollmentID, recomputed, userID, now); err != nil {
				return fmt.Errorf("failed to repair balance for student %s: %w", sb.StudentID, err)
			}
			logger.Warn("Student balance drift repaired",
				slog.String("student_id", sb.StudentID),
				slog.String("cached", sb.Balance.String()),
				slog.String("recomputed", recomputed.String()),
			)
			report.StudentDrifted = append(report.StudentDrifted, domain.StudentDriftRecord{
				StudentID:    sb.StudentID,
				EnrollmentID: sb.EnrollmentID,
				Cached:       sb.Balance,
				Recomputed:   recomputed,
				Delta:        delta,
				Repaired:     true,
			})
		}
	}
	return nil
}

// FindDuplicates surfaces groups of posted transactions sharing the same
// reference, amount and date. Detection only; removal goes through
// Quarantine, one transaction at a time.
func (s *reconciliationService) FindDuplicates(ctx context.Context) ([]domain.DuplicateGroup, error) {
	groups, err := s.reconRepo.FindDuplicateTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find duplicate transactions: %w", err)
	}
	if groups == nil {
		return []domain.DuplicateGroup{}, nil
	}
	return groups, nil
}

// Quarantine soft-deletes a transaction together with all of its entries,
// then recomputes every store the entries fed: the balance cache and period
// rows of each touched account, and the student balance when the
// transaction belonged to a student. Entries are never removed
// individually; the unit is the whole transaction, and transactions linked
// into a reversal pair are rejected.
func (s *reconciliationService) Quarantine(ctx context.Context, transactionID, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	txn, err := s.ledgerRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return err
	}
	if txn.IsDeleted() {
		return fmt.Errorf("%w: transaction %s is already quarantined", apperrors.ErrConflict, transactionID)
	}
	// A transaction tied into a reversal pair cannot be removed alone:
	// quarantining either half would leave the other pointing at deleted
	// history, an unmatched half-posting.
	if txn.ReversedByTransactionID != nil {
		return fmt.Errorf("%w: transaction %s is referenced by reversal %s", apperrors.ErrConflict, transactionID, *txn.ReversedByTransactionID)
	}
	if txn.ReversesTransactionID != nil {
		return fmt.Errorf("%w: transaction %s is a reversal of %s", apperrors.ErrConflict, transactionID, *txn.ReversesTransactionID)
	}

	now := time.Now().UTC()
	affected, err := s.reconRepo.QuarantineTransaction(ctx, transactionID, userID, now)
	if err != nil {
		logger.Error("Failed to quarantine transaction", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		return fmt.Errorf("failed to quarantine transaction %s: %w", transactionID, err)
	}

	for _, accountID := range affected {
		recomputed, err := s.materializer.Recompute(ctx, accountID, nil)
		if err != nil {
			return fmt.Errorf("quarantined %s but failed to recompute account %s: %w", transactionID, accountID, err)
		}
		if err := s.balanceRepo.OverwriteCachedBalance(ctx, accountID, recomputed, userID, now); err != nil {
			return fmt.Errorf("quarantined %s but failed to rewrite cache for account %s: %w", transactionID, accountID, err)
		}
		if _, err := s.periodSvc.RebuildPeriods(ctx, accountID, userID); err != nil {
			return fmt.Errorf("quarantined %s but failed to rebuild periods for account %s: %w", transactionID, accountID, err)
		}
	}

	if txn.StudentID != "" {
		recomputed, err := s.materializer.RecomputeStudent(ctx, txn.StudentID, txn.EnrollmentID)
		if err != nil {
			return fmt.Errorf("quarantined %s but failed to recompute student %s: %w", transactionID, txn.StudentID, err)
		}
		if err := s.studentRepo.OverwriteStudentBalance(ctx, txn.StudentID, txn.EnrollmentID, recomputed, userID, now); err != nil {
			return fmt.Errorf("quarantined %s but failed to rewrite student balance for %s: %w", transactionID, txn.StudentID, err)
		}
	}

	logger.Info("Transaction quarantined",
		slog.String("transaction_id", transactionID),
		slog.Int("accounts_recomputed", len(affected)),
	)
	return nil
}

func (s *reconciliationService) ListRuns(ctx context.Context, limit int) ([]domain.ReconciliationReport, error) {
	if limit <= 0 {
		limit = 20
	}
	reports, err := s.reconRepo.ListReports(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reconciliation runs: %w", err)
	}
	if reports == nil {
		return []domain.ReconciliationReport{}, nil
	}
	return reports, nil
}

func (s *reconciliationService) GetRun(ctx context.Context, runID string) (*domain.ReconciliationReport, error) {
	return s.reconRepo.GetReport(ctx, runID)
}
