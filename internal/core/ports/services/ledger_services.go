package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tatenda10/alamait-sub008/internal/core/domain"
	"github.com/tatenda10/alamait-sub008/internal/dto"
)

// AccountSvcFacade is the chart-of-accounts registry contract.
type AccountSvcFacade interface {
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error)
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)
	GetAccountByCode(ctx context.Context, code string) (*domain.Account, error)
	ListAccounts(ctx context.Context, limit, offset int) ([]domain.Account, error)
	UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error)
	DeactivateAccount(ctx context.Context, accountID, userID string) error
}

// PostingSvcFacade is the journal-log writer contract. Post is the single
// entry point for all balance movement.
type PostingSvcFacade interface {
	Post(ctx context.Context, req dto.PostTransactionRequest, creatorUserID string) (*domain.Transaction, error)
	Reverse(ctx context.Context, transactionID, userID string) (*domain.Transaction, error)
	GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error)
	ListAccountEntries(ctx context.Context, accountID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)
}

// MaterializerSvcFacade recomputes balances from the journal log; the
// ground-truth oracle the caches must agree with.
type MaterializerSvcFacade interface {
	Recompute(ctx context.Context, accountID string, asOf *time.Time) (decimal.Decimal, error)
	RecomputeStudent(ctx context.Context, studentID, enrollmentID string) (decimal.Decimal, error)
	GetCachedBalance(ctx context.Context, accountID string) (decimal.Decimal, error)
}

// PeriodSvcFacade maintains the BD/CD period ledger.
type PeriodSvcFacade interface {
	GetPeriodBalance(ctx context.Context, accountID, period string) (*domain.PeriodBalance, error)
	ListPeriodBalances(ctx context.Context, accountID string) ([]domain.PeriodBalance, error)
	RebuildPeriods(ctx context.Context, accountID, userID string) ([]domain.PeriodBalance, error)
}

// ReconciliationSvcFacade is the drift detection/repair contract.
type ReconciliationSvcFacade interface {
	Reconcile(ctx context.Context, scope domain.ReconcileScope, userID string) (*domain.ReconciliationReport, error)
	FindDuplicates(ctx context.Context) ([]domain.DuplicateGroup, error)
	Quarantine(ctx context.Context, transactionID, userID string) error
	ListRuns(ctx context.Context, limit int) ([]domain.ReconciliationReport, error)
	GetRun(ctx context.Context, runID string) (*domain.ReconciliationReport, error)
}

// StudentLedgerSvcFacade binds the student sub-ledger to the AR control
// account. These are the only entry points that move student balances.
type StudentLedgerSvcFacade interface {
	PostStudentCharge(ctx context.Context, studentID string, req dto.StudentChargeRequest, userID string) (*dto.StudentPostingResponse, error)
	PostStudentPayment(ctx context.Context, studentID string, req dto.StudentPaymentRequest, userID string) (*dto.StudentPostingResponse, error)
	GetStudentBalance(ctx context.Context, studentID, enrollmentID string) (*domain.StudentBalance, error)
	ListStudentBalances(ctx context.Context) ([]domain.StudentBalance, error)
}

// ReportingSvcFacade serves read-only financial reports.
type ReportingSvcFacade interface {
	TrialBalance(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error)
	IncomeStatement(ctx context.Context, from, to time.Time) (*domain.IncomeStatementReport, error)
	BalanceSheet(ctx context.Context, asOf time.Time) (*domain.BalanceSheetReport, error)
	Debtors(ctx context.Context) ([]domain.DebtorRow, error)
}
