package services_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/tatenda10/alamait-sub008/internal/core/domain"
	portsrepo "github.com/tatenda10/alamait-sub008/internal/core/ports/repositories"
)

// MockAccountRepository is a mock type for the AccountRepository interface
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, limit, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) DeactivateAccount(ctx context.Context, accountID, userID string, now time.Time) error {
	args := m.Called(ctx, accountID, userID, now)
	return args.Error(0)
}

func (m *MockAccountRepository) HasEntries(ctx context.Context, accountID string) (bool, error) {
	args := m.Called(ctx, accountID)
	return args.Bool(0), args.Error(1)
}

// MockLedgerRepository is a mock type for the LedgerRepository interface
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) SavePosting(ctx context.Context, txn domain.Transaction, entries []domain.JournalEntry,
	balanceChanges map[string]decimal.Decimal, periodDeltas []portsrepo.PeriodDelta, studentDelta *portsrepo.StudentDelta) error {
	args := m.Called(ctx, txn, entries, balanceChanges, periodDeltas, studentDelta)
	return args.Error(0)
}

func (m *MockLedgerRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerRepository) FindEntriesByTransactionID(ctx context.Context, transactionID string) ([]domain.JournalEntry, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerRepository) ReferenceExists(ctx context.Context, txnType domain.TransactionType, reference string) (bool, error) {
	args := m.Called(ctx, txnType, reference)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedgerRepository) MarkReversed(ctx context.Context, originalID, reversingID, userID string, at time.Time) error {
	args := m.Called(ctx, originalID, reversingID, userID, at)
	return args.Error(0)
}

func (m *MockLedgerRepository) ListEntriesByAccount(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	args := m.Called(ctx, accountID, limit, nextToken)
	var entries []domain.JournalEntry
	if args.Get(0) != nil {
		entries = args.Get(0).([]domain.JournalEntry)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return entries, token, args.Error(2)
}

// MockBalanceRepository is a mock type for the BalanceRepository interface
type MockBalanceRepository struct {
	mock.Mock
}

func (m *MockBalanceRepository) GetCachedBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockBalanceRepository) EntrySums(ctx context.Context, accountID string, asOf *time.Time) (decimal.Decimal, decimal.Decimal, error) {
	args := m.Called(ctx, accountID, asOf)
	return args.Get(0).(decimal.Decimal), args.Get(1).(decimal.Decimal), args.Error(2)
}

func (m *MockBalanceRepository) OverwriteCachedBalance(ctx context.Context, accountID string, balance decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, accountID, balance, userID, now)
	return args.Error(0)
}

func (m *MockBalanceRepository) ListActiveAccountIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockPeriodRepository is a mock type for the PeriodRepository interface
type MockPeriodRepository struct {
	mock.Mock
}

func (m *MockPeriodRepository) GetPeriodBalance(ctx context.Context, accountID, period string) (*domain.PeriodBalance, error) {
	args := m.Called(ctx, accountID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PeriodBalance), args.Error(1)
}

func (m *MockPeriodRepository) ListPeriodBalances(ctx context.Context, accountID string) ([]domain.PeriodBalance, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PeriodBalance), args.Error(1)
}

func (m *MockPeriodRepository) ReplacePeriodBalances(ctx context.Context, accountID string, rows []domain.PeriodBalance) error {
	args := m.Called(ctx, accountID, rows)
	return args.Error(0)
}

func (m *MockPeriodRepository) PeriodEntrySums(ctx context.Context, accountID string) ([]portsrepo.PeriodActivity, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]portsrepo.PeriodActivity), args.Error(1)
}

// MockStudentBalanceRepository is a mock type for the StudentBalanceRepository interface
type MockStudentBalanceRepository struct {
	mock.Mock
}

func (m *MockStudentBalanceRepository) GetStudentBalance(ctx context.Context, studentID, enrollmentID string) (*domain.StudentBalance, error) {
	args := m.Called(ctx, studentID, enrollmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StudentBalance), args.Error(1)
}

func (m *MockStudentBalanceRepository) ListStudentBalances(ctx context.Context) ([]domain.StudentBalance, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StudentBalance), args.Error(1)
}

func (m *MockStudentBalanceRepository) StudentEntrySums(ctx context.Context, studentID, enrollmentID, controlAccountID string) (decimal.Decimal, decimal.Decimal, error) {
	args := m.Called(ctx, studentID, enrollmentID, controlAccountID)
	return args.Get(0).(decimal.Decimal), args.Get(1).(decimal.Decimal), args.Error(2)
}

func (m *MockStudentBalanceRepository) OverwriteStudentBalance(ctx context.Context, studentID, enrollmentID string, balance decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, studentID, enrollmentID, balance, userID, now)
	return args.Error(0)
}

// MockReconciliationRepository is a mock type for the ReconciliationRepository interface
type MockReconciliationRepository struct {
	mock.Mock
}

func (m *MockReconciliationRepository) FindDuplicateTransactions(ctx context.Context) ([]domain.DuplicateGroup, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DuplicateGroup), args.Error(1)
}

func (m *MockReconciliationRepository) QuarantineTransaction(ctx context.Context, transactionID, userID string, now time.Time) ([]string, error) {
	args := m.Called(ctx, transactionID, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockReconciliationRepository) SaveReport(ctx context.Context, report domain.ReconciliationReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockReconciliationRepository) ListReports(ctx context.Context, limit int) ([]domain.ReconciliationReport, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReconciliationReport), args.Error(1)
}

func (m *MockReconciliationRepository) GetReport(ctx context.Context, runID string) (*domain.ReconciliationReport, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReconciliationReport), args.Error(1)
}

// MockReportingRepository is a mock type for the ReportingRepository interface
type MockReportingRepository struct {
	mock.Mock
}

func (m *MockReportingRepository) GetTrialBalanceData(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TrialBalanceRow), args.Error(1)
}

func (m *MockReportingRepository) GetIncomeStatementData(ctx context.Context, from, to time.Time) ([]domain.ReportLine, []domain.ReportLine, error) {
	args := m.Called(ctx, from, to)
	var revenue, expenses []domain.ReportLine
	if args.Get(0) != nil {
		revenue = args.Get(0).([]domain.ReportLine)
	}
	if args.Get(1) != nil {
		expenses = args.Get(1).([]domain.ReportLine)
	}
	return revenue, expenses, args.Error(2)
}

func (m *MockReportingRepository) GetBalanceSheetData(ctx context.Context, asOf time.Time) ([]domain.ReportLine, []domain.ReportLine, []domain.ReportLine, error) {
	args := m.Called(ctx, asOf)
	var assets, liabilities, equity []domain.ReportLine
	if args.Get(0) != nil {
		assets = args.Get(0).([]domain.ReportLine)
	}
	if args.Get(1) != nil {
		liabilities = args.Get(1).([]domain.ReportLine)
	}
	if args.Get(2) != nil {
		equity = args.Get(2).([]domain.ReportLine)
	}
	return assets, liabilities, equity, args.Error(3)
}

// MockMaterializerSvc is a mock type for the MaterializerSvcFacade interface
type MockMaterializerSvc struct {
	mock.Mock
}

func (m *MockMaterializerSvc) Recompute(ctx context.Context, accountID string, asOf *time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID, asOf)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockMaterializerSvc) RecomputeStudent(ctx context.Context, studentID, enrollmentID string) (decimal.Decimal, error) {
	args := m.Called(ctx, studentID, enrollmentID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockMaterializerSvc) GetCachedBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockPeriodSvc is a mock type for the PeriodSvcFacade interface
type MockPeriodSvc struct {
	mock.Mock
}

func (m *MockPeriodSvc) GetPeriodBalance(ctx context.Context, accountID, period string) (*domain.PeriodBalance, error) {
	args := m.Called(ctx, accountID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PeriodBalance), args.Error(1)
}

func (m *MockPeriodSvc) ListPeriodBalances(ctx context.Context, accountID string) ([]domain.PeriodBalance, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PeriodBalance), args.Error(1)
}

func (m *MockPeriodSvc) RebuildPeriods(ctx context.Context, accountID, userID string) ([]domain.PeriodBalance, error) {
	args := m.Called(ctx, accountID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PeriodBalance), args.Error(1)
}
