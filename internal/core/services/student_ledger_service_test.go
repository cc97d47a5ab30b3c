package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/tatenda10/alamait-sub008/internal/apperrors"
	"github.com/tatenda10/alamait-sub008/internal/core/domain"
	portsrepo "github.com/tatenda10/alamait-sub008/internal/core/ports/repositories"
	portssvc "github.com/tatenda10/alamait-sub008/internal/core/ports/services"
	"github.com/tatenda10/alamait-sub008/internal/core/services"
	"github.com/tatenda10/alamait-sub008/internal/dto"
)

const controlCode = "1100"

type StudentLedgerServiceTestSuite struct {
	suite.Suite
	mockLedger  *MockLedgerRepository
	mockAccount *MockAccountRepository
	mockStudent *MockStudentBalanceRepository
	service     portssvc.StudentLedgerSvcFacade

	control *domain.Account
	revenue *domain.Account
	cash    *domain.Account

	studentID    string
	enrollmentID string
}

func (suite *StudentLedgerServiceTestSuite) SetupTest() {
	suite.mockLedger = new(MockLedgerRepository)
	suite.mockAccount = new(MockAccountRepository)
	suite.mockStudent = new(MockStudentBalanceRepository)
	suite.service = services.NewStudentLedgerService(suite.mockLedger, suite.mockAccount, suite.mockStudent, controlCode)

	suite.control = &domain.Account{AccountID: uuid.NewString(), Code: controlCode, Name: "Accounts Receivable", AccountType: domain.Asset, IsActive: true}
	suite.revenue = &domain.Account{AccountID: uuid.NewString(), Code: "4000", Name: "Rent Income", AccountType: domain.Revenue, IsActive: true}
	suite.cash = &domain.Account{AccountID: uuid.NewString(), Code: "1000", Name: "Cash", AccountType: domain.Asset, IsActive: true}

	suite.studentID = uuid.NewString()
	suite.enrollmentID = uuid.NewString()
}

func (suite *StudentLedgerServiceTestSuite) expectAccountsByIDs(a, b *domain.Account) {
	accounts := map[string]domain.Account{
		a.AccountID: *a,
		b.AccountID: *b,
	}
	suite.mockAccount.On("FindAccountsByIDs", mock.Anything, mock.AnythingOfType("[]string")).Return(accounts, nil).Once()
}

func (suite *StudentLedgerServiceTestSuite) TestPostStudentCharge_Success() {
	ctx := context.Background()
	amount := decimal.NewFromInt(300)
	req := dto.StudentChargeRequest{
		EnrollmentID:       suite.enrollmentID,
		Amount:             amount,
		Reference:          "CHG-001",
		Description:        "June rent",
		RevenueAccountCode: "4000",
	}

	suite.mockAccount.On("FindAccountByCode", ctx, controlCode).Return(suite.control, nil).Once()
	suite.mockAccount.On("FindAccountByCode", ctx, "4000").Return(suite.revenue, nil).Once()
	suite.expectAccountsByIDs(suite.control, suite.revenue)
	suite.mockLedger.On("ReferenceExists", ctx, domain.TxnCharge, "CHG-001").Return(false, nil).Once()

	var savedTxn domain.Transaction
	var savedEntries []domain.JournalEntry
	var savedDelta *portsrepo.StudentDelta
	suite.mockLedger.On("SavePosting", ctx, mock.AnythingOfType("domain.Transaction"), mock.AnythingOfType("[]domain.JournalEntry"),
		mock.AnythingOfType("map[string]decimal.Decimal"), mock.AnythingOfType("[]repositories.PeriodDelta"), mock.AnythingOfType("*repositories.StudentDelta")).
		Run(func(args mock.Arguments) {
			savedTxn = args.Get(1).(domain.Transaction)
			savedEntries = args.Get(2).([]domain.JournalEntry)
			savedDelta = args.Get(5).(*portsrepo.StudentDelta)
		}).Return(nil).Once()

	newBalance := &domain.StudentBalance{StudentID: suite.studentID, EnrollmentID: suite.enrollmentID, Balance: amount}
	suite.mockStudent.On("GetStudentBalance", ctx, suite.studentID, suite.enrollmentID).Return(newBalance, nil).Once()

	resp, err := suite.service.PostStudentCharge(ctx, suite.studentID, req, "user-1")

	suite.Require().NoError(err)
	suite.Require().NotNil(resp)
	suite.True(amount.Equal(resp.NewBalance))
	suite.Equal(savedTxn.TransactionID, resp.TransactionID)

	suite.Equal(domain.TxnCharge, savedTxn.TxnType)
	suite.Equal(suite.studentID, savedTxn.StudentID)
	suite.Equal(suite.enrollmentID, savedTxn.EnrollmentID)

	// Charge debits the control account and credits revenue.
	suite.Require().Len(savedEntries, 2)
	suite.Equal(suite.control.AccountID, savedEntries[0].AccountID)
	suite.Equal(domain.Debit, savedEntries[0].EntryType)
	suite.Equal(suite.revenue.AccountID, savedEntries[1].AccountID)
	suite.Equal(domain.Credit, savedEntries[1].EntryType)

	// The student owes more by exactly the charged amount.
	suite.Require().NotNil(savedDelta)
	suite.True(amount.Equal(savedDelta.Delta))

	suite.mockLedger.AssertExpectations(suite.T())
	suite.mockAccount.AssertExpectations(suite.T())
}

func (suite *StudentLedgerServiceTestSuite) TestPostStudentCharge_NonRevenueCounterpart() {
	ctx := context.Background()
	req := dto.StudentChargeRequest{
		EnrollmentID:       suite.enrollmentID,
		Amount:             decimal.NewFromInt(300),
		Reference:          "CHG-002",
		Description:        "June rent",
		RevenueAccountCode: "1000",
	}

	suite.mockAccount.On("FindAccountByCode", ctx, controlCode).Return(suite.control, nil).Once()
	suite.mockAccount.On("FindAccountByCode", ctx, "1000").Return(suite.cash, nil).Once()

	resp, err := suite.service.PostStudentCharge(ctx, suite.studentID, req, "user-1")

	suite.Require().Error(err)
	suite.Nil(resp)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockLedger.AssertNotCalled(suite.T(), "SavePosting", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *StudentLedgerServiceTestSuite) TestPostStudentCharge_UnknownCounterpart() {
	ctx := context.Background()
	req := dto.StudentChargeRequest{
		EnrollmentID:       suite.enrollmentID,
		Amount:             decimal.NewFromInt(300),
		Reference:          "CHG-003",
		Description:        "June rent",
		RevenueAccountCode: "4999",
	}

	suite.mockAccount.On("FindAccountByCode", ctx, controlCode).Return(suite.control, nil).Once()
	suite.mockAccount.On("FindAccountByCode", ctx, "4999").Return(nil, apperrors.ErrNotFound).Once()

	resp, err := suite.service.PostStudentCharge(ctx, suite.studentID, req, "user-1")

	suite.Require().Error(err)
	suite.Nil(resp)
	suite.ErrorIs(err, apperrors.ErrInvalidAccount)
}

func (suite *StudentLedgerServiceTestSuite) TestPostStudentPayment_Success() {
	ctx := context.Background()
	amount := decimal.NewFromInt(120)
	req := dto.StudentPaymentRequest{
		EnrollmentID:    suite.enrollmentID,
		Amount:          amount,
		Reference:       "PAY-001",
		Description:     "Part payment",
		CashAccountCode: "1000",
	}

	suite.mockAccount.On("FindAccountByCode", ctx, controlCode).Return(suite.control, nil).Once()
	suite.mockAccount.On("FindAccountByCode", ctx, "1000").Return(suite.cash, nil).Once()
	suite.expectAccountsByIDs(suite.control, suite.cash)
	suite.mockLedger.On("ReferenceExists", ctx, domain.TxnPayment, "PAY-001").Return(false, nil).Once()

	var savedEntries []domain.JournalEntry
	var savedDelta *portsrepo.StudentDelta
	suite.mockLedger.On("SavePosting", ctx, mock.AnythingOfType("domain.Transaction"), mock.AnythingOfType("[]domain.JournalEntry"),
		mock.AnythingOfType("map[string]decimal.Decimal"), mock.AnythingOfType("[]repositories.PeriodDelta"), mock.AnythingOfType("*repositories.StudentDelta")).
		Run(func(args mock.Arguments) {
			savedEntries = args.Get(2).([]domain.JournalEntry)
			savedDelta = args.Get(5).(*portsrepo.StudentDelta)
		}).Return(nil).Once()

	// No cached row yet; the service reports a zero balance rather than
	// failing the posting.
	suite.mockStudent.On("GetStudentBalance", ctx, suite.studentID, suite.enrollmentID).Return(nil, apperrors.ErrNotFound).Once()

	resp, err := suite.service.PostStudentPayment(ctx, suite.studentID, req, "user-1")

	suite.Require().NoError(err)
	suite.Require().NotNil(resp)
	suite.True(decimal.Zero.Equal(resp.NewBalance))

	// Payment debits cash and credits the control account.
	suite.Require().Len(savedEntries, 2)
	suite.Equal(suite.cash.AccountID, savedEntries[0].AccountID)
	suite.Equal(domain.Debit, savedEntries[0].EntryType)
	suite.Equal(suite.control.AccountID, savedEntries[1].AccountID)
	suite.Equal(domain.Credit, savedEntries[1].EntryType)

	// The student owes less by exactly the paid amount.
	suite.Require().NotNil(savedDelta)
	suite.True(amount.Neg().Equal(savedDelta.Delta))
}

func (suite *StudentLedgerServiceTestSuite) TestPostStudentPayment_NonAssetCashAccount() {
	ctx := context.Background()
	req := dto.StudentPaymentRequest{
		EnrollmentID:    suite.enrollmentID,
		Amount:          decimal.NewFromInt(120),
		Reference:       "PAY-002",
		Description:     "Part payment",
		CashAccountCode: "4000",
	}

	suite.mockAccount.On("FindAccountByCode", ctx, controlCode).Return(suite.control, nil).Once()
	suite.mockAccount.On("FindAccountByCode", ctx, "4000").Return(suite.revenue, nil).Once()

	resp, err := suite.service.PostStudentPayment(ctx, suite.studentID, req, "user-1")

	suite.Require().Error(err)
	suite.Nil(resp)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockLedger.AssertNotCalled(suite.T(), "SavePosting", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *StudentLedgerServiceTestSuite) TestListStudentBalances_NilBecomesEmpty() {
	ctx := context.Background()

	suite.mockStudent.On("ListStudentBalances", ctx).Return(nil, nil).Once()

	balances, err := suite.service.ListStudentBalances(ctx)

	suite.Require().NoError(err)
	suite.NotNil(balances)
	suite.Empty(balances)
}

func TestStudentLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(StudentLedgerServiceTestSuite))
}
