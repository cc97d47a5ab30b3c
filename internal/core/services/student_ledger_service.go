package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tatenda10/alamait-sub008/internal/apperrors"
	"github.com/tatenda10/alamait-sub008/internal/core/domain"
	portsrepo "github.com/tatenda10/alamait-sub008/internal/core/ports/repositories"
	portssvc "github.com/tatenda10/alamait-sub008/internal/core/ports/services"
	"github.com/tatenda10/alamait-sub008/internal/dto"
	"github.com/tatenda10/alamait-sub008/internal/middleware"
)

// studentLedgerService binds the student sub-ledger to the AR control
// account. Every charge and payment posts a full double-entry transaction
// through the journal writer and moves the cached student balance inside
// that same database transaction, so the sub-ledger can never drift from
// the control account on a committed write.
type studentLedgerService struct {
	posting     *postingService
	accountRepo portsrepo.AccountRepository
	studentRepo portsrepo.StudentBalanceRepository

	controlAccountCode string
}

// NewStudentLedgerService creates a new student sub-ledger service.
func NewStudentLedgerService(ledgerRepo portsrepo.LedgerRepository, accountRepo portsrepo.AccountRepository, studentRepo portsrepo.StudentBalanceRepository, controlAccountCode string) portssvc.StudentLedgerSvcFacade {
	return &studentLedgerService{
		posting:            &postingService{ledgerRepo: ledgerRepo, accountRepo: accountRepo},
		accountRepo:        accountRepo,
		studentRepo:        studentRepo,
		controlAccountCode: controlAccountCode,
	}
}

var _ portssvc.StudentLedgerSvcFacade = (*studentLedgerService)(nil)

// PostStudentCharge bills a student: debit AR control, credit the revenue
// account. The student's owed balance increases by the amount.
func (s *studentLedgerService) PostStudentCharge(ctx context.Context, studentID string, req dto.StudentChargeRequest, userID string) (*dto.StudentPostingResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	control, revenue, err := s.resolvePair(ctx, req.RevenueAccountCode)
	if err != nil {
		return nil, err
	}
	if revenue.AccountType != domain.Revenue {
		return nil, fmt.Errorf("%w: account %s is not a revenue account", apperrors.ErrValidation, revenue.Code)
	}

	txn, err := s.posting.post(ctx, dto.PostTransactionRequest{
		Reference:   req.Reference,
		TxnDate:     time.Now().UTC(),
		Description: req.Description,
		Entries: []dto.EntryRequest{
			{AccountID: control.AccountID, EntryType: string(domain.Debit), Amount: req.Amount, Description: req.Description},
			{AccountID: revenue.AccountID, EntryType: string(domain.Credit), Amount: req.Amount, Description: req.Description},
		},
	}, userID, postOptions{
		txnType:      domain.TxnCharge,
		studentID:    studentID,
		enrollmentID: req.EnrollmentID,
		studentDelta: req.Amount,
	})
	if err != nil {
		return nil, err
	}

	balance, err := s.currentBalance(ctx, studentID, req.EnrollmentID)
	if err != nil {
		logger.Error("Charge posted but balance read failed", slog.String("error", err.Error()), slog.String("student_id", studentID))
		return nil, err
	}

	logger.Info("Student charged",
		slog.String("student_id", studentID),
		slog.String("transaction_id", txn.TransactionID),
		slog.String("amount", req.Amount.String()),
	)
	return &dto.StudentPostingResponse{TransactionID: txn.TransactionID, NewBalance: balance}, nil
}

// PostStudentPayment settles part of a student's balance: debit the cash
// account, credit AR control. The student's owed balance decreases; paying
// past zero is allowed and leaves the balance negative (credit in favor of
// the student).
func (s *studentLedgerService) PostStudentPayment(ctx context.Context, studentID string, req dto.StudentPaymentRequest, userID string) (*dto.StudentPostingResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	control, cash, err := s.resolvePair(ctx, req.CashAccountCode)
	if err != nil {
		return nil, err
	}
	if cash.AccountType != domain.Asset {
		return nil, fmt.Errorf("%w: account %s is not an asset account", apperrors.ErrValidation, cash.Code)
	}

	txn, err := s.posting.post(ctx, dto.PostTransactionRequest{
		Reference:   req.Reference,
		TxnDate:     time.Now().UTC(),
		Description: req.Description,
		Entries: []dto.EntryRequest{
			{AccountID: cash.AccountID, EntryType: string(domain.Debit), Amount: req.Amount, Description: req.Description},
			{AccountID: control.AccountID, EntryType: string(domain.Credit), Amount: req.Amount, Description: req.Description},
		},
	}, userID, postOptions{
		txnType:      domain.TxnPayment,
		studentID:    studentID,
		enrollmentID: req.EnrollmentID,
		studentDelta: req.Amount.Neg(),
	})
	if err != nil {
		return nil, err
	}

	balance, err := s.currentBalance(ctx, studentID, req.EnrollmentID)
	if err != nil {
		logger.Error("Payment posted but balance read failed", slog.String("error", err.Error()), slog.String("student_id", studentID))
		return nil, err
	}

	logger.Info("Student payment recorded",
		slog.String("student_id", studentID),
		slog.String("transaction_id", txn.TransactionID),
		slog.String("amount", req.Amount.String()),
	)
	return &dto.StudentPostingResponse{TransactionID: txn.TransactionID, NewBalance: balance}, nil
}

func (s *studentLedgerService) GetStudentBalance(ctx context.Context, studentID, enrollmentID string) (*domain.StudentBalance, error) {
	return s.studentRepo.GetStudentBalance(ctx, studentID, enrollmentID)
}

func (s *studentLedgerService) ListStudentBalances(ctx context.Context) ([]domain.StudentBalance, error) {
	balances, err := s.studentRepo.ListStudentBalances(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list student balances: %w", err)
	}
	if balances == nil {
		return []domain.StudentBalance{}, nil
	}
	return balances, nil
}

// resolvePair resolves the AR control account and the counterpart account
// by code.
func (s *studentLedgerService) resolvePair(ctx context.Context, counterpartCode string) (control, counterpart *domain.Account, err error) {
	control, err = s.accountRepo.FindAccountByCode(ctx, s.controlAccountCode)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve control account %s: %w", s.controlAccountCode, err)
	}
	counterpart, err = s.accountRepo.FindAccountByCode(ctx, counterpartCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrInvalidAccount, counterpartCode)
		}
		return nil, nil, err
	}
	return control, counterpart, nil
}

func (s *studentLedgerService) currentBalance(ctx context.Context, studentID, enrollmentID string) (decimal.Decimal, error) {
	sb, err := s.studentRepo.GetStudentBalance(ctx, studentID, enrollmentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return sb.Balance, nil
}
