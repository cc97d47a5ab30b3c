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
	"github.com/tatenda10/alamait-sub008/internal/dto"
	"github.com/tatenda10/alamait-sub008/internal/middleware"
	"github.com/tatenda10/alamait-sub008/internal/utils/accounting"
)

// postingService is the journal-log writer. Every balance movement in the
// system flows through Post; the balance cache and period ledger are
// updated as a side effect of journal insertion, inside the same database
// transaction, so they can never diverge from the log on a committed write.
type postingService struct {
	ledgerRepo  portsrepo.LedgerRepository
	accountRepo portsrepo.AccountRepository
}

// NewPostingService creates a new posting service.
func NewPostingService(ledgerRepo portsrepo.LedgerRepository, accountRepo portsrepo.AccountRepository) portssvc.PostingSvcFacade {
	return &postingService{ledgerRepo: ledgerRepo, accountRepo: accountRepo}
}

var _ portssvc.PostingSvcFacade = (*postingService)(nil)

// Post validates and atomically records one balanced transaction. All
// preconditions are checked before any write; a failed precondition aborts
// the whole operation with a typed error and no partial state.
func (s *postingService) Post(ctx context.Context, req dto.PostTransactionRequest, creatorUserID string) (*domain.Transaction, error) {
	return s.post(ctx, req, creatorUserID, postOptions{})
}

// postOptions carries the internal knobs the student ledger and reversal
// paths need on top of a plain Post.
type postOptions struct {
	txnType      domain.TransactionType // overrides req.TxnType when set
	studentID    string
	enrollmentID string
	// studentDelta is the signed change to the student's owed balance,
	// applied in the same database transaction as the journal insert.
	studentDelta decimal.Decimal
	reverses     *string
}

func (s *postingService) post(ctx context.Context, req dto.PostTransactionRequest, creatorUserID string, opts postOptions) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	txnType := domain.TransactionType(req.TxnType)
	if opts.txnType != "" {
		txnType = opts.txnType
	}
	if txnType == "" {
		return nil, fmt.Errorf("%w: transaction type is required", apperrors.ErrValidation)
	}
	if req.Reference == "" {
		return nil, fmt.Errorf("%w: transaction reference is required", apperrors.ErrValidation)
	}
	if req.Description == "" {
		return nil, fmt.Errorf("%w: transaction description is required", apperrors.ErrValidation)
	}
	if len(req.Entries) < 2 {
		return nil, fmt.Errorf("%w: a transaction needs at least two journal entries", apperrors.ErrValidation)
	}

	// Distinct-accounts check: a transaction must affect at least two
	// different accounts.
	accountSet := make(map[string]struct{}, len(req.Entries))
	for _, e := range req.Entries {
		accountSet[e.AccountID] = struct{}{}
	}
	if len(accountSet) < 2 {
		return nil, fmt.Errorf("%w: a transaction must affect at least two accounts", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	transactionID := uuid.NewString()

	entries := make([]domain.JournalEntry, len(req.Entries))
	accountIDs := make([]string, 0, len(accountSet))
	for id := range accountSet {
		accountIDs = append(accountIDs, id)
	}
	for i, entryReq := range req.Entries {
		entries[i] = domain.JournalEntry{
			EntryID:       uuid.NewString(),
			TransactionID: transactionID,
			AccountID:     entryReq.AccountID,
			EntryType:     domain.EntryType(entryReq.EntryType),
			Amount:        entryReq.Amount,
			Description:   entryReq.Description,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     creatorUserID,
				LastUpdatedAt: now,
				LastUpdatedBy: creatorUserID,
			},
		}
	}

	// Double-entry check: positive amounts, debits == credits exactly.
	if err := accounting.ValidateBalanced(entries); err != nil {
		return nil, err
	}

	// Resolve accounts; every one must exist, be active and not deleted.
	accountsMap, err := s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
	if err != nil {
		logger.Error("Failed to fetch accounts for posting", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	accountTypes := make(map[string]domain.AccountType, len(accountIDs))
	for _, id := range accountIDs {
		acc, found := accountsMap[id]
		if !found || acc.DeletedAt != nil {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrInvalidAccount, id)
		}
		if !acc.IsActive {
			return nil, fmt.Errorf("%w: account %s is inactive", apperrors.ErrInvalidAccount, id)
		}
		accountTypes[id] = acc.AccountType
	}

	// Idempotency: a reference may be used once per transaction type among
	// non-voided transactions. This is the defense against re-run scripts
	// posting the same event twice.
	used, err := s.ledgerRepo.ReferenceExists(ctx, txnType, req.Reference)
	if err != nil {
		logger.Error("Failed to check transaction reference", slog.String("error", err.Error()), slog.String("reference", req.Reference))
		return nil, fmt.Errorf("failed to check reference: %w", err)
	}
	if used {
		logger.Warn("Duplicate transaction reference rejected", slog.String("reference", req.Reference), slog.String("txn_type", string(txnType)))
		return nil, fmt.Errorf("%w: %s", apperrors.ErrDuplicateReference, req.Reference)
	}

	// Net signed balance change per account, by the normal-balance rule.
	balanceChanges, err := accounting.BalanceChanges(entries, accountTypes)
	if err != nil {
		logger.Error("Failed to compute balance changes", slog.String("error", err.Error()))
		return nil, fmt.Errorf("internal error computing balance changes: %w", err)
	}

	periodDeltas := buildPeriodDeltas(req.TxnDate, entries, accountTypes)

	txn := domain.Transaction{
		TransactionID:         transactionID,
		TxnType:               txnType,
		Reference:             req.Reference,
		TxnDate:               req.TxnDate,
		Description:           req.Description,
		Status:                domain.Posted,
		Amount:                accounting.DebitTotal(entries),
		ReversesTransactionID: opts.reverses,
		StudentID:             opts.studentID,
		EnrollmentID:          opts.enrollmentID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	var studentDelta *portsrepo.StudentDelta
	if opts.studentID != "" {
		studentDelta = &portsrepo.StudentDelta{
			StudentID:    opts.studentID,
			EnrollmentID: opts.enrollmentID,
			Delta:        opts.studentDelta,
		}
	}

	if err := s.ledgerRepo.SavePosting(ctx, txn, entries, balanceChanges, periodDeltas, studentDelta); err != nil {
		logger.Error("Failed to save posting", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		return nil, fmt.Errorf("failed to save posting: %w", err)
	}

	logger.Info("Transaction posted",
		slog.String("transaction_id", transactionID),
		slog.String("txn_type", string(txnType)),
		slog.String("reference", req.Reference),
		slog.String("amount", txn.Amount.String()),
	)
	txn.Entries = nil
	return &txn, nil
}

// buildPeriodDeltas folds the entries into per-(account, period) activity
// contributions. All entries of one transaction land in the transaction
// date's period.
func buildPeriodDeltas(txnDate time.Time, entries []domain.JournalEntry, accountTypes map[string]domain.AccountType) []portsrepo.PeriodDelta {
	period := domain.PeriodOf(txnDate).Key()
	byAccount := make(map[string]*portsrepo.PeriodDelta)
	order := make([]string, 0, len(entries))
	for _, e := range entries {
		pd, ok := byAccount[e.AccountID]
		if !ok {
			pd = &portsrepo.PeriodDelta{
				AccountID: e.AccountID,
				Period:    period,
				TxnCount:  1,
				Normal:    accountTypes[e.AccountID].NormalBalance(),
			}
			byAccount[e.AccountID] = pd
			order = append(order, e.AccountID)
		}
		if e.EntryType == domain.Debit {
			pd.Debits = pd.Debits.Add(e.Amount)
		} else {
			pd.Credits = pd.Credits.Add(e.Amount)
		}
	}

	deltas := make([]portsrepo.PeriodDelta, 0, len(byAccount))
	for _, id := range order {
		deltas = append(deltas, *byAccount[id])
	}
	return deltas
}

// Reverse posts the exact mirror of a posted transaction: every debit
// becomes a credit and vice versa, dated now, linked to the original via
// reverses_transaction_id. The original is never mutated beyond receiving
// the back-link.
func (s *postingService) Reverse(ctx context.Context, transactionID, userID string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	original, err := s.ledgerRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Transaction not found for reversal", slog.String("transaction_id", transactionID))
		}
		return nil, err
	}

	if original.Status != domain.Posted || original.IsDeleted() {
		return nil, fmt.Errorf("%w: transaction %s is not posted", apperrors.ErrConflict, transactionID)
	}
	if original.ReversesTransactionID != nil {
		return nil, fmt.Errorf("%w: cannot reverse a reversal", apperrors.ErrConflict)
	}
	if original.ReversedByTransactionID != nil {
		return nil, fmt.Errorf("%w: transaction %s is already reversed", apperrors.ErrConflict, transactionID)
	}

	originalEntries, err := s.ledgerRepo.FindEntriesByTransactionID(ctx, transactionID)
	if err != nil {
		logger.Error("Failed to fetch entries for reversal", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		return nil, fmt.Errorf("failed to fetch original entries: %w", err)
	}

	now := time.Now().UTC()
	mirrored := make([]dto.EntryRequest, len(originalEntries))
	for i, e := range originalEntries {
		mirrored[i] = dto.EntryRequest{
			AccountID:   e.AccountID,
			EntryType:   string(e.EntryType.Opposite()),
			Amount:      e.Amount,
			Description: e.Description,
		}
	}

	opts := postOptions{
		txnType:  domain.TxnReversal,
		reverses: &original.TransactionID,
	}
	if original.StudentID != "" {
		// Mirror the sub-ledger effect too: a reversed charge reduces what
		// the student owes, a reversed payment restores it.
		opts.studentID = original.StudentID
		opts.enrollmentID = original.EnrollmentID
		opts.studentDelta = studentDeltaFor(original.TxnType, original.Amount).Neg()
	}

	// The reversal reference derives from the original's ID, not its
	// reference: references are only unique per transaction type, and all
	// reversals share one type.
	reversal, err := s.post(ctx, dto.PostTransactionRequest{
		Reference:   fmt.Sprintf("REV-%s", original.TransactionID),
		TxnDate:     now,
		Description: fmt.Sprintf("Reversal of: %s", original.Description),
		Entries:     mirrored,
	}, userID, opts)
	if err != nil {
		return nil, err
	}

	if err := s.ledgerRepo.MarkReversed(ctx, original.TransactionID, reversal.TransactionID, userID, now); err != nil {
		logger.Error("Failed to mark original transaction reversed",
			slog.String("original_id", original.TransactionID),
			slog.String("reversal_id", reversal.TransactionID),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to link reversal: %w", err)
	}

	logger.Info("Transaction reversed", slog.String("original_id", original.TransactionID), slog.String("reversal_id", reversal.TransactionID))
	return reversal, nil
}

// studentDeltaFor maps a transaction type to its effect on the student's
// owed balance: charges increase it, payments decrease it.
func studentDeltaFor(txnType domain.TransactionType, amount decimal.Decimal) decimal.Decimal {
	if txnType == domain.TxnPayment {
		return amount.Neg()
	}
	return amount
}

// GetTransaction retrieves a transaction with its entries.
func (s *postingService) GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	txn, err := s.ledgerRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find transaction", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		}
		return nil, err
	}

	entries, err := s.ledgerRepo.FindEntriesByTransactionID(ctx, transactionID)
	if err != nil {
		logger.Error("Failed to fetch entries for transaction", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		return nil, fmt.Errorf("failed to fetch entries for transaction %s: %w", transactionID, err)
	}
	txn.Entries = entries
	return txn, nil
}

// ListAccountEntries pages through an account's statement, newest first.
func (s *postingService) ListAccountEntries(ctx context.Context, accountID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	entries, nextToken, err := s.ledgerRepo.ListEntriesByAccount(ctx, accountID, limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list account entries", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	return &dto.ListEntriesResponse{
		Entries:   dto.ToEntryResponses(entries),
		NextToken: nextToken,
	}, nil
}
