package accounting

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tatenda10/alamait-sub008/internal/apperrors"
	"github.com/tatenda10/alamait-sub008/internal/core/domain"
)

// SignedAmount applies the normal-balance sign rule to an entry amount.
// DEBIT to ASSET/EXPENSE -> Positive (+)
// CREDIT to ASSET/EXPENSE -> Negative (-)
// DEBIT to LIABILITY/EQUITY/REVENUE -> Negative (-)
// CREDIT to LIABILITY/EQUITY/REVENUE -> Positive (+)
// This is used in both services and repositories so balance math is
// computed identically everywhere.
func SignedAmount(entryType domain.EntryType, accountType domain.AccountType, amount decimal.Decimal) (decimal.Decimal, error) {
	if !accountType.Valid() {
		return decimal.Zero, fmt.Errorf("unknown account type %q", accountType)
	}
	isDebit := entryType == domain.Debit
	switch accountType.NormalBalance() {
	case domain.DebitNormal:
		if !isDebit {
			return amount.Neg(), nil
		}
	case domain.CreditNormal:
		if isDebit {
			return amount.Neg(), nil
		}
	}
	return amount, nil
}

// ValidateAmount rejects amounts that are non-positive or finer than the
// currency's minor unit (two decimal places). Amounts are never rounded.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return apperrors.ErrNonPositiveAmount
	}
	if amount.Exponent() < -2 {
		return fmt.Errorf("%w: %s has sub-cent precision", apperrors.ErrNonPositiveAmount, amount.String())
	}
	return nil
}

// ValidateBalanced checks the double-entry invariant over a set of entries:
// at least two lines, every amount positive, and the debit sum exactly
// equal to the credit sum.
func ValidateBalanced(entries []domain.JournalEntry) error {
	if len(entries) < 2 {
		return fmt.Errorf("%w: a transaction needs at least two journal entries", apperrors.ErrValidation)
	}

	debits := decimal.Zero
	credits := decimal.Zero
	for _, e := range entries {
		if err := ValidateAmount(e.Amount); err != nil {
			return fmt.Errorf("account %s: %w", e.AccountID, err)
		}
		if e.EntryType == domain.Debit {
			debits = debits.Add(e.Amount)
		} else {
			credits = credits.Add(e.Amount)
		}
	}

	if !debits.Equal(credits) {
		return fmt.Errorf("%w: debits %s, credits %s", apperrors.ErrUnbalancedEntry, debits.String(), credits.String())
	}
	return nil
}

// DebitTotal sums the debit side of a balanced entry set; this is the
// economic value of the transaction.
func DebitTotal(entries []domain.JournalEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		if e.EntryType == domain.Debit {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// BalanceChanges folds a set of entries into per-account signed deltas
// using the normal-balance rule. accountTypes must contain every account
// referenced by the entries.
func BalanceChanges(entries []domain.JournalEntry, accountTypes map[string]domain.AccountType) (map[string]decimal.Decimal, error) {
	changes := make(map[string]decimal.Decimal, len(entries))
	for _, e := range entries {
		accType, ok := accountTypes[e.AccountID]
		if !ok {
			return nil, fmt.Errorf("account type not found for account %s", e.AccountID)
		}
		signed, err := SignedAmount(e.EntryType, accType, e.Amount)
		if err != nil {
			return nil, err
		}
		changes[e.AccountID] = changes[e.AccountID].Add(signed)
	}
	return changes, nil
}
