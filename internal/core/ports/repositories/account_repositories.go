package repositories

import (
	"context"
	"time"

	"github.com/tatenda10/alamait-sub008/internal/core/domain"
)

// AccountRepository persists the chart of accounts.
type AccountRepository interface {
	// SaveAccount inserts a new account. Returns apperrors.ErrDuplicate if
	// the code is already taken.
	SaveAccount(ctx context.Context, account domain.Account) error

	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)
	FindAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// FindAccountsByIDs returns the accounts keyed by ID; missing IDs are
	// simply absent from the map.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	ListAccounts(ctx context.Context, limit, offset int) ([]domain.Account, error)

	// UpdateAccount updates name/description/type. Callers are responsible
	// for the type-lock check.
	UpdateAccount(ctx context.Context, account domain.Account) error

	// DeactivateAccount soft-deactivates; history is kept.
	DeactivateAccount(ctx context.Context, accountID, userID string, now time.Time) error

	// HasEntries reports whether any journal entry references the account.
	HasEntries(ctx context.Context, accountID string) (bool, error)
}
