package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the operation conflicts with the current state of the resource.
var ErrConflict = errors.New("operation conflicts with resource state")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// Ledger posting errors. All are rejected synchronously before any write.
var (
	// ErrUnbalancedEntry indicates the debit and credit sides of a posting do not match.
	ErrUnbalancedEntry = fmt.Errorf("%w: journal entries do not balance", ErrValidation)

	// ErrInvalidAccount indicates an entry references an unknown or deactivated account.
	ErrInvalidAccount = fmt.Errorf("%w: unknown or inactive account", ErrValidation)

	// ErrNonPositiveAmount indicates an entry amount that is zero, negative, or finer than the currency minor unit.
	ErrNonPositiveAmount = fmt.Errorf("%w: entry amount must be positive in whole cents", ErrValidation)

	// ErrDuplicateReference indicates the reference was already used by a non-voided transaction of the same type.
	ErrDuplicateReference = fmt.Errorf("%w: transaction reference already used", ErrDuplicate)

	// ErrAccountTypeLocked indicates an attempt to change an account's type after it has postings.
	ErrAccountTypeLocked = fmt.Errorf("%w: account type is locked once the account has postings", ErrConflict)

	// ErrChainBroken indicates a period brought-down balance that does not match the prior period's carried-down balance.
	ErrChainBroken = errors.New("period balance chain broken")
)

// AppError carries an HTTP-ish status code alongside the wrapped cause.
// Repositories use it to attach context to infrastructure failures.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError wrapping the given cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that unwraps to ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}
