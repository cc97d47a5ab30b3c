package dto

import (
	"github.com/shopspring/decimal"
)

// StudentChargeRequest bills a student: debit the AR control account,
// credit the given revenue account.
type StudentChargeRequest struct {
	EnrollmentID       string          `json:"enrollmentID" binding:"required"`
	Amount             decimal.Decimal `json:"amount" binding:"required"`
	Reference          string          `json:"reference" binding:"required"`
	Description        string          `json:"description" binding:"required"`
	RevenueAccountCode string          `json:"revenueAccountCode" binding:"required"`
}

// StudentPaymentRequest settles part of a student's balance: debit the
// given cash account, credit the AR control account.
type StudentPaymentRequest struct {
	EnrollmentID    string          `json:"enrollmentID" binding:"required"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	Reference       string          `json:"reference" binding:"required"`
	Description     string          `json:"description" binding:"required"`
	CashAccountCode string          `json:"cashAccountCode" binding:"required"`
}

// StudentPostingResponse is returned by both student entry points.
type StudentPostingResponse struct {
	TransactionID string          `json:"transactionID"`
	NewBalance    decimal.Decimal `json:"newBalance"`
}
