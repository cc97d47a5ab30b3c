package models

import "github.com/shopspring/decimal"

// PeriodBalance is the database representation of one (account, period)
// brought-down/carried-down snapshot row.
type PeriodBalance struct {
	AccountID          string          `db:"account_id"`
	Period             string          `db:"period"`
	BalanceBroughtDown decimal.Decimal `db:"balance_brought_down"`
	TotalDebits        decimal.Decimal `db:"total_debits"`
	TotalCredits       decimal.Decimal `db:"total_credits"`
	BalanceCarriedDown decimal.Decimal `db:"balance_carried_down"`
	TransactionCount   int             `db:"transaction_count"`
	AuditFields
}
