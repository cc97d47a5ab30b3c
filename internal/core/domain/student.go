package domain

import "github.com/shopspring/decimal"

// StudentBalance is the cached sub-ledger balance for one (student,
// enrollment) pair. Positive means the student owes. The sum of all student
// balances must always equal the Accounts-Receivable control account's
// balance; the only writers are the student charge/payment entry points.
type StudentBalance struct {
	StudentID    string          `json:"studentID"`
	EnrollmentID string          `json:"enrollmentID"`
	Balance      decimal.Decimal `json:"balance"`
	AuditFields
}
