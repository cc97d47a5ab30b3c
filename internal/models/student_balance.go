package models

import "github.com/shopspring/decimal"

// StudentBalance is the database representation of one student sub-ledger
// cache row.
type StudentBalance struct {
	StudentID    string          `db:"student_id"`
	EnrollmentID string          `db:"enrollment_id"`
	Balance      decimal.Decimal `db:"balance"`
	AuditFields
}
