package mapping

import (
	"github.com/tatenda10/alamait-sub008/internal/core/domain"
	"github.com/tatenda10/alamait-sub008/internal/models"
)

// ToDomainPeriodBalance converts a model PeriodBalance to its domain form.
func ToDomainPeriodBalance(m models.PeriodBalance) domain.PeriodBalance {
	return domain.PeriodBalance{
		AccountID:          m.AccountID,
		Period:             m.Period,
		BalanceBroughtDown: m.BalanceBroughtDown,
		TotalDebits:        m.TotalDebits,
		TotalCredits:       m.TotalCredits,
		BalanceCarriedDown: m.BalanceCarriedDown,
		TransactionCount:   m.TransactionCount,
		AuditFields:        ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainStudentBalance converts a model StudentBalance to its domain form.
func ToDomainStudentBalance(m models.StudentBalance) domain.StudentBalance {
	return domain.StudentBalance{
		StudentID:    m.StudentID,
		EnrollmentID: m.EnrollmentID,
		Balance:      m.Balance,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}
