package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/tatenda10/alamait-sub008/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:        newPgxAccountRepository(dbPool),
		LedgerRepo:         newPgxLedgerRepository(dbPool),
		BalanceRepo:        newPgxBalanceRepository(dbPool),
		PeriodRepo:         newPgxPeriodRepository(dbPool),
		StudentBalanceRepo: newPgxStudentBalanceRepository(dbPool),
		ReconciliationRepo: newPgxReconciliationRepository(dbPool),
		ReportingRepo:      newPgxReportingRepository(dbPool),
	}
}
