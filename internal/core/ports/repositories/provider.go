package repositories

// RepositoryProvider bundles the concrete repositories handed to the
// service layer at startup.
type RepositoryProvider struct {
	AccountRepo        AccountRepository
	LedgerRepo         LedgerRepository
	BalanceRepo        BalanceRepository
	PeriodRepo         PeriodRepository
	StudentBalanceRepo StudentBalanceRepository
	ReconciliationRepo ReconciliationRepository
	ReportingRepo      ReportingRepository
}
