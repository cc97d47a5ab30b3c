package services

// ServiceContainer bundles the service facades handed to the HTTP layer.
type ServiceContainer struct {
	Account        AccountSvcFacade
	Posting        PostingSvcFacade
	Materializer   MaterializerSvcFacade
	Period         PeriodSvcFacade
	Reconciliation ReconciliationSvcFacade
	StudentLedger  StudentLedgerSvcFacade
	Reporting      ReportingSvcFacade
}
