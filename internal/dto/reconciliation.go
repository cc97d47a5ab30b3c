package dto

// ReconcileRequest selects the scope of an on-demand reconciliation run.
// At most one of accountID and period may be set; an empty body reconciles
// every account.
type ReconcileRequest struct {
	AccountID string `json:"accountID"`
	Period    string `json:"period"` // "YYYY-MM"
}
