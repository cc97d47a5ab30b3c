package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReconcileScope selects what a reconciliation run covers: everything, one
// account, or one period. At most one of the fields may be set; both empty
// means a full sweep.
type ReconcileScope struct {
	// AccountID limits the run to one account.
	AccountID string
	// Period ("YYYY-MM") limits the run to accounts with activity in that
	// month, chain-checking from it forward.
	Period string
}

// RunStatus indicates the outcome of a reconciliation run.
type RunStatus string

const (
	RunCompleted   RunStatus = "COMPLETED"
	RunInterrupted RunStatus = "INTERRUPTED"
)

// DriftRecord captures one divergence between the balance cache and the
// value recomputed from the journal log. Drift is corrected in the cache
// but always surfaced here, never silently.
type DriftRecord struct {
	AccountID  string          `json:"accountID"`
	Cached     decimal.Decimal `json:"cached"`
	Recomputed decimal.Decimal `json:"recomputed"`
	Delta      decimal.Decimal `json:"delta"` // cached - recomputed
	Repaired   bool            `json:"repaired"`
}

// StudentDriftRecord captures sub-ledger drift for one student balance.
type StudentDriftRecord struct {
	StudentID    string          `json:"studentID"`
	EnrollmentID string          `json:"enrollmentID"`
	Cached       decimal.Decimal `json:"cached"`
	Recomputed   decimal.Decimal `json:"recomputed"`
	Delta        decimal.Decimal `json:"delta"`
	Repaired     bool            `json:"repaired"`
}

// ChainRepair records one period whose brought-down balance had to be
// re-chained to its predecessor's carried-down balance.
type ChainRepair struct {
	AccountID string          `json:"accountID"`
	Period    string          `json:"period"`
	OldCD     decimal.Decimal `json:"oldCarriedDown"`
	NewCD     decimal.Decimal `json:"newCarriedDown"`
}

// ReconciliationReport is the durable artifact of one reconciliation run.
type ReconciliationReport struct {
	RunID           string               `json:"runID"`
	Scope           string               `json:"scope"` // "all", an account ID, or a "YYYY-MM" period
	StartedAt       time.Time            `json:"startedAt"`
	FinishedAt      time.Time            `json:"finishedAt"`
	Status          RunStatus            `json:"status"`
	AccountsChecked int                  `json:"accountsChecked"`
	Drifted         []DriftRecord        `json:"drifted"`
	StudentDrifted  []StudentDriftRecord `json:"studentDrifted,omitempty"`
	ChainRepairs    []ChainRepair        `json:"chainRepairs,omitempty"`
}

// DuplicateGroup is a set of non-deleted posted transactions sharing the
// same reference, amount and date. Candidates for quarantine.
type DuplicateGroup struct {
	Reference      string          `json:"reference"`
	Amount         decimal.Decimal `json:"amount"`
	TxnDate        time.Time       `json:"txnDate"`
	TransactionIDs []string        `json:"transactionIDs"`
}
