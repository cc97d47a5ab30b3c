package domain

import "github.com/shopspring/decimal"

// TrialBalanceRow is one account line in a trial balance report. Exactly
// one of DebitBalance/CreditBalance is non-zero per the account's side.
type TrialBalanceRow struct {
	AccountID     string          `json:"accountID"`
	AccountCode   string          `json:"accountCode"`
	AccountName   string          `json:"accountName"`
	AccountType   AccountType     `json:"accountType"`
	DebitBalance  decimal.Decimal `json:"debitBalance"`
	CreditBalance decimal.Decimal `json:"creditBalance"`
}

// ReportLine is one account line in an income statement or balance sheet.
type ReportLine struct {
	AccountID   string          `json:"accountID"`
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	NetAmount   decimal.Decimal `json:"netAmount"`
}

// IncomeStatementReport is revenue vs expense activity over a date range.
type IncomeStatementReport struct {
	Revenue      []ReportLine    `json:"revenue"`
	Expenses     []ReportLine    `json:"expenses"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	NetResult    decimal.Decimal `json:"netResult"`
}

// BalanceSheetReport is the asset/liability/equity position as of a date.
type BalanceSheetReport struct {
	Assets           []ReportLine    `json:"assets"`
	Liabilities      []ReportLine    `json:"liabilities"`
	Equity           []ReportLine    `json:"equity"`
	TotalAssets      decimal.Decimal `json:"totalAssets"`
	TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
	TotalEquity      decimal.Decimal `json:"totalEquity"`
}

// DebtorRow is one student line in the debtors report.
type DebtorRow struct {
	StudentID    string          `json:"studentID"`
	EnrollmentID string          `json:"enrollmentID"`
	Balance      decimal.Decimal `json:"balance"` // Positive = owes
}
