package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Period identifies one accounting month, keyed as "YYYY-MM".
type Period struct {
	Year  int
	Month time.Month
}

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// ParsePeriod parses a "YYYY-MM" key.
func ParsePeriod(key string) (Period, error) {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return Period{}, fmt.Errorf("invalid period %q: %w", key, err)
	}
	return Period{Year: t.Year(), Month: t.Month()}, nil
}

// Key returns the "YYYY-MM" form used as the database key.
func (p Period) Key() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Next returns the following month.
func (p Period) Next() Period {
	t := time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return Period{Year: t.Year(), Month: t.Month()}
}

// Prev returns the preceding month.
func (p Period) Prev() Period {
	t := time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	return Period{Year: t.Year(), Month: t.Month()}
}

// Before reports whether p is chronologically before other.
func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Month < other.Month
}

// PeriodBalance is the brought-down/carried-down snapshot for one account
// and one month. Periods chain: the carried-down balance of period N must
// equal the brought-down balance of period N+1.
type PeriodBalance struct {
	AccountID          string          `json:"accountID"`
	Period             string          `json:"period"` // "YYYY-MM"
	BalanceBroughtDown decimal.Decimal `json:"balanceBroughtDown"`
	TotalDebits        decimal.Decimal `json:"totalDebits"`
	TotalCredits       decimal.Decimal `json:"totalCredits"`
	BalanceCarriedDown decimal.Decimal `json:"balanceCarriedDown"`
	TransactionCount   int             `json:"transactionCount"`
	AuditFields
}

// CarriedDown computes BD plus the signed period activity for the given
// normal-balance side. Debit-normal accounts gain on debits; credit-normal
// accounts gain on credits.
func CarriedDown(broughtDown, totalDebits, totalCredits decimal.Decimal, normal NormalBalance) decimal.Decimal {
	activity := totalDebits.Sub(totalCredits)
	if normal == CreditNormal {
		activity = activity.Neg()
	}
	return broughtDown.Add(activity)
}
