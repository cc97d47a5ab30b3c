package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tatenda10/alamait-sub008/internal/core/domain"
)

func TestParsePeriod(t *testing.T) {
	p, err := domain.ParsePeriod("2025-03")
	require.NoError(t, err)
	assert.Equal(t, 2025, p.Year)
	assert.Equal(t, time.March, p.Month)

	_, err = domain.ParsePeriod("2025-13")
	assert.Error(t, err)

	_, err = domain.ParsePeriod("march-2025")
	assert.Error(t, err)
}

func TestPeriodKey(t *testing.T) {
	p := domain.Period{Year: 2025, Month: time.September}
	assert.Equal(t, "2025-09", p.Key())

	parsed, err := domain.ParsePeriod(p.Key())
	require.NoError(t, err)
	assert.Equal(t, p, parsed)
}

func TestPeriodOf(t *testing.T) {
	p := domain.PeriodOf(time.Date(2025, time.July, 31, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, "2025-07", p.Key())
}

func TestPeriodNextAndPrev(t *testing.T) {
	dec := domain.Period{Year: 2025, Month: time.December}
	jan := dec.Next()
	assert.Equal(t, "2026-01", jan.Key())
	assert.Equal(t, dec, jan.Prev())

	feb := domain.Period{Year: 2025, Month: time.February}
	assert.Equal(t, "2025-03", feb.Next().Key())
	assert.Equal(t, "2025-01", feb.Prev().Key())
}

func TestPeriodBefore(t *testing.T) {
	jan := domain.Period{Year: 2025, Month: time.January}
	feb := domain.Period{Year: 2025, Month: time.February}
	prevDec := domain.Period{Year: 2024, Month: time.December}

	assert.True(t, jan.Before(feb))
	assert.False(t, feb.Before(jan))
	assert.True(t, prevDec.Before(jan))
	assert.False(t, jan.Before(jan))
}

func TestCarriedDown(t *testing.T) {
	bd := decimal.NewFromInt(100)
	debits := decimal.NewFromInt(50)
	credits := decimal.NewFromInt(30)

	// Debit-normal accounts gain on debits.
	cd := domain.CarriedDown(bd, debits, credits, domain.DebitNormal)
	assert.True(t, decimal.NewFromInt(120).Equal(cd), "got %s", cd)

	// Credit-normal accounts gain on credits.
	cd = domain.CarriedDown(bd, debits, credits, domain.CreditNormal)
	assert.True(t, decimal.NewFromInt(80).Equal(cd), "got %s", cd)
}

func TestCarriedDown_ZeroActivity(t *testing.T) {
	bd := decimal.NewFromInt(42)
	cd := domain.CarriedDown(bd, decimal.Zero, decimal.Zero, domain.DebitNormal)
	assert.True(t, bd.Equal(cd))
}

func TestEntryTypeOpposite(t *testing.T) {
	assert.Equal(t, domain.Credit, domain.Debit.Opposite())
	assert.Equal(t, domain.Debit, domain.Credit.Opposite())
}

func TestAccountTypeNormalBalance(t *testing.T) {
	assert.Equal(t, domain.DebitNormal, domain.Asset.NormalBalance())
	assert.Equal(t, domain.DebitNormal, domain.Expense.NormalBalance())
	assert.Equal(t, domain.CreditNormal, domain.Liability.NormalBalance())
	assert.Equal(t, domain.CreditNormal, domain.Equity.NormalBalance())
	assert.Equal(t, domain.CreditNormal, domain.Revenue.NormalBalance())
}

func TestAccountTypeValid(t *testing.T) {
	assert.True(t, domain.Asset.Valid())
	assert.True(t, domain.Revenue.Valid())
	assert.False(t, domain.AccountType("PIGGY_BANK").Valid())
	assert.False(t, domain.AccountType("").Valid())
}
