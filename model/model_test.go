package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratlab/optstrat/opterr"
)

func TestNewPositiveRejectsNegative(t *testing.T) {
	_, err := NewPositive(-1)
	var perr *opterr.PositiveError
	require.ErrorAs(t, err, &perr)

	p, err := NewPositive(0)
	require.NoError(t, err)
	assert.True(t, p.IsZero())
}

func TestPositiveSubUnderflow(t *testing.T) {
	a := MustPositive(3)
	b := MustPositive(5)

	_, err := a.Sub(b)
	var perr *opterr.PositiveError
	require.ErrorAs(t, err, &perr)

	assert.True(t, a.SubOrZero(b).IsZero())
	diff, err := b.Sub(a)
	require.NoError(t, err)
	assert.InDelta(t, 2, diff.Float64(), 1e-12)
}

func TestPositiveDivByZero(t *testing.T) {
	_, err := MustPositive(1).Div(PZero)
	var perr *opterr.PositiveError
	require.ErrorAs(t, err, &perr)
}

func TestPositiveOrdering(t *testing.T) {
	a := MustPositive(1.5)
	b := MustPositive(2.5)
	assert.True(t, a.LessThan(b))
	assert.True(t, b.GreaterThan(a))
	assert.True(t, b.Equal(a.Max(b)))
	assert.True(t, a.Equal(a.Min(b)))
	assert.Equal(t, -1, a.Cmp(b))
}

func TestPositiveCSVCells(t *testing.T) {
	var p Positive
	require.NoError(t, p.UnmarshalCSV("12.50"))
	assert.InDelta(t, 12.5, p.Float64(), 1e-12)

	s, err := p.MarshalCSV()
	require.NoError(t, err)
	assert.Equal(t, "12.5", s)

	require.Error(t, p.UnmarshalCSV("-4"))
}

func TestSideSign(t *testing.T) {
	assert.True(t, Long.Sign().Equal(decimal.NewFromInt(1)))
	assert.True(t, Short.Sign().Equal(decimal.NewFromInt(-1)))
}

func TestExpirationDays(t *testing.T) {
	rel := Days(MustPositive(30))
	d, err := rel.Days()
	require.NoError(t, err)
	assert.InDelta(t, 30, d.Float64(), 1e-12)

	yf, err := rel.YearFraction()
	require.NoError(t, err)
	assert.InDelta(t, 30.0/365, yf.Float64(), 1e-12)

	abs := AtDate(time.Now().UTC().Add(48 * time.Hour))
	d, err = abs.Days()
	require.NoError(t, err)
	assert.InDelta(t, 2, d.Float64(), 0.01)
}

func TestExpiredAbsoluteDateFails(t *testing.T) {
	abs := AtDate(time.Now().UTC().Add(-24 * time.Hour))
	_, err := abs.Days()
	var oerr *opterr.OptionsError
	require.ErrorAs(t, err, &oerr)
}

func TestExpirationAddDaysSaturates(t *testing.T) {
	rel := Days(MustPositive(5))
	shifted := rel.AddDays(decimal.NewFromInt(-3))
	d, err := shifted.Days()
	require.NoError(t, err)
	assert.InDelta(t, 2, d.Float64(), 1e-12)

	floor := rel.AddDays(decimal.NewFromInt(-10))
	d, err = floor.Days()
	require.NoError(t, err)
	assert.True(t, d.IsZero())
}

func TestParseExpiration(t *testing.T) {
	abs, err := ParseExpiration("2026-12-18")
	require.NoError(t, err)
	assert.True(t, abs.IsAbsolute())
	assert.Equal(t, "2026-12-18", abs.String())

	rel, err := ParseExpiration("45")
	require.NoError(t, err)
	assert.False(t, rel.IsAbsolute())
	assert.Equal(t, "45", rel.String())

	_, err = ParseExpiration("soon")
	require.Error(t, err)
}

func testOption(side Side, style OptionStyle, strike float64) *Options {
	return NewOptions(EuropeanType(), side, "TEST",
		MustPositive(strike), Days(MustPositive(30)), MustPositive(0.2), POne,
		MustPositive(100), decimal.NewFromFloat(0.05), style, PZero)
}

func TestIntrinsicValue(t *testing.T) {
	call := testOption(Long, Call, 90)
	assert.InDelta(t, 10, call.IntrinsicValue(call.UnderlyingPrice).Float64(), 1e-12)
	assert.True(t, call.IsITM())

	put := testOption(Long, Put, 90)
	assert.True(t, put.IntrinsicValue(put.UnderlyingPrice).IsZero())
	assert.False(t, put.IsITM())
}

func TestPayoffSignedByScaledSide(t *testing.T) {
	long := testOption(Long, Call, 90)
	long.Quantity = MustPositive(2)
	assert.True(t, long.Payoff().Equal(decimal.NewFromInt(20)))

	short := testOption(Short, Call, 90)
	short.Quantity = MustPositive(2)
	assert.True(t, short.Payoff().Equal(decimal.NewFromInt(-20)))
}

func TestOptionsValidate(t *testing.T) {
	ok := testOption(Long, Call, 100)
	require.NoError(t, ok.Validate())

	bad := testOption(Long, Call, 100)
	bad.ImpliedVolatility = PZero
	var oerr *opterr.OptionsError
	require.ErrorAs(t, bad.Validate(), &oerr)
	assert.Equal(t, "implied_volatility", oerr.Field)
}

func TestCloneIsDeep(t *testing.T) {
	o := testOption(Long, Call, 100)
	o.Exotic = ExoticParams{"rho": decimal.NewFromFloat(0.5)}
	c := o.Clone()
	c.Exotic["rho"] = decimal.NewFromFloat(0.9)
	c.StrikePrice = MustPositive(120)

	assert.True(t, o.Exotic["rho"].Equal(decimal.NewFromFloat(0.5)))
	assert.InDelta(t, 100, o.StrikePrice.Float64(), 1e-12)
}

func TestPositionEconomics(t *testing.T) {
	opt := testOption(Short, Put, 95)
	opt.Quantity = MustPositive(2)
	p := NewPosition(*opt, decimal.NewFromFloat(3.5), time.Now(), MustPositive(0.5), MustPositive(0.5))

	assert.True(t, p.IsShort())
	assert.InDelta(t, 2, p.Fees().Float64(), 1e-12)
	assert.InDelta(t, 7, p.PremiumReceived().Float64(), 1e-12)
	assert.InDelta(t, 2, p.TotalCost().Float64(), 1e-12, "short legs pay fees only")

	long := NewPosition(*testOption(Long, Call, 100), decimal.NewFromFloat(4), time.Now(), MustPositive(0.5), MustPositive(0.5))
	assert.InDelta(t, 5, long.TotalCost().Float64(), 1e-12)
	assert.True(t, long.PremiumReceived().IsZero())
}

func TestGreekAddAndScale(t *testing.T) {
	a := Greek{Delta: decimal.NewFromFloat(0.4), Vega: decimal.NewFromFloat(10)}
	b := Greek{Delta: decimal.NewFromFloat(-0.1), Vega: decimal.NewFromFloat(2)}

	sum := a.Add(b)
	assert.True(t, sum.Delta.Equal(decimal.NewFromFloat(0.3)))
	assert.True(t, sum.Vega.Equal(decimal.NewFromFloat(12)))

	doubled := a.Scale(decimal.NewFromInt(2))
	assert.True(t, doubled.Delta.Equal(decimal.NewFromFloat(0.8)))
}

func TestTimeFrameDays(t *testing.T) {
	assert.True(t, Day.InDays().Equal(decimal.NewFromInt(1)))
	assert.True(t, Week.InDays().Equal(decimal.NewFromInt(7)))
	assert.Equal(t, "day", Day.String())
	assert.True(t, Day.PeriodsPerYear().GreaterThan(Week.PeriodsPerYear()))
}
