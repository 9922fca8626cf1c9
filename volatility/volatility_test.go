package volatility

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratlab/optstrat/model"
	"github.com/stratlab/optstrat/ohlcv"
	"github.com/stratlab/optstrat/opterr"
	"github.com/stratlab/optstrat/pricing"
	"golang.org/x/exp/rand"
)

func contract(t *testing.T, style model.OptionStyle, strike, underlying, iv, days float64) *model.Options {
	t.Helper()
	exp, err := model.DaysFromFloat(days)
	require.NoError(t, err)
	return model.NewOptions(model.EuropeanType(), model.Long, "TEST",
		model.MustPositive(strike), exp, model.MustPositive(iv), model.POne,
		model.MustPositive(underlying), decimal.NewFromFloat(0.05), style, model.PZero)
}

func TestImpliedRoundTrip(t *testing.T) {
	for _, sigma := range []float64{0.1, 0.25, 0.5, 1.2} {
		o := contract(t, model.Call, 100, 100, sigma, 90)
		price, err := pricing.BlackScholes(o)
		require.NoError(t, err)

		o.ImpliedVolatility = model.MustPositive(0.3) // stale guess
		iv, err := Implied(o, price)
		require.NoError(t, err)
		assert.InDelta(t, sigma, iv.Float64(), 1e-4, "round trip at sigma=%v", sigma)
	}
}

func TestImpliedPutRoundTrip(t *testing.T) {
	o := contract(t, model.Put, 110, 100, 0.35, 45)
	price, err := pricing.BlackScholes(o)
	require.NoError(t, err)

	iv, err := Implied(o, price)
	require.NoError(t, err)
	assert.InDelta(t, 0.35, iv.Float64(), 1e-4)
}

func TestImpliedRejectsZeroTarget(t *testing.T) {
	o := contract(t, model.Call, 100, 100, 0.2, 30)
	_, err := Implied(o, model.PZero)
	var verr *opterr.VolatilityError
	require.ErrorAs(t, err, &verr)
}

func TestImpliedFailsBelowIntrinsic(t *testing.T) {
	// A deep ITM call is worth at least its intrinsic value for any
	// volatility, so a target below that has no root.
	o := contract(t, model.Call, 50, 100, 0.2, 90)
	_, err := Implied(o, model.MustPositive(10))
	require.Error(t, err)
}

func syntheticBars(t *testing.T, closes []float64) []ohlcv.Bar {
	t.Helper()
	bars := make([]ohlcv.Bar, len(closes))
	base := time.Date(2025, 1, 2, 21, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = ohlcv.Bar{
			Datetime: ohlcv.BarTime{Time: base.AddDate(0, 0, i)},
			Open:     model.MustPositive(c * 0.998),
			High:     model.MustPositive(c * 1.01),
			Low:      model.MustPositive(c * 0.99),
			Close:    model.MustPositive(c),
			Volume:   model.MustPositive(1000),
		}
	}
	return bars
}

func gbmCloses(n int, sigma float64, seed uint64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	dt := 1.0 / tradingDays
	closes := make([]float64, n)
	closes[0] = 100
	for i := 1; i < n; i++ {
		closes[i] = closes[i-1] * math.Exp(-0.5*sigma*sigma*dt+sigma*math.Sqrt(dt)*rng.NormFloat64())
	}
	return closes
}

func TestCloseToCloseRecoversVol(t *testing.T) {
	closes := gbmCloses(1000, 0.25, 17)
	got := CloseToClose(nil, nil, nil, closes)
	assert.InDelta(t, 0.25, got, 0.03)
}

func TestEstimatorsPositiveOnRealisticBars(t *testing.T) {
	bars := syntheticBars(t, gbmCloses(300, 0.2, 5))
	opens, highs, lows, closes := window(bars, 252)

	for name, est := range map[string]Estimator{
		"parkinson":       Parkinson,
		"garman_klass":    GarmanKlass,
		"rogers_satchell": RogersSatchell,
		"yang_zhang":      YangZhang,
	} {
		v := est(opens, highs, lows, closes)
		assert.Greater(t, v, 0.0, name)
		assert.Less(t, v, 2.0, name)
	}
}

func TestByPeriodSkipsShortHistories(t *testing.T) {
	bars := syntheticBars(t, gbmCloses(30, 0.2, 9))
	results := ByPeriod(bars, CloseToClose)
	assert.Contains(t, results, "1w")
	assert.Contains(t, results, "1m")
	assert.NotContains(t, results, "3m")
	assert.NotContains(t, results, "1y")
}

func TestParkinsonZeroOnFlatBars(t *testing.T) {
	highs := []float64{100, 100, 100}
	lows := []float64{100, 100, 100}
	assert.Zero(t, Parkinson(nil, highs, lows, nil))
}

func TestReturnsLength(t *testing.T) {
	closes := []float64{100, 101, 99, 102}
	r := Returns(closes)
	require.Len(t, r, 3)
	assert.InDelta(t, math.Log(101.0/100.0), r[0], 1e-12)
	assert.Nil(t, Returns([]float64{100}))
}

func TestEstimateGARCH11Constraints(t *testing.T) {
	returns := Returns(gbmCloses(500, 0.2, 23))
	g, err := EstimateGARCH11(returns, 7)
	require.NoError(t, err)
	assert.Greater(t, g.Omega, 0.0)
	assert.GreaterOrEqual(t, g.Alpha, 0.0)
	assert.GreaterOrEqual(t, g.Beta, 0.0)
	assert.Less(t, g.Alpha+g.Beta, 1.0)

	vol := g.ConditionalVolatility(returns)
	assert.Greater(t, vol, 0.0)
	assert.Less(t, vol, 2.0)
}

func TestEstimateGARCH11NeedsHistory(t *testing.T) {
	_, err := EstimateGARCH11(make([]float64, 10), 1)
	var verr *opterr.VolatilityError
	require.ErrorAs(t, err, &verr)
}
