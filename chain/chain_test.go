package chain

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratlab/optstrat/model"
	"github.com/stratlab/optstrat/opterr"
)

func testBuildParams(t *testing.T) *OptionChainBuildParams {
	t.Helper()
	underlying := model.MustPositive(100)
	exp := model.Days(model.MustPositive(30))
	rate := decimal.NewFromFloat(0.05)
	dividend := model.PZero
	interval := model.POne
	volume := model.MustPositive(500)
	return &OptionChainBuildParams{
		Symbol:            "TEST",
		Volume:            &volume,
		ChainSize:         10,
		StrikeInterval:    &interval,
		SkewSlope:         decimal.NewFromFloat(-0.2),
		SmileCurve:        decimal.NewFromFloat(0.4),
		Spread:            model.MustPositive(0.02),
		DecimalPlaces:     2,
		ImpliedVolatility: model.MustPositive(0.20),
		PriceParams: OptionDataPriceParams{
			UnderlyingPrice: &underlying,
			ExpirationDate:  &exp,
			RiskFreeRate:    &rate,
			DividendYield:   &dividend,
		},
	}
}

func TestBuildChainStrikeGrid(t *testing.T) {
	params := testBuildParams(t)
	c, err := BuildChain(params)
	require.NoError(t, err)
	require.Equal(t, 21, c.Len())

	strikes := c.Strikes()
	for i, s := range strikes {
		want := 90 + float64(i)
		assert.InDelta(t, want, s.Float64(), 1e-9)
		if i > 0 {
			assert.True(t, strikes[i-1].LessThan(s), "strikes must ascend")
		}
	}
	atm, err := c.AtmStrike()
	require.NoError(t, err)
	assert.InDelta(t, 100, atm.Float64(), 1e-9)
}

func TestBuildChainQuoteConsistency(t *testing.T) {
	c, err := BuildChain(testBuildParams(t))
	require.NoError(t, err)
	for _, row := range c.Options {
		require.NotNil(t, row.CallBid)
		require.NotNil(t, row.CallAsk)
		require.NotNil(t, row.PutBid)
		require.NotNil(t, row.PutAsk)
		assert.False(t, row.CallAsk.LessThan(*row.CallBid), "call ask below bid at %s", row.StrikePrice)
		assert.False(t, row.PutAsk.LessThan(*row.PutBid), "put ask below bid at %s", row.StrikePrice)
		assert.False(t, row.ImpliedVolatility.IsZero())
	}
}

func TestBuildChainSmileShape(t *testing.T) {
	c, err := BuildChain(testBuildParams(t))
	require.NoError(t, err)
	atmRow, err := c.atmRow()
	require.NoError(t, err)
	low := c.Options[0]
	// negative skew with positive smile lifts the low wing
	assert.True(t, low.ImpliedVolatility.GreaterThan(atmRow.ImpliedVolatility))
}

func TestUpdateGreeksPopulatesRows(t *testing.T) {
	c, err := BuildChain(testBuildParams(t))
	require.NoError(t, err)
	for _, row := range c.Options {
		require.NotNil(t, row.DeltaCall)
		require.NotNil(t, row.DeltaPut)
		require.NotNil(t, row.Gamma)
		assert.True(t, row.DeltaCall.IsPositive())
		assert.True(t, row.DeltaPut.IsNegative())
		assert.True(t, row.Gamma.IsPositive())
		// put-call delta parity up to the dividend discount
		sum := row.DeltaCall.Sub(*row.DeltaPut)
		assert.InDelta(t, 1.0, sum.InexactFloat64(), 0.02)
	}
}

func TestAddOptionOverwritesExistingStrike(t *testing.T) {
	c, err := New("TEST", model.MustPositive(100), "30", decimal.NewFromFloat(0.05), model.PZero)
	require.NoError(t, err)

	iv := model.MustPositive(0.2)
	require.NoError(t, c.AddOption(&OptionData{StrikePrice: model.MustPositive(100), ImpliedVolatility: iv}))
	require.NoError(t, c.AddOption(&OptionData{StrikePrice: model.MustPositive(95), ImpliedVolatility: iv}))

	bid := model.MustPositive(1.5)
	ask := model.MustPositive(1.7)
	require.NoError(t, c.AddOption(&OptionData{
		StrikePrice:       model.MustPositive(100),
		ImpliedVolatility: model.MustPositive(0.25),
		CallBid:           &bid,
		CallAsk:           &ask,
	}))

	require.Equal(t, 2, c.Len())
	row, ok := c.RowAt(model.MustPositive(100))
	require.True(t, ok)
	assert.InDelta(t, 0.25, row.ImpliedVolatility.Float64(), 1e-12)
	require.NotNil(t, row.CallBid)
	assert.InDelta(t, 1.5, row.CallBid.Float64(), 1e-12)
}

func TestAddOptionRejectsCrossedQuotes(t *testing.T) {
	c, err := New("TEST", model.MustPositive(100), "30", decimal.Zero, model.PZero)
	require.NoError(t, err)
	bid := model.MustPositive(2.0)
	ask := model.MustPositive(1.0)
	err = c.AddOption(&OptionData{
		StrikePrice:       model.MustPositive(100),
		ImpliedVolatility: model.MustPositive(0.2),
		CallBid:           &bid,
		CallAsk:           &ask,
	})
	var cerr *opterr.ChainError
	require.ErrorAs(t, err, &cerr)
}

func TestUpdateMidPricesFillsMissingQuotes(t *testing.T) {
	c, err := New("TEST", model.MustPositive(100), "30", decimal.NewFromFloat(0.05), model.PZero)
	require.NoError(t, err)
	c.Spread = model.MustPositive(0.02)
	require.NoError(t, c.AddOption(&OptionData{StrikePrice: model.MustPositive(100), ImpliedVolatility: model.MustPositive(0.2)}))

	require.NoError(t, c.UpdateMidPrices())
	row := c.Options[0]
	require.NotNil(t, row.CallBid)
	require.NotNil(t, row.CallAsk)
	assert.InDelta(t, 0.02, row.CallAsk.Float64()-row.CallBid.Float64(), 1e-9)
}

func TestToBuildParamsRoundTrip(t *testing.T) {
	params := testBuildParams(t)
	c, err := BuildChain(params)
	require.NoError(t, err)

	back, err := c.ToBuildParams()
	require.NoError(t, err)
	assert.Equal(t, "TEST", back.Symbol)
	assert.Equal(t, 10, back.ChainSize)
	require.NotNil(t, back.StrikeInterval)
	assert.InDelta(t, 1.0, back.StrikeInterval.Float64(), 1e-9)
	assert.InDelta(t, 0.02, back.Spread.Float64(), 1e-9)
	assert.InDelta(t, params.SkewSlope.InexactFloat64(), back.SkewSlope.InexactFloat64(), 1e-9)
	assert.InDelta(t, params.SmileCurve.InexactFloat64(), back.SmileCurve.InexactFloat64(), 1e-9)

	rebuilt, err := BuildChain(back)
	require.NoError(t, err)
	assert.Equal(t, c.Len(), rebuilt.Len())
}

func TestGetRandomPositionsDeterministicBySeed(t *testing.T) {
	c, err := BuildChain(testBuildParams(t))
	require.NoError(t, err)

	two := 2
	one := 1
	params := &RandomPositionsParams{
		QtyCallsLong:  &two,
		QtyPutsShort:  &one,
		Quantity:      model.POne,
		OpenFee:       model.MustPositive(0.65),
		CloseFee:      model.MustPositive(0.65),
		Seed:          7,
	}
	first, err := c.GetRandomPositions(params)
	require.NoError(t, err)
	require.Len(t, first, 3)

	second, err := c.GetRandomPositions(params)
	require.NoError(t, err)
	for i := range first {
		assert.True(t, first[i].Option.StrikePrice.Equal(second[i].Option.StrikePrice))
		assert.Equal(t, first[i].Option.Side, second[i].Option.Side)
		assert.NotEmpty(t, first[i].Epic)
		assert.NotEqual(t, first[i].Epic, second[i].Epic, "epics are unique per draw")
	}

	longs := 0
	for _, p := range first {
		if p.IsLong() {
			longs++
			assert.Equal(t, model.Call, p.Option.Style)
		} else {
			assert.Equal(t, model.Put, p.Option.Style)
		}
	}
	assert.Equal(t, 2, longs)
}

func TestGetRandomPositionsEmptyChain(t *testing.T) {
	c, err := New("TEST", model.MustPositive(100), "30", decimal.Zero, model.PZero)
	require.NoError(t, err)
	one := 1
	_, err = c.GetRandomPositions(&RandomPositionsParams{QtyCallsLong: &one})
	var cerr *opterr.ChainError
	require.ErrorAs(t, err, &cerr)
}

func TestChainCSVRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c, err := BuildChain(testBuildParams(t))
	require.NoError(t, err)

	path, err := c.SaveCSV(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "TEST-30-100.csv"), path)

	loaded, err := LoadCSV(path, "TEST", model.MustPositive(100), "30", decimal.NewFromFloat(0.05), model.PZero)
	require.NoError(t, err)
	require.Equal(t, c.Len(), loaded.Len())
	for i, row := range loaded.Options {
		orig := c.Options[i]
		assert.True(t, row.StrikePrice.Equal(orig.StrikePrice))
		require.NotNil(t, row.CallBid)
		assert.True(t, row.CallBid.Equal(*orig.CallBid))
		assert.InDelta(t, orig.ImpliedVolatility.Float64(), row.ImpliedVolatility.Float64(), 1e-9)
	}
}

func TestChainJSONRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c, err := BuildChain(testBuildParams(t))
	require.NoError(t, err)

	path, err := c.SaveJSON(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "TEST-30-100.json"), path)

	loaded, err := LoadJSON(path)
	require.NoError(t, err)
	assert.Equal(t, c.Symbol, loaded.Symbol)
	assert.True(t, c.UnderlyingPrice.Equal(loaded.UnderlyingPrice))
	require.Equal(t, c.Len(), loaded.Len())
	for i, row := range loaded.Options {
		assert.True(t, row.StrikePrice.Equal(c.Options[i].StrikePrice))
	}
}

func TestSeriesOrdersChainsByExpiration(t *testing.T) {
	s := NewSeries("TEST", model.MustPositive(100))
	for _, days := range []string{"60", "30", "90"} {
		params := testBuildParams(t)
		exp, err := model.ParseExpiration(days)
		require.NoError(t, err)
		params.PriceParams.ExpirationDate = &exp
		c, err := BuildChain(params)
		require.NoError(t, err)
		require.NoError(t, s.AddChain(c))
	}
	require.Equal(t, 3, s.Len())
	exps := s.Expirations()
	for i := 1; i < len(exps); i++ {
		assert.True(t, exps[i-1].Less(exps[i]))
	}

	curve, err := s.AtmTermStructure()
	require.NoError(t, err)
	assert.Equal(t, 3, curve.Len())
}

func TestMetricsOnEmptyChainFail(t *testing.T) {
	c, err := New("TEST", model.MustPositive(100), "30", decimal.Zero, model.PZero)
	require.NoError(t, err)
	_, err = c.IVCurve()
	var merr *opterr.MetricsError
	require.ErrorAs(t, err, &merr)
}

func TestMetricCurvesCoverEveryStrike(t *testing.T) {
	c, err := BuildChain(testBuildParams(t))
	require.NoError(t, err)

	curves := map[string]func() (interface{ Len() int }, error){
		"iv":            func() (interface{ Len() int }, error) { return c.IVCurve() },
		"skew":          func() (interface{ Len() int }, error) { return c.VolatilitySkew() },
		"theta":         func() (interface{ Len() int }, error) { return c.ThetaCurve() },
		"charm":         func() (interface{ Len() int }, error) { return c.CharmCurve() },
		"color":         func() (interface{ Len() int }, error) { return c.ColorCurve() },
		"time_decay":    func() (interface{ Len() int }, error) { return c.TimeDecayCurve() },
		"vega":          func() (interface{ Len() int }, error) { return c.VolatilitySensitivityCurve() },
		"delta_gamma":   func() (interface{ Len() int }, error) { return c.DeltaGammaCurve() },
		"bid_ask":       func() (interface{ Len() int }, error) { return c.BidAskSpreadCurve() },
		"volume":        func() (interface{ Len() int }, error) { return c.VolumeProfileCurve() },
		"open_interest": func() (interface{ Len() int }, error) { return c.OpenInterestCurve() },
		"pcr":           func() (interface{ Len() int }, error) { return c.PremiumWeightedPCR() },
		"concentration": func() (interface{ Len() int }, error) { return c.PremiumConcentration() },
	}
	for name, produce := range curves {
		obj, err := produce()
		require.NoError(t, err, name)
		assert.Equal(t, c.Len(), obj.Len(), name)
	}
}

func TestMetricSurfacesBuild(t *testing.T) {
	c, err := BuildChain(testBuildParams(t))
	require.NoError(t, err)

	surfaces := map[string]func() (interface{ Len() int }, error){
		"theta":       func() (interface{ Len() int }, error) { return c.ThetaSurface() },
		"charm":       func() (interface{ Len() int }, error) { return c.CharmSurface() },
		"color":       func() (interface{ Len() int }, error) { return c.ColorSurface() },
		"time_decay":  func() (interface{ Len() int }, error) { return c.TimeDecaySurface() },
		"vega":        func() (interface{ Len() int }, error) { return c.VolatilitySensitivitySurface() },
		"vanna_volga": func() (interface{ Len() int }, error) { return c.VannaVolgaSurface() },
		"delta_gamma": func() (interface{ Len() int }, error) { return c.DeltaGammaSurface() },
		"price_shock": func() (interface{ Len() int }, error) { return c.PriceShockSurface() },
		"volume":      func() (interface{ Len() int }, error) { return c.VolumeProfileSurface() },
	}
	for name, produce := range surfaces {
		obj, err := produce()
		require.NoError(t, err, name)
		assert.True(t, obj.Len() >= c.Len(), name)
	}

	days := []model.Positive{model.MustPositive(10), model.MustPositive(20), model.MustPositive(30)}
	iv, err := c.IVSurface(days)
	require.NoError(t, err)
	assert.Equal(t, c.Len()*3, iv.Len())
}

func TestRiskReversalAndSmileDynamics(t *testing.T) {
	c, err := BuildChain(testBuildParams(t))
	require.NoError(t, err)

	rr, err := c.RiskReversalCurve()
	require.NoError(t, err)
	assert.Equal(t, 10, rr.Len())

	sd, err := c.SmileDynamicsCurve()
	require.NoError(t, err)
	assert.Equal(t, c.Len()-1, sd.Len())

	sds, err := c.SmileDynamicsSurface()
	require.NoError(t, err)
	assert.Equal(t, sd.Len()*5, sds.Len())
}

func TestPriceShockCurveSign(t *testing.T) {
	c, err := BuildChain(testBuildParams(t))
	require.NoError(t, err)
	up, err := c.PriceShockCurve(decimal.NewFromFloat(0.05))
	require.NoError(t, err)
	// deep ITM call dominates at low strikes: combined value rises
	first := up.Points()[0]
	assert.True(t, first.Y.IsPositive())
}
