package sim

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratlab/optstrat/model"
	"github.com/stratlab/optstrat/strategy"
)

func positiveParams(t *testing.T, size int, walk WalkType, seed uint64) *WalkParams[model.Positive] {
	t.Helper()
	x := NewXstep(model.POne, model.Day, model.Days(model.MustPositive(30)))
	return &WalkParams[model.Positive]{
		Size:     size,
		InitStep: NewStep(x, model.MustPositive(100)),
		Walk:     walk,
		Rng:      NewRng(seed),
		Lift:     PositiveLift,
	}
}

func TestStepAdvancesBothAxes(t *testing.T) {
	x := NewXstep(model.POne, model.Day, model.Days(model.MustPositive(3)))
	s := NewStep(x, model.MustPositive(100))

	s2, err := s.Next(model.MustPositive(101))
	require.NoError(t, err)
	assert.Equal(t, 1, s2.X.Index())
	assert.Equal(t, 1, s2.Y.Index())
	assert.InDelta(t, 2, s2.X.DaysLeft().Float64(), 1e-9)
	assert.InDelta(t, 101, s2.Y.Value().Float64(), 1e-9)
}

func TestXstepFailsWhenExhausted(t *testing.T) {
	x := NewXstep(model.POne, model.Day, model.Days(model.MustPositive(1)))
	x2, err := x.Next()
	require.NoError(t, err)
	assert.True(t, x2.DaysLeft().IsZero())
	_, err = x2.Next()
	assert.Error(t, err)
}

func TestWeekFrameBurnsSevenDays(t *testing.T) {
	x := NewXstep(model.POne, model.Week, model.Days(model.MustPositive(30)))
	x2, err := x.Next()
	require.NoError(t, err)
	assert.InDelta(t, 23, x2.DaysLeft().Float64(), 1e-9)
}

func TestRandomWalkLength(t *testing.T) {
	w, err := NewRandomWalk("gbm", positiveParams(t, 20, NewGeometricBrownianWalk(1.0/252, 0.05, 0.2), 42), nil)
	require.NoError(t, err)
	assert.Equal(t, 20, w.Len())
	assert.False(t, w.Last().X.DaysLeft().Dec().IsNegative())
	for _, v := range w.Values() {
		assert.Greater(t, v, 0.0)
	}
}

func TestWalkShortCircuitsWhenTimeRunsOut(t *testing.T) {
	x := NewXstep(model.POne, model.Day, model.Days(model.MustPositive(5)))
	params := &WalkParams[model.Positive]{
		Size:     20,
		InitStep: NewStep(x, model.MustPositive(100)),
		Walk:     NewBrownianWalk(1.0/252, 0, 1),
		Rng:      NewRng(7),
		Lift:     PositiveLift,
	}
	w, err := NewRandomWalk("short", params, nil)
	require.NoError(t, err)
	assert.Equal(t, 6, w.Len(), "init step plus five day steps")
	assert.True(t, w.Last().X.DaysLeft().IsZero())
}

func TestSeededWalksAreDeterministic(t *testing.T) {
	a, err := NewRandomWalk("a", positiveParams(t, 15, NewHestonWalk(1.0/252, 0.05, 2, 0.04, 0.3, -0.7, 0.04), 99), nil)
	require.NoError(t, err)
	b, err := NewRandomWalk("b", positiveParams(t, 15, NewHestonWalk(1.0/252, 0.05, 2, 0.04, 0.3, -0.7, 0.04), 99), nil)
	require.NoError(t, err)
	assert.Equal(t, a.Values(), b.Values())
}

func TestHistoricalWalkReproducesPrices(t *testing.T) {
	prices := []float64{100, 102, 101, 103}
	w, err := NewRandomWalk("hist", positiveParams(t, 4, NewHistoricalWalk(prices), 1), nil)
	require.NoError(t, err)
	require.Equal(t, 4, w.Len())

	prevDays := w.First().X.DaysLeft().Float64() + 1
	for i, s := range w.Steps() {
		assert.InDelta(t, prices[i], s.Y.Value().Float64(), 1e-12)
		days := s.X.DaysLeft().Float64()
		assert.Less(t, days, prevDays)
		prevDays = days
	}
}

func TestHistoricalWalkStopsEarly(t *testing.T) {
	w, err := NewRandomWalk("hist", positiveParams(t, 10, NewHistoricalWalk([]float64{100, 101}), 1), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, w.Len())
}

func TestMeanRevertingStaysPositive(t *testing.T) {
	w, err := NewRandomWalk("ou", positiveParams(t, 200, NewMeanRevertingWalk(1.0/252, 5, 100, 40), 3), nil)
	require.NoError(t, err)
	for _, v := range w.Values() {
		assert.Greater(t, v, 0.0)
	}
}

func TestSimulatorLastValues(t *testing.T) {
	s, err := NewSimulator("sim", 8, positiveParams(t, 10, NewGeometricBrownianWalk(1.0/252, 0.05, 0.2), 5), nil)
	require.NoError(t, err)
	assert.Equal(t, 8, s.Len())
	assert.Len(t, s.GetLastValues(), 8)
	assert.Len(t, s.GetLastSteps(), 8)
	assert.Len(t, s.GetLastPositiveValues(), 8, "gbm paths stay positive")
}

func TestSimulatorSeedDeterminism(t *testing.T) {
	a, err := NewSimulator("a", 4, positiveParams(t, 10, NewJumpDiffusionWalk(1.0/252, 0.05, 0.2, 1.5, -0.02, 0.1), 11), nil)
	require.NoError(t, err)
	b, err := NewSimulator("b", 4, positiveParams(t, 10, NewJumpDiffusionWalk(1.0/252, 0.05, 0.2, 1.5, -0.02, 0.1), 11), nil)
	require.NoError(t, err)
	assert.Equal(t, a.GetLastValues(), b.GetLastValues())
}

func TestSimulateStrategy(t *testing.T) {
	cfg := strategy.Config{
		Symbol:            "TEST",
		UnderlyingPrice:   model.MustPositive(100),
		Expiration:        model.Days(model.MustPositive(30)),
		ImpliedVolatility: model.MustPositive(0.2),
		RiskFreeRate:      decimal.NewFromFloat(0.05),
		Quantity:          model.POne,
	}
	straddle, err := strategy.NewShortStraddle(cfg, model.MustPositive(100),
		model.MustPositive(3.9), model.MustPositive(4.3),
		strategy.LegFees{}, strategy.LegFees{})
	require.NoError(t, err)

	s, err := NewSimulator("sim", 10, positiveParams(t, 15, NewGeometricBrownianWalk(1.0/252, 0.05, 0.2), 21), nil)
	require.NoError(t, err)

	res, err := s.SimulateStrategy(straddle)
	require.NoError(t, err)
	assert.LessOrEqual(t, res.WinningSteps+res.LosingSteps, 10*14)
	assert.GreaterOrEqual(t, res.MaxDrawdown, 0.0)
	assert.LessOrEqual(t, res.WinRate+res.LossRate, 1.0)
	assert.InDelta(t, res.ExpectedPayoff*float64(10*14), res.TotalPnL, 1e-6)
}

func TestSimulateStrategyResultConsistency(t *testing.T) {
	cfg := strategy.Config{
		Symbol:            "TEST",
		UnderlyingPrice:   model.MustPositive(100),
		Expiration:        model.Days(model.MustPositive(30)),
		ImpliedVolatility: model.MustPositive(0.2),
		RiskFreeRate:      decimal.NewFromFloat(0.05),
		Quantity:          model.POne,
	}
	lc := strategy.NewLongCall(cfg, model.MustPositive(100), model.MustPositive(4.3), strategy.LegFees{})

	s, err := NewSimulator("sim", 6, positiveParams(t, 12, NewBrownianWalk(1.0/252, 0, 20), 77), nil)
	require.NoError(t, err)
	res, err := s.SimulateStrategy(lc)
	require.NoError(t, err)

	total := res.WinningSteps + res.LosingSteps
	assert.LessOrEqual(t, total, 6*11)
	if res.LosingSteps > 0 && res.WinningSteps > 0 {
		assert.Greater(t, res.ProfitFactor, 0.0)
	}
}
