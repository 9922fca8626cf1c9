package greeks

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratlab/optstrat/model"
)

func leg(t *testing.T, style model.OptionStyle, side model.Side, strike, underlying, iv, days float64) *model.Options {
	t.Helper()
	exp, err := model.DaysFromFloat(days)
	require.NoError(t, err)
	return model.NewOptions(model.EuropeanType(), side, "TEST",
		model.MustPositive(strike), exp, model.MustPositive(iv), model.POne,
		model.MustPositive(underlying), decimal.NewFromFloat(0.05), style, model.PZero)
}

func TestDeltaBounds(t *testing.T) {
	for _, strike := range []float64{70, 90, 100, 110, 130} {
		call := leg(t, model.Call, model.Long, strike, 100, 0.2, 90)
		d, err := Delta(call)
		require.NoError(t, err)
		assert.True(t, d.GreaterThanOrEqual(decimal.Zero) && d.LessThanOrEqual(decimal.NewFromInt(1)),
			"call delta out of [0,1] at K=%v: %s", strike, d)

		put := leg(t, model.Put, model.Long, strike, 100, 0.2, 90)
		d, err = Delta(put)
		require.NoError(t, err)
		assert.True(t, d.LessThanOrEqual(decimal.Zero) && d.GreaterThanOrEqual(decimal.NewFromInt(-1)),
			"put delta out of [-1,0] at K=%v: %s", strike, d)
	}
}

func TestLongSignConventions(t *testing.T) {
	call := leg(t, model.Call, model.Long, 100, 100, 0.2, 90)
	g, err := ForOption(call)
	require.NoError(t, err)
	assert.True(t, g.Gamma.GreaterThanOrEqual(decimal.Zero))
	assert.True(t, g.Vega.GreaterThanOrEqual(decimal.Zero))
	assert.True(t, g.Theta.LessThanOrEqual(decimal.Zero))
}

func TestShortGreeksNegateLong(t *testing.T) {
	long := leg(t, model.Put, model.Long, 110, 100, 0.3, 45)
	short := long.Clone()
	short.Side = model.Short

	lg, err := ForOption(long)
	require.NoError(t, err)
	sg, err := ForOption(short)
	require.NoError(t, err)

	assert.True(t, lg.Delta.Add(sg.Delta).IsZero())
	assert.True(t, lg.Gamma.Add(sg.Gamma).IsZero())
	assert.True(t, lg.Theta.Add(sg.Theta).IsZero())
	assert.True(t, lg.Vega.Add(sg.Vega).IsZero())
	assert.True(t, lg.Rho.Add(sg.Rho).IsZero())
}

func TestPutCallDeltaIdentity(t *testing.T) {
	// With q=0, call delta minus put delta is exactly 1.
	call := leg(t, model.Call, model.Long, 105, 100, 0.25, 60)
	put := call.Clone()
	put.Style = model.Put

	dc, err := Delta(call)
	require.NoError(t, err)
	dp, err := Delta(put)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, dc.Sub(dp).InexactFloat64(), 1e-12)
}

func TestGammaVegaMatchAcrossStyles(t *testing.T) {
	call := leg(t, model.Call, model.Long, 95, 100, 0.2, 120)
	put := call.Clone()
	put.Style = model.Put

	gc, err := Gamma(call)
	require.NoError(t, err)
	gp, err := Gamma(put)
	require.NoError(t, err)
	assert.True(t, gc.Equal(gp))

	vc, err := Vega(call)
	require.NoError(t, err)
	vp, err := Vega(put)
	require.NoError(t, err)
	assert.True(t, vc.Equal(vp))
}

func TestQuantityScaling(t *testing.T) {
	one := leg(t, model.Call, model.Long, 100, 100, 0.2, 90)
	three := one.Clone()
	three.Quantity = model.MustPositive(3)

	d1, err := Delta(one)
	require.NoError(t, err)
	d3, err := Delta(three)
	require.NoError(t, err)
	assert.InDelta(t, d1.InexactFloat64()*3, d3.InexactFloat64(), 1e-12)
}

func TestAtmDeltaNearHalf(t *testing.T) {
	call := leg(t, model.Call, model.Long, 100, 100, 0.2, 30)
	d, err := Delta(call)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, d.InexactFloat64(), 0.05)
}

func TestFiniteDifferenceMatchesAnalytic(t *testing.T) {
	// American contracts route through the tree pricer; for an
	// American call with q=0 exercise is never optimal, so its greeks
	// should land close to the European closed forms.
	euro := leg(t, model.Call, model.Long, 100, 100, 0.2, 180)
	amer := euro.Clone()
	amer.Type = model.AmericanType()

	de, err := Delta(euro)
	require.NoError(t, err)
	da, err := Delta(amer)
	require.NoError(t, err)
	assert.InDelta(t, de.InexactFloat64(), da.InexactFloat64(), 0.02)

	ve, err := Vega(euro)
	require.NoError(t, err)
	va, err := Vega(amer)
	require.NoError(t, err)
	assert.InDelta(t, ve.InexactFloat64(), va.InexactFloat64(), ve.InexactFloat64()*0.1)
}

func TestNetDeltaSymmetricStrangleSmall(t *testing.T) {
	exp, err := model.DaysFromFloat(45)
	require.NoError(t, err)
	call := model.NewOptions(model.EuropeanType(), model.Short, "TEST",
		model.MustPositive(110), exp, model.MustPositive(0.25), model.POne,
		model.MustPositive(100), decimal.Zero, model.Call, model.PZero)
	put := call.Clone()
	put.Style = model.Put
	put.StrikePrice = model.MustPositive(90)

	positions := []model.Position{
		{Option: *call},
		{Option: *put},
	}
	net, err := NetDelta(positions)
	require.NoError(t, err)
	assert.Less(t, net.Abs().InexactFloat64(), 0.2)
}

func TestForPositionsSumsLegs(t *testing.T) {
	a := leg(t, model.Call, model.Long, 100, 100, 0.2, 90)
	b := leg(t, model.Put, model.Long, 100, 100, 0.2, 90)
	positions := []model.Position{{Option: *a}, {Option: *b}}

	total, err := ForPositions(positions)
	require.NoError(t, err)
	ga, err := ForOption(a)
	require.NoError(t, err)
	gb, err := ForOption(b)
	require.NoError(t, err)
	assert.True(t, total.Delta.Equal(ga.Delta.Add(gb.Delta)))
	assert.True(t, total.Vega.Equal(ga.Vega.Add(gb.Vega)))
}
