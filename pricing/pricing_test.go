package pricing

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratlab/optstrat/model"
	"github.com/stratlab/optstrat/opterr"
)

func european(t *testing.T, style model.OptionStyle, strike, underlying, iv float64, days float64) *model.Options {
	t.Helper()
	exp, err := model.DaysFromFloat(days)
	require.NoError(t, err)
	return model.NewOptions(model.EuropeanType(), model.Long, "TEST",
		model.MustPositive(strike), exp, model.MustPositive(iv), model.POne,
		model.MustPositive(underlying), decimal.NewFromFloat(0.05), style, model.PZero)
}

func TestBlackScholesKnownValue(t *testing.T) {
	// S=100, K=100, T=1y, sigma=0.2, r=0.05, q=0: C = 10.4506.
	call := european(t, model.Call, 100, 100, 0.2, 365)
	price, err := BlackScholes(call)
	require.NoError(t, err)
	assert.InDelta(t, 10.4506, price.Float64(), 1e-3)

	put := european(t, model.Put, 100, 100, 0.2, 365)
	pp, err := BlackScholes(put)
	require.NoError(t, err)
	assert.InDelta(t, 5.5735, pp.Float64(), 1e-3)
}

func TestPutCallParity(t *testing.T) {
	cases := []struct{ strike, underlying, iv, days float64 }{
		{100, 100, 0.2, 365},
		{110, 95, 0.35, 45},
		{80, 120, 0.15, 180},
		{5780, 5781.88, 0.18, 2},
	}
	for _, tc := range cases {
		call := european(t, model.Call, tc.strike, tc.underlying, tc.iv, tc.days)
		put := european(t, model.Put, tc.strike, tc.underlying, tc.iv, tc.days)
		c, err := BlackScholes(call)
		require.NoError(t, err)
		p, err := BlackScholes(put)
		require.NoError(t, err)

		yf, err := call.TimeToExpiry()
		require.NoError(t, err)
		tt := yf.Float64()
		want := tc.underlying - tc.strike*discount(0.05, tt)
		assert.InDelta(t, want, c.Float64()-p.Float64(), 1e-6,
			"parity at K=%v S=%v", tc.strike, tc.underlying)
	}
}

func discount(r, t float64) float64 { return math.Exp(-r * t) }

func TestZeroTimeReturnsIntrinsic(t *testing.T) {
	call := european(t, model.Call, 90, 100, 0.2, 0)
	price, err := BlackScholes(call)
	require.NoError(t, err)
	assert.InDelta(t, 10, price.Float64(), 1e-9)

	otm := european(t, model.Put, 90, 100, 0.2, 0)
	price, err = BlackScholes(otm)
	require.NoError(t, err)
	assert.True(t, price.IsZero())
}

func TestCallPriceMonotonicInVol(t *testing.T) {
	prev := 0.0
	for _, iv := range []float64{0.05, 0.1, 0.2, 0.4, 0.8} {
		call := european(t, model.Call, 100, 100, iv, 90)
		price, err := BlackScholes(call)
		require.NoError(t, err)
		assert.Greater(t, price.Float64(), prev, "price must rise with vol")
		prev = price.Float64()
	}
}

func TestBinomialConvergesToBlackScholes(t *testing.T) {
	call := european(t, model.Call, 100, 100, 0.2, 365)
	bs, err := BlackScholes(call)
	require.NoError(t, err)
	tree, err := Binomial(call, 1000)
	require.NoError(t, err)
	assert.InDelta(t, bs.Float64(), tree.Float64(), 0.01)
}

func TestAmericanPutAtLeastEuropean(t *testing.T) {
	euro := european(t, model.Put, 110, 100, 0.2, 180)
	amer := euro.Clone()
	amer.Type = model.AmericanType()
	ep, err := Binomial(euro, 500)
	require.NoError(t, err)
	ap, err := Binomial(amer, 500)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, ap.Float64(), ep.Float64()-1e-9)
	assert.GreaterOrEqual(t, ap.Float64(), 10.0, "deep ITM American put holds intrinsic")
}

func TestMonteCarloNearBlackScholes(t *testing.T) {
	call := european(t, model.Call, 100, 100, 0.2, 365)
	bs, err := BlackScholes(call)
	require.NoError(t, err)
	mc, err := MonteCarlo(call, 50000, 7)
	require.NoError(t, err)
	assert.InDelta(t, bs.Float64(), mc.Float64(), 0.3)
}

func TestMonteCarloSeedDeterminism(t *testing.T) {
	call := european(t, model.Call, 100, 100, 0.3, 90)
	a, err := MonteCarlo(call, 5000, 42)
	require.NoError(t, err)
	b, err := MonteCarlo(call, 5000, 42)
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
}

func TestTelegraphStaysNearBlackScholes(t *testing.T) {
	call := european(t, model.Call, 100, 100, 0.2, 365)
	bs, err := BlackScholes(call)
	require.NoError(t, err)
	tg, err := Telegraph(call, 500, 3)
	require.NoError(t, err)
	assert.InDelta(t, bs.Float64(), tg.Float64(), bs.Float64()*0.5)
}

func TestCashOrNothingBinaryParity(t *testing.T) {
	call := european(t, model.Call, 100, 100, 0.2, 365)
	call.Type = model.OptionType{Kind: model.Binary, Binary: model.CashOrNothing}
	put := call.Clone()
	put.Style = model.Put

	c, err := BinaryPrice(call)
	require.NoError(t, err)
	p, err := BinaryPrice(put)
	require.NoError(t, err)

	yf, err := call.TimeToExpiry()
	require.NoError(t, err)
	assert.InDelta(t, discount(0.05, yf.Float64()), c.Float64()+p.Float64(), 1e-9,
		"binary call plus put pays one discounted unit")
}

func TestBarrierInOutParity(t *testing.T) {
	base := european(t, model.Call, 100, 100, 0.2, 365)
	vanilla, err := BlackScholes(base)
	require.NoError(t, err)

	out := base.Clone()
	out.Type = model.OptionType{Kind: model.BarrierOption, Barrier: model.UpAndOut, BarrierLevel: model.MustPositive(130)}
	in := base.Clone()
	in.Type = model.OptionType{Kind: model.BarrierOption, Barrier: model.UpAndIn, BarrierLevel: model.MustPositive(130)}

	po, err := BarrierPrice(out)
	require.NoError(t, err)
	pi, err := BarrierPrice(in)
	require.NoError(t, err)
	assert.InDelta(t, vanilla.Float64(), po.Float64()+pi.Float64(), 1e-6)
}

func TestAsianCheaperThanVanilla(t *testing.T) {
	vanillaOpt := european(t, model.Call, 100, 100, 0.3, 365)
	vanilla, err := BlackScholes(vanillaOpt)
	require.NoError(t, err)

	asian := vanillaOpt.Clone()
	asian.Type = model.OptionType{Kind: model.Asian, Averaging: model.Geometric}
	ap, err := AsianPrice(asian)
	require.NoError(t, err)
	assert.Less(t, ap.Float64(), vanilla.Float64(), "averaging dampens vol")
	assert.Greater(t, ap.Float64(), 0.0)
}

func TestUnifiedDispatch(t *testing.T) {
	call := european(t, model.Call, 100, 100, 0.2, 365)
	direct, err := BlackScholes(call)
	require.NoError(t, err)
	via, err := Price(call, ClosedFormBS())
	require.NoError(t, err)
	assert.True(t, direct.Equal(via))

	binary := call.Clone()
	binary.Type = model.OptionType{Kind: model.Binary, Binary: model.CashOrNothing}
	_, err = Price(binary, BinomialEngine(100))
	var perr *opterr.PricingError
	require.ErrorAs(t, err, &perr)
}

func TestValidationSurfacesOptionsError(t *testing.T) {
	bad := european(t, model.Call, 100, 100, 0.2, 30)
	bad.StrikePrice = model.PZero
	_, err := BlackScholes(bad)
	var oerr *opterr.OptionsError
	require.ErrorAs(t, err, &oerr)
	assert.Equal(t, "strike_price", oerr.Field)
}

func TestTimeValueNonNegative(t *testing.T) {
	for _, strike := range []float64{80, 100, 120} {
		call := european(t, model.Call, strike, 100, 0.2, 90)
		tv, err := TimeValue(call)
		require.NoError(t, err)
		assert.True(t, tv.GreaterThanOrEqual(decimal.Zero), "time value at K=%v", strike)
	}
}
