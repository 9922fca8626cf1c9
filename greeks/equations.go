// Package greeks computes first- and higher-order sensitivities. The
// analytic equations cover European contracts; every other family
// falls back to finite differences over the unified pricer.
package greeks

import (
	"math"

	"github.com/shopspring/decimal"
	"github.com/stratlab/optstrat/model"
	"github.com/stratlab/optstrat/opterr"
	"github.com/stratlab/optstrat/pricing"
)

// terms caches the flattened inputs shared by the equations.
type terms struct {
	s, k, t, r, q, sigma float64
	d1, d2               float64
	sign                 float64 // +1 long, -1 short
	qty                  float64
}

func newTerms(o *model.Options) (terms, error) {
	if err := o.Validate(); err != nil {
		return terms{}, err
	}
	yf, err := o.TimeToExpiry()
	if err != nil {
		return terms{}, err
	}
	tt := terms{
		s:     o.UnderlyingPrice.Float64(),
		k:     o.StrikePrice.Float64(),
		t:     yf.Float64(),
		r:     o.RiskFreeRate.InexactFloat64(),
		q:     o.DividendYield.Float64(),
		sigma: o.ImpliedVolatility.Float64(),
		sign:  1,
		qty:   o.Quantity.Float64(),
	}
	if o.Side == model.Short {
		tt.sign = -1
	}
	if tt.t <= 0 {
		return terms{}, &opterr.GreeksError{Greek: "d1", Reason: "zero time to expiry"}
	}
	tt.d1 = (math.Log(tt.s/tt.k) + (tt.r-tt.q+0.5*tt.sigma*tt.sigma)*tt.t) / (tt.sigma * math.Sqrt(tt.t))
	tt.d2 = tt.d1 - tt.sigma*math.Sqrt(tt.t)
	return tt, nil
}

func (t terms) scaled(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v * t.sign * t.qty)
}

func normCDF(x float64) float64 { return 0.5 * (1 + math.Erf(x/math.Sqrt2)) }
func normPDF(x float64) float64 { return math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi) }

// Delta is side-signed and quantity-scaled; long calls land in [0,1]
// per unit, long puts in [-1,0].
func Delta(o *model.Options) (decimal.Decimal, error) {
	if o.Type.Kind != model.European {
		return fdDelta(o)
	}
	t, err := newTerms(o)
	if err != nil {
		return decimal.Zero, err
	}
	disc := math.Exp(-t.q * t.t)
	if o.Style == model.Call {
		return t.scaled(disc * normCDF(t.d1)), nil
	}
	return t.scaled(disc * (normCDF(t.d1) - 1)), nil
}

func Gamma(o *model.Options) (decimal.Decimal, error) {
	if o.Type.Kind != model.European {
		return fdGamma(o)
	}
	t, err := newTerms(o)
	if err != nil {
		return decimal.Zero, err
	}
	g := math.Exp(-t.q*t.t) * normPDF(t.d1) / (t.s * t.sigma * math.Sqrt(t.t))
	return t.scaled(g), nil
}

// Theta is reported per calendar day.
func Theta(o *model.Options) (decimal.Decimal, error) {
	if o.Type.Kind != model.European {
		return fdTheta(o)
	}
	t, err := newTerms(o)
	if err != nil {
		return decimal.Zero, err
	}
	discQ := math.Exp(-t.q * t.t)
	discR := math.Exp(-t.r * t.t)
	common := -t.s * discQ * normPDF(t.d1) * t.sigma / (2 * math.Sqrt(t.t))
	var annual float64
	if o.Style == model.Call {
		annual = common - t.r*t.k*discR*normCDF(t.d2) + t.q*t.s*discQ*normCDF(t.d1)
	} else {
		annual = common + t.r*t.k*discR*normCDF(-t.d2) - t.q*t.s*discQ*normCDF(-t.d1)
	}
	return t.scaled(annual / 365), nil
}

// Vega is per 1.00 of volatility, identical for calls and puts.
func Vega(o *model.Options) (decimal.Decimal, error) {
	if o.Type.Kind != model.European {
		return fdVega(o)
	}
	t, err := newTerms(o)
	if err != nil {
		return decimal.Zero, err
	}
	v := t.s * math.Exp(-t.q*t.t) * normPDF(t.d1) * math.Sqrt(t.t)
	return t.scaled(v), nil
}

// Rho is per 0.01 of the risk-free rate.
func Rho(o *model.Options) (decimal.Decimal, error) {
	if o.Type.Kind != model.European {
		return fdRho(o)
	}
	t, err := newTerms(o)
	if err != nil {
		return decimal.Zero, err
	}
	discR := math.Exp(-t.r * t.t)
	var rho float64
	if o.Style == model.Call {
		rho = t.k * t.t * discR * normCDF(t.d2)
	} else {
		rho = -t.k * t.t * discR * normCDF(-t.d2)
	}
	return t.scaled(rho / 100), nil
}

// RhoD is the dividend-yield sensitivity per 0.01 of yield.
func RhoD(o *model.Options) (decimal.Decimal, error) {
	t, err := newTerms(o)
	if err != nil {
		return decimal.Zero, err
	}
	discQ := math.Exp(-t.q * t.t)
	var v float64
	if o.Style == model.Call {
		v = -t.t * t.s * discQ * normCDF(t.d1)
	} else {
		v = t.t * t.s * discQ * normCDF(-t.d1)
	}
	return t.scaled(v / 100), nil
}

// Vanna is d(delta)/d(vol).
func Vanna(o *model.Options) (decimal.Decimal, error) {
	t, err := newTerms(o)
	if err != nil {
		return decimal.Zero, err
	}
	v := -math.Exp(-t.q*t.t) * normPDF(t.d1) * t.d2 / t.sigma
	return t.scaled(v), nil
}

// Vomma is d(vega)/d(vol).
func Vomma(o *model.Options) (decimal.Decimal, error) {
	t, err := newTerms(o)
	if err != nil {
		return decimal.Zero, err
	}
	vega := t.s * math.Exp(-t.q*t.t) * normPDF(t.d1) * math.Sqrt(t.t)
	return t.scaled(vega * t.d1 * t.d2 / t.sigma), nil
}

// Veta is d(vega)/d(time), per year.
func Veta(o *model.Options) (decimal.Decimal, error) {
	t, err := newTerms(o)
	if err != nil {
		return decimal.Zero, err
	}
	sqT := t.sigma * math.Sqrt(t.t)
	v := -t.s * math.Exp(-t.q*t.t) * normPDF(t.d1) * math.Sqrt(t.t) *
		(t.q + (t.r-t.q)*t.d1/sqT - (1+t.d1*t.d2)/(2*t.t))
	return t.scaled(v), nil
}

// Charm is delta decay per year.
func Charm(o *model.Options) (decimal.Decimal, error) {
	t, err := newTerms(o)
	if err != nil {
		return decimal.Zero, err
	}
	discQ := math.Exp(-t.q * t.t)
	sqT := t.sigma * math.Sqrt(t.t)
	core := discQ * normPDF(t.d1) * (2*(t.r-t.q)*t.t - t.d2*sqT) / (2 * t.t * sqT)
	var v float64
	if o.Style == model.Call {
		v = t.q*discQ*normCDF(t.d1) - core
	} else {
		v = -t.q*discQ*normCDF(-t.d1) - core
	}
	return t.scaled(v), nil
}

// Color is gamma decay per year.
func Color(o *model.Options) (decimal.Decimal, error) {
	t, err := newTerms(o)
	if err != nil {
		return decimal.Zero, err
	}
	sqT := t.sigma * math.Sqrt(t.t)
	v := -math.Exp(-t.q*t.t) * normPDF(t.d1) / (2 * t.s * t.t * sqT) *
		(2*t.q*t.t + 1 + (2*(t.r-t.q)*t.t-t.d2*sqT)*t.d1/sqT)
	return t.scaled(v), nil
}

// Speed is d(gamma)/d(spot).
func Speed(o *model.Options) (decimal.Decimal, error) {
	t, err := newTerms(o)
	if err != nil {
		return decimal.Zero, err
	}
	sqT := t.sigma * math.Sqrt(t.t)
	gamma := math.Exp(-t.q*t.t) * normPDF(t.d1) / (t.s * sqT)
	v := -gamma / t.s * (t.d1/sqT + 1)
	return t.scaled(v), nil
}

// Zomma is d(gamma)/d(vol).
func Zomma(o *model.Options) (decimal.Decimal, error) {
	t, err := newTerms(o)
	if err != nil {
		return decimal.Zero, err
	}
	sqT := t.sigma * math.Sqrt(t.t)
	gamma := math.Exp(-t.q*t.t) * normPDF(t.d1) / (t.s * sqT)
	return t.scaled(gamma * (t.d1*t.d2 - 1) / t.sigma), nil
}

// Ultima is d(vomma)/d(vol).
func Ultima(o *model.Options) (decimal.Decimal, error) {
	t, err := newTerms(o)
	if err != nil {
		return decimal.Zero, err
	}
	vega := t.s * math.Exp(-t.q*t.t) * normPDF(t.d1) * math.Sqrt(t.t)
	d1d2 := t.d1 * t.d2
	v := -vega / (t.sigma * t.sigma) * (d1d2*(1-d1d2) + t.d1*t.d1 + t.d2*t.d2)
	return t.scaled(v), nil
}

// treeEngine picks the repricing engine for finite differences.
func treeEngine(o *model.Options) pricing.Engine {
	switch o.Type.Kind {
	case model.American, model.Bermudan:
		return pricing.BinomialEngine(200)
	default:
		return pricing.ClosedFormBS()
	}
}
