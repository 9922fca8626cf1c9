// Package pricing implements the valuation engines: Black-Scholes
// closed forms, CRR binomial and telegraph trees, Monte Carlo, and
// analytic approximations for the exotic families.
package pricing

import (
	"math"

	"github.com/shopspring/decimal"
	"github.com/stratlab/optstrat/model"
	"github.com/stratlab/optstrat/opterr"
)

// normCDF is the standard normal cumulative distribution.
func normCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// normPDF is the standard normal density.
func normPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi)
}

// BigN and SmallN expose the normal cdf/pdf on decimals for the greek
// equations.
func BigN(x decimal.Decimal) decimal.Decimal {
	return decimal.NewFromFloat(normCDF(x.InexactFloat64()))
}

func SmallN(x decimal.Decimal) decimal.Decimal {
	return decimal.NewFromFloat(normPDF(x.InexactFloat64()))
}

// bsInputs flattens a contract into the float64 terms the closed
// forms are computed with.
type bsInputs struct {
	s, k, t, r, q, sigma float64
}

func inputs(o *model.Options) (bsInputs, error) {
	if err := o.Validate(); err != nil {
		return bsInputs{}, err
	}
	t, err := o.TimeToExpiry()
	if err != nil {
		return bsInputs{}, err
	}
	return bsInputs{
		s:     o.UnderlyingPrice.Float64(),
		k:     o.StrikePrice.Float64(),
		t:     t.Float64(),
		r:     o.RiskFreeRate.InexactFloat64(),
		q:     o.DividendYield.Float64(),
		sigma: o.ImpliedVolatility.Float64(),
	}, nil
}

// d1 and d2 follow the dividend-adjusted Black-Scholes convention.
func d1(in bsInputs) float64 {
	return (math.Log(in.s/in.k) + (in.r-in.q+0.5*in.sigma*in.sigma)*in.t) / (in.sigma * math.Sqrt(in.t))
}

func d2(in bsInputs) float64 {
	return d1(in) - in.sigma*math.Sqrt(in.t)
}

// D1 and D2 are the decimal-facing forms used by the greeks package.
func D1(o *model.Options) (decimal.Decimal, error) {
	in, err := inputs(o)
	if err != nil {
		return decimal.Zero, err
	}
	if in.t == 0 {
		return decimal.Zero, &opterr.PricingError{Method: "d1", Reason: "zero time to expiry"}
	}
	return decimal.NewFromFloat(d1(in)), nil
}

func D2(o *model.Options) (decimal.Decimal, error) {
	in, err := inputs(o)
	if err != nil {
		return decimal.Zero, err
	}
	if in.t == 0 {
		return decimal.Zero, &opterr.PricingError{Method: "d2", Reason: "zero time to expiry"}
	}
	return decimal.NewFromFloat(d2(in)), nil
}

func toPositivePrice(v float64, method string) (model.Positive, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return model.PZero, &opterr.PricingError{Method: method, Reason: "non-finite price"}
	}
	if v < 0 {
		// Closed forms can go a hair negative from float noise.
		if v > -1e-9 {
			v = 0
		} else {
			return model.PZero, &opterr.PricingError{Method: method, Reason: "negative price"}
		}
	}
	return model.NewPositive(v)
}
