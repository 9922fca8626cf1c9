package volatility

import (
	"math"

	"github.com/stratlab/optstrat/model"
	"github.com/stratlab/optstrat/opterr"
	"github.com/stratlab/optstrat/pricing"
)

const (
	maxIterations = 100
	priceEpsilon  = 1e-8
	minVol        = 1e-4
	maxVol        = 10.0
)

// Implied solves Black-Scholes for the volatility matching the target
// premium: Newton-Raphson on vega, falling back to bisection when the
// slope degenerates.
func Implied(o *model.Options, targetPrice model.Positive) (model.Positive, error) {
	target := targetPrice.Float64()
	if target <= 0 {
		return model.PZero, &opterr.VolatilityError{Reason: "target price must be positive"}
	}

	c := o.Clone()
	c.Side = model.Long
	sigma := 0.5
	for i := 0; i < maxIterations; i++ {
		iv, err := model.NewPositive(sigma)
		if err != nil {
			break
		}
		c.ImpliedVolatility = iv
		price, err := pricing.BlackScholes(c)
		if err != nil {
			return model.PZero, err
		}
		diff := price.Float64() - target
		if math.Abs(diff) < priceEpsilon {
			return model.NewPositive(sigma)
		}
		vega := bsVega(c)
		if vega < 1e-10 {
			break
		}
		sigma -= diff / vega
		if sigma <= 0 {
			sigma = minVol
		}
		if sigma > maxVol {
			sigma = maxVol
		}
	}
	return impliedBisection(c, target)
}

func impliedBisection(c *model.Options, target float64) (model.Positive, error) {
	lo, hi := minVol, maxVol
	for i := 0; i < 200; i++ {
		mid := (lo + hi) / 2
		iv, _ := model.NewPositive(mid)
		c.ImpliedVolatility = iv
		price, err := pricing.BlackScholes(c)
		if err != nil {
			return model.PZero, err
		}
		diff := price.Float64() - target
		if math.Abs(diff) < priceEpsilon {
			return model.NewPositive(mid)
		}
		if diff > 0 {
			hi = mid
		} else {
			lo = mid
		}
	}
	// The bracket always collapses; accept the midpoint only when the
	// repriced premium actually lands on the target. A target below
	// intrinsic has no root and must fail.
	mid := (lo + hi) / 2
	iv, _ := model.NewPositive(mid)
	c.ImpliedVolatility = iv
	price, err := pricing.BlackScholes(c)
	if err != nil {
		return model.PZero, err
	}
	if math.Abs(price.Float64()-target) < 1e-4*math.Max(1, target) {
		return model.NewPositive(mid)
	}
	return model.PZero, &opterr.VolatilityError{Reason: "implied volatility search failed to converge"}
}

func bsVega(o *model.Options) float64 {
	yf, err := o.TimeToExpiry()
	if err != nil {
		return 0
	}
	s := o.UnderlyingPrice.Float64()
	k := o.StrikePrice.Float64()
	t := yf.Float64()
	r := o.RiskFreeRate.InexactFloat64()
	q := o.DividendYield.Float64()
	sigma := o.ImpliedVolatility.Float64()
	if t <= 0 || sigma <= 0 {
		return 0
	}
	d1 := (math.Log(s/k) + (r-q+0.5*sigma*sigma)*t) / (sigma * math.Sqrt(t))
	return s * math.Exp(-q*t) * math.Exp(-0.5*d1*d1) / math.Sqrt(2*math.Pi) * math.Sqrt(t)
}
