package greeks

import (
	"github.com/shopspring/decimal"
	"github.com/stratlab/optstrat/model"
	"github.com/stratlab/optstrat/pricing"
)

// Finite-difference greeks for contracts without analytic equations
// (American trees and the exotic families). Central differences with
// relative bumps, repriced through the unified entry point.

const (
	spotBump = 0.005 // 0.5% of spot
	volBump  = 0.001
	dayBump  = 1.0
	rateBump = 0.0001
)

func reprice(o *model.Options, mutate func(c *model.Options)) (float64, error) {
	c := o.Clone()
	c.Side = model.Long
	mutate(c)
	p, err := pricing.Price(c, treeEngine(c))
	if err != nil {
		return 0, err
	}
	return p.Float64(), nil
}

func fdScale(o *model.Options) decimal.Decimal {
	scale := o.Quantity.Dec()
	if o.Side == model.Short {
		scale = scale.Neg()
	}
	return scale
}

func fdDelta(o *model.Options) (decimal.Decimal, error) {
	h := o.UnderlyingPrice.Float64() * spotBump
	up, err := reprice(o, func(c *model.Options) { bumpSpot(c, h) })
	if err != nil {
		return decimal.Zero, err
	}
	down, err := reprice(o, func(c *model.Options) { bumpSpot(c, -h) })
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromFloat((up - down) / (2 * h)).Mul(fdScale(o)), nil
}

func fdGamma(o *model.Options) (decimal.Decimal, error) {
	h := o.UnderlyingPrice.Float64() * spotBump
	up, err := reprice(o, func(c *model.Options) { bumpSpot(c, h) })
	if err != nil {
		return decimal.Zero, err
	}
	mid, err := reprice(o, func(c *model.Options) {})
	if err != nil {
		return decimal.Zero, err
	}
	down, err := reprice(o, func(c *model.Options) { bumpSpot(c, -h) })
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromFloat((up - 2*mid + down) / (h * h)).Mul(fdScale(o)), nil
}

func fdTheta(o *model.Options) (decimal.Decimal, error) {
	now, err := reprice(o, func(c *model.Options) {})
	if err != nil {
		return decimal.Zero, err
	}
	later, err := reprice(o, func(c *model.Options) {
		c.ExpirationDate = c.ExpirationDate.AddDays(decimal.NewFromFloat(-dayBump))
	})
	if err != nil {
		return decimal.Zero, err
	}
	// Already per day.
	return decimal.NewFromFloat(later - now).Mul(fdScale(o)), nil
}

func fdVega(o *model.Options) (decimal.Decimal, error) {
	up, err := reprice(o, func(c *model.Options) { bumpVol(c, volBump) })
	if err != nil {
		return decimal.Zero, err
	}
	down, err := reprice(o, func(c *model.Options) { bumpVol(c, -volBump) })
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromFloat((up - down) / (2 * volBump)).Mul(fdScale(o)), nil
}

func fdRho(o *model.Options) (decimal.Decimal, error) {
	up, err := reprice(o, func(c *model.Options) {
		c.RiskFreeRate = c.RiskFreeRate.Add(decimal.NewFromFloat(rateBump))
	})
	if err != nil {
		return decimal.Zero, err
	}
	down, err := reprice(o, func(c *model.Options) {
		c.RiskFreeRate = c.RiskFreeRate.Sub(decimal.NewFromFloat(rateBump))
	})
	if err != nil {
		return decimal.Zero, err
	}
	// Per 0.01 of rate.
	return decimal.NewFromFloat((up - down) / (2 * rateBump) / 100).Mul(fdScale(o)), nil
}

func bumpSpot(c *model.Options, h float64) {
	v, err := model.NewPositive(c.UnderlyingPrice.Float64() + h)
	if err == nil {
		c.UnderlyingPrice = v
	}
}

func bumpVol(c *model.Options, h float64) {
	v, err := model.NewPositive(c.ImpliedVolatility.Float64() + h)
	if err == nil {
		c.ImpliedVolatility = v
	}
}
