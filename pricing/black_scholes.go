package pricing

import (
	"math"

	"github.com/shopspring/decimal"
	"github.com/stratlab/optstrat/model"
)

// BlackScholes prices a European contract with continuous dividend
// yield. The result is the unsigned per-unit premium.
func BlackScholes(o *model.Options) (model.Positive, error) {
	in, err := inputs(o)
	if err != nil {
		return model.PZero, err
	}
	if in.t == 0 {
		return o.IntrinsicValue(o.UnderlyingPrice), nil
	}
	td1 := d1(in)
	td2 := td1 - in.sigma*math.Sqrt(in.t)

	discS := in.s * math.Exp(-in.q*in.t)
	discK := in.k * math.Exp(-in.r*in.t)

	var price float64
	if o.Style == model.Call {
		price = discS*normCDF(td1) - discK*normCDF(td2)
	} else {
		price = discK*normCDF(-td2) - discS*normCDF(-td1)
	}
	return toPositivePrice(price, "black_scholes")
}

// BlackScholesAt reprices the contract at a shifted underlying and
// volatility without mutating it.
func BlackScholesAt(o *model.Options, underlying, iv model.Positive) (model.Positive, error) {
	c := o.Clone()
	c.UnderlyingPrice = underlying
	c.ImpliedVolatility = iv
	return BlackScholes(c)
}

// TimeValue is the theoretical premium in excess of intrinsic value.
func TimeValue(o *model.Options) (decimal.Decimal, error) {
	p, err := BlackScholes(o)
	if err != nil {
		return decimal.Zero, err
	}
	return p.Dec().Sub(o.IntrinsicValue(o.UnderlyingPrice).Dec()), nil
}
