package model

import "github.com/shopspring/decimal"

// Greek bundles first- and higher-order sensitivities. Theta is per
// day, vega per 1.00 of volatility, rho and rho_d per 0.01 of rate.
type Greek struct {
	Delta  decimal.Decimal
	Gamma  decimal.Decimal
	Theta  decimal.Decimal
	Vega   decimal.Decimal
	Rho    decimal.Decimal
	RhoD   decimal.Decimal
	Vanna  decimal.Decimal
	Vomma  decimal.Decimal
	Veta   decimal.Decimal
	Charm  decimal.Decimal
	Color  decimal.Decimal
	Speed  decimal.Decimal
	Zomma  decimal.Decimal
	Ultima decimal.Decimal
}

// Add accumulates leg greeks into portfolio greeks.
func (g Greek) Add(o Greek) Greek {
	return Greek{
		Delta:  g.Delta.Add(o.Delta),
		Gamma:  g.Gamma.Add(o.Gamma),
		Theta:  g.Theta.Add(o.Theta),
		Vega:   g.Vega.Add(o.Vega),
		Rho:    g.Rho.Add(o.Rho),
		RhoD:   g.RhoD.Add(o.RhoD),
		Vanna:  g.Vanna.Add(o.Vanna),
		Vomma:  g.Vomma.Add(o.Vomma),
		Veta:   g.Veta.Add(o.Veta),
		Charm:  g.Charm.Add(o.Charm),
		Color:  g.Color.Add(o.Color),
		Speed:  g.Speed.Add(o.Speed),
		Zomma:  g.Zomma.Add(o.Zomma),
		Ultima: g.Ultima.Add(o.Ultima),
	}
}

// Scale multiplies every sensitivity by f.
func (g Greek) Scale(f decimal.Decimal) Greek {
	return Greek{
		Delta:  g.Delta.Mul(f),
		Gamma:  g.Gamma.Mul(f),
		Theta:  g.Theta.Mul(f),
		Vega:   g.Vega.Mul(f),
		Rho:    g.Rho.Mul(f),
		RhoD:   g.RhoD.Mul(f),
		Vanna:  g.Vanna.Mul(f),
		Vomma:  g.Vomma.Mul(f),
		Veta:   g.Veta.Mul(f),
		Charm:  g.Charm.Mul(f),
		Color:  g.Color.Mul(f),
		Speed:  g.Speed.Mul(f),
		Zomma:  g.Zomma.Mul(f),
		Ultima: g.Ultima.Mul(f),
	}
}
