package greeks

import (
	"github.com/shopspring/decimal"
	"github.com/stratlab/optstrat/model"
)

// ForOption assembles the full Greek struct for one leg, side-signed
// and quantity-scaled.
func ForOption(o *model.Options) (model.Greek, error) {
	var g model.Greek
	var err error
	if g.Delta, err = Delta(o); err != nil {
		return model.Greek{}, err
	}
	if g.Gamma, err = Gamma(o); err != nil {
		return model.Greek{}, err
	}
	if g.Theta, err = Theta(o); err != nil {
		return model.Greek{}, err
	}
	if g.Vega, err = Vega(o); err != nil {
		return model.Greek{}, err
	}
	if g.Rho, err = Rho(o); err != nil {
		return model.Greek{}, err
	}
	if g.RhoD, err = RhoD(o); err != nil {
		return model.Greek{}, err
	}
	if g.Vanna, err = Vanna(o); err != nil {
		return model.Greek{}, err
	}
	if g.Vomma, err = Vomma(o); err != nil {
		return model.Greek{}, err
	}
	if g.Veta, err = Veta(o); err != nil {
		return model.Greek{}, err
	}
	if g.Charm, err = Charm(o); err != nil {
		return model.Greek{}, err
	}
	if g.Color, err = Color(o); err != nil {
		return model.Greek{}, err
	}
	if g.Speed, err = Speed(o); err != nil {
		return model.Greek{}, err
	}
	if g.Zomma, err = Zomma(o); err != nil {
		return model.Greek{}, err
	}
	if g.Ultima, err = Ultima(o); err != nil {
		return model.Greek{}, err
	}
	return g, nil
}

// ForPositions sums leg greeks into portfolio greeks. Side and
// quantity are already baked into each leg.
func ForPositions(positions []model.Position) (model.Greek, error) {
	total := model.Greek{}
	for i := range positions {
		g, err := ForOption(&positions[i].Option)
		if err != nil {
			return model.Greek{}, err
		}
		total = total.Add(g)
	}
	return total, nil
}

// NetDelta is the summed side-signed delta of a position list.
func NetDelta(positions []model.Position) (decimal.Decimal, error) {
	net := decimal.Zero
	for i := range positions {
		d, err := Delta(&positions[i].Option)
		if err != nil {
			return decimal.Zero, err
		}
		net = net.Add(d)
	}
	return net, nil
}
