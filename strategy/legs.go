package strategy

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/stratlab/optstrat/model"
)

// Config carries the market context shared by every leg of a
// strategy.
type Config struct {
	Symbol            string
	UnderlyingPrice   model.Positive
	Expiration        model.ExpirationDate
	ImpliedVolatility model.Positive
	RiskFreeRate      decimal.Decimal
	DividendYield     model.Positive
	Quantity          model.Positive
}

func (c Config) quantity() model.Positive {
	if c.Quantity.IsZero() {
		return model.POne
	}
	return c.Quantity
}

// LegFees is the open and close fee for one leg, per contract.
type LegFees struct {
	Open  model.Positive
	Close model.Positive
}

// newLeg builds a position from the shared config. A zero strike
// marks a leg whose strike the optimizer selects later.
func newLeg(cfg Config, style model.OptionStyle, side model.Side,
	strike, premium model.Positive, fees LegFees) model.Position {
	opt := model.NewOptions(model.EuropeanType(), side, cfg.Symbol, strike, cfg.Expiration,
		cfg.ImpliedVolatility, cfg.quantity(), cfg.UnderlyingPrice, cfg.RiskFreeRate,
		style, cfg.DividendYield)
	return *model.NewPosition(*opt, premium.Dec(), time.Now().UTC(), fees.Open, fees.Close)
}

// feesPerUnit is total strategy fees divided by the shared quantity.
func feesPerUnit(b *base, qty model.Positive) decimal.Decimal {
	if qty.IsZero() {
		return decimal.Zero
	}
	return b.GetFees().Dec().Div(qty.Dec())
}

// clampPositive floors a signed decimal at zero.
func clampPositive(d decimal.Decimal) model.Positive {
	if d.IsNegative() {
		return model.PZero
	}
	p, _ := model.NewPositiveDecimal(d)
	return p
}
