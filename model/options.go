package model

import (
	"github.com/shopspring/decimal"
	"github.com/stratlab/optstrat/opterr"
)

// Options is the contract description for a single leg. Pure data;
// pricing and greeks live in their own packages.
type Options struct {
	Type              OptionType
	Side              Side
	UnderlyingSymbol  string
	StrikePrice       Positive
	ExpirationDate    ExpirationDate
	ImpliedVolatility Positive
	Quantity          Positive
	UnderlyingPrice   Positive
	RiskFreeRate      decimal.Decimal
	Style             OptionStyle
	DividendYield     Positive
	Exotic            ExoticParams
}

// NewOptions fills the common fields for a vanilla contract.
func NewOptions(kind OptionType, side Side, symbol string, strike Positive, exp ExpirationDate,
	iv Positive, qty Positive, underlying Positive, rate decimal.Decimal, style OptionStyle,
	dividend Positive) *Options {
	return &Options{
		Type:              kind,
		Side:              side,
		UnderlyingSymbol:  symbol,
		StrikePrice:       strike,
		ExpirationDate:    exp,
		ImpliedVolatility: iv,
		Quantity:          qty,
		UnderlyingPrice:   underlying,
		RiskFreeRate:      rate,
		Style:             style,
		DividendYield:     dividend,
	}
}

// IntrinsicValue is the exercise value at the given underlying price,
// per unit of quantity, never negative.
func (o *Options) IntrinsicValue(price Positive) Positive {
	var diff decimal.Decimal
	if o.Style == Call {
		diff = price.Dec().Sub(o.StrikePrice.Dec())
	} else {
		diff = o.StrikePrice.Dec().Sub(price.Dec())
	}
	if diff.IsNegative() {
		return PZero
	}
	return Positive{diff}
}

// Payoff is the signed terminal value at the stored underlying price,
// scaled by quantity: positive for long legs, negated for short.
func (o *Options) Payoff() decimal.Decimal {
	return o.PayoffAt(o.UnderlyingPrice)
}

// PayoffAt is Payoff evaluated at an arbitrary underlying price.
func (o *Options) PayoffAt(price Positive) decimal.Decimal {
	intrinsic := o.IntrinsicValue(price).Dec().Mul(o.Quantity.Dec())
	return intrinsic.Mul(o.Side.Sign())
}

// IsITM reports whether the contract has positive exercise value at
// the stored underlying price.
func (o *Options) IsITM() bool {
	return !o.IntrinsicValue(o.UnderlyingPrice).IsZero()
}

// TimeToExpiry is the year fraction until expiration.
func (o *Options) TimeToExpiry() (Positive, error) {
	return o.ExpirationDate.YearFraction()
}

// Validate rejects contracts that cannot be priced.
func (o *Options) Validate() error {
	if o.StrikePrice.IsZero() {
		return &opterr.OptionsError{Field: "strike_price", Reason: "must be positive"}
	}
	if o.UnderlyingPrice.IsZero() {
		return &opterr.OptionsError{Field: "underlying_price", Reason: "must be positive"}
	}
	if o.ImpliedVolatility.IsZero() {
		return &opterr.OptionsError{Field: "implied_volatility", Reason: "must be positive"}
	}
	if o.Quantity.IsZero() {
		return &opterr.OptionsError{Field: "quantity", Reason: "must be positive"}
	}
	if _, err := o.ExpirationDate.Days(); err != nil {
		return err
	}
	return nil
}

// Clone returns a deep copy, including the exotic bag.
func (o *Options) Clone() *Options {
	c := *o
	if o.Exotic != nil {
		c.Exotic = make(ExoticParams, len(o.Exotic))
		for k, v := range o.Exotic {
			c.Exotic[k] = v
		}
	}
	if o.Type.Underlying != nil {
		u := *o.Type.Underlying
		c.Type.Underlying = &u
	}
	return &c
}
