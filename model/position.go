package model

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/stratlab/optstrat/opterr"
)

// Position owns one contract plus the economics of holding it:
// premium per unit (paid for long, received for short), open date and
// per-side fees.
type Position struct {
	Option      Options
	Premium     decimal.Decimal
	OpenDate    time.Time
	OpenFee     Positive
	CloseFee    Positive
	Epic        string
	ExtraFields map[string]string
}

func NewPosition(opt Options, premium decimal.Decimal, openDate time.Time, openFee, closeFee Positive) *Position {
	return &Position{
		Option:   opt,
		Premium:  premium,
		OpenDate: openDate.UTC(),
		OpenFee:  openFee,
		CloseFee: closeFee,
	}
}

func (p *Position) IsLong() bool  { return p.Option.Side == Long }
func (p *Position) IsShort() bool { return p.Option.Side == Short }

// Fees is total open plus close fees scaled by quantity.
func (p *Position) Fees() Positive {
	return Positive{p.OpenFee.Dec().Add(p.CloseFee.Dec()).Mul(p.Option.Quantity.Dec())}
}

// TotalCost is fees plus the premium paid (long legs only).
func (p *Position) TotalCost() Positive {
	cost := p.Fees().Dec()
	if p.IsLong() {
		cost = cost.Add(p.Premium.Abs().Mul(p.Option.Quantity.Dec()))
	}
	return Positive{cost}
}

// PremiumReceived is the premium collected on short legs, zero
// otherwise.
func (p *Position) PremiumReceived() Positive {
	if p.IsShort() {
		return Positive{p.Premium.Abs().Mul(p.Option.Quantity.Dec())}
	}
	return PZero
}

// NetPremiumReceived is premium received net of fees; negative values
// saturate at zero.
func (p *Position) NetPremiumReceived() Positive {
	return p.PremiumReceived().SubOrZero(p.Fees())
}

// NetCost is total cost minus premium received; signed.
func (p *Position) NetCost() decimal.Decimal {
	return p.TotalCost().Dec().Sub(p.PremiumReceived().Dec())
}

// BreakEven is the underlying price at which the leg alone expires
// flat, adjusted for fees per unit.
func (p *Position) BreakEven() Positive {
	perUnit := p.Premium.Abs().Add(p.feesPerUnit().Mul(p.Option.Side.Sign()))
	k := p.Option.StrikePrice.Dec()
	var be decimal.Decimal
	switch {
	case p.Option.Style == Call && p.IsLong():
		be = k.Add(perUnit)
	case p.Option.Style == Call && p.IsShort():
		be = k.Add(perUnit)
	case p.Option.Style == Put && p.IsLong():
		be = k.Sub(perUnit)
	default:
		be = k.Sub(perUnit)
	}
	if be.IsNegative() {
		return PZero
	}
	return Positive{be}
}

func (p *Position) feesPerUnit() decimal.Decimal {
	return p.OpenFee.Dec().Add(p.CloseFee.Dec())
}

// PnLAtExpiration is the terminal P&L at the given underlying price:
// intrinsic settled against premium, net of fees, scaled by quantity.
func (p *Position) PnLAtExpiration(price Positive) decimal.Decimal {
	intrinsic := p.Option.IntrinsicValue(price).Dec()
	qty := p.Option.Quantity.Dec()
	var perUnit decimal.Decimal
	if p.IsLong() {
		perUnit = intrinsic.Sub(p.Premium.Abs())
	} else {
		perUnit = p.Premium.Abs().Sub(intrinsic)
	}
	return perUnit.Mul(qty).Sub(p.Fees().Dec())
}

// UnrealizedPnL marks the leg against a current market price for the
// option itself.
func (p *Position) UnrealizedPnL(optionPrice Positive) decimal.Decimal {
	qty := p.Option.Quantity.Dec()
	var perUnit decimal.Decimal
	if p.IsLong() {
		perUnit = optionPrice.Dec().Sub(p.Premium.Abs())
	} else {
		perUnit = p.Premium.Abs().Sub(optionPrice.Dec())
	}
	return perUnit.Mul(qty).Sub(p.Fees().Dec())
}

func (p *Position) DaysHeld() Positive {
	d := time.Now().UTC().Sub(p.OpenDate).Hours() / 24
	if d < 0 {
		return PZero
	}
	v, _ := NewPositive(d)
	return v
}

func (p *Position) DaysToExpiration() (Positive, error) {
	return p.Option.ExpirationDate.Days()
}

// Validate checks the embedded option and the position economics.
func (p *Position) Validate() error {
	if err := p.Option.Validate(); err != nil {
		return err
	}
	if p.Premium.IsNegative() {
		return &opterr.PositionError{Reason: "premium must not be negative"}
	}
	return nil
}

// SameContract reports identity by strike, style, side, expiration
// and epic when present.
func (p *Position) SameContract(o *Position) bool {
	if p.Epic != "" || o.Epic != "" {
		return p.Epic == o.Epic
	}
	return p.Option.StrikePrice.Equal(o.Option.StrikePrice) &&
		p.Option.Style == o.Option.Style &&
		p.Option.Side == o.Option.Side &&
		p.Option.ExpirationDate.String() == o.Option.ExpirationDate.String()
}
