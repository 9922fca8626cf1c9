package chain

import (
	"github.com/shopspring/decimal"

	"github.com/stratlab/optstrat/model"
)

// OptionDataPriceParams bundles the pricing context shared by every
// row of a synthetic chain. Fields are optional so params can be
// assembled piecemeal and filled with defaults at build time.
type OptionDataPriceParams struct {
	UnderlyingPrice  *model.Positive
	ExpirationDate   *model.ExpirationDate
	RiskFreeRate     *decimal.Decimal
	DividendYield    *model.Positive
	UnderlyingSymbol *string
}

func (p *OptionDataPriceParams) underlying() model.Positive {
	if p.UnderlyingPrice == nil {
		return model.PZero
	}
	return *p.UnderlyingPrice
}

func (p *OptionDataPriceParams) expiration() model.ExpirationDate {
	if p.ExpirationDate == nil {
		return model.Days(model.MustPositive(30))
	}
	return *p.ExpirationDate
}

func (p *OptionDataPriceParams) rate() decimal.Decimal {
	if p.RiskFreeRate == nil {
		return decimal.Zero
	}
	return *p.RiskFreeRate
}

func (p *OptionDataPriceParams) dividend() model.Positive {
	if p.DividendYield == nil {
		return model.PZero
	}
	return *p.DividendYield
}

func (p *OptionDataPriceParams) symbol() string {
	if p.UnderlyingSymbol == nil {
		return ""
	}
	return *p.UnderlyingSymbol
}

// OptionChainBuildParams drives synthetic chain generation.
// ChainSize is the number of strikes on each side of the ATM strike;
// a nil StrikeInterval selects an interval from the underlying's
// magnitude. SkewSlope and SmileCurve shape the per-strike IV as
// iv_atm * (1 + skew*m + smile*m^2) over moneyness m.
type OptionChainBuildParams struct {
	Symbol            string
	Volume            *model.Positive
	ChainSize         int
	StrikeInterval    *model.Positive
	SkewSlope         decimal.Decimal
	SmileCurve        decimal.Decimal
	Spread            model.Positive
	DecimalPlaces     int32
	PriceParams       OptionDataPriceParams
	ImpliedVolatility model.Positive
}

// interval resolves the strike spacing, deriving one from the
// underlying price when none is given.
func (p *OptionChainBuildParams) interval() model.Positive {
	if p.StrikeInterval != nil && !p.StrikeInterval.IsZero() {
		return *p.StrikeInterval
	}
	return autoInterval(p.PriceParams.underlying())
}

func autoInterval(underlying model.Positive) model.Positive {
	u := underlying.Float64()
	switch {
	case u < 25:
		return model.MustPositive(0.5)
	case u < 100:
		return model.POne
	case u < 500:
		return model.MustPositive(5)
	case u < 1000:
		return model.MustPositive(10)
	default:
		return model.MustPositive(25)
	}
}

// RandomPositionsParams selects how many random legs of each kind to
// draw from a chain. Nil quantities mean none of that kind.
type RandomPositionsParams struct {
	QtyCallsLong  *int
	QtyCallsShort *int
	QtyPutsLong   *int
	QtyPutsShort  *int
	Quantity      model.Positive
	OpenFee       model.Positive
	CloseFee      model.Positive
	Seed          uint64
}

func (p *RandomPositionsParams) total() int {
	n := 0
	for _, q := range []*int{p.QtyCallsLong, p.QtyCallsShort, p.QtyPutsLong, p.QtyPutsShort} {
		if q != nil {
			n += *q
		}
	}
	return n
}
