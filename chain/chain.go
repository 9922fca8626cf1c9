package chain

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/rand"

	"github.com/stratlab/optstrat/greeks"
	"github.com/stratlab/optstrat/model"
	"github.com/stratlab/optstrat/opterr"
	"github.com/stratlab/optstrat/pricing"
)

// OptionData is one strike row of a chain. Quote fields are pointers
// so a missing market quote is distinguishable from a zero one.
type OptionData struct {
	StrikePrice       model.Positive   `csv:"strike_price" json:"strike_price"`
	CallBid           *model.Positive  `csv:"call_bid" json:"call_bid,omitempty"`
	CallAsk           *model.Positive  `csv:"call_ask" json:"call_ask,omitempty"`
	PutBid            *model.Positive  `csv:"put_bid" json:"put_bid,omitempty"`
	PutAsk            *model.Positive  `csv:"put_ask" json:"put_ask,omitempty"`
	ImpliedVolatility model.Positive   `csv:"implied_volatility" json:"implied_volatility"`
	DeltaCall         *decimal.Decimal `csv:"delta_call" json:"delta_call,omitempty"`
	DeltaPut          *decimal.Decimal `csv:"delta_put" json:"delta_put,omitempty"`
	Gamma             *decimal.Decimal `csv:"gamma" json:"gamma,omitempty"`
	Volume            *model.Positive  `csv:"volume" json:"volume,omitempty"`
	OpenInterest      uint64           `csv:"open_interest" json:"open_interest"`
	ExtraFields       map[string]string `csv:"-" json:"extra_fields,omitempty"`
}

// CallMid is the quoted call mid price, if both sides are present.
func (d *OptionData) CallMid() *model.Positive {
	return midOf(d.CallBid, d.CallAsk)
}

func (d *OptionData) PutMid() *model.Positive {
	return midOf(d.PutBid, d.PutAsk)
}

func midOf(bid, ask *model.Positive) *model.Positive {
	if bid == nil || ask == nil {
		return nil
	}
	mid := bid.Dec().Add(ask.Dec()).Div(decimal.NewFromInt(2))
	p, err := model.NewPositiveDecimal(mid)
	if err != nil {
		return nil
	}
	return &p
}

func (d *OptionData) validate() error {
	if d.StrikePrice.IsZero() {
		return &opterr.ChainError{Reason: "strike must be positive"}
	}
	if d.CallBid != nil && d.CallAsk != nil && d.CallAsk.LessThan(*d.CallBid) {
		return &opterr.ChainError{Reason: fmt.Sprintf("call bid %s above ask %s at strike %s", d.CallBid, d.CallAsk, d.StrikePrice)}
	}
	if d.PutBid != nil && d.PutAsk != nil && d.PutAsk.LessThan(*d.PutBid) {
		return &opterr.ChainError{Reason: fmt.Sprintf("put bid %s above ask %s at strike %s", d.PutBid, d.PutAsk, d.StrikePrice)}
	}
	return nil
}

// OptionChain is a strike-ordered table of quotes for one symbol and
// expiration. Rows stay sorted by strike and strikes are unique.
type OptionChain struct {
	Symbol          string           `json:"symbol"`
	UnderlyingPrice model.Positive   `json:"underlying_price"`
	ExpirationDate  model.ExpirationDate `json:"-"`
	Expiration      string           `json:"expiration_date"`
	RiskFreeRate    decimal.Decimal  `json:"risk_free_rate"`
	DividendYield   model.Positive   `json:"dividend_yield"`
	Spread          model.Positive   `json:"spread"`
	Options         []*OptionData    `json:"options"`

	skewSlope  decimal.Decimal
	smileCurve decimal.Decimal
}

// New creates an empty chain.
func New(symbol string, underlying model.Positive, expiration string,
	riskFreeRate decimal.Decimal, dividendYield model.Positive) (*OptionChain, error) {
	exp, err := model.ParseExpiration(expiration)
	if err != nil {
		return nil, &opterr.ChainError{Symbol: symbol, Reason: "bad expiration: " + err.Error()}
	}
	return &OptionChain{
		Symbol:          symbol,
		UnderlyingPrice: underlying,
		ExpirationDate:  exp,
		Expiration:      exp.String(),
		RiskFreeRate:    riskFreeRate,
		DividendYield:   dividendYield,
	}, nil
}

// AddOption inserts a row at the given strike, keeping the table
// sorted. An existing strike has its optional fields overwritten.
func (c *OptionChain) AddOption(row *OptionData) error {
	if err := row.validate(); err != nil {
		return err
	}
	i := sort.Search(len(c.Options), func(i int) bool {
		return !c.Options[i].StrikePrice.LessThan(row.StrikePrice)
	})
	if i < len(c.Options) && c.Options[i].StrikePrice.Equal(row.StrikePrice) {
		existing := c.Options[i]
		existing.ImpliedVolatility = row.ImpliedVolatility
		if row.CallBid != nil {
			existing.CallBid = row.CallBid
		}
		if row.CallAsk != nil {
			existing.CallAsk = row.CallAsk
		}
		if row.PutBid != nil {
			existing.PutBid = row.PutBid
		}
		if row.PutAsk != nil {
			existing.PutAsk = row.PutAsk
		}
		if row.DeltaCall != nil {
			existing.DeltaCall = row.DeltaCall
		}
		if row.DeltaPut != nil {
			existing.DeltaPut = row.DeltaPut
		}
		if row.Gamma != nil {
			existing.Gamma = row.Gamma
		}
		if row.Volume != nil {
			existing.Volume = row.Volume
		}
		if row.OpenInterest != 0 {
			existing.OpenInterest = row.OpenInterest
		}
		return nil
	}
	c.Options = append(c.Options, nil)
	copy(c.Options[i+1:], c.Options[i:])
	c.Options[i] = row
	return nil
}

func (c *OptionChain) Len() int { return len(c.Options) }

// GetTitle is the display name used for exports.
func (c *OptionChain) GetTitle() string {
	return fmt.Sprintf("%s-%s-%s", c.Symbol, c.ExpirationDate.String(), c.UnderlyingPrice.String())
}

func (c *OptionChain) GetExpiration() model.ExpirationDate { return c.ExpirationDate }

// AtmStrike is the strike closest to the underlying price.
func (c *OptionChain) AtmStrike() (model.Positive, error) {
	if len(c.Options) == 0 {
		return model.PZero, &opterr.ChainError{Symbol: c.Symbol, Reason: "empty chain"}
	}
	best := c.Options[0].StrikePrice
	bestDist := best.Dec().Sub(c.UnderlyingPrice.Dec()).Abs()
	for _, row := range c.Options[1:] {
		dist := row.StrikePrice.Dec().Sub(c.UnderlyingPrice.Dec()).Abs()
		if dist.LessThan(bestDist) {
			best, bestDist = row.StrikePrice, dist
		}
	}
	return best, nil
}

// atmRow is the row at the ATM strike.
func (c *OptionChain) atmRow() (*OptionData, error) {
	strike, err := c.AtmStrike()
	if err != nil {
		return nil, err
	}
	for _, row := range c.Options {
		if row.StrikePrice.Equal(strike) {
			return row, nil
		}
	}
	return nil, &opterr.ChainError{Symbol: c.Symbol, Reason: "atm row missing"}
}

// rowOptions builds a unit long contract with the chain's context for
// pricing a row.
func (c *OptionChain) rowOptions(style model.OptionStyle, strike, iv model.Positive) *model.Options {
	return model.NewOptions(model.EuropeanType(), model.Long, c.Symbol, strike,
		c.ExpirationDate, iv, model.POne, c.UnderlyingPrice, c.RiskFreeRate, style, c.DividendYield)
}

// BuildChain generates a synthetic chain of 2*ChainSize+1 strikes
// centered on the ATM strike. Per-strike IV follows the configured
// skew and smile over forward moneyness, and bid/ask straddle the
// theoretical mid by half the spread.
func BuildChain(params *OptionChainBuildParams) (*OptionChain, error) {
	underlying := params.PriceParams.underlying()
	if underlying.IsZero() {
		return nil, &opterr.ChainError{Symbol: params.Symbol, Reason: "underlying price required"}
	}
	if params.ChainSize < 1 {
		return nil, &opterr.ChainError{Symbol: params.Symbol, Reason: "chain size must be at least 1"}
	}
	if params.ImpliedVolatility.IsZero() {
		return nil, &opterr.ChainError{Symbol: params.Symbol, Reason: "base implied volatility required"}
	}
	exp := params.PriceParams.expiration()
	c := &OptionChain{
		Symbol:          params.Symbol,
		UnderlyingPrice: underlying,
		ExpirationDate:  exp,
		Expiration:      exp.String(),
		RiskFreeRate:    params.PriceParams.rate(),
		DividendYield:   params.PriceParams.dividend(),
		Spread:          params.Spread,
		skewSlope:       params.SkewSlope,
		smileCurve:      params.SmileCurve,
	}

	interval := params.interval()
	atm := nearestMultiple(underlying, interval)
	forward, err := c.forward()
	if err != nil {
		return nil, err
	}

	for k := -params.ChainSize; k <= params.ChainSize; k++ {
		strike := atm.Dec().Add(interval.Dec().Mul(decimal.NewFromInt(int64(k))))
		if !strike.IsPositive() {
			continue
		}
		sp, err := model.NewPositiveDecimal(strike)
		if err != nil {
			continue
		}
		iv := smileIV(params.ImpliedVolatility, forward, sp, params.SkewSlope, params.SmileCurve)

		row := &OptionData{StrikePrice: sp, ImpliedVolatility: iv, Volume: params.Volume}
		if err := c.fillQuotes(row, params.Spread, params.DecimalPlaces); err != nil {
			return nil, err
		}
		if err := c.AddOption(row); err != nil {
			return nil, err
		}
	}
	if err := c.UpdateGreeks(); err != nil {
		return nil, err
	}
	return c, nil
}

// forward is the model forward price exp((r-q)T) * S.
func (c *OptionChain) forward() (model.Positive, error) {
	t, err := c.ExpirationDate.YearFraction()
	if err != nil {
		return model.PZero, &opterr.ChainError{Symbol: c.Symbol, Reason: err.Error()}
	}
	r := c.RiskFreeRate.InexactFloat64()
	q := c.DividendYield.Float64()
	f := c.UnderlyingPrice.Float64() * math.Exp((r-q)*t.Float64())
	return model.NewPositive(f)
}

// smileIV is iv_atm * (1 + skew*m + smile*m^2) over moneyness
// m = (strike - forward) / forward, floored just above zero.
func smileIV(ivATM, forward, strike model.Positive, skew, smile decimal.Decimal) model.Positive {
	m := strike.Dec().Sub(forward.Dec()).Div(forward.Dec())
	factor := decimal.NewFromInt(1).Add(skew.Mul(m)).Add(smile.Mul(m).Mul(m))
	iv := ivATM.Dec().Mul(factor)
	floor := decimal.NewFromFloat(1e-4)
	if iv.LessThan(floor) {
		iv = floor
	}
	p, _ := model.NewPositiveDecimal(iv)
	return p
}

// fillQuotes prices both sides at the row's IV and derives bid/ask
// around the mid.
func (c *OptionChain) fillQuotes(row *OptionData, spread model.Positive, places int32) error {
	half := spread.Dec().Div(decimal.NewFromInt(2))
	for _, style := range []model.OptionStyle{model.Call, model.Put} {
		mid, err := pricing.BlackScholes(c.rowOptions(style, row.StrikePrice, row.ImpliedVolatility))
		if err != nil {
			return &opterr.ChainError{Symbol: c.Symbol, Reason: "pricing row: " + err.Error()}
		}
		bidDec := mid.Dec().Sub(half)
		if bidDec.IsNegative() {
			bidDec = decimal.Zero
		}
		bid, _ := model.NewPositiveDecimal(bidDec.Round(places))
		ask, _ := model.NewPositiveDecimal(mid.Dec().Add(half).Round(places))
		if style == model.Call {
			row.CallBid, row.CallAsk = &bid, &ask
		} else {
			row.PutBid, row.PutAsk = &bid, &ask
		}
	}
	return nil
}

func nearestMultiple(v, interval model.Positive) model.Positive {
	n := v.Dec().Div(interval.Dec()).Round(0)
	p, _ := model.NewPositiveDecimal(n.Mul(interval.Dec()))
	return p
}

// UpdateGreeks recomputes call and put deltas and gamma on every row
// from the row's IV and the chain context.
func (c *OptionChain) UpdateGreeks() error {
	for _, row := range c.Options {
		call := c.rowOptions(model.Call, row.StrikePrice, row.ImpliedVolatility)
		put := c.rowOptions(model.Put, row.StrikePrice, row.ImpliedVolatility)
		dc, err := greeks.Delta(call)
		if err != nil {
			return &opterr.ChainError{Symbol: c.Symbol, Reason: "delta: " + err.Error()}
		}
		dp, err := greeks.Delta(put)
		if err != nil {
			return &opterr.ChainError{Symbol: c.Symbol, Reason: "delta: " + err.Error()}
		}
		g, err := greeks.Gamma(call)
		if err != nil {
			return &opterr.ChainError{Symbol: c.Symbol, Reason: "gamma: " + err.Error()}
		}
		row.DeltaCall, row.DeltaPut, row.Gamma = &dc, &dp, &g
	}
	return nil
}

// UpdateExpirationDate rewrites the expiration and refreshes the
// fields derived from it.
func (c *OptionChain) UpdateExpirationDate(expiration string) error {
	exp, err := model.ParseExpiration(expiration)
	if err != nil {
		return &opterr.ChainError{Symbol: c.Symbol, Reason: "bad expiration: " + err.Error()}
	}
	c.ExpirationDate = exp
	c.Expiration = exp.String()
	return c.UpdateGreeks()
}

// UpdateMidPrices fills missing quotes from the theoretical mid plus
// or minus half the chain spread. Present quotes are kept.
func (c *OptionChain) UpdateMidPrices() error {
	half := c.Spread.Dec().Div(decimal.NewFromInt(2))
	for _, row := range c.Options {
		for _, style := range []model.OptionStyle{model.Call, model.Put} {
			bid, ask := row.CallBid, row.CallAsk
			if style == model.Put {
				bid, ask = row.PutBid, row.PutAsk
			}
			if bid != nil && ask != nil {
				continue
			}
			mid, err := pricing.BlackScholes(c.rowOptions(style, row.StrikePrice, row.ImpliedVolatility))
			if err != nil {
				return &opterr.ChainError{Symbol: c.Symbol, Reason: "pricing row: " + err.Error()}
			}
			if bid == nil {
				bd := mid.Dec().Sub(half)
				if bd.IsNegative() {
					bd = decimal.Zero
				}
				b, _ := model.NewPositiveDecimal(bd)
				bid = &b
			}
			if ask == nil {
				a, _ := model.NewPositiveDecimal(mid.Dec().Add(half))
				ask = &a
			}
			if style == model.Call {
				row.CallBid, row.CallAsk = bid, ask
			} else {
				row.PutBid, row.PutAsk = bid, ask
			}
		}
	}
	return nil
}

// ToBuildParams reverse-engineers build parameters from the current
// chain state, for regenerating comparable chains at new underlying
// levels. Skew and smile are fit to the observed IVs by least
// squares; spread and interval are read off the rows.
func (c *OptionChain) ToBuildParams() (*OptionChainBuildParams, error) {
	if len(c.Options) == 0 {
		return nil, &opterr.ChainError{Symbol: c.Symbol, Reason: "empty chain"}
	}
	atm, err := c.atmRow()
	if err != nil {
		return nil, err
	}
	forward, err := c.forward()
	if err != nil {
		return nil, err
	}

	skew, smile := fitSmile(c.Options, atm.ImpliedVolatility, forward)
	if !c.skewSlope.IsZero() || !c.smileCurve.IsZero() {
		skew, smile = c.skewSlope, c.smileCurve
	}

	var interval *model.Positive
	if len(c.Options) > 1 {
		d, err := c.Options[1].StrikePrice.Sub(c.Options[0].StrikePrice)
		if err == nil && !d.IsZero() {
			interval = &d
		}
	}

	spread := c.Spread
	if spread.IsZero() {
		spread = c.observedSpread()
	}

	u := c.UnderlyingPrice
	exp := c.ExpirationDate
	r := c.RiskFreeRate
	q := c.DividendYield
	sym := c.Symbol
	return &OptionChainBuildParams{
		Symbol:            c.Symbol,
		ChainSize:         len(c.Options) / 2,
		StrikeInterval:    interval,
		SkewSlope:         skew,
		SmileCurve:        smile,
		Spread:            spread,
		DecimalPlaces:     2,
		ImpliedVolatility: atm.ImpliedVolatility,
		PriceParams: OptionDataPriceParams{
			UnderlyingPrice:  &u,
			ExpirationDate:   &exp,
			RiskFreeRate:     &r,
			DividendYield:    &q,
			UnderlyingSymbol: &sym,
		},
	}, nil
}

// observedSpread averages the quoted call bid/ask widths.
func (c *OptionChain) observedSpread() model.Positive {
	total := decimal.Zero
	n := 0
	for _, row := range c.Options {
		if row.CallBid != nil && row.CallAsk != nil {
			total = total.Add(row.CallAsk.Dec().Sub(row.CallBid.Dec()))
			n++
		}
	}
	if n == 0 {
		return model.PZero
	}
	p, _ := model.NewPositiveDecimal(total.Div(decimal.NewFromInt(int64(n))))
	return p
}

// fitSmile solves the two-parameter least squares fit of
// iv/iv_atm - 1 = a*m + b*m^2 over the rows' forward moneyness.
func fitSmile(rows []*OptionData, ivATM, forward model.Positive) (decimal.Decimal, decimal.Decimal) {
	if ivATM.IsZero() || forward.IsZero() {
		return decimal.Zero, decimal.Zero
	}
	var s2, s3, s4, sy1, sy2 float64
	fw := forward.Float64()
	atm := ivATM.Float64()
	for _, row := range rows {
		m := (row.StrikePrice.Float64() - fw) / fw
		y := row.ImpliedVolatility.Float64()/atm - 1
		s2 += m * m
		s3 += m * m * m
		s4 += m * m * m * m
		sy1 += m * y
		sy2 += m * m * y
	}
	det := s2*s4 - s3*s3
	if math.Abs(det) < 1e-12 {
		return decimal.Zero, decimal.Zero
	}
	a := (sy1*s4 - sy2*s3) / det
	b := (sy2*s2 - sy1*s3) / det
	return decimal.NewFromFloat(a), decimal.NewFromFloat(b)
}

// GetRandomPositions draws random legs from the chain, one position
// per requested contract, with strikes sampled uniformly from the
// available rows. Long legs pay the ask, short legs receive the bid,
// with theoretical fallback when a quote is missing.
func (c *OptionChain) GetRandomPositions(params *RandomPositionsParams) ([]model.Position, error) {
	if len(c.Options) == 0 {
		return nil, &opterr.ChainError{Symbol: c.Symbol, Reason: "empty chain"}
	}
	if params.total() == 0 {
		return nil, &opterr.ChainError{Symbol: c.Symbol, Reason: "no positions requested"}
	}
	qty := params.Quantity
	if qty.IsZero() {
		qty = model.POne
	}
	rng := rand.New(rand.NewSource(params.Seed))

	type legSpec struct {
		style model.OptionStyle
		side  model.Side
		count *int
	}
	specs := []legSpec{
		{model.Call, model.Long, params.QtyCallsLong},
		{model.Call, model.Short, params.QtyCallsShort},
		{model.Put, model.Long, params.QtyPutsLong},
		{model.Put, model.Short, params.QtyPutsShort},
	}

	positions := make([]model.Position, 0, params.total())
	for _, spec := range specs {
		if spec.count == nil {
			continue
		}
		for i := 0; i < *spec.count; i++ {
			row := c.Options[rng.Intn(len(c.Options))]
			premium, err := c.legPremium(row, spec.style, spec.side)
			if err != nil {
				return nil, err
			}
			opt := model.NewOptions(model.EuropeanType(), spec.side, c.Symbol, row.StrikePrice,
				c.ExpirationDate, row.ImpliedVolatility, qty, c.UnderlyingPrice,
				c.RiskFreeRate, spec.style, c.DividendYield)
			pos := model.NewPosition(*opt, premium.Dec(), time.Now().UTC(), params.OpenFee, params.CloseFee)
			pos.Epic = uuid.NewString()
			positions = append(positions, *pos)
		}
	}
	return positions, nil
}

// LegPremium is the execution price for a leg at an exact strike: ask
// for buys, bid for sells, theoretical when unquoted.
func (c *OptionChain) LegPremium(strike model.Positive, style model.OptionStyle, side model.Side) (model.Positive, error) {
	row, ok := c.RowAt(strike)
	if !ok {
		return model.PZero, &opterr.ChainError{Symbol: c.Symbol, Reason: "no row at strike " + strike.String()}
	}
	return c.legPremium(row, style, side)
}

// legPremium is the execution price for one leg: ask for buys, bid
// for sells, theoretical when unquoted.
func (c *OptionChain) legPremium(row *OptionData, style model.OptionStyle, side model.Side) (model.Positive, error) {
	var quote *model.Positive
	switch {
	case style == model.Call && side == model.Long:
		quote = row.CallAsk
	case style == model.Call && side == model.Short:
		quote = row.CallBid
	case style == model.Put && side == model.Long:
		quote = row.PutAsk
	default:
		quote = row.PutBid
	}
	if quote != nil {
		return *quote, nil
	}
	price, err := pricing.BlackScholes(c.rowOptions(style, row.StrikePrice, row.ImpliedVolatility))
	if err != nil {
		return model.PZero, &opterr.ChainError{Symbol: c.Symbol, Reason: "pricing fallback: " + err.Error()}
	}
	return price, nil
}

// Strikes lists the chain's strikes in ascending order.
func (c *OptionChain) Strikes() []model.Positive {
	out := make([]model.Positive, 0, len(c.Options))
	for _, row := range c.Options {
		out = append(out, row.StrikePrice)
	}
	return out
}

// RowAt returns the row for an exact strike.
func (c *OptionChain) RowAt(strike model.Positive) (*OptionData, bool) {
	i := sort.Search(len(c.Options), func(i int) bool {
		return !c.Options[i].StrikePrice.LessThan(strike)
	})
	if i < len(c.Options) && c.Options[i].StrikePrice.Equal(strike) {
		return c.Options[i], true
	}
	return nil, false
}
