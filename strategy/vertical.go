package strategy

import (
	"github.com/shopspring/decimal"

	"github.com/stratlab/optstrat/chain"
	"github.com/stratlab/optstrat/model"
	"github.com/stratlab/optstrat/opterr"
)

// vertical is the shared engine behind the four two-leg spreads. The
// lower strike leg is positions[0].
type vertical struct {
	base
	cfg      Config
	style    model.OptionStyle
	lowSide  model.Side
	highSide model.Side
	fees     [2]LegFees
}

func newVertical(name string, style model.OptionStyle, lowSide, highSide model.Side,
	cfg Config, lowStrike, highStrike, premiumLow, premiumHigh model.Positive,
	feesLow, feesHigh LegFees) (*vertical, error) {
	if !lowStrike.IsZero() && !highStrike.IsZero() && !lowStrike.LessThan(highStrike) {
		return nil, &opterr.StrategyError{Strategy: name, Reason: "lower strike must be below higher strike"}
	}
	v := &vertical{
		base: base{
			name:       name,
			symbol:     cfg.Symbol,
			underlying: cfg.UnderlyingPrice,
		},
		cfg:      cfg,
		style:    style,
		lowSide:  lowSide,
		highSide: highSide,
		fees:     [2]LegFees{feesLow, feesHigh},
	}
	v.positions = []model.Position{
		newLeg(cfg, style, lowSide, lowStrike, premiumLow, feesLow),
		newLeg(cfg, style, highSide, highStrike, premiumHigh, feesHigh),
	}
	if !lowStrike.IsZero() && !highStrike.IsZero() {
		v.recompute()
	}
	return v, nil
}

// recompute derives break-evens and profit bounds from the legs.
func (v *vertical) recompute() {
	low, high := &v.positions[0], &v.positions[1]
	qty := v.cfg.quantity()
	n := qty.Dec()
	fees := v.GetFees().Dec()
	perUnitFees := feesPerUnit(&v.base, qty)
	width := high.Option.StrikePrice.Dec().Sub(low.Option.StrikePrice.Dec())

	var paid, received decimal.Decimal
	for _, p := range []*model.Position{low, high} {
		if p.IsLong() {
			paid = paid.Add(p.Premium.Abs())
		} else {
			received = received.Add(p.Premium.Abs())
		}
	}
	net := received.Sub(paid)

	var amount decimal.Decimal
	if net.IsPositive() {
		// credit spread
		v.maxProfit = clampPositive(net.Mul(n).Sub(fees))
		v.maxLoss = clampPositive(width.Mul(n).Sub(net.Mul(n)).Add(fees))
		amount = net.Sub(perUnitFees)
	} else {
		debit := net.Neg()
		v.maxProfit = clampPositive(width.Mul(n).Sub(debit.Mul(n)).Sub(fees))
		v.maxLoss = clampPositive(debit.Mul(n).Add(fees))
		amount = debit.Add(perUnitFees)
	}

	var be decimal.Decimal
	if v.style == model.Call {
		be = low.Option.StrikePrice.Dec().Add(amount)
	} else {
		be = high.Option.StrikePrice.Dec().Sub(amount)
	}
	v.breakEvenPoints = []model.Positive{clampPositive(be)}
}

func (v *vertical) baseRef() *base { return &v.base }

func (v *vertical) comboSize() int { return 2 }

func (v *vertical) validStrikes(ks []model.Positive) bool {
	return ks[0].LessThan(ks[1])
}

func (v *vertical) buildCandidate(ks []model.Positive, ch *chain.OptionChain) (*base, error) {
	premLow, err := ch.LegPremium(ks[0], v.style, v.lowSide)
	if err != nil {
		return nil, err
	}
	premHigh, err := ch.LegPremium(ks[1], v.style, v.highSide)
	if err != nil {
		return nil, err
	}
	c, err := newVertical(v.name, v.style, v.lowSide, v.highSide, v.cfg,
		ks[0], ks[1], premLow, premHigh, v.fees[0], v.fees[1])
	if err != nil {
		return nil, err
	}
	return &c.base, nil
}

func (v *vertical) GetBestArea(ch *chain.OptionChain, side FindOptimalSide) error {
	return optimizeMetric(v, ch, side, (*base).GetProfitArea)
}

func (v *vertical) GetBestRatio(ch *chain.OptionChain, side FindOptimalSide) error {
	return optimizeMetric(v, ch, side, (*base).GetProfitRatio)
}

// BullCallSpread buys the lower call and sells the higher.
type BullCallSpread struct{ vertical }

func NewBullCallSpread(cfg Config, lowStrike, highStrike, premiumLow, premiumHigh model.Positive,
	feesLow, feesHigh LegFees) (*BullCallSpread, error) {
	v, err := newVertical("Bull Call Spread", model.Call, model.Long, model.Short,
		cfg, lowStrike, highStrike, premiumLow, premiumHigh, feesLow, feesHigh)
	if err != nil {
		return nil, err
	}
	return &BullCallSpread{*v}, nil
}

// BearCallSpread sells the lower call and buys the higher.
type BearCallSpread struct{ vertical }

func NewBearCallSpread(cfg Config, lowStrike, highStrike, premiumLow, premiumHigh model.Positive,
	feesLow, feesHigh LegFees) (*BearCallSpread, error) {
	v, err := newVertical("Bear Call Spread", model.Call, model.Short, model.Long,
		cfg, lowStrike, highStrike, premiumLow, premiumHigh, feesLow, feesHigh)
	if err != nil {
		return nil, err
	}
	return &BearCallSpread{*v}, nil
}

// BullPutSpread buys the lower put and sells the higher.
type BullPutSpread struct{ vertical }

func NewBullPutSpread(cfg Config, lowStrike, highStrike, premiumLow, premiumHigh model.Positive,
	feesLow, feesHigh LegFees) (*BullPutSpread, error) {
	v, err := newVertical("Bull Put Spread", model.Put, model.Long, model.Short,
		cfg, lowStrike, highStrike, premiumLow, premiumHigh, feesLow, feesHigh)
	if err != nil {
		return nil, err
	}
	return &BullPutSpread{*v}, nil
}

// BearPutSpread sells the lower put and buys the higher.
type BearPutSpread struct{ vertical }

func NewBearPutSpread(cfg Config, lowStrike, highStrike, premiumLow, premiumHigh model.Positive,
	feesLow, feesHigh LegFees) (*BearPutSpread, error) {
	v, err := newVertical("Bear Put Spread", model.Put, model.Short, model.Long,
		cfg, lowStrike, highStrike, premiumLow, premiumHigh, feesLow, feesHigh)
	if err != nil {
		return nil, err
	}
	return &BearPutSpread{*v}, nil
}
