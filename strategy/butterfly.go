package strategy

import (
	"github.com/shopspring/decimal"

	"github.com/stratlab/optstrat/chain"
	"github.com/stratlab/optstrat/model"
	"github.com/stratlab/optstrat/opterr"
)

// butterfly drives the symmetric three-strike spreads: wings at the
// outer strikes, a doubled body at the middle. positions are ordered
// low, mid, high; the mid leg carries twice the shared quantity.
type butterfly struct {
	base
	cfg      Config
	style    model.OptionStyle
	wingSide model.Side
	fees     [3]LegFees
}

func newButterfly(name string, style model.OptionStyle, wingSide model.Side, cfg Config,
	lowStrike, midStrike, highStrike, premiumLow, premiumMid, premiumHigh model.Positive,
	feesLow, feesMid, feesHigh LegFees) (*butterfly, error) {
	haveStrikes := !lowStrike.IsZero() && !midStrike.IsZero() && !highStrike.IsZero()
	if haveStrikes && (!lowStrike.LessThan(midStrike) || !midStrike.LessThan(highStrike)) {
		return nil, &opterr.StrategyError{Strategy: name, Reason: "strikes must ascend low < mid < high"}
	}
	bodySide := model.Short
	if wingSide == model.Short {
		bodySide = model.Long
	}
	b := &butterfly{
		base: base{
			name:       name,
			symbol:     cfg.Symbol,
			underlying: cfg.UnderlyingPrice,
		},
		cfg:      cfg,
		style:    style,
		wingSide: wingSide,
		fees:     [3]LegFees{feesLow, feesMid, feesHigh},
	}
	mid := newLeg(cfg, style, bodySide, midStrike, premiumMid, feesMid)
	mid.Option.Quantity = cfg.quantity().Mul(model.PTwo)
	b.positions = []model.Position{
		newLeg(cfg, style, wingSide, lowStrike, premiumLow, feesLow),
		mid,
		newLeg(cfg, style, wingSide, highStrike, premiumHigh, feesHigh),
	}
	if haveStrikes {
		b.recompute()
	}
	return b, nil
}

func (b *butterfly) recompute() {
	low, mid, high := &b.positions[0], &b.positions[1], &b.positions[2]
	qty := b.cfg.quantity()
	n := qty.Dec()
	fees := b.GetFees().Dec()
	perUnitFees := feesPerUnit(&b.base, qty)
	width := mid.Option.StrikePrice.Dec().Sub(low.Option.StrikePrice.Dec())

	two := decimal.NewFromInt(2)
	net := mid.Premium.Abs().Mul(two).Sub(low.Premium.Abs()).Sub(high.Premium.Abs())
	if b.wingSide == model.Short {
		net = net.Neg()
	}
	// net > 0 means premium collected
	var amount decimal.Decimal
	if net.IsPositive() {
		b.maxProfit = clampPositive(net.Mul(n).Sub(fees))
		b.maxLoss = clampPositive(width.Mul(n).Sub(net.Mul(n)).Add(fees))
		amount = net.Sub(perUnitFees)
	} else {
		debit := net.Neg()
		b.maxProfit = clampPositive(width.Mul(n).Sub(debit.Mul(n)).Sub(fees))
		b.maxLoss = clampPositive(debit.Mul(n).Add(fees))
		amount = debit.Add(perUnitFees)
	}
	b.breakEvenPoints = []model.Positive{
		clampPositive(low.Option.StrikePrice.Dec().Add(amount)),
		clampPositive(high.Option.StrikePrice.Dec().Sub(amount)),
	}
}

func (b *butterfly) baseRef() *base { return &b.base }

func (b *butterfly) comboSize() int { return 3 }

func (b *butterfly) validStrikes(ks []model.Positive) bool {
	return ks[0].LessThan(ks[1]) && ks[1].LessThan(ks[2])
}

func (b *butterfly) buildCandidate(ks []model.Positive, ch *chain.OptionChain) (*base, error) {
	bodySide := model.Short
	if b.wingSide == model.Short {
		bodySide = model.Long
	}
	premLow, err := ch.LegPremium(ks[0], b.style, b.wingSide)
	if err != nil {
		return nil, err
	}
	premMid, err := ch.LegPremium(ks[1], b.style, bodySide)
	if err != nil {
		return nil, err
	}
	premHigh, err := ch.LegPremium(ks[2], b.style, b.wingSide)
	if err != nil {
		return nil, err
	}
	c, err := newButterfly(b.name, b.style, b.wingSide, b.cfg,
		ks[0], ks[1], ks[2], premLow, premMid, premHigh, b.fees[0], b.fees[1], b.fees[2])
	if err != nil {
		return nil, err
	}
	return &c.base, nil
}

func (b *butterfly) GetBestArea(ch *chain.OptionChain, side FindOptimalSide) error {
	return optimizeMetric(b, ch, side, (*base).GetProfitArea)
}

func (b *butterfly) GetBestRatio(ch *chain.OptionChain, side FindOptimalSide) error {
	return optimizeMetric(b, ch, side, (*base).GetProfitRatio)
}

// LongButterflySpread buys the wings and sells two at the body.
type LongButterflySpread struct{ butterfly }

func NewLongButterflySpread(cfg Config, lowStrike, midStrike, highStrike,
	premiumLow, premiumMid, premiumHigh model.Positive,
	feesLow, feesMid, feesHigh LegFees) (*LongButterflySpread, error) {
	b, err := newButterfly("Long Butterfly Spread", model.Call, model.Long, cfg,
		lowStrike, midStrike, highStrike, premiumLow, premiumMid, premiumHigh,
		feesLow, feesMid, feesHigh)
	if err != nil {
		return nil, err
	}
	return &LongButterflySpread{*b}, nil
}

// ShortButterflySpread sells the wings and buys two at the body.
type ShortButterflySpread struct{ butterfly }

func NewShortButterflySpread(cfg Config, lowStrike, midStrike, highStrike,
	premiumLow, premiumMid, premiumHigh model.Positive,
	feesLow, feesMid, feesHigh LegFees) (*ShortButterflySpread, error) {
	b, err := newButterfly("Short Butterfly Spread", model.Call, model.Short, cfg,
		lowStrike, midStrike, highStrike, premiumLow, premiumMid, premiumHigh,
		feesLow, feesMid, feesHigh)
	if err != nil {
		return nil, err
	}
	return &ShortButterflySpread{*b}, nil
}

// CallButterfly is the ratio variant: one long call below two short
// calls at separate strikes. The naked upper short leaves unbounded
// risk, so profit bounds come from a payoff scan.
type CallButterfly struct {
	base
	cfg  Config
	fees [3]LegFees
}

func NewCallButterfly(cfg Config, longStrike, shortMidStrike, shortHighStrike,
	premiumLong, premiumMid, premiumHigh model.Positive,
	feesLong, feesMid, feesHigh LegFees) (*CallButterfly, error) {
	haveStrikes := !longStrike.IsZero() && !shortMidStrike.IsZero() && !shortHighStrike.IsZero()
	if haveStrikes && (!longStrike.LessThan(shortMidStrike) || !shortMidStrike.LessThan(shortHighStrike)) {
		return nil, &opterr.StrategyError{Strategy: "Call Butterfly", Reason: "strikes must ascend"}
	}
	cb := &CallButterfly{
		base: base{
			name:       "Call Butterfly",
			symbol:     cfg.Symbol,
			underlying: cfg.UnderlyingPrice,
		},
		cfg:  cfg,
		fees: [3]LegFees{feesLong, feesMid, feesHigh},
	}
	cb.positions = []model.Position{
		newLeg(cfg, model.Call, model.Long, longStrike, premiumLong, feesLong),
		newLeg(cfg, model.Call, model.Short, shortMidStrike, premiumMid, feesMid),
		newLeg(cfg, model.Call, model.Short, shortHighStrike, premiumHigh, feesHigh),
	}
	if haveStrikes {
		cb.recompute()
	}
	return cb, nil
}

func (cb *CallButterfly) recompute() {
	low := cb.positions[0].Option.StrikePrice
	high := cb.positions[2].Option.StrikePrice
	width := high.Dec().Sub(low.Dec())
	lo := clampPositive(low.Dec().Sub(width))
	hi, _ := model.NewPositiveDecimal(high.Dec().Add(width))

	maxP, _ := cb.scanExtremes(lo, hi, 2000)
	cb.maxProfit = maxP
	cb.maxLoss = model.PInfinity
	cb.breakEvenPoints = cb.numericBreakEvens(lo, hi, 2000)
}

// scanExtremes samples the payoff over [lo, hi] and returns the
// largest gain and largest loss magnitude found.
func (b *base) scanExtremes(lo, hi model.Positive, samples int) (model.Positive, model.Positive) {
	span := hi.Dec().Sub(lo.Dec())
	if !span.IsPositive() || samples < 2 {
		return model.PZero, model.PZero
	}
	step := span.Div(decimal.NewFromInt(int64(samples)))
	maxGain := decimal.Zero
	maxLoss := decimal.Zero
	for i := 0; i <= samples; i++ {
		x, err := model.NewPositiveDecimal(lo.Dec().Add(step.Mul(decimal.NewFromInt(int64(i)))))
		if err != nil {
			continue
		}
		profit, perr := b.CalculateProfitAt(x)
		if perr != nil {
			continue
		}
		if profit.GreaterThan(maxGain) {
			maxGain = profit
		}
		if profit.Neg().GreaterThan(maxLoss) {
			maxLoss = profit.Neg()
		}
	}
	return clampPositive(maxGain), clampPositive(maxLoss)
}

func (cb *CallButterfly) baseRef() *base { return &cb.base }

func (cb *CallButterfly) comboSize() int { return 3 }

func (cb *CallButterfly) validStrikes(ks []model.Positive) bool {
	return ks[0].LessThan(ks[1]) && ks[1].LessThan(ks[2])
}

func (cb *CallButterfly) buildCandidate(ks []model.Positive, ch *chain.OptionChain) (*base, error) {
	premLong, err := ch.LegPremium(ks[0], model.Call, model.Long)
	if err != nil {
		return nil, err
	}
	premMid, err := ch.LegPremium(ks[1], model.Call, model.Short)
	if err != nil {
		return nil, err
	}
	premHigh, err := ch.LegPremium(ks[2], model.Call, model.Short)
	if err != nil {
		return nil, err
	}
	c, err := NewCallButterfly(cb.cfg, ks[0], ks[1], ks[2],
		premLong, premMid, premHigh, cb.fees[0], cb.fees[1], cb.fees[2])
	if err != nil {
		return nil, err
	}
	return &c.base, nil
}

func (cb *CallButterfly) GetBestArea(ch *chain.OptionChain, side FindOptimalSide) error {
	return optimizeMetric(cb, ch, side, (*base).GetProfitArea)
}

func (cb *CallButterfly) GetBestRatio(ch *chain.OptionChain, side FindOptimalSide) error {
	return optimizeMetric(cb, ch, side, (*base).GetProfitRatio)
}
