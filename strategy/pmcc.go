package strategy

import (
	"github.com/shopspring/decimal"

	"github.com/stratlab/optstrat/chain"
	"github.com/stratlab/optstrat/model"
	"github.com/stratlab/optstrat/opterr"
)

// PoorMansCoveredCall holds a deep ITM call at a far expiration
// against a short OTM call at a near one. The diagonal has no clean
// closed form, so bounds and break-evens come from a payoff scan.
type PoorMansCoveredCall struct {
	base
	cfg             Config
	shortExpiration model.ExpirationDate
	fees            [2]LegFees
}

func NewPoorMansCoveredCall(cfg Config, shortExpiration model.ExpirationDate,
	longStrike, shortStrike, premiumLong, premiumShort model.Positive,
	feesLong, feesShort LegFees) (*PoorMansCoveredCall, error) {
	haveStrikes := !longStrike.IsZero() && !shortStrike.IsZero()
	if haveStrikes && !longStrike.LessThan(shortStrike) {
		return nil, &opterr.StrategyError{Strategy: "Poor Mans Covered Call", Reason: "long strike must sit below short strike"}
	}
	p := &PoorMansCoveredCall{
		base: base{
			name:       "Poor Mans Covered Call",
			symbol:     cfg.Symbol,
			underlying: cfg.UnderlyingPrice,
		},
		cfg:             cfg,
		shortExpiration: shortExpiration,
		fees:            [2]LegFees{feesLong, feesShort},
	}
	long := newLeg(cfg, model.Call, model.Long, longStrike, premiumLong, feesLong)
	short := newLeg(cfg, model.Call, model.Short, shortStrike, premiumShort, feesShort)
	short.Option.ExpirationDate = shortExpiration
	p.positions = []model.Position{long, short}
	if haveStrikes {
		p.recompute()
	}
	return p, nil
}

func (p *PoorMansCoveredCall) recompute() {
	lo := clampPositive(p.underlying.Dec().Mul(decimal.NewFromFloat(0.5)))
	hi, _ := model.NewPositiveDecimal(p.underlying.Dec().Mul(decimal.NewFromFloat(1.5)))
	maxP, maxL := p.scanExtremes(lo, hi, 2000)
	p.maxProfit = maxP
	p.maxLoss = maxL
	p.breakEvenPoints = p.numericBreakEvens(lo, hi, 2000)
}

func (p *PoorMansCoveredCall) baseRef() *base { return &p.base }

func (p *PoorMansCoveredCall) comboSize() int { return 2 }

func (p *PoorMansCoveredCall) validStrikes(ks []model.Positive) bool {
	return ks[0].LessThan(ks[1])
}

func (p *PoorMansCoveredCall) buildCandidate(ks []model.Positive, ch *chain.OptionChain) (*base, error) {
	premLong, err := ch.LegPremium(ks[0], model.Call, model.Long)
	if err != nil {
		return nil, err
	}
	premShort, err := ch.LegPremium(ks[1], model.Call, model.Short)
	if err != nil {
		return nil, err
	}
	c, err := NewPoorMansCoveredCall(p.cfg, p.shortExpiration,
		ks[0], ks[1], premLong, premShort, p.fees[0], p.fees[1])
	if err != nil {
		return nil, err
	}
	return &c.base, nil
}

func (p *PoorMansCoveredCall) GetBestArea(ch *chain.OptionChain, side FindOptimalSide) error {
	return optimizeMetric(p, ch, side, (*base).GetProfitArea)
}

func (p *PoorMansCoveredCall) GetBestRatio(ch *chain.OptionChain, side FindOptimalSide) error {
	return optimizeMetric(p, ch, side, (*base).GetProfitRatio)
}
