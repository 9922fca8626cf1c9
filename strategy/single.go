package strategy

import (
	"github.com/stratlab/optstrat/chain"
	"github.com/stratlab/optstrat/model"
)

// singleLeg drives the one-contract strategies.
type singleLeg struct {
	base
	cfg   Config
	style model.OptionStyle
	side  model.Side
	fees  LegFees
}

func newSingleLeg(name string, style model.OptionStyle, side model.Side, cfg Config,
	strike, premium model.Positive, fees LegFees) *singleLeg {
	s := &singleLeg{
		base: base{
			name:       name,
			symbol:     cfg.Symbol,
			underlying: cfg.UnderlyingPrice,
		},
		cfg:   cfg,
		style: style,
		side:  side,
		fees:  fees,
	}
	s.positions = []model.Position{newLeg(cfg, style, side, strike, premium, fees)}
	if !strike.IsZero() {
		s.recompute()
	}
	return s
}

func (s *singleLeg) recompute() {
	leg := &s.positions[0]
	qty := s.cfg.quantity()
	n := qty.Dec()
	fees := s.GetFees().Dec()
	perUnitFees := feesPerUnit(&s.base, qty)
	k := leg.Option.StrikePrice.Dec()
	prem := leg.Premium.Abs()

	switch {
	case s.style == model.Call && s.side == model.Long:
		s.maxProfit = model.PInfinity
		s.maxLoss = clampPositive(prem.Mul(n).Add(fees))
		s.breakEvenPoints = []model.Positive{clampPositive(k.Add(prem).Add(perUnitFees))}
	case s.style == model.Call && s.side == model.Short:
		s.maxProfit = clampPositive(prem.Mul(n).Sub(fees))
		s.maxLoss = model.PInfinity
		s.breakEvenPoints = []model.Positive{clampPositive(k.Add(prem).Sub(perUnitFees))}
	case s.style == model.Put && s.side == model.Long:
		s.maxProfit = clampPositive(k.Sub(prem).Mul(n).Sub(fees))
		s.maxLoss = clampPositive(prem.Mul(n).Add(fees))
		s.breakEvenPoints = []model.Positive{clampPositive(k.Sub(prem).Sub(perUnitFees))}
	default:
		s.maxProfit = clampPositive(prem.Mul(n).Sub(fees))
		s.maxLoss = clampPositive(k.Sub(prem).Mul(n).Add(fees))
		s.breakEvenPoints = []model.Positive{clampPositive(k.Sub(prem).Add(perUnitFees))}
	}
}

func (s *singleLeg) baseRef() *base { return &s.base }

func (s *singleLeg) comboSize() int { return 1 }

func (s *singleLeg) validStrikes(ks []model.Positive) bool { return true }

func (s *singleLeg) buildCandidate(ks []model.Positive, ch *chain.OptionChain) (*base, error) {
	premium, err := ch.LegPremium(ks[0], s.style, s.side)
	if err != nil {
		return nil, err
	}
	c := newSingleLeg(s.name, s.style, s.side, s.cfg, ks[0], premium, s.fees)
	return &c.base, nil
}

func (s *singleLeg) GetBestArea(ch *chain.OptionChain, side FindOptimalSide) error {
	return optimizeMetric(s, ch, side, (*base).GetProfitArea)
}

func (s *singleLeg) GetBestRatio(ch *chain.OptionChain, side FindOptimalSide) error {
	return optimizeMetric(s, ch, side, (*base).GetProfitRatio)
}

// ShortPut collects premium against downside assignment risk.
type ShortPut struct{ singleLeg }

func NewShortPut(cfg Config, strike, premium model.Positive, fees LegFees) *ShortPut {
	return &ShortPut{*newSingleLeg("Short Put", model.Put, model.Short, cfg, strike, premium, fees)}
}

// LongCall is the plain bullish contract.
type LongCall struct{ singleLeg }

func NewLongCall(cfg Config, strike, premium model.Positive, fees LegFees) *LongCall {
	return &LongCall{*newSingleLeg("Long Call", model.Call, model.Long, cfg, strike, premium, fees)}
}

// LongPut is the plain bearish contract.
type LongPut struct{ singleLeg }

func NewLongPut(cfg Config, strike, premium model.Positive, fees LegFees) *LongPut {
	return &LongPut{*newSingleLeg("Long Put", model.Put, model.Long, cfg, strike, premium, fees)}
}

// ShortCall collects premium against unbounded upside risk.
type ShortCall struct{ singleLeg }

func NewShortCall(cfg Config, strike, premium model.Positive, fees LegFees) *ShortCall {
	return &ShortCall{*newSingleLeg("Short Call", model.Call, model.Short, cfg, strike, premium, fees)}
}
