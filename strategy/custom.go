package strategy

import (
	"github.com/stratlab/optstrat/chain"
	"github.com/stratlab/optstrat/model"
	"github.com/stratlab/optstrat/opterr"
)

// CustomStrategy holds an arbitrary leg list. All aggregate metrics
// come from scanning CalculateProfitAt over a configurable grid.
type CustomStrategy struct {
	base
	cfg Config

	// Scan window and resolution for the numeric metrics.
	LowerBound model.Positive
	UpperBound model.Positive
	GridSteps  int
}

func NewCustomStrategy(cfg Config, positions []model.Position,
	lowerBound, upperBound model.Positive, gridSteps int) (*CustomStrategy, error) {
	if len(positions) == 0 {
		return nil, &opterr.StrategyError{Strategy: "Custom Strategy", Reason: "needs at least one position"}
	}
	if !lowerBound.LessThan(upperBound) {
		return nil, &opterr.StrategyError{Strategy: "Custom Strategy", Reason: "lower bound must be below upper bound"}
	}
	if gridSteps < 2 {
		gridSteps = profitAreaGrid
	}
	cs := &CustomStrategy{
		base: base{
			name:       "Custom Strategy",
			symbol:     cfg.Symbol,
			underlying: cfg.UnderlyingPrice,
			positions:  positions,
		},
		cfg:        cfg,
		LowerBound: lowerBound,
		UpperBound: upperBound,
		GridSteps:  gridSteps,
	}
	cs.recompute()
	return cs, nil
}

func (cs *CustomStrategy) recompute() {
	maxP, maxL := cs.scanExtremes(cs.LowerBound, cs.UpperBound, cs.GridSteps)
	cs.maxProfit = maxP
	cs.maxLoss = maxL
	cs.breakEvenPoints = cs.numericBreakEvens(cs.LowerBound, cs.UpperBound, cs.GridSteps)
}

func (cs *CustomStrategy) baseRef() *base { return &cs.base }

func (cs *CustomStrategy) comboSize() int { return len(cs.positions) }

func (cs *CustomStrategy) validStrikes(ks []model.Positive) bool {
	for i := 1; i < len(ks); i++ {
		if ks[i].LessThan(ks[i-1]) {
			return false
		}
	}
	return true
}

func (cs *CustomStrategy) buildCandidate(ks []model.Positive, ch *chain.OptionChain) (*base, error) {
	legs := make([]model.Position, len(cs.positions))
	for i := range cs.positions {
		leg := cs.positions[i]
		premium, err := ch.LegPremium(ks[i], leg.Option.Style, leg.Option.Side)
		if err != nil {
			return nil, err
		}
		leg.Option.StrikePrice = ks[i]
		leg.Premium = premium.Dec()
		legs[i] = leg
	}
	c, err := NewCustomStrategy(cs.cfg, legs, cs.LowerBound, cs.UpperBound, cs.GridSteps)
	if err != nil {
		return nil, err
	}
	return &c.base, nil
}

func (cs *CustomStrategy) GetBestArea(ch *chain.OptionChain, side FindOptimalSide) error {
	return optimizeMetric(cs, ch, side, (*base).GetProfitArea)
}

func (cs *CustomStrategy) GetBestRatio(ch *chain.OptionChain, side FindOptimalSide) error {
	return optimizeMetric(cs, ch, side, (*base).GetProfitRatio)
}
