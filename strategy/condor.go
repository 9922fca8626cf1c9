package strategy

import (
	"github.com/stratlab/optstrat/chain"
	"github.com/stratlab/optstrat/model"
	"github.com/stratlab/optstrat/opterr"
)

// ironCore drives the four-leg credit structures. Legs are ordered
// long put, short put, short call, long call; the iron butterfly
// collapses the two short strikes onto one.
type ironCore struct {
	base
	cfg       Config
	collapsed bool
	fees      [4]LegFees
}

func newIronCore(name string, collapsed bool, cfg Config,
	longPutStrike, shortPutStrike, shortCallStrike, longCallStrike model.Positive,
	premiumLongPut, premiumShortPut, premiumShortCall, premiumLongCall model.Positive,
	fees [4]LegFees) (*ironCore, error) {
	haveStrikes := !longPutStrike.IsZero() && !shortPutStrike.IsZero() &&
		!shortCallStrike.IsZero() && !longCallStrike.IsZero()
	if haveStrikes {
		if collapsed && !shortPutStrike.Equal(shortCallStrike) {
			return nil, &opterr.StrategyError{Strategy: name, Reason: "short strikes must match"}
		}
		if !longPutStrike.LessThan(shortPutStrike) || shortCallStrike.GreaterThan(longCallStrike) ||
			shortPutStrike.GreaterThan(shortCallStrike) {
			return nil, &opterr.StrategyError{Strategy: name, Reason: "strikes must nest long put < short put <= short call < long call"}
		}
	}
	ic := &ironCore{
		base: base{
			name:       name,
			symbol:     cfg.Symbol,
			underlying: cfg.UnderlyingPrice,
		},
		cfg:       cfg,
		collapsed: collapsed,
		fees:      fees,
	}
	ic.positions = []model.Position{
		newLeg(cfg, model.Put, model.Long, longPutStrike, premiumLongPut, fees[0]),
		newLeg(cfg, model.Put, model.Short, shortPutStrike, premiumShortPut, fees[1]),
		newLeg(cfg, model.Call, model.Short, shortCallStrike, premiumShortCall, fees[2]),
		newLeg(cfg, model.Call, model.Long, longCallStrike, premiumLongCall, fees[3]),
	}
	if haveStrikes {
		ic.recompute()
	}
	return ic, nil
}

func (ic *ironCore) recompute() {
	longPut, shortPut := &ic.positions[0], &ic.positions[1]
	shortCall, longCall := &ic.positions[2], &ic.positions[3]
	qty := ic.cfg.quantity()
	n := qty.Dec()
	fees := ic.GetFees().Dec()
	perUnitFees := feesPerUnit(&ic.base, qty)

	credit := shortPut.Premium.Abs().Add(shortCall.Premium.Abs()).
		Sub(longPut.Premium.Abs()).Sub(longCall.Premium.Abs())

	putWing := shortPut.Option.StrikePrice.Dec().Sub(longPut.Option.StrikePrice.Dec())
	callWing := longCall.Option.StrikePrice.Dec().Sub(shortCall.Option.StrikePrice.Dec())
	wing := putWing
	if callWing.GreaterThan(wing) {
		wing = callWing
	}

	ic.maxProfit = clampPositive(credit.Mul(n).Sub(fees))
	ic.maxLoss = clampPositive(wing.Sub(credit).Mul(n).Add(fees))

	amount := credit.Sub(perUnitFees)
	ic.breakEvenPoints = []model.Positive{
		clampPositive(shortPut.Option.StrikePrice.Dec().Sub(amount)),
		clampPositive(shortCall.Option.StrikePrice.Dec().Add(amount)),
	}
}

func (ic *ironCore) baseRef() *base { return &ic.base }

func (ic *ironCore) comboSize() int {
	if ic.collapsed {
		return 3
	}
	return 4
}

func (ic *ironCore) validStrikes(ks []model.Positive) bool {
	for i := 1; i < len(ks); i++ {
		if !ks[i-1].LessThan(ks[i]) {
			return false
		}
	}
	return true
}

func (ic *ironCore) buildCandidate(ks []model.Positive, ch *chain.OptionChain) (*base, error) {
	var strikes [4]model.Positive
	if ic.collapsed {
		strikes = [4]model.Positive{ks[0], ks[1], ks[1], ks[2]}
	} else {
		strikes = [4]model.Positive{ks[0], ks[1], ks[2], ks[3]}
	}
	styles := [4]model.OptionStyle{model.Put, model.Put, model.Call, model.Call}
	sides := [4]model.Side{model.Long, model.Short, model.Short, model.Long}
	var premia [4]model.Positive
	for i := range strikes {
		p, err := ch.LegPremium(strikes[i], styles[i], sides[i])
		if err != nil {
			return nil, err
		}
		premia[i] = p
	}
	c, err := newIronCore(ic.name, ic.collapsed, ic.cfg,
		strikes[0], strikes[1], strikes[2], strikes[3],
		premia[0], premia[1], premia[2], premia[3], ic.fees)
	if err != nil {
		return nil, err
	}
	return &c.base, nil
}

func (ic *ironCore) GetBestArea(ch *chain.OptionChain, side FindOptimalSide) error {
	return optimizeMetric(ic, ch, side, (*base).GetProfitArea)
}

func (ic *ironCore) GetBestRatio(ch *chain.OptionChain, side FindOptimalSide) error {
	return optimizeMetric(ic, ch, side, (*base).GetProfitRatio)
}

// IronCondor sells an OTM put spread and an OTM call spread.
type IronCondor struct{ ironCore }

func NewIronCondor(cfg Config,
	longPutStrike, shortPutStrike, shortCallStrike, longCallStrike model.Positive,
	premiumLongPut, premiumShortPut, premiumShortCall, premiumLongCall model.Positive,
	fees [4]LegFees) (*IronCondor, error) {
	ic, err := newIronCore("Iron Condor", false, cfg,
		longPutStrike, shortPutStrike, shortCallStrike, longCallStrike,
		premiumLongPut, premiumShortPut, premiumShortCall, premiumLongCall, fees)
	if err != nil {
		return nil, err
	}
	return &IronCondor{*ic}, nil
}

// IronButterfly is an iron condor with both shorts at the same
// strike.
type IronButterfly struct{ ironCore }

func NewIronButterfly(cfg Config,
	longPutStrike, shortStrike, longCallStrike model.Positive,
	premiumLongPut, premiumShortPut, premiumShortCall, premiumLongCall model.Positive,
	fees [4]LegFees) (*IronButterfly, error) {
	ic, err := newIronCore("Iron Butterfly", true, cfg,
		longPutStrike, shortStrike, shortStrike, longCallStrike,
		premiumLongPut, premiumShortPut, premiumShortCall, premiumLongCall, fees)
	if err != nil {
		return nil, err
	}
	return &IronButterfly{*ic}, nil
}
