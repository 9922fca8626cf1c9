package strategy

import (
	"github.com/shopspring/decimal"

	"github.com/stratlab/optstrat/chain"
	"github.com/stratlab/optstrat/model"
	"github.com/stratlab/optstrat/opterr"
)

// twoWing drives straddles (equal strikes) and strangles (put strike
// below call strike). positions[0] is the put, positions[1] the call.
type twoWing struct {
	base
	cfg        Config
	side       model.Side
	sameStrike bool
	fees       [2]LegFees
}

func newTwoWing(name string, side model.Side, sameStrike bool, cfg Config,
	putStrike, callStrike, premiumPut, premiumCall model.Positive,
	feesPut, feesCall LegFees) (*twoWing, error) {
	if !putStrike.IsZero() && !callStrike.IsZero() {
		if sameStrike && !putStrike.Equal(callStrike) {
			return nil, &opterr.StrategyError{Strategy: name, Reason: "straddle strikes must match"}
		}
		if !sameStrike && !putStrike.LessThan(callStrike) {
			return nil, &opterr.StrategyError{Strategy: name, Reason: "put strike must be below call strike"}
		}
	}
	w := &twoWing{
		base: base{
			name:       name,
			symbol:     cfg.Symbol,
			underlying: cfg.UnderlyingPrice,
		},
		cfg:        cfg,
		side:       side,
		sameStrike: sameStrike,
		fees:       [2]LegFees{feesPut, feesCall},
	}
	w.positions = []model.Position{
		newLeg(cfg, model.Put, side, putStrike, premiumPut, feesPut),
		newLeg(cfg, model.Call, side, callStrike, premiumCall, feesCall),
	}
	if !putStrike.IsZero() && !callStrike.IsZero() {
		w.recompute()
	}
	return w, nil
}

func (w *twoWing) recompute() {
	put, call := &w.positions[0], &w.positions[1]
	qty := w.cfg.quantity()
	n := qty.Dec()
	fees := w.GetFees().Dec()
	perUnitFees := feesPerUnit(&w.base, qty)
	totalPremium := put.Premium.Abs().Add(call.Premium.Abs())

	var amount decimal.Decimal
	if w.side == model.Long {
		w.maxProfit = model.PInfinity
		w.maxLoss = clampPositive(totalPremium.Mul(n).Add(fees))
		amount = totalPremium.Add(perUnitFees)
	} else {
		w.maxProfit = clampPositive(totalPremium.Mul(n).Sub(fees))
		w.maxLoss = model.PInfinity
		amount = totalPremium.Sub(perUnitFees)
	}
	w.breakEvenPoints = []model.Positive{
		clampPositive(put.Option.StrikePrice.Dec().Sub(amount)),
		clampPositive(call.Option.StrikePrice.Dec().Add(amount)),
	}
}

func (w *twoWing) baseRef() *base { return &w.base }

func (w *twoWing) comboSize() int { return 2 }

func (w *twoWing) validStrikes(ks []model.Positive) bool {
	if w.sameStrike {
		return ks[0].Equal(ks[1])
	}
	return ks[0].LessThan(ks[1])
}

func (w *twoWing) buildCandidate(ks []model.Positive, ch *chain.OptionChain) (*base, error) {
	premPut, err := ch.LegPremium(ks[0], model.Put, w.side)
	if err != nil {
		return nil, err
	}
	premCall, err := ch.LegPremium(ks[1], model.Call, w.side)
	if err != nil {
		return nil, err
	}
	c, err := newTwoWing(w.name, w.side, w.sameStrike, w.cfg,
		ks[0], ks[1], premPut, premCall, w.fees[0], w.fees[1])
	if err != nil {
		return nil, err
	}
	return &c.base, nil
}

func (w *twoWing) GetBestArea(ch *chain.OptionChain, side FindOptimalSide) error {
	return optimizeMetric(w, ch, side, (*base).GetProfitArea)
}

func (w *twoWing) GetBestRatio(ch *chain.OptionChain, side FindOptimalSide) error {
	return optimizeMetric(w, ch, side, (*base).GetProfitRatio)
}

// LongStraddle buys a call and a put at the same strike.
type LongStraddle struct{ twoWing }

func NewLongStraddle(cfg Config, strike, premiumPut, premiumCall model.Positive,
	feesPut, feesCall LegFees) (*LongStraddle, error) {
	w, err := newTwoWing("Long Straddle", model.Long, true, cfg,
		strike, strike, premiumPut, premiumCall, feesPut, feesCall)
	if err != nil {
		return nil, err
	}
	return &LongStraddle{*w}, nil
}

// ShortStraddle sells a call and a put at the same strike.
type ShortStraddle struct{ twoWing }

func NewShortStraddle(cfg Config, strike, premiumPut, premiumCall model.Positive,
	feesPut, feesCall LegFees) (*ShortStraddle, error) {
	w, err := newTwoWing("Short Straddle", model.Short, true, cfg,
		strike, strike, premiumPut, premiumCall, feesPut, feesCall)
	if err != nil {
		return nil, err
	}
	return &ShortStraddle{*w}, nil
}

// LongStrangle buys an OTM put and an OTM call.
type LongStrangle struct{ twoWing }

func NewLongStrangle(cfg Config, putStrike, callStrike, premiumPut, premiumCall model.Positive,
	feesPut, feesCall LegFees) (*LongStrangle, error) {
	w, err := newTwoWing("Long Strangle", model.Long, false, cfg,
		putStrike, callStrike, premiumPut, premiumCall, feesPut, feesCall)
	if err != nil {
		return nil, err
	}
	return &LongStrangle{*w}, nil
}

// ShortStrangle sells an OTM put and an OTM call.
type ShortStrangle struct{ twoWing }

func NewShortStrangle(cfg Config, putStrike, callStrike, premiumPut, premiumCall model.Positive,
	feesPut, feesCall LegFees) (*ShortStrangle, error) {
	w, err := newTwoWing("Short Strangle", model.Short, false, cfg,
		putStrike, callStrike, premiumPut, premiumCall, feesPut, feesCall)
	if err != nil {
		return nil, err
	}
	return &ShortStrangle{*w}, nil
}
