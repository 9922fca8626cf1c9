package strategy

import (
	"github.com/shopspring/decimal"

	"github.com/stratlab/optstrat/greeks"
	"github.com/stratlab/optstrat/model"
	"github.com/stratlab/optstrat/opterr"
	"github.com/stratlab/optstrat/pricing"
)

// DeltaNeutrality reports the net delta with each leg's contribution.
// Leg deltas are side-signed and quantity-scaled.
func (b *base) DeltaNeutrality() (*DeltaNeutralityInfo, error) {
	if len(b.positions) == 0 {
		return nil, &opterr.StrategyError{Strategy: b.name, Reason: "no positions"}
	}
	info := &DeltaNeutralityInfo{}
	for i := range b.positions {
		p := &b.positions[i]
		d, err := greeks.Delta(&p.Option)
		if err != nil {
			return nil, err
		}
		info.NetDelta = info.NetDelta.Add(d)
		info.IndividualDeltas = append(info.IndividualDeltas, DeltaPositionInfo{
			Strike: p.Option.StrikePrice,
			Delta:  d,
			Style:  p.Option.Style,
			Side:   p.Option.Side,
		})
	}
	return info, nil
}

// IsDeltaNeutral compares the absolute net delta to DeltaThreshold.
func (b *base) IsDeltaNeutral() (bool, error) {
	info, err := b.DeltaNeutrality()
	if err != nil {
		return false, err
	}
	return info.NetDelta.Abs().LessThan(decimal.NewFromFloat(DeltaThreshold)), nil
}

// unitDelta is the delta of a single long contract at the leg's strike
// and style, independent of the leg's own side and quantity.
func unitDelta(p *model.Position) (decimal.Decimal, error) {
	c := p.Option.Clone()
	c.Side = model.Long
	c.Quantity = model.POne
	return greeks.Delta(c)
}

// DeltaAdjustments proposes candidate trades to zero the net delta:
// option legs at the existing strikes, sized by the candidate's own
// unit delta, plus an underlying trade sized one-for-one.
func (b *base) DeltaAdjustments() ([]DeltaAdjustment, error) {
	info, err := b.DeltaNeutrality()
	if err != nil {
		return nil, err
	}
	net := info.NetDelta
	if net.Abs().LessThan(decimal.NewFromFloat(DeltaThreshold)) {
		return []DeltaAdjustment{{Kind: NoAdjustmentNeeded}}, nil
	}

	needNegative := net.IsPositive()
	var out []DeltaAdjustment
	seen := map[string]bool{}
	for i := range b.positions {
		p := &b.positions[i]
		key := p.Option.StrikePrice.String() + "/" + p.Option.Style.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		ud, uerr := unitDelta(p)
		if uerr != nil || ud.IsZero() {
			continue
		}
		qty, qerr := model.NewPositiveDecimal(net.Abs().Div(ud.Abs()))
		if qerr != nil || qty.IsZero() {
			continue
		}
		adj := DeltaAdjustment{
			Quantity: qty,
			Strike:   p.Option.StrikePrice,
			Style:    p.Option.Style,
		}
		// A long call or short put adds positive delta; flip the
		// trade direction to push net delta the other way.
		longAddsPositive := p.Option.Style == model.Call
		switch {
		case needNegative && longAddsPositive:
			adj.Kind, adj.Side = SellOptions, model.Short
		case needNegative && !longAddsPositive:
			adj.Kind, adj.Side = BuyOptions, model.Long
		case !needNegative && longAddsPositive:
			adj.Kind, adj.Side = BuyOptions, model.Long
		default:
			adj.Kind, adj.Side = SellOptions, model.Short
		}
		out = append(out, adj)
	}

	underlyingQty, qerr := model.NewPositiveDecimal(net.Abs())
	if qerr == nil && !underlyingQty.IsZero() {
		kind := BuyUnderlying
		if needNegative {
			kind = SellUnderlying
		}
		out = append(out, DeltaAdjustment{Kind: kind, Quantity: underlyingQty})
	}
	if len(out) == 0 {
		return nil, &opterr.StrategyError{Strategy: b.name, Reason: "no viable delta adjustment"}
	}
	return out, nil
}

// matchesAction maps an adjustment kind onto a trade direction.
func matchesAction(kind DeltaAdjustmentKind, action *model.Action) bool {
	if action == nil {
		return true
	}
	buying := kind == BuyOptions || kind == BuyUnderlying
	if *action == model.Buy {
		return buying
	}
	return !buying
}

// ApplyDeltaAdjustments applies the first option adjustment consistent
// with the requested action, mutating the positions. Underlying
// adjustments are advisory and skipped here. A nil action accepts any
// direction.
func (b *base) ApplyDeltaAdjustments(action *model.Action) error {
	adjustments, err := b.DeltaAdjustments()
	if err != nil {
		return err
	}
	for _, adj := range adjustments {
		if adj.Kind == NoAdjustmentNeeded {
			return nil
		}
		if adj.Kind != BuyOptions && adj.Kind != SellOptions {
			continue
		}
		if !matchesAction(adj.Kind, action) {
			continue
		}
		return b.applyOptionAdjustment(adj)
	}
	return &opterr.StrategyError{Strategy: b.name, Reason: "no adjustment matches the requested action"}
}

// applyOptionAdjustment grows an existing matching leg or appends a
// new one priced at its theoretical value.
func (b *base) applyOptionAdjustment(adj DeltaAdjustment) error {
	for i := range b.positions {
		p := &b.positions[i]
		if p.Option.StrikePrice.Equal(adj.Strike) &&
			p.Option.Style == adj.Style && p.Option.Side == adj.Side {
			p.Option.Quantity = p.Option.Quantity.Add(adj.Quantity)
			return nil
		}
	}
	tmpl := b.positions[0].Option.Clone()
	tmpl.StrikePrice = adj.Strike
	tmpl.Style = adj.Style
	tmpl.Side = adj.Side
	tmpl.Quantity = adj.Quantity
	premium, err := pricing.BlackScholes(tmpl)
	if err != nil {
		return err
	}
	pos := model.NewPosition(*tmpl, premium.Dec(), b.positions[0].OpenDate, model.PZero, model.PZero)
	if err := pos.Validate(); err != nil {
		return err
	}
	b.positions = append(b.positions, *pos)
	return nil
}

// PortfolioGreeks is the aggregated Greek struct over all legs.
func (b *base) PortfolioGreeks() (model.Greek, error) {
	return greeks.ForPositions(b.positions)
}

// AdjustmentConfig bounds what the planner may trade.
type AdjustmentConfig struct {
	AllowNewLegs    bool
	AllowUnderlying bool
	// Budget caps the total premium spent on bought legs plus the
	// notional of underlying trades. Zero means unlimited.
	Budget model.Positive
}

// AdjustmentTarget is the desired net delta with a tolerance band.
type AdjustmentTarget struct {
	Delta     decimal.Decimal
	Tolerance decimal.Decimal
}

// DeltaNeutralTarget aims the planner at zero net delta within the
// library threshold.
func DeltaNeutralTarget() AdjustmentTarget {
	return AdjustmentTarget{Delta: decimal.Zero, Tolerance: decimal.NewFromFloat(DeltaThreshold)}
}

// AdjustmentPlan is the planner output: the chosen trades and the net
// delta left over after applying them.
type AdjustmentPlan struct {
	Adjustments []DeltaAdjustment
	Residual    decimal.Decimal
}

// MeetsGreekTargets reports whether the current net delta is inside
// the target band.
func (b *base) MeetsGreekTargets(target AdjustmentTarget) (bool, error) {
	info, err := b.DeltaNeutrality()
	if err != nil {
		return false, err
	}
	return info.NetDelta.Sub(target.Delta).Abs().LessThanOrEqual(target.Tolerance), nil
}

// adjustmentDelta is the signed delta a candidate trade contributes
// and its cash cost for budget accounting.
func (b *base) adjustmentDelta(adj DeltaAdjustment) (delta, cost decimal.Decimal, err error) {
	switch adj.Kind {
	case BuyUnderlying:
		return adj.Quantity.Dec(), adj.Quantity.Dec().Mul(b.underlying.Dec()), nil
	case SellUnderlying:
		return adj.Quantity.Dec().Neg(), adj.Quantity.Dec().Mul(b.underlying.Dec()), nil
	case BuyOptions, SellOptions:
		tmpl := b.positions[0].Option.Clone()
		tmpl.StrikePrice = adj.Strike
		tmpl.Style = adj.Style
		tmpl.Side = adj.Side
		tmpl.Quantity = adj.Quantity
		d, derr := greeks.Delta(tmpl)
		if derr != nil {
			return decimal.Zero, decimal.Zero, derr
		}
		premium, perr := pricing.BlackScholes(tmpl)
		if perr != nil {
			return decimal.Zero, decimal.Zero, perr
		}
		cost = premium.Dec().Mul(adj.Quantity.Dec())
		if adj.Kind == SellOptions {
			cost = decimal.Zero
		}
		return d, cost, nil
	default:
		return decimal.Zero, decimal.Zero, nil
	}
}

// OptimizedAdjustmentPlan greedily picks the candidate trades that
// bring the net delta closest to the target, respecting the config's
// instrument permissions and budget. The residual reports what remains
// after the chosen trades.
func (b *base) OptimizedAdjustmentPlan(cfg AdjustmentConfig, target AdjustmentTarget) (*AdjustmentPlan, error) {
	info, err := b.DeltaNeutrality()
	if err != nil {
		return nil, err
	}
	residual := info.NetDelta.Sub(target.Delta)
	if residual.Abs().LessThanOrEqual(target.Tolerance) {
		return &AdjustmentPlan{
			Adjustments: []DeltaAdjustment{{Kind: NoAdjustmentNeeded}},
			Residual:    residual,
		}, nil
	}

	candidates, err := b.DeltaAdjustments()
	if err != nil {
		return nil, err
	}
	spent := decimal.Zero
	plan := &AdjustmentPlan{Residual: residual}
	for _, adj := range candidates {
		if plan.Residual.Abs().LessThanOrEqual(target.Tolerance) {
			break
		}
		isUnderlying := adj.Kind == BuyUnderlying || adj.Kind == SellUnderlying
		if isUnderlying && !cfg.AllowUnderlying {
			continue
		}
		if !isUnderlying && !cfg.AllowNewLegs {
			continue
		}
		d, cost, derr := b.adjustmentDelta(adj)
		if derr != nil || d.IsZero() {
			continue
		}
		// Skip trades that push the residual further from zero.
		if plan.Residual.Add(d).Abs().GreaterThanOrEqual(plan.Residual.Abs()) {
			continue
		}
		if !cfg.Budget.IsZero() && spent.Add(cost).GreaterThan(cfg.Budget.Dec()) {
			continue
		}
		spent = spent.Add(cost)
		plan.Adjustments = append(plan.Adjustments, adj)
		plan.Residual = plan.Residual.Add(d)
	}
	if len(plan.Adjustments) == 0 {
		return nil, &opterr.StrategyError{Strategy: b.name, Reason: "no adjustment fits the config"}
	}
	return plan, nil
}
