package strategy

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stratlab/optstrat/greeks"
	"github.com/stratlab/optstrat/model"
	"github.com/stratlab/optstrat/opterr"
)

// profitAreaGrid is the sample count used when integrating the
// positive part of the payoff over the display window.
const profitAreaGrid = 1000

// base carries the state every variant shares: legs, break-evens and
// the analytically precomputed profit bounds. Variants embed it and
// fill it in their constructors.
type base struct {
	name            string
	symbol          string
	underlying      model.Positive
	positions       []model.Position
	breakEvenPoints []model.Positive
	maxProfit       model.Positive
	maxLoss         model.Positive
}

func (b *base) GetTitle() string {
	return fmt.Sprintf("%s %s", b.name, b.symbol)
}

func (b *base) GetSymbol() string                  { return b.symbol }
func (b *base) GetUnderlyingPrice() model.Positive { return b.underlying }
func (b *base) GetPositions() []model.Position     { return b.positions }

func (b *base) GetBreakEvenPoints() []model.Positive {
	out := make([]model.Positive, len(b.breakEvenPoints))
	copy(out, b.breakEvenPoints)
	sort.Slice(out, func(i, j int) bool { return out[i].LessThan(out[j]) })
	return out
}

// GetMaxProfit reports PInfinity for theoretically unbounded upside.
func (b *base) GetMaxProfit() (model.Positive, error) {
	return b.maxProfit, nil
}

func (b *base) GetMaxLoss() (model.Positive, error) {
	return b.maxLoss, nil
}

// GetFees sums open and close fees across all legs.
func (b *base) GetFees() model.Positive {
	total := model.PZero
	for i := range b.positions {
		total = total.Add(b.positions[i].Fees())
	}
	return total
}

// GetTotalCost sums each leg's debit side cost.
func (b *base) GetTotalCost() model.Positive {
	total := model.PZero
	for i := range b.positions {
		total = total.Add(b.positions[i].TotalCost())
	}
	return total
}

// GetNetPremiumReceived is short premium collected minus long premium
// paid minus fees, floored at zero for debit strategies.
func (b *base) GetNetPremiumReceived() model.Positive {
	net := decimal.Zero
	for i := range b.positions {
		p := &b.positions[i]
		amount := p.Premium.Abs().Mul(p.Option.Quantity.Dec())
		if p.IsShort() {
			net = net.Add(amount)
		} else {
			net = net.Sub(amount)
		}
	}
	net = net.Sub(b.GetFees().Dec())
	if net.IsNegative() {
		return model.PZero
	}
	p, _ := model.NewPositiveDecimal(net)
	return p
}

// CalculateProfitAt is the strategy P&L if the underlying expires at
// price: the sum of each leg's terminal P&L net of its fees.
func (b *base) CalculateProfitAt(price model.Positive) (decimal.Decimal, error) {
	if len(b.positions) == 0 {
		return decimal.Zero, &opterr.StrategyError{Strategy: b.name, Reason: "no positions"}
	}
	total := decimal.Zero
	for i := range b.positions {
		total = total.Add(b.positions[i].PnLAtExpiration(price))
	}
	return total, nil
}

// profitWindow is the price interval used for area metrics: the
// break-even span padded by one percent of the underlying on each
// side.
func (b *base) profitWindow() (lo, hi model.Positive, err error) {
	points := b.GetBreakEvenPoints()
	if len(points) == 0 {
		return model.PZero, model.PZero, &opterr.StrategyError{Strategy: b.name, Reason: "no break-even points"}
	}
	margin := b.underlying.MulDec(decimal.NewFromFloat(0.01))
	loDec := points[0].Dec().Sub(margin)
	if loDec.IsNegative() {
		loDec = decimal.Zero
	}
	lo, _ = model.NewPositiveDecimal(loDec)
	hi, _ = model.NewPositiveDecimal(points[len(points)-1].Dec().Add(margin))
	return lo, hi, nil
}

// GetProfitArea integrates the positive part of the payoff over the
// profit window and normalizes by the window width, as a percentage
// of the underlying price.
func (b *base) GetProfitArea() (decimal.Decimal, error) {
	lo, hi, err := b.profitWindow()
	if err != nil {
		return decimal.Zero, err
	}
	span := hi.Dec().Sub(lo.Dec())
	if !span.IsPositive() {
		return decimal.Zero, nil
	}
	step := span.Div(decimal.NewFromInt(profitAreaGrid))
	area := decimal.Zero
	prev := decimal.Zero
	for i := 0; i <= profitAreaGrid; i++ {
		x := lo.Dec().Add(step.Mul(decimal.NewFromInt(int64(i))))
		px, perr := model.NewPositiveDecimal(x)
		if perr != nil {
			continue
		}
		profit, perr2 := b.CalculateProfitAt(px)
		if perr2 != nil {
			return decimal.Zero, perr2
		}
		if profit.IsNegative() {
			profit = decimal.Zero
		}
		if i > 0 {
			area = area.Add(prev.Add(profit).Div(decimal.NewFromInt(2)).Mul(step))
		}
		prev = profit
	}
	if b.underlying.IsZero() {
		return decimal.Zero, &opterr.StrategyError{Strategy: b.name, Reason: "underlying price unset"}
	}
	return area.Div(span).Div(b.underlying.Dec()).Mul(decimal.NewFromInt(100)), nil
}

// GetProfitRatio is max_profit over max_loss in percent; infinite
// when loss-free, zero when profitless.
func (b *base) GetProfitRatio() (decimal.Decimal, error) {
	if b.maxProfit.IsZero() {
		return decimal.Zero, nil
	}
	if b.maxLoss.IsZero() || b.maxProfit.IsInfinite() {
		return model.PInfinity.Dec(), nil
	}
	if b.maxLoss.IsInfinite() {
		return decimal.Zero, nil
	}
	return b.maxProfit.Dec().Div(b.maxLoss.Dec()).Mul(decimal.NewFromInt(100)), nil
}

// GetRangeOfProfit is the distance between the outer break-evens.
func (b *base) GetRangeOfProfit() (model.Positive, error) {
	points := b.GetBreakEvenPoints()
	switch len(points) {
	case 0:
		return model.PZero, &opterr.StrategyError{Strategy: b.name, Reason: "no break-even points"}
	case 1:
		return model.PInfinity, nil
	default:
		return points[len(points)-1].Sub(points[0])
	}
}

// GetBestRangeToShow returns a price grid spanning the strikes padded
// by a few steps, discretized by step.
func (b *base) GetBestRangeToShow(step model.Positive) []model.Positive {
	if len(b.positions) == 0 || step.IsZero() {
		return nil
	}
	min := b.positions[0].Option.StrikePrice
	max := min
	for i := range b.positions[1:] {
		k := b.positions[i+1].Option.StrikePrice
		min = min.Min(k)
		max = max.Max(k)
	}
	pad := step.MulDec(decimal.NewFromInt(3))
	loDec := min.Dec().Sub(pad)
	if loDec.IsNegative() {
		loDec = decimal.Zero
	}
	hi := max.Dec().Add(pad)

	var out []model.Positive
	for x := loDec; !x.GreaterThan(hi); x = x.Add(step.Dec()) {
		p, err := model.NewPositiveDecimal(x)
		if err != nil {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Greeks sums per-leg greeks; signs come from each leg's side.
func (b *base) Greeks() (model.Greek, error) {
	return greeks.ForPositions(b.positions)
}

func (b *base) NetDelta() (decimal.Decimal, error) {
	return greeks.NetDelta(b.positions)
}

// PnLAtPrice evaluates the strategy as a PnL snapshot at a price.
func (b *base) PnLAtPrice(price model.Positive) (*model.PnL, error) {
	profit, err := b.CalculateProfitAt(price)
	if err != nil {
		return nil, err
	}
	costs := model.PZero
	income := model.PZero
	for i := range b.positions {
		p := &b.positions[i]
		costs = costs.Add(p.TotalCost())
		income = income.Add(p.PremiumReceived())
	}
	pnl := model.NewPnL(nil, &profit, costs, income, time.Now())
	return &pnl, nil
}

// AddPosition appends a leg. The caller recomputes derived state.
func (b *base) AddPosition(p model.Position) error {
	if err := p.Validate(); err != nil {
		return err
	}
	b.positions = append(b.positions, p)
	return nil
}

// ModifyPosition replaces the leg matching the same contract.
func (b *base) ModifyPosition(p model.Position) error {
	for i := range b.positions {
		if b.positions[i].SameContract(&p) {
			b.positions[i] = p
			return nil
		}
	}
	return &opterr.StrategyError{Strategy: b.name, Reason: "no matching position to modify"}
}

// numericBreakEvens root-searches CalculateProfitAt by sign change
// over a strike-bounded window, for strategies without closed forms.
func (b *base) numericBreakEvens(lo, hi model.Positive, samples int) []model.Positive {
	if samples < 2 {
		samples = 2
	}
	span := hi.Dec().Sub(lo.Dec())
	if !span.IsPositive() {
		return nil
	}
	step := span.Div(decimal.NewFromInt(int64(samples)))
	var out []model.Positive
	prevX := lo
	prev, err := b.CalculateProfitAt(prevX)
	if err != nil {
		return nil
	}
	for i := 1; i <= samples; i++ {
		x, perr := model.NewPositiveDecimal(lo.Dec().Add(step.Mul(decimal.NewFromInt(int64(i)))))
		if perr != nil {
			continue
		}
		cur, cerr := b.CalculateProfitAt(x)
		if cerr != nil {
			return nil
		}
		if prev.Sign()*cur.Sign() < 0 || cur.IsZero() {
			out = append(out, b.bisectBreakEven(prevX, x))
		}
		prevX, prev = x, cur
	}
	return out
}

func (b *base) bisectBreakEven(lo, hi model.Positive) model.Positive {
	fLo, err := b.CalculateProfitAt(lo)
	if err != nil {
		return lo
	}
	two := decimal.NewFromInt(2)
	for i := 0; i < 60; i++ {
		mid, merr := model.NewPositiveDecimal(lo.Dec().Add(hi.Dec()).Div(two))
		if merr != nil {
			return lo
		}
		fMid, ferr := b.CalculateProfitAt(mid)
		if ferr != nil {
			return mid
		}
		if fMid.IsZero() {
			return mid
		}
		if fLo.Sign()*fMid.Sign() < 0 {
			hi = mid
		} else {
			lo, fLo = mid, fMid
		}
	}
	p, _ := model.NewPositiveDecimal(lo.Dec().Add(hi.Dec()).Div(two))
	return p
}
