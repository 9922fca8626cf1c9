package strategy

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/vbauerster/mpb/v7"
	"github.com/vbauerster/mpb/v7/decor"
	"go.uber.org/zap"

	"github.com/stratlab/optstrat/chain"
	"github.com/stratlab/optstrat/logging"
	"github.com/stratlab/optstrat/model"
	"github.com/stratlab/optstrat/opterr"
)

// progressThreshold is the combination count above which a progress
// bar is shown during a chain scan.
const progressThreshold = 2000

// searchable is what a variant exposes to the optimizer: its combo
// arity, its strike-ordering constraint, and a way to price a
// candidate configuration off a chain.
type searchable interface {
	comboSize() int
	validStrikes(ks []model.Positive) bool
	buildCandidate(ks []model.Positive, ch *chain.OptionChain) (*base, error)
	baseRef() *base
}

// adopt copies the winning configuration into the receiver.
func (b *base) adopt(winner *base) {
	b.positions = winner.positions
	b.breakEvenPoints = winner.breakEvenPoints
	b.maxProfit = winner.maxProfit
	b.maxLoss = winner.maxLoss
}

// optimizeMetric scans every strike tuple allowed by the side filter,
// evaluates metric on each candidate and mutates the receiver to the
// argmax. Ties break by smaller total fees, then by narrower strike
// span. The scan order is ascending, so results are deterministic for
// a given chain and side.
func optimizeMetric(s searchable, ch *chain.OptionChain, side FindOptimalSide,
	metric func(*base) (decimal.Decimal, error)) error {
	strikes, err := filterStrikes(s, ch, side)
	if err != nil {
		return err
	}
	k := s.comboSize()
	if len(strikes) < 1 {
		return &opterr.StrategyError{Strategy: s.baseRef().name, Reason: "no strikes satisfy the filter"}
	}

	total := combinationsWithRepetition(len(strikes), k)
	var bar *mpb.Bar
	var progress *mpb.Progress
	if total > progressThreshold {
		progress = mpb.New(mpb.WithWidth(64))
		bar = progress.AddBar(int64(total),
			mpb.PrependDecorators(
				decor.Name("Optimizing"),
				decor.Percentage(decor.WCSyncSpace),
			),
			mpb.AppendDecorators(
				decor.CountersNoUnit("(%d / %d)", decor.WCSyncSpace),
			),
		)
	}

	var best *base
	var bestMetric decimal.Decimal
	tuple := make([]model.Positive, k)

	var walk func(pos, start int)
	walk = func(pos, start int) {
		if pos == k {
			if bar != nil {
				bar.Increment()
			}
			if !s.validStrikes(tuple) {
				return
			}
			cand, cerr := s.buildCandidate(tuple, ch)
			if cerr != nil {
				return
			}
			m, merr := metric(cand)
			if merr != nil {
				return
			}
			if best == nil || better(m, cand, bestMetric, best) {
				best = cand
				bestMetric = m
			}
			return
		}
		for i := start; i < len(strikes); i++ {
			tuple[pos] = strikes[i]
			walk(pos+1, i)
		}
	}
	walk(0, 0)
	if progress != nil {
		progress.Wait()
	}

	if best == nil {
		return &opterr.StrategyError{Strategy: s.baseRef().name, Reason: "no feasible configuration for the filter"}
	}
	s.baseRef().adopt(best)
	logging.L().Debug("optimization finished",
		zap.String("strategy", best.name),
		zap.Int("combinations", total),
		zap.String("metric", bestMetric.String()))
	return nil
}

// better prefers a higher metric; on a tie, lower fees, then a
// narrower strike span.
func better(m decimal.Decimal, cand *base, bestMetric decimal.Decimal, best *base) bool {
	if m.GreaterThan(bestMetric) {
		return true
	}
	if m.LessThan(bestMetric) {
		return false
	}
	cf, bf := cand.GetFees(), best.GetFees()
	if cf.LessThan(bf) {
		return true
	}
	if bf.LessThan(cf) {
		return false
	}
	return strikeSpan(cand).LessThan(strikeSpan(best))
}

func strikeSpan(b *base) model.Positive {
	if len(b.positions) == 0 {
		return model.PZero
	}
	min := b.positions[0].Option.StrikePrice
	max := min
	for i := 1; i < len(b.positions); i++ {
		k := b.positions[i].Option.StrikePrice
		min = min.Min(k)
		max = max.Max(k)
	}
	return max.SubOrZero(min)
}

// filterStrikes restricts a chain's strikes by the FindOptimalSide
// constraint.
func filterStrikes(s searchable, ch *chain.OptionChain, side FindOptimalSide) ([]model.Positive, error) {
	if len(ch.Options) == 0 {
		return nil, &opterr.StrategyError{Strategy: s.baseRef().name, Reason: "empty chain"}
	}
	underlying := ch.UnderlyingPrice
	var out []model.Positive
	for _, row := range ch.Options {
		k := row.StrikePrice
		switch side.Kind {
		case Upper:
			if k.Cmp(underlying) >= 0 {
				out = append(out, k)
			}
		case Lower:
			if k.Cmp(underlying) <= 0 {
				out = append(out, k)
			}
		case All:
			out = append(out, k)
		case StrikeRange:
			if k.Cmp(side.Lo) >= 0 && k.Cmp(side.Hi) <= 0 {
				out = append(out, k)
			}
		case DeltaRange:
			if deltaInRange(row, side.DeltaLo, side.DeltaHi) {
				out = append(out, k)
			}
		case Center:
			out = append(out, k)
		}
	}
	if side.Kind == Center {
		out = nearestStrikes(out, underlying, 2*s.comboSize()+1)
	}
	return out, nil
}

// deltaInRange accepts a strike whose call delta or absolute put
// delta falls inside [lo, hi].
func deltaInRange(row *chain.OptionData, lo, hi decimal.Decimal) bool {
	if row.DeltaCall != nil {
		d := *row.DeltaCall
		if d.Cmp(lo) >= 0 && d.Cmp(hi) <= 0 {
			return true
		}
	}
	if row.DeltaPut != nil {
		d := row.DeltaPut.Abs()
		if d.Cmp(lo) >= 0 && d.Cmp(hi) <= 0 {
			return true
		}
	}
	return false
}

// nearestStrikes keeps the n strikes closest to the underlying,
// returned in ascending order.
func nearestStrikes(strikes []model.Positive, underlying model.Positive, n int) []model.Positive {
	if len(strikes) <= n {
		return strikes
	}
	sorted := make([]model.Positive, len(strikes))
	copy(sorted, strikes)
	sort.Slice(sorted, func(i, j int) bool {
		di := sorted[i].Dec().Sub(underlying.Dec()).Abs()
		dj := sorted[j].Dec().Sub(underlying.Dec()).Abs()
		return di.LessThan(dj)
	})
	kept := sorted[:n]
	sort.Slice(kept, func(i, j int) bool { return kept[i].LessThan(kept[j]) })
	return kept
}

// combinationsWithRepetition is C(n+k-1, k).
func combinationsWithRepetition(n, k int) int {
	total := 1
	for i := 0; i < k; i++ {
		total = total * (n + i) / (i + 1)
	}
	return total
}
