package sim

import (
	"math"

	"go.uber.org/zap"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"

	"github.com/stratlab/optstrat/logging"
	"github.com/stratlab/optstrat/model"
	"github.com/stratlab/optstrat/opterr"
	"github.com/stratlab/optstrat/strategy"
)

// RandomWalk is a realized step sequence with a display title.
type RandomWalk[T Walkable] struct {
	title string
	steps []Step[T]
}

// NewRandomWalk runs the generator once and stores the result.
func NewRandomWalk[T Walkable](title string, params *WalkParams[T], gen Generator[T]) (*RandomWalk[T], error) {
	if gen == nil {
		gen = Generate[T]
	}
	steps, err := gen(params)
	if err != nil {
		return nil, &opterr.SimulationError{Walk: title, Reason: err.Error()}
	}
	if len(steps) == 0 {
		return nil, &opterr.SimulationError{Walk: title, Reason: "generator produced no steps"}
	}
	return &RandomWalk[T]{title: title, steps: steps}, nil
}

func (r *RandomWalk[T]) Title() string   { return r.title }
func (r *RandomWalk[T]) Len() int        { return len(r.steps) }
func (r *RandomWalk[T]) First() Step[T]  { return r.steps[0] }
func (r *RandomWalk[T]) Last() Step[T]   { return r.steps[len(r.steps)-1] }
func (r *RandomWalk[T]) At(i int) Step[T] { return r.steps[i] }

// Steps returns a copy of the sequence.
func (r *RandomWalk[T]) Steps() []Step[T] {
	out := make([]Step[T], len(r.steps))
	copy(out, r.steps)
	return out
}

// Values flattens the walk to its price path.
func (r *RandomWalk[T]) Values() []float64 {
	out := make([]float64, len(r.steps))
	for i, s := range r.steps {
		out[i] = s.Y.Value().Float64()
	}
	return out
}

// Simulator owns N independent walks built from the same parameters.
// Each walk gets its own generator seeded from the shared source, so a
// seeded simulator is fully reproducible.
type Simulator[T Walkable] struct {
	title string
	walks []*RandomWalk[T]
}

func NewSimulator[T Walkable](title string, n int, params *WalkParams[T], gen Generator[T]) (*Simulator[T], error) {
	if n <= 0 {
		return nil, &opterr.SimulationError{Walk: title, Reason: "need at least one walk"}
	}
	seedSrc := params.Rng
	if seedSrc == nil {
		seedSrc = entropyRng()
	}
	s := &Simulator[T]{title: title}
	for i := 0; i < n; i++ {
		p := *params
		p.Rng = rand.New(rand.NewSource(seedSrc.Uint64()))
		w, err := NewRandomWalk(title, &p, gen)
		if err != nil {
			return nil, err
		}
		s.walks = append(s.walks, w)
	}
	logging.L().Debug("simulator built",
		zap.String("title", title),
		zap.Int("walks", n),
		zap.Stringer("kind", params.Walk.Kind))
	return s, nil
}

func (s *Simulator[T]) Title() string            { return s.title }
func (s *Simulator[T]) Len() int                 { return len(s.walks) }
func (s *Simulator[T]) Walk(i int) *RandomWalk[T] { return s.walks[i] }

// Walks returns a copy of the walk list.
func (s *Simulator[T]) Walks() []*RandomWalk[T] {
	out := make([]*RandomWalk[T], len(s.walks))
	copy(out, s.walks)
	return out
}

// GetLastValues collects each walk's terminal price.
func (s *Simulator[T]) GetLastValues() []float64 {
	out := make([]float64, len(s.walks))
	for i, w := range s.walks {
		out[i] = w.Last().Y.Value().Float64()
	}
	return out
}

// GetLastPositiveValues drops terminal prices at or below zero.
func (s *Simulator[T]) GetLastPositiveValues() []float64 {
	var out []float64
	for _, v := range s.GetLastValues() {
		if v > 0 {
			out = append(out, v)
		}
	}
	return out
}

// GetLastSteps collects each walk's terminal step.
func (s *Simulator[T]) GetLastSteps() []Step[T] {
	out := make([]Step[T], len(s.walks))
	for i, w := range s.walks {
		out[i] = w.Last()
	}
	return out
}

// SimulationResult aggregates per-step P&L across every walk.
type SimulationResult struct {
	TotalPnL       float64
	MaxDrawdown    float64
	WinningSteps   int
	LosingSteps    int
	WinRate        float64
	LossRate       float64
	Sharpe         float64
	Sortino        float64
	ProfitFactor   float64
	ExpectedPayoff float64
}

// SimulateStrategy replays the strategy along every walk, marking it
// at each step's underlying price, and aggregates the step-by-step
// P&L changes. Sharpe uses a zero risk-free rate, Sortino a zero
// minimum acceptable return.
func (s *Simulator[T]) SimulateStrategy(st strategy.Profit) (*SimulationResult, error) {
	var changes []float64
	res := &SimulationResult{}
	for _, w := range s.walks {
		prev, err := profitAt(st, w.First())
		if err != nil {
			return nil, err
		}
		cumulative, peak, drawdown := 0.0, 0.0, 0.0
		for i := 1; i < w.Len(); i++ {
			pnl, perr := profitAt(st, w.At(i))
			if perr != nil {
				return nil, perr
			}
			change := pnl - prev
			prev = pnl
			changes = append(changes, change)

			cumulative += change
			if cumulative > peak {
				peak = cumulative
			}
			if dd := peak - cumulative; dd > drawdown {
				drawdown = dd
			}
		}
		res.TotalPnL += cumulative
		if drawdown > res.MaxDrawdown {
			res.MaxDrawdown = drawdown
		}
	}
	if len(changes) == 0 {
		return nil, &opterr.SimulationError{Walk: s.title, Reason: "walks too short to simulate"}
	}

	grossWin, grossLoss := 0.0, 0.0
	var downside []float64
	for _, c := range changes {
		switch {
		case c > 0:
			res.WinningSteps++
			grossWin += c
		case c < 0:
			res.LosingSteps++
			grossLoss += -c
			downside = append(downside, c)
		}
	}
	n := float64(len(changes))
	res.WinRate = float64(res.WinningSteps) / n
	res.LossRate = float64(res.LosingSteps) / n
	res.ExpectedPayoff = stat.Mean(changes, nil)

	if sd := stat.StdDev(changes, nil); sd > 0 && !math.IsNaN(sd) {
		res.Sharpe = res.ExpectedPayoff / sd
	}
	if len(downside) > 1 {
		if sd := stat.StdDev(downside, nil); sd > 0 {
			res.Sortino = res.ExpectedPayoff / sd
		}
	}
	if grossLoss > 0 {
		res.ProfitFactor = grossWin / grossLoss
	} else if grossWin > 0 {
		res.ProfitFactor = math.Inf(1)
	}
	return res, nil
}

func profitAt[T Walkable](st strategy.Profit, step Step[T]) (float64, error) {
	price, err := model.NewPositive(math.Max(step.Y.Value().Float64(), positiveEps))
	if err != nil {
		return 0, err
	}
	pnl, err := st.CalculateProfitAt(price)
	if err != nil {
		return 0, err
	}
	return pnl.InexactFloat64(), nil
}
