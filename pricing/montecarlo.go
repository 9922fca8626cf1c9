package pricing

import (
	"math"

	"github.com/stratlab/optstrat/model"
	"github.com/stratlab/optstrat/opterr"
	"golang.org/x/exp/rand"
)

const mcTimeSteps = 252 // trading days in a year

// MonteCarlo prices by simulating risk-neutral GBM paths and
// discounting the average payoff. Path-dependent families (Asian,
// Lookback, Barrier) are settled on the whole path; everything else
// on the terminal price.
func MonteCarlo(o *model.Options, paths uint32, seed uint64) (model.Positive, error) {
	if paths == 0 {
		return model.PZero, &opterr.PricingError{Method: "monte_carlo", Reason: "paths must be positive"}
	}
	in, err := inputs(o)
	if err != nil {
		return model.PZero, err
	}
	if in.t == 0 {
		return o.IntrinsicValue(o.UnderlyingPrice), nil
	}

	rng := rand.New(rand.NewSource(seed))
	steps := mcTimeSteps
	dt := in.t / float64(steps)
	sqrtDt := math.Sqrt(dt)
	drift := (in.r - in.q - 0.5*in.sigma*in.sigma) * dt

	sum := 0.0
	path := make([]float64, steps+1)
	for p := uint32(0); p < paths; p++ {
		price := in.s
		path[0] = price
		for i := 1; i <= steps; i++ {
			price *= math.Exp(drift + in.sigma*sqrtDt*rng.NormFloat64())
			path[i] = price
		}
		sum += pathPayoff(o, in, path)
	}
	v := math.Exp(-in.r*in.t) * sum / float64(paths)
	return toPositivePrice(v, "monte_carlo")
}

func pathPayoff(o *model.Options, in bsInputs, path []float64) float64 {
	terminal := path[len(path)-1]
	switch o.Type.Kind {
	case model.Asian:
		avg := average(path, o.Type.Averaging)
		return intrinsic(o.Style, avg, in.k)
	case model.Lookback:
		lo, hi := extremes(path)
		if o.Type.Lookback == model.FloatingStrike {
			if o.Style == model.Call {
				return terminal - lo
			}
			return hi - terminal
		}
		if o.Style == model.Call {
			return math.Max(hi-in.k, 0)
		}
		return math.Max(in.k-lo, 0)
	case model.BarrierOption:
		level := o.Type.BarrierLevel.Float64()
		hit := crossed(path, level, o.Type.Barrier)
		in_ := o.Type.Barrier == model.UpAndIn || o.Type.Barrier == model.DownAndIn
		if hit == in_ {
			return intrinsic(o.Style, terminal, in.k)
		}
		return o.Type.Rebate.Float64()
	default:
		return intrinsic(o.Style, terminal, in.k)
	}
}

func average(path []float64, kind model.AveragingType) float64 {
	if kind == model.Geometric {
		logSum := 0.0
		for _, p := range path {
			logSum += math.Log(p)
		}
		return math.Exp(logSum / float64(len(path)))
	}
	sum := 0.0
	for _, p := range path {
		sum += p
	}
	return sum / float64(len(path))
}

func extremes(path []float64) (lo, hi float64) {
	lo, hi = path[0], path[0]
	for _, p := range path[1:] {
		if p < lo {
			lo = p
		}
		if p > hi {
			hi = p
		}
	}
	return lo, hi
}

func crossed(path []float64, level float64, kind model.BarrierKind) bool {
	up := kind == model.UpAndIn || kind == model.UpAndOut
	for _, p := range path {
		if up && p >= level {
			return true
		}
		if !up && p <= level {
			return true
		}
	}
	return false
}
