package pricing

import (
	"math"

	"github.com/stratlab/optstrat/model"
	"github.com/stratlab/optstrat/opterr"
	"golang.org/x/exp/rand"
)

// TelegraphProcess is a two-state regime switcher: volatility runs at
// +sigma or -sigma and flips with the state-dependent intensities.
type TelegraphProcess struct {
	LambdaUp   float64
	LambdaDown float64
	state      int
	rng        *rand.Rand
}

func NewTelegraphProcess(lambdaUp, lambdaDown float64, rng *rand.Rand) *TelegraphProcess {
	state := 1
	if rng.Float64() < 0.5 {
		state = -1
	}
	return &TelegraphProcess{LambdaUp: lambdaUp, LambdaDown: lambdaDown, state: state, rng: rng}
}

func (t *TelegraphProcess) NextState(dt float64) int {
	lambda := t.LambdaUp
	if t.state == 1 {
		lambda = t.LambdaDown
	}
	if t.rng.Float64() < 1-math.Exp(-lambda*dt) {
		t.state = -t.state
	}
	return t.state
}

func (t *TelegraphProcess) State() int { return t.state }

// Telegraph prices by averaging Markov-modulated GBM paths. It is a
// validation engine for the tree and closed-form prices, seeded for
// reproducibility.
func Telegraph(o *model.Options, steps uint32, seed uint64) (model.Positive, error) {
	if steps == 0 {
		return model.PZero, &opterr.PricingError{Method: "telegraph", Reason: "steps must be positive"}
	}
	in, err := inputs(o)
	if err != nil {
		return model.PZero, err
	}
	if in.t == 0 {
		return o.IntrinsicValue(o.UnderlyingPrice), nil
	}

	const paths = 2000
	rng := rand.New(rand.NewSource(seed))
	dt := in.t / float64(steps)
	sqrtDt := math.Sqrt(dt)
	drift := in.r - in.q - 0.5*in.sigma*in.sigma

	sum := 0.0
	for p := 0; p < paths; p++ {
		proc := NewTelegraphProcess(0.5, 0.5, rng)
		price := in.s
		for i := uint32(0); i < steps; i++ {
			state := proc.NextState(dt)
			vol := in.sigma * float64(state)
			price *= math.Exp(drift*dt + vol*sqrtDt*rng.NormFloat64())
		}
		sum += intrinsic(o.Style, price, in.k)
	}
	price := math.Exp(-in.r*in.t) * sum / paths
	return toPositivePrice(price, "telegraph")
}
