package sim

import (
	"math"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/stratlab/optstrat/opterr"
)

// positiveEps is the floor applied when a kernel drives a positive
// process through zero.
const positiveEps = 1e-8

// WalkKind tags the stochastic kernel driving a walk.
type WalkKind int

const (
	Brownian WalkKind = iota
	GeometricBrownian
	LogReturns
	MeanReverting
	JumpDiffusion
	GARCH
	Heston
	Historical
	Custom
)

func (k WalkKind) String() string {
	switch k {
	case Brownian:
		return "brownian"
	case GeometricBrownian:
		return "geometric brownian"
	case LogReturns:
		return "log returns"
	case MeanReverting:
		return "mean reverting"
	case JumpDiffusion:
		return "jump diffusion"
	case GARCH:
		return "garch"
	case Heston:
		return "heston"
	case Historical:
		return "historical"
	case Custom:
		return "custom"
	}
	return "unknown"
}

// WalkType is the kernel selector plus every parameter any kernel
// reads. Unused fields are ignored by the selected kind.
type WalkType struct {
	Kind WalkKind

	Dt         float64
	Drift      float64
	Volatility float64

	// LogReturns
	ExpectedReturn  float64
	Autocorrelation float64

	// MeanReverting
	Speed float64
	Mean  float64

	// JumpDiffusion
	JumpIntensity  float64
	JumpMean       float64
	JumpVolatility float64

	// GARCH(1,1)
	Omega float64
	Alpha float64
	Beta  float64

	// Heston
	Kappa float64
	Theta float64
	Xi    float64
	Rho   float64
	V0    float64

	// Historical
	Prices []float64

	// Custom: outer GBM over an inner mean-reverting variance
	VoV      float64
	VolSpeed float64
	VolMean  float64
}

func NewBrownianWalk(dt, drift, volatility float64) WalkType {
	return WalkType{Kind: Brownian, Dt: dt, Drift: drift, Volatility: volatility}
}

func NewGeometricBrownianWalk(dt, drift, volatility float64) WalkType {
	return WalkType{Kind: GeometricBrownian, Dt: dt, Drift: drift, Volatility: volatility}
}

func NewLogReturnsWalk(dt, expectedReturn, volatility, autocorrelation float64) WalkType {
	return WalkType{Kind: LogReturns, Dt: dt, ExpectedReturn: expectedReturn,
		Volatility: volatility, Autocorrelation: autocorrelation}
}

func NewMeanRevertingWalk(dt, speed, mean, volatility float64) WalkType {
	return WalkType{Kind: MeanReverting, Dt: dt, Speed: speed, Mean: mean, Volatility: volatility}
}

func NewJumpDiffusionWalk(dt, drift, volatility, intensity, jumpMean, jumpVolatility float64) WalkType {
	return WalkType{Kind: JumpDiffusion, Dt: dt, Drift: drift, Volatility: volatility,
		JumpIntensity: intensity, JumpMean: jumpMean, JumpVolatility: jumpVolatility}
}

func NewGARCHWalk(dt, drift, omega, alpha, beta, initialVolatility float64) WalkType {
	return WalkType{Kind: GARCH, Dt: dt, Drift: drift, Omega: omega, Alpha: alpha,
		Beta: beta, Volatility: initialVolatility}
}

func NewHestonWalk(dt, drift, kappa, theta, xi, rho, v0 float64) WalkType {
	return WalkType{Kind: Heston, Dt: dt, Drift: drift, Kappa: kappa, Theta: theta,
		Xi: xi, Rho: rho, V0: v0}
}

func NewHistoricalWalk(prices []float64) WalkType {
	return WalkType{Kind: Historical, Prices: prices}
}

func NewCustomWalk(dt, drift, vov, volSpeed, volMean, v0 float64) WalkType {
	return WalkType{Kind: Custom, Dt: dt, Drift: drift, VoV: vov,
		VolSpeed: volSpeed, VolMean: volMean, V0: v0}
}

// NewRng builds a deterministic generator from a seed.
func NewRng(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func entropyRng() *rand.Rand {
	return rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
}

func clampFloor(v float64) float64 {
	if v < positiveEps {
		return positiveEps
	}
	return v
}

// path rolls the kernel forward from init, producing size values with
// the initial one at index zero. Historical walks may come up short
// when fewer prices were supplied.
func (w WalkType) path(init float64, size int, rng *rand.Rand) ([]float64, error) {
	if size <= 0 {
		return nil, &opterr.SimulationError{Reason: "walk size must be positive"}
	}
	switch w.Kind {
	case Brownian:
		return w.brownian(init, size, rng), nil
	case GeometricBrownian:
		return w.geometricBrownian(init, size, rng), nil
	case LogReturns:
		return w.logReturns(init, size, rng), nil
	case MeanReverting:
		return w.meanReverting(init, size, rng), nil
	case JumpDiffusion:
		return w.jumpDiffusion(init, size, rng), nil
	case GARCH:
		return w.garch(init, size, rng), nil
	case Heston:
		return w.heston(init, size, rng), nil
	case Historical:
		return w.historical(size)
	case Custom:
		return w.custom(init, size, rng), nil
	}
	return nil, &opterr.SimulationError{Reason: "unknown walk kind"}
}

func (w WalkType) brownian(init float64, size int, rng *rand.Rand) []float64 {
	out := make([]float64, size)
	out[0] = init
	scale := w.Volatility * math.Sqrt(w.Dt)
	for i := 1; i < size; i++ {
		out[i] = clampFloor(out[i-1] + w.Drift*w.Dt + scale*rng.NormFloat64())
	}
	return out
}

func (w WalkType) geometricBrownian(init float64, size int, rng *rand.Rand) []float64 {
	out := make([]float64, size)
	out[0] = clampFloor(init)
	drift := (w.Drift - 0.5*w.Volatility*w.Volatility) * w.Dt
	scale := w.Volatility * math.Sqrt(w.Dt)
	for i := 1; i < size; i++ {
		out[i] = out[i-1] * math.Exp(drift+scale*rng.NormFloat64())
	}
	return out
}

func (w WalkType) logReturns(init float64, size int, rng *rand.Rand) []float64 {
	out := make([]float64, size)
	out[0] = clampFloor(init)
	prevDev := 0.0
	for i := 1; i < size; i++ {
		r := w.ExpectedReturn + w.Autocorrelation*prevDev + w.Volatility*math.Sqrt(w.Dt)*rng.NormFloat64()
		prevDev = r - w.ExpectedReturn
		out[i] = out[i-1] * math.Exp(r)
	}
	return out
}

func (w WalkType) meanReverting(init float64, size int, rng *rand.Rand) []float64 {
	out := make([]float64, size)
	out[0] = clampFloor(init)
	scale := w.Volatility * math.Sqrt(w.Dt)
	for i := 1; i < size; i++ {
		x := out[i-1] + w.Speed*(w.Mean-out[i-1])*w.Dt + scale*rng.NormFloat64()
		if x < 0 {
			x = -x
		}
		out[i] = clampFloor(x)
	}
	return out
}

func (w WalkType) jumpDiffusion(init float64, size int, rng *rand.Rand) []float64 {
	out := make([]float64, size)
	out[0] = clampFloor(init)
	drift := (w.Drift - 0.5*w.Volatility*w.Volatility) * w.Dt
	scale := w.Volatility * math.Sqrt(w.Dt)
	poisson := distuv.Poisson{Lambda: w.JumpIntensity * w.Dt, Src: rng}
	for i := 1; i < size; i++ {
		s := out[i-1] * math.Exp(drift+scale*rng.NormFloat64())
		jumps := int(poisson.Rand())
		for j := 0; j < jumps; j++ {
			s *= math.Exp(w.JumpMean + w.JumpVolatility*rng.NormFloat64())
		}
		out[i] = clampFloor(s)
	}
	return out
}

func (w WalkType) garch(init float64, size int, rng *rand.Rand) []float64 {
	out := make([]float64, size)
	out[0] = clampFloor(init)
	variance := w.Volatility * w.Volatility
	prevShock := 0.0
	for i := 1; i < size; i++ {
		variance = w.Omega + w.Alpha*prevShock*prevShock + w.Beta*variance
		sigma := math.Sqrt(math.Max(variance, 0))
		prevShock = sigma * math.Sqrt(w.Dt) * rng.NormFloat64()
		out[i] = out[i-1] * math.Exp((w.Drift-0.5*sigma*sigma)*w.Dt+prevShock)
	}
	return out
}

func (w WalkType) heston(init float64, size int, rng *rand.Rand) []float64 {
	out := make([]float64, size)
	out[0] = clampFloor(init)
	v := math.Max(w.V0, 0)
	corr := math.Sqrt(math.Max(1-w.Rho*w.Rho, 0))
	for i := 1; i < size; i++ {
		z1 := rng.NormFloat64()
		z2 := w.Rho*z1 + corr*rng.NormFloat64()
		out[i] = out[i-1] * math.Exp((w.Drift-0.5*v)*w.Dt+math.Sqrt(v*w.Dt)*z1)
		v += w.Kappa*(w.Theta-v)*w.Dt + w.Xi*math.Sqrt(v*w.Dt)*z2
		if v < 0 {
			v = 0
		}
	}
	return out
}

func (w WalkType) historical(size int) ([]float64, error) {
	if len(w.Prices) == 0 {
		return nil, &opterr.SimulationError{Reason: "historical walk needs prices"}
	}
	n := size
	if len(w.Prices) < n {
		n = len(w.Prices)
	}
	out := make([]float64, n)
	copy(out, w.Prices[:n])
	return out, nil
}

func (w WalkType) custom(init float64, size int, rng *rand.Rand) []float64 {
	out := make([]float64, size)
	out[0] = clampFloor(init)
	v := math.Max(w.V0, positiveEps)
	for i := 1; i < size; i++ {
		sigma := math.Sqrt(v)
		out[i] = out[i-1] * math.Exp((w.Drift-0.5*v)*w.Dt+sigma*math.Sqrt(w.Dt)*rng.NormFloat64())
		v += w.VolSpeed*(w.VolMean-v)*w.Dt + w.VoV*math.Sqrt(v*w.Dt)*rng.NormFloat64()
		if v < positiveEps {
			v = positiveEps
		}
	}
	return out
}

// Walkable is satisfied by any value the walk kernels can read a
// price from.
type Walkable interface {
	Float64() float64
}

// WalkParams describes one walk: its length, starting step, kernel and
// randomness source. Lift turns a kernel price into the walked value.
type WalkParams[T Walkable] struct {
	Size     int
	InitStep Step[T]
	Walk     WalkType
	Rng      *rand.Rand
	Lift     func(price float64) (T, error)
}

// Generator produces the step sequence for a walk.
type Generator[T Walkable] func(params *WalkParams[T]) ([]Step[T], error)

// Generate is the default generator: it rolls the kernel and threads
// the values through Step.Next, stopping early when the time axis
// runs out.
func Generate[T Walkable](params *WalkParams[T]) ([]Step[T], error) {
	if params.Lift == nil {
		return nil, &opterr.SimulationError{Reason: "walk params need a lift function"}
	}
	rng := params.Rng
	if rng == nil {
		rng = entropyRng()
	}
	path, err := params.Walk.path(params.InitStep.Y.Value().Float64(), params.Size, rng)
	if err != nil {
		return nil, err
	}

	steps := make([]Step[T], 0, len(path))
	cur := params.InitStep
	for i, price := range path {
		v, lerr := params.Lift(price)
		if lerr != nil {
			return nil, lerr
		}
		if i == 0 {
			cur = Step[T]{X: params.InitStep.X, Y: NewYstep(params.InitStep.Y.Index(), v)}
		} else {
			next, nerr := cur.Next(v)
			if nerr != nil {
				break
			}
			cur = next
		}
		steps = append(steps, cur)
	}
	return steps, nil
}
