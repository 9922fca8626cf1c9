package volatility

import (
	"math"

	"github.com/stratlab/optstrat/opterr"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/optimize"
)

// GARCH11 holds the variance recursion parameters.
type GARCH11 struct {
	Omega float64
	Alpha float64
	Beta  float64
}

// LogLikelihood of the returns under the GARCH(1,1) recursion.
func (g GARCH11) LogLikelihood(returns []float64) float64 {
	n := len(returns)
	logLik := 0.0
	variance := g.Omega / (1 - g.Alpha - g.Beta)
	for i := 1; i < n; i++ {
		variance = g.Omega + g.Alpha*returns[i-1]*returns[i-1] + g.Beta*variance
		logLik += -0.5*math.Log(2*math.Pi) - 0.5*math.Log(variance) - 0.5*returns[i]*returns[i]/variance
	}
	return logLik
}

// ConditionalVolatility runs the recursion over the returns and
// annualizes the terminal variance.
func (g GARCH11) ConditionalVolatility(returns []float64) float64 {
	variance := g.Omega / (1 - g.Alpha - g.Beta)
	for i := 1; i < len(returns); i++ {
		variance = g.Omega + g.Alpha*returns[i-1]*returns[i-1] + g.Beta*variance
	}
	return math.Sqrt(variance * tradingDays)
}

// EstimateGARCH11 fits the parameters by a short seeded MCMC warmup
// followed by Nelder-Mead on the negative log-likelihood.
func EstimateGARCH11(returns []float64, seed uint64) (GARCH11, error) {
	if len(returns) < 30 {
		return GARCH11{}, &opterr.VolatilityError{Reason: "need at least 30 returns for GARCH estimation"}
	}

	rng := rand.New(rand.NewSource(seed))
	const (
		numIterations = 2000
		burnIn        = 200
		stepSize      = 0.01
	)

	chain := make([]GARCH11, numIterations)
	chain[0] = GARCH11{Omega: 0.000001, Alpha: 0.1, Beta: 0.8}
	for i := 1; i < numIterations; i++ {
		proposal := GARCH11{
			Omega: chain[i-1].Omega + rng.NormFloat64()*stepSize,
			Alpha: chain[i-1].Alpha + rng.NormFloat64()*stepSize,
			Beta:  chain[i-1].Beta + rng.NormFloat64()*stepSize,
		}
		if proposal.Omega <= 0 || proposal.Alpha < 0 || proposal.Beta < 0 || proposal.Alpha+proposal.Beta >= 1 {
			chain[i] = chain[i-1]
			continue
		}
		logAcceptProb := proposal.LogLikelihood(returns) - chain[i-1].LogLikelihood(returns)
		if math.Log(rng.Float64()) < logAcceptProb {
			chain[i] = proposal
		} else {
			chain[i] = chain[i-1]
		}
	}

	avg := GARCH11{}
	for i := burnIn; i < numIterations; i++ {
		avg.Omega += chain[i].Omega
		avg.Alpha += chain[i].Alpha
		avg.Beta += chain[i].Beta
	}
	avg.Omega /= float64(numIterations - burnIn)
	avg.Alpha /= float64(numIterations - burnIn)
	avg.Beta /= float64(numIterations - burnIn)

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			g := GARCH11{Omega: x[0], Alpha: x[1], Beta: x[2]}
			if g.Omega <= 0 || g.Alpha < 0 || g.Beta < 0 || g.Alpha+g.Beta >= 1 {
				return math.Inf(1)
			}
			return -g.LogLikelihood(returns)
		},
	}
	result, err := optimize.Minimize(problem, []float64{avg.Omega, avg.Alpha, avg.Beta}, nil, &optimize.NelderMead{})
	if err != nil {
		// The MCMC average is still a usable estimate.
		return avg, nil
	}
	return GARCH11{Omega: result.X[0], Alpha: result.X[1], Beta: result.X[2]}, nil
}

// Returns converts a close series to log returns.
func Returns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	returns := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		returns[i-1] = math.Log(closes[i] / closes[i-1])
	}
	return returns
}
