// Package volatility hosts the implied-volatility search and the
// realized estimators computed from OHLCV history.
package volatility

import (
	"math"

	"github.com/stratlab/optstrat/ohlcv"
)

const tradingDays = 252

// Periods are the trailing windows the estimators report on.
var Periods = []struct {
	Name string
	Days int
}{
	{"1w", 5},
	{"1m", 21},
	{"3m", 63},
	{"6m", 126},
	{"1y", 252},
}

// Estimator is a realized-volatility kernel over aligned OHLC arrays.
type Estimator func(opens, highs, lows, closes []float64) float64

// ByPeriod runs an estimator over each trailing window with enough
// bars, keyed by period name, annualized.
func ByPeriod(bars []ohlcv.Bar, est Estimator) map[string]float64 {
	results := make(map[string]float64)
	for _, period := range Periods {
		if len(bars) < period.Days {
			continue
		}
		opens, highs, lows, closes := window(bars, period.Days)
		if v := est(opens, highs, lows, closes); v != 0 && !math.IsNaN(v) {
			results[period.Name] = v
		}
	}
	return results
}

func window(bars []ohlcv.Bar, days int) (opens, highs, lows, closes []float64) {
	opens = make([]float64, days)
	highs = make([]float64, days)
	lows = make([]float64, days)
	closes = make([]float64, days)
	for i := 0; i < days; i++ {
		b := bars[len(bars)-days+i]
		opens[i] = b.Open.Float64()
		highs[i] = b.High.Float64()
		lows[i] = b.Low.Float64()
		closes[i] = b.Close.Float64()
	}
	return
}

// CloseToClose is the annualized stdev of log close returns.
func CloseToClose(_, _, _ []float64, closes []float64) float64 {
	n := len(closes)
	if n < 2 {
		return 0
	}
	returns := make([]float64, n-1)
	for i := 1; i < n; i++ {
		returns[i-1] = math.Log(closes[i] / closes[i-1])
	}
	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))
	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)
	return math.Sqrt(variance * tradingDays)
}

// Parkinson uses the high-low range.
func Parkinson(_, highs, lows, _ []float64) float64 {
	n := len(highs)
	if n == 0 || n != len(lows) {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		logRatio := math.Log(highs[i] / lows[i])
		sum += logRatio * logRatio
	}
	return math.Sqrt(sum / (4 * float64(n) * math.Ln2) * tradingDays)
}

// GarmanKlass combines the high-low range with the open-close move.
func GarmanKlass(opens, highs, lows, closes []float64) float64 {
	n := len(opens)
	if n == 0 || n != len(highs) || n != len(lows) || n != len(closes) {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		hl := 0.5 * math.Pow(math.Log(highs[i]/lows[i]), 2)
		co := (2*math.Ln2 - 1) * math.Pow(math.Log(closes[i]/opens[i]), 2)
		sum += hl - co
	}
	return math.Sqrt(sum / float64(n) * tradingDays)
}

// RogersSatchell is drift-independent.
func RogersSatchell(opens, highs, lows, closes []float64) float64 {
	n := len(opens)
	if n == 0 || n != len(highs) || n != len(lows) || n != len(closes) {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += math.Log(highs[i]/closes[i])*math.Log(highs[i]/opens[i]) +
			math.Log(lows[i]/closes[i])*math.Log(lows[i]/opens[i])
	}
	return math.Sqrt(sum / float64(n) * tradingDays)
}

// YangZhang blends overnight, open-close and Rogers-Satchell terms.
func YangZhang(opens, highs, lows, closes []float64) float64 {
	n := len(opens)
	if n < 2 || n != len(highs) || n != len(lows) || n != len(closes) {
		return 0
	}
	k := 0.34 / (1.34 + (float64(n)+1)/(float64(n)-1))
	overnight := overnightVariance(closes, opens, n)
	openClose := openCloseVariance(opens, closes, n)
	rs := rogersSatchellVariance(opens, highs, lows, closes)
	return math.Sqrt(overnight+k*openClose+(1-k)*rs) * math.Sqrt(tradingDays)
}

func overnightVariance(closes, opens []float64, n int) float64 {
	sum, mean := 0.0, 0.0
	for i := 1; i < n; i++ {
		r := math.Log(opens[i] / closes[i-1])
		mean += r
		sum += r * r
	}
	mean /= float64(n - 1)
	return (sum/float64(n-1) - mean*mean) * float64(n) / float64(n-1)
}

func openCloseVariance(opens, closes []float64, n int) float64 {
	sum, mean := 0.0, 0.0
	for i := 0; i < n; i++ {
		r := math.Log(closes[i] / opens[i])
		mean += r
		sum += r * r
	}
	mean /= float64(n)
	return (sum/float64(n) - mean*mean) * float64(n) / float64(n-1)
}

func rogersSatchellVariance(opens, highs, lows, closes []float64) float64 {
	n := len(opens)
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += math.Log(highs[i]/closes[i])*math.Log(highs[i]/opens[i]) +
			math.Log(lows[i]/closes[i])*math.Log(lows[i]/opens[i])
	}
	return sum / float64(n)
}
