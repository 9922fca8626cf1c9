package pricing

import (
	"math"

	"github.com/stratlab/optstrat/model"
	"github.com/stratlab/optstrat/opterr"
)

// Binomial prices on a Cox-Ross-Rubinstein tree. American and
// Bermudan contracts compare continuation against exercise at each
// node; Europeans collapse to discounted expectation.
func Binomial(o *model.Options, steps uint32) (model.Positive, error) {
	if steps == 0 {
		return model.PZero, &opterr.PricingError{Method: "binomial", Reason: "steps must be positive"}
	}
	in, err := inputs(o)
	if err != nil {
		return model.PZero, err
	}
	if in.t == 0 {
		return o.IntrinsicValue(o.UnderlyingPrice), nil
	}

	n := int(steps)
	dt := in.t / float64(n)
	u := math.Exp(in.sigma * math.Sqrt(dt))
	d := 1 / u
	disc := math.Exp(-in.r * dt)
	p := (math.Exp((in.r-in.q)*dt) - d) / (u - d)
	if p <= 0 || p >= 1 {
		return model.PZero, &opterr.PricingError{Method: "binomial", Reason: "risk-neutral probability outside (0,1)"}
	}

	exercisable := exerciseSchedule(o, n, dt)

	// Terminal payoffs, then backward induction.
	values := make([]float64, n+1)
	for i := 0; i <= n; i++ {
		sT := in.s * math.Pow(u, float64(i)) * math.Pow(d, float64(n-i))
		values[i] = intrinsic(o.Style, sT, in.k)
	}
	for step := n - 1; step >= 0; step-- {
		for i := 0; i <= step; i++ {
			cont := disc * (p*values[i+1] + (1-p)*values[i])
			if exercisable[step] {
				sNode := in.s * math.Pow(u, float64(i)) * math.Pow(d, float64(step-i))
				cont = math.Max(cont, intrinsic(o.Style, sNode, in.k))
			}
			values[i] = cont
		}
	}
	return toPositivePrice(values[0], "binomial")
}

func intrinsic(style model.OptionStyle, s, k float64) float64 {
	if style == model.Call {
		return math.Max(s-k, 0)
	}
	return math.Max(k-s, 0)
}

// exerciseSchedule marks tree levels where early exercise is allowed.
func exerciseSchedule(o *model.Options, n int, dt float64) []bool {
	sched := make([]bool, n)
	switch o.Type.Kind {
	case model.American:
		for i := range sched {
			sched[i] = true
		}
	case model.Bermudan:
		for _, days := range o.Type.ExerciseDates {
			yf := days.Float64() / 365
			idx := int(yf / dt)
			if idx >= 0 && idx < n {
				sched[idx] = true
			}
		}
	}
	return sched
}
