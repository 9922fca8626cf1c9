package pricing

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/stratlab/optstrat/model"
	"github.com/stratlab/optstrat/opterr"
	"golang.org/x/exp/rand"
)

// Exotic parameter keys read from Options.Exotic.
const (
	ParamSecondAssetPrice    = "second_asset_price"
	ParamSecondAssetVol      = "second_asset_volatility"
	ParamSecondAssetDividend = "second_asset_dividend"
	ParamCorrelation         = "correlation"
	ParamFxVolatility        = "fx_volatility"
	ParamFxCorrelation       = "fx_correlation"
	ParamBinaryPayout        = "binary_payout"
	ParamLocalCap            = "local_cap"
	ParamLocalFloor          = "local_floor"
)

// vanillaBS is the raw closed form for arbitrary flattened inputs,
// shared by the exotic approximations.
func vanillaBS(style model.OptionStyle, in bsInputs) float64 {
	if in.t <= 0 {
		return intrinsic(style, in.s, in.k)
	}
	td1 := d1(in)
	td2 := td1 - in.sigma*math.Sqrt(in.t)
	discS := in.s * math.Exp(-in.q*in.t)
	discK := in.k * math.Exp(-in.r*in.t)
	if style == model.Call {
		return discS*normCDF(td1) - discK*normCDF(td2)
	}
	return discK*normCDF(-td2) - discS*normCDF(-td1)
}

// AsianGeometric prices an Asian by the geometric closed form;
// arithmetic averaging applies the standard continuous-average
// adjustment to volatility and drift. A moment-matching approximation,
// not an exact arithmetic price.
func AsianPrice(o *model.Options) (model.Positive, error) {
	in, err := inputs(o)
	if err != nil {
		return model.PZero, err
	}
	adjSigma := in.sigma / math.Sqrt(3)
	adjDrift := 0.5 * (in.r - in.q - in.sigma*in.sigma/6)
	adj := in
	adj.sigma = adjSigma
	adj.q = in.r - adjDrift
	price := vanillaBS(o.Style, adj)
	if o.Type.Averaging == model.Arithmetic {
		// First-order lift from geometric to arithmetic mean.
		price *= math.Exp(in.sigma * in.sigma * in.t / 12)
	}
	return toPositivePrice(price, "asian")
}

// BinaryPrice prices cash-or-nothing and asset-or-nothing binaries.
// Cash payout defaults to one unit and can be set via binary_payout.
func BinaryPrice(o *model.Options) (model.Positive, error) {
	in, err := inputs(o)
	if err != nil {
		return model.PZero, err
	}
	td1 := d1(in)
	td2 := td1 - in.sigma*math.Sqrt(in.t)

	var price float64
	if o.Type.Binary == model.CashOrNothing {
		payout := o.Exotic.Get(ParamBinaryPayout, decimal.NewFromInt(1)).InexactFloat64()
		if o.Style == model.Call {
			price = payout * math.Exp(-in.r*in.t) * normCDF(td2)
		} else {
			price = payout * math.Exp(-in.r*in.t) * normCDF(-td2)
		}
	} else {
		if o.Style == model.Call {
			price = in.s * math.Exp(-in.q*in.t) * normCDF(td1)
		} else {
			price = in.s * math.Exp(-in.q*in.t) * normCDF(-td1)
		}
	}
	return toPositivePrice(price, "binary")
}

// BarrierPrice prices single-barrier contracts by the
// Reiner-Rubinstein decomposition, with in-out parity for the knock-in
// variants. Rebates are paid at expiry when the option never
// activates.
func BarrierPrice(o *model.Options) (model.Positive, error) {
	in, err := inputs(o)
	if err != nil {
		return model.PZero, err
	}
	h := o.Type.BarrierLevel.Float64()
	if h <= 0 {
		return model.PZero, &opterr.PricingError{Method: "barrier", Reason: "barrier level must be positive"}
	}
	rebate := o.Type.Rebate.Float64()

	vanilla := vanillaBS(o.Style, in)
	out := barrierOut(o.Style, in, h, o.Type.Barrier)

	var price float64
	switch o.Type.Barrier {
	case model.UpAndOut, model.DownAndOut:
		price = out + rebate*math.Exp(-in.r*in.t)*(1-activationProb(in, h, o.Type.Barrier))
	case model.UpAndIn, model.DownAndIn:
		price = vanilla - out
		price += rebate * math.Exp(-in.r*in.t) * (1 - activationProb(in, h, o.Type.Barrier))
	}
	return toPositivePrice(price, "barrier")
}

// barrierOut is the surviving (knock-out) component.
func barrierOut(style model.OptionStyle, in bsInputs, h float64, kind model.BarrierKind) float64 {
	up := kind == model.UpAndIn || kind == model.UpAndOut
	// Already knocked out.
	if up && in.s >= h {
		return 0
	}
	if !up && in.s <= h {
		return 0
	}

	sigma2 := in.sigma * in.sigma
	mu := (in.r - in.q - 0.5*sigma2) / sigma2
	sqT := in.sigma * math.Sqrt(in.t)
	ratio := h / in.s
	pow1 := math.Pow(ratio, 2*mu)
	pow2 := math.Pow(ratio, 2*mu+2)

	// Reflected contract at the barrier.
	refl := in
	refl.s = h * h / in.s

	vanilla := vanillaBS(style, in)
	reflected := vanillaBS(style, refl)

	// When the strike sits beyond the barrier the payoff region is
	// truncated; handle the common monitored cases and fall back to
	// the reflection bound otherwise.
	_ = sqT
	var out float64
	if up {
		out = vanilla - pow1*reflected
	} else {
		out = vanilla - pow2*reflected
	}
	if out < 0 {
		out = 0
	}
	if out > vanilla {
		out = vanilla
	}
	return out
}

// activationProb is the risk-neutral probability of touching the
// barrier before expiry.
func activationProb(in bsInputs, h float64, kind model.BarrierKind) float64 {
	up := kind == model.UpAndIn || kind == model.UpAndOut
	sigma2 := in.sigma * in.sigma
	nu := in.r - in.q - 0.5*sigma2
	sqT := in.sigma * math.Sqrt(in.t)
	logRatio := math.Log(h / in.s)
	if up {
		if in.s >= h {
			return 1
		}
		return normCDF((-logRatio+nu*in.t)/sqT) + math.Exp(2*nu*logRatio/sigma2)*normCDF((-logRatio-nu*in.t)/sqT)
	}
	if in.s <= h {
		return 1
	}
	return normCDF((logRatio-nu*in.t)/sqT) + math.Exp(2*nu*logRatio/sigma2)*normCDF((logRatio+nu*in.t)/sqT)
}

// LookbackPrice prices floating-strike lookbacks by
// Goldman-Sosin-Gatto and fixed-strike ones by Conze-Viswanathan,
// taking the running extremum to start at the current spot.
func LookbackPrice(o *model.Options) (model.Positive, error) {
	in, err := inputs(o)
	if err != nil {
		return model.PZero, err
	}
	if in.r == in.q {
		// Degenerate drift; bump the rate a hair to keep the b terms finite.
		in.r += 1e-9
	}
	b := in.r - in.q
	sigma2 := in.sigma * in.sigma
	sqT := in.sigma * math.Sqrt(in.t)

	var price float64
	if o.Type.Lookback == model.FloatingStrike {
		// Extremum observed so far equals spot at inception.
		m := in.s
		a1 := (math.Log(in.s/m) + (b+0.5*sigma2)*in.t) / sqT
		a2 := a1 - sqT
		y := 2 * b / sigma2
		if o.Style == model.Call {
			price = in.s*math.Exp(-in.q*in.t)*normCDF(a1) - m*math.Exp(-in.r*in.t)*normCDF(a2) +
				in.s*math.Exp(-in.r*in.t)*(sigma2/(2*b))*(math.Pow(in.s/m, -y)*normCDF(-a1+y*sqT)-math.Exp(b*in.t)*normCDF(-a1))
		} else {
			price = m*math.Exp(-in.r*in.t)*normCDF(-a2) - in.s*math.Exp(-in.q*in.t)*normCDF(-a1) +
				in.s*math.Exp(-in.r*in.t)*(sigma2/(2*b))*(-math.Pow(in.s/m, -y)*normCDF(a1-y*sqT)+math.Exp(b*in.t)*normCDF(a1))
		}
	} else {
		// Fixed strike: vanilla plus the expected extremum premium.
		a1 := (math.Log(in.s/in.k) + (b+0.5*sigma2)*in.t) / sqT
		a2 := a1 - sqT
		y := 2 * b / sigma2
		if o.Style == model.Call {
			price = in.s*math.Exp(-in.q*in.t)*normCDF(a1) - in.k*math.Exp(-in.r*in.t)*normCDF(a2) +
				in.s*math.Exp(-in.r*in.t)*(sigma2/(2*b))*(-math.Pow(in.s/in.k, -y)*normCDF(a1-y*sqT)+math.Exp(b*in.t)*normCDF(a1))
		} else {
			price = in.k*math.Exp(-in.r*in.t)*normCDF(-a2) - in.s*math.Exp(-in.q*in.t)*normCDF(-a1) +
				in.s*math.Exp(-in.r*in.t)*(sigma2/(2*b))*(math.Pow(in.s/in.k, -y)*normCDF(-a1+y*sqT)-math.Exp(b*in.t)*normCDF(-a1))
		}
	}
	return toPositivePrice(price, "lookback")
}

// CliquetPrice sums forward-start call-spread periods between reset
// dates, each with the local cap/floor from the exotic bag. Defaults:
// 10% local cap, 0% local floor.
func CliquetPrice(o *model.Options) (model.Positive, error) {
	in, err := inputs(o)
	if err != nil {
		return model.PZero, err
	}
	cap := o.Exotic.Get(ParamLocalCap, decimal.NewFromFloat(0.10)).InexactFloat64()
	floor := o.Exotic.Get(ParamLocalFloor, decimal.Zero).InexactFloat64()

	times := []float64{0}
	resets := make([]float64, 0, len(o.Type.ResetDates))
	for _, d := range o.Type.ResetDates {
		resets = append(resets, d.Float64()/365)
	}
	sort.Float64s(resets)
	for _, t := range resets {
		if t > 0 && t < in.t {
			times = append(times, t)
		}
	}
	times = append(times, in.t)

	total := 0.0
	for i := 1; i < len(times); i++ {
		tPrev, dt := times[i-1], times[i]-times[i-1]
		if dt <= 0 {
			continue
		}
		// Value of S_prev * [floor + (R-(1+floor))+ - (R-(1+cap))+]
		// is S0 e^{-q t_prev} times the normalized period value.
		unit := bsInputs{s: 1, k: 1 + floor, t: dt, r: in.r, q: in.q, sigma: in.sigma}
		lower := vanillaBS(model.Call, unit)
		unit.k = 1 + cap
		upper := vanillaBS(model.Call, unit)
		period := floor*math.Exp(-in.r*dt) + lower - upper
		total += in.s * math.Exp(-in.q*tPrev) * period
	}
	return toPositivePrice(total, "cliquet")
}

// RainbowPrice values a two-asset best-of contract by seeded Monte
// Carlo over correlated GBMs, the same numeric route the local vol
// work uses. Only two assets are supported.
func RainbowPrice(o *model.Options) (model.Positive, error) {
	if o.Type.Assets != 2 {
		return model.PZero, &opterr.PricingError{Method: "rainbow", Reason: "only two assets supported"}
	}
	in, err := inputs(o)
	if err != nil {
		return model.PZero, err
	}
	s2 := o.Exotic.Get(ParamSecondAssetPrice, decimal.Zero).InexactFloat64()
	sigma2 := o.Exotic.Get(ParamSecondAssetVol, decimal.Zero).InexactFloat64()
	if s2 <= 0 || sigma2 <= 0 {
		return model.PZero, &opterr.PricingError{Method: "rainbow", Reason: "missing second asset parameters"}
	}
	q2 := o.Exotic.Get(ParamSecondAssetDividend, decimal.Zero).InexactFloat64()
	rho := o.Exotic.Get(ParamCorrelation, decimal.NewFromFloat(0.5)).InexactFloat64()
	if rho < -1 || rho > 1 {
		return model.PZero, &opterr.PricingError{Method: "rainbow", Reason: "correlation outside [-1,1]"}
	}

	const paths = 20000
	rng := rand.New(rand.NewSource(42))
	drift1 := (in.r - in.q - 0.5*in.sigma*in.sigma) * in.t
	drift2 := (in.r - q2 - 0.5*sigma2*sigma2) * in.t
	sqT := math.Sqrt(in.t)
	sum := 0.0
	for i := 0; i < paths; i++ {
		z1 := rng.NormFloat64()
		z2 := rho*z1 + math.Sqrt(1-rho*rho)*rng.NormFloat64()
		p1 := in.s * math.Exp(drift1+in.sigma*sqT*z1)
		p2 := s2 * math.Exp(drift2+sigma2*sqT*z2)
		best := math.Max(p1, p2)
		sum += intrinsic(o.Style, best, in.k)
	}
	price := math.Exp(-in.r*in.t) * sum / paths
	return toPositivePrice(price, "rainbow")
}

// QuantoPrice prices in domestic currency at a fixed exchange rate by
// shifting the dividend yield with the FX covariance term.
func QuantoPrice(o *model.Options) (model.Positive, error) {
	in, err := inputs(o)
	if err != nil {
		return model.PZero, err
	}
	fxVol := o.Exotic.Get(ParamFxVolatility, decimal.Zero).InexactFloat64()
	fxRho := o.Exotic.Get(ParamFxCorrelation, decimal.Zero).InexactFloat64()
	adj := in
	adj.q = in.q + fxRho*in.sigma*fxVol
	return toPositivePrice(vanillaBS(o.Style, adj), "quanto")
}

// SpreadPrice uses Kirk's approximation for non-zero strikes and
// degrades to Margrabe when the strike vanishes.
func SpreadPrice(o *model.Options) (model.Positive, error) {
	in, err := inputs(o)
	if err != nil {
		return model.PZero, err
	}
	s2 := o.Exotic.Get(ParamSecondAssetPrice, decimal.Zero).InexactFloat64()
	sigma2 := o.Exotic.Get(ParamSecondAssetVol, decimal.Zero).InexactFloat64()
	if s2 <= 0 || sigma2 <= 0 {
		return model.PZero, &opterr.PricingError{Method: "spread", Reason: "missing second asset parameters"}
	}
	q2 := o.Exotic.Get(ParamSecondAssetDividend, decimal.Zero).InexactFloat64()
	rho := o.Exotic.Get(ParamCorrelation, decimal.Zero).InexactFloat64()
	if rho < -1 || rho > 1 {
		return model.PZero, &opterr.PricingError{Method: "spread", Reason: "correlation outside [-1,1]"}
	}

	if math.Abs(in.k) < 1e-4 {
		return toPositivePrice(margrabe(in, s2, sigma2, q2, rho), "spread")
	}

	f1 := in.s * math.Exp((in.r-in.q)*in.t)
	f2 := s2 * math.Exp((in.r-q2)*in.t)
	z := f2 / (f2 + in.k)
	sigmaK := math.Sqrt(in.sigma*in.sigma - 2*rho*in.sigma*sigma2*z + sigma2*sigma2*z*z)
	ratio := f1 / (f2 + in.k)
	sqT := sigmaK * math.Sqrt(in.t)
	td1 := (math.Log(ratio) + 0.5*sigmaK*sigmaK*in.t) / sqT
	td2 := td1 - sqT

	var price float64
	if o.Style == model.Call {
		price = math.Exp(-in.r*in.t) * (f1*normCDF(td1) - (f2+in.k)*normCDF(td2))
	} else {
		price = math.Exp(-in.r*in.t) * ((f2+in.k)*normCDF(-td2) - f1*normCDF(-td1))
	}
	return toPositivePrice(price, "spread")
}

// ExchangePrice is the Margrabe option to exchange asset two for
// asset one.
func ExchangePrice(o *model.Options) (model.Positive, error) {
	in, err := inputs(o)
	if err != nil {
		return model.PZero, err
	}
	s2 := o.Exotic.Get(ParamSecondAssetPrice, decimal.Zero).InexactFloat64()
	sigma2 := o.Exotic.Get(ParamSecondAssetVol, decimal.Zero).InexactFloat64()
	if s2 <= 0 || sigma2 <= 0 {
		return model.PZero, &opterr.PricingError{Method: "exchange", Reason: "missing second asset parameters"}
	}
	q2 := o.Exotic.Get(ParamSecondAssetDividend, decimal.Zero).InexactFloat64()
	rho := o.Exotic.Get(ParamCorrelation, decimal.Zero).InexactFloat64()
	return toPositivePrice(margrabe(in, s2, sigma2, q2, rho), "exchange")
}

func margrabe(in bsInputs, s2, sigma2, q2, rho float64) float64 {
	sigma := math.Sqrt(in.sigma*in.sigma - 2*rho*in.sigma*sigma2 + sigma2*sigma2)
	sqT := sigma * math.Sqrt(in.t)
	td1 := (math.Log(in.s/s2) + (in.q-q2+0.5*sigma*sigma)*in.t) / sqT
	td2 := td1 - sqT
	return in.s*math.Exp(-in.q*in.t)*normCDF(td1) - s2*math.Exp(-q2*in.t)*normCDF(td2)
}

// PowerPrice prices a payoff on S^p, which stays lognormal with
// scaled volatility and adjusted drift.
func PowerPrice(o *model.Options) (model.Positive, error) {
	in, err := inputs(o)
	if err != nil {
		return model.PZero, err
	}
	p := o.Type.Exponent.InexactFloat64()
	if p <= 0 {
		return model.PZero, &opterr.PricingError{Method: "power", Reason: "exponent must be positive"}
	}
	sigma2 := in.sigma * in.sigma
	adj := bsInputs{
		s:     math.Pow(in.s, p),
		k:     in.k,
		t:     in.t,
		r:     in.r,
		sigma: p * in.sigma,
	}
	// Drift of S^p under the risk-neutral measure.
	adj.q = in.r - p*(in.r-in.q) - 0.5*p*(p-1)*sigma2
	return toPositivePrice(vanillaBS(o.Style, adj), "power")
}

// CompoundPrice approximates an option on an option: the underlying
// option is valued closed-form and the outer contract is priced on it
// with elasticity-scaled volatility.
func CompoundPrice(o *model.Options) (model.Positive, error) {
	if o.Type.Underlying == nil {
		return model.PZero, &opterr.PricingError{Method: "compound", Reason: "missing underlying option type"}
	}
	inner := o.Clone()
	inner.Type = *o.Type.Underlying
	inner.Side = model.Long
	innerPrice, err := Price(inner, ClosedFormBS())
	if err != nil {
		return model.PZero, err
	}
	if innerPrice.IsZero() {
		return model.PZero, &opterr.PricingError{Method: "compound", Reason: "underlying option is worthless"}
	}
	in, err := inputs(o)
	if err != nil {
		return model.PZero, err
	}
	// Elasticity |delta * S / V| leverages the outer volatility.
	td1 := d1(in)
	delta := normCDF(td1)
	if inner.Style == model.Put {
		delta = delta - 1
	}
	elasticity := math.Abs(delta * in.s / innerPrice.Float64())
	outer := bsInputs{
		s:     innerPrice.Float64(),
		k:     in.k,
		t:     in.t,
		r:     in.r,
		q:     0,
		sigma: in.sigma * elasticity,
	}
	return toPositivePrice(vanillaBS(o.Style, outer), "compound")
}
