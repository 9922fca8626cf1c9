package chain

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/stratlab/optstrat/geometrics"
	"github.com/stratlab/optstrat/greeks"
	"github.com/stratlab/optstrat/model"
	"github.com/stratlab/optstrat/opterr"
	"github.com/stratlab/optstrat/pricing"
)

// Metrics producers. Each is a pure function of the chain returning a
// freshly built curve or surface; nothing is cached on the receiver.

// rowCurve builds a curve with one point per row, x = strike.
func (c *OptionChain) rowCurve(name string, y func(row *OptionData) (decimal.Decimal, error)) (*geometrics.Curve, error) {
	if len(c.Options) < 2 {
		return nil, &opterr.MetricsError{Metric: name, Reason: "need at least two rows"}
	}
	points := make([]geometrics.Point2D, 0, len(c.Options))
	for _, row := range c.Options {
		v, err := y(row)
		if err != nil {
			return nil, &opterr.MetricsError{Metric: name, Reason: err.Error()}
		}
		points = append(points, geometrics.Point2D{X: row.StrikePrice.Dec(), Y: v})
	}
	return geometrics.CurveFromData(points)
}

// daysAxis samples expiries between one day and the chain's own,
// for surface metrics over (strike, days-to-expiry).
func (c *OptionChain) daysAxis(steps int) ([]model.Positive, error) {
	days, err := c.ExpirationDate.Days()
	if err != nil {
		return nil, err
	}
	if days.Float64() < 1 {
		days = model.POne
	}
	axis := make([]model.Positive, 0, steps)
	for i := 1; i <= steps; i++ {
		d := 1 + (days.Float64()-1)*float64(i-1)/float64(steps-1)
		axis = append(axis, model.MustPositive(d))
	}
	return axis, nil
}

// rowSurface builds a surface over (strike, days) with z computed on
// a per-row contract repriced at each expiry.
func (c *OptionChain) rowSurface(name string, days []model.Positive,
	z func(row *OptionData, d model.Positive) (decimal.Decimal, error)) (*geometrics.Surface, error) {
	if len(c.Options) < 2 {
		return nil, &opterr.MetricsError{Metric: name, Reason: "need at least two rows"}
	}
	if len(days) < 2 {
		return nil, &opterr.MetricsError{Metric: name, Reason: "need at least two expiries"}
	}
	points := make([]geometrics.Point3D, 0, len(c.Options)*len(days))
	for _, row := range c.Options {
		for _, d := range days {
			v, err := z(row, d)
			if err != nil {
				return nil, &opterr.MetricsError{Metric: name, Reason: err.Error()}
			}
			points = append(points, geometrics.Point3D{X: row.StrikePrice.Dec(), Y: d.Dec(), Z: v})
		}
	}
	return geometrics.SurfaceFromData(points)
}

// rowAt builds the unit long contract for a row at a shifted expiry.
func (c *OptionChain) rowAt(row *OptionData, style model.OptionStyle, d model.Positive) *model.Options {
	opt := c.rowOptions(style, row.StrikePrice, row.ImpliedVolatility)
	opt.ExpirationDate = model.Days(d)
	return opt
}

// rowMids returns call and put mids, falling back to theoretical
// prices for unquoted sides.
func (c *OptionChain) rowMids(row *OptionData) (call, put model.Positive, err error) {
	if m := row.CallMid(); m != nil {
		call = *m
	} else {
		call, err = pricing.BlackScholes(c.rowOptions(model.Call, row.StrikePrice, row.ImpliedVolatility))
		if err != nil {
			return
		}
	}
	if m := row.PutMid(); m != nil {
		put = *m
	} else {
		put, err = pricing.BlackScholes(c.rowOptions(model.Put, row.StrikePrice, row.ImpliedVolatility))
	}
	return
}

// VolatilitySkew plots IV against forward moneyness.
func (c *OptionChain) VolatilitySkew() (*geometrics.Curve, error) {
	if len(c.Options) < 2 {
		return nil, &opterr.MetricsError{Metric: "volatility_skew", Reason: "need at least two rows"}
	}
	forward, err := c.forward()
	if err != nil {
		return nil, &opterr.MetricsError{Metric: "volatility_skew", Reason: err.Error()}
	}
	points := make([]geometrics.Point2D, 0, len(c.Options))
	for _, row := range c.Options {
		m := row.StrikePrice.Dec().Div(forward.Dec())
		points = append(points, geometrics.Point2D{X: m, Y: row.ImpliedVolatility.Dec()})
	}
	return geometrics.CurveFromData(points)
}

// IVCurve plots IV against strike.
func (c *OptionChain) IVCurve() (*geometrics.Curve, error) {
	return c.rowCurve("iv_curve", func(row *OptionData) (decimal.Decimal, error) {
		return row.ImpliedVolatility.Dec(), nil
	})
}

// IVSurface extends the IV curve over the given expiries.
func (c *OptionChain) IVSurface(days []model.Positive) (*geometrics.Surface, error) {
	return c.rowSurface("iv_surface", days, func(row *OptionData, d model.Positive) (decimal.Decimal, error) {
		return row.ImpliedVolatility.Dec(), nil
	})
}

// PremiumWeightedPCR plots the running put/call premium ratio,
// volume-weighted, cumulative from the lowest strike.
func (c *OptionChain) PremiumWeightedPCR() (*geometrics.Curve, error) {
	if len(c.Options) < 2 {
		return nil, &opterr.MetricsError{Metric: "premium_weighted_pcr", Reason: "need at least two rows"}
	}
	points := make([]geometrics.Point2D, 0, len(c.Options))
	callSum, putSum := decimal.Zero, decimal.Zero
	for _, row := range c.Options {
		call, put, err := c.rowMids(row)
		if err != nil {
			return nil, &opterr.MetricsError{Metric: "premium_weighted_pcr", Reason: err.Error()}
		}
		w := decimal.NewFromInt(1)
		if row.Volume != nil && !row.Volume.IsZero() {
			w = row.Volume.Dec()
		}
		callSum = callSum.Add(call.Dec().Mul(w))
		putSum = putSum.Add(put.Dec().Mul(w))
		ratio := decimal.Zero
		if callSum.IsPositive() {
			ratio = putSum.Div(callSum)
		}
		points = append(points, geometrics.Point2D{X: row.StrikePrice.Dec(), Y: ratio})
	}
	return geometrics.CurveFromData(points)
}

// PremiumConcentration plots each strike's share of total premium.
func (c *OptionChain) PremiumConcentration() (*geometrics.Curve, error) {
	if len(c.Options) < 2 {
		return nil, &opterr.MetricsError{Metric: "premium_concentration", Reason: "need at least two rows"}
	}
	totals := make([]decimal.Decimal, 0, len(c.Options))
	grand := decimal.Zero
	for _, row := range c.Options {
		call, put, err := c.rowMids(row)
		if err != nil {
			return nil, &opterr.MetricsError{Metric: "premium_concentration", Reason: err.Error()}
		}
		t := call.Dec().Add(put.Dec())
		totals = append(totals, t)
		grand = grand.Add(t)
	}
	if grand.IsZero() {
		return nil, &opterr.MetricsError{Metric: "premium_concentration", Reason: "no premium in chain"}
	}
	points := make([]geometrics.Point2D, 0, len(c.Options))
	for i, row := range c.Options {
		points = append(points, geometrics.Point2D{X: row.StrikePrice.Dec(), Y: totals[i].Div(grand)})
	}
	return geometrics.CurveFromData(points)
}

// RiskReversalCurve plots, for strikes above the ATM, the IV gap to
// the mirrored strike below the ATM.
func (c *OptionChain) RiskReversalCurve() (*geometrics.Curve, error) {
	if len(c.Options) < 3 {
		return nil, &opterr.MetricsError{Metric: "risk_reversal", Reason: "need at least three rows"}
	}
	atm, err := c.AtmStrike()
	if err != nil {
		return nil, &opterr.MetricsError{Metric: "risk_reversal", Reason: err.Error()}
	}
	two := decimal.NewFromInt(2)
	points := make([]geometrics.Point2D, 0, len(c.Options)/2)
	for _, row := range c.Options {
		if !row.StrikePrice.GreaterThan(atm) {
			continue
		}
		mirror := atm.Dec().Mul(two).Sub(row.StrikePrice.Dec())
		mirrorRow := c.nearestRow(mirror)
		gap := row.ImpliedVolatility.Dec().Sub(mirrorRow.ImpliedVolatility.Dec())
		points = append(points, geometrics.Point2D{X: row.StrikePrice.Dec(), Y: gap})
	}
	if len(points) < 2 {
		return nil, &opterr.MetricsError{Metric: "risk_reversal", Reason: "not enough strikes above atm"}
	}
	return geometrics.CurveFromData(points)
}

func (c *OptionChain) nearestRow(strike decimal.Decimal) *OptionData {
	best := c.Options[0]
	bestDist := best.StrikePrice.Dec().Sub(strike).Abs()
	for _, row := range c.Options[1:] {
		dist := row.StrikePrice.Dec().Sub(strike).Abs()
		if dist.LessThan(bestDist) {
			best, bestDist = row, dist
		}
	}
	return best
}

// ThetaCurve plots combined call and put theta per strike.
func (c *OptionChain) ThetaCurve() (*geometrics.Curve, error) {
	return c.rowCurve("theta_curve", func(row *OptionData) (decimal.Decimal, error) {
		tc, err := greeks.Theta(c.rowOptions(model.Call, row.StrikePrice, row.ImpliedVolatility))
		if err != nil {
			return decimal.Zero, err
		}
		tp, err := greeks.Theta(c.rowOptions(model.Put, row.StrikePrice, row.ImpliedVolatility))
		if err != nil {
			return decimal.Zero, err
		}
		return tc.Add(tp), nil
	})
}

// ThetaSurface extends theta over (strike, days-to-expiry).
func (c *OptionChain) ThetaSurface() (*geometrics.Surface, error) {
	days, err := c.daysAxis(5)
	if err != nil {
		return nil, &opterr.MetricsError{Metric: "theta_surface", Reason: err.Error()}
	}
	return c.rowSurface("theta_surface", days, func(row *OptionData, d model.Positive) (decimal.Decimal, error) {
		return greeks.Theta(c.rowAt(row, model.Call, d))
	})
}

// CharmCurve plots call charm per strike.
func (c *OptionChain) CharmCurve() (*geometrics.Curve, error) {
	return c.rowCurve("charm_curve", func(row *OptionData) (decimal.Decimal, error) {
		return greeks.Charm(c.rowOptions(model.Call, row.StrikePrice, row.ImpliedVolatility))
	})
}

func (c *OptionChain) CharmSurface() (*geometrics.Surface, error) {
	days, err := c.daysAxis(5)
	if err != nil {
		return nil, &opterr.MetricsError{Metric: "charm_surface", Reason: err.Error()}
	}
	return c.rowSurface("charm_surface", days, func(row *OptionData, d model.Positive) (decimal.Decimal, error) {
		return greeks.Charm(c.rowAt(row, model.Call, d))
	})
}

// ColorCurve plots gamma decay per strike.
func (c *OptionChain) ColorCurve() (*geometrics.Curve, error) {
	return c.rowCurve("color_curve", func(row *OptionData) (decimal.Decimal, error) {
		return greeks.Color(c.rowOptions(model.Call, row.StrikePrice, row.ImpliedVolatility))
	})
}

func (c *OptionChain) ColorSurface() (*geometrics.Surface, error) {
	days, err := c.daysAxis(5)
	if err != nil {
		return nil, &opterr.MetricsError{Metric: "color_surface", Reason: err.Error()}
	}
	return c.rowSurface("color_surface", days, func(row *OptionData, d model.Positive) (decimal.Decimal, error) {
		return greeks.Color(c.rowAt(row, model.Call, d))
	})
}

// TimeDecayCurve plots the extrinsic value held at each strike.
func (c *OptionChain) TimeDecayCurve() (*geometrics.Curve, error) {
	return c.rowCurve("time_decay_curve", func(row *OptionData) (decimal.Decimal, error) {
		tvc, err := pricing.TimeValue(c.rowOptions(model.Call, row.StrikePrice, row.ImpliedVolatility))
		if err != nil {
			return decimal.Zero, err
		}
		tvp, err := pricing.TimeValue(c.rowOptions(model.Put, row.StrikePrice, row.ImpliedVolatility))
		if err != nil {
			return decimal.Zero, err
		}
		return tvc.Add(tvp), nil
	})
}

// TimeDecaySurface extends extrinsic value over expiries.
func (c *OptionChain) TimeDecaySurface() (*geometrics.Surface, error) {
	days, err := c.daysAxis(5)
	if err != nil {
		return nil, &opterr.MetricsError{Metric: "time_decay_surface", Reason: err.Error()}
	}
	return c.rowSurface("time_decay_surface", days, func(row *OptionData, d model.Positive) (decimal.Decimal, error) {
		return pricing.TimeValue(c.rowAt(row, model.Call, d))
	})
}

// PriceShockCurve plots the change in call+put value per strike when
// the underlying moves by pct (signed fraction, e.g. 0.05 for +5%).
func (c *OptionChain) PriceShockCurve(pct decimal.Decimal) (*geometrics.Curve, error) {
	shocked := c.shockedUnderlying(pct)
	return c.rowCurve("price_shock_curve", func(row *OptionData) (decimal.Decimal, error) {
		return c.shockDelta(row, shocked)
	})
}

// PriceShockSurface spans shocks from -10% to +10% per strike.
func (c *OptionChain) PriceShockSurface() (*geometrics.Surface, error) {
	if len(c.Options) < 2 {
		return nil, &opterr.MetricsError{Metric: "price_shock_surface", Reason: "need at least two rows"}
	}
	shocks := []float64{-0.10, -0.05, 0, 0.05, 0.10}
	points := make([]geometrics.Point3D, 0, len(c.Options)*len(shocks))
	for _, row := range c.Options {
		for _, s := range shocks {
			pct := decimal.NewFromFloat(s)
			v, err := c.shockDelta(row, c.shockedUnderlying(pct))
			if err != nil {
				return nil, &opterr.MetricsError{Metric: "price_shock_surface", Reason: err.Error()}
			}
			points = append(points, geometrics.Point3D{X: row.StrikePrice.Dec(), Y: pct, Z: v})
		}
	}
	return geometrics.SurfaceFromData(points)
}

func (c *OptionChain) shockedUnderlying(pct decimal.Decimal) model.Positive {
	shocked := c.UnderlyingPrice.Dec().Mul(decimal.NewFromInt(1).Add(pct))
	p, err := model.NewPositiveDecimal(shocked)
	if err != nil {
		return c.UnderlyingPrice
	}
	return p
}

func (c *OptionChain) shockDelta(row *OptionData, shocked model.Positive) (decimal.Decimal, error) {
	base := decimal.Zero
	moved := decimal.Zero
	for _, style := range []model.OptionStyle{model.Call, model.Put} {
		opt := c.rowOptions(style, row.StrikePrice, row.ImpliedVolatility)
		p0, err := pricing.BlackScholes(opt)
		if err != nil {
			return decimal.Zero, err
		}
		p1, err := pricing.BlackScholesAt(opt, shocked, row.ImpliedVolatility)
		if err != nil {
			return decimal.Zero, err
		}
		base = base.Add(p0.Dec())
		moved = moved.Add(p1.Dec())
	}
	return moved.Sub(base), nil
}

// VolatilitySensitivityCurve plots vega per strike.
func (c *OptionChain) VolatilitySensitivityCurve() (*geometrics.Curve, error) {
	return c.rowCurve("volatility_sensitivity_curve", func(row *OptionData) (decimal.Decimal, error) {
		return greeks.Vega(c.rowOptions(model.Call, row.StrikePrice, row.ImpliedVolatility))
	})
}

func (c *OptionChain) VolatilitySensitivitySurface() (*geometrics.Surface, error) {
	days, err := c.daysAxis(5)
	if err != nil {
		return nil, &opterr.MetricsError{Metric: "volatility_sensitivity_surface", Reason: err.Error()}
	}
	return c.rowSurface("volatility_sensitivity_surface", days, func(row *OptionData, d model.Positive) (decimal.Decimal, error) {
		return greeks.Vega(c.rowAt(row, model.Call, d))
	})
}

// VannaVolgaSurface spans vanna plus vomma over (strike, days).
func (c *OptionChain) VannaVolgaSurface() (*geometrics.Surface, error) {
	days, err := c.daysAxis(5)
	if err != nil {
		return nil, &opterr.MetricsError{Metric: "vanna_volga_surface", Reason: err.Error()}
	}
	return c.rowSurface("vanna_volga_surface", days, func(row *OptionData, d model.Positive) (decimal.Decimal, error) {
		opt := c.rowAt(row, model.Call, d)
		vanna, err := greeks.Vanna(opt)
		if err != nil {
			return decimal.Zero, err
		}
		vomma, err := greeks.Vomma(opt)
		if err != nil {
			return decimal.Zero, err
		}
		return vanna.Add(vomma), nil
	})
}

// DeltaGammaCurve plots the dollar delta-gamma exposure per strike:
// call delta + put delta + underlying * gamma.
func (c *OptionChain) DeltaGammaCurve() (*geometrics.Curve, error) {
	return c.rowCurve("delta_gamma_curve", func(row *OptionData) (decimal.Decimal, error) {
		return c.deltaGamma(row, c.ExpirationDate)
	})
}

func (c *OptionChain) DeltaGammaSurface() (*geometrics.Surface, error) {
	days, err := c.daysAxis(5)
	if err != nil {
		return nil, &opterr.MetricsError{Metric: "delta_gamma_surface", Reason: err.Error()}
	}
	return c.rowSurface("delta_gamma_surface", days, func(row *OptionData, d model.Positive) (decimal.Decimal, error) {
		return c.deltaGamma(row, model.Days(d))
	})
}

func (c *OptionChain) deltaGamma(row *OptionData, exp model.ExpirationDate) (decimal.Decimal, error) {
	call := c.rowOptions(model.Call, row.StrikePrice, row.ImpliedVolatility)
	put := c.rowOptions(model.Put, row.StrikePrice, row.ImpliedVolatility)
	call.ExpirationDate = exp
	put.ExpirationDate = exp
	dc, err := greeks.Delta(call)
	if err != nil {
		return decimal.Zero, err
	}
	dp, err := greeks.Delta(put)
	if err != nil {
		return decimal.Zero, err
	}
	g, err := greeks.Gamma(call)
	if err != nil {
		return decimal.Zero, err
	}
	return dc.Add(dp).Add(c.UnderlyingPrice.MulDec(g)), nil
}

// SmileDynamicsCurve plots the local IV slope across strikes.
func (c *OptionChain) SmileDynamicsCurve() (*geometrics.Curve, error) {
	if len(c.Options) < 3 {
		return nil, &opterr.MetricsError{Metric: "smile_dynamics_curve", Reason: "need at least three rows"}
	}
	points := make([]geometrics.Point2D, 0, len(c.Options)-1)
	for i := 1; i < len(c.Options); i++ {
		lo, hi := c.Options[i-1], c.Options[i]
		dk := hi.StrikePrice.Dec().Sub(lo.StrikePrice.Dec())
		if dk.IsZero() {
			continue
		}
		slope := hi.ImpliedVolatility.Dec().Sub(lo.ImpliedVolatility.Dec()).Div(dk)
		mid := lo.StrikePrice.Dec().Add(dk.Div(decimal.NewFromInt(2)))
		points = append(points, geometrics.Point2D{X: mid, Y: slope})
	}
	return geometrics.CurveFromData(points)
}

// SmileDynamicsSurface extends the IV slope over expiries with
// square-root-of-time damping.
func (c *OptionChain) SmileDynamicsSurface() (*geometrics.Surface, error) {
	curve, err := c.SmileDynamicsCurve()
	if err != nil {
		return nil, err
	}
	days, err := c.daysAxis(5)
	if err != nil {
		return nil, &opterr.MetricsError{Metric: "smile_dynamics_surface", Reason: err.Error()}
	}
	own, err := c.ExpirationDate.Days()
	if err != nil {
		return nil, &opterr.MetricsError{Metric: "smile_dynamics_surface", Reason: err.Error()}
	}
	points := make([]geometrics.Point3D, 0, curve.Len()*len(days))
	for _, p := range curve.Points() {
		for _, d := range days {
			damp := decimal.NewFromFloat(sqrtRatio(own.Float64(), d.Float64()))
			points = append(points, geometrics.Point3D{X: p.X, Y: d.Dec(), Z: p.Y.Mul(damp)})
		}
	}
	return geometrics.SurfaceFromData(points)
}

// slope steepens as expiry approaches
func sqrtRatio(own, d float64) float64 {
	if d <= 0 || own <= 0 {
		return 1
	}
	return math.Sqrt(own / d)
}

// BidAskSpreadCurve plots the average quoted width per strike.
func (c *OptionChain) BidAskSpreadCurve() (*geometrics.Curve, error) {
	return c.rowCurve("bid_ask_spread_curve", func(row *OptionData) (decimal.Decimal, error) {
		total := decimal.Zero
		n := int64(0)
		if row.CallBid != nil && row.CallAsk != nil {
			total = total.Add(row.CallAsk.Dec().Sub(row.CallBid.Dec()))
			n++
		}
		if row.PutBid != nil && row.PutAsk != nil {
			total = total.Add(row.PutAsk.Dec().Sub(row.PutBid.Dec()))
			n++
		}
		if n == 0 {
			return decimal.Zero, nil
		}
		return total.Div(decimal.NewFromInt(n)), nil
	})
}

// VolumeProfileCurve plots traded volume per strike.
func (c *OptionChain) VolumeProfileCurve() (*geometrics.Curve, error) {
	return c.rowCurve("volume_profile_curve", func(row *OptionData) (decimal.Decimal, error) {
		if row.Volume == nil {
			return decimal.Zero, nil
		}
		return row.Volume.Dec(), nil
	})
}

// VolumeProfileSurface spans traded notional over (strike, shock):
// volume times the shocked combined mid.
func (c *OptionChain) VolumeProfileSurface() (*geometrics.Surface, error) {
	if len(c.Options) < 2 {
		return nil, &opterr.MetricsError{Metric: "volume_profile_surface", Reason: "need at least two rows"}
	}
	shocks := []float64{-0.10, -0.05, 0, 0.05, 0.10}
	points := make([]geometrics.Point3D, 0, len(c.Options)*len(shocks))
	for _, row := range c.Options {
		vol := decimal.Zero
		if row.Volume != nil {
			vol = row.Volume.Dec()
		}
		for _, s := range shocks {
			pct := decimal.NewFromFloat(s)
			shocked := c.shockedUnderlying(pct)
			call, err := pricing.BlackScholesAt(c.rowOptions(model.Call, row.StrikePrice, row.ImpliedVolatility), shocked, row.ImpliedVolatility)
			if err != nil {
				return nil, &opterr.MetricsError{Metric: "volume_profile_surface", Reason: err.Error()}
			}
			put, err := pricing.BlackScholesAt(c.rowOptions(model.Put, row.StrikePrice, row.ImpliedVolatility), shocked, row.ImpliedVolatility)
			if err != nil {
				return nil, &opterr.MetricsError{Metric: "volume_profile_surface", Reason: err.Error()}
			}
			notional := vol.Mul(call.Dec().Add(put.Dec()))
			points = append(points, geometrics.Point3D{X: row.StrikePrice.Dec(), Y: pct, Z: notional})
		}
	}
	return geometrics.SurfaceFromData(points)
}

// OpenInterestCurve plots open interest per strike.
func (c *OptionChain) OpenInterestCurve() (*geometrics.Curve, error) {
	return c.rowCurve("open_interest_curve", func(row *OptionData) (decimal.Decimal, error) {
		return decimal.NewFromInt(int64(row.OpenInterest)), nil
	})
}
