package chain

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/stratlab/optstrat/geometrics"
	"github.com/stratlab/optstrat/model"
	"github.com/stratlab/optstrat/opterr"
)

// OptionSeries is a term structure of chains for one symbol, keyed by
// expiration ascending.
type OptionSeries struct {
	Symbol          string           `json:"symbol"`
	UnderlyingPrice model.Positive   `json:"underlying_price"`
	RiskFreeRate    *decimal.Decimal `json:"risk_free_rate,omitempty"`
	DividendYield   *model.Positive  `json:"dividend_yield,omitempty"`

	chains []*OptionChain
}

func NewSeries(symbol string, underlying model.Positive) *OptionSeries {
	return &OptionSeries{Symbol: symbol, UnderlyingPrice: underlying}
}

// AddChain inserts a chain, keeping expirations ordered. A chain with
// an existing expiration replaces the old one.
func (s *OptionSeries) AddChain(c *OptionChain) error {
	if c.Symbol != s.Symbol {
		return &opterr.ChainError{Symbol: c.Symbol, Reason: "symbol does not match series " + s.Symbol}
	}
	i := sort.Search(len(s.chains), func(i int) bool {
		return !s.chains[i].ExpirationDate.Less(c.ExpirationDate)
	})
	if i < len(s.chains) && !c.ExpirationDate.Less(s.chains[i].ExpirationDate) &&
		!s.chains[i].ExpirationDate.Less(c.ExpirationDate) {
		s.chains[i] = c
		return nil
	}
	s.chains = append(s.chains, nil)
	copy(s.chains[i+1:], s.chains[i:])
	s.chains[i] = c
	return nil
}

func (s *OptionSeries) Len() int { return len(s.chains) }

// Chains returns the chains in expiration order.
func (s *OptionSeries) Chains() []*OptionChain { return s.chains }

// ChainAt returns the chain with the exact expiration.
func (s *OptionSeries) ChainAt(exp model.ExpirationDate) (*OptionChain, bool) {
	for _, c := range s.chains {
		if !c.ExpirationDate.Less(exp) && !exp.Less(c.ExpirationDate) {
			return c, true
		}
	}
	return nil, false
}

// Expirations lists the expirations in ascending order.
func (s *OptionSeries) Expirations() []model.ExpirationDate {
	out := make([]model.ExpirationDate, 0, len(s.chains))
	for _, c := range s.chains {
		out = append(out, c.ExpirationDate)
	}
	return out
}

// AtmTermStructure plots ATM implied volatility against days to
// expiry across the series.
func (s *OptionSeries) AtmTermStructure() (*geometrics.Curve, error) {
	if len(s.chains) < 2 {
		return nil, &opterr.MetricsError{Metric: "atm_term_structure", Reason: "need at least two expirations"}
	}
	points := make([]geometrics.Point2D, 0, len(s.chains))
	for _, c := range s.chains {
		row, err := c.atmRow()
		if err != nil {
			return nil, err
		}
		days, err := c.ExpirationDate.Days()
		if err != nil {
			return nil, &opterr.MetricsError{Metric: "atm_term_structure", Reason: err.Error()}
		}
		points = append(points, geometrics.Point2D{X: days.Dec(), Y: row.ImpliedVolatility.Dec()})
	}
	return geometrics.CurveFromData(points)
}

// IVTermSurface assembles the full (strike, days, iv) surface across
// the series.
func (s *OptionSeries) IVTermSurface() (*geometrics.Surface, error) {
	if len(s.chains) < 2 {
		return nil, &opterr.MetricsError{Metric: "iv_term_surface", Reason: "need at least two expirations"}
	}
	var points []geometrics.Point3D
	for _, c := range s.chains {
		days, err := c.ExpirationDate.Days()
		if err != nil {
			return nil, &opterr.MetricsError{Metric: "iv_term_surface", Reason: err.Error()}
		}
		for _, row := range c.Options {
			points = append(points, geometrics.Point3D{
				X: row.StrikePrice.Dec(),
				Y: days.Dec(),
				Z: row.ImpliedVolatility.Dec(),
			})
		}
	}
	return geometrics.SurfaceFromData(points)
}
