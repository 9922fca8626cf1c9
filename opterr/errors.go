// Package opterr defines the error taxonomy shared by every subsystem.
// Each subsystem returns its own focused type; callers that do not care
// which subsystem failed can match on the wrapped kinds via errors.As.
package opterr

import "fmt"

// PositiveError reports an attempt to build a Positive from a negative
// or non-finite input.
type PositiveError struct {
	Value  float64
	Reason string
}

func (e *PositiveError) Error() string {
	return fmt.Sprintf("positive: invalid value %v: %s", e.Value, e.Reason)
}

// OptionsError reports invalid option parameters or an unsupported
// style for the requested operation.
type OptionsError struct {
	Field  string
	Reason string
}

func (e *OptionsError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("options: %s", e.Reason)
	}
	return fmt.Sprintf("options: %s: %s", e.Field, e.Reason)
}

// PricingError reports a pricing engine failure.
type PricingError struct {
	Method string
	Reason string
}

func (e *PricingError) Error() string {
	return fmt.Sprintf("pricing: %s: %s", e.Method, e.Reason)
}

// GreeksError reports a greek calculation failure.
type GreeksError struct {
	Greek  string
	Reason string
}

func (e *GreeksError) Error() string {
	return fmt.Sprintf("greeks: %s: %s", e.Greek, e.Reason)
}

// VolatilityError reports an implied-volatility search failure or
// insufficient history for a realized estimator.
type VolatilityError struct {
	Reason string
}

func (e *VolatilityError) Error() string {
	return fmt.Sprintf("volatility: %s", e.Reason)
}

// ChainError reports an option-chain failure: bad rows, empty chains,
// load or parse problems.
type ChainError struct {
	Symbol string
	Reason string
}

func (e *ChainError) Error() string {
	if e.Symbol == "" {
		return fmt.Sprintf("chain: %s", e.Reason)
	}
	return fmt.Sprintf("chain %s: %s", e.Symbol, e.Reason)
}

// PositionError reports a position validation failure.
type PositionError struct {
	Reason string
}

func (e *PositionError) Error() string {
	return fmt.Sprintf("position: %s", e.Reason)
}

// StrategyError reports strategy validation or optimization failures.
type StrategyError struct {
	Strategy string
	Reason   string
}

func (e *StrategyError) Error() string {
	if e.Strategy == "" {
		return fmt.Sprintf("strategy: %s", e.Reason)
	}
	return fmt.Sprintf("strategy %s: %s", e.Strategy, e.Reason)
}

// InterpolationKind classifies interpolation failures.
type InterpolationKind int

const (
	NotEnoughPoints InterpolationKind = iota
	OutOfRange
	DivisionByZero
)

func (k InterpolationKind) String() string {
	switch k {
	case NotEnoughPoints:
		return "not enough points"
	case OutOfRange:
		return "out of range"
	case DivisionByZero:
		return "division by zero"
	}
	return "unknown"
}

// InterpolationError reports an interpolation query failure.
type InterpolationError struct {
	Kind   InterpolationKind
	Reason string
}

func (e *InterpolationError) Error() string {
	return fmt.Sprintf("interpolation: %s: %s", e.Kind, e.Reason)
}

// CurveError reports curve construction or evaluation failures.
type CurveError struct {
	Op     string
	Reason string
}

func (e *CurveError) Error() string {
	return fmt.Sprintf("curve: %s: %s", e.Op, e.Reason)
}

// SurfaceError reports surface construction or evaluation failures.
type SurfaceError struct {
	Op     string
	Reason string
}

func (e *SurfaceError) Error() string {
	return fmt.Sprintf("surface: %s: %s", e.Op, e.Reason)
}

// MetricsError reports a chain metric that could not be produced.
type MetricsError struct {
	Metric string
	Reason string
}

func (e *MetricsError) Error() string {
	return fmt.Sprintf("metrics: %s: %s", e.Metric, e.Reason)
}

// SimulationError reports walk or simulator failures.
type SimulationError struct {
	Walk   string
	Reason string
}

func (e *SimulationError) Error() string {
	if e.Walk == "" {
		return fmt.Sprintf("simulation: %s", e.Reason)
	}
	return fmt.Sprintf("simulation %s: %s", e.Walk, e.Reason)
}

// GraphError reports a graph data assembly failure.
type GraphError struct {
	Reason string
}

func (e *GraphError) Error() string {
	return fmt.Sprintf("graph: %s", e.Reason)
}

// OhlcvError reports OHLCV archive reading failures.
type OhlcvError struct {
	Path   string
	Reason string
}

func (e *OhlcvError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("ohlcv: %s", e.Reason)
	}
	return fmt.Sprintf("ohlcv %s: %s", e.Path, e.Reason)
}
