package model

import (
	"math"

	"github.com/shopspring/decimal"
	"github.com/stratlab/optstrat/opterr"
)

// Positive is a non-negative decimal used for prices, strikes,
// quantities, volatilities, fees and day counts. The zero value is 0.
type Positive struct {
	value decimal.Decimal
}

var (
	PZero     = Positive{decimal.Zero}
	POne      = Positive{decimal.NewFromInt(1)}
	PTwo      = Positive{decimal.NewFromInt(2)}
	PHundred  = Positive{decimal.NewFromInt(100)}
	PInfinity = Positive{decimal.NewFromFloat(math.MaxFloat64)}
)

func NewPositive(v float64) (Positive, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return PZero, &opterr.PositiveError{Value: v, Reason: "not finite"}
	}
	if v < 0 {
		return PZero, &opterr.PositiveError{Value: v, Reason: "negative"}
	}
	return Positive{decimal.NewFromFloat(v)}, nil
}

func NewPositiveDecimal(d decimal.Decimal) (Positive, error) {
	if d.IsNegative() {
		f, _ := d.Float64()
		return PZero, &opterr.PositiveError{Value: f, Reason: "negative"}
	}
	return Positive{d}, nil
}

// MustPositive panics on invalid input. Reserved for literals.
func MustPositive(v float64) Positive {
	p, err := NewPositive(v)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Positive) Dec() decimal.Decimal { return p.value }

func (p Positive) Float64() float64 {
	f, _ := p.value.Float64()
	return f
}

func (p Positive) IsZero() bool { return p.value.IsZero() }

func (p Positive) IsInfinite() bool { return p.value.Equal(PInfinity.value) }

func (p Positive) Add(o Positive) Positive { return Positive{p.value.Add(o.value)} }

// Sub fails when the result would be negative.
func (p Positive) Sub(o Positive) (Positive, error) {
	r := p.value.Sub(o.value)
	if r.IsNegative() {
		f, _ := r.Float64()
		return PZero, &opterr.PositiveError{Value: f, Reason: "subtraction underflow"}
	}
	return Positive{r}, nil
}

// SubOrZero saturates at zero instead of failing.
func (p Positive) SubOrZero(o Positive) Positive {
	r := p.value.Sub(o.value)
	if r.IsNegative() {
		return PZero
	}
	return Positive{r}
}

func (p Positive) Mul(o Positive) Positive { return Positive{p.value.Mul(o.value)} }

// MulDec multiplies by a signed decimal; the result keeps its sign.
func (p Positive) MulDec(d decimal.Decimal) decimal.Decimal { return p.value.Mul(d) }

// AddDec adds a signed decimal; the result keeps its sign.
func (p Positive) AddDec(d decimal.Decimal) decimal.Decimal { return p.value.Add(d) }

func (p Positive) Div(o Positive) (Positive, error) {
	if o.value.IsZero() {
		return PZero, &opterr.PositiveError{Value: 0, Reason: "division by zero"}
	}
	return Positive{p.value.Div(o.value)}, nil
}

func (p Positive) Cmp(o Positive) int { return p.value.Cmp(o.value) }

func (p Positive) Equal(o Positive) bool { return p.value.Equal(o.value) }

func (p Positive) LessThan(o Positive) bool { return p.value.LessThan(o.value) }

func (p Positive) GreaterThan(o Positive) bool { return p.value.GreaterThan(o.value) }

func (p Positive) Max(o Positive) Positive {
	if p.value.GreaterThanOrEqual(o.value) {
		return p
	}
	return o
}

func (p Positive) Min(o Positive) Positive {
	if p.value.LessThanOrEqual(o.value) {
		return p
	}
	return o
}

func (p Positive) RoundDP(places int32) Positive { return Positive{p.value.Round(places)} }

func (p Positive) Floor() Positive { return Positive{p.value.Floor()} }

func (p Positive) Ceil() Positive { return Positive{p.value.Ceil()} }

func (p Positive) String() string { return p.value.String() }

func (p Positive) MarshalJSON() ([]byte, error) {
	return p.value.MarshalJSON()
}

func (p *Positive) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	np, err := NewPositiveDecimal(d)
	if err != nil {
		return err
	}
	*p = np
	return nil
}

// MarshalCSV / UnmarshalCSV let gocsv read chain rows directly.
func (p Positive) MarshalCSV() (string, error) { return p.value.String(), nil }

func (p *Positive) UnmarshalCSV(s string) error {
	if s == "" {
		*p = PZero
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return err
	}
	np, err := NewPositiveDecimal(d)
	if err != nil {
		return err
	}
	*p = np
	return nil
}
