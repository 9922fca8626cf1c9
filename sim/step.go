// Package sim provides stochastic walks over time-indexed steps and a
// simulator that replays strategies along them.
package sim

import (
	"github.com/stratlab/optstrat/model"
	"github.com/stratlab/optstrat/opterr"
)

// Xstep tracks position on the time axis: a step counter plus the
// remaining life of the contract being walked.
type Xstep struct {
	index      int
	stepSize   model.Positive
	timeUnit   model.TimeFrame
	expiration model.ExpirationDate
}

func NewXstep(stepSize model.Positive, unit model.TimeFrame, expiration model.ExpirationDate) Xstep {
	return Xstep{stepSize: stepSize, timeUnit: unit, expiration: expiration}
}

func (x Xstep) Index() int                       { return x.index }
func (x Xstep) StepSize() model.Positive         { return x.stepSize }
func (x Xstep) TimeUnit() model.TimeFrame        { return x.timeUnit }
func (x Xstep) Expiration() model.ExpirationDate { return x.expiration }

// DaysLeft is the remaining days on the expiration, zero when it
// cannot be resolved.
func (x Xstep) DaysLeft() model.Positive {
	d, err := x.expiration.Days()
	if err != nil {
		return model.PZero
	}
	return d
}

// Next advances the index and burns one step of calendar time. It
// fails once the remaining life is exhausted.
func (x Xstep) Next() (Xstep, error) {
	days, err := x.expiration.Days()
	if err != nil {
		return Xstep{}, err
	}
	if days.IsZero() {
		return Xstep{}, &opterr.SimulationError{Reason: "no days left to step"}
	}
	stepDays := x.stepSize.Dec().Mul(x.timeUnit.InDays())
	return Xstep{
		index:      x.index + 1,
		stepSize:   x.stepSize,
		timeUnit:   x.timeUnit,
		expiration: x.expiration.AddDays(stepDays.Neg()),
	}, nil
}

// Ystep pairs a walked value with its step counter.
type Ystep[T any] struct {
	index int
	value T
}

func NewYstep[T any](index int, value T) Ystep[T] {
	return Ystep[T]{index: index, value: value}
}

func (y Ystep[T]) Index() int { return y.index }
func (y Ystep[T]) Value() T   { return y.value }

// Next returns the step holding the new value with the counter
// advanced.
func (y Ystep[T]) Next(value T) Ystep[T] {
	return Ystep[T]{index: y.index + 1, value: value}
}

// Step is one point of a walk: a time coordinate and a value.
type Step[T any] struct {
	X Xstep
	Y Ystep[T]
}

func NewStep[T any](x Xstep, value T) Step[T] {
	return Step[T]{X: x, Y: NewYstep(0, value)}
}

// Next advances both axes; it fails when the time axis is exhausted.
func (s Step[T]) Next(value T) (Step[T], error) {
	x, err := s.X.Next()
	if err != nil {
		return Step[T]{}, err
	}
	return Step[T]{X: x, Y: s.Y.Next(value)}, nil
}
