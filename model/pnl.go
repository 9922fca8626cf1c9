package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PnL is a snapshot of a position or strategy profit and loss.
// Realized is set once legs are closed, Unrealized while they are
// marked to a theoretical or market price.
type PnL struct {
	Realized      *decimal.Decimal
	Unrealized    *decimal.Decimal
	InitialCosts  Positive
	InitialIncome Positive
	Date          time.Time
}

func NewPnL(realized, unrealized *decimal.Decimal, costs, income Positive, date time.Time) PnL {
	return PnL{
		Realized:      realized,
		Unrealized:    unrealized,
		InitialCosts:  costs,
		InitialIncome: income,
		Date:          date.UTC(),
	}
}

// Total is realized plus unrealized, treating missing parts as zero.
func (p PnL) Total() decimal.Decimal {
	t := decimal.Zero
	if p.Realized != nil {
		t = t.Add(*p.Realized)
	}
	if p.Unrealized != nil {
		t = t.Add(*p.Unrealized)
	}
	return t
}
