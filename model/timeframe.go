package model

import "github.com/shopspring/decimal"

// TimeFrame is the calendar unit a simulation step advances by.
type TimeFrame int

const (
	Minute TimeFrame = iota
	Hour
	Day
	Week
	Month
	Year
)

func (t TimeFrame) String() string {
	switch t {
	case Minute:
		return "minute"
	case Hour:
		return "hour"
	case Day:
		return "day"
	case Week:
		return "week"
	case Month:
		return "month"
	case Year:
		return "year"
	}
	return "unknown"
}

// InDays converts one unit of the frame to calendar days.
func (t TimeFrame) InDays() decimal.Decimal {
	switch t {
	case Minute:
		return decimal.NewFromFloat(1.0 / (24 * 60))
	case Hour:
		return decimal.NewFromFloat(1.0 / 24)
	case Day:
		return decimal.NewFromInt(1)
	case Week:
		return decimal.NewFromInt(7)
	case Month:
		return decimal.NewFromFloat(30.44)
	case Year:
		return decimal.NewFromInt(365)
	}
	return decimal.NewFromInt(1)
}

// PeriodsPerYear is the annualization factor for the frame.
func (t TimeFrame) PeriodsPerYear() decimal.Decimal {
	switch t {
	case Minute:
		return decimal.NewFromInt(365 * 24 * 60)
	case Hour:
		return decimal.NewFromInt(365 * 24)
	case Day:
		return decimal.NewFromInt(365)
	case Week:
		return decimal.NewFromFloat(52.14)
	case Month:
		return decimal.NewFromInt(12)
	case Year:
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(365)
}
