package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stratlab/optstrat/opterr"
)

const daysPerYear = 365.0

// ExpirationDate is either a day count until expiry (possibly
// fractional) or an absolute UTC timestamp.
type ExpirationDate struct {
	days     Positive
	at       time.Time
	absolute bool
}

// Days builds a relative expiration n days out.
func Days(days Positive) ExpirationDate {
	return ExpirationDate{days: days}
}

// DaysFromFloat is a convenience for literal day counts.
func DaysFromFloat(days float64) (ExpirationDate, error) {
	p, err := NewPositive(days)
	if err != nil {
		return ExpirationDate{}, err
	}
	return Days(p), nil
}

// AtDate builds an absolute expiration. The timestamp is normalized
// to UTC.
func AtDate(t time.Time) ExpirationDate {
	return ExpirationDate{at: t.UTC(), absolute: true}
}

// ParseExpiration accepts "2006-01-02", RFC3339, or a plain day count.
func ParseExpiration(s string) (ExpirationDate, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ExpirationDate{}, &opterr.OptionsError{Field: "expiration_date", Reason: "empty"}
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return AtDate(t), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return AtDate(t), nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return ExpirationDate{}, &opterr.OptionsError{Field: "expiration_date", Reason: "unparseable: " + s}
	}
	p, perr := NewPositiveDecimal(d)
	if perr != nil {
		return ExpirationDate{}, perr
	}
	return Days(p), nil
}

// Days returns the days until expiry, measured from now for absolute
// dates. An expired absolute date fails.
func (e ExpirationDate) Days() (Positive, error) {
	if !e.absolute {
		return e.days, nil
	}
	d := e.at.Sub(time.Now().UTC()).Hours() / 24
	if d < 0 {
		return PZero, &opterr.OptionsError{Field: "expiration_date", Reason: "already expired"}
	}
	return NewPositive(d)
}

// YearFraction converts to years on ACT/365.
func (e ExpirationDate) YearFraction() (Positive, error) {
	d, err := e.Days()
	if err != nil {
		return PZero, err
	}
	return Positive{d.value.Div(decimal.NewFromInt(365))}, nil
}

// Date resolves to an absolute UTC date, anchoring relative day
// counts at now.
func (e ExpirationDate) Date() time.Time {
	if e.absolute {
		return e.at
	}
	hours := e.days.Float64() * 24
	return time.Now().UTC().Add(time.Duration(hours * float64(time.Hour)))
}

// String renders absolute dates as 2006-01-02 and relative ones as a
// day count. Used for chain titles and file names.
func (e ExpirationDate) String() string {
	if e.absolute {
		return e.at.Format("2006-01-02")
	}
	return e.days.String()
}

func (e ExpirationDate) IsAbsolute() bool { return e.absolute }

// Less orders expirations by resolved date, for term structures.
func (e ExpirationDate) Less(o ExpirationDate) bool {
	return e.Date().Before(o.Date())
}

// AddDays returns the expiration shifted by delta days, saturating at
// zero days remaining.
func (e ExpirationDate) AddDays(delta decimal.Decimal) ExpirationDate {
	if e.absolute {
		hours := delta.InexactFloat64() * 24
		return AtDate(e.at.Add(time.Duration(hours * float64(time.Hour))))
	}
	d := e.days.value.Add(delta)
	if d.IsNegative() {
		d = decimal.Zero
	}
	return Days(Positive{d})
}
