// Package ohlcv reads zipped OHLCV histories. An archive holds one
// CSV with headers datetime,open,high,low,close,volume; datetimes are
// RFC3339.
package ohlcv

import (
	"archive/zip"
	"io"
	"os"
	"sort"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/stratlab/optstrat/model"
	"github.com/stratlab/optstrat/opterr"
)

// Bar is one OHLCV record.
type Bar struct {
	Datetime BarTime        `csv:"datetime"`
	Open     model.Positive `csv:"open"`
	High     model.Positive `csv:"high"`
	Low      model.Positive `csv:"low"`
	Close    model.Positive `csv:"close"`
	Volume   model.Positive `csv:"volume"`
}

// BarTime parses RFC3339 cells for gocsv.
type BarTime struct {
	time.Time
}

func (t *BarTime) UnmarshalCSV(s string) error {
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}
	t.Time = parsed.UTC()
	return nil
}

func (t BarTime) MarshalCSV() (string, error) {
	return t.Format(time.RFC3339), nil
}

// Filter bounds the records returned by the readers. Nil bounds mean
// unbounded.
type Filter struct {
	From *time.Time
	To   *time.Time
}

func (f Filter) keep(t time.Time) bool {
	if f.From != nil && t.Before(*f.From) {
		return false
	}
	if f.To != nil && t.After(*f.To) {
		return false
	}
	return true
}

// ReadZip opens a ZIP archive and parses the first CSV entry.
func ReadZip(path string, filter Filter) ([]Bar, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, &opterr.OhlcvError{Path: path, Reason: "open zip: " + err.Error()}
	}
	defer r.Close()

	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			return nil, &opterr.OhlcvError{Path: path, Reason: "open entry: " + err.Error()}
		}
		bars, err := readCSV(rc, filter)
		rc.Close()
		if err != nil {
			return nil, &opterr.OhlcvError{Path: path, Reason: err.Error()}
		}
		return bars, nil
	}
	return nil, &opterr.OhlcvError{Path: path, Reason: "empty archive"}
}

// ReadCSV parses a plain CSV file of bars.
func ReadCSV(path string, filter Filter) ([]Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &opterr.OhlcvError{Path: path, Reason: "open: " + err.Error()}
	}
	defer f.Close()
	bars, err := readCSV(f, filter)
	if err != nil {
		return nil, &opterr.OhlcvError{Path: path, Reason: err.Error()}
	}
	return bars, nil
}

func readCSV(r io.Reader, filter Filter) ([]Bar, error) {
	var rows []Bar
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, err
	}
	bars := rows[:0]
	for _, b := range rows {
		if filter.keep(b.Datetime.Time) {
			bars = append(bars, b)
		}
	}
	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Datetime.Before(bars[j].Datetime.Time)
	})
	return bars, nil
}

// Closes extracts the close column as floats, oldest first.
func Closes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close.Float64()
	}
	return out
}
