package ohlcv

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratlab/optstrat/opterr"
)

const sampleCSV = `datetime,open,high,low,close,volume
2025-01-02T21:00:00Z,100.0,101.5,99.5,101.0,1500
2025-01-03T21:00:00Z,101.0,102.0,100.2,100.5,1200
2025-01-06T21:00:00Z,100.5,103.0,100.4,102.8,1800
2025-01-07T21:00:00Z,102.8,104.1,102.0,103.9,2100
`

func writeZip(t *testing.T, csv string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bars.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("bars.csv")
	require.NoError(t, err)
	_, err = w.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func TestReadZip(t *testing.T) {
	bars, err := ReadZip(writeZip(t, sampleCSV), Filter{})
	require.NoError(t, err)
	require.Len(t, bars, 4)

	first := bars[0]
	assert.Equal(t, time.Date(2025, 1, 2, 21, 0, 0, 0, time.UTC), first.Datetime.Time)
	assert.InDelta(t, 100.0, first.Open.Float64(), 1e-9)
	assert.InDelta(t, 101.0, first.Close.Float64(), 1e-9)
	assert.InDelta(t, 1500, first.Volume.Float64(), 1e-9)

	for i := 1; i < len(bars); i++ {
		assert.True(t, bars[i-1].Datetime.Before(bars[i].Datetime.Time), "bars must ascend")
	}
}

func TestReadZipFromToFilter(t *testing.T) {
	from := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 6, 23, 59, 0, 0, time.UTC)
	bars, err := ReadZip(writeZip(t, sampleCSV), Filter{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.InDelta(t, 100.5, bars[0].Close.Float64(), 1e-9)
	assert.InDelta(t, 102.8, bars[1].Close.Float64(), 1e-9)
}

func TestReadZipMissingFile(t *testing.T) {
	_, err := ReadZip(filepath.Join(t.TempDir(), "nope.zip"), Filter{})
	var oerr *opterr.OhlcvError
	require.ErrorAs(t, err, &oerr)
}

func TestReadZipEmptyArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, zip.NewWriter(f).Close())
	require.NoError(t, f.Close())

	_, err = ReadZip(path, Filter{})
	var oerr *opterr.OhlcvError
	require.ErrorAs(t, err, &oerr)
}

func TestReadCSVPlainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	bars, err := ReadCSV(path, Filter{})
	require.NoError(t, err)
	require.Len(t, bars, 4)
	assert.InDelta(t, 103.9, bars[3].Close.Float64(), 1e-9)
}

func TestCloses(t *testing.T) {
	bars, err := ReadZip(writeZip(t, sampleCSV), Filter{})
	require.NoError(t, err)
	closes := Closes(bars)
	assert.Equal(t, []float64{101.0, 100.5, 102.8, 103.9}, closes)
}

func TestBadDatetimeSurfacesError(t *testing.T) {
	bad := "datetime,open,high,low,close,volume\nnot-a-date,1,1,1,1,1\n"
	_, err := ReadZip(writeZip(t, bad), Filter{})
	var oerr *opterr.OhlcvError
	require.ErrorAs(t, err, &oerr)
}
