package graph

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratlab/optstrat/geometrics"
)

func lineCurve(t *testing.T) *geometrics.Curve {
	t.Helper()
	pts := make([]geometrics.Point2D, 5)
	for i := range pts {
		x := decimal.NewFromInt(int64(i))
		pts[i] = geometrics.NewPoint2D(x, x.Mul(decimal.NewFromInt(2)))
	}
	return geometrics.NewCurve(pts)
}

func TestCurveGraphData(t *testing.T) {
	g := NewCurveGraph("payoff", lineCurve(t))
	data, err := g.GraphData()
	require.NoError(t, err)
	assert.Equal(t, SeriesKind, data.Kind)
	require.Len(t, data.Series.X, 5)
	assert.Equal(t, "payoff", data.Series.Name)
	assert.InDelta(t, 8, data.Series.Y[4], 1e-12)

	cfg := g.GraphConfig()
	assert.Equal(t, "payoff", cfg.Title)
	assert.Equal(t, 1280, cfg.Width)
}

func TestMultiCurveGraph(t *testing.T) {
	g := NewMultiCurveGraph("smiles").
		Add("near", lineCurve(t)).
		Add("far", lineCurve(t))
	data, err := g.GraphData()
	require.NoError(t, err)
	assert.Equal(t, MultiSeriesKind, data.Kind)
	require.Len(t, data.Multi, 2)
	assert.Equal(t, []string{"near", "far"}, g.GraphConfig().Legend)
	assert.True(t, g.GraphConfig().ShowLegend)
}

func TestSurfaceGraphData(t *testing.T) {
	var pts []geometrics.Point3D
	for x := 0; x < 3; x++ {
		for y := 0; y < 3; y++ {
			pts = append(pts, geometrics.NewPoint3D(
				decimal.NewFromInt(int64(x)),
				decimal.NewFromInt(int64(y)),
				decimal.NewFromInt(int64(x+y))))
		}
	}
	g := NewSurfaceGraph("iv", geometrics.NewSurface(pts))
	data, err := g.GraphData()
	require.NoError(t, err)
	assert.Equal(t, Series3DKind, data.Kind)
	assert.Len(t, data.Series3D.Z, 9)
}

func TestEmptyGraphsFail(t *testing.T) {
	_, err := NewCurveGraph("empty", geometrics.NewCurve(nil)).GraphData()
	assert.Error(t, err)
	_, err = NewMultiCurveGraph("empty").GraphData()
	assert.Error(t, err)
}

func TestSeriesFromValues(t *testing.T) {
	s, err := SeriesFromValues("walk", []float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 2}, s.X)
	_, err = SeriesFromValues("none", nil)
	assert.Error(t, err)
}
