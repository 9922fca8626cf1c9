package geometrics

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratlab/optstrat/opterr"
)

func linePoints() []Point2D {
	return []Point2D{
		Point2DFromFloats(0, 0),
		Point2DFromFloats(1, 2),
		Point2DFromFloats(2, 4),
		Point2DFromFloats(3, 6),
	}
}

func quadPoints(n int, lo, hi float64) []Point2D {
	points := make([]Point2D, 0, n)
	step := (hi - lo) / float64(n-1)
	for i := 0; i < n; i++ {
		x := lo + float64(i)*step
		points = append(points, Point2DFromFloats(x, x*x))
	}
	return points
}

func TestNewCurveSortsAndDedupes(t *testing.T) {
	points := []Point2D{
		Point2DFromFloats(2, 4),
		Point2DFromFloats(0, 0),
		Point2DFromFloats(1, 2),
		Point2DFromFloats(1, 3), // duplicate x, last wins
	}
	c := NewCurve(points)
	require.Equal(t, 3, c.Len())
	got := c.Points()
	assert.True(t, got[0].X.Equal(decimal.Zero))
	assert.True(t, got[1].Y.Equal(decimal.NewFromInt(3)))
	assert.True(t, got[2].X.Equal(decimal.NewFromInt(2)))
}

func TestLinearInterpolation(t *testing.T) {
	c := NewCurve(linePoints())
	p, err := c.Interpolate(decimal.NewFromFloat(1.5), Linear)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, p.Y.InexactFloat64(), 1e-12)
}

func TestInterpolationHitsKnots(t *testing.T) {
	c := NewCurve(quadPoints(9, 0, 4))
	for _, method := range []InterpolationMethod{Linear, Cubic, Spline} {
		for _, p := range c.Points() {
			got, err := c.Interpolate(p.X, method)
			require.NoError(t, err)
			assert.InDelta(t, p.Y.InexactFloat64(), got.Y.InexactFloat64(), 1e-10)
		}
	}
}

func TestCubicExactOnQuadratic(t *testing.T) {
	c := NewCurve(quadPoints(11, 0, 5))
	for _, x := range []float64{0.73, 1.5, 2.25, 3.9, 4.6} {
		p, err := c.Interpolate(decimal.NewFromFloat(x), Cubic)
		require.NoError(t, err)
		assert.InDelta(t, x*x, p.Y.InexactFloat64(), 1e-10, "x=%v", x)
	}
}

func TestSplineCloseOnQuadratic(t *testing.T) {
	c := NewCurve(quadPoints(21, 0, 5))
	p, err := c.Interpolate(decimal.NewFromFloat(2.5), Spline)
	require.NoError(t, err)
	assert.InDelta(t, 6.25, p.Y.InexactFloat64(), 1e-3)
}

func TestInterpolateOutOfRange(t *testing.T) {
	c := NewCurve(linePoints())
	_, err := c.Interpolate(decimal.NewFromInt(10), Linear)
	var ierr *opterr.InterpolationError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, opterr.OutOfRange, ierr.Kind)
}

func TestCurveParametricSampling(t *testing.T) {
	c, err := CurveParametric(func(tv decimal.Decimal) (Point2D, error) {
		return Point2D{X: tv, Y: tv.Mul(tv)}, nil
	}, decimal.Zero, decimal.NewFromInt(10), 100)
	require.NoError(t, err)
	require.Equal(t, 101, c.Len())

	first := c.First()
	last := c.Last()
	assert.True(t, first.X.Equal(decimal.Zero))
	assert.True(t, last.X.Equal(decimal.NewFromInt(10)))

	mid, err := c.Interpolate(decimal.NewFromFloat(5.05), Cubic)
	require.NoError(t, err)
	assert.InDelta(t, 5.05*5.05, mid.Y.InexactFloat64(), 1e-8)
}

func TestMergeCurvesAdd(t *testing.T) {
	a := NewCurve(quadPoints(11, 0, 4))
	b := NewCurve(linePoints()) // y = 2x on [0,3]
	merged, err := MergeCurves(MergeAdd, a, b)
	require.NoError(t, err)
	p, err := merged.Interpolate(decimal.NewFromFloat(1.5), Linear)
	require.NoError(t, err)
	assert.InDelta(t, 1.5*1.5+3.0, p.Y.InexactFloat64(), 1e-9)
}

func TestMergeCurvesDivideByZero(t *testing.T) {
	a := NewCurve(linePoints())
	zero := NewCurve([]Point2D{
		Point2DFromFloats(0, 0),
		Point2DFromFloats(1, 0),
		Point2DFromFloats(3, 0),
	})
	_, err := MergeCurves(MergeDivide, a, zero)
	var ierr *opterr.InterpolationError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, opterr.DivisionByZero, ierr.Kind)
}

func TestCurveTranslateAndScale(t *testing.T) {
	c := NewCurve(linePoints())
	moved := c.Translate(decimal.NewFromInt(1), decimal.NewFromInt(-1))
	assert.True(t, moved.First().X.Equal(decimal.NewFromInt(1)))
	assert.True(t, moved.First().Y.Equal(decimal.NewFromInt(-1)))

	scaled := c.Scale(decimal.NewFromInt(2), decimal.NewFromInt(3))
	assert.True(t, scaled.Last().X.Equal(decimal.NewFromInt(6)))
	assert.True(t, scaled.Last().Y.Equal(decimal.NewFromInt(18)))
}

func TestCurveRotateQuarterTurn(t *testing.T) {
	c := NewCurve([]Point2D{
		Point2DFromFloats(0, 0),
		Point2DFromFloats(1, 0),
		Point2DFromFloats(2, 0),
	})
	r := c.Rotate(math.Pi / 2)
	_, max, err := r.Extrema()
	require.NoError(t, err)
	assert.InDelta(t, 2.0, max.Y.InexactFloat64(), 1e-9)
}

func TestCurveDerivative(t *testing.T) {
	c := NewCurve(quadPoints(21, 0, 5))
	d, err := c.DerivativeAt(decimal.NewFromInt(2))
	require.NoError(t, err)
	assert.InDelta(t, 4.0, d.InexactFloat64(), 1e-3)
}

func TestCurveExtrema(t *testing.T) {
	c := NewCurve([]Point2D{
		Point2DFromFloats(0, 1),
		Point2DFromFloats(1, -3),
		Point2DFromFloats(2, 5),
		Point2DFromFloats(3, 2),
	})
	min, max, err := c.Extrema()
	require.NoError(t, err)
	assert.True(t, min.Y.Equal(decimal.NewFromInt(-3)))
	assert.True(t, max.Y.Equal(decimal.NewFromInt(5)))
}

func TestCurveMeasureUnder(t *testing.T) {
	c := NewCurve(linePoints()) // y = 2x on [0,3], area 9
	area, err := c.MeasureUnder(decimal.Zero)
	require.NoError(t, err)
	assert.InDelta(t, 9.0, area.InexactFloat64(), 1e-12)

	shifted, err := c.MeasureUnder(decimal.NewFromInt(1))
	require.NoError(t, err)
	assert.InDelta(t, 6.0, shifted.InexactFloat64(), 1e-12)
}

func TestCurveIntersect(t *testing.T) {
	quad := NewCurve(quadPoints(41, 0, 3))
	line := NewCurve([]Point2D{
		Point2DFromFloats(0, 2),
		Point2DFromFloats(1.5, 2),
		Point2DFromFloats(3, 2),
	})
	// x^2 = 2 at x = sqrt(2) within [0,3].
	crossings, err := quad.Intersect(line)
	require.NoError(t, err)
	require.Len(t, crossings, 1)
	assert.InDelta(t, math.Sqrt2, crossings[0].X.InexactFloat64(), 1e-4)
}

func TestCurveWarp(t *testing.T) {
	c := NewCurve(linePoints())
	w := c.Warp(func(p Point2D) Point2D {
		return Point2D{X: p.X, Y: p.Y.Mul(p.Y)}
	})
	assert.True(t, w.Last().Y.Equal(decimal.NewFromInt(36)))
}
