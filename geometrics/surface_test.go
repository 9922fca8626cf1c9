package geometrics

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratlab/optstrat/opterr"
)

// gridSurface samples z = f(x, y) on an n-by-n grid over [lo, hi]^2.
func gridSurface(n int, lo, hi float64, f func(x, y float64) float64) *Surface {
	step := (hi - lo) / float64(n-1)
	points := make([]Point3D, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			x := lo + float64(i)*step
			y := lo + float64(j)*step
			points = append(points, Point3D{
				X: decimal.NewFromFloat(x),
				Y: decimal.NewFromFloat(y),
				Z: decimal.NewFromFloat(f(x, y)),
			})
		}
	}
	return NewSurface(points)
}

func TestBilinearExactOnPlane(t *testing.T) {
	s := gridSurface(5, 0, 4, func(x, y float64) float64 { return 2*x + 3*y + 1 })
	p, err := s.Interpolate(decimal.NewFromFloat(1.5), decimal.NewFromFloat(2.5), Bilinear)
	require.NoError(t, err)
	assert.InDelta(t, 2*1.5+3*2.5+1, p.Z.InexactFloat64(), 1e-10)
}

func TestBilinearHitsKnots(t *testing.T) {
	s := gridSurface(4, 0, 3, func(x, y float64) float64 { return x * y })
	for _, p := range s.Points() {
		got, err := s.Interpolate(p.X, p.Y, Bilinear)
		require.NoError(t, err)
		assert.InDelta(t, p.Z.InexactFloat64(), got.Z.InexactFloat64(), 1e-12)
	}
}

func TestBilinearOutOfRange(t *testing.T) {
	s := gridSurface(3, 0, 2, func(x, y float64) float64 { return x + y })
	_, err := s.Interpolate(decimal.NewFromInt(5), decimal.Zero, Bilinear)
	var ierr *opterr.InterpolationError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, opterr.OutOfRange, ierr.Kind)
}

func TestSurfaceParametricGrid(t *testing.T) {
	s, err := SurfaceParametric(func(x, y decimal.Decimal) (Point3D, error) {
		return Point3D{X: x, Y: y, Z: x.Add(y)}, nil
	}, decimal.Zero, decimal.NewFromInt(2), decimal.Zero, decimal.NewFromInt(2), 4, 4)
	require.NoError(t, err)
	assert.Equal(t, 25, s.Len())
}

func TestMergeSurfacesMax(t *testing.T) {
	a := gridSurface(3, 0, 2, func(x, y float64) float64 { return 1 })
	b := gridSurface(3, 0, 2, func(x, y float64) float64 { return x })
	merged, err := MergeSurfaces(MergeMax, a, b)
	require.NoError(t, err)
	p, err := merged.Interpolate(decimal.NewFromInt(2), decimal.NewFromInt(1), Bilinear)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, p.Z.InexactFloat64(), 1e-12)
}

func TestSurfaceExtremaAndMeasure(t *testing.T) {
	s := gridSurface(5, 0, 4, func(x, y float64) float64 { return 3 })
	min, max, err := s.Extrema()
	require.NoError(t, err)
	assert.InDelta(t, 3.0, min.Z.InexactFloat64(), 1e-12)
	assert.InDelta(t, 3.0, max.Z.InexactFloat64(), 1e-12)

	// Constant height 3 over a 4x4 square: volume 48.
	vol, err := s.MeasureUnder(decimal.Zero)
	require.NoError(t, err)
	assert.InDelta(t, 48.0, vol.InexactFloat64(), 1e-9)
}

func TestSurfaceTranslateRotate(t *testing.T) {
	s := gridSurface(3, 0, 2, func(x, y float64) float64 { return x })
	moved := s.Translate(decimal.Zero, decimal.Zero, decimal.NewFromInt(10))
	_, max, err := moved.Extrema()
	require.NoError(t, err)
	assert.InDelta(t, 12.0, max.Z.InexactFloat64(), 1e-12)
}
