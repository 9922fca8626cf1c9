package geometrics

import (
	"github.com/shopspring/decimal"
	"github.com/stratlab/optstrat/opterr"
)

// GeometricObject is the shared surface of curves and surfaces.
type GeometricObject interface {
	Len() int
}

// CurveFromData builds a curve from explicit points; fewer than two
// points cannot define a range.
func CurveFromData(points []Point2D) (*Curve, error) {
	if len(points) < 2 {
		return nil, &opterr.CurveError{Op: "construct", Reason: "need at least two points"}
	}
	return NewCurve(points), nil
}

// CurveParametric samples f uniformly on [tStart, tEnd] inclusive.
// Failures of f abort construction.
func CurveParametric(f func(t decimal.Decimal) (Point2D, error), tStart, tEnd decimal.Decimal, steps int) (*Curve, error) {
	if steps < 1 {
		return nil, &opterr.CurveError{Op: "construct", Reason: "need at least one step"}
	}
	span := tEnd.Sub(tStart)
	step := span.Div(decimal.NewFromInt(int64(steps)))
	points := make([]Point2D, 0, steps+1)
	for i := 0; i <= steps; i++ {
		t := tStart.Add(step.Mul(decimal.NewFromInt(int64(i))))
		if i == steps {
			t = tEnd
		}
		p, err := f(t)
		if err != nil {
			return nil, &opterr.CurveError{Op: "construct", Reason: "parametric function failed: " + err.Error()}
		}
		points = append(points, p)
	}
	return NewCurve(points), nil
}

// SurfaceFromData builds a surface from explicit points.
func SurfaceFromData(points []Point3D) (*Surface, error) {
	if len(points) < 2 {
		return nil, &opterr.SurfaceError{Op: "construct", Reason: "need at least two points"}
	}
	return NewSurface(points), nil
}

// SurfaceParametric samples f over the inclusive grid
// [xStart,xEnd] x [yStart,yEnd].
func SurfaceParametric(f func(x, y decimal.Decimal) (Point3D, error),
	xStart, xEnd, yStart, yEnd decimal.Decimal, xSteps, ySteps int) (*Surface, error) {
	if xSteps < 1 || ySteps < 1 {
		return nil, &opterr.SurfaceError{Op: "construct", Reason: "need at least one step per axis"}
	}
	xStep := xEnd.Sub(xStart).Div(decimal.NewFromInt(int64(xSteps)))
	yStep := yEnd.Sub(yStart).Div(decimal.NewFromInt(int64(ySteps)))
	points := make([]Point3D, 0, (xSteps+1)*(ySteps+1))
	for i := 0; i <= xSteps; i++ {
		x := xStart.Add(xStep.Mul(decimal.NewFromInt(int64(i))))
		if i == xSteps {
			x = xEnd
		}
		for j := 0; j <= ySteps; j++ {
			y := yStart.Add(yStep.Mul(decimal.NewFromInt(int64(j))))
			if j == ySteps {
				y = yEnd
			}
			p, err := f(x, y)
			if err != nil {
				return nil, &opterr.SurfaceError{Op: "construct", Reason: "parametric function failed: " + err.Error()}
			}
			points = append(points, p)
		}
	}
	return NewSurface(points), nil
}
