package geometrics

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/stratlab/optstrat/opterr"
)

// Curve is an ordered set of 2D points, unique and ascending by X.
type Curve struct {
	points []Point2D
	xMin   decimal.Decimal
	xMax   decimal.Decimal
}

// NewCurve sorts, dedups by X (last write wins) and records the
// range.
func NewCurve(points []Point2D) *Curve {
	c := &Curve{}
	c.reset(points)
	return c
}

func (c *Curve) reset(points []Point2D) {
	sorted := make([]Point2D, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })
	unique := sorted[:0]
	for _, p := range sorted {
		if len(unique) > 0 && unique[len(unique)-1].X.Equal(p.X) {
			unique[len(unique)-1] = p
			continue
		}
		unique = append(unique, p)
	}
	c.points = unique
	if len(unique) > 0 {
		c.xMin = unique[0].X
		c.xMax = unique[len(unique)-1].X
	} else {
		c.xMin, c.xMax = decimal.Zero, decimal.Zero
	}
}

func (c *Curve) Points() []Point2D { return c.points }

func (c *Curve) Len() int { return len(c.points) }

// XRange is the (min x, max x) of the stored points.
func (c *Curve) XRange() (decimal.Decimal, decimal.Decimal) { return c.xMin, c.xMax }

// First and Last panic on empty curves; use Len first.
func (c *Curve) First() Point2D { return c.points[0] }
func (c *Curve) Last() Point2D  { return c.points[len(c.points)-1] }

func (c *Curve) inRange(x decimal.Decimal) bool {
	return x.GreaterThanOrEqual(c.xMin) && x.LessThanOrEqual(c.xMax)
}

// locate returns the index of the last point with X <= x.
func (c *Curve) locate(x decimal.Decimal) int {
	return sort.Search(len(c.points), func(i int) bool {
		return c.points[i].X.GreaterThan(x)
	}) - 1
}

// Interpolate evaluates the curve at x with the requested method.
func (c *Curve) Interpolate(x decimal.Decimal, method InterpolationMethod) (Point2D, error) {
	switch method {
	case Linear:
		return c.linearInterpolate(x)
	case Cubic:
		return c.cubicInterpolate(x)
	case Spline:
		return c.splineInterpolate(x)
	default:
		return Point2D{}, &opterr.InterpolationError{
			Kind:   opterr.NotEnoughPoints,
			Reason: method.String() + " not supported for curves",
		}
	}
}

func (c *Curve) linearInterpolate(x decimal.Decimal) (Point2D, error) {
	if len(c.points) < 2 {
		return Point2D{}, &opterr.InterpolationError{Kind: opterr.NotEnoughPoints, Reason: "linear needs two points"}
	}
	if !c.inRange(x) {
		return Point2D{}, &opterr.InterpolationError{Kind: opterr.OutOfRange, Reason: "x outside curve range"}
	}
	i := c.locate(x)
	if i >= 0 && c.points[i].X.Equal(x) {
		return c.points[i], nil
	}
	p0, p1 := c.points[i], c.points[i+1]
	t := x.Sub(p0.X).Div(p1.X.Sub(p0.X))
	y := p0.Y.Add(p1.Y.Sub(p0.Y).Mul(t))
	return Point2D{X: x, Y: y}, nil
}

// cubicInterpolate is Catmull-Rom over the four points around the
// segment, clamped at the ends.
func (c *Curve) cubicInterpolate(x decimal.Decimal) (Point2D, error) {
	if len(c.points) < 2 {
		return Point2D{}, &opterr.InterpolationError{Kind: opterr.NotEnoughPoints, Reason: "cubic needs two points"}
	}
	if !c.inRange(x) {
		return Point2D{}, &opterr.InterpolationError{Kind: opterr.OutOfRange, Reason: "x outside curve range"}
	}
	if len(c.points) < 4 {
		return c.linearInterpolate(x)
	}
	i := c.locate(x)
	if i >= 0 && c.points[i].X.Equal(x) {
		return c.points[i], nil
	}
	i0, i1, i2, i3 := i-1, i, i+1, i+2
	if i0 < 0 {
		i0 = 0
	}
	if i3 > len(c.points)-1 {
		i3 = len(c.points) - 1
	}
	p0, p1, p2, p3 := c.points[i0], c.points[i1], c.points[i2], c.points[i3]

	xf := x.InexactFloat64()
	x1, x2 := p1.X.InexactFloat64(), p2.X.InexactFloat64()
	t := (xf - x1) / (x2 - x1)

	// Finite-difference tangents keep the spline exact on low-degree
	// polynomials even with uneven spacing.
	y0, y1, y2, y3 := p0.Y.InexactFloat64(), p1.Y.InexactFloat64(), p2.Y.InexactFloat64(), p3.Y.InexactFloat64()
	x0, x3 := p0.X.InexactFloat64(), p3.X.InexactFloat64()
	m1 := tangent(x0, x1, x2, y0, y1, y2) * (x2 - x1)
	m2 := tangent(x1, x2, x3, y1, y2, y3) * (x2 - x1)

	t2 := t * t
	t3 := t2 * t
	h00 := 2*t3 - 3*t2 + 1
	h10 := t3 - 2*t2 + t
	h01 := -2*t3 + 3*t2
	h11 := t3 - t2
	y := h00*y1 + h10*m1 + h01*y2 + h11*m2
	return Point2D{X: x, Y: decimal.NewFromFloat(y)}, nil
}

// tangent is the three-point slope estimate at the middle point.
func tangent(xa, xb, xc, ya, yb, yc float64) float64 {
	if xa == xb {
		return (yc - yb) / (xc - xb)
	}
	if xb == xc {
		return (yb - ya) / (xb - xa)
	}
	// Weighted central difference exact on quadratics.
	hL := xb - xa
	hR := xc - xb
	return (yc*hL*hL + yb*(hR*hR-hL*hL) - ya*hR*hR) / (hL * hR * (hL + hR))
}

// splineInterpolate is a natural cubic spline; second derivatives are
// solved fresh on each call.
func (c *Curve) splineInterpolate(x decimal.Decimal) (Point2D, error) {
	n := len(c.points)
	if n < 3 {
		return Point2D{}, &opterr.InterpolationError{Kind: opterr.NotEnoughPoints, Reason: "spline needs three points"}
	}
	if !c.inRange(x) {
		return Point2D{}, &opterr.InterpolationError{Kind: opterr.OutOfRange, Reason: "x outside curve range"}
	}

	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, p := range c.points {
		xs[i] = p.X.InexactFloat64()
		ys[i] = p.Y.InexactFloat64()
	}
	m := splineSecondDerivatives(xs, ys)

	xf := x.InexactFloat64()
	i := c.locate(x)
	if i >= 0 && c.points[i].X.Equal(x) {
		return c.points[i], nil
	}
	if i == n-1 {
		i = n - 2
	}
	h := xs[i+1] - xs[i]
	a := (xs[i+1] - xf) / h
	b := (xf - xs[i]) / h
	y := a*ys[i] + b*ys[i+1] + ((a*a*a-a)*m[i]+(b*b*b-b)*m[i+1])*h*h/6
	return Point2D{X: x, Y: decimal.NewFromFloat(y)}, nil
}

// splineSecondDerivatives solves the natural spline tridiagonal
// system by the Thomas algorithm.
func splineSecondDerivatives(xs, ys []float64) []float64 {
	n := len(xs)
	m := make([]float64, n)
	if n < 3 {
		return m
	}
	sub := make([]float64, n)
	diag := make([]float64, n)
	sup := make([]float64, n)
	rhs := make([]float64, n)
	diag[0], diag[n-1] = 1, 1
	for i := 1; i < n-1; i++ {
		hPrev := xs[i] - xs[i-1]
		hNext := xs[i+1] - xs[i]
		sub[i] = hPrev
		diag[i] = 2 * (hPrev + hNext)
		sup[i] = hNext
		rhs[i] = 6 * ((ys[i+1]-ys[i])/hNext - (ys[i]-ys[i-1])/hPrev)
	}
	for i := 1; i < n; i++ {
		if diag[i-1] == 0 {
			continue
		}
		w := sub[i] / diag[i-1]
		diag[i] -= w * sup[i-1]
		rhs[i] -= w * rhs[i-1]
	}
	m[n-1] = rhs[n-1] / diag[n-1]
	for i := n - 2; i >= 0; i-- {
		m[i] = (rhs[i] - sup[i]*m[i+1]) / diag[i]
	}
	return m
}
