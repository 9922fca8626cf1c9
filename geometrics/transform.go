package geometrics

import (
	"math"

	"github.com/shopspring/decimal"
	"github.com/stratlab/optstrat/opterr"
)

// Curve transformations. Each returns a new curve; receivers are
// never mutated.

func (c *Curve) Translate(dx, dy decimal.Decimal) *Curve {
	points := make([]Point2D, 0, len(c.points))
	for _, p := range c.points {
		points = append(points, Point2D{X: p.X.Add(dx), Y: p.Y.Add(dy)})
	}
	return NewCurve(points)
}

func (c *Curve) Scale(sx, sy decimal.Decimal) *Curve {
	points := make([]Point2D, 0, len(c.points))
	for _, p := range c.points {
		points = append(points, Point2D{X: p.X.Mul(sx), Y: p.Y.Mul(sy)})
	}
	return NewCurve(points)
}

// Rotate turns the points by theta radians about the origin.
func (c *Curve) Rotate(theta float64) *Curve {
	cos, sin := math.Cos(theta), math.Sin(theta)
	points := make([]Point2D, 0, len(c.points))
	for _, p := range c.points {
		x, y := p.X.InexactFloat64(), p.Y.InexactFloat64()
		points = append(points, Point2DFromFloats(x*cos-y*sin, x*sin+y*cos))
	}
	return NewCurve(points)
}

// ReflectX mirrors about the x-axis, ReflectY about the y-axis.
func (c *Curve) ReflectX() *Curve {
	points := make([]Point2D, 0, len(c.points))
	for _, p := range c.points {
		points = append(points, Point2D{X: p.X, Y: p.Y.Neg()})
	}
	return NewCurve(points)
}

func (c *Curve) ReflectY() *Curve {
	points := make([]Point2D, 0, len(c.points))
	for _, p := range c.points {
		points = append(points, Point2D{X: p.X.Neg(), Y: p.Y})
	}
	return NewCurve(points)
}

// Warp applies f to every point.
func (c *Curve) Warp(f func(Point2D) Point2D) *Curve {
	points := make([]Point2D, 0, len(c.points))
	for _, p := range c.points {
		points = append(points, f(p))
	}
	return NewCurve(points)
}

// DerivativeAt is the first derivative dy/dx at x, from the cubic
// interpolant by central difference.
func (c *Curve) DerivativeAt(x decimal.Decimal) (decimal.Decimal, error) {
	if !c.inRange(x) {
		return decimal.Zero, &opterr.InterpolationError{Kind: opterr.OutOfRange, Reason: "x outside curve range"}
	}
	span := c.xMax.Sub(c.xMin).InexactFloat64()
	h := span * 1e-5
	if h == 0 {
		return decimal.Zero, &opterr.CurveError{Op: "derivative", Reason: "degenerate range"}
	}
	xf := x.InexactFloat64()
	lo := math.Max(xf-h, c.xMin.InexactFloat64())
	hi := math.Min(xf+h, c.xMax.InexactFloat64())
	pLo, err := c.Interpolate(decimal.NewFromFloat(lo), Cubic)
	if err != nil {
		return decimal.Zero, err
	}
	pHi, err := c.Interpolate(decimal.NewFromFloat(hi), Cubic)
	if err != nil {
		return decimal.Zero, err
	}
	d := pHi.Y.Sub(pLo.Y).InexactFloat64() / (hi - lo)
	return decimal.NewFromFloat(d), nil
}

// Extrema returns the points with minimal and maximal y.
func (c *Curve) Extrema() (min Point2D, max Point2D, err error) {
	if len(c.points) == 0 {
		return Point2D{}, Point2D{}, &opterr.CurveError{Op: "extrema", Reason: "empty curve"}
	}
	min, max = c.points[0], c.points[0]
	for _, p := range c.points[1:] {
		if p.Y.LessThan(min.Y) {
			min = p
		}
		if p.Y.GreaterThan(max.Y) {
			max = p
		}
	}
	return min, max, nil
}

// MeasureUnder is the trapezoidal area between the curve and the base
// line y = base.
func (c *Curve) MeasureUnder(base decimal.Decimal) (decimal.Decimal, error) {
	if len(c.points) < 2 {
		return decimal.Zero, &opterr.CurveError{Op: "measure", Reason: "need at least two points"}
	}
	area := decimal.Zero
	two := decimal.NewFromInt(2)
	for i := 1; i < len(c.points); i++ {
		p0, p1 := c.points[i-1], c.points[i]
		dx := p1.X.Sub(p0.X)
		avg := p0.Y.Sub(base).Add(p1.Y.Sub(base)).Div(two)
		area = area.Add(avg.Mul(dx))
	}
	return area, nil
}

// Intersect finds crossings of two curves by sign-change detection on
// the interpolated difference over the overlapping range.
func (c *Curve) Intersect(o *Curve) ([]Point2D, error) {
	lo := decimal.Max(c.xMin, o.xMin)
	hi := decimal.Min(c.xMax, o.xMax)
	if lo.GreaterThanOrEqual(hi) {
		return nil, nil
	}
	const samples = 512
	loF, hiF := lo.InexactFloat64(), hi.InexactFloat64()
	step := (hiF - loF) / samples

	diffAt := func(x float64) (float64, error) {
		xd := decimal.NewFromFloat(x)
		a, err := c.Interpolate(xd, Cubic)
		if err != nil {
			return 0, err
		}
		b, err := o.Interpolate(xd, Cubic)
		if err != nil {
			return 0, err
		}
		return a.Y.Sub(b.Y).InexactFloat64(), nil
	}

	var crossings []Point2D
	prev, err := diffAt(loF)
	if err != nil {
		return nil, err
	}
	for i := 1; i <= samples; i++ {
		x := loF + float64(i)*step
		if i == samples {
			x = hiF
		}
		cur, err := diffAt(x)
		if err != nil {
			return nil, err
		}
		if prev == 0 || prev*cur < 0 {
			// Bisect the sign change.
			a, b := x-step, x
			for iter := 0; iter < 50; iter++ {
				mid := (a + b) / 2
				v, err := diffAt(mid)
				if err != nil {
					return nil, err
				}
				if v == 0 || (b-a)/2 < 1e-10 {
					a, b = mid, mid
					break
				}
				if prev*v < 0 {
					b = mid
				} else {
					a = mid
				}
			}
			root := decimal.NewFromFloat((a + b) / 2)
			p, err := c.Interpolate(root, Cubic)
			if err == nil {
				crossings = append(crossings, p)
			}
		}
		prev = cur
	}
	return crossings, nil
}

// Surface transformations.

func (s *Surface) Translate(dx, dy, dz decimal.Decimal) *Surface {
	points := make([]Point3D, 0, len(s.points))
	for _, p := range s.points {
		points = append(points, Point3D{X: p.X.Add(dx), Y: p.Y.Add(dy), Z: p.Z.Add(dz)})
	}
	return NewSurface(points)
}

func (s *Surface) Scale(sx, sy, sz decimal.Decimal) *Surface {
	points := make([]Point3D, 0, len(s.points))
	for _, p := range s.points {
		points = append(points, Point3D{X: p.X.Mul(sx), Y: p.Y.Mul(sy), Z: p.Z.Mul(sz)})
	}
	return NewSurface(points)
}

// RotateZ turns about the z-axis by theta radians.
func (s *Surface) RotateZ(theta float64) *Surface {
	cos, sin := math.Cos(theta), math.Sin(theta)
	points := make([]Point3D, 0, len(s.points))
	for _, p := range s.points {
		x, y := p.X.InexactFloat64(), p.Y.InexactFloat64()
		points = append(points, Point3D{
			X: decimal.NewFromFloat(x*cos - y*sin),
			Y: decimal.NewFromFloat(x*sin + y*cos),
			Z: p.Z,
		})
	}
	return NewSurface(points)
}

func (s *Surface) ReflectZ() *Surface {
	points := make([]Point3D, 0, len(s.points))
	for _, p := range s.points {
		points = append(points, Point3D{X: p.X, Y: p.Y, Z: p.Z.Neg()})
	}
	return NewSurface(points)
}

func (s *Surface) Warp(f func(Point3D) Point3D) *Surface {
	points := make([]Point3D, 0, len(s.points))
	for _, p := range s.points {
		points = append(points, f(p))
	}
	return NewSurface(points)
}

// Extrema returns the points with minimal and maximal z.
func (s *Surface) Extrema() (min Point3D, max Point3D, err error) {
	if len(s.points) == 0 {
		return Point3D{}, Point3D{}, &opterr.SurfaceError{Op: "extrema", Reason: "empty surface"}
	}
	min, max = s.points[0], s.points[0]
	for _, p := range s.points[1:] {
		if p.Z.LessThan(min.Z) {
			min = p
		}
		if p.Z.GreaterThan(max.Z) {
			max = p
		}
	}
	return min, max, nil
}

// MeasureUnder approximates the volume between the surface and the
// plane z = base by summing cell-average heights over the grid.
func (s *Surface) MeasureUnder(base decimal.Decimal) (decimal.Decimal, error) {
	xs := s.xAxis()
	ys := s.yAxis()
	if len(xs) < 2 || len(ys) < 2 {
		return decimal.Zero, &opterr.SurfaceError{Op: "measure", Reason: "need a grid of points"}
	}
	total := 0.0
	baseF := base.InexactFloat64()
	for i := 1; i < len(xs); i++ {
		for j := 1; j < len(ys); j++ {
			q00, ok1 := s.lookup(xs[i-1], ys[j-1])
			q10, ok2 := s.lookup(xs[i], ys[j-1])
			q01, ok3 := s.lookup(xs[i-1], ys[j])
			q11, ok4 := s.lookup(xs[i], ys[j])
			if !ok1 || !ok2 || !ok3 || !ok4 {
				continue
			}
			dx := xs[i].Sub(xs[i-1]).InexactFloat64()
			dy := ys[j].Sub(ys[j-1]).InexactFloat64()
			avg := (q00+q10+q01+q11)/4 - baseF
			total += avg * dx * dy
		}
	}
	return decimal.NewFromFloat(total), nil
}
