package geometrics

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/stratlab/optstrat/opterr"
)

// Surface is an ordered set of 3D points, unique lexicographically by
// (X, Y).
type Surface struct {
	points []Point3D
	xMin   decimal.Decimal
	xMax   decimal.Decimal
	yMin   decimal.Decimal
	yMax   decimal.Decimal
}

func NewSurface(points []Point3D) *Surface {
	s := &Surface{}
	s.reset(points)
	return s
}

func (s *Surface) reset(points []Point3D) {
	sorted := make([]Point3D, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })
	unique := sorted[:0]
	for _, p := range sorted {
		if len(unique) > 0 {
			last := unique[len(unique)-1]
			if last.X.Equal(p.X) && last.Y.Equal(p.Y) {
				unique[len(unique)-1] = p
				continue
			}
		}
		unique = append(unique, p)
	}
	s.points = unique
	if len(unique) == 0 {
		s.xMin, s.xMax, s.yMin, s.yMax = decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
		return
	}
	s.xMin, s.xMax = unique[0].X, unique[0].X
	s.yMin, s.yMax = unique[0].Y, unique[0].Y
	for _, p := range unique[1:] {
		if p.X.LessThan(s.xMin) {
			s.xMin = p.X
		}
		if p.X.GreaterThan(s.xMax) {
			s.xMax = p.X
		}
		if p.Y.LessThan(s.yMin) {
			s.yMin = p.Y
		}
		if p.Y.GreaterThan(s.yMax) {
			s.yMax = p.Y
		}
	}
}

func (s *Surface) Points() []Point3D { return s.points }

func (s *Surface) Len() int { return len(s.points) }

func (s *Surface) XRange() (decimal.Decimal, decimal.Decimal) { return s.xMin, s.xMax }
func (s *Surface) YRange() (decimal.Decimal, decimal.Decimal) { return s.yMin, s.yMax }

func (s *Surface) inRange(x, y decimal.Decimal) bool {
	return x.GreaterThanOrEqual(s.xMin) && x.LessThanOrEqual(s.xMax) &&
		y.GreaterThanOrEqual(s.yMin) && y.LessThanOrEqual(s.yMax)
}

// Interpolate evaluates the surface at (x, y). Bilinear is the only
// grid scheme; the point methods answer nearest-neighbor blends when
// the stored points do not form a full grid cell.
func (s *Surface) Interpolate(x, y decimal.Decimal, method InterpolationMethod) (Point3D, error) {
	switch method {
	case Bilinear, Linear:
		return s.bilinearInterpolate(x, y)
	default:
		return Point3D{}, &opterr.InterpolationError{
			Kind:   opterr.NotEnoughPoints,
			Reason: method.String() + " not supported for surfaces",
		}
	}
}

func (s *Surface) bilinearInterpolate(x, y decimal.Decimal) (Point3D, error) {
	if len(s.points) < 4 {
		return Point3D{}, &opterr.InterpolationError{Kind: opterr.NotEnoughPoints, Reason: "bilinear needs four points"}
	}
	if !s.inRange(x, y) {
		return Point3D{}, &opterr.InterpolationError{Kind: opterr.OutOfRange, Reason: "(x,y) outside surface range"}
	}

	// Exact hit short-circuits.
	for _, p := range s.points {
		if p.X.Equal(x) && p.Y.Equal(y) {
			return p, nil
		}
	}

	x0, x1, okX := s.bracket(s.xAxis(), x)
	y0, y1, okY := s.bracket(s.yAxis(), y)
	if !okX || !okY {
		return Point3D{}, &opterr.InterpolationError{Kind: opterr.OutOfRange, Reason: "query outside grid"}
	}

	q00, ok00 := s.lookup(x0, y0)
	q10, ok10 := s.lookup(x1, y0)
	q01, ok01 := s.lookup(x0, y1)
	q11, ok11 := s.lookup(x1, y1)
	if !ok00 || !ok10 || !ok01 || !ok11 {
		return Point3D{}, &opterr.InterpolationError{Kind: opterr.NotEnoughPoints, Reason: "grid cell incomplete"}
	}

	xf, yf := x.InexactFloat64(), y.InexactFloat64()
	x0f, x1f := x0.InexactFloat64(), x1.InexactFloat64()
	y0f, y1f := y0.InexactFloat64(), y1.InexactFloat64()
	tx, ty := 0.0, 0.0
	if x1f != x0f {
		tx = (xf - x0f) / (x1f - x0f)
	}
	if y1f != y0f {
		ty = (yf - y0f) / (y1f - y0f)
	}
	z := q00*(1-tx)*(1-ty) + q10*tx*(1-ty) + q01*(1-tx)*ty + q11*tx*ty
	return Point3D{X: x, Y: y, Z: decimal.NewFromFloat(z)}, nil
}

// xAxis and yAxis return the sorted unique coordinates.
func (s *Surface) xAxis() []decimal.Decimal {
	return uniqueSorted(s.points, func(p Point3D) decimal.Decimal { return p.X })
}

func (s *Surface) yAxis() []decimal.Decimal {
	return uniqueSorted(s.points, func(p Point3D) decimal.Decimal { return p.Y })
}

func uniqueSorted(points []Point3D, get func(Point3D) decimal.Decimal) []decimal.Decimal {
	vals := make([]decimal.Decimal, 0, len(points))
	for _, p := range points {
		vals = append(vals, get(p))
	}
	sort.Slice(vals, func(i, j int) bool { return vals[i].LessThan(vals[j]) })
	out := vals[:0]
	for _, v := range vals {
		if len(out) == 0 || !out[len(out)-1].Equal(v) {
			out = append(out, v)
		}
	}
	return out
}

// bracket finds the enclosing pair on one axis; equal hits collapse
// to a zero-width bracket.
func (s *Surface) bracket(axis []decimal.Decimal, v decimal.Decimal) (decimal.Decimal, decimal.Decimal, bool) {
	for i := 0; i < len(axis); i++ {
		if axis[i].Equal(v) {
			return axis[i], axis[i], true
		}
		if axis[i].GreaterThan(v) {
			if i == 0 {
				return decimal.Zero, decimal.Zero, false
			}
			return axis[i-1], axis[i], true
		}
	}
	return decimal.Zero, decimal.Zero, false
}

func (s *Surface) lookup(x, y decimal.Decimal) (float64, bool) {
	for _, p := range s.points {
		if p.X.Equal(x) && p.Y.Equal(y) {
			return p.Z.InexactFloat64(), true
		}
	}
	return 0, false
}
