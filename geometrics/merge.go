package geometrics

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/stratlab/optstrat/opterr"
)

// zeroGuard is the divisor magnitude below which Divide merges fail.
const zeroGuard = 1e-12

// MergeCurves evaluates every input at the union of x-coordinates via
// cubic interpolation and combines the values with op. X values
// outside an input's range are dropped from the union.
func MergeCurves(op MergeOperation, curves ...*Curve) (*Curve, error) {
	if len(curves) == 0 {
		return nil, &opterr.CurveError{Op: "merge", Reason: "no curves"}
	}
	if len(curves) == 1 {
		return NewCurve(curves[0].Points()), nil
	}

	union := map[string]decimal.Decimal{}
	for _, c := range curves {
		for _, p := range c.Points() {
			union[p.X.String()] = p.X
		}
	}
	xs := make([]decimal.Decimal, 0, len(union))
	for _, x := range union {
		keep := true
		for _, c := range curves {
			if !c.inRange(x) {
				keep = false
				break
			}
		}
		if keep {
			xs = append(xs, x)
		}
	}
	if len(xs) < 2 {
		return nil, &opterr.CurveError{Op: "merge", Reason: "ranges do not overlap"}
	}
	sort.Slice(xs, func(i, j int) bool { return xs[i].LessThan(xs[j]) })

	points := make([]Point2D, 0, len(xs))
	for _, x := range xs {
		var acc decimal.Decimal
		for i, c := range curves {
			p, err := c.Interpolate(x, Cubic)
			if err != nil {
				return nil, err
			}
			if i == 0 {
				acc = p.Y
				continue
			}
			combined, err := combine(op, acc, p.Y)
			if err != nil {
				return nil, err
			}
			acc = combined
		}
		points = append(points, Point2D{X: x, Y: acc})
	}
	return NewCurve(points), nil
}

// MergeSurfaces does the same over the union of (x, y) pairs with
// bilinear interpolation.
func MergeSurfaces(op MergeOperation, surfaces ...*Surface) (*Surface, error) {
	if len(surfaces) == 0 {
		return nil, &opterr.SurfaceError{Op: "merge", Reason: "no surfaces"}
	}
	if len(surfaces) == 1 {
		return NewSurface(surfaces[0].Points()), nil
	}

	type key struct{ x, y string }
	union := map[key][2]decimal.Decimal{}
	for _, s := range surfaces {
		for _, p := range s.Points() {
			union[key{p.X.String(), p.Y.String()}] = [2]decimal.Decimal{p.X, p.Y}
		}
	}

	points := make([]Point3D, 0, len(union))
	for _, xy := range union {
		x, y := xy[0], xy[1]
		inAll := true
		for _, s := range surfaces {
			if !s.inRange(x, y) {
				inAll = false
				break
			}
		}
		if !inAll {
			continue
		}
		var acc decimal.Decimal
		valid := true
		for i, s := range surfaces {
			p, err := s.Interpolate(x, y, Bilinear)
			if err != nil {
				// Incomplete grid cells are skipped, not fatal.
				if ie, ok := err.(*opterr.InterpolationError); ok && ie.Kind == opterr.NotEnoughPoints {
					valid = false
					break
				}
				return nil, err
			}
			if i == 0 {
				acc = p.Z
				continue
			}
			combined, err := combine(op, acc, p.Z)
			if err != nil {
				return nil, err
			}
			acc = combined
		}
		if valid {
			points = append(points, Point3D{X: x, Y: y, Z: acc})
		}
	}
	if len(points) < 2 {
		return nil, &opterr.SurfaceError{Op: "merge", Reason: "ranges do not overlap"}
	}
	return NewSurface(points), nil
}

func combine(op MergeOperation, a, b decimal.Decimal) (decimal.Decimal, error) {
	switch op {
	case MergeAdd:
		return a.Add(b), nil
	case MergeSubtract:
		return a.Sub(b), nil
	case MergeMultiply:
		return a.Mul(b), nil
	case MergeDivide:
		if b.Abs().LessThan(decimal.NewFromFloat(zeroGuard)) {
			return decimal.Zero, &opterr.InterpolationError{Kind: opterr.DivisionByZero, Reason: "zero divisor in merge"}
		}
		return a.Div(b), nil
	case MergeMax:
		if a.GreaterThanOrEqual(b) {
			return a, nil
		}
		return b, nil
	case MergeMin:
		if a.LessThanOrEqual(b) {
			return a, nil
		}
		return b, nil
	}
	return decimal.Zero, &opterr.CurveError{Op: "merge", Reason: "unknown operation"}
}
