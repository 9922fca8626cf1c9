// Package geometrics provides ordered point sets in two and three
// dimensions, their construction, interpolation, arithmetic merges
// and transformations. Curves and surfaces carry chain metrics such
// as IV smiles and greek surfaces.
package geometrics

import "github.com/shopspring/decimal"

// Point2D is a decimal coordinate pair ordered by X.
type Point2D struct {
	X decimal.Decimal
	Y decimal.Decimal
}

func NewPoint2D(x, y decimal.Decimal) Point2D { return Point2D{X: x, Y: y} }

func Point2DFromFloats(x, y float64) Point2D {
	return Point2D{X: decimal.NewFromFloat(x), Y: decimal.NewFromFloat(y)}
}

func (p Point2D) Less(o Point2D) bool { return p.X.LessThan(o.X) }

// Point3D is a decimal coordinate triple ordered lexicographically by
// (X, Y).
type Point3D struct {
	X decimal.Decimal
	Y decimal.Decimal
	Z decimal.Decimal
}

func NewPoint3D(x, y, z decimal.Decimal) Point3D { return Point3D{X: x, Y: y, Z: z} }

func Point3DFromFloats(x, y, z float64) Point3D {
	return Point3D{X: decimal.NewFromFloat(x), Y: decimal.NewFromFloat(y), Z: decimal.NewFromFloat(z)}
}

func (p Point3D) Less(o Point3D) bool {
	if !p.X.Equal(o.X) {
		return p.X.LessThan(o.X)
	}
	return p.Y.LessThan(o.Y)
}

// InterpolationMethod selects the evaluation scheme for queries
// between stored points.
type InterpolationMethod int

const (
	Linear InterpolationMethod = iota
	Cubic
	Spline
	Bilinear
)

func (m InterpolationMethod) String() string {
	switch m {
	case Linear:
		return "linear"
	case Cubic:
		return "cubic"
	case Spline:
		return "spline"
	case Bilinear:
		return "bilinear"
	}
	return "unknown"
}

// MergeOperation combines interpolated values during curve and
// surface arithmetic.
type MergeOperation int

const (
	MergeAdd MergeOperation = iota
	MergeSubtract
	MergeMultiply
	MergeDivide
	MergeMax
	MergeMin
)

func (m MergeOperation) String() string {
	switch m {
	case MergeAdd:
		return "add"
	case MergeSubtract:
		return "subtract"
	case MergeMultiply:
		return "multiply"
	case MergeDivide:
		return "divide"
	case MergeMax:
		return "max"
	case MergeMin:
		return "min"
	}
	return "unknown"
}
