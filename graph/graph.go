// Package graph exposes plottable data extracted from curves,
// surfaces and walks. The package only assembles data; rendering is
// the consumer's concern.
package graph

import (
	"github.com/stratlab/optstrat/geometrics"
	"github.com/stratlab/optstrat/opterr"
)

// DataKind tags the shape of a GraphData payload.
type DataKind int

const (
	SeriesKind DataKind = iota
	MultiSeriesKind
	Series3DKind
)

// Series is one named 2D trace.
type Series struct {
	Name string
	X    []float64
	Y    []float64
}

// Series3D is one named 3D trace.
type Series3D struct {
	Name string
	X    []float64
	Y    []float64
	Z    []float64
}

// GraphData is the tagged union a Graph produces. Exactly the fields
// matching Kind are populated.
type GraphData struct {
	Kind     DataKind
	Series   Series
	Multi    []Series
	Series3D Series3D
}

// GraphConfig carries presentation hints for whatever renders the
// data.
type GraphConfig struct {
	Title      string
	Width      int
	Height     int
	XLabel     string
	YLabel     string
	ZLabel     string
	LineWidth  float64
	ShowLegend bool
	Legend     []string
}

// DefaultGraphConfig fills the dimensions most plotters expect.
func DefaultGraphConfig(title string) GraphConfig {
	return GraphConfig{Title: title, Width: 1280, Height: 720, LineWidth: 1.5}
}

// Graph is implemented by anything that can hand its contents to a
// plotter.
type Graph interface {
	GraphData() (GraphData, error)
	GraphConfig() GraphConfig
}

// SeriesFromCurve flattens a curve into a trace.
func SeriesFromCurve(name string, c *geometrics.Curve) (Series, error) {
	if c == nil || c.Len() == 0 {
		return Series{}, &opterr.GraphError{Reason: "empty curve"}
	}
	s := Series{Name: name, X: make([]float64, c.Len()), Y: make([]float64, c.Len())}
	for i, p := range c.Points() {
		s.X[i] = p.X.InexactFloat64()
		s.Y[i] = p.Y.InexactFloat64()
	}
	return s, nil
}

// SeriesFromSurface flattens a surface into a 3D trace in lexicographic
// point order.
func SeriesFromSurface(name string, s *geometrics.Surface) (Series3D, error) {
	if s == nil || s.Len() == 0 {
		return Series3D{}, &opterr.GraphError{Reason: "empty surface"}
	}
	out := Series3D{
		Name: name,
		X:    make([]float64, s.Len()),
		Y:    make([]float64, s.Len()),
		Z:    make([]float64, s.Len()),
	}
	for i, p := range s.Points() {
		out.X[i] = p.X.InexactFloat64()
		out.Y[i] = p.Y.InexactFloat64()
		out.Z[i] = p.Z.InexactFloat64()
	}
	return out, nil
}

// SeriesFromValues builds a trace over an implicit 0..n-1 axis.
func SeriesFromValues(name string, values []float64) (Series, error) {
	if len(values) == 0 {
		return Series{}, &opterr.GraphError{Reason: "empty value series"}
	}
	s := Series{Name: name, X: make([]float64, len(values)), Y: values}
	for i := range values {
		s.X[i] = float64(i)
	}
	return s, nil
}

// CurveGraph adapts one curve to the Graph interface.
type CurveGraph struct {
	Name   string
	Curve  *geometrics.Curve
	Config GraphConfig
}

func NewCurveGraph(name string, c *geometrics.Curve) *CurveGraph {
	return &CurveGraph{Name: name, Curve: c, Config: DefaultGraphConfig(name)}
}

func (g *CurveGraph) GraphData() (GraphData, error) {
	s, err := SeriesFromCurve(g.Name, g.Curve)
	if err != nil {
		return GraphData{}, err
	}
	return GraphData{Kind: SeriesKind, Series: s}, nil
}

func (g *CurveGraph) GraphConfig() GraphConfig { return g.Config }

// MultiCurveGraph overlays several named curves in one chart.
type MultiCurveGraph struct {
	Names  []string
	Curves []*geometrics.Curve
	Config GraphConfig
}

func NewMultiCurveGraph(title string) *MultiCurveGraph {
	cfg := DefaultGraphConfig(title)
	cfg.ShowLegend = true
	return &MultiCurveGraph{Config: cfg}
}

func (g *MultiCurveGraph) Add(name string, c *geometrics.Curve) *MultiCurveGraph {
	g.Names = append(g.Names, name)
	g.Curves = append(g.Curves, c)
	g.Config.Legend = append(g.Config.Legend, name)
	return g
}

func (g *MultiCurveGraph) GraphData() (GraphData, error) {
	if len(g.Curves) == 0 {
		return GraphData{}, &opterr.GraphError{Reason: "no curves added"}
	}
	data := GraphData{Kind: MultiSeriesKind}
	for i, c := range g.Curves {
		s, err := SeriesFromCurve(g.Names[i], c)
		if err != nil {
			return GraphData{}, err
		}
		data.Multi = append(data.Multi, s)
	}
	return data, nil
}

func (g *MultiCurveGraph) GraphConfig() GraphConfig { return g.Config }

// SurfaceGraph adapts one surface to the Graph interface.
type SurfaceGraph struct {
	Name    string
	Surface *geometrics.Surface
	Config  GraphConfig
}

func NewSurfaceGraph(name string, s *geometrics.Surface) *SurfaceGraph {
	return &SurfaceGraph{Name: name, Surface: s, Config: DefaultGraphConfig(name)}
}

func (g *SurfaceGraph) GraphData() (GraphData, error) {
	s, err := SeriesFromSurface(g.Name, g.Surface)
	if err != nil {
		return GraphData{}, err
	}
	return GraphData{Kind: Series3DKind, Series3D: s}, nil
}

func (g *SurfaceGraph) GraphConfig() GraphConfig { return g.Config }
