package models

import "honnef.co/go/curve"

// NodeKind identifies the variant of a scene-tree node.
type NodeKind string

const (
	KindCatalog NodeKind = "catalog"
	KindLayer   NodeKind = "layer"
	KindPoint   NodeKind = "point"
	KindPath    NodeKind = "path"
)

// Node is one entry of the project tree. The set of implementations is closed:
// Catalog, Layer, PointFeature and PathFeature.
type Node interface {
	Kind() NodeKind
	node()
}

// Project is the ordered forest handed over by the editor.
type Project struct {
	Nodes []Node
}

// Catalog is a non-drawing entry such as the symbol dictionary the editor
// prepends to projects that use symbols.
type Catalog struct {
	Name string
}

// Layer becomes one scrap in the exported drawing.
type Layer struct {
	Name     string
	Children []Node
	Settings ScrapSettings
}

// PointFeature is a placed point symbol.
type PointFeature struct {
	// Matrix is the placement transform of the symbol instance.
	Matrix    curve.Affine
	SymbolRef string
	Settings  PointSettings
}

// PathFeature is a vector path carrying either line or area settings.
type PathFeature struct {
	Segments []Segment
	Closed   bool
	Settings PathSettings
}

func (Catalog) Kind() NodeKind      { return KindCatalog }
func (Layer) Kind() NodeKind        { return KindLayer }
func (PointFeature) Kind() NodeKind { return KindPoint }
func (PathFeature) Kind() NodeKind  { return KindPath }

func (Catalog) node()      {}
func (Layer) node()        {}
func (PointFeature) node() {}
func (PathFeature) node()  {}

// Position returns the canvas point the symbol is anchored at.
func (p PointFeature) Position() curve.Point {
	return curve.Pt(0, 0).Transform(p.Matrix)
}

// NewPointFeature places a symbol at (x, y) with an otherwise identity matrix.
func NewPointFeature(x, y float64, settings PointSettings) PointFeature {
	m := curve.Identity
	m.N4, m.N5 = x, y
	return PointFeature{Matrix: m, Settings: settings}
}

// LayerCount returns the number of top-level layers in the project.
func (p Project) LayerCount() int {
	n := 0
	for _, node := range p.Nodes {
		if node.Kind() == KindLayer {
			n++
		}
	}
	return n
}
