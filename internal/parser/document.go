package parser

import (
	"fmt"

	"gopkg.in/yaml.v3"
	"honnef.co/go/curve"

	"github.com/th2-export/backend/internal/models"
)

// Document is the canonical project encoding shared by the YAML and
// MessagePack decoders.
type Document struct {
	Nodes []NodeDoc `yaml:"nodes" msgpack:"nodes"`
}

// NodeDoc is one tree node. Kind is one of catalog, layer, point or path;
// only the fields relevant to that kind are read.
type NodeDoc struct {
	Kind     string    `yaml:"kind" msgpack:"kind"`
	Name     string    `yaml:"name,omitempty" msgpack:"name,omitempty"`
	Children []NodeDoc `yaml:"children,omitempty" msgpack:"children,omitempty"`

	// Points are placed by Matrix ([a, b, c, d, tx, ty]) or, more simply, At.
	Matrix []float64 `yaml:"matrix,omitempty" msgpack:"matrix,omitempty"`
	At     []float64 `yaml:"at,omitempty" msgpack:"at,omitempty"`
	Symbol string    `yaml:"symbol,omitempty" msgpack:"symbol,omitempty"`

	Segments []SegmentDoc `yaml:"segments,omitempty" msgpack:"segments,omitempty"`
	Closed   bool         `yaml:"closed,omitempty" msgpack:"closed,omitempty"`

	Scrap *models.ScrapSettings `yaml:"scrap,omitempty" msgpack:"scrap,omitempty"`
	Point *models.PointSettings `yaml:"point,omitempty" msgpack:"point,omitempty"`
	Line  *models.LineSettings  `yaml:"line,omitempty" msgpack:"line,omitempty"`
	Area  *models.AreaSettings  `yaml:"area,omitempty" msgpack:"area,omitempty"`
}

// SegmentDoc is a path vertex with optional handles relative to At.
type SegmentDoc struct {
	At  []float64 `yaml:"at" msgpack:"at"`
	In  []float64 `yaml:"in,omitempty" msgpack:"in,omitempty"`
	Out []float64 `yaml:"out,omitempty" msgpack:"out,omitempty"`
}

// UnmarshalYAML also accepts the short corner form [x, y].
func (s *SegmentDoc) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.SequenceNode {
		var xy []float64
		if err := value.Decode(&xy); err != nil {
			return err
		}
		*s = SegmentDoc{At: xy}
		return nil
	}
	type plain SegmentDoc
	return value.Decode((*plain)(s))
}

// ToProject validates the document and converts it to a project tree.
func (doc Document) ToProject() (models.Project, error) {
	nodes, err := convertNodes(doc.Nodes, "nodes")
	if err != nil {
		return models.Project{}, err
	}
	return models.Project{Nodes: nodes}, nil
}

func convertNodes(docs []NodeDoc, path string) ([]models.Node, error) {
	nodes := make([]models.Node, 0, len(docs))
	for i, nd := range docs {
		node, err := nd.toNode(fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func (nd NodeDoc) toNode(path string) (models.Node, error) {
	switch nd.Kind {
	case "catalog":
		return models.Catalog{Name: nd.Name}, nil

	case "layer":
		layer := models.Layer{Name: nd.Name}
		if nd.Scrap != nil {
			layer.Settings = *nd.Scrap
		}
		children, err := convertNodes(nd.Children, path+".children")
		if err != nil {
			return nil, err
		}
		layer.Children = children
		return layer, nil

	case "point":
		matrix, err := affineFromSlice(nd.Matrix)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if nd.At != nil {
			at, err := pair(nd.At, "at")
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			matrix.N4, matrix.N5 = at.X, at.Y
		}
		point := models.PointFeature{Matrix: matrix, SymbolRef: nd.Symbol}
		if nd.Point != nil {
			point.Settings = *nd.Point
		}
		return point, nil

	case "path":
		feature := models.PathFeature{Closed: nd.Closed}
		for i, sd := range nd.Segments {
			seg, err := sd.toSegment()
			if err != nil {
				return nil, fmt.Errorf("%s.segments[%d]: %w", path, i, err)
			}
			feature.Segments = append(feature.Segments, seg)
		}
		switch {
		case nd.Line != nil && nd.Area != nil:
			return nil, fmt.Errorf("%s: path sets both line and area settings", path)
		case nd.Line != nil:
			feature.Settings = *nd.Line
		case nd.Area != nil:
			feature.Settings = *nd.Area
		}
		return feature, nil

	default:
		return nil, fmt.Errorf("%s: unsupported node kind %q", path, nd.Kind)
	}
}

func (sd SegmentDoc) toSegment() (models.Segment, error) {
	at, err := pair(sd.At, "at")
	if err != nil {
		return models.Segment{}, err
	}
	seg := models.Segment{Point: curve.Point(at)}
	if sd.In != nil {
		if seg.HandleIn, err = pair(sd.In, "in"); err != nil {
			return models.Segment{}, err
		}
	}
	if sd.Out != nil {
		if seg.HandleOut, err = pair(sd.Out, "out"); err != nil {
			return models.Segment{}, err
		}
	}
	return seg, nil
}

func pair(v []float64, field string) (curve.Vec2, error) {
	if len(v) != 2 {
		return curve.Vec2{}, fmt.Errorf("%s needs 2 coordinates, got %d", field, len(v))
	}
	return curve.Vec(v[0], v[1]), nil
}
