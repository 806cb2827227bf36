package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/th2-export/backend/internal/models"
)

const (
	encodingLine = "encoding utf-8"
	indent1      = "\t"
	indent2      = "\t\t"
)

// Stats counts what an export emitted.
type Stats struct {
	Layers       int `json:"layers"`
	Points       int `json:"points"`
	Lines        int `json:"lines"`
	Areas        int `json:"areas"`
	GeneratedIDs int `json:"generatedIds"`
}

// Exporter converts project trees to th2 lines. It keeps no state between
// calls and is safe for concurrent use when its IDGenerator is.
type Exporter struct {
	ids IDGenerator
}

// NewExporter creates an Exporter. A nil generator draws random UUIDs.
func NewExporter(ids IDGenerator) *Exporter {
	if ids == nil {
		ids = UUIDGenerator{}
	}
	return &Exporter{ids: ids}
}

// ProcessProject exports p with random border ids.
func ProcessProject(p models.Project) ([]string, error) {
	return NewExporter(nil).ProcessProject(p)
}

// ProcessProject returns the complete line sequence for p. On error no lines
// are returned.
func (e *Exporter) ProcessProject(p models.Project) ([]string, error) {
	lines, _, err := e.Export(p)
	return lines, err
}

// Export is ProcessProject that also reports what was emitted.
func (e *Exporter) Export(p models.Project) ([]string, Stats, error) {
	w := &writer{ids: e.ids, lines: []string{encodingLine}}
	for i, node := range p.Nodes {
		path := fmt.Sprintf("nodes[%d]", i)
		if node == nil {
			return nil, Stats{}, invalidf(path, "nil node")
		}
		layer, ok := node.(models.Layer)
		if !ok {
			continue
		}
		if err := w.scrap(path, layer); err != nil {
			return nil, Stats{}, err
		}
	}
	return w.lines, w.stats, nil
}

// Render joins lines into file content with a trailing newline.
func Render(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

type writer struct {
	ids   IDGenerator
	lines []string
	stats Stats
}

func (w *writer) emit(line string) {
	w.lines = append(w.lines, line)
}

func (w *writer) scrap(path string, layer models.Layer) error {
	if layer.Name == "" {
		return invalidf(path, "layer has no name")
	}

	w.emit(scrapHeader(layer.Name, layer.Settings))
	for j, child := range layer.Children {
		childPath := fmt.Sprintf("%s.children[%d]", path, j)
		if err := w.feature(childPath, child); err != nil {
			return err
		}
	}
	w.emit("endscrap")
	w.stats.Layers++
	return nil
}

func (w *writer) feature(path string, node models.Node) error {
	switch n := node.(type) {
	case models.PointFeature:
		return w.point(path, n)
	case models.PathFeature:
		switch s := n.Settings.(type) {
		case models.LineSettings:
			return w.line(path, n, s)
		case models.AreaSettings:
			return w.area(path, n, s)
		case nil:
			return invalidf(path, "path has no line or area settings")
		default:
			return invalidf(path, "unsupported path settings %T", s)
		}
	case models.Layer:
		return invalidf(path, "nested layer %q", n.Name)
	case models.Catalog:
		return invalidf(path, "catalog inside a layer")
	case nil:
		return invalidf(path, "nil node")
	default:
		return invalidf(path, "unsupported node %T", n)
	}
}

func (w *writer) point(path string, p models.PointFeature) error {
	if p.Settings.Type == "" {
		return invalidf(path, "point has no type")
	}
	coords, err := formatCoords(path, p.Position())
	if err != nil {
		return err
	}
	w.emit(indent1 + header("point", []string{coords, p.Settings.Type}, PointOptions(p.Settings)))
	w.stats.Points++
	return nil
}

func (w *writer) line(path string, p models.PathFeature, s models.LineSettings) error {
	if s.Type == "" {
		return invalidf(path, "line has no type")
	}
	n := len(p.Segments)
	if n == 0 {
		return invalidf(path, "path has no segments")
	}
	if err := checkIndices(path, "subtype", s.Subtypes, n); err != nil {
		return err
	}
	if err := checkIndices(path, "segment setting", s.SegmentSettings, n); err != nil {
		return err
	}

	w.emit(indent1 + header("line", []string{s.Type}, LineOptions(s, p.Closed)))
	for i, edge := range PathEdges(p.Segments, p.Closed) {
		coords, err := edge.format(fmt.Sprintf("%s.segments[%d]", path, i%n))
		if err != nil {
			return err
		}
		w.emit(indent2 + coords)
		if i == n {
			// closing edge repeats index 0 without its metadata
			continue
		}
		for _, meta := range segmentMetadata(s, i) {
			w.emit(indent2 + meta)
		}
	}
	if s.Size != 0 {
		w.emit(indent2 + "size " + formatNumber(s.Size))
	}
	w.emit(indent1 + "endline")
	w.stats.Lines++
	return nil
}

func (w *writer) area(path string, p models.PathFeature, s models.AreaSettings) error {
	if s.Type == "" {
		return invalidf(path, "area has no type")
	}

	border := s.LineSettings
	if border.ID == "" {
		border.ID = w.ids.NewID()
		w.stats.GeneratedIDs++
	}
	if err := w.line(path, p, border); err != nil {
		return err
	}

	w.emit(indent1 + header("area", []string{s.Type}, AreaOptions(s)))
	w.emit(indent2 + border.ID)
	w.emit(indent1 + "endarea")
	w.stats.Areas++
	return nil
}

// segmentMetadata returns the lines written after the coordinates of segment
// i: its subtype, then its settings split on the escaped newline "\n" and on
// ";". Literal newlines inside a piece are kept.
func segmentMetadata(s models.LineSettings, i int) []string {
	var out []string
	if t, ok := s.Subtypes[i]; ok {
		out = append(out, "subtype "+t)
	}
	if v, ok := s.SegmentSettings[i]; ok {
		for _, chunk := range strings.Split(v, `\n`) {
			for _, piece := range strings.Split(chunk, ";") {
				if piece != "" {
					out = append(out, piece)
				}
			}
		}
	}
	return out
}

func checkIndices(path, what string, m map[int]string, n int) error {
	if len(m) == 0 {
		return nil
	}
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	if keys[0] < 0 || keys[len(keys)-1] >= n {
		bad := keys[0]
		if bad >= 0 {
			bad = keys[len(keys)-1]
		}
		return invalidf(path, "%s index %d out of range for %d segments", what, bad, n)
	}
	return nil
}
