package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"honnef.co/go/curve"

	"github.com/th2-export/backend/internal/models"
)

// PaperJSONDecoder reads the editor's native project JSON: nested
// [kind, body] tuples as written by paper.js, with cave settings stored
// under data.therionData.
type PaperJSONDecoder struct {
	formatMatcher
}

func NewPaperJSONDecoder() *PaperJSONDecoder {
	return &PaperJSONDecoder{formatMatcher{
		mediaTypes: []string{"application/json"},
		extensions: []string{".json"},
	}}
}

func (d *PaperJSONDecoder) Name() string { return "paperjson" }

func (d *PaperJSONDecoder) CanDecode(contentType, fileName string) bool {
	return d.matches(contentType, fileName)
}

type paperData struct {
	TherionData json.RawMessage `json:"therionData"`
}

type paperLayer struct {
	Name     string            `json:"name"`
	Children []json.RawMessage `json:"children"`
	Data     paperData         `json:"data"`
}

type paperSymbolItem struct {
	Matrix []float64       `json:"matrix"`
	Symbol json.RawMessage `json:"symbol"`
	Data   paperData       `json:"data"`
}

type paperPath struct {
	Segments []json.RawMessage `json:"segments"`
	Closed   bool              `json:"closed"`
	Data     paperData         `json:"data"`
}

// settingsKind tells line settings from area settings.
type settingsKind struct {
	ClassName    string          `json:"className"`
	LineSettings json.RawMessage `json:"lineSettings"`
}

// Decode parses a paper.js project export. A project that carries a symbol
// dictionary is wrapped as [["dictionary", {...}], [items...]]; the wrapper
// is flattened and the dictionary kept as a Catalog node.
func (d *PaperJSONDecoder) Decode(r io.Reader) (models.Project, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return models.Project{}, err
	}

	var top []json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return models.Project{}, fmt.Errorf("project must be a JSON array: %w", err)
	}

	nodes, err := decodeItems(top, "items")
	if err != nil {
		return models.Project{}, err
	}
	return models.Project{Nodes: nodes}, nil
}

func decodeItems(items []json.RawMessage, path string) ([]models.Node, error) {
	var nodes []models.Node
	for i, raw := range items {
		itemPath := fmt.Sprintf("%s[%d]", path, i)

		var tuple []json.RawMessage
		if err := json.Unmarshal(raw, &tuple); err != nil {
			return nil, fmt.Errorf("%s: item must be an array: %w", itemPath, err)
		}
		if len(tuple) == 0 {
			continue
		}
		if isJSONArray(tuple[0]) {
			// nested item list
			inner, err := decodeItems(tuple, itemPath)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, inner...)
			continue
		}

		node, err := decodeItem(tuple, itemPath)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func decodeItem(tuple []json.RawMessage, path string) (models.Node, error) {
	if len(tuple) != 2 {
		return nil, fmt.Errorf("%s: expected [kind, body], got %d elements", path, len(tuple))
	}
	var kind string
	if err := json.Unmarshal(tuple[0], &kind); err != nil {
		return nil, fmt.Errorf("%s: item kind must be a string: %w", path, err)
	}
	body := tuple[1]

	switch kind {
	case "dictionary":
		return models.Catalog{Name: kind}, nil
	case "Layer":
		return decodeLayer(body, path)
	case "SymbolItem":
		return decodeSymbolItem(body, path)
	case "Path":
		return decodePath(body, path)
	default:
		return nil, fmt.Errorf("%s: unsupported item kind %q", path, kind)
	}
}

func decodeLayer(body json.RawMessage, path string) (models.Node, error) {
	var raw paperLayer
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%s: decoding layer: %w", path, err)
	}

	layer := models.Layer{Name: raw.Name}
	if hasValue(raw.Data.TherionData) {
		if err := json.Unmarshal(raw.Data.TherionData, &layer.Settings); err != nil {
			return nil, fmt.Errorf("%s: decoding scrap settings: %w", path, err)
		}
	}

	children, err := decodeItems(raw.Children, path+".children")
	if err != nil {
		return nil, err
	}
	layer.Children = children
	return layer, nil
}

func decodeSymbolItem(body json.RawMessage, path string) (models.Node, error) {
	var raw paperSymbolItem
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%s: decoding symbol item: %w", path, err)
	}

	matrix, err := affineFromSlice(raw.Matrix)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	point := models.PointFeature{Matrix: matrix, SymbolRef: symbolRef(raw.Symbol)}
	if hasValue(raw.Data.TherionData) {
		if err := json.Unmarshal(raw.Data.TherionData, &point.Settings); err != nil {
			return nil, fmt.Errorf("%s: decoding point settings: %w", path, err)
		}
	}
	return point, nil
}

func decodePath(body json.RawMessage, path string) (models.Node, error) {
	var raw paperPath
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%s: decoding path: %w", path, err)
	}

	feature := models.PathFeature{Closed: raw.Closed}
	for i, seg := range raw.Segments {
		s, err := decodePaperSegment(seg)
		if err != nil {
			return nil, fmt.Errorf("%s.segments[%d]: %w", path, i, err)
		}
		feature.Segments = append(feature.Segments, s)
	}

	settings, err := decodePathSettings(raw.Data.TherionData)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	feature.Settings = settings
	return feature, nil
}

func decodePathSettings(data json.RawMessage) (models.PathSettings, error) {
	if !hasValue(data) {
		return nil, nil
	}

	var kind settingsKind
	if err := json.Unmarshal(data, &kind); err != nil {
		return nil, fmt.Errorf("decoding path settings: %w", err)
	}

	switch {
	case kind.ClassName == "AreaSettings" || (kind.ClassName == "" && hasValue(kind.LineSettings)):
		var s models.AreaSettings
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("decoding area settings: %w", err)
		}
		return s, nil
	case kind.ClassName == "LineSettings" || kind.ClassName == "":
		var s models.LineSettings
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("decoding line settings: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported path settings class %q", kind.ClassName)
	}
}

// decodePaperSegment reads [x, y] or [[x, y], [inX, inY], [outX, outY]].
func decodePaperSegment(raw json.RawMessage) (models.Segment, error) {
	var flat []float64
	if err := json.Unmarshal(raw, &flat); err == nil {
		if len(flat) != 2 {
			return models.Segment{}, fmt.Errorf("segment point needs 2 coordinates, got %d", len(flat))
		}
		return models.Corner(flat[0], flat[1]), nil
	}

	var parts [][]float64
	if err := json.Unmarshal(raw, &parts); err != nil {
		return models.Segment{}, fmt.Errorf("segment must be [x, y] or [point, handleIn, handleOut]: %w", err)
	}
	if len(parts) != 3 {
		return models.Segment{}, fmt.Errorf("segment needs point, handleIn and handleOut, got %d parts", len(parts))
	}
	for i, p := range parts {
		if len(p) != 2 {
			return models.Segment{}, fmt.Errorf("segment part %d needs 2 coordinates, got %d", i, len(p))
		}
	}
	return models.Smooth(
		curve.Pt(parts[0][0], parts[0][1]),
		curve.Vec(parts[1][0], parts[1][1]),
		curve.Vec(parts[2][0], parts[2][1]),
	), nil
}

// affineFromSlice converts a paper matrix [a, b, c, d, tx, ty]; an absent
// matrix is the identity.
func affineFromSlice(m []float64) (curve.Affine, error) {
	switch len(m) {
	case 0:
		return curve.Identity, nil
	case 6:
		return curve.Affine{N0: m[0], N1: m[1], N2: m[2], N3: m[3], N4: m[4], N5: m[5]}, nil
	default:
		return curve.Affine{}, fmt.Errorf("matrix needs 6 values, got %d", len(m))
	}
}

// symbolRef returns the first string of a paper reference array.
func symbolRef(raw json.RawMessage) string {
	var ref []any
	if err := json.Unmarshal(raw, &ref); err != nil {
		return ""
	}
	for _, v := range ref {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func isJSONArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

func hasValue(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}
