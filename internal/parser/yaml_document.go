package parser

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/th2-export/backend/internal/models"
)

// YAMLDecoder reads the canonical project document written as YAML. It is the
// hand-authoring format used for fixtures and scripted drawings.
type YAMLDecoder struct {
	formatMatcher
}

func NewYAMLDecoder() *YAMLDecoder {
	return &YAMLDecoder{formatMatcher{
		mediaTypes: []string{"application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml"},
		extensions: []string{".yaml", ".yml"},
	}}
}

func (d *YAMLDecoder) Name() string { return "yaml" }

func (d *YAMLDecoder) CanDecode(contentType, fileName string) bool {
	return d.matches(contentType, fileName)
}

func (d *YAMLDecoder) Decode(r io.Reader) (models.Project, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return models.Project{}, err
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return models.Project{}, fmt.Errorf("decoding yaml document: %w", err)
	}
	return doc.ToProject()
}
