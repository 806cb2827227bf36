package parser

import (
	"fmt"
	"os"
	"strings"

	"github.com/th2-export/backend/internal/models"
)

// Registry holds all available decoders and picks one per request.
type Registry struct {
	decoders []Decoder
}

// Global registry instance
var globalRegistry = NewRegistry()

func NewRegistry() *Registry {
	return &Registry{
		decoders: []Decoder{
			NewPaperJSONDecoder(),
			NewYAMLDecoder(),
			NewMsgpackDecoder(),
		},
	}
}

// GetGlobalRegistry returns the singleton registry.
func GetGlobalRegistry() *Registry {
	return globalRegistry
}

// Names lists the registered decoders in lookup order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.decoders))
	for i, d := range r.decoders {
		names[i] = d.Name()
	}
	return names
}

// FindDecoder picks a decoder by media type first and by file extension
// second.
func (r *Registry) FindDecoder(contentType, fileName string) (Decoder, error) {
	for _, d := range r.decoders {
		if d.CanDecode(contentType, "") {
			return d, nil
		}
	}
	for _, d := range r.decoders {
		if d.CanDecode("", fileName) {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: content type %q, file %q", ErrUnsupportedFormat, contentType, fileName)
}

// GetDecoderByName returns a decoder by its name.
func (r *Registry) GetDecoderByName(name string) (Decoder, error) {
	name = strings.ToLower(name)
	for _, d := range r.decoders {
		if strings.ToLower(d.Name()) == name {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: no decoder named %s", ErrUnsupportedFormat, name)
}

// DecodeFile decodes a project file, choosing the decoder by extension unless
// format names one.
func (r *Registry) DecodeFile(filePath, format string) (models.Project, error) {
	var (
		d   Decoder
		err error
	)
	if format != "" {
		d, err = r.GetDecoderByName(format)
	} else {
		d, err = r.FindDecoder("", filePath)
	}
	if err != nil {
		return models.Project{}, err
	}

	file, err := os.Open(filePath)
	if err != nil {
		return models.Project{}, err
	}
	defer file.Close()

	p, err := d.Decode(file)
	if err != nil {
		return models.Project{}, fmt.Errorf("decoding %s as %s: %w", filePath, d.Name(), err)
	}
	return p, nil
}
