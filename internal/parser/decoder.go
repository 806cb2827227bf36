package parser

import (
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/th2-export/backend/internal/models"
)

// Decoder defines the interface for project tree decoders.
type Decoder interface {
	// Name returns the unique name of the decoder.
	Name() string
	// CanDecode reports whether the decoder handles the given media type or
	// file name. Either may be empty.
	CanDecode(contentType, fileName string) bool
	// Decode reads a complete project.
	Decode(r io.Reader) (models.Project, error)
}

// formatMatcher holds the media types and extensions a decoder accepts.
type formatMatcher struct {
	mediaTypes []string
	extensions []string
}

func (m formatMatcher) matches(contentType, fileName string) bool {
	if contentType != "" {
		if mt, _, err := mime.ParseMediaType(contentType); err == nil {
			for _, t := range m.mediaTypes {
				if mt == t {
					return true
				}
			}
		}
	}
	if fileName != "" {
		ext := strings.ToLower(filepath.Ext(fileName))
		for _, e := range m.extensions {
			if ext == e {
				return true
			}
		}
	}
	return false
}
