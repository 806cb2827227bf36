package parser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_FindDecoder(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		contentType string
		fileName    string
		want        string
	}{
		{"application/json", "", "paperjson"},
		{"application/json; charset=utf-8", "", "paperjson"},
		{"text/yaml", "", "yaml"},
		{"application/msgpack", "", "msgpack"},
		{"", "cave.JSON", "paperjson"},
		{"", "cave.yml", "yaml"},
		{"", "cave.msgpack", "msgpack"},
		{"application/octet-stream", "cave.yaml", "yaml"},
		{"application/json", "cave.yaml", "paperjson"},
	}

	for _, tt := range tests {
		d, err := r.FindDecoder(tt.contentType, tt.fileName)
		if assert.NoError(t, err, "%q %q", tt.contentType, tt.fileName) {
			assert.Equal(t, tt.want, d.Name(), "%q %q", tt.contentType, tt.fileName)
		}
	}

	_, err := r.FindDecoder("text/plain", "cave.th2")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestRegistry_GetDecoderByName(t *testing.T) {
	r := GetGlobalRegistry()
	assert.Equal(t, []string{"paperjson", "yaml", "msgpack"}, r.Names())

	d, err := r.GetDecoderByName("YAML")
	require.NoError(t, err)
	assert.Equal(t, "yaml", d.Name())

	_, err = r.GetDecoderByName("svg")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestRegistry_DecodeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "station.json")
	require.NoError(t, os.WriteFile(path, []byte(stationProjectJSON), 0644))

	r := NewRegistry()
	p, err := r.DecodeFile(path, "")
	require.NoError(t, err)
	assert.Equal(t, 1, p.LayerCount())

	_, err = r.DecodeFile(path, "yaml")
	assert.Error(t, err, "json array is not a yaml document with nodes")

	_, err = r.DecodeFile(filepath.Join(dir, "missing.json"), "")
	assert.Error(t, err)
}
