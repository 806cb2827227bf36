package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Flag is a free-form option written as "-<Key> <Value>".
type Flag struct {
	Key   string
	Value string
}

// FlagMap is an insertion-ordered string map. Every codec it supports keeps
// the order in which keys were written.
type FlagMap []Flag

// Set adds key or replaces its value in place.
func (m *FlagMap) Set(key, value string) {
	for i := range *m {
		if (*m)[i].Key == key {
			(*m)[i].Value = value
			return
		}
	}
	*m = append(*m, Flag{Key: key, Value: value})
}

// Get returns the value stored for key.
func (m FlagMap) Get(key string) (string, bool) {
	for _, f := range m {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// MarshalJSON writes the map as an object in insertion order.
func (m FlagMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts an object or an array of [key, value] pairs.
func (m *FlagMap) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*m = nil
	switch {
	case bytes.Equal(data, []byte("null")):
		return nil
	case len(data) > 0 && data[0] == '[':
		var pairs [][2]string
		if err := json.Unmarshal(data, &pairs); err != nil {
			return fmt.Errorf("decoding flag pairs: %w", err)
		}
		for _, p := range pairs {
			m.Set(p[0], p[1])
		}
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("flag map must be an object or an array of pairs")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("decoding flag %q: %w", key, err)
		}
		m.Set(key, rawScalar(raw))
	}
	_, err = dec.Token()
	return err
}

// rawScalar renders a JSON value as flag text; strings are unquoted, anything
// else keeps its literal form.
func rawScalar(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// MarshalYAML writes the map as a mapping node in insertion order.
func (m FlagMap) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, f := range m {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Key},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Value},
		)
	}
	return node, nil
}

// UnmarshalYAML accepts a mapping, a sequence of single-key mappings, or a
// sequence of [key, value] pairs.
func (m *FlagMap) UnmarshalYAML(value *yaml.Node) error {
	*m = nil
	switch value.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(value.Content); i += 2 {
			m.Set(value.Content[i].Value, value.Content[i+1].Value)
		}
		return nil
	case yaml.SequenceNode:
		for _, item := range value.Content {
			switch {
			case item.Kind == yaml.MappingNode && len(item.Content) == 2:
				m.Set(item.Content[0].Value, item.Content[1].Value)
			case item.Kind == yaml.SequenceNode && len(item.Content) == 2:
				m.Set(item.Content[0].Value, item.Content[1].Value)
			default:
				return fmt.Errorf("line %d: flag entry must be a single key/value pair", item.Line)
			}
		}
		return nil
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			return nil
		}
	}
	return fmt.Errorf("line %d: flag map must be a mapping or a sequence", value.Line)
}

// EncodeMsgpack writes the map with its entries in insertion order.
func (m FlagMap) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeMapLen(len(m)); err != nil {
		return err
	}
	for _, f := range m {
		if err := enc.EncodeString(f.Key); err != nil {
			return err
		}
		if err := enc.EncodeString(f.Value); err != nil {
			return err
		}
	}
	return nil
}

// DecodeMsgpack reads a msgpack map, keeping wire order.
func (m *FlagMap) DecodeMsgpack(dec *msgpack.Decoder) error {
	*m = nil
	n, err := dec.DecodeMapLen()
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		key, err := dec.DecodeString()
		if err != nil {
			return fmt.Errorf("decoding flag key: %w", err)
		}
		value, err := dec.DecodeString()
		if err != nil {
			return fmt.Errorf("decoding flag %q: %w", key, err)
		}
		m.Set(key, value)
	}
	return nil
}
