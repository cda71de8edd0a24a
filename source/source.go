// Package source reads raw trees from JSON and YAML text and writes them back
// as JSON. A raw tree is built from nil, bool, json.Number (JSON) or
// int/float64 (YAML), string, []any and map[string]any.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	j "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// ErrTrailingData is returned when JSON input holds more than one value.
var ErrTrailingData = errors.New("source: trailing data after JSON value")

// JSON decodes one JSON value. Numbers are kept as json.Number so integers
// and floats stay distinguishable.
func JSON(b []byte) (any, error) { return JSONReader(bytes.NewReader(b)) }

// JSONReader decodes exactly one JSON value from r.
func JSONReader(r io.Reader) (any, error) {
	dec := j.NewDecoder(r)
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("source: json: %w", err)
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, fmt.Errorf("source: json: %w", err)
		}
		return nil, ErrTrailingData
	}
	return v, nil
}

// YAML decodes the first YAML document. Mapping keys are converted to
// strings and timestamps to RFC 3339 text so the result matches the JSON
// value model.
func YAML(b []byte) (any, error) { return YAMLReader(bytes.NewReader(b)) }

// YAMLReader decodes the first YAML document from r.
func YAMLReader(r io.Reader) (any, error) {
	var v any
	if err := yaml.NewDecoder(r).Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("source: yaml: %w", err)
	}
	return normalizeYAML(v), nil
}

func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = normalizeYAML(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[fmt.Sprint(k)] = normalizeYAML(vv)
		}
		return out
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = normalizeYAML(t[i])
		}
		return arr
	case time.Time:
		return t.Format(time.RFC3339Nano)
	default:
		return v
	}
}

// Marshal writes a raw tree as compact JSON with sorted keys.
func Marshal(v any) ([]byte, error) { return j.Marshal(v) }

// MarshalIndent writes a raw tree as indented JSON with sorted keys.
func MarshalIndent(v any) ([]byte, error) { return j.MarshalIndent(v, "", "  ") }
