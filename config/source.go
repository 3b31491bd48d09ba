// Package config implements the configuration store: a document-format
// agnostic ConfigSource abstraction, YAML and JSON implementations of it,
// and the loader that folds one or more overlaid documents into an
// immutable RunConfig.
//
// ConfigSource replaces the original's vtable-of-function-pointers parser
// plugin with a single interface, per the dynamically-typed-configuration
// redesign: implementations only need to answer four questions about a
// dotted path — scalar, array-of-scalars, mapping-of-scalars, or
// mapping-of-arrays.
package config

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ConfigSource is the pluggable document reader every RunConfig section is
// built from. path is an ordered list of keys, e.g. []string{"vendor",
// "favor_release"}.
type ConfigSource interface {
	// GetString returns the scalar string at path, and whether it was present.
	GetString(path []string) (string, bool)

	// ForEachInArray calls f once per element of the array at path.
	ForEachInArray(path []string, f func(value string)) bool

	// ForEachInMapping calls f once per key/value pair of the scalar mapping
	// at path.
	ForEachInMapping(path []string, f func(key, value string)) bool

	// ForEachKey calls f once per key of the mapping at path, regardless of
	// value shape (used when values are themselves arrays, e.g.
	// inspections -> name -> on/off is scalar, but products -> token -> regex
	// needs key enumeration before value lookup).
	ForEachKey(path []string, f func(key string)) bool
}

// docSource implements ConfigSource over a generically-decoded document
// tree (map[string]any / []any / scalars), the shape both yaml.v3 and
// encoding/json decode into when the target is `any`.
type docSource struct {
	root any
}

// NewYAMLSource parses data as a YAML document.
func NewYAMLSource(data []byte) (ConfigSource, error) {
	var root any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse yaml config: %w", err)
	}
	return &docSource{root: normalize(root)}, nil
}

// NewJSONSource parses data as a JSON document.
func NewJSONSource(data []byte) (ConfigSource, error) {
	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse json config: %w", err)
	}
	return &docSource{root: normalize(root)}, nil
}

// normalize recursively converts map[any]any (yaml.v3 can produce these for
// non-string keys) into map[string]any so lookups are uniform.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprintf("%v", k)] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	default:
		return v
	}
}

func (d *docSource) lookup(path []string) (any, bool) {
	var cur any = d.root
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func (d *docSource) GetString(path []string) (string, bool) {
	v, ok := d.lookup(path)
	if !ok {
		return "", false
	}
	return scalarToString(v)
}

func (d *docSource) ForEachInArray(path []string, f func(value string)) bool {
	v, ok := d.lookup(path)
	if !ok {
		return false
	}
	arr, ok := v.([]any)
	if !ok {
		return false
	}
	for _, item := range arr {
		if s, ok := scalarToString(item); ok {
			f(s)
		}
	}
	return true
}

func (d *docSource) ForEachInMapping(path []string, f func(key, value string)) bool {
	v, ok := d.lookup(path)
	if !ok {
		return false
	}
	m, ok := v.(map[string]any)
	if !ok {
		return false
	}
	for key, val := range m {
		if s, ok := scalarToString(val); ok {
			f(key, s)
		}
	}
	return true
}

func (d *docSource) ForEachKey(path []string, f func(key string)) bool {
	v, ok := d.lookup(path)
	if !ok {
		return false
	}
	m, ok := v.(map[string]any)
	if !ok {
		return false
	}
	for key := range m {
		f(key)
	}
	return true
}

func scalarToString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case bool:
		if t {
			return "true", true
		}
		return "false", true
	case int:
		return fmt.Sprintf("%d", t), true
	case int64:
		return fmt.Sprintf("%d", t), true
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t)), true
		}
		return fmt.Sprintf("%v", t), true
	default:
		return "", false
	}
}
