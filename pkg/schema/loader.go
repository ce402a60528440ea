package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile reads and decodes a rule-set document. JSON and YAML are both
// accepted; YAML is normalized to JSON before decoding so both formats share
// one wire form.
func LoadFile(path string) (*RuleSet, error) {
	data, err := FileBytes(path)
	if err != nil {
		return nil, err
	}
	return LoadBytes(data)
}

// FileBytes reads a rule-set file and returns its JSON wire form, converting
// from YAML when the extension calls for it. Used by surfaces that want to
// run structural validation on the raw document before decoding.
func FileBytes(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open ruleset: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		data, err = yamlToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("ruleset %s: %w", path, err)
		}
	}
	return data, nil
}

// Load reads a JSON rule-set document from a reader.
func Load(r io.Reader) (*RuleSet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read ruleset: %w", err)
	}
	return LoadBytes(data)
}

// LoadBytes decodes a JSON rule-set document. Decoding is tolerant of
// unknown condition/action types; those are content errors for the feature
// validator, not load failures. Structural presence of the required
// top-level sections is checked by ValidateStructural.
func LoadBytes(data []byte) (*RuleSet, error) {
	var rs RuleSet
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("structural decode: %w", err)
	}
	return &rs, nil
}

// Marshal serializes a rule-set back to indented JSON wire form.
func Marshal(rs *RuleSet) ([]byte, error) {
	data, err := json.MarshalIndent(rs, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal ruleset: %w", err)
	}
	return data, nil
}

// yamlToJSON converts a YAML document to its JSON equivalent.
func yamlToJSON(data []byte) ([]byte, error) {
	var doc any
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("yaml decode: %w", err)
	}
	doc = normalizeYAML(doc)
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("yaml to json: %w", err)
	}
	return out, nil
}

// normalizeYAML rewrites map[any]any keys (yaml.v3 emits map[string]any for
// string keys, but nested odd keys can still appear) into map[string]any.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalizeYAML(val)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = normalizeYAML(val)
		}
		return m
	case []any:
		for i, val := range t {
			t[i] = normalizeYAML(val)
		}
		return t
	}
	return v
}
