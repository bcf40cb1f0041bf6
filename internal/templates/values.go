package templates

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DeepMerge recursively merges overlay into base and returns a new map.
// Nested maps merge key by key; any other overlay value replaces the base value.
// Neither input is modified.
func DeepMerge(base, overlay map[string]any) map[string]any {
	result := make(map[string]any, len(base)+len(overlay))
	for k, v := range base {
		result[k] = deepCopy(v)
	}

	for key, overlayValue := range overlay {
		baseMap, baseIsMap := result[key].(map[string]any)
		overlayMap, overlayIsMap := overlayValue.(map[string]any)
		if baseIsMap && overlayIsMap {
			result[key] = DeepMerge(baseMap, overlayMap)
			continue
		}
		result[key] = deepCopy(overlayValue)
	}

	return result
}

// ParseValue interprets s as JSON when possible and falls back to the raw string.
// "3" becomes an integer, `{"a":1}` a map, and "keylime" stays a string.
func ParseValue(s string) any {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil || dec.More() {
		return s
	}
	return normalizeJSON(v)
}

// ParseAssignments turns "key=value" pairs into a values map.
// Dotted keys nest ("image.tag=v1" sets values["image"]["tag"]).
func ParseAssignments(pairs []string) (map[string]any, error) {
	result := make(map[string]any)

	for _, pair := range pairs {
		idx := strings.Index(pair, "=")
		if idx <= 0 {
			return nil, fmt.Errorf("invalid assignment %q (expected key=value)", pair)
		}

		path := strings.Split(pair[:idx], ".")
		nested := map[string]any{path[len(path)-1]: ParseValue(pair[idx+1:])}
		for i := len(path) - 2; i >= 0; i-- {
			nested = map[string]any{path[i]: nested}
		}
		result = DeepMerge(result, nested)
	}

	return result, nil
}

// LoadValues reads a YAML values overlay file.
func LoadValues(path string) (map[string]any, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read values file: %w", err)
	}

	var values map[string]any
	if err := yaml.Unmarshal(content, &values); err != nil {
		return nil, fmt.Errorf("parse values file %s: %w", path, err)
	}
	if values == nil {
		values = make(map[string]any)
	}

	return values, nil
}

// normalizeJSON converts json.Number into int64 or float64.
func normalizeJSON(value any) any {
	switch v := value.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		f, _ := v.Float64()
		return f
	case map[string]any:
		for k, val := range v {
			v[k] = normalizeJSON(val)
		}
		return v
	case []any:
		for i, val := range v {
			v[i] = normalizeJSON(val)
		}
		return v
	default:
		return value
	}
}

// deepCopy creates a deep copy of any value.
func deepCopy(value any) any {
	switch v := value.(type) {
	case map[string]any:
		result := make(map[string]any, len(v))
		for k, val := range v {
			result[k] = deepCopy(val)
		}
		return result
	case []any:
		result := make([]any, len(v))
		for i, val := range v {
			result[i] = deepCopy(val)
		}
		return result
	case []string:
		result := make([]string, len(v))
		copy(result, v)
		return result
	default:
		// Primitive types are immutable, return as-is
		return value
	}
}
