// Package schema validates YAML documents against JSON schemas.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// Validator checks documents against one compiled schema.
type Validator struct {
	name   string
	schema *jsonschema.Schema
}

// Compile compiles a schema written in YAML (or JSON) under the given name.
func Compile(name, source string) (*Validator, error) {
	var schemaData any
	if err := yaml.Unmarshal([]byte(source), &schemaData); err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", name, err)
	}

	// Convert to JSON for schema compiler
	jsonData, err := json.Marshal(schemaData)
	if err != nil {
		return nil, fmt.Errorf("marshal schema %s: %w", name, err)
	}

	url := "keylimegen://" + name + ".schema.json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, strings.NewReader(string(jsonData))); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", name, err)
	}

	compiled, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}

	return &Validator{name: name, schema: compiled}, nil
}

// MustCompile is like Compile but panics on error.
// Use it for schemas embedded in the binary.
func MustCompile(name, source string) *Validator {
	v, err := Compile(name, source)
	if err != nil {
		panic(err)
	}
	return v
}

// Validate checks a decoded document (for example the output of yaml.Unmarshal).
func (v *Validator) Validate(doc any) error {
	// Round-trip through JSON so YAML integers and maps use JSON types.
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s document: %w", v.name, err)
	}

	var normalized any
	if err := json.Unmarshal(data, &normalized); err != nil {
		return fmt.Errorf("normalize %s document: %w", v.name, err)
	}

	if err := v.schema.Validate(normalized); err != nil {
		return fmt.Errorf("%s schema: %w", v.name, err)
	}
	return nil
}

// ValidateYAML parses raw YAML and validates it.
func (v *Validator) ValidateYAML(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse %s document: %w", v.name, err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return v.Validate(doc)
}
