package templates

import (
	"errors"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/cameronsjo/keylimegen/internal/schema"
)

// IndexFile is the metadata file that tags templates with roles.
const IndexFile = "index.yaml"

// ErrInvalidIndex indicates the index file is malformed or inconsistent.
var ErrInvalidIndex = errors.New("invalid template index")

// Index is the template set metadata stored in index.yaml:
//
//	templates:
//	  agent-config.yaml:
//	    role: agent
//	    description: Per-agent keylime-agent.conf
//	  15-agent-lb-service.yaml:
//	    role: control-plane
//	    modes: [lb-cluster]
//
// Keys not listed default to the control-plane role and every mode.
type Index struct {
	Templates map[Key]IndexEntry `yaml:"templates"`
}

// IndexEntry describes one template.
type IndexEntry struct {
	Role        Role     `yaml:"role"`
	Modes       []string `yaml:"modes,omitempty"`
	Description string   `yaml:"description,omitempty"`
}

const indexSchema = `
type: object
additionalProperties: false
properties:
  templates:
    type: object
    propertyNames:
      pattern: '^[A-Za-z0-9][A-Za-z0-9._-]*\.ya?ml$'
    additionalProperties:
      type: object
      additionalProperties: false
      required: [role]
      properties:
        role:
          enum: [control-plane, agent]
        modes:
          type: array
          minItems: 1
          uniqueItems: true
          items:
            enum: [single-cluster, ras-cluster, lb-cluster]
        description:
          type: string
`

var indexValidator = schema.MustCompile("template-index", indexSchema)

// loadIndex reads and validates the index file. A missing index is empty.
func loadIndex(fsys fs.FS) (*Index, error) {
	data, err := fs.ReadFile(fsys, IndexFile)
	if errors.Is(err, fs.ErrNotExist) {
		return &Index{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", IndexFile, err)
	}

	if err := indexValidator.ValidateYAML(data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidIndex, err)
	}

	var index Index
	if err := yaml.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidIndex, err)
	}

	return &index, nil
}
