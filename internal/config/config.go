// Package config handles project discovery and configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cameronsjo/keylimegen/internal/schema"
)

// FileName is the project configuration file.
const FileName = "keylimegen.yaml"

var (
	// ErrInvalidConfig indicates a malformed configuration file or setting.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrRootNotFound indicates no configuration file was found above the start directory.
	ErrRootNotFound = errors.New("project root not found")
)

// File is the on-disk project configuration. Unset fields fall back to the
// mode defaults.
type File struct {
	Namespace    string         `yaml:"namespace,omitempty"`
	Agents       *int           `yaml:"agents,omitempty"`
	Mode         string         `yaml:"mode,omitempty"`
	RASNamespace string         `yaml:"rasNamespace,omitempty"`
	Templates    string         `yaml:"templates,omitempty"`
	Output       string         `yaml:"output,omitempty"`
	Archive      string         `yaml:"archive,omitempty"`
	Values       map[string]any `yaml:"values,omitempty"`

	// Path is where the file was loaded from.
	Path string `yaml:"-"`
}

// Dir returns the directory holding the config file, or "" if unset.
func (f *File) Dir() string {
	if f == nil || f.Path == "" {
		return ""
	}
	return filepath.Dir(f.Path)
}

const fileSchema = `
type: object
additionalProperties: false
properties:
  namespace:
    type: string
    minLength: 1
  agents:
    type: integer
    minimum: 0
  mode:
    enum: [single-cluster, ras-cluster, lb-cluster]
  rasNamespace:
    type: string
    minLength: 1
  templates:
    type: string
  output:
    type: string
  archive:
    type: string
    pattern: '^[^/\\]+$'
  values:
    type: object
`

var fileValidator = schema.MustCompile("config", fileSchema)

// FindRoot searches upward from the current directory for a keylimegen.yaml.
func FindRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return FindRootFrom(dir)
}

// FindRootFrom searches upward from dir for a keylimegen.yaml.
func FindRootFrom(dir string) (string, error) {
	for {
		if info, err := os.Stat(filepath.Join(dir, FileName)); err == nil && !info.IsDir() {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("%w (no %s)", ErrRootNotFound, FileName)
}

// Load reads and validates a config file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := fileValidator.ValidateYAML(data); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	f.Path = abs

	return &f, nil
}

// Discover loads keylimegen.yaml from the nearest enclosing project root.
// It returns nil without error when there is none.
func Discover() (*File, error) {
	root, err := FindRoot()
	if errors.Is(err, ErrRootNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return Load(filepath.Join(root, FileName))
}
