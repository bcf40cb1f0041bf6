// Package templates loads and renders the manifest template set.
package templates

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"slices"
	"sort"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

var (
	// ErrTemplateNotFound indicates a required key is absent from the set.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrRender indicates a template could not be parsed or executed.
	ErrRender = errors.New("render template")
)

// Key names one template in a set. It is the template's file name.
type Key = string

// Role classifies a template as rendered once per run or once per agent.
type Role string

const (
	// RoleControlPlane templates are rendered exactly once per run.
	RoleControlPlane Role = "control-plane"

	// RoleAgent templates are rendered once per agent replica.
	RoleAgent Role = "agent"
)

// Template is a single parsed template.
type Template struct {
	key      Key
	role     Role
	modes    []string
	tmpl     *template.Template
	parseErr error
}

// Key returns the template's key.
func (t *Template) Key() Key { return t.key }

// Role returns the role assigned when the set was loaded.
func (t *Template) Role() Role { return t.role }

// AppliesTo reports whether the template belongs to mode. Templates
// without a modes list in the index belong to every mode.
func (t *Template) AppliesTo(mode string) bool {
	if len(t.modes) == 0 {
		return true
	}
	return slices.Contains(t.modes, mode)
}

// Stem returns the key without its file extension.
func (t *Template) Stem() string {
	return strings.TrimSuffix(t.key, path.Ext(t.key))
}

// Ext returns the key's file extension including the dot.
func (t *Template) Ext() string {
	return path.Ext(t.key)
}

// Render executes the template with b. Missing variables are an error.
func (t *Template) Render(b Binding) ([]byte, error) {
	if t.parseErr != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrRender, t.key, t.parseErr)
	}

	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, b.Map()); err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrRender, t.key, err)
	}
	return buf.Bytes(), nil
}

// Set is a read-only collection of templates keyed by name.
type Set struct {
	templates map[Key]*Template
}

// Load reads every *.yaml and *.yml file at the root of fsys as a template.
// The index file (index.yaml) is not a template; it assigns roles to keys.
func Load(fsys fs.FS) (*Set, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read template directory: %w", err)
	}

	set := &Set{templates: make(map[Key]*Template)}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == IndexFile || !isTemplateFile(name) {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", name, err)
		}
		set.templates[name] = parse(name, string(content))
	}

	index, err := loadIndex(fsys)
	if err != nil {
		return nil, err
	}
	for key, entry := range index.Templates {
		tmpl, ok := set.templates[key]
		if !ok {
			return nil, fmt.Errorf("%w: %s lists %s: %w", ErrInvalidIndex, IndexFile, key, ErrTemplateNotFound)
		}
		tmpl.role = entry.Role
		tmpl.modes = entry.Modes
	}

	return set, nil
}

// LoadDir loads a template set from a directory on disk.
func LoadDir(dir string) (*Set, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("templates directory not found: %s", dir)
		}
		return nil, fmt.Errorf("stat templates directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("templates path is not a directory: %s", dir)
	}

	return Load(os.DirFS(dir))
}

// Has reports whether key is in the set.
func (s *Set) Has(key Key) bool {
	_, ok := s.templates[key]
	return ok
}

// Get returns the template for key.
func (s *Set) Get(key Key) (*Template, error) {
	tmpl, ok := s.templates[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, key)
	}
	return tmpl, nil
}

// Keys returns every key in sorted order.
func (s *Set) Keys() []Key {
	keys := make([]Key, 0, len(s.templates))
	for k := range s.templates {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// KeysByRole returns the keys tagged with role, sorted.
func (s *Set) KeysByRole(role Role) []Key {
	var keys []Key
	for _, k := range s.Keys() {
		if s.templates[k].role == role {
			keys = append(keys, k)
		}
	}
	return keys
}

// Len returns the number of templates in the set.
func (s *Set) Len() int {
	return len(s.templates)
}

// parse prepares a template. A parse failure is kept and reported on Render
// so that one malformed template does not block unrelated modes.
func parse(key Key, source string) *Template {
	t := &Template{key: key, role: RoleControlPlane}
	t.tmpl, t.parseErr = template.New(key).
		Option("missingkey=error").
		Funcs(sprig.TxtFuncMap()).
		Parse(source)
	return t
}

func isTemplateFile(name string) bool {
	ext := path.Ext(name)
	return ext == ".yaml" || ext == ".yml"
}
