package config

import (
	"fmt"
	"path/filepath"

	"github.com/cameronsjo/keylimegen/internal/artifact"
	"github.com/cameronsjo/keylimegen/internal/manifest"
	"github.com/cameronsjo/keylimegen/internal/templates"
)

// Defaults are the settings used when neither flags nor the config file
// provide a value.
type Defaults struct {
	Namespace string
	Agents    int
	Output    string
	Archive   string
}

// DefaultNamespace is the namespace used by every mode.
const DefaultNamespace = "keylime-system"

// DefaultOutput is the output directory, relative to the project root.
const DefaultOutput = "artifacts"

// ModeDefaults returns the documented defaults for mode. A ras-cluster
// runs no agents; the other modes run a single agent.
func ModeDefaults(mode manifest.Mode) Defaults {
	d := Defaults{
		Namespace: DefaultNamespace,
		Agents:    1,
		Output:    DefaultOutput,
		Archive:   artifact.DefaultArchiveName,
	}
	if mode == manifest.ModeRASCluster {
		d.Agents = 0
	}
	return d
}

// Overrides are values supplied on the command line. Nil or empty fields
// are unset.
type Overrides struct {
	Namespace    string
	Agents       *int
	Mode         string
	RASNamespace string
	Templates    string
	Output       string
	Archive      string

	// Values are merged over the config file's values.
	Values map[string]any
}

// Settings are the resolved inputs of a generate run.
type Settings struct {
	Namespace    string
	Agents       int
	Mode         manifest.Mode
	RASNamespace string

	// Templates is a template directory; empty selects the built-in set.
	Templates string

	Output  string
	Archive string
	Values  map[string]any

	// Root is the project directory used for the run lock, or "" when
	// there is no config file.
	Root string
}

// Resolve combines overrides, the config file and mode defaults, in that
// order of precedence. file may be nil. Relative paths from the config file
// are resolved against its directory.
func Resolve(file *File, ov Overrides) (*Settings, error) {
	if file == nil {
		file = &File{}
	}

	modeName := firstNonEmpty(ov.Mode, file.Mode, string(manifest.ModeSingleCluster))
	mode, err := manifest.ParseMode(modeName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	defaults := ModeDefaults(mode)

	s := &Settings{
		Namespace:    firstNonEmpty(ov.Namespace, file.Namespace, defaults.Namespace),
		Agents:       defaults.Agents,
		Mode:         mode,
		RASNamespace: firstNonEmpty(ov.RASNamespace, file.RASNamespace),
		Templates:    firstNonEmpty(ov.Templates, relativeTo(file.Dir(), file.Templates)),
		Output:       firstNonEmpty(ov.Output, relativeTo(file.Dir(), file.Output), relativeTo(file.Dir(), defaults.Output)),
		Archive:      firstNonEmpty(ov.Archive, file.Archive, defaults.Archive),
		Values:       templates.DeepMerge(file.Values, ov.Values),
		Root:         file.Dir(),
	}

	switch {
	case ov.Agents != nil:
		s.Agents = *ov.Agents
	case file.Agents != nil:
		s.Agents = *file.Agents
	}

	if s.Agents < 0 {
		return nil, fmt.Errorf("%w: agents must not be negative (got %d)", ErrInvalidConfig, s.Agents)
	}
	if err := artifact.ValidateName(s.Archive); err != nil {
		return nil, fmt.Errorf("%w: archive: %w", ErrInvalidConfig, err)
	}

	return s, nil
}

// Request builds the expansion request for these settings.
func (s *Settings) Request() manifest.Request {
	return manifest.Request{
		Namespace:    s.Namespace,
		AgentCount:   s.Agents,
		Mode:         s.Mode,
		RASNamespace: s.RASNamespace,
		Values:       s.Values,
	}
}

// ArchivePath returns the full path of the archive.
func (s *Settings) ArchivePath() string {
	return filepath.Join(s.Output, s.Archive)
}

func relativeTo(dir, path string) string {
	if path == "" || dir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
