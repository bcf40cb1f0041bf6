package cmd

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cameronsjo/keylimegen/internal/config"
	"github.com/cameronsjo/keylimegen/internal/logging"
	"github.com/cameronsjo/keylimegen/internal/templates"
)

// loadTemplateSet loads templates from dir, or the built-in set when dir is empty.
func loadTemplateSet(dir string) (*templates.Set, error) {
	if dir == "" {
		set, err := templates.Default()
		if err != nil {
			return nil, fmt.Errorf("load built-in templates: %w", err)
		}
		logger.Debug("loaded built-in templates", zap.Int(logging.FieldCount, set.Len()))
		return set, nil
	}

	set, err := templates.LoadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	logger.Debug("loaded templates",
		zap.String(logging.FieldPath, dir),
		zap.Int(logging.FieldCount, set.Len()),
	)
	return set, nil
}

// loadConfigFile loads path, or discovers keylimegen.yaml when path is empty.
// A nil file means no configuration was found.
func loadConfigFile(path string) (*config.File, error) {
	if path != "" {
		f, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		return f, nil
	}

	f, err := config.Discover()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if f != nil {
		logger.Debug("using config file", zap.String(logging.FieldPath, f.Path))
	}
	return f, nil
}

// loadValues merges a values overlay file with --set assignments.
// Assignments win over the file.
func loadValues(file string, assignments []string) (map[string]any, error) {
	var values map[string]any
	if file != "" {
		v, err := templates.LoadValues(file)
		if err != nil {
			return nil, fmt.Errorf("load values: %w", err)
		}
		values = v
	}

	if len(assignments) > 0 {
		set, err := templates.ParseAssignments(assignments)
		if err != nil {
			return nil, fmt.Errorf("parse --set: %w", err)
		}
		values = templates.DeepMerge(values, set)
	}

	return values, nil
}
