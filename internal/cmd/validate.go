package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cameronsjo/keylimegen/internal/config"
	"github.com/cameronsjo/keylimegen/internal/logging"
	"github.com/cameronsjo/keylimegen/internal/manifest"
	"github.com/cameronsjo/keylimegen/internal/pipeline"
	"github.com/cameronsjo/keylimegen/internal/ui"
)

var (
	validateTemplates string
	validateMode      string
	validateConfig    string
)

// validateCmd checks that a template set renders in every mode.
var validateCmd = &cobra.Command{
	Use:     "validate",
	Aliases: []string{"lint"},
	Short:   "Check that templates render in every mode",
	Long: `Render the template set in memory for each cluster mode without
writing anything. Reports missing templates, undefined variables and
malformed templates by key.

Modes that deploy agents are checked with at least one agent so the
agent templates are always exercised.

Examples:
  keylimegen validate                  # built-in templates, all modes
  keylimegen validate -t ./templates   # custom template directory
  keylimegen validate -m lb-cluster    # a single mode`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validateTemplates, "templates", "t", "", "Template directory (default: built-in templates)")
	validateCmd.Flags().StringVarP(&validateMode, "mode", "m", "", "Only check this mode")
	validateCmd.Flags().StringVarP(&validateConfig, "config", "c", "", "Config file (default: nearest keylimegen.yaml)")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	file, err := loadConfigFile(validateConfig)
	if err != nil {
		return err
	}

	modes := manifest.SupportedModes
	if validateMode != "" {
		m, err := manifest.ParseMode(validateMode)
		if err != nil {
			return err
		}
		modes = []manifest.Mode{m}
	}

	// Values and namespace come from the config file; flags only pick the set.
	settings, err := config.Resolve(file, config.Overrides{Templates: validateTemplates, Mode: string(modes[0])})
	if err != nil {
		return err
	}

	set, err := loadTemplateSet(settings.Templates)
	if err != nil {
		return err
	}

	p := pipeline.New(set, pipeline.WithLogger(logger))
	failed := 0
	for _, mode := range modes {
		req := settings.Request()
		req.Mode = mode
		req.AgentCount = validationAgents(mode)

		result, err := p.Run(req, pipeline.Options{DryRun: true})
		if err != nil {
			failed++
			ui.Error("%s: %v", mode, err)
			logger.Debug("validation failed", zap.String(logging.FieldMode, string(mode)), zap.Error(err))
			continue
		}
		ui.Success("%s: %d artifacts", mode, len(result.Artifacts))
	}

	if failed > 0 {
		return fmt.Errorf("validation failed for %d of %d modes", failed, len(modes))
	}
	return nil
}

// validationAgents returns the agent count to check mode with.
func validationAgents(mode manifest.Mode) int {
	if mode == manifest.ModeRASCluster {
		return 0
	}
	return max(config.ModeDefaults(mode).Agents, 1)
}
