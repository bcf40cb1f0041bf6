package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cameronsjo/keylimegen/internal/config"
	"github.com/cameronsjo/keylimegen/internal/logging"
	"github.com/cameronsjo/keylimegen/internal/pipeline"
	"github.com/cameronsjo/keylimegen/internal/templates"
	"github.com/cameronsjo/keylimegen/internal/ui"
)

var (
	generateNamespace    string
	generateAgents       int
	generateMode         string
	generateRASNamespace string
	generateTemplates    string
	generateOutput       string
	generateArchive      string
	generateValues       string
	generateSet          []string
	generateDryRun       bool
	generateConfig       string
)

// generateCmd renders, writes and archives the manifests.
var generateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"gen", "render"},
	Short:   "Render, write and archive Keylime manifests",
	Long: `Render the Keylime manifests for a namespace and agent count.

Control-plane templates are rendered once. agent-config.yaml and
agent-pod.yaml are rendered once per agent, each config with a fresh UUID.
All artifacts are written to the output directory and packaged into a zip
archive in the same directory.

Examples:
  keylimegen generate -n demo -a 2              # single cluster, two agents
  keylimegen generate -m ras-cluster            # attestation services only
  keylimegen generate -m lb-cluster -a 3 \
      --ras-namespace keylime-ras               # agents reaching a remote verifier
  keylimegen generate -f prod.yaml --set image_tag=v7.12.1
  keylimegen generate --dry-run                 # list artifacts only`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateNamespace, "namespace", "n", "", "Target namespace (default keylime-system)")
	generateCmd.Flags().IntVarP(&generateAgents, "agents", "a", 0, "Number of agent replicas (default depends on mode)")
	generateCmd.Flags().StringVarP(&generateMode, "mode", "m", "", "Cluster mode: single-cluster, ras-cluster, lb-cluster (default single-cluster)")
	generateCmd.Flags().StringVar(&generateRASNamespace, "ras-namespace", "", "Namespace of the registrar and verifier (default: --namespace)")
	generateCmd.Flags().StringVarP(&generateTemplates, "templates", "t", "", "Template directory (default: built-in templates)")
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "Output directory (default artifacts)")
	generateCmd.Flags().StringVar(&generateArchive, "archive", "", "Archive file name within the output directory (default keylime-manifests.zip)")
	generateCmd.Flags().StringVarP(&generateValues, "values", "f", "", "Values overlay file (YAML)")
	generateCmd.Flags().StringArrayVar(&generateSet, "set", nil, "Set a template value (key=value, repeatable)")
	generateCmd.Flags().BoolVar(&generateDryRun, "dry-run", false, "List artifacts without writing anything")
	generateCmd.Flags().StringVarP(&generateConfig, "config", "c", "", "Config file (default: nearest keylimegen.yaml)")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	file, err := loadConfigFile(generateConfig)
	if err != nil {
		return err
	}

	values, err := loadValues(generateValues, generateSet)
	if err != nil {
		return err
	}

	overrides := config.Overrides{
		Namespace:    generateNamespace,
		Mode:         generateMode,
		RASNamespace: generateRASNamespace,
		Templates:    generateTemplates,
		Output:       generateOutput,
		Archive:      generateArchive,
		Values:       values,
	}
	if cmd.Flags().Changed("agents") {
		agents := generateAgents
		overrides.Agents = &agents
	}

	settings, err := config.Resolve(file, overrides)
	if err != nil {
		return err
	}

	set, err := loadTemplateSet(settings.Templates)
	if err != nil {
		return err
	}

	logger.Info("generating manifests",
		zap.String(logging.FieldMode, string(settings.Mode)),
		zap.String(logging.FieldNamespace, settings.Namespace),
		zap.Int("agents", settings.Agents),
		zap.String(logging.FieldPath, settings.Output),
	)

	result, err := pipeline.New(set, pipeline.WithLogger(logger)).Run(settings.Request(), pipeline.Options{
		OutputRoot:  settings.Output,
		ArchiveName: settings.Archive,
		LockDir:     settings.Root,
		DryRun:      generateDryRun,
	})
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	if generateDryRun {
		ui.Header("Would generate %d artifacts (%s, namespace %s):", len(result.Artifacts), settings.Mode, settings.Namespace)
		for i, a := range result.Artifacts {
			if a.Role == templates.RoleAgent {
				ui.Step(i+1, "%s (agent %d)", a.Name, a.Ordinal)
				continue
			}
			ui.Step(i+1, "%s", a.Name)
		}
		ui.Info("Dry run: nothing written to %s (archive %s)", settings.Output, settings.ArchivePath())
		return nil
	}

	for _, path := range result.Paths {
		ui.Success("%s", path)
	}
	if settings.Agents == 0 {
		ui.Warning("No agent manifests generated")
	}
	ui.Package("Archive: %s (%d artifacts)", result.Archive, len(result.Paths))
	return nil
}
