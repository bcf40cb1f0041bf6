// Package cmd provides the CLI commands for keylimegen.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cameronsjo/keylimegen/internal/logging"
	"github.com/cameronsjo/keylimegen/internal/ui"
)

const version = "0.1.0"

var (
	logLevel  string
	logFormat string

	// logger is configured from the persistent flags before any command runs.
	logger = zap.NewNop()
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "keylimegen",
	Short: "Generate and package Keylime attestation manifests",
	Long: `keylimegen - Keylime deployment manifest generator

Renders the Keylime registrar, verifier, tenant, database and per-agent
manifests for a namespace and agent count, writes them to an output
directory and packages them into a reproducible zip archive.

COMMANDS
  generate              Render, write and archive manifests
    --namespace, -n     Target namespace
    --agents, -a        Number of agent replicas
    --mode, -m          single-cluster, ras-cluster or lb-cluster
    --dry-run           List artifacts without writing
  templates             List template keys and roles
  validate              Check that templates render in every mode
  inspect <archive>     List the entries of a generated archive

CONFIGURATION
  Settings are read from keylimegen.yaml in the current directory or any
  parent. Flags override the file; the file overrides mode defaults.`,
	Version:      version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ui.Out = cmd.OutOrStdout()
		return setupLogger(cmd)
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", string(logging.FormatAuto), "Log format (auto, console, json)")

	rootCmd.SetVersionTemplate("keylimegen version {{.Version}}\n")
}

// setupLogger builds the command logger. Logs go to stderr so they never mix
// with artifact listings.
func setupLogger(cmd *cobra.Command) error {
	l, err := logging.NewLogger(logging.Config{
		Level:  logLevel,
		Format: logging.Format(logFormat),
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	logger = l
	return nil
}
