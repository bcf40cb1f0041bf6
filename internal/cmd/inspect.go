package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cameronsjo/keylimegen/internal/artifact"
	"github.com/cameronsjo/keylimegen/internal/ui"
)

// inspectCmd lists the entries of an archive.
var inspectCmd = &cobra.Command{
	Use:   "inspect <archive>",
	Short: "List the entries of a generated archive",
	Long: `List the entries of a manifest archive in stored order, with the
uncompressed size and CRC-32 of each entry.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	entries, err := artifact.List(args[0])
	if err != nil {
		return err
	}

	ui.Header("%s (%d entries)", args[0], len(entries))
	for i, e := range entries {
		ui.Plain("%3d  %-36s %8d  %08x", i+1, e.Name, e.Size, e.CRC32)
	}
	return nil
}
