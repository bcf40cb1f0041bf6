package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cameronsjo/keylimegen/internal/templates"
	"github.com/cameronsjo/keylimegen/internal/ui"
)

var templatesDir string

// templatesCmd lists the template set.
var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List template keys and roles",
	Long: `List every template in the set with its role.

control-plane templates are rendered once per run. agent templates are
rendered once per agent replica. Roles come from the set's index.yaml.`,
	Args: cobra.NoArgs,
	RunE: runTemplates,
}

func init() {
	templatesCmd.Flags().StringVarP(&templatesDir, "templates", "t", "", "Template directory (default: built-in templates)")

	rootCmd.AddCommand(templatesCmd)
}

func runTemplates(cmd *cobra.Command, args []string) error {
	set, err := loadTemplateSet(templatesDir)
	if err != nil {
		return err
	}

	ui.Header("%-36s %s", "TEMPLATE", "ROLE")
	for _, key := range set.Keys() {
		tmpl, err := set.Get(key)
		if err != nil {
			return err
		}
		if tmpl.Role() == templates.RoleAgent {
			ui.Plain("%-36s %s (per replica)", key, tmpl.Role())
			continue
		}
		ui.Plain("%-36s %s", key, tmpl.Role())
	}
	return nil
}
