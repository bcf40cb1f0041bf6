package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/keylimegen/internal/manifest"
)

// completeModes completes --mode values.
func completeModes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var names []string
	for _, m := range manifest.SupportedModes {
		if strings.HasPrefix(string(m), toComplete) {
			names = append(names, string(m))
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// completeLogLevels completes --log-level values.
func completeLogLevels(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return filterPrefix([]string{"debug", "info", "warn", "error"}, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeLogFormats completes --log-format values.
func completeLogFormats(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return filterPrefix([]string{"auto", "console", "json"}, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func filterPrefix(values []string, prefix string) []string {
	var result []string
	for _, v := range values {
		if strings.HasPrefix(v, prefix) {
			result = append(result, v)
		}
	}
	return result
}

// registerCompletions registers flag and argument completions.
// Flags are defined in each command's init, so this runs via OnInitialize.
func registerCompletions() {
	// Registering twice fails harmlessly; completions are optional.
	_ = generateCmd.RegisterFlagCompletionFunc("mode", completeModes)
	_ = validateCmd.RegisterFlagCompletionFunc("mode", completeModes)
	_ = rootCmd.RegisterFlagCompletionFunc("log-level", completeLogLevels)
	_ = rootCmd.RegisterFlagCompletionFunc("log-format", completeLogFormats)

	_ = generateCmd.MarkFlagDirname("templates")
	_ = generateCmd.MarkFlagDirname("output")
	_ = generateCmd.MarkFlagFilename("values", "yaml", "yml")
	_ = generateCmd.MarkFlagFilename("config", "yaml", "yml")
	_ = templatesCmd.MarkFlagDirname("templates")
	_ = validateCmd.MarkFlagDirname("templates")

	inspectCmd.ValidArgsFunction = completeArchives
}

// completeArchives completes zip files for inspect.
func completeArchives(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"zip"}, cobra.ShellCompDirectiveFilterFileExt
}

func init() {
	cobra.OnInitialize(registerCompletions)
}
