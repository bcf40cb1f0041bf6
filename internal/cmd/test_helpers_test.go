package cmd

import (
	"bytes"
	"os"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag to its default so cobra state doesn't
// leak between tests. Package-level flag variables are reset through
// their flag values.
func resetFlags(t *testing.T) {
	t.Helper()
	reset := func(fs *pflag.FlagSet) {
		fs.VisitAll(func(f *pflag.Flag) {
			if sv, ok := f.Value.(pflag.SliceValue); ok {
				require.NoError(t, sv.Replace(nil))
			} else {
				require.NoError(t, f.Value.Set(f.DefValue))
			}
			f.Changed = false
		})
	}

	reset(rootCmd.PersistentFlags())
	reset(rootCmd.Flags())
	for _, c := range rootCmd.Commands() {
		reset(c.Flags())
	}
}

// executeCmd executes the root command with the given args and returns the output.
func executeCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(t)
	t.Cleanup(func() { resetFlags(t) })

	buf := new(bytes.Buffer)
	// Important: Set args BEFORE setting output buffers
	rootCmd.SetArgs(args)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	err := rootCmd.Execute()
	return buf.String(), err
}

// chdir changes to dir for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	originalWd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { os.Chdir(originalWd) })
	require.NoError(t, os.Chdir(dir))
}

// findCommand returns the subcommand named name.
func findCommand(t *testing.T, name string) *cobra.Command {
	t.Helper()
	c, _, err := rootCmd.Find([]string{name})
	require.NoError(t, err)
	return c
}
