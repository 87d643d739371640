package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/cameronsjo/edgedev/internal/config"
)

// resetFlags restores flag variables to their defaults.
// Cobra binds flags to package-level variables, so values leak between
// executions unless they are reset.
func resetFlags() {
	envFile = config.DefaultEnvFile
	manifestFile = ""
	strictPlaceholders = false
	modulesSystem = false
	modulesUser = false
	addRoute = false
	addDryRun = false
	addBackup = false
	showFormat = "json"
	showExpand = false

	for _, f := range []*pflag.Flag{
		rootCmd.PersistentFlags().Lookup("env"),
		manifestCmd.PersistentFlags().Lookup("file"),
	} {
		f.Changed = false
	}

	resetBuiltinFlags(rootCmd)
}

// resetBuiltinFlags clears --help and --version, which cobra leaves set
// after an execution that used them.
func resetBuiltinFlags(c *cobra.Command) {
	for _, name := range []string{"help", "version"} {
		if f := c.Flags().Lookup(name); f != nil {
			f.Value.Set("false")
			f.Changed = false
		}
	}
	for _, sub := range c.Commands() {
		resetBuiltinFlags(sub)
	}
}

// executeCmd executes the root command with the given args and returns the output.
func executeCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	oldNoColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = oldNoColor })

	resetFlags()
	t.Setenv(config.KeyDefaultPlatform, "amd64")
	t.Setenv(config.KeyModuleTemplateFile, "")

	buf := new(bytes.Buffer)
	// Important: Set args BEFORE setting output buffers
	rootCmd.SetArgs(args)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	err := rootCmd.Execute()
	return buf.String(), err
}

// copyFixture copies a manifest fixture into a temp dir and returns its path.
func copyFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "manifest", "testdata", name))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "deployment.template.json")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

// noEnv returns a dotenv path that does not exist.
func noEnv(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), ".env")
}
