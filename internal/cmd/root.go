// Package cmd provides the CLI commands for edgedev.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/edgedev/internal/config"
	"github.com/cameronsjo/edgedev/internal/ui"
)

const version = "0.1.0"

var envFile string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "edgedev",
	Short: "IoT Edge deployment manifest tooling",
	Long: `edgedev - IoT Edge deployment manifest tooling

Inspect and edit IoT Edge deployment manifests and templates.

MANIFEST COMMANDS
  manifest modules        List system and user modules
  manifest process        List module build targets (module, platform)
  manifest desired        Show a desired property of $edgeAgent or $edgeHub
  manifest add <name>     Add a user module from the module template
  manifest show           Print the manifest as JSON or YAML
  manifest validate       Check the manifest structure

Configuration is read from a .env file and the environment:
  DEPLOYMENT_CONFIG_TEMPLATE_FILE   Manifest path (default deployment.template.json)
  DEFAULT_PLATFORM                  Platform for new modules (default amd64)
  MODULE_TEMPLATE_FILE              Custom module skeleton`,
	Version:      version,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	rootCmd.SilenceErrors = true
	if err := rootCmd.Execute(); err != nil {
		ui.Error("%v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", config.DefaultEnvFile, "Path to the dotenv file")

	// Version template
	rootCmd.SetVersionTemplate("edgedev version {{.Version}}\n")
}
