package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/edgedev/internal/config"
	"github.com/cameronsjo/edgedev/internal/fileutil"
	"github.com/cameronsjo/edgedev/internal/lock"
	"github.com/cameronsjo/edgedev/internal/manifest"
	"github.com/cameronsjo/edgedev/internal/ui"
	"github.com/cameronsjo/edgedev/internal/utility"
)

var (
	manifestFile       string
	strictPlaceholders bool

	modulesSystem bool
	modulesUser   bool

	addRoute  bool
	addDryRun bool
	addBackup bool

	showFormat string
	showExpand bool
)

// manifestCmd groups deployment manifest commands.
var manifestCmd = &cobra.Command{
	Use:     "manifest",
	Aliases: []string{"m"},
	Short:   "Inspect and edit the deployment manifest",
	Long: `Inspect and edit an IoT Edge deployment manifest.

The manifest defaults to DEPLOYMENT_CONFIG_TEMPLATE_FILE from the environment.
Without --env, the .env file and a relative manifest path are looked up in the
project root: the nearest directory at or above the current one holding a .env
or deployment.template.json. Use --file to point at another manifest.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "List system and user modules",
	Long: `List the modules declared by the manifest in document order.

Without flags, system modules are listed first, then user modules.`,
	Args: cobra.NoArgs,
	RunE: runModules,
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "List module build targets",
	Long: `List the (module, platform) build targets declared by user modules.

A module contributes one target per entry in its settings.platforms mapping,
or one target for an image placeholder like ${MODULES.filtermodule.amd64}.`,
	Args: cobra.NoArgs,
	RunE: runProcess,
}

var desiredCmd = &cobra.Command{
	Use:   "desired <module> <property>",
	Short: "Show a desired property",
	Long: `Print a desired property of a module twin as JSON.

Examples:
  edgedev manifest desired '$edgeHub' schemaVersion
  edgedev manifest desired '$edgeHub' routes`,
	Args: cobra.ExactArgs(2),
	RunE: runDesired,
}

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a user module from the module template",
	Long: `Add a user module rendered from the module template and save the manifest.

An existing module with the same name is replaced.

Examples:
  edgedev manifest add filtermodule
  edgedev manifest add filtermodule --route     # Also route outputs upstream
  edgedev manifest add filtermodule --dry-run   # Print instead of writing`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the manifest",
	Long: `Print the manifest as stored, with environment references intact.

Use --expand to resolve ${NAME} references from the environment. Expanded output
may contain credentials.`,
	Args: cobra.NoArgs,
	RunE: runShow,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the manifest structure",
	Args:  cobra.NoArgs,
	RunE:  runValidate,
}

func init() {
	manifestCmd.PersistentFlags().StringVarP(&manifestFile, "file", "f", "", "Deployment manifest path (default from DEPLOYMENT_CONFIG_TEMPLATE_FILE)")
	manifestCmd.PersistentFlags().BoolVar(&strictPlaceholders, "strict", false, "Fail on unresolved placeholders instead of leaving them empty")

	modulesCmd.Flags().BoolVar(&modulesSystem, "system", false, "Only list system modules")
	modulesCmd.Flags().BoolVar(&modulesUser, "user", false, "Only list user modules")

	addCmd.Flags().BoolVar(&addRoute, "route", false, "Also add a route sending the module's outputs upstream")
	addCmd.Flags().BoolVarP(&addDryRun, "dry-run", "n", false, "Print the updated manifest without writing")
	addCmd.Flags().BoolVar(&addBackup, "backup", false, "Keep a .bak copy of the manifest before writing")

	showCmd.Flags().StringVarP(&showFormat, "output", "o", "json", "Output format (json or yaml)")
	showCmd.Flags().BoolVar(&showExpand, "expand", false, "Resolve environment references")

	manifestCmd.AddCommand(modulesCmd, processCmd, desiredCmd, addCmd, showCmd, validateCmd)
	rootCmd.AddCommand(manifestCmd)
}

// manifestSource resolves the environment, output and manifest path
// selected by flags.
func manifestSource(cmd *cobra.Command) (*config.EnvVars, *ui.Output, string, error) {
	out := ui.NewOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())

	envPath, root := envFile, filepath.Dir(envFile)
	if !cmd.Flags().Changed("env") {
		if found, err := config.FindRoot(); err == nil {
			root = found
			envPath = filepath.Join(root, envFile)
		}
	}

	env := config.New()
	if err := env.Load(envPath); err != nil {
		return nil, nil, "", fmt.Errorf("load environment: %w", err)
	}

	path := manifestFile
	if path == "" {
		path = env.DeploymentTemplateFile()
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
	}
	return env, out, path, nil
}

// loadManifest loads the manifest selected by flags and environment.
func loadManifest(cmd *cobra.Command) (*manifest.DeploymentManifest, *ui.Output, error) {
	env, out, path, err := manifestSource(cmd)
	if err != nil {
		return nil, nil, err
	}

	m, err := openManifest(env, out, path)
	if err != nil {
		return nil, nil, err
	}
	return m, out, nil
}

func openManifest(env *config.EnvVars, out *ui.Output, path string) (*manifest.DeploymentManifest, error) {
	m, err := manifest.New(env, out, utility.New(env, out), path, !strictPlaceholders)
	if err != nil {
		if manifest.IsNotExist(err) {
			return nil, fmt.Errorf("deployment manifest %s not found", path)
		}
		return nil, err
	}
	return m, nil
}

func runModules(cmd *cobra.Command, args []string) error {
	m, out, err := loadManifest(cmd)
	if err != nil {
		return err
	}

	showAll := !modulesSystem && !modulesUser

	if showAll || modulesSystem {
		if showAll {
			out.Header("System modules")
		}
		for _, name := range m.SystemModules() {
			out.Line("%s", name)
		}
	}

	if showAll || modulesUser {
		if showAll {
			out.Header("User modules")
		}
		for _, name := range m.UserModules() {
			out.Line("%s", name)
		}
	}

	return nil
}

func runProcess(cmd *cobra.Command, args []string) error {
	m, out, err := loadManifest(cmd)
	if err != nil {
		return err
	}

	targets := m.ModulesToProcess()
	if len(targets) == 0 {
		out.Warning("No modules to process")
		return nil
	}

	for _, target := range targets {
		out.Line("%s\t%s", target.Module, target.Platform)
	}
	return nil
}

func runDesired(cmd *cobra.Command, args []string) error {
	m, out, err := loadManifest(cmd)
	if err != nil {
		return err
	}

	raw, err := m.DesiredPropertyJSON(args[0], args[1])
	if err != nil {
		return err
	}

	out.Line("%s", raw)
	return nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	name := args[0]

	env, out, path, err := manifestSource(cmd)
	if err != nil {
		return err
	}

	if addDryRun {
		m, err := openManifest(env, out, path)
		if err != nil {
			return err
		}
		if err := addModule(m, name); err != nil {
			return err
		}
		out.Line("%s", bytes.TrimSpace(m.Pretty()))
		return nil
	}

	// Hold the lock across read, edit and write so concurrent adds
	// never drop each other's modules.
	err = lock.WithFileLock(path, func() error {
		m, err := openManifest(env, out, path)
		if err != nil {
			return err
		}
		if err := addModule(m, name); err != nil {
			return err
		}

		if addBackup {
			if err := fileutil.CopyFile(m.Path, m.Path+".bak"); err != nil {
				return fmt.Errorf("backup manifest: %w", err)
			}
			out.Info("Backed up %s to %s.bak", m.Path, m.Path)
		}
		return m.Dump("")
	})
	if err != nil {
		if errors.Is(err, lock.ErrLocked) {
			return fmt.Errorf("another edit of %s is in progress", path)
		}
		return err
	}

	out.Success("Added module %s to %s", name, path)
	if addRoute {
		out.Success("Added route %sToIoTHub", name)
	}
	return nil
}

func addModule(m *manifest.DeploymentManifest, name string) error {
	if err := m.AddModuleTemplate(name); err != nil {
		return err
	}
	if addRoute {
		return m.AddDefaultRoute(name)
	}
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	m, out, err := loadManifest(cmd)
	if err != nil {
		return err
	}
	if showExpand {
		m = m.Expand()
	}

	switch showFormat {
	case "json":
		out.Line("%s", bytes.TrimSpace(m.Pretty()))
	case "yaml":
		data, err := m.YAML()
		if err != nil {
			return err
		}
		out.Line("%s", bytes.TrimSpace(data))
	default:
		return fmt.Errorf("unknown output format %q (use json or yaml)", showFormat)
	}

	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	m, out, err := loadManifest(cmd)
	if err != nil {
		return err
	}

	if err := m.Validate(); err != nil {
		var problems interface{ Unwrap() []error }
		if errors.As(err, &problems) {
			for _, problem := range problems.Unwrap() {
				out.Error("%v", problem)
			}
		} else {
			out.Error("%v", err)
		}
		return fmt.Errorf("%s is not a valid deployment manifest", m.Path)
	}

	out.Success("%s is valid", m.Path)
	return nil
}
