// Package config provides the environment provider for edgedev.
//
// Values come from an optional dotenv file and the process environment,
// with the process environment taking precedence. Process environment
// names are matched exactly; dotenv keys are case-insensitive.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Environment keys read by edgedev.
const (
	KeyDeploymentTemplateFile = "DEPLOYMENT_CONFIG_TEMPLATE_FILE"
	KeyDefaultPlatform        = "DEFAULT_PLATFORM"
	KeyModuleTemplateFile     = "MODULE_TEMPLATE_FILE"
)

// Defaults used when a key is not set.
const (
	DefaultDeploymentTemplateFile = "deployment.template.json"
	DefaultPlatform               = "amd64"
	DefaultEnvFile                = ".env"
)

// EnvVars holds configuration loaded from a dotenv file and the environment.
type EnvVars struct {
	v *viper.Viper

	// overridden records keys given a value with Set.
	overridden map[string]bool

	// EnvFile is the dotenv file that was read, empty if none was found.
	EnvFile string
}

// New creates an EnvVars that reads only the process environment until Load is called.
func New() *EnvVars {
	return &EnvVars{v: viper.New(), overridden: map[string]bool{}}
}

// Load reads the dotenv file at path. A missing file is not an error;
// the process environment is still consulted.
func (e *EnvVars) Load(path string) error {
	if path == "" {
		return nil
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat env file: %w", err)
	}

	e.v.SetConfigFile(path)
	e.v.SetConfigType("env")
	if err := e.v.ReadInConfig(); err != nil {
		return fmt.Errorf("read env file %s: %w", path, err)
	}
	e.EnvFile = path

	return nil
}

// Get returns the value for key and whether it is set.
// Set overrides win, then the process environment, then the dotenv file.
// An empty process variable counts as unset.
func (e *EnvVars) Get(key string) (string, bool) {
	if e.overridden[key] {
		return e.v.GetString(key), true
	}
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value, true
	}
	if e.v.InConfig(key) {
		return e.v.GetString(key), true
	}
	return "", false
}

// GetString returns the value for key, or an empty string.
func (e *EnvVars) GetString(key string) string {
	value, _ := e.Get(key)
	return value
}

// Set overrides the value for key.
func (e *EnvVars) Set(key, value string) {
	e.overridden[key] = true
	e.v.Set(key, value)
}

// DeploymentTemplateFile returns the path to the deployment manifest template.
func (e *EnvVars) DeploymentTemplateFile() string {
	return e.getOrDefault(KeyDeploymentTemplateFile, DefaultDeploymentTemplateFile)
}

// DefaultPlatform returns the platform used for newly added modules.
func (e *EnvVars) DefaultPlatform() string {
	return e.getOrDefault(KeyDefaultPlatform, DefaultPlatform)
}

// ModuleTemplateFile returns the path to a custom module skeleton, or empty.
func (e *EnvVars) ModuleTemplateFile() string {
	return e.GetString(KeyModuleTemplateFile)
}

func (e *EnvVars) getOrDefault(key, def string) string {
	if v, ok := e.Get(key); ok && v != "" {
		return v
	}
	return def
}

// FindRoot searches upward from the current directory to find the project root.
// The project root is identified by a .env file or a deployment template.
func FindRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return findRootFrom(dir)
}

func findRootFrom(dir string) (string, error) {
	for {
		for _, marker := range []string{DefaultEnvFile, DefaultDeploymentTemplateFile} {
			if info, err := os.Stat(filepath.Join(dir, marker)); err == nil && !info.IsDir() {
				return dir, nil
			}
		}

		// Move up one directory
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("project root not found (no %s or %s)", DefaultEnvFile, DefaultDeploymentTemplateFile)
}
