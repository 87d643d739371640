package manifest

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// Validation errors for manifest structure.
var (
	// ErrNoModulesContent indicates the manifest has no modulesContent container.
	ErrNoModulesContent = errors.New("missing modulesContent")

	// ErrMissingTwin indicates $edgeAgent or $edgeHub has no desired properties.
	ErrMissingTwin = errors.New("missing desired properties")

	// ErrMissingSystemModule indicates a required runtime module is not declared.
	ErrMissingSystemModule = errors.New("missing system module")

	// ErrInvalidModule indicates a module has no usable settings.
	ErrInvalidModule = errors.New("invalid module")
)

// Validate checks the manifest structure and returns every problem found,
// joined into one error. It returns nil for a well-formed manifest.
func (m *DeploymentManifest) Validate() error {
	if !m.get(escapeKey(m.contentKey())).IsObject() {
		return ErrNoModulesContent
	}

	var errs []error

	for _, twin := range []string{EdgeAgent, EdgeHub} {
		if !m.get(m.desiredPath(twin)).IsObject() {
			errs = append(errs, fmt.Errorf("%w: %s", ErrMissingTwin, twin))
		}
	}

	systemModules := m.get(m.desiredPath(EdgeAgent, SystemModulesKey))
	for _, name := range RequiredSystemModules {
		if !systemModules.Get(escapeKey(name)).Exists() {
			errs = append(errs, fmt.Errorf("%w: %s", ErrMissingSystemModule, name))
		}
	}

	for _, container := range []string{SystemModulesKey, UserModulesKey} {
		m.get(m.desiredPath(EdgeAgent, container)).ForEach(func(name, module gjson.Result) bool {
			if err := validateModule(module); err != nil {
				errs = append(errs, fmt.Errorf("%w: %s: %w", ErrInvalidModule, name.String(), err))
			}
			return true
		})
	}

	return errors.Join(errs...)
}

// validateModule checks that a module declares an image or build platforms.
func validateModule(module gjson.Result) error {
	settings := module.Get("settings")
	if !settings.IsObject() {
		return errors.New("settings must be an object")
	}

	image := settings.Get("image")
	platforms := settings.Get("platforms")

	if platforms.Exists() && !platforms.IsObject() {
		return errors.New("settings.platforms must be an object")
	}
	if image.Exists() && image.Type != gjson.String {
		return errors.New("settings.image must be a string")
	}
	if image.String() == "" && !platforms.IsObject() {
		return errors.New("settings.image is empty and no platforms are declared")
	}

	return nil
}
