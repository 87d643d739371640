package manifest

import (
	"errors"
	"fmt"
	"strings"
)

// Document keys.
const (
	// ModulesContentKey is the root container of module twins.
	ModulesContentKey = "modulesContent"

	// LegacyModuleContentKey is the root container used by older manifests.
	LegacyModuleContentKey = "moduleContent"

	// EdgeAgent is the twin holding module definitions.
	EdgeAgent = "$edgeAgent"

	// EdgeHub is the twin holding message routes.
	EdgeHub = "$edgeHub"

	// DesiredPropertiesKey holds a twin's desired state.
	DesiredPropertiesKey = "properties.desired"

	// SystemModulesKey holds runtime modules under the edge agent.
	SystemModulesKey = "systemModules"

	// UserModulesKey holds application modules under the edge agent.
	UserModulesKey = "modules"

	// RoutesKey holds message routes under the edge hub.
	RoutesKey = "routes"
)

// ModulePlaceholderPrefix starts a module image reference such as
// ${MODULES.filtermodule.amd64}. These are resolved by the build step, not
// by the environment.
const ModulePlaceholderPrefix = "MODULES."

// RequiredSystemModules lists the runtime modules every manifest declares.
var RequiredSystemModules = []string{"edgeAgent", "edgeHub"}

var (
	// ErrLoad indicates the manifest file could not be read.
	ErrLoad = errors.New("load deployment manifest")

	// ErrParse indicates the manifest is not a JSON object.
	ErrParse = errors.New("invalid deployment manifest")

	// ErrKeyNotFound indicates a module or property lookup failed.
	ErrKeyNotFound = errors.New("key not found")

	// ErrInvalidTemplate indicates a module skeleton did not render to a JSON object.
	ErrInvalidTemplate = errors.New("invalid module template")

	// ErrEmptyModuleName indicates a module name was empty.
	ErrEmptyModuleName = errors.New("module name is empty")
)

// ModuleTarget is one concrete build target: a module built for a platform.
type ModuleTarget struct {
	Module   string
	Platform string
}

func (t ModuleTarget) String() string {
	return fmt.Sprintf("%s (%s)", t.Module, t.Platform)
}

// keyPath joins keys into a gjson/sjson path, escaping path syntax in each key.
func keyPath(keys ...string) string {
	escaped := make([]string, len(keys))
	for i, k := range keys {
		escaped[i] = escapeKey(k)
	}
	return strings.Join(escaped, ".")
}

func escapeKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for i := 0; i < len(key); i++ {
		switch key[i] {
		case '.', '*', '?', '|', '#', '@', '!', '=', '<', '>', '%', '\\', ':', '$':
			b.WriteByte('\\')
		}
		b.WriteByte(key[i])
	}
	return b.String()
}

// parseModulePlaceholder extracts the module and platform from an image
// placeholder like ${MODULES.filtermodule.amd64.debug}.
func parseModulePlaceholder(image string) (module, platform string, ok bool) {
	if !strings.HasPrefix(image, "${") || !strings.HasSuffix(image, "}") {
		return "", "", false
	}

	inner := image[2 : len(image)-1]
	if !strings.HasPrefix(inner, ModulePlaceholderPrefix) {
		return "", "", false
	}

	parts := strings.SplitN(strings.TrimPrefix(inner, ModulePlaceholderPrefix), ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}

	return parts[0], parts[1], true
}
