package manifest

import (
	"github.com/tidwall/gjson"
)

// UserModules returns the names of application modules in document order.
func (m *DeploymentManifest) UserModules() []string {
	return objectKeys(m.get(m.desiredPath(EdgeAgent, UserModulesKey)))
}

// SystemModules returns the names of runtime modules in document order.
func (m *DeploymentManifest) SystemModules() []string {
	return objectKeys(m.get(m.desiredPath(EdgeAgent, SystemModulesKey)))
}

// AllModules returns system modules followed by user modules.
func (m *DeploymentManifest) AllModules() []string {
	return append(m.SystemModules(), m.UserModules()...)
}

// ModulesToProcess returns the build targets declared by user modules.
//
// A module with a "platforms" mapping in its settings yields one target per
// platform, in declaration order. Otherwise an image placeholder such as
// ${MODULES.filtermodule.amd64} yields a single target. Modules that only
// reference a published image yield nothing.
func (m *DeploymentManifest) ModulesToProcess() []ModuleTarget {
	targets := []ModuleTarget{}

	m.get(m.desiredPath(EdgeAgent, UserModulesKey)).ForEach(func(name, module gjson.Result) bool {
		settings := module.Get("settings")

		if platforms := settings.Get("platforms"); platforms.IsObject() {
			platforms.ForEach(func(platform, _ gjson.Result) bool {
				targets = append(targets, ModuleTarget{Module: name.String(), Platform: platform.String()})
				return true
			})
			return true
		}

		if dir, platform, ok := parseModulePlaceholder(settings.Get("image").String()); ok {
			targets = append(targets, ModuleTarget{Module: dir, Platform: platform})
		}
		return true
	})

	return targets
}

// objectKeys returns the keys of a JSON object in document order.
func objectKeys(obj gjson.Result) []string {
	keys := []string{}
	if !obj.IsObject() {
		return keys
	}

	obj.ForEach(func(key, _ gjson.Result) bool {
		keys = append(keys, key.String())
		return true
	})
	return keys
}
