package manifest

import (
	"bytes"
	"fmt"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/cameronsjo/edgedev/internal/utility"
)

// DefaultModuleTemplate is the skeleton used for new user modules when no
// custom template is configured.
const DefaultModuleTemplate = `{
  "version": "1.0",
  "type": "docker",
  "status": "running",
  "restartPolicy": "always",
  "settings": {
    "image": {{ printf "${MODULES.%s.%s}" .Name .Platform | toJson }},
    "createOptions": {}
  }
}`

// TemplateData is passed to module templates.
type TemplateData struct {
	// Name is the new module's name.
	Name string

	// Platform is the default build platform.
	Platform string
}

// AddModuleTemplate inserts a user module named name rendered from the
// module template. An existing module with the same name is replaced in
// place; a new module is appended after the existing ones.
func (m *DeploymentManifest) AddModuleTemplate(name string) error {
	if name == "" {
		return ErrEmptyModuleName
	}

	body, err := m.renderModuleTemplate(name)
	if err != nil {
		return fmt.Errorf("add module %s: %w", name, err)
	}

	updated, err := sjson.SetRawBytes(m.raw, m.desiredPath(EdgeAgent, UserModulesKey, name), body)
	if err != nil {
		return fmt.Errorf("add module %s: %w", name, err)
	}
	m.update(updated)

	return nil
}

// AddDefaultRoute adds a route sending all outputs of module upstream.
func (m *DeploymentManifest) AddDefaultRoute(module string) error {
	if module == "" {
		return ErrEmptyModuleName
	}

	routeName := module + "ToIoTHub"
	route := fmt.Sprintf("FROM /messages/modules/%s/outputs/* INTO $upstream", module)

	updated, err := sjson.SetBytes(m.raw, m.desiredPath(EdgeHub, RoutesKey, routeName), route)
	if err != nil {
		return fmt.Errorf("add route %s: %w", routeName, err)
	}
	m.update(updated)

	return nil
}

// renderModuleTemplate renders the module skeleton for name and resolves its
// placeholders. The result is compact JSON. A relative MODULE_TEMPLATE_FILE
// is resolved against the manifest's directory.
func (m *DeploymentManifest) renderModuleTemplate(name string) ([]byte, error) {
	text := DefaultModuleTemplate
	if path := m.env.ModuleTemplateFile(); path != "" {
		if !filepath.IsAbs(path) {
			path = filepath.Join(filepath.Dir(m.Path), path)
		}
		content, err := m.util.GetFileContents(path, false)
		if err != nil {
			return nil, fmt.Errorf("read module template: %w", err)
		}
		text = content
	}

	tmpl, err := template.New("module").
		Funcs(sprig.TxtFuncMap()).
		Option("missingkey=error").
		Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
	}

	var buf bytes.Buffer
	data := TemplateData{Name: name, Platform: m.env.DefaultPlatform()}
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
	}

	resolved, err := m.util.Interpolate(buf.String(), utility.InterpolateOptions{
		Tolerant: m.isTemplate,
		Preserve: []string{ModulePlaceholderPrefix},
		Escape:   utility.JSONEscape,
	})
	if err != nil {
		return nil, err
	}

	if !gjson.Valid(resolved) || !gjson.Parse(resolved).IsObject() {
		return nil, fmt.Errorf("%w: rendered module is not a JSON object", ErrInvalidTemplate)
	}

	return pretty.Ugly([]byte(resolved)), nil
}
