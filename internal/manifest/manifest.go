package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/gjson"

	"github.com/cameronsjo/edgedev/internal/config"
	"github.com/cameronsjo/edgedev/internal/fileutil"
	"github.com/cameronsjo/edgedev/internal/ui"
	"github.com/cameronsjo/edgedev/internal/utility"
)

// DeploymentManifest is a deployment manifest loaded from disk.
// It is not safe for concurrent use.
type DeploymentManifest struct {
	// Path is the file the manifest was loaded from.
	Path string

	env  *config.EnvVars
	out  *ui.Output
	util *utility.Utility

	// isTemplate tolerates unresolved placeholders when rendering module templates.
	isTemplate bool

	// raw is the document as stored, environment references intact.
	// Mutations and Dump work on raw only.
	raw []byte

	// expanded caches raw with environment references resolved; nil when stale.
	expanded []byte
}

// New loads the manifest at path. Reads see ${NAME} environment references
// resolved when the environment provides a value; the stored document keeps
// the references so that writing it back never bakes in environment values.
//
// isTemplate marks the file as a deployment template: unresolved placeholders
// in module skeletons become empty values instead of errors.
func New(env *config.EnvVars, out *ui.Output, util *utility.Utility, path string, isTemplate bool) (*DeploymentManifest, error) {
	content, err := util.GetFileContents(path, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	raw := []byte(content)
	if !isJSONObject(raw) {
		return nil, fmt.Errorf("%w: %s is not a JSON object", ErrParse, path)
	}

	m := &DeploymentManifest{
		Path:       path,
		env:        env,
		out:        out,
		util:       util,
		isTemplate: isTemplate,
		raw:        raw,
	}

	if !isJSONObject(m.view()) {
		return nil, fmt.Errorf("%w: %s is not a JSON object after environment expansion", ErrParse, path)
	}

	if m.contentKey() == LegacyModuleContentKey && out != nil {
		out.Warning("%s uses the legacy %q key", path, LegacyModuleContentKey)
	}

	return m, nil
}

// IsTemplate reports whether unresolved template placeholders are tolerated.
func (m *DeploymentManifest) IsTemplate() bool {
	return m.isTemplate
}

// JSON returns a copy of the stored document, environment references intact.
func (m *DeploymentManifest) JSON() []byte {
	return bytes.Clone(m.raw)
}

// MarshalJSON implements json.Marshaler.
func (m *DeploymentManifest) MarshalJSON() ([]byte, error) {
	return m.JSON(), nil
}

// Expand returns a read-only copy of the manifest whose stored document has
// environment references resolved. The copy has no Path, so Dump needs an
// explicit destination such as a generated deployment config.
func (m *DeploymentManifest) Expand() *DeploymentManifest {
	c := *m
	c.Path = ""
	c.raw = bytes.Clone(m.view())
	c.expanded = c.raw
	return &c
}

// view returns the document with environment references resolved.
func (m *DeploymentManifest) view() []byte {
	if m.expanded == nil {
		m.expanded = []byte(m.util.ExpandVars(string(m.raw)))
	}
	return m.expanded
}

// update replaces the stored document after a mutation.
func (m *DeploymentManifest) update(raw []byte) {
	m.raw = raw
	m.expanded = nil
}

func isJSONObject(data []byte) bool {
	return gjson.ValidBytes(data) && gjson.ParseBytes(data).IsObject()
}

// contentKey returns the root container key used by this document.
func (m *DeploymentManifest) contentKey() string {
	if !gjson.GetBytes(m.raw, ModulesContentKey).Exists() &&
		gjson.GetBytes(m.raw, LegacyModuleContentKey).Exists() {
		return LegacyModuleContentKey
	}
	return ModulesContentKey
}

// desiredPath returns the path to a key inside a twin's desired properties.
func (m *DeploymentManifest) desiredPath(twin string, keys ...string) string {
	return keyPath(append([]string{m.contentKey(), twin, DesiredPropertiesKey}, keys...)...)
}

func (m *DeploymentManifest) get(path string) gjson.Result {
	return gjson.GetBytes(m.view(), path)
}

// DesiredProperty returns prop from the desired properties of module,
// e.g. DesiredProperty("$edgeHub", "schemaVersion"). Objects are returned
// as map[string]any and arrays as []any.
//
// An unknown module and an unknown property both return an error matching
// ErrKeyNotFound.
func (m *DeploymentManifest) DesiredProperty(module, prop string) (any, error) {
	r, err := m.desiredProperty(module, prop)
	if err != nil {
		return nil, err
	}
	return r.Value(), nil
}

// DesiredPropertyJSON returns the raw JSON of a desired property.
func (m *DeploymentManifest) DesiredPropertyJSON(module, prop string) ([]byte, error) {
	r, err := m.desiredProperty(module, prop)
	if err != nil {
		return nil, err
	}
	return []byte(r.Raw), nil
}

func (m *DeploymentManifest) desiredProperty(module, prop string) (gjson.Result, error) {
	r := m.get(m.desiredPath(module, prop))
	if !r.Exists() {
		return r, fmt.Errorf("%w: %s: %s", ErrKeyNotFound, module, prop)
	}
	return r, nil
}

// Dump writes the stored document to path, or to the load path when path
// is empty.
func (m *DeploymentManifest) Dump(path string) error {
	if path == "" {
		path = m.Path
	}
	if path == "" {
		return errors.New("dump deployment manifest: no destination path")
	}
	if err := fileutil.WriteFileAtomic(path, m.Pretty(), 0644); err != nil {
		return fmt.Errorf("dump deployment manifest: %w", err)
	}
	return nil
}

// IsNotExist reports whether err was caused by a missing manifest file.
func IsNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
