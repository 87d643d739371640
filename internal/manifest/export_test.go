package manifest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestYAML(t *testing.T) {
	m := loadManifest(t, testFile1)

	data, err := m.YAML()
	require.NoError(t, err)
	out := string(data)

	// Key order follows the document.
	assert.Less(t, strings.Index(out, "tempSensor:"), strings.Index(out, "csharpmodule:"))
	assert.Less(t, strings.Index(out, "csharpmodule:"), strings.Index(out, "csharpfunction:"))
	assert.Less(t, strings.Index(out, "$edgeAgent"), strings.Index(out, "$edgeHub"))

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(data, &doc))

	hub := doc["modulesContent"].(map[string]any)[EdgeHub].(map[string]any)[DesiredPropertiesKey].(map[string]any)
	assert.Equal(t, "1.0", hub["schemaVersion"])
	assert.Equal(t, 7200, hub["storeAndForwardConfiguration"].(map[string]any)["timeToLiveSecs"])
	assert.Equal(t,
		"FROM /messages/modules/csharpmodule/outputs/* INTO $upstream",
		hub["routes"].(map[string]any)["csharpmoduleToIoTHub"],
	)

	runtime := doc["modulesContent"].(map[string]any)[EdgeAgent].(map[string]any)[DesiredPropertiesKey].(map[string]any)["runtime"].(map[string]any)
	assert.Equal(t, "", runtime["settings"].(map[string]any)["loggingOptions"])
	assert.Equal(t, map[string]any{}, runtime["settings"].(map[string]any)["registryCredentials"])
}

func TestToYAMLNode_Scalars(t *testing.T) {
	m := loadManifest(t, testFile2)
	m.update([]byte(`{"int": 3, "float": 1.5, "yes": true, "no": false, "nothing": null, "list": ["a", 1]}`))

	data, err := m.YAML()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(data, &doc))

	assert.Equal(t, 3, doc["int"])
	assert.Equal(t, 1.5, doc["float"])
	assert.Equal(t, true, doc["yes"])
	assert.Equal(t, false, doc["no"])
	assert.Nil(t, doc["nothing"])
	assert.Equal(t, []any{"a", 1}, doc["list"])
}

func TestPretty(t *testing.T) {
	m := loadManifest(t, testFile2)

	out := string(m.Pretty())
	assert.True(t, strings.HasPrefix(out, "{\n  \"$schema-template\": \"1.0.0\",\n"))
	assert.JSONEq(t, readFile(t, testFile2), out)
}
