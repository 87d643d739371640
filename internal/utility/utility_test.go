package utility

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cameronsjo/edgedev/internal/ui"
)

// mapLookup is a Lookup backed by a map.
type mapLookup map[string]string

func (m mapLookup) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func TestExpandVars(t *testing.T) {
	u := New(mapLookup{
		"CONTAINER_REGISTRY_SERVER":   "localhost:5000",
		"CONTAINER_REGISTRY_USERNAME": "admin",
		"edgeHub":                     "x",
		"upstream":                    "hijacked",
	}, nil)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "braced reference",
			input: `"address": "${CONTAINER_REGISTRY_SERVER}"`,
			want:  `"address": "localhost:5000"`,
		},
		{
			name:  "bare reference left intact",
			input: "user=$CONTAINER_REGISTRY_USERNAME",
			want:  "user=$CONTAINER_REGISTRY_USERNAME",
		},
		{
			name:  "twin key left intact",
			input: `"$edgeHub": {}`,
			want:  `"$edgeHub": {}`,
		},
		{
			name:  "unknown reference left intact",
			input: "${CONTAINER_REGISTRY_PASSWORD}",
			want:  "${CONTAINER_REGISTRY_PASSWORD}",
		},
		{
			name:  "module placeholder left intact",
			input: `"image": "${MODULES.csharpmodule.amd64}"`,
			want:  `"image": "${MODULES.csharpmodule.amd64}"`,
		},
		{
			name:  "route upstream keyword left intact",
			input: "FROM /messages/* INTO $upstream",
			want:  "FROM /messages/* INTO $upstream",
		},
		{
			name:  "empty braces",
			input: "${}",
			want:  "${}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, u.ExpandVars(tt.input))
		})
	}
}

func TestInterpolate(t *testing.T) {
	env := mapLookup{
		"REGISTRY": "ghcr.io",
		"TAG":      "0.0.1",
		"QUOTED":   `say "hi"`,
	}

	tests := []struct {
		name    string
		input   string
		opts    InterpolateOptions
		want    string
		wantErr bool
	}{
		{
			name:  "resolves placeholders",
			input: "${REGISTRY}/app:${TAG}",
			want:  "ghcr.io/app:0.0.1",
		},
		{
			name:    "missing placeholder fails when strict",
			input:   "${REGISTRY}/app:${VERSION}",
			wantErr: true,
		},
		{
			name:  "missing placeholder becomes empty when tolerant",
			input: "${REGISTRY}/app:${VERSION}",
			opts:  InterpolateOptions{Tolerant: true},
			want:  "ghcr.io/app:",
		},
		{
			name:  "preserved prefix is kept verbatim",
			input: "${MODULES.filtermodule.amd64}",
			opts:  InterpolateOptions{Preserve: []string{"MODULES."}},
			want:  "${MODULES.filtermodule.amd64}",
		},
		{
			name:  "escape applied to resolved values",
			input: `{"msg": "${QUOTED}"}`,
			opts:  InterpolateOptions{Escape: JSONEscape},
			want:  `{"msg": "say \"hi\""}`,
		},
		{
			name:  "no placeholders",
			input: "plain",
			want:  "plain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := New(env, nil)
			got, err := u.Interpolate(tt.input, tt.opts)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrUnresolvedPlaceholder)
				assert.Contains(t, err.Error(), "${VERSION}")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInterpolate_TolerantWarns(t *testing.T) {
	oldNoColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = oldNoColor })

	var stdout bytes.Buffer
	u := New(mapLookup{}, ui.NewOutput(&stdout, &bytes.Buffer{}))

	got, err := u.Interpolate("v${VERSION}", InterpolateOptions{Tolerant: true})
	require.NoError(t, err)
	assert.Equal(t, "v", got)
	assert.Contains(t, stdout.String(), "${VERSION} is not set")
}

func TestGetFileContents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deployment.template.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"server": "${SERVER}"}`), 0644))

	u := New(mapLookup{"SERVER": "myregistry.azurecr.io"}, nil)

	raw, err := u.GetFileContents(path, false)
	require.NoError(t, err)
	assert.Equal(t, `{"server": "${SERVER}"}`, raw)

	expanded, err := u.GetFileContents(path, true)
	require.NoError(t, err)
	assert.Equal(t, `{"server": "myregistry.azurecr.io"}`, expanded)
}

func TestGetFileContents_Missing(t *testing.T) {
	u := New(mapLookup{}, nil)
	_, err := u.GetFileContents(filepath.Join(t.TempDir(), "missing.json"), true)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestJSONEscape(t *testing.T) {
	assert.Equal(t, `a\"b`, JSONEscape(`a"b`))
	assert.Equal(t, `line\nbreak`, JSONEscape("line\nbreak"))
	assert.Equal(t, `<tag>&`, JSONEscape(`<tag>&`))
	assert.Equal(t, `C:\\path`, JSONEscape(`C:\path`))
}
