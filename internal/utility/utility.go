// Package utility provides placeholder expansion and file helpers shared by
// edgedev components.
package utility

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/cameronsjo/edgedev/internal/ui"
)

// ErrUnresolvedPlaceholder indicates a ${NAME} placeholder had no value.
var ErrUnresolvedPlaceholder = errors.New("unresolved placeholder")

var (
	// envPattern matches ${NAME} references. Bare $name is left alone:
	// manifests use it for twin keys ($edgeHub) and route sinks ($upstream).
	envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

	// placeholderPattern matches ${NAME} placeholders, including dotted names.
	placeholderPattern = regexp.MustCompile(`\$\{([\w.\-]+)\}`)
)

// Lookup resolves configuration values by name.
type Lookup interface {
	Get(key string) (string, bool)
}

// Utility bundles helpers that need access to configuration and output.
type Utility struct {
	env Lookup
	out *ui.Output
}

// New creates a Utility. out may be nil to suppress warnings.
func New(env Lookup, out *ui.Output) *Utility {
	return &Utility{env: env, out: out}
}

// GetFileContents reads the file at path, optionally expanding environment references.
func (u *Utility) GetFileContents(path string, expand bool) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	content := string(data)
	if expand {
		content = u.ExpandVars(content)
	}
	return content, nil
}

// ExpandVars replaces ${NAME} with configured values.
// References with no value are left unchanged.
func (u *Utility) ExpandVars(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(match string) string {
		value, ok := u.env.Get(match[2 : len(match)-1])
		if !ok {
			return match
		}
		return value
	})
}

// InterpolateOptions controls how Interpolate treats placeholders.
type InterpolateOptions struct {
	// Tolerant substitutes an empty string for unresolved placeholders
	// instead of returning ErrUnresolvedPlaceholder.
	Tolerant bool

	// Preserve lists name prefixes left verbatim, e.g. "MODULES.".
	Preserve []string

	// Escape transforms resolved values before substitution.
	Escape func(string) string
}

// Interpolate replaces ${NAME} placeholders with configured values.
func (u *Utility) Interpolate(s string, opts InterpolateOptions) (string, error) {
	var missing []string

	result := placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]

		for _, prefix := range opts.Preserve {
			if strings.HasPrefix(name, prefix) {
				return match
			}
		}

		value, ok := u.env.Get(name)
		if !ok {
			missing = append(missing, name)
			return ""
		}

		if opts.Escape != nil {
			return opts.Escape(value)
		}
		return value
	})

	if len(missing) == 0 {
		return result, nil
	}

	if !opts.Tolerant {
		return "", fmt.Errorf("%w: ${%s}", ErrUnresolvedPlaceholder, strings.Join(missing, "}, ${"))
	}

	if u.out != nil {
		for _, name := range missing {
			u.out.Warning("${%s} is not set, using an empty value", name)
		}
	}
	return result, nil
}

// JSONEscape escapes s for use inside a JSON string literal.
func JSONEscape(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return s
	}

	// Encode wraps the value in quotes and appends a newline.
	out := strings.TrimSuffix(buf.String(), "\n")
	return out[1 : len(out)-1]
}
