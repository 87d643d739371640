package manifest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"gopkg.in/yaml.v3"
)

// Pretty returns the document indented with two spaces, keys in document order.
func (m *DeploymentManifest) Pretty() []byte {
	return pretty.PrettyOptions(m.raw, &pretty.Options{
		Width:  80,
		Indent: "  ",
	})
}

// YAML renders the document as YAML, keeping key order.
func (m *DeploymentManifest) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(toYAMLNode(gjson.ParseBytes(m.raw))); err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}

	return buf.Bytes(), nil
}

// toYAMLNode converts a JSON value to a YAML node tree.
func toYAMLNode(r gjson.Result) *yaml.Node {
	switch {
	case r.IsObject():
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		r.ForEach(func(key, value gjson.Result) bool {
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key.String()},
				toYAMLNode(value),
			)
			return true
		})
		return node
	case r.IsArray():
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		r.ForEach(func(_, value gjson.Result) bool {
			node.Content = append(node.Content, toYAMLNode(value))
			return true
		})
		return node
	}

	switch r.Type {
	case gjson.String:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: r.Str}
	case gjson.Number:
		tag := "!!int"
		if strings.ContainsAny(r.Raw, ".eE") {
			tag = "!!float"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: r.Raw}
	case gjson.True, gjson.False:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: r.Raw}
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}
