package codec

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/madhavamd/lopper/internal/tree"
)

// YAMLWriter serializes a tree to YAML. Properties come before child nodes
// and both keep declaration order. JSON-class properties holding serialized
// JSON are emitted as structured YAML rather than opaque strings, so
// downstream consumers get parseable lists.
type YAMLWriter struct{}

// NewYAMLWriter creates a YAML writer
func NewYAMLWriter() *YAMLWriter {
	return &YAMLWriter{}
}

// Format returns the writer format identifier
func (w *YAMLWriter) Format() string {
	return "yaml"
}

// Write encodes the tree to the output stream
func (w *YAMLWriter) Write(t *tree.Tree, out io.Writer) error {
	root, err := mappingFor(t.Root())
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	defer enc.Close()

	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return nil
}

// mappingFor converts a tree node into a YAML mapping node
func mappingFor(n *tree.Node) (*yaml.Node, error) {
	m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}

	add := func(key string, val *yaml.Node) {
		k := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
		m.Content = append(m.Content, k, val)
	}

	if n.Label() != "" {
		add("label", &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: n.Label()})
	}

	for _, p := range n.Properties() {
		v, err := propertyNode(p)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", p.Name, err)
		}
		add(p.Name, v)
	}

	for _, c := range n.Children() {
		cm, err := mappingFor(c)
		if err != nil {
			return nil, err
		}
		add(c.Name(), cm)
	}

	return m, nil
}

// propertyNode converts a property value into a YAML node
func propertyNode(p *tree.Property) (*yaml.Node, error) {
	value := p.Value

	if p.Class == tree.ClassJSON {
		if s, ok := p.Value.(string); ok {
			parsed, err := decodeJSON(s)
			if err != nil {
				return nil, fmt.Errorf("embedded json: %w", err)
			}
			value = parsed
		}
	}

	var n yaml.Node
	if err := n.Encode(normalize(value)); err != nil {
		return nil, err
	}
	return &n, nil
}

// decodeJSON parses a serialized JSON value, keeping integers integral
func decodeJSON(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// normalize rewrites json.Number and Dict values into plain Go types the
// YAML encoder handles predictably
func normalize(v any) any {
	switch v := v.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case tree.Dict:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = normalize(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = normalize(e)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = normalize(e)
		}
		return out
	}
	return v
}
