package codec

import (
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/madhavamd/lopper/internal/tree"
)

// YAMLLoader builds a tree from a YAML document. Document order is
// preserved, which matters because subsystems and access entries are
// processed in declaration order.
type YAMLLoader struct{}

// NewYAMLLoader creates a YAML loader
func NewYAMLLoader() *YAMLLoader {
	return &YAMLLoader{}
}

// Format returns the loader format identifier
func (l *YAMLLoader) Format() string {
	return "yaml"
}

// Load parses YAML into a tree
func (l *YAMLLoader) Load(r io.Reader) (*tree.Tree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	t := tree.New()
	if doc.Kind == 0 || len(doc.Content) == 0 {
		// empty document
		return t, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("top level must be a mapping, got %s", kindName(root.Kind))
	}

	if err := buildNode(t.Root(), root); err != nil {
		return nil, err
	}
	return t, nil
}

// buildNode fills a tree node from a YAML mapping
func buildNode(n *tree.Node, m *yaml.Node) error {
	for i := 0; i+1 < len(m.Content); i += 2 {
		key := m.Content[i].Value
		val := m.Content[i+1]

		switch val.Kind {
		case yaml.MappingNode:
			child := n.AddChild(tree.NewNode(key))
			if err := buildNode(child, val); err != nil {
				return err
			}
		case yaml.SequenceNode:
			list, err := sequenceValue(val)
			if err != nil {
				return fmt.Errorf("property %s: %w", key, err)
			}
			n.SetProperty(key, tree.ClassJSON, list)
		case yaml.ScalarNode:
			v, err := scalarValue(val)
			if err != nil {
				return fmt.Errorf("property %s: %w", key, err)
			}
			if key == "label" {
				if s, ok := v.(string); ok {
					n.SetLabel(s)
					continue
				}
			}
			n.SetProperty(key, tree.ClassScalar, v)
		case yaml.AliasNode:
			return fmt.Errorf("property %s: aliases are not supported", key)
		}
	}
	return nil
}

// sequenceValue converts a YAML sequence to the []any form stored in
// JSON-class properties
func sequenceValue(seq *yaml.Node) ([]any, error) {
	out := make([]any, 0, len(seq.Content))
	for _, e := range seq.Content {
		switch e.Kind {
		case yaml.ScalarNode:
			v, err := scalarValue(e)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		case yaml.MappingNode:
			d, err := dictValue(e)
			if err != nil {
				return nil, err
			}
			out = append(out, d)
		case yaml.SequenceNode:
			nested, err := sequenceValue(e)
			if err != nil {
				return nil, err
			}
			out = append(out, nested)
		default:
			return nil, fmt.Errorf("unsupported sequence element kind %s", kindName(e.Kind))
		}
	}
	return out, nil
}

// dictValue converts a YAML mapping inside a sequence to a Dict
func dictValue(m *yaml.Node) (tree.Dict, error) {
	d := tree.Dict{}
	for i := 0; i+1 < len(m.Content); i += 2 {
		key := m.Content[i].Value
		val := m.Content[i+1]
		switch val.Kind {
		case yaml.ScalarNode:
			v, err := scalarValue(val)
			if err != nil {
				return nil, err
			}
			d[key] = v
		case yaml.SequenceNode:
			v, err := sequenceValue(val)
			if err != nil {
				return nil, err
			}
			d[key] = v
		case yaml.MappingNode:
			v, err := dictValue(val)
			if err != nil {
				return nil, err
			}
			d[key] = v
		default:
			return nil, fmt.Errorf("unsupported mapping value kind %s", kindName(val.Kind))
		}
	}
	return d, nil
}

// scalarValue decodes a YAML scalar into string, int64, bool, or nil
func scalarValue(s *yaml.Node) (any, error) {
	switch s.Tag {
	case "!!int":
		v, err := strconv.ParseInt(s.Value, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q: %w", s.Value, err)
		}
		return v, nil
	case "!!float":
		v, err := strconv.ParseFloat(s.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float %q: %w", s.Value, err)
		}
		return v, nil
	case "!!bool":
		return s.Value == "true" || s.Value == "True", nil
	case "!!null":
		return nil, nil
	default:
		return s.Value, nil
	}
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown"
}
