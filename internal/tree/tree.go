// Package tree provides the hierarchical node/property model shared by the
// isolation specification, the system description, and the resolved domain
// output. Trees are built once by a loader and treated as read-only during
// resolution; only the domain output tree is constructed incrementally.
package tree

import (
	"strings"
)

// PropClass tags how a property value should be interpreted
type PropClass string

const (
	// ClassScalar marks a plain string/integer value
	ClassScalar PropClass = "scalar"
	// ClassJSON marks a structured value (list of scalars or dicts) that
	// downstream consumers parse rather than print verbatim
	ClassJSON PropClass = "json"
)

// Dict is one structured element inside a JSON-class property
type Dict map[string]any

// String returns the string value for key, if present
func (d Dict) String(key string) (string, bool) {
	v, ok := d[key].(string)
	return v, ok
}

// Int returns the integer value for key, if present. YAML and JSON loaders
// normalize all numbers to int64.
func (d Dict) Int(key string) (int64, bool) {
	switch v := d[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	}
	return 0, false
}

// Bool returns the boolean value for key, if present
func (d Dict) Bool(key string) (bool, bool) {
	v, ok := d[key].(bool)
	return v, ok
}

// Property is a named, typed value attached to a node
type Property struct {
	Name  string
	Class PropClass
	Value any
}

// String returns the property value as a string, if it is one
func (p *Property) String() (string, bool) {
	v, ok := p.Value.(string)
	return v, ok
}

// Int returns the property value as an integer, if it is one
func (p *Property) Int() (int64, bool) {
	switch v := p.Value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	}
	return 0, false
}

// List returns the elements of a JSON-class property
func (p *Property) List() ([]any, bool) {
	v, ok := p.Value.([]any)
	return v, ok
}

// Strings returns the property value as a list of strings. A scalar string
// value is returned as a single-element list, matching how compatible-style
// properties are consumed.
func (p *Property) Strings() []string {
	switch v := p.Value.(type) {
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Ints returns the elements of a JSON-class property as integers
func (p *Property) Ints() ([]int64, bool) {
	elems, ok := p.Value.([]any)
	if !ok {
		return nil, false
	}
	out := make([]int64, 0, len(elems))
	for _, e := range elems {
		switch v := e.(type) {
		case int64:
			out = append(out, v)
		case int:
			out = append(out, int64(v))
		case float64:
			out = append(out, int64(v))
		default:
			return nil, false
		}
	}
	return out, true
}

// Dicts returns the structured elements of a JSON-class property, skipping
// any elements that are not dicts
func (p *Property) Dicts() []Dict {
	elems, ok := p.Value.([]any)
	if !ok {
		return nil
	}
	var out []Dict
	for _, e := range elems {
		if d, ok := e.(Dict); ok {
			out = append(out, d)
		} else if m, ok := e.(map[string]any); ok {
			out = append(out, Dict(m))
		}
	}
	return out
}

// Node is one element of a tree, with ordered children and properties
type Node struct {
	name     string
	label    string
	parent   *Node
	children []*Node
	props    []*Property
}

// NewNode creates a detached node
func NewNode(name string) *Node {
	return &Node{name: name}
}

// Name returns the node name (the last path segment)
func (n *Node) Name() string { return n.name }

// Label returns the node label, or "" if unset
func (n *Node) Label() string { return n.label }

// SetLabel sets the node label
func (n *Node) SetLabel(label string) { n.label = label }

// Parent returns the parent node, or nil for a root
func (n *Node) Parent() *Node { return n.parent }

// Children returns the child nodes in declaration order
func (n *Node) Children() []*Node { return n.children }

// Child returns the direct child with the given name
func (n *Node) Child(name string) (*Node, bool) {
	for _, c := range n.children {
		if c.name == name {
			return c, true
		}
	}
	return nil, false
}

// AddChild attaches a child and returns it
func (n *Node) AddChild(child *Node) *Node {
	child.parent = n
	n.children = append(n.children, child)
	return child
}

// Property returns the named property, or (nil, false) when absent. Absence
// is an ordinary condition, not an error.
func (n *Node) Property(name string) (*Property, bool) {
	for _, p := range n.props {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Properties returns all properties in declaration order
func (n *Node) Properties() []*Property { return n.props }

// SetProperty adds or replaces a property
func (n *Node) SetProperty(name string, class PropClass, value any) {
	for _, p := range n.props {
		if p.Name == name {
			p.Class = class
			p.Value = value
			return
		}
	}
	n.props = append(n.props, &Property{Name: name, Class: class, Value: value})
}

// Path returns the absolute path of the node, "/" separated
func (n *Node) Path() string {
	if n.parent == nil {
		return "/"
	}
	parts := []string{}
	for c := n; c.parent != nil; c = c.parent {
		parts = append(parts, c.name)
	}
	var b strings.Builder
	for i := len(parts) - 1; i >= 0; i-- {
		b.WriteByte('/')
		b.WriteString(parts[i])
	}
	return b.String()
}

// Tree holds a root node and the lookup operations resolution depends on
type Tree struct {
	root *Node
}

// New creates an empty tree with an unnamed root
func New() *Tree {
	return &Tree{root: &Node{}}
}

// Root returns the root node
func (t *Tree) Root() *Node { return t.root }

// Nodes returns every node in the tree in depth-first preorder, excluding
// the unnamed root
func (t *Tree) Nodes() []*Node {
	var out []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		for _, c := range n.children {
			out = append(out, c)
			walk(c)
		}
	}
	walk(t.root)
	return out
}

// NodeAt returns the node at an absolute path like
// "/design/subsystems/default"
func (t *Tree) NodeAt(path string) (*Node, bool) {
	cur := t.root
	for _, seg := range strings.Split(strings.Trim(path, "/"), "/") {
		if seg == "" {
			continue
		}
		next, ok := cur.Child(seg)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}
