package isospec

import (
	"github.com/madhavamd/lopper/internal/tree"
)

// defaultAccessPath is the one level of indirection a same_as_default
// reference resolves through. Deeper chains are not followed.
const defaultAccessPath = "/default_settings/subsystems"

// FindDestinations returns every destination record matching the requested
// names. Records live in JSON-class "destinations" properties anywhere in
// the spec tree; elements that are not dicts (such as a subsystem's own
// name list) are skipped. Multiple hits for one name are all returned,
// ambiguity is not an error at this layer.
func FindDestinations(names []string, spec *tree.Tree) []tree.Dict {
	var nodes []*tree.Node
	for _, n := range spec.Nodes() {
		if p, ok := n.Property("destinations"); ok && p.Class == tree.ClassJSON {
			nodes = append(nodes, n)
		}
	}

	var out []tree.Dict
	for _, name := range names {
		for _, n := range nodes {
			p, _ := n.Property("destinations")
			for _, d := range p.Dicts() {
				if dn, ok := d.String("name"); ok && dn == name {
					out = append(out, d)
				}
			}
		}
	}
	return out
}

// DeviceDefaults looks up the default access settings for a device under
// /default_settings/subsystems/default/access/<device>. A missing segment
// anywhere on the path yields (nil, false); whether that is fatal is the
// caller's policy.
func DeviceDefaults(device string, spec *tree.Tree) (*tree.Node, bool) {
	subsystems, ok := spec.NodeAt(defaultAccessPath)
	if !ok {
		return nil, false
	}

	var defaultSub *tree.Node
	for _, s := range subsystems.Children() {
		if s.Name() == "default" {
			defaultSub = s
		}
	}
	if defaultSub == nil {
		return nil, false
	}

	access, ok := defaultSub.Child("access")
	if !ok {
		return nil, false
	}
	return access.Child(device)
}

// DeviceFlags extracts the flag set of an access definition. Flags come in
// two representations: a "flags" property whose dict entries are the flag
// names, or a "flags" subnode whose properties are the flag names. A
// present, non-empty flag means true; false is never encoded explicitly.
func DeviceFlags(def *tree.Node) map[string]bool {
	flags := map[string]bool{}

	if p, ok := def.Property("flags"); ok {
		switch v := p.Value.(type) {
		case tree.Dict:
			for name, val := range v {
				if truthy(val) {
					flags[name] = true
				}
			}
		case map[string]any:
			for name, val := range v {
				if truthy(val) {
					flags[name] = true
				}
			}
		}
		return flags
	}

	if sub, ok := def.Child("flags"); ok {
		for _, p := range sub.Properties() {
			if truthy(p.Value) {
				flags[p.Name] = true
			}
		}
	}
	return flags
}

// truthy reports whether a flag value counts as set. Only an explicit empty
// string reads as unset, mirroring how absent flags are simply not listed.
func truthy(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s != ""
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return true
}
