package tree

import (
	"regexp"
	"strconv"
	"strings"
)

// NodesMatching returns every node whose absolute path matches the given
// regular expression, in preorder
func (t *Tree) NodesMatching(pattern string) ([]*Node, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	var out []*Node
	for _, n := range t.Nodes() {
		if re.MatchString(n.Path()) {
			out = append(out, n)
		}
	}
	return out, nil
}

// CompatibleNodes returns every node whose "compatible" property contains a
// value matching the given string, in preorder
func (t *Tree) CompatibleNodes(compat string) []*Node {
	var out []*Node
	for _, n := range t.Nodes() {
		p, ok := n.Property("compatible")
		if !ok {
			continue
		}
		for _, v := range p.Strings() {
			if strings.Contains(v, compat) {
				out = append(out, n)
				break
			}
		}
	}
	return out
}

// AddrNode returns the node whose unit address matches addr. The unit
// address is the hex suffix of the node name after "@"; nodes without a
// reg property fall back to it, nodes with one are matched on the first
// address_cells=2 encoded address.
func (t *Tree) AddrNode(addr uint64) (*Node, bool) {
	for _, n := range t.Nodes() {
		if reg, ok := n.Property("reg"); ok {
			if cells, ok := reg.Ints(); ok && len(cells) >= 2 {
				if CellsToUint64(cells[:2]) == addr {
					return n, true
				}
			}
		}
		if ua, ok := unitAddress(n.name); ok && ua == addr {
			return n, true
		}
	}
	return nil, false
}

// unitAddress parses the hex unit address from a node name like
// "serial@ff000000"
func unitAddress(name string) (uint64, bool) {
	i := strings.IndexByte(name, '@')
	if i < 0 {
		return 0, false
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(name[i+1:], "0x"), 16, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
