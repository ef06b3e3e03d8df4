package isospec

import (
	"strings"

	"github.com/madhavamd/lopper/internal/logging"
	"github.com/madhavamd/lopper/internal/tree"
)

// reg values are decoded as address_cells=2 / size_cells=2; looking the
// cell counts up in the parent node is a possible refinement but 2/2 is
// the platform default.
const addressCells = 2

// resolveMemory turns one memory/sram destination into regions.
//
// The two kinds are deliberately asymmetric: memory regions are read from
// the hardware tree's reg properties, while sram regions are fabricated
// from the destination's own addr/size fields. An sram destination that
// does exist in the hardware tree currently produces nothing beyond a
// warning; reading its range out of the hardware node is an open gap
// upstream and is left that way.
func (r *Resolver) resolveMemory(name string, dest tree.Dict) []Region {
	kind, lookup := ClassifyMemory(name, r.memoryMap())

	var regions []Region
	switch kind {
	case KindMemory:
		r.Log.V(logging.Debug).Info("memory destination", "name", name, "lookup", lookup)

		candidates, err := r.SDT.NodesMatching(lookup)
		if err != nil {
			r.Log.V(logging.Info).Info("bad memory lookup pattern", "pattern", lookup, "error", err)
			return nil
		}

		for _, n := range candidates {
			dt, ok := n.Property("device_type")
			if !ok || !containsString(dt.Strings(), "memory") {
				continue
			}
			reg, ok := n.Property("reg")
			if !ok {
				continue
			}
			cells, ok := reg.Ints()
			if !ok || len(cells) <= addressCells {
				continue
			}

			start := tree.CellsToUint64(cells[:addressCells])
			size := tree.CellsToUint64(cells[addressCells:])
			r.Log.V(logging.Debug).Info("memory region", "node", n.Path(), "start", start, "size", size)

			regions = append(regions, Region{Start: start, Size: size})
		}

	case KindSRAM:
		addr, ok := dest.Int("addr")
		if !ok {
			r.warn("sram destination %s has no addr", name)
			return nil
		}

		if node, found := r.SDT.AddrNode(uint64(addr)); found {
			// TODO: read the range from the hardware node once a system
			// description exercising this shape exists
			r.warn("target node %s found, but no processing is available", node.Path())
			return nil
		}

		size, _ := dest.Int("size")
		r.Log.V(logging.Debug).Info("sram region", "start", addr, "size", size)
		regions = append(regions, Region{Start: uint64(addr), Size: uint64(size)})
	}

	return regions
}

// containsString reports whether any value in the list contains the
// substring, matching how device_type values are tested
func containsString(values []string, want string) bool {
	for _, v := range values {
		if strings.Contains(v, want) {
			return true
		}
	}
	return false
}
