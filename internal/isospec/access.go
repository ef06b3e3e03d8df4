package isospec

import (
	"fmt"

	"github.com/madhavamd/lopper/internal/logging"
	"github.com/madhavamd/lopper/internal/tree"
)

// resolveAccess converts a subsystem's access node into three lists:
// device accesses, memory regions, and sram regions, concatenated across
// the access children in declaration order. Duplicate devices are kept;
// the spec repeating itself is the spec's business.
//
// Unlike CPU resolution, a destination that resolves to nothing only drops
// that one destination: single destinations are not structural, so the
// rest of the subsystem stays valid. The exception is a same_as_default
// reference whose defaults cannot be found, which is an error for the
// whole run.
func (r *Resolver) resolveAccess(access *tree.Node) ([]AccessEntry, []Region, []Region, error) {
	accessList := make([]AccessEntry, 0)
	var memoryList, sramList []Region

	for _, entry := range access.Children() {
		r.Log.V(logging.Debug).Info("processing access", "name", entry.Name(), "path", entry.Path())

		def := entry
		if _, ok := entry.Property("same_as_default"); ok {
			r.Log.V(logging.Debug).Info("access has default settings, looking up", "path", entry.Path())

			defaults, ok := DeviceDefaults(entry.Name(), r.Spec)
			if !ok {
				return nil, nil, nil, fmt.Errorf("access %s: cannot find default settings", entry.Name())
			}
			def = defaults
		}

		flags := DeviceFlags(def)

		var names []string
		if p, ok := def.Property("destinations"); ok {
			names = p.Strings()
		}

		for _, dest := range FindDestinations(names, r.Spec) {
			name, _ := dest.String("name")

			if addr, ok := dest.Int("addr"); ok {
				if node, found := r.SDT.AddrNode(uint64(addr)); found {
					r.Log.V(logging.Debug).Info("found node at address",
						"addr", addr, "node", node.Path())
					accessList = append(accessList, AccessEntry{
						Dev:   node.Name(),
						Flags: flags,
					})
					continue
				}
			}

			// not a device in the hardware tree; it may be a memory or
			// sram region instead
			kind, _ := ClassifyMemory(name, r.memoryMap())
			if kind == "" {
				r.warn("no node found for destination %s => %v", name, dest)
				continue
			}

			regions := r.resolveMemory(name, dest)
			switch kind {
			case KindMemory:
				memoryList = append(memoryList, regions...)
			case KindSRAM:
				sramList = append(sramList, regions...)
			}
		}
	}

	return accessList, memoryList, sramList, nil
}
