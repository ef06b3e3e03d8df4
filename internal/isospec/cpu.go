package isospec

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/madhavamd/lopper/internal/logging"
	"github.com/madhavamd/lopper/internal/tree"
)

// cpuIndexPattern extracts the trailing CPU index from a spec name like
// "APU0". No digits means the entry covers the whole cluster.
var cpuIndexPattern = regexp.MustCompile(`(\d+)$`)

// allCPUsMask is the cluster mask used when an entry names no specific CPU
const allCPUsMask = 0xf

// resolveCPUs converts a subsystem's cpus property into resolved clusters,
// in input order.
//
// Unmapped CPU names only skip that entry. A compatible string that matches
// no hardware node, or a matching node with no parent cluster, voids the
// whole list: clusters are structural, so one miss means the hardware
// description does not line up with the spec. The nil return serializes as
// JSON null, distinguishing a voided list from an empty one.
func (r *Resolver) resolveCPUs(cpus *tree.Property) []Cluster {
	entries := cpus.Dicts()
	clusters := make([]Cluster, 0, len(entries))

	for _, cpu := range entries {
		name, ok := cpu.String("name")
		if !ok {
			r.warn("cpus entry %v has no name", cpu)
			continue
		}
		r.Log.V(logging.Debug).Info("processing cpu", "name", name)

		compat := ClassifyCPU(name, r.cpuMap())
		if compat == "" {
			r.warn("cpus entry %s has no device tree mapping", name)
			continue
		}

		cpuIndex := -1
		if m := cpuIndexPattern.FindStringSubmatch(name); m != nil {
			cpuIndex, _ = strconv.Atoi(m[1])
		}

		compatibleNodes := r.SDT.CompatibleNodes(compat)
		if len(compatibleNodes) == 0 {
			r.warn("no nodes compatible with %s found for %s", compat, name)
			return nil
		}

		// the cluster is the parent of any matching node, so the first
		// one will do
		cluster := compatibleNodes[0].Parent()
		if cluster == nil {
			r.warn("no cluster found for cpus, returning")
			return nil
		}
		clusterName := cluster.Label()
		if clusterName == "" {
			clusterName = cluster.Name()
		}

		var mask uint64
		if cpuIndex >= 0 {
			want := fmt.Sprintf("cpu@%d", cpuIndex)
			for _, n := range compatibleNodes {
				if n.Name() == want {
					mask = SetBit(mask, uint(cpuIndex))
				}
			}
		} else {
			mask = allCPUsMask
		}

		secure := false
		if s, ok := cpu.Bool("secure"); ok {
			secure = s
		}

		var modeMask uint64
		if mode, ok := cpu.String("mode"); ok && mode == "el" {
			// both bits together denote EL support, not independent flags
			modeMask = SetBit(modeMask, 0)
			modeMask = SetBit(modeMask, 1)
		}

		clusters = append(clusters, Cluster{
			Cluster: clusterName,
			CPUMask: hexMask(mask),
			Mode: Mode{
				Secure: secure,
				EL:     hexMask(modeMask),
			},
		})
	}

	r.Log.V(logging.Debug).Info("resolved cpus", "clusters", clusters)
	return clusters
}

// hexMask formats a mask the way the domain output expects it
func hexMask(v uint64) string {
	return fmt.Sprintf("%#x", v)
}
