// Package isospec resolves an abstract isolation specification against a
// concrete system description tree, producing one domain descriptor per
// subsystem: resolved CPU cluster masks, device access lists, and
// memory/sram regions, ready for serialization to domains.yaml.
package isospec

import (
	"encoding/json"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/madhavamd/lopper/internal/logging"
	"github.com/madhavamd/lopper/internal/tree"
)

// subsystemsPath is where subsystems live in the isolation spec
const subsystemsPath = "/design/subsystems"

// domainCompatible is the compatible string stamped on every output domain
const domainCompatible = "xilinx,subsystem"

// Resolver cross-references the isolation spec against the system
// description. Both input trees are read-only for the whole pass; Run
// produces a new domain tree and never mutates its inputs.
type Resolver struct {
	Spec *tree.Tree
	SDT  *tree.Tree
	Log  logr.Logger

	// CPUMap and MemoryMap override the built-in classifier tables when
	// non-nil. Order is priority: first match wins.
	CPUMap    []CPUMapping
	MemoryMap []MemoryMapping

	warnings []string
}

// Warnings returns the recoverable problems hit during the last Run, in
// occurrence order
func (r *Resolver) Warnings() []string {
	return r.warnings
}

// warn logs a recoverable problem and records it for the run report
func (r *Resolver) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.warnings = append(r.warnings, msg)
	r.Log.Info("warning: " + msg)
}

func (r *Resolver) cpuMap() []CPUMapping {
	if r.CPUMap != nil {
		return r.CPUMap
	}
	return DefaultCPUMap()
}

func (r *Resolver) memoryMap() []MemoryMapping {
	if r.MemoryMap != nil {
		return r.MemoryMap
	}
	return DefaultMemoryMap()
}

// Run resolves every subsystem under /design/subsystems in declaration
// order and returns the assembled domain tree rooted at /domains.
//
// A subsystem without CPUs is fine and only logged; a subsystem without an
// access node is a hard error, as is a same_as_default reference whose
// defaults cannot be located. Recoverable problems (unmapped names,
// unresolvable destinations) are collected as warnings and processing
// continues.
func (r *Resolver) Run() (*tree.Tree, error) {
	r.warnings = nil

	subsystems, ok := r.Spec.NodeAt(subsystemsPath)
	if !ok {
		return nil, fmt.Errorf("isolation spec has no %s node", subsystemsPath)
	}

	domains := tree.New()
	domainsRoot := domains.Root().AddChild(tree.NewNode("domains"))

	for _, sub := range subsystems.Children() {
		r.Log.V(logging.Debug).Info("processing subsystem", "name", sub.Name())

		node := domainsRoot.AddChild(tree.NewNode(sub.Name()))
		node.SetProperty("compatible", tree.ClassScalar, domainCompatible)

		var id int64
		if p, ok := sub.Property("id"); ok {
			id, _ = p.Int()
		}
		node.SetProperty("id", tree.ClassScalar, id)

		if cpus, ok := sub.Property("cpus"); ok {
			clusters := r.resolveCPUs(cpus)
			encoded, err := json.Marshal(clusters)
			if err != nil {
				return nil, fmt.Errorf("subsystem %s: encode cpus: %w", sub.Name(), err)
			}
			node.SetProperty("cpus", tree.ClassJSON, string(encoded))
		} else {
			r.Log.V(logging.Info).Info("no cpus in subsystem", "path", sub.Path())
		}

		access, ok := sub.Child("access")
		if !ok {
			return nil, fmt.Errorf("no access list in %s", sub.Path())
		}

		accessList, memoryList, sramList, err := r.resolveAccess(access)
		if err != nil {
			return nil, fmt.Errorf("subsystem %s: %w", sub.Name(), err)
		}

		if len(memoryList) > 0 {
			encoded, _ := json.Marshal(memoryList)
			node.SetProperty("memory", tree.ClassJSON, string(encoded))
		}
		if len(sramList) > 0 {
			encoded, _ := json.Marshal(sramList)
			node.SetProperty("sram", tree.ClassJSON, string(encoded))
		}
		encoded, err := json.Marshal(accessList)
		if err != nil {
			return nil, fmt.Errorf("subsystem %s: encode access: %w", sub.Name(), err)
		}
		node.SetProperty("access", tree.ClassJSON, string(encoded))
	}

	return domains, nil
}
