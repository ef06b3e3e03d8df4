package isospec

import (
	"fmt"
	"regexp"
)

// MemoryKind classifies a destination name as a memory or sram region
type MemoryKind string

const (
	// KindMemory routes a destination to the memory region list
	KindMemory MemoryKind = "memory"
	// KindSRAM routes a destination to the sram region list
	KindSRAM MemoryKind = "sram"
)

// CPUMapping maps a CPU name pattern from the isolation spec to a hardware
// compatible string
type CPUMapping struct {
	Pattern    *regexp.Regexp
	Compatible string
}

// MemoryMapping maps a memory region name pattern to its kind and, for
// memory regions, the hardware-tree lookup pattern
type MemoryMapping struct {
	Pattern *regexp.Regexp
	Kind    MemoryKind
	Lookup  string
}

// NewCPUMapping compiles a CPU mapping entry
func NewCPUMapping(pattern, compatible string) (CPUMapping, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return CPUMapping{}, fmt.Errorf("cpu pattern %q: %w", pattern, err)
	}
	return CPUMapping{Pattern: re, Compatible: compatible}, nil
}

// NewMemoryMapping compiles a memory mapping entry
func NewMemoryMapping(pattern string, kind MemoryKind, lookup string) (MemoryMapping, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return MemoryMapping{}, fmt.Errorf("memory pattern %q: %w", pattern, err)
	}
	return MemoryMapping{Pattern: re, Kind: kind, Lookup: lookup}, nil
}

// The mapping tables are ordered association lists, not maps: the first
// matching pattern wins, and extending hardware support means appending
// entries rather than changing the resolution algorithm.

// DefaultCPUMap returns the built-in CPU name mappings
func DefaultCPUMap() []CPUMapping {
	return []CPUMapping{
		{Pattern: regexp.MustCompile("APU*"), Compatible: "arm,cortex-a72"},
		{Pattern: regexp.MustCompile("RPU*"), Compatible: "arm,cortex-r5"},
	}
}

// DefaultMemoryMap returns the built-in memory region mappings
func DefaultMemoryMap() []MemoryMapping {
	return []MemoryMapping{
		{Pattern: regexp.MustCompile("DDR0"), Kind: KindMemory, Lookup: "memory@.*"},
		{Pattern: regexp.MustCompile("OCM.*"), Kind: KindSRAM},
	}
}

// ClassifyCPU resolves a CPU name to a hardware compatible string, or ""
// when no pattern matches
func ClassifyCPU(name string, table []CPUMapping) string {
	for _, m := range table {
		if m.Pattern.MatchString(name) {
			return m.Compatible
		}
	}
	return ""
}

// ClassifyMemory resolves a destination name to a memory kind and lookup
// pattern, or ("", "") when no pattern matches
func ClassifyMemory(name string, table []MemoryMapping) (MemoryKind, string) {
	for _, m := range table {
		if m.Pattern.MatchString(name) {
			return m.Kind, m.Lookup
		}
	}
	return "", ""
}
