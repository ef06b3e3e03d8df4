package isospec

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyCPU(t *testing.T) {
	table := DefaultCPUMap()

	tests := []struct {
		name string
		want string
	}{
		{"APU0", "arm,cortex-a72"},
		{"APU1", "arm,cortex-a72"},
		{"APU", "arm,cortex-a72"},
		{"RPU0", "arm,cortex-r5"},
		{"GPU0", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyCPU(tt.name, table), "ClassifyCPU(%q)", tt.name)
	}
}

func TestClassifyCPUFirstMatchWins(t *testing.T) {
	specific, err := NewCPUMapping("APU0", "vendor,special-core")
	require.NoError(t, err)
	table := append([]CPUMapping{specific}, DefaultCPUMap()...)

	assert.Equal(t, "vendor,special-core", ClassifyCPU("APU0", table))
	assert.Equal(t, "arm,cortex-a72", ClassifyCPU("APU1", table))
}

func TestClassifyMemory(t *testing.T) {
	table := DefaultMemoryMap()

	tests := []struct {
		name       string
		wantKind   MemoryKind
		wantLookup string
	}{
		{"DDR0", KindMemory, "memory@.*"},
		{"OCM0", KindSRAM, ""},
		{"OCM1", KindSRAM, ""},
		{"QSPI", "", ""},
	}

	for _, tt := range tests {
		kind, lookup := ClassifyMemory(tt.name, table)
		assert.Equal(t, tt.wantKind, kind, "ClassifyMemory(%q) kind", tt.name)
		assert.Equal(t, tt.wantLookup, lookup, "ClassifyMemory(%q) lookup", tt.name)
	}
}

func TestNewMappingRejectsBadPattern(t *testing.T) {
	_, err := NewCPUMapping("([", "x")
	assert.Error(t, err)
	_, err = NewMemoryMapping("([", KindMemory, "")
	assert.Error(t, err)
}

func TestDefaultTablesAreOrdered(t *testing.T) {
	// sanity check that the tables are association lists, not maps
	table := []MemoryMapping{
		{Pattern: regexp.MustCompile("OCM.*"), Kind: KindSRAM},
		{Pattern: regexp.MustCompile("OCM0"), Kind: KindMemory, Lookup: "never-reached"},
	}
	kind, _ := ClassifyMemory("OCM0", table)
	assert.Equal(t, KindSRAM, kind)
}
