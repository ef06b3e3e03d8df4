package isospec

import (
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/require"

	"github.com/madhavamd/lopper/internal/codec"
	"github.com/madhavamd/lopper/internal/tree"
)

// mustTree parses a YAML document into a tree using the production loader
func mustTree(t *testing.T, doc string) *tree.Tree {
	t.Helper()
	tr, err := codec.NewYAMLLoader().Load(strings.NewReader(doc))
	require.NoError(t, err)
	return tr
}

// newTestResolver wires a resolver with a discarded logger
func newTestResolver(t *testing.T, specDoc, sdtDoc string) *Resolver {
	t.Helper()
	return &Resolver{
		Spec: mustTree(t, specDoc),
		SDT:  mustTree(t, sdtDoc),
		Log:  logr.Discard(),
	}
}

// testSDT is a minimal system description: an a72 cluster labeled APU with
// two cpu nodes, a serial device, and a DDR memory node
const testSDT = `
cpus_a72:
  label: APU
  cpu@0:
    compatible: arm,cortex-a72
  cpu@1:
    compatible: arm,cortex-a72
serial@ff000000:
  compatible: arm,pl011
memory@800000000:
  device_type: memory
  reg: [0x0, 0x80000000, 0x0, 0x10000000]
`
