package isospec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madhavamd/lopper/internal/tree"
)

// cpusProp builds the JSON-class property a subsystem's cpus entry carries
func cpusProp(entries ...tree.Dict) *tree.Property {
	list := make([]any, len(entries))
	for i, e := range entries {
		list[i] = e
	}
	return &tree.Property{Name: "cpus", Class: tree.ClassJSON, Value: list}
}

func TestResolveCPUsIndexedEntries(t *testing.T) {
	r := newTestResolver(t, `design: {}`, testSDT)

	clusters := r.resolveCPUs(cpusProp(
		tree.Dict{"name": "APU0"},
		tree.Dict{"name": "APU1", "secure": true},
	))

	require.Len(t, clusters, 2)
	assert.Equal(t, Cluster{
		Cluster: "APU",
		CPUMask: "0x1",
		Mode:    Mode{Secure: false, EL: "0x0"},
	}, clusters[0])
	assert.Equal(t, Cluster{
		Cluster: "APU",
		CPUMask: "0x2",
		Mode:    Mode{Secure: true, EL: "0x0"},
	}, clusters[1])
	assert.Empty(t, r.Warnings())
}

func TestResolveCPUsNoIndexMeansAll(t *testing.T) {
	r := newTestResolver(t, `design: {}`, testSDT)

	clusters := r.resolveCPUs(cpusProp(tree.Dict{"name": "APU"}))

	require.Len(t, clusters, 1)
	assert.Equal(t, "0xf", clusters[0].CPUMask)
}

func TestResolveCPUsMissingCPUNode(t *testing.T) {
	r := newTestResolver(t, `design: {}`, testSDT)

	// cpu@7 does not exist under the cluster, so no bit may be set
	clusters := r.resolveCPUs(cpusProp(tree.Dict{"name": "APU7"}))

	require.Len(t, clusters, 1)
	assert.Equal(t, "0x0", clusters[0].CPUMask)
}

func TestResolveCPUsELMode(t *testing.T) {
	r := newTestResolver(t, `design: {}`, testSDT)

	clusters := r.resolveCPUs(cpusProp(
		tree.Dict{"name": "APU0", "mode": "el"},
		tree.Dict{"name": "APU1"},
	))

	require.Len(t, clusters, 2)
	assert.Equal(t, "0x3", clusters[0].Mode.EL, "el mode sets exactly bits 0 and 1")
	assert.Equal(t, "0x0", clusters[1].Mode.EL, "absent mode leaves the mask at zero")
}

func TestResolveCPUsUnmappedNameSkips(t *testing.T) {
	r := newTestResolver(t, `design: {}`, testSDT)

	clusters := r.resolveCPUs(cpusProp(
		tree.Dict{"name": "GPU0"},
		tree.Dict{"name": "APU0"},
	))

	// the unmapped entry is skipped with a warning; the rest survives
	require.Len(t, clusters, 1)
	assert.Equal(t, "APU", clusters[0].Cluster)
	require.Len(t, r.Warnings(), 1)
	assert.Contains(t, r.Warnings()[0], "GPU0")
}

func TestResolveCPUsClusterNotFoundVoidsList(t *testing.T) {
	// an RPU entry maps to cortex-r5, which this system does not have
	r := newTestResolver(t, `design: {}`, testSDT)

	clusters := r.resolveCPUs(cpusProp(
		tree.Dict{"name": "APU0"},
		tree.Dict{"name": "RPU0"},
	))

	assert.Nil(t, clusters, "a structural miss voids the whole CPU list")
	assert.NotEmpty(t, r.Warnings())
}

func TestResolveCPUsClusterLabelFallsBackToName(t *testing.T) {
	sdt := `
unlabeled_cluster:
  cpu@0:
    compatible: arm,cortex-a72
`
	r := newTestResolver(t, `design: {}`, sdt)

	clusters := r.resolveCPUs(cpusProp(tree.Dict{"name": "APU0"}))

	require.Len(t, clusters, 1)
	assert.Equal(t, "unlabeled_cluster", clusters[0].Cluster)
}

func TestResolveCPUsEntryWithoutName(t *testing.T) {
	r := newTestResolver(t, `design: {}`, testSDT)

	clusters := r.resolveCPUs(cpusProp(tree.Dict{"secure": true}))

	assert.Empty(t, clusters)
	assert.NotEmpty(t, r.Warnings())
}
