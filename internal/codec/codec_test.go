package codec

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/madhavamd/lopper/internal/tree"
)

const specDoc = `
design:
  destinations:
    - name: serial0
      addr: 0xff000000
    - name: DDR0
      addr: 0x0
  subsystems:
    A53:
      id: 1
      cpus:
        - name: APU0
        - name: APU1
          secure: true
      access:
        serial0:
          same_as_default: true
`

func TestYAMLLoaderShape(t *testing.T) {
	tr, err := NewYAMLLoader().Load(strings.NewReader(specDoc))
	require.NoError(t, err)

	// mappings become nodes
	sub, ok := tr.NodeAt("/design/subsystems/A53")
	require.True(t, ok)

	// scalars become scalar properties
	id, ok := sub.Property("id")
	require.True(t, ok)
	assert.Equal(t, tree.ClassScalar, id.Class)
	v, ok := id.Int()
	require.True(t, ok)
	assert.Equal(t, int64(1), v)

	// sequences become JSON-class properties
	cpus, ok := sub.Property("cpus")
	require.True(t, ok)
	assert.Equal(t, tree.ClassJSON, cpus.Class)
	dicts := cpus.Dicts()
	require.Len(t, dicts, 2)
	name, _ := dicts[0].String("name")
	assert.Equal(t, "APU0", name)
	secure, ok := dicts[1].Bool("secure")
	require.True(t, ok)
	assert.True(t, secure)

	// hex integers decode as integers
	design, ok := tr.NodeAt("/design")
	require.True(t, ok)
	dests, ok := design.Property("destinations")
	require.True(t, ok)
	addr, ok := dests.Dicts()[0].Int("addr")
	require.True(t, ok)
	assert.Equal(t, int64(0xff000000), addr)
}

func TestYAMLLoaderLabel(t *testing.T) {
	doc := `
cpus_a72:
  label: APU
  cpu@0:
    compatible: arm,cortex-a72
`
	tr, err := NewYAMLLoader().Load(strings.NewReader(doc))
	require.NoError(t, err)

	cluster, ok := tr.NodeAt("/cpus_a72")
	require.True(t, ok)
	assert.Equal(t, "APU", cluster.Label())
	_, ok = cluster.Property("label")
	assert.False(t, ok, "label must not remain a property")
}

func TestYAMLLoaderOrder(t *testing.T) {
	doc := `
subsystems:
  zeta:
    id: 1
  alpha:
    id: 2
  mid:
    id: 3
`
	tr, err := NewYAMLLoader().Load(strings.NewReader(doc))
	require.NoError(t, err)

	subs, ok := tr.NodeAt("/subsystems")
	require.True(t, ok)
	var names []string
	for _, c := range subs.Children() {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, names, "document order must be preserved")
}

func TestJSONLoader(t *testing.T) {
	doc := `{"design": {"subsystems": {"A53": {"id": 1, "cpus": [{"name": "APU0"}]}}}}`
	tr, err := NewJSONLoader().Load(strings.NewReader(doc))
	require.NoError(t, err)

	sub, ok := tr.NodeAt("/design/subsystems/A53")
	require.True(t, ok)
	cpus, ok := sub.Property("cpus")
	require.True(t, ok)
	assert.Equal(t, tree.ClassJSON, cpus.Class)
	require.Len(t, cpus.Dicts(), 1)
}

func TestYAMLWriterStructuredOutput(t *testing.T) {
	tr := tree.New()
	domains := tr.Root().AddChild(tree.NewNode("domains"))
	a53 := domains.AddChild(tree.NewNode("A53"))
	a53.SetProperty("compatible", tree.ClassScalar, "xilinx,subsystem")
	a53.SetProperty("id", tree.ClassScalar, int64(1))
	a53.SetProperty("cpus", tree.ClassJSON,
		`[{"cluster": "APU", "cpumask": "0x3", "mode": {"secure": false, "el": "0x0"}}]`)
	a53.SetProperty("memory", tree.ClassJSON, `[{"start": 2147483648, "size": 268435456}]`)

	var buf bytes.Buffer
	require.NoError(t, NewYAMLWriter().Write(tr, &buf))

	// the embedded JSON must come back out as structured YAML
	var parsed struct {
		Domains map[string]struct {
			Compatible string `yaml:"compatible"`
			ID         int64  `yaml:"id"`
			CPUs       []struct {
				Cluster string `yaml:"cluster"`
				CPUMask string `yaml:"cpumask"`
			} `yaml:"cpus"`
			Memory []struct {
				Start int64 `yaml:"start"`
				Size  int64 `yaml:"size"`
			} `yaml:"memory"`
		} `yaml:"domains"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &parsed))

	dom := parsed.Domains["A53"]
	assert.Equal(t, "xilinx,subsystem", dom.Compatible)
	assert.Equal(t, int64(1), dom.ID)
	require.Len(t, dom.CPUs, 1)
	assert.Equal(t, "APU", dom.CPUs[0].Cluster)
	assert.Equal(t, "0x3", dom.CPUs[0].CPUMask)
	require.Len(t, dom.Memory, 1)
	assert.Equal(t, int64(0x80000000), dom.Memory[0].Start)
	assert.Equal(t, int64(0x10000000), dom.Memory[0].Size)

	// integers must not degrade to floats on the way through
	assert.NotContains(t, buf.String(), "e+")
}

func TestLoadWriteRoundTrip(t *testing.T) {
	tr, err := NewYAMLLoader().Load(strings.NewReader(specDoc))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewYAMLWriter().Write(tr, &buf))

	back, err := NewYAMLLoader().Load(&buf)
	require.NoError(t, err)

	sub, ok := back.NodeAt("/design/subsystems/A53")
	require.True(t, ok)
	cpus, ok := sub.Property("cpus")
	require.True(t, ok)
	assert.Len(t, cpus.Dicts(), 2)
}

func TestWriteFileOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "domains.yaml")

	tr := tree.New()
	tr.Root().AddChild(tree.NewNode("domains"))

	require.NoError(t, WriteFile(tr, path, false))
	assert.Error(t, WriteFile(tr, path, false), "existing file without overwrite must fail")
	require.NoError(t, WriteFile(tr, path, true))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "domains")
}

func TestLoaderForPath(t *testing.T) {
	assert.Equal(t, "json", LoaderForPath("spec.json").Format())
	assert.Equal(t, "yaml", LoaderForPath("spec.yaml").Format())
	assert.Equal(t, "yaml", LoaderForPath("spec").Format())
}
