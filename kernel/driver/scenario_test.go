package driver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/detkernel/internal/testutil"
)

func TestParseScenario_Defaults(t *testing.T) {
	sc, err := ParseScenario([]byte("ticks: 3\n"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), sc.Step)
	assert.Equal(t, DefaultDeviceBlocks, sc.Device.Blocks)
	assert.Equal(t, DefaultDeviceBlockSize, sc.Device.BlockSize)
	assert.Equal(t, "ring", sc.Topology.Kind)
}

func TestParseScenario_Reference(t *testing.T) {
	sc, err := ParseScenario([]byte(testutil.ReferenceScenarioYAML))
	require.NoError(t, err)
	assert.Equal(t, int64(7), sc.Seed)
	assert.Equal(t, []string{"power", "net", "db"}, sc.FaultDomains)
	require.Len(t, sc.Nodes, 3)
	require.NotNil(t, sc.Nodes[2].LeaveTick)
	assert.Equal(t, int64(9), *sc.Nodes[2].LeaveTick)
	assert.Nil(t, sc.Nodes[2].Trust)
}

func TestParseScenario_UnknownFieldRejected(t *testing.T) {
	_, err := ParseScenario([]byte("ticks: 3\nsnapshot_evry: 2\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "snapshot_evry")
}

func TestScenario_Validate(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"zero ticks", "ticks: 0\n", "ticks must be >= 1"},
		{"negative step", "ticks: 2\nstep: -1\n", "step must be >= 1"},
		{"negative snapshot_every", "ticks: 2\nsnapshot_every: -3\n", "snapshot_every"},
		{"bad geometry", "ticks: 2\ndevice: {blocks: -1, block_size: 4}\n", "device geometry"},
		{"domains and ref", "ticks: 2\nfault_domains: [a]\nfault_domains_ref: builtin:domains.edge\n", "mutually exclusive"},
		{"unknown topology", "ticks: 2\ntopology: {kind: mesh}\n", "unknown topology"},
		{"unknown trace", "ticks: 2\ntrace: verbose\n", "unknown trace level"},
		{"duplicate node", "ticks: 2\nnodes: [{id: a}, {id: a}]\n", "duplicate id"},
		{"leave before join", "ticks: 2\nnodes: [{id: a, join_tick: 3, leave_tick: 3}]\n", "must be after join_tick"},
		{"kind and ref", "ticks: 2\nsensors: [{name: s, kind: constant, ref: \"x:y\", params: {value: 1}}]\n", "exactly one of kind or ref"},
		{"unknown kind", "ticks: 2\nsensors: [{name: s, kind: wobble}]\n", "unknown kind"},
		{"missing param", "ticks: 2\nsensors: [{name: s, kind: sine, params: {amplitude: 1, offset: 0}}]\n", "requires param \"period\""},
		{"square period", "ticks: 2\nsensors: [{name: s, kind: square, params: {high: 1, low: 0, period: 1}}]\n", "integer >= 2"},
		{"empty sequence", "ticks: 2\nsensors: [{name: s, kind: sequence}]\n", "requires values"},
		{"fault without event", "ticks: 2\nfaults: [{tick: 1}]\n", "event is required"},
		{"script reuses builtin", "ticks: 2\nscripts: [{namespace: builtin, source: x}]\n", "already in use"},
		{"script path and source", "ticks: 2\nscripts: [{namespace: p, path: a.go, source: x}]\n", "exactly one of path or source"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tc.yaml))
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tc.wantErr), "error %q does not mention %q", err, tc.wantErr)
		})
	}
}

func TestLoadScenario_ResolvesScriptPathsRelativeToFile(t *testing.T) {
	path := testutil.WriteTempFile(t, "scenario.yaml", "ticks: 1\nscripts: [{namespace: p, path: plugins/p.go}]\n")
	sc, err := LoadScenario(path)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(sc.Scripts[0].Path, "plugins/p.go"))
	assert.NotEqual(t, "plugins/p.go", sc.Scripts[0].Path)
}

func TestWithSeed_DoesNotMutate(t *testing.T) {
	sc := referenceScenario(t)
	cp := sc.WithSeed(42)
	assert.Equal(t, int64(7), sc.Seed)
	assert.Equal(t, int64(42), cp.Seed)
}
