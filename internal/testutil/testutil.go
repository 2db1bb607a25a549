// Package testutil provides shared test infrastructure for the kernel
// packages: float comparison, temp scenario files, and a small reference
// scenario used by driver, cmd and archive tests.
package testutil

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// WriteTempFile writes content to name inside a per-test directory and
// returns the full path.
func WriteTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

// ReferenceScenarioYAML is a small scenario touching every component:
// joins and a leave, a ring topology, faults in every domain (one matching
// none), a seeded noise sensor and periodic snapshots.
const ReferenceScenarioYAML = `
seed: 7
ticks: 12
step: 1
snapshot_every: 4
device:
  blocks: 16
  block_size: 128
fault_domains: [power, net, db]
topology:
  kind: ring
nodes:
  - id: n2
    trust: 95
  - id: n1
    trust: 90
  - id: n3
    join_tick: 3
    leave_tick: 9
sensors:
  - name: temp
    kind: sine
    params: {amplitude: 5, period: 8, offset: 20}
  - name: load
    kind: noise
    params: {amplitude: 1, offset: 0.5}
  - name: ramp
    kind: linear
    params: {slope: 0.25, offset: 1}
faults:
  - tick: 2
    event: net-timeout n1
  - tick: 5
    event: db-lock n2
  - tick: 5
    event: disk-smart n3
`
