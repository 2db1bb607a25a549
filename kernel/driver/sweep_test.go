package driver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/detkernel/kernel/archive"
	"github.com/inference-sim/detkernel/kernel/loader"
)

func TestSweep_MatchesSequentialRuns(t *testing.T) {
	// GIVEN the reference scenario and several seeds in scrambled order
	sc := referenceScenario(t)
	seeds := []int64{5, 1, 3, 2, 4}

	// WHEN they run in parallel
	results, err := Sweep(context.Background(), sc, seeds, 3, nil)
	require.NoError(t, err)

	// THEN results come back sorted by seed
	require.Len(t, results, len(seeds))
	for i, res := range results {
		assert.Equal(t, int64(i+1), res.Seed)
	}

	// AND each equals a sequential run with that seed
	for _, res := range results {
		d, err := NewDriver(sc.WithSeed(res.Seed), nil)
		require.NoError(t, err)
		want, err := d.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want.Digest, res.Digest, "seed %d", res.Seed)
		assert.Equal(t, want.Checksum, res.Checksum, "seed %d", res.Seed)
		assert.Equal(t, want.RunID, res.RunID, "seed %d", res.Seed)
	}
}

func TestSweep_SharedArchive(t *testing.T) {
	// GIVEN one archive shared by every run
	ctx := context.Background()
	a, err := archive.Open(ctx, ":memory:")
	require.NoError(t, err)
	defer a.Close()

	// WHEN three seeds sweep with unlimited parallelism
	results, err := Sweep(ctx, referenceScenario(t), []int64{1, 2, 3}, 0, nil, WithSnapshotSink(a))
	require.NoError(t, err)

	// THEN every run archived its three snapshots under its own id
	runs, err := a.Runs(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
	for _, res := range results {
		recs, err := a.List(ctx, res.RunID)
		require.NoError(t, err)
		require.Len(t, recs, 3)
		assert.Equal(t, res.Digest, recs[2].Digest)
	}
}

func TestSweep_LoaderFactoryPerRun(t *testing.T) {
	calls := 0
	factory := func() (*loader.Loader, error) {
		ld := loader.New()
		return ld, ld.Register("lab", loader.Table{"flat": func(int64) float64 { return 1 }})
	}
	counting := func() (*loader.Loader, error) {
		calls++
		return factory()
	}
	sc := mustParse(t, "seed: 0\nticks: 2\nsensors: [{name: f, ref: \"lab:flat\"}]\n")

	_, err := Sweep(context.Background(), sc, []int64{1, 2}, 1, counting)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestSweep_FailureCancelsAndReports(t *testing.T) {
	sc := mustParse(t, "seed: 0\nticks: 2\nsensors: [{name: x, ref: \"missing:thing\"}]\n")
	failing := func() (*loader.Loader, error) { return nil, errors.New("no loader") }

	_, err := Sweep(context.Background(), sc, []int64{1}, 1, failing)
	assert.ErrorContains(t, err, "no loader")

	_, err = Sweep(context.Background(), sc, []int64{1, 2}, 2, nil)
	assert.Error(t, err)
}

func TestSweep_SharedSink_DoesNotWriteIntoCallerOptions(t *testing.T) {
	// GIVEN options in a slice with spare capacity
	sink := &recordingSink{}
	opts := make([]Option, 1, 4)
	opts[0] = WithSnapshotSink(sink)

	// WHEN the sweep wraps the sink
	_, err := Sweep(context.Background(), referenceScenario(t), []int64{1}, 1, nil, opts...)
	require.NoError(t, err)

	// THEN nothing was appended into the caller's backing array
	assert.Nil(t, opts[:2][1])
	assert.Equal(t, []int64{4, 8, 12}, sink.ticks)
}
