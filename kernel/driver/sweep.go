package driver

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/inference-sim/detkernel/kernel/host"
	"github.com/inference-sim/detkernel/kernel/loader"
)

// LoaderFactory builds a fresh Loader for one run. Loaders are not shared
// between concurrent runs.
type LoaderFactory func() (*loader.Loader, error)

// Sweep runs sc once per seed, at most parallel runs at a time (parallel <= 0
// means unlimited), and returns results sorted by seed. Every run owns its
// components, so each result equals that of a sequential run with the same
// seed. newLoader may be nil. A snapshot sink passed through opts is shared:
// saves from all runs are funneled through one goroutine.
// The first failing run cancels the rest.
func Sweep(ctx context.Context, sc *Scenario, seeds []int64, parallel int, newLoader LoaderFactory, opts ...Option) ([]*Result, error) {
	var set settings
	for _, opt := range opts {
		opt(&set)
	}
	if set.sink != nil {
		actor := host.NewActor()
		defer actor.Close()
		opts = append(append([]Option(nil), opts...), WithSnapshotSink(&serializedSink{actor: actor, sink: set.sink}))
	}

	results := make([]*Result, len(seeds))
	g, gctx := errgroup.WithContext(ctx)
	if parallel > 0 {
		g.SetLimit(parallel)
	}
	for i, seed := range seeds {
		i, seed := i, seed
		g.Go(func() error {
			var ld *loader.Loader
			if newLoader != nil {
				var err error
				if ld, err = newLoader(); err != nil {
					return fmt.Errorf("seed %d: %w", seed, err)
				}
			}
			d, err := NewDriver(sc.WithSeed(seed), ld, opts...)
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			res, err := d.Run(gctx)
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sortResults(results)
	logrus.Infof("sweep: %d runs finished", len(results))
	return results, nil
}

// serializedSink forwards saves to sink one at a time through an actor.
type serializedSink struct {
	actor *host.Actor
	sink  SnapshotSink
}

func (s *serializedSink) Save(ctx context.Context, runID string, tick int64, digest string, data []byte) error {
	return s.actor.Do(ctx, func() error {
		return s.sink.Save(ctx, runID, tick, digest, data)
	})
}
