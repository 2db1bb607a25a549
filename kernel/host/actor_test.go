package host

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/inference-sim/detkernel/kernel"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestActor_SerializesClusterMutations(t *testing.T) {
	// GIVEN a cluster shared by many goroutines through one actor
	a := NewActor()
	defer a.Close()
	cluster := kernel.NewClusterState()

	// WHEN every goroutine adds its own node
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('A'+i%26)) + string(rune('a'+i/26))
			err := a.Do(context.Background(), func() error {
				cluster.AddNode(id, i)
				return nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	// THEN every mutation landed (the race detector would flag unsynchronized access)
	var n int
	require.NoError(t, a.Do(context.Background(), func() error {
		n = cluster.Len()
		return nil
	}))
	assert.Equal(t, 50, n)
}

func TestActor_PropagatesErrors(t *testing.T) {
	a := NewActor()
	defer a.Close()
	dev, err := kernel.NewBlockDevice(1, 4)
	require.NoError(t, err)

	err = a.Do(context.Background(), func() error {
		return dev.Write(3, []byte("abcd"))
	})
	assert.ErrorIs(t, err, kernel.ErrOutOfRange)
}

func TestActor_RecoversPanics(t *testing.T) {
	a := NewActor()
	defer a.Close()

	err := a.Do(context.Background(), func() error { panic("boom") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	// The actor keeps serving after a panic.
	assert.NoError(t, a.Do(context.Background(), func() error { return nil }))
}

func TestActor_RunsInSubmissionOrder(t *testing.T) {
	a := NewActor()
	defer a.Close()
	var order []int
	for i := 0; i < 10; i++ {
		i := i
		require.NoError(t, a.Do(context.Background(), func() error {
			order = append(order, i)
			return nil
		}))
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, order)
}

func TestActor_CanceledContext_NotRun(t *testing.T) {
	a := NewActor()
	defer a.Close()

	// Occupy the actor so the next submission cannot be accepted.
	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = a.Do(context.Background(), func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ran := false
	err := a.Do(ctx, func() error {
		ran = true
		return nil
	})
	close(release)

	assert.True(t, errors.Is(err, context.Canceled))
	require.NoError(t, a.Do(context.Background(), func() error { return nil }))
	assert.False(t, ran)
}

func TestActor_Close_IdempotentAndRejectsLaterWork(t *testing.T) {
	a := NewActor()
	a.Close()
	a.Close()

	err := a.Do(context.Background(), func() error { return nil })
	assert.ErrorIs(t, err, ErrClosed)
}
