package mongodb

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBootstrapRunsOnceForConcurrentCallers(t *testing.T) {
	b := newBootstrap()
	var runs atomic.Int32
	release := make(chan struct{})

	task := func(context.Context) error {
		runs.Add(1)
		<-release
		return nil
	}

	var wg sync.WaitGroup
	errs := make([]error, 16)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = b.Wait(context.Background(), time.Second, task)
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, runs.Load())
	for _, err := range errs {
		assert.NoError(t, err)
	}

	require.NoError(t, b.Wait(context.Background(), time.Second, task))
	assert.EqualValues(t, 1, runs.Load())
}

func TestBootstrapFailureIsShared(t *testing.T) {
	b := newBootstrap()
	boom := errors.New("createIndexes failed")
	var runs atomic.Int32

	task := func(context.Context) error {
		runs.Add(1)
		return boom
	}

	assert.ErrorIs(t, b.Wait(context.Background(), time.Second, task), boom)
	assert.ErrorIs(t, b.Wait(context.Background(), time.Second, task), boom)
	assert.EqualValues(t, 1, runs.Load())

	done, err := b.Finished()
	assert.True(t, done)
	assert.ErrorIs(t, err, boom)
}

func TestBootstrapWaiterCancellationLeavesRunAlive(t *testing.T) {
	b := newBootstrap()
	release := make(chan struct{})
	var sawCancel atomic.Bool

	task := func(ctx context.Context) error {
		select {
		case <-release:
			return nil
		case <-ctx.Done():
			sawCancel.Store(true)
			return ctx.Err()
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := b.Wait(ctx, time.Second, task)
	assert.ErrorIs(t, err, context.Canceled)

	done, _ := b.Finished()
	assert.False(t, done)

	close(release)
	require.NoError(t, b.Wait(context.Background(), time.Second, task))
	assert.False(t, sawCancel.Load())
}

func TestBootstrapTimeoutBoundsRun(t *testing.T) {
	b := newBootstrap()
	task := func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}

	err := b.Wait(context.Background(), 10*time.Millisecond, task)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
