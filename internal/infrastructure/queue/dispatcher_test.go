package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDeleter struct {
	mu      sync.Mutex
	deleted []string
	failFor string
	done    chan struct{}
}

func (r *recordingDeleter) Delete(_ context.Context, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer func() { r.done <- struct{}{} }()
	if url == r.failFor {
		return errors.New("storage unavailable")
	}
	r.deleted = append(r.deleted, url)
	return nil
}

func waitFor(t *testing.T, done <-chan struct{}, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out after %d of %d jobs", i, n)
		}
	}
}

func TestDispatcher_ProcessesJobsInOrderPerProduct(t *testing.T) {
	deleter := &recordingDeleter{done: make(chan struct{}, 16)}
	d := NewDispatcher(3, deleter, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	d.Schedule("prod-1", "u1")
	d.Schedule("prod-1", "u2")
	d.Schedule("prod-1", "u3")
	waitFor(t, deleter.done, 3)

	cancel()
	d.Wait()

	assert.Equal(t, []string{"u1", "u2", "u3"}, deleter.deleted)
}

func TestDispatcher_FailureDoesNotStopWorker(t *testing.T) {
	deleter := &recordingDeleter{failFor: "bad", done: make(chan struct{}, 16)}
	d := NewDispatcher(1, deleter, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Schedule("prod-1", "bad")
	d.Schedule("prod-2", "good")
	waitFor(t, deleter.done, 2)

	deleter.mu.Lock()
	defer deleter.mu.Unlock()
	assert.Equal(t, []string{"good"}, deleter.deleted)
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(0, &recordingDeleter{}, zerolog.Nop())
	require.Len(t, d.workers, defaultWorkers)

	first := d.shardIndex("prod-42")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, d.shardIndex("prod-42"))
	}
	assert.GreaterOrEqual(t, first, 0)
	assert.Less(t, first, defaultWorkers)
}
