package async

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_ProcessesAllJobs(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]int{}

	pool := NewPool(3, 16, func(_ context.Context, path string) error {
		mu.Lock()
		seen[path]++
		mu.Unlock()
		return nil
	}, nil)

	pool.Start(context.Background())
	paths := []string{"/a.jpg", "/b.jpg", "/c.pdf", "/d.png"}
	for _, p := range paths {
		require.True(t, pool.Enqueue(p))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pool.Shutdown(ctx)

	mu.Lock()
	defer mu.Unlock()
	for _, p := range paths {
		assert.Equal(t, 1, seen[p], "path %s", p)
	}
}

func TestPool_DropsDuplicateInFlight(t *testing.T) {
	block := make(chan struct{})
	pool := NewPool(1, 8, func(_ context.Context, _ string) error {
		<-block
		return nil
	}, nil)
	pool.Start(context.Background())

	assert.True(t, pool.Enqueue("/same.jpg"))
	assert.False(t, pool.Enqueue("/same.jpg"))

	close(block)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pool.Shutdown(ctx)
}

func TestPool_FailuresDoNotStopWorkers(t *testing.T) {
	var mu sync.Mutex
	var processed []string

	pool := NewPool(1, 8, func(_ context.Context, path string) error {
		mu.Lock()
		processed = append(processed, path)
		mu.Unlock()
		if path == "/bad.jpg" {
			return errors.New("boom")
		}
		return nil
	}, nil)
	pool.Start(context.Background())

	require.True(t, pool.Enqueue("/bad.jpg"))
	require.True(t, pool.Enqueue("/good.jpg"))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pool.Shutdown(ctx)

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, processed, 2)
}

func TestPool_ReprocessAfterCompletion(t *testing.T) {
	pool := NewPool(1, 8, func(_ context.Context, _ string) error { return nil }, nil)
	pool.Start(context.Background())

	require.True(t, pool.Enqueue("/x.jpg"))

	// wait for the first run to finish, then the same path is accepted again
	require.Eventually(t, func() bool {
		return pool.Enqueue("/x.jpg")
	}, 2*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pool.Shutdown(ctx)
}
