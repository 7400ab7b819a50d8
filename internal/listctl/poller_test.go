// ABOUTME: Tests for the scoped poller
// ABOUTME: Ensures ticks fire, Stop releases the goroutine, and cancellation is honoured

package listctl

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPollerTicksUntilStopped(t *testing.T) {
	var calls atomic.Int32
	p := Poll(context.Background(), 5*time.Millisecond, func(context.Context) {
		calls.Add(1)
	})

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)

	p.Stop()
	stopped := calls.Load()
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, stopped, calls.Load(), "no ticks after Stop returns")

	// second Stop is a no-op
	p.Stop()
}

func TestPollerReleasedOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := Poll(ctx, time.Hour, func(context.Context) {})

	cancel()
	select {
	case <-p.Done():
	case <-time.After(time.Second):
		t.Fatal("poller goroutine did not exit after cancel")
	}
}

func TestPollerRefreshesController(t *testing.T) {
	f := &stubFetcher{page: Page[item]{Items: items("online"), Total: 1}}
	c := New[item](f, NewSchema(), WithPageSize[item](0))

	p := Poll(context.Background(), 5*time.Millisecond, func(ctx context.Context) {
		_ = c.Reload(ctx)
	})
	defer p.Stop()

	require.Eventually(t, func() bool { return c.View().HasData }, time.Second, time.Millisecond)
}
