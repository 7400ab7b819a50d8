// ABOUTME: Scoped fixed-interval polling with guaranteed release
// ABOUTME: The timer goroutine exits on Stop or context cancellation, whichever comes first

package listctl

import (
	"context"
	"sync"
	"time"
)

// DefaultPollInterval matches the dashboard server list refresh cadence
const DefaultPollInterval = 30 * time.Second

// Poller calls a function on a fixed interval until stopped
type Poller struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Poll starts calling fn every interval. fn receives the poller's context, which is
// cancelled by Stop. Calls never overlap.
func Poll(ctx context.Context, interval time.Duration, fn func(context.Context)) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ctx, cancel := context.WithCancel(ctx)
	p := &Poller{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(p.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fn(ctx)
			}
		}
	}()
	return p
}

// Stop cancels the poller and waits for its goroutine to exit. Safe to call repeatedly.
func (p *Poller) Stop() {
	p.once.Do(p.cancel)
	<-p.done
}

// Done is closed once the poller goroutine has exited
func (p *Poller) Done() <-chan struct{} {
	return p.done
}
