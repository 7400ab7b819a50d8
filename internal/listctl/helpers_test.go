// ABOUTME: Shared fixtures for listctl tests
// ABOUTME: A minimal entity type and scripted fetchers

package listctl

import (
	"context"
	"errors"
	"sync"
	"time"
)

type item struct {
	ID     string
	Status string
	Note   string
}

func (i item) EntityID() string     { return i.ID }
func (i item) EntityStatus() string { return i.Status }

type conflictErr struct{ msg string }

func (e *conflictErr) Error() string  { return e.msg }
func (e *conflictErr) Conflict() bool { return true }

var errBoom = errors.New("boom")

func items(statuses ...string) []item {
	out := make([]item, len(statuses))
	for i, s := range statuses {
		out[i] = item{ID: string(rune('a' + i)), Status: s}
	}
	return out
}

// stubFetcher returns a fixed page (or error) and records the calls it saw
type stubFetcher struct {
	mu      sync.Mutex
	page    Page[item]
	err     error
	calls   int
	filters []FilterSet
	windows []PageWindow
}

func (f *stubFetcher) Fetch(_ context.Context, filters FilterSet, window PageWindow) (Page[item], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.filters = append(f.filters, filters)
	f.windows = append(f.windows, window)
	if f.err != nil {
		return Page[item]{}, f.err
	}
	return f.page, nil
}

func (f *stubFetcher) set(page Page[item], err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.page = page
	f.err = err
}

// fakeClock is a settable time source
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func statusMatcher(e item, v string) bool {
	return e.Status == v
}

func setStatus(status string) func(item) item {
	return func(i item) item {
		i.Status = status
		return i
	}
}
