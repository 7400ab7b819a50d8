// ABOUTME: Tests for the generic TTL cache
// ABOUTME: Covers expiry, per-entry TTL, purge and the background sweep

package cache

import (
	"testing"
	"time"
)

func TestCache_SetAndGet(t *testing.T) {
	c := New[string](1 * time.Second)
	defer c.Close()

	c.Set("key1", "value1")

	val, found := c.Get("key1")
	if !found {
		t.Error("Expected to find key1")
	}
	if val != "value1" {
		t.Errorf("Expected value1, got %v", val)
	}
}

func TestCache_Expiration(t *testing.T) {
	c := New[string](100 * time.Millisecond)
	defer c.Close()

	c.Set("key1", "value1")

	if _, found := c.Get("key1"); !found {
		t.Error("Expected to find key1 immediately")
	}

	time.Sleep(150 * time.Millisecond)

	if _, found := c.Get("key1"); found {
		t.Error("Expected key1 to be expired")
	}
}

func TestCache_SetWithTTL(t *testing.T) {
	c := New[int](time.Hour)
	defer c.Close()

	c.SetWithTTL("short", 1, 50*time.Millisecond)
	c.Set("long", 2)

	time.Sleep(100 * time.Millisecond)

	if _, found := c.Get("short"); found {
		t.Error("Expected short-lived entry to expire")
	}
	if v, found := c.Get("long"); !found || v != 2 {
		t.Errorf("Expected long-lived entry 2, got %v (found=%v)", v, found)
	}
}

func TestCache_ClearAndPurge(t *testing.T) {
	c := New[string](time.Minute)
	defer c.Close()

	c.Set("a", "1")
	c.Set("b", "2")
	c.Clear("a")

	if _, found := c.Get("a"); found {
		t.Error("Expected a to be cleared")
	}
	if c.Len() != 1 {
		t.Errorf("Expected 1 entry, got %d", c.Len())
	}

	c.Purge()
	if c.Len() != 0 {
		t.Errorf("Expected empty cache after Purge, got %d", c.Len())
	}
}

func TestCache_SweepRemovesExpired(t *testing.T) {
	c := NewWithCleanup[string](time.Minute, time.Hour)
	defer c.Close()

	c.SetWithTTL("old", "x", time.Millisecond)
	c.Set("fresh", "y")

	c.sweep(time.Now().Add(time.Second))

	if c.Len() != 1 {
		t.Errorf("Expected sweep to leave 1 entry, got %d", c.Len())
	}
}

func TestCache_CloseIsIdempotent(t *testing.T) {
	c := NewWithCleanup[string](time.Minute, 5*time.Millisecond)
	c.Close()
	c.Close()
}
