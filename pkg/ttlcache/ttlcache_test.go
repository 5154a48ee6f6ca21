package ttlcache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"pgregory.net/rapid"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func TestEntriesExpireAfterTTL(t *testing.T) {
	clock := newClock()
	c := New[string, int](10, time.Minute, WithClock[string, int](clock.Now))

	c.Set("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("expected a=1, got %v %v", v, ok)
	}

	clock.Advance(time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Fatal("entry should have expired")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry should be dropped on read, len=%d", c.Len())
	}
}

func TestSweepRemovesOnlyExpired(t *testing.T) {
	clock := newClock()
	c := New[string, int](10, time.Minute, WithClock[string, int](clock.Now))

	c.Set("old", 1)
	clock.Advance(40 * time.Second)
	c.Set("new", 2)
	clock.Advance(30 * time.Second)

	if removed := c.Sweep(); removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if _, ok := c.Get("new"); !ok {
		t.Fatal("fresh entry should survive the sweep")
	}
}

func TestCapacityEvictsLeastRecentlyTouched(t *testing.T) {
	clock := newClock()
	c := New[string, int](2, time.Hour, WithClock[string, int](clock.Now))

	c.Set("a", 1)
	clock.Advance(time.Second)
	c.Set("b", 2)
	clock.Advance(time.Second)
	c.Get("a")
	clock.Advance(time.Second)
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatal("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a was touched and should remain")
	}
	if c.Len() != 2 {
		t.Fatalf("expected len 2, got %d", c.Len())
	}
}

func TestGetOrSetCreatesOnce(t *testing.T) {
	c := New[string, *int](4, time.Hour)
	calls := 0
	create := func() *int {
		calls++
		v := calls
		return &v
	}

	first := c.GetOrSet("k", create)
	second := c.GetOrSet("k", create)
	if first != second || calls != 1 {
		t.Fatalf("expected one creation, got %d", calls)
	}
}

func TestCloseStopsSweeper(t *testing.T) {
	c := New[string, int](4, time.Millisecond)
	c.StartSweeper(time.Millisecond)
	c.Close()
	c.Close()
}

func TestLenNeverExceedsCapacity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		capacity := rapid.IntRange(1, 8).Draw(t, "capacity")
		clock := newClock()
		c := New[string, int](capacity, time.Minute, WithClock[string, int](clock.Now))

		ops := rapid.SliceOfN(rapid.IntRange(0, 20), 1, 100).Draw(t, "keys")
		for i, k := range ops {
			c.Set(fmt.Sprintf("k%d", k), i)
			clock.Advance(time.Duration(rapid.IntRange(0, 30).Draw(t, "step")) * time.Second)
			if c.Len() > capacity {
				t.Fatalf("len %d exceeds capacity %d", c.Len(), capacity)
			}
		}
	})
}
