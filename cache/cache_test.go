package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	t time.Time
}

func (f *fakeClock) now() time.Time { return f.t }

func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func TestCache_GetSet(t *testing.T) {
	c := New[string]()

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("a", "alpha")
	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "alpha", got)

	// Overwrite replaces wholesale.
	c.Set("a", "alpha2")
	got, ok = c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "alpha2", got)
	assert.Equal(t, 1, c.Len())
}

func TestCache_TTLExpiry(t *testing.T) {
	clock := newFakeClock()
	c := New[int](WithClock(clock.now), WithDefaultTTL(time.Minute))

	c.Set("k", 42)

	clock.advance(59 * time.Second)
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 42, got)

	// Exactly at the TTL boundary the entry is still visible
	// (visible iff age <= ttl).
	clock.advance(time.Second)
	_, ok = c.Get("k")
	assert.True(t, ok)

	clock.advance(time.Nanosecond)
	_, ok = c.Get("k")
	assert.False(t, ok)

	// Expired entry was removed synchronously by the failed Get.
	assert.Equal(t, 0, c.Len())
}

func TestCache_EvictsOldestInsertion(t *testing.T) {
	c := New[string](WithMaxSize(2))

	c.Set("A", "a")
	c.Set("B", "b")
	c.Set("C", "c")

	_, ok := c.Get("A")
	assert.False(t, ok, "A should be evicted")
	_, ok = c.Get("B")
	assert.True(t, ok)
	_, ok = c.Get("C")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestCache_GetDoesNotRefreshAge(t *testing.T) {
	c := New[string](WithMaxSize(2))

	c.Set("A", "a")
	c.Set("B", "b")

	// Reading A must not save it: eviction is by insertion time.
	_, ok := c.Get("A")
	require.True(t, ok)

	c.Set("C", "c")
	_, ok = c.Get("A")
	assert.False(t, ok, "A is still the oldest insertion and must be evicted")
	_, ok = c.Get("B")
	assert.True(t, ok)
}

func TestCache_OverwriteRefreshesInsertion(t *testing.T) {
	c := New[string](WithMaxSize(2))

	c.Set("A", "a")
	c.Set("B", "b")
	// Re-inserting A makes B the oldest.
	c.Set("A", "a2")

	c.Set("C", "c")
	_, ok := c.Get("B")
	assert.False(t, ok, "B should be evicted after A was re-inserted")
	got, ok := c.Get("A")
	require.True(t, ok)
	assert.Equal(t, "a2", got)
}

func TestCache_ExactlyOneEvictionPerSet(t *testing.T) {
	c := New[int](WithMaxSize(5))

	for i := 0; i < 5; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
	}
	require.Equal(t, 5, c.Len())

	c.Set("k5", 5)
	assert.Equal(t, 5, c.Len(), "inserting the maxSize+1'th entry evicts exactly one")

	_, ok := c.Get("k0")
	assert.False(t, ok, "the oldest insertion is the one evicted")
	for i := 1; i <= 5; i++ {
		_, ok := c.Get(fmt.Sprintf("k%d", i))
		assert.True(t, ok, "k%d should survive", i)
	}
}

func TestCache_InvalidatePrefix(t *testing.T) {
	c := New[int]()

	c.Set("page0|kind=church", 1)
	c.Set("page1|kind=church", 2)
	c.Set("page0|kind=chapel", 3)

	c.InvalidatePrefix("page0|")

	_, ok := c.Get("page0|kind=church")
	assert.False(t, ok)
	_, ok = c.Get("page0|kind=chapel")
	assert.False(t, ok)
	_, ok = c.Get("page1|kind=church")
	assert.True(t, ok)
}

func TestCache_Invalidate(t *testing.T) {
	c := New[int]()
	c.Set("a", 1)

	c.Invalidate("a")
	_, ok := c.Get("a")
	assert.False(t, ok)

	// No-op on absent key.
	c.Invalidate("missing")
}

func TestCache_Stats(t *testing.T) {
	clock := newFakeClock()
	c := New[int](WithClock(clock.now), WithDefaultTTL(time.Minute))

	c.Set("a", 1)
	c.Get("a")     // hit
	c.Get("b")     // miss
	c.Get("a")     // hit
	clock.advance(2 * time.Minute)
	c.Get("a") // expired: counts as a miss

	st := c.Stats()
	assert.Equal(t, 0, st.Size)
	assert.Equal(t, int64(2), st.Hits)
	assert.Equal(t, int64(2), st.Misses)
	assert.InDelta(t, 0.5, st.HitRate, 1e-9)

	// Counters survive Invalidate but not ClearAll.
	c.Set("a", 1)
	c.Invalidate("a")
	assert.Equal(t, int64(2), c.Stats().Hits)

	c.ClearAll()
	st = c.Stats()
	assert.Zero(t, st.Hits)
	assert.Zero(t, st.Misses)
	assert.Zero(t, st.Size)
	assert.Zero(t, st.HitRate)
}

func TestCache_SetTTLZeroFallsBackToDefault(t *testing.T) {
	clock := newFakeClock()
	c := New[int](WithClock(clock.now), WithDefaultTTL(time.Minute))

	c.SetTTL("a", 1, 0)
	clock.advance(30 * time.Second)
	_, ok := c.Get("a")
	assert.True(t, ok)
}
