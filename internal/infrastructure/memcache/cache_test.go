package memcache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_GetSet_RoundTrip(t *testing.T) {
	t.Parallel()
	c := New()
	c.Set(Key(PurposeQuote, "chain", "INFY"), 42, time.Minute)

	v, ok := c.Get("quote:chain:INFY")
	require.True(t, ok)
	require.Equal(t, 42, v)

	_, ok = c.Get("quote:chain:TCS")
	require.False(t, ok)
}

func Test_ExpiredEntryIsMissAndDeleted(t *testing.T) {
	t.Parallel()
	now := time.Now()
	c := New(WithNow(func() time.Time { return now }))
	c.Set("k", "v", time.Second)

	now = now.Add(2 * time.Second)
	_, ok := c.Get("k")
	require.False(t, ok)
	require.Zero(t, c.Len())
}

func Test_NonPositiveTTLNeverHits(t *testing.T) {
	t.Parallel()
	c := New()
	c.Set("k", "v", 0)

	_, ok := c.Get("k")
	require.False(t, ok)
}

func Test_FIFOEvictionAtCapacity(t *testing.T) {
	t.Parallel()
	c := New(WithCapacity(3, 3))
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)
	c.Set("c", 3, time.Minute)
	c.Set("d", 4, time.Minute)

	require.Equal(t, 3, c.Len())
	_, ok := c.Get("a")
	require.False(t, ok)
	_, ok = c.Get("d")
	require.True(t, ok)
}

func Test_SweepDropsExpiredBeforeEvicting(t *testing.T) {
	t.Parallel()
	now := time.Now()
	c := New(WithNow(func() time.Time { return now }), WithCapacity(10, 2))
	c.Set("old1", 1, time.Second)
	c.Set("old2", 2, time.Second)

	now = now.Add(2 * time.Second)
	// crossing the cleanup threshold sweeps the expired pair
	c.Set("fresh", 3, time.Minute)
	require.Equal(t, 1, c.Len())
	v, ok := c.Get("fresh")
	require.True(t, ok)
	require.Equal(t, 3, v)
}

func Test_ReplaceKeepsOriginalOrderSlot(t *testing.T) {
	t.Parallel()
	c := New(WithCapacity(2, 2))
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)
	c.Set("a", 10, time.Minute) // replace, not a new slot

	c.Set("c", 3, time.Minute)
	// "a" was inserted first, so it is the FIFO victim
	_, ok := c.Get("a")
	require.False(t, ok)
	_, ok = c.Get("b")
	require.True(t, ok)
}

func Test_CapacityBoundUnderChurn(t *testing.T) {
	t.Parallel()
	c := New(WithCapacity(8, 4))
	for i := 0; i < 100; i++ {
		c.Set(fmt.Sprintf("k%d", i), i, time.Minute)
	}
	require.LessOrEqual(t, c.Len(), 8)
}
