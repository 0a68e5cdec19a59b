package dedup

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRing(t *testing.T) {
	t.Run("zero capacity rejected", func(t *testing.T) {
		_, err := NewRing(0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "capacity must be positive")
	})

	t.Run("negative capacity rejected", func(t *testing.T) {
		_, err := NewRing(-1)
		require.Error(t, err)
	})
}

func TestCheckAndMark(t *testing.T) {
	t.Run("new events", func(t *testing.T) {
		ring, err := NewRing(100)
		require.NoError(t, err)

		assert.Equal(t, New, ring.CheckAndMark("event1", 1000))
		assert.Equal(t, New, ring.CheckAndMark("event2", 2000))
		assert.Equal(t, New, ring.CheckAndMark("event3", 3000))

		assert.Equal(t, 3, ring.Len())
		assert.Equal(t, uint64(3), ring.TotalSeen())
		assert.Equal(t, uint64(0), ring.TotalDupes())
	})

	t.Run("duplicates", func(t *testing.T) {
		ring, err := NewRing(100)
		require.NoError(t, err)

		assert.Equal(t, New, ring.CheckAndMark("event1", 1000))
		assert.Equal(t, Duplicate, ring.CheckAndMark("event1", 1000))
		assert.Equal(t, Duplicate, ring.CheckAndMark("event1", 1000))

		assert.Equal(t, 1, ring.Len())
		assert.Equal(t, uint64(2), ring.TotalDupes())
	})

	t.Run("updates", func(t *testing.T) {
		ring, err := NewRing(100)
		require.NoError(t, err)

		assert.Equal(t, New, ring.CheckAndMark("event1", 1000))
		assert.Equal(t, Updated, ring.CheckAndMark("event1", 2000))
		assert.Equal(t, Updated, ring.CheckAndMark("event1", 3000))

		// Older or equal timestamps after an update are duplicates.
		assert.Equal(t, Duplicate, ring.CheckAndMark("event1", 2000))
		assert.Equal(t, Duplicate, ring.CheckAndMark("event1", 3000))

		assert.Equal(t, 1, ring.Len())
	})
}

func TestBoundedCapacity(t *testing.T) {
	ring, err := NewRing(3)
	require.NoError(t, err)

	ring.CheckAndMark("event1", 1000)
	ring.CheckAndMark("event2", 2000)
	ring.CheckAndMark("event3", 3000)
	assert.Equal(t, 3, ring.Len())

	// Fourth distinct id evicts the oldest.
	ring.CheckAndMark("event4", 4000)
	assert.Equal(t, 3, ring.Len())

	// event1 was evicted and comes back as New; reinserting it evicts
	// event2, the oldest survivor. event3 and event4 remain tracked.
	assert.Equal(t, New, ring.CheckAndMark("event1", 1000))
	assert.Equal(t, Duplicate, ring.CheckAndMark("event3", 3000))
	assert.Equal(t, Updated, ring.CheckAndMark("event4", 5000))
}

func TestEvictionOrderUnchangedByUpdate(t *testing.T) {
	ring, err := NewRing(2)
	require.NoError(t, err)

	ring.CheckAndMark("a", 1000)
	ring.CheckAndMark("b", 1000)

	// Updating "a" must not refresh its recency: it is still the oldest.
	assert.Equal(t, Updated, ring.CheckAndMark("a", 2000))

	ring.CheckAndMark("c", 1000) // evicts "a", not "b"
	assert.Equal(t, New, ring.CheckAndMark("a", 1000))
	// "b" was evicted by "a" reentering; "c" survives.
	assert.Equal(t, Duplicate, ring.CheckAndMark("c", 1000))
}

func TestDupeRate(t *testing.T) {
	ring, err := NewRing(100)
	require.NoError(t, err)

	assert.InDelta(t, 0.0, ring.DupeRate(), 1e-9) // fresh ring

	ring.CheckAndMark("event1", 1000)
	ring.CheckAndMark("event1", 1000) // dupe
	ring.CheckAndMark("event1", 1000) // dupe
	ring.CheckAndMark("event2", 2000)

	assert.InDelta(t, 0.5, ring.DupeRate(), 0.01)
}

func TestClear(t *testing.T) {
	ring, err := NewRing(10)
	require.NoError(t, err)

	ring.CheckAndMark("event1", 1000)
	ring.CheckAndMark("event1", 1000)
	require.Equal(t, 1, ring.Len())

	ring.Clear()
	assert.Equal(t, 0, ring.Len())
	assert.Equal(t, uint64(0), ring.TotalSeen())
	assert.Equal(t, uint64(0), ring.TotalDupes())
	assert.InDelta(t, 0.0, ring.DupeRate(), 1e-9)

	// Previously seen ids are New again after a clear.
	assert.Equal(t, New, ring.CheckAndMark("event1", 1000))
}

func TestResultClassification(t *testing.T) {
	assert.True(t, New.ShouldEmit())
	assert.True(t, Updated.ShouldEmit())
	assert.False(t, Duplicate.ShouldEmit())

	assert.False(t, New.IsUpdate())
	assert.True(t, Updated.IsUpdate())
	assert.False(t, Duplicate.IsUpdate())
}

func TestWrapAroundLongStream(t *testing.T) {
	ring, err := NewRing(5)
	require.NoError(t, err)

	// Push many more distinct ids than capacity; size stays bounded and the
	// most recent five are still tracked.
	for i := 0; i < 100; i++ {
		res := ring.CheckAndMark(fmt.Sprintf("ev-%d", i), int64(i))
		require.Equal(t, New, res)
		require.LessOrEqual(t, ring.Len(), 5)
	}
	for i := 95; i < 100; i++ {
		assert.Equal(t, Duplicate, ring.CheckAndMark(fmt.Sprintf("ev-%d", i), int64(i)))
	}
	assert.Equal(t, New, ring.CheckAndMark("ev-94", 94))
}
