// Package dedup tracks recently seen event ids in a fixed-capacity ring so a
// long-running monitor can suppress repeat feed entries under bounded memory.
package dedup

import "fmt"

// DefaultCapacity sizes the ring for roughly 24 hours of feed data at peak
// activity.
const DefaultCapacity = 10_000

// Result classifies one CheckAndMark call.
type Result int

const (
	// New means the id has not been seen (or was evicted).
	New Result = iota
	// Updated means the id was seen before with an older update time.
	Updated
	// Duplicate means the id was seen before with the same or newer update time.
	Duplicate
)

// ShouldEmit reports whether the event should be passed downstream.
func (r Result) ShouldEmit() bool {
	return r == New || r == Updated
}

// IsUpdate reports whether the event is a revision of one already emitted.
func (r Result) IsUpdate() bool {
	return r == Updated
}

func (r Result) String() string {
	switch r {
	case New:
		return "new"
	case Updated:
		return "updated"
	case Duplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

type entry struct {
	id      string
	updated int64
}

// Ring is a bounded FIFO buffer of (id, last update time) pairs. When full,
// inserting a new id evicts the oldest entry regardless of its state, trading
// perfect deduplication for bounded memory: an evicted id that reappears is
// classified New again.
//
// A Ring is not safe for concurrent use; a single consumer owns it, or
// callers serialize access externally.
type Ring struct {
	entries []entry // circular, capacity fixed at construction
	head    int     // index of the oldest entry
	size    int

	totalSeen  uint64
	totalDupes uint64
}

// NewRing creates an empty ring. Capacity must be positive.
func NewRing(capacity int) (*Ring, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("dedup ring capacity must be positive, got %d", capacity)
	}
	return &Ring{entries: make([]entry, capacity)}, nil
}

// CheckAndMark records a sighting of id with the given update time
// (milliseconds since epoch) and classifies it.
//
// A linear scan over at most capacity entries; at the default capacity this
// is cheap relative to one feed poll.
func (r *Ring) CheckAndMark(id string, updated int64) Result {
	r.totalSeen++

	if pos, ok := r.find(id); ok {
		if updated > r.entries[pos].updated {
			// Refresh the stored time in place. Position is unchanged:
			// an update does not reset the entry's eviction order.
			r.entries[pos].updated = updated
			return Updated
		}
		r.totalDupes++
		return Duplicate
	}

	r.insert(id, updated)
	return New
}

func (r *Ring) find(id string) (int, bool) {
	for i := 0; i < r.size; i++ {
		pos := (r.head + i) % len(r.entries)
		if r.entries[pos].id == id {
			return pos, true
		}
	}
	return 0, false
}

func (r *Ring) insert(id string, updated int64) {
	if r.size == len(r.entries) {
		// At capacity: overwrite the oldest slot and advance the head.
		r.entries[r.head] = entry{id: id, updated: updated}
		r.head = (r.head + 1) % len(r.entries)
		return
	}
	pos := (r.head + r.size) % len(r.entries)
	r.entries[pos] = entry{id: id, updated: updated}
	r.size++
}

// Len returns the number of tracked ids.
func (r *Ring) Len() int {
	return r.size
}

// TotalSeen returns the total number of CheckAndMark calls.
func (r *Ring) TotalSeen() uint64 {
	return r.totalSeen
}

// TotalDupes returns the number of calls classified Duplicate.
func (r *Ring) TotalDupes() uint64 {
	return r.totalDupes
}

// DupeRate returns the fraction of calls classified Duplicate, 0.0 before
// any events have been seen.
func (r *Ring) DupeRate() float64 {
	if r.totalSeen == 0 {
		return 0.0
	}
	return float64(r.totalDupes) / float64(r.totalSeen)
}

// Clear empties the ring and zeroes both counters.
func (r *Ring) Clear() {
	for i := range r.entries {
		r.entries[i] = entry{}
	}
	r.head = 0
	r.size = 0
	r.totalSeen = 0
	r.totalDupes = 0
}
