package ws

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/quake-monitor/internal/domain"
	"github.com/couchcryptid/quake-monitor/internal/eew"
)

type recordingSub struct {
	mu       sync.Mutex
	payloads [][]byte
	sendErr  error
	closed   bool
}

func (s *recordingSub) Send(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return s.sendErr
	}
	s.payloads = append(s.payloads, payload)
	return nil
}

func (s *recordingSub) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *recordingSub) received() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]byte, len(s.payloads))
	copy(out, s.payloads)
	return out
}

func (s *recordingSub) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub()
	a := &recordingSub{}
	b := &recordingSub{}
	hub.Register(a)
	hub.Register(b)

	hub.Broadcast([]byte("hello"))

	waitFor(t, func() bool { return len(a.received()) == 1 && len(b.received()) == 1 })
	assert.Equal(t, "hello", string(a.received()[0]))
	assert.Equal(t, "hello", string(b.received()[0]))
}

func TestHubDropsFailedSubscriber(t *testing.T) {
	hub := NewHub()
	ok := &recordingSub{}
	broken := &recordingSub{sendErr: errors.New("gone")}
	hub.Register(ok)
	hub.Register(broken)

	hub.Broadcast([]byte("one"))
	waitFor(t, func() bool { return broken.isClosed() })

	hub.Broadcast([]byte("two"))
	waitFor(t, func() bool { return len(ok.received()) == 2 })
	assert.Empty(t, broken.received())
}

func TestHubUnregister(t *testing.T) {
	hub := NewHub()
	sub := &recordingSub{}
	hub.Register(sub)
	hub.Unregister(sub)

	hub.Broadcast([]byte("after"))

	// Give the dispatch loop a moment; the unregistered client must stay silent.
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, sub.received())
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBroadcasterPublishEvents(t *testing.T) {
	hub := NewHub()
	sub := &recordingSub{}
	hub.Register(sub)

	b := NewBroadcaster(hub, discardLogger(), 10)
	mag := 5.1
	b.PublishEvents(context.Background(), []domain.QuakeEvent{{ID: "us7000abcd", Magnitude: &mag, Place: "offshore"}})

	waitFor(t, func() bool { return len(sub.received()) == 1 })

	var msg struct {
		Type string            `json:"type"`
		Data domain.QuakeEvent `json:"data"`
	}
	require.NoError(t, json.Unmarshal(sub.received()[0], &msg))
	assert.Equal(t, "event", msg.Type)
	assert.Equal(t, "us7000abcd", msg.Data.ID)
	require.NotNil(t, msg.Data.Magnitude)
	assert.InDelta(t, 5.1, *msg.Data.Magnitude, 1e-9)

	recent := b.Recent()
	require.Len(t, recent, 1)
	assert.Equal(t, "us7000abcd", recent[0].ID)
}

func TestBroadcasterPublishDetections(t *testing.T) {
	hub := NewHub()
	sub := &recordingSub{}
	hub.Register(sub)

	b := NewBroadcaster(hub, discardLogger(), 10)
	b.PublishDetections(context.Background(), []eew.Detection{{ID: "det-1", DeviceID: "station9", PGA: 12.5, AlertLevel: eew.LevelModerate}})

	waitFor(t, func() bool { return len(sub.received()) == 1 })

	var msg struct {
		Type string        `json:"type"`
		Data eew.Detection `json:"data"`
	}
	require.NoError(t, json.Unmarshal(sub.received()[0], &msg))
	assert.Equal(t, "detection", msg.Type)
	assert.Equal(t, "station9", msg.Data.DeviceID)
}

func TestBroadcasterRecentBounded(t *testing.T) {
	b := NewBroadcaster(NewHub(), discardLogger(), 3)
	for i := 0; i < 5; i++ {
		b.PublishEvents(context.Background(), []domain.QuakeEvent{{ID: string(rune('a' + i))}})
	}

	recent := b.Recent()
	require.Len(t, recent, 3)
	assert.Equal(t, "c", recent[0].ID)
	assert.Equal(t, "e", recent[2].ID)
}
