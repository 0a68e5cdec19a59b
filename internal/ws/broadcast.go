package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/couchcryptid/quake-monitor/internal/domain"
	"github.com/couchcryptid/quake-monitor/internal/eew"
)

// DefaultRecentSize bounds the replay buffer served on /events/recent.
const DefaultRecentSize = 100

// Broadcaster turns accepted events and detections into stream payloads and
// keeps a bounded buffer of recent events for late subscribers.
type Broadcaster struct {
	hub *Hub
	log *slog.Logger

	mu     sync.Mutex
	recent []domain.QuakeEvent
	limit  int
}

// NewBroadcaster wires a broadcaster onto hub, retaining up to limit recent
// events. A non-positive limit falls back to DefaultRecentSize.
func NewBroadcaster(hub *Hub, logger *slog.Logger, limit int) *Broadcaster {
	if limit <= 0 {
		limit = DefaultRecentSize
	}
	return &Broadcaster{hub: hub, log: logger, limit: limit}
}

type streamMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// PublishEvents fans events out to stream subscribers and records them in the
// recent buffer. It never fails; marshal errors are logged and skipped.
func (b *Broadcaster) PublishEvents(_ context.Context, events []domain.QuakeEvent) error {
	for _, e := range events {
		payload, err := json.Marshal(streamMessage{Type: "event", Data: e})
		if err != nil {
			b.log.Error("marshal event for stream", "event_id", e.ID, "error", err)
			continue
		}
		b.remember(e)
		b.hub.Broadcast(payload)
	}
	return nil
}

// PublishDetections fans shaking detections out to stream subscribers.
func (b *Broadcaster) PublishDetections(_ context.Context, detections []eew.Detection) error {
	for _, d := range detections {
		payload, err := json.Marshal(streamMessage{Type: "detection", Data: d})
		if err != nil {
			b.log.Error("marshal detection for stream", "detection_id", d.ID, "error", err)
			continue
		}
		b.hub.Broadcast(payload)
	}
	return nil
}

func (b *Broadcaster) remember(e domain.QuakeEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.recent = append(b.recent, e)
	if len(b.recent) > b.limit {
		b.recent = b.recent[len(b.recent)-b.limit:]
	}
}

// Recent returns a copy of the retained events, newest last.
func (b *Broadcaster) Recent() []domain.QuakeEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.QuakeEvent, len(b.recent))
	copy(out, b.recent)
	return out
}
