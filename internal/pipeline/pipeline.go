package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/quake-monitor/internal/dedup"
	"github.com/couchcryptid/quake-monitor/internal/domain"
	"github.com/couchcryptid/quake-monitor/internal/filter"
	"github.com/couchcryptid/quake-monitor/internal/observability"
)

// MinPollInterval is the floor for the feed polling cadence. The USGS feeds
// regenerate every minute; polling faster only burns quota.
const MinPollInterval = 30 * time.Second

// FeedFetcher retrieves the current earthquake summary feed.
type FeedFetcher interface {
	FetchFeed(ctx context.Context) (*domain.FeatureCollection, error)
}

// EventPublisher delivers accepted events downstream.
type EventPublisher interface {
	PublishEvents(ctx context.Context, events []domain.QuakeEvent) error
}

// Monitor orchestrates the poll-filter-dedup-publish loop.
type Monitor struct {
	fetcher    FeedFetcher
	filter     *filter.EventFilter
	ring       *dedup.Ring
	publishers []EventPublisher
	logger     *slog.Logger
	metrics    *observability.Metrics
	clock      clockwork.Clock
	interval   time.Duration
	ready      atomic.Bool
}

// NewMonitor creates a Monitor polling at the given interval. Intervals below
// MinPollInterval are clamped with a warning. Publishers are invoked in order
// for every batch of accepted events.
func NewMonitor(fetcher FeedFetcher, f *filter.EventFilter, ring *dedup.Ring, publishers []EventPublisher, logger *slog.Logger, metrics *observability.Metrics, interval time.Duration) *Monitor {
	if interval < MinPollInterval {
		logger.Warn("poll interval below minimum, clamping",
			"requested", interval, "minimum", MinPollInterval)
		interval = MinPollInterval
	}
	return &Monitor{
		fetcher:    fetcher,
		filter:     f,
		ring:       ring,
		publishers: publishers,
		logger:     logger,
		metrics:    metrics,
		clock:      clockwork.NewRealClock(),
		interval:   interval,
	}
}

// SetClock swaps the time source. Tests use a fake clock to step through
// polls without sleeping.
func (m *Monitor) SetClock(c clockwork.Clock) {
	m.clock = c
}

// CheckReadiness returns nil once the monitor has completed at least one
// successful poll.
func (m *Monitor) CheckReadiness(_ context.Context) error {
	if !m.ready.Load() {
		return errors.New("monitor has not completed a poll yet")
	}
	return nil
}

// Run executes the polling loop until the context is cancelled. The first
// poll happens immediately; failures retry with exponential backoff rather
// than waiting out a full interval.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Info("monitor started", "poll_interval", m.interval)
	m.metrics.MonitorRunning.Set(1)
	defer m.metrics.MonitorRunning.Set(0)

	// Backoff starts at 200ms, doubles each retry, caps at 5s.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		if err := m.poll(ctx); err != nil {
			if ctx.Err() != nil {
				m.logger.Info("monitor stopping", "reason", ctx.Err())
				return nil
			}
			m.logger.Error("poll failed", "error", err, "retry_in", backoff)
			m.metrics.FetchErrors.Inc()
			if !m.sleep(ctx, backoff) {
				return nil
			}
			backoff = nextBackoff(backoff, maxBackoff)
			continue
		}

		backoff = 200 * time.Millisecond
		m.ready.Store(true)

		if !m.sleep(ctx, m.interval) {
			m.logger.Info("monitor stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// poll runs one fetch-filter-dedup-publish cycle.
//
// Delivery is at-most-once: the ring marks events during selection, before
// publishing, so events in a batch whose publish fails are classified
// Duplicate on the next poll and are not retried for any publisher.
func (m *Monitor) poll(ctx context.Context) error {
	start := m.clock.Now()

	feed, err := m.fetcher.FetchFeed(ctx)
	if err != nil {
		return err
	}

	m.metrics.EventsFetched.Add(float64(len(feed.Features)))

	accepted := m.selectEvents(feed.Features)

	m.metrics.DedupRingSize.Set(float64(m.ring.Len()))
	m.metrics.DedupRate.Set(m.ring.DupeRate())

	if len(accepted) > 0 {
		for _, pub := range m.publishers {
			if err := pub.PublishEvents(ctx, accepted); err != nil {
				return err
			}
		}
		m.metrics.EventsEmitted.Add(float64(len(accepted)))
		m.logger.Info("poll complete",
			"fetched", len(feed.Features),
			"accepted", len(accepted),
			"ring_size", m.ring.Len())
	}

	m.metrics.PollDuration.Observe(m.clock.Since(start).Seconds())
	return nil
}

// selectEvents applies validation, attribute filtering, and deduplication to
// the fetched features and flattens the survivors.
func (m *Monitor) selectEvents(features []domain.Feature) []domain.QuakeEvent {
	var accepted []domain.QuakeEvent
	for i := range features {
		f := &features[i]
		if err := f.Validate(); err != nil {
			m.logger.Warn("skipping malformed feature", "error", err)
			continue
		}
		if !m.filter.Matches(f) {
			m.metrics.EventsFiltered.Inc()
			continue
		}

		res := m.ring.CheckAndMark(f.ID, f.Properties.Updated)
		if !res.ShouldEmit() {
			m.metrics.EventDuplicates.Inc()
			continue
		}

		event := domain.FlattenFeature(f)
		if res.IsUpdate() {
			event.Update = true
			m.metrics.EventUpdates.Inc()
		}
		accepted = append(accepted, event)
	}
	return accepted
}

// sleep waits for d on the monitor clock. Returns false if the context was
// cancelled first.
func (m *Monitor) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-m.clock.After(d):
		return true
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}
