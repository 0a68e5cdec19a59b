package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/couchcryptid/quake-monitor/internal/config"
	"github.com/couchcryptid/quake-monitor/internal/domain"
	"github.com/couchcryptid/quake-monitor/internal/eew"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces accepted events and shaking detections to their Kafka
// topics. It implements pipeline.EventPublisher.
type Writer struct {
	events     *kafkago.Writer
	detections *kafkago.Writer
	logger     *slog.Logger
}

// NewWriter creates Kafka producers for the configured sink topics.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	addr := kafkago.TCP(cfg.KafkaBrokers...)
	return &Writer{
		events: &kafkago.Writer{
			Addr:         addr,
			Topic:        cfg.KafkaEventsTopic,
			Balancer:     &kafkago.LeastBytes{},
			RequiredAcks: kafkago.RequireAll,
		},
		detections: &kafkago.Writer{
			Addr:         addr,
			Topic:        cfg.KafkaDetectionsTopic,
			Balancer:     &kafkago.LeastBytes{},
			RequiredAcks: kafkago.RequireAll,
		},
		logger: logger,
	}
}

// PublishEvents serializes and publishes accepted quake events in a single
// WriteMessages call. Messages are keyed by event ID so revisions of the same
// event land on the same partition.
func (w *Writer) PublishEvents(ctx context.Context, events []domain.QuakeEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(events))
	for i := range events {
		msg, err := serializeEvent(events[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.events.WriteMessages(ctx, msgs...)
}

// PublishDetections serializes and publishes shaking detections, keyed by
// detection ID.
func (w *Writer) PublishDetections(ctx context.Context, detections []eew.Detection) error {
	if len(detections) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(detections))
	for i := range detections {
		msg, err := serializeDetection(detections[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.detections.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	if err := w.events.Close(); err != nil {
		return err
	}
	return w.detections.Close()
}

// serializeEvent marshals a QuakeEvent into a Kafka message.
func serializeEvent(event domain.QuakeEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize quake event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "alert", Value: []byte(event.Alert)},
			{Key: "update", Value: []byte(strconv.FormatBool(event.Update))},
		},
	}, nil
}

// serializeDetection marshals a Detection into a Kafka message.
func serializeDetection(d eew.Detection) (kafkago.Message, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize detection: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(d.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "level", Value: []byte(d.AlertLevel.String())},
			{Key: "device_id", Value: []byte(d.DeviceID)},
		},
	}, nil
}
