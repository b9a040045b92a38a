package events

import (
	"context"
	"fmt"

	"roomly/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// Publisher emits booking events. The service treats publishing as
// best-effort: a failed publish is logged, never surfaced to the caller.
type Publisher interface {
	Publish(ctx context.Context, event BookingEvent) error
	Close() error
}

type kafkaPublisher struct {
	writer *kafka.Writer
	log    *logger.Logger
}

func NewPublisher(cfg *Config, log *logger.Logger) (Publisher, error) {
	if !cfg.Enabled() {
		log.Info("Kafka brokers not configured, booking events disabled")
		return NoopPublisher{}, nil
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{}, // key by room for per-room ordering
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  defaultMaxAttempts,
		BatchTimeout: defaultBatchTimeout,
	}

	log.Info("Kafka publisher initialized", "topic", cfg.Topic, "brokers", cfg.Brokers)
	return &kafkaPublisher{writer: writer, log: log}, nil
}

func (p *kafkaPublisher) Publish(ctx context.Context, event BookingEvent) error {
	value, err := event.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode booking event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.Booking.RoomID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-id", Value: []byte(event.EventID)},
			{Key: "event-type", Value: []byte(event.Type)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher is used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, BookingEvent) error { return nil }
func (NoopPublisher) Close() error                                { return nil }
