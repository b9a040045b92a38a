package events

import (
	"context"
	"errors"
	"time"

	"roomly/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// Handler processes one decoded booking event. Returning an error leaves the
// message uncommitted so it is redelivered.
type Handler func(ctx context.Context, event BookingEvent) error

type Consumer struct {
	reader *kafka.Reader
	handle Handler
	log    *logger.Logger
}

func NewConsumer(cfg *Config, handle Handler, log *logger.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  1 * time.Second,
	})

	return &Consumer{reader: reader, handle: handle, log: log}
}

// Run consumes until the context is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			c.log.Error("Failed to fetch message", "error", err)
			time.Sleep(1 * time.Second)
			continue
		}

		event, err := DecodeBookingEvent(msg.Value)
		if err != nil {
			// Undecodable messages are committed and skipped; redelivery
			// cannot fix them.
			c.log.Error("Failed to decode booking event",
				"error", err,
				"offset", msg.Offset,
				"partition", msg.Partition,
			)
			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				c.log.Error("Failed to commit message", "error", err)
			}
			continue
		}

		if err := c.handle(ctx, event); err != nil {
			c.log.Error("Event handler failed",
				"error", err,
				"event_id", event.EventID,
				"event_type", event.Type,
			)
			continue
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.log.Error("Failed to commit message", "error", err)
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
