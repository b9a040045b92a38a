package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"roomly/pkg/config"
	"roomly/pkg/events"

	"github.com/joho/godotenv"
)

const ServiceName = "events-worker"

// The worker tails the booking event stream and writes an audit line per
// event. It is the integration point for downstream consumers such as
// notification senders or reporting pipelines.
func main() {
	_ = godotenv.Load()

	cfg := config.Load(ServiceName)

	eventsCfg := events.LoadConfig()
	if !eventsCfg.Enabled() {
		cfg.Log.Fatal("KAFKA_BROKERS is not set; the events worker has nothing to consume")
	}

	consumer := events.NewConsumer(eventsCfg, func(ctx context.Context, event events.BookingEvent) error {
		cfg.Log.Info("Booking event received",
			"event_id", event.EventID,
			"type", event.Type,
			"occurred_at", event.OccurredAt,
			"booking_id", event.Booking.ID,
			"room_id", event.Booking.RoomID,
			"user_id", event.Booking.UserID,
			"status", event.Booking.Status,
		)
		return nil
	}, cfg.Log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		sig := <-shutdown
		cfg.Log.Info("Shutdown signal received", "signal", sig)
		cancel()
	}()

	cfg.Log.Info("Starting events worker", "topic", eventsCfg.Topic, "group_id", eventsCfg.GroupID)
	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped with error", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close consumer", "error", err)
	}
	cfg.Log.Info("Events worker stopped")
}
