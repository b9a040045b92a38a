package events

import (
	"os"
	"strings"
	"time"
)

const (
	EnvKafkaBrokers = "KAFKA_BROKERS"
	EnvKafkaTopic   = "KAFKA_BOOKING_TOPIC"
	EnvKafkaGroupID = "KAFKA_GROUP_ID"

	DefaultTopic   = "roomly.bookings"
	DefaultGroupID = "roomly-events-worker"

	defaultBatchTimeout = 100 * time.Millisecond
	defaultMaxAttempts  = 3
)

type Config struct {
	Brokers []string
	Topic   string
	GroupID string
}

// LoadConfig reads the Kafka settings from the environment. An empty
// KAFKA_BROKERS disables the event stream entirely.
func LoadConfig() *Config {
	cfg := &Config{
		Topic:   getEnvStr(EnvKafkaTopic, DefaultTopic),
		GroupID: getEnvStr(EnvKafkaGroupID, DefaultGroupID),
	}

	if brokersStr := os.Getenv(EnvKafkaBrokers); brokersStr != "" {
		for _, broker := range strings.Split(brokersStr, ",") {
			if broker = strings.TrimSpace(broker); broker != "" {
				cfg.Brokers = append(cfg.Brokers, broker)
			}
		}
	}

	return cfg
}

func (c *Config) Enabled() bool {
	return len(c.Brokers) > 0
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
