package kafka

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// DefaultFlushTimeout bounds how long Close waits for queued events.
const DefaultFlushTimeout = 15 * time.Second

// Config holds the event publisher configuration.
type Config struct {
	BootstrapServers  string         `env:"KAFKA_BOOTSTRAP_SERVERS"   envDefault:"localhost:9092"`
	Topic             string         `env:"KAFKA_TOPIC"               envDefault:"checkpoint-indexer-events"`
	ClientID          string         `env:"KAFKA_CLIENT_ID"           envDefault:"checkpoint-indexer"`
	Partitions        int            `env:"KAFKA_PARTITIONS"          envDefault:"3"`
	ReplicationFactor int            `env:"KAFKA_REPLICATION_FACTOR"  envDefault:"1"`
	BufferSize        int            `env:"KAFKA_EVENT_BUFFER"        envDefault:"1024"` // events held before dropping
	FlushTimeout      *time.Duration `env:"KAFKA_FLUSH_TIMEOUT"       envDefault:"15s"`
	EnableLogs        bool           `env:"KAFKA_ENABLE_LOGS"         envDefault:"false"` // librdkafka client logs
}

// Load reads the Kafka configuration from environment variables.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse kafka config: %w", err)
	}
	return cfg.WithDefaults(), nil
}

// WithDefaults returns a copy with nil pointer fields filled in.
func (c Config) WithDefaults() Config {
	if c.FlushTimeout == nil {
		timeout := DefaultFlushTimeout
		c.FlushTimeout = &timeout
	}
	return c
}

// TopicConfig returns the topic settings EnsureTopic applies.
func (c Config) TopicConfig() TopicConfig {
	return TopicConfig{
		Name:              c.Topic,
		NumPartitions:     c.Partitions,
		ReplicationFactor: c.ReplicationFactor,
	}
}

// ConfigMap returns the librdkafka settings for the producer and admin client.
// Delivery is idempotent so a retried event is written at most once per
// partition.
func (c Config) ConfigMap() *kafka.ConfigMap {
	return &kafka.ConfigMap{
		"bootstrap.servers":      c.BootstrapServers,
		"client.id":              c.ClientID,
		"acks":                   "all",
		"enable.idempotence":     true,
		"go.logs.channel.enable": c.EnableLogs,
	}
}
