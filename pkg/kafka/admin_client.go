package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.uber.org/zap"
)

const metadataTimeout = 10 * time.Second

// Admin is the subset of *kafka.AdminClient topic management needs.
type Admin interface {
	GetMetadata(topic *string, allTopics bool, timeoutMs int) (*kafka.Metadata, error)
	CreateTopics(ctx context.Context, topics []kafka.TopicSpecification, options ...kafka.CreateTopicsAdminOption) ([]kafka.TopicResult, error)
	CreatePartitions(ctx context.Context, partitions []kafka.PartitionsSpecification, options ...kafka.CreatePartitionsAdminOption) ([]kafka.TopicResult, error)
}

// NewAdmin opens an admin client. The caller must Close it.
func NewAdmin(cfg Config) (*kafka.AdminClient, error) {
	admin, err := kafka.NewAdminClient(cfg.ConfigMap())
	if err != nil {
		return nil, fmt.Errorf("create kafka admin client: %w", err)
	}
	return admin, nil
}

// TopicConfig describes the events topic.
type TopicConfig struct {
	Name              string
	NumPartitions     int
	ReplicationFactor int
}

func (tc TopicConfig) Validate() error {
	if tc.Name == "" {
		return errors.New("topic name cannot be empty")
	}
	if tc.NumPartitions <= 0 {
		return fmt.Errorf("number of partitions must be > 0, got %d", tc.NumPartitions)
	}
	if tc.ReplicationFactor <= 0 {
		return fmt.Errorf("replication factor must be > 0, got %d", tc.ReplicationFactor)
	}
	return nil
}

// lookupTopic returns the topic's metadata, or nil when it does not exist.
func lookupTopic(admin Admin, name string) (*kafka.TopicMetadata, error) {
	md, err := admin.GetMetadata(&name, false, int(metadataTimeout.Milliseconds()))
	if err != nil {
		return nil, fmt.Errorf("get metadata for topic %q: %w", name, err)
	}
	tm, ok := md.Topics[name]
	if !ok || tm.Error.Code() == kafka.ErrUnknownTopicOrPart {
		return nil, nil
	}
	if tm.Error.Code() != kafka.ErrNoError {
		return nil, fmt.Errorf("topic %q: %w", name, tm.Error)
	}
	return &tm, nil
}

// EnsureTopic creates the topic when missing and grows its partition count when
// it has fewer than configured. Kafka cannot shrink partitions or change the
// replication factor in place; those differences are logged and left alone.
func EnsureTopic(ctx context.Context, admin Admin, cfg TopicConfig, log *zap.SugaredLogger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid topic config: %w", err)
	}
	tm, err := lookupTopic(admin, cfg.Name)
	if err != nil {
		return err
	}
	if tm == nil {
		return createTopic(ctx, admin, cfg, log)
	}

	partitions := len(tm.Partitions)
	if rf := replicationFactor(tm); rf != cfg.ReplicationFactor {
		log.Warnw("topic replication factor differs from config",
			"topic", cfg.Name, "current", rf, "desired", cfg.ReplicationFactor)
	}
	switch {
	case partitions < cfg.NumPartitions:
		return growPartitions(ctx, admin, cfg.Name, cfg.NumPartitions, log)
	case partitions > cfg.NumPartitions:
		log.Warnw("topic has more partitions than configured",
			"topic", cfg.Name, "current", partitions, "desired", cfg.NumPartitions)
	}
	return nil
}

func createTopic(ctx context.Context, admin Admin, cfg TopicConfig, log *zap.SugaredLogger) error {
	results, err := admin.CreateTopics(ctx, []kafka.TopicSpecification{{
		Topic:             cfg.Name,
		NumPartitions:     cfg.NumPartitions,
		ReplicationFactor: cfg.ReplicationFactor,
	}})
	if err != nil {
		return fmt.Errorf("create topic %q: %w", cfg.Name, err)
	}
	for _, r := range results {
		switch r.Error.Code() {
		case kafka.ErrNoError:
			log.Infow("created topic", "topic", r.Topic, "partitions", cfg.NumPartitions, "replicationFactor", cfg.ReplicationFactor)
		case kafka.ErrTopicAlreadyExists:
			// lost a race with another instance
			log.Infow("topic already exists", "topic", r.Topic)
		default:
			return fmt.Errorf("create topic %q: %w", r.Topic, r.Error)
		}
	}
	return nil
}

func growPartitions(ctx context.Context, admin Admin, topic string, count int, log *zap.SugaredLogger) error {
	results, err := admin.CreatePartitions(ctx, []kafka.PartitionsSpecification{{Topic: topic, IncreaseTo: count}})
	if err != nil {
		return fmt.Errorf("increase partitions for topic %q: %w", topic, err)
	}
	for _, r := range results {
		if r.Error.Code() != kafka.ErrNoError {
			return fmt.Errorf("increase partitions for topic %q: %w", r.Topic, r.Error)
		}
		log.Infow("increased partitions", "topic", r.Topic, "partitions", count)
	}
	return nil
}

func replicationFactor(tm *kafka.TopicMetadata) int {
	if len(tm.Partitions) == 0 {
		return 0
	}
	return len(tm.Partitions[0].Replicas)
}
