package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.uber.org/zap"
)

// Message is one record to produce.
type Message struct {
	Topic   string
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// MessageProducer produces a message and waits for its delivery report.
type MessageProducer interface {
	Produce(ctx context.Context, msg Message) error
}

const queueFullRetryDelay = time.Second

// Producer is a synchronous MessageProducer over a librdkafka producer.
// Background goroutines drain the client's event and log channels until Close.
type Producer struct {
	producer   *kafka.Producer
	log        *zap.SugaredLogger
	errCh      chan error
	eventsDone chan struct{}
	logsDone   chan struct{}
	closed     chan struct{}
	once       sync.Once
}

// NewProducer creates a producer. ctx bounds the background goroutines; Close
// must still be called to flush and release the client.
func NewProducer(ctx context.Context, conf *kafka.ConfigMap, log *zap.SugaredLogger) (*Producer, error) {
	if log == nil {
		return nil, errors.New("invalid logger: must not be nil")
	}
	p, err := kafka.NewProducer(conf)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	logsEnabled, err := conf.Get("go.logs.channel.enable", false)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("read go.logs.channel.enable: %w", err)
	}

	q := &Producer{
		producer:   p,
		log:        log,
		errCh:      make(chan error, 1),
		eventsDone: make(chan struct{}),
		logsDone:   make(chan struct{}),
		closed:     make(chan struct{}),
	}
	if enabled, _ := logsEnabled.(bool); enabled {
		go q.forwardLogs(ctx)
	} else {
		close(q.logsDone)
	}
	go q.watchEvents(ctx)
	return q, nil
}

// Produce enqueues msg and blocks until Kafka acknowledges it or ctx ends. A
// message whose context ended may still be delivered later.
func (q *Producer) Produce(ctx context.Context, msg Message) error {
	delivery := make(chan kafka.Event, 1)

	km := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &msg.Topic, Partition: kafka.PartitionAny},
		Key:            msg.Key,
		Value:          msg.Value,
	}
	for k, v := range msg.Headers {
		km.Headers = append(km.Headers, kafka.Header{Key: k, Value: []byte(v)})
	}

	if err := q.enqueue(ctx, km, delivery); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case ev := <-delivery:
		return deliveryResult(ev)
	}
}

// enqueue hands km to librdkafka, waiting out a full local queue.
func (q *Producer) enqueue(ctx context.Context, km *kafka.Message, delivery chan kafka.Event) error {
	for {
		err := q.producer.Produce(km, delivery)
		if err == nil {
			return nil
		}
		var kerr kafka.Error
		if !errors.As(err, &kerr) || kerr.Code() != kafka.ErrQueueFull {
			return classifyProduceError(err)
		}
		q.log.Warnw("producer queue full, retrying", "delay", queueFullRetryDelay)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(queueFullRetryDelay):
		}
	}
}

func classifyProduceError(err error) error {
	var kerr kafka.Error
	if !errors.As(err, &kerr) {
		return fmt.Errorf("produce: %w", err)
	}
	switch kerr.Code() {
	case kafka.ErrBrokerNotAvailable:
		return fmt.Errorf("broker not available: %w", err)
	case kafka.ErrInvalidMsgSize:
		return fmt.Errorf("invalid message size: %w", err)
	case kafka.ErrUnknownTopicOrPart:
		return fmt.Errorf("unknown topic or partition: %w", err)
	case kafka.ErrAuthentication:
		return fmt.Errorf("authentication error: %w", err)
	default:
		return fmt.Errorf("produce: %w", err)
	}
}

func deliveryResult(ev kafka.Event) error {
	m, ok := ev.(*kafka.Message)
	if !ok {
		return fmt.Errorf("unexpected delivery event %T", ev)
	}
	if err := m.TopicPartition.Error; err != nil {
		return fmt.Errorf("delivery failed: %w", err)
	}
	return nil
}

// Close stops the background goroutines and flushes queued messages for at
// most timeout. Later calls do nothing.
func (q *Producer) Close(timeout time.Duration) {
	q.once.Do(func() {
		defer close(q.errCh)
		close(q.closed)
		<-q.eventsDone
		<-q.logsDone

		if pending := q.producer.Flush(int(timeout.Milliseconds())); pending > 0 {
			q.log.Warnw("kafka flush incomplete, messages dropped", "pending", pending)
		}
		q.producer.Close()
		q.log.Info("kafka producer closed")
	})
}

// Errors receives at most one fatal client error and is closed by Close. The
// producer is unusable after a fatal error.
func (q *Producer) Errors() <-chan error {
	return q.errCh
}

func (q *Producer) fatal(err error) {
	select {
	case q.errCh <- err:
	default:
	}
}

func (q *Producer) forwardLogs(ctx context.Context) {
	defer close(q.logsDone)
	for {
		select {
		case <-ctx.Done():
			return
		case <-q.closed:
			return
		case l, ok := <-q.producer.Logs():
			if !ok {
				return
			}
			q.log.Debugw("librdkafka", "level", l.Level, "tag", l.Tag, "message", l.Message)
		}
	}
}

func (q *Producer) watchEvents(ctx context.Context) {
	defer close(q.eventsDone)
	for {
		select {
		case <-ctx.Done():
			return
		case <-q.closed:
			return
		case ev, ok := <-q.producer.Events():
			if !ok {
				q.fatal(errors.New("kafka producer event channel closed"))
				return
			}
			switch e := ev.(type) {
			case kafka.Error:
				if e.IsFatal() || e.Code() == kafka.ErrAllBrokersDown {
					q.fatal(fmt.Errorf("kafka client error %#x: %w", e.Code(), e))
					return
				}
				q.log.Warnw("kafka client error", "code", e.Code(), "error", e)
			case *kafka.Message:
				// delivery reports go to the per-message channel
				q.log.Warnw("unexpected delivery report", "topicPartition", e.TopicPartition)
			default:
				q.log.Debugw("kafka event", "event", e.String())
			}
		}
	}
}
