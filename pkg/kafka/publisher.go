package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ava-labs/checkpoint-indexer/pkg/events"
)

const drainTimeout = 5 * time.Second

// EventPublisher is an events.Observer that writes events to a Kafka topic,
// keyed by checkpoint sequence so one checkpoint's events stay ordered within
// a partition. Observe never blocks: when the buffer is full the event is
// dropped and counted.
type EventPublisher struct {
	log      *zap.SugaredLogger
	producer MessageProducer
	topic    string
	queue    chan events.Event

	published atomic.Int64
	dropped   atomic.Int64
}

// NewEventPublisher returns a publisher buffering up to buffer events. Run must
// be running for events to leave the buffer.
func NewEventPublisher(log *zap.SugaredLogger, producer MessageProducer, topic string, buffer int) (*EventPublisher, error) {
	if log == nil {
		return nil, errors.New("invalid logger: must not be nil")
	}
	if producer == nil {
		return nil, errors.New("invalid producer: must not be nil")
	}
	if topic == "" {
		return nil, errors.New("invalid topic: must not be empty")
	}
	if buffer <= 0 {
		return nil, errors.New("invalid buffer: must be > 0")
	}
	return &EventPublisher{
		log:      log,
		producer: producer,
		topic:    topic,
		queue:    make(chan events.Event, buffer),
	}, nil
}

func (p *EventPublisher) Observe(_ context.Context, e events.Event) {
	select {
	case p.queue <- e:
	default:
		if p.dropped.Add(1) == 1 {
			p.log.Warnw("event buffer full, dropping events", "topic", p.topic)
		}
	}
}

// Run publishes buffered events until ctx is done, then drains what is left
// for a short grace period.
func (p *EventPublisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			p.drain()
			return nil
		case e := <-p.queue:
			p.publish(ctx, e)
		}
	}
}

func (p *EventPublisher) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	for {
		select {
		case e := <-p.queue:
			p.publish(ctx, e)
		default:
			return
		}
	}
}

func (p *EventPublisher) publish(ctx context.Context, e events.Event) {
	msg, err := p.message(e)
	if err == nil {
		err = p.producer.Produce(ctx, msg)
	}
	if err != nil {
		p.dropped.Add(1)
		p.log.Warnw("failed to publish event", "kind", e.Kind, "sequence", e.Sequence, "error", err)
		return
	}
	p.published.Add(1)
}

func (p *EventPublisher) message(e events.Event) (Message, error) {
	value, err := json.Marshal(e)
	if err != nil {
		return Message{}, err
	}
	return Message{
		Topic:   p.topic,
		Key:     []byte(strconv.FormatUint(e.Sequence, 10)),
		Value:   value,
		Headers: map[string]string{"kind": string(e.Kind)},
	}, nil
}

// Published returns how many events were delivered.
func (p *EventPublisher) Published() int64 { return p.published.Load() }

// Dropped returns how many events were lost to a full buffer or a failed produce.
func (p *EventPublisher) Dropped() int64 { return p.dropped.Load() }
