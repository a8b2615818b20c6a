package kafka

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	cKafka "github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func unreachableConfig() *cKafka.ConfigMap {
	return Config{BootstrapServers: "127.0.0.1:1", ClientID: "test"}.ConfigMap()
}

func TestNewProducer_NilLogger(t *testing.T) {
	_, err := NewProducer(context.Background(), unreachableConfig(), nil)
	require.ErrorContains(t, err, "invalid logger")
}

func TestProducer_CloseIsIdempotent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p, err := NewProducer(ctx, unreachableConfig(), zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)

	p.Close(time.Second)
	p.Close(time.Second)

	_, ok := <-p.Errors()
	assert.False(t, ok, "errors channel closes with the producer")
}

func TestProducer_ProduceHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p, err := NewProducer(ctx, unreachableConfig(), zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	defer p.Close(100 * time.Millisecond)

	produceCtx, produceCancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer produceCancel()
	err = p.Produce(produceCtx, Message{Topic: "events", Key: []byte("1"), Value: []byte("{}"), Headers: map[string]string{"kind": "x"}})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestProducer_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p, err := NewProducer(ctx, unreachableConfig(), zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)

	cancel()
	select {
	case <-p.eventsDone:
	case <-time.After(2 * time.Second):
		t.Fatal("event watcher did not stop")
	}
	p.Close(100 * time.Millisecond)
}

func TestDeliveryResult(t *testing.T) {
	t.Parallel()
	topic := "events"
	ok := &cKafka.Message{TopicPartition: cKafka.TopicPartition{Topic: &topic}}
	require.NoError(t, deliveryResult(ok))

	failed := &cKafka.Message{TopicPartition: cKafka.TopicPartition{Topic: &topic, Error: errors.New("timed out")}}
	require.ErrorContains(t, deliveryResult(failed), "delivery failed: timed out")

	require.ErrorContains(t, deliveryResult(cKafka.NewError(cKafka.ErrAllBrokersDown, "down", false)), "unexpected delivery event")
}

func TestClassifyProduceError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		code cKafka.ErrorCode
		want string
	}{
		{cKafka.ErrBrokerNotAvailable, "broker not available"},
		{cKafka.ErrInvalidMsgSize, "invalid message size"},
		{cKafka.ErrUnknownTopicOrPart, "unknown topic or partition"},
		{cKafka.ErrAuthentication, "authentication error"},
		{cKafka.ErrFail, "produce"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			kerr := cKafka.NewError(tt.code, "boom", false)
			err := classifyProduceError(kerr)
			assert.ErrorContains(t, err, tt.want)

			var got cKafka.Error
			require.ErrorAs(t, err, &got)
			assert.Equal(t, tt.code, got.Code())
		})
	}
	assert.EqualError(t, classifyProduceError(fmt.Errorf("plain")), "produce: plain")
}
