package kafka

import (
	"context"
	"errors"
	"testing"

	cKafka "github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockAdmin struct {
	mock.Mock
}

func (m *mockAdmin) GetMetadata(topic *string, allTopics bool, timeoutMs int) (*cKafka.Metadata, error) {
	args := m.Called(*topic, allTopics, timeoutMs)
	md, _ := args.Get(0).(*cKafka.Metadata)
	return md, args.Error(1)
}

func (m *mockAdmin) CreateTopics(ctx context.Context, topics []cKafka.TopicSpecification, _ ...cKafka.CreateTopicsAdminOption) ([]cKafka.TopicResult, error) {
	args := m.Called(ctx, topics)
	res, _ := args.Get(0).([]cKafka.TopicResult)
	return res, args.Error(1)
}

func (m *mockAdmin) CreatePartitions(ctx context.Context, partitions []cKafka.PartitionsSpecification, _ ...cKafka.CreatePartitionsAdminOption) ([]cKafka.TopicResult, error) {
	args := m.Called(ctx, partitions)
	res, _ := args.Get(0).([]cKafka.TopicResult)
	return res, args.Error(1)
}

var eventsTopic = TopicConfig{Name: "events", NumPartitions: 3, ReplicationFactor: 1}

func metadataWith(partitions int, replicas int) *cKafka.Metadata {
	tm := cKafka.TopicMetadata{Topic: "events"}
	for i := range partitions {
		tm.Partitions = append(tm.Partitions, cKafka.PartitionMetadata{ID: int32(i), Replicas: make([]int32, replicas)})
	}
	return &cKafka.Metadata{Topics: map[string]cKafka.TopicMetadata{"events": tm}}
}

func TestTopicConfig_Validate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		cfg  TopicConfig
		want string
	}{
		{name: "valid", cfg: eventsTopic},
		{name: "no name", cfg: TopicConfig{NumPartitions: 1, ReplicationFactor: 1}, want: "topic name cannot be empty"},
		{name: "no partitions", cfg: TopicConfig{Name: "a", ReplicationFactor: 1}, want: "number of partitions"},
		{name: "no replicas", cfg: TopicConfig{Name: "a", NumPartitions: 1}, want: "replication factor"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if tt.want == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.want)
		})
	}
}

func TestEnsureTopic_CreatesMissing(t *testing.T) {
	t.Parallel()
	admin := &mockAdmin{}
	admin.On("GetMetadata", "events", false, mock.Anything).
		Return(&cKafka.Metadata{Topics: map[string]cKafka.TopicMetadata{}}, nil).Once()
	admin.On("CreateTopics", mock.Anything, []cKafka.TopicSpecification{{Topic: "events", NumPartitions: 3, ReplicationFactor: 1}}).
		Return([]cKafka.TopicResult{{Topic: "events"}}, nil).Once()

	require.NoError(t, EnsureTopic(context.Background(), admin, eventsTopic, zap.NewNop().Sugar()))
	admin.AssertExpectations(t)
}

func TestEnsureTopic_CreateRaceIsFine(t *testing.T) {
	t.Parallel()
	admin := &mockAdmin{}
	admin.On("GetMetadata", "events", false, mock.Anything).
		Return(&cKafka.Metadata{Topics: map[string]cKafka.TopicMetadata{
			"events": {Error: cKafka.NewError(cKafka.ErrUnknownTopicOrPart, "unknown", false)},
		}}, nil).Once()
	admin.On("CreateTopics", mock.Anything, mock.Anything).
		Return([]cKafka.TopicResult{{Topic: "events", Error: cKafka.NewError(cKafka.ErrTopicAlreadyExists, "exists", false)}}, nil).Once()

	require.NoError(t, EnsureTopic(context.Background(), admin, eventsTopic, zap.NewNop().Sugar()))
}

func TestEnsureTopic_GrowsPartitions(t *testing.T) {
	t.Parallel()
	admin := &mockAdmin{}
	admin.On("GetMetadata", "events", false, mock.Anything).Return(metadataWith(1, 1), nil).Once()
	admin.On("CreatePartitions", mock.Anything, []cKafka.PartitionsSpecification{{Topic: "events", IncreaseTo: 3}}).
		Return([]cKafka.TopicResult{{Topic: "events"}}, nil).Once()

	require.NoError(t, EnsureTopic(context.Background(), admin, eventsTopic, zap.NewNop().Sugar()))
	admin.AssertExpectations(t)
}

func TestEnsureTopic_LeavesLargerTopicAlone(t *testing.T) {
	t.Parallel()
	admin := &mockAdmin{}
	admin.On("GetMetadata", "events", false, mock.Anything).Return(metadataWith(12, 3), nil).Once()

	require.NoError(t, EnsureTopic(context.Background(), admin, eventsTopic, zap.NewNop().Sugar()))
	admin.AssertNotCalled(t, "CreatePartitions", mock.Anything, mock.Anything)
	admin.AssertNotCalled(t, "CreateTopics", mock.Anything, mock.Anything)
}

func TestEnsureTopic_Errors(t *testing.T) {
	t.Parallel()
	log := zap.NewNop().Sugar()

	err := EnsureTopic(context.Background(), &mockAdmin{}, TopicConfig{}, log)
	require.ErrorContains(t, err, "invalid topic config")

	admin := &mockAdmin{}
	admin.On("GetMetadata", "events", false, mock.Anything).Return(nil, errors.New("timed out")).Once()
	err = EnsureTopic(context.Background(), admin, eventsTopic, log)
	require.ErrorContains(t, err, `get metadata for topic "events": timed out`)

	admin = &mockAdmin{}
	admin.On("GetMetadata", "events", false, mock.Anything).Return(&cKafka.Metadata{}, nil).Once()
	admin.On("CreateTopics", mock.Anything, mock.Anything).
		Return([]cKafka.TopicResult{{Topic: "events", Error: cKafka.NewError(cKafka.ErrTopicAuthorizationFailed, "denied", false)}}, nil).Once()
	err = EnsureTopic(context.Background(), admin, eventsTopic, log)
	require.ErrorContains(t, err, `create topic "events"`)

	admin = &mockAdmin{}
	admin.On("GetMetadata", "events", false, mock.Anything).Return(metadataWith(1, 1), nil).Once()
	admin.On("CreatePartitions", mock.Anything, mock.Anything).Return(nil, errors.New("not controller")).Once()
	err = EnsureTopic(context.Background(), admin, eventsTopic, log)
	require.ErrorContains(t, err, "increase partitions")
	assert.ErrorContains(t, err, "not controller")
}
