package translation

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Translate(ctx context.Context, resumeID int, language string, opts Options) (*Result, error) {
	args := m.Called(ctx, resumeID, language, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Result), args.Error(1)
}

func (m *MockService) RetryFailed(ctx context.Context, resumeID int, language string, opts Options) (*Result, error) {
	args := m.Called(ctx, resumeID, language, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Result), args.Error(1)
}

func (m *MockService) Status(ctx context.Context, resumeID int, language string) (*Job, error) {
	args := m.Called(ctx, resumeID, language)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Job), args.Error(1)
}

func (m *MockService) Get(ctx context.Context, resumeID int, language string) (*Translation, error) {
	args := m.Called(ctx, resumeID, language)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Translation), args.Error(1)
}

func TestEnqueue(t *testing.T) {
	rdb, redisMock := redismock.NewClientMock()
	ctx := context.Background()

	redisMock.Regexp().ExpectLPush(queueKey, `.*`).SetVal(1)
	redisMock.ExpectLLen(queueKey).SetVal(1)

	worker := NewWorker(rdb, new(MockService))

	err := worker.Enqueue(ctx, QueuedJob{ResumeID: 42, Language: "fr"})
	assert.NoError(t, err)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestEnqueue_RedisDown(t *testing.T) {
	rdb, redisMock := redismock.NewClientMock()
	ctx := context.Background()

	redisMock.Regexp().ExpectLPush(queueKey, `.*`).SetErr(assert.AnError)

	worker := NewWorker(rdb, new(MockService))

	err := worker.Enqueue(ctx, QueuedJob{ResumeID: 42, Language: "fr"})
	assert.Error(t, err)
}

func TestProcessNext_TranslatesJob(t *testing.T) {
	rdb, redisMock := redismock.NewClientMock()
	ctx := context.Background()

	payload, err := json.Marshal(QueuedJob{ResumeID: 42, Language: "fr", Force: true})
	require.NoError(t, err)

	redisMock.ExpectBRPop(2*time.Second, queueKey).SetVal([]string{queueKey, string(payload)})
	redisMock.ExpectLLen(queueKey).SetVal(0)

	service := new(MockService)
	service.On("Translate", ctx, 42, "fr", Options{Force: true, UseCache: false}).
		Return(&Result{ResumeID: 42, Language: "fr"}, nil)

	worker := NewWorker(rdb, service)
	worker.processNext(ctx)

	service.AssertExpectations(t)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestProcessNext_RequeuedJobUsesRetryPath(t *testing.T) {
	rdb, redisMock := redismock.NewClientMock()
	ctx := context.Background()

	// Second queue attempt: the first one persisted a failed row, which
	// only the retry operation may redo.
	payload, err := json.Marshal(QueuedJob{ResumeID: 42, Language: "fr", Tries: 1})
	require.NoError(t, err)

	redisMock.ExpectBRPop(2*time.Second, queueKey).SetVal([]string{queueKey, string(payload)})
	redisMock.ExpectLLen(queueKey).SetVal(0)

	service := new(MockService)
	service.On("RetryFailed", ctx, 42, "fr", mock.Anything).
		Return(&Result{ResumeID: 42, Language: "fr"}, nil)

	worker := NewWorker(rdb, service)
	worker.processNext(ctx)

	service.AssertExpectations(t)
	service.AssertNotCalled(t, "Translate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestProcessNext_ExhaustedJobGoesToFailedQueue(t *testing.T) {
	rdb, redisMock := redismock.NewClientMock()
	ctx := context.Background()

	// One try left; this attempt is the last
	payload, err := json.Marshal(QueuedJob{ResumeID: 42, Language: "fr", Tries: maxQueueTries - 1})
	require.NoError(t, err)

	redisMock.ExpectBRPop(2*time.Second, queueKey).SetVal([]string{queueKey, string(payload)})
	redisMock.Regexp().ExpectLPush(failedQueueKey, `.*`).SetVal(1)

	service := new(MockService)
	service.On("RetryFailed", ctx, 42, "fr", mock.Anything).Return(nil, assert.AnError)

	worker := NewWorker(rdb, service)
	worker.processNext(ctx)

	service.AssertExpectations(t)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestProcessNext_EmptyQueueIsQuiet(t *testing.T) {
	rdb, redisMock := redismock.NewClientMock()
	ctx := context.Background()

	redisMock.ExpectBRPop(2*time.Second, queueKey).RedisNil()

	service := new(MockService)
	worker := NewWorker(rdb, service)
	worker.processNext(ctx)

	service.AssertNotCalled(t, "Translate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestQueueLength(t *testing.T) {
	rdb, redisMock := redismock.NewClientMock()
	ctx := context.Background()

	redisMock.ExpectLLen(queueKey).SetVal(7)

	worker := NewWorker(rdb, new(MockService))
	assert.Equal(t, int64(7), worker.QueueLength(ctx))
}
