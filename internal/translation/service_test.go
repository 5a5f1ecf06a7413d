package translation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/KhanPromiseP/cverra-sub006/internal/ai"
	"github.com/KhanPromiseP/cverra-sub006/internal/resume"
)

type MockTranslationRepo struct{ mock.Mock }
type MockResumeRepo struct{ mock.Mock }
type MockAIClient struct{ mock.Mock }

func (m *MockTranslationRepo) GetTranslation(ctx context.Context, resumeID int, language string) (*Translation, error) {
	args := m.Called(ctx, resumeID, language)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Translation), args.Error(1)
}

func (m *MockTranslationRepo) SaveCompleted(ctx context.Context, resumeID int, language string, data []byte, confidence float64, needsReview bool, aiModel string, tokensUsed int) (*Translation, error) {
	args := m.Called(ctx, resumeID, language, data, confidence, needsReview, aiModel, tokensUsed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Translation), args.Error(1)
}

func (m *MockTranslationRepo) SaveFailed(ctx context.Context, resumeID int, language, aiModel, lastError string) (*Translation, error) {
	args := m.Called(ctx, resumeID, language, aiModel, lastError)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Translation), args.Error(1)
}

func (m *MockTranslationRepo) TouchAccessed(ctx context.Context, resumeID int, language string) error {
	return m.Called(ctx, resumeID, language).Error(0)
}

func (m *MockTranslationRepo) ResetAttempts(ctx context.Context, resumeID int, language string) error {
	return m.Called(ctx, resumeID, language).Error(0)
}

func (m *MockTranslationRepo) UpsertJob(ctx context.Context, resumeID int, language string, status Status, aiModel string, lastError *string) (*Job, error) {
	args := m.Called(ctx, resumeID, language, status, aiModel, lastError)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Job), args.Error(1)
}

func (m *MockTranslationRepo) SetJobStatus(ctx context.Context, resumeID int, language string, status Status, lastError *string) error {
	return m.Called(ctx, resumeID, language, status, lastError).Error(0)
}

func (m *MockTranslationRepo) GetJob(ctx context.Context, resumeID int, language string) (*Job, error) {
	args := m.Called(ctx, resumeID, language)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Job), args.Error(1)
}

func (m *MockTranslationRepo) PurgeStale(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockResumeRepo) Create(ctx context.Context, userID int, title, language string, content []byte) (*resume.Resume, error) {
	args := m.Called(ctx, userID, title, language, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*resume.Resume), args.Error(1)
}

func (m *MockResumeRepo) GetByID(ctx context.Context, id int) (*resume.Resume, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*resume.Resume), args.Error(1)
}

func (m *MockResumeRepo) ListByUser(ctx context.Context, userID int) ([]resume.Resume, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]resume.Resume), args.Error(1)
}

func (m *MockResumeRepo) Update(ctx context.Context, id int, title string, content []byte) (*resume.Resume, error) {
	args := m.Called(ctx, id, title, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*resume.Resume), args.Error(1)
}

func (m *MockResumeRepo) Delete(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAIClient) CreateCompletion(ctx context.Context, request ai.CompletionRequest) (*ai.CompletionResponse, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ai.CompletionResponse), args.Error(1)
}

func newTestService(repo Repository, resumes resume.Repository, client AIClient) *service {
	return &service{
		repo:         repo,
		resumes:      resumes,
		client:       client,
		defaultModel: "test-model",
		httpRetries:  3,
		retryDelay:   0, // no backoff sleeps in tests
	}
}

func sourceResume() *resume.Resume {
	return &resume.Resume{
		ID:       123,
		UserID:   1,
		Language: "en",
		Content:  []byte(`{"name":"John","summary":"Engineer"}`),
	}
}

func completionWith(content string) *ai.CompletionResponse {
	return &ai.CompletionResponse{
		Choices: []ai.Choice{{Message: ai.Message{Role: "assistant", Content: content}, FinishReason: "stop"}},
		Usage:   &ai.Usage{PromptTokens: 100, CompletionTokens: 80, TotalTokens: 180},
	}
}

func TestTranslate_UnsupportedLanguageFailsFast(t *testing.T) {
	repo := new(MockTranslationRepo)
	resumes := new(MockResumeRepo)
	client := new(MockAIClient)
	svc := newTestService(repo, resumes, client)

	_, err := svc.Translate(context.Background(), 123, "tlh", Options{UseCache: true})
	require.ErrorIs(t, err, ErrUnsupportedLanguage)

	client.AssertNotCalled(t, "CreateCompletion", mock.Anything, mock.Anything)
	resumes.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestTranslate_Success(t *testing.T) {
	repo := new(MockTranslationRepo)
	resumes := new(MockResumeRepo)
	client := new(MockAIClient)
	svc := newTestService(repo, resumes, client)

	translated := `{"name":"Jean","summary":"Ingénieur"}`

	repo.On("GetTranslation", mock.Anything, 123, "fr").Return(nil, ErrTranslationNotFound).Once()
	resumes.On("GetByID", mock.Anything, 123).Return(sourceResume(), nil)
	repo.On("UpsertJob", mock.Anything, 123, "fr", StatusProcessing, "test-model", (*string)(nil)).
		Return(&Job{ResumeID: 123, TargetLanguage: "fr", Status: StatusProcessing}, nil)
	client.On("CreateCompletion", mock.Anything, mock.Anything).Return(completionWith(translated), nil).Once()
	repo.On("SaveCompleted", mock.Anything, 123, "fr", []byte(translated), 0.9, false, "test-model", 180).
		Return(&Translation{ResumeID: 123, Language: "fr", Status: StatusCompleted, Data: []byte(translated), Confidence: 0.9}, nil)
	repo.On("SetJobStatus", mock.Anything, 123, "fr", StatusCompleted, (*string)(nil)).Return(nil)
	repo.On("TouchAccessed", mock.Anything, 123, "fr").Return(nil)

	result, err := svc.Translate(context.Background(), 123, "fr", Options{UseCache: true})
	require.NoError(t, err)
	assert.False(t, result.NeedsReview)
	assert.JSONEq(t, translated, string(result.Data))

	client.AssertNumberOfCalls(t, "CreateCompletion", 1)
}

func TestTranslate_CachedResultSkipsAI(t *testing.T) {
	repo := new(MockTranslationRepo)
	resumes := new(MockResumeRepo)
	client := new(MockAIClient)
	svc := newTestService(repo, resumes, client)

	completed := &Translation{
		ResumeID: 123, Language: "fr", Status: StatusCompleted,
		Data: []byte(`{"name":"Jean"}`), Confidence: 0.9,
	}
	repo.On("GetTranslation", mock.Anything, 123, "fr").Return(completed, nil)
	repo.On("TouchAccessed", mock.Anything, 123, "fr").Return(nil)

	result, err := svc.Translate(context.Background(), 123, "fr", Options{UseCache: true})
	require.NoError(t, err)
	assert.True(t, result.Cached)

	// The whole point of the cache: no model call on the second request.
	client.AssertNotCalled(t, "CreateCompletion", mock.Anything, mock.Anything)
}

func TestTranslate_StructuralMismatchRecordedFailed(t *testing.T) {
	repo := new(MockTranslationRepo)
	resumes := new(MockResumeRepo)
	client := new(MockAIClient)
	svc := newTestService(repo, resumes, client)

	// Model drops the "summary" field: valid JSON, wrong shape.
	repo.On("GetTranslation", mock.Anything, 123, "fr").Return(nil, ErrTranslationNotFound).Once()
	resumes.On("GetByID", mock.Anything, 123).Return(sourceResume(), nil)
	repo.On("UpsertJob", mock.Anything, 123, "fr", StatusProcessing, "test-model", (*string)(nil)).
		Return(&Job{}, nil)
	client.On("CreateCompletion", mock.Anything, mock.Anything).
		Return(completionWith(`{"name":"Jean"}`), nil).Once()
	repo.On("SaveFailed", mock.Anything, 123, "fr", "test-model", mock.MatchedBy(func(msg string) bool {
		return msg != ""
	})).Return(&Translation{Status: StatusFailed, AttemptCount: 1}, nil)
	repo.On("SetJobStatus", mock.Anything, 123, "fr", StatusFailed, mock.Anything).Return(nil)

	_, err := svc.Translate(context.Background(), 123, "fr", Options{UseCache: true})
	require.ErrorIs(t, err, ErrTranslationFailed)

	// Structural mismatch is not retried with the same input.
	client.AssertNumberOfCalls(t, "CreateCompletion", 1)
	repo.AssertCalled(t, "SaveFailed", mock.Anything, 123, "fr", "test-model", mock.Anything)
	repo.AssertNotCalled(t, "SaveCompleted", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTranslate_TransientErrorsRetriedWithCap(t *testing.T) {
	repo := new(MockTranslationRepo)
	resumes := new(MockResumeRepo)
	client := new(MockAIClient)
	svc := newTestService(repo, resumes, client)

	repo.On("GetTranslation", mock.Anything, 123, "fr").Return(nil, ErrTranslationNotFound).Once()
	resumes.On("GetByID", mock.Anything, 123).Return(sourceResume(), nil)
	repo.On("UpsertJob", mock.Anything, 123, "fr", StatusProcessing, "test-model", (*string)(nil)).
		Return(&Job{}, nil)
	client.On("CreateCompletion", mock.Anything, mock.Anything).
		Return(nil, errors.New("connection reset")).Times(3)
	repo.On("SaveFailed", mock.Anything, 123, "fr", "test-model", mock.Anything).
		Return(&Translation{Status: StatusFailed, AttemptCount: 1}, nil)
	repo.On("SetJobStatus", mock.Anything, 123, "fr", StatusFailed, mock.Anything).Return(nil)

	_, err := svc.Translate(context.Background(), 123, "fr", Options{UseCache: true})
	require.ErrorIs(t, err, ErrTranslationFailed)

	client.AssertNumberOfCalls(t, "CreateCompletion", 3)
}

func TestTranslate_TransientErrorThenSuccess(t *testing.T) {
	repo := new(MockTranslationRepo)
	resumes := new(MockResumeRepo)
	client := new(MockAIClient)
	svc := newTestService(repo, resumes, client)

	translated := `{"name":"Jean","summary":"Ingénieur"}`

	repo.On("GetTranslation", mock.Anything, 123, "fr").Return(nil, ErrTranslationNotFound).Once()
	resumes.On("GetByID", mock.Anything, 123).Return(sourceResume(), nil)
	repo.On("UpsertJob", mock.Anything, 123, "fr", StatusProcessing, "test-model", (*string)(nil)).
		Return(&Job{}, nil)
	client.On("CreateCompletion", mock.Anything, mock.Anything).
		Return(nil, errors.New("timeout")).Once()
	client.On("CreateCompletion", mock.Anything, mock.Anything).
		Return(completionWith(translated), nil).Once()
	repo.On("SaveCompleted", mock.Anything, 123, "fr", []byte(translated), 0.9, false, "test-model", 180).
		Return(&Translation{ResumeID: 123, Language: "fr", Status: StatusCompleted, Data: []byte(translated)}, nil)
	repo.On("SetJobStatus", mock.Anything, 123, "fr", StatusCompleted, (*string)(nil)).Return(nil)
	repo.On("TouchAccessed", mock.Anything, 123, "fr").Return(nil)

	_, err := svc.Translate(context.Background(), 123, "fr", Options{UseCache: true})
	require.NoError(t, err)

	client.AssertNumberOfCalls(t, "CreateCompletion", 2)
}

func TestTranslate_FailedRowNeedsExplicitRetry(t *testing.T) {
	repo := new(MockTranslationRepo)
	resumes := new(MockResumeRepo)
	client := new(MockAIClient)
	svc := newTestService(repo, resumes, client)

	failed := &Translation{ResumeID: 123, Language: "fr", Status: StatusFailed, AttemptCount: 1}
	repo.On("GetTranslation", mock.Anything, 123, "fr").Return(failed, nil)

	_, err := svc.Translate(context.Background(), 123, "fr", Options{UseCache: true})
	require.ErrorIs(t, err, ErrTranslationFailed)

	client.AssertNotCalled(t, "CreateCompletion", mock.Anything, mock.Anything)
}

func TestTranslate_ForceCannotReopenCappedFailure(t *testing.T) {
	repo := new(MockTranslationRepo)
	resumes := new(MockResumeRepo)
	client := new(MockAIClient)
	svc := newTestService(repo, resumes, client)

	capped := &Translation{ResumeID: 123, Language: "fr", Status: StatusFailed, AttemptCount: MaxAttempts}
	repo.On("GetTranslation", mock.Anything, 123, "fr").Return(capped, nil)

	// Force redoes completed work; a capped failure stays terminal until an
	// admin reset.
	_, err := svc.Translate(context.Background(), 123, "fr", Options{Force: true})
	require.ErrorIs(t, err, ErrAttemptsExhausted)

	client.AssertNotCalled(t, "CreateCompletion", mock.Anything, mock.Anything)
}

func TestTranslate_ForceRerunsFailureUnderCap(t *testing.T) {
	repo := new(MockTranslationRepo)
	resumes := new(MockResumeRepo)
	client := new(MockAIClient)
	svc := newTestService(repo, resumes, client)

	translated := `{"name":"Jean","summary":"Ingénieur"}`

	failed := &Translation{ResumeID: 123, Language: "fr", Status: StatusFailed, AttemptCount: 1}
	repo.On("GetTranslation", mock.Anything, 123, "fr").Return(failed, nil)
	resumes.On("GetByID", mock.Anything, 123).Return(sourceResume(), nil)
	repo.On("UpsertJob", mock.Anything, 123, "fr", StatusProcessing, "test-model", (*string)(nil)).
		Return(&Job{ResumeID: 123, TargetLanguage: "fr", Status: StatusProcessing}, nil)
	client.On("CreateCompletion", mock.Anything, mock.Anything).Return(completionWith(translated), nil).Once()
	repo.On("SaveCompleted", mock.Anything, 123, "fr", []byte(translated), 0.9, false, "test-model", 180).
		Return(&Translation{ResumeID: 123, Language: "fr", Status: StatusCompleted, Data: []byte(translated), Confidence: 0.9}, nil)
	repo.On("SetJobStatus", mock.Anything, 123, "fr", StatusCompleted, (*string)(nil)).Return(nil)
	repo.On("TouchAccessed", mock.Anything, 123, "fr").Return(nil)

	result, err := svc.Translate(context.Background(), 123, "fr", Options{Force: true})
	require.NoError(t, err)
	assert.False(t, result.Cached)

	client.AssertNumberOfCalls(t, "CreateCompletion", 1)
}

func TestRetryFailed_BoundedByMaxAttempts(t *testing.T) {
	repo := new(MockTranslationRepo)
	resumes := new(MockResumeRepo)
	client := new(MockAIClient)
	svc := newTestService(repo, resumes, client)

	capped := &Translation{ResumeID: 123, Language: "fr", Status: StatusFailed, AttemptCount: MaxAttempts}
	repo.On("GetTranslation", mock.Anything, 123, "fr").Return(capped, nil)

	_, err := svc.RetryFailed(context.Background(), 123, "fr", Options{})
	require.ErrorIs(t, err, ErrAttemptsExhausted)

	client.AssertNotCalled(t, "CreateCompletion", mock.Anything, mock.Anything)
}

func TestRetryFailed_RejectsCompletedTranslation(t *testing.T) {
	repo := new(MockTranslationRepo)
	resumes := new(MockResumeRepo)
	client := new(MockAIClient)
	svc := newTestService(repo, resumes, client)

	completed := &Translation{ResumeID: 123, Language: "fr", Status: StatusCompleted}
	repo.On("GetTranslation", mock.Anything, 123, "fr").Return(completed, nil)

	_, err := svc.RetryFailed(context.Background(), 123, "fr", Options{})
	require.ErrorIs(t, err, ErrNotFailed)
}

func TestRetryFailed_RunsWhenUnderCap(t *testing.T) {
	repo := new(MockTranslationRepo)
	resumes := new(MockResumeRepo)
	client := new(MockAIClient)
	svc := newTestService(repo, resumes, client)

	translated := `{"name":"Jean","summary":"Ingénieur"}`

	failed := &Translation{ResumeID: 123, Language: "fr", Status: StatusFailed, AttemptCount: 1}
	repo.On("GetTranslation", mock.Anything, 123, "fr").Return(failed, nil)
	resumes.On("GetByID", mock.Anything, 123).Return(sourceResume(), nil)
	repo.On("UpsertJob", mock.Anything, 123, "fr", StatusProcessing, "test-model", (*string)(nil)).
		Return(&Job{}, nil)
	client.On("CreateCompletion", mock.Anything, mock.Anything).Return(completionWith(translated), nil)
	repo.On("SaveCompleted", mock.Anything, 123, "fr", []byte(translated), 0.9, false, "test-model", 180).
		Return(&Translation{ResumeID: 123, Language: "fr", Status: StatusCompleted, Data: []byte(translated)}, nil)
	repo.On("SetJobStatus", mock.Anything, 123, "fr", StatusCompleted, (*string)(nil)).Return(nil)
	repo.On("TouchAccessed", mock.Anything, 123, "fr").Return(nil)

	result, err := svc.RetryFailed(context.Background(), 123, "fr", Options{})
	require.NoError(t, err)
	assert.JSONEq(t, translated, string(result.Data))
}

func TestScoreConfidence(t *testing.T) {
	assert.InDelta(t, 0.9, scoreConfidence("stop", &ai.Usage{PromptTokens: 100, CompletionTokens: 80}), 0.001)
	assert.InDelta(t, 0.5, scoreConfidence("length", &ai.Usage{PromptTokens: 100, CompletionTokens: 80}), 0.001)
	// Suspiciously short output loses confidence.
	assert.InDelta(t, 0.7, scoreConfidence("stop", &ai.Usage{PromptTokens: 100, CompletionTokens: 5}), 0.001)
	assert.True(t, scoreConfidence("stop", &ai.Usage{PromptTokens: 100, CompletionTokens: 5}) < ReviewThreshold)
}
