package translation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/KhanPromiseP/cverra-sub006/internal/ai"
	"github.com/KhanPromiseP/cverra-sub006/internal/logger"
	"github.com/KhanPromiseP/cverra-sub006/internal/metrics"
	"github.com/KhanPromiseP/cverra-sub006/internal/resume"
)

var (
	ErrUnsupportedLanguage = errors.New("unsupported target language")
	ErrAttemptsExhausted   = errors.New("translation retry attempts exhausted")
	ErrNotFailed           = errors.New("translation is not in a failed state")
	// ErrTranslationFailed is the caller-facing failure; the technical cause
	// is logged and stored on the translation row, not surfaced.
	ErrTranslationFailed = errors.New("translation unavailable, try again")
)

// AIClient is the completion surface the service needs; satisfied by
// *ai.Client.
type AIClient interface {
	CreateCompletion(ctx context.Context, request ai.CompletionRequest) (*ai.CompletionResponse, error)
}

type Service interface {
	Translate(ctx context.Context, resumeID int, language string, opts Options) (*Result, error)
	RetryFailed(ctx context.Context, resumeID int, language string, opts Options) (*Result, error)
	Status(ctx context.Context, resumeID int, language string) (*Job, error)
	Get(ctx context.Context, resumeID int, language string) (*Translation, error)
}

type service struct {
	repo         Repository
	resumes      resume.Repository
	client       AIClient
	cache        *Cache
	defaultModel string

	httpRetries int
	retryDelay  time.Duration
}

func NewService(repo Repository, resumes resume.Repository, client AIClient, cache *Cache, defaultModel string) Service {
	return &service{
		repo:         repo,
		resumes:      resumes,
		client:       client,
		cache:        cache,
		defaultModel: defaultModel,
		httpRetries:  3,
		retryDelay:   time.Second,
	}
}

func (s *service) Translate(ctx context.Context, resumeID int, language string, opts Options) (*Result, error) {
	if !IsSupportedLanguage(language) {
		return nil, fmt.Errorf("%w: %q (supported: %v)", ErrUnsupportedLanguage, language, SupportedLanguages())
	}

	if opts.UseCache && !opts.Force {
		if result := s.readCached(ctx, resumeID, language); result != nil {
			return result, nil
		}
	}

	existing, err := s.repo.GetTranslation(ctx, resumeID, language)
	if err != nil && !errors.Is(err, ErrTranslationNotFound) {
		return nil, err
	}

	if existing != nil {
		if existing.Status == StatusCompleted && !opts.Force {
			result := resultFrom(existing, true)
			s.warmCache(ctx, resumeID, language, result)
			return result, nil
		}
		if existing.Status == StatusFailed {
			// Force redoes completed work; it never reopens a capped
			// failure. That takes an admin reset.
			if existing.AttemptCount >= MaxAttempts {
				return nil, fmt.Errorf("%w (%d attempts)", ErrAttemptsExhausted, existing.AttemptCount)
			}
			if !opts.Force {
				// Terminal failure: only the explicit retry operation may
				// re-invoke the model.
				return nil, fmt.Errorf("%w (use retry, %d/%d attempts used)", ErrTranslationFailed, existing.AttemptCount, MaxAttempts)
			}
		}
	}

	if opts.Force {
		s.invalidateCache(ctx, resumeID, language)
	}

	return s.run(ctx, resumeID, language, opts)
}

// RetryFailed re-runs a terminally failed translation, bounded by
// MaxAttempts to prevent retry storms.
func (s *service) RetryFailed(ctx context.Context, resumeID int, language string, opts Options) (*Result, error) {
	if !IsSupportedLanguage(language) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, language)
	}

	existing, err := s.repo.GetTranslation(ctx, resumeID, language)
	if err != nil {
		return nil, err
	}
	if existing.Status != StatusFailed {
		return nil, ErrNotFailed
	}
	if existing.AttemptCount >= MaxAttempts {
		return nil, fmt.Errorf("%w (%d attempts)", ErrAttemptsExhausted, existing.AttemptCount)
	}

	s.invalidateCache(ctx, resumeID, language)
	return s.run(ctx, resumeID, language, opts)
}

func (s *service) Status(ctx context.Context, resumeID int, language string) (*Job, error) {
	return s.repo.GetJob(ctx, resumeID, language)
}

func (s *service) Get(ctx context.Context, resumeID int, language string) (*Translation, error) {
	return s.repo.GetTranslation(ctx, resumeID, language)
}

// run performs one full translation attempt: job row to processing, bounded
// model calls, structural validation, persisted outcome.
func (s *service) run(ctx context.Context, resumeID int, language string, opts Options) (*Result, error) {
	doc, err := s.resumes.GetByID(ctx, resumeID)
	if err != nil {
		return nil, err
	}

	model := opts.AIModel
	if model == "" {
		model = s.defaultModel
	}

	if _, err := s.repo.UpsertJob(ctx, resumeID, language, StatusProcessing, model, nil); err != nil {
		return nil, err
	}

	translated, usage, finishReason, callErr := s.translateDocument(ctx, json.RawMessage(doc.Content), language, model)
	if callErr != nil {
		return nil, s.recordFailure(ctx, resumeID, language, model, callErr)
	}

	confidence := scoreConfidence(finishReason, usage)
	needsReview := confidence < ReviewThreshold

	tokens := 0
	if usage != nil {
		tokens = usage.TotalTokens
	}

	saved, err := s.repo.SaveCompleted(ctx, resumeID, language, translated, confidence, needsReview, model, tokens)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetJobStatus(ctx, resumeID, language, StatusCompleted, nil); err != nil {
		logger.Warnf("failed to close translation job %d/%s: %v", resumeID, language, err)
	}

	result := resultFrom(saved, false)
	s.warmCache(ctx, resumeID, language, result)

	metrics.RecordTranslation("completed")
	logger.Infof("Translated resume %d into %s (confidence %.2f, review=%v)", resumeID, language, confidence, needsReview)

	return result, nil
}

// translateDocument calls the model with bounded retries and exponential
// backoff. A structural mismatch aborts immediately: the same input would
// fail the same way.
func (s *service) translateDocument(ctx context.Context, source json.RawMessage, language, model string) (json.RawMessage, *ai.Usage, string, error) {
	messages := ai.BuildTranslationMessages(source, language)

	var lastErr error
	for attempt := 0; attempt < s.httpRetries; attempt++ {
		if attempt > 0 {
			delay := s.retryDelay << (attempt - 1)
			select {
			case <-ctx.Done():
				return nil, nil, "", ctx.Err()
			case <-time.After(delay):
			}
		}

		resp, err := s.client.CreateCompletion(ctx, ai.CompletionRequest{
			Model:    model,
			Messages: messages,
		})
		if err != nil {
			metrics.RecordAIRequest(model, "error", 0)
			lastErr = err
			logger.Warnf("translation attempt %d failed: %v", attempt+1, err)
			continue
		}

		choice := resp.Choices[0]
		translated := json.RawMessage(ai.ExtractJSON(choice.Message.Content))

		if err := ai.ValidateStructure(source, translated); err != nil {
			tokens := 0
			if resp.Usage != nil {
				tokens = resp.Usage.TotalTokens
			}
			metrics.RecordAIRequest(model, "invalid", tokens)

			if errors.Is(err, ai.ErrStructuralMismatch) {
				return nil, nil, "", err
			}
			// Malformed JSON can be model noise; retry.
			lastErr = err
			continue
		}

		tokens := 0
		if resp.Usage != nil {
			tokens = resp.Usage.TotalTokens
		}
		metrics.RecordAIRequest(model, "ok", tokens)

		return translated, resp.Usage, choice.FinishReason, nil
	}

	return nil, nil, "", fmt.Errorf("all %d attempts failed: %w", s.httpRetries, lastErr)
}

func (s *service) recordFailure(ctx context.Context, resumeID int, language, model string, cause error) error {
	causeText := cause.Error()

	if _, err := s.repo.SaveFailed(ctx, resumeID, language, model, causeText); err != nil {
		logger.Errorf("failed to persist translation failure for %d/%s: %v", resumeID, language, err)
	}
	if err := s.repo.SetJobStatus(ctx, resumeID, language, StatusFailed, &causeText); err != nil {
		logger.Warnf("failed to mark translation job %d/%s failed: %v", resumeID, language, err)
	}

	metrics.RecordTranslation("failed")
	logger.Errorf("Translation of resume %d into %s failed: %v", resumeID, language, cause)

	// Full detail is logged above; callers get the generic failure.
	return fmt.Errorf("%w", ErrTranslationFailed)
}

func (s *service) readCached(ctx context.Context, resumeID int, language string) *Result {
	if s.cache == nil {
		return nil
	}
	result := s.cache.Get(ctx, resumeID, language)
	if result == nil {
		return nil
	}

	metrics.RecordTranslationCacheHit()
	if err := s.repo.TouchAccessed(ctx, resumeID, language); err != nil {
		logger.Warnf("failed to touch translation %d/%s: %v", resumeID, language, err)
	}
	return result
}

func (s *service) warmCache(ctx context.Context, resumeID int, language string, result *Result) {
	if s.cache != nil {
		s.cache.Set(ctx, resumeID, language, result)
	}
	if err := s.repo.TouchAccessed(ctx, resumeID, language); err != nil {
		logger.Warnf("failed to touch translation %d/%s: %v", resumeID, language, err)
	}
}

func (s *service) invalidateCache(ctx context.Context, resumeID int, language string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, resumeID, language)
	}
}

func resultFrom(t *Translation, cached bool) *Result {
	return &Result{
		ResumeID:    t.ResumeID,
		Language:    t.Language,
		Data:        t.Data,
		Confidence:  t.Confidence,
		NeedsReview: t.NeedsReview,
		Cached:      cached,
	}
}

// scoreConfidence derives a rough quality score from how the completion
// finished. Truncated or abnormally short outputs are suspect.
func scoreConfidence(finishReason string, usage *ai.Usage) float64 {
	confidence := 0.9
	if finishReason != "stop" {
		confidence = 0.5
	}

	if usage != nil && usage.PromptTokens > 0 {
		ratio := float64(usage.CompletionTokens) / float64(usage.PromptTokens)
		if ratio < 0.1 {
			confidence -= 0.2
		}
	}

	if confidence < 0 {
		confidence = 0
	}
	return confidence
}
