package translation

import (
	"context"
	"time"
)

type Repository interface {
	GetTranslation(ctx context.Context, resumeID int, language string) (*Translation, error)
	SaveCompleted(ctx context.Context, resumeID int, language string, data []byte, confidence float64, needsReview bool, aiModel string, tokensUsed int) (*Translation, error)
	SaveFailed(ctx context.Context, resumeID int, language, aiModel, lastError string) (*Translation, error)
	TouchAccessed(ctx context.Context, resumeID int, language string) error
	ResetAttempts(ctx context.Context, resumeID int, language string) error
	UpsertJob(ctx context.Context, resumeID int, language string, status Status, aiModel string, lastError *string) (*Job, error)
	SetJobStatus(ctx context.Context, resumeID int, language string, status Status, lastError *string) error
	GetJob(ctx context.Context, resumeID int, language string) (*Job, error)
	PurgeStale(ctx context.Context, cutoff time.Time) (int64, error)
}
