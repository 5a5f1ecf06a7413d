package translation

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrTranslationNotFound = errors.New("translation not found")

type PostgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const translationColumns = `id, resume_id, language, data, status, confidence, needs_review, attempt_count, ai_model, tokens_used, last_error, created_at, updated_at, last_accessed_at`

func (r *PostgresRepository) GetTranslation(ctx context.Context, resumeID int, language string) (*Translation, error) {
	t := &Translation{}
	err := r.db.GetContext(ctx, t,
		`SELECT `+translationColumns+`
		 FROM resume_translations
		 WHERE resume_id = $1 AND language = $2`,
		resumeID, language,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTranslationNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// SaveCompleted upserts a successful result, resetting the failure counters.
func (r *PostgresRepository) SaveCompleted(ctx context.Context, resumeID int, language string, data []byte, confidence float64, needsReview bool, aiModel string, tokensUsed int) (*Translation, error) {
	t := &Translation{}
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO resume_translations (resume_id, language, data, status, confidence, needs_review, attempt_count, ai_model, tokens_used, last_error)
		 VALUES ($1, $2, $3, 'completed', $4, $5, 0, $6, $7, NULL)
		 ON CONFLICT (resume_id, language) DO UPDATE
		 SET data = EXCLUDED.data,
		     status = 'completed',
		     confidence = EXCLUDED.confidence,
		     needs_review = EXCLUDED.needs_review,
		     attempt_count = 0,
		     ai_model = EXCLUDED.ai_model,
		     tokens_used = EXCLUDED.tokens_used,
		     last_error = NULL,
		     updated_at = NOW()
		 RETURNING `+translationColumns,
		resumeID, language, data, confidence, needsReview, aiModel, tokensUsed,
	).StructScan(t)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// SaveFailed upserts a failed result and bumps the attempt counter.
func (r *PostgresRepository) SaveFailed(ctx context.Context, resumeID int, language, aiModel, lastError string) (*Translation, error) {
	t := &Translation{}
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO resume_translations (resume_id, language, status, attempt_count, ai_model, last_error)
		 VALUES ($1, $2, 'failed', 1, $3, $4)
		 ON CONFLICT (resume_id, language) DO UPDATE
		 SET status = 'failed',
		     attempt_count = resume_translations.attempt_count + 1,
		     ai_model = EXCLUDED.ai_model,
		     last_error = EXCLUDED.last_error,
		     updated_at = NOW()
		 RETURNING `+translationColumns,
		resumeID, language, aiModel, lastError,
	).StructScan(t)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *PostgresRepository) TouchAccessed(ctx context.Context, resumeID int, language string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE resume_translations SET last_accessed_at = NOW() WHERE resume_id = $1 AND language = $2`,
		resumeID, language,
	)
	return err
}

// ResetAttempts clears the failure state so a capped translation can be
// retried again. Operator action.
func (r *PostgresRepository) ResetAttempts(ctx context.Context, resumeID int, language string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE resume_translations
		 SET attempt_count = 0, last_error = NULL, updated_at = NOW()
		 WHERE resume_id = $1 AND language = $2`,
		resumeID, language,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrTranslationNotFound
	}
	return nil
}

func (r *PostgresRepository) UpsertJob(ctx context.Context, resumeID int, language string, status Status, aiModel string, lastError *string) (*Job, error) {
	j := &Job{}
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO translation_jobs (resume_id, target_language, status, attempt_count, ai_model, last_error)
		 VALUES ($1, $2, $3, 1, $4, $5)
		 ON CONFLICT (resume_id, target_language) DO UPDATE
		 SET status = EXCLUDED.status,
		     attempt_count = translation_jobs.attempt_count + 1,
		     ai_model = EXCLUDED.ai_model,
		     last_error = EXCLUDED.last_error,
		     updated_at = NOW()
		 RETURNING id, resume_id, target_language, status, attempt_count, ai_model, last_error, created_at, updated_at`,
		resumeID, language, status, aiModel, lastError,
	).StructScan(j)
	if err != nil {
		return nil, err
	}
	return j, nil
}

func (r *PostgresRepository) SetJobStatus(ctx context.Context, resumeID int, language string, status Status, lastError *string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE translation_jobs
		 SET status = $3, last_error = $4, updated_at = NOW()
		 WHERE resume_id = $1 AND target_language = $2`,
		resumeID, language, status, lastError,
	)
	return err
}

func (r *PostgresRepository) GetJob(ctx context.Context, resumeID int, language string) (*Job, error) {
	j := &Job{}
	err := r.db.GetContext(ctx, j,
		`SELECT id, resume_id, target_language, status, attempt_count, ai_model, last_error, created_at, updated_at
		 FROM translation_jobs
		 WHERE resume_id = $1 AND target_language = $2`,
		resumeID, language,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTranslationNotFound
	}
	if err != nil {
		return nil, err
	}
	return j, nil
}

// PurgeStale removes translations not read since the cutoff, with their job
// rows. The resume itself remains the durable source.
func (r *PostgresRepository) PurgeStale(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM resume_translations WHERE last_accessed_at < $1`, cutoff,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
