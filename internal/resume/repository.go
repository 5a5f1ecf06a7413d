package resume

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrResumeNotFound = errors.New("resume not found")

type PostgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, userID int, title, language string, content []byte) (*Resume, error) {
	res := &Resume{}
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO resumes (user_id, title, language, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, title, language, content, created_at, updated_at
	`, userID, title, language, content).StructScan(res)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (*Resume, error) {
	res := &Resume{}
	err := r.db.GetContext(ctx, res, `
		SELECT id, user_id, title, language, content, created_at, updated_at
		FROM resumes
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrResumeNotFound
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int) ([]Resume, error) {
	resumes := []Resume{}
	err := r.db.SelectContext(ctx, &resumes, `
		SELECT id, user_id, title, language, content, created_at, updated_at
		FROM resumes
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`, userID)
	return resumes, err
}

func (r *PostgresRepository) Update(ctx context.Context, id int, title string, content []byte) (*Resume, error) {
	res := &Resume{}
	err := r.db.QueryRowxContext(ctx, `
		UPDATE resumes
		SET title = COALESCE(NULLIF($2, ''), title),
		    content = COALESCE($3, content),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING id, user_id, title, language, content, created_at, updated_at
	`, id, title, content).StructScan(res)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrResumeNotFound
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM resumes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrResumeNotFound
	}
	return nil
}
