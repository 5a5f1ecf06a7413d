package article

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/KhanPromiseP/cverra-sub006/internal/db"
)

var ErrArticleNotFound = errors.New("article not found")

// SinglePurchaseAccessTTL is how long a one-off coin purchase keeps an
// article unlocked.
const SinglePurchaseAccessTTL = 365 * 24 * time.Hour

type PostgresRepository struct {
	db *sqlx.DB
}

func NewRepository(database *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: database}
}

func (r *PostgresRepository) Create(ctx context.Context, authorID int, req CreateArticleRequest) (*Article, error) {
	a := &Article{}
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO articles (author_id, title, body, language, is_premium, price_coins)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, author_id, title, body, language, is_premium, price_coins, created_at, updated_at
	`, authorID, req.Title, req.Body, req.Language, req.IsPremium, req.PriceCoins).StructScan(a)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (*Article, error) {
	a := &Article{}
	err := r.db.GetContext(ctx, a, `
		SELECT id, author_id, title, body, language, is_premium, price_coins, created_at, updated_at
		FROM articles
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrArticleNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// List returns article listings without bodies; the paywall decision is per
// article on read.
func (r *PostgresRepository) List(ctx context.Context, limit, offset int) ([]Article, error) {
	if limit <= 0 {
		limit = 20
	}

	articles := []Article{}
	err := r.db.SelectContext(ctx, &articles, `
		SELECT id, author_id, title, '' AS body, language, is_premium, price_coins, created_at, updated_at
		FROM articles
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	return articles, err
}

// HasAccess reports whether the user holds a live grant for the article,
// either article-specific or subscription-wide (article_id IS NULL).
func (r *PostgresRepository) HasAccess(ctx context.Context, userID, articleID int) (bool, error) {
	return db.Exists(ctx, r.db, `
		SELECT EXISTS(
			SELECT 1 FROM premium_access
			WHERE user_id = $1
			  AND (article_id = $2 OR article_id IS NULL)
			  AND access_until > NOW()
		)
	`, userID, articleID)
}

// GrantAccess records a premium access grant. articleID nil means all
// premium articles.
func (r *PostgresRepository) GrantAccess(ctx context.Context, userID int, articleID *int, until time.Time) (*PremiumAccess, error) {
	grant := &PremiumAccess{}
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO premium_access (user_id, article_id, access_until)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, article_id, access_until, created_at
	`, userID, articleID, until).StructScan(grant)
	if err != nil {
		return nil, err
	}
	return grant, nil
}

// PurgeExpired deletes grants that lapsed before the cutoff. Expiry already
// happens by timestamp comparison; this is just table hygiene.
func (r *PostgresRepository) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM premium_access WHERE access_until < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
