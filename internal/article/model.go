package article

import "time"

type Article struct {
	ID         int       `db:"id" json:"id"`
	AuthorID   int       `db:"author_id" json:"author_id"`
	Title      string    `db:"title" json:"title"`
	Body       string    `db:"body" json:"body,omitempty"`
	Language   string    `db:"language" json:"language"`
	IsPremium  bool      `db:"is_premium" json:"is_premium"`
	PriceCoins int64     `db:"price_coins" json:"price_coins"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// PremiumAccess grants a user access to one premium article, or to all of
// them when ArticleID is nil (subscription), until AccessUntil.
type PremiumAccess struct {
	ID          int       `db:"id" json:"id"`
	UserID      int       `db:"user_id" json:"user_id"`
	ArticleID   *int      `db:"article_id" json:"article_id,omitempty"`
	AccessUntil time.Time `db:"access_until" json:"access_until"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type CreateArticleRequest struct {
	Title      string `json:"title" binding:"required,min=1,max=300"`
	Body       string `json:"body" binding:"required"`
	Language   string `json:"language" binding:"required,min=2,max=8"`
	IsPremium  bool   `json:"is_premium"`
	PriceCoins int64  `json:"price_coins" binding:"omitempty,gte=0"`
}
