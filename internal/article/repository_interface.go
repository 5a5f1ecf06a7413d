package article

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, authorID int, req CreateArticleRequest) (*Article, error)
	GetByID(ctx context.Context, id int) (*Article, error)
	List(ctx context.Context, limit, offset int) ([]Article, error)
	HasAccess(ctx context.Context, userID, articleID int) (bool, error)
	GrantAccess(ctx context.Context, userID int, articleID *int, until time.Time) (*PremiumAccess, error)
	PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
