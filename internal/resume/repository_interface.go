package resume

import "context"

type Repository interface {
	Create(ctx context.Context, userID int, title, language string, content []byte) (*Resume, error)
	GetByID(ctx context.Context, id int) (*Resume, error)
	ListByUser(ctx context.Context, userID int) ([]Resume, error)
	Update(ctx context.Context, id int, title string, content []byte) (*Resume, error)
	Delete(ctx context.Context, id int) error
}
