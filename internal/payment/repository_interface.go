package payment

import "context"

type Repository interface {
	Create(ctx context.Context, userID int, sessionID string, coins, amountCents int64, currency string) (*Payment, error)
	GetBySessionID(ctx context.Context, sessionID string) (*Payment, error)
	MarkCredited(ctx context.Context, sessionID string) (bool, error)
	MarkCancelled(ctx context.Context, sessionID string) error
	ListByUser(ctx context.Context, userID, limit, offset int) ([]Payment, error)
}
