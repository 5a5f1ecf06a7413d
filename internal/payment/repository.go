package payment

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrPaymentNotFound = errors.New("payment not found")

type PostgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const paymentColumns = `id, user_id, session_id, coins, amount_cents, currency, status, created_at, updated_at, credited_at`

func (r *PostgresRepository) Create(ctx context.Context, userID int, sessionID string, coins, amountCents int64, currency string) (*Payment, error) {
	p := &Payment{}
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO payments (user_id, session_id, coins, amount_cents, currency, status)
		 VALUES ($1, $2, $3, $4, $5, 'pending')
		 RETURNING `+paymentColumns,
		userID, sessionID, coins, amountCents, currency,
	).StructScan(p)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostgresRepository) GetBySessionID(ctx context.Context, sessionID string) (*Payment, error) {
	p := &Payment{}
	err := r.db.GetContext(ctx, p,
		`SELECT `+paymentColumns+` FROM payments WHERE session_id = $1`,
		sessionID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// MarkCredited flips pending to credited. The conditional update makes the
// credit exactly-once: a replayed confirmation finds zero rows and stops.
func (r *PostgresRepository) MarkCredited(ctx context.Context, sessionID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE payments
		 SET status = 'credited', credited_at = NOW(), updated_at = NOW()
		 WHERE session_id = $1 AND status = 'pending'`,
		sessionID,
	)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (r *PostgresRepository) MarkCancelled(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE payments
		 SET status = 'cancelled', updated_at = NOW()
		 WHERE session_id = $1 AND status = 'pending'`,
		sessionID,
	)
	return err
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID, limit, offset int) ([]Payment, error) {
	payments := []Payment{}
	err := r.db.SelectContext(ctx, &payments,
		`SELECT `+paymentColumns+` FROM payments
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	return payments, nil
}
