package payment

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusCredited  Status = "credited"
	StatusCancelled Status = "cancelled"
)

// CoinPriceCents is the price of one coin. Pricing is flat; volume discounts
// would live on the provider side as promo codes.
const CoinPriceCents = 10

const (
	MinTopUpCoins = 50
	MaxTopUpCoins = 10000
)

// Payment records one checkout session and whether its coins have been
// credited. session_id is unique so a replayed confirmation cannot credit
// twice.
type Payment struct {
	ID          int        `db:"id" json:"id"`
	UserID      int        `db:"user_id" json:"user_id"`
	SessionID   string     `db:"session_id" json:"session_id"`
	Coins       int64      `db:"coins" json:"coins"`
	AmountCents int64      `db:"amount_cents" json:"amount_cents"`
	Currency    string     `db:"currency" json:"currency"`
	Status      Status     `db:"status" json:"status"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
	CreditedAt  *time.Time `db:"credited_at" json:"credited_at,omitempty"`
}

type TopUpRequest struct {
	Coins int64 `json:"coins" binding:"required,min=50,max=10000"`
}

type TopUpResponse struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
	Coins       int64  `json:"coins"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
}

type ConfirmRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

type ConfirmResponse struct {
	SessionID string `json:"session_id"`
	Coins     int64  `json:"coins"`
	Balance   int64  `json:"balance"`
	Status    Status `json:"status"`
}
