package wallet

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

type TransactionType string
type ReservationStatus string

const (
	TypeCredit TransactionType = "credit"
	TypeDebit  TransactionType = "debit"

	StatusPending   ReservationStatus = "pending"
	StatusCompleted ReservationStatus = "completed"
	StatusRefunded  ReservationStatus = "refunded"
)

// Wallet holds a user's coin balance. Created lazily on first use.
// Balance is the source of truth; the transaction ledger is the audit trail.
type Wallet struct {
	ID        int       `db:"id" json:"id"`
	UserID    int       `db:"user_id" json:"user_id"`
	Balance   int64     `db:"balance" json:"balance"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Transaction is an append-only ledger entry. Amount is signed: negative for
// debits, positive for credits.
type Transaction struct {
	ID           int             `db:"id" json:"id"`
	WalletID     int             `db:"wallet_id" json:"wallet_id"`
	Amount       int64           `db:"amount" json:"amount"`
	Type         TransactionType `db:"type" json:"type"`
	Source       string          `db:"source" json:"source"` // topup, article_purchase, refund, ...
	Description  string          `db:"description" json:"description"`
	Metadata     types.JSONText  `db:"metadata" json:"metadata,omitempty"`
	BalanceAfter int64           `db:"balance_after" json:"balance_after"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// Reservation is a provisional debit awaiting commit or refund. The
// transaction id is client-supplied and unique, so retries cannot create a
// second reservation for the same id.
type Reservation struct {
	ID            int               `db:"id" json:"id"`
	TransactionID string            `db:"transaction_id" json:"transaction_id"`
	WalletID      int               `db:"wallet_id" json:"wallet_id"`
	Amount        int64             `db:"amount" json:"amount"`
	Status        ReservationStatus `db:"status" json:"status"`
	Description   string            `db:"description" json:"description"`
	Metadata      types.JSONText    `db:"metadata" json:"metadata,omitempty"`
	CreatedAt     time.Time         `db:"created_at" json:"created_at"`
	ResolvedAt    *time.Time        `db:"resolved_at" json:"resolved_at,omitempty"`
}

// ReconciliationReport compares a wallet balance against the sum of its
// ledger entries.
type ReconciliationReport struct {
	UserID     int   `json:"user_id"`
	WalletID   int   `json:"wallet_id"`
	Balance    int64 `json:"balance"`
	LedgerSum  int64 `json:"ledger_sum"`
	Reconciled bool  `json:"reconciled"`
}
