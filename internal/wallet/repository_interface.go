package wallet

import "context"

type Repository interface {
	GetOrCreateWallet(ctx context.Context, userID int) (*Wallet, error)
	GetBalance(ctx context.Context, userID int) (int64, error)
	Credit(ctx context.Context, userID int, amount int64, source, description string, metadata []byte) (*Wallet, error)
	Reserve(ctx context.Context, userID int, transactionID string, amount int64, description string, metadata []byte) (*Reservation, int64, error)
	Commit(ctx context.Context, transactionID string, metadata []byte) error
	Refund(ctx context.Context, transactionID, reason string) error
	GetReservation(ctx context.Context, transactionID string) (*Reservation, error)
	GetTransactions(ctx context.Context, userID int, limit, offset int) ([]Transaction, error)
	Reconcile(ctx context.Context, userID int) (*ReconciliationReport, error)
}
