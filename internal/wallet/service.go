package wallet

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/KhanPromiseP/cverra-sub006/internal/logger"
	"github.com/KhanPromiseP/cverra-sub006/internal/metrics"
)

type ReserveResult struct {
	TransactionID string `json:"transaction_id"`
	BalanceAfter  int64  `json:"balance_after"`
}

type Service interface {
	GetBalance(ctx context.Context, userID int) (int64, error)
	CanAfford(ctx context.Context, userID int, price int64) (bool, error)
	Reserve(ctx context.Context, userID int, transactionID string, amount int64, description string, metadata map[string]interface{}) (*ReserveResult, error)
	Commit(ctx context.Context, transactionID string, metadata map[string]interface{}) error
	Refund(ctx context.Context, transactionID, reason string) error
	TopUp(ctx context.Context, userID int, amount int64, source, description string) (*Wallet, error)
	GetTransactions(ctx context.Context, userID int, limit, offset int) ([]Transaction, error)
	Reconcile(ctx context.Context, userID int) (*ReconciliationReport, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetBalance(ctx context.Context, userID int) (int64, error) {
	return s.repo.GetBalance(ctx, userID)
}

// CanAfford is a pure read. A non-positive price is never affordable and is
// answered without touching the store.
func (s *service) CanAfford(ctx context.Context, userID int, price int64) (bool, error) {
	if price <= 0 {
		return false, nil
	}

	balance, err := s.repo.GetBalance(ctx, userID)
	if err != nil {
		return false, err
	}
	return balance >= price, nil
}

func (s *service) Reserve(ctx context.Context, userID int, transactionID string, amount int64, description string, metadata map[string]interface{}) (*ReserveResult, error) {
	if transactionID == "" {
		transactionID = uuid.NewString()
	}

	meta, err := marshalMetadata(metadata)
	if err != nil {
		return nil, err
	}

	res, balanceAfter, err := s.repo.Reserve(ctx, userID, transactionID, amount, description, meta)
	if err != nil {
		if errors.Is(err, ErrInsufficientBalance) {
			metrics.RecordReservation("insufficient_funds")
		} else {
			metrics.RecordReservation("error")
		}
		return nil, err
	}

	metrics.RecordReservation("reserved")
	logger.Infof("Reserved %d coins for user %d (tx %s)", amount, userID, res.TransactionID)

	return &ReserveResult{TransactionID: res.TransactionID, BalanceAfter: balanceAfter}, nil
}

func (s *service) Commit(ctx context.Context, transactionID string, metadata map[string]interface{}) error {
	meta, err := marshalMetadata(metadata)
	if err != nil {
		return err
	}

	if err := s.repo.Commit(ctx, transactionID, meta); err != nil {
		return err
	}

	metrics.RecordCommit()
	logger.Infof("Committed reservation %s", transactionID)
	return nil
}

func (s *service) Refund(ctx context.Context, transactionID, reason string) error {
	if err := s.repo.Refund(ctx, transactionID, reason); err != nil {
		// A failed refund means the user paid for nothing. Log loudly and
		// count it; the operation is idempotent and safe to retry.
		if !errors.Is(err, ErrTransactionNotPending) && !errors.Is(err, ErrTransactionNotFound) {
			metrics.RecordRefundFailure()
			logger.Errorf("REFUND FAILED for tx %s (reason %q): %v, retry required", transactionID, reason, err)
		}
		return err
	}

	metrics.RecordRefund()
	logger.Infof("Refunded reservation %s: %s", transactionID, reason)
	return nil
}

func (s *service) TopUp(ctx context.Context, userID int, amount int64, source, description string) (*Wallet, error) {
	w, err := s.repo.Credit(ctx, userID, amount, source, description, nil)
	if err != nil {
		return nil, err
	}
	metrics.RecordWalletTopUp()
	return w, nil
}

func (s *service) GetTransactions(ctx context.Context, userID int, limit, offset int) ([]Transaction, error) {
	return s.repo.GetTransactions(ctx, userID, limit, offset)
}

func (s *service) Reconcile(ctx context.Context, userID int) (*ReconciliationReport, error) {
	return s.repo.Reconcile(ctx, userID)
}

func marshalMetadata(metadata map[string]interface{}) ([]byte, error) {
	if len(metadata) == 0 {
		return nil, nil
	}
	return json.Marshal(metadata)
}
