package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/KhanPromiseP/cverra-sub006/internal/logger"
	"github.com/KhanPromiseP/cverra-sub006/internal/wallet"
)

var (
	ErrNotCompleted = errors.New("payment not completed")
	ErrCancelled    = errors.New("payment was cancelled")
)

// CheckoutClient is the provider surface the service needs; satisfied by
// *Client.
type CheckoutClient interface {
	CreateCheckout(ctx context.Context, request CheckoutRequest) (*CheckoutSession, error)
	GetCheckout(ctx context.Context, sessionID string) (*CheckoutSession, error)
}

type Service interface {
	StartTopUp(ctx context.Context, userID int, coins int64) (*TopUpResponse, error)
	Confirm(ctx context.Context, userID int, sessionID string) (*ConfirmResponse, error)
	History(ctx context.Context, userID, limit, offset int) ([]Payment, error)
}

type service struct {
	repo      Repository
	client    CheckoutClient
	wallets   wallet.Service
	returnURL string
	cancelURL string
}

func NewService(repo Repository, client CheckoutClient, wallets wallet.Service, returnURL, cancelURL string) Service {
	return &service{
		repo:      repo,
		client:    client,
		wallets:   wallets,
		returnURL: returnURL,
		cancelURL: cancelURL,
	}
}

// StartTopUp opens a checkout session for a coin purchase and records it as
// pending. Coins are only credited on a confirmed, paid session.
func (s *service) StartTopUp(ctx context.Context, userID int, coins int64) (*TopUpResponse, error) {
	if coins < MinTopUpCoins || coins > MaxTopUpCoins {
		return nil, fmt.Errorf("coin amount must be between %d and %d", MinTopUpCoins, MaxTopUpCoins)
	}

	amountCents := coins * CoinPriceCents

	session, err := s.client.CreateCheckout(ctx, CheckoutRequest{
		AmountCents: amountCents,
		Currency:    "usd",
		Reference:   fmt.Sprintf("topup-%d-%d", userID, coins),
		ReturnURL:   s.returnURL,
		CancelURL:   s.cancelURL,
		Metadata: map[string]string{
			"user_id": strconv.Itoa(userID),
			"coins":   strconv.FormatInt(coins, 10),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open checkout session: %w", err)
	}

	if _, err := s.repo.Create(ctx, userID, session.ID, coins, amountCents, session.Currency); err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	logger.Infof("Top-up started: user %d, %d coins, session %s", userID, coins, session.ID)

	return &TopUpResponse{
		SessionID:   session.ID,
		CheckoutURL: session.CheckoutURL,
		Coins:       coins,
		AmountCents: amountCents,
		Currency:    session.Currency,
	}, nil
}

// Confirm verifies the session with the provider and credits the coins. Safe
// to call repeatedly: the pending-to-credited flip happens at most once.
func (s *service) Confirm(ctx context.Context, userID int, sessionID string) (*ConfirmResponse, error) {
	p, err := s.repo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, ErrPaymentNotFound
	}

	if p.Status == StatusCredited {
		return s.confirmed(ctx, p)
	}
	if p.Status == StatusCancelled {
		return nil, ErrCancelled
	}

	session, err := s.client.GetCheckout(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify checkout session: %w", err)
	}

	switch session.Status {
	case SessionPaid:
		// proceed
	case SessionCancelled:
		if err := s.repo.MarkCancelled(ctx, sessionID); err != nil {
			logger.Warnf("failed to mark payment %s cancelled: %v", sessionID, err)
		}
		return nil, ErrCancelled
	default:
		return nil, ErrNotCompleted
	}

	credited, err := s.repo.MarkCredited(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !credited {
		// Concurrent confirmation already credited it.
		return s.confirmed(ctx, p)
	}

	if _, err := s.wallets.TopUp(ctx, userID, p.Coins, "topup",
		fmt.Sprintf("coin top-up (%s)", sessionID)); err != nil {
		// Payment row says credited but the wallet write failed. Loud log:
		// the row and the session id are enough for an operator to replay
		// the credit.
		logger.Errorf("TOP-UP CREDIT FAILED: session %s, user %d, %d coins: %v", sessionID, userID, p.Coins, err)
		return nil, fmt.Errorf("failed to credit wallet: %w", err)
	}

	logger.Infof("Top-up credited: user %d, %d coins, session %s", userID, p.Coins, sessionID)
	return s.confirmed(ctx, p)
}

func (s *service) History(ctx context.Context, userID, limit, offset int) ([]Payment, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

func (s *service) confirmed(ctx context.Context, p *Payment) (*ConfirmResponse, error) {
	balance, err := s.wallets.GetBalance(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	return &ConfirmResponse{
		SessionID: p.SessionID,
		Coins:     p.Coins,
		Balance:   balance,
		Status:    StatusCredited,
	}, nil
}
