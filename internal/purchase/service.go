package purchase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/KhanPromiseP/cverra-sub006/internal/article"
	"github.com/KhanPromiseP/cverra-sub006/internal/logger"
	"github.com/KhanPromiseP/cverra-sub006/internal/metrics"
	"github.com/KhanPromiseP/cverra-sub006/internal/wallet"
)

var (
	ErrNotPremium        = errors.New("article is not premium")
	ErrAlreadyUnlocked   = errors.New("article already unlocked")
	ErrInsufficientFunds = errors.New("insufficient coin balance")
	// ErrUnlockFailed covers the reservation-succeeded-but-unlock-failed
	// branch; the reservation has been refunded by the time it is returned.
	ErrUnlockFailed = errors.New("article unlock failed")
)

type Result struct {
	ArticleID     int       `json:"article_id"`
	TransactionID string    `json:"transaction_id"`
	AmountCoins   int64     `json:"amount_coins"`
	BalanceAfter  int64     `json:"balance_after"`
	AccessUntil   time.Time `json:"access_until"`
}

type Service interface {
	UnlockArticle(ctx context.Context, userID, articleID int) (*Result, error)
}

type service struct {
	wallets  wallet.Service
	articles article.Repository
}

func NewService(wallets wallet.Service, articles article.Repository) Service {
	return &service{wallets: wallets, articles: articles}
}

// UnlockArticle spends coins to unlock one premium article:
// reserve -> grant access -> commit, with a refund compensating any failure
// after the reservation. A refund is issued if and only if the reservation
// succeeded.
func (s *service) UnlockArticle(ctx context.Context, userID, articleID int) (*Result, error) {
	a, err := s.articles.GetByID(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if !a.IsPremium {
		return nil, ErrNotPremium
	}

	hasAccess, err := s.articles.HasAccess(ctx, userID, articleID)
	if err != nil {
		return nil, err
	}
	if hasAccess {
		return nil, ErrAlreadyUnlocked
	}

	ok, err := s.wallets.CanAfford(ctx, userID, a.PriceCoins)
	if err != nil {
		return nil, err
	}
	if !ok {
		metrics.RecordPurchase("insufficient_funds")
		return nil, ErrInsufficientFunds
	}

	transactionID := uuid.NewString()
	description := fmt.Sprintf("unlock article %d", articleID)
	meta := map[string]interface{}{"article_id": articleID, "user_id": userID}

	res, err := s.wallets.Reserve(ctx, userID, transactionID, a.PriceCoins, description, meta)
	if err != nil {
		if errors.Is(err, wallet.ErrInsufficientBalance) {
			// Nothing was reserved in this branch; there is nothing to
			// refund.
			metrics.RecordPurchase("insufficient_funds")
			return nil, ErrInsufficientFunds
		}
		metrics.RecordPurchase("error")
		return nil, err
	}

	// From here on a pending reservation exists; every failure path must
	// refund it.
	until := time.Now().Add(article.SinglePurchaseAccessTTL)
	grant, unlockErr := s.grantAccess(ctx, userID, articleID, until)
	if unlockErr != nil {
		if refundErr := s.wallets.Refund(ctx, transactionID, "article unlock failed"); refundErr != nil {
			logger.Errorf("refund of tx %s failed after unlock failure: %v", transactionID, refundErr)
		}
		metrics.RecordPurchase("unlock_failed")
		return nil, fmt.Errorf("%w: %v", ErrUnlockFailed, unlockErr)
	}

	if err := s.wallets.Commit(ctx, transactionID, meta); err != nil {
		// Access is granted and the debit stands as pending; commit is
		// idempotent, so an operator retry resolves it. Do not refund.
		logger.Errorf("commit of tx %s failed after successful unlock: %v (needs operator retry)", transactionID, err)
		metrics.RecordPurchase("commit_failed")
		return nil, err
	}

	metrics.RecordPurchase("success")
	logger.Infof("User %d unlocked article %d for %d coins (tx %s)", userID, articleID, a.PriceCoins, transactionID)

	return &Result{
		ArticleID:     articleID,
		TransactionID: transactionID,
		AmountCoins:   a.PriceCoins,
		BalanceAfter:  res.BalanceAfter,
		AccessUntil:   grant.AccessUntil,
	}, nil
}

// grantAccess isolates the unlock call so a panic inside it is compensated
// like any other failure.
func (s *service) grantAccess(ctx context.Context, userID, articleID int, until time.Time) (grant *article.PremiumAccess, err error) {
	defer func() {
		if r := recover(); r != nil {
			grant = nil
			err = fmt.Errorf("unlock panicked: %v", r)
		}
	}()

	return s.articles.GrantAccess(ctx, userID, &articleID, until)
}
