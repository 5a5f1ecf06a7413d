package wallet

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrInsufficientBalance    = errors.New("insufficient balance")
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrTransactionNotPending  = errors.New("transaction is not pending")
	ErrDuplicateTransactionID = errors.New("transaction id already used")
)

type PostgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetOrCreateWallet(ctx context.Context, userID int) (*Wallet, error) {
	w := &Wallet{}
	err := r.db.GetContext(ctx, w, `SELECT * FROM wallets WHERE user_id = $1`, userID)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	err = r.db.QueryRowxContext(ctx,
		`INSERT INTO wallets (user_id)
		 VALUES ($1)
		 RETURNING id, user_id, balance, created_at, updated_at`,
		userID,
	).StructScan(w)
	if err != nil {
		return nil, err
	}

	return w, nil
}

// GetBalance returns the current balance. A missing wallet means an empty
// wallet; any other failure is returned as an error, never as a zero balance.
func (r *PostgresRepository) GetBalance(ctx context.Context, userID int) (int64, error) {
	var balance int64
	err := r.db.GetContext(ctx, &balance, `SELECT balance FROM wallets WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// lockWallet loads the wallet row FOR UPDATE, creating it when missing.
func lockWallet(ctx context.Context, tx *sqlx.Tx, userID int) (*Wallet, error) {
	var w Wallet
	err := tx.QueryRowxContext(ctx,
		`SELECT id, user_id, balance, created_at, updated_at
		 FROM wallets
		 WHERE user_id = $1
		 FOR UPDATE`,
		userID,
	).StructScan(&w)
	if errors.Is(err, sql.ErrNoRows) {
		err = tx.QueryRowxContext(ctx,
			`INSERT INTO wallets (user_id)
			 VALUES ($1)
			 RETURNING id, user_id, balance, created_at, updated_at`,
			userID,
		).StructScan(&w)
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// Credit adds coins to the wallet and appends a ledger entry, all in one
// database transaction.
func (r *PostgresRepository) Credit(ctx context.Context, userID int, amount int64, source, description string, metadata []byte) (*Wallet, error) {
	if amount <= 0 {
		return nil, errors.New("credit amount must be positive")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	w, err := lockWallet(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	newBalance := w.Balance + amount
	if _, err := tx.ExecContext(ctx,
		`UPDATE wallets SET balance = $1, updated_at = NOW() WHERE id = $2`,
		newBalance, w.ID,
	); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO wallet_transactions (wallet_id, amount, type, source, description, metadata, balance_after)
		 VALUES ($1, $2, 'credit', $3, $4, $5, $6)`,
		w.ID, amount, source, description, nullableJSON(metadata), newBalance,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	w.Balance = newBalance
	return w, nil
}

// Reserve provisionally debits the wallet: balance decrement, pending
// reservation row and debit ledger entry are written atomically. Insufficient
// balance leaves the wallet untouched.
func (r *PostgresRepository) Reserve(ctx context.Context, userID int, transactionID string, amount int64, description string, metadata []byte) (*Reservation, int64, error) {
	if amount <= 0 {
		return nil, 0, errors.New("reservation amount must be positive")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback()

	w, err := lockWallet(ctx, tx, userID)
	if err != nil {
		return nil, 0, err
	}

	if w.Balance < amount {
		return nil, w.Balance, ErrInsufficientBalance
	}

	newBalance := w.Balance - amount
	if _, err := tx.ExecContext(ctx,
		`UPDATE wallets SET balance = $1, updated_at = NOW() WHERE id = $2`,
		newBalance, w.ID,
	); err != nil {
		return nil, 0, err
	}

	res := &Reservation{}
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO pending_transactions (transaction_id, wallet_id, amount, status, description, metadata)
		 VALUES ($1, $2, $3, 'pending', $4, $5)
		 RETURNING id, transaction_id, wallet_id, amount, status, description, metadata, created_at, resolved_at`,
		transactionID, w.ID, amount, description, nullableJSON(metadata),
	).StructScan(res)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, 0, ErrDuplicateTransactionID
		}
		return nil, 0, err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO wallet_transactions (wallet_id, amount, type, source, description, metadata, balance_after)
		 VALUES ($1, $2, 'debit', 'reservation', $3, $4, $5)`,
		w.ID, -amount, description, nullableJSON(metadata), newBalance,
	); err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, err
	}

	return res, newBalance, nil
}

// Commit finalizes a pending reservation. The conditional update's affected
// row count proves exactly-once resolution: a second commit of the same id
// matches zero rows and is reported as a no-op, never a second debit.
func (r *PostgresRepository) Commit(ctx context.Context, transactionID string, metadata []byte) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE pending_transactions
		 SET status = 'completed',
		     metadata = COALESCE($2, metadata),
		     resolved_at = NOW()
		 WHERE transaction_id = $1 AND status = 'pending'`,
		transactionID, nullableJSON(metadata),
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 1 {
		return nil
	}

	res, err := r.GetReservation(ctx, transactionID)
	if err != nil {
		return err
	}
	if res.Status == StatusCompleted {
		// Already committed: idempotent no-op.
		return nil
	}
	return ErrTransactionNotPending
}

// Refund reverses a pending reservation: marks it refunded and credits the
// amount back, atomically. Refunding a completed or already-refunded
// reservation never credits twice.
func (r *PostgresRepository) Refund(ctx context.Context, transactionID, reason string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var res Reservation
	err = tx.QueryRowxContext(ctx,
		`UPDATE pending_transactions
		 SET status = 'refunded', resolved_at = NOW()
		 WHERE transaction_id = $1 AND status = 'pending'
		 RETURNING id, transaction_id, wallet_id, amount, status, description, metadata, created_at, resolved_at`,
		transactionID,
	).StructScan(&res)
	if errors.Is(err, sql.ErrNoRows) {
		existing, lookupErr := r.GetReservation(ctx, transactionID)
		if lookupErr != nil {
			return lookupErr
		}
		if existing.Status == StatusRefunded {
			// Already refunded: idempotent no-op.
			return nil
		}
		return ErrTransactionNotPending
	}
	if err != nil {
		return err
	}

	var newBalance int64
	err = tx.QueryRowxContext(ctx,
		`UPDATE wallets
		 SET balance = balance + $1, updated_at = NOW()
		 WHERE id = $2
		 RETURNING balance`,
		res.Amount, res.WalletID,
	).Scan(&newBalance)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO wallet_transactions (wallet_id, amount, type, source, description, metadata, balance_after)
		 VALUES ($1, $2, 'credit', 'refund', $3, $4, $5)`,
		res.WalletID, res.Amount, reason, nullableJSON(res.Metadata), newBalance,
	); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *PostgresRepository) GetReservation(ctx context.Context, transactionID string) (*Reservation, error) {
	res := &Reservation{}
	err := r.db.GetContext(ctx, res,
		`SELECT id, transaction_id, wallet_id, amount, status, description, metadata, created_at, resolved_at
		 FROM pending_transactions
		 WHERE transaction_id = $1`,
		transactionID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *PostgresRepository) GetTransactions(ctx context.Context, userID int, limit, offset int) ([]Transaction, error) {
	if limit <= 0 {
		limit = 50
	}

	var walletID int
	err := r.db.GetContext(ctx, &walletID, `SELECT id FROM wallets WHERE user_id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []Transaction{}, nil
		}
		return nil, err
	}

	var txs []Transaction
	err = r.db.SelectContext(ctx, &txs, `
		SELECT id, wallet_id, amount, type, source, description, metadata, balance_after, created_at
		FROM wallet_transactions
		WHERE wallet_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, walletID, limit, offset)
	if err != nil {
		return nil, err
	}

	return txs, nil
}

// Reconcile checks the wallet balance against the ledger sum. The two can
// drift only through out-of-band writes; this is the operator's detector.
func (r *PostgresRepository) Reconcile(ctx context.Context, userID int) (*ReconciliationReport, error) {
	w := &Wallet{}
	err := r.db.GetContext(ctx, w, `SELECT * FROM wallets WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}

	var ledgerSum int64
	err = r.db.GetContext(ctx, &ledgerSum,
		`SELECT COALESCE(SUM(amount), 0) FROM wallet_transactions WHERE wallet_id = $1`,
		w.ID,
	)
	if err != nil {
		return nil, err
	}

	return &ReconciliationReport{
		UserID:     userID,
		WalletID:   w.ID,
		Balance:    w.Balance,
		LedgerSum:  ledgerSum,
		Reconciled: w.Balance == ledgerSum,
	}, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func nullableJSON(metadata []byte) interface{} {
	if len(metadata) == 0 {
		return nil
	}
	return metadata
}
