package postgres

import (
	"context"
	"errors"
	"fmt"

	"emoney-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

// Create inserts a new wallet within a database transaction.
func (r *WalletRepo) Create(ctx context.Context, tx pgx.Tx, w *domain.Wallet) error {
	query := `INSERT INTO wallets (id, user_id, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := tx.Exec(ctx, query, w.ID, w.UserID, w.Balance, w.CreatedAt, w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// GetByUserID fetches a wallet by owner (non-locking read).
func (r *WalletRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT id, user_id, balance, created_at, updated_at
		FROM wallets WHERE user_id = $1`

	return r.scanWallet(r.pool.QueryRow(ctx, query, userID))
}

// GetByUserIDForUpdate fetches a wallet by owner with pessimistic locking.
// This MUST be called within a transaction.
func (r *WalletRepo) GetByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT id, user_id, balance, created_at, updated_at
		FROM wallets WHERE user_id = $1 FOR UPDATE`

	return r.scanWallet(tx.QueryRow(ctx, query, userID))
}

// AdjustBalance applies delta to the wallet's balance and returns the new
// value. The non-negativity CHECK constraint on the column is the last line
// of defense; callers check the precondition against the locked row first.
func (r *WalletRepo) AdjustBalance(ctx context.Context, tx pgx.Tx, userID uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	query := `UPDATE wallets SET balance = balance + $1, updated_at = NOW()
		WHERE user_id = $2 RETURNING balance`

	var balance decimal.Decimal
	err := tx.QueryRow(ctx, query, delta, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, fmt.Errorf("wallet not found for user: %s", userID)
		}
		return decimal.Zero, fmt.Errorf("adjust balance: %w", err)
	}
	return balance, nil
}

// SumBalances returns the total of all wallet balances.
func (r *WalletRepo) SumBalances(ctx context.Context) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(balance), 0) FROM wallets`

	var total decimal.Decimal
	if err := r.pool.QueryRow(ctx, query).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("sum balances: %w", err)
	}
	return total, nil
}

// scanWallet is a helper to scan a single row into a Wallet.
func (r *WalletRepo) scanWallet(row pgx.Row) (*domain.Wallet, error) {
	w := &domain.Wallet{}
	err := row.Scan(&w.ID, &w.UserID, &w.Balance, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan wallet: %w", err)
	}
	return w, nil
}
