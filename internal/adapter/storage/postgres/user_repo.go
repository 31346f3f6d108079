package postgres

import (
	"context"
	"errors"
	"fmt"

	"emoney-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UserRepo implements ports.UserRepository.
type UserRepo struct {
	pool Pool
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(pool Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

const userColumns = `id, username, password_hash, role, is_merchant, kyc_status,
	pin_hash, pin_fail_count, is_pin_locked, created_at, updated_at`

// Create inserts a new user within a database transaction.
func (r *UserRepo) Create(ctx context.Context, tx pgx.Tx, u *domain.User) error {
	query := `INSERT INTO users (id, username, password_hash, role, is_merchant, kyc_status,
		pin_hash, pin_fail_count, is_pin_locked, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := tx.Exec(ctx, query,
		u.ID, u.Username, u.PasswordHash, u.Role, u.IsMerchant, u.KYCStatus,
		u.PinHash, u.PinFailCount, u.IsPinLocked, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID fetches a user by UUID.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

// GetByUsername fetches a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE username = $1`, userColumns)
	return r.scanUser(r.pool.QueryRow(ctx, query, username))
}

// SetKYCStatus updates the user's KYC status.
func (r *UserRepo) SetKYCStatus(ctx context.Context, userID uuid.UUID, status domain.KYCStatus) error {
	query := `UPDATE users SET kyc_status = $1, updated_at = NOW() WHERE id = $2`

	tag, err := r.pool.Exec(ctx, query, status, userID)
	if err != nil {
		return fmt.Errorf("update kyc status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %s", userID)
	}
	return nil
}

// SetMerchant updates the user's merchant flag.
func (r *UserRepo) SetMerchant(ctx context.Context, userID uuid.UUID, isMerchant bool) error {
	query := `UPDATE users SET is_merchant = $1, updated_at = NOW() WHERE id = $2`

	tag, err := r.pool.Exec(ctx, query, isMerchant, userID)
	if err != nil {
		return fmt.Errorf("update merchant flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %s", userID)
	}
	return nil
}

// SetPinHash stores a new PIN hash and clears the failure counter.
func (r *UserRepo) SetPinHash(ctx context.Context, userID uuid.UUID, pinHash string) error {
	query := `UPDATE users SET pin_hash = $1, pin_fail_count = 0, is_pin_locked = FALSE, updated_at = NOW()
		WHERE id = $2`

	tag, err := r.pool.Exec(ctx, query, pinHash, userID)
	if err != nil {
		return fmt.Errorf("update pin hash: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %s", userID)
	}
	return nil
}

// RecordPinFailure increments the failure counter and flips the lock flag
// once the counter reaches maxFailures. Counting and locking happen in one
// statement so concurrent wrong attempts cannot lose updates.
func (r *UserRepo) RecordPinFailure(ctx context.Context, userID uuid.UUID, maxFailures int) (int, bool, error) {
	query := `UPDATE users
		SET pin_fail_count = pin_fail_count + 1,
		    is_pin_locked = is_pin_locked OR (pin_fail_count + 1 >= $2),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING pin_fail_count, is_pin_locked`

	var count int
	var locked bool
	err := r.pool.QueryRow(ctx, query, userID, maxFailures).Scan(&count, &locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, fmt.Errorf("user not found: %s", userID)
		}
		return 0, false, fmt.Errorf("record pin failure: %w", err)
	}
	return count, locked, nil
}

// ResetPinFailures clears the failure counter after a successful check.
func (r *UserRepo) ResetPinFailures(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE users SET pin_fail_count = 0, updated_at = NOW() WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("reset pin failures: %w", err)
	}
	return nil
}

// UnlockPin clears both the lock flag and the failure counter.
func (r *UserRepo) UnlockPin(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE users SET pin_fail_count = 0, is_pin_locked = FALSE, updated_at = NOW() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("unlock pin: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %s", userID)
	}
	return nil
}

// scanUser is a helper to scan a single row into a User.
func (r *UserRepo) scanUser(row pgx.Row) (*domain.User, error) {
	u := &domain.User{}
	err := row.Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.IsMerchant, &u.KYCStatus,
		&u.PinHash, &u.PinFailCount, &u.IsPinLocked, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}
