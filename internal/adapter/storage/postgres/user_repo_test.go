package postgres

import (
	"context"
	"testing"
	"time"

	"emoney-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUser() *domain.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.User{
		ID:           uuid.New(),
		Username:     "alice",
		PasswordHash: "$argon2id$hash",
		Role:         domain.RoleUser,
		IsMerchant:   false,
		KYCStatus:    domain.KYCNotVerified,
		PinHash:      nil,
		PinFailCount: 0,
		IsPinLocked:  false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func userRow(u *domain.User) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "username", "password_hash", "role", "is_merchant", "kyc_status",
		"pin_hash", "pin_fail_count", "is_pin_locked", "created_at", "updated_at",
	}).AddRow(
		u.ID, u.Username, u.PasswordHash, u.Role, u.IsMerchant, u.KYCStatus,
		u.PinHash, u.PinFailCount, u.IsPinLocked, u.CreatedAt, u.UpdatedAt,
	)
}

func TestUserRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)
	u := newTestUser()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").
		WithArgs(u.ID, u.Username, u.PasswordHash, u.Role, u.IsMerchant, u.KYCStatus,
			u.PinHash, u.PinFailCount, u.IsPinLocked, u.CreatedAt, u.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, u)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByUsername(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)
	u := newTestUser()

	mock.ExpectQuery("SELECT .+ FROM users WHERE username").
		WithArgs(u.Username).
		WillReturnRows(userRow(u))

	result, err := repo.GetByUsername(context.Background(), u.Username)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, u.ID, result.ID)
	assert.Equal(t, u.KYCStatus, result.KYCStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByUsername_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM users WHERE username").
		WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	result, err := repo.GetByUsername(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_RecordPinFailure_Locks(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)
	userID := uuid.New()

	mock.ExpectQuery("UPDATE users").
		WithArgs(userID, 3).
		WillReturnRows(pgxmock.NewRows([]string{"pin_fail_count", "is_pin_locked"}).AddRow(3, true))

	count, locked, err := repo.RecordPinFailure(context.Background(), userID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.True(t, locked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_RecordPinFailure_BelowLimit(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)
	userID := uuid.New()

	mock.ExpectQuery("UPDATE users").
		WithArgs(userID, 3).
		WillReturnRows(pgxmock.NewRows([]string{"pin_fail_count", "is_pin_locked"}).AddRow(1, false))

	count, locked, err := repo.RecordPinFailure(context.Background(), userID, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.False(t, locked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_SetPinHash(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)
	userID := uuid.New()

	mock.ExpectExec("UPDATE users SET pin_hash").
		WithArgs("new-hash", userID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.SetPinHash(context.Background(), userID, "new-hash")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_UnlockPin_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)
	userID := uuid.New()

	mock.ExpectExec("UPDATE users SET pin_fail_count").
		WithArgs(userID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.UnlockPin(context.Background(), userID)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "user not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_SetKYCStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)
	userID := uuid.New()

	mock.ExpectExec("UPDATE users SET kyc_status").
		WithArgs(domain.KYCVerified, userID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.SetKYCStatus(context.Background(), userID, domain.KYCVerified)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
