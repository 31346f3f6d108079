package postgres

import (
	"context"
	"testing"
	"time"

	"emoney-wallet/internal/core/domain"
	"emoney-wallet/internal/core/ports"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEntry() *domain.Transaction {
	from := uuid.New()
	return &domain.Transaction{
		ID:          uuid.New(),
		Type:        domain.TxTransfer,
		FromUserID:  &from,
		ToUserID:    uuid.New(),
		Amount:      decimal.RequireFromString("25.00"),
		Description: "lunch",
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}
}

func entryColumns() []string {
	return []string{"id", "type", "from_user_id", "to_user_id", "amount", "description", "refers_to_transaction_id", "created_at"}
}

func entryRow(t *domain.Transaction) *pgxmock.Rows {
	return pgxmock.NewRows(entryColumns()).AddRow(
		t.ID, t.Type, t.FromUserID, t.ToUserID, t.Amount, t.Description, t.RefersTo, t.CreatedAt,
	)
}

func TestTransactionRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	entry := newTestEntry()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(entry.ID, entry.Type, entry.FromUserID, entry.ToUserID,
			entry.Amount, entry.Description, entry.RefersTo, entry.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, entry)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	entry := newTestEntry()

	mock.ExpectQuery("SELECT .+ FROM transactions WHERE id").
		WithArgs(entry.ID).
		WillReturnRows(entryRow(entry))

	result, err := repo.GetByID(context.Background(), entry.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, entry.ID, result.ID)
	assert.True(t, entry.Amount.Equal(result.Amount))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	id := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM transactions WHERE id").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(entryColumns()))

	result, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_RefundExistsFor(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	originalID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(originalID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	exists, err := repo.RefundExistsFor(context.Background(), tx, originalID)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_ListForUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	userID := uuid.New()
	entry := newTestEntry()
	entry.ToUserID = userID

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM transactions`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery("SELECT .+ FROM transactions .+ ORDER BY created_at DESC").
		WithArgs(userID, 20, 0).
		WillReturnRows(entryRow(entry))

	txns, total, err := repo.ListForUser(context.Background(), userID, ports.Page{Number: 1, Size: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, txns, 1)
	assert.Equal(t, entry.ID, txns[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_Search_WithFilters(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	userID := uuid.New()
	start := time.Now().Add(-24 * time.Hour).UTC()

	// The keyword filter must target party usernames, not descriptions.
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM transactions .+u\.username ILIKE`).
		WithArgs(userID, []string{"charge", "refund"}, start, "%coffee%").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(0)))
	mock.ExpectQuery(`SELECT .+ FROM transactions .+u\.username ILIKE .+ ORDER BY created_at DESC`).
		WithArgs(userID, []string{"charge", "refund"}, start, "%coffee%", 10, 0).
		WillReturnRows(pgxmock.NewRows(entryColumns()))

	txns, total, err := repo.Search(context.Background(), ports.TransactionSearchParams{
		UserID:    userID,
		Types:     []domain.TransactionType{domain.TxCharge, domain.TxRefund},
		StartDate: &start,
		Keyword:   "coffee",
		Page:      ports.Page{Number: 1, Size: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, txns)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_NetAmountForUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	userID := uuid.New()

	mock.ExpectQuery("SELECT").
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"net"}).AddRow(decimal.RequireFromString("60.00")))

	net, err := repo.NetAmountForUser(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, net.Equal(decimal.RequireFromString("60.00")))
	assert.NoError(t, mock.ExpectationsWereMet())
}
