package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransaction(t *testing.T) {
	from := uuid.New()
	to := uuid.New()
	amount := decimal.RequireFromString("25.50")

	tx, err := NewTransaction(TxTransfer, &from, to, amount, "lunch")
	require.NoError(t, err)

	assert.Equal(t, TxTransfer, tx.Type)
	assert.Equal(t, &from, tx.FromUserID)
	assert.Equal(t, to, tx.ToUserID)
	assert.True(t, amount.Equal(tx.Amount))
	assert.Equal(t, "lunch", tx.Description)
	assert.Nil(t, tx.RefersTo)
	assert.NotEqual(t, uuid.Nil, tx.ID)
	assert.False(t, tx.CreatedAt.IsZero())
}

func TestNewTransaction_RejectsNonPositiveAmount(t *testing.T) {
	to := uuid.New()

	_, err := NewTransaction(TxDeposit, nil, to, decimal.Zero, "")
	assert.ErrorIs(t, err, ErrNonPositiveAmount)

	_, err = NewTransaction(TxDeposit, nil, to, decimal.RequireFromString("-5"), "")
	assert.ErrorIs(t, err, ErrNonPositiveAmount)
}

func TestNewTransaction_TimeOrderedIDs(t *testing.T) {
	to := uuid.New()
	one := decimal.NewFromInt(1)

	var prev string
	for i := 0; i < 10; i++ {
		tx, err := NewTransaction(TxDeposit, nil, to, one, "")
		require.NoError(t, err)
		if prev != "" {
			assert.Greater(t, tx.ID.String(), prev)
		}
		prev = tx.ID.String()
	}
}

func TestNewRefundOf(t *testing.T) {
	payer := uuid.New()
	merchant := uuid.New()
	amount := decimal.RequireFromString("20.00")

	charge, err := NewTransaction(TxCharge, &payer, merchant, amount, "order #42")
	require.NoError(t, err)

	refund, err := NewRefundOf(charge, "returned goods")
	require.NoError(t, err)

	assert.Equal(t, TxRefund, refund.Type)
	assert.Equal(t, &merchant, refund.FromUserID)
	assert.Equal(t, payer, refund.ToUserID)
	assert.True(t, amount.Equal(refund.Amount))
	require.NotNil(t, refund.RefersTo)
	assert.Equal(t, charge.ID, *refund.RefersTo)
}

func TestNewRefundOf_DepositHasNoPayer(t *testing.T) {
	deposit, err := NewTransaction(TxDeposit, nil, uuid.New(), decimal.NewFromInt(10), "")
	require.NoError(t, err)

	_, err = NewRefundOf(deposit, "")
	assert.ErrorIs(t, err, ErrNotRefundable)
}

func TestTransaction_Involves(t *testing.T) {
	payer := uuid.New()
	payee := uuid.New()
	other := uuid.New()

	tx, err := NewTransaction(TxTransfer, &payer, payee, decimal.NewFromInt(5), "")
	require.NoError(t, err)

	assert.True(t, tx.Involves(payer))
	assert.True(t, tx.Involves(payee))
	assert.False(t, tx.Involves(other))
}

func TestTransaction_SignedAmountFor(t *testing.T) {
	payer := uuid.New()
	payee := uuid.New()
	amount := decimal.RequireFromString("7.25")

	tx, err := NewTransaction(TxTransfer, &payer, payee, amount, "")
	require.NoError(t, err)

	assert.True(t, tx.SignedAmountFor(payee).Equal(amount))
	assert.True(t, tx.SignedAmountFor(payer).Equal(amount.Neg()))
	assert.True(t, tx.SignedAmountFor(uuid.New()).IsZero())
}

func TestNewWallet(t *testing.T) {
	userID := uuid.New()
	w := NewWallet(userID)

	assert.Equal(t, userID, w.UserID)
	assert.True(t, w.Balance.IsZero())
	assert.NotEqual(t, uuid.Nil, w.ID)
}

func TestValidKYCStatus(t *testing.T) {
	for _, s := range []KYCStatus{KYCNotVerified, KYCPending, KYCVerified, KYCRejected} {
		assert.True(t, ValidKYCStatus(s), string(s))
	}
	assert.False(t, ValidKYCStatus("approved"))
	assert.False(t, ValidKYCStatus(""))
}

func TestValidTransactionType(t *testing.T) {
	for _, tt := range []TransactionType{TxDeposit, TxTransfer, TxCharge, TxRefund} {
		assert.True(t, ValidTransactionType(tt), string(tt))
	}
	assert.False(t, ValidTransactionType("withdrawal"))
}

func TestUser_IsAdmin(t *testing.T) {
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
	assert.False(t, (&User{Role: RoleUser}).IsAdmin())
}
