package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	TxDeposit  TransactionType = "deposit"
	TxTransfer TransactionType = "transfer"
	TxCharge   TransactionType = "charge"
	TxRefund   TransactionType = "refund"
)

// ValidTransactionType reports whether t is one of the known entry types.
func ValidTransactionType(t TransactionType) bool {
	switch t {
	case TxDeposit, TxTransfer, TxCharge, TxRefund:
		return true
	}
	return false
}

// Transaction is one append-only ledger entry. Amount is always positive;
// the direction of movement is given by FromUserID and ToUserID. Deposits
// have no FromUserID. Refunds created against a specific charge carry the
// original entry's ID in RefersTo; manual refunds leave it nil.
type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	Type        TransactionType `json:"type"`
	FromUserID  *uuid.UUID      `json:"from_user_id,omitempty"`
	ToUserID    uuid.UUID       `json:"to_user_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	RefersTo    *uuid.UUID      `json:"refers_to_transaction_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NewTransaction builds a ledger entry with a time-ordered ID. It returns
// ErrNonPositiveAmount when amount is zero or negative; rows with such
// amounts must never reach the ledger.
func NewTransaction(txType TransactionType, from *uuid.UUID, to uuid.UUID, amount decimal.Decimal, description string) (*Transaction, error) {
	if !amount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	return &Transaction{
		ID:          id,
		Type:        txType,
		FromUserID:  from,
		ToUserID:    to,
		Amount:      amount,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// NewRefundOf builds a refund entry that reverses the given charge: the
// money flows from the original payee back to the original payer, for the
// original amount, with an explicit link to the reversed entry.
func NewRefundOf(original *Transaction, description string) (*Transaction, error) {
	if original.FromUserID == nil {
		return nil, ErrNotRefundable
	}
	refund, err := NewTransaction(TxRefund, &original.ToUserID, *original.FromUserID, original.Amount, description)
	if err != nil {
		return nil, err
	}
	refID := original.ID
	refund.RefersTo = &refID
	return refund, nil
}

// Involves reports whether the given user is a party to the entry.
func (t *Transaction) Involves(userID uuid.UUID) bool {
	if t.ToUserID == userID {
		return true
	}
	return t.FromUserID != nil && *t.FromUserID == userID
}

// SignedAmountFor returns the entry's effect on the given user's balance:
// positive when the user receives, negative when the user pays, and zero
// when the user is not a party.
func (t *Transaction) SignedAmountFor(userID uuid.UUID) decimal.Decimal {
	var net decimal.Decimal
	if t.ToUserID == userID {
		net = net.Add(t.Amount)
	}
	if t.FromUserID != nil && *t.FromUserID == userID {
		net = net.Sub(t.Amount)
	}
	return net
}
