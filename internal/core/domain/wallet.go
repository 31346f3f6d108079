package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet holds a user's stored balance. One wallet per user, created with the
// user at registration. The balance column is a cache over the transaction
// ledger and must always equal the net of all entries touching the wallet.
type Wallet struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewWallet creates an empty wallet for the given user.
func NewWallet(userID uuid.UUID) *Wallet {
	now := time.Now().UTC()
	return &Wallet{
		ID:        uuid.New(),
		UserID:    userID,
		Balance:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
