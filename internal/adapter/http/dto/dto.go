package dto

import (
	"math"

	"emoney-wallet/internal/core/domain"
)

// RegisterRequest is the request body for user registration.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50,safe_id"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterResponse is the response body for successful registration.
type RegisterResponse struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	KYCStatus string `json:"kyc_status"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// ProfileResponse is the response for the profile query.
type ProfileResponse struct {
	UserID     string `json:"user_id"`
	Username   string `json:"username"`
	Role       string `json:"role"`
	KYCStatus  string `json:"kyc_status"`
	IsMerchant bool   `json:"is_merchant"`
	PinSet     bool   `json:"pin_set"`
	PinLocked  bool   `json:"pin_locked"`
	Balance    string `json:"balance"`
	CreatedAt  string `json:"created_at"`
}

// SetPinRequest is the request body for setting or changing the wallet PIN.
type SetPinRequest struct {
	Pin string `json:"pin" binding:"required,wallet_pin"`
}

// DepositRequest is the request body for a wallet deposit.
type DepositRequest struct {
	Amount      string `json:"amount" binding:"required,money"`
	Description string `json:"description" binding:"max=255"`
}

// TransferRequest is the request body for a peer-to-peer transfer.
type TransferRequest struct {
	ToUsername  string `json:"to_username" binding:"required,min=3,max=50"`
	Amount      string `json:"amount" binding:"required,money"`
	Pin         string `json:"pin" binding:"required,wallet_pin"`
	Description string `json:"description" binding:"max=255"`
}

// ChargeRequest is the request body for a merchant charge.
type ChargeRequest struct {
	PayerUsername string `json:"payer_username" binding:"required,min=3,max=50"`
	Amount        string `json:"amount" binding:"required,money"`
	Description   string `json:"description" binding:"max=255"`
}

// RefundRequest is the request body for a manual refund.
type RefundRequest struct {
	PayeeUsername string `json:"payee_username" binding:"required,min=3,max=50"`
	Amount        string `json:"amount" binding:"required,money"`
	Description   string `json:"description" binding:"max=255"`
}

// RefundByTransactionRequest is the request body for refunding a charge by its ID.
type RefundByTransactionRequest struct {
	TransactionID string `json:"transaction_id" binding:"required,uuid"`
	Description   string `json:"description" binding:"max=255"`
}

// RequestKYCRequest is the optional request body for the self-service KYC
// request. Only "pending" is a valid value.
type RequestKYCRequest struct {
	Status string `json:"status"`
}

// KYCStatusRequest is the request body for an administrative KYC status change.
type KYCStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// MerchantFlagRequest is the request body for toggling the merchant flag.
type MerchantFlagRequest struct {
	IsMerchant *bool `json:"is_merchant" binding:"required"`
}

// BalanceResponse is the response for the balance query.
type BalanceResponse struct {
	Balance string `json:"balance"`
}

// TransactionResponse is the response body for a single ledger entry.
type TransactionResponse struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	FromUserID  *string `json:"from_user_id"`
	ToUserID    string  `json:"to_user_id"`
	Amount      string  `json:"amount"`
	Description string  `json:"description,omitempty"`
	RefersTo    *string `json:"refers_to_transaction_id,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// TransactionListResponse wraps a paginated transaction list.
type TransactionListResponse struct {
	Items      []TransactionResponse `json:"items"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	TotalPages int                   `json:"total_pages"`
}

// NewTransactionResponse maps a domain transaction to its API shape.
func NewTransactionResponse(t *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:          t.ID.String(),
		Type:        string(t.Type),
		ToUserID:    t.ToUserID.String(),
		Amount:      t.Amount.StringFixed(2),
		Description: t.Description,
		CreatedAt:   t.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if t.FromUserID != nil {
		s := t.FromUserID.String()
		resp.FromUserID = &s
	}
	if t.RefersTo != nil {
		s := t.RefersTo.String()
		resp.RefersTo = &s
	}
	return resp
}

// NewTransactionListResponse maps a page of transactions to its API shape.
func NewTransactionListResponse(txns []domain.Transaction, total int64, page, pageSize int) TransactionListResponse {
	items := make([]TransactionResponse, 0, len(txns))
	for i := range txns {
		items = append(items, NewTransactionResponse(&txns[i]))
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(pageSize)))
	}
	return TransactionListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
