package ports

import (
	"context"
	"time"

	"emoney-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HashService handles password and PIN hashing (Argon2id).
type HashService interface {
	Hash(secret string) (string, error)
	Verify(secret string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(user *domain.User) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID   uuid.UUID
	Username string
	Role     domain.Role
}

// RateLimitStore counts requests per key within a fixed window.
type RateLimitStore interface {
	// Allow increments the counter for key and reports whether the request
	// is within limit for the current window.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// --- Service Ports (Business Logic) ---

// AuthService defines authentication business logic.
type AuthService interface {
	Register(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, time.Time, error) // token, expiry, error
}

// LedgerService defines all balance-moving business logic. Every method
// appends exactly one ledger entry and adjusts the affected wallets in a
// single database transaction.
type LedgerService interface {
	Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, description string) (*domain.Transaction, error)
	Transfer(ctx context.Context, req TransferRequest) (*domain.Transaction, error)
	Charge(ctx context.Context, req ChargeRequest) (*domain.Transaction, error)
	Refund(ctx context.Context, req RefundRequest) (*domain.Transaction, error)
	RefundByTransaction(ctx context.Context, req RefundByTransactionRequest) (*domain.Transaction, error)
}

// TransferRequest holds validated input for a peer-to-peer transfer.
type TransferRequest struct {
	FromUserID  uuid.UUID
	ToUsername  string
	Amount      decimal.Decimal
	Pin         string
	Description string
}

// ChargeRequest holds validated input for a merchant charge.
type ChargeRequest struct {
	MerchantID    uuid.UUID
	PayerUsername string
	Amount        decimal.Decimal
	Description   string
}

// RefundRequest holds validated input for a manual refund.
type RefundRequest struct {
	MerchantID    uuid.UUID
	PayeeUsername string
	Amount        decimal.Decimal
	Description   string
}

// RefundByTransactionRequest holds validated input for refunding a specific
// charge by its ledger entry ID.
type RefundByTransactionRequest struct {
	MerchantID    uuid.UUID
	TransactionID uuid.UUID
	Description   string
}

// PinService defines PIN lifecycle business logic.
type PinService interface {
	SetPin(ctx context.Context, userID uuid.UUID, pin string) error
	// Verify checks the PIN against the stored hash, counting failures and
	// locking after too many. A locked PIN fails without checking.
	Verify(ctx context.Context, userID uuid.UUID, pin string) error
	// Unlock clears the lockout. Exposed only to administrators.
	Unlock(ctx context.Context, username string) error
}

// AccountService defines profile and KYC business logic.
type AccountService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	// RequestKYC moves the caller's own status to pending.
	RequestKYC(ctx context.Context, userID uuid.UUID) error
	SetKYCStatus(ctx context.Context, username string, status domain.KYCStatus) error
	SetMerchant(ctx context.Context, username string, isMerchant bool) error
}

// ReportingService defines read-side business logic over wallets and the ledger.
type ReportingService interface {
	GetBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, page Page) ([]domain.Transaction, int64, error)
	SearchRecords(ctx context.Context, params TransactionSearchParams) ([]domain.Transaction, int64, error)
	// GetTransaction returns the entry only to a party of it.
	GetTransaction(ctx context.Context, callerID, txID uuid.UUID) (*domain.Transaction, error)
	// Reconcile compares a wallet's cached balance against the ledger net.
	Reconcile(ctx context.Context, userID uuid.UUID) (*ReconcileResult, error)
}

// ReconcileResult reports a wallet-vs-ledger comparison.
type ReconcileResult struct {
	UserID        uuid.UUID       `json:"user_id"`
	WalletBalance decimal.Decimal `json:"wallet_balance"`
	LedgerNet     decimal.Decimal `json:"ledger_net"`
	Consistent    bool            `json:"consistent"`
}

// AuditService records sensitive operations without blocking the caller.
type AuditService interface {
	Record(ctx context.Context, actorID *uuid.UUID, action, target, detail, ip string)
}
