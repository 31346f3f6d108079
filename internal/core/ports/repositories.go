package ports

import (
	"context"
	"time"

	"emoney-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	// Create inserts the user inside the given transaction so the user and
	// their wallet commit together.
	Create(ctx context.Context, tx pgx.Tx, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	SetKYCStatus(ctx context.Context, userID uuid.UUID, status domain.KYCStatus) error
	SetMerchant(ctx context.Context, userID uuid.UUID, isMerchant bool) error
	// SetPinHash stores a new PIN hash and clears the failure counter.
	SetPinHash(ctx context.Context, userID uuid.UUID, pinHash string) error
	// RecordPinFailure increments the failure counter in a single statement
	// and locks the PIN when the counter reaches maxFailures. Returns the
	// new counter value and whether the PIN is now locked.
	RecordPinFailure(ctx context.Context, userID uuid.UUID, maxFailures int) (int, bool, error)
	// ResetPinFailures clears the counter after a successful verification.
	ResetPinFailures(ctx context.Context, userID uuid.UUID) error
	// UnlockPin clears both the lock flag and the failure counter.
	UnlockPin(ctx context.Context, userID uuid.UUID) error
}

// WalletRepository defines persistence operations for wallets.
// Methods accepting pgx.Tx are used inside transaction blocks for pessimistic locking.
type WalletRepository interface {
	Create(ctx context.Context, tx pgx.Tx, wallet *domain.Wallet) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
	GetByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*domain.Wallet, error)
	// AdjustBalance applies delta to the locked wallet row and returns the
	// resulting balance. The row must already be locked via
	// GetByUserIDForUpdate within the same transaction.
	AdjustBalance(ctx context.Context, tx pgx.Tx, userID uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error)
	// SumBalances returns the total of all wallet balances, for
	// reconciliation against the ledger.
	SumBalances(ctx context.Context) (decimal.Decimal, error)
}

// TransactionRepository defines persistence operations for the append-only ledger.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, transaction *domain.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	// RefundExistsFor reports whether a refund already references the given
	// entry. Called inside the refund transaction, after locks are held, so
	// concurrent refunds of the same charge cannot both pass.
	RefundExistsFor(ctx context.Context, tx pgx.Tx, originalTxID uuid.UUID) (bool, error)
	ListForUser(ctx context.Context, userID uuid.UUID, page Page) ([]domain.Transaction, int64, error)
	Search(ctx context.Context, params TransactionSearchParams) ([]domain.Transaction, int64, error)
	// NetAmountForUser returns the ledger net for one user: credits minus
	// debits across every entry the user is a party to.
	NetAmountForUser(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
}

// Page holds pagination input shared by listing queries.
type Page struct {
	Number int
	Size   int
}

// Offset returns the SQL offset for the page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// TransactionSearchParams holds filter + pagination for searching the ledger.
// UserID restricts results to entries the user is a party to.
type TransactionSearchParams struct {
	UserID    uuid.UUID
	Types     []domain.TransactionType
	StartDate *time.Time
	EndDate   *time.Time
	Keyword   string // substring match on a party's username (counterparty search)
	Page      Page
}

// AuditRepository defines persistence for the audit trail.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
