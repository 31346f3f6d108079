package integration

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"emoney-wallet/internal/core/domain"
	"emoney-wallet/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// --- In-Memory User Repo ---

type inMemoryUserRepo struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*domain.User
}

func newInMemoryUserRepo() *inMemoryUserRepo {
	return &inMemoryUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *inMemoryUserRepo) Create(ctx context.Context, tx pgx.Tx, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return fmt.Errorf("username already exists")
		}
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *inMemoryUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *inMemoryUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryUserRepo) SetKYCStatus(ctx context.Context, userID uuid.UUID, status domain.KYCStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("user not found")
	}
	u.KYCStatus = status
	return nil
}

func (r *inMemoryUserRepo) SetMerchant(ctx context.Context, userID uuid.UUID, isMerchant bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("user not found")
	}
	u.IsMerchant = isMerchant
	return nil
}

func (r *inMemoryUserRepo) SetPinHash(ctx context.Context, userID uuid.UUID, pinHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("user not found")
	}
	u.PinHash = &pinHash
	u.PinFailCount = 0
	u.IsPinLocked = false
	return nil
}

func (r *inMemoryUserRepo) RecordPinFailure(ctx context.Context, userID uuid.UUID, maxFailures int) (int, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return 0, false, fmt.Errorf("user not found")
	}
	u.PinFailCount++
	if u.PinFailCount >= maxFailures {
		u.IsPinLocked = true
	}
	return u.PinFailCount, u.IsPinLocked, nil
}

func (r *inMemoryUserRepo) ResetPinFailures(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("user not found")
	}
	u.PinFailCount = 0
	return nil
}

func (r *inMemoryUserRepo) UnlockPin(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("user not found")
	}
	u.PinFailCount = 0
	u.IsPinLocked = false
	return nil
}

// --- In-Memory Wallet Repo ---

type inMemoryWalletRepo struct {
	mu      sync.RWMutex
	wallets map[uuid.UUID]*domain.Wallet // keyed by user ID
}

func newInMemoryWalletRepo() *inMemoryWalletRepo {
	return &inMemoryWalletRepo{wallets: make(map[uuid.UUID]*domain.Wallet)}
}

func (r *inMemoryWalletRepo) Create(ctx context.Context, tx pgx.Tx, w *domain.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *w
	r.wallets[w.UserID] = &cp
	return nil
}

func (r *inMemoryWalletRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.wallets[userID]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r *inMemoryWalletRepo) GetByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*domain.Wallet, error) {
	return r.GetByUserID(ctx, userID)
}

func (r *inMemoryWalletRepo) AdjustBalance(ctx context.Context, tx pgx.Tx, userID uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[userID]
	if !ok {
		return decimal.Zero, fmt.Errorf("wallet not found")
	}
	next := w.Balance.Add(delta)
	// Mirrors the CHECK (balance >= 0) constraint
	if next.IsNegative() {
		return decimal.Zero, fmt.Errorf("balance constraint violated")
	}
	w.Balance = next
	return next, nil
}

func (r *inMemoryWalletRepo) SumBalances(ctx context.Context) (decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := decimal.Zero
	for _, w := range r.wallets {
		total = total.Add(w.Balance)
	}
	return total, nil
}

// --- In-Memory Transaction Repo ---

type inMemoryTransactionRepo struct {
	mu      sync.RWMutex
	users   *inMemoryUserRepo // for counterparty-username keyword search
	entries []*domain.Transaction
}

func newInMemoryTransactionRepo(users *inMemoryUserRepo) *inMemoryTransactionRepo {
	return &inMemoryTransactionRepo{users: users}
}

func (r *inMemoryTransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *inMemoryTransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.entries {
		if t.ID == id {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryTransactionRepo) RefundExistsFor(ctx context.Context, tx pgx.Tx, originalTxID uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.entries {
		if t.Type == domain.TxRefund && t.RefersTo != nil && *t.RefersTo == originalTxID {
			return true, nil
		}
	}
	return false, nil
}

func (r *inMemoryTransactionRepo) ListForUser(ctx context.Context, userID uuid.UUID, page ports.Page) ([]domain.Transaction, int64, error) {
	return r.Search(ctx, ports.TransactionSearchParams{UserID: userID, Page: page})
}

func (r *inMemoryTransactionRepo) Search(ctx context.Context, params ports.TransactionSearchParams) ([]domain.Transaction, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.Transaction
	for _, t := range r.entries {
		if !t.Involves(params.UserID) {
			continue
		}
		if len(params.Types) > 0 && !containsType(params.Types, t.Type) {
			continue
		}
		if params.StartDate != nil && t.CreatedAt.Before(*params.StartDate) {
			continue
		}
		if params.EndDate != nil && t.CreatedAt.After(*params.EndDate) {
			continue
		}
		if params.Keyword != "" && !r.partyUsernameContains(t, params.Keyword) {
			continue
		}
		result = append(result, *t)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	total := int64(len(result))
	start := params.Page.Offset()
	if start >= len(result) {
		return []domain.Transaction{}, total, nil
	}
	end := start + params.Page.Size
	if end > len(result) {
		end = len(result)
	}
	return result[start:end], total, nil
}

func (r *inMemoryTransactionRepo) NetAmountForUser(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	net := decimal.Zero
	for _, t := range r.entries {
		net = net.Add(t.SignedAmountFor(userID))
	}
	return net, nil
}

// partyUsernameContains reports whether either party's username contains the
// keyword, case-insensitively. Deposits have no payer and match on the
// recipient only.
func (r *inMemoryTransactionRepo) partyUsernameContains(t *domain.Transaction, keyword string) bool {
	kw := strings.ToLower(keyword)
	ids := []uuid.UUID{t.ToUserID}
	if t.FromUserID != nil {
		ids = append(ids, *t.FromUserID)
	}
	for _, id := range ids {
		u, _ := r.users.GetByID(context.Background(), id)
		if u != nil && strings.Contains(strings.ToLower(u.Username), kw) {
			return true
		}
	}
	return false
}

func containsType(types []domain.TransactionType, t domain.TransactionType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

// --- In-Memory Audit Repo ---

type inMemoryAuditRepo struct {
	mu   sync.Mutex
	logs []*domain.AuditLog
}

func newInMemoryAuditRepo() *inMemoryAuditRepo {
	return &inMemoryAuditRepo{}
}

func (r *inMemoryAuditRepo) Create(ctx context.Context, log *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, log)
	return nil
}

// --- In-Memory Transactor ---

// inMemoryTransactor serialises transactions with a single mutex, which is
// a coarse stand-in for row-level SELECT FOR UPDATE locking: concurrent
// money movements observe each other's committed state.
type inMemoryTransactor struct {
	mu sync.Mutex
}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.mu.Lock()
	return &memTx{release: &t.mu}, nil
}

// memTx is a pgx.Tx that only tracks the serialisation lock. Commit and
// Rollback both release it; the second call is a no-op, matching the
// commit-then-deferred-rollback pattern in the services.
type memTx struct {
	mu       sync.Mutex
	release  *sync.Mutex
	finished bool
}

func (t *memTx) done() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.finished {
		return
	}
	t.finished = true
	t.release.Unlock()
}

func (t *memTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *memTx) Commit(ctx context.Context) error          { t.done(); return nil }
func (t *memTx) Rollback(ctx context.Context) error        { t.done(); return nil }
func (t *memTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *memTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *memTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *memTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *memTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *memTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *memTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *memTx) Conn() *pgx.Conn { return nil }
