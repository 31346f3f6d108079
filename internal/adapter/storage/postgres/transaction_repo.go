package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"emoney-wallet/internal/core/domain"
	"emoney-wallet/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// TransactionRepo implements ports.TransactionRepository over the
// append-only ledger table. There are deliberately no UPDATE or DELETE
// statements here.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

const transactionColumns = `id, type, from_user_id, to_user_id, amount, description, refers_to_transaction_id, created_at`

// Create appends a ledger entry within a database transaction.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	query := `INSERT INTO transactions (id, type, from_user_id, to_user_id, amount, description, refers_to_transaction_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := tx.Exec(ctx, query,
		t.ID, t.Type, t.FromUserID, t.ToUserID,
		t.Amount, t.Description, t.RefersTo, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID fetches a ledger entry by UUID.
func (r *TransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE id = $1`, transactionColumns)
	return r.scanTransaction(r.pool.QueryRow(ctx, query, id))
}

// RefundExistsFor reports whether a refund already references the entry.
// Runs on the caller's transaction so the answer is consistent with the
// locks it holds.
func (r *TransactionRepo) RefundExistsFor(ctx context.Context, tx pgx.Tx, originalTxID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM transactions WHERE type = 'refund' AND refers_to_transaction_id = $1)`

	var exists bool
	if err := tx.QueryRow(ctx, query, originalTxID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check refund exists: %w", err)
	}
	return exists, nil
}

// ListForUser fetches the user's ledger entries, newest first.
func (r *TransactionRepo) ListForUser(ctx context.Context, userID uuid.UUID, page ports.Page) ([]domain.Transaction, int64, error) {
	return r.Search(ctx, ports.TransactionSearchParams{UserID: userID, Page: page})
}

// Search fetches ledger entries matching the filters, newest first, with a
// total count for pagination.
func (r *TransactionRepo) Search(ctx context.Context, params ports.TransactionSearchParams) ([]domain.Transaction, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, fmt.Sprintf("(from_user_id = $%d OR to_user_id = $%d)", argIdx, argIdx))
	args = append(args, params.UserID)
	argIdx++

	if len(params.Types) > 0 {
		conditions = append(conditions, fmt.Sprintf("type = ANY($%d)", argIdx))
		types := make([]string, len(params.Types))
		for i, t := range params.Types {
			types[i] = string(t)
		}
		args = append(args, types)
		argIdx++
	}
	if params.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argIdx))
		args = append(args, *params.StartDate)
		argIdx++
	}
	if params.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", argIdx))
		args = append(args, *params.EndDate)
		argIdx++
	}
	if params.Keyword != "" {
		// Keyword matches the username of a party to the entry, so users can
		// find the records they exchanged with a given counterparty.
		conditions = append(conditions, fmt.Sprintf(
			`EXISTS (SELECT 1 FROM users u WHERE (u.id = transactions.from_user_id OR u.id = transactions.to_user_id) AND u.username ILIKE $%d)`,
			argIdx))
		args = append(args, "%"+params.Keyword+"%")
		argIdx++
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	// Count total
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM transactions %s", where)
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	// Fetch page
	dataQuery := fmt.Sprintf(`SELECT %s FROM transactions %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		transactionColumns, where, argIdx, argIdx+1)
	args = append(args, params.Page.Size, params.Page.Offset())

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		t := domain.Transaction{}
		err := rows.Scan(
			&t.ID, &t.Type, &t.FromUserID, &t.ToUserID,
			&t.Amount, &t.Description, &t.RefersTo, &t.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan transaction row: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txns, total, nil
}

// NetAmountForUser returns the ledger net for one user: credits minus
// debits across every entry the user is a party to.
func (r *TransactionRepo) NetAmountForUser(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	query := `SELECT
		COALESCE(SUM(amount) FILTER (WHERE to_user_id = $1), 0)
		- COALESCE(SUM(amount) FILTER (WHERE from_user_id = $1), 0)
		FROM transactions
		WHERE from_user_id = $1 OR to_user_id = $1`

	var net decimal.Decimal
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&net); err != nil {
		return decimal.Zero, fmt.Errorf("ledger net for user: %w", err)
	}
	return net, nil
}

// scanTransaction is a helper to scan a single row into a Transaction.
func (r *TransactionRepo) scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	err := row.Scan(
		&t.ID, &t.Type, &t.FromUserID, &t.ToUserID,
		&t.Amount, &t.Description, &t.RefersTo, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	return t, nil
}
