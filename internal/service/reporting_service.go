package service

import (
	"context"
	"fmt"

	"emoney-wallet/internal/core/domain"
	"emoney-wallet/internal/core/ports"
	"emoney-wallet/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ReportingServiceImpl implements ports.ReportingService.
type ReportingServiceImpl struct {
	walletRepo ports.WalletRepository
	txRepo     ports.TransactionRepository
	log        zerolog.Logger
}

// NewReportingService creates a new ReportingServiceImpl.
func NewReportingService(walletRepo ports.WalletRepository, txRepo ports.TransactionRepository, log zerolog.Logger) *ReportingServiceImpl {
	return &ReportingServiceImpl{
		walletRepo: walletRepo,
		txRepo:     txRepo,
		log:        log,
	}
}

// GetBalance returns the wallet balance for the user.
func (s *ReportingServiceImpl) GetBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return decimal.Zero, apperror.InternalError(fmt.Errorf("find wallet: %w", err))
	}
	if wallet == nil {
		return decimal.Zero, apperror.ErrNotFound("wallet")
	}
	return wallet.Balance, nil
}

// ListTransactions returns the user's ledger entries, newest first.
func (s *ReportingServiceImpl) ListTransactions(ctx context.Context, userID uuid.UUID, page ports.Page) ([]domain.Transaction, int64, error) {
	txns, total, err := s.txRepo.ListForUser(ctx, userID, normalizePage(page))
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("list transactions: %w", err))
	}
	return txns, total, nil
}

// SearchRecords filters the caller's ledger entries by type, date range and
// counterparty username keyword.
func (s *ReportingServiceImpl) SearchRecords(ctx context.Context, params ports.TransactionSearchParams) ([]domain.Transaction, int64, error) {
	for _, t := range params.Types {
		if !domain.ValidTransactionType(t) {
			return nil, 0, apperror.Validation(fmt.Sprintf("unknown transaction type %q", t))
		}
	}
	if params.StartDate != nil && params.EndDate != nil && params.EndDate.Before(*params.StartDate) {
		return nil, 0, apperror.Validation("end_date before start_date")
	}

	params.Page = normalizePage(params.Page)
	txns, total, err := s.txRepo.Search(ctx, params)
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("search transactions: %w", err))
	}
	return txns, total, nil
}

// GetTransaction returns a single entry, but only to one of its parties.
func (s *ReportingServiceImpl) GetTransaction(ctx context.Context, callerID, txID uuid.UUID) (*domain.Transaction, error) {
	txn, err := s.txRepo.GetByID(ctx, txID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find transaction: %w", err))
	}
	if txn == nil {
		return nil, apperror.ErrNotFound("transaction")
	}
	if !txn.Involves(callerID) {
		return nil, apperror.ErrNotTransactionParty()
	}
	return txn, nil
}

// Reconcile compares the wallet's cached balance against the net of all
// ledger entries touching it. A mismatch means the cache has drifted from
// the source of truth.
func (s *ReportingServiceImpl) Reconcile(ctx context.Context, userID uuid.UUID) (*ports.ReconcileResult, error) {
	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}

	net, err := s.txRepo.NetAmountForUser(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("ledger net: %w", err))
	}

	result := &ports.ReconcileResult{
		UserID:        userID,
		WalletBalance: wallet.Balance,
		LedgerNet:     net,
		Consistent:    wallet.Balance.Equal(net),
	}
	if !result.Consistent {
		s.log.Error().
			Str("user_id", userID.String()).
			Str("wallet_balance", wallet.Balance.String()).
			Str("ledger_net", net.String()).
			Msg("wallet balance diverged from ledger")
	}
	return result, nil
}

func normalizePage(p ports.Page) ports.Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = defaultPageSize
	}
	if p.Size > maxPageSize {
		p.Size = maxPageSize
	}
	return p
}
