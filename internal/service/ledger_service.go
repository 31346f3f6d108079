package service

import (
	"bytes"
	"context"
	"fmt"

	"emoney-wallet/internal/core/domain"
	"emoney-wallet/internal/core/ports"
	"emoney-wallet/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// LedgerServiceImpl implements ports.LedgerService with pessimistic locking.
// Every operation runs in a single database transaction: wallet rows are
// locked with SELECT FOR UPDATE, preconditions are checked against the
// locked state, and the balance update commits together with the ledger
// entry or not at all.
type LedgerServiceImpl struct {
	userRepo   ports.UserRepository
	walletRepo ports.WalletRepository
	txRepo     ports.TransactionRepository
	pinSvc     ports.PinService
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	userRepo ports.UserRepository,
	walletRepo ports.WalletRepository,
	txRepo ports.TransactionRepository,
	pinSvc ports.PinService,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		userRepo:   userRepo,
		walletRepo: walletRepo,
		txRepo:     txRepo,
		pinSvc:     pinSvc,
		transactor: transactor,
		log:        log,
	}
}

// Deposit credits external funds to the user's wallet.
func (s *LedgerServiceImpl) Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	if !amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.GetByUserIDForUpdate(ctx, dbTx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}

	if _, err := s.walletRepo.AdjustBalance(ctx, dbTx, userID, amount); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("credit wallet: %w", err))
	}

	txn, err := domain.NewTransaction(domain.TxDeposit, nil, userID, amount, description)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("build entry: %w", err))
	}
	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create entry: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("user_id", userID.String()).
		Str("amount", amount.String()).
		Msg("deposit completed")
	return txn, nil
}

// Transfer moves funds from the caller to another user. The caller must
// present a valid PIN before any money moves.
func (s *LedgerServiceImpl) Transfer(ctx context.Context, req ports.TransferRequest) (*domain.Transaction, error) {
	// The PIN gate runs before any other precondition so a wrong PIN always
	// counts a lockout strike, even when the rest of the request is bogus.
	if err := s.pinSvc.Verify(ctx, req.FromUserID, req.Pin); err != nil {
		return nil, err
	}

	if !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}

	recipient, err := s.userRepo.GetByUsername(ctx, req.ToUsername)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find recipient: %w", err))
	}
	if recipient == nil {
		return nil, apperror.ErrNotFound("user")
	}
	if recipient.ID == req.FromUserID {
		return nil, apperror.Validation("cannot transfer to your own wallet")
	}

	return s.move(ctx, domain.TxTransfer, req.FromUserID, recipient.ID, req.Amount, req.Description, nil)
}

// Charge pulls funds from a customer's wallet into the merchant's.
func (s *LedgerServiceImpl) Charge(ctx context.Context, req ports.ChargeRequest) (*domain.Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}

	if err := s.requireMerchant(ctx, req.MerchantID); err != nil {
		return nil, err
	}

	payer, err := s.userRepo.GetByUsername(ctx, req.PayerUsername)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find payer: %w", err))
	}
	if payer == nil {
		return nil, apperror.ErrNotFound("user")
	}
	if payer.ID == req.MerchantID {
		return nil, apperror.Validation("cannot charge your own wallet")
	}

	return s.move(ctx, domain.TxCharge, payer.ID, req.MerchantID, req.Amount, req.Description, nil)
}

// Refund returns funds from the merchant to a customer without reference to
// a prior charge. Repeating the operation moves money again; merchants use
// RefundByTransaction to reverse a specific charge exactly once.
func (s *LedgerServiceImpl) Refund(ctx context.Context, req ports.RefundRequest) (*domain.Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}

	if err := s.requireMerchant(ctx, req.MerchantID); err != nil {
		return nil, err
	}

	payee, err := s.userRepo.GetByUsername(ctx, req.PayeeUsername)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find payee: %w", err))
	}
	if payee == nil {
		return nil, apperror.ErrNotFound("user")
	}
	if payee.ID == req.MerchantID {
		return nil, apperror.Validation("cannot refund your own wallet")
	}

	return s.move(ctx, domain.TxRefund, req.MerchantID, payee.ID, req.Amount, req.Description, nil)
}

// RefundByTransaction reverses a specific charge: full amount, back to the
// original payer, at most once. The duplicate check runs inside the locked
// transaction so concurrent refunds of the same charge cannot both commit.
func (s *LedgerServiceImpl) RefundByTransaction(ctx context.Context, req ports.RefundByTransactionRequest) (*domain.Transaction, error) {
	if err := s.requireMerchant(ctx, req.MerchantID); err != nil {
		return nil, err
	}

	original, err := s.txRepo.GetByID(ctx, req.TransactionID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find transaction: %w", err))
	}
	// A reference to anything but a charge is treated the same as a missing
	// entry: there is no refundable transaction under that ID.
	if original == nil || original.Type != domain.TxCharge {
		return nil, apperror.ErrNotFound("transaction")
	}
	if original.ToUserID != req.MerchantID {
		return nil, apperror.ErrNotTransactionParty()
	}

	refund, err := domain.NewRefundOf(original, req.Description)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("build refund: %w", err))
	}

	return s.move(ctx, domain.TxRefund, req.MerchantID, refund.ToUserID, original.Amount, req.Description, refund)
}

// move executes the shared two-wallet mutation: lock both rows in a fixed
// order, check the payer's balance, apply both deltas, append the entry.
// prebuilt, when non-nil, is the exact entry to append (used for linked
// refunds); otherwise a fresh entry of the given type is created.
func (s *LedgerServiceImpl) move(ctx context.Context, txType domain.TransactionType, fromID, toID uuid.UUID, amount decimal.Decimal, description string, prebuilt *domain.Transaction) (*domain.Transaction, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	fromWallet, _, err := s.lockPair(ctx, dbTx, fromID, toID)
	if err != nil {
		return nil, err
	}

	if fromWallet.Balance.LessThan(amount) {
		return nil, apperror.ErrInsufficientBalance()
	}

	txn := prebuilt
	if txn == nil {
		txn, err = domain.NewTransaction(txType, &fromID, toID, amount, description)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("build entry: %w", err))
		}
	} else if txn.RefersTo != nil {
		// Re-check under lock: a concurrent refund of the same charge is
		// either already committed (visible here) or waiting on our locks.
		exists, err := s.txRepo.RefundExistsFor(ctx, dbTx, *txn.RefersTo)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("check refund: %w", err))
		}
		if exists {
			return nil, apperror.ErrAlreadyRefunded()
		}
	}

	if _, err := s.walletRepo.AdjustBalance(ctx, dbTx, fromID, amount.Neg()); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("debit wallet: %w", err))
	}
	if _, err := s.walletRepo.AdjustBalance(ctx, dbTx, toID, amount); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("credit wallet: %w", err))
	}

	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create entry: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("type", string(txn.Type)).
		Str("from", fromID.String()).
		Str("to", toID.String()).
		Str("amount", amount.String()).
		Msg("ledger entry committed")
	return txn, nil
}

// lockPair locks both wallet rows in ascending user-ID byte order so that
// concurrent operations touching the same pair cannot deadlock. Returns the
// wallets keyed to the caller's (from, to) orientation.
func (s *LedgerServiceImpl) lockPair(ctx context.Context, dbTx pgx.Tx, fromID, toID uuid.UUID) (*domain.Wallet, *domain.Wallet, error) {
	first, second := fromID, toID
	if bytes.Compare(second[:], first[:]) < 0 {
		first, second = second, first
	}

	firstWallet, err := s.walletRepo.GetByUserIDForUpdate(ctx, dbTx, first)
	if err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if firstWallet == nil {
		return nil, nil, apperror.ErrNotFound("wallet")
	}

	secondWallet, err := s.walletRepo.GetByUserIDForUpdate(ctx, dbTx, second)
	if err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if secondWallet == nil {
		return nil, nil, apperror.ErrNotFound("wallet")
	}

	if first == fromID {
		return firstWallet, secondWallet, nil
	}
	return secondWallet, firstWallet, nil
}

// requireMerchant rejects the operation unless the user exists and carries
// the merchant flag.
func (s *LedgerServiceImpl) requireMerchant(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("find merchant: %w", err))
	}
	if user == nil {
		return apperror.ErrNotFound("user")
	}
	if !user.IsMerchant {
		return apperror.ErrMerchantRequired()
	}
	return nil
}
