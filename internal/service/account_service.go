package service

import (
	"context"
	"fmt"

	"emoney-wallet/internal/core/domain"
	"emoney-wallet/internal/core/ports"
	"emoney-wallet/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AccountServiceImpl implements ports.AccountService.
type AccountServiceImpl struct {
	userRepo ports.UserRepository
	auditSvc ports.AuditService
	log      zerolog.Logger
}

// NewAccountService creates a new AccountServiceImpl.
func NewAccountService(userRepo ports.UserRepository, auditSvc ports.AuditService, log zerolog.Logger) *AccountServiceImpl {
	return &AccountServiceImpl{
		userRepo: userRepo,
		auditSvc: auditSvc,
		log:      log,
	}
}

// GetProfile returns the user's account record.
func (s *AccountServiceImpl) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrNotFound("user")
	}
	return user, nil
}

// RequestKYC moves the caller's status to pending, from any current status.
// Self-service can only request verification; granting or rejecting is an
// admin decision.
func (s *AccountServiceImpl) RequestKYC(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("find user: %w", err))
	}
	if user == nil {
		return apperror.ErrNotFound("user")
	}

	if err := s.userRepo.SetKYCStatus(ctx, userID, domain.KYCPending); err != nil {
		return apperror.InternalError(fmt.Errorf("set kyc status: %w", err))
	}

	s.auditSvc.Record(ctx, &userID, "kyc_requested", user.Username, "", "")
	return nil
}

// SetKYCStatus sets an arbitrary KYC status on the named user. Callers must
// ensure the actor is an administrator.
func (s *AccountServiceImpl) SetKYCStatus(ctx context.Context, username string, status domain.KYCStatus) error {
	if !domain.ValidKYCStatus(status) {
		return apperror.ErrInvalidKYCStatus()
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("find user: %w", err))
	}
	if user == nil {
		return apperror.ErrNotFound("user")
	}

	if err := s.userRepo.SetKYCStatus(ctx, user.ID, status); err != nil {
		return apperror.InternalError(fmt.Errorf("set kyc status: %w", err))
	}

	s.auditSvc.Record(ctx, nil, "kyc_status_set", username, string(status), "")
	return nil
}

// SetMerchant flips the merchant flag on the named user. Callers must
// ensure the actor is an administrator.
func (s *AccountServiceImpl) SetMerchant(ctx context.Context, username string, isMerchant bool) error {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("find user: %w", err))
	}
	if user == nil {
		return apperror.ErrNotFound("user")
	}

	if err := s.userRepo.SetMerchant(ctx, user.ID, isMerchant); err != nil {
		return apperror.InternalError(fmt.Errorf("set merchant flag: %w", err))
	}

	s.auditSvc.Record(ctx, nil, "merchant_flag_set", username, fmt.Sprintf("is_merchant=%t", isMerchant), "")
	return nil
}
