package service

import (
	"context"
	"fmt"

	"emoney-wallet/internal/core/ports"
	"emoney-wallet/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PinServiceImpl implements ports.PinService.
type PinServiceImpl struct {
	userRepo    ports.UserRepository
	hashSvc     ports.HashService
	auditSvc    ports.AuditService
	maxFailures int
	log         zerolog.Logger
}

// NewPinService creates a new PinServiceImpl.
func NewPinService(
	userRepo ports.UserRepository,
	hashSvc ports.HashService,
	auditSvc ports.AuditService,
	maxFailures int,
	log zerolog.Logger,
) *PinServiceImpl {
	return &PinServiceImpl{
		userRepo:    userRepo,
		hashSvc:     hashSvc,
		auditSvc:    auditSvc,
		maxFailures: maxFailures,
		log:         log,
	}
}

// SetPin hashes and stores the PIN, clearing any previous failure count.
// A locked PIN cannot be replaced; an administrator must unlock it first.
func (s *PinServiceImpl) SetPin(ctx context.Context, userID uuid.UUID, pin string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("find user: %w", err))
	}
	if user == nil {
		return apperror.ErrNotFound("user")
	}
	if user.IsPinLocked {
		return apperror.ErrPinLocked()
	}

	pinHash, err := s.hashSvc.Hash(pin)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("hash pin: %w", err))
	}

	if err := s.userRepo.SetPinHash(ctx, userID, pinHash); err != nil {
		return apperror.InternalError(fmt.Errorf("store pin: %w", err))
	}

	s.auditSvc.Record(ctx, &userID, "pin_set", user.Username, "", "")
	return nil
}

// Verify checks the PIN against the stored hash. Each wrong attempt
// increments the failure counter in a single statement; reaching the limit
// locks the PIN until an administrator unlocks it. A correct attempt resets
// the counter.
func (s *PinServiceImpl) Verify(ctx context.Context, userID uuid.UUID, pin string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("find user: %w", err))
	}
	if user == nil {
		return apperror.ErrNotFound("user")
	}
	if user.IsPinLocked {
		return apperror.ErrPinLocked()
	}
	if user.PinHash == nil {
		return apperror.Validation("PIN has not been set")
	}

	valid, err := s.hashSvc.Verify(pin, *user.PinHash)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("verify pin: %w", err))
	}

	if !valid {
		failures, locked, err := s.userRepo.RecordPinFailure(ctx, userID, s.maxFailures)
		if err != nil {
			return apperror.InternalError(fmt.Errorf("record pin failure: %w", err))
		}
		if locked {
			s.auditSvc.Record(ctx, &userID, "pin_locked", user.Username,
				fmt.Sprintf("locked after %d failed attempts", failures), "")
		}
		// The attempt that trips the lock still reports a wrong PIN; only
		// later attempts see the lockout.
		return apperror.ErrInvalidPin()
	}

	if user.PinFailCount > 0 {
		if err := s.userRepo.ResetPinFailures(ctx, userID); err != nil {
			// The check already passed; a stale counter only shortens the
			// window before the next lockout.
			s.log.Warn().Err(err).Str("user_id", userID.String()).Msg("failed to reset pin failure count")
		}
	}
	return nil
}

// Unlock clears the PIN lockout and failure counter for the named user.
// Callers must ensure the actor is an administrator.
func (s *PinServiceImpl) Unlock(ctx context.Context, username string) error {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("find user: %w", err))
	}
	if user == nil {
		return apperror.ErrNotFound("user")
	}

	if err := s.userRepo.UnlockPin(ctx, user.ID); err != nil {
		return apperror.InternalError(fmt.Errorf("unlock pin: %w", err))
	}

	s.auditSvc.Record(ctx, nil, "pin_unlocked", username, "", "")
	return nil
}
