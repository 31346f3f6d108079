package handler

import (
	"errors"
	"io"

	"emoney-wallet/internal/adapter/http/dto"
	"emoney-wallet/internal/adapter/http/middleware"
	"emoney-wallet/internal/core/domain"
	"emoney-wallet/internal/core/ports"
	"emoney-wallet/pkg/apperror"
	"emoney-wallet/pkg/response"

	"github.com/gin-gonic/gin"
)

// UserHandler handles profile, KYC, and PIN endpoints for the caller's
// own account.
type UserHandler struct {
	accountSvc   ports.AccountService
	reportingSvc ports.ReportingService
	pinSvc       ports.PinService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(accountSvc ports.AccountService, reportingSvc ports.ReportingService, pinSvc ports.PinService) *UserHandler {
	return &UserHandler{
		accountSvc:   accountSvc,
		reportingSvc: reportingSvc,
		pinSvc:       pinSvc,
	}
}

// GetProfile handles GET /api/v1/users/me.
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	user, err := h.accountSvc.GetProfile(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	balance, err := h.reportingSvc.GetBalance(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ProfileResponse{
		UserID:     user.ID.String(),
		Username:   user.Username,
		Role:       string(user.Role),
		KYCStatus:  string(user.KYCStatus),
		IsMerchant: user.IsMerchant,
		PinSet:     user.PinHash != nil,
		PinLocked:  user.IsPinLocked,
		Balance:    balance.StringFixed(2),
		CreatedAt:  user.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	})
}

// RequestKYC handles POST /api/v1/users/me/kyc. The body is optional; when a
// status is supplied it must be "pending", the only status a user can request
// for themselves.
func (h *UserHandler) RequestKYC(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.RequestKYCRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	if req.Status != "" && req.Status != string(domain.KYCPending) {
		response.Error(c, apperror.ErrKYCTransitionDenied())
		return
	}

	if err := h.accountSvc.RequestKYC(c.Request.Context(), userID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"kyc_status": "pending"})
}

// SetPin handles PUT /api/v1/users/me/pin.
func (h *UserHandler) SetPin(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.SetPinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	if err := h.pinSvc.SetPin(c.Request.Context(), userID, req.Pin); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"pin_set": true})
}
