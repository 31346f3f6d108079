package handler

import (
	"emoney-wallet/internal/adapter/http/dto"
	"emoney-wallet/internal/core/domain"
	"emoney-wallet/internal/core/ports"
	"emoney-wallet/pkg/apperror"
	"emoney-wallet/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminHandler handles administrative override endpoints. All routes are
// guarded by the admin role middleware.
type AdminHandler struct {
	accountSvc   ports.AccountService
	pinSvc       ports.PinService
	reportingSvc ports.ReportingService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(accountSvc ports.AccountService, pinSvc ports.PinService, reportingSvc ports.ReportingService) *AdminHandler {
	return &AdminHandler{
		accountSvc:   accountSvc,
		pinSvc:       pinSvc,
		reportingSvc: reportingSvc,
	}
}

// SetKYCStatus handles PUT /api/v1/admin/users/:username/kyc.
func (h *AdminHandler) SetKYCStatus(c *gin.Context) {
	var req dto.KYCStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	username := c.Param("username")
	status := domain.KYCStatus(req.Status)
	if err := h.accountSvc.SetKYCStatus(c.Request.Context(), username, status); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"username": username, "kyc_status": req.Status})
}

// SetMerchant handles PUT /api/v1/admin/users/:username/merchant.
func (h *AdminHandler) SetMerchant(c *gin.Context) {
	var req dto.MerchantFlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	username := c.Param("username")
	if err := h.accountSvc.SetMerchant(c.Request.Context(), username, *req.IsMerchant); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"username": username, "is_merchant": *req.IsMerchant})
}

// UnlockPin handles POST /api/v1/admin/users/:username/unlock-pin.
func (h *AdminHandler) UnlockPin(c *gin.Context) {
	username := c.Param("username")
	if err := h.pinSvc.Unlock(c.Request.Context(), username); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"username": username, "pin_locked": false})
}

// Reconcile handles GET /api/v1/admin/reconcile/:user_id.
func (h *AdminHandler) Reconcile(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid user id"))
		return
	}

	result, err := h.reportingSvc.Reconcile(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, result)
}
