package handler

import (
	"emoney-wallet/internal/adapter/http/dto"
	"emoney-wallet/internal/adapter/http/middleware"
	"emoney-wallet/internal/core/ports"
	"emoney-wallet/pkg/apperror"
	"emoney-wallet/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MerchantHandler handles charge and refund endpoints. The merchant flag
// itself is enforced by the ledger service, not here, so that the check
// always runs regardless of transport.
type MerchantHandler struct {
	ledgerSvc    ports.LedgerService
	reportingSvc ports.ReportingService
}

// NewMerchantHandler creates a new MerchantHandler.
func NewMerchantHandler(ledgerSvc ports.LedgerService, reportingSvc ports.ReportingService) *MerchantHandler {
	return &MerchantHandler{
		ledgerSvc:    ledgerSvc,
		reportingSvc: reportingSvc,
	}
}

// Charge handles POST /api/v1/merchant/charge.
func (h *MerchantHandler) Charge(c *gin.Context) {
	merchantID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.ChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	amount, err := dto.ParseAmount(req.Amount)
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	txn, err := h.ledgerSvc.Charge(c.Request.Context(), ports.ChargeRequest{
		MerchantID:    merchantID,
		PayerUsername: req.PayerUsername,
		Amount:        amount,
		Description:   req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewTransactionResponse(txn))
}

// Refund handles POST /api/v1/merchant/refund.
func (h *MerchantHandler) Refund(c *gin.Context) {
	merchantID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	amount, err := dto.ParseAmount(req.Amount)
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	txn, err := h.ledgerSvc.Refund(c.Request.Context(), ports.RefundRequest{
		MerchantID:    merchantID,
		PayeeUsername: req.PayeeUsername,
		Amount:        amount,
		Description:   req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewTransactionResponse(txn))
}

// RefundByTransaction handles POST /api/v1/merchant/refund/by-transaction.
func (h *MerchantHandler) RefundByTransaction(c *gin.Context) {
	merchantID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.RefundByTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	txID, err := uuid.Parse(req.TransactionID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid transaction id"))
		return
	}

	txn, err := h.ledgerSvc.RefundByTransaction(c.Request.Context(), ports.RefundByTransactionRequest{
		MerchantID:    merchantID,
		TransactionID: txID,
		Description:   req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewTransactionResponse(txn))
}

// Records handles GET /api/v1/merchant/records. It is the same record
// search as the wallet one, scoped to the merchant's own entries.
func (h *MerchantHandler) Records(c *gin.Context) {
	merchantID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	params, err := parseSearchParams(c, merchantID)
	if err != nil {
		response.Error(c, err)
		return
	}

	txns, total, err := h.reportingSvc.SearchRecords(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewTransactionListResponse(txns, total, params.Page.Number, params.Page.Size))
}
