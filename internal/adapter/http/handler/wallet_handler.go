package handler

import (
	"strconv"
	"time"

	"emoney-wallet/internal/adapter/http/dto"
	"emoney-wallet/internal/adapter/http/middleware"
	"emoney-wallet/internal/core/domain"
	"emoney-wallet/internal/core/ports"
	"emoney-wallet/pkg/apperror"
	"emoney-wallet/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WalletHandler handles balance and money-movement endpoints.
type WalletHandler struct {
	ledgerSvc    ports.LedgerService
	reportingSvc ports.ReportingService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(ledgerSvc ports.LedgerService, reportingSvc ports.ReportingService) *WalletHandler {
	return &WalletHandler{
		ledgerSvc:    ledgerSvc,
		reportingSvc: reportingSvc,
	}
}

// GetBalance handles GET /api/v1/wallets/balance.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	balance, err := h.reportingSvc.GetBalance(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{Balance: balance.StringFixed(2)})
}

// Deposit handles POST /api/v1/wallets/deposit.
func (h *WalletHandler) Deposit(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.DepositRequest
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

	txn, err := h.ledgerSvc.Deposit(c.Request.Context(), userID, amount, req.Description)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewTransactionResponse(txn))
}

// Transfer handles POST /api/v1/wallets/transfer.
func (h *WalletHandler) Transfer(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.TransferRequest
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

	txn, err := h.ledgerSvc.Transfer(c.Request.Context(), ports.TransferRequest{
		FromUserID:  userID,
		ToUsername:  req.ToUsername,
		Amount:      amount,
		Pin:         req.Pin,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewTransactionResponse(txn))
}

// ListTransactions handles GET /api/v1/transactions.
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	page := parsePage(c)
	txns, total, err := h.reportingSvc.ListTransactions(c.Request.Context(), userID, page)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewTransactionListResponse(txns, total, page.Number, page.Size))
}

// SearchRecords handles GET /api/v1/transactions/records.
func (h *WalletHandler) SearchRecords(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	params, err := parseSearchParams(c, userID)
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

// GetTransaction handles GET /api/v1/transactions/:id.
func (h *WalletHandler) GetTransaction(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	txID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid transaction id"))
		return
	}

	txn, err := h.reportingSvc.GetTransaction(c.Request.Context(), userID, txID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewTransactionResponse(txn))
}

// parsePage reads page and page_size query parameters.
func parsePage(c *gin.Context) ports.Page {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return ports.Page{Number: page, Size: pageSize}
}

// parseSearchParams reads the record-search filters from query parameters.
func parseSearchParams(c *gin.Context, userID uuid.UUID) (ports.TransactionSearchParams, error) {
	params := ports.TransactionSearchParams{
		UserID:  userID,
		Keyword: c.Query("q"),
		Page:    parsePage(c),
	}

	if types := c.QueryArray("type"); len(types) > 0 {
		for _, t := range types {
			params.Types = append(params.Types, domain.TransactionType(t))
		}
	}
	if s := c.Query("start_date"); s != "" {
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return params, apperror.Validation("start_date must be RFC 3339")
		}
		params.StartDate = &ts
	}
	if s := c.Query("end_date"); s != "" {
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return params, apperror.Validation("end_date must be RFC 3339")
		}
		params.EndDate = &ts
	}

	return params, nil
}
