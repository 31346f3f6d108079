package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"emoney-wallet/internal/adapter/http/dto"
	"emoney-wallet/internal/adapter/http/middleware"
	"emoney-wallet/internal/core/domain"
	"emoney-wallet/internal/core/ports"
	"emoney-wallet/internal/core/ports/mocks"
	"emoney-wallet/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func sampleEntry(txType domain.TransactionType, from *uuid.UUID, to uuid.UUID, amount string) *domain.Transaction {
	return &domain.Transaction{
		ID:         uuid.New(),
		Type:       txType,
		FromUserID: from,
		ToUserID:   to,
		Amount:     decimal.RequireFromString(amount),
		CreatedAt:  time.Now(),
	}
}

// --- Auth Handler Tests ---

func TestRegister_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	userID := uuid.New()
	mockAuth.EXPECT().Register(gomock.Any(), "alice", "password123").Return(&domain.User{
		ID:        userID,
		Username:  "alice",
		Role:      domain.RoleUser,
		KYCStatus: domain.KYCNotVerified,
	}, nil)

	body, _ := json.Marshal(dto.RegisterRequest{
		Username: "alice",
		Password: "password123",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Register(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, userID.String(), data["user_id"])
	assert.Equal(t, "alice", data["username"])
	assert.Equal(t, "not_verified", data["kyc_status"])
}

func TestRegister_ValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	// Empty body => binding error
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("{}")))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Register(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegister_UsernameTaken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	mockAuth.EXPECT().Register(gomock.Any(), "taken", gomock.Any()).Return(nil, apperror.ErrUsernameTaken())

	body, _ := json.Marshal(dto.RegisterRequest{
		Username: "taken",
		Password: "password123",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Register(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLogin_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	expiry := time.Now().Add(24 * time.Hour)
	mockAuth.EXPECT().Login(gomock.Any(), "alice", "password123").Return("jwt-token-123", expiry, nil)

	body, _ := json.Marshal(dto.LoginRequest{
		Username: "alice",
		Password: "password123",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Login(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "jwt-token-123", data["token"])
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	mockAuth.EXPECT().Login(gomock.Any(), "bad", "bad12345").Return("", time.Time{}, apperror.ErrInvalidCredentials())

	body, _ := json.Marshal(dto.LoginRequest{
		Username: "bad",
		Password: "bad12345",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Login(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// --- User Handler Tests ---

func TestGetProfile_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAccount := mocks.NewMockAccountService(ctrl)
	mockReporting := mocks.NewMockReportingService(ctrl)
	mockPin := mocks.NewMockPinService(ctrl)
	h := NewUserHandler(mockAccount, mockReporting, mockPin)

	userID := uuid.New()
	pinHash := "$argon2id$..."
	mockAccount.EXPECT().GetProfile(gomock.Any(), userID).Return(&domain.User{
		ID:         userID,
		Username:   "alice",
		Role:       domain.RoleUser,
		KYCStatus:  domain.KYCVerified,
		IsMerchant: false,
		PinHash:    &pinHash,
		CreatedAt:  time.Now(),
	}, nil)
	mockReporting.EXPECT().GetBalance(gomock.Any(), userID).Return(decimal.RequireFromString("125.50"), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set(middleware.CtxUserID, userID)

	h.GetProfile(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "alice", data["username"])
	assert.Equal(t, "verified", data["kyc_status"])
	assert.Equal(t, true, data["pin_set"])
	assert.Equal(t, "125.50", data["balance"])
}

func TestGetProfile_MissingAuth(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewUserHandler(mocks.NewMockAccountService(ctrl), mocks.NewMockReportingService(ctrl), mocks.NewMockPinService(ctrl))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	h.GetProfile(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequestKYC_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAccount := mocks.NewMockAccountService(ctrl)
	h := NewUserHandler(mockAccount, mocks.NewMockReportingService(ctrl), mocks.NewMockPinService(ctrl))

	userID := uuid.New()
	mockAccount.EXPECT().RequestKYC(gomock.Any(), userID).Return(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	c.Set(middleware.CtxUserID, userID)

	h.RequestKYC(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pending")
}

// Users may only request the pending status for themselves.
func TestRequestKYC_NonPendingStatusDenied(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewUserHandler(mocks.NewMockAccountService(ctrl), mocks.NewMockReportingService(ctrl), mocks.NewMockPinService(ctrl))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte(`{"status":"verified"}`)))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.CtxUserID, uuid.New())

	h.RequestKYC(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "KYC_001")
}

func TestSetPin_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPin := mocks.NewMockPinService(ctrl)
	h := NewUserHandler(mocks.NewMockAccountService(ctrl), mocks.NewMockReportingService(ctrl), mockPin)

	userID := uuid.New()
	mockPin.EXPECT().SetPin(gomock.Any(), userID, "1234").Return(nil)

	body, _ := json.Marshal(dto.SetPinRequest{Pin: "1234"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.CtxUserID, userID)

	h.SetPin(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSetPin_RejectsBadFormat(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewUserHandler(mocks.NewMockAccountService(ctrl), mocks.NewMockReportingService(ctrl), mocks.NewMockPinService(ctrl))

	body, _ := json.Marshal(dto.SetPinRequest{Pin: "12"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.CtxUserID, uuid.New())

	h.SetPin(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Wallet Handler Tests ---

func TestGetBalance_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	mockReporting := mocks.NewMockReportingService(ctrl)
	h := NewWalletHandler(mockLedger, mockReporting)

	userID := uuid.New()
	mockReporting.EXPECT().GetBalance(gomock.Any(), userID).Return(decimal.RequireFromString("100.00"), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set(middleware.CtxUserID, userID)

	h.GetBalance(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "100.00", data["balance"])
}

func TestDeposit_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mockLedger, mocks.NewMockReportingService(ctrl))

	userID := uuid.New()
	amount := decimal.RequireFromString("50.00")
	mockLedger.EXPECT().Deposit(gomock.Any(), userID, amount, "payday").
		Return(sampleEntry(domain.TxDeposit, nil, userID, "50.00"), nil)

	body, _ := json.Marshal(dto.DepositRequest{Amount: "50.00", Description: "payday"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.CtxUserID, userID)

	h.Deposit(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "deposit", data["type"])
	assert.Equal(t, "50.00", data["amount"])
	assert.Nil(t, data["from_user_id"])
}

func TestDeposit_RejectsBadAmount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewWalletHandler(mocks.NewMockLedgerService(ctrl), mocks.NewMockReportingService(ctrl))

	for _, amount := range []string{"-5", "0", "1.005", "ten"} {
		body, _ := json.Marshal(dto.DepositRequest{Amount: amount})

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set(middleware.CtxUserID, uuid.New())

		h.Deposit(c)

		assert.Equal(t, http.StatusBadRequest, w.Code, "amount %q should be rejected", amount)
	}
}

func TestTransfer_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mockLedger, mocks.NewMockReportingService(ctrl))

	userID := uuid.New()
	recipientID := uuid.New()
	amount := decimal.RequireFromString("25.00")

	mockLedger.EXPECT().Transfer(gomock.Any(), ports.TransferRequest{
		FromUserID:  userID,
		ToUsername:  "bob",
		Amount:      amount,
		Pin:         "1234",
		Description: "lunch",
	}).Return(sampleEntry(domain.TxTransfer, &userID, recipientID, "25.00"), nil)

	body, _ := json.Marshal(dto.TransferRequest{
		ToUsername:  "bob",
		Amount:      "25.00",
		Pin:         "1234",
		Description: "lunch",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.CtxUserID, userID)

	h.Transfer(c)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestTransfer_WrongPin(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mockLedger, mocks.NewMockReportingService(ctrl))

	mockLedger.EXPECT().Transfer(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrInvalidPin())

	body, _ := json.Marshal(dto.TransferRequest{
		ToUsername: "bob",
		Amount:     "25.00",
		Pin:        "9999",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.CtxUserID, uuid.New())

	h.Transfer(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "PIN_001")
}

func TestTransfer_InsufficientBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mockLedger, mocks.NewMockReportingService(ctrl))

	mockLedger.EXPECT().Transfer(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrInsufficientBalance())

	body, _ := json.Marshal(dto.TransferRequest{
		ToUsername: "bob",
		Amount:     "9999.00",
		Pin:        "1234",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.CtxUserID, uuid.New())

	h.Transfer(c)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
}

func TestListTransactions_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReporting := mocks.NewMockReportingService(ctrl)
	h := NewWalletHandler(mocks.NewMockLedgerService(ctrl), mockReporting)

	userID := uuid.New()
	entry := sampleEntry(domain.TxTransfer, &userID, uuid.New(), "10.00")

	mockReporting.EXPECT().ListTransactions(gomock.Any(), userID, ports.Page{Number: 1, Size: 20}).
		Return([]domain.Transaction{*entry}, int64(1), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?page=1&page_size=20", nil)
	c.Set(middleware.CtxUserID, userID)

	h.ListTransactions(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	items := data["items"].([]interface{})
	assert.Len(t, items, 1)
	assert.Equal(t, float64(1), data["total"])
	assert.Equal(t, float64(1), data["total_pages"])
}

func TestSearchRecords_ParsesFilters(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReporting := mocks.NewMockReportingService(ctrl)
	h := NewWalletHandler(mocks.NewMockLedgerService(ctrl), mockReporting)

	userID := uuid.New()
	var captured ports.TransactionSearchParams
	mockReporting.EXPECT().SearchRecords(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ interface{}, params ports.TransactionSearchParams) ([]domain.Transaction, int64, error) {
			captured = params
			return nil, 0, nil
		})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet,
		"/?type=charge&type=refund&q=coffee&start_date=2026-08-01T00:00:00Z&page=2&page_size=10", nil)
	c.Set(middleware.CtxUserID, userID)

	h.SearchRecords(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID, captured.UserID)
	assert.Equal(t, []domain.TransactionType{domain.TxCharge, domain.TxRefund}, captured.Types)
	assert.Equal(t, "coffee", captured.Keyword)
	require.NotNil(t, captured.StartDate)
	assert.Equal(t, 2, captured.Page.Number)
	assert.Equal(t, 10, captured.Page.Size)
}

func TestSearchRecords_RejectsBadDate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewWalletHandler(mocks.NewMockLedgerService(ctrl), mocks.NewMockReportingService(ctrl))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?start_date=yesterday", nil)
	c.Set(middleware.CtxUserID, uuid.New())

	h.SearchRecords(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTransaction_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReporting := mocks.NewMockReportingService(ctrl)
	h := NewWalletHandler(mocks.NewMockLedgerService(ctrl), mockReporting)

	userID := uuid.New()
	entry := sampleEntry(domain.TxCharge, &userID, uuid.New(), "15.00")
	mockReporting.EXPECT().GetTransaction(gomock.Any(), userID, entry.ID).Return(entry, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: entry.ID.String()}}
	c.Set(middleware.CtxUserID, userID)

	h.GetTransaction(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetTransaction_InvalidID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewWalletHandler(mocks.NewMockLedgerService(ctrl), mocks.NewMockReportingService(ctrl))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}
	c.Set(middleware.CtxUserID, uuid.New())

	h.GetTransaction(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Merchant Handler Tests ---

func TestCharge_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewMerchantHandler(mockLedger, mocks.NewMockReportingService(ctrl))

	merchantID := uuid.New()
	payerID := uuid.New()
	amount := decimal.RequireFromString("15.00")

	mockLedger.EXPECT().Charge(gomock.Any(), ports.ChargeRequest{
		MerchantID:    merchantID,
		PayerUsername: "alice",
		Amount:        amount,
		Description:   "coffee",
	}).Return(sampleEntry(domain.TxCharge, &payerID, merchantID, "15.00"), nil)

	body, _ := json.Marshal(dto.ChargeRequest{
		PayerUsername: "alice",
		Amount:        "15.00",
		Description:   "coffee",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.CtxUserID, merchantID)

	h.Charge(c)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCharge_NotMerchant(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewMerchantHandler(mockLedger, mocks.NewMockReportingService(ctrl))

	mockLedger.EXPECT().Charge(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrMerchantRequired())

	body, _ := json.Marshal(dto.ChargeRequest{
		PayerUsername: "alice",
		Amount:        "15.00",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.CtxUserID, uuid.New())

	h.Charge(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_005")
}

func TestRefundByTransaction_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewMerchantHandler(mockLedger, mocks.NewMockReportingService(ctrl))

	merchantID := uuid.New()
	customerID := uuid.New()
	originalID := uuid.New()

	refund := sampleEntry(domain.TxRefund, &merchantID, customerID, "15.00")
	refund.RefersTo = &originalID

	mockLedger.EXPECT().RefundByTransaction(gomock.Any(), ports.RefundByTransactionRequest{
		MerchantID:    merchantID,
		TransactionID: originalID,
		Description:   "order cancelled",
	}).Return(refund, nil)

	body, _ := json.Marshal(dto.RefundByTransactionRequest{
		TransactionID: originalID.String(),
		Description:   "order cancelled",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.CtxUserID, merchantID)

	h.RefundByTransaction(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, originalID.String(), data["refers_to_transaction_id"])
}

func TestRefundByTransaction_AlreadyRefunded(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewMerchantHandler(mockLedger, mocks.NewMockReportingService(ctrl))

	mockLedger.EXPECT().RefundByTransaction(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrAlreadyRefunded())

	body, _ := json.Marshal(dto.RefundByTransactionRequest{
		TransactionID: uuid.New().String(),
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.CtxUserID, uuid.New())

	h.RefundByTransaction(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "WAL_005")
}

// --- Admin Handler Tests ---

func TestSetKYCStatus_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAccount := mocks.NewMockAccountService(ctrl)
	h := NewAdminHandler(mockAccount, mocks.NewMockPinService(ctrl), mocks.NewMockReportingService(ctrl))

	mockAccount.EXPECT().SetKYCStatus(gomock.Any(), "alice", domain.KYCVerified).Return(nil)

	body, _ := json.Marshal(dto.KYCStatusRequest{Status: "verified"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "username", Value: "alice"}}

	h.SetKYCStatus(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSetKYCStatus_UnknownStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAccount := mocks.NewMockAccountService(ctrl)
	h := NewAdminHandler(mockAccount, mocks.NewMockPinService(ctrl), mocks.NewMockReportingService(ctrl))

	mockAccount.EXPECT().SetKYCStatus(gomock.Any(), "alice", domain.KYCStatus("maybe")).
		Return(apperror.ErrInvalidKYCStatus())

	body, _ := json.Marshal(dto.KYCStatusRequest{Status: "maybe"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "username", Value: "alice"}}

	h.SetKYCStatus(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "KYC_002")
}

func TestSetMerchant_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAccount := mocks.NewMockAccountService(ctrl)
	h := NewAdminHandler(mockAccount, mocks.NewMockPinService(ctrl), mocks.NewMockReportingService(ctrl))

	mockAccount.EXPECT().SetMerchant(gomock.Any(), "shop", true).Return(nil)

	body, _ := json.Marshal(map[string]bool{"is_merchant": true})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "username", Value: "shop"}}

	h.SetMerchant(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUnlockPin_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPin := mocks.NewMockPinService(ctrl)
	h := NewAdminHandler(mocks.NewMockAccountService(ctrl), mockPin, mocks.NewMockReportingService(ctrl))

	mockPin.EXPECT().Unlock(gomock.Any(), "alice").Return(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	c.Params = gin.Params{{Key: "username", Value: "alice"}}

	h.UnlockPin(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReconcile_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReporting := mocks.NewMockReportingService(ctrl)
	h := NewAdminHandler(mocks.NewMockAccountService(ctrl), mocks.NewMockPinService(ctrl), mockReporting)

	userID := uuid.New()
	mockReporting.EXPECT().Reconcile(gomock.Any(), userID).Return(&ports.ReconcileResult{
		UserID:        userID,
		WalletBalance: decimal.RequireFromString("40.00"),
		LedgerNet:     decimal.RequireFromString("40.00"),
		Consistent:    true,
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Params = gin.Params{{Key: "user_id", Value: userID.String()}}

	h.Reconcile(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "\"consistent\":true")
}

// --- Health Check Test ---

func TestHealthCheck(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheck()(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
}

func TestHealthCheck_Degraded(t *testing.T) {
	failing := failingChecker{}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheck(failing)(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "degraded")
}

type failingChecker struct{}

func (failingChecker) Ping(context.Context) error { return errors.New("connection refused") }
func (failingChecker) Name() string               { return "postgres" }
