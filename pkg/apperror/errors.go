package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Authentication & Authorization (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid username or password", http.StatusUnauthorized)
}

func ErrUsernameTaken() *AppError {
	return New("AUTH_002", "Username already exists", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrMerchantRequired() *AppError {
	return New("AUTH_005", "Only merchant accounts may perform this operation", http.StatusForbidden)
}

func ErrAdminRequired() *AppError {
	return New("AUTH_006", "Administrator privileges required", http.StatusForbidden)
}

func ErrNotTransactionParty() *AppError {
	return New("AUTH_007", "Not a party to this transaction", http.StatusForbidden)
}

// ---- Wallet & Ledger (WAL) ----

func ErrInsufficientBalance() *AppError {
	return New("WAL_001", "Insufficient balance", http.StatusPaymentRequired)
}

func ErrInvalidAmount() *AppError {
	return New("WAL_002", "Amount must be positive with at most two decimal places", http.StatusBadRequest)
}

func ErrNotFound(entity string) *AppError {
	return New("WAL_004", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrAlreadyRefunded() *AppError {
	return New("WAL_005", "Charge has already been refunded", http.StatusConflict)
}

// ---- PIN Gate (PIN) ----

func ErrInvalidPin() *AppError {
	return New("PIN_001", "Invalid PIN code", http.StatusForbidden)
}

func ErrPinLocked() *AppError {
	return New("PIN_002", "PIN is locked due to repeated failed attempts", http.StatusForbidden)
}

// ---- KYC (KYC) ----

func ErrKYCTransitionDenied() *AppError {
	return New("KYC_001", "Only 'pending' status can be requested", http.StatusForbidden)
}

func ErrInvalidKYCStatus() *AppError {
	return New("KYC_002", "Unknown KYC status", http.StatusBadRequest)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a VAL_001 validation error with a caller-supplied message.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}
