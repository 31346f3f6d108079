package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role determines the administrative capability of an account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// KYCStatus represents the identity-verification state of a user.
type KYCStatus string

const (
	KYCNotVerified KYCStatus = "not_verified"
	KYCPending     KYCStatus = "pending"
	KYCVerified    KYCStatus = "verified"
	KYCRejected    KYCStatus = "rejected"
)

// ValidKYCStatus reports whether s is one of the known KYC states.
func ValidKYCStatus(s KYCStatus) bool {
	switch s {
	case KYCNotVerified, KYCPending, KYCVerified, KYCRejected:
		return true
	}
	return false
}

// User is a wallet account holder. Merchants and administrators are ordinary
// users with the corresponding flag or role set by an admin override.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	IsMerchant   bool      `json:"is_merchant"`
	KYCStatus    KYCStatus `json:"kyc_status"`
	PinHash      *string   `json:"-"` // nil until the user sets a PIN
	PinFailCount int       `json:"-"`
	IsPinLocked  bool      `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user holds the administrator role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
