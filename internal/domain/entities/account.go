package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// UserType distinguishes the two sides of the marketplace
type UserType string

const (
	UserTypeConsumer UserType = "consumer"
	UserTypeProvider UserType = "provider"
)

// Valid reports whether t is a known user type.
func (t UserType) Valid() bool {
	return t == UserTypeConsumer || t == UserTypeProvider
}

// AccountStatus represents the account lifecycle state
type AccountStatus string

const (
	AccountStatusPendingVerification AccountStatus = "pending_verification"
	AccountStatusActive              AccountStatus = "active"
)

// Account represents a marketplace account as seen by the verification flow
type Account struct {
	ID              uuid.UUID     `json:"id"`
	Name            string        `json:"name"`
	Email           string        `json:"email"`
	Phone           string        `json:"phone"`
	UserType        UserType      `json:"userType"`
	PhoneVerified   bool          `json:"phoneVerified"`
	Status          AccountStatus `json:"status"`
	PhoneVerifiedAt null.Time     `json:"phoneVerifiedAt"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// IsActive reports whether the account has completed phone verification.
func (a *Account) IsActive() bool {
	return a.PhoneVerified && a.Status == AccountStatusActive
}

// RegisterAccountInput represents input for registering an account
type RegisterAccountInput struct {
	Name     string   `json:"name" binding:"required,min=2,max=100"`
	Email    string   `json:"email" binding:"required,email"`
	Phone    string   `json:"phone" binding:"required"`
	UserType UserType `json:"userType" binding:"required,oneof=consumer provider"`
}
