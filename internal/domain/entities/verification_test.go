package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVerificationRecord_Helpers(t *testing.T) {
	issued := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	r := &VerificationRecord{
		Phone:     "+94712345678",
		IssuedAt:  issued,
		ExpiresAt: issued.Add(10 * time.Minute),
	}

	assert.False(t, r.IsExpired(issued))
	assert.False(t, r.IsExpired(r.ExpiresAt))
	assert.True(t, r.IsExpired(r.ExpiresAt.Add(time.Nanosecond)))

	assert.False(t, r.IsExhausted(3))
	assert.Equal(t, 3, r.RemainingAttempts(3))

	r.Attempts = 3
	assert.True(t, r.IsExhausted(3))
	assert.Equal(t, 0, r.RemainingAttempts(3))

	r.Attempts = 5
	assert.Equal(t, 0, r.RemainingAttempts(3))
}

func TestAccount_Helpers(t *testing.T) {
	assert.True(t, UserTypeConsumer.Valid())
	assert.True(t, UserTypeProvider.Valid())
	assert.False(t, UserType("admin").Valid())

	a := &Account{Status: AccountStatusPendingVerification}
	assert.False(t, a.IsActive())
	a.PhoneVerified = true
	a.Status = AccountStatusActive
	assert.True(t, a.IsActive())
}
