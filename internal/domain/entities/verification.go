package entities

import "time"

// Reason is the outcome of a verification operation
type Reason string

const (
	ReasonOK                Reason = "OK"
	ReasonNotFound          Reason = "NOT_FOUND"
	ReasonExpired           Reason = "EXPIRED"
	ReasonExhausted         Reason = "EXHAUSTED"
	ReasonMismatch          Reason = "MISMATCH"
	ReasonTooSoon           Reason = "TOO_SOON"
	ReasonDependencyFailure Reason = "DEPENDENCY_FAILURE"
)

// VerificationRecord is the pending verification for one phone.
// Only the bcrypt hash of the code is kept.
type VerificationRecord struct {
	Phone     string    `json:"phone"`
	CodeHash  string    `json:"codeHash"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	Attempts  int       `json:"attempts"`
	Verified  bool      `json:"verified"`
}

// IsExpired reports whether now is strictly past the expiry instant.
func (r *VerificationRecord) IsExpired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// IsExhausted reports whether no checks remain.
func (r *VerificationRecord) IsExhausted(maxAttempts int) bool {
	return r.Attempts >= maxAttempts
}

// RemainingAttempts returns how many more failed checks are allowed.
func (r *VerificationRecord) RemainingAttempts(maxAttempts int) int {
	left := maxAttempts - r.Attempts
	if left < 0 {
		return 0
	}
	return left
}

// CheckResult is the outcome of checking a submitted code
type CheckResult struct {
	OK                bool   `json:"ok"`
	Reason            Reason `json:"reason"`
	RemainingAttempts int    `json:"remainingAttempts"`
}

// Issuance describes a code that was stored and dispatched.
// Code is populated for logging and tests only and must not be returned to clients
// unless code echoing is enabled.
type Issuance struct {
	Phone     string    `json:"phone"`
	Code      string    `json:"-"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	Delivered bool      `json:"delivered"`
}

// SendVerificationInput represents input for issuing or resending a code
type SendVerificationInput struct {
	Phone string `json:"phone" binding:"required"`
}

// VerifyPhoneInput represents input for checking a code
type VerifyPhoneInput struct {
	Phone string `json:"phone" binding:"required"`
	Code  string `json:"code" binding:"required"`
}
