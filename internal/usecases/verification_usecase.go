package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"wefix.backend/internal/domain/entities"
	domainerrors "wefix.backend/internal/domain/errors"
	"wefix.backend/internal/domain/repositories"
	"wefix.backend/pkg/crypto"
	"wefix.backend/pkg/logger"
	"wefix.backend/pkg/metrics"
	"wefix.backend/pkg/utils"
)

const (
	DefaultCodeTTL     = 10 * time.Minute
	DefaultMaxAttempts = 3
	DefaultTestCode    = "123456"

	operationIssue  = "issue"
	operationResend = "resend"
)

// VerificationOptions configures the verification lifecycle
type VerificationOptions struct {
	CodeTTL     time.Duration
	MaxAttempts int
	// ResendCooldown of zero disables the resend throttle.
	ResendCooldown time.Duration
	// DeterministicCode issues TestCode instead of a random code. Tests and local development only.
	DeterministicCode bool
	TestCode          string
	BcryptCost        int
	CountryCode       string

	// Clock and GenerateCode default to time.Now and crypto.GenerateCode.
	Clock        func() time.Time
	GenerateCode func() (string, error)
}

// VerificationUsecase owns the issue/check/resend lifecycle of phone verification codes
type VerificationUsecase struct {
	store    repositories.VerificationStore
	accounts repositories.AccountRepository
	notifier repositories.Notifier
	metrics  *metrics.Verification
	opts     VerificationOptions
}

// NewVerificationUsecase creates a new verification usecase
func NewVerificationUsecase(
	store repositories.VerificationStore,
	accounts repositories.AccountRepository,
	notifier repositories.Notifier,
	m *metrics.Verification,
	opts VerificationOptions,
) *VerificationUsecase {
	if opts.CodeTTL <= 0 {
		opts.CodeTTL = DefaultCodeTTL
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.ResendCooldown < 0 {
		opts.ResendCooldown = 0
	}
	if opts.TestCode == "" {
		opts.TestCode = DefaultTestCode
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = crypto.DefaultCost
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.GenerateCode == nil {
		opts.GenerateCode = crypto.GenerateCode
	}
	return &VerificationUsecase{
		store:    store,
		accounts: accounts,
		notifier: notifier,
		metrics:  m,
		opts:     opts,
	}
}

// MaxAttempts returns the configured number of failed checks allowed per code.
func (u *VerificationUsecase) MaxAttempts() int {
	return u.opts.MaxAttempts
}

// Issue creates a fresh code for phone, replacing any pending one, and dispatches it.
// When delivery fails the code stays stored and the issuance is returned together
// with an error wrapping ErrDependencyFailure.
// Issue is not throttled; callers reachable by clients use RequestCode or Resend.
func (u *VerificationUsecase) Issue(ctx context.Context, phone string) (*entities.Issuance, error) {
	return u.issue(ctx, phone, operationIssue, false)
}

// RequestCode is Issue subject to the resend cooldown. A live code younger than the
// cooldown yields a *RetryAfterError instead of a second dispatch.
func (u *VerificationUsecase) RequestCode(ctx context.Context, phone string) (*entities.Issuance, error) {
	return u.issue(ctx, phone, operationIssue, true)
}

// Resend behaves like Issue but refuses while the pending code is younger than the
// resend cooldown. The refusal is a *RetryAfterError.
func (u *VerificationUsecase) Resend(ctx context.Context, phone string) (*entities.Issuance, error) {
	return u.issue(ctx, phone, operationResend, true)
}

// SendToAccount requests a code for the phone on file for the account. The resend
// cooldown applies.
func (u *VerificationUsecase) SendToAccount(ctx context.Context, accountID uuid.UUID) (*entities.Issuance, error) {
	account, err := u.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.Phone == "" {
		return nil, domainerrors.ErrPhoneMissing
	}
	return u.RequestCode(ctx, account.Phone)
}

func (u *VerificationUsecase) issue(ctx context.Context, rawPhone, operation string, enforceCooldown bool) (*entities.Issuance, error) {
	phone, err := u.normalize(rawPhone)
	if err != nil {
		return nil, err
	}

	code := u.opts.TestCode
	if !u.opts.DeterministicCode {
		if code, err = u.opts.GenerateCode(); err != nil {
			return nil, err
		}
	}
	codeHash, err := crypto.HashCode(code, u.opts.BcryptCost)
	if err != nil {
		return nil, err
	}

	unlock, err := u.store.Lock(ctx, phone)
	if err != nil {
		return nil, dependencyFailure("lock verification record", err)
	}

	now := u.opts.Clock()
	if enforceCooldown && u.opts.ResendCooldown > 0 {
		existing, err := u.store.Get(ctx, phone)
		switch {
		case err == nil:
			if !existing.IsExpired(now) {
				if wait := existing.IssuedAt.Add(u.opts.ResendCooldown).Sub(now); wait > 0 {
					unlock()
					logger.Info(ctx, "Resend refused during cooldown",
						zap.String("phone", utils.MaskPhone(phone)),
						zap.Duration("retry_after", wait),
					)
					return nil, &domainerrors.RetryAfterError{RetryAfter: wait}
				}
			}
		case !errors.Is(err, domainerrors.ErrNotFound):
			unlock()
			return nil, dependencyFailure("read verification record", err)
		}
	}

	record := &entities.VerificationRecord{
		Phone:     phone,
		CodeHash:  codeHash,
		IssuedAt:  now,
		ExpiresAt: now.Add(u.opts.CodeTTL),
	}
	err = u.store.Put(ctx, record)
	unlock()
	if err != nil {
		return nil, dependencyFailure("store verification record", err)
	}
	u.metrics.IncIssued(operation)

	issuance := &entities.Issuance{
		Phone:     phone,
		Code:      code,
		IssuedAt:  record.IssuedAt,
		ExpiresAt: record.ExpiresAt,
	}

	fields := []zap.Field{
		zap.String("phone", utils.MaskPhone(phone)),
		zap.String("operation", operation),
		zap.Time("expires_at", record.ExpiresAt),
	}
	if u.opts.DeterministicCode {
		fields = append(fields, zap.String("code", code))
	}

	if err := u.notifier.Send(ctx, phone, code); err != nil {
		u.metrics.IncNotifierFailure()
		logger.Error(ctx, "Verification code stored but not delivered", append(fields, zap.Error(err))...)
		return issuance, dependencyFailure("deliver verification code", err)
	}
	issuance.Delivered = true

	logger.Info(ctx, "Verification code issued", fields...)
	return issuance, nil
}

// Check validates code against the pending record for phone.
func (u *VerificationUsecase) Check(ctx context.Context, phone, code string) (entities.CheckResult, error) {
	return u.check(ctx, phone, code, nil)
}

// VerifyAccount checks code and, on success, marks the account registered with the
// phone as verified and active before the record is consumed. If the directory update
// fails the record stays verified so the same code can be submitted again.
// A phone with no registered account verifies without touching the directory.
func (u *VerificationUsecase) VerifyAccount(ctx context.Context, phone, code string) (entities.CheckResult, error) {
	return u.check(ctx, phone, code, u.markAccountVerified)
}

func (u *VerificationUsecase) markAccountVerified(ctx context.Context, phone string) error {
	account, err := u.accounts.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			logger.Info(ctx, "Phone verified with no registered account", zap.String("phone", utils.MaskPhone(phone)))
			return nil
		}
		return err
	}
	if account.IsActive() {
		return nil
	}
	if err := u.accounts.UpdateVerification(ctx, account.ID); err != nil {
		return err
	}
	logger.Info(ctx, "Account phone verified",
		zap.String("account_id", account.ID.String()),
		zap.String("phone", utils.MaskPhone(phone)),
	)
	return nil
}

func (u *VerificationUsecase) check(
	ctx context.Context,
	rawPhone, code string,
	onVerified func(ctx context.Context, phone string) error,
) (result entities.CheckResult, err error) {
	phone, err := u.normalize(rawPhone)
	if err != nil {
		return entities.CheckResult{}, err
	}
	defer func() { u.metrics.IncCheck(string(result.Reason)) }()

	unlock, err := u.store.Lock(ctx, phone)
	if err != nil {
		return failed(), dependencyFailure("lock verification record", err)
	}
	defer unlock()

	record, err := u.store.Get(ctx, phone)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return entities.CheckResult{Reason: entities.ReasonNotFound}, nil
		}
		return failed(), dependencyFailure("read verification record", err)
	}

	maxAttempts := u.opts.MaxAttempts

	if record.IsExpired(u.opts.Clock()) {
		if err := u.store.Delete(ctx, phone); err != nil {
			return failed(), dependencyFailure("delete expired record", err)
		}
		return entities.CheckResult{Reason: entities.ReasonExpired}, nil
	}

	if record.IsExhausted(maxAttempts) {
		if err := u.store.Delete(ctx, phone); err != nil {
			return failed(), dependencyFailure("delete exhausted record", err)
		}
		return entities.CheckResult{Reason: entities.ReasonExhausted}, nil
	}

	match, err := crypto.CheckCode(code, record.CodeHash)
	if err != nil {
		return failed(), dependencyFailure("compare verification code", err)
	}

	if !match && record.Verified {
		// the code was already proven; only the account update is pending
		return entities.CheckResult{
			Reason:            entities.ReasonMismatch,
			RemainingAttempts: record.RemainingAttempts(maxAttempts),
		}, nil
	}

	if !match {
		record.Attempts++
		if err := u.store.Put(ctx, record); err != nil {
			return failed(), dependencyFailure("record failed attempt", err)
		}
		logger.Warn(ctx, "Verification code mismatch",
			zap.String("phone", utils.MaskPhone(phone)),
			zap.Int("attempts", record.Attempts),
		)
		return entities.CheckResult{
			Reason:            entities.ReasonMismatch,
			RemainingAttempts: record.RemainingAttempts(maxAttempts),
		}, nil
	}

	if onVerified != nil {
		if !record.Verified {
			record.Verified = true
			if err := u.store.Put(ctx, record); err != nil {
				return failed(), dependencyFailure("mark record verified", err)
			}
		}
		if err := onVerified(ctx, phone); err != nil {
			logger.Error(ctx, "Account update after verification failed",
				zap.String("phone", utils.MaskPhone(phone)),
				zap.Error(err),
			)
			return failed(), dependencyFailure("update account verification", err)
		}
	}

	if err := u.store.Delete(ctx, phone); err != nil {
		// the code was accepted; a leftover record only lets the same code succeed again
		logger.Warn(ctx, "Failed to delete consumed verification record",
			zap.String("phone", utils.MaskPhone(phone)),
			zap.Error(err),
		)
	}
	return entities.CheckResult{
		OK:                true,
		Reason:            entities.ReasonOK,
		RemainingAttempts: record.RemainingAttempts(maxAttempts),
	}, nil
}

func (u *VerificationUsecase) normalize(phone string) (string, error) {
	normalized, err := utils.NormalizePhone(phone, u.opts.CountryCode)
	if err != nil {
		return "", domainerrors.ErrInvalidPhone
	}
	return normalized, nil
}

func failed() entities.CheckResult {
	return entities.CheckResult{Reason: entities.ReasonDependencyFailure}
}

func dependencyFailure(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domainerrors.ErrDependencyFailure, err)
}
