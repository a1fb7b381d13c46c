package usecases

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"wefix.backend/internal/domain/entities"
	domainerrors "wefix.backend/internal/domain/errors"
	"wefix.backend/internal/domain/repositories"
	"wefix.backend/pkg/logger"
	"wefix.backend/pkg/utils"
)

// CodeIssuer issues verification codes to a phone
type CodeIssuer interface {
	Issue(ctx context.Context, phone string) (*entities.Issuance, error)
}

// AccountUsecase handles account registration and lookup
type AccountUsecase struct {
	accountRepo repositories.AccountRepository
	issuer      CodeIssuer
	countryCode string
	now         func() time.Time
}

// NewAccountUsecase creates a new account usecase
func NewAccountUsecase(accountRepo repositories.AccountRepository, issuer CodeIssuer, countryCode string) *AccountUsecase {
	return &AccountUsecase{
		accountRepo: accountRepo,
		issuer:      issuer,
		countryCode: countryCode,
		now:         time.Now,
	}
}

// Register creates a pending account and sends a verification code to its phone.
// If the code could not be delivered the account is still returned together with
// the undelivered issuance and an error wrapping ErrDependencyFailure.
func (u *AccountUsecase) Register(ctx context.Context, input *entities.RegisterAccountInput) (*entities.Account, *entities.Issuance, error) {
	if input == nil || strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Email) == "" {
		return nil, nil, domainerrors.ErrInvalidInput
	}
	if !input.UserType.Valid() {
		return nil, nil, domainerrors.ErrInvalidInput
	}

	phone, err := utils.NormalizePhone(input.Phone, u.countryCode)
	if err != nil {
		return nil, nil, domainerrors.ErrInvalidPhone
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))

	// Check if email already exists
	_, err = u.accountRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, nil, domainerrors.Conflict("email already registered")
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, nil, err
	}

	// Check if phone already registered
	_, err = u.accountRepo.FindByPhone(ctx, phone)
	if err == nil {
		return nil, nil, domainerrors.Conflict("phone already registered")
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, nil, err
	}

	now := u.now()
	account := &entities.Account{
		ID:        utils.GenerateUUIDv7(),
		Name:      strings.TrimSpace(input.Name),
		Email:     email,
		Phone:     phone,
		UserType:  input.UserType,
		Status:    entities.AccountStatusPendingVerification,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.accountRepo.Create(ctx, account); err != nil {
		return nil, nil, err
	}
	logger.Info(ctx, "Account registered",
		zap.String("account_id", account.ID.String()),
		zap.String("user_type", string(account.UserType)),
	)

	issuance, err := u.issuer.Issue(ctx, phone)
	if err != nil {
		return account, issuance, err
	}
	return account, issuance, nil
}

// GetAccount gets an account by ID
func (u *AccountUsecase) GetAccount(ctx context.Context, id uuid.UUID) (*entities.Account, error) {
	return u.accountRepo.GetByID(ctx, id)
}
