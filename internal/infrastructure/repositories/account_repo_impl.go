package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"wefix.backend/internal/domain/entities"
	domainerrors "wefix.backend/internal/domain/errors"
	"wefix.backend/internal/infrastructure/models"
)

// AccountRepository implements the user directory on top of GORM
type AccountRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db, now: time.Now}
}

// Create creates a new account
func (r *AccountRepository) Create(ctx context.Context, account *entities.Account) error {
	m := &models.Account{
		ID:              account.ID,
		Name:            account.Name,
		Email:           account.Email,
		Phone:           account.Phone,
		UserType:        string(account.UserType),
		PhoneVerified:   account.PhoneVerified,
		Status:          string(account.Status),
		PhoneVerifiedAt: account.PhoneVerifiedAt.Ptr(),
		CreatedAt:       account.CreatedAt,
		UpdatedAt:       account.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if errors.Is(r.translate(err), gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: %v", domainerrors.ErrAlreadyExists, err)
		}
		return err
	}
	return nil
}

// GetByID gets an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Account, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByEmail gets an account by email
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*entities.Account, error) {
	return r.first(ctx, "email = ?", email)
}

// FindByPhone gets an account by its E.164 phone number
func (r *AccountRepository) FindByPhone(ctx context.Context, phone string) (*entities.Account, error) {
	return r.first(ctx, "phone = ?", phone)
}

// UpdateVerification marks the phone as verified and activates the account
func (r *AccountRepository) UpdateVerification(ctx context.Context, id uuid.UUID) error {
	now := r.now()
	result := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"phone_verified":    true,
			"status":            string(entities.AccountStatusActive),
			"phone_verified_at": now,
			"updated_at":        now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *AccountRepository) first(ctx context.Context, query string, arg interface{}) (*entities.Account, error) {
	var m models.Account
	if err := r.db.WithContext(ctx).Where(query, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toAccountEntity(&m), nil
}

func toAccountEntity(m *models.Account) *entities.Account {
	return &entities.Account{
		ID:              m.ID,
		Name:            m.Name,
		Email:           m.Email,
		Phone:           m.Phone,
		UserType:        entities.UserType(m.UserType),
		PhoneVerified:   m.PhoneVerified,
		Status:          entities.AccountStatus(m.Status),
		PhoneVerifiedAt: null.TimeFromPtr(m.PhoneVerifiedAt),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// translate maps driver errors onto gorm's portable ones, such as
// gorm.ErrDuplicatedKey for a unique index violation.
func (r *AccountRepository) translate(err error) error {
	if translator, ok := r.db.Dialector.(gorm.ErrorTranslator); ok {
		return translator.Translate(err)
	}
	return err
}
