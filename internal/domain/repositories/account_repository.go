package repositories

import (
	"context"

	"github.com/google/uuid"
	"wefix.backend/internal/domain/entities"
)

// AccountRepository is the user directory consulted by the verification flow
type AccountRepository interface {
	Create(ctx context.Context, account *entities.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Account, error)
	GetByEmail(ctx context.Context, email string) (*entities.Account, error)
	FindByPhone(ctx context.Context, phone string) (*entities.Account, error)
	// UpdateVerification marks the account phone-verified and active.
	UpdateVerification(ctx context.Context, id uuid.UUID) error
}
