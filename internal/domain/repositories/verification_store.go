package repositories

import (
	"context"

	"wefix.backend/internal/domain/entities"
)

// VerificationStore holds at most one pending verification per phone.
type VerificationStore interface {
	// Get returns ErrNotFound when no record exists for phone.
	Get(ctx context.Context, phone string) (*entities.VerificationRecord, error)
	// Put stores record, replacing any existing record for the same phone.
	Put(ctx context.Context, record *entities.VerificationRecord) error
	// Delete is a no-op when the record does not exist.
	Delete(ctx context.Context, phone string) error
	// Lock serializes operations on phone. The returned func releases the lock.
	Lock(ctx context.Context, phone string) (unlock func(), err error)
}
