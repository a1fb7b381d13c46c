package usecases_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"wefix.backend/internal/domain/entities"
)

// Mock AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, account *entities.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByEmail(ctx context.Context, email string) (*entities.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByPhone(ctx context.Context, phone string) (*entities.Account, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateVerification(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Mock Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, phone, code string) error {
	args := m.Called(ctx, phone, code)
	return args.Error(0)
}

// Mock VerificationStore
type MockVerificationStore struct {
	mock.Mock
}

func (m *MockVerificationStore) Get(ctx context.Context, phone string) (*entities.VerificationRecord, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.VerificationRecord), args.Error(1)
}

func (m *MockVerificationStore) Put(ctx context.Context, record *entities.VerificationRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockVerificationStore) Delete(ctx context.Context, phone string) error {
	args := m.Called(ctx, phone)
	return args.Error(0)
}

func (m *MockVerificationStore) Lock(ctx context.Context, phone string) (func(), error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func()), args.Error(1)
}

// Mock CodeIssuer
type MockCodeIssuer struct {
	mock.Mock
}

func (m *MockCodeIssuer) Issue(ctx context.Context, phone string) (*entities.Issuance, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Issuance), args.Error(1)
}
