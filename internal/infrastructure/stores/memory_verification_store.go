package stores

import (
	"context"
	"sync"

	"wefix.backend/internal/domain/entities"
	domainerrors "wefix.backend/internal/domain/errors"
)

type phoneLock struct {
	sem  chan struct{}
	refs int
}

// MemoryVerificationStore keeps verification records in process memory.
// Records are copied on the way in and out so callers never share state.
type MemoryVerificationStore struct {
	mu      sync.Mutex
	records map[string]entities.VerificationRecord
	locks   map[string]*phoneLock
}

// NewMemoryVerificationStore creates an empty store
func NewMemoryVerificationStore() *MemoryVerificationStore {
	return &MemoryVerificationStore{
		records: make(map[string]entities.VerificationRecord),
		locks:   make(map[string]*phoneLock),
	}
}

func (s *MemoryVerificationStore) Get(ctx context.Context, phone string) (*entities.VerificationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[phone]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return &rec, nil
}

func (s *MemoryVerificationStore) Put(ctx context.Context, record *entities.VerificationRecord) error {
	if record == nil || record.Phone == "" {
		return domainerrors.ErrInvalidInput
	}
	s.mu.Lock()
	s.records[record.Phone] = *record
	s.mu.Unlock()
	return nil
}

func (s *MemoryVerificationStore) Delete(ctx context.Context, phone string) error {
	s.mu.Lock()
	delete(s.records, phone)
	s.mu.Unlock()
	return nil
}

// Lock blocks until the phone is free or ctx is done.
func (s *MemoryVerificationStore) Lock(ctx context.Context, phone string) (func(), error) {
	s.mu.Lock()
	l, ok := s.locks[phone]
	if !ok {
		l = &phoneLock{sem: make(chan struct{}, 1)}
		s.locks[phone] = l
	}
	l.refs++
	s.mu.Unlock()

	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		s.release(phone, l)
		return nil, domainerrors.ErrLockTimeout
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-l.sem
			s.release(phone, l)
		})
	}, nil
}

func (s *MemoryVerificationStore) release(phone string, l *phoneLock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(s.locks, phone)
	}
}

// Len returns the number of stored records.
func (s *MemoryVerificationStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
