package stores

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"wefix.backend/internal/domain/entities"
	domainerrors "wefix.backend/internal/domain/errors"
	"wefix.backend/pkg/redis"
)

const (
	recordKeyPrefix = "verification:phone:"
	lockKeyPrefix   = "verification:lock:"

	defaultRetention     = 10 * time.Minute
	defaultLockTimeout   = 2 * time.Second
	defaultLockTTL       = 10 * time.Second
	defaultLockRetryWait = 25 * time.Millisecond
)

var (
	setValue      = redis.Set
	getValue      = redis.Get
	delValue      = redis.Del
	setValueNX    = redis.SetNX
	delIfEquals   = redis.DelIfEquals
	marshalRecord = json.Marshal
)

// RedisStoreOptions tunes the Redis verification store
type RedisStoreOptions struct {
	// Retention keeps an expired record readable so a late check reports EXPIRED.
	Retention   time.Duration
	LockTimeout time.Duration
	LockTTL     time.Duration
	RetryWait   time.Duration
}

// RedisVerificationStore keeps verification records in Redis so several
// service instances share them.
type RedisVerificationStore struct {
	opts RedisStoreOptions
	now  func() time.Time
}

// NewRedisVerificationStore creates a store on the shared pkg/redis client
func NewRedisVerificationStore(opts RedisStoreOptions) *RedisVerificationStore {
	if opts.Retention <= 0 {
		opts.Retention = defaultRetention
	}
	if opts.LockTimeout <= 0 {
		opts.LockTimeout = defaultLockTimeout
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = defaultLockTTL
	}
	if opts.RetryWait <= 0 {
		opts.RetryWait = defaultLockRetryWait
	}
	return &RedisVerificationStore{opts: opts, now: time.Now}
}

func recordKey(phone string) string { return recordKeyPrefix + phone }
func lockKey(phone string) string   { return lockKeyPrefix + phone }

func (s *RedisVerificationStore) Get(ctx context.Context, phone string) (*entities.VerificationRecord, error) {
	raw, err := getValue(ctx, recordKey(phone))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, fmt.Errorf("get verification record: %w", err)
	}

	var rec entities.VerificationRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("decode verification record: %w", err)
	}
	return &rec, nil
}

func (s *RedisVerificationStore) Put(ctx context.Context, record *entities.VerificationRecord) error {
	if record == nil || record.Phone == "" {
		return domainerrors.ErrInvalidInput
	}
	payload, err := marshalRecord(record)
	if err != nil {
		return fmt.Errorf("encode verification record: %w", err)
	}

	ttl := record.ExpiresAt.Sub(s.now())
	if ttl < 0 {
		ttl = 0
	}
	ttl += s.opts.Retention

	if err := setValue(ctx, recordKey(record.Phone), payload, ttl); err != nil {
		return fmt.Errorf("put verification record: %w", err)
	}
	return nil
}

func (s *RedisVerificationStore) Delete(ctx context.Context, phone string) error {
	if err := delValue(ctx, recordKey(phone)); err != nil {
		return fmt.Errorf("delete verification record: %w", err)
	}
	return nil
}

// Lock acquires a per-phone lock with SET NX, polling until LockTimeout.
// The lock carries a TTL so a crashed holder cannot block a phone forever.
func (s *RedisVerificationStore) Lock(ctx context.Context, phone string) (func(), error) {
	key := lockKey(phone)
	token := uuid.NewString()

	waitCtx, cancel := context.WithTimeout(ctx, s.opts.LockTimeout)
	defer cancel()

	for {
		ok, err := setValueNX(waitCtx, key, token, s.opts.LockTTL)
		if err != nil {
			if waitCtx.Err() != nil {
				return nil, domainerrors.ErrLockTimeout
			}
			return nil, fmt.Errorf("acquire verification lock: %w", err)
		}
		if ok {
			break
		}

		select {
		case <-waitCtx.Done():
			return nil, domainerrors.ErrLockTimeout
		case <-time.After(s.opts.RetryWait):
		}
	}

	return func() {
		// release even when the caller's ctx is already cancelled
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		_, _ = delIfEquals(releaseCtx, key, token)
	}, nil
}
