package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var (
	// ErrLockUnavailable indicates an unexpired lease already exists for the
	// user key. Not an application fault.
	ErrLockUnavailable = errors.New("bot: processing lock unavailable")

	// ErrLockStoreUnavailable indicates the backing store could not be
	// reached. Callers fail closed and reject the message.
	ErrLockStoreUnavailable = errors.New("bot: lock store unavailable")
)

// releaseScript deletes the lease only when the stored token still matches the
// caller's token, so a holder whose TTL already lapsed cannot release a lease
// re-acquired by someone else.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// LockStore provides the two per-user advisory locks: a short-lived processing
// lock (one in-flight webhook per user) and a validation lock (one pending
// external response per user).
type LockStore struct {
	redis         *redis.Client
	tracer        trace.Tracer
	processingTTL time.Duration
	validationTTL time.Duration
}

func NewLockStore(rdb *redis.Client, processingTTL, validationTTL time.Duration, tracer trace.Tracer) *LockStore {
	if rdb == nil {
		panic("bot: redis client cannot be nil")
	}
	if processingTTL <= 0 {
		processingTTL = 60 * time.Second
	}
	if validationTTL <= 0 {
		validationTTL = 5 * time.Minute
	}
	if tracer == nil {
		tracer = otel.Tracer("swiftchat.internal.bot.locks")
	}
	return &LockStore{
		redis:         rdb,
		tracer:        tracer,
		processingTTL: processingTTL,
		validationTTL: validationTTL,
	}
}

// AcquireProcessingLock attempts an atomic check-and-set with TTL. Exactly one
// caller wins a race for the same user key; the rest get ErrLockUnavailable.
func (s *LockStore) AcquireProcessingLock(ctx context.Context, userID string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "bot.acquire_processing_lock")
	defer span.End()

	token := uuid.NewString()
	ok, err := s.redis.SetNX(ctx, processingLockKey(userID), token, s.processingTTL).Result()
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("%w: %v", ErrLockStoreUnavailable, err)
	}
	if !ok {
		return "", ErrLockUnavailable
	}
	return token, nil
}

// ReleaseProcessingLock deletes the lease if the stored token matches. A stale
// token is a no-op, not an error.
func (s *LockStore) ReleaseProcessingLock(ctx context.Context, userID, token string) error {
	ctx, span := s.tracer.Start(ctx, "bot.release_processing_lock")
	defer span.End()

	if err := releaseScript.Run(ctx, s.redis, []string{processingLockKey(userID)}, token).Err(); err != nil && err != redis.Nil {
		span.RecordError(err)
		return fmt.Errorf("%w: %v", ErrLockStoreUnavailable, err)
	}
	return nil
}

// IsValidationLocked reports whether a step handler is still awaiting an
// external response for this user.
func (s *LockStore) IsValidationLocked(ctx context.Context, userID string) (bool, error) {
	n, err := s.redis.Exists(ctx, validationLockKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrLockStoreUnavailable, err)
	}
	return n > 0, nil
}

// SetValidationLock marks the user as awaiting an external response.
func (s *LockStore) SetValidationLock(ctx context.Context, userID string) error {
	if err := s.redis.Set(ctx, validationLockKey(userID), "1", s.validationTTL).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrLockStoreUnavailable, err)
	}
	return nil
}

// ClearValidationLock removes the awaiting-response flag.
func (s *LockStore) ClearValidationLock(ctx context.Context, userID string) error {
	if err := s.redis.Del(ctx, validationLockKey(userID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrLockStoreUnavailable, err)
	}
	return nil
}

func processingLockKey(userID string) string {
	return fmt.Sprintf("message_lock:%s", userID)
}

func validationLockKey(userID string) string {
	return fmt.Sprintf("validation_lock:%s", userID)
}
