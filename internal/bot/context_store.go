package bot

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// ContextStore persists per-user conversation state in Redis. All access is by
// user key; contexts are never iterated in bulk.
type ContextStore struct {
	redis  *redis.Client
	tracer trace.Tracer
}

func NewContextStore(rdb *redis.Client, tracer trace.Tracer) *ContextStore {
	if rdb == nil {
		panic("bot: redis client cannot be nil")
	}
	if tracer == nil {
		tracer = otel.Tracer("swiftchat.internal.bot.context")
	}
	return &ContextStore{redis: rdb, tracer: tracer}
}

// Get loads the stored context for userID. A missing context returns (nil, nil)
// so callers synthesize a fresh one.
func (s *ContextStore) Get(ctx context.Context, userID string) (*UserContext, error) {
	ctx, span := s.tracer.Start(ctx, "bot.get_user_context")
	defer span.End()

	data, err := s.redis.Get(ctx, contextKey(userID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("bot: failed to load user context: %w", err)
	}
	var uc UserContext
	if err := json.Unmarshal(data, &uc); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("bot: failed to decode user context: %w", err)
	}
	if uc.StepData == nil {
		uc.StepData = StepData{}
	}
	return &uc, nil
}

// Save persists the context for userID.
func (s *ContextStore) Save(ctx context.Context, userID string, uc *UserContext) error {
	ctx, span := s.tracer.Start(ctx, "bot.save_user_context")
	defer span.End()

	data, err := json.Marshal(uc)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("bot: failed to marshal user context: %w", err)
	}
	if err := s.redis.Set(ctx, contextKey(userID), data, 0).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("bot: failed to persist user context: %w", err)
	}
	return nil
}

// Reset reinitializes the context to the entry step with empty step data.
func (s *ContextStore) Reset(ctx context.Context, userID string) error {
	return s.Save(ctx, userID, NewUserContext())
}

func contextKey(userID string) string {
	return fmt.Sprintf("user_context:%s", userID)
}
