package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// HistoryStore persists per-session chat transcripts.
type HistoryStore interface {
	Append(ctx context.Context, sessionID string, msgs ...ChatMessage) error
	Load(ctx context.Context, sessionID string) ([]ChatMessage, error)
	Clear(ctx context.Context, sessionID string) error
}

// RedisHistoryStore keeps transcripts in Redis as JSON with a TTL.
type RedisHistoryStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewRedisHistoryStore creates a history store. TTL <= 0 falls back to 24h.
func NewRedisHistoryStore(client *redis.Client, ttl time.Duration) *RedisHistoryStore {
	if client == nil {
		panic("conversation: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisHistoryStore{
		redis:  client,
		ttl:    ttl,
		tracer: otel.Tracer("medibot.internal.conversation.history"),
	}
}

// Append adds messages to the end of the transcript and refreshes the TTL.
func (s *RedisHistoryStore) Append(ctx context.Context, sessionID string, msgs ...ChatMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	ctx, span := s.tracer.Start(ctx, "conversation.append_history")
	defer span.End()

	history, err := s.Load(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		return err
	}
	history = append(history, msgs...)

	data, err := json.Marshal(history)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to marshal history: %w", err)
	}
	if err := s.redis.Set(ctx, historyKey(sessionID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to persist history: %w", err)
	}
	return nil
}

// Load returns the transcript, empty when the session is unknown.
func (s *RedisHistoryStore) Load(ctx context.Context, sessionID string) ([]ChatMessage, error) {
	ctx, span := s.tracer.Start(ctx, "conversation.load_history")
	defer span.End()

	data, err := s.redis.Get(ctx, historyKey(sessionID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: failed to load history: %w", err)
	}

	var history []ChatMessage
	if err := json.Unmarshal(data, &history); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: failed to decode history: %w", err)
	}
	return history, nil
}

// Clear removes the transcript.
func (s *RedisHistoryStore) Clear(ctx context.Context, sessionID string) error {
	ctx, span := s.tracer.Start(ctx, "conversation.clear_history")
	defer span.End()

	if err := s.redis.Del(ctx, historyKey(sessionID)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to clear history: %w", err)
	}
	return nil
}

func historyKey(sessionID string) string {
	return "history:" + sessionID
}
