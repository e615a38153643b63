// Package session tracks per-conversation dialogue state: whether a booking
// script is running, which field it is waiting for, and the draft collected
// so far. One record per chat session, stored in Redis with a TTL so stale
// sessions expire on their own.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/clinicdesk/medibot/internal/booking"
)

// Phase is the session-level dialogue mode.
type Phase string

const (
	// PhaseIdle routes turns through intent classification.
	PhaseIdle Phase = "idle"
	// PhaseBooking routes turns straight to the dialogue engine.
	PhaseBooking Phase = "booking"
	// PhaseConfirming waits for an explicit yes/no.
	PhaseConfirming Phase = "confirming"
)

// State is everything the orchestrator needs between turns.
type State struct {
	Phase Phase         `json:"phase"`
	Stage booking.Stage `json:"stage"`
	Draft booking.Draft `json:"draft"`
}

// BookingActive reports whether a booking is in progress, confirmation
// included. PhaseConfirming always implies an active booking.
func (s State) BookingActive() bool {
	return s.Phase == PhaseBooking || s.Phase == PhaseConfirming
}

// ResetBooking drops the draft and returns the session to idle chat.
func (s *State) ResetBooking() {
	s.Phase = PhaseIdle
	s.Stage = booking.StageName
	s.Draft.Reset()
}

// Store loads and saves per-session state.
type Store interface {
	Load(ctx context.Context, sessionID string) (State, error)
	Save(ctx context.Context, sessionID string, state State) error
	Clear(ctx context.Context, sessionID string) error
}

// RedisStore keeps session records as JSON values with a TTL.
type RedisStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewRedisStore creates a session store. TTL <= 0 falls back to 24h.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if client == nil {
		panic("session: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{
		redis:  client,
		ttl:    ttl,
		tracer: otel.Tracer("medibot.internal.session"),
	}
}

// Load returns the stored state, or a fresh idle state for unknown sessions.
func (s *RedisStore) Load(ctx context.Context, sessionID string) (State, error) {
	ctx, span := s.tracer.Start(ctx, "session.load")
	defer span.End()

	data, err := s.redis.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return State{Phase: PhaseIdle}, nil
		}
		span.RecordError(err)
		return State{}, fmt.Errorf("session: failed to load state: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		span.RecordError(err)
		return State{}, fmt.Errorf("session: failed to decode state: %w", err)
	}
	if state.Phase == "" {
		state.Phase = PhaseIdle
	}
	return state, nil
}

// Save writes the state and refreshes the TTL.
func (s *RedisStore) Save(ctx context.Context, sessionID string, state State) error {
	ctx, span := s.tracer.Start(ctx, "session.save")
	defer span.End()

	data, err := json.Marshal(state)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: failed to marshal state: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(sessionID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: failed to persist state: %w", err)
	}
	return nil
}

// Clear removes the session record.
func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	ctx, span := s.tracer.Start(ctx, "session.clear")
	defer span.End()

	if err := s.redis.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: failed to clear state: %w", err)
	}
	return nil
}

func sessionKey(sessionID string) string {
	return "session:" + sessionID
}
