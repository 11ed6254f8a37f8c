package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// RedisSessionStore keeps sessions as JSON values in Redis. Sessions carry
// no TTL: a paused or mid-collection sender must find their session intact
// whenever they come back.
type RedisSessionStore struct {
	redis  *redis.Client
	tracer trace.Tracer
}

// NewRedisSessionStore wraps the provided Redis client.
func NewRedisSessionStore(client *redis.Client, tracer trace.Tracer) *RedisSessionStore {
	if client == nil {
		panic("conversation: redis client cannot be nil")
	}
	if tracer == nil {
		tracer = otel.Tracer("intake.internal.conversation.sessions")
	}
	return &RedisSessionStore{
		redis:  client,
		tracer: tracer,
	}
}

func sessionKey(sender string) string {
	return fmt.Sprintf("session:%s", sender)
}

// Get loads the sender's session, creating and persisting the default one
// when the key is absent.
func (s *RedisSessionStore) Get(ctx context.Context, sender string) (*Session, error) {
	ctx, span := s.tracer.Start(ctx, "conversation.load_session")
	defer span.End()

	session, err := s.lookup(ctx, sender)
	if errors.Is(err, ErrSessionNotFound) {
		session = NewSession()
		if err := s.Save(ctx, sender, session); err != nil {
			span.RecordError(err)
			return nil, err
		}
		return session, nil
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return session, nil
}

// Lookup loads the sender's session without creating one.
func (s *RedisSessionStore) Lookup(ctx context.Context, sender string) (*Session, error) {
	ctx, span := s.tracer.Start(ctx, "conversation.lookup_session")
	defer span.End()

	session, err := s.lookup(ctx, sender)
	if err != nil && !errors.Is(err, ErrSessionNotFound) {
		span.RecordError(err)
	}
	return session, err
}

func (s *RedisSessionStore) lookup(ctx context.Context, sender string) (*Session, error) {
	data, err := s.redis.Get(ctx, sessionKey(sender)).Bytes()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("conversation: failed to load session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("conversation: failed to decode session: %w", err)
	}
	return &session, nil
}

// Save overwrites the stored session for the sender.
func (s *RedisSessionStore) Save(ctx context.Context, sender string, session *Session) error {
	ctx, span := s.tracer.Start(ctx, "conversation.save_session")
	defer span.End()

	if session == nil {
		return fmt.Errorf("conversation: session cannot be nil")
	}
	data, err := json.Marshal(session)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to encode session: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(sender), data, 0).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to persist session: %w", err)
	}
	return nil
}
