package assistantService

import (
	"context"
	"errors"
	"time"

	"ShortletAssistant/internal/entity"
	"ShortletAssistant/pkg/redis"
	"ShortletAssistant/pkg/ttlcache"
)

var ErrSessionNotFound = errors.New("call session not found")

// SessionStore keeps voice call state between telephony webhooks.
type SessionStore interface {
	Get(ctx context.Context, callID string) (*entity.CallSession, error)
	Save(ctx context.Context, session *entity.CallSession) error
	Delete(ctx context.Context, callID string) error
}

type redisSessionStore struct {
	client redis.IRedis
	ttl    time.Duration
}

func NewRedisSessionStore(client redis.IRedis, ttl time.Duration) SessionStore {
	return &redisSessionStore{client: client, ttl: ttl}
}

func sessionKey(callID string) string {
	return "call:" + callID
}

func (s *redisSessionStore) Get(ctx context.Context, callID string) (*entity.CallSession, error) {
	var session entity.CallSession
	if err := s.client.GetJSON(ctx, sessionKey(callID), &session); err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (s *redisSessionStore) Save(ctx context.Context, session *entity.CallSession) error {
	return s.client.SetJSON(ctx, sessionKey(session.CallID), session, s.ttl)
}

func (s *redisSessionStore) Delete(ctx context.Context, callID string) error {
	return s.client.Delete(ctx, sessionKey(callID))
}

type memorySessionStore struct {
	cache *ttlcache.Cache[string, entity.CallSession]
}

// NewMemorySessionStore keeps at most capacity calls for ttl each. Used when
// Redis is not configured.
func NewMemorySessionStore(capacity int, ttl time.Duration) SessionStore {
	cache := ttlcache.New[string, entity.CallSession](capacity, ttl)
	cache.StartSweeper(time.Minute)
	return &memorySessionStore{cache: cache}
}

func (s *memorySessionStore) Get(_ context.Context, callID string) (*entity.CallSession, error) {
	session, ok := s.cache.Get(callID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	session.History = append([]entity.ConversationTurn(nil), session.History...)
	return &session, nil
}

func (s *memorySessionStore) Save(_ context.Context, session *entity.CallSession) error {
	stored := *session
	stored.History = append([]entity.ConversationTurn(nil), session.History...)
	s.cache.Set(session.CallID, stored)
	return nil
}

func (s *memorySessionStore) Delete(_ context.Context, callID string) error {
	s.cache.Delete(callID)
	return nil
}
