package account

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionStore maps a session id to the user that owns it. Sessions expire
// with the refresh token.
type SessionStore interface {
	Create(ctx context.Context, sessionID, userID uuid.UUID, ttl time.Duration) error
	// Get returns ErrSessionNotFound for unknown or expired sessions.
	Get(ctx context.Context, sessionID uuid.UUID) (uuid.UUID, error)
	Touch(ctx context.Context, sessionID uuid.UUID, ttl time.Duration) error
	Delete(ctx context.Context, sessionID uuid.UUID) (bool, error)
}

func sessionKey(sessionID uuid.UUID) string { return "session:" + sessionID.String() }

// ---------------------------------------------------------------------------
// Redis
// ---------------------------------------------------------------------------

type RedisSessionStore struct {
	rdb *redis.Client
}

func NewRedisSessionStore(rdb *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb}
}

func (s *RedisSessionStore) Create(ctx context.Context, sessionID, userID uuid.UUID, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, sessionKey(sessionID), userID.String(), ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Get(ctx context.Context, sessionID uuid.UUID) (uuid.UUID, error) {
	v, err := s.rdb.Get(ctx, sessionKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, ErrSessionNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("redis get session: %w", err)
	}
	uid, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil, ErrSessionNotFound
	}
	return uid, nil
}

func (s *RedisSessionStore) Touch(ctx context.Context, sessionID uuid.UUID, ttl time.Duration) error {
	ok, err := s.rdb.Expire(ctx, sessionKey(sessionID), ttl).Result()
	if err != nil {
		return fmt.Errorf("redis expire session: %w", err)
	}
	if !ok {
		return ErrSessionNotFound
	}
	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	n, err := s.rdb.Del(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	return n > 0, nil
}

// ---------------------------------------------------------------------------
// In-memory
// ---------------------------------------------------------------------------

type memSession struct {
	userID  uuid.UUID
	expires time.Time
}

// MemorySessionStore keeps sessions in process. Used by tests and local runs
// without Redis.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]memSession
	now      func() time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[uuid.UUID]memSession), now: time.Now}
}

func (s *MemorySessionStore) Create(_ context.Context, sessionID, userID uuid.UUID, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = memSession{userID: userID, expires: s.now().Add(ttl)}
	return nil
}

func (s *MemorySessionStore) Get(_ context.Context, sessionID uuid.UUID) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok || !s.now().Before(sess.expires) {
		delete(s.sessions, sessionID)
		return uuid.Nil, ErrSessionNotFound
	}
	return sess.userID, nil
}

func (s *MemorySessionStore) Touch(_ context.Context, sessionID uuid.UUID, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok || !s.now().Before(sess.expires) {
		return ErrSessionNotFound
	}
	sess.expires = s.now().Add(ttl)
	s.sessions[sessionID] = sess
	return nil
}

func (s *MemorySessionStore) Delete(_ context.Context, sessionID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	return ok, nil
}
