package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// ErrSessionExpired is returned when a token references no live session.
var ErrSessionExpired = errors.New("session expired or revoked")

// SessionStore persists identities keyed by session id. Get must refresh the
// TTL so that the timeout is an idle timeout, not an absolute one.
type SessionStore interface {
	Put(ctx context.Context, sessionID string, identity domain.Identity, ttl time.Duration) error
	Get(ctx context.Context, sessionID string, ttl time.Duration) (*domain.Identity, error)
	Delete(ctx context.Context, sessionID string) error
}

const sessionKeyPrefix = "session:"

type redisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore returns a redis-backed store.
func NewRedisSessionStore(client *redis.Client) SessionStore {
	return &redisSessionStore{client: client}
}

func (s *redisSessionStore) Put(ctx context.Context, sessionID string, identity domain.Identity, ttl time.Duration) error {
	payload, err := json.Marshal(identity)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKeyPrefix+sessionID, payload, ttl).Err()
}

func (s *redisSessionStore) Get(ctx context.Context, sessionID string, ttl time.Duration) (*domain.Identity, error) {
	key := sessionKeyPrefix + sessionID
	payload, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var identity domain.Identity
	if err := json.Unmarshal(payload, &identity); err != nil {
		return nil, err
	}
	// sliding idle timeout
	_ = s.client.Expire(ctx, key, ttl).Err()
	return &identity, nil
}

func (s *redisSessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, sessionKeyPrefix+sessionID).Err()
}

// SessionManager issues, resolves, and revokes browser sessions. The identity
// is resolved once at login and stays immutable until logout or expiry;
// membership changes take effect on the next login.
type SessionManager struct {
	store SessionStore
	codec *TokenCodec
	ttl   time.Duration
}

// NewSessionManager constructs the manager.
func NewSessionManager(store SessionStore, codec *TokenCodec, ttl time.Duration) *SessionManager {
	return &SessionManager{store: store, codec: codec, ttl: ttl}
}

// Issue creates a session for the identity and returns its signed token.
func (m *SessionManager) Issue(ctx context.Context, identity domain.Identity) (string, error) {
	sessionID := uuid.NewString()
	if err := m.store.Put(ctx, sessionID, identity, m.ttl); err != nil {
		return "", err
	}
	return m.codec.Sign(sessionID)
}

// Resolve maps a token back to its identity and refreshes the idle timeout.
func (m *SessionManager) Resolve(ctx context.Context, token string) (*domain.Identity, error) {
	sessionID, err := m.codec.Parse(token)
	if err != nil {
		return nil, ErrSessionExpired
	}
	identity, err := m.store.Get(ctx, sessionID, m.ttl)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		return nil, ErrSessionExpired
	}
	return identity, nil
}

// Revoke removes the session referenced by the token.
func (m *SessionManager) Revoke(ctx context.Context, token string) error {
	sessionID, err := m.codec.Parse(token)
	if err != nil {
		return nil
	}
	return m.store.Delete(ctx, sessionID)
}
