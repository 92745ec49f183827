package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

type memSessionStore struct {
	identities map[string]domain.Identity
	expiries   map[string]time.Time
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{
		identities: map[string]domain.Identity{},
		expiries:   map[string]time.Time{},
	}
}

func (s *memSessionStore) Put(_ context.Context, sessionID string, identity domain.Identity, ttl time.Duration) error {
	s.identities[sessionID] = identity
	s.expiries[sessionID] = time.Now().Add(ttl)
	return nil
}

func (s *memSessionStore) Get(_ context.Context, sessionID string, ttl time.Duration) (*domain.Identity, error) {
	expiry, ok := s.expiries[sessionID]
	if !ok || time.Now().After(expiry) {
		return nil, nil
	}
	s.expiries[sessionID] = time.Now().Add(ttl)
	identity := s.identities[sessionID]
	return &identity, nil
}

func (s *memSessionStore) Delete(_ context.Context, sessionID string) error {
	delete(s.identities, sessionID)
	delete(s.expiries, sessionID)
	return nil
}

func testIdentity() domain.Identity {
	return domain.Identity{UserID: 1, Name: "Alice", Email: "alice@example.com", Role: domain.RoleRequester}
}

func TestSessionRoundTrip(t *testing.T) {
	store := newMemSessionStore()
	manager := NewSessionManager(store, NewTokenCodec("test-secret"), 8*time.Hour)

	token, err := manager.Issue(context.Background(), testIdentity())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	identity, err := manager.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, 1, identity.UserID)
	assert.Equal(t, domain.RoleRequester, identity.Role)
}

func TestResolveRefreshesIdleTimeout(t *testing.T) {
	store := newMemSessionStore()
	manager := NewSessionManager(store, NewTokenCodec("test-secret"), time.Hour)

	token, err := manager.Issue(context.Background(), testIdentity())
	require.NoError(t, err)

	var sessionID string
	for id := range store.expiries {
		sessionID = id
	}
	before := store.expiries[sessionID]

	time.Sleep(10 * time.Millisecond)
	_, err = manager.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.True(t, store.expiries[sessionID].After(before))
}

func TestRevokedSessionIsExpired(t *testing.T) {
	store := newMemSessionStore()
	manager := NewSessionManager(store, NewTokenCodec("test-secret"), time.Hour)

	token, err := manager.Issue(context.Background(), testIdentity())
	require.NoError(t, err)

	require.NoError(t, manager.Revoke(context.Background(), token))

	_, err = manager.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestResolveRejectsBadTokens(t *testing.T) {
	manager := NewSessionManager(newMemSessionStore(), NewTokenCodec("test-secret"), time.Hour)

	_, err := manager.Resolve(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrSessionExpired)

	other := NewSessionManager(newMemSessionStore(), NewTokenCodec("other-secret"), time.Hour)
	token, err := other.Issue(context.Background(), testIdentity())
	require.NoError(t, err)

	_, err = manager.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestTokenCodec(t *testing.T) {
	codec := NewTokenCodec("test-secret")

	token, err := codec.Sign("session-123")
	require.NoError(t, err)

	sessionID, err := codec.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "session-123", sessionID)

	_, err = codec.Parse("garbage")
	assert.Error(t, err)
}
