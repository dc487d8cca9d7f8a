package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"novelhub/internal/backend"
)

func TestRegistry_CreateResolveRevoke(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(new(MockAuth), nil, "")

	id, err := r.Create(ctx, liveSession("a1"))
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	s, err := r.Resolve(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "a1", s.AccessToken)

	revoked, err := r.Revoke(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "a1", revoked.AccessToken)

	_, err = r.Resolve(ctx, id)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestRegistry_ResolveRefreshes(t *testing.T) {
	ctx := context.Background()
	auth := new(MockAuth)
	r := NewRegistry(auth, NewMemoryStore(), "")

	stale := liveSession("a1")
	stale.ExpiresAt = time.Now().Add(10 * time.Second).Unix()
	id, err := r.Create(ctx, stale)
	require.NoError(t, err)

	auth.On("RefreshSession", mock.Anything, "refresh-a1").Return(liveSession("a2"), nil).Once()
	s, err := r.Resolve(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "a2", s.AccessToken)

	s, err = r.Resolve(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "a2", s.AccessToken)
	auth.AssertNumberOfCalls(t, "RefreshSession", 1)
}

func TestRegistry_RejectedRefreshDropsSession(t *testing.T) {
	ctx := context.Background()
	auth := new(MockAuth)
	r := NewRegistry(auth, nil, "")

	stale := liveSession("a1")
	stale.ExpiresAt = time.Now().Add(-time.Hour).Unix()
	id, err := r.Create(ctx, stale)
	require.NoError(t, err)

	auth.On("RefreshSession", mock.Anything, "refresh-a1").
		Return(nil, &backend.APIError{Status: 401, Message: "refresh token revoked"})

	_, err = r.Resolve(ctx, id)
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = r.Revoke(ctx, id)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestRegistry_Credentials(t *testing.T) {
	r := NewRegistry(nil, nil, "secret")
	token := signToken(t, "secret", testClaims(time.Now().Add(time.Hour)))

	creds, err := r.Credentials(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", creds.UserID)

	_, err = r.Credentials("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRegistry_CredentialsRejectsForgedToken(t *testing.T) {
	claims := testClaims(time.Now().Add(time.Hour))
	claims.Subject = "victim-user"
	claims.Role = "service_role"
	forged := signToken(t, "attacker-key", claims)

	r := NewRegistry(new(MockAuth), nil, "project-secret")
	_, err := r.Credentials(forged)
	assert.ErrorIs(t, err, ErrInvalidToken)

	genuine := signToken(t, "project-secret", claims)
	creds, err := r.Credentials(genuine)
	require.NoError(t, err)
	assert.Equal(t, "victim-user", creds.UserID)
	assert.Equal(t, "authenticated", creds.Role)
}

func TestRegistry_UnverifiedCredentialsNeverElevate(t *testing.T) {
	claims := testClaims(time.Now().Add(time.Hour))
	claims.Role = "service_role"

	creds, err := NewRegistry(new(MockAuth), nil, "").Credentials(signToken(t, "attacker-key", claims))
	require.NoError(t, err)
	assert.Equal(t, "authenticated", creds.Role)
}
