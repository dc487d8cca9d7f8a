package session

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"novelhub/internal/backend"
)

func sampleSession() *backend.Session {
	return &backend.Session{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresAt:    time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC).Unix(),
		User:         backend.User{ID: "u1", Email: "reader@example.com"},
	}
}

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Load(ctx, "k")
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, store.Save(ctx, "k", sampleSession()))
	got, err := store.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "access", got.AccessToken)
	assert.Equal(t, "refresh", got.RefreshToken)
	assert.Equal(t, sampleSession().ExpiresAt, got.ExpiresAt)
	assert.Equal(t, "u1", got.User.ID)
	assert.Equal(t, "reader@example.com", got.User.Email)

	require.NoError(t, store.Delete(ctx, "k"))
	_, err = store.Load(ctx, "k")
	assert.ErrorIs(t, err, ErrNoSession)
	assert.NoError(t, store.Delete(ctx, "k"))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.yaml")
	exerciseStore(t, NewFileStore(path))
}

func TestFileStore_KeepsOtherKeys(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(filepath.Join(t.TempDir(), "session.yaml"))
	require.NoError(t, store.Save(ctx, "a", sampleSession()))
	require.NoError(t, store.Save(ctx, "b", sampleSession()))
	require.NoError(t, store.Delete(ctx, "a"))

	_, err := store.Load(ctx, "b")
	assert.NoError(t, err)
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()
	exerciseStore(t, NewKeyringStore())
}

func TestRedisStore_Nil(t *testing.T) {
	var store *RedisStore
	ctx := context.Background()

	_, err := store.Load(ctx, "id")
	assert.ErrorIs(t, err, ErrNoSession)
	assert.NoError(t, store.Save(ctx, "id", sampleSession()))
	assert.NoError(t, store.Delete(ctx, "id"))
	assert.NoError(t, store.Close())
}

func TestSessionFields(t *testing.T) {
	fields := sessionFields(sampleSession())
	str := make(map[string]string, len(fields))
	for k, v := range fields {
		switch v := v.(type) {
		case string:
			str[k] = v
		case int64:
			str[k] = strconv.FormatInt(v, 10)
		}
	}

	got, err := sessionFromFields(str)
	require.NoError(t, err)
	assert.Equal(t, sampleSession().ExpiresAt, got.ExpiresAt)
	assert.Equal(t, "u1", got.User.ID)

	_, err = sessionFromFields(nil)
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = sessionFromFields(map[string]string{"expires_at": "soon"})
	assert.Error(t, err)
}
