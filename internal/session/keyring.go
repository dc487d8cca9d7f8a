package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"novelhub/internal/backend"
)

const keyringService = "novelhub-cli"

// storedCredentials is the keyring entry. Only what is needed to resume the
// session is kept.
type storedCredentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
}

// KeyringStore keeps tokens in the OS credential store.
type KeyringStore struct {
	service string
}

func NewKeyringStore() *KeyringStore {
	return &KeyringStore{service: keyringService}
}

func (k *KeyringStore) Load(_ context.Context, key string) (*backend.Session, error) {
	value, err := keyring.Get(k.service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("read keyring: %w", err)
	}

	var creds storedCredentials
	if err := json.Unmarshal([]byte(value), &creds); err != nil {
		return nil, fmt.Errorf("decode keyring entry: %w", err)
	}
	return &backend.Session{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		TokenType:    "bearer",
		ExpiresAt:    creds.ExpiresAt,
		User:         backend.User{ID: creds.UserID, Email: creds.Email},
	}, nil
}

func (k *KeyringStore) Save(_ context.Context, key string, s *backend.Session) error {
	data, err := json.Marshal(storedCredentials{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresAt:    s.Expiry().Unix(),
		UserID:       s.User.ID,
		Email:        s.User.Email,
	})
	if err != nil {
		return err
	}
	return keyring.Set(k.service, key, string(data))
}

func (k *KeyringStore) Delete(_ context.Context, key string) error {
	err := keyring.Delete(k.service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
