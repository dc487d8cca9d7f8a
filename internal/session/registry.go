package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"novelhub/internal/backend"
)

// Registry maps opaque session ids (the API server's cookie) to backend
// sessions.
type Registry struct {
	auth   backend.AuthAPI
	store  Store
	secret []byte
	now    func() time.Time
}

func NewRegistry(auth backend.AuthAPI, store Store, jwtSecret string) *Registry {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Registry{auth: auth, store: store, secret: []byte(jwtSecret), now: time.Now}
}

// Create stores s under a fresh id.
func (r *Registry) Create(ctx context.Context, s *backend.Session) (string, error) {
	id := uuid.NewString()
	if err := r.store.Save(ctx, id, s); err != nil {
		return "", err
	}
	return id, nil
}

// Resolve returns the session behind id, refreshing it when it is about to
// expire. A refresh the backend rejects drops the session.
func (r *Registry) Resolve(ctx context.Context, id string) (*backend.Session, error) {
	s, err := r.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Expiry().Sub(r.now()) >= refreshThreshold {
		return s, nil
	}

	fresh, err := r.auth.RefreshSession(ctx, s.RefreshToken)
	if errors.Is(err, backend.ErrUnauthorized) {
		_ = r.store.Delete(ctx, id)
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	if fresh.User.ID == "" {
		fresh.User = s.User
	}
	if err := r.store.Save(ctx, id, fresh); err != nil {
		return nil, err
	}
	return fresh, nil
}

func (r *Registry) Revoke(ctx context.Context, id string) (*backend.Session, error) {
	s, err := r.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s, r.store.Delete(ctx, id)
}

// Credentials validates a bearer token and returns what data sources forward.
func (r *Registry) Credentials(token string) (backend.Credentials, error) {
	claims, err := ParseClaims(token, r.secret)
	if err != nil {
		return backend.Credentials{}, err
	}
	return claims.Credentials(token), nil
}
