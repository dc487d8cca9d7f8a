// Package backend describes the hosted backend-as-a-service the platform is
// built on: row-level table access, remote procedures, auth and object
// storage. Concrete transports live in the postgrest, pgdirect and realtime
// subpackages.
package backend

import (
	"context"
	"io"
	"time"
)

// DataSource is the table and procedure surface of the backend. dest
// arguments are pointers to a struct (single row) or a slice; nil discards
// the returned representation.
type DataSource interface {
	Select(ctx context.Context, q *Query, dest any) (count int64, err error)
	Insert(ctx context.Context, table string, values any, dest any) error
	// Upsert inserts values, merging into the existing row when the
	// onConflict columns collide.
	Upsert(ctx context.Context, table string, values any, onConflict []string, dest any) error
	Update(ctx context.Context, table string, patch map[string]any, filters []Filter, dest any) error
	Delete(ctx context.Context, table string, filters []Filter) error
	RPC(ctx context.Context, fn string, params map[string]any, dest any) error
}

// User is the auth identity, distinct from the public profile row.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Session is what sign-in and refresh return.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	User         User   `json:"user"`
}

func (s *Session) Expiry() time.Time {
	if s.ExpiresAt > 0 {
		return time.Unix(s.ExpiresAt, 0)
	}
	return time.Now().Add(time.Duration(s.ExpiresIn) * time.Second)
}

type AuthAPI interface {
	// SignUp may return a nil session when e-mail confirmation is pending.
	SignUp(ctx context.Context, email, password string) (*User, *Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	RefreshSession(ctx context.Context, refreshToken string) (*Session, error)
	GetUser(ctx context.Context, accessToken string) (*User, error)
	SignOut(ctx context.Context, accessToken string) error
}

type UploadOptions struct {
	ContentType  string
	CacheControl string // seconds, e.g. "3600"
	Upsert       bool
}

type StorageAPI interface {
	Upload(ctx context.Context, bucket, name string, body io.Reader, opts UploadOptions) error
	PublicURL(bucket, name string) string
	Remove(ctx context.Context, bucket string, names ...string) error
}

// Credentials identify the caller to the backend so row-level policies apply
// to them rather than the anonymous role.
type Credentials struct {
	AccessToken string
	UserID      string
	Role        string
}

type credentialsKey struct{}

func WithCredentials(ctx context.Context, creds Credentials) context.Context {
	return context.WithValue(ctx, credentialsKey{}, creds)
}

func CredentialsFrom(ctx context.Context) (Credentials, bool) {
	creds, ok := ctx.Value(credentialsKey{}).(Credentials)
	return creds, ok && creds.AccessToken != ""
}
