package session

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"novelhub/internal/backend"
)

var ErrInvalidToken = errors.New("invalid access token")

const (
	defaultRole = "authenticated"
	anonRole    = "anon"
)

// Claims are the parts of a backend access token the client reads.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// ParseClaims verifies an HS256 token when secret is set. Without a secret
// the claims are read unverified and the backend stays the authority.
func ParseClaims(token string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	if len(secret) == 0 {
		if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	} else {
		_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
			return secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims, nil
}

// Credentials turns the claims into what data sources forward. Only the
// end-user roles pass through; anything else becomes "authenticated".
func (c *Claims) Credentials(token string) backend.Credentials {
	role := c.Role
	if role != anonRole {
		role = defaultRole
	}
	return backend.Credentials{AccessToken: token, UserID: c.Subject, Role: role}
}
