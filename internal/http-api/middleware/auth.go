package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"novelhub/internal/backend"
)

// SessionCookie carries the registry id of a browser session.
const SessionCookie = "novelhub_session"

// Keys set on the gin context by Authenticate.
const (
	KeyUserID      = "userID"
	KeyEmail       = "email"
	KeyAccessToken = "accessToken"
	KeySessionID   = "sessionID"
)

// SessionResolver is implemented by *session.Registry.
type SessionResolver interface {
	Resolve(ctx context.Context, id string) (*backend.Session, error)
	Credentials(token string) (backend.Credentials, error)
}

// Authenticate identifies the caller from a bearer token or the session
// cookie. Anonymous requests pass through; a bad bearer token is rejected.
// Credentials are attached to the request context for the data source.
func Authenticate(sessions SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if header := c.GetHeader("Authorization"); header != "" {
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
				return
			}
			creds, err := sessions.Credentials(strings.TrimSpace(parts[1]))
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				return
			}
			attach(c, creds, "")
			c.Next()
			return
		}

		if id, err := c.Cookie(SessionCookie); err == nil && id != "" {
			s, err := sessions.Resolve(c.Request.Context(), id)
			switch {
			case err == nil:
				creds, cerr := sessions.Credentials(s.AccessToken)
				if cerr != nil {
					creds = backend.Credentials{AccessToken: s.AccessToken, UserID: s.User.ID, Role: "authenticated"}
				}
				c.Set(KeySessionID, id)
				attach(c, creds, s.User.Email)
			case errors.Is(err, context.Canceled):
				c.Abort()
				return
			default:
				// stale cookie; carry on anonymously
				c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
			}
		}
		c.Next()
	}
}

func attach(c *gin.Context, creds backend.Credentials, email string) {
	c.Set(KeyUserID, creds.UserID)
	c.Set(KeyAccessToken, creds.AccessToken)
	if email != "" {
		c.Set(KeyEmail, email)
	}
	c.Request = c.Request.WithContext(backend.WithCredentials(c.Request.Context(), creds))
}

// RequireUser rejects anonymous callers.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserID(c) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Please log in to continue"})
			return
		}
		c.Next()
	}
}

// UserID is "" for anonymous requests.
func UserID(c *gin.Context) string {
	return c.GetString(KeyUserID)
}
