package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"novelhub/internal/backend"
	"novelhub/internal/logger"
)

type stubResolver struct{}

func (stubResolver) Resolve(_ context.Context, id string) (*backend.Session, error) {
	if id == "good" {
		return &backend.Session{AccessToken: "tok", User: backend.User{ID: "u1", Email: "reader@example.com"}}, nil
	}
	return nil, backend.ErrNotFound
}

func (stubResolver) Credentials(token string) (backend.Credentials, error) {
	if token != "tok" {
		return backend.Credentials{}, backend.ErrUnauthorized
	}
	return backend.Credentials{AccessToken: token, UserID: "u1", Role: "authenticated"}, nil
}

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Authenticate(stubResolver{}))
	r.GET("/whoami", func(c *gin.Context) {
		creds, _ := backend.CredentialsFrom(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{
			"user":       UserID(c),
			"email":      c.GetString(KeyEmail),
			"token":      creds.AccessToken,
			"request_id": logger.RequestID(c.Request.Context()),
		})
	})
	r.GET("/private", RequireUser(), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestAuthenticate_Bearer(t *testing.T) {
	r := newEngine()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer tok")
	req.Header.Set(RequestIDHeader, "req-9")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user":"u1"`)
	assert.Contains(t, w.Body.String(), `"token":"tok"`)
	assert.Contains(t, w.Body.String(), `"request_id":"req-9"`)
	assert.Equal(t, "req-9", w.Header().Get(RequestIDHeader))
}

func TestAuthenticate_Cookie(t *testing.T) {
	r := newEngine()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "good"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Contains(t, w.Body.String(), `"email":"reader@example.com"`)
}

func TestAuthenticate_StaleCookieIsAnonymous(t *testing.T) {
	r := newEngine()
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "expired"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_MalformedHeader(t *testing.T) {
	r := newEngine()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Token tok")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:3000"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
