package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"novelhub/internal/backend"
	"novelhub/internal/http-api/handler"
	"novelhub/internal/http-api/middleware"
	"novelhub/internal/models"
	"novelhub/internal/resilience"
	"novelhub/internal/service"
)

type testEnv struct {
	router   *gin.Engine
	auth     *MockAuth
	sessions *fakeSessions
	novels   *MockNovelService
	votes    *MockVoteService
	library  *MockLibraryService
	progress *MockProgressService
	profiles *MockProfileService
}

func newEnv(t testing.TB) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	e := &testEnv{
		auth:     new(MockAuth),
		sessions: newFakeSessions(),
		novels:   new(MockNovelService),
		votes:    new(MockVoteService),
		library:  new(MockLibraryService),
		progress: new(MockProgressService),
		profiles: new(MockProfileService),
	}
	e.router = handler.NewRouter(handler.Services{
		Auth:     e.auth,
		Sessions: e.sessions,
		Novels:   e.novels,
		Votes:    e.votes,
		Library:  e.library,
		Progress: e.progress,
		Profiles: e.profiles,
	}, handler.RouterOptions{
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		BackendMode: "rest",
	})
	return e
}

type call struct {
	method string
	path   string
	body   any
	token  string
	cookie *http.Cookie
}

func (e *testEnv) do(c call) *httptest.ResponseRecorder {
	var body io.Reader
	if c.body != nil {
		data, _ := json.Marshal(c.body)
		body = bytes.NewReader(data)
	}
	req := httptest.NewRequest(c.method, c.path, body)
	if c.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	e := newEnv(t)
	w := e.do(call{method: http.MethodGet, path: "/api/health"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "rest", decode(t, w)["backend"])
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestListNovels(t *testing.T) {
	e := newEnv(t)
	page := &service.NovelPage{
		Novels: []models.Novel{{NovelID: "n1", Title: "Ashes"}},
		Total:  11, Page: 2, Limit: 10, TotalPages: 2,
	}
	e.novels.On("List", mock.Anything, service.ListParams{Page: 2, Genre: "Fantasy", OrderBy: "title", Ascending: true}).
		Return(page, nil)

	w := e.do(call{method: http.MethodGet, path: "/api/novels?page=2&genre=Fantasy&order_by=title&ascending=true"})

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(11), body["total"])
	assert.Len(t, body["novels"], 1)
	e.novels.AssertExpectations(t)
}

func TestListNovels_Timeout(t *testing.T) {
	e := newEnv(t)
	timeout := fmt.Errorf("list novels: %w", &resilience.TimeoutError{Operation: "Loading novels", After: time.Second})
	e.novels.On("List", mock.Anything, mock.Anything).Return(nil, timeout)

	w := e.do(call{method: http.MethodGet, path: "/api/novels"})
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}

func TestGetNovel_NotFound(t *testing.T) {
	e := newEnv(t)
	e.novels.On("Get", mock.Anything, "missing").Return(nil, fmt.Errorf("get novel: %w", backend.ErrNotFound))

	w := e.do(call{method: http.MethodGet, path: "/api/novels/missing"})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not found", decode(t, w)["error"])
	e.novels.AssertNotCalled(t, "IncrementViews", mock.Anything, mock.Anything)
}

func TestGetNovel_SignedIn(t *testing.T) {
	e := newEnv(t)
	e.novels.On("Get", mock.Anything, "n1").Return(&models.Novel{NovelID: "n1", Title: "Ashes"}, nil)
	e.novels.On("IncrementViews", mock.Anything, "n1").Return(nil)
	e.votes.On("State", mock.Anything, "u1", "n1").
		Return(&service.VoteState{VoteCount: models.VoteCount{Upvotes: 3}, UserVote: models.VoteUp}, nil)
	e.library.On("Contains", mock.Anything, "u1", "n1").Return(true, nil)

	w := e.do(call{method: http.MethodGet, path: "/api/novels/n1", token: "token-u1"})

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Ashes", body["title"])
	assert.Equal(t, true, body["in_library"])
	assert.NotNil(t, body["votes"])
	e.novels.AssertExpectations(t)
}

func TestCreateNovel_RequiresLogin(t *testing.T) {
	e := newEnv(t)
	w := e.do(call{method: http.MethodPost, path: "/api/novels", body: map[string]any{"title": "Ashes"}})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	e.novels.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateNovel_Validation(t *testing.T) {
	e := newEnv(t)
	in := service.NovelInput{Author: "Mara", Genres: []string{"Fantasy"}}
	e.novels.On("Create", mock.Anything, "u1", in, (*service.Upload)(nil)).
		Return(nil, &service.ValidationError{Field: "title", Message: "Please enter a title"})

	w := e.do(call{
		method: http.MethodPost, path: "/api/novels", token: "token-u1",
		body: map[string]any{"author": "Mara", "genre": []string{"Fantasy"}},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Please enter a title", body["error"])
	assert.Equal(t, "title", body["field"])
}

func TestUpdateNovel_NotOwner(t *testing.T) {
	e := newEnv(t)
	e.novels.On("Get", mock.Anything, "n1").Return(&models.Novel{NovelID: "n1", UploadBy: "someone-else"}, nil)

	w := e.do(call{method: http.MethodPut, path: "/api/novels/n1", token: "token-u1", body: map[string]any{"title": "Mine now"}})

	assert.Equal(t, http.StatusForbidden, w.Code)
	e.novels.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteNovel_Owner(t *testing.T) {
	e := newEnv(t)
	e.novels.On("Get", mock.Anything, "n1").Return(&models.Novel{NovelID: "n1", UploadBy: "u1"}, nil)
	e.novels.On("Delete", mock.Anything, "n1").Return(nil)

	w := e.do(call{method: http.MethodDelete, path: "/api/novels/n1", token: "token-u1"})

	assert.Equal(t, http.StatusOK, w.Code)
	e.novels.AssertExpectations(t)
}

func TestInvalidBearer(t *testing.T) {
	e := newEnv(t)
	w := e.do(call{method: http.MethodGet, path: "/api/library", token: "forged"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_SessionCookie(t *testing.T) {
	e := newEnv(t)
	s := &backend.Session{
		AccessToken:  "token-u1",
		RefreshToken: "r1",
		ExpiresAt:    time.Now().Add(time.Hour).Unix(),
		User:         backend.User{ID: "u1", Email: "reader@example.com"},
	}
	e.auth.On("SignInWithPassword", mock.Anything, "reader@example.com", "pw").Return(s, nil)

	w := e.do(call{method: http.MethodPost, path: "/api/auth/login", body: map[string]string{"email": "reader@example.com", "password": "pw"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "token-u1", decode(t, w)["access_token"])

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.Equal(t, "sess-u1", cookie.Value)

	e.profiles.On("NeedsCompletion", mock.Anything, "u1").Return(true, nil)
	me := e.do(call{method: http.MethodGet, path: "/api/auth/me", cookie: cookie})
	require.Equal(t, http.StatusOK, me.Code)
	body := decode(t, me)
	assert.Equal(t, "reader@example.com", body["email"])
	assert.Equal(t, true, body["needs_profile_completion"])

	e.auth.On("SignOut", mock.Anything, "token-u1").Return(nil)
	out := e.do(call{method: http.MethodPost, path: "/api/auth/logout", cookie: cookie})
	assert.Equal(t, http.StatusOK, out.Code)
	assert.Empty(t, e.sessions.stored)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	e := newEnv(t)
	e.auth.On("SignInWithPassword", mock.Anything, "reader@example.com", "bad").
		Return(nil, &backend.APIError{Status: http.StatusBadRequest, Message: "Invalid login credentials"})

	w := e.do(call{method: http.MethodPost, path: "/api/auth/login", body: map[string]string{"email": "reader@example.com", "password": "bad"}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid login credentials", decode(t, w)["error"])
}

func TestVote(t *testing.T) {
	e := newEnv(t)

	bad := e.do(call{method: http.MethodPost, path: "/api/novels/n1/votes", token: "token-u1", body: map[string]string{"vote_type": "sideways"}})
	assert.Equal(t, http.StatusBadRequest, bad.Code)

	e.votes.On("Toggle", mock.Anything, "u1", "n1", models.VoteDown).
		Return(&service.VoteState{VoteCount: models.VoteCount{Downvotes: 1}, UserVote: models.VoteDown}, nil)
	w := e.do(call{method: http.MethodPost, path: "/api/novels/n1/votes", token: "token-u1", body: map[string]string{"vote_type": "down"}})

	assert.Equal(t, http.StatusOK, w.Code)
	e.votes.AssertNumberOfCalls(t, "Toggle", 1)
}

func TestProgressContinue_NoContent(t *testing.T) {
	e := newEnv(t)
	e.progress.On("ContinueReading", mock.Anything, "u1", "n1").Return(nil, nil)

	w := e.do(call{method: http.MethodGet, path: "/api/progress/n1", token: "token-u1"})
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestProgressStats(t *testing.T) {
	e := newEnv(t)
	e.progress.On("WeeklyStats", mock.Anything, "u1").Return([]service.DayStat{{Date: "2026-10-19", Label: "Mon", Reads: 2}}, nil)

	w := e.do(call{method: http.MethodGet, path: "/api/progress/stats", token: "token-u1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["days"], 1)
}

func TestLibraryAdd_Conflict(t *testing.T) {
	e := newEnv(t)
	dup := &backend.APIError{Status: http.StatusConflict, Code: backend.CodeUniqueViolation, Message: "duplicate key value"}
	e.library.On("Add", mock.Anything, "u1", "n1").Return(fmt.Errorf("add to library: %w", dup))

	w := e.do(call{method: http.MethodPost, path: "/api/library", token: "token-u1", body: map[string]string{"novel_id": "n1"}})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "duplicate key value", decode(t, w)["error"])
}
