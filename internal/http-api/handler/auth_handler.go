package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"novelhub/internal/backend"
	"novelhub/internal/http-api/dto"
	"novelhub/internal/http-api/middleware"
	"novelhub/internal/service"
	"novelhub/internal/session"
)

// Sessions is implemented by *session.Registry.
type Sessions interface {
	middleware.SessionResolver
	Create(ctx context.Context, s *backend.Session) (string, error)
	Revoke(ctx context.Context, id string) (*backend.Session, error)
}

type AuthHandler struct {
	auth     backend.AuthAPI
	sessions Sessions
	profiles service.ProfileService
	// secure cookies outside development
	secure bool
}

func NewAuthHandler(auth backend.AuthAPI, sessions Sessions, profiles service.ProfileService, secureCookies bool) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions, profiles: profiles, secure: secureCookies}
}

func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/register", h.Register)
	rg.POST("/auth/login", h.Login)
	rg.POST("/auth/refresh", h.Refresh)
	rg.POST("/auth/logout", h.Logout)
	rg.GET("/auth/me", middleware.RequireUser(), h.Me)
}

func (h *AuthHandler) startSession(ctx context.Context, c *gin.Context, s *backend.Session) (dto.AuthResponse, error) {
	id, err := h.sessions.Create(ctx, s)
	if err != nil {
		return dto.AuthResponse{}, err
	}
	// browser-session cookie; the registry entry expires on its own
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, id, 0, "/", "", h.secure, true)
	return dto.FromSession(s, id), nil
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	user, s, err := h.auth.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := dto.RegisterResponse{UserID: user.ID, Email: user.Email, ConfirmationRequired: s == nil}
	if s != nil {
		auth, err := h.startSession(ctx, c, s)
		if err != nil {
			respondError(c, err)
			return
		}
		resp.Session = &auth
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	s, err := h.auth.SignInWithPassword(ctx, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	resp, err := h.startSession(ctx, c, s)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Refresh exchanges a refresh token for bearer clients; cookie sessions are
// refreshed by the registry.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	s, err := h.auth.RefreshSession(ctx, req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromSession(s, ""))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	token := c.GetString(middleware.KeyAccessToken)
	if id := c.GetString(middleware.KeySessionID); id != "" {
		s, err := h.sessions.Revoke(ctx, id)
		if err != nil && !errors.Is(err, session.ErrNoSession) {
			respondError(c, err)
			return
		}
		if s != nil {
			token = s.AccessToken
		}
	}
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.secure, true)

	if token != "" {
		if err := h.auth.SignOut(ctx, token); err != nil && !errors.Is(err, backend.ErrUnauthorized) {
			respondError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	userID := middleware.UserID(c)
	resp := dto.MeResponse{UserID: userID, Email: c.GetString(middleware.KeyEmail)}

	needs, err := h.profiles.NeedsCompletion(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	resp.NeedsProfileCompletion = needs
	if !needs {
		profile, err := h.profiles.Get(ctx, userID)
		if err != nil {
			respondError(c, err)
			return
		}
		resp.Profile = profile
		if resp.Email == "" {
			resp.Email = profile.Email
		}
	}
	c.JSON(http.StatusOK, resp)
}
